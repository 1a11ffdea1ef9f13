package port

import (
	"context"

	"wg-parser-service/internal/core/domain"
)

type AdRepositoryPort interface {
	// LoadRecords возвращает состояние активности всех объявлений города
	LoadRecords(ctx context.Context, cityName string) ([]domain.AdRecord, error)
	// ApplyActivationChanges атомарно записывает is_active/ts_deactivated для переданных записей города
	ApplyActivationChanges(ctx context.Context, cityName string, changes []domain.AdRecord) (int64, error)

	KnownAdIDs(ctx context.Context, cityName string) (map[int64]struct{}, error)
	// InsertAd возвращает false, если объявление уже было в таблице
	InsertAd(ctx context.Context, ad domain.Ad) (bool, error)

	ListAds(ctx context.Context, filter domain.AdFilter) ([]domain.Ad, error)
	Stats(ctx context.Context) ([]domain.CityStats, error)
}
