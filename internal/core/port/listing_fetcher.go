package port

import (
	"context"

	"wg-parser-service/internal/core/domain"
)

// ListingFetcherPort - все, что сервису нужно от сайта объявлений
type ListingFetcherPort interface {
	// FetchListingPage возвращает краткие записи страницы page (с нуля).
	// Пустой срез без ошибки означает конец списка.
	FetchListingPage(ctx context.Context, city domain.CityConfig, page int) ([]domain.AdSummary, error)

	// FetchOverview разбирает первую страницу списка полностью
	FetchOverview(ctx context.Context, city domain.CityConfig) ([]domain.ListingAd, error)

	// FetchAdDetails загружает страницу объявления
	FetchAdDetails(ctx context.Context, adURL string) (*domain.AdDetails, error)
}
