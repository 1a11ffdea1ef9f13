package usecase

import (
	"context"
	"fmt"

	"wg-parser-service/internal/core/domain"
	"wg-parser-service/internal/core/port"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// QueryAdsUseCase - чтение таблицы для REST API
type QueryAdsUseCase struct {
	repo   port.AdRepositoryPort
	cities map[string]domain.CityConfig
}

func NewQueryAdsUseCase(repo port.AdRepositoryPort, cities map[string]domain.CityConfig) *QueryAdsUseCase {
	return &QueryAdsUseCase{repo: repo, cities: cities}
}

func (uc *QueryAdsUseCase) ListAds(ctx context.Context, filter domain.AdFilter) ([]domain.Ad, error) {
	if filter.CityName != "" {
		if _, ok := uc.cities[filter.CityName]; !ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrUnknownCity, filter.CityName)
		}
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	if filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return uc.repo.ListAds(ctx, filter)
}

func (uc *QueryAdsUseCase) Stats(ctx context.Context) ([]domain.CityStats, error) {
	return uc.repo.Stats(ctx)
}
