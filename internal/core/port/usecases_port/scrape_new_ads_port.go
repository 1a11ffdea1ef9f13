package usecases_port

import (
	"context"

	"wg-parser-service/internal/core/domain"
)

type ScrapeNewAdsUseCase interface {
	Execute(ctx context.Context, cityName string) (*domain.ScrapeReport, error)
}
