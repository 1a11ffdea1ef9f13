package usecases_port

import (
	"context"

	"wg-parser-service/internal/core/domain"
)

type UpdateActiveAdsUseCase interface {
	Execute(ctx context.Context, cityName string) (*domain.UpdateReport, error)
}
