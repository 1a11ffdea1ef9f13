package usecase

import (
	"context"
	"fmt"
	"time"

	"wg-parser-service/internal/contextkeys"
	"wg-parser-service/internal/core/domain"
	"wg-parser-service/internal/core/port"

	"github.com/google/uuid"
)

// activeSetCollector - то, что прогону нужно от ActiveSetCollector
type activeSetCollector interface {
	Collect(ctx context.Context, city domain.CityConfig) (*domain.CollectResult, error)
}

// UpdateActiveAdsUseCase - ежедневная сверка: обход списка, сверка с таблицей, запись изменений
type UpdateActiveAdsUseCase struct {
	cities    map[string]domain.CityConfig
	collector activeSetCollector
	repo      port.AdRepositoryPort
	reports   port.UpdateReportPublisherPort
	policy    domain.StampPolicy
	locks     *cityLocks
	now       func() time.Time
}

func NewUpdateActiveAdsUseCase(
	cities map[string]domain.CityConfig,
	collector activeSetCollector,
	repo port.AdRepositoryPort,
	reports port.UpdateReportPublisherPort,
	policy domain.StampPolicy,
) *UpdateActiveAdsUseCase {
	return &UpdateActiveAdsUseCase{
		cities:    cities,
		collector: collector,
		repo:      repo,
		reports:   reports,
		policy:    policy,
		locks:     newCityLocks(),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Execute выполняет один прогон для города. При ошибке обхода или достижении
// лимита страниц таблица не меняется.
func (uc *UpdateActiveAdsUseCase) Execute(ctx context.Context, cityName string) (*domain.UpdateReport, error) {
	city, ok := uc.cities[cityName]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownCity, cityName)
	}

	if !uc.locks.tryLock(city.Name) {
		return nil, fmt.Errorf("%w: %s", domain.ErrRunInProgress, city.Name)
	}
	defer uc.locks.unlock(city.Name)

	report := &domain.UpdateReport{
		RunID:     uuid.New(),
		CityName:  city.Name,
		StartedAt: uc.now(),
	}

	ctx, traceID := contextkeys.EnsureTraceID(ctx)
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case": "UpdateActiveAds",
		"city":     city.Name,
		"run_id":   report.RunID.String(),
		"trace_id": traceID,
	})
	ctx = contextkeys.ContextWithLogger(ctx, ucLogger)

	ucLogger.Info("Starting update run", nil)

	collected, err := uc.collector.Collect(ctx, city)
	if err != nil {
		ucLogger.Error("Active set collection failed, nothing committed", err, nil)
		return nil, fmt.Errorf("update %s: %w", city.Name, err)
	}
	report.PagesFetched = collected.PagesFetched
	report.ActiveIDs = len(collected.IDs)
	report.Termination = collected.Termination

	if collected.Termination == domain.TerminationPageLimit {
		report.Truncated = true
		report.FinishedAt = uc.now()
		ucLogger.Warn("Listing did not terminate within page limit, skipping commit", port.Fields{
			"pages_fetched": collected.PagesFetched,
		})
		uc.publish(ctx, ucLogger, *report)
		return report, nil
	}

	records, err := uc.repo.LoadRecords(ctx, city.Name)
	if err != nil {
		ucLogger.Error("Failed to load records", err, nil)
		return nil, fmt.Errorf("update %s: load records: %w", city.Name, err)
	}

	reconciled := Reconcile(records, collected.IDs, uc.now(), uc.policy)
	report.Stats = reconciled.Stats

	if len(reconciled.Changes) > 0 {
		updated, err := uc.repo.ApplyActivationChanges(ctx, city.Name, reconciled.Changes)
		if err != nil {
			ucLogger.Error("Failed to apply activation changes", err, port.Fields{"changes": len(reconciled.Changes)})
			return nil, fmt.Errorf("update %s: apply changes: %w", city.Name, err)
		}
		report.RowsUpdated = updated
	}
	report.FinishedAt = uc.now()

	ucLogger.Info("Update run finished", port.Fields{
		"pages_fetched": report.PagesFetched,
		"active_ids":    report.ActiveIDs,
		"termination":   string(report.Termination),
		"deactivated":   report.Stats.Deactivated,
		"reactivated":   report.Stats.Reactivated,
		"rows_updated":  report.RowsUpdated,
	})

	uc.publish(ctx, ucLogger, *report)
	return report, nil
}

// publish - ошибка отправки отчета не отменяет уже записанный результат
func (uc *UpdateActiveAdsUseCase) publish(ctx context.Context, logger port.LoggerPort, report domain.UpdateReport) {
	if uc.reports == nil {
		return
	}
	if err := uc.reports.PublishUpdateReport(ctx, report); err != nil {
		logger.Error("Failed to publish update report", err, nil)
	}
}
