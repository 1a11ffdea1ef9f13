package scheduler

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"sync"
	"time"

	logger_adapter "wg-parser-service/internal/adapters/logger"
	"wg-parser-service/internal/contextkeys"
	"wg-parser-service/internal/core/domain"
	"wg-parser-service/internal/core/port"
	"wg-parser-service/internal/core/port/usecases_port"

	"github.com/robfig/cron/v3"
)

// Config - расписание фоновых прогонов.
// UpdateCron принимает и префикс часового пояса: "CRON_TZ=Europe/Berlin 0 0 * * *".
type Config struct {
	UpdateCron     string
	ScrapeEnabled  bool
	ScrapeInterval time.Duration
	ScrapeJitter   time.Duration
}

// Scheduler запускает ежедневную сверку и периодический сбор новых объявлений по каждому городу
type Scheduler struct {
	cron     *cron.Cron
	cfg      Config
	cities   []string
	updateUC usecases_port.UpdateActiveAdsUseCase
	scrapeUC usecases_port.ScrapeNewAdsUseCase
	logger   port.LoggerPort

	mu      sync.Mutex
	jobsCtx context.Context
	cancel  context.CancelFunc
}

func NewScheduler(
	cfg Config,
	cities map[string]domain.CityConfig,
	updateUC usecases_port.UpdateActiveAdsUseCase,
	scrapeUC usecases_port.ScrapeNewAdsUseCase,
	logger port.LoggerPort,
) (*Scheduler, error) {
	if cfg.ScrapeEnabled && cfg.ScrapeInterval <= 0 {
		return nil, fmt.Errorf("scheduler: scrape interval must be positive")
	}

	schedLogger := logger.WithFields(port.Fields{"component": "Scheduler"})
	cronLog := logger_adapter.NewKeyValueBridge(schedLogger, logger_adapter.WithPrefix("cron: "), logger_adapter.WithInfoAsDebug())

	names := make([]string, 0, len(cities))
	for name := range cities {
		names = append(names, name)
	}
	sort.Strings(names)

	s := &Scheduler{
		// SkipIfStillRunning действует на каждую запись отдельно,
		// поэтому долгий прогон одного города не задерживает другие
		cron: cron.New(
			cron.WithLogger(cronLog),
			cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
		),
		cfg:      cfg,
		cities:   names,
		updateUC: updateUC,
		scrapeUC: scrapeUC,
		logger:   schedLogger,
		jobsCtx:  context.Background(),
		cancel:   func() {},
	}

	if err := s.register(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scheduler) register() error {
	for _, city := range s.cities {
		if _, err := s.cron.AddFunc(s.cfg.UpdateCron, func() { s.runUpdate(city) }); err != nil {
			return fmt.Errorf("scheduler: invalid update schedule %q: %w", s.cfg.UpdateCron, err)
		}

		if !s.cfg.ScrapeEnabled {
			continue
		}
		schedule := "@every " + s.cfg.ScrapeInterval.String()
		if _, err := s.cron.AddFunc(schedule, func() { s.runScrape(city) }); err != nil {
			return fmt.Errorf("scheduler: invalid scrape schedule %q: %w", schedule, err)
		}
	}
	return nil
}

// Start запускает cron в собственной горутине; ctx ограничивает время жизни задач
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.jobsCtx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	s.cron.Start()
	s.logger.Info("Scheduler started", port.Fields{
		"cities":        s.cities,
		"update_cron":   s.cfg.UpdateCron,
		"scrape":        s.cfg.ScrapeEnabled,
		"scrape_every":  s.cfg.ScrapeInterval.String(),
		"entries_count": len(s.cron.Entries()),
	})
}

// Stop отменяет текущие задачи и ждет их завершения, но не дольше ctx
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	s.cancel()
	s.mu.Unlock()

	stopped := s.cron.Stop()
	select {
	case <-stopped.Done():
		s.logger.Info("Scheduler stopped", nil)
		return nil
	case <-ctx.Done():
		return fmt.Errorf("scheduler: jobs did not finish in time: %w", ctx.Err())
	}
}

func (s *Scheduler) jobContext(job, city string) (context.Context, port.LoggerPort) {
	s.mu.Lock()
	parent := s.jobsCtx
	s.mu.Unlock()

	jobLogger := s.logger.WithFields(port.Fields{"job": job, "city": city})
	return contextkeys.ContextWithLogger(parent, jobLogger), jobLogger
}

func (s *Scheduler) runUpdate(city string) {
	ctx, logger := s.jobContext("update_active_ads", city)

	report, err := s.updateUC.Execute(ctx, city)
	if err != nil {
		if errors.Is(err, domain.ErrRunInProgress) {
			logger.Warn("Update skipped, city is already being updated", nil)
			return
		}
		logger.Error("Scheduled update failed", err, nil)
		return
	}
	logger.Info("Scheduled update finished", port.Fields{
		"run_id":       report.RunID.String(),
		"truncated":    report.Truncated,
		"rows_updated": report.RowsUpdated,
	})
}

func (s *Scheduler) runScrape(city string) {
	ctx, logger := s.jobContext("scrape_new_ads", city)

	// разброс старта, чтобы запросы не уходили на сайт строго по часам
	if err := sleepJitter(ctx, s.cfg.ScrapeJitter); err != nil {
		return
	}

	report, err := s.scrapeUC.Execute(ctx, city)
	if err != nil {
		logger.Error("Scheduled scrape failed", err, nil)
		return
	}
	logger.Debug("Scheduled scrape finished", port.Fields{"inserted": report.Inserted})
}

func sleepJitter(ctx context.Context, jitter time.Duration) error {
	if jitter <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(rand.N(jitter))
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
