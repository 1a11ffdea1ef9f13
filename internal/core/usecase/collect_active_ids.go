package usecase

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"wg-parser-service/internal/contextkeys"
	"wg-parser-service/internal/core/domain"
	"wg-parser-service/internal/core/port"
)

// inactiveMarker - подстрока колонки "онлайн", которой сайт помечает снятые объявления
const inactiveMarker = "inaktiv"

// CollectorConfig - параметры обхода страниц
type CollectorConfig struct {
	MaxPages    int           // обязательный предел числа страниц
	DelayMin    time.Duration // пауза между запросами: DelayMin + rand[0, DelayJitter)
	DelayJitter time.Duration
}

// ActiveSetCollector обходит страницы списка по порядку и собирает id опубликованных объявлений.
// Сайт выдает активные объявления раньше неактивных, поэтому первая отметка "inaktiv"
// или пустая страница завершают обход.
type ActiveSetCollector struct {
	fetcher port.ListingFetcherPort
	cfg     CollectorConfig
}

func NewActiveSetCollector(fetcher port.ListingFetcherPort, cfg CollectorConfig) (*ActiveSetCollector, error) {
	if cfg.MaxPages <= 0 {
		return nil, fmt.Errorf("collector: max pages must be positive, got %d", cfg.MaxPages)
	}
	if cfg.DelayMin < 0 || cfg.DelayJitter < 0 {
		return nil, fmt.Errorf("collector: delays must not be negative")
	}
	return &ActiveSetCollector{fetcher: fetcher, cfg: cfg}, nil
}

// Collect возвращает активное множество города. Ошибка загрузки или разбора
// прерывает обход целиком, частичный результат не возвращается.
func (c *ActiveSetCollector) Collect(ctx context.Context, city domain.CityConfig) (*domain.CollectResult, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "ActiveSetCollector",
		"city":      city.Name,
	})

	result := &domain.CollectResult{IDs: make(map[int64]struct{})}

	for page := 0; page < c.cfg.MaxPages; page++ {
		if page > 0 {
			if err := c.pause(ctx); err != nil {
				return nil, err
			}
		}

		summaries, err := c.fetcher.FetchListingPage(ctx, city, page)
		if err != nil {
			logger.Error("Failed to fetch listing page", err, port.Fields{"page": page})
			return nil, fmt.Errorf("collect %s page %d: %w", city.Name, page, err)
		}
		result.PagesFetched++

		if len(summaries) == 0 {
			logger.Debug("Empty page, listing finished", port.Fields{"page": page})
			result.Termination = domain.TerminationEmptyPage
			return result, nil
		}

		for i, s := range summaries {
			marker := strings.TrimSpace(s.PostedMarker)
			if marker == "" {
				return nil, fmt.Errorf("collect %s page %d item %d (ad %d): empty posted marker: %w",
					city.Name, page, i, s.AdID, domain.ErrMalformedPage)
			}
			if strings.Contains(strings.ToLower(marker), inactiveMarker) {
				logger.Debug("Inactive marker reached", port.Fields{"page": page, "position": i, "ad_id": s.AdID})
				result.Termination = domain.TerminationInactiveMarker
				return result, nil
			}
			result.IDs[s.AdID] = struct{}{}
		}

		logger.Debug("Page consumed", port.Fields{"page": page, "ads": len(summaries), "total": len(result.IDs)})
	}

	logger.Warn("Page limit reached before the listing ended", port.Fields{"max_pages": c.cfg.MaxPages})
	result.Termination = domain.TerminationPageLimit
	return result, nil
}

func (c *ActiveSetCollector) pause(ctx context.Context) error {
	d := c.cfg.DelayMin
	if c.cfg.DelayJitter > 0 {
		d += rand.N(c.cfg.DelayJitter)
	}
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
