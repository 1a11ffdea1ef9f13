package wgfetcher

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"wg-parser-service/internal/constants"
	"wg-parser-service/internal/contextkeys"
	"wg-parser-service/internal/core/domain"
	"wg-parser-service/internal/core/port"

	"github.com/gocolly/colly/v2"
	"github.com/gocolly/colly/v2/extensions"
)

// Config параметры доступа к сайту
type Config struct {
	BaseURL string // https://www.wg-gesucht.de
	// RandomDelay - дополнительная задержка colly между запросами одного коллектора
	RandomDelay    time.Duration
	RequestTimeout time.Duration
}

// WgFetcherAdapter отвечает за все запросы к сайту объявлений
type WgFetcherAdapter struct {
	// родительский коллектор, его лимиты наследуют все клоны
	collector *colly.Collector
	baseURL   string
}

func NewWgFetcherAdapter(cfg Config) (*WgFetcherAdapter, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil || base.Host == "" {
		return nil, fmt.Errorf("WgFetcherAdapter: invalid base url %q", cfg.BaseURL)
	}

	c := colly.NewCollector(colly.AllowedDomains(base.Hostname()), colly.AllowURLRevisit())

	err = c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: 1,
		RandomDelay: cfg.RandomDelay,
	})
	if err != nil {
		return nil, fmt.Errorf("WgFetcherAdapter: failed to set limit rule: %w", err)
	}
	if cfg.RequestTimeout > 0 {
		c.SetRequestTimeout(cfg.RequestTimeout)
	}

	extensions.RandomUserAgent(c)
	extensions.Referer(c)

	return &WgFetcherAdapter{
		collector: c,
		baseURL:   base.Scheme + "://" + base.Host,
	}, nil
}

// fetch загружает страницу; любая сетевая ошибка или не-2xx статус заворачивается в ErrFetch
func (a *WgFetcherAdapter) fetch(ctx context.Context, pageURL string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "WgFetcherAdapter",
		"url":       pageURL,
	})

	collector := a.collector.Clone()
	// отмена ctx обрывает HTTP-запрос
	collector.Context = ctx

	var body []byte
	var fetchErr error

	collector.OnRequest(func(r *colly.Request) {
		logger.Debug("Making request", nil)
	})

	collector.OnResponse(func(r *colly.Response) {
		body = r.Body
	})

	collector.OnError(func(r *colly.Response, err error) {
		logger.Error("Request failed", err, port.Fields{"status": r.StatusCode})
		fetchErr = fmt.Errorf("%w: %s: status %d: %v", domain.ErrFetch, pageURL, r.StatusCode, err)
	})

	if err := collector.Visit(pageURL); err != nil && fetchErr == nil {
		fetchErr = fmt.Errorf("%w: %s: %v", domain.ErrFetch, pageURL, err)
	}
	collector.Wait()

	if fetchErr != nil {
		return nil, fetchErr
	}
	return body, nil
}

func (a *WgFetcherAdapter) listingURL(city domain.CityConfig, page int) string {
	return a.baseURL + "/" + city.ListingPagePath(page)
}

// FetchListingPage - страница списка для обхода активного множества
func (a *WgFetcherAdapter) FetchListingPage(ctx context.Context, city domain.CityConfig, page int) ([]domain.AdSummary, error) {
	body, err := a.fetch(ctx, a.listingURL(city, page))
	if err != nil {
		return nil, err
	}
	return ParseListingPage(body)
}

// FetchOverview - первая страница списка со всеми колонками
func (a *WgFetcherAdapter) FetchOverview(ctx context.Context, city domain.CityConfig) ([]domain.ListingAd, error) {
	body, err := a.fetch(ctx, a.listingURL(city, constants.OverviewPage))
	if err != nil {
		return nil, err
	}
	return ParseOverviewRows(body, a.baseURL)
}

// FetchAdDetails - адрес со страницы объявления
func (a *WgFetcherAdapter) FetchAdDetails(ctx context.Context, adURL string) (*domain.AdDetails, error) {
	body, err := a.fetch(ctx, adURL)
	if err != nil {
		return nil, err
	}
	return ParseAdAddress(body)
}
