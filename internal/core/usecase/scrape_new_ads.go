package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"wg-parser-service/internal/contextkeys"
	"wg-parser-service/internal/core/domain"
	"wg-parser-service/internal/core/port"
)

// ScrapeNewAdsUseCase сохраняет объявления с первой страницы списка, которых еще нет в таблице
type ScrapeNewAdsUseCase struct {
	cities    map[string]domain.CityConfig
	fetcher   port.ListingFetcherPort
	repo      port.AdRepositoryPort
	geocoder  port.GeocoderPort
	published port.AdDiscoveredPublisherPort
	now       func() time.Time
}

func NewScrapeNewAdsUseCase(
	cities map[string]domain.CityConfig,
	fetcher port.ListingFetcherPort,
	repo port.AdRepositoryPort,
	geocoder port.GeocoderPort,
	published port.AdDiscoveredPublisherPort,
) *ScrapeNewAdsUseCase {
	return &ScrapeNewAdsUseCase{
		cities:    cities,
		fetcher:   fetcher,
		repo:      repo,
		geocoder:  geocoder,
		published: published,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (uc *ScrapeNewAdsUseCase) Execute(ctx context.Context, cityName string) (*domain.ScrapeReport, error) {
	city, ok := uc.cities[cityName]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownCity, cityName)
	}

	ctx, traceID := contextkeys.EnsureTraceID(ctx)
	ucLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case": "ScrapeNewAds",
		"city":     city.Name,
		"trace_id": traceID,
	})
	ctx = contextkeys.ContextWithLogger(ctx, ucLogger)

	listing, err := uc.fetcher.FetchOverview(ctx, city)
	if err != nil {
		ucLogger.Error("Failed to fetch overview page", err, nil)
		return nil, fmt.Errorf("scrape %s: %w", city.Name, err)
	}

	known, err := uc.repo.KnownAdIDs(ctx, city.Name)
	if err != nil {
		ucLogger.Error("Failed to load known ad ids", err, nil)
		return nil, fmt.Errorf("scrape %s: known ids: %w", city.Name, err)
	}

	report := &domain.ScrapeReport{CityName: city.Name, Seen: len(listing)}

	for _, item := range listing {
		if _, seen := known[item.AdID]; seen {
			continue
		}
		report.New++
		adLogger := ucLogger.WithFields(port.Fields{"ad_id": item.AdID})

		details, err := uc.fetcher.FetchAdDetails(ctx, item.URL)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			adLogger.Warn("Failed to fetch ad page, skipping", port.Fields{"error": err.Error()})
			report.Skipped++
			continue
		}

		ad := domain.Ad{
			AdRecord: domain.AdRecord{
				AdID:     item.AdID,
				CityName: city.Name,
				IsActive: true,
			},
			Listing:         item,
			TsScraped:       uc.now(),
			AddressStreet:   details.Street,
			AddressDistrict: details.District,
			RawHTML:         details.RawHTML,
		}

		if loc := uc.geocode(ctx, adLogger, city, details); loc != nil {
			ad.AddressFormatted = &loc.FormattedAddress
			ad.Latitude = &loc.Latitude
			ad.Longitude = &loc.Longitude
		} else {
			report.NotGeocoded++
		}

		inserted, err := uc.repo.InsertAd(ctx, ad)
		if err != nil {
			adLogger.Error("Failed to save ad", err, nil)
			return nil, fmt.Errorf("scrape %s: insert ad %d: %w", city.Name, item.AdID, err)
		}
		if !inserted {
			// параллельный сбор уже успел сохранить это объявление
			continue
		}
		report.Inserted++
		known[item.AdID] = struct{}{}

		if uc.published != nil {
			if err := uc.published.PublishAdDiscovered(ctx, ad); err != nil {
				adLogger.Error("Failed to publish discovered ad", err, nil)
			}
		}
	}

	ucLogger.Info("Scrape finished", port.Fields{
		"seen":         report.Seen,
		"new":          report.New,
		"inserted":     report.Inserted,
		"skipped":      report.Skipped,
		"not_geocoded": report.NotGeocoded,
	})
	return report, nil
}

// geocode возвращает nil, если адрес определить не удалось; объявление сохраняется без координат
func (uc *ScrapeNewAdsUseCase) geocode(ctx context.Context, logger port.LoggerPort, city domain.CityConfig, details *domain.AdDetails) *domain.GeoLocation {
	if uc.geocoder == nil || details.Street == "" {
		return nil
	}

	parts := []string{details.Street}
	if details.District != "" {
		parts = append(parts, details.District)
	}
	parts = append(parts, city.DisplayName)
	address := strings.Join(parts, ", ")

	loc, err := uc.geocoder.Geocode(ctx, address)
	if err != nil {
		if errors.Is(err, domain.ErrAddressNotFound) {
			logger.Warn("Address not found by geocoder", port.Fields{"address": address})
		} else {
			logger.Error("Geocoding failed", err, port.Fields{"address": address})
		}
		return nil
	}
	return loc
}
