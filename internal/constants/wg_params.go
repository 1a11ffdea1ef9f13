package constants

import (
	"fmt"
	"strings"

	"wg-parser-service/internal/core/domain"
)

const DefaultBaseURL = "https://www.wg-gesucht.de"

// Ограничения обхода по умолчанию
const (
	DefaultMaxPages = 500
	// номер первой страницы списка, с которой собираются новые объявления
	OverviewPage = 0
)

// PredefinedCities - города, для которых известен путь списка на сайте.
// Путь включает id города и категорию "WG-Zimmer" (0.0).
var PredefinedCities = map[string]domain.CityConfig{
	"munich": {
		Name:        "munich",
		DisplayName: "München",
		ListingPath: "wg-zimmer-in-Munchen.90.0.0",
	},
	"berlin": {
		Name:        "berlin",
		DisplayName: "Berlin",
		ListingPath: "wg-zimmer-in-Berlin.8.0.0",
	},
	"frankfurt": {
		Name:        "frankfurt",
		DisplayName: "Frankfurt am Main",
		ListingPath: "wg-zimmer-in-Frankfurt-am-Main.41.0.0",
	},
	"duesseldorf": {
		Name:        "duesseldorf",
		DisplayName: "Düsseldorf",
		ListingPath: "wg-zimmer-in-Dusseldorf.30.0.0",
	},
}

// ResolveCities выбирает города по списку имен из конфига
func ResolveCities(names []string) (map[string]domain.CityConfig, error) {
	cities := make(map[string]domain.CityConfig, len(names))
	for _, raw := range names {
		name := strings.ToLower(strings.TrimSpace(raw))
		if name == "" {
			continue
		}
		city, ok := PredefinedCities[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrUnknownCity, name)
		}
		cities[name] = city
	}
	if len(cities) == 0 {
		return nil, fmt.Errorf("no cities configured")
	}
	return cities, nil
}
