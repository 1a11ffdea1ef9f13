package domain

import (
	"fmt"
	"time"
)

// CityConfig - явные параметры одного города вместо глобальных переменных.
// Страница N списка объявлений: <base>/<ListingPath>.<N>.html?noDeact=1
type CityConfig struct {
	Name        string // тег города в таблице, например "munich"
	DisplayName string // название для геокодера, например "München"
	ListingPath string // "wg-zimmer-in-Munchen.90.0.0"
}

// ListingPagePath возвращает путь страницы списка относительно корня сайта
func (c CityConfig) ListingPagePath(page int) string {
	return fmt.Sprintf("%s.%d.html?noDeact=1", c.ListingPath, page)
}

// AdSummary - краткая запись объявления на странице списка
type AdSummary struct {
	AdID         int64
	PostedMarker string // текст колонки "онлайн", у неактивных содержит "inaktiv"
}

// AdRecord - состояние активности объявления, которое сверяется с сайтом
type AdRecord struct {
	AdID          int64
	CityName      string
	IsActive      bool
	TsDeactivated *time.Time
}

// ListingAd - строка страницы списка, разобранная полностью (путь сбора новых объявлений)
type ListingAd struct {
	AdID             int64
	URL              string
	FlatSize         *int
	FemaleFlatmates  *int
	MaleFlatmates    *int
	DiverseFlatmates *int
	LookingForFemale bool
	LookingForMale   bool
	Rent             *float64 // nil, если не указано ("k.A.")
	RoomSize         *float64
	FreeFrom         string
	FreeUntil        *string
}

// AdDetails - данные со страницы самого объявления
type AdDetails struct {
	Street   string
	District string
	RawHTML  string
}

// GeoLocation - результат геокодирования адреса
type GeoLocation struct {
	FormattedAddress string
	Latitude         float64
	Longitude        float64
}

// Ad - полная строка таблицы wg_ads
type Ad struct {
	AdRecord
	Listing          ListingAd
	TsScraped        time.Time
	AddressStreet    string
	AddressDistrict  string
	AddressFormatted *string
	Latitude         *float64
	Longitude        *float64
	Geohash          *string
	RawHTML          string
}

// AdFilter - параметры выборки объявлений для API
type AdFilter struct {
	CityName string // пусто - все города
	IsActive *bool
	Limit    int
	Offset   int
}

// CityStats - счетчики активных и неактивных объявлений по городу
type CityStats struct {
	CityName string `json:"city_name"`
	Active   int64  `json:"active"`
	Inactive int64  `json:"inactive"`
}
