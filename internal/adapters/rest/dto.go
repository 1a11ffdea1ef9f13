package rest

import (
	"time"

	"wg-parser-service/internal/core/domain"
)

// AdResponseDTO - объявление в ответе GET /api/v1/ads (без сырого HTML)
type AdResponseDTO struct {
	AdID             int64      `json:"ad_id"`
	CityName         string     `json:"city_name"`
	URL              string     `json:"url"`
	IsActive         bool       `json:"is_active"`
	TsDeactivated    *time.Time `json:"ts_deactivated,omitempty"`
	TsScraped        time.Time  `json:"ts_scraped"`
	FlatSize         *int       `json:"flat_size,omitempty"`
	FemaleFlatmates  *int       `json:"female_flatmates,omitempty"`
	MaleFlatmates    *int       `json:"male_flatmates,omitempty"`
	DiverseFlatmates *int       `json:"diverse_flatmates,omitempty"`
	LookingForFemale bool       `json:"looking_for_female"`
	LookingForMale   bool       `json:"looking_for_male"`
	Rent             *float64   `json:"rent,omitempty"`
	RoomSize         *float64   `json:"room_size,omitempty"`
	FreeFrom         string     `json:"free_from,omitempty"`
	FreeUntil        *string    `json:"free_until,omitempty"`
	AddressStreet    string     `json:"address_street,omitempty"`
	AddressDistrict  string     `json:"address_district,omitempty"`
	AddressFormatted *string    `json:"address_formatted,omitempty"`
	Latitude         *float64   `json:"latitude,omitempty"`
	Longitude        *float64   `json:"longitude,omitempty"`
	Geohash          *string    `json:"geohash,omitempty"`
}

type AdsListResponseDTO struct {
	Items []AdResponseDTO `json:"items"`
	Count int             `json:"count"`
}

func toAdResponseDTO(ad domain.Ad) AdResponseDTO {
	return AdResponseDTO{
		AdID:             ad.AdID,
		CityName:         ad.CityName,
		URL:              ad.Listing.URL,
		IsActive:         ad.IsActive,
		TsDeactivated:    ad.TsDeactivated,
		TsScraped:        ad.TsScraped,
		FlatSize:         ad.Listing.FlatSize,
		FemaleFlatmates:  ad.Listing.FemaleFlatmates,
		MaleFlatmates:    ad.Listing.MaleFlatmates,
		DiverseFlatmates: ad.Listing.DiverseFlatmates,
		LookingForFemale: ad.Listing.LookingForFemale,
		LookingForMale:   ad.Listing.LookingForMale,
		Rent:             ad.Listing.Rent,
		RoomSize:         ad.Listing.RoomSize,
		FreeFrom:         ad.Listing.FreeFrom,
		FreeUntil:        ad.Listing.FreeUntil,
		AddressStreet:    ad.AddressStreet,
		AddressDistrict:  ad.AddressDistrict,
		AddressFormatted: ad.AddressFormatted,
		Latitude:         ad.Latitude,
		Longitude:        ad.Longitude,
		Geohash:          ad.Geohash,
	}
}
