package postgres

import (
	"context"
	"fmt"

	"wg-parser-service/internal/core/domain"
	"wg-parser-service/internal/core/port"

	"github.com/mmcloughlin/geohash"
)

// geohashFor - geohash полной точности (12 символов), если есть координаты
func geohashFor(ad domain.Ad) *string {
	if ad.Latitude == nil || ad.Longitude == nil {
		return nil
	}
	h := geohash.Encode(*ad.Latitude, *ad.Longitude)
	return &h
}

// InsertAd вставляет новое объявление; уже существующая пара (city_name, ad_id) не перезаписывается
func (r *PostgresAdRepository) InsertAd(ctx context.Context, ad domain.Ad) (bool, error) {
	repoLogger := r.logger(ctx, "InsertAd").WithFields(port.Fields{
		"city":  ad.CityName,
		"ad_id": ad.AdID,
	})

	if ad.Geohash == nil {
		ad.Geohash = geohashFor(ad)
	}

	l := ad.Listing
	tag, err := r.pool.Exec(ctx, `
		INSERT INTO wg_ads (
			ad_id, city_name, is_active, ts_deactivated, url, ts_scraped,
			flat_size, female_flatmates, male_flatmates, diverse_flatmates,
			looking_for_female, looking_for_male, rent, room_size, free_from, free_until,
			address_street, address_district, address_formatted, latitude, longitude, geohash, raw_html
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16,
			$17, $18, $19, $20, $21, $22, $23
		)
		ON CONFLICT (city_name, ad_id) DO NOTHING`,
		ad.AdID, ad.CityName, ad.IsActive, ad.TsDeactivated, l.URL, ad.TsScraped,
		l.FlatSize, l.FemaleFlatmates, l.MaleFlatmates, l.DiverseFlatmates,
		l.LookingForFemale, l.LookingForMale, l.Rent, l.RoomSize, l.FreeFrom, l.FreeUntil,
		ad.AddressStreet, ad.AddressDistrict, ad.AddressFormatted, ad.Latitude, ad.Longitude, ad.Geohash, ad.RawHTML,
	)
	if err != nil {
		repoLogger.Error("Failed to insert ad", err, nil)
		return false, fmt.Errorf("failed to insert ad %d: %w", ad.AdID, err)
	}

	inserted := tag.RowsAffected() == 1
	if !inserted {
		repoLogger.Debug("Ad already stored", nil)
	}
	return inserted, nil
}
