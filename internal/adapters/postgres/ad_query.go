package postgres

import (
	"context"
	"fmt"
	"strings"

	"wg-parser-service/internal/core/domain"
	"wg-parser-service/internal/core/port"
)

const adColumns = `ad_id, city_name, is_active, ts_deactivated, url, ts_scraped,
	flat_size, female_flatmates, male_flatmates, diverse_flatmates,
	looking_for_female, looking_for_male, rent, room_size, free_from, free_until,
	address_street, address_district, address_formatted, latitude, longitude, geohash`

// buildAdFilter собирает WHERE и аргументы; номера плейсхолдеров идут подряд
func buildAdFilter(filter domain.AdFilter) (string, []any) {
	var conds []string
	var args []any

	if filter.CityName != "" {
		args = append(args, filter.CityName)
		conds = append(conds, fmt.Sprintf("city_name = $%d", len(args)))
	}
	if filter.IsActive != nil {
		args = append(args, *filter.IsActive)
		conds = append(conds, fmt.Sprintf("is_active = $%d", len(args)))
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}
	return where, args
}

func (r *PostgresAdRepository) ListAds(ctx context.Context, filter domain.AdFilter) ([]domain.Ad, error) {
	repoLogger := r.logger(ctx, "ListAds")

	where, args := buildAdFilter(filter)
	args = append(args, filter.Limit, filter.Offset)
	query := fmt.Sprintf(`SELECT %s FROM wg_ads%s ORDER BY ts_scraped DESC, ad_id DESC LIMIT $%d OFFSET $%d`,
		adColumns, where, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		repoLogger.Error("Failed to query ads", err, port.Fields{"query": query})
		return nil, fmt.Errorf("failed to list ads: %w", err)
	}
	defer rows.Close()

	ads := make([]domain.Ad, 0, filter.Limit)
	for rows.Next() {
		var ad domain.Ad
		l := &ad.Listing
		err := rows.Scan(
			&ad.AdID, &ad.CityName, &ad.IsActive, &ad.TsDeactivated, &l.URL, &ad.TsScraped,
			&l.FlatSize, &l.FemaleFlatmates, &l.MaleFlatmates, &l.DiverseFlatmates,
			&l.LookingForFemale, &l.LookingForMale, &l.Rent, &l.RoomSize, &l.FreeFrom, &l.FreeUntil,
			&ad.AddressStreet, &ad.AddressDistrict, &ad.AddressFormatted, &ad.Latitude, &ad.Longitude, &ad.Geohash,
		)
		if err != nil {
			repoLogger.Error("Failed to scan ad", err, nil)
			return nil, fmt.Errorf("failed to scan ad: %w", err)
		}
		l.AdID = ad.AdID
		ads = append(ads, ad)
	}
	return ads, rows.Err()
}

func (r *PostgresAdRepository) Stats(ctx context.Context) ([]domain.CityStats, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT city_name,
		       COUNT(*) FILTER (WHERE is_active),
		       COUNT(*) FILTER (WHERE NOT is_active)
		FROM wg_ads
		GROUP BY city_name
		ORDER BY city_name`)
	if err != nil {
		r.logger(ctx, "Stats").Error("Failed to query stats", err, nil)
		return nil, fmt.Errorf("failed to query stats: %w", err)
	}
	defer rows.Close()

	var stats []domain.CityStats
	for rows.Next() {
		var s domain.CityStats
		if err := rows.Scan(&s.CityName, &s.Active, &s.Inactive); err != nil {
			return nil, fmt.Errorf("failed to scan stats: %w", err)
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}
