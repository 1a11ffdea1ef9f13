package postgres

import (
	"context"
	"fmt"

	"wg-parser-service/internal/contextkeys"
	"wg-parser-service/internal/core/domain"
	"wg-parser-service/internal/core/port"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// pgxPool - часть *pgxpool.Pool, которой пользуется репозиторий
type pgxPool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresAdRepository реализует AdRepositoryPort поверх таблицы wg_ads
type PostgresAdRepository struct {
	pool pgxPool
}

func NewPostgresAdRepository(pool pgxPool) (*PostgresAdRepository, error) {
	if pool == nil {
		return nil, fmt.Errorf("postgres pool cannot be nil")
	}
	return &PostgresAdRepository{pool: pool}, nil
}

func (r *PostgresAdRepository) logger(ctx context.Context, method string) port.LoggerPort {
	return contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "PostgresAdRepository",
		"method":    method,
	})
}

// LoadRecords читает только ключ и колонки активности
func (r *PostgresAdRepository) LoadRecords(ctx context.Context, cityName string) ([]domain.AdRecord, error) {
	repoLogger := r.logger(ctx, "LoadRecords")

	rows, err := r.pool.Query(ctx, `
		SELECT ad_id, is_active, ts_deactivated
		FROM wg_ads
		WHERE city_name = $1
		ORDER BY ad_id`, cityName)
	if err != nil {
		repoLogger.Error("Failed to query records", err, port.Fields{"city": cityName})
		return nil, fmt.Errorf("failed to load records for %s: %w", cityName, err)
	}
	defer rows.Close()

	var records []domain.AdRecord
	for rows.Next() {
		rec := domain.AdRecord{CityName: cityName}
		if err := rows.Scan(&rec.AdID, &rec.IsActive, &rec.TsDeactivated); err != nil {
			repoLogger.Error("Failed to scan record", err, nil)
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate records: %w", err)
	}

	repoLogger.Debug("Records loaded", port.Fields{"city": cityName, "count": len(records)})
	return records, nil
}

// KnownAdIDs - все id города, и активные, и снятые
func (r *PostgresAdRepository) KnownAdIDs(ctx context.Context, cityName string) (map[int64]struct{}, error) {
	rows, err := r.pool.Query(ctx, `SELECT ad_id FROM wg_ads WHERE city_name = $1`, cityName)
	if err != nil {
		r.logger(ctx, "KnownAdIDs").Error("Failed to query ad ids", err, port.Fields{"city": cityName})
		return nil, fmt.Errorf("failed to load ad ids for %s: %w", cityName, err)
	}
	defer rows.Close()

	ids := make(map[int64]struct{})
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan ad id: %w", err)
		}
		ids[id] = struct{}{}
	}
	return ids, rows.Err()
}
