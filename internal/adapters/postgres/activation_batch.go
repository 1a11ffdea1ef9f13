package postgres

import (
	"context"
	"fmt"

	"wg-parser-service/internal/core/domain"
	"wg-parser-service/internal/core/port"

	"github.com/jackc/pgx/v5"
)

const activationTempTable = "tmp_wg_activation"

var activationColumns = []string{"ad_id", "is_active", "ts_deactivated"}

// ApplyActivationChanges пишет изменения одной транзакцией: COPY во временную таблицу,
// затем UPDATE ... FROM по ключу (city_name, ad_id). Остальные колонки и другие города не трогаются.
func (r *PostgresAdRepository) ApplyActivationChanges(ctx context.Context, cityName string, changes []domain.AdRecord) (int64, error) {
	repoLogger := r.logger(ctx, "ApplyActivationChanges").WithFields(port.Fields{
		"city":    cityName,
		"changes": len(changes),
	})

	if len(changes) == 0 {
		return 0, nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		repoLogger.Error("Failed to begin transaction", err, nil)
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		CREATE TEMP TABLE `+activationTempTable+` (
			ad_id          BIGINT PRIMARY KEY,
			is_active      BOOLEAN NOT NULL,
			ts_deactivated TIMESTAMPTZ
		) ON COMMIT DROP`)
	if err != nil {
		repoLogger.Error("Failed to create temp table", err, nil)
		return 0, fmt.Errorf("failed to create temp table: %w", err)
	}

	rows := make([][]any, 0, len(changes))
	for _, ch := range changes {
		rows = append(rows, []any{ch.AdID, ch.IsActive, ch.TsDeactivated})
	}

	copied, err := tx.CopyFrom(ctx, pgx.Identifier{activationTempTable}, activationColumns, pgx.CopyFromRows(rows))
	if err != nil {
		repoLogger.Error("Failed to copy activation changes", err, nil)
		return 0, fmt.Errorf("failed to copy to %s: %w", activationTempTable, err)
	}

	tag, err := tx.Exec(ctx, `
		UPDATE wg_ads w
		SET is_active = t.is_active,
		    ts_deactivated = t.ts_deactivated
		FROM `+activationTempTable+` t
		WHERE w.city_name = $1
		  AND w.ad_id = t.ad_id`, cityName)
	if err != nil {
		repoLogger.Error("Failed to update activation columns", err, nil)
		return 0, fmt.Errorf("failed to update activation columns: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		repoLogger.Error("Failed to commit transaction", err, nil)
		return 0, fmt.Errorf("failed to commit activation changes: %w", err)
	}

	repoLogger.Info("Activation changes committed", port.Fields{
		"copied":  copied,
		"updated": tag.RowsAffected(),
	})
	return tag.RowsAffected(), nil
}
