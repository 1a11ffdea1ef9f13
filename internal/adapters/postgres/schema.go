package postgres

import (
	"context"
	_ "embed"
	"fmt"
)

//go:embed schema.sql
var schemaSQL string

// EnsureSchema создает таблицу wg_ads и индексы, если их еще нет
func (r *PostgresAdRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schemaSQL); err != nil {
		r.logger(ctx, "EnsureSchema").Error("Failed to apply schema", err, nil)
		return fmt.Errorf("failed to apply wg_ads schema: %w", err)
	}
	return nil
}
