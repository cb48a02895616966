package storage

import (
	"context"
	"database/sql"
)

// migrateV001 creates the logs table with its range and category indexes.
// created_at is stored as fixed-width UTC text so that string order is
// time order.
func migrateV001(ctx context.Context, tx *sql.Tx) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS logs (
			id               INTEGER PRIMARY KEY AUTOINCREMENT,
			created_at       TEXT NOT NULL,
			original_text    TEXT,
			image_reference  TEXT,
			summary          TEXT NOT NULL CHECK (summary <> ''),
			category         TEXT NOT NULL CHECK (category IN
			                   ('work', 'study', 'leisure', 'exercise', 'social', 'life', 'other')),
			tags             TEXT NOT NULL DEFAULT '[]',
			duration_minutes INTEGER
		)`,

		`CREATE INDEX IF NOT EXISTS idx_logs_created_at ON logs(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_logs_category   ON logs(category)`,
	}

	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
