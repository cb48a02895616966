package cli

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/runnerr0/lifelog/internal/config"
	"github.com/runnerr0/lifelog/internal/storage"
)

// Execute implements the go-flags Commander interface for SetDurationCommand.
func (c *SetDurationCommand) Execute(args []string) error {
	if c.ID <= 0 {
		return fmt.Errorf("--id is required for set-duration command")
	}
	if c.Minutes < 0 {
		return fmt.Errorf("--minutes is required and must not be negative")
	}
	return withStore(c.globals, func(ctx context.Context, _ *config.Config, store *storage.SQLiteStore, _ *sql.DB, _ string) error {
		return c.executeWithStore(ctx, store)
	})
}

// executeWithStore updates a record's duration in a provided store (for testing).
func (c *SetDurationCommand) executeWithStore(ctx context.Context, store *storage.SQLiteStore) error {
	updated, err := store.SetDuration(ctx, c.ID, c.Minutes)
	if err != nil {
		return fmt.Errorf("set duration: %w", err)
	}
	if !updated {
		return fmt.Errorf("%w: #%d", storage.ErrNotFound, c.ID)
	}

	if jsonOutput(c.globals) {
		return printJSON(map[string]any{"id": c.ID, "duration_minutes": c.Minutes})
	}
	fmt.Printf("Set duration of record #%d to %d min.\n", c.ID, c.Minutes)
	return nil
}
