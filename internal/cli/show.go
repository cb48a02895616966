package cli

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/runnerr0/lifelog/internal/config"
	"github.com/runnerr0/lifelog/internal/render"
	"github.com/runnerr0/lifelog/internal/storage"
)

// Execute implements the go-flags Commander interface for ShowCommand.
func (c *ShowCommand) Execute(args []string) error {
	if c.ID <= 0 {
		return fmt.Errorf("--id is required for show command")
	}
	return withStore(c.globals, func(ctx context.Context, _ *config.Config, store *storage.SQLiteStore, _ *sql.DB, _ string) error {
		return c.executeWithStore(ctx, store)
	})
}

// executeWithStore prints one record from a provided store (for testing).
func (c *ShowCommand) executeWithStore(ctx context.Context, store *storage.SQLiteStore) error {
	rec, err := store.Get(ctx, c.ID)
	if err != nil {
		return err
	}
	if rec == nil {
		return fmt.Errorf("%w: #%d", storage.ErrNotFound, c.ID)
	}

	if jsonOutput(c.globals) {
		return printJSON(rec)
	}

	switch c.Format {
	case "text":
		if rec.OriginalText == nil {
			fmt.Println("No original text")
		} else {
			fmt.Println(*rec.OriginalText)
		}
	case "summary":
		fmt.Println(rec.Summary)
	case "image":
		if rec.ImageReference == nil {
			fmt.Println("No image")
		} else {
			fmt.Println(*rec.ImageReference)
		}
	default:
		fmt.Println(render.New().Record(*rec))
	}
	return nil
}
