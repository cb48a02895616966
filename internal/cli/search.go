package cli

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/runnerr0/lifelog/internal/config"
	"github.com/runnerr0/lifelog/internal/storage"
)

// Execute implements the go-flags Commander interface for SearchCommand.
func (c *SearchCommand) Execute(args []string) error {
	return withStore(c.globals, func(ctx context.Context, _ *config.Config, store *storage.SQLiteStore, _ *sql.DB, _ string) error {
		return c.executeWithStore(ctx, store, args)
	})
}

// executeWithStore runs the search against a provided store (for testing).
func (c *SearchCommand) executeWithStore(ctx context.Context, store *storage.SQLiteStore, args []string) error {
	keyword := strings.TrimSpace(strings.Join(args, " "))
	if keyword == "" {
		return fmt.Errorf("a search keyword is required")
	}

	results, err := store.Search(ctx, keyword, c.Limit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	return printRecords(c.globals, fmt.Sprintf("Results for %q", keyword), keyword, results)
}
