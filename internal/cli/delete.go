package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/runnerr0/lifelog/internal/config"
	"github.com/runnerr0/lifelog/internal/render"
	"github.com/runnerr0/lifelog/internal/storage"
)

// Execute implements the go-flags Commander interface for DeleteCommand.
func (c *DeleteCommand) Execute(args []string) error {
	if c.ID <= 0 {
		return fmt.Errorf("--id is required for delete command")
	}
	return withStore(c.globals, func(ctx context.Context, _ *config.Config, store *storage.SQLiteStore, _ *sql.DB, _ string) error {
		return c.executeWithStore(ctx, store)
	})
}

// executeWithStore deletes a record from a provided store (for testing).
func (c *DeleteCommand) executeWithStore(ctx context.Context, store *storage.SQLiteStore) error {
	rec, err := store.Get(ctx, c.ID)
	if err != nil {
		return err
	}
	if rec == nil {
		return fmt.Errorf("%w: #%d", storage.ErrNotFound, c.ID)
	}

	// Confirmation prompt unless --force
	if !c.Force {
		fmt.Println(render.New().Record(*rec))
		fmt.Println("This action cannot be undone.")
		fmt.Print(`Type "yes" to delete this record: `)

		in := c.in
		if in == nil {
			in = os.Stdin
		}
		if err := confirm(in, "yes"); err != nil {
			return err
		}
	}

	deleted, err := store.Delete(ctx, c.ID)
	if err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}
	if !deleted {
		return fmt.Errorf("%w: #%d", storage.ErrNotFound, c.ID)
	}

	if jsonOutput(c.globals) {
		return printJSON(map[string]any{"deleted": true, "id": c.ID})
	}
	fmt.Printf("Deleted record #%d.\n", c.ID)
	return nil
}

// confirm reads one line from in and requires it to equal want
// (case-insensitive).
func confirm(in io.Reader, want string) error {
	scanner := bufio.NewScanner(in)
	if !scanner.Scan() {
		return fmt.Errorf("aborted: no input received")
	}
	if !strings.EqualFold(strings.TrimSpace(scanner.Text()), want) {
		return fmt.Errorf("aborted: confirmation text did not match")
	}
	return nil
}
