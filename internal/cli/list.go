package cli

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/runnerr0/lifelog/internal/config"
	"github.com/runnerr0/lifelog/internal/storage"
	"github.com/runnerr0/lifelog/internal/timeutil"
)

// Execute implements the go-flags Commander interface for ListCommand.
func (c *ListCommand) Execute(args []string) error {
	return withStore(c.globals, func(ctx context.Context, _ *config.Config, store *storage.SQLiteStore, _ *sql.DB, _ string) error {
		return c.executeWithStore(ctx, store)
	})
}

// executeWithStore lists records from a provided store (for testing).
func (c *ListCommand) executeWithStore(ctx context.Context, store *storage.SQLiteStore) error {
	if err := atMostOne(map[string]bool{
		"--today":     c.Today,
		"--week":      c.Week,
		"--month":     c.Month,
		"--date":      c.Date != "",
		"--from/--to": c.From != "" || c.To != "",
	}); err != nil {
		return err
	}
	if c.Limit < 0 || c.Offset < 0 {
		return fmt.Errorf("--limit and --offset must not be negative")
	}

	loc := store.Location()
	now := nowIn(c.now, loc)

	var (
		records []storage.Record
		title   string
		err     error
	)
	switch {
	case c.Today:
		title = "Today's records"
		records, err = store.ListForDay(ctx, now)
	case c.Date != "":
		day, perr := timeutil.ParseDate(c.Date, loc)
		if perr != nil {
			return perr
		}
		title = "Records on " + c.Date
		records, err = store.ListForDay(ctx, day)
	case c.Week:
		title = "This week's records"
		records, err = store.ListForWeek(ctx, now)
	case c.Month:
		title = "This month's records"
		records, err = store.ListForMonth(ctx, now)
	default:
		start, end, perr := timeutil.ParseDateRange(c.From, c.To, loc)
		if perr != nil {
			return perr
		}
		title = "Recent records"
		if c.From != "" || c.To != "" {
			title = "Records in range"
		}
		records, err = store.List(ctx, storage.ListQuery{
			Limit:     c.Limit,
			Offset:    c.Offset,
			Category:  c.Category,
			StartDate: start,
			EndDate:   end,
		})
	}
	if err != nil {
		return fmt.Errorf("list records: %w", err)
	}

	// The period views return whole periods; category and paging narrow
	// them here.
	if c.Today || c.Week || c.Month || c.Date != "" {
		records, err = narrow(records, c.Category, c.Limit, c.Offset)
		if err != nil {
			return err
		}
	}

	return printRecords(c.globals, title, "", records)
}

// narrow applies a category filter and limit/offset paging to records.
func narrow(records []storage.Record, category string, limit, offset int) ([]storage.Record, error) {
	if category != "" {
		want, ok := storage.ParseCategory(category)
		if !ok {
			return nil, &storage.ValidationError{Field: "category", Reason: fmt.Sprintf("unknown category %q", category)}
		}
		filtered := records[:0:0]
		for _, r := range records {
			if r.Category == want {
				filtered = append(filtered, r)
			}
		}
		records = filtered
	}
	if offset >= len(records) {
		return []storage.Record{}, nil
	}
	records = records[offset:]
	if limit > 0 && limit < len(records) {
		records = records[:limit]
	}
	return records, nil
}
