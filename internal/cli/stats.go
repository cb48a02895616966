package cli

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/runnerr0/lifelog/internal/config"
	"github.com/runnerr0/lifelog/internal/render"
	"github.com/runnerr0/lifelog/internal/stats"
	"github.com/runnerr0/lifelog/internal/storage"
	"github.com/runnerr0/lifelog/internal/timeutil"
)

// Execute implements the go-flags Commander interface for StatsCommand.
func (c *StatsCommand) Execute(args []string) error {
	return withStore(c.globals, func(ctx context.Context, _ *config.Config, store *storage.SQLiteStore, _ *sql.DB, _ string) error {
		return c.executeWithStore(ctx, store)
	})
}

// executeWithStore computes statistics against a provided store (for testing).
func (c *StatsCommand) executeWithStore(ctx context.Context, store *storage.SQLiteStore) error {
	if err := atMostOne(map[string]bool{
		"--today":     c.Today,
		"--week":      c.Week,
		"--month":     c.Month,
		"--from/--to": c.From != "" || c.To != "",
	}); err != nil {
		return err
	}

	rng, title, err := c.resolveRange(store)
	if err != nil {
		return err
	}

	report, err := stats.NewEngine(store).Statistics(ctx, rng)
	if err != nil {
		return fmt.Errorf("compute statistics: %w", err)
	}

	if jsonOutput(c.globals) {
		return printJSON(report)
	}
	fmt.Print(render.New().Report(title, report))
	return nil
}

func (c *StatsCommand) resolveRange(store *storage.SQLiteStore) (stats.Range, string, error) {
	loc := store.Location()
	now := nowIn(c.now, loc)

	period := timeutil.PeriodAll
	title := "All-time statistics"
	switch {
	case c.Today:
		period, title = timeutil.PeriodToday, "Today's statistics"
	case c.Week:
		period, title = timeutil.PeriodWeek, "This week's statistics"
	case c.Month:
		period, title = timeutil.PeriodMonth, "This month's statistics"
	case c.From != "" || c.To != "":
		start, end, err := timeutil.ParseDateRange(c.From, c.To, loc)
		if err != nil {
			return stats.Range{}, "", err
		}
		return stats.Range{Start: start, End: end}, "Statistics for selected range", nil
	}

	start, err := timeutil.PeriodStart(period, now)
	if err != nil {
		return stats.Range{}, "", err
	}
	return stats.Range{Start: start}, title, nil
}
