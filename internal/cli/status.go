package cli

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/runnerr0/lifelog/internal/config"
	"github.com/runnerr0/lifelog/internal/render"
	"github.com/runnerr0/lifelog/internal/stats"
	"github.com/runnerr0/lifelog/internal/storage"
)

// statusJSON is the JSON output structure for the status command.
type statusJSON struct {
	Version              string          `json:"version"`
	DatabasePath         string          `json:"database_path"`
	DatabaseSizeBytes    int64           `json:"database_size_bytes"`
	TotalRecords         int             `json:"total_records"`
	TotalDurationMinutes int             `json:"total_duration_minutes"`
	FirstDay             string          `json:"first_day,omitempty"`
	LastDay              string          `json:"last_day,omitempty"`
	LastToday            *storage.Record `json:"last_today,omitempty"`
	WebURL               string          `json:"web_url"`
	WebRunning           bool            `json:"web_running"`
}

// Execute implements the go-flags Commander interface for StatusCommand.
func (c *StatusCommand) Execute(args []string) error {
	return withStore(c.globals, func(ctx context.Context, cfg *config.Config, store *storage.SQLiteStore, db *sql.DB, dbPath string) error {
		webURL := "http://" + net.JoinHostPort(cfg.Web.Host, strconv.Itoa(cfg.Web.Port))
		return c.executeWithStore(ctx, store, db, dbPath, webURL)
	})
}

// executeWithStore runs status against a provided store and db (for testing).
func (c *StatusCommand) executeWithStore(ctx context.Context, store *storage.SQLiteStore, db *sql.DB, dbPath, webURL string) error {
	report, err := stats.NewEngine(store).Statistics(ctx, stats.Range{})
	if err != nil {
		return fmt.Errorf("get stats: %w", err)
	}

	last, err := store.LastOfDay(ctx, nowIn(c.now, store.Location()))
	if err != nil {
		return fmt.Errorf("last record: %w", err)
	}

	out := statusJSON{
		Version:              c.version,
		DatabasePath:         dbPath,
		DatabaseSizeBytes:    getDatabaseSize(db, dbPath),
		TotalRecords:         report.TotalCount,
		TotalDurationMinutes: report.TotalDurationMinutes,
		LastToday:            last,
		WebURL:               webURL,
		WebRunning:           checkWeb(webURL),
	}
	out.FirstDay, out.LastDay = dayBounds(report.DailyCounts)

	if jsonOutput(c.globals) {
		return printJSON(out)
	}
	return c.printStatusHuman(out)
}

func (c *StatusCommand) printStatusHuman(s statusJSON) error {
	fmt.Println("Lifelog Status")
	fmt.Println("==============")
	fmt.Printf("Version:       %s\n", s.Version)
	fmt.Printf("Database:      %s (%s)\n", s.DatabasePath, formatBytes(s.DatabaseSizeBytes))
	fmt.Printf("Records:       %s\n", formatNumber(int64(s.TotalRecords)))
	fmt.Printf("Logged time:   %s min\n", formatNumber(int64(s.TotalDurationMinutes)))

	if s.TotalRecords > 0 {
		fmt.Printf("First day:     %s\n", s.FirstDay)
		fmt.Printf("Last day:      %s\n", s.LastDay)
	}

	fmt.Println()
	if s.LastToday != nil {
		fmt.Printf("Last today:    %s %s\n", s.LastToday.CreatedAt.Format("15:04"), s.LastToday.Summary)
		fmt.Printf("               %s\n", render.MetaLine(*s.LastToday))
	} else {
		fmt.Println("Last today:    nothing logged yet")
	}

	if s.WebRunning {
		fmt.Printf("Web API:       running (%s)\n", s.WebURL)
	} else {
		fmt.Printf("Web API:       not running (%s)\n", s.WebURL)
	}

	return nil
}

// dayBounds returns the earliest and latest keys of a daily-count map.
func dayBounds(daily map[string]int) (first, last string) {
	if len(daily) == 0 {
		return "", ""
	}
	days := make([]string, 0, len(daily))
	for d := range daily {
		days = append(days, d)
	}
	sort.Strings(days)
	return days[0], days[len(days)-1]
}

// getDatabaseSize returns the database file size in bytes.
// For on-disk databases, it uses os.Stat. For in-memory databases,
// it queries page_count * page_size.
func getDatabaseSize(db *sql.DB, dbPath string) int64 {
	if info, err := os.Stat(dbPath); err == nil {
		return info.Size()
	}

	var pageCount, pageSize int64
	if err := db.QueryRow("PRAGMA page_count").Scan(&pageCount); err != nil {
		return 0
	}
	if err := db.QueryRow("PRAGMA page_size").Scan(&pageSize); err != nil {
		return 0
	}
	return pageCount * pageSize
}

// checkWeb reports whether the web API answers its health check within
// one second.
func checkWeb(baseURL string) bool {
	if baseURL == "" {
		return false
	}
	client := &http.Client{Timeout: 1 * time.Second}
	resp, err := client.Get(strings.TrimRight(baseURL, "/") + "/health")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// formatBytes formats a byte count into a human-readable string.
func formatBytes(b int64) string {
	switch {
	case b >= 1<<30:
		return fmt.Sprintf("%.1f GB", float64(b)/float64(1<<30))
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/float64(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/float64(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}

// formatNumber formats an int64 with comma separators.
func formatNumber(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	if len(s) <= 3 {
		if neg {
			return "-" + s
		}
		return s
	}

	var result strings.Builder
	if neg {
		result.WriteString("-")
	}
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if i > 0 {
			result.WriteString(",")
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}
