package cli

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/runnerr0/lifelog/internal/config"
	"github.com/runnerr0/lifelog/internal/logging"
	"github.com/runnerr0/lifelog/internal/render"
	"github.com/runnerr0/lifelog/internal/storage"
)

// loadConfig reads the config named by --config, or the default file
// (created with defaults on first run), and initializes logging from it.
func loadConfig(globals *GlobalFlags) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if globals != nil && globals.Config != "" {
		cfg, err = config.LoadOrCreateAt(globals.Config)
	} else {
		cfg, err = config.LoadOrCreate()
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	level := logging.ParseLevel(cfg.Logging.Level)
	jsonLogs := false
	if globals != nil {
		if globals.Verbose {
			level = slog.LevelDebug
		}
		jsonLogs = globals.JSON
	}
	logging.Init(jsonLogs, level)

	return cfg, nil
}

// openStore opens the configured database, runs migrations, and returns a
// ready-to-use store, the underlying *sql.DB and the resolved path.
func openStore(ctx context.Context, cfg *config.Config) (*storage.SQLiteStore, *sql.DB, string, error) {
	dbPath, err := cfg.DatabasePath()
	if err != nil {
		return nil, nil, "", err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, nil, "", err
	}

	db, err := storage.Open(ctx, dbPath)
	if err != nil {
		return nil, nil, "", fmt.Errorf("open database: %w", err)
	}

	store, err := storage.NewSQLiteStore(db, storage.WithLocation(loc))
	if err != nil {
		db.Close()
		return nil, nil, "", fmt.Errorf("init store: %w", err)
	}

	return store, db, dbPath, nil
}

// withStore loads config, opens the store, and runs fn against it.
func withStore(globals *GlobalFlags, fn func(ctx context.Context, cfg *config.Config, store *storage.SQLiteStore, db *sql.DB, dbPath string) error) error {
	cfg, err := loadConfig(globals)
	if err != nil {
		return err
	}

	ctx := context.Background()
	store, db, dbPath, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	defer store.Close()

	return fn(ctx, cfg, store, db, dbPath)
}

// nowIn returns the current time from now (or time.Now) in loc.
func nowIn(now func() time.Time, loc *time.Location) time.Time {
	if now == nil {
		now = time.Now
	}
	return now().In(loc)
}

func jsonOutput(globals *GlobalFlags) bool {
	return globals != nil && globals.JSON
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// recordsOutput is the JSON shape shared by list and search.
type recordsOutput struct {
	Count   int              `json:"count"`
	Query   string           `json:"query,omitempty"`
	Records []storage.Record `json:"records"`
}

func printRecords(globals *GlobalFlags, title, query string, records []storage.Record) error {
	if jsonOutput(globals) {
		return printJSON(recordsOutput{Count: len(records), Query: query, Records: records})
	}
	fmt.Print(render.New().Records(title, records))
	return nil
}

// atMostOne reports an error when more than one of the named flags is set.
func atMostOne(flags map[string]bool) error {
	var set []string
	for name, on := range flags {
		if on {
			set = append(set, name)
		}
	}
	if len(set) > 1 {
		sort.Strings(set)
		return fmt.Errorf("flags %s are mutually exclusive", strings.Join(set, ", "))
	}
	return nil
}
