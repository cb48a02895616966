package cli

import (
	"io"
	"time"

	"github.com/runnerr0/lifelog/internal/capture"
	"github.com/runnerr0/lifelog/internal/classifier"
)

// GlobalFlags holds flags available to all subcommands.
type GlobalFlags struct {
	Config  string `long:"config" description:"Path to config file" default:""`
	JSON    bool   `long:"json" description:"Output in JSON format"`
	Verbose bool   `long:"verbose" description:"Enable verbose output"`
	Version bool   `long:"version" description:"Show version and exit"`
}

// AddCommand captures, classifies and stores a new entry.
type AddCommand struct {
	Text   string `short:"t" long:"text" description:"Text content to log"`
	Image  string `short:"i" long:"image" description:"Path to an image to log"`
	NoEdit bool   `long:"no-edit" description:"Read the clipboard once instead of the interactive prompt"`

	globals *GlobalFlags
	version string

	// injectable for testing; nil means the real implementations
	in         io.Reader
	clipboard  capture.ClipboardReader
	classifier classifier.Classifier
}

// ListCommand lists stored entries.
type ListCommand struct {
	Limit    int    `short:"l" long:"limit" description:"Maximum entries to show" default:"10"`
	Offset   int    `long:"offset" description:"Skip first N entries" default:"0"`
	Today    bool   `long:"today" description:"Entries from today"`
	Week     bool   `long:"week" description:"Entries since Monday"`
	Month    bool   `long:"month" description:"Entries since the 1st of the month"`
	Date     string `short:"d" long:"date" description:"Entries from one day (YYYY-MM-DD)"`
	From     string `long:"from" description:"Range start day (YYYY-MM-DD)"`
	To       string `long:"to" description:"Range end day, inclusive (YYYY-MM-DD)"`
	Category string `short:"c" long:"category" description:"Filter by category"`

	globals *GlobalFlags
	version string
	now     func() time.Time
}

// StatsCommand shows aggregate statistics over a period.
type StatsCommand struct {
	Today bool   `long:"today" description:"Statistics for today"`
	Week  bool   `long:"week" description:"Statistics since Monday"`
	Month bool   `long:"month" description:"Statistics since the 1st of the month"`
	From  string `long:"from" description:"Range start day (YYYY-MM-DD)"`
	To    string `long:"to" description:"Range end day, inclusive (YYYY-MM-DD)"`

	globals *GlobalFlags
	version string
	now     func() time.Time
}

// SearchCommand searches summaries and original text by keyword.
type SearchCommand struct {
	Limit int `short:"l" long:"limit" description:"Maximum results" default:"20"`

	globals *GlobalFlags
	version string
}

// ShowCommand prints one entry in full.
type ShowCommand struct {
	ID     int64  `long:"id" description:"Entry ID (required)"`
	Format string `long:"format" description:"Output format" choice:"full" choice:"text" choice:"summary" choice:"image" default:"full"`

	globals *GlobalFlags
	version string
}

// DeleteCommand permanently deletes one entry.
type DeleteCommand struct {
	ID    int64 `long:"id" description:"Entry ID (required)"`
	Force bool  `long:"force" description:"Skip confirmation prompt"`

	globals *GlobalFlags
	version string
	in      io.Reader // injectable for testing; nil means os.Stdin
}

// SetDurationCommand manually overrides an entry's duration.
type SetDurationCommand struct {
	ID      int64 `long:"id" description:"Entry ID (required)"`
	Minutes int   `long:"minutes" description:"Duration in minutes (required)" default:"-1"`

	globals *GlobalFlags
	version string
}

// WebCommand serves the read-only JSON API.
type WebCommand struct {
	Host string `long:"host" description:"Listen host (default from config)"`
	Port int    `short:"p" long:"port" description:"Listen port (default from config)"`

	globals *GlobalFlags
	version string
}

// StatusCommand shows database health and a summary of the log.
type StatusCommand struct {
	globals *GlobalFlags
	version string
	now     func() time.Time
}
