package cli

import (
	"fmt"
	"os"

	goflags "github.com/jessevdk/go-flags"
)

// commands holds references to all subcommand structs for inspection/testing.
type commands struct {
	Add         *AddCommand
	List        *ListCommand
	Stats       *StatsCommand
	Search      *SearchCommand
	Show        *ShowCommand
	Delete      *DeleteCommand
	SetDuration *SetDurationCommand
	Web         *WebCommand
	Status      *StatusCommand
}

// buildParser constructs the go-flags parser with all subcommands registered.
func buildParser(version string) (*goflags.Parser, *GlobalFlags, *commands) {
	var globals GlobalFlags

	parser := goflags.NewParser(&globals, goflags.Default)
	parser.Name = "lifelog"
	parser.LongDescription = "Personal activity log: capture what you are doing, let a model classify it, and review where the time went."

	cmds := &commands{
		Add:         &AddCommand{globals: &globals, version: version},
		List:        &ListCommand{globals: &globals, version: version},
		Stats:       &StatsCommand{globals: &globals, version: version},
		Search:      &SearchCommand{globals: &globals, version: version},
		Show:        &ShowCommand{globals: &globals, version: version},
		Delete:      &DeleteCommand{globals: &globals, version: version},
		SetDuration: &SetDurationCommand{globals: &globals, version: version},
		Web:         &WebCommand{globals: &globals, version: version},
		Status:      &StatusCommand{globals: &globals, version: version},
	}

	parser.AddCommand("add", "Capture and classify a new entry", "Capture text or an image (flags, clipboard, or interactive prompt), classify it, and store it. The previous entry of the day gets its duration back-filled.", cmds.Add)
	parser.AddCommand("list", "List entries", "List entries, newest first, for a day, week, month or date range.", cmds.List)
	parser.AddCommand("stats", "Show time statistics", "Show counts, durations, category shares and top tags for a period.", cmds.Stats)
	parser.AddCommand("search", "Search entries by keyword", "Search summaries and original text for a keyword (case-insensitive).", cmds.Search)
	parser.AddCommand("show", "Print one entry", "Print the full stored content of a specific entry.", cmds.Show)
	parser.AddCommand("delete", "Delete one entry", "Permanently delete a specific entry. Asks for confirmation unless --force.", cmds.Delete)
	parser.AddCommand("set-duration", "Override an entry's duration", "Manually set the duration in minutes of a specific entry.", cmds.SetDuration)
	parser.AddCommand("web", "Serve the JSON API", "Start the local read-only HTTP API.", cmds.Web)
	parser.AddCommand("status", "Show database health and summary", "Show database location and size, record totals, today's last entry, and whether the web API is up.", cmds.Status)

	return parser, &globals, cmds
}

// Run is the main entry point for the lifelog CLI using os.Args.
func Run(version string) error {
	return RunWithArgs(version, nil)
}

// RunWithArgs parses the given args (or os.Args if nil) and executes the matched subcommand.
func RunWithArgs(version string, args []string) error {
	// Handle --version before parser (go-flags requires a subcommand, but
	// --version is valid without one).
	checkArgs := args
	if checkArgs == nil {
		checkArgs = os.Args[1:]
	}
	for _, arg := range checkArgs {
		if arg == "--version" {
			fmt.Printf("lifelog %s\n", version)
			return nil
		}
		if arg == "--" {
			break
		}
	}

	parser, _, _ := buildParser(version)

	var err error
	if args != nil {
		_, err = parser.ParseArgs(args)
	} else {
		_, err = parser.Parse()
	}

	if err != nil {
		if flagsErr, ok := err.(*goflags.Error); ok {
			if flagsErr.Type == goflags.ErrHelp {
				return nil
			}
		}
		return err
	}

	return nil
}
