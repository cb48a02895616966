package cli

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/runnerr0/lifelog/internal/config"
	"github.com/runnerr0/lifelog/internal/storage"
	"github.com/runnerr0/lifelog/internal/web"
)

// Execute implements the go-flags Commander interface for WebCommand.
func (c *WebCommand) Execute(args []string) error {
	return withStore(c.globals, func(ctx context.Context, cfg *config.Config, store *storage.SQLiteStore, _ *sql.DB, dbPath string) error {
		ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()

		addr := c.listenAddr(cfg)
		slog.Info("serving lifelog API", "addr", addr, "database", dbPath)
		fmt.Fprintf(os.Stderr, "Listening on http://%s (Ctrl+C to stop)\n", addr)

		srv := web.NewServer(store, store.Location(), web.WithLogger(slog.Default()))
		if err := srv.ListenAndServe(ctx, addr); err != nil {
			return fmt.Errorf("web server: %w", err)
		}
		slog.Info("web server stopped")
		return nil
	})
}

// listenAddr combines the flags with the configured defaults.
func (c *WebCommand) listenAddr(cfg *config.Config) string {
	host := cfg.Web.Host
	if c.Host != "" {
		host = c.Host
	}
	port := cfg.Web.Port
	if c.Port != 0 {
		port = c.Port
	}
	return net.JoinHostPort(host, strconv.Itoa(port))
}
