package cli

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/runnerr0/lifelog/internal/capture"
	"github.com/runnerr0/lifelog/internal/classifier"
	"github.com/runnerr0/lifelog/internal/config"
	"github.com/runnerr0/lifelog/internal/recorder"
	"github.com/runnerr0/lifelog/internal/render"
	"github.com/runnerr0/lifelog/internal/storage"
)

// Execute implements the go-flags Commander interface for AddCommand.
func (c *AddCommand) Execute(args []string) error {
	return withStore(c.globals, func(ctx context.Context, cfg *config.Config, store *storage.SQLiteStore, _ *sql.DB, _ string) error {
		cls := c.classifier
		if cls == nil {
			if err := cfg.ValidateClassifier(); err != nil {
				return err
			}
			cls = classifier.NewGemini(cfg.Classifier.APIKey, cfg.Classifier.Model,
				classifier.WithEndpoint(cfg.Classifier.Endpoint),
				classifier.WithTimeout(time.Duration(cfg.Classifier.TimeoutSeconds)*time.Second),
				classifier.WithMaxRetries(cfg.Classifier.MaxRetries),
			)
		}

		imageDir, err := cfg.ImageDir()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
		defer stop()

		return c.executeWithStore(ctx, store, cls, capture.NewImageStore(imageDir))
	})
}

// executeWithStore collects content, classifies it and stores the record
// (used directly by tests).
func (c *AddCommand) executeWithStore(ctx context.Context, store recorder.RecordCreator, cls classifier.Classifier, images recorder.ImageSaver) error {
	content, err := c.collect(ctx)
	if err != nil {
		return err
	}

	res, err := recorder.New(cls, store, images, slog.Default()).Record(ctx, content)
	if err != nil {
		return err
	}

	if jsonOutput(c.globals) {
		out := addOutput{Record: res.Record, Analysis: res.Analysis}
		if res.Backfill != nil {
			out.Backfill = &backfillJSON{RecordID: res.Backfill.RecordID, Minutes: res.Backfill.Minutes}
		}
		return printJSON(out)
	}

	r := render.New()
	fmt.Println(r.Analysis(res.Analysis))
	fmt.Println(r.Saved(res.Record))
	if res.Backfill != nil {
		fmt.Println(r.Backfill(res.Backfill))
	}
	return nil
}

func (c *AddCommand) collect(ctx context.Context) (capture.Content, error) {
	clip := c.clipboard
	if clip == nil {
		clip = capture.SystemClipboard
	}

	switch {
	case c.Text != "" || c.Image != "":
		return capture.Direct(c.Text, c.Image)
	case c.NoEdit:
		return capture.FromClipboard(clip)
	}

	in := c.in
	if in == nil {
		in = os.Stdin
	}
	// Keep stdout clean for --json consumers.
	var out io.Writer = os.Stdout
	if jsonOutput(c.globals) {
		out = os.Stderr
	}
	session := &capture.Interactive{In: in, Out: out, Clipboard: clip}
	return session.Collect(ctx)
}

type backfillJSON struct {
	RecordID int64 `json:"record_id"`
	Minutes  int   `json:"minutes"`
}

type addOutput struct {
	Record   *storage.Record     `json:"record"`
	Analysis classifier.Analysis `json:"analysis"`
	Backfill *backfillJSON       `json:"backfill,omitempty"`
}
