// Package recorder runs the capture pipeline: classify a capture, then store
// it and back-fill the previous entry's duration in one step.
package recorder

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/runnerr0/lifelog/internal/capture"
	"github.com/runnerr0/lifelog/internal/classifier"
	"github.com/runnerr0/lifelog/internal/storage"
)

// RecordCreator is the store operation the pipeline writes through.
type RecordCreator interface {
	CreateWithBackfill(ctx context.Context, in storage.NewRecord) (*storage.Record, *storage.Backfill, error)
}

// ImageSaver persists a captured image and returns the stored reference.
type ImageSaver interface {
	Save(src string) (string, error)
}

// Result is the outcome of recording one capture.
type Result struct {
	Record   *storage.Record
	Backfill *storage.Backfill
	Analysis classifier.Analysis
}

// Recorder wires the classifier to the store.
type Recorder struct {
	classifier classifier.Classifier
	store      RecordCreator
	images     ImageSaver
	logger     *slog.Logger
}

// New creates a Recorder. images may be nil, in which case records reference
// the image at its original path.
func New(c classifier.Classifier, store RecordCreator, images ImageSaver, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{classifier: c, store: store, images: images, logger: logger}
}

// Record classifies content and persists it. A degraded analysis is stored
// the same as a model answer.
func (r *Recorder) Record(ctx context.Context, content capture.Content) (*Result, error) {
	if content.Empty() {
		return nil, capture.ErrNoContent
	}

	imageRef := content.ImagePath
	copied := ""
	if imageRef != "" && r.images != nil {
		saved, err := r.images.Save(imageRef)
		if err != nil {
			return nil, fmt.Errorf("store image: %w", err)
		}
		imageRef, copied = saved, saved
	}

	res, err := r.record(ctx, content.Text, imageRef)
	if err != nil && copied != "" {
		if rmErr := os.Remove(copied); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
			r.logger.Warn("remove orphaned image", "path", copied, "error", rmErr)
		}
	}
	return res, err
}

func (r *Recorder) record(ctx context.Context, text, imageRef string) (*Result, error) {
	analysis, err := r.classifier.Analyze(ctx, classifier.Input{Text: text, ImagePath: imageRef})
	if err != nil {
		return nil, fmt.Errorf("classify: %w", err)
	}
	if analysis.Degraded {
		r.logger.Warn("storing fallback analysis", "reason", analysis.Note)
	}

	rec, fill, err := r.store.CreateWithBackfill(ctx, storage.NewRecord{
		Summary:         analysis.Summary,
		Category:        analysis.Category,
		OriginalText:    storage.StringPtr(text),
		ImageReference:  storage.StringPtr(imageRef),
		Tags:            analysis.Tags,
		DurationMinutes: storage.IntPtr(analysis.DurationEstimateMinutes),
	})
	if err != nil {
		return nil, fmt.Errorf("save record: %w", err)
	}

	r.logger.Info("record saved", "id", rec.ID, "category", rec.Category)
	if fill != nil {
		r.logger.Info("backfilled previous duration", "id", fill.RecordID, "minutes", fill.Minutes)
	}

	return &Result{Record: rec, Backfill: fill, Analysis: analysis}, nil
}
