// Package classifier turns captured text and images into a structured
// analysis: summary, category, tags and an estimated duration.
package classifier

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"
)

// Fallback contract values.
const (
	FallbackImageSummary    = "image content"
	FallbackCategory        = "other"
	FallbackDurationMinutes = 5
	fallbackSummaryRunes    = 100
)

// ErrEmptyInput is returned when neither text nor an image is supplied.
var ErrEmptyInput = errors.New("either text or an image is required")

// Input is one capture to analyze. At least one field must be set.
type Input struct {
	Text      string
	ImagePath string
}

// Empty reports whether the input carries nothing to analyze.
func (in Input) Empty() bool {
	return strings.TrimSpace(in.Text) == "" && in.ImagePath == ""
}

// Analysis is the classifier's structured result.
type Analysis struct {
	Summary                 string   `json:"summary"`
	Category                string   `json:"category"`
	Tags                    []string `json:"tags"`
	DurationEstimateMinutes int      `json:"duration_estimate_minutes"`

	// Degraded is set when the analysis is the fallback rather than a
	// model answer; Note carries the cause.
	Degraded bool   `json:"degraded,omitempty"`
	Note     string `json:"note,omitempty"`
}

// Classifier analyzes a capture. Implementations must return a usable
// Analysis for every non-empty input, falling back on failure; the only
// error is ErrEmptyInput.
type Classifier interface {
	Analyze(ctx context.Context, in Input) (Analysis, error)
}

// Fallback builds the analysis used when the model cannot be reached or its
// answer cannot be parsed.
func Fallback(in Input, cause error) Analysis {
	summary := truncateRunes(strings.TrimSpace(in.Text), fallbackSummaryRunes)
	if summary == "" {
		summary = FallbackImageSummary
	}

	a := Analysis{
		Summary:                 summary,
		Category:                FallbackCategory,
		Tags:                    []string{},
		DurationEstimateMinutes: FallbackDurationMinutes,
		Degraded:                true,
	}
	if cause != nil {
		a.Note = cause.Error()
	}
	return a
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
