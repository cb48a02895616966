// Package stats derives aggregate reports from a snapshot of log records.
package stats

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/runnerr0/lifelog/internal/storage"
	"github.com/runnerr0/lifelog/internal/timeutil"
)

// TopTagLimit is the maximum number of tags a Report carries.
const TopTagLimit = 10

// RecordSource is the range-query primitive the engine reads from.
// *storage.SQLiteStore satisfies it.
type RecordSource interface {
	List(ctx context.Context, q storage.ListQuery) ([]storage.Record, error)
}

// Range selects records by calendar day. Either bound may be zero, meaning
// unbounded on that side. Both bounds include their whole day.
type Range struct {
	Start time.Time
	End   time.Time
}

// TagCount is one entry of the top-tag list.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// Report holds aggregates over a set of records.
type Report struct {
	TotalCount           int                      `json:"total_count"`
	TotalDurationMinutes int                      `json:"total_duration_minutes"`
	CountByCategory      map[storage.Category]int `json:"count_by_category"`
	DurationByCategory   map[storage.Category]int `json:"duration_by_category"`
	TopTags              []TagCount               `json:"top_tags"`
	DailyCounts          map[string]int           `json:"daily_counts"`
}

// Engine computes reports against a RecordSource.
type Engine struct {
	source RecordSource
}

// NewEngine creates an Engine reading from source.
func NewEngine(source RecordSource) *Engine {
	return &Engine{source: source}
}

// Statistics aggregates every record in r. It has no side effects.
func (e *Engine) Statistics(ctx context.Context, r Range) (*Report, error) {
	records, err := e.source.List(ctx, storage.ListQuery{StartDate: r.Start, EndDate: r.End})
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}
	return Compute(records), nil
}

// Compute aggregates records in memory.
func Compute(records []storage.Record) *Report {
	report := &Report{
		TotalCount:         len(records),
		CountByCategory:    make(map[storage.Category]int),
		DurationByCategory: make(map[storage.Category]int),
		DailyCounts:        make(map[string]int),
	}

	tagCounts := make(map[string]int)
	for _, rec := range records {
		report.CountByCategory[rec.Category]++
		report.DailyCounts[timeutil.DayKey(rec.CreatedAt)]++

		if rec.DurationMinutes != nil {
			report.TotalDurationMinutes += *rec.DurationMinutes
			report.DurationByCategory[rec.Category] += *rec.DurationMinutes
		}

		for _, tag := range rec.Tags {
			tagCounts[tag]++
		}
	}

	report.TopTags = topTags(tagCounts, TopTagLimit)
	return report
}

// topTags returns at most n tags ordered by count descending. Equal counts
// are ordered by tag so the result is stable for a fixed input.
func topTags(counts map[string]int, n int) []TagCount {
	tags := make([]TagCount, 0, len(counts))
	for tag, count := range counts {
		tags = append(tags, TagCount{Tag: tag, Count: count})
	}

	sort.Slice(tags, func(i, j int) bool {
		if tags[i].Count != tags[j].Count {
			return tags[i].Count > tags[j].Count
		}
		return tags[i].Tag < tags[j].Tag
	})

	if len(tags) > n {
		tags = tags[:n]
	}
	return tags
}

// CategoryShare is one row of a category breakdown.
type CategoryShare struct {
	Category        storage.Category `json:"category"`
	Count           int              `json:"count"`
	DurationMinutes int              `json:"duration_minutes"`
	Percent         float64          `json:"percent"`
}

// CategoryBreakdown flattens the report's category maps into rows sorted by
// count descending, then by category name. Percent is the share of
// TotalCount.
func (r *Report) CategoryBreakdown() []CategoryShare {
	rows := make([]CategoryShare, 0, len(r.CountByCategory))
	for cat, count := range r.CountByCategory {
		row := CategoryShare{
			Category:        cat,
			Count:           count,
			DurationMinutes: r.DurationByCategory[cat],
		}
		if r.TotalCount > 0 {
			row.Percent = float64(count) / float64(r.TotalCount) * 100
		}
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Category < rows[j].Category
	})
	return rows
}

// TotalHours converts the total duration to hours.
func (r *Report) TotalHours() float64 {
	return float64(r.TotalDurationMinutes) / 60
}
