package storage

import "time"

// Record is a single persisted log entry: one capture event after
// classification.
type Record struct {
	ID              int64     `json:"id"`
	CreatedAt       time.Time `json:"created_at"`
	OriginalText    *string   `json:"original_text,omitempty"`
	ImageReference  *string   `json:"image_reference,omitempty"`
	Summary         string    `json:"summary"`
	Category        Category  `json:"category"`
	Tags            []string  `json:"tags"`
	DurationMinutes *int      `json:"duration_minutes,omitempty"`
}

// NewRecord holds the caller-supplied fields of a record about to be created.
// ID and CreatedAt are assigned by the store.
type NewRecord struct {
	Summary         string
	Category        string // normalized into the closed Category set
	OriginalText    *string
	ImageReference  *string
	Tags            []string
	DurationMinutes *int
}

// ListQuery defines filters for listing records. Zero values impose no
// constraint. StartDate and EndDate are calendar days: StartDate includes
// its whole day from 00:00, EndDate includes its whole day up to the last
// instant before midnight.
type ListQuery struct {
	Limit     int // 0 means no limit
	Offset    int
	Category  string
	StartDate time.Time
	EndDate   time.Time
}

// Backfill reports a duration rewritten on the previous record of the day.
type Backfill struct {
	RecordID int64
	Minutes  int
}

// StringPtr returns a pointer to s, or nil when s is empty.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// IntPtr returns a pointer to n.
func IntPtr(n int) *int {
	return &n
}
