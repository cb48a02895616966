package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock hands out a settable time.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Set(t time.Time) { c.t = t }

func at(day, hour, min, sec int) time.Time {
	return time.Date(2024, time.January, day, hour, min, sec, 0, time.UTC)
}

// openTestStore creates a migrated in-memory store whose clock is driven by
// the returned fakeClock.
func openTestStore(t *testing.T) (*SQLiteStore, *fakeClock) {
	t.Helper()
	ctx := context.Background()

	db, err := Open(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	clock := &fakeClock{t: at(1, 9, 0, 0)}
	store, err := NewSQLiteStore(db, WithClock(clock.Now), WithLocation(time.UTC))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return store, clock
}

func mustCreate(t *testing.T, store *SQLiteStore, clock *fakeClock, ts time.Time, in NewRecord) *Record {
	t.Helper()
	clock.Set(ts)
	rec, err := store.Create(context.Background(), in)
	require.NoError(t, err)
	return rec
}

// --- Create + Get roundtrip ---

func TestCreate_GetRoundtrip(t *testing.T) {
	store, clock := openTestStore(t)
	ctx := context.Background()
	clock.Set(at(1, 9, 0, 0))

	created, err := store.Create(ctx, NewRecord{
		Summary:         "Reviewed pull requests",
		Category:        "work",
		OriginalText:    StringPtr("reviewing PRs for the storage layer"),
		ImageReference:  StringPtr("/images/capture_1.png"),
		Tags:            []string{"code-review", "go"},
		DurationMinutes: IntPtr(30),
	})
	require.NoError(t, err)
	assert.Greater(t, created.ID, int64(0))
	assert.True(t, created.CreatedAt.Equal(at(1, 9, 0, 0)))

	got, err := store.Get(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, created.ID, got.ID)
	assert.True(t, created.CreatedAt.Equal(got.CreatedAt))
	assert.Equal(t, "Reviewed pull requests", got.Summary)
	assert.Equal(t, CategoryWork, got.Category)
	assert.Equal(t, []string{"code-review", "go"}, got.Tags)
	require.NotNil(t, got.OriginalText)
	assert.Equal(t, "reviewing PRs for the storage layer", *got.OriginalText)
	require.NotNil(t, got.ImageReference)
	assert.Equal(t, "/images/capture_1.png", *got.ImageReference)
	require.NotNil(t, got.DurationMinutes)
	assert.Equal(t, 30, *got.DurationMinutes)
}

func TestCreate_OptionalFieldsAbsent(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, NewRecord{Summary: "Image only", Category: "life"})
	require.NoError(t, err)
	assert.Equal(t, []string{}, created.Tags)

	got, err := store.Get(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Nil(t, got.OriginalText)
	assert.Nil(t, got.ImageReference)
	assert.Nil(t, got.DurationMinutes)
	assert.Equal(t, []string{}, got.Tags)
}

func TestCreate_EmptySummaryFails(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	for _, summary := range []string{"", "   "} {
		rec, err := store.Create(ctx, NewRecord{Summary: summary, Category: "work"})
		assert.Nil(t, rec)
		assert.True(t, errors.Is(err, ErrValidation), "summary %q: got %v", summary, err)

		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, "summary", verr.Field)
	}

	records, err := store.List(ctx, ListQuery{})
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestCreate_NegativeDurationFails(t *testing.T) {
	store, _ := openTestStore(t)

	_, err := store.Create(context.Background(), NewRecord{Summary: "x", DurationMinutes: IntPtr(-1)})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCreate_NormalizesCategory(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	tests := []struct {
		input    string
		expected Category
	}{
		{"work", CategoryWork},
		{"  Study ", CategoryStudy},
		{"EXERCISE", CategoryExercise},
		{"娱乐", CategoryLeisure},
		{"gaming", CategoryOther},
		{"", CategoryOther},
	}

	for _, tc := range tests {
		rec, err := store.Create(ctx, NewRecord{Summary: "s", Category: tc.input})
		require.NoError(t, err)
		assert.Equal(t, tc.expected, rec.Category, "category for %q", tc.input)

		got, err := store.Get(ctx, rec.ID)
		require.NoError(t, err)
		assert.Equal(t, tc.expected, got.Category, "stored category for %q", tc.input)
	}
}

func TestCreate_UniqueIDsAndNonDecreasingTimestamps(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, ":memory:")
	require.NoError(t, err)
	defer db.Close()

	store, err := NewSQLiteStore(db)
	require.NoError(t, err)
	defer store.Close()

	seen := map[int64]bool{}
	var prev *Record
	for i := 0; i < 20; i++ {
		rec, err := store.Create(ctx, NewRecord{Summary: fmt.Sprintf("entry %d", i), Category: "other"})
		require.NoError(t, err)
		assert.False(t, seen[rec.ID], "duplicate id %d", rec.ID)
		seen[rec.ID] = true
		if prev != nil {
			assert.Greater(t, rec.ID, prev.ID)
			assert.False(t, rec.CreatedAt.Before(prev.CreatedAt), "created_at went backwards")
		}
		prev = rec
	}
}

func TestCreate_KeepsSubSecondOrdering(t *testing.T) {
	store, clock := openTestStore(t)
	base := at(1, 9, 0, 0)

	first := mustCreate(t, store, clock, base.Add(900*time.Millisecond), NewRecord{Summary: "first"})
	second := mustCreate(t, store, clock, base.Add(1*time.Second), NewRecord{Summary: "second"})

	records, err := store.List(context.Background(), ListQuery{})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, second.ID, records[0].ID)
	assert.Equal(t, first.ID, records[1].ID)
	assert.True(t, records[1].CreatedAt.Equal(base.Add(900*time.Millisecond)))
}

func TestGet_NotFound(t *testing.T) {
	store, _ := openTestStore(t)

	got, err := store.Get(context.Background(), 4242)
	assert.NoError(t, err)
	assert.Nil(t, got)
}

// --- List ---

func TestList_NewestFirstWithPagination(t *testing.T) {
	store, clock := openTestStore(t)
	ctx := context.Background()

	var ids []int64
	for i := 0; i < 5; i++ {
		rec := mustCreate(t, store, clock, at(1, 9+i, 0, 0), NewRecord{Summary: fmt.Sprintf("entry %d", i)})
		ids = append(ids, rec.ID)
	}

	all, err := store.List(ctx, ListQuery{})
	require.NoError(t, err)
	require.Len(t, all, 5)
	for i, rec := range all {
		assert.Equal(t, ids[4-i], rec.ID)
	}

	page1, err := store.List(ctx, ListQuery{Limit: 2})
	require.NoError(t, err)
	page2, err := store.List(ctx, ListQuery{Limit: 2, Offset: 2})
	require.NoError(t, err)
	page3, err := store.List(ctx, ListQuery{Limit: 2, Offset: 4})
	require.NoError(t, err)

	assert.Equal(t, []int64{ids[4], ids[3]}, recordIDs(page1))
	assert.Equal(t, []int64{ids[2], ids[1]}, recordIDs(page2))
	assert.Equal(t, []int64{ids[0]}, recordIDs(page3))
}

func TestList_CategoryFilter(t *testing.T) {
	store, clock := openTestStore(t)
	ctx := context.Background()

	mustCreate(t, store, clock, at(1, 9, 0, 0), NewRecord{Summary: "coding", Category: "work"})
	mustCreate(t, store, clock, at(1, 10, 0, 0), NewRecord{Summary: "reading", Category: "study"})
	mustCreate(t, store, clock, at(1, 11, 0, 0), NewRecord{Summary: "meeting", Category: "work"})

	results, err := store.List(ctx, ListQuery{Category: "work"})
	require.NoError(t, err)
	assert.Len(t, results, 2)
	for _, r := range results {
		assert.Equal(t, CategoryWork, r.Category)
	}

	_, err = store.List(ctx, ListQuery{Category: "gaming"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestList_DayInclusiveBounds(t *testing.T) {
	store, clock := openTestStore(t)
	ctx := context.Background()

	before := mustCreate(t, store, clock, at(1, 23, 59, 59), NewRecord{Summary: "before"})
	startEdge := mustCreate(t, store, clock, at(2, 0, 0, 0), NewRecord{Summary: "start edge"})
	endEdge := mustCreate(t, store, clock, at(3, 23, 59, 59).Add(999*time.Millisecond), NewRecord{Summary: "end edge"})
	after := mustCreate(t, store, clock, at(4, 0, 0, 0), NewRecord{Summary: "after"})

	results, err := store.List(ctx, ListQuery{StartDate: at(2, 15, 0, 0), EndDate: at(3, 8, 0, 0)})
	require.NoError(t, err)
	assert.Equal(t, []int64{endEdge.ID, startEdge.ID}, recordIDs(results))

	onlyStart, err := store.List(ctx, ListQuery{StartDate: at(3, 0, 0, 0)})
	require.NoError(t, err)
	assert.Equal(t, []int64{after.ID, endEdge.ID}, recordIDs(onlyStart))

	onlyEnd, err := store.List(ctx, ListQuery{EndDate: at(1, 0, 0, 0)})
	require.NoError(t, err)
	assert.Equal(t, []int64{before.ID}, recordIDs(onlyEnd))
}

func TestList_RejectsNegativePaging(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	_, err := store.List(ctx, ListQuery{Limit: -1})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = store.List(ctx, ListQuery{Offset: -3})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestList_EmptyStoreReturnsEmptySlice(t *testing.T) {
	store, _ := openTestStore(t)

	results, err := store.List(context.Background(), ListQuery{})
	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestListForDay_MatchesFilteredFullList(t *testing.T) {
	store, clock := openTestStore(t)
	ctx := context.Background()

	times := []time.Time{
		at(1, 23, 30, 0), at(2, 0, 0, 0), at(2, 8, 15, 0),
		at(2, 23, 59, 59).Add(999 * time.Millisecond), at(3, 0, 0, 0),
	}
	for i, ts := range times {
		mustCreate(t, store, clock, ts, NewRecord{Summary: fmt.Sprintf("entry %d", i)})
	}

	day, err := store.ListForDay(ctx, at(2, 12, 0, 0))
	require.NoError(t, err)

	all, err := store.List(ctx, ListQuery{})
	require.NoError(t, err)

	var expected []int64
	for _, r := range all {
		if !r.CreatedAt.Before(at(2, 0, 0, 0)) && r.CreatedAt.Before(at(3, 0, 0, 0)) {
			expected = append(expected, r.ID)
		}
	}
	assert.Len(t, day, 3)
	assert.Equal(t, expected, recordIDs(day))
}

func TestListForWeekAndMonth(t *testing.T) {
	store, clock := openTestStore(t)
	ctx := context.Background()

	// 2024-01-15 is a Monday.
	december := mustCreate(t, store, clock, time.Date(2023, time.December, 31, 12, 0, 0, 0, time.UTC), NewRecord{Summary: "december"})
	sunday := mustCreate(t, store, clock, at(14, 12, 0, 0), NewRecord{Summary: "sunday"})
	monday := mustCreate(t, store, clock, at(15, 0, 0, 0), NewRecord{Summary: "monday"})
	thursday := mustCreate(t, store, clock, at(18, 9, 0, 0), NewRecord{Summary: "thursday"})

	week, err := store.ListForWeek(ctx, at(17, 10, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, []int64{thursday.ID, monday.ID}, recordIDs(week))

	month, err := store.ListForMonth(ctx, at(17, 10, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, []int64{thursday.ID, monday.ID, sunday.ID}, recordIDs(month))
	assert.NotContains(t, recordIDs(month), december.ID)
}

// --- Search ---

func TestSearch_SubstringInSummaryOrText(t *testing.T) {
	store, clock := openTestStore(t)
	ctx := context.Background()

	inSummary := mustCreate(t, store, clock, at(1, 12, 0, 0), NewRecord{Summary: "Had lunch with team"})
	inText := mustCreate(t, store, clock, at(1, 13, 0, 0), NewRecord{
		Summary: "Meal", OriginalText: StringPtr("quick lunchbox at desk"),
	})
	mustCreate(t, store, clock, at(1, 14, 0, 0), NewRecord{Summary: "Dinner plans", OriginalText: StringPtr("launch party")})

	results, err := store.Search(ctx, "lunch", 10)
	require.NoError(t, err)
	assert.Equal(t, []int64{inText.ID, inSummary.ID}, recordIDs(results))
}

func TestSearch_WildcardsAreLiteral(t *testing.T) {
	store, clock := openTestStore(t)
	ctx := context.Background()

	pct := mustCreate(t, store, clock, at(1, 9, 0, 0), NewRecord{Summary: "finished 100% of tasks"})
	mustCreate(t, store, clock, at(1, 10, 0, 0), NewRecord{Summary: "finished 1000 tasks"})
	under := mustCreate(t, store, clock, at(1, 11, 0, 0), NewRecord{Summary: "renamed file_a"})
	mustCreate(t, store, clock, at(1, 12, 0, 0), NewRecord{Summary: "renamed fileXa"})

	results, err := store.Search(ctx, "100%", 10)
	require.NoError(t, err)
	assert.Equal(t, []int64{pct.ID}, recordIDs(results))

	results, err = store.Search(ctx, "file_a", 10)
	require.NoError(t, err)
	assert.Equal(t, []int64{under.ID}, recordIDs(results))
}

func TestSearch_ASCIICaseInsensitive(t *testing.T) {
	store, clock := openTestStore(t)

	rec := mustCreate(t, store, clock, at(1, 12, 0, 0), NewRecord{Summary: "LUNCH break"})

	results, err := store.Search(context.Background(), "lunch", 10)
	require.NoError(t, err)
	assert.Equal(t, []int64{rec.ID}, recordIDs(results))
}

func TestSearch_LimitAndValidation(t *testing.T) {
	store, clock := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		mustCreate(t, store, clock, at(1, 9+i, 0, 0), NewRecord{Summary: "coffee break"})
	}

	results, err := store.Search(ctx, "coffee", 2)
	require.NoError(t, err)
	assert.Len(t, results, 2)

	_, err = store.Search(ctx, "", 10)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = store.Search(ctx, "coffee", -1)
	assert.ErrorIs(t, err, ErrValidation)
}

// --- Delete ---

func TestDelete(t *testing.T) {
	store, clock := openTestStore(t)
	ctx := context.Background()

	rec := mustCreate(t, store, clock, at(1, 9, 0, 0), NewRecord{Summary: "delete me"})

	existed, err := store.Delete(ctx, rec.ID)
	require.NoError(t, err)
	assert.True(t, existed)

	got, err := store.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDelete_NotFoundLeavesStateUnchanged(t *testing.T) {
	store, clock := openTestStore(t)
	ctx := context.Background()

	mustCreate(t, store, clock, at(1, 9, 0, 0), NewRecord{Summary: "keep me"})
	before, err := store.List(ctx, ListQuery{})
	require.NoError(t, err)

	existed, err := store.Delete(ctx, 9999)
	require.NoError(t, err)
	assert.False(t, existed)

	after, err := store.List(ctx, ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

// --- LastOfDay ---

func TestLastOfDay(t *testing.T) {
	store, clock := openTestStore(t)
	ctx := context.Background()

	mustCreate(t, store, clock, at(1, 9, 0, 0), NewRecord{Summary: "morning"})
	evening := mustCreate(t, store, clock, at(1, 21, 0, 0), NewRecord{Summary: "evening"})
	mustCreate(t, store, clock, at(2, 7, 0, 0), NewRecord{Summary: "next day"})

	last, err := store.LastOfDay(ctx, at(1, 0, 0, 0))
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, evening.ID, last.ID)

	none, err := store.LastOfDay(ctx, at(5, 0, 0, 0))
	require.NoError(t, err)
	assert.Nil(t, none)
}

// --- Back-fill ---

func TestCreateWithBackfill_Scenario(t *testing.T) {
	store, clock := openTestStore(t)
	ctx := context.Background()

	clock.Set(at(1, 9, 0, 0))
	a, fill, err := store.CreateWithBackfill(ctx, NewRecord{Summary: "A", Category: "work", DurationMinutes: IntPtr(5)})
	require.NoError(t, err)
	assert.Nil(t, fill, "first record of the day has nothing to back-fill")

	clock.Set(at(1, 9, 20, 0))
	b, fill, err := store.CreateWithBackfill(ctx, NewRecord{Summary: "B", Category: "study", DurationMinutes: IntPtr(45)})
	require.NoError(t, err)
	require.NotNil(t, fill)
	assert.Equal(t, Backfill{RecordID: a.ID, Minutes: 20}, *fill)

	gotA, err := store.Get(ctx, a.ID)
	require.NoError(t, err)
	require.NotNil(t, gotA.DurationMinutes)
	assert.Equal(t, 20, *gotA.DurationMinutes)

	gotB, err := store.Get(ctx, b.ID)
	require.NoError(t, err)
	require.NotNil(t, gotB.DurationMinutes)
	assert.Equal(t, 45, *gotB.DurationMinutes, "newest record keeps its estimate")
}

func TestCreateWithBackfill_Rounding(t *testing.T) {
	tests := []struct {
		name     string
		gap      time.Duration
		expected int
	}{
		{"exact minutes", 15 * time.Minute, 15},
		{"rounds down below half", 10*time.Minute + 29*time.Second, 10},
		{"rounds up at half", 10*time.Minute + 30*time.Second, 11},
		{"under half a minute", 20 * time.Second, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store, clock := openTestStore(t)
			ctx := context.Background()

			prev := mustCreate(t, store, clock, at(1, 9, 0, 0), NewRecord{Summary: "prev"})

			clock.Set(at(1, 9, 0, 0).Add(tc.gap))
			_, fill, err := store.CreateWithBackfill(ctx, NewRecord{Summary: "next"})
			require.NoError(t, err)
			require.NotNil(t, fill)
			assert.Equal(t, prev.ID, fill.RecordID)
			assert.Equal(t, tc.expected, fill.Minutes)
		})
	}
}

func TestCreateWithBackfill_DifferentDayIsNeverFilled(t *testing.T) {
	store, clock := openTestStore(t)
	ctx := context.Background()

	late := mustCreate(t, store, clock, at(1, 23, 50, 0), NewRecord{Summary: "late night", DurationMinutes: IntPtr(5)})

	clock.Set(at(2, 0, 10, 0))
	_, fill, err := store.CreateWithBackfill(ctx, NewRecord{Summary: "after midnight"})
	require.NoError(t, err)
	assert.Nil(t, fill)

	got, err := store.Get(ctx, late.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, *got.DurationMinutes)
}

func TestCreateWithBackfill_OnlyImmediatePredecessor(t *testing.T) {
	store, clock := openTestStore(t)
	ctx := context.Background()

	first := mustCreate(t, store, clock, at(1, 9, 0, 0), NewRecord{Summary: "first", DurationMinutes: IntPtr(3)})
	second := mustCreate(t, store, clock, at(1, 9, 30, 0), NewRecord{Summary: "second"})

	clock.Set(at(1, 10, 0, 0))
	_, fill, err := store.CreateWithBackfill(ctx, NewRecord{Summary: "third"})
	require.NoError(t, err)
	require.NotNil(t, fill)
	assert.Equal(t, second.ID, fill.RecordID)
	assert.Equal(t, 30, fill.Minutes)

	gotFirst, err := store.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, *gotFirst.DurationMinutes)
}

func TestCreateWithBackfill_BackdatedClockFillsEarlierRecord(t *testing.T) {
	store, clock := openTestStore(t)
	ctx := context.Background()

	nine := mustCreate(t, store, clock, at(1, 9, 0, 0), NewRecord{Summary: "nine"})
	ten := mustCreate(t, store, clock, at(1, 10, 0, 0), NewRecord{Summary: "ten", DurationMinutes: IntPtr(7)})

	clock.Set(at(1, 9, 30, 0))
	_, fill, err := store.CreateWithBackfill(ctx, NewRecord{Summary: "backdated"})
	require.NoError(t, err)
	require.NotNil(t, fill)
	assert.Equal(t, Backfill{RecordID: nine.ID, Minutes: 30}, *fill)

	gotTen, err := store.Get(ctx, ten.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, *gotTen.DurationMinutes, "records after the new timestamp are untouched")
}

func TestCreateWithBackfill_InvalidInputFillsNothing(t *testing.T) {
	store, clock := openTestStore(t)
	ctx := context.Background()

	prev := mustCreate(t, store, clock, at(1, 9, 0, 0), NewRecord{Summary: "prev", DurationMinutes: IntPtr(5)})

	clock.Set(at(1, 9, 40, 0))
	rec, fill, err := store.CreateWithBackfill(ctx, NewRecord{Summary: ""})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Nil(t, rec)
	assert.Nil(t, fill)

	got, err := store.Get(ctx, prev.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, *got.DurationMinutes)
}

func TestCreateWithBackfill_CancelledContextRollsBack(t *testing.T) {
	store, clock := openTestStore(t)

	prev := mustCreate(t, store, clock, at(1, 9, 0, 0), NewRecord{Summary: "prev", DurationMinutes: IntPtr(5)})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	clock.Set(at(1, 9, 40, 0))
	_, _, err := store.CreateWithBackfill(ctx, NewRecord{Summary: "never stored"})
	require.Error(t, err)

	got, err := store.Get(context.Background(), prev.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, *got.DurationMinutes)

	all, err := store.List(context.Background(), ListQuery{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestCreate_DoesNotBackfill(t *testing.T) {
	store, clock := openTestStore(t)
	ctx := context.Background()

	prev := mustCreate(t, store, clock, at(1, 9, 0, 0), NewRecord{Summary: "prev", DurationMinutes: IntPtr(5)})
	mustCreate(t, store, clock, at(1, 9, 40, 0), NewRecord{Summary: "next"})

	got, err := store.Get(ctx, prev.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, *got.DurationMinutes)
}

// --- SetDuration ---

func TestSetDuration(t *testing.T) {
	store, clock := openTestStore(t)
	ctx := context.Background()

	rec := mustCreate(t, store, clock, at(1, 9, 0, 0), NewRecord{Summary: "manual"})

	ok, err := store.SetDuration(ctx, rec.ID, 90)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := store.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, 90, *got.DurationMinutes)

	ok, err = store.SetDuration(ctx, 9999, 10)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = store.SetDuration(ctx, rec.ID, -5)
	assert.ErrorIs(t, err, ErrValidation)
}

// --- Errors ---

func TestStoreUnavailable(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, ":memory:")
	require.NoError(t, err)

	store, err := NewSQLiteStore(db)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = store.List(ctx, ListQuery{})
	assert.ErrorIs(t, err, ErrStoreUnavailable)

	_, err = store.Create(ctx, NewRecord{Summary: "x"})
	assert.ErrorIs(t, err, ErrStoreUnavailable)

	assert.ErrorIs(t, store.Ping(ctx), ErrStoreUnavailable)
}

// --- JSON representation ---

func TestRecord_JSON(t *testing.T) {
	store, clock := openTestStore(t)

	rec := mustCreate(t, store, clock, at(1, 9, 0, 0), NewRecord{Summary: "json", Category: "social", Tags: []string{"friends"}})

	data, err := json.Marshal(rec)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, "2024-01-01T09:00:00Z", out["created_at"])
	assert.Equal(t, "social", out["category"])
	assert.Equal(t, []any{"friends"}, out["tags"])
	assert.NotContains(t, out, "duration_minutes")
	assert.NotContains(t, out, "original_text")
}

func TestClose(t *testing.T) {
	store, _ := openTestStore(t)
	assert.NoError(t, store.Close())
}

func recordIDs(records []Record) []int64 {
	ids := make([]int64, len(records))
	for i, r := range records {
		ids[i] = r.ID
	}
	return ids
}
