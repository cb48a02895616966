package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/runnerr0/lifelog/internal/timeutil"
)

// Store defines the record persistence operations.
type Store interface {
	Create(ctx context.Context, in NewRecord) (*Record, error)
	CreateWithBackfill(ctx context.Context, in NewRecord) (*Record, *Backfill, error)
	Get(ctx context.Context, id int64) (*Record, error)
	List(ctx context.Context, q ListQuery) ([]Record, error)
	ListForDay(ctx context.Context, date time.Time) ([]Record, error)
	ListForWeek(ctx context.Context, date time.Time) ([]Record, error)
	ListForMonth(ctx context.Context, date time.Time) ([]Record, error)
	Search(ctx context.Context, keyword string, limit int) ([]Record, error)
	Delete(ctx context.Context, id int64) (bool, error)
	LastOfDay(ctx context.Context, date time.Time) (*Record, error)
	SetDuration(ctx context.Context, id int64, minutes int) (bool, error)
	Close() error
}

// timestampLayout is fixed-width so lexical order of stored values matches
// chronological order.
const timestampLayout = "2006-01-02T15:04:05.000000000Z"

const recordColumns = `id, created_at, original_text, image_reference, summary, category, tags, duration_minutes`

// SQLiteStore implements Store backed by a SQLite database.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
	loc *time.Location

	// writeMu serializes writers so a back-fill and its insert observe a
	// stable "previous record".
	writeMu sync.Mutex

	// Prepared statements
	insertLog      *sql.Stmt
	getLog         *sql.Stmt
	deleteLog      *sql.Stmt
	updateDuration *sql.Stmt
	previousLog    *sql.Stmt
}

// Option configures a SQLiteStore.
type Option func(*SQLiteStore)

// WithClock replaces time.Now as the source of created_at.
func WithClock(now func() time.Time) Option {
	return func(s *SQLiteStore) {
		s.now = now
	}
}

// WithLocation sets the time zone that defines calendar days. Defaults to
// time.Local.
func WithLocation(loc *time.Location) Option {
	return func(s *SQLiteStore) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// Open opens (creating if needed) the SQLite database at path and applies
// migrations. Use ":memory:" for a throwaway database. The pool is limited to
// one connection: the store has a single writer and an in-memory database
// exists per connection.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, unavailable("open database", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, unavailable("open database", err)
	}

	if err := NewMigrationRunner(db).Run(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return db, nil
}

// NewSQLiteStore creates a SQLiteStore from an already-opened and migrated
// database.
func NewSQLiteStore(db *sql.DB, opts ...Option) (*SQLiteStore, error) {
	s := &SQLiteStore{
		db:  db,
		now: time.Now,
		loc: time.Local,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.prepareStatements(); err != nil {
		s.Close()
		return nil, fmt.Errorf("prepare statements: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) prepareStatements() error {
	var err error

	s.insertLog, err = s.db.Prepare(`
		INSERT INTO logs (created_at, original_text, image_reference, summary, category, tags, duration_minutes)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}

	s.getLog, err = s.db.Prepare(`SELECT ` + recordColumns + ` FROM logs WHERE id = ?`)
	if err != nil {
		return err
	}

	s.deleteLog, err = s.db.Prepare(`DELETE FROM logs WHERE id = ?`)
	if err != nil {
		return err
	}

	s.updateDuration, err = s.db.Prepare(`UPDATE logs SET duration_minutes = ? WHERE id = ?`)
	if err != nil {
		return err
	}

	s.previousLog, err = s.db.Prepare(`
		SELECT id, created_at FROM logs
		WHERE created_at >= ? AND created_at < ?
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`)
	if err != nil {
		return err
	}

	return nil
}

// Location returns the time zone that defines calendar days for this store.
func (s *SQLiteStore) Location() *time.Location {
	return s.loc
}

// Ping reports whether the database is reachable.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return unavailable("ping", err)
	}
	return nil
}

// dayStart returns midnight of d's calendar date in the store's location.
// The date components are taken as given, not converted.
func (s *SQLiteStore) dayStart(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, s.loc)
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// parseTimestamp tries the store layout first, then other common SQLite
// timestamp formats.
func parseTimestamp(s string) (time.Time, error) {
	formats := []string{
		timestampLayout,
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05.999999999",
		"2006-01-02 15:04:05",
	}
	for _, f := range formats {
		if t, err := time.Parse(f, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse timestamp: %s", s)
}

func validateNewRecord(in NewRecord) error {
	if strings.TrimSpace(in.Summary) == "" {
		return invalid("summary", "must not be empty")
	}
	if in.DurationMinutes != nil && *in.DurationMinutes < 0 {
		return invalid("duration_minutes", "must not be negative")
	}
	return nil
}

// Create inserts a new record stamped with the current time. It does not
// touch any other record.
func (s *SQLiteStore) Create(ctx context.Context, in NewRecord) (*Record, error) {
	rec, _, err := s.create(ctx, in, false)
	return rec, err
}

// CreateWithBackfill inserts a new record and, in the same transaction,
// rewrites the duration of the most recent earlier record of the same
// calendar day to the rounded number of minutes between the two. The
// returned Backfill is nil when the new record is the first of its day.
func (s *SQLiteStore) CreateWithBackfill(ctx context.Context, in NewRecord) (*Record, *Backfill, error) {
	return s.create(ctx, in, true)
}

func (s *SQLiteStore) create(ctx context.Context, in NewRecord, backfill bool) (*Record, *Backfill, error) {
	if err := validateNewRecord(in); err != nil {
		return nil, nil, err
	}

	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return nil, nil, fmt.Errorf("encode tags: %w", err)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	now := s.now().Round(0).In(s.loc)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, unavailable("begin tx", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var filled *Backfill
	if backfill {
		filled, err = s.backfillPrevious(ctx, tx, now)
		if err != nil {
			return nil, nil, err
		}
	}

	rec := &Record{
		CreatedAt:       now,
		OriginalText:    in.OriginalText,
		ImageReference:  in.ImageReference,
		Summary:         in.Summary,
		Category:        NormalizeCategory(in.Category),
		Tags:            tags,
		DurationMinutes: in.DurationMinutes,
	}

	res, err := tx.StmtContext(ctx, s.insertLog).ExecContext(ctx,
		formatTimestamp(rec.CreatedAt), nullString(rec.OriginalText), nullString(rec.ImageReference),
		rec.Summary, string(rec.Category), string(tagsJSON), nullInt(rec.DurationMinutes),
	)
	if err != nil {
		return nil, nil, unavailable("insert record", err)
	}

	rec.ID, err = res.LastInsertId()
	if err != nil {
		return nil, nil, unavailable("insert record", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, unavailable("commit", err)
	}

	return rec, filled, nil
}

// backfillPrevious finds the latest record in [start of now's day, now) and
// overwrites its duration with the elapsed minutes, rounded half away from
// zero. Records stamped after now are never considered.
func (s *SQLiteStore) backfillPrevious(ctx context.Context, tx *sql.Tx, now time.Time) (*Backfill, error) {
	var (
		id    int64
		tsStr string
	)
	err := tx.StmtContext(ctx, s.previousLog).QueryRowContext(ctx,
		formatTimestamp(timeutil.StartOfDay(now)), formatTimestamp(now),
	).Scan(&id, &tsStr)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, unavailable("find previous record", err)
	}

	prevAt, err := parseTimestamp(tsStr)
	if err != nil {
		return nil, fmt.Errorf("record %d: %w", id, err)
	}

	minutes := int(math.Round(now.Sub(prevAt).Minutes()))
	if _, err := tx.StmtContext(ctx, s.updateDuration).ExecContext(ctx, minutes, id); err != nil {
		return nil, unavailable("backfill duration", err)
	}

	return &Backfill{RecordID: id, Minutes: minutes}, nil
}

// Get retrieves a single record by ID. A missing record yields (nil, nil).
func (s *SQLiteStore) Get(ctx context.Context, id int64) (*Record, error) {
	rec, err := s.scanRecord(s.getLog.QueryRowContext(ctx, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// List returns records matching every supplied filter, newest first.
func (s *SQLiteStore) List(ctx context.Context, q ListQuery) ([]Record, error) {
	if q.Limit < 0 {
		return nil, invalid("limit", "must not be negative")
	}
	if q.Offset < 0 {
		return nil, invalid("offset", "must not be negative")
	}

	var clauses []string
	var args []any

	if q.Category != "" {
		c, ok := ParseCategory(q.Category)
		if !ok {
			return nil, invalid("category", fmt.Sprintf("unknown category %q", q.Category))
		}
		clauses = append(clauses, "category = ?")
		args = append(args, string(c))
	}
	if !q.StartDate.IsZero() {
		clauses = append(clauses, "created_at >= ?")
		args = append(args, formatTimestamp(s.dayStart(q.StartDate)))
	}
	if !q.EndDate.IsZero() {
		clauses = append(clauses, "created_at < ?")
		args = append(args, formatTimestamp(timeutil.NextDay(s.dayStart(q.EndDate))))
	}

	return s.queryRecords(ctx, clauses, args, q.Limit, q.Offset)
}

// ListForDay returns every record of date's calendar day, newest first.
func (s *SQLiteStore) ListForDay(ctx context.Context, date time.Time) ([]Record, error) {
	return s.List(ctx, ListQuery{StartDate: date, EndDate: date})
}

// ListForWeek returns records from Monday of date's week onwards.
func (s *SQLiteStore) ListForWeek(ctx context.Context, date time.Time) ([]Record, error) {
	return s.listSince(ctx, timeutil.StartOfWeek(s.dayStart(date)))
}

// ListForMonth returns records from the first day of date's month onwards.
func (s *SQLiteStore) ListForMonth(ctx context.Context, date time.Time) ([]Record, error) {
	return s.listSince(ctx, timeutil.StartOfMonth(s.dayStart(date)))
}

func (s *SQLiteStore) listSince(ctx context.Context, start time.Time) ([]Record, error) {
	return s.queryRecords(ctx,
		[]string{"created_at >= ?"}, []any{formatTimestamp(start)}, 0, 0)
}

// Search returns records whose summary or original text contains keyword as
// a literal substring, newest first. Matching follows SQLite LIKE: ASCII
// letters compare case-insensitively, other characters exactly. A zero limit
// returns every match.
func (s *SQLiteStore) Search(ctx context.Context, keyword string, limit int) ([]Record, error) {
	if keyword == "" {
		return nil, invalid("keyword", "must not be empty")
	}
	if limit < 0 {
		return nil, invalid("limit", "must not be negative")
	}

	pattern := "%" + escapeLike(keyword) + "%"
	return s.queryRecords(ctx,
		[]string{`(summary LIKE ? ESCAPE '\' OR original_text LIKE ? ESCAPE '\')`},
		[]any{pattern, pattern}, limit, 0)
}

// escapeLike makes LIKE wildcards in s match literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// Delete removes a record permanently and reports whether it existed.
func (s *SQLiteStore) Delete(ctx context.Context, id int64) (bool, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	res, err := s.deleteLog.ExecContext(ctx, id)
	if err != nil {
		return false, unavailable("delete record", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, unavailable("delete record", err)
	}
	return n > 0, nil
}

// LastOfDay returns the most recent record of date's calendar day, or nil.
func (s *SQLiteStore) LastOfDay(ctx context.Context, date time.Time) (*Record, error) {
	records, err := s.List(ctx, ListQuery{StartDate: date, EndDate: date, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return &records[0], nil
}

// SetDuration manually overrides a record's duration. It reports whether the
// record existed.
func (s *SQLiteStore) SetDuration(ctx context.Context, id int64, minutes int) (bool, error) {
	if minutes < 0 {
		return false, invalid("duration_minutes", "must not be negative")
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	res, err := s.updateDuration.ExecContext(ctx, minutes, id)
	if err != nil {
		return false, unavailable("update duration", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, unavailable("update duration", err)
	}
	return n > 0, nil
}

// queryRecords runs a filtered SELECT ordered newest first. limit 0 means
// no limit.
func (s *SQLiteStore) queryRecords(ctx context.Context, clauses []string, args []any, limit, offset int) ([]Record, error) {
	where := ""
	if len(clauses) > 0 {
		where = " WHERE " + strings.Join(clauses, " AND ")
	}

	if limit == 0 {
		limit = -1 // SQLite: no limit
	}

	query := `SELECT ` + recordColumns + ` FROM logs` + where +
		` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, unavailable("query records", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		rec, err := s.scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}

	if err := rows.Err(); err != nil {
		return nil, unavailable("query records", err)
	}

	return records, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *SQLiteStore) scanRecord(row rowScanner) (*Record, error) {
	var (
		r          Record
		tsStr      string
		category   string
		tagsJSON   string
		origText   sql.NullString
		imageRef   sql.NullString
		durationNI sql.NullInt64
	)

	err := row.Scan(&r.ID, &tsStr, &origText, &imageRef, &r.Summary, &category, &tagsJSON, &durationNI)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, unavailable("scan record", err)
	}

	ts, err := parseTimestamp(tsStr)
	if err != nil {
		return nil, fmt.Errorf("record %d: %w", r.ID, err)
	}
	r.CreatedAt = ts.In(s.loc)
	r.Category = Category(category)

	if err := json.Unmarshal([]byte(tagsJSON), &r.Tags); err != nil {
		return nil, fmt.Errorf("record %d: decode tags: %w", r.ID, err)
	}
	if r.Tags == nil {
		r.Tags = []string{}
	}

	if origText.Valid {
		r.OriginalText = &origText.String
	}
	if imageRef.Valid {
		r.ImageReference = &imageRef.String
	}
	if durationNI.Valid {
		d := int(durationNI.Int64)
		r.DurationMinutes = &d
	}

	return &r, nil
}

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

// Close releases all prepared statements. The underlying *sql.DB is NOT
// closed; that is the caller's responsibility.
func (s *SQLiteStore) Close() error {
	stmts := []*sql.Stmt{
		s.insertLog, s.getLog, s.deleteLog, s.updateDuration, s.previousLog,
	}
	for _, stmt := range stmts {
		if stmt != nil {
			stmt.Close()
		}
	}
	return nil
}
