// Package web serves a read-only JSON API over the record store.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/runnerr0/lifelog/internal/stats"
	"github.com/runnerr0/lifelog/internal/storage"
	"github.com/runnerr0/lifelog/internal/timeutil"
)

// Paging limits for list and search endpoints.
const (
	DefaultLimit = 50
	MaxLimit     = 500
)

// RecordReader is the read side of the store the server depends on.
type RecordReader interface {
	Get(ctx context.Context, id int64) (*storage.Record, error)
	List(ctx context.Context, q storage.ListQuery) ([]storage.Record, error)
	Search(ctx context.Context, keyword string, limit int) ([]storage.Record, error)
	Ping(ctx context.Context) error
}

// Server routes API requests to the store and statistics engine.
type Server struct {
	store  RecordReader
	engine *stats.Engine
	loc    *time.Location
	now    func() time.Time
	logger *slog.Logger
	mux    *http.ServeMux
}

// Option configures a Server.
type Option func(*Server)

// WithClock replaces time.Now for period resolution.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// NewServer creates a Server. Date parameters are read as calendar days in
// loc.
func NewServer(store RecordReader, loc *time.Location, opts ...Option) *Server {
	s := &Server{
		store:  store,
		engine: stats.NewEngine(store),
		loc:    loc,
		now:    time.Now,
		logger: slog.Default(),
		mux:    http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /api/logs", s.handleListLogs)
	s.mux.HandleFunc("GET /api/logs/{id}", s.handleGetLog)
	s.mux.HandleFunc("GET /api/search", s.handleSearch)
	s.mux.HandleFunc("GET /api/stats", s.handleStats)
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	s.mux.ServeHTTP(rec, r)
	s.logger.Debug("request", "method", r.Method, "path", r.URL.Path, "status", rec.status, "elapsed", time.Since(start))
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

type listResponse struct {
	Logs  []storage.Record `json:"logs"`
	Count int              `json:"count"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		s.logger.Error("health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListLogs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit, err := intParam(q.Get("limit"), DefaultLimit, 1, MaxLimit)
	if err != nil {
		s.badRequest(w, fmt.Errorf("limit: %w", err))
		return
	}
	offset, err := intParam(q.Get("offset"), 0, 0, -1)
	if err != nil {
		s.badRequest(w, fmt.Errorf("offset: %w", err))
		return
	}
	start, end, err := timeutil.ParseDateRange(q.Get("start_date"), q.Get("end_date"), s.loc)
	if err != nil {
		s.badRequest(w, err)
		return
	}

	records, err := s.store.List(r.Context(), storage.ListQuery{
		Limit:     limit,
		Offset:    offset,
		Category:  q.Get("category"),
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		s.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Logs: records, Count: len(records)})
}

func (s *Server) handleGetLog(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		s.badRequest(w, fmt.Errorf("invalid id %q", r.PathValue("id")))
		return
	}

	rec, err := s.store.Get(r.Context(), id)
	if err != nil {
		s.storeError(w, err)
		return
	}
	if rec == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: storage.ErrNotFound.Error()})
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	keyword := q.Get("q")
	if keyword == "" {
		s.badRequest(w, errors.New("q is required"))
		return
	}
	limit, err := intParam(q.Get("limit"), DefaultLimit, 1, MaxLimit)
	if err != nil {
		s.badRequest(w, fmt.Errorf("limit: %w", err))
		return
	}

	records, err := s.store.Search(r.Context(), keyword, limit)
	if err != nil {
		s.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Logs: records, Count: len(records)})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var rng stats.Range
	if period := q.Get("period"); period != "" {
		if q.Get("start_date") != "" || q.Get("end_date") != "" {
			s.badRequest(w, errors.New("period cannot be combined with start_date or end_date"))
			return
		}
		start, err := timeutil.PeriodStart(timeutil.Period(period), s.now().In(s.loc))
		if err != nil {
			s.badRequest(w, err)
			return
		}
		rng.Start = start
	} else {
		start, end, err := timeutil.ParseDateRange(q.Get("start_date"), q.Get("end_date"), s.loc)
		if err != nil {
			s.badRequest(w, err)
			return
		}
		rng = stats.Range{Start: start, End: end}
	}

	report, err := s.engine.Statistics(r.Context(), rng)
	if err != nil {
		s.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) badRequest(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
}

func (s *Server) storeError(w http.ResponseWriter, err error) {
	if errors.Is(err, storage.ErrValidation) {
		s.badRequest(w, err)
		return
	}
	s.logger.Error("store request failed", "error", err)
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
}

// intParam parses an optional integer within [lo, hi]; hi < 0 means no
// upper bound.
func intParam(raw string, def, lo, hi int) (int, error) {
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%q is not an integer", raw)
	}
	if n < lo {
		return 0, fmt.Errorf("%d must be at least %d", n, lo)
	}
	if hi >= 0 && n > hi {
		return 0, fmt.Errorf("%d must be at most %d", n, hi)
	}
	return n, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
