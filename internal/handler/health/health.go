// Package health serves the /healthz endpoint.
package health

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"
)

// Checker verifies that an infrastructure dependency is reachable.
type Checker interface {
	Check(ctx context.Context) error
}

// CheckerFunc adapts a function to a Checker.
type CheckerFunc func(ctx context.Context) error

func (f CheckerFunc) Check(ctx context.Context) error { return f(ctx) }

const (
	StatusOK       = "ok"
	StatusDegraded = "degraded"
	StatusError    = "error"
)

// Result is the outcome of one check.
type Result struct {
	Status    string `json:"status"`
	LatencyMS int64  `json:"latencyMs"`
	Error     string `json:"error,omitempty"`
	Optional  bool   `json:"optional,omitempty"`
}

// Report is the /healthz response body.
type Report struct {
	Status string            `json:"status"`
	Checks map[string]Result `json:"checks"`
}

type Option func(*Handler)

// Optional marks checks whose failure degrades the report without
// failing it.
func Optional(names ...string) Option {
	return func(h *Handler) {
		for _, n := range names {
			h.optional[n] = true
		}
	}
}

// WithTimeout bounds how long all checks may take together.
func WithTimeout(d time.Duration) Option {
	return func(h *Handler) { h.timeout = d }
}

type Handler struct {
	checks   map[string]Checker
	optional map[string]bool
	timeout  time.Duration
	logger   *slog.Logger
}

func NewHandler(logger *slog.Logger, checks map[string]Checker, opts ...Option) *Handler {
	h := &Handler{
		checks:   checks,
		optional: make(map[string]bool),
		timeout:  3 * time.Second,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.check)
	return r
}

// Run executes every check concurrently and folds the results.
func (h *Handler) Run(ctx context.Context) Report {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	var (
		mu     sync.Mutex
		report = Report{Status: StatusOK, Checks: make(map[string]Result, len(h.checks))}
		g      errgroup.Group
	)

	for name, c := range h.checks {
		g.Go(func() error {
			start := time.Now()
			err := c.Check(ctx)
			res := Result{
				Status:    StatusOK,
				LatencyMS: time.Since(start).Milliseconds(),
				Optional:  h.optional[name],
			}
			if err != nil {
				h.logger.Error("health check failed", "name", name, "error", err)
				res.Status = StatusError
				res.Error = err.Error()
			}

			mu.Lock()
			defer mu.Unlock()
			report.Checks[name] = res
			switch {
			case err == nil:
			case res.Optional:
				if report.Status == StatusOK {
					report.Status = StatusDegraded
				}
			default:
				report.Status = StatusError
			}
			return nil
		})
	}
	_ = g.Wait()
	return report
}

func (h *Handler) check(w http.ResponseWriter, r *http.Request) {
	report := h.Run(r.Context())

	status := http.StatusOK
	if report.Status == StatusError {
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(report)
}
