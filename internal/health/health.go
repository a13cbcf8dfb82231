// Package health serves the status endpoints of a running batch next to
// /metrics.
//
// The package exposes three endpoints:
//
//   - /healthz: liveness probe; always returns 200 OK.
//   - /readyz: readiness probe; returns 200 only when all registered
//     [Checker] functions pass.
//   - /progress: the counters of the current batch.
//
// Responses are JSON objects with a top-level "status" field ("ok" or "fail").
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// checkTimeout is the maximum time a single readiness check may take before
// the context is cancelled.
const checkTimeout = 5 * time.Second

// Checker is a named readiness check. Check returns nil when the dependency
// can serve requests.
type Checker struct {
	// Name appears as a key in the JSON response (e.g. "stt").
	Name string

	// Check probes the dependency. It must respect context cancellation.
	Check func(ctx context.Context) error
}

type result struct {
	Status   string            `json:"status"`
	Checks   map[string]string `json:"checks,omitempty"`
	Progress *Snapshot         `json:"progress,omitempty"`
}

// Progress counts the recordings of a batch. The zero value is ready to use
// and safe for concurrent use.
type Progress struct {
	total  atomic.Int64
	done   atomic.Int64
	failed atomic.Int64
}

// Snapshot is a point-in-time copy of [Progress].
type Snapshot struct {
	Total  int64 `json:"total"`
	Done   int64 `json:"done"`
	Failed int64 `json:"failed"`
}

// Start adds n recordings to the batch.
func (p *Progress) Start(n int) { p.total.Add(int64(n)) }

// Finish records one finished recording; err is its failure, if any.
func (p *Progress) Finish(err error) {
	p.done.Add(1)
	if err != nil {
		p.failed.Add(1)
	}
}

// Snapshot returns the current counters.
func (p *Progress) Snapshot() Snapshot {
	return Snapshot{Total: p.total.Load(), Done: p.done.Load(), Failed: p.failed.Load()}
}

// Handler serves the status endpoints. The checker list is fixed at
// construction time.
type Handler struct {
	checkers []Checker
	progress *Progress
}

// New creates a [Handler] that reports progress (which may be nil) and
// evaluates checkers on each /readyz request.
func New(progress *Progress, checkers ...Checker) *Handler {
	c := make([]Checker, len(checkers))
	copy(c, checkers)
	return &Handler{checkers: c, progress: progress}
}

// Healthz is a liveness probe that always returns 200 OK.
func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, result{Status: "ok"})
}

// Readyz runs every [Checker] concurrently, each with a [checkTimeout]
// deadline derived from the request context, and returns 200 only when all
// of them pass.
func (h *Handler) Readyz(w http.ResponseWriter, r *http.Request) {
	errs := make([]error, len(h.checkers))
	var wg sync.WaitGroup
	for i, c := range h.checkers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
			defer cancel()
			errs[i] = c.Check(ctx)
		}()
	}
	wg.Wait()

	res := result{Status: "ok", Checks: make(map[string]string, len(h.checkers))}
	status := http.StatusOK
	for i, c := range h.checkers {
		if errs[i] != nil {
			res.Checks[c.Name] = "fail: " + errs[i].Error()
			res.Status = "fail"
			status = http.StatusServiceUnavailable
			continue
		}
		res.Checks[c.Name] = "ok"
	}
	writeJSON(w, status, res)
}

// ProgressJSON reports the batch counters.
func (h *Handler) ProgressJSON(w http.ResponseWriter, _ *http.Request) {
	res := result{Status: "ok"}
	if h.progress != nil {
		s := h.progress.Snapshot()
		res.Progress = &s
	}
	writeJSON(w, http.StatusOK, res)
}

// Register adds the /healthz, /readyz and /progress routes to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", h.Healthz)
	mux.HandleFunc("GET /readyz", h.Readyz)
	mux.HandleFunc("GET /progress", h.ProgressJSON)
}

// writeJSON encodes v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"status":"error"}`, http.StatusInternalServerError)
	}
}
