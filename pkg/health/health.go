package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultTimeout bounds a whole Run when the caller's context has no deadline.
const DefaultTimeout = 5 * time.Second

// Checker is a function that checks the health of a dependency.
type Checker func(ctx context.Context) error

// Status represents the health status of a component.
type Status string

const (
	StatusUp       Status = "up"
	StatusDown     Status = "down"
	StatusDegraded Status = "degraded"
)

// CheckResult is the result of a single health check.
type CheckResult struct {
	Name     string        `json:"name"`
	Status   Status        `json:"status"`
	Critical bool          `json:"critical"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration_ns"`
}

// Report is the outcome of running every registered check, in registration
// order.
type Report struct {
	Status    Status        `json:"status"`
	Timestamp time.Time     `json:"timestamp"`
	Checks    []CheckResult `json:"checks,omitempty"`
}

// Check returns the result for name.
func (r Report) Check(name string) (CheckResult, bool) {
	for _, c := range r.Checks {
		if c.Name == name {
			return c, true
		}
	}
	return CheckResult{}, false
}

type check struct {
	name     string
	checker  Checker
	critical bool
}

// Registry runs named checks concurrently. A failing critical check makes the
// report down; a failing non-critical check only degrades it.
type Registry struct {
	mu      sync.RWMutex
	checks  []check
	Timeout time.Duration
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{Timeout: DefaultTimeout}
}

// Register adds a critical checker. Registering a name again replaces the
// previous checker in place.
func (r *Registry) Register(name string, checker Checker) {
	r.add(check{name: name, checker: checker, critical: true})
}

// RegisterCritical is an alias for Register.
func (r *Registry) RegisterCritical(name string, checker Checker) {
	r.Register(name, checker)
}

// RegisterNonCritical adds a checker whose failure only degrades the report.
func (r *Registry) RegisterNonCritical(name string, checker Checker) {
	r.add(check{name: name, checker: checker, critical: false})
}

func (r *Registry) add(c check) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.checks {
		if r.checks[i].name == c.name {
			r.checks[i] = c
			return
		}
	}
	r.checks = append(r.checks, c)
}

// Run executes all checks concurrently and aggregates their results.
func (r *Registry) Run(ctx context.Context) Report {
	if _, ok := ctx.Deadline(); !ok && r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	r.mu.RLock()
	checks := append([]check(nil), r.checks...)
	r.mu.RUnlock()

	results := make([]CheckResult, len(checks))
	g, gctx := errgroup.WithContext(ctx)
	for i, c := range checks {
		g.Go(func() error {
			start := time.Now()
			res := CheckResult{Name: c.name, Status: StatusUp, Critical: c.critical}
			if err := c.checker(gctx); err != nil {
				res.Status = StatusDown
				res.Error = err.Error()
			}
			res.Duration = time.Since(start)
			results[i] = res
			// Failures are reported, not propagated, so siblings keep running.
			return nil
		})
	}
	_ = g.Wait()

	overall := StatusUp
	for _, res := range results {
		if res.Status != StatusDown {
			continue
		}
		if res.Critical {
			overall = StatusDown
			break
		}
		overall = StatusDegraded
	}

	return Report{
		Status:    overall,
		Timestamp: time.Now().UTC(),
		Checks:    results,
	}
}

// LivenessHandler returns a simple liveness check (always 200 if the process is running).
func (r *Registry) LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeReport(w, http.StatusOK, Report{Status: StatusUp, Timestamp: time.Now().UTC()})
	}
}

// ReadinessHandler runs all checks and returns 200, or 503 when a critical
// check is down.
func (r *Registry) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		report := r.Run(req.Context())
		code := http.StatusOK
		if report.Status == StatusDown {
			code = http.StatusServiceUnavailable
		}
		writeReport(w, code, report)
	}
}

func writeReport(w http.ResponseWriter, code int, report Report) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(report)
}
