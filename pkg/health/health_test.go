package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func up(context.Context) error { return nil }

func TestLivenessHandler_AlwaysReturns200(t *testing.T) {
	r := NewRegistry()
	r.Register("backend", func(context.Context) error { return fmt.Errorf("down") })
	rec := httptest.NewRecorder()

	r.LivenessHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp Report
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, StatusUp, resp.Status)
	assert.False(t, resp.Timestamp.IsZero())
}

func TestRun_AllHealthyInRegistrationOrder(t *testing.T) {
	r := NewRegistry()
	r.Register("config", up)
	r.Register("session", up)
	r.Register("backend", up)

	report := r.Run(context.Background())

	assert.Equal(t, StatusUp, report.Status)
	require.Len(t, report.Checks, 3)
	assert.Equal(t, "config", report.Checks[0].Name)
	assert.Equal(t, "session", report.Checks[1].Name)
	assert.Equal(t, "backend", report.Checks[2].Name)
}

func TestRun_NoCheckers(t *testing.T) {
	report := NewRegistry().Run(context.Background())
	assert.Equal(t, StatusUp, report.Status)
	assert.Empty(t, report.Checks)
}

func TestRun_NonCriticalDownIsDegraded(t *testing.T) {
	r := NewRegistry()
	r.RegisterCritical("backend", up)
	r.RegisterNonCritical("session", func(context.Context) error { return fmt.Errorf("redis unreachable") })

	report := r.Run(context.Background())

	assert.Equal(t, StatusDegraded, report.Status)
	session, ok := report.Check("session")
	require.True(t, ok)
	assert.Equal(t, StatusDown, session.Status)
	assert.False(t, session.Critical)
	assert.Equal(t, "redis unreachable", session.Error)
}

func TestRun_CriticalDownWins(t *testing.T) {
	r := NewRegistry()
	r.RegisterNonCritical("session", func(context.Context) error { return fmt.Errorf("redis down") })
	r.Register("backend", func(context.Context) error { return fmt.Errorf("connection refused") })

	assert.Equal(t, StatusDown, r.Run(context.Background()).Status)
}

func TestRegister_OverwriteKeepsPosition(t *testing.T) {
	r := NewRegistry()
	r.Register("backend", func(context.Context) error { return fmt.Errorf("fail") })
	r.Register("session", up)
	r.Register("backend", up)

	report := r.Run(context.Background())
	assert.Equal(t, StatusUp, report.Status)
	require.Len(t, report.Checks, 2)
	assert.Equal(t, "backend", report.Checks[0].Name)
}

func TestRun_ChecksRunConcurrently(t *testing.T) {
	r := NewRegistry()
	release := make(chan struct{})
	started := make(chan struct{}, 2)
	for _, name := range []string{"a", "b"} {
		r.Register(name, func(ctx context.Context) error {
			started <- struct{}{}
			select {
			case <-release:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
	}

	done := make(chan Report)
	go func() { done <- r.Run(context.Background()) }()

	for range 2 {
		select {
		case <-started:
		case <-time.After(2 * time.Second):
			t.Fatal("checks did not start concurrently")
		}
	}
	close(release)
	assert.Equal(t, StatusUp, (<-done).Status)
}

func TestRun_TimeoutAppliesWithoutDeadline(t *testing.T) {
	r := NewRegistry()
	r.Timeout = 20 * time.Millisecond
	r.Register("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	report := r.Run(context.Background())
	assert.Equal(t, StatusDown, report.Status)
	assert.Contains(t, report.Checks[0].Error, "deadline exceeded")
}

func TestReadinessHandler_CriticalDownReturns503(t *testing.T) {
	r := NewRegistry()
	r.Register("backend", func(context.Context) error { return fmt.Errorf("connection refused") })
	rec := httptest.NewRecorder()

	r.ReadinessHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var resp Report
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, StatusDown, resp.Status)
	assert.Equal(t, "connection refused", resp.Checks[0].Error)
}

func TestReadinessHandler_DegradedReturns200(t *testing.T) {
	r := NewRegistry()
	r.RegisterNonCritical("session", func(context.Context) error { return fmt.Errorf("down") })
	rec := httptest.NewRecorder()

	r.ReadinessHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}
