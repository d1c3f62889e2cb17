// Package testutil provides testing utilities for metactx
package testutil

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ajitpratap0/metactx/pkg/repository"
	"github.com/ajitpratap0/metactx/pkg/storage/memory"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

// TestUser is the user test requests are made as.
const TestUser = "garygeeke"

// TestLogger creates a test logger that writes to the test output.
// The logger is automatically cleaned up when the test completes.
func TestLogger(t *testing.T) *zap.Logger {
	return zaptest.NewLogger(t)
}

// AssertEventually asserts that a condition becomes true within the specified timeout.
// It checks the condition every 10ms until it succeeds or the timeout expires.
func AssertEventually(t *testing.T, condition func() bool, timeout time.Duration, msg string) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}

	t.Fatalf("condition not met within %v: %s", timeout, msg)
}

// Clock returns a clock that starts at start and advances one second on
// every call.
func Clock(start time.Time) func() time.Time {
	var mu sync.Mutex
	now := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(time.Second)
		return now
	}
}

// GUIDs returns a generator of guid-001, guid-002, ...
func GUIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("guid-%03d", n)
	}
}

// NewRepository creates a repository over a fresh memory backend with
// predictable GUIDs and a clock starting at 2024-03-01 09:00 UTC.
func NewRepository(t *testing.T, opts ...repository.Option) *repository.Repository {
	t.Helper()
	base := []repository.Option{
		repository.WithGUIDs(GUIDs()),
		repository.WithClock(Clock(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))),
	}
	r := repository.New(memory.New(), repository.Config{MaxPageSize: 100}, TestLogger(t), append(base, opts...)...)
	t.Cleanup(func() { _ = r.Close(context.Background()) })
	return r
}

// ReportRecorder is an integration report writer that remembers every
// call.
type ReportRecorder struct {
	mu      sync.Mutex
	Created []string
	Updated []string
	Deleted []string
}

// ReportElementCreation records a creation.
func (r *ReportRecorder) ReportElementCreation(guid string) {
	r.mu.Lock()
	r.Created = append(r.Created, guid)
	r.mu.Unlock()
}

// ReportElementUpdate records an update.
func (r *ReportRecorder) ReportElementUpdate(guid string) {
	r.mu.Lock()
	r.Updated = append(r.Updated, guid)
	r.mu.Unlock()
}

// ReportElementDelete records a delete.
func (r *ReportRecorder) ReportElementDelete(guid string) {
	r.mu.Lock()
	r.Deleted = append(r.Deleted, guid)
	r.mu.Unlock()
}
