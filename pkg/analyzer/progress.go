package analyzer

import (
	"context"
	"sync/atomic"
)

// Progress is a snapshot passed to a ProgressFunc.
type Progress struct {
	Current int
	Total   int
	Failed  int
	Path    string
}

// ProgressFunc is called after each item completes.
type ProgressFunc func(Progress)

// Tracker counts completed and failed items. It is safe for concurrent use.
type Tracker struct {
	total    atomic.Int32
	current  atomic.Int32
	failed   atomic.Int32
	callback ProgressFunc
}

// NewTracker creates a tracker. callback may be nil.
func NewTracker(callback ProgressFunc) *Tracker {
	return &Tracker{callback: callback}
}

// Add grows the expected total by n.
func (t *Tracker) Add(n int) {
	t.total.Add(int32(n))
}

// Tick marks path as completed.
func (t *Tracker) Tick(path string) {
	t.done(path, false)
}

// Fail marks path as completed with an error.
func (t *Tracker) Fail(path string) {
	t.done(path, true)
}

func (t *Tracker) done(path string, failed bool) {
	if failed {
		t.failed.Add(1)
	}
	current := int(t.current.Add(1))
	if t.callback != nil {
		t.callback(Progress{
			Current: current,
			Total:   int(t.total.Load()),
			Failed:  int(t.failed.Load()),
			Path:    path,
		})
	}
}

// Current returns the number of completed items.
func (t *Tracker) Current() int {
	return int(t.current.Load())
}

// Total returns the expected total.
func (t *Tracker) Total() int {
	return int(t.total.Load())
}

// Failed returns the number of items that completed with an error.
func (t *Tracker) Failed() int {
	return int(t.failed.Load())
}

type trackerKey struct{}

// WithTracker returns a context carrying t.
func WithTracker(ctx context.Context, t *Tracker) context.Context {
	return context.WithValue(ctx, trackerKey{}, t)
}

// TrackerFromContext returns the tracker carried by ctx, or nil.
func TrackerFromContext(ctx context.Context) *Tracker {
	if t, ok := ctx.Value(trackerKey{}).(*Tracker); ok {
		return t
	}
	return nil
}
