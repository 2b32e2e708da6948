// Package progress draws terminal progress for long classification runs.
package progress

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/panbanda/covdiff/pkg/analyzer"
	"github.com/schollz/progressbar/v3"
)

// Tracker wraps a progress bar for file processing.
type Tracker struct {
	mu    sync.Mutex
	bar   *progressbar.ProgressBar
	label string
	out   io.Writer
	max   int
}

// NewTracker creates a progress bar on stderr with the given label and
// total count.
func NewTracker(label string, total int) *Tracker {
	return NewTrackerTo(os.Stderr, label, total)
}

// NewTrackerTo is NewTracker writing to w.
func NewTrackerTo(w io.Writer, label string, total int) *Tracker {
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetDescription(label),
		progressbar.OptionUseANSICodes(true),
		progressbar.OptionSetElapsedTime(false),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
	return &Tracker{bar: bar, label: label, out: w, max: total}
}

// Tick increments the progress by 1. Safe for concurrent use.
func (t *Tracker) Tick() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.bar.Add(1)
}

// Callback returns an analyzer.ProgressFunc that moves the bar to the
// reported position, growing it when the reported total does.
func (t *Tracker) Callback() analyzer.ProgressFunc {
	return func(p analyzer.Progress) {
		t.mu.Lock()
		defer t.mu.Unlock()
		if p.Total > t.max {
			t.max = p.Total
			t.bar.ChangeMax(p.Total)
		}
		t.bar.Set(p.Current)
	}
}

// Analyzer returns an analyzer.Tracker that drives this bar.
func (t *Tracker) Analyzer() *analyzer.Tracker {
	return analyzer.NewTracker(t.Callback())
}

// Current returns the bar's position.
func (t *Tracker) Current() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return int(t.bar.State().CurrentNum)
}

// FinishSuccess clears the bar completely (no output).
func (t *Tracker) FinishSuccess() {
	t.bar.Finish()
	t.bar.Clear()
}

// FinishSkipped clears the bar and prints a skip message.
func (t *Tracker) FinishSkipped(reason string) {
	t.bar.Finish()
	t.bar.Clear()
	fmt.Fprintf(t.out, "  %s skipped (%s)\n", t.label, reason)
}

// FinishError clears the bar and prints an error message.
func (t *Tracker) FinishError(err error) {
	t.bar.Finish()
	t.bar.Clear()
	fmt.Fprintf(t.out, "  %s error: %v\n", t.label, err)
}
