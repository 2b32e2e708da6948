// Package analyzer holds the contracts shared by covdiff's analyzers and
// the progress tracker they report through.
package analyzer

import "context"

// JobAnalyzer processes a batch of jobs, one per input file, and returns
// an aggregate result. Per-job failures are reported through the returned
// error while the result still holds the jobs that succeeded.
type JobAnalyzer[J, T any] interface {
	// Analyze processes jobs. The context carries cancellation and an
	// optional Tracker (see WithTracker).
	Analyze(ctx context.Context, jobs []J) (T, error)

	// Close releases any resources held by the analyzer.
	Close()
}
