package discrepancy

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/panbanda/covdiff/pkg/coverage"
)

// ErrInvalidTool is returned when a report carries a tool id outside the
// known tools. Nothing is written.
var ErrInvalidTool = errors.New("cannot handle coverage tool id")

// ReportBuilder collects per-line reasons for one tool in arrival order.
type ReportBuilder struct {
	tool    coverage.Tool
	reasons []Reason
}

// NewReportBuilder creates a builder for tool's report.
func NewReportBuilder(tool coverage.Tool) *ReportBuilder {
	return &ReportBuilder{tool: tool}
}

// Explain records line as explained by d.
func (b *ReportBuilder) Explain(line int, d Detector) {
	b.reasons = append(b.reasons, Reason{
		Line:        line,
		Tool:        b.tool,
		Detector:    d.Name(),
		Description: d.Description(),
		Count:       d.Count(),
	})
}

// Unexplained records line as not explained by any detector.
func (b *ReportBuilder) Unexplained(line int) {
	b.reasons = append(b.reasons, Reason{
		Line:        line,
		Tool:        b.tool,
		Description: TerminatedDescription,
	})
}

// Build finishes the report. detectors supplies the summary rows; only
// those belonging to the builder's tool are listed.
func (b *ReportBuilder) Build(detectors []Detector) *Report {
	r := &Report{
		Tool:    b.tool,
		Reasons: append([]Reason(nil), b.reasons...),
		Summary: make([]PatternCount, 0, len(detectors)),
	}
	for _, d := range detectors {
		if d.Tool() != b.tool {
			continue
		}
		r.Summary = append(r.Summary, PatternCount{
			Detector:    d.Name(),
			Description: d.Description(),
			Category:    d.Category(),
			Count:       d.Count(),
		})
		r.Total += d.Count()
	}
	for _, reason := range r.Reasons {
		if !reason.Explained() {
			r.Unexplained++
		}
	}
	return r
}

// MapName returns the report file name for tool: "gcov.map" or
// "llvm-cov.map".
func MapName(tool coverage.Tool) (string, error) {
	if !tool.Valid() {
		return "", fmt.Errorf("%w: %d", ErrInvalidTool, int(tool))
	}
	return tool.String() + ".map", nil
}

// WriteTo writes the report in .map form: one reason per line, a blank
// line, one "<description>: <count>" line per pattern and a final
// "Total: <n>" line.
func (r *Report) WriteTo(w io.Writer) (int64, error) {
	if !r.Tool.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrInvalidTool, int(r.Tool))
	}
	for _, reason := range r.Reasons {
		if reason.Tool != r.Tool {
			return 0, fmt.Errorf("%w: reason for %s in %s report", ErrInvalidTool, reason.Tool, r.Tool)
		}
	}

	cw := &countingWriter{w: bufio.NewWriter(w)}
	for _, reason := range r.Reasons {
		fmt.Fprintln(cw, reason.String())
	}
	fmt.Fprintln(cw)
	for _, pc := range r.Summary {
		fmt.Fprintf(cw, "%s: %d\n", pc.Description, pc.Count)
	}
	fmt.Fprintf(cw, "Total: %d\n", r.Total)

	if cw.err != nil {
		return cw.n, cw.err
	}
	return cw.n, cw.w.Flush()
}

// WriteMap writes the report to dir/<tool>.map, creating dir if needed,
// and returns the written path.
func (r *Report) WriteMap(dir string) (string, error) {
	name, err := MapName(r.Tool)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create report: %w", err)
	}
	if _, err := r.WriteTo(f); err != nil {
		f.Close()
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", path, err)
	}
	return path, nil
}

type countingWriter struct {
	w   *bufio.Writer
	n   int64
	err error
}

func (c *countingWriter) Write(p []byte) (int, error) {
	if c.err != nil {
		return 0, c.err
	}
	n, err := c.w.Write(p)
	c.n += int64(n)
	c.err = err
	return n, err
}
