package discrepancy

import (
	"fmt"

	"github.com/panbanda/covdiff/pkg/coverage"
)

// Category is the secondary classification axis of a pattern.
type Category int

const (
	// Optimization patterns come from code the compiler folds or moves.
	Optimization Category = iota
	// Structural patterns come from how a tool maps code structure to lines.
	Structural
)

// String implements fmt.Stringer.
func (c Category) String() string {
	switch c {
	case Optimization:
		return "optimization"
	case Structural:
		return "structural"
	default:
		return fmt.Sprintf("Category(%d)", int(c))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Category) UnmarshalText(text []byte) error {
	switch string(text) {
	case "optimization":
		*c = Optimization
	case "structural":
		*c = Structural
	default:
		return fmt.Errorf("unknown category %q", text)
	}
	return nil
}

// TerminatedDescription labels candidate lines no detector explains.
const TerminatedDescription = "Terminated"

// Reason is the classification of one candidate line.
type Reason struct {
	Line int           `json:"line"`
	Tool coverage.Tool `json:"tool"`
	// Detector names the pattern that explained the line; empty when the
	// line is unexplained.
	Detector    string `json:"detector,omitempty"`
	Description string `json:"description"`
	// Count is the detector's match count right after the line was
	// classified.
	Count int `json:"count,omitempty"`
}

// Explained reports whether a detector accounted for the line.
func (r Reason) Explained() bool {
	return r.Detector != ""
}

// String renders the reason in .map report form:
// "<tool>:<description>#<count>@<line>" or "Terminated@<line>".
func (r Reason) String() string {
	if !r.Explained() {
		return fmt.Sprintf("%s@%d", r.Description, r.Line)
	}
	return fmt.Sprintf("%s:%s#%d@%d", r.Tool, r.Description, r.Count, r.Line)
}

// PatternCount is one row of a report summary.
type PatternCount struct {
	Detector    string   `json:"detector"`
	Description string   `json:"description"`
	Category    Category `json:"category"`
	Count       int      `json:"count"`
}

// Report is the classification of one file's candidate lines for one tool.
type Report struct {
	Tool        coverage.Tool  `json:"tool"`
	Reasons     []Reason       `json:"reasons"`
	Summary     []PatternCount `json:"summary"`
	Total       int            `json:"total"`
	Unexplained int            `json:"unexplained"`
}

// FileResult is the classification of one annotated source file.
type FileResult struct {
	Path   string        `json:"path"`
	Source string        `json:"source"` // Path without the tool marker
	Tool   coverage.Tool `json:"tool"`
	Report *Report       `json:"report"`
}

// Analysis is the result of classifying a set of files.
type Analysis struct {
	Files   []FileResult `json:"files"`
	Summary Summary      `json:"summary"`
}

// Summary aggregates reports across files.
type Summary struct {
	TotalFiles       int            `json:"total_files"`
	CandidateLines   int            `json:"candidate_lines"`
	ExplainedLines   int            `json:"explained_lines"`
	UnexplainedLines int            `json:"unexplained_lines"`
	ByDetector       map[string]int `json:"by_detector"`
	ByTool           map[string]int `json:"by_tool"`
}

// NewAnalysis aggregates file results into an Analysis.
func NewAnalysis(files []FileResult) *Analysis {
	a := &Analysis{
		Files: files,
		Summary: Summary{
			TotalFiles: len(files),
			ByDetector: make(map[string]int),
			ByTool:     make(map[string]int),
		},
	}
	for _, f := range files {
		if f.Report == nil {
			continue
		}
		a.Summary.CandidateLines += len(f.Report.Reasons)
		a.Summary.UnexplainedLines += f.Report.Unexplained
		a.Summary.ExplainedLines += len(f.Report.Reasons) - f.Report.Unexplained
		a.Summary.ByTool[f.Tool.String()] += f.Report.Total
		for _, pc := range f.Report.Summary {
			a.Summary.ByDetector[pc.Description] += pc.Count
		}
	}
	return a
}
