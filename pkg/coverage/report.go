package coverage

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"
)

// LineState is a tool's verdict for one source line.
type LineState int

const (
	// NotExecutable lines carry no instrumentation.
	NotExecutable LineState = iota
	// NotExecuted lines are instrumented but were never reached.
	NotExecuted
	// Executed lines ran at least once.
	Executed
)

// String implements fmt.Stringer.
func (s LineState) String() string {
	switch s {
	case NotExecuted:
		return "not-executed"
	case Executed:
		return "executed"
	default:
		return "not-executable"
	}
}

// LineCoverage is one tool's per-line coverage of one source file.
type LineCoverage struct {
	Tool   Tool
	Source string // source file named by the report header, if any

	executable *roaring.Bitmap
	executed   *roaring.Bitmap
}

// NewLineCoverage returns an empty report for tool.
func NewLineCoverage(tool Tool) *LineCoverage {
	return &LineCoverage{
		Tool:       tool,
		executable: roaring.New(),
		executed:   roaring.New(),
	}
}

// Record merges one line record into the report. A line reported more than
// once (template instantiations, inline copies) keeps its strongest state.
func (c *LineCoverage) Record(line int, state LineState) {
	if line <= 0 {
		return
	}
	l := uint32(line)
	switch state {
	case Executed:
		c.executable.Add(l)
		c.executed.Add(l)
	case NotExecuted:
		c.executable.Add(l)
	}
}

// State returns the tool's verdict for line.
func (c *LineCoverage) State(line int) LineState {
	if line <= 0 {
		return NotExecutable
	}
	l := uint32(line)
	switch {
	case c.executed.Contains(l):
		return Executed
	case c.executable.Contains(l):
		return NotExecuted
	default:
		return NotExecutable
	}
}

// ExecutableLines returns the number of instrumented lines.
func (c *LineCoverage) ExecutableLines() int {
	return int(c.executable.GetCardinality())
}

// ExecutedLines returns the number of lines that ran.
func (c *LineCoverage) ExecutedLines() int {
	return int(c.executed.GetCardinality())
}

// ParseReportFile reads a gcov or llvm-cov text report from disk.
func ParseReportFile(path string, tool Tool) (*LineCoverage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s report: %w", tool, err)
	}
	defer f.Close()

	cov, err := ParseReport(f, tool)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cov, nil
}

// ParseReport reads a text report in the format produced by tool.
func ParseReport(r io.Reader, tool Tool) (*LineCoverage, error) {
	switch tool {
	case Gcov:
		return ParseGcov(r)
	case LLVMCov:
		return ParseLLVMCov(r)
	}
	return nil, fmt.Errorf("%w: %d", ErrUnknownTool, int(tool))
}

// ParseGcov reads a .gcov file. Each source record has the form
// "count:lineno:source" where count is "-" for lines without code,
// "#####" or "=====" for lines never executed, and an execution count
// otherwise (possibly with a "*" or human-readable suffix). Branch, call
// and function summary records are ignored.
func ParseGcov(r io.Reader) (*LineCoverage, error) {
	cov := NewLineCoverage(Gcov)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		parts := strings.SplitN(scanner.Text(), ":", 3)
		if len(parts) < 3 {
			continue
		}
		count := strings.TrimSpace(parts[0])
		line, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			continue
		}
		if line == 0 {
			if strings.HasPrefix(parts[2], "Source:") {
				cov.Source = strings.TrimPrefix(parts[2], "Source:")
			}
			continue
		}

		switch {
		case count == "-":
			cov.Record(line, NotExecutable)
		case count == "#####" || count == "=====":
			cov.Record(line, NotExecuted)
		default:
			n, ok := parseCount(strings.TrimSuffix(count, "*"))
			if !ok {
				continue
			}
			cov.Record(line, stateOf(n))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read gcov report: %w", err)
	}
	return cov, nil
}

// ParseLLVMCov reads the text output of "llvm-cov show". Each source record
// has the form "lineno|count|source" with an empty count for lines without
// code. Counts may use k/M/G suffixes. Instantiation headers, branch and
// MC/DC detail rows (whose first column is empty) are ignored.
func ParseLLVMCov(r io.Reader) (*LineCoverage, error) {
	cov := NewLineCoverage(LLVMCov)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		text := scanner.Text()
		parts := strings.SplitN(text, "|", 3)
		if len(parts) < 3 {
			if strings.HasSuffix(text, ":") && !strings.HasPrefix(text, " ") && cov.Source == "" {
				cov.Source = strings.TrimSuffix(text, ":")
			}
			continue
		}
		line, err := strconv.Atoi(strings.TrimSpace(parts[0]))
		if err != nil {
			continue
		}

		count := strings.TrimSpace(parts[1])
		if count == "" {
			cov.Record(line, NotExecutable)
			continue
		}
		n, ok := parseCount(count)
		if !ok {
			continue
		}
		cov.Record(line, stateOf(n))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read llvm-cov report: %w", err)
	}
	return cov, nil
}

func stateOf(count float64) LineState {
	if count > 0 {
		return Executed
	}
	return NotExecuted
}

// parseCount parses an execution count such as "12", "1.5k" or "3M".
func parseCount(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	mult := 1.0
	switch s[len(s)-1] {
	case 'k', 'K':
		mult = 1e3
	case 'M':
		mult = 1e6
	case 'G':
		mult = 1e9
	case 'T':
		mult = 1e12
	case 'P':
		mult = 1e15
	case 'E':
		mult = 1e18
	}
	if mult != 1 {
		s = s[:len(s)-1]
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || n < 0 {
		return 0, false
	}
	return n * mult, true
}
