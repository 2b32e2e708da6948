// Package coverage models the two coverage tools covdiff compares, reads
// their per-line reports and computes the lines on which they disagree.
package coverage

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnknownTool is returned when a file or name cannot be attributed to
// gcov or llvm-cov.
var ErrUnknownTool = errors.New("unable to tell if the file was generated by gcov or llvm-cov")

// Tool identifies a coverage tool.
type Tool int

const (
	// Gcov is GCC's gcov.
	Gcov Tool = iota
	// LLVMCov is LLVM's llvm-cov.
	LLVMCov
)

// Tools lists every known tool in report order.
var Tools = []Tool{Gcov, LLVMCov}

// String returns the tool id used in reports: "gcov" or "llvm-cov".
func (t Tool) String() string {
	switch t {
	case Gcov:
		return "gcov"
	case LLVMCov:
		return "llvm-cov"
	default:
		return fmt.Sprintf("Tool(%d)", int(t))
	}
}

// Valid reports whether t is one of the known tools.
func (t Tool) Valid() bool {
	return t == Gcov || t == LLVMCov
}

// Infix is the marker an annotated source file carries in its name,
// e.g. "main.gcov.c".
func (t Tool) Infix() string {
	return "." + t.String()
}

// Other returns the tool t is compared against.
func (t Tool) Other() Tool {
	if t == Gcov {
		return LLVMCov
	}
	return Gcov
}

// MarshalText implements encoding.TextMarshaler.
func (t Tool) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownTool, int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Tool) UnmarshalText(text []byte) error {
	parsed, err := ParseTool(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ParseTool parses a tool id. It accepts "gcov" and "llvm-cov" (also
// "llvmcov" and "llvm_cov"), case-insensitively.
func ParseTool(s string) (Tool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "gcov":
		return Gcov, nil
	case "llvm-cov", "llvmcov", "llvm_cov":
		return LLVMCov, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownTool, s)
}

// ToolFromPath attributes an annotated source file to a tool by its name:
// names containing ".gcov" belong to gcov, names containing ".llvm-cov"
// to llvm-cov. gcov wins when both markers are present.
func ToolFromPath(path string) (Tool, error) {
	name := filepath.Base(path)
	switch {
	case strings.Contains(name, Gcov.Infix()):
		return Gcov, nil
	case strings.Contains(name, LLVMCov.Infix()):
		return LLVMCov, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrUnknownTool, path)
}

// StripTool removes the tool marker from an annotated file name, mapping
// "src/main.gcov.c" to "src/main.c". Paths without a marker are returned
// unchanged.
func StripTool(path string) string {
	dir, name := filepath.Split(path)
	for _, t := range Tools {
		if i := strings.Index(name, t.Infix()); i >= 0 {
			name = name[:i] + name[i+len(t.Infix()):]
			break
		}
	}
	return dir + name
}
