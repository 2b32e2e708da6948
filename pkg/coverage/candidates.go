package coverage

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// CandidateLineSet holds, per tool, the ordered lines of one source file on
// which the two tools disagree.
type CandidateLineSet struct {
	lines [2]*roaring.Bitmap
}

// NewCandidateLineSet builds a set from per-tool line lists. Non-positive
// and duplicate lines are dropped.
func NewCandidateLineSet(gcov, llvmCov []int) *CandidateLineSet {
	s := &CandidateLineSet{}
	s.lines[Gcov] = roaring.New()
	s.lines[LLVMCov] = roaring.New()
	s.Add(Gcov, gcov...)
	s.Add(LLVMCov, llvmCov...)
	return s
}

// Add inserts lines into tool's sequence.
func (s *CandidateLineSet) Add(tool Tool, lines ...int) {
	if !tool.Valid() {
		return
	}
	for _, l := range lines {
		if l > 0 {
			s.lines[tool].Add(uint32(l))
		}
	}
}

// Lines returns tool's candidate lines in ascending order.
func (s *CandidateLineSet) Lines(tool Tool) []int {
	if s == nil || !tool.Valid() {
		return nil
	}
	raw := s.lines[tool].ToArray()
	out := make([]int, len(raw))
	for i, l := range raw {
		out[i] = int(l)
	}
	return out
}

// Contains reports whether line is a candidate for tool.
func (s *CandidateLineSet) Contains(tool Tool, line int) bool {
	if s == nil || !tool.Valid() || line <= 0 {
		return false
	}
	return s.lines[tool].Contains(uint32(line))
}

// Len returns the number of candidate lines for tool.
func (s *CandidateLineSet) Len(tool Tool) int {
	if s == nil || !tool.Valid() {
		return 0
	}
	return int(s.lines[tool].GetCardinality())
}

// Empty reports whether neither tool has candidate lines.
func (s *CandidateLineSet) Empty() bool {
	return s.Len(Gcov) == 0 && s.Len(LLVMCov) == 0
}

// Diff compares two reports of the same source file. A line becomes a
// candidate for the tool that ranks it higher, where executed ranks above
// not executed and not executed ranks above not executable.
func Diff(gcov, llvmCov *LineCoverage) *CandidateLineSet {
	set := NewCandidateLineSet(nil, nil)
	if gcov == nil || llvmCov == nil {
		return set
	}

	all := roaring.Or(gcov.executable, llvmCov.executable)
	it := all.Iterator()
	for it.HasNext() {
		line := int(it.Next())
		g, l := gcov.State(line), llvmCov.State(line)
		switch {
		case g > l:
			set.Add(Gcov, line)
		case l > g:
			set.Add(LLVMCov, line)
		}
	}
	return set
}

// CandidateFile is the on-disk form of candidate lines. Top-level lists
// apply to every file; Files entries override them for one source file.
//
//	gcov = [12, 14]
//	llvm-cov = [20]
//
//	[[files]]
//	path = "src/main.c"
//	gcov = [3]
type CandidateFile struct {
	Gcov    []int            `koanf:"gcov"`
	LLVMCov []int            `koanf:"llvm-cov"`
	Files   []CandidateEntry `koanf:"files"`
}

// CandidateEntry lists candidate lines for one source file.
type CandidateEntry struct {
	Path    string `koanf:"path"`
	Gcov    []int  `koanf:"gcov"`
	LLVMCov []int  `koanf:"llvm-cov"`
}

// LoadCandidates reads a candidate file in TOML, YAML or JSON.
func LoadCandidates(path string) (*CandidateFile, error) {
	k := koanf.New(".")

	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		parser = toml.Parser()
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, fmt.Errorf("load candidate lines: %w", err)
	}

	var cf CandidateFile
	if err := k.Unmarshal("", &cf); err != nil {
		return nil, fmt.Errorf("decode candidate lines %s: %w", path, err)
	}
	return &cf, nil
}

// For returns the candidate lines for source. source may be an annotated
// file name; the tool marker is ignored when matching entries. An entry
// matches when its path equals source or is a path suffix of it.
func (cf *CandidateFile) For(source string) *CandidateLineSet {
	if cf == nil {
		return NewCandidateLineSet(nil, nil)
	}
	want := filepath.ToSlash(StripTool(source))
	for _, e := range cf.Files {
		p := filepath.ToSlash(StripTool(e.Path))
		if p == want || strings.HasSuffix(want, "/"+p) {
			return NewCandidateLineSet(e.Gcov, e.LLVMCov)
		}
	}
	return NewCandidateLineSet(cf.Gcov, cf.LLVMCov)
}

// Sources returns the paths named by per-file entries, sorted.
func (cf *CandidateFile) Sources() []string {
	if cf == nil {
		return nil
	}
	out := make([]string, 0, len(cf.Files))
	for _, e := range cf.Files {
		out = append(out, e.Path)
	}
	sort.Strings(out)
	return out
}
