package discrepancy

import (
	"fmt"
	"sort"

	"github.com/hashicorp/go-hclog"
	"github.com/panbanda/covdiff/pkg/ast"
	"github.com/panbanda/covdiff/pkg/coverage"
)

// Session classifies the candidate lines of one file for one tool. It owns
// its registry; detector state never crosses sessions.
type Session struct {
	tool     coverage.Tool
	registry *Registry
	logger   hclog.Logger
}

// NewSession creates a session for tool over a fresh registry built from
// opts.
func NewSession(tool coverage.Tool, opts ...RegistryOption) *Session {
	return NewSessionWith(tool, NewRegistry(opts...))
}

// NewSessionWith creates a session over an existing registry, which must
// not be shared with another session.
func NewSessionWith(tool coverage.Tool, registry *Registry) *Session {
	return &Session{
		tool:     tool,
		registry: registry,
		logger:   hclog.NewNullLogger(),
	}
}

// SetLogger sets the logger used for per-line trace output.
func (s *Session) SetLogger(l hclog.Logger) {
	if l != nil {
		s.logger = l
	}
}

// Registry returns the session's registry.
func (s *Session) Registry() *Registry {
	return s.registry
}

// Run offers, for each candidate line in ascending order, the first node
// that starts on that line to the registry. A line is explained by the
// first detector that accepts its node; lines without a node or without a
// match are unexplained. Every distinct candidate line yields exactly one
// reason; a line supplied more than once is classified once, so the report
// may hold fewer reasons than len(lines).
func (s *Session) Run(tree *ast.Tree, lines []int) (*Report, error) {
	if !s.tool.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidTool, int(s.tool))
	}

	ordered := append([]int(nil), lines...)
	sort.Ints(ordered)

	b := NewReportBuilder(s.tool)
	prev := 0
	for i, line := range ordered {
		if i > 0 && line == prev {
			continue
		}
		prev = line

		var node *ast.Node
		if tree != nil {
			node = tree.FirstNodeOnLine(line)
		}
		if node == nil {
			s.logger.Trace("no statement starts on line", "line", line)
			b.Unexplained(line)
			continue
		}

		if d := s.registry.Classify(node, s.tool); d != nil {
			s.logger.Trace("line explained", "line", line, "node", node.Type, "detector", d.Name(), "count", d.Count())
			b.Explain(line, d)
			continue
		}
		s.logger.Trace("line unexplained", "line", line, "node", node.Type)
		b.Unexplained(line)
	}

	return b.Build(s.registry.Detectors()), nil
}

// Classify runs a fresh session for tool over tree.
func Classify(tree *ast.Tree, tool coverage.Tool, lines []int, opts ...RegistryOption) (*Report, error) {
	return NewSession(tool, opts...).Run(tree, lines)
}
