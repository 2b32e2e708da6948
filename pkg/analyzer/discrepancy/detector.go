package discrepancy

import (
	"github.com/panbanda/covdiff/pkg/ast"
	"github.com/panbanda/covdiff/pkg/coverage"
)

// Detector recognizes one syntactic cause of coverage-tool disagreement.
//
// Parse is called once per offered node, in document order. It reports
// whether the node is explained by the pattern and updates the detector's
// state and match count. A detector belongs to a single session and is not
// safe for concurrent use.
type Detector interface {
	// Name is a stable identifier such as "if_optimize".
	Name() string
	// Tool is the tool whose report the pattern explains.
	Tool() coverage.Tool
	Category() Category
	Description() string
	// Count is the number of distinct occurrences recognized so far.
	Count() int
	Parse(node *ast.Node) bool
}

// Detector names, also used as configuration keys.
const (
	NameIfOptimize     = "if_optimize"
	NameUnmarkedLabel  = "unmarked_label"
	NameConstArrayInit = "const_array_init"
	NameJumpBlock      = "jump_block"
)

// Names lists every detector in priority order.
var Names = []string{NameIfOptimize, NameUnmarkedLabel, NameConstArrayInit, NameJumpBlock}

type base struct {
	name        string
	description string
	tool        coverage.Tool
	category    Category
	count       int
}

func (b *base) Name() string        { return b.name }
func (b *base) Tool() coverage.Tool { return b.tool }
func (b *base) Category() Category  { return b.category }
func (b *base) Description() string { return b.description }
func (b *base) Count() int          { return b.count }

// region tracks the root of the last matched occurrence. Nodes inside it
// belong to that occurrence.
type region struct {
	last *ast.Node
}

// claim records root as an occurrence unless it lies inside the current
// region. It reports whether root started a new occurrence.
func (r *region) claim(root *ast.Node) bool {
	if ast.IsAncestor(r.last, root) {
		return false
	}
	r.last = root
	return true
}

func (r *region) contains(n *ast.Node) bool {
	return ast.IsAncestor(r.last, n)
}
