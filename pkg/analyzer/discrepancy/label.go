package discrepancy

import (
	"github.com/panbanda/covdiff/pkg/ast"
	"github.com/panbanda/covdiff/pkg/coverage"
)

// UnmarkedLabel explains labeled statements, whose label line gcov may not
// attribute to the statement. Labels nested in an already matched label
// fold into the outer occurrence.
type UnmarkedLabel struct {
	base
	region
}

// NewUnmarkedLabel creates the detector.
func NewUnmarkedLabel() *UnmarkedLabel {
	return &UnmarkedLabel{
		base: base{
			name:        NameUnmarkedLabel,
			description: "Unmarked Label",
			tool:        coverage.Gcov,
			category:    Structural,
		},
	}
}

// Parse implements Detector.
func (d *UnmarkedLabel) Parse(node *ast.Node) bool {
	if node == nil {
		return false
	}
	if node.Kind == ast.KindLabel {
		if d.claim(node) {
			d.count++
		}
		return true
	}
	return d.contains(node)
}
