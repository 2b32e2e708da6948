package discrepancy

import (
	"github.com/panbanda/covdiff/pkg/ast"
	"github.com/panbanda/covdiff/pkg/coverage"
)

// IfOptimize explains lines of an if statement whose condition folds to a
// constant: the optimizer drops the dead branch and gcov attributes the
// remaining code differently. The whole statement is one occurrence.
type IfOptimize struct {
	base
	region
	oracle ast.Oracle
}

// NewIfOptimize creates the detector. A nil oracle uses ast.DefaultOracle.
func NewIfOptimize(oracle ast.Oracle) *IfOptimize {
	return &IfOptimize{
		base: base{
			name:        NameIfOptimize,
			description: "If Optimize",
			tool:        coverage.Gcov,
			category:    Optimization,
		},
		oracle: oracle,
	}
}

// Parse implements Detector.
func (d *IfOptimize) Parse(node *ast.Node) bool {
	if node == nil {
		return false
	}
	if node.Kind == ast.KindIf && ast.IsConstantFoldable(node.ChildByField("condition"), d.oracle) {
		if d.claim(node) {
			d.count++
		}
		return true
	}
	return d.contains(node)
}
