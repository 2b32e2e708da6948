package discrepancy

import (
	"github.com/panbanda/covdiff/pkg/ast"
	"github.com/panbanda/covdiff/pkg/coverage"
)

// ConstArrayInit explains declarations of const, fixed-size, initialized
// arrays. Compilers emit these as a copy from static data instead of
// per-element stores. Every qualifying declaration is its own occurrence.
type ConstArrayInit struct {
	base
	oracle ast.Oracle
}

// NewConstArrayInit creates the detector. The oracle decides whether an
// array size is fixed; nil uses ast.DefaultOracle.
func NewConstArrayInit(oracle ast.Oracle) *ConstArrayInit {
	return &ConstArrayInit{
		base: base{
			name:        NameConstArrayInit,
			description: "Const Array Initialization",
			tool:        coverage.Gcov,
			category:    Optimization,
		},
		oracle: oracle,
	}
}

// Parse implements Detector.
func (d *ConstArrayInit) Parse(node *ast.Node) bool {
	if node == nil || node.Kind != ast.KindDeclaration || !isConstQualified(node) {
		return false
	}
	for _, decl := range node.ChildrenByField("declarator") {
		if decl.Type != "init_declarator" {
			continue
		}
		if d.isFixedArray(decl.ChildByField("declarator")) {
			d.count++
			return true
		}
	}
	return false
}

func isConstQualified(decl *ast.Node) bool {
	for _, c := range decl.Children {
		if c.Type != "type_qualifier" {
			continue
		}
		switch c.Text() {
		case "const", "constexpr":
			return true
		}
	}
	return false
}

// isFixedArray reports whether n declares an array whose every dimension
// is omitted (sized by the initializer) or constant.
func (d *ConstArrayInit) isFixedArray(n *ast.Node) bool {
	if n == nil || n.Type != "array_declarator" {
		return false
	}
	for n != nil && n.Type == "array_declarator" {
		if size := n.ChildByField("size"); size != nil && !ast.IsConstantFoldable(size, d.oracle) {
			return false
		}
		n = n.ChildByField("declarator")
	}
	return true
}
