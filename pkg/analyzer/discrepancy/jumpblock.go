package discrepancy

import (
	"github.com/panbanda/covdiff/pkg/ast"
	"github.com/panbanda/covdiff/pkg/coverage"
)

// JumpBlock explains a statement that directly follows a block ending in an
// unconditional jump. llvm-cov and gcov disagree on whether such a
// statement is reachable. Each distinct jump is one occurrence, however
// many statements follow it.
type JumpBlock struct {
	base
	lastJump      *ast.Node
	lastFollowing *ast.Node
	chain         bool
}

// JumpBlockOption configures a JumpBlock detector.
type JumpBlockOption func(*JumpBlock)

// WithFollowerChaining also explains a statement whose previous sibling is
// the last explained follower, without counting a new occurrence.
func WithFollowerChaining() JumpBlockOption {
	return func(d *JumpBlock) {
		d.chain = true
	}
}

// NewJumpBlock creates the detector.
func NewJumpBlock(opts ...JumpBlockOption) *JumpBlock {
	d := &JumpBlock{
		base: base{
			name:        NameJumpBlock,
			description: "Jump Block",
			tool:        coverage.LLVMCov,
			category:    Structural,
		},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Parse implements Detector.
func (d *JumpBlock) Parse(node *ast.Node) bool {
	prev := ast.Sibling(node, -1)
	if prev == nil {
		return false
	}

	if jump := findUnconditionalJump(prev); jump != nil {
		if jump != d.lastJump {
			d.count++
			d.lastJump = jump
		}
		d.lastFollowing = node
		return true
	}

	if d.chain && d.lastFollowing != nil && prev == d.lastFollowing {
		d.lastFollowing = node
		return true
	}
	return false
}

// findUnconditionalJump returns the jump that makes n end control flow: n
// itself if it is a return, break or continue, or the first such statement
// reached through an if's branches or a loop's body.
func findUnconditionalJump(n *ast.Node) *ast.Node {
	if n == nil {
		return nil
	}
	if n.IsJump() {
		return n
	}
	switch n.Kind {
	case ast.KindIf:
		consequence, alternative := ast.Branches(n)
		for _, b := range []*ast.Node{consequence, alternative} {
			if b.IsJump() {
				return b
			}
		}
		for _, b := range []*ast.Node{consequence, alternative} {
			if j := jumpInBlock(b); j != nil {
				return j
			}
		}
	case ast.KindFor, ast.KindWhile, ast.KindDo:
		body := ast.LoopBody(n)
		if body.IsJump() {
			return body
		}
		return jumpInBlock(body)
	}
	return nil
}

// jumpInBlock searches the members of a compound statement.
func jumpInBlock(b *ast.Node) *ast.Node {
	if b == nil || b.Kind != ast.KindCompound {
		return nil
	}
	for _, member := range b.Children {
		if j := findUnconditionalJump(member); j != nil {
			return j
		}
	}
	return nil
}
