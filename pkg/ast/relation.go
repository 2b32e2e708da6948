package ast

// IsAncestor reports whether candidate is node itself or one of its
// ancestors. A nil argument never matches: a detector with no previous
// match has no region yet.
func IsAncestor(candidate, node *Node) bool {
	if candidate == nil || node == nil {
		return false
	}
	for n := node; n != nil; n = n.Parent {
		if n == candidate {
			return true
		}
	}
	return false
}

// Sibling returns the statement offset positions away from node within its
// parent's statement sequence. It returns nil when the offset falls outside
// the sequence or the parent does not hold a statement sequence.
func Sibling(node *Node, offset int) *Node {
	if node == nil || node.Parent == nil {
		return nil
	}
	seq := Statements(node.Parent)
	if seq == nil {
		return nil
	}
	for i, s := range seq {
		if s != node {
			continue
		}
		j := i + offset
		if j < 0 || j >= len(seq) {
			return nil
		}
		return seq[j]
	}
	return nil
}

// Statements returns the statement sequence held by n, or nil if n is not a
// block-like node. Case labels contribute the statements that follow the
// label, not the label's value.
func Statements(n *Node) []*Node {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case KindCompound, KindTranslationUnit:
		return n.Children
	case KindCase:
		seq := make([]*Node, 0, len(n.Children))
		for _, c := range n.Children {
			if c.Field == "value" {
				continue
			}
			seq = append(seq, c)
		}
		return seq
	default:
		return nil
	}
}

// Branches returns the then and else statements of an if node. The else
// statement is unwrapped from its else clause when the grammar produces one.
func Branches(n *Node) (consequence, alternative *Node) {
	if n == nil || n.Kind != KindIf {
		return nil, nil
	}
	consequence = n.ChildByField("consequence")
	alternative = n.ChildByField("alternative")
	if alternative != nil && alternative.Kind == KindElse && len(alternative.Children) > 0 {
		alternative = alternative.Children[0]
	}
	return consequence, alternative
}

// LoopBody returns the body statement of a for, while or do loop.
func LoopBody(n *Node) *Node {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case KindFor, KindWhile, KindDo:
		return n.ChildByField("body")
	}
	return nil
}
