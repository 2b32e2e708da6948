package ast

// Kind classifies a node for the purposes of discrepancy detection.
type Kind string

const (
	KindTranslationUnit Kind = "translation_unit"
	KindFunction        Kind = "function"
	KindCompound        Kind = "compound"
	KindIf              Kind = "if"
	KindElse            Kind = "else"
	KindFor             Kind = "for"
	KindWhile           Kind = "while"
	KindDo              Kind = "do"
	KindSwitch          Kind = "switch"
	KindCase            Kind = "case"
	KindReturn          Kind = "return"
	KindBreak           Kind = "break"
	KindContinue        Kind = "continue"
	KindGoto            Kind = "goto"
	KindLabel           Kind = "label"
	KindDeclaration     Kind = "declaration"
	KindExprStmt        Kind = "expression_statement"
	KindBinary          Kind = "binary_operator"
	KindComma           Kind = "comma"
	KindParen           Kind = "paren"
	KindCondition       Kind = "condition"
	KindOther           Kind = "other"
)

// String implements fmt.Stringer.
func (k Kind) String() string { return string(k) }

// KindOf maps a C/C++ tree-sitter grammar node type to a Kind.
func KindOf(nodeType string) Kind {
	switch nodeType {
	case "translation_unit":
		return KindTranslationUnit
	case "function_definition":
		return KindFunction
	case "compound_statement":
		return KindCompound
	case "if_statement":
		return KindIf
	case "else_clause":
		return KindElse
	case "for_statement", "for_range_loop":
		return KindFor
	case "while_statement":
		return KindWhile
	case "do_statement":
		return KindDo
	case "switch_statement":
		return KindSwitch
	case "case_statement":
		return KindCase
	case "return_statement":
		return KindReturn
	case "break_statement":
		return KindBreak
	case "continue_statement":
		return KindContinue
	case "goto_statement":
		return KindGoto
	case "labeled_statement":
		return KindLabel
	case "declaration":
		return KindDeclaration
	case "expression_statement":
		return KindExprStmt
	case "binary_expression":
		return KindBinary
	case "comma_expression":
		return KindComma
	case "parenthesized_expression":
		return KindParen
	case "condition_clause":
		return KindCondition
	default:
		return KindOther
	}
}

// Node is one named node of the statement tree.
type Node struct {
	Kind Kind
	// Type is the raw grammar node type (e.g. "number_literal").
	Type string
	// Field is the grammar field name under the parent, if any.
	Field string
	// Operator holds the operator token for unary, binary and update expressions.
	Operator string

	StartLine int
	EndLine   int
	StartByte uint32
	EndByte   uint32

	Parent   *Node
	Children []*Node
	// Index is the position of the node in Parent.Children.
	Index int

	tree *Tree
}

// Tree returns the tree that owns the node.
func (n *Node) Tree() *Tree {
	if n == nil {
		return nil
	}
	return n.tree
}

// Text returns the source text spanned by the node.
func (n *Node) Text() string {
	if n == nil || n.tree == nil {
		return ""
	}
	src := n.tree.Source
	if n.StartByte > n.EndByte || n.EndByte > uint32(len(src)) {
		return ""
	}
	return string(src[n.StartByte:n.EndByte])
}

// ChildByField returns the first child stored under the given field name.
func (n *Node) ChildByField(field string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if c.Field == field {
			return c
		}
	}
	return nil
}

// ChildrenByField returns every child stored under the given field name.
func (n *Node) ChildrenByField(field string) []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	for _, c := range n.Children {
		if c.Field == field {
			out = append(out, c)
		}
	}
	return out
}

// IsJump reports whether the node unconditionally transfers control out of
// the enclosing block (return, break or continue).
func (n *Node) IsJump() bool {
	if n == nil {
		return false
	}
	switch n.Kind {
	case KindReturn, KindBreak, KindContinue:
		return true
	}
	return false
}
