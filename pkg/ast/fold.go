package ast

// Oracle decides whether an expression's value is fixed at compile time.
type Oracle interface {
	Foldable(expr *Node) bool
}

// OracleFunc adapts a function to the Oracle interface.
type OracleFunc func(expr *Node) bool

// Foldable implements Oracle.
func (f OracleFunc) Foldable(expr *Node) bool { return f(expr) }

// DefaultOracle folds expressions with Evaluate. Like a compiler's generic
// constant evaluator it does not accept comma expressions.
var DefaultOracle Oracle = OracleFunc(func(expr *Node) bool {
	_, ok := Evaluate(expr)
	return ok
})

// IsConstantFoldable reports whether expr's value is determined at compile
// time. Comma and parenthesized expressions are unwrapped before the oracle
// is consulted: a comma expression folds iff its right operand folds, and a
// parenthesized expression folds iff its inner expression folds. A nil
// oracle selects DefaultOracle.
func IsConstantFoldable(expr *Node, oracle Oracle) bool {
	if expr == nil {
		return false
	}
	if oracle == nil {
		oracle = DefaultOracle
	}

	switch expr.Kind {
	case KindComma:
		return IsConstantFoldable(expr.ChildByField("right"), oracle)
	case KindParen:
		return IsConstantFoldable(firstChild(expr), oracle)
	case KindCondition:
		// C++ if conditions wrap the expression in a condition clause.
		return IsConstantFoldable(expr.ChildByField("value"), oracle)
	}
	return oracle.Foldable(expr)
}

func firstChild(n *Node) *Node {
	if n == nil || len(n.Children) == 0 {
		return nil
	}
	return n.Children[0]
}
