package ast

import (
	"go/constant"
	"go/token"
	"math"
	"strings"
)

// maxEvalDepth bounds recursion through enumerator and macro references.
const maxEvalDepth = 64

var (
	zero    = constant.MakeInt64(0)
	one     = constant.MakeInt64(1)
	unknown = constant.MakeUnknown()
)

var binaryTokens = map[string]token.Token{
	"+":  token.ADD,
	"-":  token.SUB,
	"*":  token.MUL,
	"/":  token.QUO,
	"%":  token.REM,
	"&":  token.AND,
	"|":  token.OR,
	"^":  token.XOR,
	"<<": token.SHL,
	">>": token.SHR,
	"==": token.EQL,
	"!=": token.NEQ,
	"<":  token.LSS,
	"<=": token.LEQ,
	">":  token.GTR,
	">=": token.GEQ,
}

// Evaluate folds expr to a compile-time value. The second result is false
// when the expression is not a constant: it reads a variable, calls a
// function, has side effects, divides by zero, or is a comma expression.
//
// Some constants have no value this package can compute, such as sizeof
// and alignof. They still fold; their value is constant.Unknown and
// propagates through arithmetic.
func Evaluate(expr *Node) (constant.Value, bool) {
	e := &evaluator{}
	return e.eval(expr)
}

type evaluator struct {
	depth int
}

func (e *evaluator) eval(n *Node) (constant.Value, bool) {
	if n == nil {
		return nil, false
	}
	e.depth++
	defer func() { e.depth-- }()
	if e.depth > maxEvalDepth {
		return nil, false
	}

	switch n.Type {
	case "number_literal":
		return parseNumber(n.Text())
	case "char_literal":
		return parseChar(n.Text())
	case "true":
		return one, true
	case "false", "null", "nullptr":
		return zero, true
	case "string_literal", "concatenated_string", "raw_string_literal":
		// Decays to a non-null address.
		return one, true
	case "sizeof_expression", "alignof_expression", "offsetof_expression":
		return unknown, true
	case "parenthesized_expression", "condition_clause":
		inner := firstChild(n)
		if n.Kind == KindCondition {
			inner = n.ChildByField("value")
		}
		if inner == nil || inner.Kind == KindComma {
			return nil, false
		}
		return e.eval(inner)
	case "unary_expression":
		return e.unary(n)
	case "binary_expression":
		return e.binary(n)
	case "conditional_expression":
		return e.conditional(n)
	case "cast_expression":
		return e.cast(n)
	case "identifier":
		return e.identifier(n)
	}
	return nil, false
}

func (e *evaluator) unary(n *Node) (constant.Value, bool) {
	x, ok := e.eval(n.ChildByField("argument"))
	if !ok {
		return nil, false
	}
	switch n.Operator {
	case "+":
		return x, true
	case "-":
		return constant.UnaryOp(token.SUB, x, 0), true
	case "~":
		if !isIntegral(x) {
			return nil, false
		}
		return constant.UnaryOp(token.XOR, x, 0), true
	case "!":
		t, known := truth(x)
		if !known {
			return unknown, true
		}
		return boolValue(!t), true
	}
	return nil, false
}

func (e *evaluator) binary(n *Node) (constant.Value, bool) {
	x, ok := e.eval(n.ChildByField("left"))
	if !ok {
		return nil, false
	}

	// Short-circuit operators fold when the left operand decides the result,
	// even if the right operand is not constant.
	switch n.Operator {
	case "&&", "||":
		t, known := truth(x)
		if known && t == (n.Operator == "||") {
			return boolValue(t), true
		}
		y, ok := e.eval(n.ChildByField("right"))
		if !ok {
			return nil, false
		}
		u, knownY := truth(y)
		if !known || !knownY {
			return unknown, true
		}
		return boolValue(u), true
	}

	y, ok := e.eval(n.ChildByField("right"))
	if !ok {
		return nil, false
	}
	op, ok := binaryTokens[n.Operator]
	if !ok {
		return nil, false
	}

	unknownOperand := x.Kind() == constant.Unknown || y.Kind() == constant.Unknown

	switch op {
	case token.EQL, token.NEQ, token.LSS, token.LEQ, token.GTR, token.GEQ:
		if unknownOperand {
			return unknown, true
		}
		return boolValue(constant.Compare(x, op, y)), true

	case token.QUO, token.REM:
		if y.Kind() != constant.Unknown && constant.Sign(y) == 0 {
			return nil, false
		}
		if op == token.REM && (!isIntegral(x) || !isIntegral(y)) {
			return nil, false
		}
		if unknownOperand {
			return unknown, true
		}
		if op == token.QUO && x.Kind() == constant.Int && y.Kind() == constant.Int {
			op = token.QUO_ASSIGN // truncated integer division
		}
		return constant.BinaryOp(x, op, y), true

	case token.AND, token.OR, token.XOR:
		if !isIntegral(x) || !isIntegral(y) {
			return nil, false
		}
		if unknownOperand {
			return unknown, true
		}
		return constant.BinaryOp(x, op, y), true

	case token.SHL, token.SHR:
		if !isIntegral(x) || !isIntegral(y) {
			return nil, false
		}
		if unknownOperand {
			return unknown, true
		}
		s, exact := constant.Uint64Val(y)
		if !exact || s >= 64 {
			return nil, false
		}
		return constant.Shift(x, op, uint(s)), true
	}

	if unknownOperand {
		return unknown, true
	}
	return constant.BinaryOp(x, op, y), true
}

func (e *evaluator) conditional(n *Node) (constant.Value, bool) {
	c, ok := e.eval(n.ChildByField("condition"))
	if !ok {
		return nil, false
	}
	consequence := n.ChildByField("consequence")
	alternative := n.ChildByField("alternative")

	t, known := truth(c)
	if !known {
		// Both arms must fold when the selector value is not computable.
		if consequence != nil {
			if _, ok := e.eval(consequence); !ok {
				return nil, false
			}
		}
		if _, ok := e.eval(alternative); !ok {
			return nil, false
		}
		return unknown, true
	}
	if t {
		if consequence == nil {
			// GNU "a ?: b"
			return c, true
		}
		return e.eval(consequence)
	}
	return e.eval(alternative)
}

func (e *evaluator) cast(n *Node) (constant.Value, bool) {
	v, ok := e.eval(n.ChildByField("value"))
	if !ok {
		return nil, false
	}
	typ := n.ChildByField("type").Text()
	switch {
	case strings.Contains(typ, "*"):
		return v, true
	case strings.Contains(typ, "bool"):
		t, known := truth(v)
		if !known {
			return unknown, true
		}
		return boolValue(t), true
	case isIntegerTypeName(typ) && v.Kind() == constant.Float:
		f, _ := constant.Float64Val(v)
		if math.IsInf(f, 0) || math.IsNaN(f) || math.Abs(f) >= math.MaxInt64 {
			return nil, false
		}
		return constant.MakeInt64(int64(math.Trunc(f))), true
	}
	return v, true
}

func (e *evaluator) identifier(n *Node) (constant.Value, bool) {
	t := n.Tree()
	if t == nil {
		return nil, false
	}
	def, ok := t.constantTable()[n.Text()]
	if !ok || def.ambiguous {
		return nil, false
	}
	return e.resolve(def)
}

func (e *evaluator) resolve(def *constantDef) (constant.Value, bool) {
	e.depth++
	defer func() { e.depth-- }()
	if e.depth > maxEvalDepth {
		return nil, false
	}

	switch {
	case def.literal != "":
		return parseMacroLiteral(def.literal)
	case def.value != nil:
		return e.eval(def.value)
	case def.prev != nil:
		v, ok := e.resolve(def.prev)
		if !ok {
			return nil, false
		}
		if v.Kind() == constant.Unknown {
			return unknown, true
		}
		return constant.BinaryOp(v, token.ADD, one), true
	default:
		// First enumerator without an explicit value.
		return zero, true
	}
}

// truth returns the boolean interpretation of v; known is false when v
// is constant but its value is not computable.
func truth(v constant.Value) (value, known bool) {
	switch v.Kind() {
	case constant.Unknown:
		return false, false
	case constant.Bool:
		return constant.BoolVal(v), true
	case constant.Int, constant.Float:
		return constant.Sign(v) != 0, true
	default:
		return true, true
	}
}

func boolValue(b bool) constant.Value {
	if b {
		return one
	}
	return zero
}

func isIntegral(v constant.Value) bool {
	return v.Kind() == constant.Int || v.Kind() == constant.Unknown
}

func isIntegerTypeName(typ string) bool {
	for _, word := range []string{"int", "char", "short", "long", "signed", "unsigned", "size_t"} {
		if strings.Contains(typ, word) {
			return true
		}
	}
	return false
}
