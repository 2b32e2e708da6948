package ast_test

import (
	"go/constant"
	"testing"

	"github.com/panbanda/covdiff/pkg/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// condition parses "prelude; int f(int x) { if (expr) {} }" and returns
// the if condition.
func condition(t *testing.T, prelude, expr string) *ast.Node {
	t.Helper()
	src := prelude + "\nint f(int x) {\n  if (" + expr + ") {}\n  return x;\n}\n"
	tree := parseC(t, src)
	ifNode := firstOfType(t, tree, "if_statement")
	cond := ifNode.ChildByField("condition")
	require.NotNil(t, cond)
	return cond
}

func TestIsConstantFoldable(t *testing.T) {
	tests := []struct {
		name    string
		prelude string
		expr    string
		want    bool
	}{
		{name: "true literal", expr: "1", want: true},
		{name: "false literal", expr: "0", want: true},
		{name: "variable", expr: "x", want: false},
		{name: "arithmetic", expr: "1 + 2 * 3", want: true},
		{name: "nested parens", expr: "((1))", want: true},
		{name: "comma with constant tail", expr: "x, 1", want: true},
		{name: "comma with variable tail", expr: "1, x", want: false},
		{name: "parenthesized comma", expr: "(x, 0)", want: true},
		{name: "call", expr: "f(1)", want: false},
		{name: "assignment", expr: "x = 1", want: false},
		{name: "short circuit and", expr: "0 && f(x)", want: true},
		{name: "short circuit or", expr: "1 || x", want: true},
		{name: "non deciding left operand", expr: "1 && x", want: false},
		{name: "variable left operand", expr: "x && 0", want: false},
		{name: "division by zero", expr: "1 / 0", want: false},
		{name: "sizeof", expr: "sizeof(int) == 4", want: true},
		{name: "char literal", expr: "'a'", want: true},
		{name: "string literal", expr: `"s"`, want: true},
		{name: "cast", expr: "(int)1.5", want: true},
		{name: "selected arm constant", expr: "1 ? 2 : x", want: true},
		{name: "selected arm variable", expr: "0 ? 2 : x", want: false},
		{name: "enumerator", prelude: "enum color { RED, GREEN };", expr: "GREEN", want: true},
		{name: "macro", prelude: "#define DEBUG 0", expr: "DEBUG", want: true},
		{name: "function-like macro use", prelude: "#define ON() 1", expr: "ON()", want: false},
		{name: "unknown identifier", expr: "MISSING", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cond := condition(t, tt.prelude, tt.expr)
			assert.Equal(t, tt.want, ast.IsConstantFoldable(cond, nil))
		})
	}
}

func TestIsConstantFoldableUnwrapsBeforeOracle(t *testing.T) {
	var offered []string
	oracle := ast.OracleFunc(func(expr *ast.Node) bool {
		offered = append(offered, expr.Text())
		return true
	})

	cond := condition(t, "", "(x, (y, 7))")
	assert.True(t, ast.IsConstantFoldable(cond, oracle))
	assert.Equal(t, []string{"7"}, offered)

	assert.False(t, ast.IsConstantFoldable(nil, oracle))
}

func TestDefaultOracleRejectsComma(t *testing.T) {
	tree := parseC(t, "int f(int x) { return (1, 2); }\n")
	comma := firstOfType(t, tree, "comma_expression")
	assert.False(t, ast.DefaultOracle.Foldable(comma))
	assert.True(t, ast.IsConstantFoldable(comma, nil))
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name    string
		prelude string
		expr    string
		want    int64
	}{
		{name: "precedence", expr: "(1 + 2) * 3", want: 9},
		{name: "integer division", expr: "7 / 2", want: 3},
		{name: "remainder", expr: "7 % 4", want: 3},
		{name: "shift", expr: "1 << 4", want: 16},
		{name: "hex", expr: "0x10", want: 16},
		{name: "octal", expr: "010", want: 8},
		{name: "suffix", expr: "10UL", want: 10},
		{name: "char", expr: "'A'", want: 65},
		{name: "escape", expr: "'\\n'", want: 10},
		{name: "not", expr: "!0", want: 1},
		{name: "complement", expr: "~0", want: -1},
		{name: "negate", expr: "-(3)", want: -3},
		{name: "comparison", expr: "3 > 2", want: 1},
		{name: "logical", expr: "2 && 3", want: 1},
		{name: "conditional", expr: "0 ? 4 : 5", want: 5},
		{name: "bool cast", expr: "(bool)7", want: 1},
		{name: "truncating cast", expr: "(int)2.9", want: 2},
		{name: "explicit enumerator", prelude: "enum { RED = 5 };", expr: "RED + 2", want: 7},
		{name: "implicit enumerator", prelude: "enum { A, B, C };", expr: "C", want: 2},
		{name: "enumerator after explicit", prelude: "enum { P = 10, Q };", expr: "Q", want: 11},
		{name: "enumerator referencing enumerator", prelude: "enum { M = 4, N = M * 2 };", expr: "N", want: 8},
		{name: "macro literal", prelude: "#define LIMIT (-4)", expr: "LIMIT", want: -4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cond := condition(t, tt.prelude, tt.expr)
			v, ok := ast.Evaluate(cond)
			require.True(t, ok)
			got, exact := constant.Int64Val(constant.ToInt(v))
			require.True(t, exact)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluateUnknownValues(t *testing.T) {
	v, ok := ast.Evaluate(condition(t, "", "sizeof(long) * 2"))
	require.True(t, ok)
	assert.Equal(t, constant.Unknown, v.Kind())

	_, ok = ast.Evaluate(condition(t, "", "sizeof(long) / 0"))
	assert.False(t, ok)
}

func TestEvaluateAmbiguousConstant(t *testing.T) {
	prelude := "#ifdef A\n#define MODE 1\n#else\n#define MODE 2\n#endif"
	_, ok := ast.Evaluate(condition(t, prelude, "MODE"))
	assert.False(t, ok)
}
