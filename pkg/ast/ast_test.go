package ast_test

import (
	"testing"

	"github.com/panbanda/covdiff/pkg/ast"
	"github.com/panbanda/covdiff/pkg/ast/treesitter"
	"github.com/panbanda/covdiff/pkg/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseC(t *testing.T, source string) *ast.Tree {
	t.Helper()
	p := treesitter.New()
	defer p.Close()

	tree, err := p.ParseSource([]byte(source), parser.LangC, "test.c")
	require.NoError(t, err)
	require.NotNil(t, tree.Root)
	return tree
}

func nodesOfType(tree *ast.Tree, nodeType string) []*ast.Node {
	var out []*ast.Node
	for _, n := range tree.Nodes() {
		if n.Type == nodeType {
			out = append(out, n)
		}
	}
	return out
}

func firstOfType(t *testing.T, tree *ast.Tree, nodeType string) *ast.Node {
	t.Helper()
	nodes := nodesOfType(tree, nodeType)
	require.NotEmpty(t, nodes, "no %s node", nodeType)
	return nodes[0]
}

func TestTreeStructure(t *testing.T) {
	src := `void f(int x) {
  int a = 1;
  if (x) return;
  a = 2;
}
`
	tree := parseC(t, src)

	assert.Equal(t, ast.KindTranslationUnit, tree.Root.Kind)
	assert.Nil(t, tree.Root.Parent)
	assert.Equal(t, "test.c", tree.Path)
	assert.Equal(t, "c", tree.Language)

	for _, n := range tree.Nodes() {
		assert.Same(t, tree, n.Tree())
		if n.Parent != nil {
			assert.Same(t, n, n.Parent.Children[n.Index])
		}
	}

	fn := firstOfType(t, tree, "function_definition")
	assert.Equal(t, ast.KindFunction, fn.Kind)
	assert.Equal(t, 1, fn.StartLine)
	assert.Equal(t, 5, fn.EndLine)

	ifNode := firstOfType(t, tree, "if_statement")
	assert.Equal(t, ast.KindIf, ifNode.Kind)
	assert.Equal(t, "if (x) return;", ifNode.Text())
}

func TestTreeDropsComments(t *testing.T) {
	tree := parseC(t, "int x; /* note */\n// line\nint y;\n")
	assert.Empty(t, nodesOfType(tree, "comment"))
	assert.Nil(t, tree.FirstNodeOnLine(2))
}

func TestFirstNodeOnLine(t *testing.T) {
	src := `int main(void) {
  int a = 1;
  a = 2; return a;
}
`
	tree := parseC(t, src)

	assert.Equal(t, ast.KindFunction, tree.FirstNodeOnLine(1).Kind)
	assert.Equal(t, ast.KindDeclaration, tree.FirstNodeOnLine(2).Kind)
	assert.Equal(t, ast.KindExprStmt, tree.FirstNodeOnLine(3).Kind)
	assert.Nil(t, tree.FirstNodeOnLine(40))
}

func TestFirstNodeOnLineElseIf(t *testing.T) {
	src := `int f(int x) {
  if (x) {
    x = 1;
  } else if (1) {
    x = 2;
  } else {
    x = 3;
  }
  return x;
}
`
	tree := parseC(t, src)

	elseIf := tree.FirstNodeOnLine(4)
	require.NotNil(t, elseIf)
	assert.Equal(t, ast.KindIf, elseIf.Kind)
	assert.Equal(t, ast.KindElse, elseIf.Parent.Kind)
	assert.Equal(t, 4, elseIf.StartLine)

	els := tree.FirstNodeOnLine(6)
	require.NotNil(t, els)
	assert.Equal(t, ast.KindCompound, els.Kind)
}

func TestOperatorCaptured(t *testing.T) {
	tree := parseC(t, "int f(int x) { return 1 + -x; }\n")
	bin := firstOfType(t, tree, "binary_expression")
	assert.Equal(t, "+", bin.Operator)
	assert.Equal(t, ast.KindBinary, bin.Kind)

	unary := firstOfType(t, tree, "unary_expression")
	assert.Equal(t, "-", unary.Operator)
}

func TestIsAncestor(t *testing.T) {
	tree := parseC(t, "void f(int x) {\n  if (x) return;\n}\n")
	ifNode := firstOfType(t, tree, "if_statement")
	ret := firstOfType(t, tree, "return_statement")

	assert.True(t, ast.IsAncestor(ifNode, ret))
	assert.True(t, ast.IsAncestor(ifNode, ifNode))
	assert.True(t, ast.IsAncestor(tree.Root, ret))
	assert.False(t, ast.IsAncestor(ret, ifNode))
	assert.False(t, ast.IsAncestor(nil, ret))
	assert.False(t, ast.IsAncestor(ifNode, nil))
}

func TestSibling(t *testing.T) {
	src := `void f(int x) {
  int a = 1;
  if (x) return;
  a = 2;
  switch (x) {
  case 1:
    a = 3;
    break;
  }
}
`
	tree := parseC(t, src)

	decl := tree.FirstNodeOnLine(2)
	ifNode := tree.FirstNodeOnLine(3)
	assign := tree.FirstNodeOnLine(4)
	require.Equal(t, ast.KindDeclaration, decl.Kind)
	require.Equal(t, ast.KindIf, ifNode.Kind)
	require.Equal(t, ast.KindExprStmt, assign.Kind)

	assert.Same(t, ifNode, ast.Sibling(assign, -1))
	assert.Same(t, assign, ast.Sibling(ifNode, 1))
	assert.Nil(t, ast.Sibling(decl, -1))
	assert.Nil(t, ast.Sibling(nil, -1))

	ret := firstOfType(t, tree, "return_statement")
	assert.Nil(t, ast.Sibling(ret, -1), "if branches are not a statement sequence")

	brk := firstOfType(t, tree, "break_statement")
	prev := ast.Sibling(brk, -1)
	require.NotNil(t, prev)
	assert.Equal(t, "a = 3;", prev.Text())

	caseNode := firstOfType(t, tree, "case_statement")
	stmts := ast.Statements(caseNode)
	require.Len(t, stmts, 2)
	assert.Equal(t, ast.KindBreak, stmts[1].Kind)

	fn := firstOfType(t, tree, "function_definition")
	assert.Nil(t, ast.Sibling(fn, -1))
}

func TestBranchesAndLoopBody(t *testing.T) {
	src := `void f(int x) {
  if (x) { x = 1; } else return;
  for (;;) break;
  while (x) continue;
  do { x--; } while (x);
}
`
	tree := parseC(t, src)

	cons, alt := ast.Branches(firstOfType(t, tree, "if_statement"))
	require.NotNil(t, cons)
	require.NotNil(t, alt)
	assert.Equal(t, ast.KindCompound, cons.Kind)
	assert.Equal(t, ast.KindReturn, alt.Kind)

	assert.Equal(t, ast.KindBreak, ast.LoopBody(firstOfType(t, tree, "for_statement")).Kind)
	assert.Equal(t, ast.KindContinue, ast.LoopBody(firstOfType(t, tree, "while_statement")).Kind)
	assert.Equal(t, ast.KindCompound, ast.LoopBody(firstOfType(t, tree, "do_statement")).Kind)
	assert.Nil(t, ast.LoopBody(tree.Root))

	c, a := ast.Branches(tree.Root)
	assert.Nil(t, c)
	assert.Nil(t, a)
}

func TestIsJump(t *testing.T) {
	tree := parseC(t, "void f(int x) {\n  for (;;) { if (x) break; continue; }\n  goto end;\nend:\n  return;\n}\n")
	assert.True(t, firstOfType(t, tree, "return_statement").IsJump())
	assert.True(t, firstOfType(t, tree, "break_statement").IsJump())
	assert.True(t, firstOfType(t, tree, "continue_statement").IsJump())
	assert.False(t, firstOfType(t, tree, "goto_statement").IsJump())
	var nilNode *ast.Node
	assert.False(t, nilNode.IsJump())
}
