package treesitter

import (
	"context"

	"github.com/panbanda/covdiff/pkg/ast"
	"github.com/panbanda/covdiff/pkg/parser"
	sitter "github.com/smacker/go-tree-sitter"
)

// Ensure Provider implements ast.Provider.
var _ ast.Provider = (*Provider)(nil)

// Provider implements ast.Provider using tree-sitter.
type Provider struct {
	parser *parser.Parser
	owned  bool
}

// New creates a new tree-sitter based provider.
func New() *Provider {
	return &Provider{
		parser: parser.New(),
		owned:  true,
	}
}

// NewWithParser creates a provider on top of an existing parser. Close does
// not release the parser; its owner does.
func NewWithParser(p *parser.Parser) *Provider {
	return &Provider{parser: p}
}

// Parse parses a file and returns its statement tree.
func (p *Provider) Parse(path string) (*ast.Tree, error) {
	return p.ParseCtx(context.Background(), path)
}

// ParseCtx parses a file with a cancellable context.
func (p *Provider) ParseCtx(ctx context.Context, path string) (*ast.Tree, error) {
	result, err := p.parser.ParseFileCtx(ctx, path)
	if err != nil {
		return nil, err
	}
	return FromParseResult(result), nil
}

// ParseSource parses in-memory source code.
func (p *Provider) ParseSource(source []byte, lang parser.Language, path string) (*ast.Tree, error) {
	result, err := p.parser.Parse(source, lang, path)
	if err != nil {
		return nil, err
	}
	return FromParseResult(result), nil
}

// Close releases parser resources.
func (p *Provider) Close() {
	if p.owned {
		p.parser.Close()
	}
}

// FromParseResult converts a tree-sitter parse into a statement tree and
// releases the tree-sitter tree.
func FromParseResult(result *parser.ParseResult) *ast.Tree {
	defer result.Tree.Close()

	cursor := sitter.NewTreeCursor(result.Tree.RootNode())
	defer cursor.Close()

	root := convert(cursor, "")
	return ast.NewTree(result.Path, string(result.Language), result.Source, root)
}

// convert builds the node under the cursor and its named descendants. The
// cursor is left on the same node it started on. Anonymous children are
// dropped except for operator tokens; comments are dropped.
func convert(cursor *sitter.TreeCursor, field string) *ast.Node {
	tsNode := cursor.CurrentNode()
	nodeType := tsNode.Type()

	n := &ast.Node{
		Kind:      ast.KindOf(nodeType),
		Type:      nodeType,
		Field:     field,
		StartLine: int(tsNode.StartPoint().Row) + 1,
		EndLine:   int(tsNode.EndPoint().Row) + 1,
		StartByte: tsNode.StartByte(),
		EndByte:   tsNode.EndByte(),
	}

	if !cursor.GoToFirstChild() {
		return n
	}
	for {
		child := cursor.CurrentNode()
		childField := cursor.CurrentFieldName()
		switch {
		case child.IsNamed() && child.Type() != "comment":
			n.Children = append(n.Children, convert(cursor, childField))
		case !child.IsNamed() && childField == "operator":
			n.Operator = child.Type()
		}
		if !cursor.GoToNextSibling() {
			break
		}
	}
	cursor.GoToParent()
	return n
}
