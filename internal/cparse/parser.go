package cparse

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"
)

// Parser wraps a tree-sitter parser configured for C.
type Parser struct {
	parser *sitter.Parser
}

// NewParser creates a parser for C translation units.
func NewParser() *Parser {
	p := sitter.NewParser()
	p.SetLanguage(c.GetLanguage())
	return &Parser{parser: p}
}

// Parse parses one translation unit. The caller owns the returned tree
// and must Close it.
func (p *Parser) Parse(src []byte) (*sitter.Tree, error) {
	tree, err := p.parser.ParseCtx(context.Background(), nil, src)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	return tree, nil
}

// --- node helpers ---

func nodeText(n *sitter.Node, src []byte) string {
	if n == nil {
		return ""
	}
	return n.Content(src)
}

func findChildByType(n *sitter.Node, nodeType string) *sitter.Node {
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child.Type() == nodeType {
			return child
		}
	}
	return nil
}

func findDescendantByType(n *sitter.Node, nodeType string) *sitter.Node {
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child.Type() == nodeType {
			return child
		}
		if found := findDescendantByType(child, nodeType); found != nil {
			return found
		}
	}
	return nil
}
