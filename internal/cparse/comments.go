package cparse

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// annotationMaxLen bounds what still counts as a macro-style export
// annotation (e.g. JSON_EXPORT) when walking over preceding siblings.
const annotationMaxLen = 50

// leadingComment collects the contiguous comment block immediately above
// a node. It walks backward over named siblings, stopping at a paragraph
// break (more than two newlines of gap) or at any substantial sibling.
// Short macro-style annotations between the comment and the node are
// skipped so documentation above an annotated prototype is still found.
func leadingComment(node *sitter.Node, src []byte) string {
	var comments []string
	current := node
	prev := node.PrevNamedSibling()

	for prev != nil {
		switch prev.Type() {
		case "comment":
			gap := string(src[prev.EndByte():current.StartByte()])
			if strings.Count(gap, "\n") > 2 {
				return strings.Join(comments, "\n")
			}
			comments = append([]string{prev.Content(src)}, comments...)
			current = prev
			prev = prev.PrevNamedSibling()
		case "declaration":
			text := strings.TrimSpace(prev.Content(src))
			if len(text) < annotationMaxLen && !strings.Contains(text, "(") {
				current = prev
				prev = prev.PrevNamedSibling()
				continue
			}
			return strings.Join(comments, "\n")
		case "expression_statement":
			text := strings.TrimSpace(prev.Content(src))
			if len(text) < annotationMaxLen {
				current = prev
				prev = prev.PrevNamedSibling()
				continue
			}
			return strings.Join(comments, "\n")
		default:
			return strings.Join(comments, "\n")
		}
	}

	return strings.Join(comments, "\n")
}
