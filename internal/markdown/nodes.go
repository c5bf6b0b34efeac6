package markdown

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// setText replaces all children of n with a single text node, like the DOM textContent setter
func setText(n *html.Node, text string) {
	for c := n.FirstChild; c != nil; c = n.FirstChild {
		n.RemoveChild(c)
	}
	n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
}

// newTextElement creates a detached element holding only text
func newTextElement(tag, text string) *html.Node {
	n := &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
	n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	return n
}

// replaceNode swaps old for replacement in old's parent. Siblings keep their order.
// Detached nodes are left alone.
func replaceNode(old, replacement *html.Node) {
	parent := old.Parent
	if parent == nil {
		return
	}
	parent.InsertBefore(replacement, old)
	parent.RemoveChild(old)
}

// collapseWhitespace trims s and folds internal whitespace runs to single spaces
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
