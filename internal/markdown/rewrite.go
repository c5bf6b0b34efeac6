// Package markdown rewrites a parsed HTML document in place so that the plain
// text of its nodes already reads as Markdown. Headings, emphasis, links,
// images, lists, tables and code blocks are folded into text content before a
// readability pass serializes the tree.
package markdown

import (
	"errors"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// ErrAlreadyRewritten is returned when Rewrite is called on a tree it has already processed.
var ErrAlreadyRewritten = errors.New("document already rewritten")

// ErrEmptyDocument is returned for a document without a root node.
var ErrEmptyDocument = errors.New("empty document")

// rewrittenAttr is stored on the document node, which is never rendered.
const rewrittenAttr = "data-md-rewritten"

// Step is a single rewrite rule applied to the whole document
type Step struct {
	Name  string
	Apply func(doc *goquery.Document)
}

// Steps lists the rewrite rules in the order Rewrite applies them. Later rules
// overwrite text content and flatten descendant markup, so links and tables go
// first and paragraphs go last.
var Steps = []Step{
	{Name: "links", Apply: func(doc *goquery.Document) { rewriteLinks(doc, "a") }},
	{Name: "images", Apply: func(doc *goquery.Document) { rewriteLinks(doc, "img") }},
	{Name: "tables", Apply: rewriteTables},
	{Name: "strong", Apply: rewriteStrong},
	{Name: "em", Apply: rewriteEmphasis},
	{Name: "code blocks", Apply: rewriteCodeBlocks},
	{Name: "inline code", Apply: rewriteInlineCode},
	{Name: "list items", Apply: rewriteListItems},
	{Name: "headers", Apply: rewriteHeaders},
	{Name: "paragraphs", Apply: rewriteParagraphs},
}

// Rewrite applies every step to doc exactly once. A second call on the same
// tree, or on a clone of a rewritten tree, returns ErrAlreadyRewritten and
// leaves the text untouched.
func Rewrite(doc *goquery.Document) error {
	root := rootNode(doc)
	if root == nil {
		return ErrEmptyDocument
	}
	if IsRewritten(doc) {
		return ErrAlreadyRewritten
	}

	for _, step := range Steps {
		step.Apply(doc)
	}

	root.Attr = append(root.Attr, html.Attribute{Key: rewrittenAttr, Val: "true"})
	return nil
}

// IsRewritten reports whether Rewrite has already run on doc
func IsRewritten(doc *goquery.Document) bool {
	root := rootNode(doc)
	if root == nil {
		return false
	}
	for _, attr := range root.Attr {
		if attr.Key == rewrittenAttr {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of doc. Mutating the copy never touches the original.
func Clone(doc *goquery.Document) *goquery.Document {
	if rootNode(doc) == nil {
		return nil
	}
	clone := goquery.NewDocumentFromNode(doc.Selection.Clone().Get(0))
	clone.Url = doc.Url
	return clone
}

func rootNode(doc *goquery.Document) *html.Node {
	if doc == nil || doc.Selection == nil || doc.Length() == 0 {
		return nil
	}
	return doc.Get(0)
}
