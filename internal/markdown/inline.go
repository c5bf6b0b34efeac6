package markdown

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

func rewriteStrong(doc *goquery.Document) {
	wrapTrimmed(doc, "strong", "**")
}

func rewriteEmphasis(doc *goquery.Document) {
	wrapTrimmed(doc, "em", "*")
}

// wrapTrimmed sets " {mark}{text}{mark} " on every tag element
func wrapTrimmed(doc *goquery.Document, tag, mark string) {
	doc.Find(tag).Each(func(_ int, s *goquery.Selection) {
		setText(s.Get(0), " "+mark+strings.TrimSpace(s.Text())+mark+" ")
	})
}

// rewriteInlineCode wraps code in backticks. Code inside fenced pre blocks is
// already flattened into the pre text by then.
func rewriteInlineCode(doc *goquery.Document) {
	doc.Find("code").Each(func(_ int, code *goquery.Selection) {
		setText(code.Get(0), "`"+code.Text()+"`")
	})
}
