package markdown

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ImageFormats are the file extensions that turn a link into an image
var ImageFormats = []string{"jpg", "jpeg", "png", "gif", "tiff", "webp", "svg", "pdf"}

// IsImageURL checks the text after the last dot of target against ImageFormats
func IsImageURL(target string) bool {
	ext := strings.ToLower(target[strings.LastIndex(target, ".")+1:])
	for _, format := range ImageFormats {
		if ext == format {
			return true
		}
	}
	return false
}

// LinkMarkdown renders a link or image target with its label
func LinkMarkdown(target, label string) string {
	switch {
	case IsImageURL(target) && label != "":
		return "\n![" + label + "](" + target + ")\n"
	case IsImageURL(target):
		return "\n![](" + target + ")\n"
	case label != "":
		return " [" + label + "](" + target + ") "
	default:
		return " " + target + " "
	}
}

// rewriteLinks replaces every tag element carrying href or src with a p holding its Markdown
func rewriteLinks(doc *goquery.Document, tag string) {
	doc.Find(tag).Each(func(_ int, s *goquery.Selection) {
		target, ok := s.Attr("href")
		if !ok {
			if target, ok = s.Attr("src"); !ok {
				return
			}
		}

		replaceNode(s.Get(0), newTextElement("p", LinkMarkdown(target, linkLabel(s))))
	})
}

// linkLabel uses the element text, falling back to alt for elements without text such as img
func linkLabel(s *goquery.Selection) string {
	label := collapseWhitespace(s.Text())
	if label == "" {
		alt, _ := s.Attr("alt")
		label = collapseWhitespace(alt)
	}
	return label
}
