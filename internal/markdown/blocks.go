package markdown

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	fence          = "```"
	tableSeparator = "---"
	maxHeaderLevel = 5
)

// TableMarkdown renders rows of cell text as a fenced pipe table. A separator
// row follows the first row when it is a header row.
func TableMarkdown(rows [][]string, headerRow bool) string {
	lines := make([]string, 0, len(rows)+1)
	for i, cells := range rows {
		lines = append(lines, "| "+strings.Join(cells, " | ")+" |")
		if i == 0 && headerRow {
			separators := make([]string, len(cells))
			for j := range separators {
				separators[j] = tableSeparator
			}
			lines = append(lines, "| "+strings.Join(separators, " | ")+" |")
		}
	}
	return "\n" + fence + "\n" + strings.Join(lines, "\n") + "\n" + fence + "\n"
}

func rewriteTables(doc *goquery.Document) {
	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		var rows [][]string
		headerRow := false

		table.Find("tr").Each(func(i int, row *goquery.Selection) {
			cells := []string{}
			row.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
				cells = append(cells, collapseWhitespace(cell.Text()))
			})
			if i == 0 {
				headerRow = row.Find("th").Length() > 0
			}
			rows = append(rows, cells)
		})

		replaceNode(table.Get(0), newTextElement("span", TableMarkdown(rows, headerRow)))
	})
}

// rewriteCodeBlocks fences pre elements that contain code, using the code class as language tag
func rewriteCodeBlocks(doc *goquery.Document) {
	doc.Find("pre").Each(func(_ int, pre *goquery.Selection) {
		code := pre.Find("code").First()
		if code.Length() == 0 {
			return
		}

		lang, _ := code.Attr("class")
		sep := "\n" + fence
		setText(pre.Get(0), sep+lang+"\n"+pre.Text()+sep+"\n")
	})
}

func rewriteListItems(doc *goquery.Document) {
	doc.Find("li").Each(func(_ int, li *goquery.Selection) {
		setText(li.Get(0), "- "+li.Text())
	})
}

// rewriteHeaders handles h1 through h5 in ascending order
func rewriteHeaders(doc *goquery.Document) {
	for level := 1; level <= maxHeaderLevel; level++ {
		prefix := strings.Repeat("#", level)
		doc.Find("h" + strconv.Itoa(level)).Each(func(_ int, h *goquery.Selection) {
			setText(h.Get(0), "\n"+prefix+" "+strings.TrimSpace(h.Text())+"\n")
		})
	}
}

func rewriteParagraphs(doc *goquery.Document) {
	doc.Find("p").Each(func(_ int, p *goquery.Selection) {
		setText(p.Get(0), "<br>"+collapseWhitespace(p.Text())+"<br>")
	})
}
