package markdown

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseDoc(t *testing.T, body string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<html><body>" + body + "</body></html>"))
	require.NoError(t, err)
	return doc
}

func TestRewriteLinks_NonImage(t *testing.T) {
	t.Parallel()

	doc := parseDoc(t, `<div><a href="https://iana.org/domains/example">Learn more</a></div>`)
	rewriteLinks(doc, "a")

	assert.Equal(t, 0, doc.Find("a").Length())
	assert.Equal(t, " [Learn more](https://iana.org/domains/example) ", doc.Find("div > p").Text())
}

func TestRewriteLinks_CollapsesLabelWhitespace(t *testing.T) {
	t.Parallel()

	doc := parseDoc(t, `<div><a href="/docs">  Read
		the   <b>docs</b> </a></div>`)
	rewriteLinks(doc, "a")

	assert.Equal(t, " [Read the docs](/docs) ", doc.Find("div > p").Text())
}

func TestRewriteLinks_EmptyLabel(t *testing.T) {
	t.Parallel()

	doc := parseDoc(t, `<div><a href="https://example.com/page"></a></div>`)
	rewriteLinks(doc, "a")

	assert.Equal(t, " https://example.com/page ", doc.Find("div > p").Text())
}

func TestRewriteLinks_EmptyHref(t *testing.T) {
	t.Parallel()

	doc := parseDoc(t, `<div><a href="">Home</a></div>`)
	rewriteLinks(doc, "a")

	assert.Equal(t, " [Home]() ", doc.Find("div > p").Text())
}

func TestRewriteLinks_LinkToImageFile(t *testing.T) {
	t.Parallel()

	doc := parseDoc(t, `<div><a href="https://example.com/photo.JPG">Photo</a></div>`)
	rewriteLinks(doc, "a")

	assert.Equal(t, "\n![Photo](https://example.com/photo.JPG)\n", doc.Find("div > p").Text())
}

func TestRewriteLinks_SkipsWithoutTarget(t *testing.T) {
	t.Parallel()

	doc := parseDoc(t, `<div><a name="top">anchor</a></div>`)
	rewriteLinks(doc, "a")

	assert.Equal(t, 1, doc.Find("a").Length())
	assert.Equal(t, 0, doc.Find("p").Length())
}

func TestRewriteImages_SVGWithAlt(t *testing.T) {
	t.Parallel()

	src := "https://blog.mozilla.org/wp-content/themes/foxtail/assets/images/icons/search.svg"
	doc := parseDoc(t, `<div><img class="icon" src="`+src+`" alt="search"></div>`)
	rewriteLinks(doc, "img")

	text := doc.Find("div > p").Text()
	assert.Equal(t, "\n![search]("+src+")\n", text)
	assert.NotContains(t, text, " [")
}

func TestRewriteImages_WithoutAlt(t *testing.T) {
	t.Parallel()

	doc := parseDoc(t, `<div><img src="/img/cat.webp"></div>`)
	rewriteLinks(doc, "img")

	assert.Equal(t, "\n![](/img/cat.webp)\n", doc.Find("div > p").Text())
}

func TestRewriteLinks_PreservesSiblingOrder(t *testing.T) {
	t.Parallel()

	doc := parseDoc(t, `<div><span>before</span><a href="/x">x</a><span>after</span></div>`)
	rewriteLinks(doc, "a")

	children := doc.Find("div").Children()
	require.Equal(t, 3, children.Length())
	assert.Equal(t, "span", goquery.NodeName(children.Eq(0)))
	assert.Equal(t, "p", goquery.NodeName(children.Eq(1)))
	assert.Equal(t, "after", children.Eq(2).Text())
}

func TestIsImageURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		url  string
		want bool
	}{
		{"https://example.com/a.png", true},
		{"https://example.com/a.jpeg", true},
		{"https://example.com/doc.pdf", true},
		{"https://example.com/a.TIFF", true},
		{"https://iana.org/domains/example", false},
		{"https://example.com/a.png?w=100", false},
		{"no-dot-at-all", false},
		{"", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, IsImageURL(tt.url), tt.url)
	}
}

func TestLinkMarkdown_EmptyTarget(t *testing.T) {
	t.Parallel()

	assert.Equal(t, " [label]() ", LinkMarkdown("", "label"))
	assert.Equal(t, "  ", LinkMarkdown("", ""))
}

func TestRewriteTables_WithHeaderRow(t *testing.T) {
	t.Parallel()

	doc := parseDoc(t, `<div><table>
		<tr><th>A</th><th>B</th></tr>
		<tr><td>C</td><td>D</td></tr>
	</table></div>`)
	rewriteTables(doc)

	assert.Equal(t, 0, doc.Find("table").Length())
	text := doc.Find("div > span").Text()
	assert.Equal(t, "\n```\n| A | B |\n| --- | --- |\n| C | D |\n```\n", text)

	lines := strings.Split(strings.Trim(text, "\n"), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, []string{"| A | B |", "| --- | --- |", "| C | D |"}, lines[1:4])
}

func TestRewriteTables_WithoutHeaderRow(t *testing.T) {
	t.Parallel()

	doc := parseDoc(t, `<div><table><tr><td> x  y </td><td><b>z</b></td></tr></table></div>`)
	rewriteTables(doc)

	assert.Equal(t, "\n```\n| x y | z |\n```\n", doc.Find("div > span").Text())
}

func TestRewriteStrongAndEmphasis(t *testing.T) {
	t.Parallel()

	doc := parseDoc(t, `<p><strong> bold </strong> and <em>italic </em></p>`)
	rewriteStrong(doc)
	rewriteEmphasis(doc)

	assert.Equal(t, " **bold** ", doc.Find("strong").Text())
	assert.Equal(t, " *italic* ", doc.Find("em").Text())
}

func TestRewriteCodeBlocks_WithLanguage(t *testing.T) {
	t.Parallel()

	doc := parseDoc(t, `<pre><code class="language-go">fmt.Println("hi")</code></pre>`)
	rewriteCodeBlocks(doc)

	assert.Equal(t, "\n```language-go\nfmt.Println(\"hi\")\n```\n", doc.Find("pre").Text())
	assert.Equal(t, 0, doc.Find("pre code").Length())
}

func TestRewriteCodeBlocks_WithoutClass(t *testing.T) {
	t.Parallel()

	doc := parseDoc(t, `<pre><code>ls -la</code></pre>`)
	rewriteCodeBlocks(doc)

	assert.Equal(t, "\n```\nls -la\n```\n", doc.Find("pre").Text())
}

func TestRewriteCodeBlocks_PreWithoutCodeUntouched(t *testing.T) {
	t.Parallel()

	doc := parseDoc(t, `<pre><span>plain</span></pre>`)
	rewriteCodeBlocks(doc)

	assert.Equal(t, "plain", doc.Find("pre").Text())
	assert.Equal(t, 1, doc.Find("pre span").Length())
}

func TestRewriteInlineCode(t *testing.T) {
	t.Parallel()

	doc := parseDoc(t, `<p>Use <code>go test</code> here</p>`)
	rewriteInlineCode(doc)

	assert.Equal(t, "`go test`", doc.Find("code").Text())
}

func TestRewriteListItems(t *testing.T) {
	t.Parallel()

	doc := parseDoc(t, `<ul><li>One</li><li></li></ul>`)
	rewriteListItems(doc)

	items := doc.Find("li")
	assert.Equal(t, "- One", items.Eq(0).Text())
	assert.Equal(t, "- ", items.Eq(1).Text())
}

func TestRewriteHeaders(t *testing.T) {
	t.Parallel()

	doc := parseDoc(t, `<h1> header </h1><h2>header</h2><h5>
		deep </h5><h6>untouched</h6>`)
	rewriteHeaders(doc)

	assert.Equal(t, "\n# header\n", doc.Find("h1").Text())
	assert.Equal(t, "\n## header\n", doc.Find("h2").Text())
	assert.Equal(t, "\n##### deep\n", doc.Find("h5").Text())
	assert.Equal(t, "untouched", doc.Find("h6").Text())
}

func TestRewriteParagraphs(t *testing.T) {
	t.Parallel()

	doc := parseDoc(t, `<p>  many
		spaces   here </p><p></p>`)
	rewriteParagraphs(doc)

	paragraphs := doc.Find("p")
	assert.Equal(t, "<br>many spaces here<br>", paragraphs.Eq(0).Text())
	assert.Equal(t, "<br><br>", paragraphs.Eq(1).Text())
}

func TestRewrite_FullPipelineOrdering(t *testing.T) {
	t.Parallel()

	doc := parseDoc(t, `<article>
<h3> <em>Title</em> </h3>
<p>Some <strong>bold <em>both</em></strong> text with <code>x</code>.</p>
<pre><code class="bash">echo <b>hi</b></code></pre>
<ul><li><a href="https://example.com">Example</a></li></ul>
</article>`)

	require.NoError(t, Rewrite(doc))

	assert.Equal(t, "\n### *Title*\n", doc.Find("h3").Text())
	assert.Equal(t, "<br>Some **bold both** text with `x`.<br>", doc.Find("article > p").First().Text())
	assert.Equal(t, "\n```bash\necho hi\n```\n", doc.Find("pre").Text())
	// list items flatten the link paragraph before the paragraph rule runs
	assert.Equal(t, "-  [Example](https://example.com) ", doc.Find("li").Text())
	assert.Equal(t, 0, doc.Find("li p").Length())
}

func TestRewrite_SecondCallRejected(t *testing.T) {
	t.Parallel()

	doc := parseDoc(t, `<ul><li>item</li></ul><code>x</code>`)
	require.NoError(t, Rewrite(doc))
	assert.True(t, IsRewritten(doc))

	err := Rewrite(doc)

	assert.ErrorIs(t, err, ErrAlreadyRewritten)
	assert.Equal(t, "- item", doc.Find("li").Text())
	assert.Equal(t, "`x`", doc.Find("code").Text())
}

func TestRewrite_NilDocument(t *testing.T) {
	t.Parallel()

	assert.ErrorIs(t, Rewrite(nil), ErrEmptyDocument)
}

func TestClone_LeavesOriginalUntouched(t *testing.T) {
	t.Parallel()

	doc := parseDoc(t, `<h2>header</h2><p><a href="/a">A</a></p>`)
	clone := Clone(doc)
	require.NotNil(t, clone)

	require.NoError(t, Rewrite(clone))

	assert.False(t, IsRewritten(doc))
	assert.Equal(t, "header", doc.Find("h2").Text())
	assert.Equal(t, 1, doc.Find("a").Length())
	assert.Equal(t, "\n## header\n", clone.Find("h2").Text())

	// the same original can be rewritten again through a fresh clone
	require.NoError(t, Rewrite(Clone(doc)))
}

func TestClone_OfRewrittenDocumentIsRewritten(t *testing.T) {
	t.Parallel()

	doc := parseDoc(t, `<p>text</p>`)
	require.NoError(t, Rewrite(doc))

	assert.ErrorIs(t, Rewrite(Clone(doc)), ErrAlreadyRewritten)
}
