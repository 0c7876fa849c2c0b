package extract

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"

	"content-shield-api/core/fingerprint"
)

// longText returns a paragraph comfortably above the char and word floors
func longText(seed string) string {
	return seed + " " + strings.Repeat("the quick brown fox jumps over the lazy dog and keeps running ", 12)
}

func parseDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("failed to parse test document: %v", err)
	}
	return doc
}

func newSession() (*fingerprint.Set, *fingerprint.RefTable) {
	return fingerprint.NewSet(), fingerprint.NewRefTable()
}

func TestExtract_QualifyingParagraph(t *testing.T) {
	doc := parseDoc(t, "<html><body><p>"+longText("alpha")+"</p></body></html>")
	seen, refs := newSession()

	blocks := New(nil).Extract(doc, Options{}, seen, refs)

	assert.Len(t, blocks, 1)
	assert.NotEmpty(t, blocks[0].ID)
	assert.GreaterOrEqual(t, len(blocks[0].Text), MinChars)

	_, ok := refs.Lookup(blocks[0].ID)
	assert.True(t, ok, "accepted block should be registered in the ref table")
}

func TestExtract_BelowWordFloorSkipped(t *testing.T) {
	// Long enough in characters but far below the 80-word floor.
	text := strings.Repeat("abcdefghij", 15)
	doc := parseDoc(t, "<html><body><p>"+text+"</p></body></html>")
	seen, refs := newSession()

	blocks := New(nil).Extract(doc, Options{}, seen, refs)

	assert.Empty(t, blocks)
}

func TestExtract_SkipListExcluded(t *testing.T) {
	html := "<html><body>" +
		"<nav><p>" + longText("navigation") + "</p></nav>" +
		"<div aria-hidden=\"true\"><p>" + longText("hidden") + "</p></div>" +
		"<div class=\"sidebar\"><p>" + longText("sidebar") + "</p></div>" +
		"<p>" + longText("real") + "</p>" +
		"</body></html>"
	doc := parseDoc(t, html)
	seen, refs := newSession()

	blocks := New(nil).Extract(doc, Options{}, seen, refs)

	assert.Len(t, blocks, 1)
	assert.Contains(t, blocks[0].Text, "real")
}

func TestExtract_SecondPassYieldsNothing(t *testing.T) {
	html := "<html><body><p>" + longText("one") + "</p><p>" + longText("two") + "</p></body></html>"
	doc := parseDoc(t, html)
	seen, refs := newSession()
	e := New(nil)

	first := e.Extract(doc, Options{}, seen, refs)
	second := e.Extract(doc, Options{}, seen, refs)

	assert.Len(t, first, 2)
	assert.Empty(t, second, "unchanged document should yield zero new blocks")
}

func TestExtract_CoarseFallback(t *testing.T) {
	// Body text lives in a bare div inside article, invisible to the
	// fine-grained selectors.
	html := "<html><body><article><div>" + longText("article") + "</div></article></body></html>"
	doc := parseDoc(t, html)
	seen, refs := newSession()

	blocks := New(nil).Extract(doc, Options{}, seen, refs)

	assert.Len(t, blocks, 1)
	assert.Contains(t, blocks[0].Text, "article")
}

func TestExtract_ViewportFilter(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("<html><body>")
	for i := 0; i < 10; i++ {
		sb.WriteString("<p>" + longText("paragraph") + "</p>")
	}
	sb.WriteString("</body></html>")
	doc := parseDoc(t, sb.String())

	seen, refs := newSession()
	windowed := New(nil).Extract(doc, Options{Viewport: &ViewportHint{Start: 0, End: 100}}, seen, refs)

	seenAll, refsAll := newSession()
	all := New(nil).Extract(doc, Options{}, seenAll, refsAll)

	assert.Less(t, len(windowed), len(all), "a narrow viewport should admit fewer blocks")
	assert.NotEmpty(t, windowed, "padded window should still admit leading blocks")
}

func TestExtract_SiteStrategyRelaxesFloors(t *testing.T) {
	post := "This short post was written by a very suspicious robot account today."
	html := "<html><body><div data-testid=\"tweetText\">" + post + "</div></body></html>"
	doc := parseDoc(t, html)
	seen, refs := newSession()

	blocks := New(nil).Extract(doc, Options{URL: "https://x.com/user/status/1"}, seen, refs)

	assert.Len(t, blocks, 1)
	assert.Equal(t, post, blocks[0].Text)
}

func TestExtract_MaxBlocksCap(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("<html><body>")
	for i := 0; i < 40; i++ {
		sb.WriteString("<p>block number " + strings.Repeat("word ", 5) + longText(string(rune('a'+i%26))+"-") + "</p>")
	}
	sb.WriteString("</body></html>")
	doc := parseDoc(t, sb.String())
	seen, refs := newSession()

	blocks := New(nil).Extract(doc, Options{MaxBlocks: 5}, seen, refs)

	assert.Len(t, blocks, 5)
}

func TestNormalize_CollapsesWhitespace(t *testing.T) {
	assert.Equal(t, "a b c", normalize("  a\n\tb   c \n"))
}
