// ABOUTME: Block extractor pulls candidate text regions out of a parsed document
// ABOUTME: Applies skip-lists, length bounds, viewport windowing and session dedup

package extract

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"content-shield-api/core/domain"
	"content-shield-api/core/fingerprint"
	"content-shield-api/core/interfaces"
)

// Extraction bounds. Blocks outside these are not worth a provider call.
const (
	MinChars  = 120
	MaxChars  = 2500
	MinWords  = 80
	MaxBlocks = 30

	// ViewportPad expands the visible window on both sides so content the
	// reader is about to scroll into is already scored.
	ViewportPad = 800

	// fallbackThreshold triggers the coarse container pass when the
	// fine-grained pass finds fewer qualifying blocks than this.
	fallbackThreshold = 3
)

// fineSelectors are the fine-grained candidate elements for the first pass
const fineSelectors = "p, blockquote, li, td, pre"

// coarseSelectors are the article-like containers for the fallback pass
const coarseSelectors = "article, main, [role='main'], .post-body, .article-body, .entry-content, .post-content"

// skipSelector excludes navigation, chrome and hidden regions before any
// other check runs.
const skipSelector = "nav, header, footer, aside, script, style, noscript, " +
	"[hidden], [aria-hidden='true'], [role='tooltip'], [role='dialog'], " +
	"[role='menu'], [role='navigation'], [role='banner']"

// boilerplatePattern matches class/id names of known page chrome
var boilerplatePattern = regexp.MustCompile(`(?i)(sidebar|navbar|breadcrumb|cookie|banner|promo|advert|widget|share-|related-|comment-form|site-footer|site-header)`)

// ViewportHint is the expanded viewport window in document character order.
// A nil hint disables viewport filtering.
type ViewportHint struct {
	Start int
	End   int
}

// Options controls one extraction pass
type Options struct {
	// URL of the page; selects a site strategy and feeds the readability
	// fallback. May be empty.
	URL string

	// Viewport restricts candidates to a window around the visible area.
	// Ignored when the site strategy skips viewport filtering.
	Viewport *ViewportHint

	// MaxBlocks caps new blocks per pass; defaults to MaxBlocks.
	MaxBlocks int
}

// Extractor produces new, non-duplicate content blocks from a document
type Extractor struct {
	logger interfaces.Logger
}

// New creates an extractor
func New(logger interfaces.Logger) *Extractor {
	return &Extractor{logger: logger}
}

// Extract walks the document and returns at most MaxBlocks blocks whose
// fingerprints are not yet in the session set. Accepted blocks are added to
// the set and registered in the reference table.
func (e *Extractor) Extract(doc *goquery.Document, opts Options, seen *fingerprint.Set, refs *fingerprint.RefTable) []domain.ContentBlock {
	maxBlocks := opts.MaxBlocks
	if maxBlocks <= 0 {
		maxBlocks = MaxBlocks
	}

	strategy := strategyFor(opts.URL)

	selectors := fineSelectors
	minChars := MinChars
	minWords := MinWords
	viewport := opts.Viewport
	if strategy != nil {
		selectors = strings.Join(strategy.selectors, ", ")
		if strategy.minChars > 0 {
			minChars = strategy.minChars
		}
		if strategy.minWords > 0 {
			minWords = strategy.minWords
		}
		if strategy.skipViewport {
			viewport = nil
		}
	}

	blocks := e.collect(doc, selectors, minChars, minWords, viewport, maxBlocks, seen, refs)

	// Coarse container fallback when fine-grained candidates were too sparse.
	if strategy == nil && len(blocks) < fallbackThreshold {
		more := e.collect(doc, coarseSelectors, minChars, minWords, nil, maxBlocks-len(blocks), seen, refs)
		blocks = append(blocks, more...)
	}

	// Last resort: let readability find the main article body.
	if len(blocks) == 0 && opts.URL != "" {
		blocks = e.readabilityPass(doc, opts.URL, minChars, minWords, maxBlocks, seen, refs)
	}

	if e.logger != nil {
		e.logger.Debug("Extraction pass complete", map[string]interface{}{
			"url":    opts.URL,
			"blocks": len(blocks),
		})
	}

	return blocks
}

// collect runs one selector pass, tracking document-order character offsets
// for the viewport filter.
func (e *Extractor) collect(doc *goquery.Document, selectors string, minChars, minWords int, viewport *ViewportHint, limit int, seen *fingerprint.Set, refs *fingerprint.RefTable) []domain.ContentBlock {
	if limit <= 0 {
		return nil
	}

	var blocks []domain.ContentBlock
	offset := 0

	doc.Find(selectors).EachWithBreak(func(i int, s *goquery.Selection) bool {
		text := normalize(s.Text())
		start := offset
		offset += len([]rune(text)) + 1

		if isSkipped(s) {
			return true
		}
		if len([]rune(text)) < minChars {
			return true
		}
		if countWords(text) < minWords {
			return true
		}
		if viewport != nil && !overlaps(start, offset, viewport) {
			return true
		}

		if runes := []rune(text); len(runes) > MaxChars {
			text = string(runes[:MaxChars])
		}

		fp := fingerprint.Compute(text)
		if !seen.Add(fp) {
			return true
		}

		id := "block-" + fp
		refs.Register(id, nodeRef(s, i))
		blocks = append(blocks, domain.ContentBlock{
			ID:        id,
			Text:      text,
			SourceRef: nodeRef(s, i),
		})

		return len(blocks) < limit
	})

	return blocks
}

// readabilityPass extracts the main article body and splits it into
// paragraph-sized blocks.
func (e *Extractor) readabilityPass(doc *goquery.Document, pageURL string, minChars, minWords, limit int, seen *fingerprint.Set, refs *fingerprint.RefTable) []domain.ContentBlock {
	u, err := url.Parse(pageURL)
	if err != nil {
		return nil
	}

	html, err := doc.Html()
	if err != nil {
		return nil
	}

	article, err := readability.FromReader(strings.NewReader(html), u)
	if err != nil {
		if e.logger != nil {
			e.logger.Warn("Readability fallback failed", map[string]interface{}{
				"url":   pageURL,
				"error": err.Error(),
			})
		}
		return nil
	}

	var blocks []domain.ContentBlock
	for i, para := range strings.Split(article.TextContent, "\n") {
		text := normalize(para)
		if len([]rune(text)) < minChars || countWords(text) < minWords {
			continue
		}
		if runes := []rune(text); len(runes) > MaxChars {
			text = string(runes[:MaxChars])
		}

		fp := fingerprint.Compute(text)
		if !seen.Add(fp) {
			continue
		}

		id := "block-" + fp
		ref := fmt.Sprintf("readability:%d", i)
		refs.Register(id, ref)
		blocks = append(blocks, domain.ContentBlock{ID: id, Text: text, SourceRef: ref})

		if len(blocks) >= limit {
			break
		}
	}

	return blocks
}

// isSkipped reports whether the element sits inside excluded page chrome
func isSkipped(s *goquery.Selection) bool {
	if s.Closest(skipSelector).Length() > 0 {
		return true
	}
	for n, depth := s, 0; n.Length() > 0 && depth < 8; n, depth = n.Parent(), depth+1 {
		marker := n.AttrOr("class", "") + " " + n.AttrOr("id", "")
		if boilerplatePattern.MatchString(marker) {
			return true
		}
	}
	return false
}

// normalize collapses all whitespace runs into single spaces and trims
func normalize(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

func countWords(text string) int {
	return len(strings.Fields(text))
}

// overlaps reports whether [start, end) intersects the padded viewport window
func overlaps(start, end int, v *ViewportHint) bool {
	return end > v.Start-ViewportPad && start < v.End+ViewportPad
}

// nodeRef builds the opaque handle stored in the reference table
func nodeRef(s *goquery.Selection, index int) string {
	return fmt.Sprintf("%s:%d", goquery.NodeName(s), index)
}
