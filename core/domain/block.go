// ABOUTME: Content block types produced by the extractor during a scan pass
// ABOUTME: Blocks live and die with one scan pass and are never serialized with their source reference

package domain

// ContentBlock is one candidate text region pulled from a live document.
// SourceRef is an opaque back-reference to the originating node, kept only so
// the UI can highlight or blur it later; it is never owned and never sent to
// the server.
type ContentBlock struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	SourceRef string `json:"-"`
}

// Preview returns a short prefix of the block's text for display
func (b ContentBlock) Preview() string {
	const previewLen = 120
	runes := []rune(b.Text)
	if len(runes) <= previewLen {
		return b.Text
	}
	return string(runes[:previewLen]) + "..."
}
