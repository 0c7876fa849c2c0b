// ABOUTME: Text normalization and sentence-preferential chunking for provider dispatch
// ABOUTME: Chunks are capped by rune count so provider payloads stay bounded

package detection

import "strings"

// Normalize collapses all whitespace runs into single spaces and trims the
// result, so equal content always hashes to the same cache key.
func Normalize(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// SplitChunks breaks text into chunks of at most size runes. Cuts prefer the
// last sentence boundary inside the window; a hard cut only happens when a
// single sentence is longer than the window.
func SplitChunks(text string, size int) []string {
	runes := []rune(text)
	if len(runes) <= size {
		return []string{text}
	}

	var chunks []string
	for len(runes) > 0 {
		if len(runes) <= size {
			chunks = append(chunks, string(runes))
			break
		}

		cut := sentenceCut(runes[:size])
		if cut <= 0 {
			cut = size
		}
		chunks = append(chunks, strings.TrimSpace(string(runes[:cut])))
		runes = runes[cut:]
	}

	// Drop any empty chunk a trailing boundary may have produced.
	out := chunks[:0]
	for _, c := range chunks {
		if c != "" {
			out = append(out, c)
		}
	}
	return out
}

// sentenceCut returns the index just past the last sentence terminator in
// window, or 0 when there is none.
func sentenceCut(window []rune) int {
	for i := len(window) - 1; i > 0; i-- {
		switch window[i] {
		case '.', '!', '?', '\n':
			return i + 1
		}
	}
	return 0
}
