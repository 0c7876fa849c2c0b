package domain

// ChunkInput is one named text chunk submitted for span-level scoring.
// StartChar/EndChar are optional character offsets into the source document.
type ChunkInput struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Kind      string `json:"kind,omitempty"`
	StartChar *int   `json:"start_char,omitempty"`
	EndChar   *int   `json:"end_char,omitempty"`
}

// ImageInput is one named image (base64 data URI) submitted for scoring
type ImageInput struct {
	ID    string `json:"id"`
	Image string `json:"image"`
}
