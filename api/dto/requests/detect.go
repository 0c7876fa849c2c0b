// ABOUTME: Request body shapes for the detection endpoints
// ABOUTME: Validation constraints live in huma tags so bad input never reaches the core

package requests

// DetectTextRequest is the body of POST /detect/text
type DetectTextRequest struct {
	Text string `json:"text" minLength:"1" maxLength:"100000" doc:"Text to score for AI generation"`
	URL  string `json:"url,omitempty" doc:"Page URL the text came from, for logging"`
}

// DetectImageRequest is the body of POST /detect/image
type DetectImageRequest struct {
	Image string `json:"image" minLength:"1" doc:"Base64 data URI of the image to score"`
}

// Chunk is one named text span in a batch request
type Chunk struct {
	ID        string `json:"id" minLength:"1" doc:"Caller-chosen chunk identifier"`
	Text      string `json:"text" minLength:"1" doc:"Chunk text"`
	Kind      string `json:"kind,omitempty" doc:"Free-form content kind hint"`
	StartChar *int   `json:"start_char,omitempty" doc:"Start offset in the source document"`
	EndChar   *int   `json:"end_char,omitempty" doc:"End offset in the source document"`
}

// Image is one named image in a batch request
type Image struct {
	ID    string `json:"id" minLength:"1" doc:"Caller-chosen image identifier"`
	Image string `json:"image" minLength:"1" doc:"Base64 data URI"`
}

// DetectTextSpansRequest is the body of POST /detect/text/spans
type DetectTextSpansRequest struct {
	Chunks []Chunk `json:"chunks" minItems:"1" maxItems:"100" doc:"Chunks to score individually"`
}

// DetectImageBatchRequest is the body of POST /detect/image/batch
type DetectImageBatchRequest struct {
	Images []Image `json:"images" minItems:"1" maxItems:"20" doc:"Images to score individually"`
}

// DetectPageRequest is the body of POST /detect/page
type DetectPageRequest struct {
	Chunks []Chunk `json:"chunks,omitempty" maxItems:"100" doc:"Text chunks from the page"`
	Images []Image `json:"images,omitempty" maxItems:"20" doc:"Images from the page"`
}
