// ABOUTME: Data-URI image decoding, size validation and downscaling before dispatch
// ABOUTME: Oversized payloads are rejected; oversized dimensions are shrunk, not refused

package imageutil

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/gif"
	_ "image/png"
	"strings"

	"github.com/nfnt/resize"
)

const (
	// MaxDecodedBytes rejects images whose decoded payload exceeds ~2MB
	MaxDecodedBytes = 2 << 20

	// maxDimension is the longest edge sent to a provider; larger images
	// are downscaled first to keep backend payloads bounded.
	maxDimension = 1024

	jpegQuality = 85
)

// Decoded is a validated image payload ready for dispatch
type Decoded struct {
	MIME string
	Data []byte
}

// ParseDataURI decodes a base64 data URI (or bare base64 string) and
// enforces the decoded size cap.
func ParseDataURI(input string) (Decoded, error) {
	if strings.TrimSpace(input) == "" {
		return Decoded{}, fmt.Errorf("image payload is empty")
	}

	mime := "image/jpeg"
	payload := input

	if strings.HasPrefix(input, "data:") {
		rest := strings.TrimPrefix(input, "data:")
		sep := strings.Index(rest, ",")
		if sep < 0 {
			return Decoded{}, fmt.Errorf("malformed data URI")
		}
		meta := rest[:sep]
		payload = rest[sep+1:]

		if !strings.HasSuffix(meta, ";base64") {
			return Decoded{}, fmt.Errorf("data URI must be base64-encoded")
		}
		if m := strings.TrimSuffix(meta, ";base64"); m != "" {
			mime = m
		}
	}

	// Cheap pre-check on the encoded length before decoding anything.
	if len(payload)/4*3 > MaxDecodedBytes {
		return Decoded{}, fmt.Errorf("image exceeds %d byte limit", MaxDecodedBytes)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Decoded{}, fmt.Errorf("invalid base64 image data: %w", err)
	}
	if len(data) > MaxDecodedBytes {
		return Decoded{}, fmt.Errorf("image exceeds %d byte limit", MaxDecodedBytes)
	}

	return Decoded{MIME: mime, Data: data}, nil
}

// Normalize validates the payload decodes as an image and downscales
// anything whose longest edge exceeds maxDimension. The returned string is
// a data URI safe to forward to a provider.
func Normalize(input string) (string, error) {
	decoded, err := ParseDataURI(input)
	if err != nil {
		return "", err
	}

	img, _, err := image.Decode(bytes.NewReader(decoded.Data))
	if err != nil {
		return "", fmt.Errorf("payload is not a decodable image: %w", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() <= maxDimension && bounds.Dy() <= maxDimension {
		return toDataURI(decoded.MIME, decoded.Data), nil
	}

	scaled := resize.Thumbnail(maxDimension, maxDimension, img, resize.Lanczos3)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, scaled, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return "", fmt.Errorf("re-encode downscaled image: %w", err)
	}

	return toDataURI("image/jpeg", buf.Bytes()), nil
}

func toDataURI(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}
