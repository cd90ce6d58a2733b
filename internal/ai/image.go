package ai

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"strings"
)

// ErrImageNotFound is returned by Encode when the image file does not exist.
var ErrImageNotFound = errors.New("image file not found")

const fallbackImageType = "image/jpeg"

type ImageEncoder struct{}

func NewImageEncoder() *ImageEncoder {
	return &ImageEncoder{}
}

// Encode reads the file and returns its standard base64 encoding.
func (e *ImageEncoder) Encode(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrImageNotFound, path)
		}
		return "", fmt.Errorf("read image: %w", err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// DataURI wraps encoded image bytes into a data URI, sniffing the media type
// from the decoded head of the image.
func DataURI(encoded string) string {
	return "data:" + sniffImageType(encoded) + ";base64," + encoded
}

func sniffImageType(encoded string) string {
	// 684 base64 chars decode to the 512 bytes DetectContentType looks at.
	head := encoded
	if len(head) > 684 {
		head = head[:684]
	}
	head = head[:len(head)-len(head)%4]

	raw, err := base64.StdEncoding.DecodeString(head)
	if err != nil || len(raw) == 0 {
		return fallbackImageType
	}

	ct := http.DetectContentType(raw)
	if !strings.HasPrefix(ct, "image/") {
		return fallbackImageType
	}
	return ct
}
