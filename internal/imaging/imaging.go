package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // register decoders for image.DecodeConfig
	_ "image/png"
	"net/http"

	_ "golang.org/x/image/webp"
)

// Supported formats.
const (
	JPEG = "image/jpeg"
	PNG  = "image/png"
	WebP = "image/webp"
)

// ErrUnsupported is returned for data that is not one of the allowed formats.
var ErrUnsupported = errors.New("unsupported image format")

// Extensions maps a format to the file extension used when storing it.
var Extensions = map[string]string{
	JPEG: ".jpg",
	PNG:  ".png",
	WebP: ".webp",
}

// Info describes a sniffed image.
type Info struct {
	MIME   string
	Width  int
	Height int
}

// Detect sniffs the format from the leading bytes (not trusting client
// headers), checks it against allowed and confirms that the image header
// decodes. Only the header is parsed; pixels are never decoded.
func Detect(data []byte, allowed []string) (*Info, error) {
	detected := http.DetectContentType(data)
	if !contains(allowed, detected) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, detected)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image header: %w", err)
	}
	if "image/"+format != detected {
		return nil, fmt.Errorf("%w: content is %s but decodes as %s", ErrUnsupported, detected, format)
	}

	return &Info{MIME: detected, Width: cfg.Width, Height: cfg.Height}, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
