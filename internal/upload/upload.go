// Package upload stores item photos and hands back a locator (a path or URL)
// the browser can load them from.
package upload

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/erazemk/najdeno/internal/imaging"
)

var (
	// ErrTooLarge is returned when an upload exceeds the sink's size limit.
	ErrTooLarge = errors.New("image exceeds the maximum upload size")
	// ErrInvalidImage is returned for uploads that are not an allowed image.
	ErrInvalidImage = errors.New("invalid image")
)

// Limits constrain what a sink accepts.
type Limits struct {
	// MaxBytes is the largest accepted file. Zero means no limit.
	MaxBytes int64
	// Allowed lists the accepted MIME types.
	Allowed []string
}

// File is a validated upload.
type File struct {
	Name string
	MIME string
	Data []byte
}

// Sink persists uploaded images.
type Sink interface {
	// Limits reports the accepted size and formats.
	Limits() Limits
	// Save stores the file and returns its locator.
	Save(ctx context.Context, f *File) (string, error)
	// Remove deletes a previously saved file. Locators the sink does not own
	// are ignored.
	Remove(ctx context.Context, locator string) error
	// Name identifies the sink in logs.
	Name() string
}

// Accept checks data against the sink's limits and sniffs its format.
func Accept(limits Limits, name string, data []byte) (*File, error) {
	if limits.MaxBytes > 0 && int64(len(data)) > limits.MaxBytes {
		return nil, ErrTooLarge
	}
	info, err := imaging.Detect(data, limits.Allowed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	return &File{Name: name, MIME: info.MIME, Data: data}, nil
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// SanitizeName makes a client-supplied filename safe to store: directories
// are stripped, whitespace becomes underscores and anything else outside
// [A-Za-z0-9._-] is dropped. The extension is forced to match mime.
func SanitizeName(name, mime string) string {
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	name = strings.Join(strings.Fields(name), "_")
	name = unsafeChars.ReplaceAllString(name, "")

	ext := strings.ToLower(filepath.Ext(name))
	stem := strings.TrimLeft(strings.TrimSuffix(name, filepath.Ext(name)), ".")
	if stem == "" {
		stem = "image"
	}
	if len(stem) > 80 {
		stem = stem[:80]
	}

	want := imaging.Extensions[mime]
	if ext == ".jpeg" && mime == imaging.JPEG {
		want = ext
	}
	if want == "" {
		want = ext
	}
	return stem + want
}
