package upload

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/erazemk/najdeno/internal/imaging"
)

// URLPrefix is the route disk uploads are served under.
const URLPrefix = "/uploads/"

// Disk stores uploads in a local directory served by Handler.
type Disk struct {
	dir      string
	maxBytes int64
	now      func() time.Time
}

// NewDisk creates the upload directory if needed.
func NewDisk(dir string, maxBytes int64) (*Disk, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating upload directory: %w", err)
	}
	return &Disk{dir: dir, maxBytes: maxBytes, now: time.Now}, nil
}

// Name implements Sink.
func (d *Disk) Name() string { return "disk" }

// Limits implements Sink.
func (d *Disk) Limits() Limits {
	return Limits{
		MaxBytes: d.maxBytes,
		Allowed:  []string{imaging.JPEG, imaging.PNG, imaging.WebP},
	}
}

// Save implements Sink. Files are named <unix millis>-<sanitized name>; on a
// collision the timestamp is bumped.
func (d *Disk) Save(ctx context.Context, f *File) (string, error) {
	base := SanitizeName(f.Name, f.MIME)
	ts := d.now().UnixMilli()

	for attempt := 0; attempt < 10; attempt++ {
		name := fmt.Sprintf("%d-%s", ts+int64(attempt), base)
		out, err := os.OpenFile(filepath.Join(d.dir, name), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("creating upload file: %w", err)
		}

		if _, err := out.Write(f.Data); err != nil {
			out.Close()
			os.Remove(out.Name())
			return "", fmt.Errorf("writing upload file: %w", err)
		}
		if err := out.Close(); err != nil {
			os.Remove(out.Name())
			return "", fmt.Errorf("closing upload file: %w", err)
		}
		return URLPrefix + name, nil
	}

	return "", fmt.Errorf("no free upload filename for %s", base)
}

// Remove implements Sink.
func (d *Disk) Remove(ctx context.Context, locator string) error {
	if !strings.HasPrefix(locator, URLPrefix) {
		return nil
	}
	name := path.Base(locator)
	if name == "." || name == "/" || name == ".." {
		return nil
	}

	err := os.Remove(filepath.Join(d.dir, name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing upload: %w", err)
	}
	return nil
}

// Handler serves the upload directory without listings. Mount it at URLPrefix.
func (d *Disk) Handler() http.Handler {
	files := http.StripPrefix(URLPrefix, http.FileServer(http.Dir(d.dir)))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Cache-Control", "public, max-age=3600")
		files.ServeHTTP(w, r)
	})
}
