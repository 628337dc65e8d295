package upload

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/erazemk/najdeno/internal/imaging"
)

func newTestDisk(t *testing.T) (*Disk, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "uploads")
	d, err := NewDisk(dir, 5<<20)
	if err != nil {
		t.Fatalf("NewDisk: %v", err)
	}
	d.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return d, dir
}

func TestDiskSave(t *testing.T) {
	d, dir := newTestDisk(t)
	ctx := context.Background()
	data := testJPEG(t)

	loc, err := d.Save(ctx, &File{Name: "blue backpack.jpg", MIME: imaging.JPEG, Data: data})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if loc != "/uploads/1700000000000-blue_backpack.jpg" {
		t.Errorf("unexpected locator %q", loc)
	}

	stored, err := os.ReadFile(filepath.Join(dir, "1700000000000-blue_backpack.jpg"))
	if err != nil {
		t.Fatalf("reading stored file: %v", err)
	}
	if len(stored) != len(data) {
		t.Errorf("expected %d bytes, got %d", len(data), len(stored))
	}

	// Same name in the same millisecond does not overwrite.
	loc2, err := d.Save(ctx, &File{Name: "blue backpack.jpg", MIME: imaging.JPEG, Data: data})
	if err != nil {
		t.Fatalf("second Save: %v", err)
	}
	if loc2 == loc {
		t.Errorf("expected a distinct locator, got %q twice", loc)
	}
}

func TestDiskRemove(t *testing.T) {
	d, dir := newTestDisk(t)
	ctx := context.Background()

	loc, _ := d.Save(ctx, &File{Name: "a.jpg", MIME: imaging.JPEG, Data: testJPEG(t)})
	if err := d.Remove(ctx, loc); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("expected empty upload dir, found %d entries", len(entries))
	}

	// Missing files and foreign locators are not errors.
	if err := d.Remove(ctx, loc); err != nil {
		t.Errorf("Remove missing: %v", err)
	}
	if err := d.Remove(ctx, "https://cdn.example.com/a.jpg"); err != nil {
		t.Errorf("Remove foreign: %v", err)
	}
}

func TestDiskRemoveStaysInDirectory(t *testing.T) {
	d, dir := newTestDisk(t)
	outside := filepath.Join(filepath.Dir(dir), "keep.txt")
	os.WriteFile(outside, []byte("x"), 0644)

	d.Remove(context.Background(), "/uploads/../keep.txt")

	if _, err := os.Stat(outside); err != nil {
		t.Errorf("file outside upload dir was touched: %v", err)
	}
}

func TestDiskHandler(t *testing.T) {
	d, _ := newTestDisk(t)
	loc, _ := d.Save(context.Background(), &File{Name: "a.jpg", MIME: imaging.JPEG, Data: testJPEG(t)})

	rec := httptest.NewRecorder()
	d.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, loc, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "image/jpeg") {
		t.Errorf("expected image/jpeg, got %q", ct)
	}

	rec = httptest.NewRecorder()
	d.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, URLPrefix, nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected directory listing to be hidden, got %d", rec.Code)
	}
}
