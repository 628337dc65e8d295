package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/erazemk/najdeno/internal/config"
	"github.com/erazemk/najdeno/internal/items"
)

func testConfig(t *testing.T, storage string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg, err := config.FromEnv(func(key string) string {
		switch key {
		case "STORAGE":
			return storage
		case "DB_PATH":
			return filepath.Join(dir, "test.sqlite3")
		case "DATA_FILE":
			return filepath.Join(dir, "items.json")
		case "UPLOAD_DIR":
			return filepath.Join(dir, "uploads")
		case "CORS_ORIGINS":
			return "https://example.com"
		}
		return ""
	})
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	return cfg
}

func TestOpenBackend(t *testing.T) {
	for _, storage := range []string{config.StorageSQLite, config.StorageJSON} {
		t.Run(storage, func(t *testing.T) {
			backend, closeBackend, err := openBackend(context.Background(), testConfig(t, storage))
			if err != nil {
				t.Fatalf("openBackend: %v", err)
			}
			defer closeBackend()

			if backend.Name() != storage {
				t.Errorf("expected %s backend, got %s", storage, backend.Name())
			}
			if err := backend.Ping(context.Background()); err != nil {
				t.Errorf("Ping: %v", err)
			}
		})
	}
}

func TestHandlerWiring(t *testing.T) {
	cfg := testConfig(t, config.StorageJSON)
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	backend, closeBackend, err := openBackend(context.Background(), cfg)
	if err != nil {
		t.Fatalf("openBackend: %v", err)
	}
	defer closeBackend()
	sink, err := openSink(context.Background(), cfg)
	if err != nil {
		t.Fatalf("openSink: %v", err)
	}

	handler, err := newHandler(cfg, items.NewRepository(backend, false), sink, logger)
	if err != nil {
		t.Fatalf("newHandler: %v", err)
	}

	tests := []struct {
		path   string
		status int
	}{
		{"/api/items", http.StatusOK},
		{"/api/health", http.StatusOK},
		{"/", http.StatusOK},
		{"/report", http.StatusOK},
		{"/uploads/missing.jpg", http.StatusNotFound},
		{"/uploads/", http.StatusNotFound},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, tt.path, nil)
		req.Header.Set("Origin", "https://example.com")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != tt.status {
			t.Errorf("GET %s: expected %d, got %d", tt.path, tt.status, rec.Code)
		}
		if rec.Header().Get("X-Request-Id") == "" {
			t.Errorf("GET %s: missing X-Request-Id", tt.path)
		}
		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://example.com" {
			t.Errorf("GET %s: unexpected CORS origin %q", tt.path, got)
		}
	}
}

func TestLevelRouter(t *testing.T) {
	var stdout, stderr bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	logger.AddHook(&levelRouter{stdout: &stdout, stderr: &stderr})

	logger.Info("hello")
	logger.Warn("careful")
	logger.Error("broken")

	if !strings.Contains(stdout.String(), "hello") || !strings.Contains(stdout.String(), "careful") {
		t.Errorf("expected info and warn on stdout, got %q", stdout.String())
	}
	if strings.Contains(stdout.String(), "broken") {
		t.Error("error leaked to stdout")
	}
	if !strings.Contains(stderr.String(), "broken") {
		t.Errorf("expected error on stderr, got %q", stderr.String())
	}
}

func TestSetupLoggerRejectsLevel(t *testing.T) {
	if _, _, err := setupLogger("", "chatty"); err == nil {
		t.Error("expected error for unknown level")
	}
}
