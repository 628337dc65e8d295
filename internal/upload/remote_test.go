package upload

import (
	"context"
	"testing"
)

func TestParseEndpoint(t *testing.T) {
	tests := []struct {
		in           string
		wantEndpoint string
		wantSecure   bool
		wantErr      bool
	}{
		{"minio:9000", "minio:9000", false, false},
		{"http://minio:9000", "minio:9000", false, false},
		{"https://s3.example.com", "s3.example.com", true, false},
		{"http://minio:9000/", "minio:9000", false, false},
		{"http://minio:9000/foo", "", false, true},
		{"", "", false, true},
		{"ftp://minio:9000", "", false, true},
		{" https://s3.example.com:9443 ", "s3.example.com:9443", true, false},
	}

	for _, tt := range tests {
		ep, secure, err := parseEndpoint(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("expected error for input %q", tt.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", tt.in, err)
		}
		if ep != tt.wantEndpoint || secure != tt.wantSecure {
			t.Fatalf("parseEndpoint(%q) = (%q,%v), want (%q,%v)", tt.in, ep, secure, tt.wantEndpoint, tt.wantSecure)
		}
	}
}

func TestRemoteLocators(t *testing.T) {
	r, err := newRemoteClient(RemoteConfig{
		Endpoint:  "https://s3.example.com",
		AccessKey: "key",
		SecretKey: "secret",
		Bucket:    "najdeno",
	})
	if err != nil {
		t.Fatalf("newRemoteClient: %v", err)
	}

	url := r.objectURL("items/abc.jpg")
	if url != "https://s3.example.com/najdeno/items/abc.jpg" {
		t.Errorf("unexpected url %q", url)
	}
	if key, ok := r.objectKey(url); !ok || key != "items/abc.jpg" {
		t.Errorf("objectKey(%q) = %q, %v", url, key, ok)
	}
	if _, ok := r.objectKey("/uploads/1-a.jpg"); ok {
		t.Error("expected disk locator to be foreign")
	}

	// Foreign locators are ignored without contacting the host.
	if err := r.Remove(context.Background(), "/uploads/1-a.jpg"); err != nil {
		t.Errorf("Remove foreign: %v", err)
	}
}

func TestRemotePublicURL(t *testing.T) {
	r, err := newRemoteClient(RemoteConfig{
		Endpoint:  "minio:9000",
		AccessKey: "key",
		SecretKey: "secret",
		Bucket:    "photos",
		PublicURL: "https://cdn.example.com/",
	})
	if err != nil {
		t.Fatalf("newRemoteClient: %v", err)
	}
	if got := r.objectURL("items/x.png"); got != "https://cdn.example.com/photos/items/x.png" {
		t.Errorf("unexpected url %q", got)
	}
}

func TestRemoteIncompleteConfig(t *testing.T) {
	if _, err := newRemoteClient(RemoteConfig{Endpoint: "minio:9000"}); err == nil {
		t.Fatal("expected error for missing credentials")
	}
}
