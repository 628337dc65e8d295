package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/erazemk/najdeno/internal/imaging"
)

// RemoteConfig configures an S3-compatible asset host.
type RemoteConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	// PublicURL is the base browsers load objects from. Defaults to the
	// endpoint URL.
	PublicURL string
}

// Remote stores uploads in an S3-compatible bucket and returns absolute URLs.
type Remote struct {
	client *minio.Client
	bucket string
	base   string
}

// parseEndpoint splits S3_ENDPOINT into the host the client dials and whether
// to use TLS. A bare host:port means plain HTTP.
func parseEndpoint(raw string) (host string, secure bool, err error) {
	raw = strings.TrimSpace(raw)
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", false, fmt.Errorf("parsing endpoint: %w", err)
	}
	switch {
	case u.Host == "":
		return "", false, fmt.Errorf("endpoint %q has no host", raw)
	case strings.Trim(u.Path, "/") != "":
		return "", false, fmt.Errorf("endpoint %q has a path", raw)
	case u.Scheme != "http" && u.Scheme != "https":
		return "", false, fmt.Errorf("endpoint %q: unsupported scheme %s", raw, u.Scheme)
	}
	return u.Host, u.Scheme == "https", nil
}

// NewRemote connects to the asset host and checks that the bucket exists.
func NewRemote(ctx context.Context, cfg RemoteConfig) (*Remote, error) {
	r, err := newRemoteClient(cfg)
	if err != nil {
		return nil, err
	}

	exists, err := r.client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("checking bucket: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("bucket does not exist: %s", cfg.Bucket)
	}
	return r, nil
}

// newRemoteClient builds the client without touching the network.
func newRemoteClient(cfg RemoteConfig) (*Remote, error) {
	if cfg.AccessKey == "" || cfg.SecretKey == "" || cfg.Bucket == "" {
		return nil, errors.New("remote upload configuration incomplete")
	}

	endpoint, secure, err := parseEndpoint(cfg.Endpoint)
	if err != nil {
		return nil, err
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: secure,
	})
	if err != nil {
		return nil, fmt.Errorf("creating storage client: %w", err)
	}

	base := strings.TrimRight(cfg.PublicURL, "/")
	if base == "" {
		base = strings.TrimRight(client.EndpointURL().String(), "/")
	}

	return &Remote{client: client, bucket: cfg.Bucket, base: base}, nil
}

// Name implements Sink.
func (r *Remote) Name() string { return "remote" }

// Limits implements Sink. Size is left to the asset host.
func (r *Remote) Limits() Limits {
	return Limits{Allowed: []string{imaging.JPEG, imaging.PNG}}
}

// Save implements Sink.
func (r *Remote) Save(ctx context.Context, f *File) (string, error) {
	key := "items/" + uuid.NewString() + imaging.Extensions[f.MIME]

	_, err := r.client.PutObject(ctx, r.bucket, key, bytes.NewReader(f.Data), int64(len(f.Data)),
		minio.PutObjectOptions{ContentType: f.MIME},
	)
	if err != nil {
		return "", fmt.Errorf("uploading object: %w", err)
	}
	return r.objectURL(key), nil
}

// Remove implements Sink.
func (r *Remote) Remove(ctx context.Context, locator string) error {
	key, ok := r.objectKey(locator)
	if !ok {
		return nil
	}
	if err := r.client.RemoveObject(ctx, r.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("removing object: %w", err)
	}
	return nil
}

func (r *Remote) objectURL(key string) string {
	return r.base + "/" + r.bucket + "/" + key
}

// objectKey extracts the key from a locator returned by Save.
func (r *Remote) objectKey(locator string) (string, bool) {
	prefix := r.base + "/" + r.bucket + "/"
	if !strings.HasPrefix(locator, prefix) {
		return "", false
	}
	key := strings.TrimPrefix(locator, prefix)
	return key, key != ""
}
