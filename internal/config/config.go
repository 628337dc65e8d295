// Package config loads runtime settings from the environment and an optional
// .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Storage backends selectable when no DATABASE_URL is set.
const (
	StorageSQLite = "sqlite"
	StorageJSON   = "json"
)

// DefaultMaxUploadBytes caps disk uploads at 5 MiB.
const DefaultMaxUploadBytes = 5 << 20

// Config holds all runtime settings.
type Config struct {
	Addr string

	// DatabaseURL selects PostgreSQL when set.
	DatabaseURL string
	// Storage selects the embedded backend otherwise.
	Storage  string
	DBPath   string
	DataFile string

	UploadDir      string
	MaxUploadBytes int64
	RequireImage   bool

	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3PublicURL string

	CORSOrigins []string

	LogFile  string
	LogLevel string
}

// Load reads .env (if present) and then the process environment. Variables
// already set in the environment win over .env entries.
func Load(envFile string) (*Config, error) {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading %s: %w", envFile, err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from the given lookup function.
func FromEnv(getenv func(string) string) (*Config, error) {
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	cfg := &Config{
		Addr:        ":" + get("PORT", "3000"),
		DatabaseURL: get("DATABASE_URL", ""),
		Storage:     strings.ToLower(get("STORAGE", StorageSQLite)),
		DBPath:      get("DB_PATH", "najdeno.sqlite3"),
		DataFile:    get("DATA_FILE", "items.json"),
		UploadDir:   get("UPLOAD_DIR", "uploads"),
		S3Endpoint:  get("S3_ENDPOINT", ""),
		S3AccessKey: get("S3_ACCESS_KEY", ""),
		S3SecretKey: get("S3_SECRET_KEY", ""),
		S3Bucket:    get("S3_BUCKET", ""),
		S3PublicURL: get("S3_PUBLIC_URL", ""),
		LogFile:     get("LOG_FILE", ""),
		LogLevel:    get("LOG_LEVEL", "info"),
	}

	maxBytes, err := strconv.ParseInt(get("MAX_UPLOAD_BYTES", strconv.Itoa(DefaultMaxUploadBytes)), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing MAX_UPLOAD_BYTES: %w", err)
	}
	cfg.MaxUploadBytes = maxBytes

	cfg.RequireImage, err = strconv.ParseBool(get("REQUIRE_IMAGE", "false"))
	if err != nil {
		return nil, fmt.Errorf("parsing REQUIRE_IMAGE: %w", err)
	}

	for _, origin := range strings.Split(get("CORS_ORIGINS", ""), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, origin)
		}
	}

	return cfg, nil
}

// Validate checks settings that flags may have changed after loading.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" && c.Storage != StorageSQLite && c.Storage != StorageJSON {
		return fmt.Errorf("unknown storage %q (want %s or %s)", c.Storage, StorageSQLite, StorageJSON)
	}
	if c.MaxUploadBytes <= 0 {
		return errors.New("MAX_UPLOAD_BYTES must be positive")
	}
	if c.RemoteUploads() && (c.S3AccessKey == "" || c.S3SecretKey == "" || c.S3Bucket == "") {
		return errors.New("S3_ENDPOINT is set but S3_ACCESS_KEY, S3_SECRET_KEY or S3_BUCKET is missing")
	}
	return nil
}

// Backend names the storage backend the settings select.
func (c *Config) Backend() string {
	if c.DatabaseURL != "" {
		return "postgres"
	}
	return c.Storage
}

// RemoteUploads reports whether photos go to the S3-compatible asset host.
func (c *Config) RemoteUploads() bool {
	return c.S3Endpoint != ""
}
