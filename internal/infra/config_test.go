package infra

import (
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("RESOLVER_BASE_URL", "http://localhost:9000")
}

func TestLoadConfigDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.StorageBackend != "filesystem" {
		t.Fatalf("StorageBackend = %q, want filesystem", cfg.StorageBackend)
	}
	if cfg.SignedURLTTL != time.Hour {
		t.Fatalf("SignedURLTTL = %s, want 1h", cfg.SignedURLTTL)
	}
	if cfg.AcquireTimeout != 5*time.Minute {
		t.Fatalf("AcquireTimeout = %s, want 5m", cfg.AcquireTimeout)
	}
	if !cfg.CompressionEnabled {
		t.Fatal("CompressionEnabled = false, want true by default")
	}
	if cfg.MaxResolutionHeight != 1080 {
		t.Fatalf("MaxResolutionHeight = %d, want 1080", cfg.MaxResolutionHeight)
	}
}

func TestLoadConfigMissingDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("RESOLVER_BASE_URL", "http://localhost:9000")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error for missing DATABASE_URL")
	}
}

func TestLoadConfigMissingResolverURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("RESOLVER_BASE_URL", "")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error for missing RESOLVER_BASE_URL")
	}
}

func TestLoadConfigS3RequiresBucket(t *testing.T) {
	setRequired(t)
	t.Setenv("STORAGE_BACKEND", "s3")
	t.Setenv("S3_BUCKET", "")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error for s3 backend without bucket")
	}

	t.Setenv("S3_BUCKET", "media-bucket")
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.S3Bucket != "media-bucket" {
		t.Fatalf("S3Bucket = %q, want media-bucket", cfg.S3Bucket)
	}
}

func TestLoadConfigUnknownBackend(t *testing.T) {
	setRequired(t)
	t.Setenv("STORAGE_BACKEND", "ftp")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error for unknown storage backend")
	}
}

func TestLoadConfigCompressionToggle(t *testing.T) {
	setRequired(t)
	t.Setenv("COMPRESSION_ENABLED", "false")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.CompressionEnabled {
		t.Fatal("CompressionEnabled = true, want false")
	}
}

func TestLoadConfigCORSList(t *testing.T) {
	setRequired(t)
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.example.com, http://localhost:3000 ")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	want := []string{"https://app.example.com", "http://localhost:3000"}
	if len(cfg.CORSAllowedOrigins) != len(want) {
		t.Fatalf("CORSAllowedOrigins = %#v, want %#v", cfg.CORSAllowedOrigins, want)
	}
	for i := range want {
		if cfg.CORSAllowedOrigins[i] != want[i] {
			t.Fatalf("CORSAllowedOrigins[%d] = %q, want %q", i, cfg.CORSAllowedOrigins[i], want[i])
		}
	}
}
