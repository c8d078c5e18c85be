package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv      string
	Port        string
	DatabaseURL string

	ResolverBaseURL string
	ResolverAPIKey  string

	StorageBackend string
	S3Bucket       string
	StoragePath    string
	StorageBaseURL string
	SignedURLTTL   time.Duration

	FFmpegPath          string
	CompressionEnabled  bool
	MaxResolutionHeight int
	VideoBitrateKbps    int
	CRF                 int
	AudioBitrateKbps    int

	AcquireTimeout time.Duration
	QueueCapacity  int

	GeoIPDBPath        string
	CORSAllowedOrigins []string
	RateLimitPerMin    int
	HTTPReadTimeout    time.Duration
	HTTPWriteTimeout   time.Duration
	HTTPIdleTimeout    time.Duration
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:      getEnv("APP_ENV", "development"),
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		ResolverBaseURL: os.Getenv("RESOLVER_BASE_URL"),
		ResolverAPIKey:  os.Getenv("RESOLVER_API_KEY"),

		StorageBackend: getEnv("STORAGE_BACKEND", "filesystem"),
		S3Bucket:       os.Getenv("S3_BUCKET"),
		StoragePath:    getEnv("STORAGE_PATH", "./data/media"),
		StorageBaseURL: getEnv("STORAGE_BASE_URL", "http://localhost:8080/static"),
		SignedURLTTL:   time.Second * time.Duration(getEnvInt("SIGNED_URL_TTL_SECONDS", 3600)),

		FFmpegPath:          getEnv("FFMPEG_PATH", "ffmpeg"),
		CompressionEnabled:  getEnvBool("COMPRESSION_ENABLED", true),
		MaxResolutionHeight: getEnvInt("MAX_RESOLUTION_HEIGHT", 1080),
		VideoBitrateKbps:    getEnvInt("VIDEO_BITRATE_KBPS", 2000),
		CRF:                 getEnvInt("VIDEO_CRF", 26),
		AudioBitrateKbps:    getEnvInt("AUDIO_BITRATE_KBPS", 128),

		AcquireTimeout: time.Second * time.Duration(getEnvInt("ACQUIRE_TIMEOUT_SECONDS", 300)),
		QueueCapacity:  getEnvInt("QUEUE_CAPACITY", 64),

		GeoIPDBPath:        os.Getenv("GEOIP_DB_PATH"),
		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "")),
		RateLimitPerMin:    getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
		HTTPReadTimeout:    time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:   time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 600)),
		HTTPIdleTimeout:    time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.ResolverBaseURL == "" {
		return nil, fmt.Errorf("RESOLVER_BASE_URL is required")
	}

	switch cfg.StorageBackend {
	case "s3":
		if cfg.S3Bucket == "" {
			return nil, fmt.Errorf("S3_BUCKET is required when STORAGE_BACKEND=s3")
		}
	case "filesystem":
	default:
		return nil, fmt.Errorf("unsupported STORAGE_BACKEND %q", cfg.StorageBackend)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
