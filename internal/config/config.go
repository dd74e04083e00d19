package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Application
	AppName string
	AppEnv  string
	Port    string

	// Database (optional driver switch via ENV, default: sqlite)
	DBDriver     string
	DBConnection string

	// Security
	JWTSecret string

	// Observability (optional)
	SentryDSN string

	// Storage (S3-compatible: MinIO, AWS S3, Cloudflare R2, DigitalOcean Spaces, etc.)
	S3Region         string
	S3Bucket         string
	S3AccessKey      string
	S3SecretKey      string
	S3Endpoint       string        // Optional: for S3-compatible services
	S3PresignExpiry  time.Duration // Expiry for signed download URLs
	S3UploadPartSize int64         // Part size for multipart uploads

	// Quota
	QuotaDefaultBytes int64 // Initial quota_bytes for a new owner
	QuotaEnforce      bool  // Reject uploads that would exceed quota_bytes

	// Bulk operations
	BulkDownloadStagger time.Duration // Delay between bulk download URL dispatches

	// Orphan sweep (drivectl sweep-orphans)
	OrphanSweepGrace time.Duration // Objects younger than this are never swept
}

func Load() *Config {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg := &Config{
		// Application
		AppName: envString("APP_NAME", "orbitdrive"),
		AppEnv:  envRequired("APP_ENV"), // Required: 'development' or 'production'
		Port:    envString("PORT", "8090"),

		// Database
		DBDriver:     envString("DB_DRIVER", "sqlite"),
		DBConnection: envString("DB_CONNECTION", "./data/orbitdrive.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"),

		// Security
		JWTSecret: envRequired("JWT_SECRET"),

		// Observability
		SentryDSN: envString("SENTRY_DSN", ""),

		// Storage (S3-compatible - required)
		S3Region:         envRequired("S3_REGION"),
		S3Bucket:         envRequired("S3_BUCKET"),
		S3AccessKey:      envRequired("S3_ACCESS_KEY"),
		S3SecretKey:      envRequired("S3_SECRET_KEY"),
		S3Endpoint:       envString("S3_ENDPOINT", ""), // Optional: for non-AWS providers
		S3PresignExpiry:  envDuration("S3_PRESIGN_EXPIRY", 1*time.Hour),
		S3UploadPartSize: envInt64("S3_UPLOAD_PART_SIZE", 8<<20), // 8MB

		// Quota (advisory by default; see QUOTA_ENFORCE)
		QuotaDefaultBytes: envInt64("QUOTA_DEFAULT_BYTES", 10<<30), // 10GB
		QuotaEnforce:      envBool("QUOTA_ENFORCE", false),

		// Bulk operations
		BulkDownloadStagger: envDuration("BULK_DOWNLOAD_STAGGER", 200*time.Millisecond),

		// Orphan sweep
		OrphanSweepGrace: envDuration("ORPHAN_SWEEP_GRACE", 24*time.Hour),
	}

	return cfg
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

func envBool(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("config invalid bool, using default", "key", key, "value", v, "default", def)
		return def
	}
	return b
}

func envInt64(key string, def int64) int64 {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		slog.Warn("config invalid int, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

func envDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

func envRequired(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	slog.Error("config required env var missing", "key", key)
	os.Exit(1)
	return ""
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}
