package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL string // SITEKEEP_DATABASE_URL (required by serve)
	HTTPAddr    string // SITEKEEP_HTTP_ADDR (default ":8080")
	NATSURL     string // SITEKEEP_NATS_URL (optional, empty = no events)
	AuthToken   string // SITEKEEP_AUTH_TOKEN (optional, empty = auth disabled)
	LogLevel    string // SITEKEEP_LOG_LEVEL (default "info")

	// Client side
	RemoteURL     string        // SITEKEEP_REMOTE_URL (default "http://localhost:8080")
	RemoteTimeout time.Duration // SITEKEEP_REMOTE_TIMEOUT (default 10s)
	CachePath     string        // SITEKEEP_CACHE_PATH (default ~/.local/state/sitekeep/localcache.toml)
	RedisURL      string        // SITEKEEP_REDIS_URL (optional; replaces the file cache when set)
	LeaseTTL      time.Duration // SITEKEEP_LEASE_TTL (default 5m)

	// Backup settings
	BackupInterval   time.Duration // SITEKEEP_BACKUP_INTERVAL (default 0 = disabled)
	BackupS3Bucket   string        // SITEKEEP_BACKUP_S3_BUCKET (enables S3 when set)
	BackupS3Endpoint string        // SITEKEEP_BACKUP_S3_ENDPOINT (custom endpoint for MinIO)
	BackupS3Region   string        // SITEKEEP_BACKUP_S3_REGION (default "us-east-1")
	BackupS3Key      string        // SITEKEEP_BACKUP_S3_KEY (default "sitekeep/backup.jsonl")
	BackupGitRepo    string        // SITEKEEP_BACKUP_GIT_REPO (local clone; enables git backup when set)
	BackupGitFile    string        // SITEKEEP_BACKUP_GIT_FILE (default "sitekeep.jsonl")
	BackupGitBranch  string        // SITEKEEP_BACKUP_GIT_BRANCH (default "main")
}

// LoadEnvFile loads variables from a .env file into the process environment.
// A missing file is not an error; variables already set win.
func LoadEnvFile(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func Load() (*Config, error) {
	c := &Config{
		DatabaseURL:      os.Getenv("SITEKEEP_DATABASE_URL"),
		HTTPAddr:         envOrDefault("SITEKEEP_HTTP_ADDR", ":8080"),
		NATSURL:          os.Getenv("SITEKEEP_NATS_URL"),
		AuthToken:        os.Getenv("SITEKEEP_AUTH_TOKEN"),
		LogLevel:         envOrDefault("SITEKEEP_LOG_LEVEL", "info"),
		RemoteURL:        envOrDefault("SITEKEEP_REMOTE_URL", "http://localhost:8080"),
		CachePath:        os.Getenv("SITEKEEP_CACHE_PATH"),
		RedisURL:         os.Getenv("SITEKEEP_REDIS_URL"),
		BackupS3Bucket:   os.Getenv("SITEKEEP_BACKUP_S3_BUCKET"),
		BackupS3Endpoint: os.Getenv("SITEKEEP_BACKUP_S3_ENDPOINT"),
		BackupS3Region:   envOrDefault("SITEKEEP_BACKUP_S3_REGION", "us-east-1"),
		BackupS3Key:      envOrDefault("SITEKEEP_BACKUP_S3_KEY", "sitekeep/backup.jsonl"),
		BackupGitRepo:    os.Getenv("SITEKEEP_BACKUP_GIT_REPO"),
		BackupGitFile:    envOrDefault("SITEKEEP_BACKUP_GIT_FILE", "sitekeep.jsonl"),
		BackupGitBranch:  envOrDefault("SITEKEEP_BACKUP_GIT_BRANCH", "main"),
	}

	var err error
	if c.RemoteTimeout, err = durationEnv("SITEKEEP_REMOTE_TIMEOUT", "10s"); err != nil {
		return nil, err
	}
	if c.LeaseTTL, err = durationEnv("SITEKEEP_LEASE_TTL", "5m"); err != nil {
		return nil, err
	}
	if c.BackupInterval, err = durationEnv("SITEKEEP_BACKUP_INTERVAL", "0"); err != nil {
		return nil, err
	}

	if c.CachePath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve cache path: %w", err)
		}
		c.CachePath = filepath.Join(home, ".local", "state", "sitekeep", "localcache.toml")
	}

	return c, nil
}

// RequireDatabase reports an error when no database URL is configured.
func (c *Config) RequireDatabase() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("SITEKEEP_DATABASE_URL is required")
	}
	return nil
}

func durationEnv(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, fallback))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
