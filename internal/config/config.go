package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	Database DatabaseConfig

	// Sync engine configuration
	Sync SyncConfig

	// YouTube access configuration
	YouTube YouTubeConfig

	// Server configuration
	Server ServerConfig

	// Logging configuration
	Logging LoggingConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL string // SQLite file path or PostgreSQL URL
}

// SyncConfig holds sync pass settings
type SyncConfig struct {
	RefreshThreshold      time.Duration
	VideoFetchDelay       time.Duration
	PlaylistFetchAttempts int
	VideoFetchAttempts    int
	VideoRetryBackoff     time.Duration
}

// YouTubeConfig holds yt-dlp and caption settings
type YouTubeConfig struct {
	YtdlpPath           string
	YtdlpTimeout        time.Duration
	TranscriptLanguages []string
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port           int
	Host           string
	AllowedOrigins []string
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, text
}

// Load reads configuration from .env and environment variables
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	cfg.Database.URL = getEnvOrDefault("DATABASE_URL", "youtube.db")

	if err := cfg.loadSync(); err != nil {
		return nil, fmt.Errorf("load sync config: %w", err)
	}

	if err := cfg.loadYouTube(); err != nil {
		return nil, fmt.Errorf("load youtube config: %w", err)
	}

	if err := cfg.loadServer(); err != nil {
		return nil, fmt.Errorf("load server config: %w", err)
	}

	cfg.loadLogging()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

func (c *Config) loadSync() error {
	var err error
	if c.Sync.RefreshThreshold, err = ParseDuration(getEnvOrDefault("REFRESH_THRESHOLD", "168h")); err != nil {
		return fmt.Errorf("invalid REFRESH_THRESHOLD: %w", err)
	}
	if c.Sync.VideoFetchDelay, err = ParseDuration(getEnvOrDefault("VIDEO_FETCH_DELAY", "1s")); err != nil {
		return fmt.Errorf("invalid VIDEO_FETCH_DELAY: %w", err)
	}
	if c.Sync.VideoRetryBackoff, err = ParseDuration(getEnvOrDefault("VIDEO_RETRY_BACKOFF", "2s")); err != nil {
		return fmt.Errorf("invalid VIDEO_RETRY_BACKOFF: %w", err)
	}
	if c.Sync.PlaylistFetchAttempts, err = strconv.Atoi(getEnvOrDefault("PLAYLIST_FETCH_ATTEMPTS", "3")); err != nil {
		return fmt.Errorf("invalid PLAYLIST_FETCH_ATTEMPTS: %w", err)
	}
	if c.Sync.VideoFetchAttempts, err = strconv.Atoi(getEnvOrDefault("VIDEO_FETCH_ATTEMPTS", "2")); err != nil {
		return fmt.Errorf("invalid VIDEO_FETCH_ATTEMPTS: %w", err)
	}
	return nil
}

func (c *Config) loadYouTube() error {
	c.YouTube.YtdlpPath = getEnvOrDefault("YTDLP_PATH", "yt-dlp")

	timeout, err := ParseDuration(getEnvOrDefault("YTDLP_TIMEOUT", "2m"))
	if err != nil {
		return fmt.Errorf("invalid YTDLP_TIMEOUT: %w", err)
	}
	c.YouTube.YtdlpTimeout = timeout

	c.YouTube.TranscriptLanguages = splitList(getEnvOrDefault("TRANSCRIPT_LANGUAGES", "en,en-US,en-GB"))
	return nil
}

func (c *Config) loadServer() error {
	portStr := getEnvOrDefault("PORT", "8080")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return fmt.Errorf("invalid PORT: %w", err)
	}
	c.Server.Port = port
	c.Server.Host = getEnvOrDefault("HOST", "127.0.0.1")
	c.Server.AllowedOrigins = splitList(os.Getenv("CORS_ALLOWED_ORIGINS"))
	return nil
}

func (c *Config) loadLogging() {
	c.Logging.Level = getEnvOrDefault("LOG_LEVEL", "info")
	c.Logging.Format = getEnvOrDefault("LOG_FORMAT", "text")
}

// Validate checks that all required configuration is present and valid
func (c *Config) Validate() error {
	var errors []string

	if c.Database.URL == "" {
		errors = append(errors, "DATABASE_URL must not be empty")
	}

	if c.Sync.RefreshThreshold <= 0 {
		errors = append(errors, "REFRESH_THRESHOLD must be positive")
	}
	if c.Sync.VideoFetchDelay < 0 {
		errors = append(errors, "VIDEO_FETCH_DELAY must not be negative")
	}
	if c.Sync.VideoRetryBackoff < 0 {
		errors = append(errors, "VIDEO_RETRY_BACKOFF must not be negative")
	}
	if c.Sync.PlaylistFetchAttempts < 1 {
		errors = append(errors, "PLAYLIST_FETCH_ATTEMPTS must be at least 1")
	}
	if c.Sync.VideoFetchAttempts < 1 {
		errors = append(errors, "VIDEO_FETCH_ATTEMPTS must be at least 1")
	}

	if c.YouTube.YtdlpPath == "" {
		errors = append(errors, "YTDLP_PATH must not be empty")
	}
	if c.YouTube.YtdlpTimeout <= 0 {
		errors = append(errors, "YTDLP_TIMEOUT must be positive")
	}
	if len(c.YouTube.TranscriptLanguages) == 0 {
		errors = append(errors, "TRANSCRIPT_LANGUAGES must list at least one language")
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errors = append(errors, "PORT must be between 1 and 65535")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		errors = append(errors, "LOG_LEVEL must be one of: debug, info, warn, error")
	}

	validLogFormats := map[string]bool{"json": true, "text": true}
	if !validLogFormats[c.Logging.Format] {
		errors = append(errors, "LOG_FORMAT must be one of: json, text")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

// ParseDuration accepts Go durations plus a whole-day suffix such as "7d".
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return 0, fmt.Errorf("parse days %q: %w", s, err)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	return time.ParseDuration(s)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// getEnvOrDefault returns the environment variable value or a default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
