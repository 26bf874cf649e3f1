package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	// Source data layout. Column names are locale-specific labels in the
	// KMA export, so they are configuration rather than hard-coded strings.
	DataDir       string
	FilePattern   string // must contain one %d for the year
	DataEncoding  string // "euc-kr" or "utf-8"
	StationColumn string
	TimeColumn    string
	RainColumn    string

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Record-set cache (one entry per distinct year selection).
	CacheTTL        time.Duration
	CacheMaxEntries int
}

// Load reads configuration from environment variables, applying defaults
// where unset. A .env file in the working directory is honored when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	shutdownTimeoutStr := envOrDefault("SHUTDOWN_TIMEOUT", "10s")
	shutdownTimeout, err := time.ParseDuration(shutdownTimeoutStr)
	if err != nil || shutdownTimeout <= 0 {
		return nil, errors.New("invalid SHUTDOWN_TIMEOUT")
	}

	cacheTTLStr := envOrDefault("CACHE_TTL", "1h")
	cacheTTL, err := time.ParseDuration(cacheTTLStr)
	if err != nil || cacheTTL <= 0 {
		return nil, errors.New("invalid CACHE_TTL")
	}

	cacheMaxEntries, err := envInt("CACHE_MAX_ENTRIES", 16)
	if err != nil || cacheMaxEntries <= 0 {
		return nil, errors.New("invalid CACHE_MAX_ENTRIES")
	}

	cfg := &Config{
		DataDir:       envOrDefault("DATA_DIR", "dataset"),
		FilePattern:   envOrDefault("FILE_PATTERN", "rain_%d.csv"),
		DataEncoding:  strings.ToLower(envOrDefault("DATA_ENCODING", "euc-kr")),
		StationColumn: envOrDefault("STATION_COLUMN", "지점명"),
		TimeColumn:    envOrDefault("TIME_COLUMN", "일시"),
		RainColumn:    envOrDefault("RAIN_COLUMN", "강수량(mm)"),

		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		CacheTTL:        cacheTTL,
		CacheMaxEntries: cacheMaxEntries,
	}

	if cfg.DataDir == "" {
		return nil, errors.New("DATA_DIR is required")
	}
	if !strings.Contains(cfg.FilePattern, "%d") {
		return nil, errors.New("FILE_PATTERN must contain a %d year placeholder")
	}
	if cfg.DataEncoding != "euc-kr" && cfg.DataEncoding != "utf-8" {
		return nil, fmt.Errorf("unsupported DATA_ENCODING %q: want euc-kr or utf-8", cfg.DataEncoding)
	}
	if cfg.StationColumn == "" || cfg.TimeColumn == "" || cfg.RainColumn == "" {
		return nil, errors.New("STATION_COLUMN, TIME_COLUMN, and RAIN_COLUMN must be non-empty")
	}

	return cfg, nil
}

// YearFile returns the source file path for one year.
func (c *Config) YearFile(year int) string {
	return fmt.Sprintf(c.FilePattern, year)
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}
