// Package config loads runtime settings for the blueprint analyzer.
//
// Settings are resolved in order: built-in defaults, an optional YAML file
// named by BLUEPRINT_CONFIG, a .env file in the working directory, and
// finally BLUEPRINT_* environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds every tunable of the pipeline and its transports.
type Config struct {
	LogLevel string `yaml:"log_level"`
	HTTPAddr string `yaml:"http_addr"`

	MaxFileSize  int64    `yaml:"max_file_size"`
	MinFileSize  int64    `yaml:"min_file_size"`
	AllowedTypes []string `yaml:"allowed_types"`
	MaxImageSize int      `yaml:"max_image_size"`

	// MaxDecodePixels caps the width*height an image header may declare.
	MaxDecodePixels int64 `yaml:"max_decode_pixels"`

	DecodeTimeout  time.Duration `yaml:"decode_timeout"`
	OCRInitTimeout time.Duration `yaml:"ocr_init_timeout"`
	OCRTimeout     time.Duration `yaml:"ocr_timeout"`
	OCRLanguage    string        `yaml:"ocr_language"`
	TessdataPrefix string        `yaml:"tessdata_prefix"`

	CacheTTL        time.Duration `yaml:"cache_ttl"`
	CacheMaxEntries int           `yaml:"cache_max_entries"`
}

// DefaultAllowedTypes is the raster media type allow-list.
var DefaultAllowedTypes = []string{
	"image/png",
	"image/jpeg",
	"image/gif",
	"image/bmp",
	"image/webp",
	"image/tiff",
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel:        "info",
		HTTPAddr:        ":8080",
		MaxFileSize:     50 * 1024 * 1024,
		MinFileSize:     1024,
		AllowedTypes:    append([]string(nil), DefaultAllowedTypes...),
		MaxImageSize:    2048,
		MaxDecodePixels: 64 * 1000 * 1000,
		DecodeTimeout:   30 * time.Second,
		OCRInitTimeout:  15 * time.Second,
		OCRTimeout:      30 * time.Second,
		OCRLanguage:     "eng",
		CacheTTL:        10 * time.Minute,
		CacheMaxEntries: 128,
	}
}

// Load resolves the configuration from file and environment.
func Load() (*Config, error) {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	cfg := Default()
	if path := os.Getenv("BLUEPRINT_CONFIG"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.LogLevel = getEnvOrDefault("BLUEPRINT_LOG_LEVEL", c.LogLevel)
	c.HTTPAddr = getEnvOrDefault("BLUEPRINT_HTTP_ADDR", c.HTTPAddr)
	c.MaxFileSize = parseIntOrDefault("BLUEPRINT_MAX_FILE_SIZE", c.MaxFileSize)
	c.MinFileSize = parseIntOrDefault("BLUEPRINT_MIN_FILE_SIZE", c.MinFileSize)
	c.MaxImageSize = int(parseIntOrDefault("BLUEPRINT_MAX_IMAGE_SIZE", int64(c.MaxImageSize)))
	c.MaxDecodePixels = parseIntOrDefault("BLUEPRINT_MAX_DECODE_PIXELS", c.MaxDecodePixels)
	c.DecodeTimeout = parseDurationOrDefault("BLUEPRINT_DECODE_TIMEOUT", c.DecodeTimeout)
	c.OCRInitTimeout = parseDurationOrDefault("BLUEPRINT_OCR_INIT_TIMEOUT", c.OCRInitTimeout)
	c.OCRTimeout = parseDurationOrDefault("BLUEPRINT_OCR_TIMEOUT", c.OCRTimeout)
	c.OCRLanguage = getEnvOrDefault("BLUEPRINT_OCR_LANGUAGE", c.OCRLanguage)
	c.TessdataPrefix = getEnvOrDefault("BLUEPRINT_TESSDATA_PREFIX", c.TessdataPrefix)
	c.CacheTTL = parseDurationOrDefault("BLUEPRINT_CACHE_TTL", c.CacheTTL)
	c.CacheMaxEntries = int(parseIntOrDefault("BLUEPRINT_CACHE_MAX_ENTRIES", int64(c.CacheMaxEntries)))

	if types := os.Getenv("BLUEPRINT_ALLOWED_TYPES"); types != "" {
		var list []string
		for _, t := range strings.Split(types, ",") {
			if t = strings.TrimSpace(t); t != "" {
				list = append(list, strings.ToLower(t))
			}
		}
		c.AllowedTypes = list
	}
}

// Validate checks ranges.
func (c *Config) Validate() error {
	if c.MaxFileSize <= 0 || c.MinFileSize < 0 {
		return fmt.Errorf("file size limits must be positive (got min=%d, max=%d)", c.MinFileSize, c.MaxFileSize)
	}
	if c.MinFileSize >= c.MaxFileSize {
		return fmt.Errorf("min file size %d must be below max file size %d", c.MinFileSize, c.MaxFileSize)
	}
	if c.MaxImageSize < 100 {
		return fmt.Errorf("max image size must be at least 100 (got %d)", c.MaxImageSize)
	}
	if c.MaxDecodePixels < int64(c.MaxImageSize)*int64(c.MaxImageSize) {
		return fmt.Errorf("max decode pixels %d must cover max image size %d squared", c.MaxDecodePixels, c.MaxImageSize)
	}
	if len(c.AllowedTypes) == 0 {
		return fmt.Errorf("allowed types must not be empty")
	}
	if c.DecodeTimeout <= 0 || c.OCRInitTimeout <= 0 || c.OCRTimeout <= 0 || c.CacheTTL <= 0 {
		return fmt.Errorf("timeouts must be > 0 (got decode=%s, ocr_init=%s, ocr=%s, cache_ttl=%s)",
			c.DecodeTimeout, c.OCRInitTimeout, c.OCRTimeout, c.CacheTTL)
	}
	if c.CacheMaxEntries <= 0 {
		return fmt.Errorf("cache max entries must be > 0 (got %d)", c.CacheMaxEntries)
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return strings.TrimSpace(value)
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && duration > 0 {
			return duration
		}
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}
