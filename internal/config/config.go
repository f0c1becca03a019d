// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	App     AppConfig
	Logger  LoggerConfig
	Storage StorageConfig
	Persist PersistConfig
	Ingest  IngestConfig
	Gallery GalleryConfig
	Search  SearchConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// StorageConfig holds storage backend configuration.
type StorageConfig struct {
	// DataDir is the base directory for all persisted data.
	DataDir string
	// Backend forces a specific backend ("filesystem", "sqlite", "badger").
	// Empty means capability probe.
	Backend string
}

// PersistConfig holds persistence tuning.
type PersistConfig struct {
	// ThrottleWindow is the save-coalescing window (default: 1s).
	ThrottleWindow time.Duration
}

// IngestConfig holds image ingest tuning.
type IngestConfig struct {
	// MaxWidth is the downscale threshold in pixels (default: 1024).
	MaxWidth int
	// JPEGQuality is the re-encode quality factor (default: 82).
	JPEGQuality int
	// Concurrency bounds parallel file processing (default: 4).
	Concurrency int
}

// GalleryConfig holds gallery pagination tuning.
type GalleryConfig struct {
	// InitialWindow is the eagerly rendered image count (default: 50).
	InitialWindow int
	// BatchSize is the per-trigger increment (default: 20).
	BatchSize int
}

// SearchConfig holds tag search tuning.
type SearchConfig struct {
	// DisableWorker forces synchronous ranking on the calling goroutine.
	DisableWorker bool
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig(args []string) (*Config, error) {
	fs := flag.NewFlagSet("promptdeck", flag.ContinueOnError)

	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	dataDir := fs.String("data-dir", "", "Base directory for persisted data")
	backend := fs.String("storage-backend", "", "Force storage backend (filesystem, sqlite, badger)")
	throttleWindow := fs.String("save-throttle", "", "Save coalescing window (default: 1s)")
	maxWidth := fs.String("image-max-width", "", "Downscale threshold in pixels (default: 1024)")
	jpegQuality := fs.String("image-quality", "", "JPEG re-encode quality (default: 82)")
	concurrency := fs.String("image-concurrency", "", "Parallel image processing limit (default: 4)")
	initialWindow := fs.String("gallery-window", "", "Eagerly rendered image count (default: 50)")
	batchSize := fs.String("gallery-batch", "", "Gallery batch size (default: 20)")
	disableWorker := fs.String("disable-search-worker", "", "Run tag search synchronously (default: false)")
	envFile := fs.String("env-file", ".env", "Path to .env file")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Storage: StorageConfig{
			DataDir: getConfigValue(*dataDir, "DATA_DIR", ""),
			Backend: getConfigValue(*backend, "STORAGE_BACKEND", ""),
		},
		Ingest: IngestConfig{
			MaxWidth:    getIntConfigValue(*maxWidth, "IMAGE_MAX_WIDTH", 1024),
			JPEGQuality: getIntConfigValue(*jpegQuality, "IMAGE_QUALITY", 82),
			Concurrency: getIntConfigValue(*concurrency, "IMAGE_CONCURRENCY", 4),
		},
		Gallery: GalleryConfig{
			InitialWindow: getIntConfigValue(*initialWindow, "GALLERY_WINDOW", 50),
			BatchSize:     getIntConfigValue(*batchSize, "GALLERY_BATCH", 20),
		},
		Search: SearchConfig{
			DisableWorker: getBoolConfigValue(*disableWorker, "DISABLE_SEARCH_WORKER", false),
		},
	}

	throttleStr := getConfigValue(*throttleWindow, "SAVE_THROTTLE", "1s")
	throttle, err := time.ParseDuration(throttleStr)
	if err != nil {
		return nil, fmt.Errorf("invalid save throttle %q: %w", throttleStr, err)
	}
	cfg.Persist.ThrottleWindow = throttle

	if err := cfg.expandDataDir(); err != nil {
		return nil, fmt.Errorf("invalid data directory: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	validBackends := map[string]bool{
		"":           true,
		"filesystem": true,
		"sqlite":     true,
		"badger":     true,
	}
	if !validBackends[c.Storage.Backend] {
		return fmt.Errorf("invalid storage backend: %s (must be filesystem, sqlite, or badger)", c.Storage.Backend)
	}

	if c.Storage.DataDir == "" {
		return errors.New("data directory cannot be empty after expansion")
	}
	if c.Ingest.MaxWidth <= 0 {
		return errors.New("image max width must be positive")
	}
	if c.Ingest.JPEGQuality < 1 || c.Ingest.JPEGQuality > 100 {
		return errors.New("image quality must be in [1, 100]")
	}
	if c.Ingest.Concurrency <= 0 {
		return errors.New("image concurrency must be positive")
	}
	if c.Gallery.InitialWindow <= 0 || c.Gallery.BatchSize <= 0 {
		return errors.New("gallery window and batch size must be positive")
	}
	return nil
}

// expandDataDir expands ~ and makes the path absolute.
// Defaults to ~/promptdeck.
func (c *Config) expandDataDir() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	defaultPath := filepath.Join(homeDir, "promptdeck")

	expanded, err := expandPath(c.Storage.DataDir, defaultPath)
	if err != nil {
		return err
	}
	c.Storage.DataDir = expanded
	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty and defaultPath is provided, uses the default.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	// Expand tilde.
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	// Make absolute if needed.
	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	// Priority 1: Command-line flag.
	if flagValue != "" {
		return flagValue
	}

	// Priority 2: Environment variable.
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}

	// Priority 3: Default value.
	return defaultValue
}

// getBoolConfigValue returns a bool from flag, env var, or default.
// Accepts: "true", "1", "yes" (case-insensitive) as true; anything else is false.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	strValue = strings.ToLower(strValue)
	return strValue == "true" || strValue == "1" || strValue == "yes"
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	var result int
	if _, err := fmt.Sscanf(strValue, "%d", &result); err != nil {
		return defaultValue
	}
	return result
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments.
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=value.
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Remove quotes if present.
		value = strings.Trim(value, `"'`)

		// Only set if not already set (env vars take precedence over .env file).
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
