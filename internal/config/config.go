// Package config loads Pagetrail configuration from flags, environment
// variables, and a .env file.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage backends.
const (
	BackendBadger = "badger"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Config holds the application configuration.
type Config struct {
	App     AppConfig
	Logger  LoggerConfig
	Storage StorageConfig
	Server  ServerConfig
	Covers  CoversConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level      string
	File       string // optional rotating log file
	MaxSizeMB  int
	MaxBackups int
}

// StorageConfig selects and configures the key-value backend.
type StorageConfig struct {
	Backend  string
	DataPath string // badger directory or sqlite file parent

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	CORSOrigins  []string

	// Per-client limit on the cover endpoints.
	CoverRequestsPerSecond float64
	CoverBurst             int
}

// CoversConfig configures remote cover lookups.
type CoversConfig struct {
	Enabled           bool
	OpenLibraryURL    string
	OpenLibraryCovers string
	GoogleBooksURL    string
	GoogleBooksAPIKey string
	RequestsPerSecond float64
	Burst             int
	Timeout           time.Duration
}

// Flag names accepted by LoadConfig and Load.
const (
	FlagEnv        = "env"
	FlagLogLevel   = "log-level"
	FlagLogFile    = "log-file"
	FlagBackend    = "storage"
	FlagDataPath   = "data-path"
	FlagRedisAddr  = "redis-addr"
	FlagPort       = "port"
	FlagCovers     = "covers"
	FlagEnvFile    = "env-file"
	defaultEnvFile = ".env"
)

// NewFlagSet declares every configuration flag on a fresh FlagSet.
func NewFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.String(FlagEnv, "", "Environment (development, staging, production)")
	fs.String(FlagLogLevel, "", "Log level (debug, info, warn, error)")
	fs.String(FlagLogFile, "", "Optional rotating log file path")
	fs.String(FlagBackend, "", "Storage backend (badger, sqlite, redis, memory)")
	fs.String(FlagDataPath, "", "Directory for local storage")
	fs.String(FlagRedisAddr, "", "Redis address when storage=redis")
	fs.String(FlagPort, "", "Server port (default: 8080)")
	fs.String(FlagCovers, "", "Enable remote cover lookups (default: true)")
	fs.String(FlagEnvFile, defaultEnvFile, "Path to .env file")
	return fs
}

// LoadConfig parses args as flags and loads configuration with precedence:
// flags, environment variables, .env file, defaults.
func LoadConfig(args []string) (*Config, error) {
	flags, err := ParseFlags(args)
	if err != nil {
		return nil, err
	}
	return Load(flags)
}

// ParseFlags parses args against NewFlagSet and returns the values keyed
// by flag name.
func ParseFlags(args []string) (map[string]string, error) {
	fs := NewFlagSet("pagetrail")
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	flags := make(map[string]string)
	fs.VisitAll(func(f *flag.Flag) {
		flags[f.Name] = f.Value.String()
	})
	return flags, nil
}

// Load builds a Config from already-parsed flag values keyed by flag name.
// Missing keys fall through to the environment and defaults.
func Load(flags map[string]string) (*Config, error) {
	envFile := flags[FlagEnvFile]
	if envFile == "" {
		envFile = defaultEnvFile
	}
	// godotenv never overrides variables that are already set.
	_ = godotenv.Load(envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(flags[FlagEnv], "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level:      getConfigValue(flags[FlagLogLevel], "LOG_LEVEL", "info"),
			File:       getConfigValue(flags[FlagLogFile], "LOG_FILE", ""),
			MaxSizeMB:  getIntConfigValue("", "LOG_MAX_SIZE_MB", 10),
			MaxBackups: getIntConfigValue("", "LOG_MAX_BACKUPS", 3),
		},
		Storage: StorageConfig{
			Backend:       strings.ToLower(getConfigValue(flags[FlagBackend], "STORAGE_BACKEND", BackendBadger)),
			DataPath:      getConfigValue(flags[FlagDataPath], "DATA_PATH", ""),
			RedisAddr:     getConfigValue(flags[FlagRedisAddr], "REDIS_ADDR", "localhost:6379"),
			RedisPassword: getConfigValue("", "REDIS_PASSWORD", ""),
			RedisDB:       getIntConfigValue("", "REDIS_DB", 0),
			RedisPrefix:   getConfigValue("", "REDIS_PREFIX", "pagetrail:"),
		},
		Server: ServerConfig{
			Port:        getConfigValue(flags[FlagPort], "SERVER_PORT", "8080"),
			CORSOrigins: splitList(getConfigValue("", "CORS_ORIGINS", "*")),
			CoverBurst:  getIntConfigValue("", "SERVER_COVER_BURST", 20),
		},
		Covers: CoversConfig{
			Enabled:           getBoolConfigValue(flags[FlagCovers], "COVERS_ENABLED", true),
			OpenLibraryURL:    getConfigValue("", "OPENLIBRARY_URL", "https://openlibrary.org"),
			OpenLibraryCovers: getConfigValue("", "OPENLIBRARY_COVERS_URL", "https://covers.openlibrary.org"),
			GoogleBooksURL:    getConfigValue("", "GOOGLE_BOOKS_URL", "https://www.googleapis.com/books/v1"),
			GoogleBooksAPIKey: getConfigValue("", "GOOGLE_BOOKS_API_KEY", ""),
			Burst:             getIntConfigValue("", "COVERS_BURST", 2),
		},
	}

	rates := []struct {
		env, def string
		dst      *float64
	}{
		{"COVERS_RPS", "1", &cfg.Covers.RequestsPerSecond},
		{"SERVER_COVER_RPS", "10", &cfg.Server.CoverRequestsPerSecond},
	}
	for _, r := range rates {
		parsed, err := strconv.ParseFloat(getConfigValue("", r.env, r.def), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", r.env, err)
		}
		*r.dst = parsed
	}

	durations := []struct {
		env, def string
		dst      *time.Duration
	}{
		{"SERVER_READ_TIMEOUT", "15s", &cfg.Server.ReadTimeout},
		{"SERVER_WRITE_TIMEOUT", "30s", &cfg.Server.WriteTimeout},
		{"SERVER_IDLE_TIMEOUT", "60s", &cfg.Server.IdleTimeout},
		{"COVERS_TIMEOUT", "10s", &cfg.Covers.Timeout},
	}
	for _, d := range durations {
		raw := getConfigValue("", d.env, d.def)
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", d.env, raw, err)
		}
		*d.dst = parsed
	}

	if err := cfg.expandDataPath(); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
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
		return fmt.Errorf("invalid environment: %q (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	switch c.Storage.Backend {
	case BackendBadger, BackendSQLite:
		if c.Storage.DataPath == "" {
			return errors.New("data path cannot be empty for local storage")
		}
	case BackendRedis:
		if c.Storage.RedisAddr == "" {
			return errors.New("REDIS_ADDR is required when storage is redis")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("invalid storage backend: %s (must be badger, sqlite, redis, or memory)", c.Storage.Backend)
	}

	if c.Covers.Enabled && c.Covers.RequestsPerSecond <= 0 {
		return errors.New("COVERS_RPS must be positive when cover lookups are enabled")
	}
	return nil
}

// expandPath expands ~ and makes the path absolute.
// An empty path resolves to defaultPath.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

func (c *Config) expandDataPath() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	expanded, err := expandPath(c.Storage.DataPath, filepath.Join(homeDir, ".pagetrail"))
	if err != nil {
		return err
	}
	c.Storage.DataPath = expanded
	return nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getBoolConfigValue accepts "true", "1", "yes" (case-insensitive) as true.
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
	n, err := strconv.Atoi(strValue)
	if err != nil {
		return defaultValue
	}
	return n
}

func splitList(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
