package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App:     AppConfig{Environment: "development"},
		Logger:  LoggerConfig{Level: "info"},
		Storage: StorageConfig{Backend: BackendBadger, DataPath: "/some/path"},
		Covers:  CoversConfig{Enabled: true, RequestsPerSecond: 1},
	}
}

// isolate points the .env lookup at an empty temp dir so a developer's
// local .env cannot leak into the test.
func isolate(t *testing.T) map[string]string {
	t.Helper()
	return map[string]string{FlagEnvFile: filepath.Join(t.TempDir(), "missing.env")}
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_Environments(t *testing.T) {
	tests := []struct {
		env   string
		valid bool
	}{
		{"development", true},
		{"staging", true},
		{"production", true},
		{"test", false},
		{"", false},
		{"DEVELOPMENT", false},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			cfg := validConfig()
			cfg.App.Environment = tt.env
			if tt.valid {
				assert.NoError(t, cfg.Validate())
			} else {
				assert.Error(t, cfg.Validate())
			}
		})
	}
}

func TestValidate_Backends(t *testing.T) {
	tests := []struct {
		name    string
		storage StorageConfig
		valid   bool
	}{
		{"badger", StorageConfig{Backend: BackendBadger, DataPath: "/data"}, true},
		{"sqlite", StorageConfig{Backend: BackendSQLite, DataPath: "/data"}, true},
		{"sqlite without path", StorageConfig{Backend: BackendSQLite}, false},
		{"redis", StorageConfig{Backend: BackendRedis, RedisAddr: "localhost:6379"}, true},
		{"redis without addr", StorageConfig{Backend: BackendRedis}, false},
		{"memory", StorageConfig{Backend: BackendMemory}, true},
		{"unknown", StorageConfig{Backend: "postgres", DataPath: "/data"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Storage = tt.storage
			if tt.valid {
				assert.NoError(t, cfg.Validate())
			} else {
				assert.Error(t, cfg.Validate())
			}
		})
	}
}

func TestValidate_LogLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "INFO"} {
		cfg := validConfig()
		cfg.Logger.Level = level
		assert.NoError(t, cfg.Validate(), level)
	}

	cfg := validConfig()
	cfg.Logger.Level = "trace"
	assert.Error(t, cfg.Validate())
}

func TestValidate_CoverRate(t *testing.T) {
	cfg := validConfig()
	cfg.Covers.RequestsPerSecond = 0
	assert.Error(t, cfg.Validate())

	cfg.Covers.Enabled = false
	assert.NoError(t, cfg.Validate())
}

func TestLoad_Defaults(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	cfg, err := Load(isolate(t))
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, BackendBadger, cfg.Storage.Backend)
	assert.Equal(t, filepath.Join(home, ".pagetrail"), cfg.Storage.DataPath)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.True(t, cfg.Covers.Enabled)
	assert.Equal(t, "https://openlibrary.org", cfg.Covers.OpenLibraryURL)
	assert.Equal(t, 10*time.Second, cfg.Covers.Timeout)
	assert.InDelta(t, 10.0, cfg.Server.CoverRequestsPerSecond, 0.001)
	assert.Equal(t, 20, cfg.Server.CoverBurst)
}

func TestLoad_InvalidRate(t *testing.T) {
	t.Setenv("SERVER_COVER_RPS", "fast")

	_, err := Load(isolate(t))
	assert.ErrorContains(t, err, "SERVER_COVER_RPS")
}

func TestLoad_FlagBeatsEnv(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "sqlite")
	t.Setenv("SERVER_PORT", "9000")

	flags := isolate(t)
	flags[FlagBackend] = "memory"

	cfg, err := Load(flags)
	require.NoError(t, err)

	assert.Equal(t, BackendMemory, cfg.Storage.Backend)
	assert.Equal(t, "9000", cfg.Server.Port)
}

func TestLoad_EnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "# comment\nLOG_LEVEL=debug\nCORS_ORIGINS=http://a.test, http://b.test\nSERVER_PORT=7000\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	// Existing environment wins over the .env file.
	t.Setenv("SERVER_PORT", "7500")
	// Keys read from the file leak into the process environment; clear them afterwards.
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("CORS_ORIGINS", "")
	os.Unsetenv("LOG_LEVEL")
	os.Unsetenv("CORS_ORIGINS")

	cfg, err := Load(map[string]string{FlagEnvFile: path})
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "7500", cfg.Server.Port)
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("COVERS_TIMEOUT", "soon")

	_, err := Load(isolate(t))
	assert.ErrorContains(t, err, "COVERS_TIMEOUT")
}

func TestLoadConfig_ParsesArgs(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadConfig([]string{
		"-env-file", filepath.Join(dir, "none.env"),
		"-storage", "sqlite",
		"-data-path", dir,
		"-covers", "false",
	})
	require.NoError(t, err)

	assert.Equal(t, BackendSQLite, cfg.Storage.Backend)
	assert.Equal(t, dir, cfg.Storage.DataPath)
	assert.False(t, cfg.Covers.Enabled)
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	cwd, err := os.Getwd()
	require.NoError(t, err)

	tests := []struct {
		in, want string
	}{
		{"", "/default"},
		{"~/books", filepath.Join(home, "books")},
		{"/abs/path/", "/abs/path"},
		{"rel", filepath.Join(cwd, "rel")},
	}
	for _, tt := range tests {
		got, err := expandPath(tt.in, "/default")
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestGetBoolConfigValue(t *testing.T) {
	t.Setenv("PAGETRAIL_TEST_BOOL", "YES")
	assert.True(t, getBoolConfigValue("", "PAGETRAIL_TEST_BOOL", false))
	assert.False(t, getBoolConfigValue("no", "PAGETRAIL_TEST_BOOL", true))
	assert.True(t, getBoolConfigValue("", "PAGETRAIL_TEST_UNSET", true))
}
