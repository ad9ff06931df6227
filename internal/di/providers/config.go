// Package providers contains dependency injection providers for Pagetrail.
package providers

import (
	"log/slog"
	"os"

	"github.com/samber/do/v2"

	"github.com/pagetrail/pagetrail-server/internal/config"
	"github.com/pagetrail/pagetrail-server/internal/logger"
	"github.com/pagetrail/pagetrail-server/internal/metrics"
)

// ConfigFromFlags provides configuration built from already-parsed flag
// values keyed by flag name.
func ConfigFromFlags(flags map[string]string) do.Provider[*config.Config] {
	return func(i do.Injector) (*config.Config, error) {
		return config.Load(flags)
	}
}

// ProvideLogger provides the structured logger. Output goes to stderr so
// CLI commands keep stdout for their own results.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Writer:      os.Stderr,
		Level:       logger.ParseLevel(cfg.Logger.Level),
		AddSource:   cfg.App.Environment == "development",
		Environment: cfg.App.Environment,
		File: logger.FileConfig{
			Path:       cfg.Logger.File,
			MaxSizeMB:  cfg.Logger.MaxSizeMB,
			MaxBackups: cfg.Logger.MaxBackups,
		},
	})

	log.Debug("Configuration loaded",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"storage", cfg.Storage.Backend,
		"data_path", cfg.Storage.DataPath,
		"covers_enabled", cfg.Covers.Enabled,
	)

	return log, nil
}

// ProvideSlogLogger provides access to the underlying slog.Logger for packages that need it.
func ProvideSlogLogger(i do.Injector) (*slog.Logger, error) {
	log := do.MustInvoke[*logger.Logger](i)
	return log.Logger, nil
}

// ProvideMetrics provides the Prometheus collectors.
func ProvideMetrics(i do.Injector) (*metrics.Metrics, error) {
	return metrics.New(), nil
}
