package providers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/pagetrail/pagetrail-server/internal/config"
	"github.com/pagetrail/pagetrail-server/internal/logger"
	"github.com/pagetrail/pagetrail-server/internal/sse"
	"github.com/pagetrail/pagetrail-server/internal/store"
	"github.com/pagetrail/pagetrail-server/internal/store/redis"
	"github.com/pagetrail/pagetrail-server/internal/store/sqlite"
)

// SSEManagerHandle wraps the SSE manager with its context for lifecycle management.
type SSEManagerHandle struct {
	*sse.Manager
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *SSEManagerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := h.Manager.Shutdown(ctx)
	h.cancel()
	return err
}

// ProvideSSEManager provides the server-sent events manager.
func ProvideSSEManager(i do.Injector) (*SSEManagerHandle, error) {
	log := do.MustInvoke[*logger.Logger](i)

	manager := sse.NewManager(log.Logger)

	// Start in background
	ctx, cancel := context.WithCancel(context.Background())
	go manager.Start(ctx)

	log.Debug("SSE manager started")

	return &SSEManagerHandle{
		Manager: manager,
		cancel:  cancel,
	}, nil
}

// ProvideSSEHandler provides the HTTP handler for the event stream.
func ProvideSSEHandler(i do.Injector) (*sse.Handler, error) {
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return sse.NewHandler(sseHandle.Manager, log.Logger), nil
}

// StoreHandle wraps the repository with shutdown capability.
type StoreHandle struct {
	*store.Repository
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore opens the configured key-value backend and wraps it in a repository.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	kv, err := openKV(context.Background(), cfg.Storage, log)
	if err != nil {
		return nil, err
	}

	log.Info("Storage initialized", "backend", cfg.Storage.Backend)

	return &StoreHandle{Repository: store.NewRepository(kv, log.Logger)}, nil
}

func openKV(ctx context.Context, cfg config.StorageConfig, log *logger.Logger) (store.KV, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		log.Warn("Using in-memory storage, changes will not survive a restart")
		return store.NewMemoryKV(), nil

	case config.BackendRedis:
		return redis.Open(ctx, redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.RedisPrefix,
		}, log.Logger)

	case config.BackendSQLite:
		if err := os.MkdirAll(cfg.DataPath, 0o755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
		return sqlite.Open(filepath.Join(cfg.DataPath, "pagetrail.db"), log.Logger)

	case config.BackendBadger:
		return store.OpenBadger(filepath.Join(cfg.DataPath, "db"), log.Logger)

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
