// Package database opens the durable storage behind the client session.
package database

import (
	"context"
	"fmt"
	"log/slog"

	"storefront/internal/config"
	"storefront/internal/session"
)

const redisKeyPrefix = "storefront:"

// Connect opens the storage selected by cfg.SessionBackend. The returned close
// function is never nil.
func Connect(ctx context.Context, cfg config.Config) (session.Storage, func() error, error) {
	noop := func() error { return nil }

	switch cfg.SessionBackend {
	case config.BackendFile:
		slog.Info("session storage", "backend", cfg.SessionBackend, "path", cfg.SessionFile)
		return session.NewFileStorage(cfg.SessionFile), noop, nil
	case config.BackendRedis:
		rs, err := session.NewRedisStorage(ctx, cfg.RedisURL, redisKeyPrefix)
		if err != nil {
			return nil, noop, fmt.Errorf("connecting session redis: %w", err)
		}
		slog.Info("session storage", "backend", cfg.SessionBackend)
		return rs, rs.Close, nil
	case config.BackendMemory:
		slog.Warn("session storage is in memory, sessions end with the process")
		return session.NewMemoryStorage(), noop, nil
	}
	return nil, noop, fmt.Errorf("unknown session backend %q", cfg.SessionBackend)
}

const probeKey = "storefront.probe"

// EnsureWritable round-trips a probe key so a read-only file or a redis without
// write access is reported at startup rather than on the first login.
func EnsureWritable(ctx context.Context, storage session.Storage) error {
	if err := storage.Set(ctx, probeKey, "ok"); err != nil {
		return fmt.Errorf("writing probe: %w", err)
	}
	value, ok, err := storage.Get(ctx, probeKey)
	if err != nil {
		return fmt.Errorf("reading probe: %w", err)
	}
	if !ok || value != "ok" {
		return fmt.Errorf("probe value not persisted")
	}
	if err := storage.Delete(ctx, probeKey); err != nil {
		return fmt.Errorf("deleting probe: %w", err)
	}
	return nil
}
