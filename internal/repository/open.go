package repository

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/roksva123/go-matrix-tasks/internal/config"
	"github.com/roksva123/go-matrix-tasks/internal/store"
)

// Purger deletes a set of keys in one round trip.
type Purger interface {
	Purge(ctx context.Context, keys []string) (int64, error)
}

// Backends is what a configured store needs: where state lives, and the relay
// that keeps several processes in step when the backend supports one.
type Backends struct {
	Name    string
	Backend store.Backend
	Relay   store.Relay
	Purger  Purger

	closers []func() error
}

// Open connects the backend named by cfg.Backend. Postgres gets its kv_state
// table created on the way.
func Open(ctx context.Context, cfg config.StoreConfig, logger *zap.Logger) (*Backends, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &Backends{Name: cfg.Backend}
	switch cfg.Backend {
	case "", "memory":
		b.Name = "memory"
		b.Backend = store.NewMemoryBackend()
	case "redis":
		r, err := NewRedisRepo(ctx, cfg.RedisURL, cfg.Namespace, logger)
		if err != nil {
			return nil, err
		}
		b.Backend, b.Relay, b.Purger = r, r, r
		b.closers = append(b.closers, r.Close)
	case "postgres":
		pg, err := NewPostgresRepo(ctx, cfg.DatabaseURL, cfg.Namespace)
		if err != nil {
			return nil, err
		}
		if err := pg.RunMigrations(ctx); err != nil {
			pg.Close()
			return nil, err
		}
		b.Backend, b.Purger = pg, pg
		b.closers = append(b.closers, pg.Close)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
	logger.Info("store backend ready", zap.String("backend", b.Name), zap.String("namespace", cfg.Namespace))
	return b, nil
}

func (b *Backends) Close() error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		errs = append(errs, b.closers[i]())
	}
	return errors.Join(errs...)
}
