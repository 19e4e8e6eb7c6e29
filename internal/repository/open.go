package repository

import (
	"context"
	"fmt"

	"github.com/dinerozz/nudge-engine/config"
	"go.uber.org/zap"
)

const (
	DriverMemory   = "memory"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverSupabase = "supabase"
)

// OpenStore builds the document store selected by cfg.Storage.Driver. The
// returned close func is never nil.
func OpenStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (DocumentStore, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Storage.Driver {
	case DriverMemory, "":
		return NewMemoryStore(), noop, nil
	case DriverRedis:
		store, err := NewRedisStore(ctx, cfg.Redis, logger)
		if err != nil {
			return nil, noop, err
		}
		return store, store.Close, nil
	case DriverPostgres:
		store, err := NewPostgres(cfg.DB, logger)
		if err != nil {
			return nil, noop, err
		}
		return store, store.Close, nil
	case DriverSQLite:
		store, err := NewSQLite(ctx, cfg.Storage.SQLitePath)
		if err != nil {
			return nil, noop, err
		}
		return store, store.Close, nil
	case DriverSupabase:
		store, err := NewSupabaseStore(cfg.Supabase)
		if err != nil {
			return nil, noop, err
		}
		return store, noop, nil
	}
	return nil, noop, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}
