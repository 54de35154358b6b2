package kv

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/authshell/authshell/internal/infra"
)

// Supported driver names.
const (
	DriverSQLite   = "sqlite"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Options selects and configures a backend.
type Options struct {
	Driver      string
	Namespace   string
	SQLitePath  string
	DatabaseURL string
	// Redis is required for DriverRedis. It is not closed by the store.
	Redis *redis.Client
}

// Open builds the Store named by opts.Driver.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Driver {
	case DriverSQLite:
		db, err := infra.NewSQLite(ctx, opts.SQLitePath)
		if err != nil {
			return nil, err
		}
		store, err := NewSQLiteStore(ctx, db, opts.Namespace)
		if err != nil {
			db.Close()
			return nil, err
		}
		return store, nil
	case DriverPostgres:
		pool, err := infra.NewPostgresPool(ctx, opts.DatabaseURL)
		if err != nil {
			return nil, err
		}
		store, err := NewPostgresStore(ctx, pool, opts.Namespace)
		if err != nil {
			pool.Close()
			return nil, err
		}
		return store, nil
	case DriverRedis:
		if opts.Redis == nil {
			return nil, fmt.Errorf("redis client is required for the %s driver", DriverRedis)
		}
		return NewRedisStore(opts.Redis, opts.Namespace), nil
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, opts.Driver)
	}
}
