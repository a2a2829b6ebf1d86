package store

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/hamar-padhai/progression/internal/config"
	"github.com/hamar-padhai/progression/internal/database"
)

// Open builds the backend selected by cfg.Store.Driver. SQL backends are
// migrated before use.
func Open(ctx context.Context, cfg *config.Config, log *zap.Logger) (Store, error) {
	switch cfg.Store.Driver {
	case "memory":
		log.Warn("using in-memory store; progress is lost on exit")
		return NewMemoryStore(), nil

	case "redis":
		client, err := DialRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, err
		}
		log.Info("connected to redis", zap.String("addr", cfg.Redis.Addr), zap.Int("db", cfg.Redis.DB))
		return NewRedisStore(client, cfg.Redis.Prefix), nil

	case "sqlite", "postgres", "mysql":
		db, err := database.Connect(ctx, cfg.Store.Driver, database.DialectConfig{
			Path: cfg.Store.Path,
			URL:  cfg.Store.URL,
		})
		if err != nil {
			return nil, err
		}
		if err := database.Migrate(db); err != nil {
			db.Close()
			return nil, err
		}
		log.Info("connected to database", zap.String("driver", cfg.Store.Driver))
		return NewSQLStore(db), nil

	default:
		return nil, fmt.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}
