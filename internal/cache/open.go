package cache

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/community-cli/internal/config"
)

// Open creates the Store selected by cfg.Driver.
func Open(ctx context.Context, cfg config.CacheConfig) (Store, error) {
	log := zap.L().With(zap.String("driver", cfg.Driver))

	var (
		s   Store
		err error
	)
	switch cfg.Driver {
	case "", "memory":
		s = NewMemory(10 * time.Minute)
	case "redis":
		if cfg.RedisURL == "" {
			return nil, eris.New("cache: redis_url is required for the redis driver")
		}
		s, err = NewRedis(ctx, cfg.RedisURL)
	case "sqlite":
		s, err = NewSQLite(ctx, cfg.SQLitePath)
	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, eris.New("cache: database_url is required for the postgres driver")
		}
		s, err = NewPostgres(ctx, cfg.DatabaseURL)
	default:
		return nil, eris.Errorf("cache: unknown driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, eris.Wrap(err, "cache: open")
	}

	log.Info("cache store ready")
	return s, nil
}
