package store

import (
	"context"
	"fmt"

	"github.com/brizzai/hubspot-connect/internal/config"
	"github.com/brizzai/hubspot-connect/internal/logger"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// New selects the Store implementation named by the configuration.
// The redis client is closed when the fx application stops.
func New(lc fx.Lifecycle, cfg *config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case config.StoreDriverMemory:
		logger.Warn("Using in-memory store, state is lost on restart and not shared between instances")
		return NewMemoryStore(), nil
	case config.StoreDriverRedis, "":
		s := NewRedisStore(NewRedisClient(&cfg.Redis))
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				if err := s.Ping(ctx); err != nil {
					return fmt.Errorf("connect to redis at %s: %w", cfg.Redis.Addr, err)
				}
				logger.Info("Connected to redis", zap.String("addr", cfg.Redis.Addr), zap.Int("db", cfg.Redis.DB))
				return nil
			},
			OnStop: func(context.Context) error {
				return s.Close()
			},
		})
		return s, nil
	default:
		return nil, fmt.Errorf("unsupported store driver: %s", cfg.Driver)
	}
}

// Module provides the key-value store
var Module = fx.Module("store",
	fx.Provide(New),
)
