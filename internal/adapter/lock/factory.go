package lock

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/simaogato/hostelflow-backend/internal/domain"
	"github.com/simaogato/hostelflow-backend/internal/infrastructure/config"
)

// NewRoomLocker builds the locker selected by cfg.Lock.Driver.
// With the redis driver and AllowMemoryFallback set, an unreachable Redis degrades to the
// in-process locker with a warning; the database exclusion constraint still guards overlaps.
func NewRoomLocker(cfg *config.Config, logger *zap.Logger) (domain.RoomLocker, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if cfg.Lock.Driver != config.DriverRedis {
		logger.Info("Using in-process room lock")
		return NewMemoryLocker(cfg.Lock.AcquireTimeout), nil
	}

	locker, err := NewRedisLocker(
		RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		RedisOptions{
			TTL:            cfg.Lock.TTL,
			AcquireTimeout: cfg.Lock.AcquireTimeout,
			RetryInterval:  cfg.Lock.RetryInterval,
		},
		logger,
	)
	if err == nil {
		logger.Info("Using Redis room lock", zap.String("host", cfg.Redis.Host), zap.Int("port", cfg.Redis.Port))
		return locker, nil
	}

	if !cfg.Lock.AllowMemoryFallback {
		return nil, fmt.Errorf("redis room lock required but unavailable: %w", err)
	}

	logger.Warn("Redis unavailable, falling back to in-process room lock. "+
		"Replicas will not see each other's locks.",
		zap.Error(err),
	)
	return NewMemoryLocker(cfg.Lock.AcquireTimeout), nil
}
