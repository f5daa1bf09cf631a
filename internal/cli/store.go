package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"kboard/internal/auth"
	"kboard/internal/backend/httpstore"
	"kboard/internal/cache"
	"kboard/internal/config"
	"kboard/internal/service"
)

// ErrNotConfigured is returned by DefaultStoreFactory when the settings are
// missing or invalid.
var ErrNotConfigured = errors.New("board store not configured")

// DefaultStoreFactory builds the HTTP Board Store client from cfg, wrapped
// in the Redis snapshot cache when redis_url is set.
func DefaultStoreFactory(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (service.Store, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("%w: set base_url in %s or %s", ErrNotConfigured, cfg.ConfigPath(), config.EnvName("base_url"))
	}

	ts, err := auth.TokenSource(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v (run: kboard login)", service.ErrUnauthorized, err)
	}

	client, err := httpstore.New(ctx, httpstore.Options{
		BaseURL:     cfg.BaseURL,
		TokenSource: ts,
		Timeout:     cfg.Timeout,
		Logger:      log,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotConfigured, err)
	}

	if cfg.RedisURL == "" {
		return client, nil
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid redis_url: %v", ErrNotConfigured, err)
	}
	log.WithField("addr", opts.Addr).Debug("using redis snapshot cache")
	return cache.NewStore(client, redis.NewClient(opts), cfg.CacheTTL, cfg.BaseURL), nil
}
