package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pribylovaa/pc-recommender/internal/config"
	"github.com/pribylovaa/pc-recommender/internal/tokenstore"
	"github.com/pribylovaa/pc-recommender/internal/tokenstore/postgres"
	"github.com/pribylovaa/pc-recommender/internal/tokenstore/redis"
)

const storeConnectTimeout = 10 * time.Second

// NewStore выбирает хранилище токенов по cfg.Driver.
// Возвращаемая функция освобождает ресурсы хранилища (для memory/file — no-op).
//
// Сетевые драйверы проверяют соединение сразу; postgres применяет миграции.
func NewStore(ctx context.Context, cfg config.TokensConfig, log *slog.Logger) (tokenstore.Store, func(), error) {
	const op = "app.NewStore"

	noop := func() {}

	switch cfg.Driver {
	case tokenstore.DriverMemory:
		return tokenstore.NewMemory(), noop, nil

	case tokenstore.DriverFile, "":
		st, err := tokenstore.NewFile(cfg.FilePath)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", op, err)
		}
		log.Debug("token_store_file", slog.String("path", st.Path()))

		return st, noop, nil

	case tokenstore.DriverRedis:
		cctx, cancel := context.WithTimeout(ctx, storeConnectTimeout)
		defer cancel()

		st, err := redis.New(cctx, cfg.RedisURL, redis.Options{
			Prefix:  cfg.RedisPrefix,
			Profile: cfg.Profile,
			TTL:     cfg.RedisTTL,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", op, err)
		}
		log.Info("redis_connected", slog.String("key", st.Key()))

		return st, func() {
			if err := st.Close(); err != nil {
				log.Warn("redis_close_failed", slog.String("err", err.Error()))
			}
		}, nil

	case tokenstore.DriverPostgres:
		cctx, cancel := context.WithTimeout(ctx, storeConnectTimeout)
		defer cancel()

		st, err := postgres.New(cctx, cfg.DatabaseURL, cfg.Profile)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", op, err)
		}

		if err := st.Migrate(cctx); err != nil {
			st.Close()
			return nil, nil, fmt.Errorf("%s: %w", op, err)
		}
		log.Info("postgres_connected")

		return st, st.Close, nil

	case tokenstore.DriverNone:
		log.Warn("token_store_disabled")
		return tokenstore.Unavailable{}, noop, nil

	default:
		return nil, nil, fmt.Errorf("%s: %w: %q", op, tokenstore.ErrUnknownDriver, cfg.Driver)
	}
}
