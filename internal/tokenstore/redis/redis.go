// redis — хранилище пары токенов в Redis.
// Пара лежит в одном хэше <prefix><profile> с полями pcRecAccessToken и
// pcRecRefreshToken; запись идёт одной транзакцией (MULTI/EXEC), поэтому
// читатель видит либо старую, либо новую пару.
package redis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pribylovaa/pc-recommender/internal/models"
	"github.com/pribylovaa/pc-recommender/internal/tokenstore"
	"github.com/pribylovaa/pc-recommender/pkg/log"
)

const driver = tokenstore.DriverRedis

// DefaultPrefix — префикс ключей по умолчанию.
const DefaultPrefix = "pcrec:tokens:"

// Store — tokenstore.Store поверх Redis.
type Store struct {
	rdb     *redis.Client
	key     string
	ttl     time.Duration
	ownsRDB bool
}

// Options — параметры хранилища.
// TTL == 0 — ключ без срока жизни.
type Options struct {
	Prefix  string
	Profile string
	TTL     time.Duration
}

// New создаёт клиент Redis из URL (например, redis://:pass@host:6379/0)
// и проверяет соединение.
func New(ctx context.Context, redisURL string, opts Options) (*Store, error) {
	const op = "tokenstore.redis.New"

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rdb := redis.NewClient(opt)

	// Fail-fast на старте.
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s := NewWithClient(rdb, opts)
	s.ownsRDB = true

	return s, nil
}

// NewWithClient оборачивает готовый клиент; Close его не закрывает.
func NewWithClient(rdb *redis.Client, opts Options) *Store {
	if opts.Prefix == "" {
		opts.Prefix = DefaultPrefix
	}
	if opts.Profile == "" {
		opts.Profile = "default"
	}

	return &Store{rdb: rdb, key: opts.Prefix + opts.Profile, ttl: opts.TTL}
}

// Key — ключ хэша профиля.
func (s *Store) Key() string { return s.key }

// StoreTokens пишет пару целиком. Пустой refresh сохраняет прежний:
// поле просто не перезаписывается.
func (s *Store) StoreTokens(ctx context.Context, access, refresh string) {
	if access == "" {
		s.ClearTokens(ctx)
		return
	}

	kv := map[string]string{tokenstore.AccessKey: access}
	if refresh != "" {
		kv[tokenstore.RefreshKey] = refresh
	}

	pipe := s.rdb.TxPipeline()
	pipe.HSet(ctx, s.key, kv)
	if s.ttl > 0 {
		pipe.Expire(ctx, s.key, s.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		warnf(ctx, "token_store_write_failed", err)
	}
}

func (s *Store) AccessToken(ctx context.Context) string {
	return s.load(ctx).Access
}

func (s *Store) RefreshToken(ctx context.Context) string {
	return s.load(ctx).Refresh
}

func (s *Store) ClearTokens(ctx context.Context) {
	if err := s.rdb.Del(ctx, s.key).Err(); err != nil {
		warnf(ctx, "token_store_clear_failed", err)
	}
}

// Close закрывает клиент Redis, если хранилище его создало.
func (s *Store) Close() error {
	if !s.ownsRDB {
		return nil
	}

	return s.rdb.Close()
}

func (s *Store) load(ctx context.Context) models.TokenPair {
	vals, err := s.rdb.HMGet(ctx, s.key, tokenstore.AccessKey, tokenstore.RefreshKey).Result()
	if err != nil {
		warnf(ctx, "token_store_read_failed", err)
		return models.TokenPair{}
	}

	var p models.TokenPair
	if v, ok := vals[0].(string); ok {
		p.Access = v
	}
	if v, ok := vals[1].(string); ok {
		p.Refresh = v
	}

	return tokenstore.Visible(p)
}

func warnf(ctx context.Context, event string, err error) {
	log.From(ctx).Warn(event,
		slog.String("driver", driver),
		slog.String("err", err.Error()),
	)
}

var _ tokenstore.Store = (*Store)(nil)
