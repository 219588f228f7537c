// postgres — хранилище пары токенов в PostgreSQL: одна строка на профиль
// в таблице client_tokens. Запись — один UPSERT, поэтому пара меняется атомарно.
package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pribylovaa/pc-recommender/internal/models"
	"github.com/pribylovaa/pc-recommender/internal/tokenstore"
	"github.com/pribylovaa/pc-recommender/pkg/log"
)

//go:embed migrations/1_init_client_tokens.up.sql
var schemaUp string

type Store struct {
	db      *pgxpool.Pool
	profile string
}

// New создает новое подключение к PostgreSQL.
func New(ctx context.Context, dbURL, profile string) (*Store, error) {
	const op = "tokenstore.postgres.New"

	config, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	db, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if profile == "" {
		profile = "default"
	}

	return &Store{db: db, profile: profile}, nil
}

// Migrate создаёт таблицу client_tokens, если её нет.
func (s *Store) Migrate(ctx context.Context) error {
	const op = "tokenstore.postgres.Migrate"

	if _, err := s.db.Exec(ctx, schemaUp); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Close закрывает пул соединений.
func (s *Store) Close() {
	s.db.Close()
}

// StoreTokens — UPSERT пары. Пустой refresh сохраняет прежний.
func (s *Store) StoreTokens(ctx context.Context, access, refresh string) {
	if access == "" {
		s.ClearTokens(ctx)
		return
	}

	const q = `
		INSERT INTO client_tokens (profile, access_token, refresh_token, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (profile) DO UPDATE SET
			access_token  = EXCLUDED.access_token,
			refresh_token = CASE WHEN EXCLUDED.refresh_token = ''
			                     THEN client_tokens.refresh_token
			                     ELSE EXCLUDED.refresh_token END,
			updated_at    = now()`

	if _, err := s.db.Exec(ctx, q, s.profile, access, refresh); err != nil {
		warn(ctx, "token_store_write_failed", err)
	}
}

func (s *Store) AccessToken(ctx context.Context) string {
	return s.load(ctx).Access
}

func (s *Store) RefreshToken(ctx context.Context) string {
	return s.load(ctx).Refresh
}

func (s *Store) ClearTokens(ctx context.Context) {
	const q = `DELETE FROM client_tokens WHERE profile = $1`

	if _, err := s.db.Exec(ctx, q, s.profile); err != nil {
		warn(ctx, "token_store_clear_failed", err)
	}
}

func (s *Store) load(ctx context.Context) models.TokenPair {
	const q = `SELECT access_token, refresh_token FROM client_tokens WHERE profile = $1`

	var p models.TokenPair
	err := s.db.QueryRow(ctx, q, s.profile).Scan(&p.Access, &p.Refresh)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.TokenPair{}
	}
	if err != nil {
		warn(ctx, "token_store_read_failed", err)
		return models.TokenPair{}
	}

	return tokenstore.Visible(p)
}

func warn(ctx context.Context, event string, err error) {
	log.From(ctx).Warn(event,
		slog.String("driver", tokenstore.DriverPostgres),
		slog.String("err", err.Error()),
	)
}

// Проверка на соответствие интерфейсу Store.
var _ tokenstore.Store = (*Store)(nil)
