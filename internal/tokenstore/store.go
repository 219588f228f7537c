// tokenstore хранит пару access/refresh между запусками клиента.
//
// Контракт для всех реализаций:
//   - StoreTokens работает по принципу best-effort: ошибки носителя
//     логируются (Warn) и не возвращаются вызывающему;
//   - пустой access очищает пару, пустой refresh сохраняет прежний refresh;
//   - аксессоры возвращают "" при отсутствии значения, при половинке пары
//     и при недоступном носителе, никогда не паникуют;
//   - ClearTokens идемпотентен.
package tokenstore

import (
	"context"
	"errors"
	"log/slog"

	"github.com/pribylovaa/pc-recommender/internal/models"
	"github.com/pribylovaa/pc-recommender/pkg/log"
)

// Ключи носителя совпадают с ключами localStorage веб-клиента,
// чтобы дамп хранилища читался одинаково.
const (
	AccessKey  = "pcRecAccessToken"
	RefreshKey = "pcRecRefreshToken"
)

// Имена драйверов для конфигурации.
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
	DriverNone     = "none"
)

var (
	// ErrUnknownDriver — в конфигурации указан неизвестный драйвер хранилища.
	ErrUnknownDriver = errors.New("unknown token store driver")
)

// Store — хранилище пары токенов.
type Store interface {
	// StoreTokens сохраняет пару. Ошибки носителя не возвращаются.
	StoreTokens(ctx context.Context, access, refresh string)
	// AccessToken возвращает access-токен или "".
	AccessToken(ctx context.Context) string
	// RefreshToken возвращает refresh-токен или "".
	RefreshToken(ctx context.Context) string
	// ClearTokens удаляет оба токена.
	ClearTokens(ctx context.Context)
}

// Merge применяет правила StoreTokens к текущей паре и возвращает
// итоговую пару; пустая пара означает "очистить".
// Используется реализациями, которые пишут пару целиком.
func Merge(cur models.TokenPair, access, refresh string) models.TokenPair {
	if access == "" {
		return models.TokenPair{}
	}
	if refresh == "" {
		refresh = cur.Refresh
	}

	return models.TokenPair{Access: access, Refresh: refresh}
}

// Visible возвращает пару так, как её видят аксессоры:
// половинка пары считается отсутствующей.
func Visible(p models.TokenPair) models.TokenPair {
	if !p.Complete() {
		return models.TokenPair{}
	}

	return p
}

// warn — единая точка логирования сбоев носителя.
func warn(ctx context.Context, event, driver string, err error) {
	log.From(ctx).Warn(event,
		slog.String("driver", driver),
		slog.String("err", err.Error()),
	)
}
