package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"

	apierrors "github.com/pribylovaa/pc-recommender/internal/errors"
	"github.com/pribylovaa/pc-recommender/internal/models"
	"github.com/pribylovaa/pc-recommender/pkg/log"
	"github.com/pribylovaa/pc-recommender/pkg/redact"
)

// errEmptyAccess — бэкенд ответил 2xx без access-токена.
var errEmptyAccess = errors.New("refresh response has no access token")

// recoverAuth возвращает токен для повтора запроса, получившего 401.
//
// Порядок:
//  1. запрос ушёл с токеном, который уже заменён (другой запрос успел
//     обновить пару) — повтор с текущим токеном без нового обновления;
//  2. иначе — присоединение к единственному обновлению (singleflight):
//     первый 401 запускает его, остальные ждут тот же результат.
//
// Отмена ctx ожидающего прекращает только его ожидание: обновление
// выполняется в отвязанном от отмены контексте и завершается для всех.
func (c *Client) recoverAuth(ctx context.Context, sent string) (string, error) {
	if cur := c.currentToken(ctx); sent != "" && cur != "" && cur != sent {
		log.From(ctx).Debug("stale_token_retry")
		return cur, nil
	}

	leader := false
	ch := c.sf.DoChan(refreshKey, func() (any, error) {
		leader = true
		return c.refresh(context.WithoutCancel(ctx))
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if !leader {
			c.metrics.waiter()
		}
		if res.Err != nil {
			return "", res.Err
		}

		return res.Val.(string), nil
	}
}

// refresh выполняет одно обновление пары.
//
// Успех: новый access (и ротированный refresh, если бэкенд его прислал)
// сохраняется, становится токеном по умолчанию, вызываются OnTokensRefreshed.
// Нет refresh-токена: токены очищаются, вызываются OnAuthLost, ErrNoRefreshToken.
// Сбой: токены очищаются, вызываются OnAuthLost, ErrRefreshFailed.
func (c *Client) refresh(ctx context.Context) (string, error) {
	const op = "apiclient.refresh"

	l := log.From(ctx)

	refreshToken := c.store.RefreshToken(ctx)
	if refreshToken == "" {
		c.clearAuth(ctx)
		c.metrics.refreshResult(refreshNoToken)
		l.Info("token_refresh_skipped", slog.String("reason", "no_refresh_token"))

		err := fmt.Errorf("%s: %w", op, ErrNoRefreshToken)
		c.fireAuthLost(ctx, err)

		return "", err
	}

	out, err := c.callRefresh(ctx, refreshToken)
	if err != nil {
		c.clearAuth(ctx)
		c.metrics.refreshResult(refreshFailed)
		l.Warn("token_refresh_failed",
			slog.Int("status", apierrors.StatusCode(err)),
			slog.String("err", err.Error()),
		)

		err = fmt.Errorf("%s: %w: %w", op, ErrRefreshFailed, err)
		c.fireAuthLost(ctx, err)

		return "", err
	}

	// пустой Refresh — бэкенд не ротирует токен, хранилище оставит прежний.
	c.store.StoreTokens(ctx, out.Access, out.Refresh)
	c.setDefaultToken(out.Access)
	c.metrics.refreshResult(refreshOK)
	l.Info("token_refreshed",
		slog.String("access", redact.Token(out.Access)),
		slog.Bool("rotated", out.Refresh != ""),
	)

	c.fireRefreshed(ctx, out.Access)

	return out.Access, nil
}

// callRefresh — POST /auth/token/refresh/ голым клиентом: без перехвата 401
// и без Authorization.
func (c *Client) callRefresh(ctx context.Context, refreshToken string) (*models.RefreshResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.refreshTimeout)
	defer cancel()

	body, err := json.Marshal(models.RefreshRequest{Refresh: refreshToken})
	if err != nil {
		return nil, err
	}

	hreq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.resolve(RefreshPath, nil), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	hreq.Header.Set("Content-Type", "application/json")
	hreq.Header.Set("Accept", "application/json")

	resp, err := roundTrip(c.bare, hreq)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apierrors.FromResponse("apiclient.callRefresh", http.MethodPost, RefreshPath, resp.StatusCode, resp.Body)
	}

	var out models.RefreshResponse
	if err := resp.Decode(&out); err != nil {
		return nil, err
	}
	if out.Access == "" {
		return nil, errEmptyAccess
	}

	return &out, nil
}

// clearAuth очищает хранилище и токен по умолчанию: после потери
// аутентификации запросы уходят без Authorization.
func (c *Client) clearAuth(ctx context.Context) {
	c.store.ClearTokens(ctx)
	c.setDefaultToken("")
}

func (c *Client) fireAuthLost(ctx context.Context, err error) {
	c.mu.RLock()
	hooks := slices.Clone(c.authLost)
	c.mu.RUnlock()

	for _, fn := range hooks {
		fn(ctx, err)
	}
}

func (c *Client) fireRefreshed(ctx context.Context, access string) {
	c.mu.RLock()
	hooks := slices.Clone(c.refreshed)
	c.mu.RUnlock()

	for _, fn := range hooks {
		fn(ctx, access)
	}
}
