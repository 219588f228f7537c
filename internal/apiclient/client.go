// apiclient — HTTP-клиент бэкенда с прозрачным обновлением access-токена.
//
// Каждый запрос получает Authorization: Bearer из хранилища токенов.
// На 401 клиент один раз обновляет пару через /auth/token/refresh/ и
// повторяет запрос; одновременные 401 ждут одного и того же обновления.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/pribylovaa/pc-recommender/internal/apiclient/transport"
	apierrors "github.com/pribylovaa/pc-recommender/internal/errors"
	"github.com/pribylovaa/pc-recommender/internal/tokenstore"
)

// Эндпойнты аутентификации.
const (
	LoginPath    = "/auth/login/"
	RegisterPath = "/auth/registration/"
	UserPath     = "/auth/user/"
	RefreshPath  = "/auth/token/refresh/"
	LogoutPath   = "/auth/logout/"
)

const (
	defaultRefreshTimeout = 10 * time.Second
	refreshKey            = "refresh"
)

var (
	// ErrInvalidBaseURL — базовый URL не задан или не http(s).
	ErrInvalidBaseURL = errors.New("invalid base url")
	// ErrNoRefreshToken — обновлять нечем: refresh-токена нет.
	ErrNoRefreshToken = errors.New("no refresh token")
	// ErrRefreshFailed — обновление токена не удалось (сеть, 4xx/5xx, пустой ответ).
	ErrRefreshFailed = errors.New("token refresh failed")
	// ErrNilStore — клиент создан без хранилища токенов.
	ErrNilStore = errors.New("token store is nil")
)

// Options — параметры клиента.
type Options struct {
	// BaseURL — корень API, например http://localhost:8000/api.
	BaseURL string
	Store   tokenstore.Store
	// UserAgent — значение User-Agent (пусто — по умолчанию Go).
	UserAgent string
	// RequestTimeout — таймаут одного HTTP-запроса, если у ctx нет дедлайна.
	RequestTimeout time.Duration
	// RefreshTimeout — таймаут вызова обновления токена.
	RefreshTimeout time.Duration
	// Transport — базовый RoundTripper (nil — http.DefaultTransport).
	Transport http.RoundTripper
	// Logger — логгер транспорта (nil — логгер из контекста запроса).
	Logger  *slog.Logger
	Metrics *Metrics
}

// Client безопасен для конкурентного использования.
type Client struct {
	base           *url.URL
	store          tokenstore.Store
	http           *http.Client
	bare           *http.Client
	refreshTimeout time.Duration
	metrics        *Metrics

	sf singleflight.Group

	mu           sync.RWMutex
	defaultToken string
	authLost     []func(context.Context, error)
	refreshed    []func(context.Context, string)
}

// New создаёт клиент.
func New(opts Options) (*Client, error) {
	const op = "apiclient.New"

	base, err := parseBaseURL(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if opts.Store == nil {
		return nil, fmt.Errorf("%s: %w", op, ErrNilStore)
	}

	rt := opts.Transport
	if rt == nil {
		rt = http.DefaultTransport
	}

	if opts.RefreshTimeout <= 0 {
		opts.RefreshTimeout = defaultRefreshTimeout
	}

	chain := transport.Chain(rt,
		transport.RequestID(),
		transport.UserAgent(opts.UserAgent),
		transport.Logging(opts.Logger),
		transport.Metrics(observer(opts.Metrics)),
		transport.Timeout(opts.RequestTimeout),
	)

	return &Client{
		base:           base,
		store:          opts.Store,
		http:           &http.Client{Transport: chain},
		bare:           &http.Client{Transport: rt},
		refreshTimeout: opts.RefreshTimeout,
		metrics:        opts.Metrics,
	}, nil
}

// observer не даёт типизированному nil попасть в интерфейс.
func observer(m *Metrics) transport.Observer {
	if m == nil {
		return nil
	}

	return m
}

func parseBaseURL(raw string) (*url.URL, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, ErrInvalidBaseURL
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBaseURL, err)
	}

	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, raw)
	}

	u.Path = strings.TrimRight(u.Path, "/")
	u.RawQuery = ""
	u.Fragment = ""

	return u, nil
}

// Request — запрос к API.
type Request struct {
	Method string
	// Path — путь относительно BaseURL (например "/saved-specs/").
	Path  string
	Query url.Values
	// Body сериализуется в JSON; []byte и json.RawMessage уходят как есть.
	Body   any
	Header http.Header
	// Token — явный access-токен вместо токена из хранилища.
	Token string
	// Out — куда декодировать тело 2xx-ответа.
	Out any
}

// Response — прочитанный ответ.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Decode разбирает JSON-тело. Пустое тело — no-op.
func (r *Response) Decode(v any) error {
	if len(bytes.TrimSpace(r.Body)) == 0 {
		return nil
	}

	return json.Unmarshal(r.Body, v)
}

// Do выполняет запрос.
// Ошибки:
//   - не-2xx — *apierrors.Error;
//   - обновление токена не удалось — ErrRefreshFailed (с причиной в цепочке);
//   - сеть/контекст — как есть, с op.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	const op = "apiclient.Do"

	body, err := encodeBody(req.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: encode body: %w", op, err)
	}

	target := c.resolve(req.Path, req.Query)

	// повтор уходит с тем же request id.
	if transport.RequestIDFrom(ctx) == "" {
		ctx = transport.WithRequestID(ctx, uuid.NewString())
	}

	sent := req.Token
	if sent == "" {
		sent = c.currentToken(ctx)
	}

	resp, err := c.send(ctx, req.Method, target, body, req.Header, sent)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if resp.StatusCode == http.StatusUnauthorized && !isRefreshPath(req.Path) {
		fresh, err := c.recoverAuth(ctx, sent)
		if errors.Is(err, ErrNoRefreshToken) {
			return nil, c.statusError(op, req, resp)
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		c.metrics.retry()

		// второй 401 уже не обрабатывается: не более одного повтора на запрос.
		resp, err = c.send(ctx, req.Method, target, body, req.Header, fresh)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.statusError(op, req, resp)
	}

	if req.Out != nil {
		if err := resp.Decode(req.Out); err != nil {
			return nil, fmt.Errorf("%s: decode %s: %w", op, req.Path, err)
		}
	}

	return resp, nil
}

// Get — GET с декодированием ответа в out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	_, err := c.Do(ctx, &Request{Method: http.MethodGet, Path: path, Out: out})
	return err
}

// Post — POST JSON-тела body.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	_, err := c.Do(ctx, &Request{Method: http.MethodPost, Path: path, Body: body, Out: out})
	return err
}

// Put — PUT JSON-тела body.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	_, err := c.Do(ctx, &Request{Method: http.MethodPut, Path: path, Body: body, Out: out})
	return err
}

// Patch — PATCH JSON-тела body.
func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	_, err := c.Do(ctx, &Request{Method: http.MethodPatch, Path: path, Body: body, Out: out})
	return err
}

// Delete — DELETE без тела.
func (c *Client) Delete(ctx context.Context, path string) error {
	_, err := c.Do(ctx, &Request{Method: http.MethodDelete, Path: path})
	return err
}

// OnAuthLost регистрирует обработчик потери аутентификации: обновление
// невозможно или не удалось, токены уже очищены.
func (c *Client) OnAuthLost(fn func(ctx context.Context, err error)) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.authLost = append(c.authLost, fn)
}

// OnTokensRefreshed регистрирует обработчик успешного обновления.
func (c *Client) OnTokensRefreshed(fn func(ctx context.Context, access string)) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.refreshed = append(c.refreshed, fn)
}

// ResetAuth сбрасывает токен по умолчанию, установленный последним обновлением.
func (c *Client) ResetAuth() {
	c.setDefaultToken("")
}

// Store — хранилище токенов клиента.
func (c *Client) Store() tokenstore.Store { return c.store }

// currentToken — токен из хранилища, иначе токен по умолчанию.
func (c *Client) currentToken(ctx context.Context) string {
	if t := c.store.AccessToken(ctx); t != "" {
		return t
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.defaultToken
}

func (c *Client) setDefaultToken(t string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.defaultToken = t
}

func (c *Client) resolve(path string, query url.Values) string {
	u := *c.base
	u.Path = c.base.Path + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	return u.String()
}

func (c *Client) send(ctx context.Context, method, target string, body []byte, hdr http.Header, token string) (*Response, error) {
	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}

	hreq, err := http.NewRequestWithContext(ctx, method, target, rdr)
	if err != nil {
		return nil, err
	}

	for k, vs := range hdr {
		hreq.Header[k] = append([]string(nil), vs...)
	}
	hreq.Header.Set("Accept", "application/json")
	if body != nil && hreq.Header.Get("Content-Type") == "" {
		hreq.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		hreq.Header.Set("Authorization", "Bearer "+token)
	}

	return roundTrip(c.http, hreq)
}

func roundTrip(hc *http.Client, hreq *http.Request) (*Response, error) {
	resp, err := hc.Do(hreq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: b}, nil
}

func (c *Client) statusError(op string, req *Request, resp *Response) error {
	return apierrors.FromResponse(op, req.Method, req.Path, resp.StatusCode, resp.Body)
}

func encodeBody(v any) ([]byte, error) {
	switch b := v.(type) {
	case nil:
		return nil, nil
	case []byte:
		return b, nil
	case json.RawMessage:
		return b, nil
	default:
		return json.Marshal(v)
	}
}

func isRefreshPath(path string) bool {
	return "/"+strings.Trim(path, "/") == strings.TrimRight(RefreshPath, "/")
}
