// session — состояние аутентификации клиента: кто вошёл, с каким
// access-токеном, закончилась ли начальная загрузка.
//
// Состояния: Bootstrapping -> {Authenticated, Anonymous},
// Authenticated <-> Anonymous. Переход в Anonymous вне Logout происходит
// по сигналу клиента о потере аутентификации.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/pribylovaa/pc-recommender/internal/apiclient"
	apierrors "github.com/pribylovaa/pc-recommender/internal/errors"
	"github.com/pribylovaa/pc-recommender/internal/models"
	"github.com/pribylovaa/pc-recommender/internal/tokenstore"
	"github.com/pribylovaa/pc-recommender/pkg/redact"
)

var (
	// ErrIdentifierRequired — не указан логин (username или e-mail).
	ErrIdentifierRequired = errors.New("username or email is required")
	// ErrIncompleteAuthResponse — вход прошёл, но ответ без пары токенов или профиля.
	ErrIncompleteAuthResponse = errors.New("incomplete auth response")
)

// State — фаза сессии.
type State int

const (
	StateBootstrapping State = iota
	StateAuthenticated
	StateAnonymous
)

func (s State) String() string {
	switch s {
	case StateBootstrapping:
		return "bootstrapping"
	case StateAuthenticated:
		return "authenticated"
	case StateAnonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}

// Client — то, что сессии нужно от apiclient.Client.
type Client interface {
	Do(ctx context.Context, req *apiclient.Request) (*apiclient.Response, error)
	Post(ctx context.Context, path string, body, out any) error
	ResetAuth()
	OnAuthLost(fn func(ctx context.Context, err error))
	OnTokensRefreshed(fn func(ctx context.Context, access string))
}

// Snapshot — согласованный срез состояния.
type Snapshot struct {
	User        *models.UserProfile
	AccessToken string
	IsLoading   bool
	State       State
}

// IsAuthenticated вычисляется при чтении: есть и профиль, и токен.
func (s Snapshot) IsAuthenticated() bool {
	return s.User != nil && s.AccessToken != ""
}

// Session безопасна для конкурентного использования.
type Session struct {
	api      Client
	store    tokenstore.Store
	nav      Navigator
	prompter Prompter
	log      *slog.Logger

	once         sync.Once
	ready        chan struct{}
	bootstrapErr error

	mu       sync.RWMutex
	state    State
	user     *models.UserProfile
	access   string
	loading  bool
	location string
}

// New создаёт сессию в состоянии Bootstrapping и подписывается на события клиента.
func New(api Client, store tokenstore.Store, nav Navigator, prompter Prompter, log *slog.Logger) *Session {
	if log == nil {
		log = slog.Default()
	}
	if nav == nil {
		nav = NavigatorFunc(func(context.Context, string) {})
	}

	s := &Session{
		api:      api,
		store:    store,
		nav:      nav,
		prompter: prompter,
		log:      log.With(slog.String("component", "session")),
		ready:    make(chan struct{}),
		state:    StateBootstrapping,
		loading:  true,
	}

	api.OnAuthLost(s.handleAuthLost)
	api.OnTokensRefreshed(s.handleTokensRefreshed)

	return s
}

// Bootstrap восстанавливает сессию из хранилища. Выполняется один раз;
// повторные вызовы возвращают результат первого.
//
// Поведение:
//   - токена нет — Anonymous;
//   - GET /auth/user/ успешен — Authenticated;
//   - 401 или неудачное обновление — токены очищаются, Anonymous;
//   - прочие ошибки (сеть, 5xx) — Anonymous, токены сохраняются, ошибка возвращается.
func (s *Session) Bootstrap(ctx context.Context) error {
	s.once.Do(func() {
		s.bootstrapErr = s.bootstrap(ctx)
	})

	return s.bootstrapErr
}

func (s *Session) bootstrap(ctx context.Context) error {
	const op = "session.Bootstrap"

	defer s.finishLoading()

	access := s.store.AccessToken(ctx)
	if access == "" {
		s.setAnonymous()
		s.log.Debug("session_bootstrap_anonymous")
		return nil
	}

	var me models.UserProfile
	_, err := s.api.Do(ctx, &apiclient.Request{
		Method: http.MethodGet,
		Path:   apiclient.UserPath,
		Token:  access,
		Out:    &me,
	})
	if err != nil {
		s.setAnonymous()

		if isAuthFailure(err) {
			s.store.ClearTokens(ctx)
			s.log.Info("session_bootstrap_unauthenticated", slog.String("err", err.Error()))
			return nil
		}

		s.log.Warn("session_bootstrap_failed", slog.String("err", err.Error()))
		return fmt.Errorf("%s: %w", op, err)
	}

	// за время запроса токен мог обновиться.
	if cur := s.store.AccessToken(ctx); cur != "" {
		access = cur
	}

	s.setAuthenticated(&me, access)
	s.log.Info("session_restored", slog.Int64("user_id", me.UserID()))

	return nil
}

// isAuthFailure — 401 или неудачное обновление токена.
func isAuthFailure(err error) bool {
	return apierrors.IsUnauthorized(err) || errors.Is(err, apiclient.ErrRefreshFailed)
}

// Login выполняет вход. Идентификатор с "@" и "." считается e-mail,
// иначе — username. Ошибка бэкенда возвращается без изменений;
// при любой ошибке токены и состояние сбрасываются.
func (s *Session) Login(ctx context.Context, identifier, password string) (*models.UserProfile, error) {
	const op = "session.Login"

	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		s.resetAuth(ctx)
		return nil, fmt.Errorf("%s: %w", op, ErrIdentifierRequired)
	}

	req := models.LoginRequest{Password: password}
	if isEmail(identifier) {
		req.Email = identifier
	} else {
		req.Username = identifier
	}

	l := s.log.With(slog.String("identifier", redact.Identifier(identifier)))

	var resp models.AuthResponse
	err := s.api.Post(ctx, apiclient.LoginPath, req, &resp)
	if err == nil && !resp.Complete() {
		err = fmt.Errorf("%s: %w", op, ErrIncompleteAuthResponse)
	}
	if err != nil {
		s.resetAuth(ctx)
		l.Info("login_failed", slog.Int("status", apierrors.StatusCode(err)))
		return nil, err
	}

	s.store.StoreTokens(ctx, resp.Access, resp.Refresh)
	s.setAuthenticated(resp.User, resp.Access)
	l.Info("login_succeeded", slog.Int64("user_id", resp.User.UserID()))

	return resp.User, nil
}

// resetAuth сбрасывает токены, токен клиента по умолчанию и состояние.
func (s *Session) resetAuth(ctx context.Context) {
	s.store.ClearTokens(ctx)
	s.api.ResetAuth()
	s.setAnonymous()
}

func isEmail(identifier string) bool {
	return strings.Contains(identifier, "@") && strings.Contains(identifier, ".")
}

// Register регистрирует пользователя. Если бэкенд сразу выдал пару и профиль,
// сессия становится Authenticated и профиль возвращается; иначе (например,
// нужно подтвердить e-mail) возвращается nil и состояние не меняется.
func (s *Session) Register(ctx context.Context, req models.RegisterRequest) (*models.UserProfile, error) {
	l := s.log.With(slog.String("email", redact.Email(req.Email)))

	var resp models.AuthResponse
	if err := s.api.Post(ctx, apiclient.RegisterPath, req, &resp); err != nil {
		l.Info("register_failed", slog.Int("status", apierrors.StatusCode(err)))
		return nil, err
	}

	if !resp.Complete() {
		l.Info("register_pending")
		return nil, nil
	}

	s.store.StoreTokens(ctx, resp.Access, resp.Refresh)
	s.setAuthenticated(resp.User, resp.Access)
	l.Info("register_succeeded", slog.Int64("user_id", resp.User.UserID()))

	return resp.User, nil
}

// Logout завершает сессию.
//
// Шаги:
//  1. есть refresh-токен и access-токен сессии — best-effort POST /auth/logout/,
//     сбой только логируется;
//  2. всегда: очистка токенов, сброс токена клиента, Anonymous;
//  3. выбор направления у Prompter и переход через Navigator.
//
// Отказ от выбора, ошибка Prompter или его отсутствие — DestinationNone без перехода.
func (s *Session) Logout(ctx context.Context) Destination {
	refresh := s.store.RefreshToken(ctx)

	s.mu.RLock()
	access := s.access
	s.mu.RUnlock()

	if refresh != "" && access != "" {
		err := s.api.Post(ctx, apiclient.LogoutPath, models.LogoutRequest{Refresh: refresh}, nil)
		if err != nil {
			s.log.Warn("logout_server_notify_failed", slog.String("err", err.Error()))
		}
	}

	s.store.ClearTokens(ctx)
	s.api.ResetAuth()
	s.setAnonymous()
	s.log.Info("logout_completed")

	if s.prompter == nil {
		return DestinationNone
	}

	dest, err := s.prompter.ChooseAfterLogout(ctx)
	if err != nil {
		s.log.Debug("logout_prompt_dismissed", slog.String("err", err.Error()))
		return DestinationNone
	}
	if dest == DestinationNone {
		return DestinationNone
	}

	s.nav.Navigate(ctx, string(dest))

	return dest
}

// Require ждёт окончания загрузки, проверяет доступ к разделу path и при
// необходимости выполняет переход (вход с redirect или главная).
func (s *Session) Require(ctx context.Context, path string, req Requirement) (Decision, error) {
	s.mu.Lock()
	s.location = path
	s.mu.Unlock()

	if err := s.WaitReady(ctx); err != nil {
		return DecisionWait, err
	}

	d := Guard(s.Snapshot(), req)
	switch d {
	case DecisionRedirectLogin:
		s.nav.Navigate(ctx, LoginRedirect(path))
	case DecisionRedirectHome:
		s.nav.Navigate(ctx, string(DestinationHome))
	}

	return d, nil
}

// Snapshot — текущее состояние.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var u *models.UserProfile
	if s.user != nil {
		cp := *s.user
		u = &cp
	}

	return Snapshot{User: u, AccessToken: s.access, IsLoading: s.loading, State: s.state}
}

// User — профиль вошедшего пользователя или nil.
func (s *Session) User() *models.UserProfile { return s.Snapshot().User }

// IsAuthenticated — есть профиль и токен.
func (s *Session) IsAuthenticated() bool { return s.Snapshot().IsAuthenticated() }

// IsLoading — начальная загрузка ещё идёт.
func (s *Session) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.loading
}

// State — текущая фаза.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.state
}

// Ready закрывается, когда начальная загрузка завершена.
func (s *Session) Ready() <-chan struct{} { return s.ready }

// WaitReady ждёт окончания начальной загрузки или отмены ctx.
func (s *Session) WaitReady(ctx context.Context) error {
	select {
	case <-s.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// handleAuthLost — клиент не смог обновить токен: сессия сбрасывается,
// пользователь отправляется на вход с возвратом в текущий раздел.
func (s *Session) handleAuthLost(ctx context.Context, err error) {
	s.mu.Lock()
	s.user = nil
	s.access = ""
	if s.state != StateBootstrapping {
		s.state = StateAnonymous
	}
	location := s.location
	s.mu.Unlock()

	s.log.Info("session_auth_lost", slog.String("err", err.Error()))
	s.nav.Navigate(ctx, LoginRedirect(location))
}

func (s *Session) handleTokensRefreshed(_ context.Context, access string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.access = access
}

func (s *Session) setAuthenticated(u *models.UserProfile, access string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *u
	s.user = &cp
	s.access = access
	s.state = StateAuthenticated
}

func (s *Session) setAnonymous() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.user = nil
	s.access = ""
	s.state = StateAnonymous
}

// finishLoading выполняется ровно один раз (из Bootstrap под sync.Once).
func (s *Session) finishLoading() {
	s.mu.Lock()
	s.loading = false
	s.mu.Unlock()

	close(s.ready)
}
