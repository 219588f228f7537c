// backendtest — фейковый бэкенд рекомендателя для тестов клиента.
//
// Повторяет контракт настоящего API (пути, формы тел, ошибки в форме DRF):
//   - /auth/*: вход по username или email, регистрация, профиль,
//     обновление пары (с ротацией и без), выход;
//   - /recommend-specs/, /explain-build/: детерминированные ответы;
//   - /saved-specs/: CRUD сохранённых сборок владельца;
//   - /admin/*: статистика и управление пользователями/сборками (is_staff).
//
// Access-токены — HS256 JWT, refresh — непрозрачные случайные строки,
// на сервере хранится только их sha256.
package backendtest

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pribylovaa/pc-recommender/internal/models"
)

// BasePath — префикс API, как у настоящего бэкенда.
const BasePath = "/api"

// Options — параметры фейкового бэкенда.
type Options struct {
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	// RotateRefresh — выдавать новый refresh при обновлении (старый отзывается).
	RotateRefresh bool
}

type user struct {
	profile      models.UserProfile
	passwordHash []byte
	dateJoined   time.Time
	lastLogin    *time.Time
}

type refreshEntry struct {
	userID    int64
	revoked   bool
	expiresAt time.Time
}

// Server — фейковый бэкенд поверх httptest.Server.
type Server struct {
	*httptest.Server

	opts   Options
	secret []byte

	mu             sync.Mutex
	users          map[int64]*user
	specs          map[int64]*models.SavedSpec
	refresh        map[string]*refreshEntry
	revokedAccess  map[string]struct{}
	issuedAccess   []string
	nextUserID     int64
	nextSpecID     int64
	recommendCount int64

	refreshDelay    time.Duration
	refreshFailWith int
	registerNoPair  bool
	recommendErr    string

	hits         sync.Map // path -> *atomic.Int64
	refreshCalls atomic.Int64
}

// New поднимает сервер; закрывается через t.Cleanup вызывающего или Close.
func New(opts Options) *Server {
	if opts.AccessTTL <= 0 {
		opts.AccessTTL = 5 * time.Minute
	}
	if opts.RefreshTTL <= 0 {
		opts.RefreshTTL = 24 * time.Hour
	}

	s := &Server{
		opts:          opts,
		secret:        []byte("backendtest-secret"),
		users:         make(map[int64]*user),
		specs:         make(map[int64]*models.SavedSpec),
		refresh:       make(map[string]*refreshEntry),
		revokedAccess: make(map[string]struct{}),
	}

	s.Server = httptest.NewServer(s.router())

	return s
}

// BaseURL — корень API для apiclient.Options.BaseURL.
func (s *Server) BaseURL() string {
	return s.Server.URL + BasePath
}

func (s *Server) router() http.Handler {
	root := chi.NewRouter()
	root.Use(s.countHits)

	api := chi.NewRouter()

	// auth
	api.Post("/auth/login/", s.login)
	api.Post("/auth/registration/", s.register)
	api.Post("/auth/token/refresh/", s.refreshToken)
	api.Post("/auth/logout/", s.logout)
	api.With(s.authenticated).Get("/auth/user/", s.currentUser)

	// recommender
	api.Group(func(r chi.Router) {
		r.Use(s.authenticated)

		r.Post("/recommend-specs/", s.recommend)
		r.Post("/explain-build/", s.explain)

		r.Get("/saved-specs/", s.listSpecs)
		r.Post("/saved-specs/", s.createSpec)
		r.Get("/saved-specs/{id}/", s.getSpec)
		r.Patch("/saved-specs/{id}/", s.patchSpec)
		r.Delete("/saved-specs/{id}/", s.deleteSpec)
	})

	// admin
	api.Group(func(r chi.Router) {
		r.Use(s.authenticated, s.staffOnly)

		r.Get("/admin/stats/", s.adminStats)
		r.Get("/admin/users/", s.adminUsers)
		r.Patch("/admin/users/{id}/", s.adminPatchUser)
		r.Delete("/admin/users/{id}/", s.adminDeleteUser)
		r.Get("/admin/saved-specs/", s.adminSpecs)
		r.Delete("/admin/saved-specs/{id}/", s.adminDeleteSpec)
	})

	root.Mount(BasePath, api)

	return root
}

func (s *Server) countHits(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		v, _ := s.hits.LoadOrStore(r.Method+" "+r.URL.Path, new(atomic.Int64))
		v.(*atomic.Int64).Add(1)
		next.ServeHTTP(w, r)
	})
}

// Hits — сколько раз вызывался "METHOD /api/path/".
func (s *Server) Hits(method, path string) int64 {
	v, ok := s.hits.Load(method + " " + BasePath + path)
	if !ok {
		return 0
	}

	return v.(*atomic.Int64).Load()
}

// RefreshCalls — число обращений к /auth/token/refresh/.
func (s *Server) RefreshCalls() int64 {
	return s.refreshCalls.Load()
}

// SetRefreshDelay задерживает ответ обновления (для тестов конкурентности).
func (s *Server) SetRefreshDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.refreshDelay = d
}

// FailRefresh заставляет обновление отвечать статусом status (0 — отключить).
func (s *Server) FailRefresh(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.refreshFailWith = status
}

// RegisterWithoutTokens — регистрация отвечает без пары (подтверждение e-mail).
func (s *Server) RegisterWithoutTokens(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.registerNoPair = v
}

// FailRecommend — /recommend-specs/ отвечает 500 с полем error.
func (s *Server) FailRecommend(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.recommendErr = msg
}

// ExpireAccessTokens делает недействительными все выданные access-токены,
// как если бы истёк их срок.
func (s *Server) ExpireAccessTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, jti := range s.issuedAccess {
		s.revokedAccess[jti] = struct{}{}
	}
	s.issuedAccess = nil
}

// AddUser создаёт пользователя и возвращает его id.
func (s *Server) AddUser(username, email, password string, staff bool) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, err := s.addUserLocked(username, email, password)
	if err != nil {
		panic(err)
	}
	u.profile.IsStaff = staff

	return u.profile.PK
}

// IssuePair выдаёт пару для пользователя в обход /auth/login/.
func (s *Server) IssuePair(userID int64) models.TokenPair {
	s.mu.Lock()
	defer s.mu.Unlock()

	pair, err := s.issuePairLocked(userID, time.Now())
	if err != nil {
		panic(err)
	}

	return pair
}
