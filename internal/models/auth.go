// Тела запросов/ответов эндпойнтов /auth/*.
package models

// LoginRequest — тело POST /auth/login/.
// Заполняется ровно одно из полей Username/Email.
type LoginRequest struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password"`
}

// RegisterRequest — тело POST /auth/registration/.
type RegisterRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password1 string `json:"password1"`
	Password2 string `json:"password2"`
}

// AuthResponse — ответ login/registration.
// Registration может вернуть пустой ответ (подтверждение e-mail и т.п.).
type AuthResponse struct {
	Access  string       `json:"access,omitempty"`
	Refresh string       `json:"refresh,omitempty"`
	User    *UserProfile `json:"user,omitempty"`
}

// Pair возвращает токены ответа.
func (r AuthResponse) Pair() TokenPair {
	return TokenPair{Access: r.Access, Refresh: r.Refresh}
}

// Complete — в ответе есть и пара токенов, и профиль (можно входить сразу).
func (r AuthResponse) Complete() bool {
	return r.Pair().Complete() && r.User != nil
}

// RefreshRequest — тело POST /auth/token/refresh/.
type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

// RefreshResponse — ответ обновления; Refresh пуст, если бэкенд не ротирует токен.
type RefreshResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}

// LogoutRequest — тело POST /auth/logout/.
type LogoutRequest struct {
	Refresh string `json:"refresh"`
}
