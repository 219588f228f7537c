package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenPair — пара токенов, выдаваемая бэкендом при входе/регистрации/обновлении.
//
// Описание:
//   - Access — короткоживущий bearer-токен для каждого запроса;
//   - Refresh — долгоживущий токен, предъявляется только эндпойнту обновления.
//
// Формат обоих токенов принадлежит бэкенду; клиент считает их непрозрачными строками.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Complete — true, если присутствуют оба токена.
// Неполная пара для клиента равнозначна отсутствию пары.
func (p TokenPair) Complete() bool {
	return p.Access != "" && p.Refresh != ""
}

// AccessExpiresAt читает claim exp из access-токена без проверки подписи.
// Используется только для отображения: истечение токена клиент обнаруживает
// реактивно, по 401. Для непрозрачных (не JWT) токенов возвращает ok=false.
func (p TokenPair) AccessExpiresAt() (time.Time, bool) {
	return TokenExpiresAt(p.Access)
}

// TokenExpiresAt — то же, что TokenPair.AccessExpiresAt, для отдельного токена.
func TokenExpiresAt(token string) (time.Time, bool) {
	if token == "" {
		return time.Time{}, false
	}

	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}

	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}

	return claims.ExpiresAt.Time.UTC(), true
}
