package backendtest

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	apierrors "github.com/pribylovaa/pc-recommender/internal/errors"
	"github.com/pribylovaa/pc-recommender/internal/models"
)

var (
	errInvalidToken = errors.New("invalid token")
	errNoUser       = errors.New("user not found")
)

type accessClaims struct {
	UserID    int64  `json:"user_id"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// issuePairLocked — новая пара; вызывается под s.mu.
func (s *Server) issuePairLocked(userID int64, now time.Time) (models.TokenPair, error) {
	if _, ok := s.users[userID]; !ok {
		return models.TokenPair{}, errNoUser
	}

	access, err := s.issueAccessLocked(userID, now)
	if err != nil {
		return models.TokenPair{}, err
	}

	refresh, err := s.issueRefreshLocked(userID, now)
	if err != nil {
		return models.TokenPair{}, err
	}

	return models.TokenPair{Access: access, Refresh: refresh}, nil
}

func (s *Server) issueAccessLocked(userID int64, now time.Time) (string, error) {
	jti := uuid.NewString()
	claims := accessClaims{
		UserID:    userID,
		TokenType: "access",
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.opts.AccessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   fmt.Sprint(userID),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", err
	}

	s.issuedAccess = append(s.issuedAccess, jti)

	return signed, nil
}

func (s *Server) issueRefreshLocked(userID int64, now time.Time) (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	plain := base64.RawURLEncoding.EncodeToString(b)

	s.refresh[hashToken(plain)] = &refreshEntry{
		userID:    userID,
		expiresAt: now.Add(s.opts.RefreshTTL),
	}

	return plain, nil
}

func hashToken(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// validateAccessLocked возвращает пользователя access-токена.
func (s *Server) validateAccessLocked(tokenStr string) (*user, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &accessClaims{},
		func(t *jwt.Token) (interface{}, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return nil, errInvalidToken
	}

	claims, ok := token.Claims.(*accessClaims)
	if !ok || !token.Valid || claims.TokenType != "access" {
		return nil, errInvalidToken
	}

	if _, revoked := s.revokedAccess[claims.ID]; revoked {
		return nil, errInvalidToken
	}

	u, ok := s.users[claims.UserID]
	if !ok || (u.profile.IsActive != nil && !*u.profile.IsActive) {
		return nil, errNoUser
	}

	return u, nil
}

type ctxUserKey struct{}

func userFrom(ctx context.Context) *user {
	u, _ := ctx.Value(ctxUserKey{}).(*user)
	return u
}

// authenticated — аналог JWTAuthentication + IsAuthenticated в DRF.
func (s *Server) authenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := r.Header.Get("Authorization")
		if h == "" {
			apierrors.WriteDetail(w, http.StatusUnauthorized, "not_authenticated",
				"Authentication credentials were not provided.")
			return
		}

		tok, ok := strings.CutPrefix(h, "Bearer ")
		if !ok || tok == "" {
			apierrors.WriteDetail(w, http.StatusUnauthorized, "bad_authorization_header",
				"Authorization header must contain two space-delimited values")
			return
		}

		s.mu.Lock()
		u, err := s.validateAccessLocked(tok)
		s.mu.Unlock()

		if err != nil {
			apierrors.WriteDetail(w, http.StatusUnauthorized, "token_not_valid",
				"Given token not valid for any token type")
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxUserKey{}, u)))
	})
}

// staffOnly — IsAdminUser.
func (s *Server) staffOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u := userFrom(r.Context())

		s.mu.Lock()
		staff := u != nil && u.profile.IsStaff
		s.mu.Unlock()

		if !staff {
			apierrors.WriteDetail(w, http.StatusForbidden, "permission_denied",
				"You do not have permission to perform this action.")
			return
		}

		next.ServeHTTP(w, r)
	})
}
