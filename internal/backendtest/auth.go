package backendtest

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	apierrors "github.com/pribylovaa/pc-recommender/internal/errors"
	"github.com/pribylovaa/pc-recommender/internal/models"
)

var errDuplicate = errors.New("duplicate")

// writeJSON — единый ответ JSON с нужным Content-Type.
func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func decode(r *http.Request, value any) error {
	return json.NewDecoder(r.Body).Decode(value)
}

func writeParseError(w http.ResponseWriter) {
	apierrors.WriteDetail(w, http.StatusBadRequest, "parse_error", "JSON parse error")
}

// addUserLocked — создание пользователя; вызывается под s.mu.
func (s *Server) addUserLocked(username, email, password string) (*user, error) {
	for _, u := range s.users {
		if strings.EqualFold(u.profile.Username, username) || strings.EqualFold(u.profile.Email, email) {
			return nil, errDuplicate
		}
	}

	// MinCost: в тестах скорость важнее стойкости хэша.
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}

	s.nextUserID++
	active := true
	u := &user{
		profile: models.UserProfile{
			PK:       s.nextUserID,
			Username: username,
			Email:    email,
			IsActive: &active,
		},
		passwordHash: hash,
		dateJoined:   time.Now().UTC(),
	}
	s.users[u.profile.PK] = u

	return u, nil
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var in models.LoginRequest
	if err := decode(r, &in); err != nil {
		writeParseError(w)
		return
	}

	if in.Password == "" || (in.Username == "" && in.Email == "") {
		apierrors.WriteFields(w, map[string][]string{
			apierrors.NonFieldErrors: {`Must include "username" and "password".`},
		})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var found *user
	for _, u := range s.users {
		if (in.Username != "" && strings.EqualFold(u.profile.Username, in.Username)) ||
			(in.Email != "" && strings.EqualFold(u.profile.Email, in.Email)) {
			found = u
			break
		}
	}

	if found == nil || bcrypt.CompareHashAndPassword(found.passwordHash, []byte(in.Password)) != nil ||
		(found.profile.IsActive != nil && !*found.profile.IsActive) {
		apierrors.WriteFields(w, map[string][]string{
			apierrors.NonFieldErrors: {"Unable to log in with provided credentials."},
		})
		return
	}

	now := time.Now().UTC()
	pair, err := s.issuePairLocked(found.profile.PK, now)
	if err != nil {
		apierrors.WriteDetail(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}
	found.lastLogin = &now

	profile := found.profile
	writeJSON(w, http.StatusOK, models.AuthResponse{Access: pair.Access, Refresh: pair.Refresh, User: &profile})
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var in models.RegisterRequest
	if err := decode(r, &in); err != nil {
		writeParseError(w)
		return
	}

	fields := map[string][]string{}
	if in.Username == "" {
		fields["username"] = []string{"This field may not be blank."}
	}
	if !strings.Contains(in.Email, "@") {
		fields["email"] = []string{"Enter a valid email address."}
	}
	if len(in.Password1) < 8 {
		fields["password1"] = []string{"This password is too short. It must contain at least 8 characters."}
	}
	if in.Password1 != in.Password2 {
		fields[apierrors.NonFieldErrors] = []string{"The two password fields didn't match."}
	}
	if len(fields) > 0 {
		apierrors.WriteFields(w, fields)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, err := s.addUserLocked(in.Username, in.Email, in.Password1)
	if errors.Is(err, errDuplicate) {
		apierrors.WriteFields(w, map[string][]string{
			"username": {"A user with that username already exists."},
		})
		return
	}
	if err != nil {
		apierrors.WriteDetail(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}

	if s.registerNoPair {
		writeJSON(w, http.StatusCreated, map[string]string{"detail": "Verification e-mail sent."})
		return
	}

	pair, err := s.issuePairLocked(u.profile.PK, time.Now().UTC())
	if err != nil {
		apierrors.WriteDetail(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}

	profile := u.profile
	writeJSON(w, http.StatusCreated, models.AuthResponse{Access: pair.Access, Refresh: pair.Refresh, User: &profile})
}

func (s *Server) currentUser(w http.ResponseWriter, r *http.Request) {
	u := userFrom(r.Context())

	s.mu.Lock()
	profile := u.profile
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) refreshToken(w http.ResponseWriter, r *http.Request) {
	s.refreshCalls.Add(1)

	var in models.RefreshRequest
	if err := decode(r, &in); err != nil {
		writeParseError(w)
		return
	}

	s.mu.Lock()
	delay, failWith := s.refreshDelay, s.refreshFailWith
	s.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
	}

	if failWith != 0 {
		apierrors.WriteDetail(w, failWith, "refresh_failed", http.StatusText(failWith))
		return
	}

	if in.Refresh == "" {
		apierrors.WriteFields(w, map[string][]string{"refresh": {"This field may not be blank."}})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	entry, ok := s.refresh[hashToken(in.Refresh)]
	switch {
	case !ok || now.After(entry.expiresAt):
		apierrors.WriteDetail(w, http.StatusUnauthorized, "token_not_valid", "Token is invalid or expired")
		return
	case entry.revoked:
		apierrors.WriteDetail(w, http.StatusUnauthorized, "token_not_valid", "Token is blacklisted")
		return
	}

	if _, ok := s.users[entry.userID]; !ok {
		apierrors.WriteDetail(w, http.StatusUnauthorized, "user_not_found", "User not found")
		return
	}

	access, err := s.issueAccessLocked(entry.userID, now)
	if err != nil {
		apierrors.WriteDetail(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}

	out := models.RefreshResponse{Access: access}
	if s.opts.RotateRefresh {
		entry.revoked = true
		out.Refresh, err = s.issueRefreshLocked(entry.userID, now)
		if err != nil {
			apierrors.WriteDetail(w, http.StatusInternalServerError, "internal", err.Error())
			return
		}
	}

	writeJSON(w, http.StatusOK, out)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	var in models.LogoutRequest
	_ = decode(r, &in)

	s.mu.Lock()
	if entry, ok := s.refresh[hashToken(in.Refresh)]; ok {
		entry.revoked = true
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{"detail": "Successfully logged out."})
}

// RefreshRevoked — отозван ли refresh-токен (например, после выхода).
func (s *Server) RefreshRevoked(plain string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.refresh[hashToken(plain)]

	return ok && entry.revoked
}
