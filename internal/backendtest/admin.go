package backendtest

import (
	"net/http"
	"sort"

	"github.com/pribylovaa/pc-recommender/internal/models"
)

func (s *Server) adminStats(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	out := models.AdminStats{
		TotalUsers:           int64(len(s.users)),
		TotalSavedSpecs:      int64(len(s.specs)),
		RecommendationsToday: s.recommendCount,
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, out)
}

func (s *Server) adminUsers(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	out := make([]models.AdminUser, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, adminView(u))
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	writeJSON(w, http.StatusOK, out)
}

// adminView — строка списка пользователей: сериализатор админки отдаёт id, а не pk.
func adminView(u *user) models.AdminUser {
	p := u.profile
	p.ID, p.PK = p.PK, 0

	joined := u.dateJoined
	out := models.AdminUser{UserProfile: p, DateJoined: &joined}
	if u.lastLogin != nil {
		ll := *u.lastLogin
		out.LastLogin = &ll
	}

	return out
}

func (s *Server) adminPatchUser(w http.ResponseWriter, r *http.Request) {
	var in models.AdminUserPatch
	if err := decode(r, &in); err != nil {
		writeParseError(w)
		return
	}

	id, ok := pathID(r)

	s.mu.Lock()
	u, found := s.users[id]
	var out models.AdminUser
	if ok && found {
		if in.IsActive != nil {
			v := *in.IsActive
			u.profile.IsActive = &v
		}
		if in.IsStaff != nil {
			u.profile.IsStaff = *in.IsStaff
		}
		out = adminView(u)
	}
	s.mu.Unlock()

	if !ok || !found {
		writeNotFound(w)
		return
	}

	writeJSON(w, http.StatusOK, out)
}

func (s *Server) adminDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)

	s.mu.Lock()
	_, found := s.users[id]
	if ok && found {
		delete(s.users, id)
		for specID, sp := range s.specs {
			if sp.User == id {
				delete(s.specs, specID)
			}
		}
	}
	s.mu.Unlock()

	if !ok || !found {
		writeNotFound(w)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) adminSpecs(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	out := s.specsLocked(func(*models.SavedSpec) bool { return true })
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, out)
}

func (s *Server) adminDeleteSpec(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)

	s.mu.Lock()
	_, found := s.specs[id]
	if ok && found {
		delete(s.specs, id)
	}
	s.mu.Unlock()

	if !ok || !found {
		writeNotFound(w)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
