package models

import "time"

// UserProfile — проекция пользователя, которую отдаёт GET /auth/user/
// и которая приходит в ответах login/registration.
//
// Бэкенд присылает идентификатор то как id, то как pk.
type UserProfile struct {
	ID          int64  `json:"id,omitempty"`
	PK          int64  `json:"pk,omitempty"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	IsStaff     bool   `json:"is_staff,omitempty"`
	IsSuperuser bool   `json:"is_superuser,omitempty"`
	IsActive    *bool  `json:"is_active,omitempty"`
}

// UserID возвращает id, а при его отсутствии — pk.
func (u UserProfile) UserID() int64 {
	if u.ID != 0 {
		return u.ID
	}

	return u.PK
}

// IsAdmin — доступ к админ-разделу (staff или superuser).
func (u UserProfile) IsAdmin() bool {
	return u.IsStaff || u.IsSuperuser
}

// AdminUser — строка списка /admin/users/.
type AdminUser struct {
	UserProfile
	DateJoined *time.Time `json:"date_joined,omitempty"`
	LastLogin  *time.Time `json:"last_login,omitempty"`
}

// AdminUserPatch — частичное обновление флагов пользователя администратором.
type AdminUserPatch struct {
	IsActive *bool `json:"is_active,omitempty"`
	IsStaff  *bool `json:"is_staff,omitempty"`
}
