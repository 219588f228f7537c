package session

// Requirement — требование раздела к сессии.
type Requirement int

const (
	// RequireNone — публичный раздел.
	RequireNone Requirement = iota
	// RequireAuth — нужен вход.
	RequireAuth
	// RequireAdmin — нужен вход с правами staff/superuser.
	RequireAdmin
)

// Decision — результат проверки доступа.
type Decision int

const (
	// DecisionAllow — можно показывать раздел.
	DecisionAllow Decision = iota
	// DecisionWait — сессия ещё загружается.
	DecisionWait
	// DecisionRedirectLogin — нужен вход.
	DecisionRedirectLogin
	// DecisionRedirectHome — вход есть, прав нет.
	DecisionRedirectHome
)

func (d Decision) String() string {
	switch d {
	case DecisionAllow:
		return "allow"
	case DecisionWait:
		return "wait"
	case DecisionRedirectLogin:
		return "redirect_login"
	case DecisionRedirectHome:
		return "redirect_home"
	default:
		return "unknown"
	}
}

// Guard решает, можно ли показать раздел с требованием req.
func Guard(snap Snapshot, req Requirement) Decision {
	if req == RequireNone {
		return DecisionAllow
	}

	if snap.IsLoading {
		return DecisionWait
	}

	if !snap.IsAuthenticated() {
		return DecisionRedirectLogin
	}

	if req == RequireAdmin && (snap.User == nil || !snap.User.IsAdmin()) {
		return DecisionRedirectHome
	}

	return DecisionAllow
}
