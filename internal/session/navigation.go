package session

import (
	"context"
	"net/url"
)

// Destination — куда перейти после выхода.
type Destination string

const (
	// DestinationNone — пользователь отказался от выбора, переход не выполняется.
	DestinationNone Destination = ""
	// DestinationHome — главная страница.
	DestinationHome Destination = "/"
	// DestinationLogin — вход.
	DestinationLogin Destination = "/login"
)

// Navigator выполняет переход (в вебе — смена location, в CLI — сообщение).
type Navigator interface {
	Navigate(ctx context.Context, path string)
}

// Prompter спрашивает пользователя, куда перейти после выхода.
type Prompter interface {
	ChooseAfterLogout(ctx context.Context) (Destination, error)
}

// NavigatorFunc — адаптер функции к Navigator.
type NavigatorFunc func(ctx context.Context, path string)

func (f NavigatorFunc) Navigate(ctx context.Context, path string) { f(ctx, path) }

// LoginRedirect — путь входа с возвратом на path после успешного входа.
func LoginRedirect(path string) string {
	if path == "" || path == string(DestinationLogin) {
		return string(DestinationLogin)
	}

	return string(DestinationLogin) + "?redirect=" + url.QueryEscape(path)
}
