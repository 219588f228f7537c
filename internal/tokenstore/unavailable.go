package tokenstore

import "context"

// Unavailable — носителя нет (драйвер "none"): чтение всегда пусто,
// запись ничего не делает. Клиент с таким хранилищем работает анонимно.
type Unavailable struct{}

func (Unavailable) StoreTokens(context.Context, string, string) {}

func (Unavailable) AccessToken(context.Context) string { return "" }

func (Unavailable) RefreshToken(context.Context) string { return "" }

func (Unavailable) ClearTokens(context.Context) {}

var _ Store = Unavailable{}
