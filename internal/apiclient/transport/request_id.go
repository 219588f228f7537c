package transport

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// HeaderRequestID — заголовок корреляции запросов.
const HeaderRequestID = "X-Request-Id"

type ctxKey struct{}

// WithRequestID кладёт request id в контекст; RequestID возьмёт его вместо генерации.
func WithRequestID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ctx, ctxKey{}, rid)
}

// RequestIDFrom достаёт request id из контекста.
func RequestIDFrom(ctx context.Context) string {
	rid, _ := ctx.Value(ctxKey{}).(string)
	return rid
}

// RequestID проставляет X-Request-Id: из заголовка запроса, из контекста
// или новый UUID. Повтор запроса после обновления токена уходит с тем же id,
// если вызывающий положил его в контекст.
func RequestID() Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			if r.Header.Get(HeaderRequestID) != "" {
				return next.RoundTrip(r)
			}

			rid := RequestIDFrom(r.Context())
			if rid == "" {
				rid = uuid.NewString()
			}

			r2 := r.Clone(WithRequestID(r.Context(), rid))
			r2.Header.Set(HeaderRequestID, rid)

			return next.RoundTrip(r2)
		})
	}
}
