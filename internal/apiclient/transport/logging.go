package transport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/pribylovaa/pc-recommender/pkg/log"
)

// Logging — логирование исходящих запросов.
// Поведение:
//   - пишет в base, а при base == nil — в логгер из контекста запроса (pkg/log);
//   - добавляет поля request_id/method/path;
//   - пишет одну финальную запись уровня Info: msg="http", status, dur
//     (при сетевой ошибке — status=0 и err).
//
// Безопасность: не логирует тела и заголовки (Authorization в том числе).
func Logging(base *slog.Logger) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			start := time.Now()

			l := base
			if l == nil {
				l = log.From(r.Context())
			}
			l = l.With(
				slog.String("request_id", r.Header.Get(HeaderRequestID)),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
			)

			resp, err := next.RoundTrip(r)
			if err != nil {
				l.Info("http",
					slog.Int("status", 0),
					slog.Duration("dur", time.Since(start)),
					slog.String("err", err.Error()),
				)
				return nil, err
			}

			l.Info("http",
				slog.Int("status", resp.StatusCode),
				slog.Duration("dur", time.Since(start)),
			)

			return resp, nil
		})
	}
}
