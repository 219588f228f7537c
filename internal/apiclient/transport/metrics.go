package transport

import (
	"net/http"
	"time"
)

// Observer принимает результат каждого запроса (code == 0 — сетевая ошибка).
type Observer interface {
	ObserveRequest(method string, code int, dur time.Duration)
}

// Metrics передаёт метод, статус и длительность запроса в Observer.
// nil Observer — no-op.
func Metrics(o Observer) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		if o == nil {
			return next
		}

		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			start := time.Now()

			resp, err := next.RoundTrip(r)
			code := 0
			if err == nil {
				code = resp.StatusCode
			}
			o.ObserveRequest(r.Method, code, time.Since(start))

			return resp, err
		})
	}
}
