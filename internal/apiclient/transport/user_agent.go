package transport

import "net/http"

// UserAgent выставляет User-Agent, если он не задан явно. Пустой ua — no-op.
func UserAgent(ua string) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		if ua == "" {
			return next
		}

		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			if r.Header.Get("User-Agent") != "" {
				return next.RoundTrip(r)
			}

			r2 := r.Clone(r.Context())
			r2.Header.Set("User-Agent", ua)

			return next.RoundTrip(r2)
		})
	}
}
