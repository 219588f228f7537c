package transport

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/pc-recommender/pkg/log"
)

type capHandler struct {
	mu      sync.Mutex
	base    []slog.Attr
	lastMsg string
	lastLvl slog.Level
	attrs   map[string]any
	count   map[string]int
}

func (h *capHandler) Enabled(context.Context, slog.Level) bool { return true }
func (h *capHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make(map[string]any, len(h.base)+8)
	for _, a := range h.base {
		out[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		out[a.Key] = a.Value.Any()
		return true
	})
	if h.count == nil {
		h.count = make(map[string]int)
	}
	h.count[r.Message]++
	h.lastMsg = r.Message
	h.lastLvl = r.Level
	h.attrs = out
	return nil
}

func (h *capHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	h.base = append(h.base, attrs...)
	return h
}

func (h *capHandler) WithGroup(string) slog.Handler { return h }

// recorder — конечный RoundTripper, запоминающий последний запрос.
type recorder struct {
	mu     sync.Mutex
	last   *http.Request
	status int
	err    error
}

func (rt *recorder) RoundTrip(r *http.Request) (*http.Response, error) {
	rt.mu.Lock()
	rt.last = r
	rt.mu.Unlock()

	if rt.err != nil {
		return nil, rt.err
	}

	status := rt.status
	if status == 0 {
		status = http.StatusOK
	}

	return &http.Response{
		StatusCode: status,
		Header:     http.Header{},
		Body:       io.NopCloser(strings.NewReader("ok")),
		Request:    r,
	}, nil
}

func newReq(t *testing.T, ctx context.Context) *http.Request {
	t.Helper()

	r, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://backend.test/api/auth/user/", nil)
	require.NoError(t, err)

	return r
}

func TestChain_Order(t *testing.T) {
	t.Parallel()

	var order []string
	mw := func(name string) Middleware {
		return func(next http.RoundTripper) http.RoundTripper {
			return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
				order = append(order, name)
				return next.RoundTrip(r)
			})
		}
	}

	rt := Chain(&recorder{}, mw("a"), mw("b"), mw("c"))
	_, err := rt.RoundTrip(newReq(t, context.Background()))
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b", "c"}, order)
}

func TestRequestID_GeneratesUUID_AndKeepsOriginalUntouched(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	in := newReq(t, context.Background())

	_, err := Chain(rec, RequestID()).RoundTrip(in)
	require.NoError(t, err)

	rid := rec.last.Header.Get(HeaderRequestID)
	_, perr := uuid.Parse(rid)
	require.NoError(t, perr)
	require.Equal(t, rid, RequestIDFrom(rec.last.Context()))
	require.Empty(t, in.Header.Get(HeaderRequestID))
}

func TestRequestID_FromContextOrHeader(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	rt := Chain(rec, RequestID())

	_, err := rt.RoundTrip(newReq(t, WithRequestID(context.Background(), "rid-ctx")))
	require.NoError(t, err)
	require.Equal(t, "rid-ctx", rec.last.Header.Get(HeaderRequestID))

	r := newReq(t, context.Background())
	r.Header.Set(HeaderRequestID, "rid-hdr")
	_, err = rt.RoundTrip(r)
	require.NoError(t, err)
	require.Equal(t, "rid-hdr", rec.last.Header.Get(HeaderRequestID))
}

func TestUserAgent(t *testing.T) {
	t.Parallel()

	rec := &recorder{}

	_, err := Chain(rec, UserAgent("pcrec/test")).RoundTrip(newReq(t, context.Background()))
	require.NoError(t, err)
	require.Equal(t, "pcrec/test", rec.last.Header.Get("User-Agent"))

	r := newReq(t, context.Background())
	r.Header.Set("User-Agent", "custom")
	_, err = Chain(rec, UserAgent("pcrec/test")).RoundTrip(r)
	require.NoError(t, err)
	require.Equal(t, "custom", rec.last.Header.Get("User-Agent"))

	_, err = Chain(rec, UserAgent("")).RoundTrip(newReq(t, context.Background()))
	require.NoError(t, err)
	require.Empty(t, rec.last.Header.Get("User-Agent"))
}

func TestTimeout_SetsDeadline_AndBodyReadable(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	resp, err := Chain(rec, Timeout(time.Second)).RoundTrip(newReq(t, context.Background()))
	require.NoError(t, err)

	_, ok := rec.last.Context().Deadline()
	require.True(t, ok)

	// тело читается после возврата из RoundTrip: контекст ещё жив.
	require.NoError(t, rec.last.Context().Err())
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, "ok", string(b))

	require.NoError(t, resp.Body.Close())
	require.ErrorIs(t, rec.last.Context().Err(), context.Canceled)
}

func TestTimeout_DoesNotOverrideExistingDeadline(t *testing.T) {
	t.Parallel()

	parent, cancel := context.WithTimeout(context.Background(), 25*time.Millisecond)
	defer cancel()
	parentDL, _ := parent.Deadline()

	rec := &recorder{}
	_, err := Chain(rec, Timeout(time.Hour)).RoundTrip(newReq(t, parent))
	require.NoError(t, err)

	childDL, ok := rec.last.Context().Deadline()
	require.True(t, ok)
	require.WithinDuration(t, parentDL, childDL, time.Millisecond)
}

func TestTimeout_HungServer_DeadlineExceeded(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	const d = 40 * time.Millisecond
	rt := Chain(http.DefaultTransport, Timeout(d))

	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	start := time.Now()
	_, err = rt.RoundTrip(req)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.GreaterOrEqual(t, time.Since(start), d)
}

func TestLogging_SingleRecord(t *testing.T) {
	t.Parallel()

	h := &capHandler{}
	rec := &recorder{status: http.StatusUnauthorized}

	r := newReq(t, context.Background())
	r.Header.Set("Authorization", "Bearer secret-token")

	_, err := Chain(rec, RequestID(), Logging(slog.New(h))).RoundTrip(r)
	require.NoError(t, err)

	require.Equal(t, "http", h.lastMsg)
	require.Equal(t, slog.LevelInfo, h.lastLvl)
	require.Equal(t, 1, h.count["http"])
	require.EqualValues(t, http.StatusUnauthorized, h.attrs["status"])
	require.Equal(t, http.MethodGet, h.attrs["method"])
	require.Equal(t, "/api/auth/user/", h.attrs["path"])
	require.NotEmpty(t, h.attrs["request_id"])
	for _, v := range h.attrs {
		if s, ok := v.(string); ok {
			require.NotContains(t, s, "secret-token")
		}
	}
}

func TestLogging_NetworkError_UsesContextLogger(t *testing.T) {
	t.Parallel()

	h := &capHandler{}
	ctx := log.Into(context.Background(), slog.New(h))
	rec := &recorder{err: errors.New("connection refused")}

	_, err := Chain(rec, Logging(nil)).RoundTrip(newReq(t, ctx))
	require.Error(t, err)

	require.Equal(t, "http", h.lastMsg)
	require.EqualValues(t, 0, h.attrs["status"])
	require.Equal(t, "connection refused", h.attrs["err"])
}

type obs struct {
	method string
	code   int
	calls  int
}

func (o *obs) ObserveRequest(method string, code int, _ time.Duration) {
	o.method, o.code = method, code
	o.calls++
}

func TestMetrics_Observes(t *testing.T) {
	t.Parallel()

	o := &obs{}
	_, err := Chain(&recorder{status: http.StatusCreated}, Metrics(o)).RoundTrip(newReq(t, context.Background()))
	require.NoError(t, err)
	require.Equal(t, 1, o.calls)
	require.Equal(t, http.MethodGet, o.method)
	require.Equal(t, http.StatusCreated, o.code)

	_, err = Chain(&recorder{err: errors.New("boom")}, Metrics(o)).RoundTrip(newReq(t, context.Background()))
	require.Error(t, err)
	require.Equal(t, 0, o.code)

	// nil observer — прозрачный.
	_, err = Chain(&recorder{}, Metrics(nil)).RoundTrip(newReq(t, context.Background()))
	require.NoError(t, err)
}
