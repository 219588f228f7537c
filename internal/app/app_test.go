package app

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/pc-recommender/internal/backendtest"
	"github.com/pribylovaa/pc-recommender/internal/config"
	"github.com/pribylovaa/pc-recommender/internal/session"
	"github.com/pribylovaa/pc-recommender/internal/tokenstore"
)

func silent() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSetupLogger_Levels(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	var buf bytes.Buffer
	prod := SetupLogger(envProd, &buf)
	require.False(t, prod.Enabled(ctx, slog.LevelDebug))
	prod.Info("hello")
	require.True(t, strings.HasPrefix(buf.String(), "{"))

	require.True(t, SetupLogger(envLocal, io.Discard).Enabled(ctx, slog.LevelDebug))
	require.True(t, SetupLogger(envDev, io.Discard).Enabled(ctx, slog.LevelDebug))
	require.True(t, SetupLogger("unknown", io.Discard).Enabled(ctx, slog.LevelDebug))
}

func TestNewStore_Drivers(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	st, closeFn, err := NewStore(ctx, config.TokensConfig{Driver: tokenstore.DriverMemory}, silent())
	require.NoError(t, err)
	require.IsType(t, &tokenstore.Memory{}, st)
	closeFn()

	path := filepath.Join(t.TempDir(), "tokens.json")
	st, closeFn, err = NewStore(ctx, config.TokensConfig{Driver: tokenstore.DriverFile, FilePath: path}, silent())
	require.NoError(t, err)
	require.Equal(t, path, st.(*tokenstore.File).Path())
	closeFn()

	st, _, err = NewStore(ctx, config.TokensConfig{Driver: tokenstore.DriverNone}, silent())
	require.NoError(t, err)
	require.IsType(t, tokenstore.Unavailable{}, st)

	_, _, err = NewStore(ctx, config.TokensConfig{Driver: "etcd"}, silent())
	require.ErrorIs(t, err, tokenstore.ErrUnknownDriver)
}

func TestNewStore_Redis(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)

	st, closeFn, err := NewStore(context.Background(), config.TokensConfig{
		Driver:      tokenstore.DriverRedis,
		RedisURL:    "redis://" + mr.Addr(),
		RedisPrefix: "pcrec:tokens:",
		Profile:     "default",
		RedisTTL:    time.Hour,
	}, silent())
	require.NoError(t, err)
	defer closeFn()

	st.StoreTokens(context.Background(), "a1", "r1")
	require.Equal(t, "a1", st.AccessToken(context.Background()))
	require.True(t, mr.Exists("pcrec:tokens:default"))
}

func TestNewStore_RedisUnreachable(t *testing.T) {
	t.Parallel()

	_, _, err := NewStore(context.Background(), config.TokensConfig{
		Driver:   tokenstore.DriverRedis,
		RedisURL: "redis://127.0.0.1:1",
	}, silent())
	require.Error(t, err)
}

func TestNew_EndToEnd(t *testing.T) {
	t.Parallel()

	srv := backendtest.New(backendtest.Options{})
	t.Cleanup(srv.Close)
	srv.AddUser("neo", "neo@matrix.io", "password1", false)

	cfg := &config.Config{
		Env: envLocal,
		API: config.APIConfig{BaseURL: srv.BaseURL(), UserAgent: "pcrec-test"},
		Tokens: config.TokensConfig{
			Driver:   tokenstore.DriverFile,
			FilePath: filepath.Join(t.TempDir(), "tokens.json"),
		},
		Timeouts: config.TimeoutConfig{Request: 5 * time.Second, Refresh: 5 * time.Second},
	}

	nav := session.NavigatorFunc(func(context.Context, string) {})
	a, err := New(context.Background(), cfg, Deps{Logger: silent(), Navigator: nav})
	require.NoError(t, err)
	defer a.Close()

	ctx := context.Background()
	require.NoError(t, a.Session.Bootstrap(ctx))
	require.False(t, a.Session.IsAuthenticated())

	_, err = a.Session.Login(ctx, "neo", "password1")
	require.NoError(t, err)

	_, err = a.Recommender.ListSaved(ctx)
	require.NoError(t, err)

	// пара пережила "перезапуск": новый App с тем же файлом восстанавливает сессию.
	b, err := New(ctx, cfg, Deps{Logger: silent(), Navigator: nav})
	require.NoError(t, err)
	defer b.Close()

	require.NoError(t, b.Session.Bootstrap(ctx))
	require.True(t, b.Session.IsAuthenticated())
	require.Equal(t, "neo", b.Session.User().Username)

	n, err := testutil.GatherAndCount(a.Registry, "pcrec_client_requests_total")
	require.NoError(t, err)
	require.Greater(t, n, 0)
}

func TestNew_InvalidBaseURL_ClosesStore(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{
		API:    config.APIConfig{BaseURL: "ftp://nope"},
		Tokens: config.TokensConfig{Driver: tokenstore.DriverMemory},
	}

	_, err := New(context.Background(), cfg, Deps{Logger: silent()})
	require.Error(t, err)
}
