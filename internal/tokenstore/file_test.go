package tokenstore_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/pc-recommender/internal/tokenstore"
	"github.com/pribylovaa/pc-recommender/internal/tokenstore/storetest"
	"github.com/pribylovaa/pc-recommender/pkg/log"
)

func newFileStore(t *testing.T) *tokenstore.File {
	t.Helper()

	f, err := tokenstore.NewFile(filepath.Join(t.TempDir(), "nested", "tokens.json"))
	require.NoError(t, err)

	return f
}

func TestFile_Contract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) tokenstore.Store {
		return newFileStore(t)
	})
}

func TestFile_FormatAndPermissions(t *testing.T) {
	ctx := context.Background()
	f := newFileStore(t)

	f.StoreTokens(ctx, "A1", "R1")

	b, err := os.ReadFile(f.Path())
	require.NoError(t, err)
	require.JSONEq(t, `{"pcRecAccessToken":"A1","pcRecRefreshToken":"R1"}`, string(b))

	if runtime.GOOS != "windows" {
		st, err := os.Stat(f.Path())
		require.NoError(t, err)
		require.Equal(t, os.FileMode(0o600), st.Mode().Perm())
	}

	// временные файлы не остаются в каталоге.
	entries, err := os.ReadDir(filepath.Dir(f.Path()))
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestFile_PersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "tokens.json")

	first, err := tokenstore.NewFile(path)
	require.NoError(t, err)
	first.StoreTokens(ctx, "A", "R")

	second, err := tokenstore.NewFile(path)
	require.NoError(t, err)
	require.Equal(t, "A", second.AccessToken(ctx))
	require.Equal(t, "R", second.RefreshToken(ctx))
}

func TestFile_HalfPairOnDisk_ReadsAbsent(t *testing.T) {
	ctx := context.Background()
	f := newFileStore(t)

	require.NoError(t, os.MkdirAll(filepath.Dir(f.Path()), 0o700))
	require.NoError(t, os.WriteFile(f.Path(), []byte(`{"pcRecAccessToken":"A"}`), 0o600))

	require.Empty(t, f.AccessToken(ctx))
	require.Empty(t, f.RefreshToken(ctx))
}

func TestFile_CorruptFile_WarnsAndReadsAbsent(t *testing.T) {
	f := newFileStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(f.Path()), 0o700))
	require.NoError(t, os.WriteFile(f.Path(), []byte(`{not json`), 0o600))

	var buf bytes.Buffer
	l := slog.New(slog.NewJSONHandler(&buf, nil))
	ctx := log.Into(context.Background(), l)

	require.Empty(t, f.AccessToken(ctx))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	require.Equal(t, "WARN", rec["level"])
	require.Equal(t, "token_store_read_failed", rec["msg"])
	require.Equal(t, tokenstore.DriverFile, rec["driver"])

	// запись поверх битого файла восстанавливает хранилище.
	f.StoreTokens(ctx, "A", "R")
	require.Equal(t, "A", f.AccessToken(ctx))
}

func TestFile_UnwritableDir_SwallowsError(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permissions are not enforced")
	}

	dir := t.TempDir()
	require.NoError(t, os.Chmod(dir, 0o500))
	t.Cleanup(func() { _ = os.Chmod(dir, 0o700) })

	f, err := tokenstore.NewFile(filepath.Join(dir, "sub", "tokens.json"))
	require.NoError(t, err)

	ctx := log.Into(context.Background(), slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	require.NotPanics(t, func() { f.StoreTokens(ctx, "A", "R") })
	require.Empty(t, f.AccessToken(ctx))
}

func TestDefaultFilePath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	if runtime.GOOS != "linux" {
		t.Skip("XDG is linux-only")
	}

	p, err := tokenstore.DefaultFilePath()
	require.NoError(t, err)
	require.Equal(t, filepath.Join("/tmp/xdg", "pcrec", "tokens.json"), p)
}
