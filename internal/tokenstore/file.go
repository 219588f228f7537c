package tokenstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/pribylovaa/pc-recommender/internal/models"
)

// File — хранилище в JSON-файле с правами 0600.
// Запись атомарна: временный файл в том же каталоге + rename,
// поэтому читатель никогда не видит половину пары.
type File struct {
	path string
	mu   sync.Mutex
}

type fileRecord struct {
	Access  string `json:"pcRecAccessToken,omitempty"`
	Refresh string `json:"pcRecRefreshToken,omitempty"`
}

// NewFile создаёт файловое хранилище. Пустой path — путь по умолчанию.
func NewFile(path string) (*File, error) {
	const op = "tokenstore.file.NewFile"

	if path == "" {
		p, err := DefaultFilePath()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		path = p
	}

	return &File{path: path}, nil
}

// DefaultFilePath — $XDG_CONFIG_HOME/pcrec/tokens.json (или аналог ОС).
func DefaultFilePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(dir, "pcrec", "tokens.json"), nil
}

// Path — путь к файлу.
func (f *File) Path() string { return f.path }

func (f *File) StoreTokens(ctx context.Context, access, refresh string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	cur, err := f.read()
	if err != nil {
		warn(ctx, "token_store_read_failed", DriverFile, err)
	}

	next := Merge(cur, access, refresh)
	if next == (models.TokenPair{}) {
		if err := f.remove(); err != nil {
			warn(ctx, "token_store_clear_failed", DriverFile, err)
		}
		return
	}

	if err := f.write(next); err != nil {
		warn(ctx, "token_store_write_failed", DriverFile, err)
	}
}

func (f *File) AccessToken(ctx context.Context) string {
	return f.load(ctx).Access
}

func (f *File) RefreshToken(ctx context.Context) string {
	return f.load(ctx).Refresh
}

func (f *File) ClearTokens(ctx context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.remove(); err != nil {
		warn(ctx, "token_store_clear_failed", DriverFile, err)
	}
}

func (f *File) load(ctx context.Context) models.TokenPair {
	f.mu.Lock()
	defer f.mu.Unlock()

	p, err := f.read()
	if err != nil {
		warn(ctx, "token_store_read_failed", DriverFile, err)
		return models.TokenPair{}
	}

	return Visible(p)
}

// read возвращает пустую пару, если файла нет.
func (f *File) read() (models.TokenPair, error) {
	b, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return models.TokenPair{}, nil
	}
	if err != nil {
		return models.TokenPair{}, err
	}

	var rec fileRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		return models.TokenPair{}, fmt.Errorf("decode %s: %w", f.path, err)
	}

	return models.TokenPair{Access: rec.Access, Refresh: rec.Refresh}, nil
}

func (f *File) write(p models.TokenPair) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	b, err := json.Marshal(fileRecord{Access: p.Access, Refresh: p.Refresh})
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".tokens-*.json")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	// CreateTemp уже создаёт файл 0600; Chmod на случай нестандартного umask.
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}

	if err := os.Rename(tmpName, f.path); err != nil {
		_ = os.Remove(tmpName)
		return err
	}

	return nil
}

func (f *File) remove() error {
	err := os.Remove(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	return err
}

var _ Store = (*File)(nil)
