package tokenstore

import (
	"context"
	"sync"

	"github.com/pribylovaa/pc-recommender/internal/models"
)

// Memory — хранилище в памяти процесса.
type Memory struct {
	mu   sync.RWMutex
	pair models.TokenPair
}

// NewMemory создаёт пустое хранилище.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) StoreTokens(_ context.Context, access, refresh string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.pair = Merge(m.pair, access, refresh)
}

func (m *Memory) AccessToken(_ context.Context) string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return Visible(m.pair).Access
}

func (m *Memory) RefreshToken(_ context.Context) string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return Visible(m.pair).Refresh
}

func (m *Memory) ClearTokens(_ context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.pair = models.TokenPair{}
}

var _ Store = (*Memory)(nil)
