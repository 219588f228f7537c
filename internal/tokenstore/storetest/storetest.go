// storetest — общий набор проверок контракта tokenstore.Store.
// Используется тестами всех реализаций.
package storetest

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/pc-recommender/internal/tokenstore"
)

// Factory возвращает новое пустое хранилище.
type Factory func(t *testing.T) tokenstore.Store

// Run прогоняет контракт хранилища.
func Run(t *testing.T, newStore Factory) {
	t.Helper()

	t.Run("empty", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		require.Empty(t, s.AccessToken(ctx))
		require.Empty(t, s.RefreshToken(ctx))
	})

	t.Run("store_and_read", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		s.StoreTokens(ctx, "A1", "R1")
		require.Equal(t, "A1", s.AccessToken(ctx))
		require.Equal(t, "R1", s.RefreshToken(ctx))

		s.StoreTokens(ctx, "A2", "R2")
		require.Equal(t, "A2", s.AccessToken(ctx))
		require.Equal(t, "R2", s.RefreshToken(ctx))
	})

	t.Run("empty_refresh_keeps_previous", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		s.StoreTokens(ctx, "A1", "R1")
		s.StoreTokens(ctx, "A2", "")
		require.Equal(t, "A2", s.AccessToken(ctx))
		require.Equal(t, "R1", s.RefreshToken(ctx))
	})

	t.Run("half_pair_reads_absent", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		s.StoreTokens(ctx, "A1", "")
		require.Empty(t, s.AccessToken(ctx))
		require.Empty(t, s.RefreshToken(ctx))
	})

	t.Run("empty_access_clears", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		s.StoreTokens(ctx, "A1", "R1")
		s.StoreTokens(ctx, "", "R2")
		require.Empty(t, s.AccessToken(ctx))
		require.Empty(t, s.RefreshToken(ctx))
	})

	t.Run("clear_idempotent", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		s.StoreTokens(ctx, "A1", "R1")
		s.ClearTokens(ctx)
		s.ClearTokens(ctx)
		require.Empty(t, s.AccessToken(ctx))
		require.Empty(t, s.RefreshToken(ctx))
	})

	t.Run("concurrent_pairs_stay_consistent", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				s.StoreTokens(ctx, fmt.Sprintf("A%d", i), fmt.Sprintf("R%d", i))
			}(i)
		}
		wg.Wait()

		access, refresh := s.AccessToken(ctx), s.RefreshToken(ctx)
		require.NotEmpty(t, access)
		require.Equal(t, "R"+access[1:], refresh)
	})
}
