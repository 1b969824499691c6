package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryIdempotencyStore_MarkProcessed(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()
	ctx := context.Background()

	t.Run("first claim succeeds", func(t *testing.T) {
		isNew, err := store.MarkProcessed(ctx, "payment-submit-1", time.Hour)
		require.NoError(t, err)
		assert.True(t, isNew)
	})

	t.Run("second claim within the TTL is rejected", func(t *testing.T) {
		isNew, err := store.MarkProcessed(ctx, "payment-submit-2", time.Hour)
		require.NoError(t, err)
		require.True(t, isNew)

		isNew, err = store.MarkProcessed(ctx, "payment-submit-2", time.Hour)
		require.NoError(t, err)
		assert.False(t, isNew)
	})

	t.Run("expired claim can be taken again", func(t *testing.T) {
		isNew, err := store.MarkProcessed(ctx, "payment-submit-3", 10*time.Millisecond)
		require.NoError(t, err)
		require.True(t, isNew)

		time.Sleep(20 * time.Millisecond)

		isNew, err = store.MarkProcessed(ctx, "payment-submit-3", time.Hour)
		require.NoError(t, err)
		assert.True(t, isNew)
	})
}

func TestInMemoryIdempotencyStore_IsProcessed(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()
	ctx := context.Background()

	t.Run("unknown key", func(t *testing.T) {
		processed, err := store.IsProcessed(ctx, "never-seen")
		require.NoError(t, err)
		assert.False(t, processed)
	})

	t.Run("claimed key", func(t *testing.T) {
		_, err := store.MarkProcessed(ctx, "claimed", time.Hour)
		require.NoError(t, err)

		processed, err := store.IsProcessed(ctx, "claimed")
		require.NoError(t, err)
		assert.True(t, processed)
	})

	t.Run("expired key reads as unprocessed", func(t *testing.T) {
		_, err := store.MarkProcessed(ctx, "stale", 5*time.Millisecond)
		require.NoError(t, err)

		time.Sleep(10 * time.Millisecond)

		processed, err := store.IsProcessed(ctx, "stale")
		require.NoError(t, err)
		assert.False(t, processed)
	})
}

func TestInMemoryIdempotencyStore_ConcurrentClaims(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()
	ctx := context.Background()

	// Many goroutines race on the same key; exactly one claim may win.
	const workers = 32
	var wg sync.WaitGroup
	var winners sync.Map
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(n int) {
			defer wg.Done()
			isNew, err := store.MarkProcessed(ctx, "contested-payment", time.Hour)
			assert.NoError(t, err)
			if isNew {
				winners.Store(n, true)
			}
		}(i)
	}
	wg.Wait()

	count := 0
	winners.Range(func(_, _ any) bool {
		count++
		return true
	})
	assert.Equal(t, 1, count)
}

func TestInMemoryIdempotencyStore_IndependentKeys(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		isNew, err := store.MarkProcessed(ctx, fmt.Sprintf("payment-%d", i), time.Hour)
		require.NoError(t, err)
		assert.True(t, isNew)
	}
}

func TestInMemoryIdempotencyStore_CloseIsIdempotent(t *testing.T) {
	store := NewInMemoryIdempotencyStore()

	require.NoError(t, store.Close())
	require.NoError(t, store.Close())
}
