package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"videoforge/internal/ports"
)

func TestStore_SetGetDelete(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	record := ports.StatusRecord{
		Status:    "processing",
		Message:   "Video oluşturma başladı",
		UpdatedAt: time.Now(),
	}
	require.NoError(t, store.Set(ctx, "req-1", record))

	got, err := store.Get(ctx, "req-1")
	require.NoError(t, err)
	assert.Equal(t, record, got)

	require.NoError(t, store.Delete(ctx, "req-1"))

	_, err = store.Get(ctx, "req-1")
	assert.ErrorIs(t, err, ports.ErrStatusNotFound)
}

func TestStore_GetMissing(t *testing.T) {
	store := NewStore()

	_, err := store.Get(context.Background(), "missing")

	assert.ErrorIs(t, err, ports.ErrStatusNotFound)
}

func TestStore_OverwriteKeepsLatest(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "req-1", ports.StatusRecord{Status: "processing"}))
	require.NoError(t, store.Set(ctx, "req-1", ports.StatusRecord{Status: "completed", VideoPath: "/v.mp4"}))

	got, err := store.Get(ctx, "req-1")
	require.NoError(t, err)
	assert.Equal(t, "completed", got.Status)
	assert.Equal(t, "/v.mp4", got.VideoPath)
}

func TestStore_ConcurrentAccess(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.Set(ctx, "req-1", ports.StatusRecord{Status: "rendering"})
			_, _ = store.Get(ctx, "req-1")
		}()
	}
	wg.Wait()

	got, err := store.Get(ctx, "req-1")
	require.NoError(t, err)
	assert.Equal(t, "rendering", got.Status)
}
