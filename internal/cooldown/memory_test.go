package cooldown

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreAcquire(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	wait, err := store.Acquire(ctx, "email-change:1", time.Minute)
	require.NoError(t, err)
	assert.Zero(t, wait)

	wait, err = store.Acquire(ctx, "email-change:1", time.Minute)
	require.NoError(t, err)
	assert.Greater(t, wait, time.Duration(0))
	assert.LessOrEqual(t, wait, time.Minute)

	// Independent keys do not contend.
	wait, err = store.Acquire(ctx, "email-change:2", time.Minute)
	require.NoError(t, err)
	assert.Zero(t, wait)
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return base }

	_, err := store.Acquire(ctx, "k", time.Minute)
	require.NoError(t, err)

	store.now = func() time.Time { return base.Add(30 * time.Second) }
	wait, err := store.Acquire(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, wait)

	store.now = func() time.Time { return base.Add(61 * time.Second) }
	wait, err = store.Acquire(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.Zero(t, wait)
}

func TestMemoryStoreRelease(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, err := store.Acquire(ctx, "k", time.Minute)
	require.NoError(t, err)
	require.NoError(t, store.Release(ctx, "k"))

	wait, err := store.Acquire(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.Zero(t, wait)

	// Releasing an unknown key is harmless.
	assert.NoError(t, store.Release(ctx, "missing"))
}
