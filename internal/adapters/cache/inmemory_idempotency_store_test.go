package cache_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/propfolio/property_mgmt_app/internal/adapters/cache"
)

func TestInMemoryStore_PutThenGet(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore()
	defer store.Close()
	ctx := context.Background()

	value := json.RawMessage(`{"sagaId":"s1","success":true}`)
	stored, err := store.Put(ctx, "payment:ref-1", value, time.Hour)
	require.NoError(t, err)
	assert.True(t, stored)

	got, found, err := store.Get(ctx, "payment:ref-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.JSONEq(t, string(value), string(got))
}

func TestInMemoryStore_PutIsFirstWriterWins(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore()
	defer store.Close()
	ctx := context.Background()

	first, err := store.Put(ctx, "payment:ref-1", json.RawMessage(`{"n":1}`), time.Hour)
	require.NoError(t, err)
	assert.True(t, first)

	second, err := store.Put(ctx, "payment:ref-1", json.RawMessage(`{"n":2}`), time.Hour)
	require.NoError(t, err)
	assert.False(t, second)

	got, found, err := store.Get(ctx, "payment:ref-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.JSONEq(t, `{"n":1}`, string(got))
}

func TestInMemoryStore_ExpiredEntryIsAMiss(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore()
	defer store.Close()
	ctx := context.Background()

	_, err := store.Put(ctx, "payment:ref-1", json.RawMessage(`{}`), time.Millisecond)
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)

	_, found, err := store.Get(ctx, "payment:ref-1")
	require.NoError(t, err)
	assert.False(t, found)

	// An expired slot can be claimed again.
	stored, err := store.Put(ctx, "payment:ref-1", json.RawMessage(`{"n":2}`), time.Hour)
	require.NoError(t, err)
	assert.True(t, stored)
}

func TestInMemoryStore_MissOnUnknownKey(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore()
	defer store.Close()

	_, found, err := store.Get(context.Background(), "payment:never-seen")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestInMemoryStore_CloseIsIdempotent(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore()
	require.NoError(t, store.Close())
	require.NoError(t, store.Close())
}
