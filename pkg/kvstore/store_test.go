package kvstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type line struct {
	ID  string `json:"id"`
	Qty int    `json:"qty"`
}

func TestReadWriteJSON(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	key := MemoryKeys{}.CartKey("c1")

	var missing []line
	found, err := ReadJSON(ctx, store, key, &missing)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, missing)

	require.NoError(t, WriteJSON(ctx, store, key, []line{{ID: "a", Qty: 2}}, 0))

	var got []line
	found, err = ReadJSON(ctx, store, key, &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []line{{ID: "a", Qty: 2}}, got)
}

func TestReadJSONReportsCorruptDocuments(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Set(ctx, "k", []byte("{not json"), 0))

	var got []line
	_, err := ReadJSON(ctx, store, "k", &got)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCorrupt))
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	store := NewMemoryStore().WithClock(func() time.Time { return now })

	require.NoError(t, store.Set(ctx, "k", []byte("v"), time.Minute))
	raw, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", string(raw))

	now = now.Add(time.Minute)
	_, err = store.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreCopiesValues(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	value := []byte("abc")
	require.NoError(t, store.Set(ctx, "k", value, 0))
	value[0] = 'z'

	raw, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(raw))

	require.NoError(t, store.Del(ctx, "k"))
	_, err = store.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryKeysLayout(t *testing.T) {
	keys := MemoryKeys{}
	assert.Equal(t, "wb:blob:orders", keys.BlobKey("orders"))
	assert.Equal(t, "wb:cart:abc", keys.CartKey("abc"))
	assert.Equal(t, "wb:session:s", keys.SessionKey("s"))
	assert.Equal(t, "wb:verification:d", keys.VerificationKey("d"))
}
