package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quickpick/internal/model"
)

func TestMemoryStoreRoundtrip(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	ctx := context.Background()

	session := &model.Session{ID: "s1", Candidates: []string{"A", "B", "C"}}
	require.NoError(t, store.Save(ctx, session))

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, []string{"A", "B", "C"}, got.Candidates)
}

func TestMemoryStoreUnknownID(t *testing.T) {
	store := NewMemoryStore(time.Minute)

	got, err := store.Get(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryStoreExpiry(t *testing.T) {
	now := time.Now()
	store := &memoryStore{
		entries: make(map[string]memoryEntry),
		ttl:     time.Minute,
		now:     func() time.Time { return now },
	}
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &model.Session{ID: "s1"}))

	now = now.Add(30 * time.Second)
	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.NotNil(t, got)

	now = now.Add(31 * time.Second)
	got, err = store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, got, "entries past the TTL read as missing")
}

func TestMemoryStoreDelete(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &model.Session{ID: "s1"}))
	require.NoError(t, store.Delete(ctx, "s1"))

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, got)

	assert.NoError(t, store.Delete(ctx, "never existed"))
}
