package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryTokenStoreExpiry(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewMemoryTokenStore()
	s.now = func() time.Time { return now }
	ctx := context.Background()

	_, ok, err := s.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "abc", time.Hour))
	token, ok, err := s.Get(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "abc", token)

	now = now.Add(time.Hour)
	_, ok, _ = s.Get(ctx)
	assert.False(t, ok, "token must be treated as missing once expiry is reached")
}

func TestMemoryTokenStoreClear(t *testing.T) {
	s := NewMemoryTokenStore()
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "abc", time.Hour))
	require.NoError(t, s.Clear(ctx))

	_, ok, _ := s.Get(ctx)
	assert.False(t, ok)
}

func TestRedisTokenStore(t *testing.T) {
	mr := miniredis.RunT(t)
	s, err := NewRedisTokenStore("redis://"+mr.Addr()+"/0", "")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	ctx := context.Background()

	_, ok, err := s.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "abc", time.Minute))
	token, ok, err := s.Get(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "abc", token)

	mr.FastForward(2 * time.Minute)
	_, ok, err = s.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "def", time.Minute))
	require.NoError(t, s.Clear(ctx))
	_, ok, _ = s.Get(ctx)
	assert.False(t, ok)
}

func TestRedisTokenStoreBadURL(t *testing.T) {
	_, err := NewRedisTokenStore("not-a-url", "")
	assert.Error(t, err)
}

func TestClientUsesRedisTokenStore(t *testing.T) {
	mr := miniredis.RunT(t)
	store, err := NewRedisTokenStore("redis://"+mr.Addr(), "")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	f := newFakeIGDB(t)
	c := f.client(store)

	_, err = c.SearchGames(context.Background(), "celeste")
	require.NoError(t, err)

	cached, err := mr.Get(redisTokenKey)
	require.NoError(t, err)
	assert.Equal(t, "tok-123", cached)
	assert.Equal(t, 59*time.Minute, mr.TTL(redisTokenKey))
}
