package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	s, err := NewRedis(context.Background(), RedisOptions{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, mr
}

func TestRedisStore_SetGetExpire(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestRedis(t)

	got, err := s.Get(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, s.Set(ctx, "crawl:questions:abc", []byte(`{"success":true}`), 24*time.Hour))
	got, err = s.Get(ctx, "crawl:questions:abc")
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true}`, string(got))
	assert.Equal(t, 24*time.Hour, mr.TTL("crawl:questions:abc"))

	mr.FastForward(25 * time.Hour)
	got, err = s.Get(ctx, "crawl:questions:abc")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisStore_DeleteByPrefix(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestRedis(t)

	for _, k := range []string{"crawl:questions:1", "crawl:questions:2", "crawl:questions:3", "crawl:other", "crawl:questions*x"} {
		require.NoError(t, s.Set(ctx, k, []byte("v"), time.Hour))
	}

	n, err := s.DeleteByPrefix(ctx, "crawl:questions:")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.True(t, mr.Exists("crawl:other"))
	assert.True(t, mr.Exists("crawl:questions*x"))

	n, err = s.DeleteByPrefix(ctx, "nothing:")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRedisStore_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := NewRedis(ctx, RedisOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "address is required")

	s, mr := newTestRedis(t)
	mr.SetError("LOADING")
	_, err = s.Get(ctx, "k")
	assert.Error(t, err)
	assert.Error(t, s.Set(ctx, "k", []byte("v"), time.Hour))
}

func TestEscapeGlob(t *testing.T) {
	assert.Equal(t, `a\*b\?c\[d\]`, escapeGlob("a*b?c[d]"))
	assert.Equal(t, "crawl:questions:", escapeGlob("crawl:questions:"))
}
