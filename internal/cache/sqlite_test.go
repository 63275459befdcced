package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(context.Background(), filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStore_SetGetOverwrite(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)

	got, err := s.Get(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, s.Set(ctx, "k", []byte("first"), time.Hour))
	require.NoError(t, s.Set(ctx, "k", []byte("second"), time.Hour))

	got, err = s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "second", string(got))
}

func TestSQLiteStore_Expiry(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	require.NoError(t, s.Set(ctx, "a", []byte("1"), time.Minute))
	require.NoError(t, s.Set(ctx, "b", []byte("2"), 24*time.Hour))

	now = now.Add(2 * time.Minute)
	got, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Nil(t, got)

	n, err := s.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err = s.Get(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, "2", string(got))
}

func TestSQLiteStore_DeleteByPrefix(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)

	for _, k := range []string{"crawl:questions:1", "crawl:questions:2", "crawl_questions:3", "other"} {
		require.NoError(t, s.Set(ctx, k, []byte("v"), time.Hour))
	}

	n, err := s.DeleteByPrefix(ctx, "crawl:questions:")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := s.Get(ctx, "crawl_questions:3")
	require.NoError(t, err)
	assert.NotNil(t, got)
}
