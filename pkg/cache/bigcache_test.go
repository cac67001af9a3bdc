package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *BigCache {
	t.Helper()
	c, err := New(context.Background(), DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestBigCache_GetSet(t *testing.T) {
	c := newTestCache(t)

	_, ok := c.Get("missing")
	assert.False(t, ok)

	c.Set("metadata:1", []byte(`{"name":"x"}`), time.Hour)
	got, ok := c.Get("metadata:1")
	require.True(t, ok)
	assert.Equal(t, []byte(`{"name":"x"}`), got)
}

func TestBigCache_TTL(t *testing.T) {
	c := newTestCache(t)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Set("pin_image:1", []byte("bafy"), time.Minute)
	c.Set("forever", []byte("v"), 0)

	now = now.Add(30 * time.Second)
	_, ok := c.Get("pin_image:1")
	assert.True(t, ok, "期限内はヒットする")

	now = now.Add(time.Minute)
	_, ok = c.Get("pin_image:1")
	assert.False(t, ok, "期限切れは未ヒット")

	_, ok = c.Get("forever")
	assert.True(t, ok, "ttl=0 は LifeWindow まで保持")
}

func TestBigCache_Delete(t *testing.T) {
	c := newTestCache(t)

	c.Set("k", []byte("v"), time.Hour)
	c.Delete("k")
	c.Delete("never-existed")

	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestBigCache_ReturnsCopy(t *testing.T) {
	c := newTestCache(t)
	c.Set("k", []byte("abc"), time.Hour)

	got, ok := c.Get("k")
	require.True(t, ok)
	got[0] = 'z'

	again, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, []byte("abc"), again)
}

func TestNew_InvalidConfig(t *testing.T) {
	_, err := New(context.Background(), Config{})
	assert.Error(t, err)
}
