package cache

import (
	"context"
	"image"
	"image/color"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_GetSet(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, ok, err := m.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	val := []byte("outline")
	require.NoError(t, m.Set(ctx, "k", val))
	val[0] = 'X' // stored copy must not change

	got, ok, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "outline", string(got))
	assert.Equal(t, 1, m.Len())
}

func TestKey(t *testing.T) {
	a := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	b := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	b.SetNRGBA(1, 1, color.NRGBA{A: 1})

	ka := Key(a, false, 120)
	assert.True(t, strings.HasPrefix(ka, KeyPrefix))
	assert.Equal(t, ka, Key(a, false, 120), "stable")
	assert.NotEqual(t, ka, Key(b, false, 120), "pixels matter")
	assert.NotEqual(t, ka, Key(a, true, 120), "border flag matters")
	assert.NotEqual(t, ka, Key(a, false, 121), "params matter")

	// Same pixels through a different image type give the same key.
	rgba := image.NewRGBA(image.Rect(0, 0, 4, 4))
	assert.Equal(t, ka, Key(rgba, false, 120))

	// Dimensions are part of the key even when all pixels are zero.
	assert.NotEqual(t, ka, Key(image.NewNRGBA(image.Rect(0, 0, 2, 8)), false, 120))
}

func TestRedis_Unreachable(t *testing.T) {
	r := NewRedis(RedisConf{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond})
	defer r.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	assert.Error(t, r.Ping(ctx))
	_, ok, err := r.Get(ctx, "k")
	assert.Error(t, err)
	assert.False(t, ok)
	assert.Error(t, r.Set(ctx, "k", []byte("v")))
}
