package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestCache(t *testing.T, opts ...MemoryOption) (*MemoryCache, *clock) {
	t.Helper()
	mc := NewMemoryCache(append([]MemoryOption{WithMemoryCleanup(0)}, opts...)...)
	t.Cleanup(func() { _ = mc.Close() })
	clk := &clock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	mc.now = clk.now
	return mc, clk
}

func TestMemoryCache_SetGet(t *testing.T) {
	ctx := context.Background()
	mc, _ := newTestCache(t)

	src := []byte(`[{"close":1}]`)
	require.NoError(t, mc.Set(ctx, "k", src, time.Minute))
	src[0] = 'x'

	got, err := mc.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `[{"close":1}]`, string(got))

	_, err = mc.Get(ctx, "missing")
	assert.True(t, errors.Is(err, ErrCacheMiss))
}

func TestMemoryCache_Expiry(t *testing.T) {
	ctx := context.Background()
	mc, clk := newTestCache(t)

	require.NoError(t, mc.Set(ctx, "k", []byte("v"), time.Minute))
	clk.t = clk.t.Add(59 * time.Second)
	_, err := mc.Get(ctx, "k")
	require.NoError(t, err)

	clk.t = clk.t.Add(2 * time.Second)
	_, err = mc.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.Equal(t, 0, mc.Len())
}

func TestMemoryCache_EvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	mc, clk := newTestCache(t, WithMemoryMaxSize(2))

	require.NoError(t, mc.Set(ctx, "a", []byte("1"), time.Hour))
	clk.t = clk.t.Add(time.Second)
	require.NoError(t, mc.Set(ctx, "b", []byte("2"), time.Hour))
	clk.t = clk.t.Add(time.Second)
	_, err := mc.Get(ctx, "a")
	require.NoError(t, err)
	clk.t = clk.t.Add(time.Second)

	require.NoError(t, mc.Set(ctx, "c", []byte("3"), time.Hour))
	assert.Equal(t, 2, mc.Len())
	_, err = mc.Get(ctx, "b")
	assert.ErrorIs(t, err, ErrCacheMiss)
	_, err = mc.Get(ctx, "a")
	assert.NoError(t, err)
}

func TestMemoryCache_Delete(t *testing.T) {
	ctx := context.Background()
	mc, _ := newTestCache(t)
	require.NoError(t, mc.Set(ctx, "a", []byte("1"), 0))
	require.NoError(t, mc.Delete(ctx, "a", "nope"))
	_, err := mc.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestLayeredCache_PromotesFromL2(t *testing.T) {
	ctx := context.Background()
	l2, _ := newTestCache(t)
	require.NoError(t, l2.Set(ctx, "k", []byte("v"), time.Hour))

	lc := NewLayeredCache(l2, time.Minute, WithMemoryCleanup(0))
	defer lc.mem.Close()

	got, err := lc.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", string(got))
	assert.Equal(t, 1, lc.mem.Len())

	require.NoError(t, lc.Delete(ctx, "k"))
	_, err = lc.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	mc, _ := newTestCache(t)

	type payload struct {
		Symbol string  `json:"symbol"`
		Close  float64 `json:"close"`
	}
	require.NoError(t, SetJSON(ctx, mc, "p", payload{"AAPL", 1.5}, time.Minute))
	got, err := GetJSON[payload](ctx, mc, "p")
	require.NoError(t, err)
	assert.Equal(t, payload{"AAPL", 1.5}, got)
}

func TestGenerateKeyWithParams(t *testing.T) {
	assert.Equal(t, "frame:AAPL:2024-01-01:2024-02-01", GenerateKeyWithParams("frame", "AAPL", "2024-01-01", "2024-02-01"))
	assert.Len(t, HashKey("x"), 40)
}
