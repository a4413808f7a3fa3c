package noaa

import (
	"context"
	"errors"
	"testing"

	"github.com/couchcryptid/climate-normals-etl/internal/domain"
	"github.com/couchcryptid/climate-normals-etl/internal/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mock for cache tests ---

type countingFetcher struct {
	calls int
	body  []byte
	err   error
}

func (m *countingFetcher) FetchStation(_ context.Context, _ string) ([]byte, error) {
	m.calls++
	return m.body, m.err
}

// --- CachedFetcher tests ---

func TestCachedFetcher_CacheHit(t *testing.T) {
	inner := &countingFetcher{body: []byte("Station Name: TUSKEGEE\n")}
	metrics := observability.NewMetricsForTesting()
	cached := NewCachedFetcher(inner, 10, metrics)

	b1, err := cached.FetchStation(context.Background(), testStationID)
	require.NoError(t, err)
	b2, err := cached.FetchStation(context.Background(), testStationID)
	require.NoError(t, err)

	assert.Equal(t, b1, b2)
	assert.Equal(t, 1, inner.calls, "should only call inner once")
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.FetchCache.WithLabelValues("hit")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.FetchCache.WithLabelValues("miss")), 0)
}

func TestCachedFetcher_DifferentKeysMiss(t *testing.T) {
	inner := &countingFetcher{body: []byte("x")}
	cached := NewCachedFetcher(inner, 10, observability.NewMetricsForTesting())

	_, _ = cached.FetchStation(context.Background(), "USC00018809")
	_, _ = cached.FetchStation(context.Background(), "USW00094728")

	assert.Equal(t, 2, inner.calls)
}

func TestCachedFetcher_ErrorsNotCached(t *testing.T) {
	inner := &countingFetcher{err: domain.ErrStationNotFound}
	cached := NewCachedFetcher(inner, 10, observability.NewMetricsForTesting())

	_, err := cached.FetchStation(context.Background(), testStationID)
	require.True(t, errors.Is(err, domain.ErrStationNotFound))
	_, err = cached.FetchStation(context.Background(), testStationID)
	require.Error(t, err)

	assert.Equal(t, 2, inner.calls)
}

func TestCachedFetcher_EmptyBodyNotCached(t *testing.T) {
	inner := &countingFetcher{}
	cached := NewCachedFetcher(inner, 10, observability.NewMetricsForTesting())

	_, _ = cached.FetchStation(context.Background(), testStationID)
	_, _ = cached.FetchStation(context.Background(), testStationID)

	assert.Equal(t, 2, inner.calls)
	assert.Equal(t, 0, cached.cache.size())
}

// --- LRU cache unit tests ---

func TestLRUCache_BasicGetPut(t *testing.T) {
	c := newLRUCache(3)

	c.put("a", []byte("1"))
	c.put("b", []byte("2"))

	v, ok := c.get("a")
	require.True(t, ok)
	assert.Equal(t, []byte("1"), v)

	_, ok = c.get("missing")
	assert.False(t, ok)
}

func TestLRUCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := newLRUCache(2)

	c.put("a", []byte("1"))
	c.put("b", []byte("2"))
	_, _ = c.get("a") // a is now most recent
	c.put("c", []byte("3"))

	_, ok := c.get("b")
	assert.False(t, ok, "b should be evicted")
	_, ok = c.get("a")
	assert.True(t, ok)
	_, ok = c.get("c")
	assert.True(t, ok)
	assert.Equal(t, 2, c.size())
}

func TestLRUCache_UpdateExisting(t *testing.T) {
	c := newLRUCache(2)

	c.put("a", []byte("1"))
	c.put("a", []byte("2"))

	v, ok := c.get("a")
	require.True(t, ok)
	assert.Equal(t, []byte("2"), v)
	assert.Equal(t, 1, c.size())
}

func TestLRUCache_SingleEntry(t *testing.T) {
	c := newLRUCache(1)

	c.put("a", []byte("1"))
	c.put("b", []byte("2"))

	_, ok := c.get("a")
	assert.False(t, ok)
	v, ok := c.get("b")
	require.True(t, ok)
	assert.Equal(t, []byte("2"), v)
}
