package tomtom

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/couchcryptid/evac-response/internal/domain"
	"github.com/couchcryptid/evac-response/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingGeocoder struct {
	calls  int
	result domain.GeocodingResult
	err    error
}

func (m *countingGeocoder) Geocode(_ context.Context, _ string) (domain.GeocodingResult, error) {
	m.calls++
	return m.result, m.err
}

func TestCachedGeocoder_CacheHit(t *testing.T) {
	inner := &countingGeocoder{
		result: domain.GeocodingResult{
			Position:         domain.Coordinate{Lat: 27.8, Lng: -97.4},
			FormattedAddress: "Corpus Christi, TX",
		},
	}
	cached := NewCachedGeocoder(inner, 10, observability.NewMetricsForTesting())

	r1, err := cached.Geocode(context.Background(), "Corpus Christi")
	require.NoError(t, err)
	assert.Equal(t, "Corpus Christi, TX", r1.FormattedAddress)

	// Keys are normalized, so case and whitespace variants hit the cache.
	r2, err := cached.Geocode(context.Background(), "  CORPUS CHRISTI ")
	require.NoError(t, err)
	assert.Equal(t, r1, r2)

	assert.Equal(t, 1, inner.calls, "should only call inner once")
}

func TestCachedGeocoder_ErrorsNotCached(t *testing.T) {
	inner := &countingGeocoder{err: errors.New("boom")}
	cached := NewCachedGeocoder(inner, 10, observability.NewMetricsForTesting())

	_, err := cached.Geocode(context.Background(), "x")
	require.Error(t, err)
	_, err = cached.Geocode(context.Background(), "x")
	require.Error(t, err)

	assert.Equal(t, 2, inner.calls, "errors must not be cached")
}

func TestCachedGeocoder_EmptyResultsNotCached(t *testing.T) {
	inner := &countingGeocoder{} // zero-value result, no formatted address
	cached := NewCachedGeocoder(inner, 10, observability.NewMetricsForTesting())

	_, _ = cached.Geocode(context.Background(), "x")
	_, _ = cached.Geocode(context.Background(), "x")

	assert.Equal(t, 2, inner.calls)
}

func TestLRUCache_EvictsOldest(t *testing.T) {
	cache := newLRUCache(2)
	for i := 0; i < 3; i++ {
		cache.put(fmt.Sprintf("key-%d", i), domain.GeocodingResult{FormattedAddress: fmt.Sprintf("addr-%d", i)})
	}

	_, ok := cache.get("key-0")
	assert.False(t, ok, "oldest entry should be evicted")
	_, ok = cache.get("key-2")
	assert.True(t, ok)
}
