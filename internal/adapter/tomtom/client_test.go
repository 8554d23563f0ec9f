package tomtom

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/couchcryptid/evac-response/internal/domain"
	"github.com/couchcryptid/evac-response/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "test-key"

func testClient(baseURL string) *Client {
	return &Client{
		key:        testKey,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		routingURL: baseURL,
		searchURL:  baseURL,
		metrics:    observability.NewMetricsForTesting(),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

var (
	testOrigin = domain.Coordinate{Lat: 27.8006, Lng: -97.3964}
	testDest   = domain.Coordinate{Lat: 27.8052, Lng: -97.3972}
)

func TestClient_Route_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "calculateRoute")
		assert.Equal(t, testKey, r.URL.Query().Get("key"))
		assert.Equal(t, "true", r.URL.Query().Get("traffic"))
		assert.Equal(t, "now", r.URL.Query().Get("departAt"))

		resp := map[string]any{
			"routes": []map[string]any{{
				"summary": map[string]any{
					"lengthInMeters":        5200,
					"travelTimeInSeconds":   480,
					"trafficDelayInSeconds": 60,
				},
				"legs": []map[string]any{{
					"points": []map[string]any{
						{"latitude": 27.8006, "longitude": -97.3964},
						{"latitude": 27.8052, "longitude": -97.3972},
					},
				}},
			}},
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	route, err := c.Route(context.Background(), testOrigin, testDest)
	require.NoError(t, err)

	assert.Equal(t, 5200, route.DistanceMeters)
	assert.Equal(t, 480, route.DurationSeconds)
	assert.Equal(t, 60, route.TrafficDelaySec)
	require.Len(t, route.Points, 2)
	assert.Equal(t, 27.8006, route.Points[0].Lat)
}

func TestClient_Route_NoRoutes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"routes":[]}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Route(context.Background(), testOrigin, testDest)
	assert.Error(t, err)
}

func TestClient_Route_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Route(context.Background(), testOrigin, testDest)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
}

func TestClient_Geocode_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "geocode")
		assert.Equal(t, "US", r.URL.Query().Get("countrySet"))

		resp := map[string]any{
			"results": []map[string]any{{
				"score":    9.1,
				"position": map[string]any{"lat": 27.8006, "lon": -97.3964},
				"address":  map[string]any{"freeformAddress": "Corpus Christi, TX"},
			}},
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer srv.Close()

	result, err := testClient(srv.URL).Geocode(context.Background(), "Corpus Christi")
	require.NoError(t, err)
	assert.Equal(t, 27.8006, result.Position.Lat)
	assert.Equal(t, "Corpus Christi, TX", result.FormattedAddress)
}

func TestClient_Geocode_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[]}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Geocode(context.Background(), "nowhere at all")
	assert.ErrorIs(t, err, domain.ErrAddressNotFound)
}

func TestClient_FindNearby(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "poiSearch")

		resp := map[string]any{
			"results": []map[string]any{{
				"poi":      map[string]any{"name": "Community Center"},
				"position": map[string]any{"lat": 27.75, "lon": -97.40},
				"address":  map[string]any{"freeformAddress": "100 Main St"},
			}},
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer srv.Close()

	dests, err := testClient(srv.URL).FindNearby(context.Background(), testOrigin, 5000, 10)
	require.NoError(t, err)
	require.Len(t, dests, 1)
	assert.Equal(t, "Community Center", dests[0].Name)
	assert.Equal(t, domain.CategoryOther, dests[0].Category)
	assert.Equal(t, assumedCapacity, dests[0].Capacity)
}
