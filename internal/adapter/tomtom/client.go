// Package tomtom implements the routing, geocoding, and places
// collaborators against the TomTom REST APIs.
package tomtom

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/couchcryptid/evac-response/internal/domain"
	"github.com/couchcryptid/evac-response/internal/observability"
)

// Client implements domain.Router, domain.Geocoder, and
// domain.PlacesSearcher using the TomTom Routing and Search APIs.
type Client struct {
	key        string
	httpClient *http.Client
	routingURL string
	searchURL  string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a TomTom API client.
func NewClient(key string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		key: key,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		routingURL: "https://api.tomtom.com/routing/1",
		searchURL:  "https://api.tomtom.com/search/2",
		metrics:    metrics,
		logger:     logger,
	}
}

// Route requests a traffic-aware driving route with a "now" departure.
func (c *Client) Route(ctx context.Context, origin, destination domain.Coordinate) (domain.Route, error) {
	locs := fmt.Sprintf("%f,%f:%f,%f", origin.Lat, origin.Lng, destination.Lat, destination.Lng)
	u := fmt.Sprintf("%s/calculateRoute/%s/json", c.routingURL, locs)
	params := url.Values{
		"key":                  {c.key},
		"traffic":              {"true"},
		"routeType":            {"fastest"},
		"travelMode":           {"car"},
		"departAt":             {"now"},
		"computeTravelTimeFor": {"all"},
	}

	start := time.Now()
	var resp routeResponse
	err := c.doRequest(ctx, u+"?"+params.Encode(), &resp)
	c.metrics.RouteAPIDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return domain.Route{}, err
	}
	if len(resp.Routes) == 0 {
		return domain.Route{}, fmt.Errorf("no route found")
	}

	r := resp.Routes[0]
	route := domain.Route{
		DistanceMeters:  r.Summary.LengthInMeters,
		DurationSeconds: r.Summary.TravelTimeInSeconds,
		TrafficDelaySec: r.Summary.TrafficDelayInSeconds,
	}
	for _, leg := range r.Legs {
		for _, p := range leg.Points {
			route.Points = append(route.Points, domain.Coordinate{Lat: p.Latitude, Lng: p.Longitude})
		}
	}
	return route, nil
}

// Geocode converts a free-text address to coordinates. The search is
// biased toward the Corpus Christi area, matching the frontend's
// behavior.
func (c *Client) Geocode(ctx context.Context, address string) (domain.GeocodingResult, error) {
	u := fmt.Sprintf("%s/geocode/%s.json", c.searchURL, url.PathEscape(address))
	params := url.Values{
		"key":        {c.key},
		"limit":      {"1"},
		"countrySet": {"US"},
		"lat":        {"27.8006"},
		"lon":        {"-97.3964"},
	}

	var resp geocodeResponse
	if err := c.doRequest(ctx, u+"?"+params.Encode(), &resp); err != nil {
		c.metrics.GeocodeRequests.WithLabelValues("error").Inc()
		return domain.GeocodingResult{}, err
	}
	if len(resp.Results) == 0 {
		c.metrics.GeocodeRequests.WithLabelValues("not_found").Inc()
		return domain.GeocodingResult{}, domain.ErrAddressNotFound
	}

	c.metrics.GeocodeRequests.WithLabelValues("success").Inc()
	r := resp.Results[0]
	return domain.GeocodingResult{
		Position:         domain.Coordinate{Lat: r.Position.Lat, Lng: r.Position.Lon},
		FormattedAddress: r.Address.FreeformAddress,
		Confidence:       r.Score,
	}, nil
}

// FindNearby searches for shelter-like points of interest around the
// origin. Results carry no capacity or facility metadata, so they are
// given a conservative assumed capacity and the "other" category before
// ranking.
func (c *Client) FindNearby(ctx context.Context, origin domain.Coordinate, radiusMeters, maxResults int) ([]domain.SafeDestination, error) {
	u := fmt.Sprintf("%s/poiSearch/%s.json", c.searchURL, url.PathEscape("emergency shelter"))
	params := url.Values{
		"key":    {c.key},
		"lat":    {fmt.Sprintf("%f", origin.Lat)},
		"lon":    {fmt.Sprintf("%f", origin.Lng)},
		"radius": {fmt.Sprintf("%d", radiusMeters)},
		"limit":  {fmt.Sprintf("%d", maxResults)},
	}

	var resp poiResponse
	if err := c.doRequest(ctx, u+"?"+params.Encode(), &resp); err != nil {
		return nil, err
	}

	destinations := make([]domain.SafeDestination, 0, len(resp.Results))
	for i, r := range resp.Results {
		destinations = append(destinations, domain.SafeDestination{
			ID:       i + 1,
			Name:     r.POI.Name,
			Address:  r.Address.FreeformAddress,
			Position: domain.Coordinate{Lat: r.Position.Lat, Lng: r.Position.Lon},
			Capacity: assumedCapacity,
			Category: domain.CategoryOther,
		})
	}
	return destinations, nil
}

// assumedCapacity stands in for live places results, which carry no
// capacity metadata. Chosen below every bundled shelter so unknown
// venues never outrank vetted ones on capacity alone.
const assumedCapacity = 250

func (c *Client) doRequest(ctx context.Context, fullURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("tomtom request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("tomtom API error: status %d: %s", resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// TomTom API response types.

type routeResponse struct {
	Routes []struct {
		Summary struct {
			LengthInMeters        int `json:"lengthInMeters"`
			TravelTimeInSeconds   int `json:"travelTimeInSeconds"`
			TrafficDelayInSeconds int `json:"trafficDelayInSeconds"`
		} `json:"summary"`
		Legs []struct {
			Points []struct {
				Latitude  float64 `json:"latitude"`
				Longitude float64 `json:"longitude"`
			} `json:"points"`
		} `json:"legs"`
	} `json:"routes"`
}

type geocodeResponse struct {
	Results []struct {
		Score    float64 `json:"score"`
		Position struct {
			Lat float64 `json:"lat"`
			Lon float64 `json:"lon"`
		} `json:"position"`
		Address struct {
			FreeformAddress string `json:"freeformAddress"`
		} `json:"address"`
	} `json:"results"`
}

type poiResponse struct {
	Results []struct {
		POI struct {
			Name string `json:"name"`
		} `json:"poi"`
		Position struct {
			Lat float64 `json:"lat"`
			Lon float64 `json:"lon"`
		} `json:"position"`
		Address struct {
			FreeformAddress string `json:"freeformAddress"`
		} `json:"address"`
	} `json:"results"`
}
