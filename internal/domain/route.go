package domain

import (
	"context"
	"math"
)

// Route is a traffic-aware driving route returned by a routing provider.
type Route struct {
	DistanceMeters  int          `json:"distance_meters"`
	DurationSeconds int          `json:"duration_seconds"`
	TrafficDelaySec int          `json:"traffic_delay_seconds"`
	Points          []Coordinate `json:"points,omitempty"`
}

// RouteResult pairs a ranked destination with either a live route or a
// distance-only fallback estimate. Fallback results carry no geometry
// and a duration derived purely from distance.
type RouteResult struct {
	Destination RankedDestination `json:"destination"`
	Route       *Route            `json:"route,omitempty"`
	Summary     RouteSummary      `json:"summary"`
	Fallback    bool              `json:"fallback,omitempty"`
}

// RouteSummary is the flattened figures the frontend renders.
type RouteSummary struct {
	DistanceMeters  int     `json:"distance"`
	DistanceKm      float64 `json:"distance_km"`
	DurationSeconds int     `json:"duration,omitempty"`
	DurationMinutes int     `json:"duration_minutes"`
	TrafficDelaySec int     `json:"traffic_delay"`
}

// FallbackResult builds a distance-only estimate for a destination the
// routing provider could not serve. The two-minutes-per-kilometer
// heuristic is deliberately crude; it exists so the caller always sees a
// figure rather than a hole in the list.
func FallbackResult(dest RankedDestination) RouteResult {
	return RouteResult{
		Destination: dest,
		Summary: RouteSummary{
			DistanceMeters:  int(math.Round(dest.DistanceKm * 1000)),
			DistanceKm:      dest.DistanceKm,
			DurationMinutes: int(math.Round(dest.DistanceKm * 2)),
		},
		Fallback: true,
	}
}

// LiveResult builds a RouteResult from a provider route.
func LiveResult(dest RankedDestination, route Route) RouteResult {
	return RouteResult{
		Destination: dest,
		Route:       &route,
		Summary: RouteSummary{
			DistanceMeters:  route.DistanceMeters,
			DistanceKm:      float64(route.DistanceMeters) / 1000,
			DurationSeconds: route.DurationSeconds,
			DurationMinutes: int(math.Round(float64(route.DurationSeconds) / 60)),
			TrafficDelaySec: route.TrafficDelaySec,
		},
	}
}

// Router requests traffic-aware driving directions from an external
// provider.
type Router interface {
	Route(ctx context.Context, origin, destination Coordinate) (Route, error)
}

// PlacesSearcher finds candidate shelters near an origin. Results must
// conform to the SafeDestination shape before ranking.
type PlacesSearcher interface {
	FindNearby(ctx context.Context, origin Coordinate, radiusMeters, maxResults int) ([]SafeDestination, error)
}
