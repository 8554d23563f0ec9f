package domain

import (
	"context"
	"errors"
)

// GeocodingResult contains location data returned by a geocoding provider.
type GeocodingResult struct {
	Position         Coordinate
	FormattedAddress string
	Confidence       float64 // 0.0–1.0 provider confidence score
}

// ErrAddressNotFound is returned when a geocoder has no result for an
// address. Unlike routing failures there is no local fallback for a
// missing origin, so callers surface this to the user.
var ErrAddressNotFound = errors.New("address not found")

// Geocoder resolves free-text addresses to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (GeocodingResult, error)
}
