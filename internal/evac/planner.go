package evac

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/evac-response/internal/domain"
	"github.com/couchcryptid/evac-response/internal/observability"
)

// Defaults for a plan request, matching the frontend's behavior.
const (
	DefaultCount        = 3
	searchRadiusMeters  = 5000
	searchMaxCandidates = 10
)

// ErrNoOrigin is returned when a request carries neither coordinates
// nor a geocodable address.
var ErrNoOrigin = errors.New("no origin: provide coordinates or an address")

// GeocodeFailedError reports that an origin address could not be
// resolved to coordinates. There is no local fallback for a missing
// origin, so the API surfaces the reason to the caller.
type GeocodeFailedError struct {
	Address string
	Err     error
}

func (e *GeocodeFailedError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("could not geocode %q", e.Address)
	}
	return fmt.Sprintf("could not geocode %q: %v", e.Address, e.Err)
}

func (e *GeocodeFailedError) Unwrap() error { return e.Err }

// Request describes one evacuation planning call. Either Origin or
// Address must be set; Address wins a geocoding round-trip.
type Request struct {
	Origin  *domain.Coordinate     `json:"origin,omitempty"`
	Address string                 `json:"address,omitempty"`
	Needs   domain.EvacuationNeeds `json:"needs"`
	Count   int                    `json:"count,omitempty"`
}

// Plan is the evacuation API response: the resolved origin plus ranked
// routes, possibly all in fallback mode.
type Plan struct {
	Origin domain.Coordinate    `json:"origin"`
	Routes []domain.RouteResult `json:"routes"`
}

// Planner wires origin resolution, shelter catalog selection, ranking,
// and the route fan-out into one operation.
type Planner struct {
	geocoder     domain.Geocoder       // optional
	places       domain.PlacesSearcher // optional
	orchestrator *Orchestrator
	catalog      []domain.SafeDestination
	floodZones   []domain.FloodZone
	logger       *slog.Logger
	metrics      *observability.Metrics
}

// NewPlanner creates a Planner over the bundled Corpus Christi catalog.
// geocoder and places may be nil; the bundled catalog then serves every
// request.
func NewPlanner(geocoder domain.Geocoder, places domain.PlacesSearcher, orchestrator *Orchestrator, logger *slog.Logger, metrics *observability.Metrics) *Planner {
	return &Planner{
		geocoder:     geocoder,
		places:       places,
		orchestrator: orchestrator,
		catalog:      domain.CorpusChristiShelters,
		floodZones:   domain.CorpusChristiFloodZones,
		logger:       logger,
		metrics:      metrics,
	}
}

// Plan resolves the origin, ranks shelters against it, and fetches
// routes for the top candidates. The returned plan always contains one
// route per ranked destination; individual provider failures degrade to
// fallback estimates rather than failing the plan.
func (p *Planner) Plan(ctx context.Context, req Request) (Plan, error) {
	origin, err := p.resolveOrigin(ctx, req)
	if err != nil {
		return Plan{}, err
	}

	count := req.Count
	if count <= 0 {
		count = DefaultCount
	}

	catalog := p.selectCatalog(ctx, origin)
	ranked := domain.RankDestinations(origin, req.Needs, catalog, p.floodZones, count)
	routes := p.orchestrator.Routes(ctx, origin, ranked)

	return Plan{Origin: origin, Routes: routes}, nil
}

func (p *Planner) resolveOrigin(ctx context.Context, req Request) (domain.Coordinate, error) {
	if req.Origin != nil {
		return *req.Origin, nil
	}
	if req.Address == "" {
		return domain.Coordinate{}, ErrNoOrigin
	}
	if p.geocoder == nil {
		return domain.Coordinate{}, &GeocodeFailedError{Address: req.Address, Err: errors.New("no geocoder configured")}
	}

	result, err := p.geocoder.Geocode(ctx, req.Address)
	if err != nil {
		return domain.Coordinate{}, &GeocodeFailedError{Address: req.Address, Err: err}
	}
	return result.Position, nil
}

// selectCatalog prefers live places-search results and falls back to
// the bundled catalog when the provider is absent, errors, or finds
// nothing.
func (p *Planner) selectCatalog(ctx context.Context, origin domain.Coordinate) []domain.SafeDestination {
	if p.places == nil {
		p.metrics.CatalogSource.WithLabelValues("bundled").Inc()
		return p.catalog
	}

	found, err := p.places.FindNearby(ctx, origin, searchRadiusMeters, searchMaxCandidates)
	if err != nil {
		p.logger.Warn("places search failed, using bundled catalog", "error", err)
		p.metrics.CatalogSource.WithLabelValues("bundled").Inc()
		return p.catalog
	}
	if len(found) == 0 {
		p.metrics.CatalogSource.WithLabelValues("bundled").Inc()
		return p.catalog
	}

	p.metrics.CatalogSource.WithLabelValues("places").Inc()
	return found
}
