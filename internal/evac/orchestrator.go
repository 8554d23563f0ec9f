// Package evac plans evacuations: it resolves the caller's origin,
// ranks candidate shelters, and fetches traffic-aware routes to the
// best of them.
package evac

import (
	"context"
	"log/slog"
	"sync"

	"github.com/couchcryptid/evac-response/internal/domain"
	"github.com/couchcryptid/evac-response/internal/observability"
)

// Orchestrator fans route requests out to the routing provider, one
// goroutine per destination, and joins all of them. A failed request
// never cancels the others and never fails the batch: the affected
// destination degrades to a distance-only fallback estimate.
type Orchestrator struct {
	router  domain.Router
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewOrchestrator creates an Orchestrator. A nil router puts every
// destination in fallback mode, which keeps the evacuation API usable
// with no routing provider configured.
func NewOrchestrator(router domain.Router, logger *slog.Logger, metrics *observability.Metrics) *Orchestrator {
	return &Orchestrator{router: router, logger: logger, metrics: metrics}
}

// Routes returns one RouteResult per destination, in ranking order.
func (o *Orchestrator) Routes(ctx context.Context, origin domain.Coordinate, destinations []domain.RankedDestination) []domain.RouteResult {
	results := make([]domain.RouteResult, len(destinations))
	o.metrics.RouteFanoutSize.Observe(float64(len(destinations)))

	if o.router == nil {
		for i, dest := range destinations {
			results[i] = domain.FallbackResult(dest)
			o.metrics.RouteRequests.WithLabelValues("fallback").Inc()
		}
		return results
	}

	var wg sync.WaitGroup
	for i, dest := range destinations {
		wg.Add(1)
		go func(i int, dest domain.RankedDestination) {
			defer wg.Done()
			results[i] = o.routeOne(ctx, origin, dest)
		}(i, dest)
	}
	wg.Wait()

	return results
}

func (o *Orchestrator) routeOne(ctx context.Context, origin domain.Coordinate, dest domain.RankedDestination) domain.RouteResult {
	route, err := o.router.Route(ctx, origin, dest.Position)
	if err != nil {
		o.logger.Warn("route lookup failed, using distance estimate",
			"destination", dest.Name,
			"distance_km", dest.DistanceKm,
			"error", err,
		)
		o.metrics.RouteRequests.WithLabelValues("fallback").Inc()
		return domain.FallbackResult(dest)
	}
	o.metrics.RouteRequests.WithLabelValues("live").Inc()
	return domain.LiveResult(dest, route)
}
