// README: Estimator resolves endpoints, fetches a route and applies the fallback policy.
package estimate

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"gosnap/internal/maps"
	"gosnap/internal/types"
)

// averageSpeedKmh is the flat speed used for arrival estimates.
const averageSpeedKmh = 50

type Geocoder interface {
	Geocode(ctx context.Context, address string) (types.Coordinate, error)
}

type Router interface {
	Route(ctx context.Context, origin, destination types.Coordinate) (maps.RouteResult, error)
}

type Estimator struct {
	geocoder Geocoder
	router   Router
	log      *zap.Logger
}

func NewEstimator(geocoder Geocoder, router Router, log *zap.Logger) *Estimator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Estimator{geocoder: geocoder, router: router, log: log}
}

// stage identifies which step of an estimate produced an error.
type stage string

const (
	stageOrigin      stage = "origin"
	stageDestination stage = "destination"
	stageRoute       stage = "route"
	stagePolyline    stage = "polyline"
)

// Estimate always returns a usable estimate. Provider failures are replaced
// by defaults in applyFallback and flagged on the result.
func (e *Estimator) Estimate(ctx context.Context, q Query) RouteEstimate {
	fb := fallbacksFor(q)

	var (
		est                RouteEstimate
		originErr, destErr error
		g                  errgroup.Group
	)
	g.Go(func() error {
		est.Origin, originErr = e.resolve(ctx, q.Pickup)
		return nil
	})
	g.Go(func() error {
		est.Destination, destErr = e.resolve(ctx, q.Destination)
		return nil
	})
	_ = g.Wait()

	if originErr != nil {
		e.applyFallback(&est, stageOrigin, originErr, fb)
	}
	if destErr != nil {
		e.applyFallback(&est, stageDestination, destErr, fb)
	}

	route, err := e.router.Route(ctx, est.Origin, est.Destination)
	if err != nil {
		e.applyFallback(&est, stageRoute, err, fb)
	} else {
		path, perr := maps.DecodePolylineChecked(route.EncodedPolyline)
		est.Polyline = path
		if perr != nil {
			e.applyFallback(&est, stagePolyline, perr, fb)
		}
		est.DistanceKm = float64(route.DistanceMeters) / 1000
		if route.DistanceMeters == 0 && len(est.Polyline) >= 2 {
			est.DistanceKm = maps.PathLengthKm(est.Polyline)
		}
	}

	est.DistanceKm = clampKm(est.DistanceKm)
	est.ETAMinutes = etaMinutes(est.DistanceKm)
	return est
}

func (e *Estimator) resolve(ctx context.Context, ep Endpoint) (types.Coordinate, error) {
	if c, ok := ep.Coordinate(); ok {
		if err := c.Validate(); err != nil {
			return types.Coordinate{}, err
		}
		return c, nil
	}
	if c, ok := Landmark(ep.Address); ok {
		return c, nil
	}
	if strings.TrimSpace(ep.Address) == "" {
		return types.Coordinate{}, fmt.Errorf("%w: endpoint has neither address nor coordinate", maps.ErrNoResults)
	}
	return e.geocoder.Geocode(ctx, ep.Address)
}

// fallbacks are the deterministic values substituted for failed stages.
type fallbacks struct {
	pickup, destination types.Coordinate
	lastKnownKm         float64
}

func fallbacksFor(q Query) fallbacks {
	kind, ok := ParseKind(string(q.Kind))
	if !ok {
		kind = KindCity
	}
	fb := fallbacks{lastKnownKm: q.LastKnownKm}
	fb.pickup, fb.destination = kind.Defaults()
	if q.Pickup.Default != nil {
		fb.pickup = *q.Pickup.Default
	}
	if q.Destination.Default != nil {
		fb.destination = *q.Destination.Default
	}
	return fb
}

// applyFallback is the one place where an error is turned into a default value.
func (e *Estimator) applyFallback(est *RouteEstimate, st stage, err error, fb fallbacks) {
	e.log.Warn("estimate fallback applied",
		zap.String("stage", string(st)),
		zap.String("cause", errorClass(err)),
		zap.Error(err),
	)

	switch st {
	case stageOrigin:
		est.Origin = fb.pickup
		est.OriginFallback = true
	case stageDestination:
		est.Destination = fb.destination
		est.DestinationFallback = true
	case stageRoute:
		est.Polyline = []types.Coordinate{est.Origin, est.Destination}
		est.DistanceKm = fb.lastKnownKm
		est.RouteFallback = true
	case stagePolyline:
		// Keep whatever prefix decoded; a path needs two points to draw.
		if len(est.Polyline) < 2 {
			est.Polyline = []types.Coordinate{est.Origin, est.Destination}
		}
	}
}

func errorClass(err error) string {
	switch {
	case errors.Is(err, maps.ErrTransport):
		return "transport"
	case errors.Is(err, maps.ErrProviderStatus):
		return "provider_status"
	case errors.Is(err, maps.ErrNoResults):
		return "no_results"
	case errors.Is(err, maps.ErrMalformedPolyline):
		return "malformed_polyline"
	case errors.Is(err, types.ErrInvalidCoordinate):
		return "invalid_coordinate"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	}
	return "unknown"
}

func clampKm(km float64) float64 {
	if math.IsNaN(km) || math.IsInf(km, 0) || km < 0 {
		return 0
	}
	return km
}

func etaMinutes(km float64) int {
	if km <= 0 {
		return 0
	}
	return int(math.Ceil(km / averageSpeedKmh * 60))
}
