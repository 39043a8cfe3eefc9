package maps

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"googlemaps.github.io/maps"

	"gosnap/internal/types"
)

// RetryPolicy bounds the directions retry loop.
type RetryPolicy struct {
	Attempts int
	Delay    time.Duration
}

// DefaultRetryPolicy makes two attempts one second apart.
var DefaultRetryPolicy = RetryPolicy{Attempts: 2, Delay: time.Second}

// RouteResult is the part of a directions response the estimator consumes.
type RouteResult struct {
	DistanceMeters  int
	EncodedPolyline string
}

// RouteService handles geocoding and directions lookups against Google Maps.
type RouteService struct {
	client *maps.Client
	region string
	retry  RetryPolicy
	log    *zap.Logger
}

// NewRouteService wraps client. An empty region falls back to DefaultRegion
// and a non-positive attempt count means a single attempt.
func NewRouteService(client *maps.Client, region string, retry RetryPolicy, log *zap.Logger) *RouteService {
	if region == "" {
		region = DefaultRegion
	}
	if retry.Attempts < 1 {
		retry.Attempts = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &RouteService{client: client, region: region, retry: retry, log: log}
}

// Geocode resolves a free-text address to the location of the first result.
func (s *RouteService) Geocode(ctx context.Context, address string) (types.Coordinate, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return types.Coordinate{}, fmt.Errorf("%w: empty address", ErrNoResults)
	}

	results, err := s.client.Geocode(ctx, &maps.GeocodingRequest{
		Address: address,
		Region:  s.region,
	})
	if err != nil {
		return types.Coordinate{}, classify(err)
	}
	if len(results) == 0 {
		return types.Coordinate{}, fmt.Errorf("%w: geocode %q", ErrNoResults, address)
	}

	loc := results[0].Geometry.Location
	return types.Coordinate{Lat: loc.Lat, Lng: loc.Lng}, nil
}

// Route fetches a driving route between two coordinates, retrying transient
// failures per the service's RetryPolicy. ErrNoResults is never retried.
func (s *RouteService) Route(ctx context.Context, origin, destination types.Coordinate) (RouteResult, error) {
	var (
		result  RouteResult
		attempt int
	)

	op := func() error {
		attempt++
		r, err := s.directions(ctx, origin, destination)
		if err != nil {
			s.log.Warn("directions attempt failed",
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", s.retry.Attempts),
				zap.Error(err),
			)
			if errors.Is(err, ErrNoResults) {
				return backoff.Permanent(err)
			}
			return err
		}
		result = r
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(s.retry.Delay), uint64(s.retry.Attempts-1)),
		ctx,
	)
	if err := backoff.Retry(op, policy); err != nil {
		return RouteResult{}, err
	}
	return result, nil
}

func (s *RouteService) directions(ctx context.Context, origin, destination types.Coordinate) (RouteResult, error) {
	r := &maps.DirectionsRequest{
		Origin:      origin.String(),
		Destination: destination.String(),
		Mode:        maps.TravelModeDriving,
		Region:      s.region,
	}

	routes, _, err := s.client.Directions(ctx, r)
	if err != nil {
		return RouteResult{}, classify(err)
	}
	if len(routes) == 0 {
		return RouteResult{}, fmt.Errorf("%w: no route found", ErrNoResults)
	}

	route := routes[0]
	meters := 0
	for _, leg := range route.Legs {
		if leg != nil {
			meters += leg.Distance.Meters
		}
	}
	return RouteResult{
		DistanceMeters:  meters,
		EncodedPolyline: route.OverviewPolyline.Points,
	}, nil
}
