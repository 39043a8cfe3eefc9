// README: Route estimate, query and flow state definitions.
package estimate

import (
	"strings"

	"gosnap/internal/modules/pricing"
	"gosnap/internal/types"
)

// Kind selects the booking screen a flow serves.
type Kind string

const (
	KindCity    Kind = "city"
	KindAirport Kind = "airport"
)

func ParseKind(s string) (Kind, bool) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case "", KindCity:
		return KindCity, true
	case KindAirport:
		return KindAirport, true
	}
	return "", false
}

func (k Kind) Catalog() pricing.Catalog {
	if k == KindAirport {
		return pricing.CatalogAirport
	}
	return pricing.CatalogCity
}

// Well-known places the screens default to.
var (
	KimironkoMarket = types.Coordinate{Lat: -1.9496, Lng: 30.1263}
	AmahoroStadium  = types.Coordinate{Lat: -1.9530, Lng: 30.1085}
	KigaliAirport   = types.Coordinate{Lat: -1.9686, Lng: 30.1395}
)

var landmarks = map[string]types.Coordinate{
	"kimironko market":                       KimironkoMarket,
	"amahoro stadium":                        AmahoroStadium,
	"kigali international airport":           KigaliAirport,
	"kigali international airport (kanombe)": KigaliAirport,
}

// Landmark resolves a well-known place name without a provider call.
func Landmark(name string) (types.Coordinate, bool) {
	c, ok := landmarks[strings.ToLower(strings.TrimSpace(name))]
	return c, ok
}

// Defaults returns the pickup and destination a screen of kind k falls back to.
func (k Kind) Defaults() (pickup, destination types.Coordinate) {
	if k == KindAirport {
		return KigaliAirport, KimironkoMarket
	}
	return KimironkoMarket, AmahoroStadium
}

// Endpoint is either an explicit coordinate or a free-text address.
type Endpoint struct {
	Address string   `json:"address,omitempty"`
	Lat     *float64 `json:"lat,omitempty"`
	Lng     *float64 `json:"lng,omitempty"`
	// Default replaces the endpoint when it cannot be resolved.
	Default *types.Coordinate `json:"-"`
}

func AddressEndpoint(address string) Endpoint {
	return Endpoint{Address: address}
}

func CoordinateEndpoint(c types.Coordinate) Endpoint {
	lat, lng := c.Lat, c.Lng
	return Endpoint{Lat: &lat, Lng: &lng}
}

// Coordinate reports the explicit coordinate, if both halves are present.
func (e Endpoint) Coordinate() (types.Coordinate, bool) {
	if e.Lat == nil || e.Lng == nil {
		return types.Coordinate{}, false
	}
	return types.Coordinate{Lat: *e.Lat, Lng: *e.Lng}, true
}

type Query struct {
	Kind        Kind     `json:"kind"`
	Pickup      Endpoint `json:"pickup"`
	Destination Endpoint `json:"destination"`
	// LastKnownKm is reported when no route can be fetched.
	LastKnownKm float64 `json:"-"`
}

type RouteEstimate struct {
	Origin              types.Coordinate   `json:"origin"`
	Destination         types.Coordinate   `json:"destination"`
	DistanceKm          float64            `json:"distance_km"`
	Polyline            []types.Coordinate `json:"polyline"`
	ETAMinutes          int                `json:"eta_minutes"`
	OriginFallback      bool               `json:"origin_fallback"`
	DestinationFallback bool               `json:"destination_fallback"`
	RouteFallback       bool               `json:"route_fallback"`
}

type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateReady   State = "ready"
)

// AllowedTransitions is the flow state diagram; there is no terminal error state.
var AllowedTransitions = map[State][]State{
	StateIdle:    {StateLoading},
	StateLoading: {StateLoading, StateReady},
	StateReady:   {StateLoading},
}

func CanTransition(from, to State) bool {
	for _, s := range AllowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Snapshot is the view state of a flow at one point in time.
type Snapshot struct {
	Seq      uint64              `json:"seq"`
	Kind     Kind                `json:"kind"`
	State    State               `json:"state"`
	Estimate *RouteEstimate      `json:"estimate,omitempty"`
	Quotes   []pricing.FareQuote `json:"quotes,omitempty"`
}
