// README: Ride tier catalogs and fare quote definitions.
package pricing

import "gosnap/internal/types"

// Catalog names a group of tiers offered together on one booking screen.
type Catalog string

const (
	CatalogCity    Catalog = "city"
	CatalogAirport Catalog = "airport"
)

func (c Catalog) Valid() bool {
	_, ok := staticCatalogs[c]
	return ok
}

type Tier struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	RatePerKm int64  `json:"rate_per_km"`
}

type FareQuote struct {
	Tier       Tier        `json:"tier"`
	DistanceKm float64     `json:"distance_km"`
	Price      types.Money `json:"price"`
}

var staticCatalogs = map[Catalog][]Tier{
	CatalogCity: {
		{ID: "economy", Name: "Economy", RatePerKm: 1000},
		{ID: "vip", Name: "VIP", RatePerKm: 1500},
	},
	CatalogAirport: {
		{ID: "economy", Name: "Economy (Sorento)", RatePerKm: 1000},
		{ID: "vip", Name: "VIP (Santa Fe)", RatePerKm: 1500},
		{ID: "luxury", Name: "Luxury (Landcruiser)", RatePerKm: 2000},
	},
}

// StaticTiers returns a copy of the built-in catalog.
func StaticTiers(c Catalog) []Tier {
	src := staticCatalogs[c]
	out := make([]Tier, len(src))
	copy(out, src)
	return out
}
