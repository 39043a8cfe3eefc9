// README: Pricing service turns a route distance into per-tier fare quotes.
package pricing

import (
	"context"
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"gosnap/internal/types"
)

var (
	ErrUnknownCatalog = errors.New("unknown tier catalog")
	ErrUnknownTier    = errors.New("unknown tier")
)

// roundingUnit is the smallest price step; every quote is a multiple of it.
const roundingUnit = 100

// Fare returns ratePerKm * distanceKm rounded to the nearest 100 (halves away
// from zero). Zero, negative and NaN distances cost nothing.
func Fare(ratePerKm int64, distanceKm float64) int64 {
	if distanceKm == 0 || math.IsNaN(distanceKm) || distanceKm < 0 {
		return 0
	}
	raw := float64(ratePerKm) * distanceKm
	return int64(math.Round(raw/roundingUnit)) * roundingUnit
}

type TierSource interface {
	Tiers(ctx context.Context, c Catalog) ([]Tier, error)
}

type Service struct {
	store TierSource
	log   *zap.Logger
}

func NewService(store TierSource, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, log: log}
}

func (s *Service) Quote(tier Tier, distanceKm float64) FareQuote {
	return FareQuote{
		Tier:       tier,
		DistanceKm: distanceKm,
		Price:      types.RWF(Fare(tier.RatePerKm, distanceKm)),
	}
}

// Tiers loads the catalog from the store, falling back to the static catalog
// when the store is missing, failing or empty.
func (s *Service) Tiers(ctx context.Context, c Catalog) ([]Tier, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCatalog, c)
	}
	if s.store == nil {
		return StaticTiers(c), nil
	}
	tiers, err := s.store.Tiers(ctx, c)
	if err != nil {
		s.log.Warn("tier store read failed, using static catalog", zap.String("catalog", string(c)), zap.Error(err))
		return StaticTiers(c), nil
	}
	if len(tiers) == 0 {
		return StaticTiers(c), nil
	}
	return tiers, nil
}

// Tier looks up one tier of catalog c by id.
func (s *Service) Tier(ctx context.Context, c Catalog, id string) (Tier, error) {
	tiers, err := s.Tiers(ctx, c)
	if err != nil {
		return Tier{}, err
	}
	for _, t := range tiers {
		if t.ID == id {
			return t, nil
		}
	}
	return Tier{}, fmt.Errorf("%w: %q in %s", ErrUnknownTier, id, c)
}

// QuoteAll prices distanceKm for every tier of the catalog, in catalog order.
func (s *Service) QuoteAll(ctx context.Context, c Catalog, distanceKm float64) ([]FareQuote, error) {
	tiers, err := s.Tiers(ctx, c)
	if err != nil {
		return nil, err
	}
	quotes := make([]FareQuote, 0, len(tiers))
	for _, t := range tiers {
		quotes = append(quotes, s.Quote(t, distanceKm))
	}
	return quotes, nil
}
