// README: Booking service validates drafts, prices them and answers with a confirmation.
package booking

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"gosnap/internal/modules/pricing"
	"gosnap/internal/types"
)

var (
	ErrValidation = errors.New("invalid booking")
	ErrNotFound   = errors.New("booking draft not found")
)

// DefaultDraftTTL bounds how long an unconfirmed draft is kept.
const DefaultDraftTTL = 24 * time.Hour

type DraftStore interface {
	Save(ctx context.Context, d Draft, ttl time.Duration) error
	Get(ctx context.Context, id types.ID) (Draft, error)
}

type TierLookup interface {
	Tier(ctx context.Context, c pricing.Catalog, id string) (pricing.Tier, error)
}

type Service struct {
	store    DraftStore
	tiers    TierLookup
	ttl      time.Duration
	log      *zap.Logger
	validate *validator.Validate
	printer  *message.Printer
	now      func() time.Time
}

type Option func(*Service)

// WithClock overrides time.Now for age checks and timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

func NewService(store DraftStore, tiers TierLookup, log *zap.Logger, opts ...Option) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Service{
		store:   store,
		tiers:   tiers,
		ttl:     DefaultDraftTTL,
		log:     log,
		printer: message.NewPrinter(language.English),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.validate = newValidator(func() time.Time { return s.now() })
	return s
}

// Submit validates and prices req, stores it as a draft and returns the
// confirmation shown to the customer.
func (s *Service) Submit(ctx context.Context, req Request) (Confirmation, error) {
	price, err := s.price(ctx, &req)
	if err != nil {
		return Confirmation{}, err
	}

	d := Draft{
		Request:   req,
		ID:        types.ID(uuid.NewString()),
		Price:     types.RWF(price),
		CreatedAt: s.now().UTC(),
	}
	if req.Kind == KindRental {
		deposit := types.RWF(Deposit(price))
		d.Deposit = &deposit
	}
	if err := s.store.Save(ctx, d, s.ttl); err != nil {
		return Confirmation{}, fmt.Errorf("save draft: %w", err)
	}

	s.log.Info("booking draft submitted",
		zap.String("id", string(d.ID)),
		zap.String("kind", string(d.Kind)),
		zap.Int64("price", price),
	)
	return s.confirm(d), nil
}

func (s *Service) Get(ctx context.Context, id types.ID) (Draft, error) {
	if _, err := uuid.Parse(string(id)); err != nil {
		return Draft{}, ErrNotFound
	}
	return s.store.Get(ctx, id)
}

// price validates the variant named by req.Kind, fills defaults and returns its price.
func (s *Service) price(ctx context.Context, req *Request) (int64, error) {
	switch req.Kind {
	case KindRide:
		if req.Ride == nil {
			return 0, fmt.Errorf("%w: ride details missing", ErrValidation)
		}
		r := req.Ride
		if r.Catalog == "" {
			r.Catalog = pricing.CatalogCity
		}
		if err := s.validate.Struct(r); err != nil {
			return 0, firstFieldError(err)
		}
		tier, err := s.tiers.Tier(ctx, r.Catalog, r.TierID)
		if err != nil {
			return 0, fmt.Errorf("%w: tier_id: %v", ErrValidation, err)
		}
		return pricing.Fare(tier.RatePerKm, r.DistanceKm), nil

	case KindRental:
		if req.Rental == nil {
			return 0, fmt.Errorf("%w: rental details missing", ErrValidation)
		}
		r := req.Rental
		if r.PricePerDay == 0 {
			r.PricePerDay = DefaultPricePerDay
		}
		if err := s.validate.Struct(r); err != nil {
			return 0, firstFieldError(err)
		}
		days := int64(RentalDays(r.PickupAt, r.ReturnAt))
		// The deposit is computed from total*DepositPercent, so that product must fit too.
		if r.PricePerDay > MaxPricePerDay || days > math.MaxInt64/100/max(r.PricePerDay, 1) {
			return 0, fmt.Errorf("%w: rental total overflows (%d day(s) at %d)", ErrValidation, days, r.PricePerDay)
		}
		return r.PricePerDay * days, nil

	case KindPurchase:
		if req.Purchase == nil {
			return 0, fmt.Errorf("%w: purchase details missing", ErrValidation)
		}
		p := req.Purchase
		if p.Price == 0 {
			p.Price = DefaultPurchasePrice
		}
		if err := s.validate.Struct(p); err != nil {
			return 0, firstFieldError(err)
		}
		return p.Price, nil
	}
	return 0, fmt.Errorf("%w: unknown kind %q", ErrValidation, req.Kind)
}

// RentalDays bills every started day, with a one-day minimum.
func RentalDays(pickup, ret time.Time) int {
	days := int(math.Ceil(ret.Sub(pickup).Hours() / 24))
	if days < 1 {
		return 1
	}
	return days
}

// Deposit is DepositPercent of a rental total, rounded half up.
func Deposit(total int64) int64 {
	return (total*DepositPercent + 50) / 100
}

func (s *Service) confirm(d Draft) Confirmation {
	c := Confirmation{ID: d.ID, Price: d.Price, Deposit: d.Deposit}
	// The printer adds thousands separators, e.g. 25,000,000.
	amount := s.printer.Sprintf("%d", d.Price.Amount)

	switch d.Kind {
	case KindRide:
		r := d.Ride
		c.Title = "Ride Booked"
		when := "now"
		if r.ScheduledAt != nil {
			c.Title = "Ride Scheduled"
			when = "for " + r.ScheduledAt.Format("Mon 2 Jan 2006 15:04")
		}
		c.Message = fmt.Sprintf("Your ride from %s to %s is booked %s for %d passenger(s). Estimated fare: %s %s.",
			r.Pickup, r.Destination, when, r.Passengers, d.Price.Currency, amount)
		if r.FlightNumber != "" {
			c.Message += fmt.Sprintf(" Your driver will track flight %s.", r.FlightNumber)
		}
	case KindRental:
		c.Title = "Rental Request Received"
		c.Message = fmt.Sprintf("%s is reserved from %s to %s (%d day(s)). Total: %s %s.",
			d.Rental.CarName,
			d.Rental.PickupAt.Format("2 Jan 2006"),
			d.Rental.ReturnAt.Format("2 Jan 2006"),
			RentalDays(d.Rental.PickupAt, d.Rental.ReturnAt),
			d.Price.Currency, amount)
		if d.Deposit != nil {
			c.Message += s.printer.Sprintf(" Security deposit (%d%%): %s %d, due at pickup: %s %d.",
				DepositPercent, d.Deposit.Currency, d.Deposit.Amount,
				d.Price.Currency, d.Price.Amount+d.Deposit.Amount)
		}
	case KindPurchase:
		c.Title = "Purchase Request Received"
		c.Message = fmt.Sprintf("Thank you, %s. Our sales team will contact you about the %d %s. Price: %s %s.",
			d.Purchase.Contact.Name, d.Purchase.Year, d.Purchase.CarName, d.Price.Currency, amount)
	}
	return c
}
