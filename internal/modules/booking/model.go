// README: Booking draft variants (ride, rental, purchase) and their validation rules.
package booking

import (
	"time"

	"gosnap/internal/modules/pricing"
	"gosnap/internal/types"
)

type Kind string

const (
	KindRide     Kind = "ride"
	KindRental   Kind = "rental"
	KindPurchase Kind = "purchase"
)

const (
	DefaultPricePerDay   int64 = 150_000
	DefaultPurchasePrice int64 = 25_000_000

	// Caps keep every derived total (days * rate, plus deposit) far from int64 overflow.
	MaxPricePerDay   int64 = 100_000_000
	MaxPurchasePrice int64 = 10_000_000_000

	// DepositPercent of the rental total is held as a security deposit.
	DepositPercent int64 = 50
)

type Contact struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone" validate:"required,rwphone"`
}

// RideDetails books a ride now, or later when ScheduledAt is set.
// Airport pickups also need the customer's flight.
type RideDetails struct {
	Pickup       string          `json:"pickup" validate:"required"`
	Destination  string          `json:"destination" validate:"required"`
	Catalog      pricing.Catalog `json:"catalog" validate:"omitempty,oneof=city airport"`
	TierID       string          `json:"tier_id" validate:"required"`
	DistanceKm   float64         `json:"distance_km" validate:"gte=0"`
	Passengers   int             `json:"passengers" validate:"gte=1,lte=7"`
	ScheduledAt  *time.Time      `json:"scheduled_at,omitempty" validate:"omitempty,future"`
	FlightNumber string          `json:"flight_number,omitempty" validate:"required_if=Catalog airport"`
	Contact      Contact         `json:"contact"`
	AgreeTerms   bool            `json:"agree_terms" validate:"required"`
}

type RentalDetails struct {
	CarName       string    `json:"car_name" validate:"required"`
	PricePerDay   int64     `json:"price_per_day" validate:"gte=0,lte=100000000"`
	PickupAt      time.Time `json:"pickup_at" validate:"required"`
	ReturnAt      time.Time `json:"return_at" validate:"required,gtfield=PickupAt"`
	Name          string    `json:"name" validate:"required"`
	Email         string    `json:"email" validate:"required,contains=@"`
	Phone         string    `json:"phone" validate:"required,min=10"`
	DateOfBirth   time.Time `json:"date_of_birth" validate:"required,adult"`
	LicenceNumber string    `json:"licence_number" validate:"required"`
	LicencePhoto  string    `json:"licence_photo" validate:"required"`
	AgreeTerms    bool      `json:"agree_terms" validate:"required"`
	AgreePrivacy  bool      `json:"agree_privacy" validate:"required"`
}

type PurchaseDetails struct {
	CarName      string  `json:"car_name" validate:"required"`
	Year         int     `json:"year" validate:"gte=1950"`
	Price        int64   `json:"price" validate:"gte=0,lte=10000000000"`
	Contact      Contact `json:"contact"`
	NationalID   string  `json:"national_id" validate:"required"`
	IDPhoto      string  `json:"id_photo" validate:"required"`
	AgreeTerms   bool    `json:"agree_terms" validate:"required"`
	AgreePrivacy bool    `json:"agree_privacy" validate:"required"`
}

// Request is a submitted draft; exactly the variant named by Kind is set.
type Request struct {
	Kind     Kind             `json:"kind"`
	Ride     *RideDetails     `json:"ride,omitempty"`
	Rental   *RentalDetails   `json:"rental,omitempty"`
	Purchase *PurchaseDetails `json:"purchase,omitempty"`
}

// Draft is an accepted request awaiting follow-up. It lives only in the draft store.
// Deposit is set for rentals only.
type Draft struct {
	Request
	ID        types.ID     `json:"id"`
	Price     types.Money  `json:"price"`
	Deposit   *types.Money `json:"deposit,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}

type Confirmation struct {
	ID      types.ID     `json:"id"`
	Title   string       `json:"title"`
	Message string       `json:"message"`
	Price   types.Money  `json:"price"`
	Deposit *types.Money `json:"deposit,omitempty"`
}
