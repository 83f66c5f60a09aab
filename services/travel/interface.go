package travel

import (
	"context"

	"bookedai/models"
)

// BookingRequest carries everything needed to turn a paid hotel quote into
// a reservation.
type BookingRequest struct {
	QuoteID             string
	Guests              []models.Guest
	Email               string
	PhoneNumber         string
	StaySpecialRequests string
	Payment             models.PaymentRef
}

// FlightBookingRequest creates an order for a paid flight offer, including
// any seat ancillaries the user selected.
type FlightBookingRequest struct {
	OfferID    string
	Passengers []models.Passenger
	Payments   []models.PaymentRef
	Services   []models.ServiceItem
}

// Client is the travel-provider surface the checkout core depends on. The
// provider owns no state on our side; every call is request/response.
type Client interface {
	// CreateQuote locks amount and currency for a hotel rate.
	CreateQuote(ctx context.Context, rateID string) (*models.Quote, error)
	// GetQuote re-reads a previously created quote, used to verify the
	// settled payment against the locked price.
	GetQuote(ctx context.Context, quoteID string) (*models.Quote, error)
	// CreateBooking finalizes a hotel reservation from a paid quote.
	CreateBooking(ctx context.Context, req BookingRequest) (*models.Booking, error)

	// FlightOffer re-reads the current total for a flight offer.
	FlightOffer(ctx context.Context, offerID string) (*models.Offer, error)
	// SeatMaps fetches the current seat map for an offer.
	SeatMaps(ctx context.Context, offerID string) ([]models.Seat, error)
	// BookFlight creates the order for a paid offer.
	BookFlight(ctx context.Context, req FlightBookingRequest) (*models.Booking, error)
}
