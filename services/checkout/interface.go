package checkout

import (
	"context"
	"time"

	"bookedai/models"
)

// ContextStore holds short-lived checkout intents. Implementations must be
// safe for concurrent use; expired entries are purged lazily on access, not
// by a background sweep.
type ContextStore interface {
	// Put stores the intent under a fresh unguessable id and returns it.
	Put(ctx context.Context, intent models.CheckoutIntent) (string, error)
	// Get returns the stored intent, or ErrNotFound.
	Get(ctx context.Context, ctxID string) (*models.CheckoutIntent, error)
	// TakeIfFresh returns the intent if it is younger than ttl. A stale
	// entry is deleted and reported as ErrExpired instead of being
	// returned.
	TakeIfFresh(ctx context.Context, ctxID string, ttl time.Duration) (*models.CheckoutIntent, error)
	Delete(ctx context.Context, ctxID string) error
}

// StatusTracker maps ctx_id to the last-known lifecycle state. Entries are
// never deleted; they outlive the intent for polling. A missing entry
// reads as nil, not an error.
type StatusTracker interface {
	Set(ctx context.Context, status models.CheckoutStatus) error
	Get(ctx context.Context, ctxID string) (*models.CheckoutStatus, error)
}

// GateKind names one gated resource type.
type GateKind string

const (
	GateHotelSearch  GateKind = "hotel_search"
	GateFlightSearch GateKind = "flight_search"
	GateRoomRates    GateKind = "room_rates"
)

// Gate is a per-kind one-shot latch. A widget beacon trips it; the next
// matching search consumes it and refuses to run. Trip is idempotent and
// ConsumeIfTripped is an atomic test-and-reset.
type Gate interface {
	Trip(ctx context.Context, kind GateKind) error
	ConsumeIfTripped(ctx context.Context, kind GateKind) (bool, error)
}

// Service is the checkout orchestration surface exposed to the handlers.
type Service interface {
	StartHotelCheckout(ctx context.Context, req StartHotelCheckoutRequest) (*models.CheckoutStart, error)
	StartFlightCheckout(ctx context.Context, req StartFlightCheckoutRequest) (*models.CheckoutStart, *models.SeatOptions, error)

	// CreateHotelRedirect and CreateFlightRedirect turn a stored intent
	// into a hosted payment session and return its redirect URL.
	CreateHotelRedirect(ctx context.Context, ctxID string) (string, error)
	CreateFlightRedirect(ctx context.Context, ctxID string) (string, error)

	FinalizeHotel(ctx context.Context, sessionID string) (*models.CheckoutStatus, error)
	FinalizeFlight(ctx context.Context, sessionID string) (*models.CheckoutStatus, error)

	GetStatus(ctx context.Context, ctxID string) models.CheckoutStatus
}
