package models

import "time"

// CheckoutKind distinguishes hotel and flight checkout flows.
type CheckoutKind string

const (
	KindHotel  CheckoutKind = "hotel"
	KindFlight CheckoutKind = "flight"
)

// Guest is one hotel stay occupant.
type Guest struct {
	GivenName  string `json:"given_name" validate:"required"`
	FamilyName string `json:"family_name" validate:"required"`
}

// Passenger is one flight traveller. Email and phone are injected from the
// checkout contact details before the booking request is sent.
type Passenger struct {
	GivenName   string `json:"given_name" validate:"required"`
	FamilyName  string `json:"family_name" validate:"required"`
	BornOn      string `json:"born_on" validate:"required"`
	Email       string `json:"email,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty"`
}

// SeatSelection is a seat the user picked from a seat map, referenced by the
// travel provider's ancillary service id. The price is never taken from the
// client; it is re-read from a fresh seat map.
type SeatSelection struct {
	ServiceID  string `json:"service_id" validate:"required"`
	Designator string `json:"designator,omitempty"`
}

// ServiceItem is an ancillary line passed to the travel provider when the
// flight order is created.
type ServiceItem struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
}

// CheckoutIntent is the stored record of what is being purchased, by whom,
// before payment. Intents are immutable once stored: replace, don't patch.
type CheckoutIntent struct {
	CtxID string       `json:"ctx_id"`
	Kind  CheckoutKind `json:"kind"`

	// Subject reference: RateID for hotels, OfferID for flights.
	RateID  string `json:"rate_id,omitempty"`
	OfferID string `json:"offer_id,omitempty"`

	SearchResultID string `json:"search_result_id,omitempty"`

	Email       string      `json:"email"`
	PhoneNumber string      `json:"phone_number"`
	Guests      []Guest     `json:"guests,omitempty"`
	Passengers  []Passenger `json:"passengers,omitempty"`

	StaySpecialRequests string `json:"stay_special_requests,omitempty"`
	HotelName           string `json:"hotel_name,omitempty"`
	RoomName            string `json:"room_name,omitempty"`
	Description         string `json:"desc,omitempty"`

	// Pricing. Amounts are decimal strings with currency-correct
	// precision. Hotel intents carry no amount; the price is locked by a
	// fresh quote at session-build time. Flight intents carry the
	// authoritative base fare plus the recomputed seat total.
	Currency   string        `json:"currency,omitempty"`
	BaseAmount string        `json:"base_amount,omitempty"`
	SeatTotal  string        `json:"seat_total,omitempty"`
	Amount     string        `json:"amount,omitempty"`
	Services   []ServiceItem `json:"services,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// SubjectRef returns the provider-side identifier the intent is for.
func (i CheckoutIntent) SubjectRef() string {
	if i.Kind == KindFlight {
		return i.OfferID
	}
	return i.RateID
}

// CheckoutState is the lifecycle state of a checkout, as reported to
// polling callers.
type CheckoutState string

const (
	StatePending CheckoutState = "pending"
	StatePaid    CheckoutState = "paid"
	// StateRejected marks a settled payment whose amount or currency did
	// not match the authoritative price. Never finalized.
	StateRejected CheckoutState = "rejected"
	// StateExpired marks a checkout whose context aged out before the
	// user completed payment.
	StateExpired CheckoutState = "expired"
	// StateCapturedUnbooked marks the worst edge: the user was charged
	// but the travel provider booking failed. Requires manual follow-up
	// and is never retried automatically.
	StateCapturedUnbooked CheckoutState = "payment_captured_unbooked"
	// StateUnknown is reported for ids that have no status entry, whether
	// never created or long gone.
	StateUnknown CheckoutState = "unknown"
)

// Terminal reports whether the state can no longer change.
func (s CheckoutState) Terminal() bool {
	switch s {
	case StatePaid, StateRejected, StateExpired, StateCapturedUnbooked:
		return true
	}
	return false
}

// CheckoutStatus is the pollable record of a checkout's last-known state.
// Entries outlive the intent itself so the agent can still observe the
// outcome after the context is evicted.
type CheckoutStatus struct {
	CtxID  string        `json:"ctx_id"`
	Kind   CheckoutKind  `json:"type"`
	Status CheckoutState `json:"status"`

	Amount   string `json:"amount,omitempty"`
	Currency string `json:"currency,omitempty"`
	Email    string `json:"email,omitempty"`

	HotelName string `json:"hotel_name,omitempty"`
	RoomName  string `json:"room_name,omitempty"`

	Booking         *Booking `json:"booking,omitempty"`
	StripeSessionID string   `json:"stripe_session_id,omitempty"`
	ReceiptURL      string   `json:"receipt_url,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CheckoutStart is returned by the start_*_checkout tools: the hosted
// payment link plus the ctx_id the client polls with.
type CheckoutStart struct {
	CtxID       string `json:"ctx_id"`
	CheckoutURL string `json:"checkout_url"`
	Currency    string `json:"currency,omitempty"`
	Amount      string `json:"amount,omitempty"`
	SeatTotal   string `json:"seat_total,omitempty"`
}

// SeatOptions is returned instead of a checkout link when the user asked
// for a seat but has not picked one yet.
type SeatOptions struct {
	SeatPreference string `json:"seat_preference"`
	FilteredCount  int    `json:"filtered_count"`
	AllSeatsCount  int    `json:"all_seats_count"`
	AvailableSeats []Seat `json:"available_seats"`
}
