package models

// Quote is a hotel rate quote from the travel provider. Creating a quote
// locks the amount and currency for the rate.
type Quote struct {
	ID            string `json:"id"`
	TotalAmount   string `json:"total_amount"`
	TotalCurrency string `json:"total_currency"`
}

// Offer is a flight offer with its current total price.
type Offer struct {
	ID            string `json:"id"`
	TotalAmount   string `json:"total_amount"`
	TotalCurrency string `json:"total_currency"`
}

// Seat is one seat from a freshly fetched seat map. Position is a rough
// designator-letter heuristic (A/F/K/L window, C/D/G/H aisle, B/E middle).
type Seat struct {
	ServiceID  string `json:"service_id"`
	Designator string `json:"label"`
	Cabin      string `json:"cabin,omitempty"`
	Position   string `json:"position,omitempty"`
	Price      string `json:"price"`
	Currency   string `json:"currency"`
	Available  bool   `json:"-"`
}

// Booking is a confirmed reservation handed back by the travel provider.
// It is returned to the caller and recorded on the checkout status; the
// service itself does not persist it anywhere else.
type Booking struct {
	ID        string `json:"id"`
	Reference string `json:"booking_reference,omitempty"`
	Status    string `json:"status,omitempty"`
}

// PaymentRef ties the travel booking to the settled Stripe payment.
type PaymentRef struct {
	Type                  string `json:"type,omitempty"`
	Amount                string `json:"amount,omitempty"`
	Currency              string `json:"currency,omitempty"`
	StripePaymentIntentID string `json:"stripe_payment_intent_id"`
}
