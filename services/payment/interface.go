package payment

import "context"

// SessionRequest describes the hosted checkout session to create. Amounts
// are already converted to minor units by the reconciler.
type SessionRequest struct {
	AmountMinor   int64
	Currency      string
	CustomerEmail string
	ProductName   string
	Description   string
	Metadata      map[string]string
	// IdempotencyKey is deterministic per subject+identity so retried
	// session-creation requests do not mint duplicate charges.
	IdempotencyKey string
	SuccessURL     string
	CancelURL      string
}

// Session is our view of a provider checkout session, on creation and on
// retrieval after the user returns from the hosted page.
type Session struct {
	ID              string
	URL             string
	PaymentStatus   string
	AmountTotal     int64
	Currency        string
	Metadata        map[string]string
	PaymentIntentID string
	ReceiptURL      string
	CustomerEmail   string
}

// Paid reports whether the session has settled.
func (s *Session) Paid() bool {
	return s.PaymentStatus == "paid"
}

// Provider is the payment-provider surface the checkout core depends on.
// The provider holds the card data; we never see it.
type Provider interface {
	CreateCheckoutSession(ctx context.Context, req SessionRequest) (*Session, error)
	RetrieveSession(ctx context.Context, sessionID string) (*Session, error)
}

// WebhookVerifier validates provider event signatures.
type WebhookVerifier interface {
	// VerifyWebhook checks the signature and returns the event type and
	// the checkout session id the event refers to, if any.
	VerifyWebhook(payload []byte, signature string) (eventType, sessionID string, err error)
}
