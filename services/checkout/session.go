package checkout

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"bookedai/models"
	"bookedai/services/payment"
)

// SessionBuilder turns a stored intent into a hosted payment session. The
// amount always comes from the reconciler at build time, never from the
// intent's display fields, and the request carries a deterministic
// idempotency key so a double-clicked checkout link cannot mint two
// charges.
type SessionBuilder struct {
	Payment          payment.Provider
	Reconciler       *Reconciler
	SuccessURL       string
	FlightSuccessURL string
	CancelURL        string
	Logger           *zap.Logger
}

// IdempotencyKey derives the session-creation key from the subject
// reference and the buyer identity.
func IdempotencyKey(subjectRef, email string) string {
	return fmt.Sprintf("checkout|%s|%s", subjectRef, email)
}

// BuildHotelSession creates a fresh quote for the intent's rate (locking
// amount and currency) and opens a checkout session for it. The returned
// quote id rides along in the session metadata for verification at
// finalize time.
func (b *SessionBuilder) BuildHotelSession(ctx context.Context, intent *models.CheckoutIntent) (*payment.Session, error) {
	quote, err := b.Reconciler.HotelQuote(ctx, intent.RateID)
	if err != nil {
		return nil, err
	}
	minor, err := b.Reconciler.MinorUnits(quote.TotalAmount, quote.TotalCurrency)
	if err != nil {
		return nil, err
	}

	desc := intent.Description
	if desc == "" {
		desc = fmt.Sprintf("Hotel rate: %s", intent.RateID)
	}

	sess, err := b.Payment.CreateCheckoutSession(ctx, payment.SessionRequest{
		AmountMinor:   minor,
		Currency:      quote.TotalCurrency,
		CustomerEmail: intent.Email,
		ProductName:   "Hotel booking",
		Description:   desc,
		Metadata: map[string]string{
			"ctx_id":           intent.CtxID,
			"rate_id":          intent.RateID,
			"quote_id":         quote.ID,
			"email":            intent.Email,
			"search_result_id": intent.SearchResultID,
			"hotel_name":       intent.HotelName,
			"room_name":        intent.RoomName,
		},
		IdempotencyKey: IdempotencyKey(quote.ID, intent.Email),
		SuccessURL:     b.SuccessURL + "?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:      b.CancelURL,
	})
	if err != nil {
		return nil, &UpstreamError{Op: "create checkout session", Err: err}
	}

	b.Logger.Info("hotel checkout session created",
		zap.String("ctx_id", intent.CtxID),
		zap.String("quote_id", quote.ID),
		zap.String("currency", quote.TotalCurrency),
		zap.Int64("amount_minor", minor),
	)
	return sess, nil
}

// BuildFlightSession opens a checkout session for a flight intent whose
// authoritative total was computed when the intent was stored.
func (b *SessionBuilder) BuildFlightSession(ctx context.Context, intent *models.CheckoutIntent) (*payment.Session, error) {
	if err := b.Reconciler.CheckCurrency(intent.Currency); err != nil {
		return nil, err
	}
	minor, err := b.Reconciler.MinorUnits(intent.Amount, intent.Currency)
	if err != nil {
		return nil, err
	}

	sess, err := b.Payment.CreateCheckoutSession(ctx, payment.SessionRequest{
		AmountMinor:   minor,
		Currency:      intent.Currency,
		CustomerEmail: intent.Email,
		ProductName:   "Flight booking",
		Description:   fmt.Sprintf("Offer %s", intent.OfferID),
		Metadata: map[string]string{
			"ctx_id":   intent.CtxID,
			"offer_id": intent.OfferID,
			"amount":   intent.Amount,
			"currency": intent.Currency,
		},
		IdempotencyKey: IdempotencyKey(intent.OfferID, intent.Email),
		SuccessURL:     b.FlightSuccessURL + "?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:      b.CancelURL,
	})
	if err != nil {
		return nil, &UpstreamError{Op: "create checkout session", Err: err}
	}

	b.Logger.Info("flight checkout session created",
		zap.String("ctx_id", intent.CtxID),
		zap.String("offer_id", intent.OfferID),
		zap.String("currency", intent.Currency),
		zap.Int64("amount_minor", minor),
	)
	return sess, nil
}
