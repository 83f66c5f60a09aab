package checkout

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"bookedai/models"
	"bookedai/services/payment"
	"bookedai/services/travel"
)

// Finalization pipeline. Per ctx_id the lifecycle is
//
//	pending -> awaiting payment -> (callback, paid & amounts match) ->
//	booking -> paid (terminal)
//
// with the failure edges: not paid yet -> still pending (re-enterable),
// amount mismatch -> rejected (terminal), TTL elapsed -> expired
// (terminal), booking failure after capture -> payment_captured_unbooked
// (terminal, manual follow-up). Callbacks are delivered at least once, so
// the whole path checks the status tracker before doing any work.

// FinalizeHotel verifies the settled session against the locked quote,
// books the stay, records the terminal status, and evicts the intent.
func (s *DefaultCheckoutService) FinalizeHotel(ctx context.Context, sessionID string) (*models.CheckoutStatus, error) {
	sess, err := s.Builder.Payment.RetrieveSession(ctx, sessionID)
	if err != nil {
		return nil, &UpstreamError{Op: "retrieve session", Err: err}
	}
	ctxID := sess.Metadata["ctx_id"]
	quoteID := sess.Metadata["quote_id"]
	if ctxID == "" || quoteID == "" {
		return nil, &ValidationError{Fields: []string{"session metadata ctx_id/quote_id"}}
	}

	if status, err := s.alreadyTerminal(ctx, ctxID); status != nil || err != nil {
		return status, err
	}

	if !sess.Paid() {
		return nil, ErrPaymentIncomplete
	}

	// Reconcile against the quote, not against anything the client or the
	// stored intent claims.
	quote, err := s.Travel.GetQuote(ctx, quoteID)
	if err != nil {
		return nil, &UpstreamError{Op: "fetch quote", Err: err}
	}
	if err := s.Reconciler.VerifySettled(quote.TotalAmount, quote.TotalCurrency, sess.AmountTotal, sess.Currency); err != nil {
		s.recordRejected(ctx, ctxID, models.KindHotel, sess)
		return nil, err
	}

	intent, err := s.HotelStore.TakeIfFresh(ctx, ctxID, s.HotelTTL)
	if err != nil {
		return nil, s.contextGone(ctx, ctxID, models.KindHotel, sess, err)
	}

	email := intent.Email
	if email == "" {
		email = sess.CustomerEmail
	}

	booking, err := s.Travel.CreateBooking(ctx, travel.BookingRequest{
		QuoteID:             quoteID,
		Guests:              intent.Guests,
		Email:               email,
		PhoneNumber:         intent.PhoneNumber,
		StaySpecialRequests: intent.StaySpecialRequests,
		Payment:             models.PaymentRef{StripePaymentIntentID: sess.PaymentIntentID},
	})
	if err != nil {
		return nil, s.recordCapturedUnbooked(ctx, ctxID, models.KindHotel, sess, err)
	}

	status := models.CheckoutStatus{
		CtxID:           ctxID,
		Kind:            models.KindHotel,
		Status:          models.StatePaid,
		Amount:          s.Reconciler.FormatMinor(sess.AmountTotal, sess.Currency),
		Currency:        sess.Currency,
		Email:           email,
		HotelName:       intent.HotelName,
		RoomName:        intent.RoomName,
		Booking:         booking,
		StripeSessionID: sess.ID,
		ReceiptURL:      sess.ReceiptURL,
	}
	if err := s.Status.Set(ctx, status); err != nil {
		s.Logger.Error("failed to record paid status", zap.String("ctx_id", ctxID), zap.Error(err))
	}
	if err := s.HotelStore.Delete(ctx, ctxID); err != nil {
		s.Logger.Warn("failed to evict checkout context", zap.String("ctx_id", ctxID), zap.Error(err))
	}

	s.Logger.Info("hotel booking confirmed",
		zap.String("ctx_id", ctxID),
		zap.String("booking_id", booking.ID),
		zap.String("session_id", sess.ID),
	)
	return &status, nil
}

// FinalizeFlight verifies the settled session against the intent's
// authoritative total and creates the flight order.
func (s *DefaultCheckoutService) FinalizeFlight(ctx context.Context, sessionID string) (*models.CheckoutStatus, error) {
	sess, err := s.Builder.Payment.RetrieveSession(ctx, sessionID)
	if err != nil {
		return nil, &UpstreamError{Op: "retrieve session", Err: err}
	}
	ctxID := sess.Metadata["ctx_id"]
	if ctxID == "" {
		return nil, &ValidationError{Fields: []string{"session metadata ctx_id"}}
	}

	if status, err := s.alreadyTerminal(ctx, ctxID); status != nil || err != nil {
		return status, err
	}

	if !sess.Paid() {
		return nil, ErrPaymentIncomplete
	}

	intent, err := s.FlightStore.TakeIfFresh(ctx, ctxID, s.FlightTTL)
	if err != nil {
		return nil, s.contextGone(ctx, ctxID, models.KindFlight, sess, err)
	}

	if err := s.Reconciler.VerifySettled(intent.Amount, intent.Currency, sess.AmountTotal, sess.Currency); err != nil {
		s.recordRejected(ctx, ctxID, models.KindFlight, sess)
		return nil, err
	}

	booking, err := s.Travel.BookFlight(ctx, travel.FlightBookingRequest{
		OfferID:    intent.OfferID,
		Passengers: intent.Passengers,
		Payments: []models.PaymentRef{{
			Type:                  "balance",
			Amount:                intent.Amount,
			Currency:              intent.Currency,
			StripePaymentIntentID: sess.PaymentIntentID,
		}},
		Services: intent.Services,
	})
	if err != nil {
		return nil, s.recordCapturedUnbooked(ctx, ctxID, models.KindFlight, sess, err)
	}

	status := models.CheckoutStatus{
		CtxID:           ctxID,
		Kind:            models.KindFlight,
		Status:          models.StatePaid,
		Amount:          s.Reconciler.FormatMinor(sess.AmountTotal, sess.Currency),
		Currency:        sess.Currency,
		Email:           intent.Email,
		Booking:         booking,
		StripeSessionID: sess.ID,
		ReceiptURL:      sess.ReceiptURL,
	}
	if err := s.Status.Set(ctx, status); err != nil {
		s.Logger.Error("failed to record paid status", zap.String("ctx_id", ctxID), zap.Error(err))
	}
	if err := s.FlightStore.Delete(ctx, ctxID); err != nil {
		s.Logger.Warn("failed to evict checkout context", zap.String("ctx_id", ctxID), zap.Error(err))
	}

	s.Logger.Info("flight booking confirmed",
		zap.String("ctx_id", ctxID),
		zap.String("booking_id", booking.ID),
		zap.String("session_id", sess.ID),
	)
	return &status, nil
}

// alreadyTerminal short-circuits redelivered callbacks. A second delivery
// that finds a paid status is a success, not an error; the other terminal
// states re-report their original failure without redoing any work.
func (s *DefaultCheckoutService) alreadyTerminal(ctx context.Context, ctxID string) (*models.CheckoutStatus, error) {
	existing, err := s.Status.Get(ctx, ctxID)
	if err != nil {
		return nil, fmt.Errorf("status lookup failed: %w", err)
	}
	if existing == nil || !existing.Status.Terminal() {
		return nil, nil
	}
	switch existing.Status {
	case models.StatePaid:
		s.Logger.Info("duplicate finalize for already-paid checkout", zap.String("ctx_id", ctxID))
		return existing, nil
	case models.StateRejected:
		return nil, &PriceMismatchError{ExpectedCurrency: existing.Currency, SettledCurrency: existing.Currency}
	case models.StateCapturedUnbooked:
		return nil, &CapturedUnbookedError{CtxID: ctxID, Err: errors.New("previous booking attempt failed")}
	case models.StateExpired:
		return nil, ErrExpired
	}
	return existing, nil
}

// contextGone classifies a missing intent at finalize time. Expiry gets
// its own terminal state and a loud log line: the user paid against a
// context we no longer hold, which must not look like a generic 400.
func (s *DefaultCheckoutService) contextGone(ctx context.Context, ctxID string, kind models.CheckoutKind, sess *payment.Session, cause error) error {
	if errors.Is(cause, ErrExpired) || errors.Is(cause, ErrNotFound) {
		s.Logger.Error("checkout context missing at finalize time",
			zap.String("ctx_id", ctxID),
			zap.String("session_id", sess.ID),
			zap.Bool("paid", sess.Paid()),
			zap.Error(cause),
		)
		s.setState(ctx, ctxID, kind, models.StateExpired, sess)
		return ErrExpired
	}
	return cause
}

func (s *DefaultCheckoutService) recordRejected(ctx context.Context, ctxID string, kind models.CheckoutKind, sess *payment.Session) {
	s.setState(ctx, ctxID, kind, models.StateRejected, sess)
}

func (s *DefaultCheckoutService) recordCapturedUnbooked(ctx context.Context, ctxID string, kind models.CheckoutKind, sess *payment.Session, cause error) error {
	s.Logger.Error("payment captured but booking failed; manual follow-up required",
		zap.String("ctx_id", ctxID),
		zap.String("session_id", sess.ID),
		zap.Error(cause),
	)
	s.setState(ctx, ctxID, kind, models.StateCapturedUnbooked, sess)
	return &CapturedUnbookedError{CtxID: ctxID, Err: cause}
}

func (s *DefaultCheckoutService) setState(ctx context.Context, ctxID string, kind models.CheckoutKind, state models.CheckoutState, sess *payment.Session) {
	status := models.CheckoutStatus{
		CtxID:           ctxID,
		Kind:            kind,
		Status:          state,
		StripeSessionID: sess.ID,
	}
	if err := s.Status.Set(ctx, status); err != nil {
		s.Logger.Error("failed to record checkout status",
			zap.String("ctx_id", ctxID),
			zap.String("status", string(state)),
			zap.Error(err),
		)
	}
}
