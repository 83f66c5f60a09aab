package checkout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookedai/models"
	"bookedai/services/payment"
	"bookedai/services/travel"
)

func paidSession(id, ctxID, quoteID string, amountMinor int64) *payment.Session {
	meta := map[string]string{"ctx_id": ctxID}
	if quoteID != "" {
		meta["quote_id"] = quoteID
	}
	return &payment.Session{
		ID:              id,
		PaymentStatus:   "paid",
		AmountTotal:     amountMinor,
		Currency:        "AUD",
		Metadata:        meta,
		PaymentIntentID: "pi_1",
		ReceiptURL:      "https://stripe.example/receipt",
		CustomerEmail:   "guest@example.com",
	}
}

func storedHotelIntent(t *testing.T, svc *DefaultCheckoutService) string {
	t.Helper()
	ctxID, err := svc.HotelStore.Put(context.Background(), models.CheckoutIntent{
		Kind:        models.KindHotel,
		RateID:      "rat_1",
		Email:       "guest@example.com",
		PhoneNumber: "+61400000000",
		Guests:      []models.Guest{{GivenName: "Ada", FamilyName: "Lovelace"}},
		HotelName:   "Grand Hotel",
		RoomName:    "Deluxe King",
	})
	require.NoError(t, err)
	require.NoError(t, svc.Status.Set(context.Background(), models.CheckoutStatus{
		CtxID: ctxID, Kind: models.KindHotel, Status: models.StatePending,
	}))
	return ctxID
}

func TestFinalizeHotelHappyPath(t *testing.T) {
	tc := &fakeTravel{
		getQuote: func(_ context.Context, quoteID string) (*models.Quote, error) {
			return &models.Quote{ID: quoteID, TotalAmount: "100.00", TotalCurrency: "AUD"}, nil
		},
		createBook: func(_ context.Context, req travel.BookingRequest) (*models.Booking, error) {
			assert.Equal(t, "quo_1", req.QuoteID)
			assert.Equal(t, "guest@example.com", req.Email)
			assert.Equal(t, "pi_1", req.Payment.StripePaymentIntentID)
			return &models.Booking{ID: "bok_1", Reference: "REF123", Status: "confirmed"}, nil
		},
	}
	pp := newFakePayment()
	svc := newTestService(tc, pp)
	ctx := context.Background()

	ctxID := storedHotelIntent(t, svc)
	pp.sessions["cs_1"] = paidSession("cs_1", ctxID, "quo_1", 10000)

	status, err := svc.FinalizeHotel(ctx, "cs_1")
	require.NoError(t, err)
	assert.Equal(t, models.StatePaid, status.Status)
	assert.Equal(t, "100.00", status.Amount)
	assert.Equal(t, "REF123", status.Booking.Reference)
	assert.Equal(t, "https://stripe.example/receipt", status.ReceiptURL)

	// Intent gone, status sticks around for polling.
	_, err = svc.HotelStore.Get(ctx, ctxID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, models.StatePaid, svc.GetStatus(ctx, ctxID).Status)
}

func TestFinalizeHotelDuplicateDeliveryBooksOnce(t *testing.T) {
	tc := &fakeTravel{
		getQuote: func(_ context.Context, quoteID string) (*models.Quote, error) {
			return &models.Quote{ID: quoteID, TotalAmount: "100.00", TotalCurrency: "AUD"}, nil
		},
		createBook: func(_ context.Context, _ travel.BookingRequest) (*models.Booking, error) {
			return &models.Booking{ID: "bok_1", Status: "confirmed"}, nil
		},
	}
	pp := newFakePayment()
	svc := newTestService(tc, pp)
	ctx := context.Background()

	ctxID := storedHotelIntent(t, svc)
	pp.sessions["cs_1"] = paidSession("cs_1", ctxID, "quo_1", 10000)

	first, err := svc.FinalizeHotel(ctx, "cs_1")
	require.NoError(t, err)

	// Redelivered callback: success again, no second booking.
	second, err := svc.FinalizeHotel(ctx, "cs_1")
	require.NoError(t, err)
	assert.Equal(t, models.StatePaid, second.Status)
	assert.Equal(t, first.Booking.ID, second.Booking.ID)
	assert.Equal(t, 1, tc.bookCalls)
}

func TestFinalizeHotelPriceMismatchRejects(t *testing.T) {
	tc := &fakeTravel{
		getQuote: func(_ context.Context, quoteID string) (*models.Quote, error) {
			return &models.Quote{ID: quoteID, TotalAmount: "100.00", TotalCurrency: "AUD"}, nil
		},
	}
	pp := newFakePayment()
	svc := newTestService(tc, pp)
	ctx := context.Background()

	ctxID := storedHotelIntent(t, svc)
	pp.sessions["cs_1"] = paidSession("cs_1", ctxID, "quo_1", 9999)

	_, err := svc.FinalizeHotel(ctx, "cs_1")
	var mismatch *PriceMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, 0, tc.bookCalls, "mismatched payment must never book")
	assert.Equal(t, models.StateRejected, svc.GetStatus(ctx, ctxID).Status)

	// Rejection is terminal; a retry reports the mismatch again without
	// touching the provider.
	_, err = svc.FinalizeHotel(ctx, "cs_1")
	assert.ErrorAs(t, err, &mismatch)
	assert.Equal(t, 0, tc.bookCalls)
}

func TestFinalizeHotelUnpaidSession(t *testing.T) {
	pp := newFakePayment()
	svc := newTestService(&fakeTravel{}, pp)
	ctx := context.Background()

	ctxID := storedHotelIntent(t, svc)
	sess := paidSession("cs_1", ctxID, "quo_1", 10000)
	sess.PaymentStatus = "unpaid"
	pp.sessions["cs_1"] = sess

	_, err := svc.FinalizeHotel(ctx, "cs_1")
	assert.ErrorIs(t, err, ErrPaymentIncomplete)

	// Still pending and re-enterable.
	assert.Equal(t, models.StatePending, svc.GetStatus(ctx, ctxID).Status)
	_, err = svc.HotelStore.Get(ctx, ctxID)
	assert.NoError(t, err)
}

func TestFinalizeHotelBookingFailureAfterCapture(t *testing.T) {
	tc := &fakeTravel{
		getQuote: func(_ context.Context, quoteID string) (*models.Quote, error) {
			return &models.Quote{ID: quoteID, TotalAmount: "100.00", TotalCurrency: "AUD"}, nil
		},
		createBook: func(_ context.Context, _ travel.BookingRequest) (*models.Booking, error) {
			return nil, errors.New("provider rejected the stay")
		},
	}
	pp := newFakePayment()
	svc := newTestService(tc, pp)
	ctx := context.Background()

	ctxID := storedHotelIntent(t, svc)
	pp.sessions["cs_1"] = paidSession("cs_1", ctxID, "quo_1", 10000)

	_, err := svc.FinalizeHotel(ctx, "cs_1")
	var unbooked *CapturedUnbookedError
	require.ErrorAs(t, err, &unbooked)
	assert.Equal(t, ctxID, unbooked.CtxID)
	assert.Equal(t, models.StateCapturedUnbooked, svc.GetStatus(ctx, ctxID).Status)

	// No automatic retry: a second delivery re-reports, it does not book.
	_, err = svc.FinalizeHotel(ctx, "cs_1")
	assert.ErrorAs(t, err, &unbooked)
	assert.Equal(t, 1, tc.bookCalls)
}

func TestFinalizeHotelExpiredContext(t *testing.T) {
	tc := &fakeTravel{
		getQuote: func(_ context.Context, quoteID string) (*models.Quote, error) {
			return &models.Quote{ID: quoteID, TotalAmount: "100.00", TotalCurrency: "AUD"}, nil
		},
	}
	pp := newFakePayment()
	svc := newTestService(tc, pp)
	ctx := context.Background()

	store := svc.HotelStore.(*MemoryContextStore)
	now := time.Now()
	store.now = func() time.Time { return now }

	ctxID := storedHotelIntent(t, svc)
	pp.sessions["cs_1"] = paidSession("cs_1", ctxID, "quo_1", 10000)

	now = now.Add(16 * time.Minute)

	_, err := svc.FinalizeHotel(ctx, "cs_1")
	assert.ErrorIs(t, err, ErrExpired)
	assert.Equal(t, 0, tc.bookCalls)
	assert.Equal(t, models.StateExpired, svc.GetStatus(ctx, ctxID).Status)
}

func TestFinalizeHotelMissingMetadata(t *testing.T) {
	pp := newFakePayment()
	svc := newTestService(&fakeTravel{}, pp)

	pp.sessions["cs_1"] = &payment.Session{ID: "cs_1", PaymentStatus: "paid", Currency: "AUD"}

	_, err := svc.FinalizeHotel(context.Background(), "cs_1")
	var valErr *ValidationError
	assert.ErrorAs(t, err, &valErr)
}

func TestFinalizeFlightHappyPath(t *testing.T) {
	tc := &fakeTravel{
		bookFlight: func(_ context.Context, req travel.FlightBookingRequest) (*models.Booking, error) {
			assert.Equal(t, "off_1", req.OfferID)
			require.Len(t, req.Payments, 1)
			assert.Equal(t, "balance", req.Payments[0].Type)
			assert.Equal(t, "285.00", req.Payments[0].Amount)
			assert.Equal(t, "pi_1", req.Payments[0].StripePaymentIntentID)
			assert.Equal(t, []models.ServiceItem{{ID: "ase_1", Quantity: 1}}, req.Services)
			return &models.Booking{ID: "ord_1", Reference: "PNR123", Status: "confirmed"}, nil
		},
	}
	pp := newFakePayment()
	svc := newTestService(tc, pp)
	ctx := context.Background()

	ctxID, err := svc.FlightStore.Put(ctx, models.CheckoutIntent{
		Kind:       models.KindFlight,
		OfferID:    "off_1",
		Email:      "pax@example.com",
		Passengers: []models.Passenger{{GivenName: "Ada", FamilyName: "Lovelace", BornOn: "1990-01-01"}},
		Currency:   "AUD",
		BaseAmount: "250.00",
		SeatTotal:  "35.00",
		Amount:     "285.00",
		Services:   []models.ServiceItem{{ID: "ase_1", Quantity: 1}},
	})
	require.NoError(t, err)
	pp.sessions["cs_2"] = paidSession("cs_2", ctxID, "", 28500)

	status, err := svc.FinalizeFlight(ctx, "cs_2")
	require.NoError(t, err)
	assert.Equal(t, models.StatePaid, status.Status)
	assert.Equal(t, "285.00", status.Amount)
	assert.Equal(t, "PNR123", status.Booking.Reference)
	assert.Equal(t, 1, tc.flightBookCalls)

	_, err = svc.FlightStore.Get(ctx, ctxID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFinalizeFlightPriceMismatchRejects(t *testing.T) {
	pp := newFakePayment()
	tc := &fakeTravel{}
	svc := newTestService(tc, pp)
	ctx := context.Background()

	ctxID, err := svc.FlightStore.Put(ctx, models.CheckoutIntent{
		Kind: models.KindFlight, OfferID: "off_1", Email: "pax@example.com",
		Currency: "AUD", Amount: "285.00",
	})
	require.NoError(t, err)
	pp.sessions["cs_2"] = paidSession("cs_2", ctxID, "", 28000)

	_, err = svc.FinalizeFlight(ctx, "cs_2")
	var mismatch *PriceMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, 0, tc.flightBookCalls)
	assert.Equal(t, models.StateRejected, svc.GetStatus(ctx, ctxID).Status)
}
