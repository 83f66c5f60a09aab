package checkout

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookedai/models"
)

func TestIdempotencyKeyIsDeterministic(t *testing.T) {
	key := IdempotencyKey("quo_123", "guest@example.com")
	assert.Equal(t, "checkout|quo_123|guest@example.com", key)
	assert.Equal(t, key, IdempotencyKey("quo_123", "guest@example.com"))
	assert.NotEqual(t, key, IdempotencyKey("quo_124", "guest@example.com"))
	assert.NotEqual(t, key, IdempotencyKey("quo_123", "other@example.com"))
}

func TestBuildHotelSessionLocksFreshQuote(t *testing.T) {
	tc := &fakeTravel{
		createQuote: func(_ context.Context, rateID string) (*models.Quote, error) {
			return &models.Quote{ID: "quo_1", TotalAmount: "100.00", TotalCurrency: "AUD"}, nil
		},
	}
	pp := newFakePayment()
	svc := newTestService(tc, pp)

	sess, err := svc.Builder.BuildHotelSession(context.Background(), &models.CheckoutIntent{
		CtxID:          "ctx1",
		Kind:           models.KindHotel,
		RateID:         "rat_1",
		Email:          "guest@example.com",
		SearchResultID: "srr_1",
		HotelName:      "Grand Hotel",
		RoomName:       "Deluxe King",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example/cs_test_1", sess.URL)

	require.Len(t, pp.created, 1)
	req := pp.created[0]
	assert.Equal(t, int64(10000), req.AmountMinor)
	assert.Equal(t, "AUD", req.Currency)
	assert.Equal(t, "checkout|quo_1|guest@example.com", req.IdempotencyKey)
	assert.Equal(t, "https://app.example/success?session_id={CHECKOUT_SESSION_ID}", req.SuccessURL)
	assert.Equal(t, "ctx1", req.Metadata["ctx_id"])
	assert.Equal(t, "quo_1", req.Metadata["quote_id"])
	assert.Equal(t, "rat_1", req.Metadata["rate_id"])
	assert.Equal(t, "Grand Hotel", req.Metadata["hotel_name"])
}

func TestBuildHotelSessionRejectsUnsupportedCurrency(t *testing.T) {
	tc := &fakeTravel{
		createQuote: func(_ context.Context, _ string) (*models.Quote, error) {
			return &models.Quote{ID: "quo_1", TotalAmount: "100.00", TotalCurrency: "USD"}, nil
		},
	}
	pp := newFakePayment()
	svc := newTestService(tc, pp)

	_, err := svc.Builder.BuildHotelSession(context.Background(), &models.CheckoutIntent{
		CtxID: "ctx1", RateID: "rat_1", Email: "guest@example.com",
	})
	var ccy *UnsupportedCurrencyError
	require.ErrorAs(t, err, &ccy)
	assert.Empty(t, pp.created, "no session may be created for a rejected currency")
}

func TestBuildFlightSessionUsesStoredAuthoritativeTotal(t *testing.T) {
	pp := newFakePayment()
	svc := newTestService(&fakeTravel{}, pp)

	_, err := svc.Builder.BuildFlightSession(context.Background(), &models.CheckoutIntent{
		CtxID:    "ctx2",
		Kind:     models.KindFlight,
		OfferID:  "off_1",
		Email:    "pax@example.com",
		Currency: "AUD",
		Amount:   "285.00",
	})
	require.NoError(t, err)

	require.Len(t, pp.created, 1)
	req := pp.created[0]
	assert.Equal(t, int64(28500), req.AmountMinor)
	assert.Equal(t, "checkout|off_1|pax@example.com", req.IdempotencyKey)
	assert.Equal(t, "https://app.example/flight/success?session_id={CHECKOUT_SESSION_ID}", req.SuccessURL)
	assert.Equal(t, "off_1", req.Metadata["offer_id"])
	assert.Equal(t, "285.00", req.Metadata["amount"])
}
