package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookedai/models"
)

func TestMinorUnits(t *testing.T) {
	r := audReconciler(nil)

	cases := []struct {
		amount   string
		currency string
		want     int64
	}{
		{"100.00", "AUD", 10000},
		{"100", "AUD", 10000},
		{"100.5", "AUD", 10050},
		{"0.05", "AUD", 5},
		{".50", "AUD", 50},
		{"250.00", "AUD", 25000},
		{"35.00", "AUD", 3500},
		{"1500", "JPY", 1500},
		{"1500.00", "JPY", 1500},
		{"0", "aud", 0},
	}
	for _, tc := range cases {
		got, err := r.MinorUnits(tc.amount, tc.currency)
		require.NoError(t, err, "amount %q %s", tc.amount, tc.currency)
		assert.Equal(t, tc.want, got, "amount %q %s", tc.amount, tc.currency)
	}
}

func TestMinorUnitsRejects(t *testing.T) {
	r := audReconciler(nil)

	for _, tc := range []struct {
		amount   string
		currency string
	}{
		{"", "AUD"},
		{"-1.00", "AUD"},
		{"1.005", "AUD"},
		{"abc", "AUD"},
		{"1500.50", "JPY"},
	} {
		_, err := r.MinorUnits(tc.amount, tc.currency)
		assert.Error(t, err, "amount %q %s", tc.amount, tc.currency)
	}
}

func TestFormatMinor(t *testing.T) {
	r := audReconciler(nil)

	assert.Equal(t, "285.00", r.FormatMinor(28500, "AUD"))
	assert.Equal(t, "0.05", r.FormatMinor(5, "AUD"))
	assert.Equal(t, "1500", r.FormatMinor(1500, "JPY"))
}

func TestCheckCurrency(t *testing.T) {
	r := audReconciler(nil)

	assert.NoError(t, r.CheckCurrency("AUD"))
	assert.NoError(t, r.CheckCurrency("aud"))

	err := r.CheckCurrency("USD")
	var ccy *UnsupportedCurrencyError
	require.ErrorAs(t, err, &ccy)
	assert.Equal(t, "USD", ccy.Currency)
}

func TestVerifySettled(t *testing.T) {
	r := audReconciler(nil)

	assert.NoError(t, r.VerifySettled("100.00", "AUD", 10000, "AUD"))
	assert.NoError(t, r.VerifySettled("100.00", "aud", 10000, "AUD"))

	var mismatch *PriceMismatchError

	// One cent short is fatal.
	err := r.VerifySettled("100.00", "AUD", 9999, "AUD")
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, int64(9999), mismatch.SettledMinor)

	// Matching number in the wrong currency is fatal too.
	err = r.VerifySettled("100.00", "AUD", 10000, "NZD")
	assert.ErrorAs(t, err, &mismatch)
}

func TestAuthoritativeFlightPriceWithSeats(t *testing.T) {
	tc := &fakeTravel{
		flightOffer: func(_ context.Context, offerID string) (*models.Offer, error) {
			return &models.Offer{ID: offerID, TotalAmount: "250.00", TotalCurrency: "AUD"}, nil
		},
		seatMaps: func(_ context.Context, _ string) ([]models.Seat, error) {
			return []models.Seat{
				{ServiceID: "ase_1", Designator: "12A", Price: "35.00", Currency: "AUD"},
				{ServiceID: "ase_2", Designator: "12B", Price: "20.00", Currency: "AUD"},
			}, nil
		},
	}
	r := audReconciler(tc)

	price, err := r.AuthoritativeFlightPrice(context.Background(), "off_1",
		[]models.SeatSelection{{ServiceID: "ase_1", Designator: "12A"}})
	require.NoError(t, err)

	assert.Equal(t, "AUD", price.Currency)
	assert.Equal(t, "250.00", price.BaseAmount)
	assert.Equal(t, "35.00", price.SeatTotal)
	assert.Equal(t, "285.00", price.Amount)
	assert.Equal(t, []models.ServiceItem{{ID: "ase_1", Quantity: 1}}, price.Services)
}

func TestAuthoritativeFlightPriceNoSeats(t *testing.T) {
	seatMapCalled := false
	tc := &fakeTravel{
		flightOffer: func(_ context.Context, offerID string) (*models.Offer, error) {
			return &models.Offer{ID: offerID, TotalAmount: "199.99", TotalCurrency: "AUD"}, nil
		},
		seatMaps: func(_ context.Context, _ string) ([]models.Seat, error) {
			seatMapCalled = true
			return nil, nil
		},
	}
	r := audReconciler(tc)

	price, err := r.AuthoritativeFlightPrice(context.Background(), "off_2", nil)
	require.NoError(t, err)
	assert.Equal(t, "199.99", price.Amount)
	assert.Equal(t, "0.00", price.SeatTotal)
	assert.False(t, seatMapCalled, "seat map must not be fetched when no seats are selected")
}

func TestAuthoritativeFlightPriceRejectsStaleSeat(t *testing.T) {
	tc := &fakeTravel{
		flightOffer: func(_ context.Context, offerID string) (*models.Offer, error) {
			return &models.Offer{ID: offerID, TotalAmount: "250.00", TotalCurrency: "AUD"}, nil
		},
		seatMaps: func(_ context.Context, _ string) ([]models.Seat, error) {
			return []models.Seat{{ServiceID: "ase_other", Price: "35.00", Currency: "AUD"}}, nil
		},
	}
	r := audReconciler(tc)

	_, err := r.AuthoritativeFlightPrice(context.Background(), "off_1",
		[]models.SeatSelection{{ServiceID: "ase_gone"}})
	assert.Error(t, err)
}

func TestAuthoritativeFlightPriceRejectsCurrency(t *testing.T) {
	tc := &fakeTravel{
		flightOffer: func(_ context.Context, offerID string) (*models.Offer, error) {
			return &models.Offer{ID: offerID, TotalAmount: "250.00", TotalCurrency: "USD"}, nil
		},
	}
	r := audReconciler(tc)

	_, err := r.AuthoritativeFlightPrice(context.Background(), "off_1", nil)
	var ccy *UnsupportedCurrencyError
	assert.ErrorAs(t, err, &ccy)
}

func TestHotelQuoteWrapsUpstreamFailure(t *testing.T) {
	tc := &fakeTravel{
		createQuote: func(_ context.Context, _ string) (*models.Quote, error) {
			return nil, errors.New("provider down")
		},
	}
	r := audReconciler(tc)

	_, err := r.HotelQuote(context.Background(), "rat_1")
	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, "create quote", upstream.Op)
}
