package checkout

import (
	"context"
	"time"

	"go.uber.org/zap"

	"bookedai/models"
	"bookedai/services/payment"
	"bookedai/services/travel"
)

// fakeTravel is a scriptable travel.Client. Unset funcs fail the call so a
// test only exercises the paths it set up.
type fakeTravel struct {
	createQuote func(ctx context.Context, rateID string) (*models.Quote, error)
	getQuote    func(ctx context.Context, quoteID string) (*models.Quote, error)
	createBook  func(ctx context.Context, req travel.BookingRequest) (*models.Booking, error)
	flightOffer func(ctx context.Context, offerID string) (*models.Offer, error)
	seatMaps    func(ctx context.Context, offerID string) ([]models.Seat, error)
	bookFlight  func(ctx context.Context, req travel.FlightBookingRequest) (*models.Booking, error)

	bookCalls       int
	flightBookCalls int
}

func (f *fakeTravel) CreateQuote(ctx context.Context, rateID string) (*models.Quote, error) {
	return f.createQuote(ctx, rateID)
}

func (f *fakeTravel) GetQuote(ctx context.Context, quoteID string) (*models.Quote, error) {
	return f.getQuote(ctx, quoteID)
}

func (f *fakeTravel) CreateBooking(ctx context.Context, req travel.BookingRequest) (*models.Booking, error) {
	f.bookCalls++
	return f.createBook(ctx, req)
}

func (f *fakeTravel) FlightOffer(ctx context.Context, offerID string) (*models.Offer, error) {
	return f.flightOffer(ctx, offerID)
}

func (f *fakeTravel) SeatMaps(ctx context.Context, offerID string) ([]models.Seat, error) {
	return f.seatMaps(ctx, offerID)
}

func (f *fakeTravel) BookFlight(ctx context.Context, req travel.FlightBookingRequest) (*models.Booking, error) {
	f.flightBookCalls++
	return f.bookFlight(ctx, req)
}

// fakePayment records created sessions and serves retrievals from a map
// keyed by session id.
type fakePayment struct {
	created  []payment.SessionRequest
	sessions map[string]*payment.Session
	createFn func(req payment.SessionRequest) (*payment.Session, error)
}

func newFakePayment() *fakePayment {
	return &fakePayment{sessions: map[string]*payment.Session{}}
}

func (f *fakePayment) CreateCheckoutSession(_ context.Context, req payment.SessionRequest) (*payment.Session, error) {
	f.created = append(f.created, req)
	if f.createFn != nil {
		return f.createFn(req)
	}
	return &payment.Session{
		ID:       "cs_test_1",
		URL:      "https://pay.example/cs_test_1",
		Currency: req.Currency,
		Metadata: req.Metadata,
	}, nil
}

func (f *fakePayment) RetrieveSession(_ context.Context, sessionID string) (*payment.Session, error) {
	if sess, ok := f.sessions[sessionID]; ok {
		return sess, nil
	}
	return nil, ErrNotFound
}

func audReconciler(tc travel.Client) *Reconciler {
	return &Reconciler{
		Travel:      tc,
		Allowed:     map[string]bool{"AUD": true},
		ZeroDecimal: map[string]bool{"JPY": true, "KRW": true},
		Logger:      zap.NewNop(),
	}
}

func newTestService(tc *fakeTravel, pp *fakePayment) *DefaultCheckoutService {
	rec := audReconciler(tc)
	return &DefaultCheckoutService{
		HotelStore:  NewMemoryContextStore(),
		FlightStore: NewMemoryContextStore(),
		HotelTTL:    15 * time.Minute,
		FlightTTL:   15 * time.Minute,
		Status:      NewMemoryStatusTracker(),
		Travel:      tc,
		Reconciler:  rec,
		Builder: &SessionBuilder{
			Payment:          pp,
			Reconciler:       rec,
			SuccessURL:       "https://app.example/success",
			FlightSuccessURL: "https://app.example/flight/success",
			CancelURL:        "https://app.example/cancel",
			Logger:           zap.NewNop(),
		},
		PublicBaseURL: "https://app.example",
		Logger:        zap.NewNop(),
	}
}
