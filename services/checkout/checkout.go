package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"bookedai/models"
	"bookedai/services/travel"
)

var validate = validator.New()

// StartHotelCheckoutRequest are the inputs for start_hotel_checkout.
type StartHotelCheckoutRequest struct {
	RateID              string         `json:"rate_id" validate:"required"`
	Email               string         `json:"email" validate:"required,email"`
	PhoneNumber         string         `json:"phone_number" validate:"required"`
	Guests              []models.Guest `json:"guests" validate:"required,min=1,dive"`
	SearchResultID      string         `json:"search_result_id"`
	StaySpecialRequests string         `json:"stay_special_requests"`
	HotelName           string         `json:"hotel_name"`
	RoomName            string         `json:"room_name"`
	Description         string         `json:"desc"`
}

// StartFlightCheckoutRequest are the inputs for start_flight_checkout.
// SeatPreference drives the two-step flow: a positional preference with no
// seats yet selected returns seat options instead of a payment link.
type StartFlightCheckoutRequest struct {
	OfferID        string                 `json:"offer_id" validate:"required"`
	Email          string                 `json:"email" validate:"required,email"`
	PhoneNumber    string                 `json:"phone_number" validate:"required"`
	Passengers     []models.Passenger     `json:"passengers" validate:"required,min=1,dive"`
	SeatPreference string                 `json:"seat_preference" validate:"required,oneof=aisle middle window none"`
	SelectedSeats  []models.SeatSelection `json:"selected_seats" validate:"dive"`
}

// DefaultCheckoutService owns the checkout orchestration core. The hotel
// and flight context stores, the status tracker, and the gate are its
// exclusive state; nothing else mutates them.
type DefaultCheckoutService struct {
	HotelStore  ContextStore
	FlightStore ContextStore
	HotelTTL    time.Duration
	FlightTTL   time.Duration

	Status     StatusTracker
	Travel     travel.Client
	Builder    *SessionBuilder
	Reconciler *Reconciler

	PublicBaseURL string
	Logger        *zap.Logger
}

// StartHotelCheckout validates the request, stores a hotel intent with a
// pending status, and returns the payment link. No amount is locked yet;
// the quote happens when the user follows the link.
func (s *DefaultCheckoutService) StartHotelCheckout(ctx context.Context, req StartHotelCheckoutRequest) (*models.CheckoutStart, error) {
	if err := validate.Struct(req); err != nil {
		return nil, asValidationError(err)
	}

	desc := req.Description
	if desc == "" {
		hotel := req.HotelName
		if hotel == "" {
			hotel = "Hotel"
		}
		room := req.RoomName
		if room == "" {
			room = "Room"
		}
		desc = fmt.Sprintf("%s - %s", hotel, room)
	}

	intent := models.CheckoutIntent{
		Kind:                models.KindHotel,
		RateID:              req.RateID,
		Email:               req.Email,
		PhoneNumber:         req.PhoneNumber,
		Guests:              req.Guests,
		SearchResultID:      req.SearchResultID,
		StaySpecialRequests: req.StaySpecialRequests,
		HotelName:           req.HotelName,
		RoomName:            req.RoomName,
		Description:         desc,
	}

	ctxID, err := s.HotelStore.Put(ctx, intent)
	if err != nil {
		return nil, fmt.Errorf("failed to store checkout intent: %w", err)
	}
	if err := s.Status.Set(ctx, models.CheckoutStatus{
		CtxID:     ctxID,
		Kind:      models.KindHotel,
		Status:    models.StatePending,
		Email:     req.Email,
		HotelName: req.HotelName,
		RoomName:  req.RoomName,
	}); err != nil {
		return nil, fmt.Errorf("failed to record checkout status: %w", err)
	}

	s.Logger.Info("hotel checkout started",
		zap.String("ctx_id", ctxID),
		zap.String("rate_id", req.RateID),
	)
	return &models.CheckoutStart{
		CtxID:       ctxID,
		CheckoutURL: fmt.Sprintf("%s/checkout/link?ctx_id=%s", s.PublicBaseURL, ctxID),
	}, nil
}

// StartFlightCheckout re-confirms the offer price, optionally walks the
// seat-selection step, and stores a flight intent whose total is already
// authoritative.
func (s *DefaultCheckoutService) StartFlightCheckout(ctx context.Context, req StartFlightCheckoutRequest) (*models.CheckoutStart, *models.SeatOptions, error) {
	if err := validate.Struct(req); err != nil {
		return nil, nil, asValidationError(err)
	}

	// Seat preference step: the user wants a seat but has not picked one.
	// Show current seat options; no intent is stored yet.
	if req.SeatPreference != "none" && len(req.SelectedSeats) == 0 {
		seats, err := s.Travel.SeatMaps(ctx, req.OfferID)
		if err != nil {
			return nil, nil, &UpstreamError{Op: "fetch seat map", Err: err}
		}
		filtered := make([]models.Seat, 0, len(seats))
		for _, seat := range seats {
			if seat.Position == req.SeatPreference {
				filtered = append(filtered, seat)
			}
		}
		if len(filtered) == 0 {
			// Heuristic found nothing for this preference; show all.
			filtered = seats
		}
		return nil, &models.SeatOptions{
			SeatPreference: req.SeatPreference,
			FilteredCount:  len(filtered),
			AllSeatsCount:  len(seats),
			AvailableSeats: filtered,
		}, nil
	}

	price, err := s.Reconciler.AuthoritativeFlightPrice(ctx, req.OfferID, req.SelectedSeats)
	if err != nil {
		return nil, nil, err
	}

	// Inject contact details into passengers for the booking request.
	pax := make([]models.Passenger, len(req.Passengers))
	for i, p := range req.Passengers {
		if p.Email == "" {
			p.Email = req.Email
		}
		if p.PhoneNumber == "" {
			p.PhoneNumber = req.PhoneNumber
		}
		pax[i] = p
	}

	intent := models.CheckoutIntent{
		Kind:        models.KindFlight,
		OfferID:     req.OfferID,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Passengers:  pax,
		Currency:    price.Currency,
		BaseAmount:  price.BaseAmount,
		SeatTotal:   price.SeatTotal,
		Amount:      price.Amount,
		Services:    price.Services,
	}

	ctxID, err := s.FlightStore.Put(ctx, intent)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to store checkout intent: %w", err)
	}
	if err := s.Status.Set(ctx, models.CheckoutStatus{
		CtxID:    ctxID,
		Kind:     models.KindFlight,
		Status:   models.StatePending,
		Amount:   price.Amount,
		Currency: price.Currency,
		Email:    req.Email,
	}); err != nil {
		return nil, nil, fmt.Errorf("failed to record checkout status: %w", err)
	}

	s.Logger.Info("flight checkout started",
		zap.String("ctx_id", ctxID),
		zap.String("offer_id", req.OfferID),
		zap.String("amount", price.Amount),
		zap.String("currency", price.Currency),
	)
	return &models.CheckoutStart{
		CtxID:       ctxID,
		CheckoutURL: fmt.Sprintf("%s/flight/checkout/link?ctx_id=%s", s.PublicBaseURL, ctxID),
		Currency:    price.Currency,
		Amount:      price.Amount,
		SeatTotal:   price.SeatTotal,
	}, nil, nil
}

// CreateHotelRedirect resolves a fresh hotel intent and mints its payment
// session, returning the hosted page URL.
func (s *DefaultCheckoutService) CreateHotelRedirect(ctx context.Context, ctxID string) (string, error) {
	intent, err := s.HotelStore.TakeIfFresh(ctx, ctxID, s.HotelTTL)
	if err != nil {
		return "", err
	}
	sess, err := s.Builder.BuildHotelSession(ctx, intent)
	if err != nil {
		return "", err
	}
	return sess.URL, nil
}

// CreateFlightRedirect does the same for flight intents.
func (s *DefaultCheckoutService) CreateFlightRedirect(ctx context.Context, ctxID string) (string, error) {
	intent, err := s.FlightStore.TakeIfFresh(ctx, ctxID, s.FlightTTL)
	if err != nil {
		return "", err
	}
	sess, err := s.Builder.BuildFlightSession(ctx, intent)
	if err != nil {
		return "", err
	}
	return sess.URL, nil
}

// GetStatus reports the last-known state for a ctx_id. Unknown ids come
// back as "unknown", deliberately indistinguishable from never-created.
func (s *DefaultCheckoutService) GetStatus(ctx context.Context, ctxID string) models.CheckoutStatus {
	status, err := s.Status.Get(ctx, ctxID)
	if err != nil {
		s.Logger.Warn("status lookup failed", zap.String("ctx_id", ctxID), zap.Error(err))
	}
	if status == nil {
		return models.CheckoutStatus{CtxID: ctxID, Status: models.StateUnknown}
	}
	return *status
}

func asValidationError(err error) error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return &ValidationError{Fields: []string{err.Error()}}
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Namespace())
	}
	return &ValidationError{Fields: fields}
}

var _ Service = (*DefaultCheckoutService)(nil)
