package travel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"bookedai/models"
)

// DuffelClient talks to a Duffel-compatible stays/air API.
type DuffelClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewDuffelClient(baseURL, apiKey string) *DuffelClient {
	return &DuffelClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// envelope is Duffel's standard {"data": ...} wrapper.
type envelope struct {
	Data json.RawMessage `json:"data"`
}

func (d *DuffelClient) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(map[string]any{"data": body})
		if err != nil {
			return fmt.Errorf("encoding request failed: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, d.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("building request failed: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+d.apiKey)
	req.Header.Set("Duffel-Version", "v2")
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response failed: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("travel provider returned %d: %s", resp.StatusCode, truncate(raw, 256))
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("decoding response failed: %w", err)
	}
	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decoding response data failed: %w", err)
		}
	}
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

func (d *DuffelClient) CreateQuote(ctx context.Context, rateID string) (*models.Quote, error) {
	var quote models.Quote
	body := map[string]string{"rate_id": rateID}
	if err := d.do(ctx, http.MethodPost, "/stays/quotes", body, &quote); err != nil {
		return nil, fmt.Errorf("quote creation failed: %w", err)
	}
	if quote.ID == "" || quote.TotalAmount == "" || quote.TotalCurrency == "" {
		return nil, fmt.Errorf("quote response missing id/amount/currency")
	}
	quote.TotalCurrency = strings.ToUpper(quote.TotalCurrency)
	return &quote, nil
}

func (d *DuffelClient) GetQuote(ctx context.Context, quoteID string) (*models.Quote, error) {
	var quote models.Quote
	if err := d.do(ctx, http.MethodGet, "/stays/quotes/"+quoteID, nil, &quote); err != nil {
		return nil, fmt.Errorf("quote fetch failed: %w", err)
	}
	quote.TotalCurrency = strings.ToUpper(quote.TotalCurrency)
	return &quote, nil
}

func (d *DuffelClient) CreateBooking(ctx context.Context, req BookingRequest) (*models.Booking, error) {
	body := map[string]any{
		"quote_id":     req.QuoteID,
		"guests":       req.Guests,
		"email":        req.Email,
		"phone_number": req.PhoneNumber,
		"payment":      req.Payment,
	}
	if req.StaySpecialRequests != "" {
		body["stay_special_requests"] = req.StaySpecialRequests
	}
	var booking models.Booking
	if err := d.do(ctx, http.MethodPost, "/stays/bookings", body, &booking); err != nil {
		return nil, fmt.Errorf("booking creation failed: %w", err)
	}
	return &booking, nil
}

func (d *DuffelClient) FlightOffer(ctx context.Context, offerID string) (*models.Offer, error) {
	var offer models.Offer
	if err := d.do(ctx, http.MethodGet, "/air/offers/"+offerID, nil, &offer); err != nil {
		return nil, fmt.Errorf("offer fetch failed: %w", err)
	}
	if offer.TotalAmount == "" || offer.TotalCurrency == "" {
		return nil, fmt.Errorf("offer response missing amount/currency")
	}
	offer.TotalCurrency = strings.ToUpper(offer.TotalCurrency)
	return &offer, nil
}

// seatMapRow is the subset of a seat map service entry we care about.
type seatMapRow struct {
	ServiceID  string `json:"service_id"`
	Designator string `json:"designator"`
	Cabin      string `json:"cabin_class"`
	Price      string `json:"price"`
	Currency   string `json:"currency"`
	Available  bool   `json:"available"`
}

func (d *DuffelClient) SeatMaps(ctx context.Context, offerID string) ([]models.Seat, error) {
	var rows []seatMapRow
	if err := d.do(ctx, http.MethodGet, "/air/seat_maps?offer_id="+offerID, nil, &rows); err != nil {
		return nil, fmt.Errorf("seat map fetch failed: %w", err)
	}
	seats := make([]models.Seat, 0, len(rows))
	for _, row := range rows {
		if !row.Available {
			continue
		}
		seats = append(seats, models.Seat{
			ServiceID:  row.ServiceID,
			Designator: row.Designator,
			Cabin:      row.Cabin,
			Position:   SeatPosition(row.Designator),
			Price:      row.Price,
			Currency:   strings.ToUpper(row.Currency),
			Available:  true,
		})
	}
	return seats, nil
}

func (d *DuffelClient) BookFlight(ctx context.Context, req FlightBookingRequest) (*models.Booking, error) {
	body := map[string]any{
		"type":            "instant",
		"selected_offers": []string{req.OfferID},
		"passengers":      req.Passengers,
		"payments":        req.Payments,
	}
	if len(req.Services) > 0 {
		body["services"] = req.Services
	}
	var booking models.Booking
	if err := d.do(ctx, http.MethodPost, "/air/orders", body, &booking); err != nil {
		return nil, fmt.Errorf("flight booking failed: %w", err)
	}
	return &booking, nil
}

// SeatPosition maps a seat designator's letter to window/aisle/middle.
// Rough heuristic only; unknown letters yield an empty position.
func SeatPosition(designator string) string {
	if designator == "" {
		return ""
	}
	switch strings.ToUpper(designator[len(designator)-1:]) {
	case "A", "F", "K", "L":
		return "window"
	case "C", "D", "G", "H":
		return "aisle"
	case "B", "E":
		return "middle"
	}
	return ""
}
