package checkout

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"bookedai/models"
	"bookedai/services/travel"
)

// Reconciler re-derives authoritative prices from the travel provider and
// compares them against settled payment amounts. All comparison happens in
// exact integer minor units; no floating point anywhere.
type Reconciler struct {
	Travel      travel.Client
	Allowed     map[string]bool
	ZeroDecimal map[string]bool
	Logger      *zap.Logger
}

// CheckCurrency rejects currencies outside the allow-list.
func (r *Reconciler) CheckCurrency(currency string) error {
	currency = strings.ToUpper(currency)
	if !r.Allowed[currency] {
		return &UnsupportedCurrencyError{Currency: currency}
	}
	return nil
}

// MinorUnits converts a decimal amount string to integer minor units:
// cents for ordinary currencies, whole units for the zero-decimal set.
func (r *Reconciler) MinorUnits(amount, currency string) (int64, error) {
	currency = strings.ToUpper(currency)
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return 0, fmt.Errorf("empty amount")
	}
	if strings.HasPrefix(amount, "-") {
		return 0, fmt.Errorf("negative amount %q", amount)
	}

	intPart := amount
	fracPart := ""
	if i := strings.IndexByte(amount, '.'); i >= 0 {
		intPart, fracPart = amount[:i], amount[i+1:]
	}
	if intPart == "" {
		intPart = "0"
	}
	whole, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", amount, err)
	}

	if r.ZeroDecimal[currency] {
		if strings.Trim(fracPart, "0") != "" {
			return 0, fmt.Errorf("currency %s does not allow fractional amounts: %q", currency, amount)
		}
		return whole, nil
	}

	if len(fracPart) > 2 {
		return 0, fmt.Errorf("amount %q has more precision than %s allows", amount, currency)
	}
	for len(fracPart) < 2 {
		fracPart += "0"
	}
	cents, err := strconv.ParseInt(fracPart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	return whole*100 + cents, nil
}

// FormatMinor renders minor units back to a decimal string with
// currency-correct precision.
func (r *Reconciler) FormatMinor(minor int64, currency string) string {
	if r.ZeroDecimal[strings.ToUpper(currency)] {
		return strconv.FormatInt(minor, 10)
	}
	return fmt.Sprintf("%d.%02d", minor/100, minor%100)
}

// VerifySettled compares the payment provider's settled amount against the
// authoritative expected price. Exact-integer comparison; any difference
// is fatal.
func (r *Reconciler) VerifySettled(expAmount, expCurrency string, settledMinor int64, settledCurrency string) error {
	expCurrency = strings.ToUpper(expCurrency)
	settledCurrency = strings.ToUpper(settledCurrency)

	expMinor, err := r.MinorUnits(expAmount, expCurrency)
	if err != nil {
		return err
	}
	if expCurrency != settledCurrency || expMinor != settledMinor {
		mismatch := &PriceMismatchError{
			ExpectedAmount:   expAmount,
			ExpectedCurrency: expCurrency,
			SettledMinor:     settledMinor,
			SettledCurrency:  settledCurrency,
		}
		r.Logger.Warn("settled payment does not match authoritative price",
			zap.String("expected_amount", expAmount),
			zap.String("expected_currency", expCurrency),
			zap.Int64("settled_minor", settledMinor),
			zap.String("settled_currency", settledCurrency),
		)
		return mismatch
	}
	return nil
}

// HotelQuote locks the authoritative hotel price by creating a fresh quote
// for the rate. A previously displayed price is never trusted.
func (r *Reconciler) HotelQuote(ctx context.Context, rateID string) (*models.Quote, error) {
	quote, err := r.Travel.CreateQuote(ctx, rateID)
	if err != nil {
		return nil, &UpstreamError{Op: "create quote", Err: err}
	}
	if err := r.CheckCurrency(quote.TotalCurrency); err != nil {
		return nil, err
	}
	return quote, nil
}

// FlightPrice carries the authoritative flight total: the fresh offer
// fare plus recomputed seat ancillaries.
type FlightPrice struct {
	Currency   string
	BaseAmount string
	SeatTotal  string
	Amount     string
	Services   []models.ServiceItem
}

// AuthoritativeFlightPrice re-reads the offer and, when seats were
// selected, prices them against a freshly fetched seat map. Seat prices
// supplied by the client are ignored completely.
func (r *Reconciler) AuthoritativeFlightPrice(ctx context.Context, offerID string, seats []models.SeatSelection) (*FlightPrice, error) {
	offer, err := r.Travel.FlightOffer(ctx, offerID)
	if err != nil {
		return nil, &UpstreamError{Op: "fetch offer", Err: err}
	}
	currency := strings.ToUpper(offer.TotalCurrency)
	if err := r.CheckCurrency(currency); err != nil {
		return nil, err
	}

	baseMinor, err := r.MinorUnits(offer.TotalAmount, currency)
	if err != nil {
		return nil, fmt.Errorf("offer amount: %w", err)
	}

	var seatMinor int64
	var services []models.ServiceItem
	if len(seats) > 0 {
		seatMap, err := r.Travel.SeatMaps(ctx, offerID)
		if err != nil {
			return nil, &UpstreamError{Op: "fetch seat map", Err: err}
		}
		byService := make(map[string]models.Seat, len(seatMap))
		for _, seat := range seatMap {
			byService[seat.ServiceID] = seat
		}
		for _, sel := range seats {
			seat, ok := byService[sel.ServiceID]
			if !ok {
				return nil, fmt.Errorf("selected seat %s is not on the current seat map", sel.ServiceID)
			}
			if seat.Currency != "" && seat.Currency != currency {
				return nil, fmt.Errorf("seat %s priced in %s, offer in %s", sel.ServiceID, seat.Currency, currency)
			}
			price, err := r.MinorUnits(seat.Price, currency)
			if err != nil {
				return nil, fmt.Errorf("seat %s price: %w", sel.ServiceID, err)
			}
			seatMinor += price
			services = append(services, models.ServiceItem{ID: sel.ServiceID, Quantity: 1})
		}
	}

	return &FlightPrice{
		Currency:   currency,
		BaseAmount: offer.TotalAmount,
		SeatTotal:  r.FormatMinor(seatMinor, currency),
		Amount:     r.FormatMinor(baseMinor+seatMinor, currency),
		Services:   services,
	}, nil
}
