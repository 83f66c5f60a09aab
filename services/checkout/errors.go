package checkout

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned for a ctx_id that has no stored intent.
var ErrNotFound = errors.New("checkout context not found")

// ErrExpired is returned for a ctx_id whose intent outlived its TTL. The
// entry is purged on the access that observes the expiry. Distinct from
// ErrNotFound so callers can tell "never existed" from "timed out".
var ErrExpired = errors.New("checkout context expired")

// ErrPaymentIncomplete is returned when finalization runs before the
// payment provider reports the session as paid. Not terminal: the user may
// still complete payment and the callback can be re-entered.
var ErrPaymentIncomplete = errors.New("payment not completed yet")

// ValidationError reports missing or malformed request fields. Reported
// immediately, never retried.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing or invalid fields: %s", strings.Join(e.Fields, ", "))
}

// PriceMismatchError means the settled payment does not match the
// authoritative price. Fatal: finalization is refused and never retried,
// since it indicates tampering or a stale price.
type PriceMismatchError struct {
	ExpectedAmount   string
	ExpectedCurrency string
	SettledMinor     int64
	SettledCurrency  string
}

func (e *PriceMismatchError) Error() string {
	return fmt.Sprintf("amount/currency mismatch: expected %s %s, settled %d minor units %s",
		e.ExpectedCurrency, e.ExpectedAmount, e.SettledMinor, e.SettledCurrency)
}

// UnsupportedCurrencyError rejects a currency outside the allow-list
// before any external call is made.
type UnsupportedCurrencyError struct {
	Currency string
}

func (e *UnsupportedCurrencyError) Error() string {
	return fmt.Sprintf("unsupported currency: %s", e.Currency)
}

// UpstreamError wraps a failed travel- or payment-provider call made
// before payment capture. Retryable by the caller.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// CapturedUnbookedError is the one failure that must never be hidden: the
// payment settled but the travel-provider booking failed. Retrying the
// booking automatically could double-book, so this is terminal and needs
// manual or compensating action.
type CapturedUnbookedError struct {
	CtxID string
	Err   error
}

func (e *CapturedUnbookedError) Error() string {
	return fmt.Sprintf("payment captured but booking failed for %s: %v", e.CtxID, e.Err)
}

func (e *CapturedUnbookedError) Unwrap() error { return e.Err }
