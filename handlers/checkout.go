package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"bookedai/models"
	"bookedai/services/checkout"
	"bookedai/services/payment"
)

// CheckoutHandler serves the browser-facing checkout endpoints: redirect
// minting, the Stripe return pages, and the webhook.
type CheckoutHandler struct {
	Svc              checkout.Service
	Webhook          payment.WebhookVerifier
	WebhookSecretSet bool
	Logger           *zap.Logger
}

func NewCheckoutHandler(svc checkout.Service, verifier payment.WebhookVerifier, webhookSecretSet bool, logger *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		Svc:              svc,
		Webhook:          verifier,
		WebhookSecretSet: webhookSecretSet,
		Logger:           logger,
	}
}

// statusForError maps the checkout error taxonomy onto HTTP codes. Expired
// contexts get 410 so callers can tell "timed out" from plain 404.
func statusForError(err error) int {
	var valErr *checkout.ValidationError
	var ccyErr *checkout.UnsupportedCurrencyError
	var mismatch *checkout.PriceMismatchError
	var unbooked *checkout.CapturedUnbookedError
	var upstream *checkout.UpstreamError

	switch {
	case errors.As(err, &valErr), errors.As(err, &ccyErr), errors.As(err, &mismatch):
		return http.StatusBadRequest
	case errors.Is(err, checkout.ErrPaymentIncomplete):
		return http.StatusBadRequest
	case errors.Is(err, checkout.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, checkout.ErrExpired):
		return http.StatusGone
	case errors.As(err, &unbooked), errors.As(err, &upstream):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// CheckoutPost handles POST /checkout with a JSON {ctx_id} body and
// redirects to the hosted payment page.
func (h *CheckoutHandler) CheckoutPost(c *gin.Context) {
	var input struct {
		CtxID string `json:"ctx_id"`
	}
	if err := c.ShouldBindJSON(&input); err != nil || input.CtxID == "" {
		c.String(http.StatusBadRequest, "Missing ctx_id")
		return
	}
	h.redirectHotel(c, input.CtxID)
}

// CheckoutLink handles GET /checkout/link?ctx_id=..., the link-click
// variant used from chat.
func (h *CheckoutHandler) CheckoutLink(c *gin.Context) {
	ctxID := c.Query("ctx_id")
	if ctxID == "" {
		c.String(http.StatusBadRequest, "Missing ctx_id")
		return
	}
	h.redirectHotel(c, ctxID)
}

func (h *CheckoutHandler) redirectHotel(c *gin.Context, ctxID string) {
	url, err := h.Svc.CreateHotelRedirect(c.Request.Context(), ctxID)
	if err != nil {
		h.redirectError(c, ctxID, err)
		return
	}
	c.Redirect(http.StatusSeeOther, url)
}

// FlightCheckoutLink handles GET /flight/checkout/link?ctx_id=...
func (h *CheckoutHandler) FlightCheckoutLink(c *gin.Context) {
	ctxID := c.Query("ctx_id")
	if ctxID == "" {
		c.String(http.StatusBadRequest, "Missing ctx_id")
		return
	}
	url, err := h.Svc.CreateFlightRedirect(c.Request.Context(), ctxID)
	if err != nil {
		h.redirectError(c, ctxID, err)
		return
	}
	c.Redirect(http.StatusSeeOther, url)
}

func (h *CheckoutHandler) redirectError(c *gin.Context, ctxID string, err error) {
	status := statusForError(err)
	switch status {
	case http.StatusNotFound:
		c.String(status, "Unknown or expired ctx_id")
	case http.StatusGone:
		c.String(status, "Checkout link expired.")
	default:
		h.Logger.Error("checkout redirect failed", zap.String("ctx_id", ctxID), zap.Error(err))
		c.String(status, "Checkout error: %v", err)
	}
}

// Success handles the return from a settled hotel payment: verify,
// reconcile, book, confirm.
func (h *CheckoutHandler) Success(c *gin.Context) {
	h.finalize(c, h.Svc.FinalizeHotel, "Booking confirmed")
}

// FlightSuccess is the flight counterpart of Success.
func (h *CheckoutHandler) FlightSuccess(c *gin.Context) {
	h.finalize(c, h.Svc.FinalizeFlight, "Flight booking confirmed")
}

func (h *CheckoutHandler) finalize(c *gin.Context, fn func(ctx context.Context, sessionID string) (*models.CheckoutStatus, error), heading string) {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		c.String(http.StatusBadRequest, "Missing session_id")
		return
	}
	status, err := fn(c.Request.Context(), sessionID)
	if err != nil {
		h.finalizeError(c, sessionID, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(confirmationHTML(heading, status)))
}

func (h *CheckoutHandler) finalizeError(c *gin.Context, sessionID string, err error) {
	code := statusForError(err)
	var unbooked *checkout.CapturedUnbookedError
	switch {
	case errors.Is(err, checkout.ErrPaymentIncomplete):
		c.String(code, "Payment not completed yet.")
	case errors.Is(err, checkout.ErrExpired):
		c.String(code, "Checkout context expired before finalization. Please start a new checkout; if you were charged, contact support.")
	case errors.As(err, &unbooked):
		// The user has been charged. Say so plainly and do not retry.
		h.Logger.Error("finalize left payment captured but unbooked",
			zap.String("session_id", sessionID), zap.Error(err))
		c.String(code, "Your payment was received but the booking could not be completed. Support has been notified; do not pay again.")
	default:
		h.Logger.Error("finalize failed", zap.String("session_id", sessionID), zap.Error(err))
		c.String(code, "Finalize error: %v", err)
	}
}

// Cancel acknowledges an abandoned payment.
func (h *CheckoutHandler) Cancel(c *gin.Context) {
	c.String(http.StatusOK, "Payment canceled.")
}

// StripeWebhook ingests provider events. Signature verification is
// mandatory once a secret is configured; deliveries are at-least-once, so
// finalization from here is idempotent by construction.
func (h *CheckoutHandler) StripeWebhook(c *gin.Context) {
	if !h.WebhookSecretSet {
		c.String(http.StatusOK, "Webhook not configured.")
		return
	}
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.String(http.StatusBadRequest, "Failed to read payload")
		return
	}
	eventType, sessionID, err := h.Webhook.VerifyWebhook(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		c.String(http.StatusBadRequest, "Webhook signature error: %v", err)
		return
	}

	if eventType == "checkout.session.completed" && sessionID != "" {
		// Hotel sessions carry a quote_id; flight sessions do not. Try
		// hotel first and fall through on the metadata validation error.
		if _, err := h.Svc.FinalizeHotel(c.Request.Context(), sessionID); err != nil {
			var valErr *checkout.ValidationError
			if errors.As(err, &valErr) {
				_, err = h.Svc.FinalizeFlight(c.Request.Context(), sessionID)
			}
			if err != nil && !errors.Is(err, checkout.ErrPaymentIncomplete) {
				h.Logger.Warn("webhook finalize failed",
					zap.String("session_id", sessionID), zap.Error(err))
			}
		}
	}
	c.String(http.StatusOK, "ok")
}

func confirmationHTML(heading string, status *models.CheckoutStatus) string {
	ref := "booking_confirmed"
	if status.Booking != nil {
		if status.Booking.Reference != "" {
			ref = status.Booking.Reference
		} else if status.Booking.ID != "" {
			ref = status.Booking.ID
		}
	}
	receipt := "<p>Stripe receipt is not available for this payment.</p>"
	if status.ReceiptURL != "" {
		receipt = fmt.Sprintf("<p><a href=%q target=\"_blank\" rel=\"noopener noreferrer\">View Stripe receipt</a></p>", status.ReceiptURL)
	}
	return fmt.Sprintf(`<!doctype html>
<html>
  <head>
    <meta charset="utf-8">
    <title>Payment successful</title>
  </head>
  <body style="font-family: system-ui; padding: 24px; max-width: 640px; margin: 0 auto;">
    <h1>%s</h1>

    <section style="margin-top: 16px;">
      <p><strong>Reference:</strong> %s</p>
      <p><strong>Paid:</strong> %s %s</p>
    </section>

    <section style="margin-top: 16px;">
      %s
    </section>

    <hr style="margin: 24px 0;">

    <p>You can now return to the chat to continue planning.</p>
  </body>
</html>`, heading, ref, status.Currency, status.Amount, receipt)
}
