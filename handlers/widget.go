package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"bookedai/services/checkout"
)

// WidgetHandler receives the selection beacons the chat widget fires when
// the user clicks a result card. Each beacon trips the matching one-shot
// gate. Beacons are fire-and-forget from the widget's side, so the
// response is always "ok" no matter what the body holds.
type WidgetHandler struct {
	Gate   checkout.Gate
	Logger *zap.Logger
}

func NewWidgetHandler(gate checkout.Gate, logger *zap.Logger) *WidgetHandler {
	return &WidgetHandler{Gate: gate, Logger: logger}
}

func (h *WidgetHandler) BlockNextHotelSearch(c *gin.Context) {
	h.trip(c, checkout.GateHotelSearch)
}

func (h *WidgetHandler) BlockNextFlightSearch(c *gin.Context) {
	h.trip(c, checkout.GateFlightSearch)
}

func (h *WidgetHandler) BlockNextRoomRates(c *gin.Context) {
	h.trip(c, checkout.GateRoomRates)
}

func (h *WidgetHandler) trip(c *gin.Context, kind checkout.GateKind) {
	if err := h.Gate.Trip(c.Request.Context(), kind); err != nil {
		// The widget cannot act on a failure; log and acknowledge anyway.
		h.Logger.Warn("failed to trip search gate",
			zap.String("kind", string(kind)), zap.Error(err))
	} else {
		h.Logger.Info("search gate tripped", zap.String("kind", string(kind)))
	}
	c.String(http.StatusOK, "ok")
}
