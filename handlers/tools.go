package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"bookedai/models"
	"bookedai/services/checkout"
	"bookedai/services/search"
	"bookedai/utils"
)

type finalizeFunc func(ctx context.Context, sessionID string) (*models.CheckoutStatus, error)

// ToolsHandler serves the agent-facing tool endpoints under /api/tools.
// The searches are gated: a widget selection trips a one-shot latch and
// the next matching search is refused with instructions instead of
// re-running and clobbering the user's pick.
type ToolsHandler struct {
	Svc    checkout.Service
	Search search.Service
	Gate   checkout.Gate
	Logger *zap.Logger
}

func NewToolsHandler(svc checkout.Service, searchSvc search.Service, gate checkout.Gate, logger *zap.Logger) *ToolsHandler {
	return &ToolsHandler{Svc: svc, Search: searchSvc, Gate: gate, Logger: logger}
}

func (h *ToolsHandler) toolError(c *gin.Context, err error) {
	status := statusForError(err)
	var valErr *checkout.ValidationError
	if errors.As(err, &valErr) {
		c.JSON(status, gin.H{"message": "Validation failed", "fields": valErr.Fields})
		return
	}
	if status >= http.StatusInternalServerError {
		h.Logger.Error("tool call failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	utils.JSONError(c, status, http.StatusText(status), err.Error())
}

// StartHotelCheckout handles POST /api/tools/start_hotel_checkout.
func (h *ToolsHandler) StartHotelCheckout(c *gin.Context) {
	var req checkout.StartHotelCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	start, err := h.Svc.StartHotelCheckout(c.Request.Context(), req)
	if err != nil {
		h.toolError(c, err)
		return
	}
	c.JSON(http.StatusOK, start)
}

// StartFlightCheckout handles POST /api/tools/start_flight_checkout. When
// the passenger wants a positioned seat but none is selected yet, the
// response is the seat option list rather than a payment link.
func (h *ToolsHandler) StartFlightCheckout(c *gin.Context) {
	var req checkout.StartFlightCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	start, seats, err := h.Svc.StartFlightCheckout(c.Request.Context(), req)
	if err != nil {
		h.toolError(c, err)
		return
	}
	if seats != nil {
		c.JSON(http.StatusOK, gin.H{
			"needs_seat_selection": true,
			"seat_options":         seats,
		})
		return
	}
	c.JSON(http.StatusOK, start)
}

// FinalizeHotelCheckout handles POST /api/tools/finalize_hotel_checkout.
func (h *ToolsHandler) FinalizeHotelCheckout(c *gin.Context) {
	h.finalizeTool(c, h.Svc.FinalizeHotel)
}

// FinalizeFlightCheckout handles POST /api/tools/finalize_flight_checkout.
func (h *ToolsHandler) FinalizeFlightCheckout(c *gin.Context) {
	h.finalizeTool(c, h.Svc.FinalizeFlight)
}

func (h *ToolsHandler) finalizeTool(c *gin.Context, fn finalizeFunc) {
	var input struct {
		SessionID string `json:"session_id"`
	}
	if err := c.ShouldBindJSON(&input); err != nil || strings.TrimSpace(input.SessionID) == "" {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request body", "session_id is required")
		return
	}
	status, err := fn(c.Request.Context(), input.SessionID)
	if err != nil {
		h.toolError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// GetCheckoutStatus handles GET /api/tools/checkout_status?ctx_id=...
// An id this service never issued reads as status "unknown", not 404.
func (h *ToolsHandler) GetCheckoutStatus(c *gin.Context) {
	ctxID := c.Query("ctx_id")
	if ctxID == "" {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request", "ctx_id is required")
		return
	}
	c.JSON(http.StatusOK, h.Svc.GetStatus(c.Request.Context(), ctxID))
}

// SearchHotels handles POST /api/tools/search_hotels with the hotel gate
// in front of the upstream call.
func (h *ToolsHandler) SearchHotels(c *gin.Context) {
	tripped, err := h.Gate.ConsumeIfTripped(c.Request.Context(), checkout.GateHotelSearch)
	if err != nil {
		h.toolError(c, err)
		return
	}
	if tripped {
		h.Logger.Info("hotel search blocked by widget selection")
		c.JSON(http.StatusConflict, gin.H{
			"skipped": true,
			"reason":  "widget_selection",
			"message": "Hotel search was blocked because the user just selected a hotel in the widget. " +
				"Do NOT search again for this selection. Instead: " +
				"1) call select_hotel_result with the selected hotel details, and " +
				"2) call fetch_room_rates with that search_result_id to show room options.",
		})
		return
	}
	var params search.HotelSearchParams
	if err := c.ShouldBindJSON(&params); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	raw, err := h.Search.SearchHotels(c.Request.Context(), params)
	if err != nil {
		h.toolError(c, &checkout.UpstreamError{Op: "search hotels", Err: err})
		return
	}
	c.Data(http.StatusOK, "application/json", raw)
}

// SearchFlights handles POST /api/tools/search_flights behind the flight
// gate.
func (h *ToolsHandler) SearchFlights(c *gin.Context) {
	tripped, err := h.Gate.ConsumeIfTripped(c.Request.Context(), checkout.GateFlightSearch)
	if err != nil {
		h.toolError(c, err)
		return
	}
	if tripped {
		h.Logger.Info("flight search blocked by widget selection")
		c.JSON(http.StatusConflict, gin.H{
			"skipped": true,
			"reason":  "widget_selection",
			"message": "Flight search was blocked because the user just selected a flight in the widget. " +
				"Do NOT search again for this selection. Instead: " +
				"1) call select_flight_offer with the selected flight details, and " +
				"2) ask the user for seat preference (aisle/middle/window/none), passenger details, " +
				"email, and phone number before calling start_flight_checkout.",
		})
		return
	}
	var params search.FlightSearchParams
	if err := c.ShouldBindJSON(&params); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	raw, err := h.Search.SearchFlights(c.Request.Context(), params)
	if err != nil {
		h.toolError(c, &checkout.UpstreamError{Op: "search flights", Err: err})
		return
	}
	c.Data(http.StatusOK, "application/json", raw)
}

// FetchRoomRates handles POST /api/tools/fetch_room_rates behind the room
// gate.
func (h *ToolsHandler) FetchRoomRates(c *gin.Context) {
	tripped, err := h.Gate.ConsumeIfTripped(c.Request.Context(), checkout.GateRoomRates)
	if err != nil {
		h.toolError(c, err)
		return
	}
	if tripped {
		h.Logger.Info("room rates fetch blocked by widget selection")
		c.JSON(http.StatusConflict, gin.H{
			"skipped": true,
			"reason":  "widget_room_selection",
			"message": "Room rates fetch was blocked because the user just selected a room in the widget. " +
				"Do NOT fetch rates again for this selection. Proceed towards booking: " +
				"use the room rate already selected (rate_id, hotel_name, room_name), " +
				"ask the user for guest names, email, phone number and special requests, " +
				"then call start_hotel_checkout with those details.",
		})
		return
	}
	var input struct {
		SearchResultID string `json:"search_result_id"`
	}
	if err := c.ShouldBindJSON(&input); err != nil || strings.TrimSpace(input.SearchResultID) == "" {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request body", "search_result_id is required")
		return
	}
	raw, err := h.Search.RoomRates(c.Request.Context(), input.SearchResultID)
	if err != nil {
		h.toolError(c, &checkout.UpstreamError{Op: "fetch room rates", Err: err})
		return
	}
	c.Data(http.StatusOK, "application/json", raw)
}

// SelectHotelResult handles POST /api/tools/select_hotel_result. It only
// records the pick so the conversation can reference it; nothing is
// stored server-side.
func (h *ToolsHandler) SelectHotelResult(c *gin.Context) {
	var input struct {
		SearchResultID string   `json:"search_result_id"`
		HotelID        string   `json:"hotel_id"`
		HotelName      string   `json:"hotel_name"`
		Location       string   `json:"location"`
		Price          string   `json:"price"`
		Rating         *float64 `json:"rating"`
		Amenities      []string `json:"amenities"`
	}
	if err := c.ShouldBindJSON(&input); err != nil || strings.TrimSpace(input.SearchResultID) == "" {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request body", "search_result_id is required")
		return
	}
	h.Logger.Info("hotel result selected",
		zap.String("search_result_id", input.SearchResultID),
		zap.String("hotel_name", input.HotelName),
	)
	c.JSON(http.StatusOK, gin.H{
		"selected":         true,
		"search_result_id": input.SearchResultID,
		"hotel_id":         input.HotelID,
		"hotel_name":       input.HotelName,
		"location":         input.Location,
		"price":            input.Price,
		"rating":           input.Rating,
		"amenities":        input.Amenities,
		"next_step":        "Call fetch_room_rates with this search_result_id to show room options.",
	})
}

// SelectFlightOffer handles POST /api/tools/select_flight_offer.
func (h *ToolsHandler) SelectFlightOffer(c *gin.Context) {
	var input struct {
		OfferID       string `json:"offer_id"`
		Airline       string `json:"airline"`
		Route         string `json:"route"`
		Date          string `json:"date"`
		DepartureTime string `json:"departure_time"`
		ArrivalTime   string `json:"arrival_time"`
		Price         string `json:"price"`
	}
	if err := c.ShouldBindJSON(&input); err != nil || strings.TrimSpace(input.OfferID) == "" {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request body", "offer_id is required")
		return
	}
	h.Logger.Info("flight offer selected",
		zap.String("offer_id", input.OfferID),
		zap.String("route", input.Route),
	)
	c.JSON(http.StatusOK, gin.H{
		"selected":  true,
		"offer_id":  input.OfferID,
		"airline":   input.Airline,
		"route":     input.Route,
		"date":      input.Date,
		"price":     input.Price,
		"next_step": "Ask for seat preference (aisle/middle/window/none), passenger details, email, and phone number, then call start_flight_checkout.",
	})
}
