package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"bookedai/handlers"
)

// RegisterCheckoutRoutes registers the browser-facing checkout endpoints:
// redirect minting, the Stripe return pages, and the webhook.
func RegisterCheckoutRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.POST("/checkout", hb.CheckoutPost)
	r.GET("/checkout/link", hb.CheckoutLink)
	r.GET("/flight/checkout/link", hb.FlightCheckoutLink)
	r.GET("/success", hb.Success)
	r.GET("/flight/success", hb.FlightSuccess)
	r.GET("/cancel", hb.Cancel)
	r.POST("/stripe/webhook", hb.StripeWebhook)
}

// RegisterWidgetRoutes registers the selection beacons fired by the chat
// widget.
func RegisterWidgetRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	widget := r.Group("/widget")
	{
		widget.POST("/hotel/block_next", hb.BlockNextHotelSearch)
		widget.POST("/flight/block_next", hb.BlockNextFlightSearch)
		widget.POST("/room/block_next", hb.BlockNextRoomRates)
	}
}

// RegisterToolRoutes registers the agent-facing tool endpoints.
func RegisterToolRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	tools := r.Group("/api/tools")
	{
		tools.POST("/start_hotel_checkout", hb.StartHotelCheckout)
		tools.POST("/start_flight_checkout", hb.StartFlightCheckout)
		tools.POST("/finalize_hotel_checkout", hb.FinalizeHotelCheckout)
		tools.POST("/finalize_flight_checkout", hb.FinalizeFlightCheckout)
		tools.GET("/checkout_status", hb.GetCheckoutStatus)

		tools.POST("/search_hotels", hb.SearchHotels)
		tools.POST("/search_flights", hb.SearchFlights)
		tools.POST("/fetch_room_rates", hb.FetchRoomRates)

		tools.POST("/select_hotel_result", hb.SelectHotelResult)
		tools.POST("/select_flight_offer", hb.SelectFlightOffer)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "bookedai checkout up"})
	})
}

// SetupRoutes wires CORS and every route group. The widget beacons and
// the hosted-payment return pages are hit cross-origin, so CORS stays
// permissive.
func SetupRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Stripe-Signature"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	RegisterCheckoutRoutes(r, hb)
	RegisterWidgetRoutes(r, hb)
	RegisterToolRoutes(r, hb)
	RegisterHealthRoute(r)
}
