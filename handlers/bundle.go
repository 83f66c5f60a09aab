package handlers

import "github.com/gin-gonic/gin"

// HandlerBundle aggregates every endpoint handler for route registration.
type HandlerBundle struct {
	// Web checkout endpoints.
	CheckoutPost       gin.HandlerFunc
	CheckoutLink       gin.HandlerFunc
	FlightCheckoutLink gin.HandlerFunc
	Success            gin.HandlerFunc
	FlightSuccess      gin.HandlerFunc
	Cancel             gin.HandlerFunc
	StripeWebhook      gin.HandlerFunc

	// Widget beacons.
	BlockNextHotelSearch  gin.HandlerFunc
	BlockNextFlightSearch gin.HandlerFunc
	BlockNextRoomRates    gin.HandlerFunc

	// Agent tool endpoints.
	StartHotelCheckout     gin.HandlerFunc
	StartFlightCheckout    gin.HandlerFunc
	FinalizeHotelCheckout  gin.HandlerFunc
	FinalizeFlightCheckout gin.HandlerFunc
	GetCheckoutStatus      gin.HandlerFunc
	SearchHotels           gin.HandlerFunc
	SearchFlights          gin.HandlerFunc
	FetchRoomRates         gin.HandlerFunc
	SelectHotelResult      gin.HandlerFunc
	SelectFlightOffer      gin.HandlerFunc
}
