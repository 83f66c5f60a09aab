package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v76"

	"bookedai/config"
	"bookedai/handlers"
	"bookedai/middleware"
	"bookedai/routes"
	"bookedai/services/checkout"
	"bookedai/services/payment"
	"bookedai/services/search"
	"bookedai/services/travel"
	"bookedai/utils"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())
	stripe.Key = config.AppConfig.StripeSecretKey

	// Checkout state: in-process by default, Redis when running more than
	// one instance behind a balancer.
	var hotelStore, flightStore checkout.ContextStore
	var statusTracker checkout.StatusTracker
	var gate checkout.Gate
	hotelTTL := time.Duration(config.AppConfig.CheckoutTTLSeconds) * time.Second
	flightTTL := time.Duration(config.AppConfig.FlightCheckoutTTLSeconds) * time.Second

	if config.AppConfig.CheckoutStoreBackend == "redis" {
		ctxCache := utils.GetContextCacheClient()
		stateCache := utils.GetStateCacheClient()
		hotelStore = checkout.NewRedisContextStore(ctxCache, "checkout:hotel:", hotelTTL)
		flightStore = checkout.NewRedisContextStore(ctxCache, "checkout:flight:", flightTTL)
		statusTracker = checkout.NewRedisStatusTracker(stateCache, "checkout:status:")
		gate = checkout.NewRedisGate(stateCache, "checkout:gate:")
	} else {
		hotelStore = checkout.NewMemoryContextStore()
		flightStore = checkout.NewMemoryContextStore()
		statusTracker = checkout.NewMemoryStatusTracker()
		gate = checkout.NewMemoryGate()
	}

	// Collaborators.
	travelClient := travel.NewDuffelClient(config.AppConfig.TravelAPIURL, config.AppConfig.TravelAPIKey)
	searchClient := search.NewUpstreamClient(config.AppConfig.SearchAPIURL)
	provider := payment.NewStripeProvider(config.AppConfig.StripeWebhookSecret)

	reconciler := &checkout.Reconciler{
		Travel:      travelClient,
		Allowed:     config.CurrencyAllowList(),
		ZeroDecimal: config.ZeroDecimalSet(),
		Logger:      logger,
	}

	successURL := config.AppConfig.SuccessURL
	builder := &checkout.SessionBuilder{
		Payment:          provider,
		Reconciler:       reconciler,
		SuccessURL:       successURL,
		FlightSuccessURL: strings.Replace(successURL, "/success", "/flight/success", 1),
		CancelURL:        config.AppConfig.CancelURL,
		Logger:           logger,
	}

	checkoutService := &checkout.DefaultCheckoutService{
		HotelStore:    hotelStore,
		FlightStore:   flightStore,
		HotelTTL:      hotelTTL,
		FlightTTL:     flightTTL,
		Status:        statusTracker,
		Travel:        travelClient,
		Builder:       builder,
		Reconciler:    reconciler,
		PublicBaseURL: config.AppConfig.PublicBaseURL,
		Logger:        logger,
	}

	webhookSecretSet := config.AppConfig.StripeWebhookSecret != ""
	checkoutHandler := handlers.NewCheckoutHandler(checkoutService, provider, webhookSecretSet, logger)
	toolsHandler := handlers.NewToolsHandler(checkoutService, searchClient, gate, logger)
	widgetHandler := handlers.NewWidgetHandler(gate, logger)

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		CheckoutPost:       checkoutHandler.CheckoutPost,
		CheckoutLink:       checkoutHandler.CheckoutLink,
		FlightCheckoutLink: checkoutHandler.FlightCheckoutLink,
		Success:            checkoutHandler.Success,
		FlightSuccess:      checkoutHandler.FlightSuccess,
		Cancel:             checkoutHandler.Cancel,
		StripeWebhook:      checkoutHandler.StripeWebhook,

		BlockNextHotelSearch:  widgetHandler.BlockNextHotelSearch,
		BlockNextFlightSearch: widgetHandler.BlockNextFlightSearch,
		BlockNextRoomRates:    widgetHandler.BlockNextRoomRates,

		StartHotelCheckout:     toolsHandler.StartHotelCheckout,
		StartFlightCheckout:    toolsHandler.StartFlightCheckout,
		FinalizeHotelCheckout:  toolsHandler.FinalizeHotelCheckout,
		FinalizeFlightCheckout: toolsHandler.FinalizeFlightCheckout,
		GetCheckoutStatus:      toolsHandler.GetCheckoutStatus,
		SearchHotels:           toolsHandler.SearchHotels,
		SearchFlights:          toolsHandler.SearchFlights,
		FetchRoomRates:         toolsHandler.FetchRoomRates,
		SelectHotelResult:      toolsHandler.SelectHotelResult,
		SelectFlightOffer:      toolsHandler.SelectFlightOffer,
	}

	// Register routes with the assembled handler bundle.
	routes.SetupRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
