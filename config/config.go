package config

import (
	"log"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Stripe configuration.
	StripeSecretKey     string `mapstructure:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret string `mapstructure:"STRIPE_WEBHOOK_SECRET"`

	// Public URLs handed to Stripe for redirect flows.
	PublicBaseURL string `mapstructure:"PUBLIC_BASE_URL"`
	SuccessURL    string `mapstructure:"SUCCESS_URL"`
	CancelURL     string `mapstructure:"CANCEL_URL"`

	// Checkout context TTLs, in seconds. Hotel and flight intents
	// expire independently.
	CheckoutTTLSeconds       int `mapstructure:"CHECKOUT_TTL_SECONDS"`
	FlightCheckoutTTLSeconds int `mapstructure:"FLIGHT_CHECKOUT_TTL_SECONDS"`

	// Currency handling. Whitelist entries are upper-cased ISO codes.
	CurrencyWhitelist     string `mapstructure:"CURRENCY_WHITELIST"`
	ZeroDecimalCurrencies string `mapstructure:"ZERO_DECIMAL_CURRENCIES"`

	// Travel provider (Duffel-compatible) configuration.
	TravelAPIURL string `mapstructure:"TRAVEL_API_URL"`
	TravelAPIKey string `mapstructure:"TRAVEL_API_KEY"`

	// Upstream search tool server (opaque collaborator).
	SearchAPIURL string `mapstructure:"SEARCH_API_URL"`

	// Checkout state backend: "memory" for a single instance,
	// "redis" when running more than one replica.
	CheckoutStoreBackend string `mapstructure:"CHECKOUT_STORE_BACKEND"`

	// Redis configuration.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisContextDB int   `mapstructure:"REDIS_CONTEXT_DB"`
	RedisStateDB   int   `mapstructure:"REDIS_STATE_DB"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("PUBLIC_BASE_URL", "http://localhost:8080")
	viper.SetDefault("SUCCESS_URL", "http://localhost:8080/success")
	viper.SetDefault("CANCEL_URL", "http://localhost:8080/cancel")
	viper.SetDefault("CHECKOUT_TTL_SECONDS", 900)
	viper.SetDefault("FLIGHT_CHECKOUT_TTL_SECONDS", 900)
	viper.SetDefault("CURRENCY_WHITELIST", "AUD")
	viper.SetDefault("ZERO_DECIMAL_CURRENCIES", "JPY,KRW")
	viper.SetDefault("TRAVEL_API_URL", "https://api.duffel.com")
	viper.SetDefault("SEARCH_API_URL", "")
	viper.SetDefault("CHECKOUT_STORE_BACKEND", "memory")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CONTEXT_DB", 0)
	viper.SetDefault("REDIS_STATE_DB", 1)

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}

// CurrencyAllowList returns the configured whitelist as a set of
// upper-cased currency codes.
func CurrencyAllowList() map[string]bool {
	return splitCurrencySet(AppConfig.CurrencyWhitelist)
}

// ZeroDecimalSet returns the configured zero-decimal currencies as a set.
func ZeroDecimalSet() map[string]bool {
	return splitCurrencySet(AppConfig.ZeroDecimalCurrencies)
}

func splitCurrencySet(raw string) map[string]bool {
	set := make(map[string]bool)
	for _, code := range strings.Split(raw, ",") {
		code = strings.ToUpper(strings.TrimSpace(code))
		if code != "" {
			set[code] = true
		}
	}
	return set
}
