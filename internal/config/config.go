// README: Config loader with env defaults for HTTP, secret store, sessions, flights and AI.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// FlightPolicy decides what happens when flights were requested but cannot be looked up.
type FlightPolicy string

const (
	// FlightPolicyRequired aborts the whole itinerary request.
	FlightPolicyRequired FlightPolicy = "required"
	// FlightPolicyBestEffort logs the failure and plans without flight data.
	FlightPolicyBestEffort FlightPolicy = "best_effort"
)

type FlightsConfig struct {
	Policy     FlightPolicy
	APIURL     string
	Currency   string
	MaxResults int
}

type ChatConfig struct {
	SessionTTL    time.Duration
	HistoryWindow int
}

type Config struct {
	HTTP struct {
		Addr string
	}
	DB struct {
		DSN string
	}
	Redis struct {
		Addr string
	}
	AI struct {
		Model string
		// FallbackGeminiKey is the legacy build-time key, consulted only when
		// the secret table has no row for the generation credential.
		FallbackGeminiKey string
	}
	Flights  FlightsConfig
	Chat     ChatConfig
	LogLevel string
}

func Load() (Config, error) {
	var cfg Config
	cfg.HTTP.Addr = envOrDefault("WAYFARER_HTTP_ADDR", ":8080")
	cfg.DB.DSN = envOrDefault("WAYFARER_DB_DSN", "")
	cfg.Redis.Addr = envOrDefault("WAYFARER_REDIS_ADDR", "")
	cfg.AI.Model = envOrDefault("WAYFARER_GEMINI_MODEL", "gemini-1.5-flash")
	cfg.AI.FallbackGeminiKey = envOrDefault("GEMINI_API_KEY", "")

	cfg.Flights.Policy = FlightPolicy(strings.ToLower(envOrDefault("WAYFARER_FLIGHT_POLICY", string(FlightPolicyRequired))))
	cfg.Flights.APIURL = envOrDefault("WAYFARER_FLIGHT_API_URL", "https://serpapi.com/search.json")
	cfg.Flights.Currency = envOrDefault("WAYFARER_FLIGHT_CURRENCY", "USD")
	cfg.Flights.MaxResults = envOrDefaultInt("WAYFARER_MAX_FLIGHTS", 5)

	cfg.Chat.SessionTTL = time.Duration(envOrDefaultInt("WAYFARER_SESSION_TTL_MINUTES", 60)) * time.Minute
	cfg.Chat.HistoryWindow = envOrDefaultInt("WAYFARER_CHAT_HISTORY_WINDOW", 0)

	cfg.LogLevel = envOrDefault("WAYFARER_LOG_LEVEL", "info")

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the services cannot run with.
func (c Config) Validate() error {
	switch c.Flights.Policy {
	case FlightPolicyRequired, FlightPolicyBestEffort:
	default:
		return fmt.Errorf("config: unknown flight policy %q", c.Flights.Policy)
	}
	if c.Flights.MaxResults <= 0 {
		return fmt.Errorf("config: WAYFARER_MAX_FLIGHTS must be positive, got %d", c.Flights.MaxResults)
	}
	if c.Chat.HistoryWindow < 0 {
		return fmt.Errorf("config: WAYFARER_CHAT_HISTORY_WINDOW must not be negative, got %d", c.Chat.HistoryWindow)
	}
	if c.Chat.SessionTTL <= 0 {
		return fmt.Errorf("config: WAYFARER_SESSION_TTL_MINUTES must be positive")
	}
	return nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
