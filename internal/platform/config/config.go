package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName string
	HTTPPort    string
	BaseURL     string
	PostgresDSN string
	RedisAddr   string

	PaystackSecretKey string
	PaystackBaseURL   string
	GatewayTimeout    time.Duration

	VoteUnitPrice int64

	AdminPassword    string
	SessionSecret    string
	SessionTTL       time.Duration
	SweepPendingAge  time.Duration
	EnableSweeper    bool
	EnableOutboxDrip bool
}

func Load() (Config, error) {
	// .env is development convenience only; a missing file is not an error.
	_ = godotenv.Load()

	service := os.Getenv("SERVICE_NAME")
	if service == "" {
		service = "ovation"
	}

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080"
	}

	baseURL := strings.TrimRight(os.Getenv("BASE_URL"), "/")
	if baseURL == "" {
		baseURL = "http://localhost:" + port
	}

	gatewayBase := strings.TrimRight(os.Getenv("PAYSTACK_BASE_URL"), "/")
	if gatewayBase == "" {
		gatewayBase = "https://api.paystack.co"
	}

	unitPrice, err := envInt64("VOTE_UNIT_PRICE", 50)
	if err != nil {
		return Config{}, err
	}
	if unitPrice <= 0 {
		return Config{}, errors.New("VOTE_UNIT_PRICE must be positive")
	}

	gatewayTimeout, err := envDuration("GATEWAY_TIMEOUT", 15*time.Second)
	if err != nil {
		return Config{}, err
	}
	sessionTTL, err := envDuration("ADMIN_SESSION_TTL", time.Hour)
	if err != nil {
		return Config{}, err
	}
	sweepAge, err := envDuration("SWEEP_PENDING_AGE", 10*time.Minute)
	if err != nil {
		return Config{}, err
	}

	return Config{
		ServiceName: service,
		HTTPPort:    port,
		BaseURL:     baseURL,
		PostgresDSN: os.Getenv("POSTGRES_DSN"),
		RedisAddr:   strings.TrimSpace(os.Getenv("REDIS_ADDR")),

		PaystackSecretKey: os.Getenv("PAYSTACK_SECRET_KEY"),
		PaystackBaseURL:   gatewayBase,
		GatewayTimeout:    gatewayTimeout,

		VoteUnitPrice: unitPrice,

		AdminPassword:    os.Getenv("ADMIN_PASSWORD"),
		SessionSecret:    os.Getenv("SESSION_SECRET"),
		SessionTTL:       sessionTTL,
		SweepPendingAge:  sweepAge,
		EnableSweeper:    envBool("ENABLE_PENDING_SWEEPER", true),
		EnableOutboxDrip: envBool("ENABLE_OUTBOX_RELAY", true),
	}, nil
}

func envBool(name string, fallback bool) bool {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return fallback
	}
	switch raw {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return fallback
	}
}

func envInt64(name string, fallback int64) (int64, error) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errors.New(name + " must be an integer")
	}
	return value, nil
}

func envDuration(name string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback, nil
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return 0, errors.New(name + " must be a Go duration, e.g. 15s")
	}
	return value, nil
}
