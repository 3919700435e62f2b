package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config captures environment driven configuration values for the
// reservations service.
type Config struct {
	HTTPPort           int
	SQLiteDSN          string
	SessionTTL         time.Duration
	PaymentTimeout     time.Duration
	PaymentSuccessRate float64
	PendingTTL         time.Duration
	SweepInterval      time.Duration
}

// Load parses configuration values from the current process environment. A
// .env file in the working directory is read first when present; real
// environment variables win over .env entries.
//
// The loader applies defaults for optional fields and reports every invalid
// value at once.
func Load() (Config, error) {
	// godotenv does not overwrite variables that are already set.
	_ = godotenv.Load()

	cfg := Config{
		HTTPPort:           8080,
		SQLiteDSN:          "file:hotel.db",
		SessionTTL:         24 * time.Hour,
		PaymentTimeout:     5 * time.Second,
		PaymentSuccessRate: 0.9,
		PendingTTL:         30 * time.Minute,
		SweepInterval:      time.Minute,
	}

	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("HOTEL_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "HOTEL_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("HOTEL_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if ttlValue := strings.TrimSpace(os.Getenv("HOTEL_SESSION_TTL")); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "HOTEL_SESSION_TTL")
		} else {
			cfg.SessionTTL = ttl
		}
	}

	if timeoutValue := strings.TrimSpace(os.Getenv("HOTEL_PAYMENT_TIMEOUT")); timeoutValue != "" {
		timeout, err := time.ParseDuration(timeoutValue)
		if err != nil || timeout <= 0 {
			invalid = append(invalid, "HOTEL_PAYMENT_TIMEOUT")
		} else {
			cfg.PaymentTimeout = timeout
		}
	}

	if rateValue := strings.TrimSpace(os.Getenv("HOTEL_PAYMENT_SUCCESS_RATE")); rateValue != "" {
		rate, err := strconv.ParseFloat(rateValue, 64)
		if err != nil || rate < 0 || rate > 1 {
			invalid = append(invalid, "HOTEL_PAYMENT_SUCCESS_RATE")
		} else {
			cfg.PaymentSuccessRate = rate
		}
	}

	if ttlValue := strings.TrimSpace(os.Getenv("HOTEL_PENDING_TTL")); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "HOTEL_PENDING_TTL")
		} else {
			cfg.PendingTTL = ttl
		}
	}

	if intervalValue := strings.TrimSpace(os.Getenv("HOTEL_SWEEP_INTERVAL")); intervalValue != "" {
		interval, err := time.ParseDuration(intervalValue)
		if err != nil || interval <= 0 {
			invalid = append(invalid, "HOTEL_SWEEP_INTERVAL")
		} else {
			cfg.SweepInterval = interval
		}
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
