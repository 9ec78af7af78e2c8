package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("BOOKING_API_URL", "")
	t.Setenv("AVAILABILITY_TIMEOUT", "")
	t.Setenv("DB_HOST", "")
	t.Setenv("AUTH_SCHEME", "")

	cfg := Load()

	assert.Equal(t, "http://localhost:8000/api", cfg.BookingAPIURL)
	assert.Equal(t, "Token", cfg.AuthScheme)
	assert.Equal(t, 10*time.Second, cfg.AvailabilityTimeout)
	assert.False(t, cfg.TokenStoreEnabled())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("BOOKING_API_URL", "https://rentals.example.com/api")
	t.Setenv("AVAILABILITY_TIMEOUT", "3s")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PORT", "5434")

	cfg := Load()

	assert.Equal(t, "https://rentals.example.com/api", cfg.BookingAPIURL)
	assert.Equal(t, 3*time.Second, cfg.AvailabilityTimeout)
	assert.True(t, cfg.TokenStoreEnabled())
	assert.Contains(t, cfg.DSN(), "host=db port=5434")
}

func TestLoad_InvalidDurationFallsBack(t *testing.T) {
	t.Setenv("SESSION_TTL", "soon")

	cfg := Load()

	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
}
