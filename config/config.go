package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort string

	BookingAPIURL       string
	AuthScheme          string
	LoginURL            string
	RequestTimeout      time.Duration
	AvailabilityTimeout time.Duration
	SessionTTL          time.Duration

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	RabbitURL string

	RedisAddr       string
	VehicleCacheTTL time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[Config] no .env file found, reading environment only")
	}

	return &Config{
		ServerPort: getEnv("SERVER_PORT", "8083"),

		BookingAPIURL:       getEnv("BOOKING_API_URL", "http://localhost:8000/api"),
		AuthScheme:          getEnv("AUTH_SCHEME", "Token"),
		LoginURL:            getEnv("LOGIN_URL", "/login"),
		RequestTimeout:      getDuration("REQUEST_TIMEOUT", 30*time.Second),
		AvailabilityTimeout: getDuration("AVAILABILITY_TIMEOUT", 10*time.Second),
		SessionTTL:          getDuration("SESSION_TTL", 30*time.Minute),

		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "booking_gateway_db"),

		RabbitURL: os.Getenv("RABBITMQ_URL"),

		RedisAddr:       os.Getenv("REDIS_ADDR"),
		VehicleCacheTTL: getDuration("VEHICLE_CACHE_TTL", 5*time.Minute),
	}
}

func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName,
	)
}

// TokenStoreEnabled reports whether credentials are persisted in postgres.
func (c *Config) TokenStoreEnabled() bool { return c.DBHost != "" }

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Printf("[Config] invalid %s=%q, using %s", key, v, fallback)
		return fallback
	}
	return d
}
