package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/Eursukkul/vehicle-rental/booking-gateway/config"
	"github.com/Eursukkul/vehicle-rental/booking-gateway/internal/bookingapi"
	"github.com/Eursukkul/vehicle-rental/booking-gateway/internal/consumer"
	"github.com/Eursukkul/vehicle-rental/booking-gateway/internal/credentials"
	"github.com/Eursukkul/vehicle-rental/booking-gateway/internal/handler"
	"github.com/Eursukkul/vehicle-rental/booking-gateway/internal/middleware"
	"github.com/Eursukkul/vehicle-rental/booking-gateway/internal/repository"
	"github.com/Eursukkul/vehicle-rental/booking-gateway/internal/service"
	"github.com/Eursukkul/vehicle-rental/booking-gateway/internal/workflow"
	"github.com/Eursukkul/vehicle-rental/booking-gateway/pkg/database"
	"github.com/Eursukkul/vehicle-rental/booking-gateway/pkg/rabbitmq"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Credential store: postgres when configured, memory otherwise
	var store credentials.Store = credentials.NewMemoryStore()
	if cfg.TokenStoreEnabled() {
		db, err := database.NewPostgresDB(cfg.DSN())
		if err != nil {
			log.Fatalf("failed to open token store: %v", err)
		}
		store = repository.NewTokenRepository(db, repository.DefaultTokenName)
	}
	creds := credentials.NewProvider(store)
	creds.OnInvalidate(func() {
		log.Println("[Credentials] Booking Service rejected the token, login required")
	})

	// Booking Service client
	clientOpts := []bookingapi.Option{
		bookingapi.WithTimeout(cfg.RequestTimeout),
		bookingapi.WithAuthScheme(cfg.AuthScheme),
	}
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		clientOpts = append(clientOpts, bookingapi.WithVehicleCache(repository.NewVehicleCache(rdb, cfg.VehicleCacheTTL)))
	}
	client := bookingapi.NewClient(cfg.BookingAPIURL, creds, clientOpts...)

	// Workflow events
	var wfOpts []workflow.Option
	if cfg.RabbitURL != "" {
		publisher, err := rabbitmq.NewPublisher(cfg.RabbitURL)
		if err != nil {
			log.Fatalf("failed to connect publisher to RabbitMQ: %v", err)
		}
		defer publisher.Close()
		wfOpts = append(wfOpts, workflow.WithPublisher(publisher))
	}

	checker := workflow.NewAvailabilityChecker(client, cfg.AvailabilityTimeout)
	bookingSvc := service.NewBookingService(client, checker, cfg.SessionTTL, wfOpts...)
	service.StartSweeper(ctx, bookingSvc, time.Minute)

	// RabbitMQ consumer: status changes made elsewhere refresh open views
	if cfg.RabbitURL != "" {
		mqConsumer, err := rabbitmq.NewConsumer(cfg.RabbitURL)
		if err != nil {
			log.Fatalf("failed to connect consumer to RabbitMQ: %v", err)
		}
		defer mqConsumer.Close()

		msgs, err := mqConsumer.Consume()
		if err != nil {
			log.Fatalf("failed to start consuming: %v", err)
		}
		consumer.NewStatusConsumer(bookingSvc, cfg.RequestTimeout).Start(msgs)
	}

	// Echo
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = middleware.NewErrorHandler(cfg.LoginURL)
	e.Use(echoMw.RequestLoggerWithConfig(echoMw.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v echoMw.RequestLoggerValues) error {
			log.Printf("%s %s %d", v.Method, v.URI, v.Status)
			return nil
		},
	}))
	e.Use(echoMw.Recover())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok", "service": "booking-gateway"})
	})

	handler.NewBookingHandler(bookingSvc, creds).RegisterRoutes(e)

	go func() {
		log.Printf("Booking gateway starting on :%s", cfg.ServerPort)
		if err := e.Start(":" + cfg.ServerPort); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
