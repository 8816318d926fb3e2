package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nightlife-sync/internal/api"
	"nightlife-sync/internal/preferences"
	"nightlife-sync/pkg/config"
	"nightlife-sync/pkg/logger"
	"nightlife-sync/pkg/postgres"
	"nightlife-sync/pkg/rabbitmq"
	"nightlife-sync/pkg/redisbus"

	_ "nightlife-sync/docs"
)

type publisher interface {
	api.EventPublisher
	Close() error
}

// @title           Nightlife Plans API
// @version         1.0
// @description     User preferences and plan lifecycle events. Events are published to RabbitMQ (or Redis) for the notification and analytics consumers.
// @host            localhost:8080
// @BasePath        /
// @schemes         http
func main() {
	cfg := config.LoadForService("API")

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	log = log.With("service", "api-service")

	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid configuration", "error", err)
	}
	log.Info("Starting api-service", "transport", cfg.EventTransport)

	// Migrations run over database/sql; the preference store uses gorm.
	db, err := postgres.Connect(cfg.DatabaseURL, log)
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL", "error", err)
	}
	defer db.Close()

	if err := postgres.RunMigrations(db, "api", log); err != nil {
		log.Fatal("Failed to run migrations", "error", err)
	}

	gdb, err := postgres.ConnectGorm(cfg.DatabaseURL, log)
	if err != nil {
		log.Fatal("Failed to open gorm", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pub, err := newPublisher(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to create publisher", "error", err)
	}
	defer pub.Close()

	svc := preferences.NewService(preferences.NewGormStore(gdb), log)
	router := api.NewRouter(log,
		api.NewPreferenceHandler(svc, log),
		api.NewEventHandler(pub, log),
	)

	// HTTP server with graceful shutdown
	srv := &http.Server{
		Addr:              ":" + cfg.APIPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("Listening", "port", cfg.APIPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server error", "error", err)
		}
	}()

	<-ctx.Done()

	log.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
		return
	}
	log.Info("Server exited gracefully")
}

func newPublisher(ctx context.Context, cfg *config.Config, log *logger.Logger) (publisher, error) {
	if cfg.EventTransport == config.TransportRedis {
		return redisbus.NewPublisher(ctx, cfg.RedisURL, log)
	}

	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, log)
	if err != nil {
		return nil, err
	}
	pub, err := rabbitmq.NewPublisher(conn)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return &rabbitPublisher{Publisher: pub, conn: conn}, nil
}

// rabbitPublisher closes the connection along with the channel.
type rabbitPublisher struct {
	*rabbitmq.Publisher
	conn *rabbitmq.Connection
}

func (p *rabbitPublisher) Close() error {
	_ = p.Publisher.Close()
	return p.conn.Close()
}
