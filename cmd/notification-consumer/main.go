package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"nightlife-sync/internal/notifications"
	"nightlife-sync/pkg/config"
	"nightlife-sync/pkg/logger"
	"nightlife-sync/pkg/postgres"
	"nightlife-sync/pkg/rabbitmq"
	"nightlife-sync/pkg/redisbus"
)

func main() {
	cfg := config.LoadForService("NOTIFICATIONS")

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	log = log.With("service", "notification-consumer")

	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid configuration", "error", err)
	}
	log.Info("Starting notification-consumer", "transport", cfg.EventTransport)

	db, err := postgres.Connect(cfg.DatabaseURL, log)
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL", "error", err)
	}
	defer db.Close()

	if err := postgres.RunMigrations(db, "notifications", log); err != nil {
		log.Fatal("Failed to run migrations", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumer := notifications.NewConsumer(db, log)

	switch cfg.EventTransport {
	case config.TransportRedis:
		sub, err := redisbus.NewSubscriber(ctx, cfg.RedisURL, log)
		if err != nil {
			log.Fatal("Failed to connect to Redis", "error", err)
		}
		defer sub.Close()

		if err := sub.Subscribe(ctx, "notification-consumer", notifications.RoutingKeys,
			redisbus.FromDelivery(consumer.HandleMessage)); err != nil {
			log.Fatal("Failed to subscribe", "error", err)
		}
	default:
		rmqConn, err := rabbitmq.Connect(cfg.RabbitMQURL, log)
		if err != nil {
			log.Fatal("Failed to connect to RabbitMQ", "error", err)
		}
		defer rmqConn.Close()

		consumerCfg := rabbitmq.ConsumerConfig{
			QueueName:    "notifications.plan.events",
			DLQName:      "dlq.notifications.plan.events",
			RoutingKeys:  notifications.RoutingKeys,
			ConsumerName: "notification-consumer",
		}
		if err := rabbitmq.SetupConsumer(ctx, rmqConn, consumerCfg, consumer.HandleMessage); err != nil {
			log.Fatal("Failed to setup consumer", "error", err)
		}
	}

	log.Info("Consumer is running. Waiting for messages...")
	<-ctx.Done()
	log.Info("Shutting down...")
}
