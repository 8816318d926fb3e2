package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"nightlife-sync/internal/analytics"
	"nightlife-sync/pkg/config"
	"nightlife-sync/pkg/logger"
	"nightlife-sync/pkg/postgres"
	"nightlife-sync/pkg/rabbitmq"
	"nightlife-sync/pkg/redisbus"
)

func main() {
	cfg := config.LoadForService("ANALYTICS")

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	log = log.With("service", "analytics-consumer")

	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid configuration", "error", err)
	}
	log.Info("Starting analytics-consumer", "transport", cfg.EventTransport)

	db, err := postgres.Connect(cfg.DatabaseURL, log)
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL", "error", err)
	}
	defer db.Close()

	if err := postgres.RunMigrations(db, "analytics", log); err != nil {
		log.Fatal("Failed to run migrations", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumer := analytics.NewConsumer(db, log)

	if cfg.EventTransport == config.TransportRedis {
		sub, err := redisbus.NewSubscriber(ctx, cfg.RedisURL, log)
		if err != nil {
			log.Fatal("Failed to connect to Redis", "error", err)
		}
		defer sub.Close()

		if err := sub.Subscribe(ctx, "analytics-consumer", analytics.RoutingKeys,
			redisbus.FromDelivery(consumer.HandleMessage)); err != nil {
			log.Fatal("Failed to subscribe", "error", err)
		}
	} else {
		rmqConn, err := rabbitmq.Connect(cfg.RabbitMQURL, log)
		if err != nil {
			log.Fatal("Failed to connect to RabbitMQ", "error", err)
		}
		defer rmqConn.Close()

		consumerCfg := rabbitmq.ConsumerConfig{
			QueueName:    "analytics.plan.events",
			DLQName:      "dlq.analytics.plan.events",
			RoutingKeys:  analytics.RoutingKeys,
			ConsumerName: "analytics-consumer",
		}
		if err := rabbitmq.SetupConsumer(ctx, rmqConn, consumerCfg, consumer.HandleMessage); err != nil {
			log.Fatal("Failed to setup consumer", "error", err)
		}
	}

	log.Info("Consumer is running. Waiting for messages...")
	<-ctx.Done()
	log.Info("Shutting down...")
}
