package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/carpool/config"
	"github.com/Domenick1991/carpool/internal/domain"
	"github.com/Domenick1991/carpool/internal/email"
	"github.com/Domenick1991/carpool/internal/kafka"
	"github.com/Domenick1991/carpool/internal/repository"
	"github.com/Domenick1991/carpool/internal/service/notifications"
	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	rideRepo := repository.NewRideRepository(pool)
	notificationRepo := repository.NewNotificationRepository(pool)
	notificationService := notifications.NewService(notificationRepo, nil, "")

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic)
	defer consumer.Close()

	emailSender := email.NewSender()

	go func() {
		if err := consumer.Consume(ctx, func(ctx context.Context, event kafka.NotificationEvent) error {
			return emailSender.Send(ctx, event)
		}); err != nil {
			log.Printf("consumer stopped: %v", err)
		}
	}()

	sweepTicker := time.NewTicker(time.Duration(cfg.Worker.StaleSweepMinutes) * time.Minute)
	defer sweepTicker.Stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-sweepTicker.C:
			stale, err := rideRepo.RejectStaleRequests(ctx, time.Now())
			if err != nil {
				log.Printf("stale request sweep error: %v", err)
				continue
			}
			for _, s := range stale {
				notificationService.Notify(ctx, s.UserID, domain.NotificationBookingRejected,
					fmt.Sprintf("Your booking request for the departed ride %s → %s expired", s.From, s.To))
			}
			if len(stale) > 0 {
				log.Printf("rejected %d stale booking requests", len(stale))
			}
		case s := <-sig:
			log.Printf("received signal %v, shutting down", s)
			return
		}
	}
}
