package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/carpool/config"
	"github.com/Domenick1991/carpool/internal/auth"
	"github.com/Domenick1991/carpool/internal/bootstrap"
	"github.com/Domenick1991/carpool/internal/cache"
	"github.com/Domenick1991/carpool/internal/geo"
	"github.com/Domenick1991/carpool/internal/kafka"
	"github.com/Domenick1991/carpool/internal/repository"
	"github.com/Domenick1991/carpool/internal/service/booking"
	"github.com/Domenick1991/carpool/internal/service/notifications"
	"github.com/Domenick1991/carpool/internal/service/rides"
	"github.com/Domenick1991/carpool/internal/service/users"
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(cfg.Redis,
		time.Duration(cfg.Search.RidesCacheTTLSeconds)*time.Second,
		time.Duration(cfg.Search.GeocodeCacheTTLSeconds)*time.Second)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	geocoder := geo.NewClient(cfg.Search.GeocoderURL, time.Duration(cfg.Search.GeocoderTimeoutSeconds)*time.Second)
	tokens := auth.NewTokenService(cfg.JWT)

	rideRepo := repository.NewRideRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	notificationRepo := repository.NewNotificationRepository(pool)

	notificationService := notifications.NewService(notificationRepo, producer, cfg.Kafka.NotificationsTopic)
	rideService := rides.NewService(rideRepo, redisCache, geocoder, cfg.Search.NearbyRadiusKM)
	bookingService := booking.NewService(rideRepo, userRepo, notificationService, redisCache)
	userService := users.NewService(userRepo, tokens)

	err = bootstrap.Run(ctx, cfg, bootstrap.Services{
		Users:         userService,
		Rides:         rideService,
		Bookings:      bookingService,
		Notifications: notificationService,
		Tokens:        tokens,
	})
	if err != nil {
		log.Fatalf("server error: %v", err)
	}
}
