package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Domenick1991/carpool/config"
	"github.com/Domenick1991/carpool/internal/domain"
	"github.com/Domenick1991/carpool/internal/geo"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client     *redis.Client
	ridesTTL   time.Duration
	geocodeTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, ridesTTL, geocodeTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:     redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		ridesTTL:   ridesTTL,
		geocodeTTL: geocodeTTL,
	}
}

func (c *RedisCache) GetActiveRides(ctx context.Context) ([]domain.Ride, error) {
	data, err := c.client.Get(ctx, activeRidesKey()).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var rides []domain.Ride
	if err := json.Unmarshal(data, &rides); err != nil {
		return nil, err
	}
	return rides, nil
}

func (c *RedisCache) SetActiveRides(ctx context.Context, rides []domain.Ride) error {
	payload, err := json.Marshal(rides)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, activeRidesKey(), payload, c.ridesTTL).Err()
}

func (c *RedisCache) InvalidateActiveRides(ctx context.Context) error {
	return c.client.Del(ctx, activeRidesKey()).Err()
}

func (c *RedisCache) GetCoordinates(ctx context.Context, place string) (*geo.Coordinates, error) {
	data, err := c.client.Get(ctx, geocodeKey(place)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var coords geo.Coordinates
	if err := json.Unmarshal(data, &coords); err != nil {
		return nil, err
	}
	return &coords, nil
}

func (c *RedisCache) SetCoordinates(ctx context.Context, place string, coords geo.Coordinates) error {
	payload, err := json.Marshal(coords)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, geocodeKey(place), payload, c.geocodeTTL).Err()
}

func activeRidesKey() string {
	return "cache:rides:active"
}

func geocodeKey(place string) string {
	return fmt.Sprintf("cache:geocode:%s", strings.ToLower(strings.TrimSpace(place)))
}
