package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"autoport/internal/domain"
)

// TripCache caches trip rows in Redis in front of the repository.
// Every seat-ledger mutation invalidates the cached entry, so a cache
// hit can be at most TripCacheTTL stale and only for read endpoints;
// ledger operations always re-read the row under lock.
type TripCache struct {
	client *redis.Client
}

// NewTripCache creates a new TripCache.
func NewTripCache(client *redis.Client) *TripCache {
	return &TripCache{client: client}
}

// TripCacheTTL bounds staleness for trips evicted only by time.
const TripCacheTTL = 30 * time.Second

const tripCachePrefix = "cache:trip:"

type cachedTrip struct {
	ID                string    `json:"id"`
	DriverID          string    `json:"driver_id"`
	CarID             string    `json:"car_id"`
	FromLocation      string    `json:"from_location"`
	ToLocation        string    `json:"to_location"`
	DepartureTime     time.Time `json:"departure_time"`
	EstimatedArrival  time.Time `json:"estimated_arrival"`
	PricePerSeat      float64   `json:"price_per_seat"`
	TotalSeatsOffered int       `json:"total_seats_offered"`
	AvailableSeats    int       `json:"available_seats"`
	Status            string    `json:"status"`
	AdditionalInfo    string    `json:"additional_info"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// GetTrip retrieves a trip from cache. Returns (nil, nil) on a miss.
func (s *TripCache) GetTrip(ctx context.Context, tripID string) (*domain.Trip, error) {
	data, err := s.client.Get(ctx, tripCachePrefix+tripID).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Cache miss
		}
		return nil, err
	}

	var cached cachedTrip
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, err
	}

	return &domain.Trip{
		ID:                cached.ID,
		DriverID:          cached.DriverID,
		CarID:             cached.CarID,
		FromLocation:      cached.FromLocation,
		ToLocation:        cached.ToLocation,
		DepartureTime:     cached.DepartureTime,
		EstimatedArrival:  cached.EstimatedArrival,
		PricePerSeat:      cached.PricePerSeat,
		TotalSeatsOffered: cached.TotalSeatsOffered,
		AvailableSeats:    cached.AvailableSeats,
		Status:            domain.TripStatus(cached.Status),
		AdditionalInfo:    cached.AdditionalInfo,
		CreatedAt:         cached.CreatedAt,
		UpdatedAt:         cached.UpdatedAt,
	}, nil
}

// SetTrip stores a trip in cache.
func (s *TripCache) SetTrip(ctx context.Context, trip *domain.Trip) error {
	cached := cachedTrip{
		ID:                trip.ID,
		DriverID:          trip.DriverID,
		CarID:             trip.CarID,
		FromLocation:      trip.FromLocation,
		ToLocation:        trip.ToLocation,
		DepartureTime:     trip.DepartureTime,
		EstimatedArrival:  trip.EstimatedArrival,
		PricePerSeat:      trip.PricePerSeat,
		TotalSeatsOffered: trip.TotalSeatsOffered,
		AvailableSeats:    trip.AvailableSeats,
		Status:            string(trip.Status),
		AdditionalInfo:    trip.AdditionalInfo,
		CreatedAt:         trip.CreatedAt,
		UpdatedAt:         trip.UpdatedAt,
	}

	data, err := json.Marshal(cached)
	if err != nil {
		return err
	}

	return s.client.Set(ctx, tripCachePrefix+trip.ID, data, TripCacheTTL).Err()
}

// InvalidateTrip removes a trip from cache.
func (s *TripCache) InvalidateTrip(ctx context.Context, tripID string) error {
	return s.client.Del(ctx, tripCachePrefix+tripID).Err()
}
