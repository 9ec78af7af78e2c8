package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Eursukkul/vehicle-rental/booking-gateway/internal/models"
)

// VehicleCache keeps vehicle read copies in redis. Redis failures read as
// misses so the Booking Service stays the fallback.
type VehicleCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewVehicleCache(rdb *redis.Client, ttl time.Duration) *VehicleCache {
	return &VehicleCache{rdb: rdb, ttl: ttl}
}

func vehicleKey(id uint) string {
	return fmt.Sprintf("vehicle:%d", id)
}

func (c *VehicleCache) Get(ctx context.Context, id uint) (*models.Vehicle, bool) {
	raw, err := c.rdb.Get(ctx, vehicleKey(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("[VehicleCache] get %d: %v", id, err)
		}
		return nil, false
	}

	var v models.Vehicle
	if err := json.Unmarshal(raw, &v); err != nil {
		log.Printf("[VehicleCache] decode %d: %v", id, err)
		return nil, false
	}
	return &v, true
}

func (c *VehicleCache) Put(ctx context.Context, v *models.Vehicle) {
	raw, err := json.Marshal(v)
	if err != nil {
		log.Printf("[VehicleCache] encode %d: %v", v.ID, err)
		return
	}
	if err := c.rdb.Set(ctx, vehicleKey(v.ID), raw, c.ttl).Err(); err != nil {
		log.Printf("[VehicleCache] put %d: %v", v.ID, err)
	}
}
