package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"motofleet/internal/fleet/models"
	platformredis "motofleet/internal/platform/redis"
)

// VehicleCache is a redis read-through cache for vehicle lookups by id.
// All methods are nil-receiver safe so callers need no branching when the
// cache is not configured. Cache errors degrade to misses; redis never sits
// on the correctness path.
type VehicleCache struct {
	client *platformredis.Client
	ttl    time.Duration
}

// New wraps the redis client. Returns nil when the client is nil.
func New(client *platformredis.Client, ttl time.Duration) *VehicleCache {
	if client == nil {
		return nil
	}
	return &VehicleCache{client: client, ttl: ttl}
}

func key(id uuid.UUID) string {
	return "vehicle:" + id.String()
}

// Get returns the cached vehicle or nil on miss.
func (c *VehicleCache) Get(ctx context.Context, id uuid.UUID) *models.Vehicle {
	if c == nil {
		return nil
	}
	raw, err := c.client.Get(ctx, key(id)).Bytes()
	if err != nil {
		return nil
	}
	var v models.Vehicle
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return &v
}

// Set stores the vehicle with the configured TTL.
func (c *VehicleCache) Set(ctx context.Context, v *models.Vehicle) {
	if c == nil || v == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	c.client.Set(ctx, key(v.ID), raw, c.ttl)
}

// Invalidate drops a cached vehicle after a mutation.
func (c *VehicleCache) Invalidate(ctx context.Context, id uuid.UUID) {
	if c == nil {
		return
	}
	c.client.Del(ctx, key(id))
}
