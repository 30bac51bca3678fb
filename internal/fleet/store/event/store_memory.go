package event

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"motofleet/internal/fleet/models"
)

// InMemoryStore keeps registration events in memory for development and
// tests. Events are append-only.
type InMemoryStore struct {
	mu     sync.RWMutex
	events []*models.RegistrationEvent
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Append(_ context.Context, e *models.RegistrationEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *e
	s.events = append(s.events, &cp)
	return nil
}

// ListForVehicle returns the events recorded for a vehicle, oldest first.
// Explicit query call instead of a lazily loaded collection on the vehicle.
func (s *InMemoryStore) ListForVehicle(_ context.Context, vehicleID uuid.UUID) ([]*models.RegistrationEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.RegistrationEvent
	for _, e := range s.events {
		if e.VehicleID == vehicleID {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}
