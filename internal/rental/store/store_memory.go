package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"motofleet/internal/rental/models"
	"motofleet/pkg/platform/sentinel"
)

// InMemoryStore keeps rental contracts in memory for development and tests.
type InMemoryStore struct {
	mu      sync.RWMutex
	rentals map[uuid.UUID]*models.Rental
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{rentals: make(map[uuid.UUID]*models.Rental)}
}

func (s *InMemoryStore) Create(_ context.Context, r *models.Rental) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *r
	s.rentals[r.ID] = &cp
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id uuid.UUID) (*models.Rental, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.rentals[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (s *InMemoryStore) Update(_ context.Context, r *models.Rental) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rentals[r.ID]; !ok {
		return sentinel.ErrNotFound
	}
	cp := *r
	s.rentals[r.ID] = &cp
	return nil
}

// ListForDriver returns the driver's contracts. Explicit query call instead
// of a lazily loaded collection on the driver.
func (s *InMemoryStore) ListForDriver(_ context.Context, driverID uuid.UUID) ([]*models.Rental, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Rental
	for _, r := range s.rentals {
		if r.DriverID == driverID {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

// HasAnyForVehicle reports whether any contract, open or closed, references
// the vehicle. Used to protect vehicles with history from deletion.
func (s *InMemoryStore) HasAnyForVehicle(_ context.Context, vehicleID uuid.UUID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.rentals {
		if r.VehicleID == vehicleID {
			return true, nil
		}
	}
	return false, nil
}

// HasActiveForDriver reports whether the driver holds an open contract.
func (s *InMemoryStore) HasActiveForDriver(_ context.Context, driverID uuid.UUID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.rentals {
		if r.DriverID == driverID && !r.IsClosed() {
			return true, nil
		}
	}
	return false, nil
}

// DeleteForDriver removes all of a driver's contracts, mirroring the
// cascade the postgres schema applies on driver deletion.
func (s *InMemoryStore) DeleteForDriver(_ context.Context, driverID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, r := range s.rentals {
		if r.DriverID == driverID {
			delete(s.rentals, id)
		}
	}
	return nil
}
