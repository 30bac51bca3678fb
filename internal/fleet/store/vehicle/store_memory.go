package vehicle

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"motofleet/internal/fleet/models"
	"motofleet/pkg/platform/sentinel"
)

// InMemoryStore keeps vehicles in a map for local development and tests.
// Uniqueness of the normalized plate is enforced under the store lock so a
// race between two concurrent registrations yields one success and one
// conflict, matching the guarantee the postgres store gets from its unique
// index.
type InMemoryStore struct {
	mu       sync.RWMutex
	vehicles map[uuid.UUID]*models.Vehicle
	byPlate  map[string]uuid.UUID
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		vehicles: make(map[uuid.UUID]*models.Vehicle),
		byPlate:  make(map[string]uuid.UUID),
	}
}

func (s *InMemoryStore) Create(_ context.Context, v *models.Vehicle) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byPlate[v.LicensePlate]; exists {
		return sentinel.ErrConflict
	}
	cp := *v
	s.vehicles[v.ID] = &cp
	s.byPlate[v.LicensePlate] = v.ID
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id uuid.UUID) (*models.Vehicle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.vehicles[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *v
	return &cp, nil
}

func (s *InMemoryStore) FindByPlate(_ context.Context, plate string) (*models.Vehicle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byPlate[plate]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *s.vehicles[id]
	return &cp, nil
}

func (s *InMemoryStore) ExistsByPlate(_ context.Context, plate string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.byPlate[plate]
	return ok, nil
}

// Update persists plate changes. The plate index moves atomically with the
// record so uniqueness holds across concurrent updates.
func (s *InMemoryStore) Update(_ context.Context, v *models.Vehicle) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.vehicles[v.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if holder, exists := s.byPlate[v.LicensePlate]; exists && holder != v.ID {
		return sentinel.ErrConflict
	}
	delete(s.byPlate, current.LicensePlate)
	cp := *v
	s.vehicles[v.ID] = &cp
	s.byPlate[v.LicensePlate] = v.ID
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.vehicles[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	delete(s.byPlate, v.LicensePlate)
	delete(s.vehicles, id)
	return nil
}

func (s *InMemoryStore) List(_ context.Context) ([]*models.Vehicle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Vehicle, 0, len(s.vehicles))
	for _, v := range s.vehicles {
		cp := *v
		out = append(out, &cp)
	}
	return out, nil
}

// SearchByPlate returns vehicles whose normalized plate contains the
// fragment. Matching is case-insensitive; the result is materialized.
func (s *InMemoryStore) SearchByPlate(_ context.Context, fragment string) ([]*models.Vehicle, error) {
	needle := models.NormalizePlate(fragment)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Vehicle
	for _, v := range s.vehicles {
		if strings.Contains(v.LicensePlate, needle) {
			cp := *v
			out = append(out, &cp)
		}
	}
	return out, nil
}
