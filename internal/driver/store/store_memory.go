package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"motofleet/internal/driver/models"
	"motofleet/pkg/platform/sentinel"
)

// InMemoryStore keeps delivery drivers in maps for development and tests.
// CNPJ and license-number uniqueness are enforced under the store lock,
// mirroring the unique indexes of the postgres store.
type InMemoryStore struct {
	mu        sync.RWMutex
	drivers   map[uuid.UUID]*models.DeliveryDriver
	byCNPJ    map[string]uuid.UUID
	byLicense map[string]uuid.UUID
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		drivers:   make(map[uuid.UUID]*models.DeliveryDriver),
		byCNPJ:    make(map[string]uuid.UUID),
		byLicense: make(map[string]uuid.UUID),
	}
}

func (s *InMemoryStore) Create(_ context.Context, d *models.DeliveryDriver) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byCNPJ[d.CNPJ]; exists {
		return sentinel.ErrConflict
	}
	if _, exists := s.byLicense[d.LicenseNumber]; exists {
		return sentinel.ErrConflict
	}
	cp := *d
	s.drivers[d.ID] = &cp
	s.byCNPJ[d.CNPJ] = d.ID
	s.byLicense[d.LicenseNumber] = d.ID
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id uuid.UUID) (*models.DeliveryDriver, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.drivers[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (s *InMemoryStore) ExistsByCNPJ(_ context.Context, cnpj string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.byCNPJ[cnpj]
	return ok, nil
}

func (s *InMemoryStore) ExistsByLicenseNumber(_ context.Context, licenseNumber string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.byLicense[licenseNumber]
	return ok, nil
}

func (s *InMemoryStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.drivers[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	delete(s.byCNPJ, d.CNPJ)
	delete(s.byLicense, d.LicenseNumber)
	delete(s.drivers, id)
	return nil
}
