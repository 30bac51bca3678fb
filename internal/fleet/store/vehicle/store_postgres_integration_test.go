//go:build integration

package vehicle_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"motofleet/internal/fleet/models"
	eventstore "motofleet/internal/fleet/store/event"
	"motofleet/internal/fleet/store/vehicle"
	"motofleet/pkg/platform/sentinel"
	"motofleet/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *vehicle.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	s := new(PostgresStoreSuite)
	s.postgres = containers.NewPostgresContainer(t)
	suite.Run(t, s)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.store = vehicle.NewPostgres(s.postgres.DB)
	s.Require().NoError(s.postgres.TruncateTables(context.Background(),
		"registration_events", "rentals", "vehicles"))
}

func newTestVehicle(t *testing.T, plate string) *models.Vehicle {
	t.Helper()
	v, err := models.NewVehicle("moto-01", 2023, "Honda CG 160", plate, time.Now().UTC())
	if err != nil {
		t.Fatalf("failed to build vehicle: %v", err)
	}
	return v
}

func (s *PostgresStoreSuite) TestRoundTrip() {
	ctx := context.Background()
	v := newTestVehicle(s.T(), "RTR-0001")
	s.Require().NoError(s.store.Create(ctx, v))

	found, err := s.store.FindByID(ctx, v.ID)
	s.Require().NoError(err)
	s.Equal(v.LicensePlate, found.LicensePlate)
	s.Equal(v.ModelYear, found.ModelYear)
	s.True(found.Available)

	found, err = s.store.FindByPlate(ctx, "RTR-0001")
	s.Require().NoError(err)
	s.Equal(v.ID, found.ID)

	_, err = s.store.FindByID(ctx, uuid.New())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

// TestConcurrentPlateUniqueness verifies that the unique index resolves
// concurrent registrations of one plate to exactly one success.
func (s *PostgresStoreSuite) TestConcurrentPlateUniqueness() {
	ctx := context.Background()
	const goroutines = 32

	var wg sync.WaitGroup
	var successCount, conflictCount atomic.Int32

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			v := newTestVehicle(s.T(), "RACE-001")
			err := s.store.Create(ctx, v)
			if err == nil {
				successCount.Add(1)
			} else if errors.Is(err, sentinel.ErrConflict) {
				conflictCount.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), successCount.Load(), "exactly one create should succeed")
	s.Equal(int32(goroutines-1), conflictCount.Load(), "all others should conflict")
}

func (s *PostgresStoreSuite) TestUpdatePlateConflict() {
	ctx := context.Background()
	a := newTestVehicle(s.T(), "UPC-0001")
	b := newTestVehicle(s.T(), "UPC-0002")
	s.Require().NoError(s.store.Create(ctx, a))
	s.Require().NoError(s.store.Create(ctx, b))

	a.LicensePlate = "UPC-0002"
	s.ErrorIs(s.store.Update(ctx, a), sentinel.ErrConflict)

	a.LicensePlate = "UPC-0003"
	s.Require().NoError(s.store.Update(ctx, a))

	found, err := s.store.FindByPlate(ctx, "UPC-0003")
	s.Require().NoError(err)
	s.Equal(a.ID, found.ID)
}

func (s *PostgresStoreSuite) TestSearchByPlate() {
	ctx := context.Background()
	s.Require().NoError(s.store.Create(ctx, newTestVehicle(s.T(), "SRC-1111")))
	s.Require().NoError(s.store.Create(ctx, newTestVehicle(s.T(), "SRC-2222")))

	out, err := s.store.SearchByPlate(ctx, "src")
	s.Require().NoError(err)
	s.Len(out, 2)

	out, err = s.store.SearchByPlate(ctx, "2222")
	s.Require().NoError(err)
	s.Len(out, 1)
}

func (s *PostgresStoreSuite) TestDelete() {
	ctx := context.Background()
	v := newTestVehicle(s.T(), "DEL-0001")
	s.Require().NoError(s.store.Create(ctx, v))
	s.Require().NoError(s.store.Delete(ctx, v.ID))

	exists, err := s.store.ExistsByPlate(ctx, "DEL-0001")
	s.Require().NoError(err)
	s.False(exists)

	s.ErrorIs(s.store.Delete(ctx, v.ID), sentinel.ErrNotFound)
}

// TestDeleteWithRegistrationEvents covers the distinguished-year path: the
// event row must not block deletion, it goes away with the vehicle.
func (s *PostgresStoreSuite) TestDeleteWithRegistrationEvents() {
	ctx := context.Background()
	events := eventstore.NewPostgres(s.postgres.DB)

	v, err := models.NewVehicle("moto-24", 2024, "Honda CG 160", "EVT-2024", time.Now().UTC())
	s.Require().NoError(err)
	s.Require().NoError(s.store.Create(ctx, v))
	s.Require().NoError(events.Append(ctx, models.NewRegistrationEvent(v, true, time.Now().UTC())))

	s.Require().NoError(s.store.Delete(ctx, v.ID))

	_, err = s.store.FindByID(ctx, v.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)

	remaining, err := events.ListForVehicle(ctx, v.ID)
	s.Require().NoError(err)
	s.Empty(remaining)
}
