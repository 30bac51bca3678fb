//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	drivermodels "motofleet/internal/driver/models"
	driverstore "motofleet/internal/driver/store"
	fleetmodels "motofleet/internal/fleet/models"
	vehiclestore "motofleet/internal/fleet/store/vehicle"
	"motofleet/internal/rental/models"
	"motofleet/internal/rental/store"
	"motofleet/pkg/platform/sentinel"
	"motofleet/pkg/testutil/containers"
)

type RentalPostgresSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
	drivers  *driverstore.PostgresStore
	vehicles *vehiclestore.PostgresStore

	driverID  uuid.UUID
	vehicleID uuid.UUID
}

func TestRentalPostgresSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	s := new(RentalPostgresSuite)
	s.postgres = containers.NewPostgresContainer(t)
	suite.Run(t, s)
}

func (s *RentalPostgresSuite) SetupTest() {
	ctx := context.Background()
	s.store = store.NewPostgres(s.postgres.DB)
	s.drivers = driverstore.NewPostgres(s.postgres.DB)
	s.vehicles = vehiclestore.NewPostgres(s.postgres.DB)
	s.Require().NoError(s.postgres.TruncateTables(ctx,
		"registration_events", "rentals", "drivers", "vehicles"))

	// Rentals reference drivers and vehicles, seed one of each.
	now := time.Now().UTC()
	driver, err := drivermodels.NewDeliveryDriver("drv-01", "Maria Silva", "12345678000190",
		time.Date(1990, 5, 1, 0, 0, 0, 0, time.UTC), "CNH-001",
		drivermodels.LicenseCategoryA, "", now)
	s.Require().NoError(err)
	s.Require().NoError(s.drivers.Create(ctx, driver))
	s.driverID = driver.ID

	v, err := fleetmodels.NewVehicle("moto-01", 2023, "Honda CG 160", "ABC-1234", now)
	s.Require().NoError(err)
	s.Require().NoError(s.vehicles.Create(ctx, v))
	s.vehicleID = v.ID
}

func (s *RentalPostgresSuite) newRental() *models.Rental {
	now := time.Now().UTC()
	r, err := models.NewRental(s.driverID, s.vehicleID, 7,
		decimal.RequireFromString("30.00"), now.AddDate(0, 0, 1), now)
	s.Require().NoError(err)
	return r
}

func (s *RentalPostgresSuite) TestRoundTrip() {
	ctx := context.Background()
	r := s.newRental()
	s.Require().NoError(s.store.Create(ctx, r))

	found, err := s.store.FindByID(ctx, r.ID)
	s.Require().NoError(err)
	s.Equal(r.PlanDays, found.PlanDays)
	s.True(found.DailyRate.Equal(r.DailyRate), "NUMERIC must round-trip exactly")
	s.False(found.IsClosed())
	s.False(found.TotalCost.Valid)

	_, err = s.store.FindByID(ctx, uuid.New())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *RentalPostgresSuite) TestCloseRoundTrip() {
	ctx := context.Background()
	r := s.newRental()
	s.Require().NoError(s.store.Create(ctx, r))

	s.Require().NoError(r.Close(r.ExpectedEndDate))
	s.Require().NoError(s.store.Update(ctx, r))

	found, err := s.store.FindByID(ctx, r.ID)
	s.Require().NoError(err)
	s.True(found.IsClosed())
	s.Require().True(found.TotalCost.Valid)
	s.True(found.TotalCost.Decimal.Equal(decimal.RequireFromString("210")),
		"got %s", found.TotalCost.Decimal)
}

func (s *RentalPostgresSuite) TestDriverAndVehicleQueries() {
	ctx := context.Background()
	r := s.newRental()
	s.Require().NoError(s.store.Create(ctx, r))

	list, err := s.store.ListForDriver(ctx, s.driverID)
	s.Require().NoError(err)
	s.Len(list, 1)

	active, err := s.store.HasActiveForDriver(ctx, s.driverID)
	s.Require().NoError(err)
	s.True(active)

	has, err := s.store.HasAnyForVehicle(ctx, s.vehicleID)
	s.Require().NoError(err)
	s.True(has)

	s.Require().NoError(r.Close(r.ExpectedEndDate))
	s.Require().NoError(s.store.Update(ctx, r))

	active, err = s.store.HasActiveForDriver(ctx, s.driverID)
	s.Require().NoError(err)
	s.False(active, "closed contracts are not active")

	has, err = s.store.HasAnyForVehicle(ctx, s.vehicleID)
	s.Require().NoError(err)
	s.True(has, "closed contracts still count as history")
}

// TestDriverDeletionCascade verifies the schema-level cascade from drivers
// to rentals.
func (s *RentalPostgresSuite) TestDriverDeletionCascade() {
	ctx := context.Background()
	r := s.newRental()
	s.Require().NoError(s.store.Create(ctx, r))

	s.Require().NoError(s.drivers.Delete(ctx, s.driverID))

	_, err := s.store.FindByID(ctx, r.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
}
