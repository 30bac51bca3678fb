package service

import (
	"context"
	"fmt"
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
	rentalstore "motofleet/internal/rental/store"
	dErrors "motofleet/pkg/domain-errors"
	"motofleet/pkg/requestcontext"
)

type RentalServiceSuite struct {
	suite.Suite
	ctx      context.Context
	now      time.Time
	rentals  *rentalstore.InMemoryStore
	drivers  *driverstore.InMemoryStore
	vehicles *vehiclestore.InMemoryStore
	service  *RentalService
	seq      int

	vehicle *fleetmodels.Vehicle
}

func TestRentalServiceSuite(t *testing.T) {
	suite.Run(t, new(RentalServiceSuite))
}

func (s *RentalServiceSuite) SetupTest() {
	s.now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)

	s.rentals = rentalstore.NewInMemory()
	s.drivers = driverstore.NewInMemory()
	s.vehicles = vehiclestore.NewInMemory()
	s.service = New(s.rentals, s.drivers, s.vehicles, nil, nil)
	s.seq = 0

	var err error
	s.vehicle, err = fleetmodels.NewVehicle("moto-01", 2023, "Honda CG 160", "ABC-1234", s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.vehicles.Create(s.ctx, s.vehicle))
}

// newDriver seeds an eligible driver with unique CNPJ and license number.
func (s *RentalServiceSuite) newDriver(category drivermodels.LicenseCategory) *drivermodels.DeliveryDriver {
	s.seq++
	d, err := drivermodels.NewDeliveryDriver(
		fmt.Sprintf("drv-%02d", s.seq), "Maria Silva",
		fmt.Sprintf("%014d", s.seq),
		time.Date(1990, 5, 1, 0, 0, 0, 0, time.UTC),
		fmt.Sprintf("CNH-%03d", s.seq), category, "", s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.drivers.Create(s.ctx, d))
	return d
}

func (s *RentalServiceSuite) open(driverID uuid.UUID) (*models.Rental, error) {
	return s.service.Open(s.ctx, driverID, s.vehicle.ID, 7,
		decimal.RequireFromString("30"), s.now.AddDate(0, 0, 1))
}

func (s *RentalServiceSuite) TestOpen() {
	s.Run("opens a contract for an eligible driver", func() {
		d := s.newDriver(drivermodels.LicenseCategoryA)

		r, err := s.open(d.ID)
		s.Require().NoError(err)
		s.Equal(r.StartDate.AddDate(0, 0, 7), r.ExpectedEndDate)
		s.False(r.IsClosed())

		stored, err := s.rentals.FindByID(s.ctx, r.ID)
		s.Require().NoError(err)
		s.True(stored.DailyRate.Equal(r.DailyRate))
	})

	s.Run("rejects category B drivers", func() {
		d := s.newDriver(drivermodels.LicenseCategoryB)

		_, err := s.open(d.ID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBusinessRule))
		s.Contains(err.Error(), "license category")
	})

	s.Run("rejects an unknown plan", func() {
		d := s.newDriver(drivermodels.LicenseCategoryA)

		_, err := s.service.Open(s.ctx, d.ID, s.vehicle.ID, 10,
			decimal.RequireFromString("30"), s.now.AddDate(0, 0, 1))
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBusinessRule))
	})

	s.Run("rejects a start date of today or earlier", func() {
		d := s.newDriver(drivermodels.LicenseCategoryAB)

		_, err := s.service.Open(s.ctx, d.ID, s.vehicle.ID, 7,
			decimal.RequireFromString("30"), s.now)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBusinessRule))
	})

	s.Run("rejects a second active contract for the same driver", func() {
		d := s.newDriver(drivermodels.LicenseCategoryA)

		_, err := s.open(d.ID)
		s.Require().NoError(err)

		_, err = s.open(d.ID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBusinessRule))
		s.Contains(err.Error(), "active rental")
	})

	s.Run("unknown driver and vehicle yield not found", func() {
		d := s.newDriver(drivermodels.LicenseCategoryA)

		_, err := s.open(uuid.New())
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

		_, err = s.service.Open(s.ctx, d.ID, uuid.New(), 7,
			decimal.RequireFromString("30"), s.now.AddDate(0, 0, 1))
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *RentalServiceSuite) TestClose() {
	s.Run("prices and persists the return", func() {
		d := s.newDriver(drivermodels.LicenseCategoryA)
		r, err := s.open(d.ID)
		s.Require().NoError(err)

		closed, err := s.service.Close(s.ctx, r.ID, r.ExpectedEndDate)
		s.Require().NoError(err)
		s.True(closed.IsClosed())
		s.True(closed.TotalCost.Decimal.Equal(decimal.RequireFromString("210")), "got %s", closed.TotalCost.Decimal)

		stored, err := s.rentals.FindByID(s.ctx, r.ID)
		s.Require().NoError(err)
		s.True(stored.IsClosed())

		// A closed contract frees the driver for a new one.
		_, err = s.open(d.ID)
		s.NoError(err)
	})

	s.Run("closing twice fails and keeps stored totals", func() {
		d := s.newDriver(drivermodels.LicenseCategoryA)
		r, err := s.open(d.ID)
		s.Require().NoError(err)

		first, err := s.service.Close(s.ctx, r.ID, r.ExpectedEndDate)
		s.Require().NoError(err)

		_, err = s.service.Close(s.ctx, r.ID, r.ExpectedEndDate.AddDate(0, 0, 5))
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBusinessRule))

		stored, err := s.rentals.FindByID(s.ctx, r.ID)
		s.Require().NoError(err)
		s.True(stored.TotalCost.Decimal.Equal(first.TotalCost.Decimal))
	})

	s.Run("unknown rental yields not found", func() {
		_, err := s.service.Close(s.ctx, uuid.New(), s.now)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *RentalServiceSuite) TestListForDriver() {
	s.Run("returns the driver's contracts only", func() {
		d := s.newDriver(drivermodels.LicenseCategoryA)
		r, err := s.open(d.ID)
		s.Require().NoError(err)

		list, err := s.service.ListForDriver(s.ctx, d.ID)
		s.Require().NoError(err)
		s.Require().Len(list, 1)
		s.Equal(r.ID, list[0].ID)

		list, err = s.service.ListForDriver(s.ctx, uuid.New())
		s.Require().NoError(err)
		s.Empty(list)
	})
}
