package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	drivermodels "motofleet/internal/driver/models"
	fleetmodels "motofleet/internal/fleet/models"
	"motofleet/internal/platform/metrics"
	"motofleet/internal/rental/models"
	"motofleet/internal/rental/rules"
	dErrors "motofleet/pkg/domain-errors"
	"motofleet/pkg/platform/sentinel"
	"motofleet/pkg/requestcontext"
)

// RentalStore is the persistence port for rental contracts.
type RentalStore interface {
	Create(ctx context.Context, r *models.Rental) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Rental, error)
	Update(ctx context.Context, r *models.Rental) error
	ListForDriver(ctx context.Context, driverID uuid.UUID) ([]*models.Rental, error)
	HasActiveForDriver(ctx context.Context, driverID uuid.UUID) (bool, error)
}

// DriverDirectory resolves drivers for eligibility checks.
type DriverDirectory interface {
	FindByID(ctx context.Context, id uuid.UUID) (*drivermodels.DeliveryDriver, error)
}

// VehicleDirectory resolves vehicles referenced by new contracts.
type VehicleDirectory interface {
	FindByID(ctx context.Context, id uuid.UUID) (*fleetmodels.Vehicle, error)
}

// RentalService opens contracts under the domain rules and closes them
// through the pricing engine.
type RentalService struct {
	rentals  RentalStore
	drivers  DriverDirectory
	vehicles VehicleDirectory
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

func New(rentals RentalStore, drivers DriverDirectory, vehicles VehicleDirectory, logger *slog.Logger, m *metrics.Metrics) *RentalService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &RentalService{
		rentals:  rentals,
		drivers:  drivers,
		vehicles: vehicles,
		metrics:  m,
		logger:   logger,
	}
}

// Open validates eligibility, plan and start date, then persists a new
// contract. All rule checks run before the insert; a violation is fatal to
// the operation and nothing is partially applied.
func (s *RentalService) Open(ctx context.Context, driverID, vehicleID uuid.UUID, planDays int, dailyRate decimal.Decimal, startDate time.Time) (*models.Rental, error) {
	now := requestcontext.Now(ctx)

	driver, err := s.drivers.FindByID(ctx, driverID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "driver not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load driver")
	}

	if _, err := s.vehicles.FindByID(ctx, vehicleID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "vehicle not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load vehicle")
	}

	if err := rules.ValidateRental(driver, planDays, startDate, now); err != nil {
		return nil, err
	}

	active, err := s.rentals.HasActiveForDriver(ctx, driverID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check active rentals")
	}
	if active {
		return nil, dErrors.New(dErrors.CodeBusinessRule, "driver already has an active rental")
	}

	rental, err := models.NewRental(driverID, vehicleID, planDays, dailyRate, startDate, now)
	if err != nil {
		return nil, err
	}

	if err := s.rentals.Create(ctx, rental); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create rental")
	}

	if s.metrics != nil {
		s.metrics.RentalsOpened.Inc()
	}
	return rental, nil
}

// Close prices the contract for the actual return date and persists the
// terminal fields. Closing an already-closed contract fails with a
// business-rule error and leaves the stored totals unchanged.
func (s *RentalService) Close(ctx context.Context, rentalID uuid.UUID, returnDate time.Time) (*models.Rental, error) {
	rental, err := s.rentals.FindByID(ctx, rentalID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "rental not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load rental")
	}

	if err := rental.Close(returnDate); err != nil {
		return nil, err
	}

	if err := s.rentals.Update(ctx, rental); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update rental")
	}

	if s.metrics != nil {
		s.metrics.RentalsClosed.Inc()
	}
	return rental, nil
}

// GetByID returns a contract by id.
func (s *RentalService) GetByID(ctx context.Context, id uuid.UUID) (*models.Rental, error) {
	rental, err := s.rentals.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "rental not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load rental")
	}
	return rental, nil
}

// ListForDriver returns a driver's contracts as a materialized slice.
func (s *RentalService) ListForDriver(ctx context.Context, driverID uuid.UUID) ([]*models.Rental, error) {
	rentals, err := s.rentals.ListForDriver(ctx, driverID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list rentals")
	}
	return rentals, nil
}
