package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"motofleet/internal/driver/models"
	"motofleet/internal/platform/metrics"
	dErrors "motofleet/pkg/domain-errors"
	"motofleet/pkg/platform/sentinel"
	"motofleet/pkg/requestcontext"
)

// DriverStore is the persistence port for delivery drivers. Implementations
// enforce CNPJ and license-number uniqueness atomically with the insert.
type DriverStore interface {
	Create(ctx context.Context, d *models.DeliveryDriver) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.DeliveryDriver, error)
	ExistsByCNPJ(ctx context.Context, cnpj string) (bool, error)
	ExistsByLicenseNumber(ctx context.Context, licenseNumber string) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// RentalCascade removes a driver's rental contracts when the driver is
// removed. The postgres schema cascades on its own; the in-memory stores
// rely on this call.
type RentalCascade interface {
	DeleteForDriver(ctx context.Context, driverID uuid.UUID) error
}

// DriverService onboards and offboards delivery drivers.
type DriverService struct {
	drivers DriverStore
	rentals RentalCascade
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func New(drivers DriverStore, rentals RentalCascade, logger *slog.Logger, m *metrics.Metrics) *DriverService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &DriverService{drivers: drivers, rentals: rentals, metrics: m, logger: logger}
}

// Register validates and persists a new delivery driver. All checks run
// before the insert; uniqueness races resolve at the store.
func (s *DriverService) Register(ctx context.Context, identifier, fullName, cnpj string, birthDate time.Time, licenseNumber, licenseCategory, licenseImageRef string) (*models.DeliveryDriver, error) {
	now := requestcontext.Now(ctx)

	category, err := models.ParseLicenseCategory(licenseCategory)
	if err != nil {
		return nil, err
	}

	d, err := models.NewDeliveryDriver(identifier, fullName, cnpj, birthDate, licenseNumber, category, licenseImageRef, now)
	if err != nil {
		return nil, err
	}

	exists, err := s.drivers.ExistsByCNPJ(ctx, d.CNPJ)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check CNPJ")
	}
	if exists {
		return nil, dErrors.New(dErrors.CodeConflict, "CNPJ already registered")
	}

	exists, err = s.drivers.ExistsByLicenseNumber(ctx, d.LicenseNumber)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check license number")
	}
	if exists {
		return nil, dErrors.New(dErrors.CodeConflict, "driver license number already registered")
	}

	if err := s.drivers.Create(ctx, d); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "CNPJ or license number already registered")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create driver")
	}

	if s.metrics != nil {
		s.metrics.DriversRegistered.Inc()
	}
	return d, nil
}

// Delete removes a driver and every rental contract the driver owns. The
// driver is the owning side of the relation, so closed history goes with
// the account.
func (s *DriverService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.drivers.FindByID(ctx, id); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "driver not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load driver")
	}

	if err := s.rentals.DeleteForDriver(ctx, id); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete driver rentals")
	}
	if err := s.drivers.Delete(ctx, id); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "driver not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete driver")
	}

	s.logger.InfoContext(ctx, "driver deleted", "driver_id", id)
	return nil
}

// GetByID returns a driver by id.
func (s *DriverService) GetByID(ctx context.Context, id uuid.UUID) (*models.DeliveryDriver, error) {
	d, err := s.drivers.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "driver not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load driver")
	}
	return d, nil
}
