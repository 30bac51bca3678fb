package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"motofleet/internal/fleet/cache"
	"motofleet/internal/fleet/models"
	"motofleet/internal/platform/metrics"
	dErrors "motofleet/pkg/domain-errors"
	"motofleet/pkg/platform/sentinel"
	"motofleet/pkg/requestcontext"
)

// DefaultDistinguishedYear is the model year whose registrations raise a
// domain event and broker broadcast.
const DefaultDistinguishedYear = 2024

// VehicleStore is the persistence port for vehicles. Implementations must
// make the plate-uniqueness check and the insert effectively atomic: a race
// between two registrations with the same plate yields one success and one
// sentinel.ErrConflict.
type VehicleStore interface {
	Create(ctx context.Context, v *models.Vehicle) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Vehicle, error)
	FindByPlate(ctx context.Context, plate string) (*models.Vehicle, error)
	ExistsByPlate(ctx context.Context, plate string) (bool, error)
	Update(ctx context.Context, v *models.Vehicle) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]*models.Vehicle, error)
	SearchByPlate(ctx context.Context, fragment string) ([]*models.Vehicle, error)
}

// EventStore persists registration events.
type EventStore interface {
	Append(ctx context.Context, e *models.RegistrationEvent) error
	ListForVehicle(ctx context.Context, vehicleID uuid.UUID) ([]*models.RegistrationEvent, error)
}

// RentalGuard answers whether rental history references a vehicle.
type RentalGuard interface {
	HasAnyForVehicle(ctx context.Context, vehicleID uuid.UUID) (bool, error)
}

// VehicleService is the fleet registry: plate uniqueness, field validity,
// and the conditional event relay for distinguished-year registrations.
type VehicleService struct {
	vehicles          VehicleStore
	events            EventStore
	rentals           RentalGuard
	relay             *Relay
	cache             *cache.VehicleCache
	metrics           *metrics.Metrics
	logger            *slog.Logger
	distinguishedYear int
}

type serviceConfig struct {
	logger            *slog.Logger
	metrics           *metrics.Metrics
	cache             *cache.VehicleCache
	distinguishedYear int
}

type Option func(*serviceConfig)

func WithLogger(logger *slog.Logger) Option {
	return func(c *serviceConfig) { c.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *serviceConfig) { c.metrics = m }
}

func WithCache(vc *cache.VehicleCache) Option {
	return func(c *serviceConfig) { c.cache = vc }
}

func WithDistinguishedYear(year int) Option {
	return func(c *serviceConfig) { c.distinguishedYear = year }
}

func New(vehicles VehicleStore, events EventStore, rentals RentalGuard, relay *Relay, opts ...Option) *VehicleService {
	cfg := &serviceConfig{distinguishedYear: DefaultDistinguishedYear}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.DiscardHandler)
	}
	return &VehicleService{
		vehicles:          vehicles,
		events:            events,
		rentals:           rentals,
		relay:             relay,
		cache:             cfg.cache,
		metrics:           cfg.metrics,
		logger:            cfg.logger,
		distinguishedYear: cfg.distinguishedYear,
	}
}

// Register validates and persists a new vehicle. Validation and the plate
// uniqueness check run before any mutation. For distinguished-year vehicles
// the registration event is persisted and broadcast after the insert, both
// best-effort: their failure never rolls back the vehicle record.
func (s *VehicleService) Register(ctx context.Context, identifier string, year int, model, plate string) (*models.Vehicle, error) {
	now := requestcontext.Now(ctx)

	v, err := models.NewVehicle(identifier, year, model, plate, now)
	if err != nil {
		return nil, err
	}

	exists, err := s.vehicles.ExistsByPlate(ctx, v.LicensePlate)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check license plate")
	}
	if exists {
		return nil, dErrors.Newf(dErrors.CodeConflict, "license plate already registered: %s", v.LicensePlate)
	}

	if err := s.vehicles.Create(ctx, v); err != nil {
		// Lost the race against a concurrent registration of the same plate.
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.Newf(dErrors.CodeConflict, "license plate already registered: %s", v.LicensePlate)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create vehicle")
	}

	if year == s.distinguishedYear {
		event := models.NewRegistrationEvent(v, true, now)
		if err := s.events.Append(ctx, event); err != nil {
			s.logger.ErrorContext(ctx, "failed to persist registration event",
				"vehicle_id", v.ID.String(),
				"error", err,
			)
		} else {
			s.relay.Notify(ctx, event, v)
		}
	}

	if s.metrics != nil {
		s.metrics.VehiclesRegistered.Inc()
	}
	return v, nil
}

// GetByID returns a vehicle, consulting the read cache first.
func (s *VehicleService) GetByID(ctx context.Context, id uuid.UUID) (*models.Vehicle, error) {
	if v := s.cache.Get(ctx, id); v != nil {
		return v, nil
	}
	v, err := s.vehicles.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "vehicle not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load vehicle")
	}
	s.cache.Set(ctx, v)
	return v, nil
}

// List returns every registered vehicle.
func (s *VehicleService) List(ctx context.Context) ([]*models.Vehicle, error) {
	vehicles, err := s.vehicles.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list vehicles")
	}
	return vehicles, nil
}

// FindByPlate returns vehicles whose plate contains the fragment,
// case-insensitively.
func (s *VehicleService) FindByPlate(ctx context.Context, fragment string) ([]*models.Vehicle, error) {
	if strings.TrimSpace(fragment) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "license plate fragment is required")
	}
	vehicles, err := s.vehicles.SearchByPlate(ctx, fragment)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to search vehicles")
	}
	return vehicles, nil
}

// UpdatePlate changes a vehicle's license plate, keeping the uniqueness
// invariant over normalized plates.
func (s *VehicleService) UpdatePlate(ctx context.Context, id uuid.UUID, newPlate string) (*models.Vehicle, error) {
	normalized := models.NormalizePlate(newPlate)
	if normalized == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "license plate is required")
	}

	holder, err := s.vehicles.FindByPlate(ctx, normalized)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check license plate")
	}
	if holder != nil && holder.ID != id {
		return nil, dErrors.Newf(dErrors.CodeConflict, "license plate already registered: %s", normalized)
	}

	v, err := s.vehicles.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "vehicle not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load vehicle")
	}

	v.LicensePlate = normalized
	if err := s.vehicles.Update(ctx, v); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.Newf(dErrors.CodeConflict, "license plate already registered: %s", normalized)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update vehicle")
	}

	s.cache.Invalidate(ctx, id)
	return v, nil
}

// Delete removes a vehicle unless rental history references it. Returns
// false, with the vehicle intact, when any rental (open or closed) exists.
func (s *VehicleService) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	referenced, err := s.rentals.HasAnyForVehicle(ctx, id)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check rental history")
	}
	if referenced {
		return false, nil
	}

	if err := s.vehicles.Delete(ctx, id); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return false, dErrors.New(dErrors.CodeNotFound, "vehicle not found")
		}
		if errors.Is(err, sentinel.ErrConflict) {
			// A rental slipped in after the guard check.
			return false, nil
		}
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete vehicle")
	}

	s.cache.Invalidate(ctx, id)
	return true, nil
}

// EventsForVehicle returns the registration events recorded for a vehicle.
// Explicit query call instead of a lazily loaded collection.
func (s *VehicleService) EventsForVehicle(ctx context.Context, vehicleID uuid.UUID) ([]*models.RegistrationEvent, error) {
	events, err := s.events.ListForVehicle(ctx, vehicleID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list registration events")
	}
	return events, nil
}
