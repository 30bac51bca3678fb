package models

import (
	"strings"
	"time"

	"github.com/google/uuid"

	dErrors "motofleet/pkg/domain-errors"
)

// MinModelYear is the oldest model year the registry accepts.
const MinModelYear = 1900

// Vehicle is the aggregate root for a fleet motorcycle.
//
// Invariants:
//   - ModelYear is within [1900, currentYear+1] at registration time
//   - Model and LicensePlate are non-empty
//   - LicensePlate is stored normalized (trimmed, upper-cased) and is
//     globally unique among vehicles
//   - CreatedAt is immutable after construction
//
// # Deletion Invariant
//
// A vehicle with any rental history, open or closed, is protected from
// deletion. This is enforced at the service layer (VehicleService.Delete)
// by consulting the rental store, not by a storage cascade.
type Vehicle struct {
	ID           uuid.UUID `json:"id"`
	Identifier   string    `json:"identifier"`
	ModelYear    int       `json:"model_year"`
	Model        string    `json:"model"`
	LicensePlate string    `json:"license_plate"`
	Available    bool      `json:"available"`
	CreatedAt    time.Time `json:"created_at"`
}

// NormalizePlate applies the canonical plate form used for storage and
// uniqueness checks.
func NormalizePlate(plate string) string {
	return strings.ToUpper(strings.TrimSpace(plate))
}

// NewVehicle validates inputs and builds a registered vehicle. The plate is
// normalized before the caller runs its uniqueness check, so both paths see
// the same canonical value.
func NewVehicle(identifier string, year int, model, plate string, now time.Time) (*Vehicle, error) {
	if year < MinModelYear || year > now.Year()+1 {
		return nil, dErrors.Newf(dErrors.CodeValidation, "model year must be between %d and %d", MinModelYear, now.Year()+1)
	}
	model = strings.TrimSpace(model)
	if model == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "model is required")
	}
	normalized := NormalizePlate(plate)
	if normalized == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "license plate is required")
	}
	return &Vehicle{
		ID:           uuid.New(),
		Identifier:   strings.TrimSpace(identifier),
		ModelYear:    year,
		Model:        model,
		LicensePlate: normalized,
		Available:    true,
		CreatedAt:    now,
	}, nil
}

// Equal reports value-based identity: same stored id and same entity kind.
// Kept explicit instead of a generic reflection comparison.
func (v *Vehicle) Equal(other *Vehicle) bool {
	if v == nil || other == nil {
		return v == other
	}
	return v.ID == other.ID
}
