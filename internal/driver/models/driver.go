package models

import (
	"strings"
	"time"

	"github.com/google/uuid"

	dErrors "motofleet/pkg/domain-errors"
)

// LicenseCategory is the driver-license category enumeration.
type LicenseCategory string

const (
	LicenseCategoryNone LicenseCategory = "none"
	LicenseCategoryA    LicenseCategory = "A"
	LicenseCategoryB    LicenseCategory = "B"
	LicenseCategoryAB   LicenseCategory = "AB"
)

// ParseLicenseCategory validates a category token. Unrecognized tokens are
// rejected at the edge; CanRentMotorcycles additionally treats anything
// outside A/AB as ineligible.
func ParseLicenseCategory(s string) (LicenseCategory, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "A":
		return LicenseCategoryA, nil
	case "B":
		return LicenseCategoryB, nil
	case "AB", "A+B":
		return LicenseCategoryAB, nil
	case "NONE":
		return LicenseCategoryNone, nil
	default:
		return "", dErrors.Newf(dErrors.CodeValidation, "unknown license category: %s", s)
	}
}

// MinDriverAge is the registration age floor, in calendar years.
const MinDriverAge = 18

// DeliveryDriver is the aggregate root for an onboarded delivery driver.
//
// Invariants:
//   - Age at registration is at least 18 calendar years (year subtraction,
//     not elapsed days: a driver turning 18 later this calendar year passes)
//   - CNPJ is globally unique
//   - LicenseNumber is globally unique
//
// The driver owns its rental contracts: deleting a driver cascades to its
// rentals. Rentals are reached through explicit queries
// (RentalService.ListForDriver), not a tracked collection.
type DeliveryDriver struct {
	ID              uuid.UUID       `json:"id"`
	Identifier      string          `json:"identifier"`
	FullName        string          `json:"full_name"`
	CNPJ            string          `json:"cnpj"`
	BirthDate       time.Time       `json:"birth_date"`
	LicenseNumber   string          `json:"license_number"`
	LicenseCategory LicenseCategory `json:"license_category"`
	LicenseImageRef string          `json:"license_image_ref"`
	CreatedAt       time.Time       `json:"created_at"`
}

// NewDeliveryDriver validates inputs and builds a driver record.
func NewDeliveryDriver(identifier, fullName, cnpj string, birthDate time.Time, licenseNumber string, category LicenseCategory, licenseImageRef string, now time.Time) (*DeliveryDriver, error) {
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "full name is required")
	}
	cnpj = strings.TrimSpace(cnpj)
	if cnpj == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "CNPJ is required")
	}
	licenseNumber = strings.TrimSpace(licenseNumber)
	if licenseNumber == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "driver license number is required")
	}
	// Calendar-year subtraction on purpose: the birthday within the year is
	// not considered.
	if now.Year()-birthDate.Year() < MinDriverAge {
		return nil, dErrors.Newf(dErrors.CodeValidation, "driver must be at least %d years old", MinDriverAge)
	}
	return &DeliveryDriver{
		ID:              uuid.New(),
		Identifier:      strings.TrimSpace(identifier),
		FullName:        fullName,
		CNPJ:            cnpj,
		BirthDate:       birthDate,
		LicenseNumber:   licenseNumber,
		LicenseCategory: category,
		LicenseImageRef: strings.TrimSpace(licenseImageRef),
		CreatedAt:       now,
	}, nil
}

// CanRentMotorcycles reports whether the license category grants motorcycle
// privileges. Only A and AB qualify; every other value, including
// unrecognized ones, does not.
func (d *DeliveryDriver) CanRentMotorcycles() bool {
	return d.LicenseCategory == LicenseCategoryA || d.LicenseCategory == LicenseCategoryAB
}

// Equal reports value-based identity: same stored id, same entity kind.
func (d *DeliveryDriver) Equal(other *DeliveryDriver) bool {
	if d == nil || other == nil {
		return d == other
	}
	return d.ID == other.ID
}
