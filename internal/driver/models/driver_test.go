package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "motofleet/pkg/domain-errors"
)

var testNow = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

func TestParseLicenseCategory(t *testing.T) {
	cases := map[string]LicenseCategory{
		"A":    LicenseCategoryA,
		"a":    LicenseCategoryA,
		"B":    LicenseCategoryB,
		"AB":   LicenseCategoryAB,
		"A+B":  LicenseCategoryAB,
		"a+b":  LicenseCategoryAB,
		"none": LicenseCategoryNone,
		" A ":  LicenseCategoryA,
	}
	for input, want := range cases {
		got, err := ParseLicenseCategory(input)
		require.NoError(t, err, "input %q", input)
		assert.Equal(t, want, got, "input %q", input)
	}

	for _, input := range []string{"", "C", "D", "motorcycle"} {
		_, err := ParseLicenseCategory(input)
		require.Error(t, err, "input %q", input)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	}
}

func TestNewDeliveryDriver(t *testing.T) {
	birth := time.Date(1990, 5, 1, 0, 0, 0, 0, time.UTC)

	t.Run("builds a driver with trimmed fields", func(t *testing.T) {
		d, err := NewDeliveryDriver(" drv-01 ", " Maria Silva ", " 12345678000190 ", birth, " CNH-001 ", LicenseCategoryA, "", testNow)
		require.NoError(t, err)
		assert.Equal(t, "Maria Silva", d.FullName)
		assert.Equal(t, "12345678000190", d.CNPJ)
		assert.Equal(t, "CNH-001", d.LicenseNumber)
	})

	t.Run("age is calendar-year subtraction", func(t *testing.T) {
		// Born 18 calendar years ago: passes even though the birthday within
		// the year has not happened yet.
		eighteenThisYear := time.Date(testNow.Year()-18, 12, 31, 0, 0, 0, 0, time.UTC)
		_, err := NewDeliveryDriver("drv-01", "Maria Silva", "12345678000190", eighteenThisYear, "CNH-001", LicenseCategoryA, "", testNow)
		assert.NoError(t, err)

		seventeen := time.Date(testNow.Year()-17, 1, 1, 0, 0, 0, 0, time.UTC)
		_, err = NewDeliveryDriver("drv-01", "Maria Silva", "12345678000190", seventeen, "CNH-001", LicenseCategoryA, "", testNow)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("requires name, CNPJ and license number", func(t *testing.T) {
		_, err := NewDeliveryDriver("drv-01", " ", "12345678000190", birth, "CNH-001", LicenseCategoryA, "", testNow)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))

		_, err = NewDeliveryDriver("drv-01", "Maria Silva", " ", birth, "CNH-001", LicenseCategoryA, "", testNow)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))

		_, err = NewDeliveryDriver("drv-01", "Maria Silva", "12345678000190", birth, " ", LicenseCategoryA, "", testNow)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func TestDriverEqual(t *testing.T) {
	birth := time.Date(1990, 5, 1, 0, 0, 0, 0, time.UTC)
	a, err := NewDeliveryDriver("drv-01", "Maria Silva", "12345678000190", birth, "CNH-001", LicenseCategoryA, "", testNow)
	require.NoError(t, err)
	b, err := NewDeliveryDriver("drv-02", "Joana Souza", "98765432000198", birth, "CNH-002", LicenseCategoryAB, "", testNow)
	require.NoError(t, err)

	assert.True(t, a.Equal(a))
	assert.False(t, a.Equal(b))

	// Identity is the id, not the profile fields.
	renamed := *a
	renamed.FullName = "Maria S. Oliveira"
	assert.True(t, a.Equal(&renamed))

	var nilDriver *DeliveryDriver
	assert.False(t, a.Equal(nil))
	assert.True(t, nilDriver.Equal(nil))
}

func TestCanRentMotorcycles(t *testing.T) {
	assert.True(t, (&DeliveryDriver{LicenseCategory: LicenseCategoryA}).CanRentMotorcycles())
	assert.True(t, (&DeliveryDriver{LicenseCategory: LicenseCategoryAB}).CanRentMotorcycles())
	assert.False(t, (&DeliveryDriver{LicenseCategory: LicenseCategoryB}).CanRentMotorcycles())
	assert.False(t, (&DeliveryDriver{LicenseCategory: LicenseCategoryNone}).CanRentMotorcycles())
	assert.False(t, (&DeliveryDriver{LicenseCategory: LicenseCategory("X")}).CanRentMotorcycles())
}
