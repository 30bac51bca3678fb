package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"motofleet/internal/driver/models"
	"motofleet/pkg/platform/sentinel"
)

// PostgresStore persists delivery drivers in PostgreSQL. The drivers table
// carries unique indexes on cnpj and license_number.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed driver store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

func (s *PostgresStore) Create(ctx context.Context, d *models.DeliveryDriver) error {
	const query = `
		INSERT INTO drivers (id, identifier, full_name, cnpj, birth_date, license_number, license_category, license_image_ref, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(ctx, query,
		d.ID, d.Identifier, d.FullName, d.CNPJ, d.BirthDate,
		d.LicenseNumber, string(d.LicenseCategory), d.LicenseImageRef, d.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert driver: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id uuid.UUID) (*models.DeliveryDriver, error) {
	const query = `
		SELECT id, identifier, full_name, cnpj, birth_date, license_number, license_category, license_image_ref, created_at
		FROM drivers WHERE id = $1
	`
	var d models.DeliveryDriver
	var category string
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&d.ID, &d.Identifier, &d.FullName, &d.CNPJ, &d.BirthDate,
		&d.LicenseNumber, &category, &d.LicenseImageRef, &d.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan driver: %w", err)
	}
	d.LicenseCategory = models.LicenseCategory(category)
	return &d, nil
}

func (s *PostgresStore) ExistsByCNPJ(ctx context.Context, cnpj string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM drivers WHERE cnpj = $1)`
	var exists bool
	if err := s.db.QueryRowContext(ctx, query, cnpj).Scan(&exists); err != nil {
		return false, fmt.Errorf("check cnpj: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) ExistsByLicenseNumber(ctx context.Context, licenseNumber string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM drivers WHERE license_number = $1)`
	var exists bool
	if err := s.db.QueryRowContext(ctx, query, licenseNumber).Scan(&exists); err != nil {
		return false, fmt.Errorf("check license number: %w", err)
	}
	return exists, nil
}

// Delete removes a driver. Rentals cascade at the schema level: the driver
// is the owning side of the driver-rental relationship.
func (s *PostgresStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM drivers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete driver: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete driver: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
