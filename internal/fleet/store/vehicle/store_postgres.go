package vehicle

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"motofleet/internal/fleet/models"
	"motofleet/pkg/platform/sentinel"
)

// PostgresStore persists vehicles in PostgreSQL. The vehicles table carries
// a unique index on license_plate, so concurrent registrations of the same
// plate resolve to one success and one conflict at the storage layer.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed vehicle store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == foreignKeyViolation
}

func (s *PostgresStore) Create(ctx context.Context, v *models.Vehicle) error {
	const query = `
		INSERT INTO vehicles (id, identifier, model_year, model, license_plate, available, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(ctx, query,
		v.ID, v.Identifier, v.ModelYear, v.Model, v.LicensePlate, v.Available, v.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert vehicle: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Vehicle, error) {
	const query = `
		SELECT id, identifier, model_year, model, license_plate, available, created_at
		FROM vehicles WHERE id = $1
	`
	return s.scanOne(s.db.QueryRowContext(ctx, query, id))
}

func (s *PostgresStore) FindByPlate(ctx context.Context, plate string) (*models.Vehicle, error) {
	const query = `
		SELECT id, identifier, model_year, model, license_plate, available, created_at
		FROM vehicles WHERE license_plate = $1
	`
	return s.scanOne(s.db.QueryRowContext(ctx, query, plate))
}

func (s *PostgresStore) ExistsByPlate(ctx context.Context, plate string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM vehicles WHERE license_plate = $1)`
	var exists bool
	if err := s.db.QueryRowContext(ctx, query, plate).Scan(&exists); err != nil {
		return false, fmt.Errorf("check plate: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) Update(ctx context.Context, v *models.Vehicle) error {
	const query = `
		UPDATE vehicles
		SET identifier = $2, model_year = $3, model = $4, license_plate = $5, available = $6
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query,
		v.ID, v.Identifier, v.ModelYear, v.Model, v.LicensePlate, v.Available)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("update vehicle: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update vehicle: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// Delete removes a vehicle. Registration events cascade at the schema
// level; rentals do not, so a rental created after the service-layer guard
// surfaces as a conflict here instead of a bare driver error.
func (s *PostgresStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM vehicles WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("delete vehicle: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete vehicle: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*models.Vehicle, error) {
	const query = `
		SELECT id, identifier, model_year, model, license_plate, available, created_at
		FROM vehicles ORDER BY created_at
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list vehicles: %w", err)
	}
	defer rows.Close()
	return scanAll(rows)
}

func (s *PostgresStore) SearchByPlate(ctx context.Context, fragment string) ([]*models.Vehicle, error) {
	const query = `
		SELECT id, identifier, model_year, model, license_plate, available, created_at
		FROM vehicles WHERE license_plate LIKE '%' || $1 || '%' ORDER BY created_at
	`
	rows, err := s.db.QueryContext(ctx, query, models.NormalizePlate(fragment))
	if err != nil {
		return nil, fmt.Errorf("search vehicles: %w", err)
	}
	defer rows.Close()
	return scanAll(rows)
}

func (s *PostgresStore) scanOne(row *sql.Row) (*models.Vehicle, error) {
	var v models.Vehicle
	err := row.Scan(&v.ID, &v.Identifier, &v.ModelYear, &v.Model, &v.LicensePlate, &v.Available, &v.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan vehicle: %w", err)
	}
	return &v, nil
}

func scanAll(rows *sql.Rows) ([]*models.Vehicle, error) {
	var out []*models.Vehicle
	for rows.Next() {
		var v models.Vehicle
		if err := rows.Scan(&v.ID, &v.Identifier, &v.ModelYear, &v.Model, &v.LicensePlate, &v.Available, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan vehicle: %w", err)
		}
		out = append(out, &v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate vehicles: %w", err)
	}
	return out, nil
}
