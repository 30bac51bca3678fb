package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"motofleet/internal/rental/models"
	"motofleet/pkg/platform/sentinel"
)

// PostgresStore persists rental contracts in PostgreSQL. Monetary columns
// are NUMERIC; decimal types scan them without float conversion.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed rental store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, r *models.Rental) error {
	const query = `
		INSERT INTO rentals (id, driver_id, vehicle_id, plan_days, daily_rate, start_date, expected_end_date, actual_end_date, total_cost, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.db.ExecContext(ctx, query,
		r.ID, r.DriverID, r.VehicleID, r.PlanDays, r.DailyRate,
		r.StartDate, r.ExpectedEndDate, r.ActualEndDate, r.TotalCost, r.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert rental: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Rental, error) {
	const query = `
		SELECT id, driver_id, vehicle_id, plan_days, daily_rate, start_date, expected_end_date, actual_end_date, total_cost, created_at
		FROM rentals WHERE id = $1
	`
	var r models.Rental
	var actualEnd sql.NullTime
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&r.ID, &r.DriverID, &r.VehicleID, &r.PlanDays, &r.DailyRate,
		&r.StartDate, &r.ExpectedEndDate, &actualEnd, &r.TotalCost, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan rental: %w", err)
	}
	if actualEnd.Valid {
		r.ActualEndDate = &actualEnd.Time
	}
	return &r, nil
}

// Update writes the terminal pricing fields after a close.
func (s *PostgresStore) Update(ctx context.Context, r *models.Rental) error {
	const query = `
		UPDATE rentals SET actual_end_date = $2, total_cost = $3 WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query, r.ID, r.ActualEndDate, r.TotalCost)
	if err != nil {
		return fmt.Errorf("update rental: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update rental: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListForDriver(ctx context.Context, driverID uuid.UUID) ([]*models.Rental, error) {
	const query = `
		SELECT id, driver_id, vehicle_id, plan_days, daily_rate, start_date, expected_end_date, actual_end_date, total_cost, created_at
		FROM rentals WHERE driver_id = $1 ORDER BY created_at
	`
	rows, err := s.db.QueryContext(ctx, query, driverID)
	if err != nil {
		return nil, fmt.Errorf("list rentals: %w", err)
	}
	defer rows.Close()

	var out []*models.Rental
	for rows.Next() {
		var r models.Rental
		var actualEnd sql.NullTime
		if err := rows.Scan(
			&r.ID, &r.DriverID, &r.VehicleID, &r.PlanDays, &r.DailyRate,
			&r.StartDate, &r.ExpectedEndDate, &actualEnd, &r.TotalCost, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan rental: %w", err)
		}
		if actualEnd.Valid {
			r.ActualEndDate = &actualEnd.Time
		}
		out = append(out, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rentals: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) HasAnyForVehicle(ctx context.Context, vehicleID uuid.UUID) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM rentals WHERE vehicle_id = $1)`
	var exists bool
	if err := s.db.QueryRowContext(ctx, query, vehicleID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check vehicle rentals: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) HasActiveForDriver(ctx context.Context, driverID uuid.UUID) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM rentals WHERE driver_id = $1 AND actual_end_date IS NULL)`
	var exists bool
	if err := s.db.QueryRowContext(ctx, query, driverID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check driver rentals: %w", err)
	}
	return exists, nil
}

// DeleteForDriver removes a driver's contracts. The schema also cascades on
// driver deletion; this exists for callers managing the cascade explicitly.
func (s *PostgresStore) DeleteForDriver(ctx context.Context, driverID uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM rentals WHERE driver_id = $1`, driverID); err != nil {
		return fmt.Errorf("delete driver rentals: %w", err)
	}
	return nil
}
