package event

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"motofleet/internal/fleet/models"
)

// PostgresStore persists registration events in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed registration event store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, e *models.RegistrationEvent) error {
	const query = `
		INSERT INTO registration_events (id, vehicle_id, message, raised_2024, occurred_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.db.ExecContext(ctx, query, e.ID, e.VehicleID, e.Message, e.Raised2024, e.OccurredAt)
	if err != nil {
		return fmt.Errorf("insert registration event: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListForVehicle(ctx context.Context, vehicleID uuid.UUID) ([]*models.RegistrationEvent, error) {
	const query = `
		SELECT id, vehicle_id, message, raised_2024, occurred_at
		FROM registration_events WHERE vehicle_id = $1 ORDER BY occurred_at
	`
	rows, err := s.db.QueryContext(ctx, query, vehicleID)
	if err != nil {
		return nil, fmt.Errorf("list registration events: %w", err)
	}
	defer rows.Close()

	var out []*models.RegistrationEvent
	for rows.Next() {
		var e models.RegistrationEvent
		if err := rows.Scan(&e.ID, &e.VehicleID, &e.Message, &e.Raised2024, &e.OccurredAt); err != nil {
			return nil, fmt.Errorf("scan registration event: %w", err)
		}
		out = append(out, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate registration events: %w", err)
	}
	return out, nil
}
