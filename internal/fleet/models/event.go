package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RegistrationEvent records that a vehicle of the distinguished model year
// was registered. Created once at registration time, never mutated. The
// event references its vehicle and is removed along with it.
type RegistrationEvent struct {
	ID         uuid.UUID `json:"id"`
	VehicleID  uuid.UUID `json:"vehicle_id"`
	Message    string    `json:"message"`
	Raised2024 bool      `json:"raised_2024"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewRegistrationEvent builds the event for a just-registered vehicle.
// raised marks whether the vehicle matched the distinguished model year.
func NewRegistrationEvent(v *Vehicle, raised bool, now time.Time) *RegistrationEvent {
	return &RegistrationEvent{
		ID:         uuid.New(),
		VehicleID:  v.ID,
		Message:    fmt.Sprintf("New motorcycle registered: %s %s %d", v.Identifier, v.Model, v.ModelYear),
		Raised2024: raised,
		OccurredAt: now,
	}
}
