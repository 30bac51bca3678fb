package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"motofleet/internal/fleet/models"
	"motofleet/internal/transport/shared"
	dErrors "motofleet/pkg/domain-errors"
	"motofleet/pkg/requestcontext"
)

// Service defines the interface for fleet operations.
type Service interface {
	Register(ctx context.Context, identifier string, year int, model, plate string) (*models.Vehicle, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Vehicle, error)
	List(ctx context.Context) ([]*models.Vehicle, error)
	FindByPlate(ctx context.Context, fragment string) ([]*models.Vehicle, error)
	UpdatePlate(ctx context.Context, id uuid.UUID, newPlate string) (*models.Vehicle, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	EventsForVehicle(ctx context.Context, vehicleID uuid.UUID) ([]*models.RegistrationEvent, error)
}

// Handler handles the /moto endpoints.
type Handler struct {
	logger *slog.Logger
	fleet  Service
	admin  func(http.Handler) http.Handler
}

// New creates a fleet Handler. admin guards the destructive routes; nil
// leaves them unguarded (tests).
func New(fleet Service, logger *slog.Logger, admin func(http.Handler) http.Handler) *Handler {
	return &Handler{logger: logger, fleet: fleet, admin: admin}
}

// Register registers the fleet routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/moto", h.handleRegister)
	r.Get("/moto", h.handleList)
	r.Get("/moto/{id}", h.handleGet)
	r.Get("/moto/{id}/eventos", h.handleEvents)
	r.Put("/moto/{id}/placa", h.handleUpdatePlate)
	if h.admin != nil {
		r.With(h.admin).Delete("/moto/{id}", h.handleDelete)
	} else {
		r.Delete("/moto/{id}", h.handleDelete)
	}
}

type createVehicleRequest struct {
	Identifier string `json:"identificador"`
	Year       int    `json:"ano"`
	Model      string `json:"modelo"`
	Plate      string `json:"placa"`
}

type updatePlateRequest struct {
	Plate string `json:"placa"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createVehicleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid request body"))
		return
	}

	vehicle, err := h.fleet.Register(ctx, req.Identifier, req.Year, req.Model, req.Plate)
	if err != nil {
		h.logWarn(ctx, "vehicle registration rejected", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, vehicle)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var (
		vehicles []*models.Vehicle
		err      error
	)
	if fragment := r.URL.Query().Get("placa"); fragment != "" {
		vehicles, err = h.fleet.FindByPlate(ctx, fragment)
	} else {
		vehicles, err = h.fleet.List(ctx)
	}
	if err != nil {
		h.logWarn(ctx, "vehicle listing failed", err)
		shared.WriteError(w, err)
		return
	}
	if vehicles == nil {
		vehicles = []*models.Vehicle{}
	}
	shared.WriteJSON(w, http.StatusOK, vehicles)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid vehicle id"))
		return
	}
	vehicle, err := h.fleet.GetByID(r.Context(), id)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, vehicle)
}

func (h *Handler) handleEvents(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid vehicle id"))
		return
	}
	events, err := h.fleet.EventsForVehicle(r.Context(), id)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if events == nil {
		events = []*models.RegistrationEvent{}
	}
	shared.WriteJSON(w, http.StatusOK, events)
}

func (h *Handler) handleUpdatePlate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid vehicle id"))
		return
	}
	var req updatePlateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid request body"))
		return
	}
	vehicle, err := h.fleet.UpdatePlate(ctx, id, req.Plate)
	if err != nil {
		h.logWarn(ctx, "plate update rejected", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, vehicle)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid vehicle id"))
		return
	}
	deleted, err := h.fleet.Delete(ctx, id)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if !deleted {
		// Rental history protects the vehicle.
		shared.WriteError(w, dErrors.New(dErrors.CodeBusinessRule, "vehicle has rental history and cannot be deleted"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) logWarn(ctx context.Context, msg string, err error) {
	h.logger.WarnContext(ctx, msg,
		"request_id", requestcontext.RequestID(ctx),
		"error", err.Error(),
	)
}
