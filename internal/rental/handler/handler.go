package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"motofleet/internal/rental/models"
	"motofleet/internal/transport/shared"
	dErrors "motofleet/pkg/domain-errors"
	"motofleet/pkg/requestcontext"
)

// Service defines the interface for rental operations.
type Service interface {
	Open(ctx context.Context, driverID, vehicleID uuid.UUID, planDays int, dailyRate decimal.Decimal, startDate time.Time) (*models.Rental, error)
	Close(ctx context.Context, rentalID uuid.UUID, returnDate time.Time) (*models.Rental, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Rental, error)
	ListForDriver(ctx context.Context, driverID uuid.UUID) ([]*models.Rental, error)
}

// Handler handles the /locacao endpoints.
type Handler struct {
	logger  *slog.Logger
	rentals Service
}

// New creates a rental Handler.
func New(rentals Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, rentals: rentals}
}

// Register registers the rental routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/locacao", h.handleOpen)
	r.Get("/locacao/{id}", h.handleGet)
	r.Put("/locacao/{id}/devolucao", h.handleReturn)
	r.Get("/entregadores/{id}/locacoes", h.handleListForDriver)
}

type openRentalRequest struct {
	DriverID  uuid.UUID       `json:"entregador_id"`
	VehicleID uuid.UUID       `json:"moto_id"`
	PlanDays  int             `json:"plano"`
	DailyRate decimal.Decimal `json:"valor_diaria"`
	StartDate string          `json:"data_inicio"`
}

type returnRequest struct {
	ReturnDate string `json:"data_devolucao"`
}

func (h *Handler) handleOpen(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req openRentalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid request body"))
		return
	}
	startDate, err := shared.ParseDate(req.StartDate)
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid start date"))
		return
	}

	rental, err := h.rentals.Open(ctx, req.DriverID, req.VehicleID, req.PlanDays, req.DailyRate, startDate)
	if err != nil {
		h.logger.WarnContext(ctx, "rental rejected",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, rental)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid rental id"))
		return
	}
	rental, err := h.rentals.GetByID(r.Context(), id)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, rental)
}

func (h *Handler) handleReturn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid rental id"))
		return
	}
	var req returnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid request body"))
		return
	}
	returnDate, err := shared.ParseDate(req.ReturnDate)
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid return date"))
		return
	}

	rental, err := h.rentals.Close(ctx, id, returnDate)
	if err != nil {
		h.logger.WarnContext(ctx, "rental return rejected",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, rental)
}

func (h *Handler) handleListForDriver(w http.ResponseWriter, r *http.Request) {
	driverID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid driver id"))
		return
	}
	rentals, err := h.rentals.ListForDriver(r.Context(), driverID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if rentals == nil {
		rentals = []*models.Rental{}
	}
	shared.WriteJSON(w, http.StatusOK, rentals)
}
