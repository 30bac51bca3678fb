package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"motofleet/internal/driver/models"
	"motofleet/internal/transport/shared"
	dErrors "motofleet/pkg/domain-errors"
	"motofleet/pkg/requestcontext"
)

// Service defines the interface for driver operations.
type Service interface {
	Register(ctx context.Context, identifier, fullName, cnpj string, birthDate time.Time, licenseNumber, licenseCategory, licenseImageRef string) (*models.DeliveryDriver, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.DeliveryDriver, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Handler handles the /entregadores endpoints.
type Handler struct {
	logger  *slog.Logger
	drivers Service
	admin   func(http.Handler) http.Handler
}

// New creates a driver Handler. admin guards the destructive routes; nil
// leaves them unguarded (tests).
func New(drivers Service, logger *slog.Logger, admin func(http.Handler) http.Handler) *Handler {
	return &Handler{logger: logger, drivers: drivers, admin: admin}
}

// Register registers the driver routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/entregadores", h.handleRegister)
	r.Get("/entregadores/{id}", h.handleGet)
	if h.admin != nil {
		r.With(h.admin).Delete("/entregadores/{id}", h.handleDelete)
	} else {
		r.Delete("/entregadores/{id}", h.handleDelete)
	}
}

type registerDriverRequest struct {
	Identifier      string `json:"identificador"`
	FullName        string `json:"nome"`
	CNPJ            string `json:"cnpj"`
	BirthDate       string `json:"data_nascimento"`
	LicenseNumber   string `json:"numero_cnh"`
	LicenseCategory string `json:"tipo_cnh"`
	LicenseImageRef string `json:"imagem_cnh"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req registerDriverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid request body"))
		return
	}
	birthDate, err := shared.ParseDate(req.BirthDate)
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid birth date"))
		return
	}

	driver, err := h.drivers.Register(ctx, req.Identifier, req.FullName, req.CNPJ, birthDate,
		req.LicenseNumber, req.LicenseCategory, req.LicenseImageRef)
	if err != nil {
		h.logger.WarnContext(ctx, "driver registration rejected",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, driver)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid driver id"))
		return
	}
	driver, err := h.drivers.GetByID(r.Context(), id)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, driver)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid driver id"))
		return
	}
	if err := h.drivers.Delete(ctx, id); err != nil {
		h.logger.WarnContext(ctx, "driver deletion rejected",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
