package handler

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	driverservice "motofleet/internal/driver/service"
	driverstore "motofleet/internal/driver/store"
	"motofleet/internal/platform/middleware"
	rentalstore "motofleet/internal/rental/store"
)

const adminToken = "secret-token"

func newDriverRouter(t *testing.T) http.Handler {
	t.Helper()
	store := driverstore.NewInMemory()
	rentals := rentalstore.NewInMemory()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	svc := driverservice.New(store, rentals, nil, nil)

	h := New(svc, logger, middleware.RequireAdminToken(adminToken, logger))
	r := chi.NewRouter()
	h.Register(r)
	return r
}

func registerPayload(cnpj, license, category string) []byte {
	body, _ := json.Marshal(map[string]string{
		"identificador":   "drv-01",
		"nome":            "Maria Silva",
		"cnpj":            cnpj,
		"data_nascimento": "1990-05-01",
		"numero_cnh":      license,
		"tipo_cnh":        category,
	})
	return body
}

func TestRegisterDriverViaHandler(t *testing.T) {
	router := newDriverRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/entregadores",
		bytes.NewReader(registerPayload("12345678000190", "CNH-001", "A")))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 registering driver, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		ID              uuid.UUID `json:"id"`
		LicenseCategory string    `json:"license_category"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID == uuid.Nil {
		t.Fatalf("expected driver id in response")
	}
	if resp.LicenseCategory != "A" {
		t.Fatalf("expected category A, got %q", resp.LicenseCategory)
	}

	getReq := httptest.NewRequest(http.MethodGet, "/entregadores/"+resp.ID.String(), nil)
	getRec := httptest.NewRecorder()
	router.ServeHTTP(getRec, getReq)
	if getRec.Code != http.StatusOK {
		t.Fatalf("expected 200 fetching driver, got %d", getRec.Code)
	}
}

func TestRegisterDriverDuplicateCNPJ(t *testing.T) {
	router := newDriverRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/entregadores",
		bytes.NewReader(registerPayload("12345678000190", "CNH-001", "A")))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/entregadores",
		bytes.NewReader(registerPayload("12345678000190", "CNH-002", "A")))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate CNPJ, got %d", rec.Code)
	}
}

func TestRegisterDriverUnknownCategory(t *testing.T) {
	router := newDriverRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/entregadores",
		bytes.NewReader(registerPayload("12345678000190", "CNH-001", "C")))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown category, got %d", rec.Code)
	}
}

func TestDeleteDriver(t *testing.T) {
	router := newDriverRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/entregadores",
		bytes.NewReader(registerPayload("12345678000190", "CNH-001", "A")))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 registering driver, got %d", rec.Code)
	}
	var resp struct {
		ID uuid.UUID `json:"id"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	// Deletion is admin-only.
	delReq := httptest.NewRequest(http.MethodDelete, "/entregadores/"+resp.ID.String(), nil)
	delRec := httptest.NewRecorder()
	router.ServeHTTP(delRec, delReq)
	if delRec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 without admin token, got %d", delRec.Code)
	}

	delReq = httptest.NewRequest(http.MethodDelete, "/entregadores/"+resp.ID.String(), nil)
	delReq.Header.Set("X-Admin-Token", adminToken)
	delRec = httptest.NewRecorder()
	router.ServeHTTP(delRec, delReq)
	if delRec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 deleting driver, got %d: %s", delRec.Code, delRec.Body.String())
	}

	getReq := httptest.NewRequest(http.MethodGet, "/entregadores/"+resp.ID.String(), nil)
	getRec := httptest.NewRecorder()
	router.ServeHTTP(getRec, getReq)
	if getRec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after deletion, got %d", getRec.Code)
	}
}

func TestDeleteDriverNotFound(t *testing.T) {
	router := newDriverRouter(t)

	req := httptest.NewRequest(http.MethodDelete, "/entregadores/"+uuid.NewString(), nil)
	req.Header.Set("X-Admin-Token", adminToken)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown driver, got %d", rec.Code)
	}
}

func TestGetDriverNotFound(t *testing.T) {
	router := newDriverRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/entregadores/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown driver, got %d", rec.Code)
	}
}
