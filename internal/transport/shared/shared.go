// Package shared centralizes the JSON envelopes used by every handler so
// transport responses stay consistent across modules.
package shared

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	dErrors "motofleet/pkg/domain-errors"
)

// WriteJSON writes a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates a domain error into the stable error envelope.
// Callers never branch on message text; the code is the contract.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	message := "internal error"
	var de *dErrors.Error
	if errors.As(err, &de) {
		message = de.Message
	}
	WriteJSON(w, dErrors.ToHTTPStatus(code), map[string]string{
		"error":   string(code),
		"message": message,
	})
}

// ParseDate accepts RFC 3339 timestamps and bare calendar dates.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
