// Package respond owns the wire envelope. Handlers hand it typed results or
// apperr values; nothing else writes JSON to clients.
package respond

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/hongminglow/blog-be/internal/apperr"
)

// Envelope is the standard API response wrapper used across handlers.
type Envelope struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// Success writes {status:"success", data:...}.
func Success(w http.ResponseWriter, status int, data any) {
	write(w, status, Envelope{Status: "success", Data: data})
}

// JSON writes an arbitrary payload, for responses that sit outside the
// envelope shape (the login response carries a top-level token field).
func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("respond: encode payload failed: %v", err)
	}
}

// Err is the single translation from the error taxonomy to an HTTP response.
// 4xx failures report status "fail", 5xx report "error"; internal causes are
// logged here and never reach the client.
func Err(w http.ResponseWriter, err error) {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		appErr = apperr.Internal("Something went wrong", err)
	}

	status := statusFor(appErr.Kind)
	envelopeStatus := "fail"
	if status >= http.StatusInternalServerError {
		envelopeStatus = "error"
		log.Printf("internal error: %v", appErr)
	}

	write(w, status, Envelope{Status: envelopeStatus, Message: appErr.Message})
}

func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation, apperr.KindBadCredentials:
		return http.StatusBadRequest
	case apperr.KindUnauthenticated:
		return http.StatusUnauthorized
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func write(w http.ResponseWriter, status int, payload Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("respond: encode payload failed: %v", err)
	}
}
