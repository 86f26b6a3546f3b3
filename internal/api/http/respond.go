package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"rentalreturn-backend/internal/domain"
	"rentalreturn-backend/internal/logger"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("Failed to encode response", "error", err)
	}
}

// statusFor maps a domain error code to an HTTP status.
func statusFor(code domain.ErrorCode) int {
	switch code {
	case domain.ErrCodeNotFound:
		return http.StatusNotFound
	case domain.ErrCodeInvalidState, domain.ErrCodeLineAlreadyProcessed:
		return http.StatusConflict
	case domain.ErrCodeInvalidQuantity, domain.ErrCodeQuantityExceeded, domain.ErrCodeInvalidAmount:
		return http.StatusUnprocessableEntity
	case domain.ErrCodeValidationFailure:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var de *domain.DomainError
	if errors.As(err, &de) {
		writeJSON(w, statusFor(de.Code), errorResponse{Code: string(de.Code), Message: de.Message})
		return
	}
	logger.ErrorContext(r.Context(), "Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	writeJSON(w, http.StatusInternalServerError, errorResponse{Code: "INTERNAL", Message: "internal server error"})
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var de *domain.DomainError
		if errors.As(err, &de) {
			return err
		}
		return domain.NewValidationError("invalid request body: %v", err)
	}
	return nil
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		return uuid.Nil, domain.NewValidationError("invalid %s %q", name, mux.Vars(r)[name])
	}
	return id, nil
}

func queryInt32(r *http.Request, name string) (*int32, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return nil, domain.NewValidationError("invalid %s %q", name, raw)
	}
	v := int32(n)
	return &v, nil
}

func queryMoney(r *http.Request, name string) (*domain.Money, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	m, err := domain.ParseMoney(raw)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
