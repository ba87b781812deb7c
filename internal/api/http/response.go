package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"camera-rental-backend/internal/domain"
	"camera-rental-backend/internal/logger"
	"camera-rental-backend/internal/saga"

	"github.com/gorilla/mux"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

var statusByCode = map[string]int{
	domain.ErrCodeInvalidArgument: http.StatusBadRequest,
	domain.ErrCodeUnauthenticated: http.StatusUnauthorized,
	domain.ErrCodeNotFound:        http.StatusNotFound,
	domain.ErrCodeConflict:        http.StatusConflict,
	domain.ErrCodeRateLimited:     http.StatusTooManyRequests,
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

// writeError maps a domain error to its HTTP status. Anything without a domain
// code is logged and reported as a generic internal error.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var de *domain.DomainError
	if errors.As(err, &de) {
		status, ok := statusByCode[de.Code]
		if ok {
			if saga.CompensationFailed(err) {
				logger.ErrorContext(r.Context(), "Workflow failed and left state behind", "error", err)
			}
			writeJSON(w, status, errorResponse{Error: errorBody{Code: de.Code, Message: de.Message}})
			return
		}
	}
	logger.ErrorContext(r.Context(), "Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: errorBody{
		Code:    domain.ErrCodeInternal,
		Message: "internal server error",
	}})
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return domain.NewInvalidArgumentError("invalid request body: " + err.Error())
	}
	return nil
}

func pathID(r *http.Request, name string) (int32, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || id <= 0 {
		return 0, domain.NewInvalidArgumentError("invalid " + name + ": " + raw)
	}
	return int32(id), nil
}

func queryInt32(r *http.Request, name string, fallback int32) (int32, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return 0, domain.NewInvalidArgumentError("invalid " + name + ": " + raw)
	}
	return int32(v), nil
}

type listResponse[T any] struct {
	Items []T   `json:"items"`
	Total int32 `json:"total,omitempty"`
	Page  int32 `json:"page,omitempty"`
}
