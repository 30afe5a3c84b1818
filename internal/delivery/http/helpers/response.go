package helpers

import (
	"encoding/json"
	"errors"
	"net/http"

	"stagecrew/internal/domain"
)

// Error codes for API error responses. Use these with WriteJSONError.
const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeUnauthorized     = "unauthorized"
	ErrCodeForbidden        = "forbidden"
	ErrCodeNotFound         = "not_found"
	ErrCodeCapacityExceeded = "capacity_exceeded"
	ErrCodeDuplicate        = "duplicate"
	ErrCodePolicyWindow     = "policy_window"
	ErrCodeInvariant        = "invariant_violation"
	ErrCodeRoomUnavailable  = "room_unavailable"
	ErrCodeOversubscribed   = "resource_oversubscribed"
	ErrCodeInternalError    = "internal_error"
)

// APIError is the error object in the standardized API response envelope.
// swagger:model APIError
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// APIResponse is the standardized envelope for all API responses.
// On success: Data is set, Error is nil. On error: Data is nil, Error is set.
// swagger:model APIResponse
type APIResponse struct {
	Data  any       `json:"data"`
	Error *APIError `json:"error"`
}

// WriteJSONSuccess sets Content-Type to application/json, writes statusCode, and
// encodes an APIResponse with the given data and error set to nil.
func WriteJSONSuccess(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(APIResponse{Data: data, Error: nil})
}

// WriteJSONError sets Content-Type to application/json, writes statusCode, and
// encodes an APIResponse with data nil and the given error code and message.
func WriteJSONError(w http.ResponseWriter, statusCode int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(APIResponse{
		Data:  nil,
		Error: &APIError{Code: code, Message: message},
	})
}

// WriteDomainError maps known domain sentinels to their HTTP representation
// and writes the error response. It returns false when err is not a known
// sentinel; the caller should then log and write a 500.
func WriteDomainError(w http.ResponseWriter, err error) bool {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		WriteJSONError(w, http.StatusNotFound, ErrCodeNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidInput):
		WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		WriteJSONError(w, http.StatusForbidden, ErrCodeForbidden, err.Error())
	case errors.Is(err, domain.ErrCapacityExceeded):
		WriteJSONError(w, http.StatusConflict, ErrCodeCapacityExceeded, err.Error())
	case errors.Is(err, domain.ErrDuplicateAssignment), errors.Is(err, domain.ErrDuplicateWaitlist):
		WriteJSONError(w, http.StatusConflict, ErrCodeDuplicate, err.Error())
	case errors.Is(err, domain.ErrPolicyWindowViolation):
		WriteJSONError(w, http.StatusUnprocessableEntity, ErrCodePolicyWindow, err.Error())
	case errors.Is(err, domain.ErrInvariantViolation):
		WriteJSONError(w, http.StatusConflict, ErrCodeInvariant, err.Error())
	case errors.Is(err, domain.ErrRoomUnavailable):
		WriteJSONError(w, http.StatusConflict, ErrCodeRoomUnavailable, err.Error())
	case errors.Is(err, domain.ErrResourceOversubscribed):
		WriteJSONError(w, http.StatusConflict, ErrCodeOversubscribed, err.Error())
	default:
		return false
	}
	return true
}
