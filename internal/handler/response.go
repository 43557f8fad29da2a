package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/efreitasn/marketcore/internal/domain"
)

// WriteJSON writes a JSON response with the given status code and data.
// Sets Content-Type to application/json before writing the status code.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data) // Write error intentionally ignored in response helper
}

// errorResponse is the standard error response format.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// WriteError writes a standard error response with the given status code,
// error code, and human-readable message.
func WriteError(w http.ResponseWriter, status int, errorCode, message string) {
	WriteJSON(w, status, errorResponse{
		Error:   errorCode,
		Message: message,
	})
}

// ParseJSON decodes the request body as JSON into v.
// It validates that the Content-Type header is application/json and
// returns an error for missing/incorrect content type or malformed JSON.
func ParseJSON(r *http.Request, v any) error {
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(ct, "application/json") {
		return fmt.Errorf("Request body must be valid JSON with Content-Type: application/json")
	}

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("Request body must be valid JSON with Content-Type: application/json")
	}

	return nil
}

// pathID parses a numeric URL parameter.
func pathID(r *http.Request, name string) (uint64, error) {
	id, err := strconv.ParseUint(chi.URLParam(r, name), 10, 64)
	if err != nil {
		return 0, &domain.ValidationError{Message: name + " must be a non-negative integer"}
	}
	return id, nil
}

// errorStatus maps each domain sentinel to its HTTP status. The sentinel's
// message is the error code.
var errorStatus = []struct {
	err    error
	status int
}{
	{domain.ErrUserNotFound, http.StatusNotFound},
	{domain.ErrInvalidProduct, http.StatusNotFound},
	{domain.ErrInvalidListing, http.StatusNotFound},
	{domain.ErrInvalidOrderID, http.StatusNotFound},
	{domain.ErrWebhookNotFound, http.StatusNotFound},

	{domain.ErrAlreadyRegistered, http.StatusConflict},
	{domain.ErrRoleAlreadyHeld, http.StatusConflict},
	{domain.ErrInsufficientStock, http.StatusConflict},
	{domain.ErrInsufficientFunds, http.StatusConflict},
	{domain.ErrInvalidOperation, http.StatusConflict},
	{domain.ErrCancellationAlreadyRequested, http.StatusConflict},
	{domain.ErrOrderAlreadyCancelled, http.StatusConflict},
	{domain.ErrStockExhausted, http.StatusConflict},

	{domain.ErrNotSeller, http.StatusForbidden},
	{domain.ErrNotBuyer, http.StatusForbidden},
	{domain.ErrCannotBuyOwnListing, http.StatusForbidden},

	{domain.ErrEmptyOrder, http.StatusBadRequest},
	{domain.ErrDuplicateListing, http.StatusBadRequest},
	{domain.ErrCannotBuyZero, http.StatusBadRequest},
	{domain.ErrSellerMismatch, http.StatusBadRequest},
	{domain.ErrOutOfRange, http.StatusBadRequest},

	{domain.ErrIDSpaceExhausted, http.StatusInsufficientStorage},
}

// writeDomainError maps domain errors to HTTP responses.
func writeDomainError(w http.ResponseWriter, err error) {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		WriteError(w, http.StatusBadRequest, "validation_error", validationErr.Message)
		return
	}

	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			WriteError(w, e.status, e.err.Error(), err.Error())
			return
		}
	}
	WriteError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
}
