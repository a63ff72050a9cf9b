package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rzbill/vesta/internal/ledger"
	"github.com/rzbill/vesta/internal/vesting"
	"github.com/rzbill/vesta/pkg/id"
)

// Helper functions for common HTTP responses

// writeError writes an error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// writeJSON writes a JSON response with the given data.
func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(data)
}

// writeCreated writes a 201 Created response with a JSON body.
func writeCreated(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(data)
}

// writeNoContent writes a 204 No Content response.
func writeNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// writeOpError maps a service error to its HTTP status and writes it.
func writeOpError(w http.ResponseWriter, err error) {
	writeError(w, statusFor(err), err.Error())
}

// statusFor classifies service errors: unknown streams are 404, state
// conflicts (wrong fee, nothing claimable, live balance, stale version)
// are 409, and everything else is a caller mistake.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ledger.ErrStreamNotFound):
		return http.StatusNotFound
	case errors.Is(err, ledger.ErrStaleVersion),
		errors.Is(err, ledger.ErrInvalidFeePayment),
		errors.Is(err, vesting.ErrZeroClaimable),
		errors.Is(err, vesting.ErrNonZeroBalance):
		return http.StatusConflict
	case errors.Is(err, ledger.ErrFeeExceedsCap),
		errors.Is(err, vesting.ErrInsufficientDeposit),
		errors.Is(err, vesting.ErrInvalidStartTime),
		errors.Is(err, vesting.ErrInvalidSegmentSet),
		errors.Is(err, vesting.ErrInvalidExponent),
		errors.Is(err, vesting.ErrCliffTooLarge),
		errors.Is(err, vesting.ErrArithmeticOverflow),
		errors.Is(err, id.ErrInvalid):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// queryInt parses an integer query parameter, returning def when absent or
// malformed.
func queryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

// queryUint64 parses an unsigned query parameter, returning def when absent
// or malformed.
func queryUint64(r *http.Request, key string, def uint64) uint64 {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return def
	}
	return v
}
