// Package httpx holds the response helpers shared by every module handler.
package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/georgemunganga/vendor-portal/internal/pkg/apperr"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

var statusByKind = map[apperr.Kind]int{
	apperr.NotFound:     http.StatusNotFound,
	apperr.Conflict:     http.StatusConflict,
	apperr.Validation:   http.StatusBadRequest,
	apperr.Upstream:     http.StatusBadGateway,
	apperr.Store:        http.StatusInternalServerError,
	apperr.InvalidState: http.StatusUnprocessableEntity,
	apperr.Unauthorized: http.StatusUnauthorized,
	apperr.RateLimited:  http.StatusTooManyRequests,
	apperr.Internal:     http.StatusInternalServerError,
}

// Respond writes body as JSON with the given status.
func Respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// StatusFor maps an error to its HTTP status code.
func StatusFor(err error) int {
	if code, ok := statusByKind[apperr.KindOf(err)]; ok {
		return code
	}
	return http.StatusInternalServerError
}

// Error writes the {error, message} envelope for err.
func Error(w http.ResponseWriter, err error) {
	Respond(w, StatusFor(err), map[string]string{
		"error":   string(apperr.KindOf(err)),
		"message": apperr.MessageOf(err),
	})
}

// BadRequest writes a validation_error envelope.
func BadRequest(w http.ResponseWriter, message string) {
	Error(w, apperr.New(apperr.Validation, message))
}

// Decode reads a JSON body into v.
func Decode(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.Wrap(apperr.Validation, "invalid JSON body", err)
	}
	return nil
}

// PathUUID parses the named chi URL parameter. A malformed id cannot match a
// record, so it is reported as not found.
func PathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, apperr.Wrap(apperr.NotFound, "resource not found", err)
	}
	return id, nil
}
