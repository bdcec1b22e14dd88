package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/cimillas/ultimate-stay/internal/domain"
)

const (
	codeMethodNotAllowed       = "method_not_allowed"
	codeNotFound               = "not_found"
	codeInvalidRequestBody     = "invalid_request_body"
	codeValidationFailed       = "validation_failed"
	codeInvalidRange           = "invalid_range"
	codeInvalidID              = "invalid_id"
	codeInvalidQuery           = "invalid_query"
	codeNameRequired           = "name_required"
	codeInvalidQuantity        = "invalid_quantity"
	codeInvalidCapacity        = "invalid_capacity"
	codeInvalidPrice           = "invalid_price"
	codeInvalidRating          = "invalid_rating"
	codeInvalidPropertyType    = "invalid_property_type"
	codeUnknownAmenity         = "unknown_amenity"
	codeIdempotencyConflict    = "idempotency_conflict"
	codeInsufficientCapacity   = "insufficient_capacity"
	codeUnitNotFound           = "unit_not_found"
	codePropertyNotFound       = "property_not_found"
	codeReservationNotFound    = "reservation_not_found"
	codeAlreadyCancelled       = "already_cancelled"
	codeAlreadyCompleted       = "already_completed"
	codeInvalidTransition      = "invalid_transition"
	codePersistenceUnavailable = "persistence_unavailable"
	codeInternalError          = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error: msg,
		Code:  code,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

var errorStatuses = []struct {
	err    error
	status int
	code   string
}{
	{domain.ErrInvalidRange, http.StatusBadRequest, codeInvalidRange},
	{domain.ErrInvalidID, http.StatusBadRequest, codeInvalidID},
	{domain.ErrInvalidQuery, http.StatusBadRequest, codeInvalidQuery},
	{domain.ErrNameRequired, http.StatusBadRequest, codeNameRequired},
	{domain.ErrInvalidQuantity, http.StatusBadRequest, codeInvalidQuantity},
	{domain.ErrInvalidCapacity, http.StatusBadRequest, codeInvalidCapacity},
	{domain.ErrInvalidPrice, http.StatusBadRequest, codeInvalidPrice},
	{domain.ErrInvalidRating, http.StatusBadRequest, codeInvalidRating},
	{domain.ErrInvalidPropertyType, http.StatusBadRequest, codeInvalidPropertyType},
	{domain.ErrUnknownAmenity, http.StatusBadRequest, codeUnknownAmenity},
	{domain.ErrUnknownUnit, http.StatusNotFound, codeUnitNotFound},
	{domain.ErrPropertyNotFound, http.StatusNotFound, codePropertyNotFound},
	{domain.ErrReservationNotFound, http.StatusNotFound, codeReservationNotFound},
	{domain.ErrInsufficientCapacity, http.StatusConflict, codeInsufficientCapacity},
	{domain.ErrIdempotencyConflict, http.StatusConflict, codeIdempotencyConflict},
	{domain.ErrAlreadyCancelled, http.StatusConflict, codeAlreadyCancelled},
	{domain.ErrAlreadyCompleted, http.StatusConflict, codeAlreadyCompleted},
	{domain.ErrInvalidTransition, http.StatusConflict, codeInvalidTransition},
	{domain.ErrPersistenceUnavailable, http.StatusServiceUnavailable, codePersistenceUnavailable},
}

// writeServiceError maps a service error onto its HTTP status and code. Unrecognised errors are logged
// and reported as a bare 500.
func writeServiceError(w http.ResponseWriter, log logrus.FieldLogger, err error) {
	for _, e := range errorStatuses {
		if errors.Is(err, e.err) {
			if e.status == http.StatusServiceUnavailable {
				log.WithError(err).Warn("persistence unavailable")
				writeError(w, e.status, e.code, "service temporarily unavailable")
				return
			}
			writeError(w, e.status, e.code, err.Error())
			return
		}
	}
	log.WithError(err).Error("unhandled service error")
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
