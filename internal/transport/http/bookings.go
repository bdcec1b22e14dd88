package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/cimillas/ultimate-stay/internal/app"
	"github.com/cimillas/ultimate-stay/internal/domain"
)

const idempotencyHeader = "Idempotency-Key"

type BookingCommitter interface {
	Commit(ctx context.Context, in app.CommitInput) (domain.Reservation, error)
}

type BookingReader interface {
	Get(ctx context.Context, id string) (domain.Reservation, error)
}

type BookingTransitioner interface {
	Cancel(ctx context.Context, id, reason string) (domain.Reservation, error)
	Confirm(ctx context.Context, id string) (domain.Reservation, error)
	Complete(ctx context.Context, id string) (domain.Reservation, error)
}

type createBookingRequest struct {
	UnitID string `json:"unit_id" validate:"required"`
	stayRequest
	Quantity int  `json:"quantity" validate:"min=0"`
	Guests   int  `json:"guests" validate:"min=0"`
	Pending  bool `json:"pending"`
}

const (
	decisionConfirmed = "confirmed"
	decisionRejected  = "rejected"
)

type bookingDecisionResponse struct {
	Status        string               `json:"status"`
	ReservationID string               `json:"reservation_id,omitempty"`
	Reason        string               `json:"reason,omitempty"`
	Reservation   *reservationResponse `json:"reservation,omitempty"`
}

type reservationResponse struct {
	ID                 string          `json:"id"`
	Reference          string          `json:"reference"`
	UnitID             string          `json:"unit_id"`
	PropertyID         string          `json:"property_id"`
	CheckIn            domain.Date     `json:"check_in"`
	CheckOut           domain.Date     `json:"check_out"`
	Nights             int             `json:"nights"`
	Quantity           int             `json:"quantity"`
	Guests             int             `json:"guests"`
	Status             string          `json:"status"`
	TotalPrice         decimal.Decimal `json:"total_price"`
	Currency           string          `json:"currency"`
	CancellationReason string          `json:"cancellation_reason,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
	CancelledAt        *time.Time      `json:"cancelled_at,omitempty"`
}

func toReservationResponse(res domain.Reservation) reservationResponse {
	return reservationResponse{
		ID:                 res.ID,
		Reference:          res.Reference,
		UnitID:             res.UnitID,
		PropertyID:         res.PropertyID,
		CheckIn:            res.Range.CheckIn,
		CheckOut:           res.Range.CheckOut,
		Nights:             res.Range.Nights(),
		Quantity:           res.Quantity,
		Guests:             res.Guests,
		Status:             string(res.Status),
		TotalPrice:         res.TotalPrice,
		Currency:           res.Currency,
		CancellationReason: res.CancellationReason,
		CreatedAt:          res.CreatedAt,
		UpdatedAt:          res.UpdatedAt,
		CancelledAt:        res.CancelledAt,
	}
}

// HandleCreateBooking returns an HTTP handler committing a reservation. A capacity shortfall is a
// rejected decision (409), not an error response.
func HandleCreateBooking(svc BookingCommitter, log logrus.FieldLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createBookingRequest
		if !decodeJSON(w, r, &req, false) {
			return
		}
		rng, err := req.dateRange()
		if err != nil {
			writeServiceError(w, log, err)
			return
		}
		if req.Quantity == 0 {
			req.Quantity = 1
		}

		res, err := svc.Commit(r.Context(), app.CommitInput{
			UnitID:         req.UnitID,
			Range:          rng,
			Quantity:       req.Quantity,
			Guests:         req.Guests,
			IdempotencyKey: r.Header.Get(idempotencyHeader),
			Pending:        req.Pending,
		})
		if err != nil {
			if errors.Is(err, domain.ErrInsufficientCapacity) {
				writeJSON(w, http.StatusConflict, bookingDecisionResponse{
					Status: decisionRejected,
					Reason: err.Error(),
				})
				return
			}
			writeServiceError(w, log, err)
			return
		}

		body := toReservationResponse(res)
		writeJSON(w, http.StatusCreated, bookingDecisionResponse{
			Status:        decisionConfirmed,
			ReservationID: res.ID,
			Reservation:   &body,
		})
	}
}

// HandleGetBooking returns an HTTP handler fetching one reservation.
func HandleGetBooking(svc BookingReader, log logrus.FieldLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := svc.Get(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			writeServiceError(w, log, err)
			return
		}
		writeJSON(w, http.StatusOK, toReservationResponse(res))
	}
}

type cancelBookingRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

// HandleBookingTransition returns an HTTP handler for POST /api/bookings/{id}/{action} where action is
// cancel, confirm or complete.
func HandleBookingTransition(svc BookingTransitioner, log logrus.FieldLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		id := vars["id"]

		var (
			res domain.Reservation
			err error
		)
		switch vars["action"] {
		case "cancel":
			var req cancelBookingRequest
			if !decodeJSON(w, r, &req, true) {
				return
			}
			res, err = svc.Cancel(r.Context(), id, req.Reason)
		case "confirm":
			res, err = svc.Confirm(r.Context(), id)
		case "complete":
			res, err = svc.Complete(r.Context(), id)
		default:
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}
		if err != nil {
			writeServiceError(w, log, err)
			return
		}
		writeJSON(w, http.StatusOK, toReservationResponse(res))
	}
}
