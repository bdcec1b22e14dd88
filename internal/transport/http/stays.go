package http

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/cimillas/ultimate-stay/internal/app"
	"github.com/cimillas/ultimate-stay/internal/domain"
)

type StayQuoter interface {
	Quote(ctx context.Context, unitID string, rng domain.DateRange) (domain.Quote, error)
}

type AvailabilityChecker interface {
	CheckAvailable(ctx context.Context, unitID string, rng domain.DateRange, quantity int) (domain.Availability, error)
}

type PropertyAvailabilityChecker interface {
	PropertyAvailability(ctx context.Context, propertyID string, rng domain.DateRange, quantity int) (app.PropertyAvailability, error)
}

// HandleQuote returns an HTTP handler pricing a stay on one unit, with the nightly breakdown.
func HandleQuote(svc StayQuoter, log logrus.FieldLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req stayRequest
		if !decodeJSON(w, r, &req, false) {
			return
		}
		rng, err := req.dateRange()
		if err != nil {
			writeServiceError(w, log, err)
			return
		}

		quote, err := svc.Quote(r.Context(), mux.Vars(r)["id"], rng)
		if err != nil {
			writeServiceError(w, log, err)
			return
		}
		writeJSON(w, http.StatusOK, quote)
	}
}

type availabilityRequest struct {
	stayRequest
	Quantity int `json:"quantity" validate:"min=0"`
}

// HandleAvailability returns an HTTP handler reporting per-night free rooms for a unit. It never reserves.
func HandleAvailability(svc AvailabilityChecker, log logrus.FieldLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req availabilityRequest
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

		avail, err := svc.CheckAvailable(r.Context(), mux.Vars(r)["id"], rng, req.Quantity)
		if err != nil {
			writeServiceError(w, log, err)
			return
		}
		writeJSON(w, http.StatusOK, avail)
	}
}

type unitOfferResponse struct {
	Unit           unitResponse    `json:"unit"`
	AvailableRooms int             `json:"available_rooms"`
	Nights         int             `json:"nights"`
	PricePerNight  decimal.Decimal `json:"price_per_night"`
	TotalPrice     decimal.Decimal `json:"total_price"`
	Currency       string          `json:"currency"`
}

type propertyAvailabilityResponse struct {
	Property propertyResponse    `json:"property"`
	CheckIn  domain.Date         `json:"check_in"`
	CheckOut domain.Date         `json:"check_out"`
	Units    []unitOfferResponse `json:"units"`
}

// HandlePropertyAvailability returns an HTTP handler listing the units of one property that have free rooms
// for the stay, each with its per-room price.
func HandlePropertyAvailability(svc PropertyAvailabilityChecker, log logrus.FieldLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req availabilityRequest
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

		avail, err := svc.PropertyAvailability(r.Context(), mux.Vars(r)["id"], rng, req.Quantity)
		if err != nil {
			writeServiceError(w, log, err)
			return
		}

		resp := propertyAvailabilityResponse{
			Property: toPropertyResponse(avail.Property),
			CheckIn:  avail.Range.CheckIn,
			CheckOut: avail.Range.CheckOut,
			Units:    make([]unitOfferResponse, 0, len(avail.Units)),
		}
		for _, offer := range avail.Units {
			resp.Units = append(resp.Units, unitOfferResponse{
				Unit:           toUnitResponse(offer.Unit),
				AvailableRooms: offer.Availability.MinFree,
				Nights:         offer.Quote.Nights,
				PricePerNight:  offer.Quote.PricePerNight,
				TotalPrice:     offer.Quote.TotalPrice,
				Currency:       offer.Quote.Currency,
			})
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
