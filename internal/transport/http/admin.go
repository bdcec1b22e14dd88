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

// AdminPropertyService is the minimal interface needed for admin property endpoints.
type AdminPropertyService interface {
	CreateProperty(ctx context.Context, in app.CreatePropertyInput) (domain.Property, error)
	ListProperties(ctx context.Context) ([]domain.Property, error)
}

// AdminUnitService is the minimal interface needed for admin unit endpoints.
type AdminUnitService interface {
	CreateUnit(ctx context.Context, in app.CreateUnitInput) (domain.InventoryUnit, error)
	ListUnits(ctx context.Context, propertyID string) ([]domain.InventoryUnit, error)
}

type createPropertyRequest struct {
	DestinationID string          `json:"destination_id" validate:"required"`
	Name          string          `json:"name" validate:"required,max=200"`
	PropertyType  string          `json:"property_type,omitempty"`
	StarRating    int             `json:"star_rating" validate:"min=0,max=5"`
	Rating        decimal.Decimal `json:"rating"`
	Amenities     []string        `json:"amenities,omitempty"`
}

type propertyResponse struct {
	ID            string            `json:"id"`
	DestinationID string            `json:"destination_id"`
	Name          string            `json:"name"`
	PropertyType  string            `json:"property_type"`
	StarRating    int               `json:"star_rating"`
	Rating        decimal.Decimal   `json:"rating"`
	Popularity    int               `json:"popularity"`
	Amenities     domain.AmenitySet `json:"amenities"`
}

func toPropertyResponse(p domain.Property) propertyResponse {
	return propertyResponse{
		ID:            p.ID,
		DestinationID: p.DestinationID,
		Name:          p.Name,
		PropertyType:  string(p.Type),
		StarRating:    p.StarRating,
		Rating:        p.Rating,
		Popularity:    p.Popularity,
		Amenities:     p.Amenities,
	}
}

type createUnitRequest struct {
	Name                 string          `json:"name" validate:"required,max=200"`
	BasePrice            decimal.Decimal `json:"base_price"`
	WeekendMultiplier    decimal.Decimal `json:"weekend_multiplier"`
	PeakSeasonMultiplier decimal.Decimal `json:"peak_season_multiplier"`
	TotalCapacity        int             `json:"total_capacity" validate:"min=1"`
	MaxOccupancy         int             `json:"max_occupancy" validate:"min=0"`
	Amenities            []string        `json:"amenities,omitempty"`
}

type unitResponse struct {
	ID                   string            `json:"id"`
	PropertyID           string            `json:"property_id"`
	Name                 string            `json:"name"`
	BasePrice            decimal.Decimal   `json:"base_price"`
	WeekendMultiplier    decimal.Decimal   `json:"weekend_multiplier"`
	PeakSeasonMultiplier decimal.Decimal   `json:"peak_season_multiplier"`
	TotalCapacity        int               `json:"total_capacity"`
	MaxOccupancy         int               `json:"max_occupancy"`
	Amenities            domain.AmenitySet `json:"amenities"`
}

func toUnitResponse(u domain.InventoryUnit) unitResponse {
	return unitResponse{
		ID:                   u.ID,
		PropertyID:           u.PropertyID,
		Name:                 u.Name,
		BasePrice:            u.BasePrice,
		WeekendMultiplier:    u.WeekendMultiplier,
		PeakSeasonMultiplier: u.PeakSeasonMultiplier,
		TotalCapacity:        u.TotalCapacity,
		MaxOccupancy:         u.MaxOccupancy,
		Amenities:            u.Amenities,
	}
}

// HandleCreateProperty returns an HTTP handler onboarding a property.
func HandleCreateProperty(svc AdminPropertyService, log logrus.FieldLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createPropertyRequest
		if !decodeJSON(w, r, &req, false) {
			return
		}
		amenities, err := domain.ParseAmenitySet(req.Amenities)
		if err != nil {
			writeServiceError(w, log, err)
			return
		}

		property, err := svc.CreateProperty(r.Context(), app.CreatePropertyInput{
			DestinationID: req.DestinationID,
			Name:          req.Name,
			Type:          domain.PropertyType(req.PropertyType),
			StarRating:    req.StarRating,
			Rating:        req.Rating,
			Amenities:     amenities,
		})
		if err != nil {
			writeServiceError(w, log, err)
			return
		}
		writeJSON(w, http.StatusCreated, toPropertyResponse(property))
	}
}

// HandleListProperties returns an HTTP handler listing every property in onboarding order.
func HandleListProperties(svc AdminPropertyService, log logrus.FieldLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		properties, err := svc.ListProperties(r.Context())
		if err != nil {
			writeServiceError(w, log, err)
			return
		}
		resp := make([]propertyResponse, 0, len(properties))
		for _, p := range properties {
			resp = append(resp, toPropertyResponse(p))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// HandleCreateUnit returns an HTTP handler adding a unit to the property in the path.
func HandleCreateUnit(svc AdminUnitService, log logrus.FieldLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createUnitRequest
		if !decodeJSON(w, r, &req, false) {
			return
		}
		amenities, err := domain.ParseAmenitySet(req.Amenities)
		if err != nil {
			writeServiceError(w, log, err)
			return
		}

		unit, err := svc.CreateUnit(r.Context(), app.CreateUnitInput{
			PropertyID:           mux.Vars(r)["id"],
			Name:                 req.Name,
			BasePrice:            req.BasePrice,
			WeekendMultiplier:    req.WeekendMultiplier,
			PeakSeasonMultiplier: req.PeakSeasonMultiplier,
			TotalCapacity:        req.TotalCapacity,
			MaxOccupancy:         req.MaxOccupancy,
			Amenities:            amenities,
		})
		if err != nil {
			writeServiceError(w, log, err)
			return
		}
		writeJSON(w, http.StatusCreated, toUnitResponse(unit))
	}
}

// HandleListUnits returns an HTTP handler listing the units of the property in the path.
func HandleListUnits(svc AdminUnitService, log logrus.FieldLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		units, err := svc.ListUnits(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			writeServiceError(w, log, err)
			return
		}
		resp := make([]unitResponse, 0, len(units))
		for _, u := range units {
			resp = append(resp, toUnitResponse(u))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
