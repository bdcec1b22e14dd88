package http

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/cimillas/ultimate-stay/internal/app"
	"github.com/cimillas/ultimate-stay/internal/domain"
)

type Searcher interface {
	Search(ctx context.Context, q app.SearchQuery) (app.SearchPage, error)
}

type searchRequest struct {
	DestinationID string `json:"destination_id" validate:"required"`
	stayRequest
	Guests        int              `json:"guests" validate:"min=0"`
	Rooms         int              `json:"rooms" validate:"min=0"`
	MinPrice      *decimal.Decimal `json:"min_price_per_night,omitempty"`
	MaxPrice      *decimal.Decimal `json:"max_price_per_night,omitempty"`
	MinRating     *decimal.Decimal `json:"min_rating,omitempty"`
	Amenities     []string         `json:"amenities,omitempty"`
	PropertyTypes []string         `json:"property_types,omitempty"`
	StarRatings   []int            `json:"star_ratings,omitempty" validate:"dive,min=0,max=5"`
	Sort          string           `json:"sort,omitempty" validate:"omitempty,oneof=popularity price_low price_high rating"`
	Page          int              `json:"page" validate:"min=0"`
	PerPage       int              `json:"per_page" validate:"min=0,max=100"`
}

func (req searchRequest) query() (app.SearchQuery, error) {
	rng, err := req.dateRange()
	if err != nil {
		return app.SearchQuery{}, err
	}
	amenities, err := domain.ParseAmenitySet(req.Amenities)
	if err != nil {
		return app.SearchQuery{}, err
	}
	types := make([]domain.PropertyType, 0, len(req.PropertyTypes))
	for _, name := range req.PropertyTypes {
		t := domain.PropertyType(name)
		if !t.Valid() {
			return app.SearchQuery{}, domain.ErrInvalidPropertyType
		}
		types = append(types, t)
	}
	return app.SearchQuery{
		DestinationID: req.DestinationID,
		Range:         rng,
		Guests:        req.Guests,
		Rooms:         req.Rooms,
		Filters: app.SearchFilters{
			MinPrice:      req.MinPrice,
			MaxPrice:      req.MaxPrice,
			MinRating:     req.MinRating,
			Amenities:     amenities,
			PropertyTypes: types,
			StarRatings:   req.StarRatings,
		},
		Sort:    app.SortOrder(req.Sort),
		Page:    req.Page,
		PerPage: req.PerPage,
	}, nil
}

type searchResultResponse struct {
	Unit           unitResponse     `json:"unit"`
	Property       propertyResponse `json:"property"`
	Quote          domain.Quote     `json:"quote"`
	AvailableRooms int              `json:"available_rooms"`
}

type searchResponse struct {
	Results    []searchResultResponse `json:"results"`
	Total      int                    `json:"total"`
	Page       int                    `json:"page"`
	PerPage    int                    `json:"per_page"`
	TotalPages int                    `json:"total_pages"`
	Skipped    int                    `json:"skipped,omitempty"`
}

// HandleSearch returns an HTTP handler for stay search.
func HandleSearch(svc Searcher, log logrus.FieldLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req searchRequest
		if !decodeJSON(w, r, &req, false) {
			return
		}
		q, err := req.query()
		if err != nil {
			writeServiceError(w, log, err)
			return
		}

		page, err := svc.Search(r.Context(), q)
		if err != nil {
			writeServiceError(w, log, err)
			return
		}

		resp := searchResponse{
			Results:    make([]searchResultResponse, 0, len(page.Results)),
			Total:      page.Total,
			Page:       page.Page,
			PerPage:    page.PerPage,
			TotalPages: page.TotalPages,
			Skipped:    page.Skipped,
		}
		for _, res := range page.Results {
			quote := res.Quote
			quote.Nightly = nil
			resp.Results = append(resp.Results, searchResultResponse{
				Unit:           toUnitResponse(res.Unit),
				Property:       toPropertyResponse(res.Property),
				Quote:          quote,
				AvailableRooms: res.MinFree,
			})
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
