package app

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cimillas/ultimate-stay/internal/domain"
)

type AdminRepository interface {
	CreateProperty(ctx context.Context, property domain.Property) error
	ListProperties(ctx context.Context) ([]domain.Property, error)
	CreateUnit(ctx context.Context, unit domain.InventoryUnit) error
	ListUnitsByProperty(ctx context.Context, propertyID string) ([]domain.InventoryUnit, error)
}

type AdminService struct {
	repo AdminRepository
}

func NewAdminService(repo AdminRepository) *AdminService {
	return &AdminService{repo: repo}
}

const defaultMaxOccupancy = 2

var maxRating = decimal.NewFromInt(5)

type CreatePropertyInput struct {
	DestinationID string
	Name          string
	Type          domain.PropertyType
	StarRating    int
	Rating        decimal.Decimal
	Amenities     domain.AmenitySet
}

func (s *AdminService) CreateProperty(ctx context.Context, in CreatePropertyInput) (domain.Property, error) {
	if in.DestinationID == "" {
		return domain.Property{}, domain.ErrInvalidID
	}
	if in.Name == "" {
		return domain.Property{}, domain.ErrNameRequired
	}
	if in.Type == "" {
		in.Type = domain.PropertyTypeHotel
	}
	if !in.Type.Valid() {
		return domain.Property{}, fmt.Errorf("%w: %q", domain.ErrInvalidPropertyType, in.Type)
	}
	if in.StarRating < 0 || in.StarRating > 5 {
		return domain.Property{}, fmt.Errorf("%w: star rating %d", domain.ErrInvalidRating, in.StarRating)
	}
	if in.Rating.IsNegative() || in.Rating.GreaterThan(maxRating) {
		return domain.Property{}, fmt.Errorf("%w: rating %s", domain.ErrInvalidRating, in.Rating)
	}

	property := domain.Property{
		ID:            newUUID(),
		DestinationID: in.DestinationID,
		Name:          in.Name,
		Type:          in.Type,
		StarRating:    in.StarRating,
		Rating:        in.Rating,
		Amenities:     in.Amenities,
	}

	if err := s.repo.CreateProperty(ctx, property); err != nil {
		return domain.Property{}, err
	}
	return property, nil
}

func (s *AdminService) ListProperties(ctx context.Context) ([]domain.Property, error) {
	return s.repo.ListProperties(ctx)
}

type CreateUnitInput struct {
	PropertyID string
	Name       string
	BasePrice  decimal.Decimal
	// Zero multipliers take the defaults.
	WeekendMultiplier    decimal.Decimal
	PeakSeasonMultiplier decimal.Decimal
	TotalCapacity        int
	MaxOccupancy         int
	Amenities            domain.AmenitySet
}

func (s *AdminService) CreateUnit(ctx context.Context, in CreateUnitInput) (domain.InventoryUnit, error) {
	if in.PropertyID == "" {
		return domain.InventoryUnit{}, domain.ErrInvalidID
	}
	if in.Name == "" {
		return domain.InventoryUnit{}, domain.ErrNameRequired
	}
	if in.BasePrice.IsNegative() {
		return domain.InventoryUnit{}, fmt.Errorf("%w: negative base price", domain.ErrInvalidPrice)
	}
	if in.WeekendMultiplier.IsZero() {
		in.WeekendMultiplier = domain.DefaultWeekendMultiplier
	}
	if in.PeakSeasonMultiplier.IsZero() {
		in.PeakSeasonMultiplier = domain.DefaultPeakSeasonMultiplier
	}
	if in.WeekendMultiplier.IsNegative() || in.PeakSeasonMultiplier.IsNegative() {
		return domain.InventoryUnit{}, fmt.Errorf("%w: multipliers must be positive", domain.ErrInvalidPrice)
	}
	if in.TotalCapacity <= 0 {
		return domain.InventoryUnit{}, domain.ErrInvalidCapacity
	}
	if in.MaxOccupancy < 0 {
		return domain.InventoryUnit{}, fmt.Errorf("%w: max occupancy %d", domain.ErrInvalidCapacity, in.MaxOccupancy)
	}
	if in.MaxOccupancy == 0 {
		in.MaxOccupancy = defaultMaxOccupancy
	}

	unit := domain.InventoryUnit{
		ID:                   newUUID(),
		PropertyID:           in.PropertyID,
		Name:                 in.Name,
		BasePrice:            in.BasePrice,
		WeekendMultiplier:    in.WeekendMultiplier,
		PeakSeasonMultiplier: in.PeakSeasonMultiplier,
		TotalCapacity:        in.TotalCapacity,
		MaxOccupancy:         in.MaxOccupancy,
		Amenities:            in.Amenities,
	}

	if err := s.repo.CreateUnit(ctx, unit); err != nil {
		return domain.InventoryUnit{}, err
	}
	return unit, nil
}

func (s *AdminService) ListUnits(ctx context.Context, propertyID string) ([]domain.InventoryUnit, error) {
	if propertyID == "" {
		return nil, domain.ErrInvalidID
	}
	return s.repo.ListUnitsByProperty(ctx, propertyID)
}
