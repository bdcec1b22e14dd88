package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/cimillas/ultimate-stay/internal/domain"
	"github.com/cimillas/ultimate-stay/internal/testutil"
)

func TestInventoryRepository_PropertiesAndUnits(t *testing.T) {
	pool := testutil.NewTestPool(t)
	testutil.ApplyMigrations(t, context.Background(), pool)
	repo := NewInventoryRepository(pool)

	ctx := context.Background()
	testutil.TruncateAll(t, ctx, pool)

	property := domain.Property{
		ID:            "00000000-0000-0000-0000-000000000010",
		DestinationID: "goa",
		Name:          "Palm Grove",
		Type:          domain.PropertyTypeResort,
		StarRating:    4,
		Rating:        decimal.RequireFromString("4.5"),
		Amenities:     domain.NewAmenitySet(domain.AmenityWiFi, domain.AmenityPool),
	}
	if err := repo.CreateProperty(ctx, property); err != nil {
		t.Fatalf("create property: %v", err)
	}

	got, err := repo.GetProperty(ctx, property.ID)
	if err != nil {
		t.Fatalf("get property: %v", err)
	}
	if got.Name != property.Name || got.Type != property.Type || !got.Rating.Equal(property.Rating) || got.Amenities != property.Amenities {
		t.Fatalf("unexpected property: %+v", got)
	}

	unit := domain.InventoryUnit{
		ID:                   "00000000-0000-0000-0000-000000000020",
		PropertyID:           property.ID,
		Name:                 "Deluxe",
		BasePrice:            decimal.RequireFromString("2499.50"),
		WeekendMultiplier:    domain.DefaultWeekendMultiplier,
		PeakSeasonMultiplier: domain.DefaultPeakSeasonMultiplier,
		TotalCapacity:        4,
		MaxOccupancy:         3,
		Amenities:            domain.NewAmenitySet(domain.AmenityAirConditioning),
	}
	if err := repo.CreateUnit(ctx, unit); err != nil {
		t.Fatalf("create unit: %v", err)
	}

	gotUnit, err := repo.GetUnit(ctx, unit.ID)
	if err != nil {
		t.Fatalf("get unit: %v", err)
	}
	if !gotUnit.BasePrice.Equal(unit.BasePrice) || gotUnit.TotalCapacity != 4 || gotUnit.Amenities != unit.Amenities {
		t.Fatalf("unexpected unit: %+v", gotUnit)
	}

	units, err := repo.ListUnitsByProperty(ctx, property.ID)
	if err != nil {
		t.Fatalf("list units: %v", err)
	}
	if len(units) != 1 || units[0].ID != unit.ID {
		t.Fatalf("unexpected units: %+v", units)
	}

	listings, err := repo.ListUnitsByDestination(ctx, "goa")
	if err != nil {
		t.Fatalf("list by destination: %v", err)
	}
	if len(listings) != 1 || listings[0].Property.ID != property.ID || listings[0].Unit.ID != unit.ID {
		t.Fatalf("unexpected listings: %+v", listings)
	}

	properties, err := repo.ListProperties(ctx)
	if err != nil {
		t.Fatalf("list properties: %v", err)
	}
	if len(properties) != 1 {
		t.Fatalf("expected 1 property, got %d", len(properties))
	}
}

func TestInventoryRepository_NotFound(t *testing.T) {
	pool := testutil.NewTestPool(t)
	testutil.ApplyMigrations(t, context.Background(), pool)
	repo := NewInventoryRepository(pool)

	ctx := context.Background()
	testutil.TruncateAll(t, ctx, pool)

	missing := "00000000-0000-0000-0000-000000000099"
	if _, err := repo.GetUnit(ctx, missing); !errors.Is(err, domain.ErrUnknownUnit) {
		t.Fatalf("expected ErrUnknownUnit, got %v", err)
	}
	if _, err := repo.GetUnit(ctx, "not-a-uuid"); !errors.Is(err, domain.ErrUnknownUnit) {
		t.Fatalf("expected ErrUnknownUnit for malformed id, got %v", err)
	}
	if _, err := repo.GetProperty(ctx, missing); !errors.Is(err, domain.ErrPropertyNotFound) {
		t.Fatalf("expected ErrPropertyNotFound, got %v", err)
	}
	if _, err := repo.ListUnitsByProperty(ctx, missing); !errors.Is(err, domain.ErrPropertyNotFound) {
		t.Fatalf("expected ErrPropertyNotFound, got %v", err)
	}
	err := repo.CreateUnit(ctx, domain.InventoryUnit{
		ID:                   "00000000-0000-0000-0000-000000000021",
		PropertyID:           missing,
		Name:                 "Orphan",
		BasePrice:            decimal.NewFromInt(100),
		WeekendMultiplier:    decimal.NewFromInt(1),
		PeakSeasonMultiplier: decimal.NewFromInt(1),
		TotalCapacity:        1,
		MaxOccupancy:         1,
	})
	if !errors.Is(err, domain.ErrPropertyNotFound) {
		t.Fatalf("expected ErrPropertyNotFound, got %v", err)
	}
}
