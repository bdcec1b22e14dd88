package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cimillas/ultimate-stay/internal/domain"
	"github.com/cimillas/ultimate-stay/internal/storage/memory"
)

type countingInventory struct {
	*memory.Store
	unitReads int
	destReads int
}

func (c *countingInventory) GetUnit(ctx context.Context, unitID string) (domain.InventoryUnit, error) {
	c.unitReads++
	return c.Store.GetUnit(ctx, unitID)
}

func (c *countingInventory) ListUnitsByDestination(ctx context.Context, destinationID string) ([]domain.Listing, error) {
	c.destReads++
	return c.Store.ListUnitsByDestination(ctx, destinationID)
}

func seed(t *testing.T, inv Inventory) {
	t.Helper()
	ctx := context.Background()
	if err := inv.CreateProperty(ctx, domain.Property{ID: "prop-1", DestinationID: "goa", Name: "Sea View", Type: domain.PropertyTypeHotel}); err != nil {
		t.Fatalf("create property: %v", err)
	}
	if err := inv.CreateUnit(ctx, domain.InventoryUnit{
		ID: "unit-1", PropertyID: "prop-1", Name: "Deluxe", BasePrice: decimal.NewFromInt(1000),
		WeekendMultiplier: decimal.NewFromInt(1), PeakSeasonMultiplier: decimal.NewFromInt(1), TotalCapacity: 3, MaxOccupancy: 2,
	}); err != nil {
		t.Fatalf("create unit: %v", err)
	}
}

func TestInventoryCache(t *testing.T) {
	t.Run("reads are served from cache until ttl", func(t *testing.T) {
		next := &countingInventory{Store: memory.NewStore()}
		c := NewInventoryCache(next, time.Minute)
		defer c.Stop()
		seed(t, c)

		for i := 0; i < 3; i++ {
			unit, err := c.GetUnit(context.Background(), "unit-1")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if unit.TotalCapacity != 3 {
				t.Fatalf("unexpected unit: %+v", unit)
			}
		}
		if next.unitReads != 1 {
			t.Fatalf("expected 1 read through, got %d", next.unitReads)
		}
	})

	t.Run("errors are not cached", func(t *testing.T) {
		next := &countingInventory{Store: memory.NewStore()}
		c := NewInventoryCache(next, time.Minute)
		defer c.Stop()

		for i := 0; i < 2; i++ {
			if _, err := c.GetUnit(context.Background(), "missing"); !errors.Is(err, domain.ErrUnknownUnit) {
				t.Fatalf("expected ErrUnknownUnit, got %v", err)
			}
		}
		if next.unitReads != 2 {
			t.Fatalf("expected both lookups to reach the store, got %d", next.unitReads)
		}
	})

	t.Run("creating a unit evicts the destination listing", func(t *testing.T) {
		next := &countingInventory{Store: memory.NewStore()}
		c := NewInventoryCache(next, time.Minute)
		defer c.Stop()
		seed(t, c)
		ctx := context.Background()

		listings, err := c.ListUnitsByDestination(ctx, "goa")
		if err != nil || len(listings) != 1 {
			t.Fatalf("expected 1 listing, got %d (%v)", len(listings), err)
		}
		if err := c.CreateUnit(ctx, domain.InventoryUnit{
			ID: "unit-2", PropertyID: "prop-1", Name: "Suite", BasePrice: decimal.NewFromInt(3000),
			WeekendMultiplier: decimal.NewFromInt(1), PeakSeasonMultiplier: decimal.NewFromInt(1), TotalCapacity: 1, MaxOccupancy: 4,
		}); err != nil {
			t.Fatalf("create unit: %v", err)
		}
		listings, err = c.ListUnitsByDestination(ctx, "goa")
		if err != nil || len(listings) != 2 {
			t.Fatalf("expected 2 listings after create, got %d (%v)", len(listings), err)
		}
		if next.destReads != 2 {
			t.Fatalf("expected the listing to be reloaded once, got %d reads", next.destReads)
		}
	})

	t.Run("listing copies do not alias the cache", func(t *testing.T) {
		c := NewInventoryCache(memory.NewStore(), time.Minute)
		defer c.Stop()
		seed(t, c)
		ctx := context.Background()

		first, _ := c.ListUnitsByDestination(ctx, "goa")
		first[0].Unit.Name = "mutated"
		second, _ := c.ListUnitsByDestination(ctx, "goa")
		if second[0].Unit.Name != "Deluxe" {
			t.Fatalf("expected cached listing to be unchanged, got %q", second[0].Unit.Name)
		}
	})

	t.Run("failed writes leave the cache alone", func(t *testing.T) {
		c := NewInventoryCache(memory.NewStore(), time.Minute)
		defer c.Stop()
		err := c.CreateUnit(context.Background(), domain.InventoryUnit{ID: "unit-x", PropertyID: "nope", TotalCapacity: 1})
		if !errors.Is(err, domain.ErrPropertyNotFound) {
			t.Fatalf("expected ErrPropertyNotFound, got %v", err)
		}
	})
}
