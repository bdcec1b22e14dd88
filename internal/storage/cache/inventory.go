// Package cache fronts the inventory store with an in-process snapshot cache. Inventory changes rarely
// and is read on every search, availability check, and commit.
package cache

import (
	"context"
	"time"

	"github.com/karlseguin/ccache/v3"

	"github.com/cimillas/ultimate-stay/internal/domain"
)

// Inventory is the store being fronted.
type Inventory interface {
	GetUnit(ctx context.Context, unitID string) (domain.InventoryUnit, error)
	GetProperty(ctx context.Context, propertyID string) (domain.Property, error)
	ListUnitsByDestination(ctx context.Context, destinationID string) ([]domain.Listing, error)
	CreateProperty(ctx context.Context, property domain.Property) error
	ListProperties(ctx context.Context) ([]domain.Property, error)
	CreateUnit(ctx context.Context, unit domain.InventoryUnit) error
	ListUnitsByProperty(ctx context.Context, propertyID string) ([]domain.InventoryUnit, error)
}

const defaultMaxEntries = 10000

type InventoryCache struct {
	next         Inventory
	ttl          time.Duration
	units        *ccache.Cache[domain.InventoryUnit]
	properties   *ccache.Cache[domain.Property]
	destinations *ccache.Cache[[]domain.Listing]
}

// NewInventoryCache caches reads from next for ttl. Writes go through to next and evict the
// entries they affect.
func NewInventoryCache(next Inventory, ttl time.Duration) *InventoryCache {
	return &InventoryCache{
		next:         next,
		ttl:          ttl,
		units:        ccache.New(ccache.Configure[domain.InventoryUnit]().MaxSize(defaultMaxEntries)),
		properties:   ccache.New(ccache.Configure[domain.Property]().MaxSize(defaultMaxEntries)),
		destinations: ccache.New(ccache.Configure[[]domain.Listing]().MaxSize(defaultMaxEntries / 10)),
	}
}

// Stop halts the cache's background workers.
func (c *InventoryCache) Stop() {
	c.units.Stop()
	c.properties.Stop()
	c.destinations.Stop()
}

func (c *InventoryCache) GetUnit(ctx context.Context, unitID string) (domain.InventoryUnit, error) {
	item, err := c.units.Fetch(unitID, c.ttl, func() (domain.InventoryUnit, error) {
		return c.next.GetUnit(ctx, unitID)
	})
	if err != nil {
		return domain.InventoryUnit{}, err
	}
	return item.Value(), nil
}

func (c *InventoryCache) GetProperty(ctx context.Context, propertyID string) (domain.Property, error) {
	item, err := c.properties.Fetch(propertyID, c.ttl, func() (domain.Property, error) {
		return c.next.GetProperty(ctx, propertyID)
	})
	if err != nil {
		return domain.Property{}, err
	}
	return item.Value(), nil
}

// ListUnitsByDestination returns a copy so callers cannot mutate the cached slice.
func (c *InventoryCache) ListUnitsByDestination(ctx context.Context, destinationID string) ([]domain.Listing, error) {
	item, err := c.destinations.Fetch(destinationID, c.ttl, func() ([]domain.Listing, error) {
		return c.next.ListUnitsByDestination(ctx, destinationID)
	})
	if err != nil {
		return nil, err
	}
	cached := item.Value()
	out := make([]domain.Listing, len(cached))
	copy(out, cached)
	return out, nil
}

func (c *InventoryCache) CreateProperty(ctx context.Context, property domain.Property) error {
	if err := c.next.CreateProperty(ctx, property); err != nil {
		return err
	}
	c.properties.Delete(property.ID)
	c.destinations.Delete(property.DestinationID)
	return nil
}

func (c *InventoryCache) ListProperties(ctx context.Context) ([]domain.Property, error) {
	return c.next.ListProperties(ctx)
}

func (c *InventoryCache) CreateUnit(ctx context.Context, unit domain.InventoryUnit) error {
	if err := c.next.CreateUnit(ctx, unit); err != nil {
		return err
	}
	c.units.Delete(unit.ID)
	if p, err := c.GetProperty(ctx, unit.PropertyID); err == nil {
		c.destinations.Delete(p.DestinationID)
	}
	return nil
}

func (c *InventoryCache) ListUnitsByProperty(ctx context.Context, propertyID string) ([]domain.InventoryUnit, error) {
	return c.next.ListUnitsByProperty(ctx, propertyID)
}
