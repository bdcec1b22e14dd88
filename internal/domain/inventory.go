package domain

import "github.com/shopspring/decimal"

type PropertyType string

const (
	PropertyTypeHotel    PropertyType = "hotel"
	PropertyTypeResort   PropertyType = "resort"
	PropertyTypeHomestay PropertyType = "homestay"
	PropertyTypeHostel   PropertyType = "hostel"
	PropertyTypeVilla    PropertyType = "villa"
)

func (t PropertyType) Valid() bool {
	switch t {
	case PropertyTypeHotel, PropertyTypeResort, PropertyTypeHomestay, PropertyTypeHostel, PropertyTypeVilla:
		return true
	}
	return false
}

// Property is the listing that owns one or more inventory units.
type Property struct {
	ID            string
	DestinationID string
	Name          string
	Type          PropertyType
	StarRating    int
	// Rating is the aggregated guest review score on a 0-5 scale.
	Rating decimal.Decimal
	// Popularity counts completed bookings; used as the popularity sort key.
	Popularity int
	Amenities  AmenitySet
}

var (
	DefaultWeekendMultiplier    = decimal.RequireFromString("1.2")
	DefaultPeakSeasonMultiplier = decimal.RequireFromString("1.5")
)

// InventoryUnit is one bookable room type with TotalCapacity interchangeable rooms.
type InventoryUnit struct {
	ID                   string
	PropertyID           string
	Name                 string
	BasePrice            decimal.Decimal
	WeekendMultiplier    decimal.Decimal
	PeakSeasonMultiplier decimal.Decimal
	TotalCapacity        int
	MaxOccupancy         int
	Amenities            AmenitySet
}

// Accommodates reports whether guests fit in rooms of u. A zero guest count or a zero MaxOccupancy
// means no limit is checked.
func (u InventoryUnit) Accommodates(guests, rooms int) bool {
	if guests <= 0 || u.MaxOccupancy <= 0 {
		return true
	}
	return guests <= u.MaxOccupancy*rooms
}

// Listing pairs a unit with its owning property, the candidate shape used by search.
type Listing struct {
	Unit     InventoryUnit
	Property Property
}
