package domain

import "github.com/shopspring/decimal"

// PricingContext carries the moment-in-time inputs to pricing. Today is always passed in explicitly.
type PricingContext struct {
	Today Date
}

// NightlyRate is one night of a quote after all multipliers, rounded for display only.
type NightlyRate struct {
	Night  Date            `json:"night"`
	Amount decimal.Decimal `json:"amount"`
}

type Quote struct {
	UnitID        string          `json:"unit_id"`
	Nights        int             `json:"nights"`
	PricePerNight decimal.Decimal `json:"price_per_night"`
	TotalPrice    decimal.Decimal `json:"total_price"`
	Currency      string          `json:"currency"`
	Nightly       []NightlyRate   `json:"nightly,omitempty"`
}

// NightAvailability is the free room count for one night.
type NightAvailability struct {
	Night     Date `json:"night"`
	Committed int  `json:"committed"`
	Free      int  `json:"free"`
}

// Availability is the read-only answer for a unit and range. MinFree is the scarcest night.
type Availability struct {
	UnitID    string              `json:"unit_id"`
	Range     DateRange           `json:"range"`
	Capacity  int                 `json:"capacity"`
	Requested int                 `json:"requested"`
	MinFree   int                 `json:"min_free"`
	Bookable  bool                `json:"bookable"`
	Nights    []NightAvailability `json:"nights"`
}
