// Package pricing computes date-range-sensitive stay prices. It performs no I/O and never reads a clock:
// "today" arrives through domain.PricingContext.
package pricing

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cimillas/ultimate-stay/internal/domain"
)

// Policy holds the tunable pricing parameters. The booking-window thresholds are heuristics and are
// expected to come from configuration.
type Policy struct {
	PeakMonths []time.Month
	// Check-ins fewer than LastMinuteDays away get LastMinutePremium.
	LastMinuteDays    int
	LastMinutePremium decimal.Decimal
	// Check-ins more than EarlyBirdDays away get EarlyBirdDiscount.
	EarlyBirdDays     int
	EarlyBirdDiscount decimal.Decimal
	Currency          string
	// MinorUnits is the number of decimal places of the currency.
	MinorUnits int32
}

func DefaultPolicy() Policy {
	return Policy{
		PeakMonths:        []time.Month{time.December, time.January, time.April, time.May},
		LastMinuteDays:    7,
		LastMinutePremium: decimal.RequireFromString("1.15"),
		EarlyBirdDays:     60,
		EarlyBirdDiscount: decimal.RequireFromString("0.9"),
		Currency:          "INR",
		MinorUnits:        2,
	}
}

func (p Policy) Validate() error {
	if p.LastMinuteDays < 0 || p.EarlyBirdDays < 0 {
		return fmt.Errorf("pricing policy: window thresholds must not be negative")
	}
	if p.LastMinuteDays > p.EarlyBirdDays {
		return fmt.Errorf("pricing policy: last-minute threshold %d exceeds early-bird threshold %d", p.LastMinuteDays, p.EarlyBirdDays)
	}
	if !p.LastMinutePremium.IsPositive() || !p.EarlyBirdDiscount.IsPositive() {
		return fmt.Errorf("pricing policy: window multipliers must be positive")
	}
	if p.Currency == "" {
		return fmt.Errorf("pricing policy: currency required")
	}
	if p.MinorUnits < 0 || p.MinorUnits > 4 {
		return fmt.Errorf("pricing policy: minor units %d out of range", p.MinorUnits)
	}
	for _, m := range p.PeakMonths {
		if m < time.January || m > time.December {
			return fmt.Errorf("pricing policy: invalid peak month %d", m)
		}
	}
	return nil
}

type Calculator struct {
	policy Policy
	peak   [13]bool
}

func NewCalculator(policy Policy) (*Calculator, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	c := &Calculator{policy: policy}
	for _, m := range policy.PeakMonths {
		c.peak[m] = true
	}
	return c, nil
}

func (c *Calculator) Currency() string {
	return c.policy.Currency
}

// WindowFactor is the booking-window multiplier, derived once from the gap between today and check-in.
func (c *Calculator) WindowFactor(rng domain.DateRange, pctx domain.PricingContext) decimal.Decimal {
	gap := pctx.Today.DaysUntil(rng.CheckIn)
	switch {
	case gap < c.policy.LastMinuteDays:
		return c.policy.LastMinutePremium
	case gap > c.policy.EarlyBirdDays:
		return c.policy.EarlyBirdDiscount
	default:
		return decimal.NewFromInt(1)
	}
}

// Price returns the quote for staying in unit over rng. Multipliers compose per night in the order
// weekend, peak season, booking window; the unrounded nightly amounts are summed and the total is
// rounded once with banker's rounding.
func (c *Calculator) Price(unit domain.InventoryUnit, rng domain.DateRange, pctx domain.PricingContext) (domain.Quote, error) {
	if err := rng.Validate(); err != nil {
		return domain.Quote{}, err
	}
	if pctx.Today.IsZero() {
		return domain.Quote{}, fmt.Errorf("%w: pricing context has no today", domain.ErrInvalidRange)
	}
	if unit.BasePrice.IsNegative() {
		return domain.Quote{}, fmt.Errorf("%w: negative base price %s", domain.ErrInvalidPrice, unit.BasePrice)
	}
	if !unit.WeekendMultiplier.IsPositive() || !unit.PeakSeasonMultiplier.IsPositive() {
		return domain.Quote{}, fmt.Errorf("%w: multipliers must be positive", domain.ErrInvalidPrice)
	}

	window := c.WindowFactor(rng, pctx)
	nights := rng.Nights()
	nightly := make([]domain.NightlyRate, 0, nights)
	total := decimal.Zero

	rng.EachNight(func(_ int, night domain.Date) {
		amount := unit.BasePrice
		if night.IsWeekend() {
			amount = amount.Mul(unit.WeekendMultiplier)
		}
		if c.peak[night.Month()] {
			amount = amount.Mul(unit.PeakSeasonMultiplier)
		}
		amount = amount.Mul(window)

		total = total.Add(amount)
		nightly = append(nightly, domain.NightlyRate{
			Night:  night,
			Amount: amount.RoundBank(c.policy.MinorUnits),
		})
	})

	total = total.RoundBank(c.policy.MinorUnits)
	perNight := total.Div(decimal.NewFromInt(int64(nights))).RoundBank(c.policy.MinorUnits)

	return domain.Quote{
		UnitID:        unit.ID,
		Nights:        nights,
		PricePerNight: perNight,
		TotalPrice:    total,
		Currency:      c.policy.Currency,
		Nightly:       nightly,
	}, nil
}
