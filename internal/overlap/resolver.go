// Package overlap resolves how many rooms of a unit are already committed on each night of a range.
package overlap

import "github.com/cimillas/ultimate-stay/internal/domain"

// Nightly is the committed quantity for every night of Range.
type Nightly struct {
	Range domain.DateRange
	qty   []int
}

// At returns the committed quantity on night d, zero outside the range.
func (n Nightly) At(d domain.Date) int {
	if !n.Range.Contains(d) {
		return 0
	}
	return n.qty[n.Range.CheckIn.DaysUntil(d)]
}

// Peak is the largest committed quantity over the range.
func (n Nightly) Peak() int {
	peak := 0
	for _, q := range n.qty {
		if q > peak {
			peak = q
		}
	}
	return peak
}

func (n Nightly) Each(fn func(night domain.Date, committed int)) {
	for i, q := range n.qty {
		fn(n.Range.CheckIn.AddDays(i), q)
	}
}

// Committed sums, per night of rng, the quantity of unitID's capacity-holding reservations covering
// that night. It sweeps a difference array, so the cost is O(nights + reservations).
func Committed(unitID string, rng domain.DateRange, reservations []domain.Reservation) Nightly {
	nights := rng.Nights()
	if nights <= 0 {
		return Nightly{Range: rng}
	}

	diff := make([]int, nights+1)
	for _, r := range reservations {
		if r.UnitID != unitID || !r.Status.HoldsCapacity() || r.Quantity <= 0 {
			continue
		}
		shared, ok := rng.Intersect(r.Range)
		if !ok {
			continue
		}
		diff[rng.CheckIn.DaysUntil(shared.CheckIn)] += r.Quantity
		diff[rng.CheckIn.DaysUntil(shared.CheckOut)] -= r.Quantity
	}

	qty := make([]int, nights)
	running := 0
	for i := 0; i < nights; i++ {
		running += diff[i]
		qty[i] = running
	}
	return Nightly{Range: rng, qty: qty}
}
