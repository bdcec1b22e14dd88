package domain

import "fmt"

// DateRange is the half-open stay [CheckIn, CheckOut). The check-out day is not a night of the stay,
// so a check-out on day X never conflicts with a check-in on day X.
type DateRange struct {
	CheckIn  Date `json:"check_in"`
	CheckOut Date `json:"check_out"`
}

func NewDateRange(checkIn, checkOut Date) (DateRange, error) {
	r := DateRange{CheckIn: checkIn, CheckOut: checkOut}
	if err := r.Validate(); err != nil {
		return DateRange{}, err
	}
	return r, nil
}

// Validate requires both dates and at least one night.
func (r DateRange) Validate() error {
	if r.CheckIn.IsZero() || r.CheckOut.IsZero() {
		return fmt.Errorf("%w: check_in and check_out are required", ErrInvalidRange)
	}
	if !r.CheckIn.Before(r.CheckOut) {
		return fmt.Errorf("%w: check_in %s must be before check_out %s", ErrInvalidRange, r.CheckIn, r.CheckOut)
	}
	return nil
}

func (r DateRange) Nights() int {
	return r.CheckIn.DaysUntil(r.CheckOut)
}

func (r DateRange) Overlaps(other DateRange) bool {
	return r.CheckIn.Before(other.CheckOut) && other.CheckIn.Before(r.CheckOut)
}

// Contains reports whether night d is inside the range.
func (r DateRange) Contains(d Date) bool {
	return !d.Before(r.CheckIn) && d.Before(r.CheckOut)
}

// Intersect returns the nights shared by both ranges.
func (r DateRange) Intersect(other DateRange) (DateRange, bool) {
	if !r.Overlaps(other) {
		return DateRange{}, false
	}
	out := DateRange{CheckIn: r.CheckIn, CheckOut: r.CheckOut}
	if other.CheckIn.After(out.CheckIn) {
		out.CheckIn = other.CheckIn
	}
	if other.CheckOut.Before(out.CheckOut) {
		out.CheckOut = other.CheckOut
	}
	return out, true
}

// EachNight calls fn for every night of the range with its zero-based offset.
func (r DateRange) EachNight(fn func(i int, night Date)) {
	n := r.Nights()
	for i := 0; i < n; i++ {
		fn(i, r.CheckIn.AddDays(i))
	}
}

func (r DateRange) String() string {
	return fmt.Sprintf("[%s, %s)", r.CheckIn, r.CheckOut)
}
