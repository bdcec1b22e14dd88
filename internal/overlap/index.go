package overlap

import (
	"sort"

	"github.com/cimillas/ultimate-stay/internal/domain"
)

// Index keeps one unit's reservation history sorted by check-in. Together with the longest stay seen,
// that bounds an overlap lookup to the window [q.CheckIn - longest, q.CheckOut) instead of the full
// history. Index is not safe for concurrent use; callers guard it.
type Index struct {
	entries []*domain.Reservation
	byID    map[string]*domain.Reservation
	longest int
}

func NewIndex() *Index {
	return &Index{byID: make(map[string]*domain.Reservation)}
}

func (x *Index) Len() int {
	return len(x.entries)
}

// Insert adds r keeping check-in order; ties keep insertion order.
func (x *Index) Insert(r domain.Reservation) {
	rec := r
	pos := sort.Search(len(x.entries), func(i int) bool {
		return x.entries[i].Range.CheckIn.After(rec.Range.CheckIn)
	})
	x.entries = append(x.entries, nil)
	copy(x.entries[pos+1:], x.entries[pos:])
	x.entries[pos] = &rec
	x.byID[rec.ID] = &rec
	if n := rec.Range.Nights(); n > x.longest {
		x.longest = n
	}
}

// Get returns a copy of the reservation with the given id.
func (x *Index) Get(id string) (domain.Reservation, bool) {
	rec, ok := x.byID[id]
	if !ok {
		return domain.Reservation{}, false
	}
	return *rec, true
}

// Replace swaps the stored record for r.ID. Range and quantity are immutable, so the sort position holds.
func (x *Index) Replace(r domain.Reservation) bool {
	rec, ok := x.byID[r.ID]
	if !ok {
		return false
	}
	*rec = r
	return true
}

// Overlapping returns copies of every reservation whose range overlaps rng, whatever its status.
func (x *Index) Overlapping(rng domain.DateRange) []domain.Reservation {
	earliest := rng.CheckIn.AddDays(-x.longest)
	lo := sort.Search(len(x.entries), func(i int) bool {
		return !x.entries[i].Range.CheckIn.Before(earliest)
	})
	hi := sort.Search(len(x.entries), func(i int) bool {
		return !x.entries[i].Range.CheckIn.Before(rng.CheckOut)
	})

	var out []domain.Reservation
	for _, rec := range x.entries[lo:hi] {
		if rec.Range.Overlaps(rng) {
			out = append(out, *rec)
		}
	}
	return out
}
