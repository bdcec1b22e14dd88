package overlap

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/cimillas/ultimate-stay/internal/domain"
)

func day(d int) domain.Date {
	return domain.NewDate(2025, time.January, 1).AddDays(d - 1)
}

func span(in, out int) domain.DateRange {
	return domain.DateRange{CheckIn: day(in), CheckOut: day(out)}
}

func booked(id string, in, out, qty int, status domain.ReservationStatus) domain.Reservation {
	return domain.Reservation{ID: id, UnitID: "unit-1", Range: span(in, out), Quantity: qty, Status: status}
}

func TestCommitted_AdjacentStaysDoNotOverlap(t *testing.T) {
	t.Parallel()

	res := []domain.Reservation{booked("r1", 1, 3, 2, domain.ReservationStatusConfirmed)}
	got := Committed("unit-1", span(3, 5), res)
	if got.Peak() != 0 {
		t.Fatalf("expected no committed rooms, got peak %d", got.Peak())
	}
}

func TestCommitted_ContainingStayCoversEveryNight(t *testing.T) {
	t.Parallel()

	res := []domain.Reservation{booked("r1", 1, 5, 2, domain.ReservationStatusPending)}
	got := Committed("unit-1", span(3, 4), res)
	if got.At(day(3)) != 2 {
		t.Fatalf("expected 2 rooms committed on Jan 3, got %d", got.At(day(3)))
	}
}

func TestCommitted_PerNightSums(t *testing.T) {
	t.Parallel()

	res := []domain.Reservation{
		booked("a", 1, 4, 1, domain.ReservationStatusConfirmed),
		booked("b", 3, 6, 2, domain.ReservationStatusPending),
		booked("c", 2, 3, 4, domain.ReservationStatusCancelled),
		booked("d", 5, 7, 1, domain.ReservationStatusCompleted),
		{ID: "e", UnitID: "unit-2", Range: span(1, 10), Quantity: 9, Status: domain.ReservationStatusConfirmed},
	}
	got := Committed("unit-1", span(1, 7), res)

	want := []int{1, 1, 3, 2, 2, 0}
	i := 0
	got.Each(func(night domain.Date, committed int) {
		if committed != want[i] {
			t.Fatalf("night %s: expected %d committed, got %d", night, want[i], committed)
		}
		i++
	})
	if i != len(want) {
		t.Fatalf("expected %d nights, visited %d", len(want), i)
	}
	if got.Peak() != 3 {
		t.Fatalf("expected peak 3, got %d", got.Peak())
	}
	if got.At(day(9)) != 0 {
		t.Fatalf("expected zero outside the range")
	}
}

func TestIndex_MatchesLinearScan(t *testing.T) {
	t.Parallel()

	rnd := rand.New(rand.NewSource(42))
	idx := NewIndex()
	var all []domain.Reservation
	statuses := []domain.ReservationStatus{
		domain.ReservationStatusPending,
		domain.ReservationStatusConfirmed,
		domain.ReservationStatusCancelled,
	}
	for i := 0; i < 300; i++ {
		in := rnd.Intn(120) + 1
		r := booked(fmt.Sprintf("r%d", i), in, in+rnd.Intn(14)+1, rnd.Intn(3)+1, statuses[rnd.Intn(len(statuses))])
		idx.Insert(r)
		all = append(all, r)
	}

	for q := 0; q < 200; q++ {
		in := rnd.Intn(130) + 1
		rng := span(in, in+rnd.Intn(10)+1)

		fromIndex := Committed("unit-1", rng, idx.Overlapping(rng))
		fromScan := Committed("unit-1", rng, all)
		rng.EachNight(func(_ int, night domain.Date) {
			if fromIndex.At(night) != fromScan.At(night) {
				t.Fatalf("query %s night %s: index %d, scan %d", rng, night, fromIndex.At(night), fromScan.At(night))
			}
		})
	}
}

func TestIndex_ReplaceChangesStatusInPlace(t *testing.T) {
	t.Parallel()

	idx := NewIndex()
	idx.Insert(booked("r1", 1, 5, 2, domain.ReservationStatusConfirmed))

	r, ok := idx.Get("r1")
	if !ok {
		t.Fatalf("expected r1 in index")
	}
	r.Status = domain.ReservationStatusCancelled
	if !idx.Replace(r) {
		t.Fatalf("expected replace to find r1")
	}
	if got := Committed("unit-1", span(1, 5), idx.Overlapping(span(1, 5))); got.Peak() != 0 {
		t.Fatalf("expected cancelled reservation to free capacity, got peak %d", got.Peak())
	}
	if idx.Replace(booked("missing", 1, 2, 1, domain.ReservationStatusPending)) {
		t.Fatalf("expected replace of unknown id to fail")
	}
}
