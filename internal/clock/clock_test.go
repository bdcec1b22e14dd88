package clock

import (
	"testing"
	"time"

	"github.com/cimillas/ultimate-stay/internal/domain"
)

func TestToday_UsesClockLocation(t *testing.T) {
	t.Parallel()

	kolkata := time.FixedZone("IST", 5*3600+1800)
	// 20:00 UTC on Jan 1 is already Jan 2 in IST.
	instant := time.Date(2025, 1, 1, 20, 0, 0, 0, time.UTC).In(kolkata)

	got := Today(NewFixed(instant))
	want := domain.NewDate(2025, 1, 2)
	if !got.Equal(want) {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestNewSystem_DefaultsToUTC(t *testing.T) {
	t.Parallel()

	now := NewSystem(nil).Now()
	if now.Location() != time.UTC {
		t.Fatalf("expected UTC location, got %s", now.Location())
	}
}
