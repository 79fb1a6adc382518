package blood

import (
	"testing"
	"time"
)

func TestGroupValid(t *testing.T) {
	for _, g := range Groups {
		if !g.Valid() {
			t.Fatalf("%q should be valid", g)
		}
	}
	for _, s := range []string{"", "A", "O", "AB", "o+", "C+"} {
		if Group(s).Valid() {
			t.Fatalf("%q should be invalid", s)
		}
	}
}

func TestDates(t *testing.T) {
	d := time.Date(2024, 1, 10, 15, 30, 0, 0, time.FixedZone("X", 3*3600))

	if got, want := ExpiryFor(d), time.Date(2024, 2, 21, 0, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Fatalf("expiry = %v, want %v", got, want)
	}
	if got, want := NextEligibleAfter(d), time.Date(2024, 4, 9, 0, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Fatalf("next eligible = %v, want %v", got, want)
	}
	if n := DaysBetween(d, time.Date(2024, 1, 15, 1, 0, 0, 0, time.UTC)); n != 5 {
		t.Fatalf("days between = %d, want 5", n)
	}
	if n := DaysBetween(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), d); n != -5 {
		t.Fatalf("days between reversed = %d, want -5", n)
	}
}
