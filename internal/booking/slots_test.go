package booking

import (
	"testing"
	"time"
)

func TestSlots(t *testing.T) {
	loc := time.FixedZone("WIB", 7*3600)
	date := time.Date(2026, 10, 20, 0, 0, 0, 0, loc)

	all := Slots(date, nil, loc)
	if len(all) != 24 {
		t.Fatalf("len(slots) = %d, want 24", len(all))
	}
	if got := all[0].Format("15:04"); got != "10:00" {
		t.Errorf("first slot = %s, want 10:00", got)
	}
	if got := all[len(all)-1].Format("15:04"); got != "21:30" {
		t.Errorf("last slot = %s, want 21:30", got)
	}

	booked := []time.Time{
		time.Date(2026, 10, 20, 10, 30, 0, 0, loc),
		// 14:00 WIB expressed in UTC must still match.
		time.Date(2026, 10, 20, 7, 0, 0, 0, time.UTC),
		// Another day is ignored.
		time.Date(2026, 10, 21, 11, 0, 0, 0, loc),
	}
	free := Slots(date, booked, loc)
	if len(free) != 22 {
		t.Fatalf("len(free) = %d, want 22", len(free))
	}
	for _, s := range free {
		switch s.Format("15:04") {
		case "10:30", "14:00":
			t.Errorf("booked slot %s still offered", s.Format("15:04"))
		}
	}
}
