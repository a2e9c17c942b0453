package booking

import (
	"time"
)

// Opening hours used for slot suggestions.  The last slot starts at
// LastSlotHour:30.
const (
	FirstSlotHour = 10
	LastSlotHour  = 21
	SlotStep      = 30 * time.Minute
)

// Slots lists the half-hour start times of date (in loc) between
// FirstSlotHour:00 and LastSlotHour:30 that are not already taken by one
// of the booked start times.  It only suggests; ValidatePlacement stays
// the authority on what may be created.
func Slots(date time.Time, booked []time.Time, loc *time.Location) []time.Time {
	if loc == nil {
		loc = time.UTC
	}
	d := date.In(loc)
	taken := make(map[int64]struct{}, len(booked))
	for _, b := range booked {
		taken[b.Unix()] = struct{}{}
	}
	first := time.Date(d.Year(), d.Month(), d.Day(), FirstSlotHour, 0, 0, 0, loc)
	last := time.Date(d.Year(), d.Month(), d.Day(), LastSlotHour, 30, 0, 0, loc)
	var free []time.Time
	for t := first; !t.After(last); t = t.Add(SlotStep) {
		if _, ok := taken[t.Unix()]; ok {
			continue
		}
		free = append(free, t)
	}
	return free
}
