package booking

import (
	"errors"
	"time"
)

var (
	// ErrPastTime is returned when a showtime would start before now.
	ErrPastTime = errors.New("time in the past")

	// ErrConflict is returned when the movie already has a showtime at
	// exactly the same start time.
	ErrConflict = errors.New("schedule conflict")
)

// Placement is the part of a showtime the conflict check looks at.
type Placement struct {
	ID      string
	MovieID string
	Start   time.Time
}

// Checker validates showtime placements.  Now defaults to time.Now.
type Checker struct {
	Now func() time.Time
}

func (c Checker) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// ValidatePlacement decides whether movieID may start at start.  The
// placement with id excludeID is ignored, which lets an edit keep its
// own slot; pass "" on create.
//
// Only exact start-time equality for the same movie collides.  There is
// no tolerance window and no screen resource, so different movies never
// conflict.
func (c Checker) ValidatePlacement(movieID string, start time.Time, existing []Placement, excludeID string) error {
	if start.Before(c.now()) {
		return ErrPastTime
	}
	for _, p := range existing {
		if excludeID != "" && p.ID == excludeID {
			continue
		}
		if p.MovieID == movieID && p.Start.Equal(start) {
			return ErrConflict
		}
	}
	return nil
}
