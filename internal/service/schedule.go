package service

import (
	"context"
	"errors"
	"time"

	"github.com/iliyamo/cinema-admin/internal/booking"
	"github.com/iliyamo/cinema-admin/internal/model"
	"github.com/iliyamo/cinema-admin/internal/repository"
)

// MovieGetter loads a single movie.
type MovieGetter interface {
	Get(ctx context.Context, id string) (*model.Movie, error)
}

// ShowtimeStore is the part of the showtime repository used for
// scheduling.
type ShowtimeStore interface {
	Get(ctx context.Context, id string) (*model.Showtime, error)
	ListByMovie(ctx context.Context, movieID string) ([]model.Showtime, error)
	ListBetween(ctx context.Context, from, to time.Time) ([]model.Showtime, error)
	Create(ctx context.Context, st *model.Showtime) error
	Update(ctx context.Context, st *model.Showtime) error
}

// ScheduleService creates and moves showtimes.
type ScheduleService struct {
	Movies    MovieGetter
	Showtimes ShowtimeStore
	Location  *time.Location
	Now       func() time.Time
}

func (s *ScheduleService) checker() booking.Checker {
	return booking.Checker{Now: s.Now}
}

func (s *ScheduleService) placements(ctx context.Context, movieID string) ([]booking.Placement, error) {
	existing, err := s.Showtimes.ListByMovie(ctx, movieID)
	if err != nil {
		return nil, err
	}
	out := make([]booking.Placement, 0, len(existing))
	for _, st := range existing {
		out = append(out, booking.Placement{ID: st.ID, MovieID: st.MovieID, Start: st.StartTime})
	}
	return out, nil
}

func (s *ScheduleService) requireMovie(ctx context.Context, movieID string) error {
	_, err := s.Movies.Get(ctx, movieID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrMovieNotFound
	}
	return err
}

// Create schedules movieID at start.  The unique (movie_id, start_time)
// index catches a concurrent create that passed the check.
func (s *ScheduleService) Create(ctx context.Context, movieID string, start time.Time) (*model.Showtime, error) {
	if err := s.requireMovie(ctx, movieID); err != nil {
		return nil, err
	}
	existing, err := s.placements(ctx, movieID)
	if err != nil {
		return nil, err
	}
	if err := s.checker().ValidatePlacement(movieID, start, existing, ""); err != nil {
		return nil, err
	}
	st := &model.Showtime{MovieID: movieID, StartTime: start.UTC()}
	if err := s.Showtimes.Create(ctx, st); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, booking.ErrConflict
		}
		return nil, err
	}
	return s.Showtimes.Get(ctx, st.ID)
}

// Update moves showtime id to movieID at start.  The showtime's own
// current slot does not count as a conflict.
func (s *ScheduleService) Update(ctx context.Context, id, movieID string, start time.Time) (*model.Showtime, error) {
	if _, err := s.Showtimes.Get(ctx, id); err != nil {
		return nil, err
	}
	if err := s.requireMovie(ctx, movieID); err != nil {
		return nil, err
	}
	existing, err := s.placements(ctx, movieID)
	if err != nil {
		return nil, err
	}
	if err := s.checker().ValidatePlacement(movieID, start, existing, id); err != nil {
		return nil, err
	}
	st := &model.Showtime{ID: id, MovieID: movieID, StartTime: start.UTC()}
	if err := s.Showtimes.Update(ctx, st); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, booking.ErrConflict
		}
		return nil, err
	}
	return s.Showtimes.Get(ctx, id)
}

// Slots suggests free half-hour start times for movieID on date.  Slots
// already taken by the movie and slots in the past are left out.
func (s *ScheduleService) Slots(ctx context.Context, movieID string, date time.Time) ([]time.Time, error) {
	if err := s.requireMovie(ctx, movieID); err != nil {
		return nil, err
	}
	existing, err := s.Showtimes.ListByMovie(ctx, movieID)
	if err != nil {
		return nil, err
	}
	booked := make([]time.Time, 0, len(existing))
	for _, st := range existing {
		booked = append(booked, st.StartTime)
	}
	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}
	free := make([]time.Time, 0)
	for _, t := range booking.Slots(date, booked, s.Location) {
		if t.Before(now) {
			continue
		}
		free = append(free, t)
	}
	return free, nil
}

// Today returns the showtimes starting today in s.Location.
func (s *ScheduleService) Today(ctx context.Context) ([]model.Showtime, error) {
	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}
	from, to := repository.DayBounds(now, s.Location)
	return s.Showtimes.ListBetween(ctx, from, to)
}
