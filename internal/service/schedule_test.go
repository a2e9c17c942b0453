package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/iliyamo/cinema-admin/internal/booking"
	"github.com/iliyamo/cinema-admin/internal/repository"
)

func newScheduleService(store *memStore) *ScheduleService {
	return &ScheduleService{
		Movies:    memMovies{store},
		Showtimes: memShowtimes{store},
		Location:  time.UTC,
		Now:       func() time.Time { return testNow },
	}
}

func TestScheduleCreate(t *testing.T) {
	store := newMemStore()
	mv := store.addMovie("Dune")
	other := store.addMovie("Heat")
	svc := newScheduleService(store)
	ctx := context.Background()
	start := testNow.Add(24 * time.Hour)

	st, err := svc.Create(ctx, mv.ID, start)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if st.Movie == nil || st.Movie.Title != "Dune" {
		t.Fatalf("created showtime has movie %+v", st.Movie)
	}

	if _, err := svc.Create(ctx, mv.ID, start.In(time.FixedZone("X", 3600))); !errors.Is(err, booking.ErrConflict) {
		t.Fatalf("same instant in another zone: got %v, want ErrConflict", err)
	}
	if n := len(store.showtimes); n != 1 {
		t.Fatalf("rejected create stored a showtime: %d", n)
	}

	if _, err := svc.Create(ctx, other.ID, start); err != nil {
		t.Fatalf("other movie at the same time: %v", err)
	}
	if _, err := svc.Create(ctx, mv.ID, testNow.Add(-time.Minute)); !errors.Is(err, booking.ErrPastTime) {
		t.Fatalf("past start: got %v, want ErrPastTime", err)
	}
	if _, err := svc.Create(ctx, "missing", start); !errors.Is(err, ErrMovieNotFound) {
		t.Fatalf("missing movie: got %v, want ErrMovieNotFound", err)
	}
}

func TestScheduleUpdate(t *testing.T) {
	store := newMemStore()
	mv := store.addMovie("Dune")
	svc := newScheduleService(store)
	ctx := context.Background()
	a := store.addShowtime(mv.ID, testNow.Add(24*time.Hour), 0, 0)
	b := store.addShowtime(mv.ID, testNow.Add(26*time.Hour), 0, 0)

	if _, err := svc.Update(ctx, a.ID, mv.ID, a.StartTime); err != nil {
		t.Fatalf("keeping own slot: %v", err)
	}
	if _, err := svc.Update(ctx, a.ID, mv.ID, b.StartTime); !errors.Is(err, booking.ErrConflict) {
		t.Fatalf("moving onto another showtime: got %v, want ErrConflict", err)
	}
	if !store.showtimes[a.ID].StartTime.Equal(testNow.Add(24 * time.Hour)) {
		t.Fatal("rejected update changed the start time")
	}
	if _, err := svc.Update(ctx, "missing", mv.ID, b.StartTime); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("missing showtime: got %v, want ErrNotFound", err)
	}
}

func TestScheduleSlotsSkipsTakenAndPast(t *testing.T) {
	store := newMemStore()
	mv := store.addMovie("Dune")
	svc := newScheduleService(store)
	// testNow is 09:00; 10:00 and 10:30 are open, 11:00 is taken.
	store.addShowtime(mv.ID, time.Date(2025, 3, 10, 11, 0, 0, 0, time.UTC), 0, 0)

	slots, err := svc.Slots(context.Background(), mv.ID, testNow)
	if err != nil {
		t.Fatalf("slots: %v", err)
	}
	if len(slots) != 23 {
		t.Fatalf("got %d slots, want 23", len(slots))
	}
	for _, s := range slots {
		if s.Hour() == 11 && s.Minute() == 0 {
			t.Fatal("taken slot 11:00 offered")
		}
	}

	svc.Now = func() time.Time { return time.Date(2025, 3, 10, 21, 0, 0, 0, time.UTC) }
	slots, err = svc.Slots(context.Background(), mv.ID, testNow)
	if err != nil {
		t.Fatalf("slots: %v", err)
	}
	if len(slots) != 2 {
		t.Fatalf("late in the day got %d slots, want 2", len(slots))
	}
}
