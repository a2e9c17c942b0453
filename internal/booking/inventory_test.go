package booking

import (
	"errors"
	"testing"
)

func TestCompute(t *testing.T) {
	tests := []struct {
		name        string
		capacity    int
		hasCapacity bool
		completed   []int
		want        Inventory
	}{
		{"empty showtime", 50, true, nil, Inventory{Capacity: 50, Available: 50}},
		{"partially sold", 50, true, []int{10, 15, 20}, Inventory{Capacity: 50, Booked: 45, Available: 5}},
		{"sold out", 12, true, []int{6, 6}, Inventory{Capacity: 12, Booked: 12, Available: 0}},
		{"capacity lowered below sales", 10, true, []int{6, 6}, Inventory{Capacity: 10, Booked: 12, Available: 0}},
		{"no capacity row", 0, false, []int{2}, Inventory{Booked: 2, Available: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Compute(tt.capacity, tt.hasCapacity, tt.completed); got != tt.want {
				t.Errorf("Compute() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestCheckRequest(t *testing.T) {
	inv := Compute(50, true, []int{10, 15, 20})
	tests := []struct {
		name        string
		inv         Inventory
		hasCapacity bool
		requested   int
		want        error
	}{
		{"exceeds remaining", inv, true, 6, ErrInsufficientSeats},
		{"fills remaining", inv, true, 5, nil},
		{"zero seats", inv, true, 0, ErrSeatRange},
		{"seven seats", Compute(100, true, nil), true, 7, ErrSeatRange},
		{"negative", inv, true, -1, ErrSeatRange},
		{"no capacity row", Inventory{}, false, 1, ErrNoCapacity},
		{"range checked before capacity", Inventory{}, false, 9, ErrSeatRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckRequest(tt.inv, tt.hasCapacity, tt.requested)
			if !errors.Is(err, tt.want) {
				t.Errorf("CheckRequest() = %v, want %v", err, tt.want)
			}
		})
	}
}

// After the five remaining seats are sold the showtime is sold out, and
// cancelling a sale returns its seats.
func TestSellOutAndCancel(t *testing.T) {
	completed := []int{10, 15, 20}
	if err := CheckRequest(Compute(50, true, completed), true, 5); err != nil {
		t.Fatalf("booking 5 of 5 remaining seats: %v", err)
	}
	completed = append(completed, 5)
	if got := Compute(50, true, completed).Available; got != 0 {
		t.Fatalf("available after sell-out = %d, want 0", got)
	}
	if err := CheckRequest(Compute(50, true, completed), true, 1); !errors.Is(err, ErrInsufficientSeats) {
		t.Fatalf("booking on sold-out showtime = %v, want ErrInsufficientSeats", err)
	}

	// Cancel the 15-seat sale: it no longer counts.
	remaining := []int{10, 20, 5}
	if got := Compute(50, true, remaining).Available; got != 15 {
		t.Errorf("available after cancel = %d, want 15", got)
	}
}
