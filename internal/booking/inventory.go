package booking

import "errors"

// Seat limits of a single transaction.
const (
	MinSeatsPerSale = 1
	MaxSeatsPerSale = 6
)

var (
	// ErrSeatRange is returned when a sale asks for fewer than
	// MinSeatsPerSale or more than MaxSeatsPerSale seats.
	ErrSeatRange = errors.New("seats must be between 1 and 6")

	// ErrNoCapacity is returned when the showtime has no capacity row.
	// Nothing can be sold for it.
	ErrNoCapacity = errors.New("ticket not found")

	// ErrInsufficientSeats is returned when the request exceeds the
	// seats still available.
	ErrInsufficientSeats = errors.New("not enough seats available")
)

// Inventory is the seat count of one showtime at a point in time.
type Inventory struct {
	Capacity  int `json:"capacity"`
	Booked    int `json:"booked"`
	Available int `json:"available"`
}

// Compute derives the inventory from the capacity row's seat count and
// the seats of every completed sale.  hasCapacity is false when the
// showtime has no capacity row, in which case nothing is available.
func Compute(capacity int, hasCapacity bool, completed []int) Inventory {
	booked := 0
	for _, n := range completed {
		booked += n
	}
	return FromTotals(capacity, hasCapacity, booked)
}

// FromTotals is Compute for callers that already summed the booked
// seats, typically in SQL.
func FromTotals(capacity int, hasCapacity bool, booked int) Inventory {
	if !hasCapacity {
		return Inventory{Booked: booked}
	}
	available := capacity - booked
	if available < 0 {
		available = 0
	}
	return Inventory{Capacity: capacity, Booked: booked, Available: available}
}

// CheckRequest validates a sale of requested seats against inv.  The
// range check runs first so a malformed request is reported as such even
// for a sold-out showtime.
func CheckRequest(inv Inventory, hasCapacity bool, requested int) error {
	if requested < MinSeatsPerSale || requested > MaxSeatsPerSale {
		return ErrSeatRange
	}
	if !hasCapacity {
		return ErrNoCapacity
	}
	if requested > inv.Available {
		return ErrInsufficientSeats
	}
	return nil
}
