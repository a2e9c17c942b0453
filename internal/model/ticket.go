package model

import "time"

// Ticket is the capacity-and-price row of a showtime.  It is not an
// individual seat: Seat holds how many seats can be sold in total.
// Normal use keeps at most one row per showtime.
type Ticket struct {
    ID         string    `json:"id"`                 // tickets.id
    ShowtimeID string    `json:"showtimeId"`         // tickets.showtime_id
    Seat       int       `json:"seat"`               // tickets.seat (sellable seat count)
    Price      int64     `json:"price"`              // tickets.price (minor currency units per seat)
    IsSold     bool      `json:"isSold"`             // tickets.is_sold
    CreatedAt  time.Time `json:"createdAt"`          // tickets.created_at
    Showtime   *Showtime `json:"showtime,omitempty"` // joined with its movie
}
