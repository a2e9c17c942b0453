package model

import "time"

// Showtime is a scheduled screening of one movie at one start time.
// There is no screen/hall resource; two different movies may start at
// the same moment.
//
// Fields:
//  ID        – UUID primary key.
//  MovieID   – movie being screened.
//  StartTime – scheduled start (stored in UTC).
//  CreatedAt – creation timestamp.
//  Movie     – joined movie row, populated by list/read queries.
//  Tickets   – joined capacity rows, populated by the list query.
type Showtime struct {
    ID        string    `json:"id"`               // showtimes.id
    MovieID   string    `json:"movieId"`          // showtimes.movie_id
    StartTime time.Time `json:"startTime"`        // showtimes.start_time
    CreatedAt time.Time `json:"createdAt"`        // showtimes.created_at
    Movie     *Movie    `json:"movie,omitempty"`   // joined
    Tickets   []Ticket  `json:"tickets,omitempty"` // joined
}
