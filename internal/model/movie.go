package model

import "time"

// Movie is a film that can be scheduled.  It corresponds to a row in
// the `movies` table.
//
// Fields:
//  ID          – UUID primary key.
//  Title       – display title (required).
//  Description – synopsis (required).
//  Duration    – running time as entered by staff, e.g. "120" or "2h 5m".
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Movie struct {
    ID          string    `json:"id"`          // movies.id
    Title       string    `json:"title"`       // movies.title
    Description string    `json:"description"` // movies.description
    Duration    string    `json:"duration"`    // movies.duration
    CreatedAt   time.Time `json:"createdAt"`   // movies.created_at
    UpdatedAt   time.Time `json:"updatedAt"`   // movies.updated_at
}
