// Package queue defines message payloads exchanged over the message broker.
package queue

// QueueName is the durable queue carrying transaction events.
const QueueName = "cinema.transactions"

// Event types carried in TransactionEvent.Type.
const (
	EventCompleted = "transaction.completed"
	EventCancelled = "transaction.cancelled"
)

// TransactionEvent is published after a sale is recorded or cancelled.
// It carries enough information for downstream consumers to log or
// report without querying the primary database.
type TransactionEvent struct {
	Type          string `json:"type"`
	TransactionID string `json:"transaction_id"`
	ShowtimeID    string `json:"showtime_id"`
	MovieTitle    string `json:"movie_title,omitempty"`
	StartsAt      string `json:"starts_at,omitempty"`
	Seats         int    `json:"seats"`
	TotalPrice    int64  `json:"total_price"`
	PaymentMethod string `json:"payment_method"`
	Status        string `json:"status"`
	OccurredAt    string `json:"occurred_at"`
}
