package model

import (
    "strings"
    "time"
)

// TransactionStatus is the lifecycle state of a sale.  Only completed
// transactions count against a showtime's capacity.
type TransactionStatus string

const (
    StatusCompleted TransactionStatus = "COMPLETED"
    StatusCancelled TransactionStatus = "CANCELLED"
)

// Valid reports whether s is a known status.
func (s TransactionStatus) Valid() bool {
    switch s {
    case StatusCompleted, StatusCancelled:
        return true
    }
    return false
}

// CountsAgainstCapacity reports whether seats of a transaction in this
// state are considered booked.
func (s TransactionStatus) CountsAgainstCapacity() bool {
    switch s {
    case StatusCompleted:
        return true
    case StatusCancelled:
        return false
    }
    return false
}

// PaymentMethod is a label recorded with a sale.  Nothing is charged.
type PaymentMethod string

const (
    PaymentCash  PaymentMethod = "CASH"
    PaymentDebit PaymentMethod = "DEBIT"
)

// ParsePaymentMethod accepts any letter case ("cash", "Debit").
func ParsePaymentMethod(s string) (PaymentMethod, bool) {
    switch p := PaymentMethod(strings.ToUpper(strings.TrimSpace(s))); p {
    case PaymentCash, PaymentDebit:
        return p, true
    }
    return "", false
}

// Transaction records the sale of one or more seats for a showtime.
//
// Fields:
//  ID            – UUID primary key.
//  ShowtimeID    – showtime the seats were sold for.
//  Seats         – number of seats bought (1..6).
//  TotalPrice    – seats × capacity-row price.
//  PaymentMethod – CASH or DEBIT.
//  CustomerName  – optional walk-in customer name.
//  CustomerPhone – optional customer phone number.
//  Status        – COMPLETED or CANCELLED.  Rows are never deleted.
//  CreatedAt     – sale timestamp.
type Transaction struct {
    ID            string            `json:"id"`                      // transactions.id
    ShowtimeID    string            `json:"showtimeId"`              // transactions.showtime_id
    Seats         int               `json:"seats"`                   // transactions.seats
    TotalPrice    int64             `json:"totalPrice"`              // transactions.total_price
    PaymentMethod PaymentMethod     `json:"paymentMethod"`           // transactions.payment_method
    CustomerName  *string           `json:"customerName"`            // transactions.customer_name (nullable)
    CustomerPhone *string           `json:"customerPhone"`           // transactions.customer_phone (nullable)
    Status        TransactionStatus `json:"status"`                  // transactions.status
    CreatedAt     time.Time         `json:"createdAt"`               // transactions.created_at
    Showtime      *Showtime         `json:"showtime,omitempty"`      // joined with its movie
}
