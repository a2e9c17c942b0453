package service

import "errors"

var (
	// ErrSalesClosed is returned when tickets are sold for a showtime
	// that does not start today.
	ErrSalesClosed = errors.New("tickets can only be sold for today's showtimes")

	ErrInvalidPayment = errors.New("paymentMethod must be CASH or DEBIT")

	// ErrInvalidCredentials hides whether the e-mail or the password was
	// wrong.
	ErrInvalidCredentials = errors.New("invalid email or password")

	ErrEmailTaken = errors.New("email already registered")

	// ErrMovieNotFound is returned when a showtime references a missing
	// movie.
	ErrMovieNotFound = errors.New("movie not found")

	ErrTicketExists = errors.New("a ticket already exists for this showtime")

	// ErrSeatsBelowSold is returned when a capacity row would offer fewer
	// seats than completed sales already hold.
	ErrSeatsBelowSold = errors.New("seat count is below the seats already sold")

	// ErrTicketHasSales is returned when a capacity row with completed
	// sales would move to another showtime.
	ErrTicketHasSales = errors.New("ticket has sales and cannot move to another showtime")
)
