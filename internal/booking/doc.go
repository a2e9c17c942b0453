// Package booking holds the two consistency rules of the box office:
// seat inventory (how many seats of a showtime are still sellable) and
// showtime placement (whether a movie may be scheduled at a given
// start time).  Everything here is pure; callers load the rows, call
// these functions and perform the write themselves.
//
// Inventory is a counter, not a seat map.  A showtime has one capacity
// row giving the number of sellable seats, and completed transactions
// consume seats from it.  Physical seat numbers are not tracked, so
// selling "seat 7" twice is neither representable nor prevented.
package booking
