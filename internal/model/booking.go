package model

import "time"

// Booking records one completed purchase.  Bookings are created exactly
// once per successful payment confirmation and are never mutated.
//
// Fields:
//  ID          – booking reference.
//  UserID      – buyer.
//  MovieID     – movie of the showing.
//  Showtime    – showtime of the showing.
//  SeatID      – purchased seat.
//  Amount      – amount captured, taken from the hold's price snapshot.
//  CompletedAt – when the confirmation succeeded.
//  IntentID    – payment intent that was confirmed.
type Booking struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	MovieID     string    `json:"movieId"`
	Showtime    string    `json:"time"`
	SeatID      string    `json:"seatId"`
	Amount      int64     `json:"amount"`
	CompletedAt time.Time `json:"completedAt"`
	IntentID    string    `json:"paymentIntentId"`
}

// Overview aggregates the booking ledger for reporting.
type Overview struct {
	TotalRevenue   int64            `json:"totalRevenue"`
	BookingsCount  int              `json:"bookingsCount"`
	CustomersCount int              `json:"customersCount"`
	PerMovie       map[string]int   `json:"perMovie"`
	RevenueByMovie map[string]int64 `json:"revenueByMovie"`
	TopMovieID     string           `json:"topMovieId,omitempty"`
}
