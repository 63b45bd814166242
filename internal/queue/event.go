// Package queue defines the booking.confirmed message and the RabbitMQ
// publisher and consumer that carry it.
package queue

import "github.com/iliyamo/cinebook/internal/model"

// BookingQueueName is the durable queue booking events are routed to.
const BookingQueueName = "booking.confirmed"

// BookingConfirmedEvent is published when a payment confirmation books a
// seat.  It contains enough information for downstream consumers to log,
// notify, or trigger analytics without calling back into the service.
type BookingConfirmedEvent struct {
	BookingID       string `json:"booking_id"`
	UserID          string `json:"user_id"`
	MovieID         string `json:"movie_id"`
	MovieTitle      string `json:"movie_title"`
	CinemaID        string `json:"cinema_id"`
	CinemaName      string `json:"cinema_name"`
	Showtime        string `json:"showtime"`
	SeatID          string `json:"seat"`
	Amount          int64  `json:"amount"`
	PaymentIntentID string `json:"payment_intent_id"`
	ConfirmedAt     string `json:"confirmed_at"`
}

// NewBookingConfirmedEvent builds the event for b.  showing may be the
// zero value when the movie has been removed from the catalog since.
func NewBookingConfirmedEvent(b model.Booking, showing model.Showing) BookingConfirmedEvent {
	return BookingConfirmedEvent{
		BookingID:       b.ID,
		UserID:          b.UserID,
		MovieID:         b.MovieID,
		MovieTitle:      showing.Title,
		CinemaID:        showing.CinemaID,
		CinemaName:      showing.CinemaName,
		Showtime:        b.Showtime,
		SeatID:          b.SeatID,
		Amount:          b.Amount,
		PaymentIntentID: b.IntentID,
		ConfirmedAt:     b.CompletedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}
