package model

import "time"

// SeatStatus is the availability state of a single seat within a room.
// A seat moves available -> held -> booked, or back to available when a
// hold expires or is released.  booked is terminal.
type SeatStatus string

const (
	SeatAvailable SeatStatus = "available" // free to be held
	SeatHeld      SeatStatus = "held"      // exclusively claimed by one user pending payment
	SeatBooked    SeatStatus = "booked"    // paid; never changes again
)

// RoomKey identifies the seat grid of one movie at one showtime.
type RoomKey struct {
	MovieID  string `json:"movieId"`
	Showtime string `json:"time"`
}

// String renders the key the same way it is used for log fields and
// subscriber channels, e.g. "mv101_13:00".
func (k RoomKey) String() string { return k.MovieID + "_" + k.Showtime }

// Seat represents one seat inside a room.
//
// Fields:
//  ID        – row letter plus number, e.g. "A1".
//  Row       – row letter.
//  Number    – 1-based position in the row.
//  Status    – current availability.
//  HolderID  – user currently holding or owning the seat (empty when available).
//  HoldKey   – key of the live hold when Status is held; kept on booked seats for audit.
//  UpdatedAt – time of the last successful transition.
type Seat struct {
	ID        string     `json:"id"`
	Row       string     `json:"row"`
	Number    int        `json:"number"`
	Status    SeatStatus `json:"status"`
	HolderID  string     `json:"by,omitempty"`
	HoldKey   string     `json:"-"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// Actor is the identity a seat transition is performed on behalf of.  For
// transitions out of the held state the actor must match the seat's
// holder and hold key.
type Actor struct {
	UserID  string
	HoldKey string
}
