package model

import "time"

// Reasons attached to seat events that were not caused by a direct user action
// on the seat.
const (
	ReasonHoldExpired  = "hold_expired"
	ReasonHoldReleased = "hold_released"
)

// SeatEvent is pushed to room subscribers whenever a seat changes status.
type SeatEvent struct {
	SeatID string     `json:"seatId"`
	Status SeatStatus `json:"status"`
	Reason string     `json:"reason,omitempty"`
	At     time.Time  `json:"at"`
}
