package model

import "time"

// Hold represents a temporary, user-scoped claim on one seat while the
// user completes payment.  Holds are reclaimed by the expiry sweep once
// they are older than the configured hold duration.
//
// Fields:
//  Key       – unique per attempt; returned to the client as holdKey.
//  UserID    – user who holds the seat.
//  MovieID   – movie of the showing.
//  Showtime  – showtime of the showing.
//  SeatID    – seat being held.
//  Amount    – price snapshot taken from the catalog when the hold was created.
//  CreatedAt – when the hold was created.
type Hold struct {
	Key       string    `json:"holdKey"`
	UserID    string    `json:"userId"`
	MovieID   string    `json:"movieId"`
	Showtime  string    `json:"time"`
	SeatID    string    `json:"seatId"`
	Amount    int64     `json:"amount"`
	CreatedAt time.Time `json:"createdAt"`
}

// Room returns the key of the room the held seat belongs to.
func (h Hold) Room() RoomKey { return RoomKey{MovieID: h.MovieID, Showtime: h.Showtime} }

// ExpiresAt returns the nominal expiry of the hold for the given duration.
// The sweep may reclaim the hold up to one sweep interval later.
func (h Hold) ExpiresAt(d time.Duration) time.Time { return h.CreatedAt.Add(d) }

// Expired reports whether the hold is older than d at now.
func (h Hold) Expired(now time.Time, d time.Duration) bool {
	return now.Sub(h.CreatedAt) > d
}
