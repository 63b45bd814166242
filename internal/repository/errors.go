// Package repository holds the process-resident stores behind the booking
// engine: the seat registry, holds, payment intents, the booking ledger,
// the catalog and demo users.  Every store guards its own state with a
// mutex; nothing is persisted across restarts.
//
// This file defines the error taxonomy shared by the stores and the
// service layer.  The sentinel values identify the kind of failure so
// that handlers can map them to HTTP status codes with errors.Is, while
// *Error carries a stable code and a human readable message for the
// caller.
package repository

import (
	"errors"
	"fmt"
)

// Sentinel kinds.  Every *Error matches exactly one of them via errors.Is.
var (
	// ErrNotFound is returned for unknown movies, showtimes, seats, holds
	// or intents.  Handlers translate it into 404.
	ErrNotFound = errors.New("not found")

	// ErrConflict signals a failed compare-and-swap on a seat, e.g. the
	// seat is already held or booked.  Handlers translate it into 409.
	ErrConflict = errors.New("conflict")

	// ErrUnauthorized is returned when the caller does not own the hold
	// or intent it refers to.  Handlers translate it into 403.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidInstrument is returned when payment card data fails
	// validation.  The *Error carries the offending field.
	ErrInvalidInstrument = errors.New("invalid instrument")

	// ErrOtpMismatch is returned when the one-time code does not match.
	ErrOtpMismatch = errors.New("otp mismatch")

	// ErrExpired is returned when a hold or intent is no longer live.
	ErrExpired = errors.New("expired")
)

// Stable error codes surfaced to API callers.
const (
	CodeShowingNotFound      = "showing_not_found"
	CodeSeatNotFound         = "seat_not_found"
	CodeSeatUnavailable      = "seat_unavailable"
	CodeInvalidReservation   = "invalid_reservation"
	CodeInvalidInstrument    = "invalid_instrument"
	CodeInvalidIntent        = "invalid_intent"
	CodeOtpMismatch          = "otp_mismatch"
	CodeReservationNotFound  = "reservation_not_found"
	CodeHoldExpiredOrChanged = "hold_expired_or_changed"
)

// Error is a classified, caller-facing failure.  Kind is one of the
// sentinel values above.  Field is only set for instrument validation.
type Error struct {
	Kind    error
	Code    string
	Field   string
	Message string
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s (%s): %s", e.Code, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is lets errors.Is(err, ErrConflict) and friends match on the kind.
func (e *Error) Is(target error) bool { return e.Kind == target }

// Unwrap exposes the kind so wrapped errors still classify.
func (e *Error) Unwrap() error { return e.Kind }

// NewError builds an *Error of the given kind.
func NewError(kind error, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Message: msg}
}

// Predeclared errors that carry no per-call detail.
var (
	ErrSeatNotFound         = NewError(ErrNotFound, CodeSeatNotFound, "Seat not found")
	ErrSeatConflict         = NewError(ErrConflict, CodeSeatUnavailable, "Seat already taken")
	ErrShowingNotFound      = NewError(ErrNotFound, CodeShowingNotFound, "Movie or showtime not found")
	ErrOtpWrong             = NewError(ErrOtpMismatch, CodeOtpMismatch, "One-time code does not match")
	ErrReservationNotFound  = NewError(ErrExpired, CodeReservationNotFound, "Reservation not found or expired")
	ErrHoldExpiredOrChanged = NewError(ErrExpired, CodeHoldExpiredOrChanged, "Seat hold expired or changed")
)

// AsError extracts an *Error from err when there is one.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
