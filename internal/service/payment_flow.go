package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lithammer/shortuuid/v3"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/cinebook/internal/model"
	"github.com/iliyamo/cinebook/internal/repository"
)

// BookingNotifier is told about every completed booking after the seat is
// booked.  It runs off the request path; failures never affect the
// booking.
type BookingNotifier interface {
	NotifyBooking(ctx context.Context, b model.Booking)
}

// IntentResult is returned by CreateIntent.  OTP is handed back to the
// caller because this deployment has no out-of-band delivery channel.
type IntentResult struct {
	PaymentIntentID string
	Amount          int64
	OTP             string
}

// PaymentFlow turns a live hold into a booking in two steps: CreateIntent
// validates the card and issues a one-time code, Confirm checks the code
// and books the seat.
type PaymentFlow struct {
	stores   Stores
	holds    *HoldManager
	events   EventPublisher
	notifier BookingNotifier
	now      func() time.Time
	log      logrus.FieldLogger
}

// NewPaymentFlow wires a payment flow.  events and notifier may be nil.
// The clock and logger are shared with holds.
func NewPaymentFlow(stores Stores, holds *HoldManager, events EventPublisher, notifier BookingNotifier) *PaymentFlow {
	return &PaymentFlow{
		stores:   stores,
		holds:    holds,
		events:   events,
		notifier: notifier,
		now:      holds.now,
		log:      holds.log,
	}
}

// CreateIntent validates in and creates a payment intent for the caller's
// live hold.
func (p *PaymentFlow) CreateIntent(ctx context.Context, userID, holdKey string, in model.Instrument) (IntentResult, error) {
	if err := ctx.Err(); err != nil {
		return IntentResult{}, err
	}
	hold, err := p.holds.LookupHold(holdKey, userID)
	if err != nil {
		return IntentResult{}, err
	}
	if err := ValidateInstrument(in); err != nil {
		return IntentResult{}, err
	}
	otp, err := newOTP()
	if err != nil {
		return IntentResult{}, fmt.Errorf("generate otp: %w", err)
	}
	pi := model.PaymentIntent{
		ID:        "pi_" + strings.ReplaceAll(uuid.NewString(), "-", ""),
		HoldKey:   hold.Key,
		UserID:    userID,
		OTP:       otp,
		Amount:    hold.Amount,
		CreatedAt: p.now().UTC(),
	}
	if err := p.stores.Intents.Create(pi); err != nil {
		return IntentResult{}, fmt.Errorf("store intent: %w", err)
	}
	p.log.WithFields(logrus.Fields{"intent": pi.ID, "hold": hold.Key, "user": userID}).Info("payment intent created")
	return IntentResult{PaymentIntentID: pi.ID, Amount: pi.Amount, OTP: otp}, nil
}

// Confirm completes the payment for intentID.  The checks run in order:
// intent ownership, one-time code, hold ownership, seat still held under
// the hold.  The final held -> booked transition is a compare-and-swap in
// the seat registry, so a concurrent expiry sweep or a second
// confirmation of the same hold loses cleanly with
// hold_expired_or_changed.  otp is compared exactly as given.
func (p *PaymentFlow) Confirm(ctx context.Context, userID, intentID, otp string) (model.Booking, error) {
	if err := ctx.Err(); err != nil {
		return model.Booking{}, err
	}
	pi, ok := p.stores.Intents.Get(intentID)
	if !ok {
		return model.Booking{}, repository.NewError(repository.ErrNotFound, repository.CodeInvalidIntent, "Payment intent not found")
	}
	if pi.UserID != userID {
		return model.Booking{}, repository.NewError(repository.ErrUnauthorized, repository.CodeInvalidIntent, "Payment intent not found")
	}
	if subtle.ConstantTimeCompare([]byte(otp), []byte(pi.OTP)) != 1 {
		return model.Booking{}, repository.ErrOtpWrong
	}
	hold, ok := p.stores.Holds.Get(pi.HoldKey)
	if !ok || hold.UserID != userID {
		return model.Booking{}, repository.ErrReservationNotFound
	}
	seat, err := p.stores.Seats.Seat(hold.Room(), hold.SeatID)
	if err != nil || seat.Status != model.SeatHeld || seat.HolderID != userID || seat.HoldKey != hold.Key {
		return model.Booking{}, repository.ErrHoldExpiredOrChanged
	}
	if _, err := p.stores.Seats.Transition(hold.Room(), hold.SeatID, model.SeatHeld, model.SeatBooked, model.Actor{UserID: userID, HoldKey: hold.Key},
		commitPublisher(p.events, hold.Room(), "")); err != nil {
		if errors.Is(err, repository.ErrConflict) || errors.Is(err, repository.ErrNotFound) {
			return model.Booking{}, repository.ErrHoldExpiredOrChanged
		}
		return model.Booking{}, err
	}

	// The seat is ours from here on; everything below is bookkeeping.
	booking := model.Booking{
		ID:          "bk_" + shortuuid.New(),
		UserID:      userID,
		MovieID:     hold.MovieID,
		Showtime:    hold.Showtime,
		SeatID:      hold.SeatID,
		Amount:      hold.Amount,
		CompletedAt: p.now().UTC(),
		IntentID:    pi.ID,
	}
	p.stores.Bookings.Append(booking)
	p.holds.CancelHold(hold.Key, userID)
	p.stores.Intents.DeleteByHold(hold.Key)

	if p.notifier != nil {
		go p.notifier.NotifyBooking(context.WithoutCancel(ctx), booking)
	}
	p.log.WithFields(logrus.Fields{
		"booking": booking.ID, "room": hold.Room().String(), "seat": hold.SeatID, "amount": booking.Amount,
	}).Info("booking confirmed")
	return booking, nil
}

// newOTP returns a uniformly random six digit code.
func newOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
