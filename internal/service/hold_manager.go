// Package service implements the reservation engine on top of the
// in-memory stores: seat holds, their expiry and the two-step payment
// flow that turns a hold into a booking.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/cinebook/internal/model"
	"github.com/iliyamo/cinebook/internal/repository"
)

// Defaults used when the configuration leaves them unset.
const (
	DefaultHoldDuration  = 7 * time.Minute
	DefaultSweepInterval = 20 * time.Second
)

// Catalog resolves a movie and showtime to a bookable showing.
type Catalog interface {
	ResolveShowing(movieID, showtime string) (model.Showing, bool)
}

// EventPublisher receives seat events for a room.  *notify.Bus satisfies
// it.  Implementations must not block.
type EventPublisher interface {
	Publish(key model.RoomKey, ev model.SeatEvent) int
}

// Stores bundles the stores shared by the hold manager and the payment
// flow.
type Stores struct {
	Seats    *repository.SeatRepo
	Holds    *repository.SeatHoldRepo
	Intents  *repository.PaymentIntentRepo
	Bookings *repository.BookingRepo
}

// NewStores returns a fresh set of empty stores using now for seat
// timestamps.
func NewStores(now func() time.Time) Stores {
	return Stores{
		Seats:    repository.NewSeatRepo(now),
		Holds:    repository.NewSeatHoldRepo(),
		Intents:  repository.NewPaymentIntentRepo(),
		Bookings: repository.NewBookingRepo(),
	}
}

// HoldManager creates, releases and expires seat holds.
type HoldManager struct {
	stores   Stores
	catalog  Catalog
	events   EventPublisher
	duration time.Duration
	now      func() time.Time
	log      logrus.FieldLogger
}

// HoldManagerOption customises a HoldManager.
type HoldManagerOption func(*HoldManager)

// WithHoldDuration overrides DefaultHoldDuration.
func WithHoldDuration(d time.Duration) HoldManagerOption {
	return func(m *HoldManager) {
		if d > 0 {
			m.duration = d
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) HoldManagerOption {
	return func(m *HoldManager) {
		if now != nil {
			m.now = now
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logrus.FieldLogger) HoldManagerOption {
	return func(m *HoldManager) {
		if l != nil {
			m.log = l
		}
	}
}

// NewHoldManager wires a hold manager.  events may be nil.
func NewHoldManager(stores Stores, catalog Catalog, events EventPublisher, opts ...HoldManagerOption) *HoldManager {
	m := &HoldManager{
		stores:   stores,
		catalog:  catalog,
		events:   events,
		duration: DefaultHoldDuration,
		now:      time.Now,
		log:      logrus.StandardLogger(),
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// HoldDuration returns the configured hold lifetime.
func (m *HoldManager) HoldDuration() time.Duration { return m.duration }

// HoldMinutes returns the hold lifetime in whole minutes, rounded up, for
// client display.
func (m *HoldManager) HoldMinutes() int {
	return int((m.duration + time.Minute - 1) / time.Minute)
}

// Seats returns the seat map of a showing.  Unknown showings are rejected
// so that arbitrary keys cannot materialise rooms.
func (m *HoldManager) Seats(movieID, showtime string) ([]model.Seat, error) {
	if _, ok := m.catalog.ResolveShowing(movieID, showtime); !ok {
		return nil, repository.ErrShowingNotFound
	}
	return m.stores.Seats.Seats(model.RoomKey{MovieID: movieID, Showtime: showtime}), nil
}

// CreateHold claims seatID for userID.  The seat must currently be
// available; the price is snapshotted from the catalog.
func (m *HoldManager) CreateHold(ctx context.Context, userID, movieID, showtime, seatID string) (model.Hold, error) {
	if err := ctx.Err(); err != nil {
		return model.Hold{}, err
	}
	showing, ok := m.catalog.ResolveShowing(movieID, showtime)
	if !ok {
		return model.Hold{}, repository.ErrShowingNotFound
	}
	key := model.RoomKey{MovieID: movieID, Showtime: showtime}
	hold := model.Hold{
		Key:       uuid.NewString(),
		UserID:    userID,
		MovieID:   movieID,
		Showtime:  showtime,
		SeatID:    seatID,
		Amount:    showing.BasePrice,
		CreatedAt: m.now().UTC(),
	}

	// The record goes in first so the hold exists by the time anyone
	// sees the seat as held.
	if err := m.stores.Holds.Create(hold); err != nil {
		return model.Hold{}, err
	}
	if _, err := m.stores.Seats.Transition(key, seatID, model.SeatAvailable, model.SeatHeld, model.Actor{UserID: userID, HoldKey: hold.Key},
		m.publishOnCommit(key, "")); err != nil {
		m.stores.Holds.Delete(hold.Key)
		return model.Hold{}, err
	}

	m.log.WithFields(logrus.Fields{
		"room": key.String(), "seat": seatID, "user": userID, "hold": hold.Key,
	}).Info("seat held")
	return hold, nil
}

// LookupHold returns the live hold for holdKey owned by userID.  A missing
// hold yields a not-found invalid_reservation error and a hold owned by
// someone else an unauthorized one.
func (m *HoldManager) LookupHold(holdKey, userID string) (model.Hold, error) {
	h, ok := m.stores.Holds.Get(holdKey)
	if !ok {
		return model.Hold{}, repository.NewError(repository.ErrNotFound, repository.CodeInvalidReservation, "Invalid reservation state")
	}
	if h.UserID != userID {
		return model.Hold{}, repository.NewError(repository.ErrUnauthorized, repository.CodeInvalidReservation, "Invalid reservation state")
	}
	return h, nil
}

// ReleaseHold lets the holder abandon a hold before it expires.  The seat
// goes back to available and any pending intents for the hold are
// dropped.
func (m *HoldManager) ReleaseHold(ctx context.Context, holdKey, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	h, err := m.LookupHold(holdKey, userID)
	if err != nil {
		return err
	}
	if _, err := m.stores.Seats.Transition(h.Room(), h.SeatID, model.SeatHeld, model.SeatAvailable, model.Actor{UserID: userID, HoldKey: h.Key},
		m.publishOnCommit(h.Room(), model.ReasonHoldReleased)); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return repository.ErrHoldExpiredOrChanged
		}
		return err
	}
	m.stores.Holds.Delete(h.Key)
	m.stores.Intents.DeleteByHold(h.Key)
	m.log.WithFields(logrus.Fields{"room": h.Room().String(), "seat": h.SeatID, "hold": h.Key}).Info("hold released")
	return nil
}

// CancelHold deletes the hold record if it belongs to userID, without
// touching the seat.  The payment flow calls it once the seat is booked.
func (m *HoldManager) CancelHold(holdKey, userID string) bool {
	return m.stores.Holds.DeleteForUser(holdKey, userID)
}

// ExpireStale reclaims every hold older than the hold duration at now.
// The seat is only reverted when it is still held under that hold; if a
// confirmation booked it first, the compare fails and only the stale
// record is dropped.  The reclaimed holds are returned.
func (m *HoldManager) ExpireStale(now time.Time) []model.Hold {
	var reclaimed []model.Hold
	for _, h := range m.stores.Holds.ExpiredBefore(now, m.duration) {
		_, err := m.stores.Seats.Transition(h.Room(), h.SeatID, model.SeatHeld, model.SeatAvailable, model.Actor{UserID: h.UserID, HoldKey: h.Key},
			m.publishOnCommit(h.Room(), model.ReasonHoldExpired))
		m.stores.Holds.Delete(h.Key)
		m.stores.Intents.DeleteByHold(h.Key)
		if err != nil {
			m.log.WithFields(logrus.Fields{"hold": h.Key, "seat": h.SeatID}).WithError(err).Debug("sweep: seat no longer held by hold")
			continue
		}
		reclaimed = append(reclaimed, h)
	}
	return reclaimed
}

// publishOnCommit returns a Transition hook announcing the committed seat
// on the room.  It runs under the room lock, which keeps events in
// transition order.
func (m *HoldManager) publishOnCommit(key model.RoomKey, reason string) func(model.Seat) {
	return commitPublisher(m.events, key, reason)
}

func commitPublisher(events EventPublisher, key model.RoomKey, reason string) func(model.Seat) {
	return func(s model.Seat) {
		if events == nil {
			return
		}
		events.Publish(key, model.SeatEvent{SeatID: s.ID, Status: s.Status, Reason: reason, At: s.UpdatedAt})
	}
}
