package repository

import (
	"strconv"
	"sync"
	"time"

	"github.com/iliyamo/cinebook/internal/model"
)

// Fixed layout of every room: rows A..E with seats 1..8.
var (
	seatRows    = []string{"A", "B", "C", "D", "E"}
	seatsPerRow = 8
)

// room is the seat grid of one showing.  Its seat set never changes after
// creation; only seat fields are mutated, and only under mu.
type room struct {
	mu    sync.Mutex
	order []string
	seats map[string]*model.Seat
}

// SeatRepo is the seat registry: the single source of truth for seat
// status.  Rooms are created lazily on first access.  All status changes
// go through Transition, which performs an atomic compare-and-swap under
// the room's lock.
type SeatRepo struct {
	mu    sync.RWMutex
	rooms map[model.RoomKey]*room
	now   func() time.Time
}

// NewSeatRepo returns an empty registry.  now may be nil, in which case
// time.Now is used for seat timestamps.
func NewSeatRepo(now func() time.Time) *SeatRepo {
	if now == nil {
		now = time.Now
	}
	return &SeatRepo{rooms: make(map[model.RoomKey]*room), now: now}
}

func newRoom(at time.Time) *room {
	r := &room{
		order: make([]string, 0, len(seatRows)*seatsPerRow),
		seats: make(map[string]*model.Seat, len(seatRows)*seatsPerRow),
	}
	for _, row := range seatRows {
		for n := 1; n <= seatsPerRow; n++ {
			id := row + strconv.Itoa(n)
			r.order = append(r.order, id)
			r.seats[id] = &model.Seat{
				ID:        id,
				Row:       row,
				Number:    n,
				Status:    model.SeatAvailable,
				UpdatedAt: at,
			}
		}
	}
	return r
}

// getOrCreate returns the room for key, creating it when absent.
func (r *SeatRepo) getOrCreate(key model.RoomKey) *room {
	r.mu.RLock()
	rm, ok := r.rooms[key]
	r.mu.RUnlock()
	if ok {
		return rm
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if rm, ok = r.rooms[key]; ok {
		return rm
	}
	rm = newRoom(r.now().UTC())
	r.rooms[key] = rm
	return rm
}

// Room returns a snapshot of the room's seats keyed by seat ID, creating
// the room on first access.  The returned seats are copies.
func (r *SeatRepo) Room(key model.RoomKey) map[string]model.Seat {
	rm := r.getOrCreate(key)
	rm.mu.Lock()
	defer rm.mu.Unlock()
	out := make(map[string]model.Seat, len(rm.seats))
	for id, s := range rm.seats {
		out[id] = *s
	}
	return out
}

// Seats returns the room's seats in layout order (A1..A8, B1..).
func (r *SeatRepo) Seats(key model.RoomKey) []model.Seat {
	rm := r.getOrCreate(key)
	rm.mu.Lock()
	defer rm.mu.Unlock()
	out := make([]model.Seat, 0, len(rm.order))
	for _, id := range rm.order {
		out = append(out, *rm.seats[id])
	}
	return out
}

// Seat returns a copy of a single seat.
func (r *SeatRepo) Seat(key model.RoomKey, seatID string) (model.Seat, error) {
	rm := r.getOrCreate(key)
	rm.mu.Lock()
	defer rm.mu.Unlock()
	s, ok := rm.seats[seatID]
	if !ok {
		return model.Seat{}, ErrSeatNotFound
	}
	return *s, nil
}

// Transition moves a seat from one status to another if, and only if, its
// current status equals from.  Leaving the held state additionally
// requires the actor to be the current holder with the same hold key, so
// a stale hold can never release or book a seat that has since been
// re-held.  booked is terminal.
//
// It returns ErrSeatNotFound when the seat does not exist and
// ErrSeatConflict when the compare fails.  On success the updated seat is
// returned and its timestamp is refreshed.
//
// Each onCommit func runs with the committed seat while the room lock is
// still held, so callers that publish from it emit events for a room in
// the same order as the transitions.  onCommit must not block or call
// back into the registry.
func (r *SeatRepo) Transition(key model.RoomKey, seatID string, from, to model.SeatStatus, actor model.Actor, onCommit ...func(model.Seat)) (model.Seat, error) {
	rm := r.getOrCreate(key)
	rm.mu.Lock()
	defer rm.mu.Unlock()

	s, ok := rm.seats[seatID]
	if !ok {
		return model.Seat{}, ErrSeatNotFound
	}
	if s.Status != from || !allowed(from, to) {
		return model.Seat{}, ErrSeatConflict
	}
	if from == model.SeatHeld && (s.HolderID != actor.UserID || s.HoldKey != actor.HoldKey) {
		return model.Seat{}, ErrSeatConflict
	}

	switch to {
	case model.SeatAvailable:
		s.HolderID, s.HoldKey = "", ""
	case model.SeatHeld, model.SeatBooked:
		s.HolderID, s.HoldKey = actor.UserID, actor.HoldKey
	}
	s.Status = to
	s.UpdatedAt = r.now().UTC()
	for _, fn := range onCommit {
		fn(*s)
	}
	return *s, nil
}

// allowed lists the legal edges of the seat state machine.
func allowed(from, to model.SeatStatus) bool {
	switch from {
	case model.SeatAvailable:
		return to == model.SeatHeld
	case model.SeatHeld:
		return to == model.SeatAvailable || to == model.SeatBooked
	}
	return false
}

// RoomCount reports how many rooms have been materialised.
func (r *SeatRepo) RoomCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}
