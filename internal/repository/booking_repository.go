package repository

import (
	"sync"

	"github.com/iliyamo/cinebook/internal/model"
)

// BookingRepo is the booking ledger: an append-only list of completed
// purchases.  There is deliberately no update or delete method.
type BookingRepo struct {
	mu       sync.RWMutex
	bookings []model.Booking
}

// NewBookingRepo returns an empty ledger.
func NewBookingRepo() *BookingRepo { return &BookingRepo{} }

// Append records a completed booking.
func (r *BookingRepo) Append(b model.Booking) {
	r.mu.Lock()
	r.bookings = append(r.bookings, b)
	r.mu.Unlock()
}

// All returns a copy of the ledger in append order.
func (r *BookingRepo) All() []model.Booking {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.Booking, len(r.bookings))
	copy(out, r.bookings)
	return out
}

// Latest returns up to limit bookings, newest first.  limit <= 0 returns
// the whole ledger.
func (r *BookingRepo) Latest(limit int) []model.Booking {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := len(r.bookings)
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]model.Booking, 0, limit)
	for i := n - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.bookings[i])
	}
	return out
}

// ListByUser returns the bookings of one user in append order.
func (r *BookingRepo) ListByUser(userID string) []model.Booking {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []model.Booking
	for _, b := range r.bookings {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out
}

// Count returns the number of bookings.
func (r *BookingRepo) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.bookings)
}

// Overview aggregates revenue, counts and per-movie tallies.  The top
// movie is the one with most bookings; ties go to the lexically smaller
// movie ID so the result is stable.
func (r *BookingRepo) Overview() model.Overview {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ov := model.Overview{
		PerMovie:       make(map[string]int),
		RevenueByMovie: make(map[string]int64),
	}
	customers := make(map[string]struct{})
	for _, b := range r.bookings {
		ov.TotalRevenue += b.Amount
		ov.BookingsCount++
		customers[b.UserID] = struct{}{}
		ov.PerMovie[b.MovieID]++
		ov.RevenueByMovie[b.MovieID] += b.Amount
	}
	ov.CustomersCount = len(customers)
	best := 0
	for id, n := range ov.PerMovie {
		if n > best || (n == best && id < ov.TopMovieID) {
			best, ov.TopMovieID = n, id
		}
	}
	return ov
}
