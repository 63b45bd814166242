package repository

import (
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/cinebook/internal/model"
)

// SeatHoldRepo stores live seat holds keyed by hold key.  A hold record
// only exists while its seat is held by the same user; the hold manager
// keeps the two in step through the seat registry.
type SeatHoldRepo struct {
	mu    sync.RWMutex
	holds map[string]model.Hold
}

// NewSeatHoldRepo returns an empty hold store.
func NewSeatHoldRepo() *SeatHoldRepo {
	return &SeatHoldRepo{holds: make(map[string]model.Hold)}
}

// Create stores h.  Hold keys are unique per attempt, so an existing key
// is reported as a conflict rather than overwritten.
func (r *SeatHoldRepo) Create(h model.Hold) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.holds[h.Key]; ok {
		return ErrConflict
	}
	r.holds[h.Key] = h
	return nil
}

// Get returns the hold stored under key.
func (r *SeatHoldRepo) Get(key string) (model.Hold, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.holds[key]
	return h, ok
}

// Delete removes the hold and reports whether it was present.
func (r *SeatHoldRepo) Delete(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.holds[key]; !ok {
		return false
	}
	delete(r.holds, key)
	return true
}

// DeleteForUser removes the hold only when it belongs to userID.
func (r *SeatHoldRepo) DeleteForUser(key, userID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.holds[key]
	if !ok || h.UserID != userID {
		return false
	}
	delete(r.holds, key)
	return true
}

// ExpiredBefore returns the holds created more than d before now, oldest
// first.  The holds are not removed; the caller reclaims each one through
// the seat registry and then deletes it.
func (r *SeatHoldRepo) ExpiredBefore(now time.Time, d time.Duration) []model.Hold {
	r.mu.RLock()
	var out []model.Hold
	for _, h := range r.holds {
		if h.Expired(now, d) {
			out = append(out, h)
		}
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// Count returns the number of live holds.
func (r *SeatHoldRepo) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.holds)
}
