package repository

import (
	"sync"

	"github.com/iliyamo/cinebook/internal/model"
)

// PaymentIntentRepo stores pending payment intents.  Intents are removed
// when confirmed or when the hold they pay for goes away.
type PaymentIntentRepo struct {
	mu      sync.Mutex
	intents map[string]model.PaymentIntent
}

// NewPaymentIntentRepo returns an empty intent store.
func NewPaymentIntentRepo() *PaymentIntentRepo {
	return &PaymentIntentRepo{intents: make(map[string]model.PaymentIntent)}
}

// Create stores pi, refusing to overwrite an existing identifier.
func (r *PaymentIntentRepo) Create(pi model.PaymentIntent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.intents[pi.ID]; ok {
		return ErrConflict
	}
	r.intents[pi.ID] = pi
	return nil
}

// Get returns the intent stored under id.
func (r *PaymentIntentRepo) Get(id string) (model.PaymentIntent, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	pi, ok := r.intents[id]
	return pi, ok
}

// DeleteByHold removes every intent bound to holdKey and returns how many
// were removed.
func (r *PaymentIntentRepo) DeleteByHold(holdKey string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, pi := range r.intents {
		if pi.HoldKey == holdKey {
			delete(r.intents, id)
			n++
		}
	}
	return n
}

// Count returns the number of pending intents.
func (r *PaymentIntentRepo) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.intents)
}
