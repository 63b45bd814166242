// Package notify fans seat state changes out to viewers of a room.
//
// Delivery is best effort: Publish never blocks.  Every subscription owns
// a buffered channel and an event that does not fit is dropped for that
// subscriber only.  Subscribers that miss events are expected to re-fetch
// the authoritative seat map.
package notify

import (
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/cinebook/internal/model"
)

// DefaultBuffer is the per-subscription channel capacity used when the
// bus is created with a non-positive buffer.
const DefaultBuffer = 32

// Bus is a registry of subscriptions per room.
type Bus struct {
	mu      sync.RWMutex
	rooms   map[model.RoomKey]map[*Subscription]struct{}
	buffer  int
	dropped atomic.Int64
	log     logrus.FieldLogger
}

// Subscription is one live listener on a room.  Read events from C until
// it is closed; call Close when the listener goes away.
type Subscription struct {
	bus    *Bus
	key    model.RoomKey
	ch     chan model.SeatEvent
	once   sync.Once
	closed atomic.Bool
}

// NewBus returns an empty bus.  log may be nil.
func NewBus(buffer int, log logrus.FieldLogger) *Bus {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Bus{
		rooms:  make(map[model.RoomKey]map[*Subscription]struct{}),
		buffer: buffer,
		log:    log,
	}
}

// Subscribe registers a listener on key.
func (b *Bus) Subscribe(key model.RoomKey) *Subscription {
	s := &Subscription{bus: b, key: key, ch: make(chan model.SeatEvent, b.buffer)}
	b.mu.Lock()
	subs := b.rooms[key]
	if subs == nil {
		subs = make(map[*Subscription]struct{})
		b.rooms[key] = subs
	}
	subs[s] = struct{}{}
	n := len(subs)
	b.mu.Unlock()

	b.log.WithFields(logrus.Fields{"room": key.String(), "subscribers": n}).Debug("notify: subscribed")
	return s
}

// Publish delivers ev to every current subscriber of key without
// blocking.  It returns the number of subscribers that received it.
func (b *Bus) Publish(key model.RoomKey, ev model.SeatEvent) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	delivered := 0
	for s := range b.rooms[key] {
		// Send under the read lock: Close takes the write lock before
		// closing the channel, so s.ch is never closed mid-send.
		select {
		case s.ch <- ev:
			delivered++
		default:
			b.dropped.Add(1)
			b.log.WithFields(logrus.Fields{"room": key.String(), "seat": ev.SeatID}).Warn("notify: subscriber buffer full, event dropped")
		}
	}
	return delivered
}

// Subscribers returns the number of live subscriptions on key.
func (b *Bus) Subscribers(key model.RoomKey) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.rooms[key])
}

// Rooms returns the number of rooms with at least one subscriber.
func (b *Bus) Rooms() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.rooms)
}

// Dropped returns the total number of events dropped on full buffers.
func (b *Bus) Dropped() int64 { return b.dropped.Load() }

func (b *Bus) remove(s *Subscription) {
	b.mu.Lock()
	if subs, ok := b.rooms[s.key]; ok {
		delete(subs, s)
		if len(subs) == 0 {
			delete(b.rooms, s.key)
		}
	}
	close(s.ch)
	b.mu.Unlock()
	b.log.WithField("room", s.key.String()).Debug("notify: unsubscribed")
}

// C returns the event channel.  It is closed by Close.
func (s *Subscription) C() <-chan model.SeatEvent { return s.ch }

// Room returns the key the subscription listens on.
func (s *Subscription) Room() model.RoomKey { return s.key }

// Close deregisters the subscription.  It is safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.closed.Store(true)
		s.bus.remove(s)
	})
}

// Closed reports whether Close has been called.
func (s *Subscription) Closed() bool { return s.closed.Load() }
