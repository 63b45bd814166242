package service_test

import (
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/iliyamo/cinebook/internal/model"
	"github.com/iliyamo/cinebook/internal/repository"
	"github.com/iliyamo/cinebook/internal/service"
)

// clock is a manually advanced time source.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *clock {
	return &clock{now: time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// recorder captures published seat events in order.
type recorder struct {
	mu     sync.Mutex
	events []model.SeatEvent
}

func (r *recorder) Publish(_ model.RoomKey, ev model.SeatEvent) int {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
	return 1
}

func (r *recorder) All() []model.SeatEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.SeatEvent(nil), r.events...)
}

type fixture struct {
	clock    *clock
	stores   service.Stores
	events   *recorder
	holds    *service.HoldManager
	payments *service.PaymentFlow
	sweeper  *service.Sweeper
}

// gatedPublisher stalls the first event carrying reason until release is
// closed, then forwards everything to next.
type gatedPublisher struct {
	next    *recorder
	reason  string
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func newGatedPublisher(next *recorder, reason string) *gatedPublisher {
	return &gatedPublisher{
		next:    next,
		reason:  reason,
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (g *gatedPublisher) Publish(key model.RoomKey, ev model.SeatEvent) int {
	if ev.Reason == g.reason {
		g.once.Do(func() {
			close(g.entered)
			<-g.release
		})
	}
	return g.next.Publish(key, ev)
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWith(t, func(r *recorder) service.EventPublisher { return r })
}

// newFixtureWith lets a test wrap the event recorder.
func newFixtureWith(t *testing.T, wrap func(*recorder) service.EventPublisher) *fixture {
	t.Helper()
	logger, _ := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	clk := newClock()
	stores := service.NewStores(clk.Now)
	events := &recorder{}
	pub := wrap(events)
	catalog := repository.NewShowRepo(repository.DefaultCatalog())
	holds := service.NewHoldManager(stores, catalog, pub,
		service.WithClock(clk.Now),
		service.WithLogger(logger),
	)
	return &fixture{
		clock:    clk,
		stores:   stores,
		events:   events,
		holds:    holds,
		payments: service.NewPaymentFlow(stores, holds, pub, nil),
		sweeper:  service.NewSweeper(holds, 0),
	}
}

func validCard() model.Instrument {
	return model.Instrument{
		CardNumber: "4242 4242 4242 4242",
		CardHolder: "Sara Ali",
		ExpMonth:   "09",
		ExpYear:    "28",
		CVV:        "123",
	}
}

var room101 = model.RoomKey{MovieID: "mv101", Showtime: "13:00"}
