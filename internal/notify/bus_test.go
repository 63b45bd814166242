package notify_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinebook/internal/model"
	"github.com/iliyamo/cinebook/internal/notify"
)

var (
	room  = model.RoomKey{MovieID: "mv101", Showtime: "13:00"}
	other = model.RoomKey{MovieID: "mv101", Showtime: "17:00"}
)

func recv(t *testing.T, sub *notify.Subscription) model.SeatEvent {
	t.Helper()
	select {
	case ev := <-sub.C():
		return ev
	case <-time.After(time.Second):
		t.Fatal("no event received")
		return model.SeatEvent{}
	}
}

func TestBus_DeliversInOrderPerRoom(t *testing.T) {
	b := notify.NewBus(0, nil)
	s1 := b.Subscribe(room)
	s2 := b.Subscribe(room)
	s3 := b.Subscribe(other)
	defer s1.Close()
	defer s2.Close()
	defer s3.Close()

	assert.Equal(t, 2, b.Subscribers(room))
	assert.Equal(t, 2, b.Rooms())

	assert.Equal(t, 2, b.Publish(room, model.SeatEvent{SeatID: "A1", Status: model.SeatHeld}))
	assert.Equal(t, 2, b.Publish(room, model.SeatEvent{SeatID: "A1", Status: model.SeatBooked}))

	for _, s := range []*notify.Subscription{s1, s2} {
		assert.Equal(t, model.SeatHeld, recv(t, s).Status)
		assert.Equal(t, model.SeatBooked, recv(t, s).Status)
	}
	select {
	case ev := <-s3.C():
		t.Fatalf("unexpected event on other room: %+v", ev)
	default:
	}
}

func TestBus_FullSubscriberDropsWithoutBlocking(t *testing.T) {
	b := notify.NewBus(2, nil)
	slow := b.Subscribe(room)
	fast := b.Subscribe(room)
	defer slow.Close()
	defer fast.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 5; i++ {
			b.Publish(room, model.SeatEvent{SeatID: "B1", Status: model.SeatHeld})
			// Drain fast so only slow overflows.
			<-fast.C()
		}
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full subscriber")
	}

	assert.Equal(t, int64(3), b.Dropped())
	assert.Len(t, slow.C(), 2)
}

func TestSubscription_CloseDeregisters(t *testing.T) {
	b := notify.NewBus(4, nil)
	s := b.Subscribe(room)
	require.Equal(t, 1, b.Subscribers(room))

	s.Close()
	s.Close()
	assert.True(t, s.Closed())
	assert.Zero(t, b.Subscribers(room))
	assert.Zero(t, b.Rooms())
	assert.Zero(t, b.Publish(room, model.SeatEvent{SeatID: "A1"}))

	_, ok := <-s.C()
	assert.False(t, ok, "channel is closed")
}

func TestBus_ConcurrentPublishAndClose(t *testing.T) {
	b := notify.NewBus(1, nil)
	var wg sync.WaitGroup
	stop := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
				b.Publish(room, model.SeatEvent{SeatID: "A1", Status: model.SeatHeld})
			}
		}
	}()
	for i := 0; i < 200; i++ {
		s := b.Subscribe(room)
		s.Close()
	}
	close(stop)
	wg.Wait()
	assert.Zero(t, b.Subscribers(room))
}
