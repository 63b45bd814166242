package service_test

import (
	"context"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinebook/internal/model"
	"github.com/iliyamo/cinebook/internal/repository"
	"github.com/iliyamo/cinebook/internal/service"
)

type notifierFunc func(ctx context.Context, b model.Booking)

func (f notifierFunc) NotifyBooking(ctx context.Context, b model.Booking) { f(ctx, b) }

func TestPaymentFlow_RoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	notified := make(chan model.Booking, 1)
	payments := service.NewPaymentFlow(f.stores, f.holds, f.events, notifierFunc(func(_ context.Context, b model.Booking) {
		notified <- b
	}))

	h, err := f.holds.CreateHold(ctx, "1", "mv101", "13:00", "A1")
	require.NoError(t, err)

	res, err := payments.CreateIntent(ctx, "1", h.Key, validCard())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.PaymentIntentID, "pi_"))
	assert.Equal(t, int64(180), res.Amount)
	assert.Regexp(t, regexp.MustCompile(`^\d{6}$`), res.OTP)

	b, err := payments.Confirm(ctx, "1", res.PaymentIntentID, res.OTP)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(b.ID, "bk_"))
	assert.Equal(t, "1", b.UserID)
	assert.Equal(t, "mv101", b.MovieID)
	assert.Equal(t, "13:00", b.Showtime)
	assert.Equal(t, "A1", b.SeatID)
	assert.Equal(t, int64(180), b.Amount)
	assert.Equal(t, res.PaymentIntentID, b.IntentID)

	seat, err := f.stores.Seats.Seat(room101, "A1")
	require.NoError(t, err)
	assert.Equal(t, model.SeatBooked, seat.Status)
	assert.Equal(t, "1", seat.HolderID)
	assert.Zero(t, f.stores.Holds.Count())
	assert.Zero(t, f.stores.Intents.Count())
	assert.Equal(t, 1, f.stores.Bookings.Count())

	evs := f.events.All()
	require.Len(t, evs, 2)
	assert.Equal(t, model.SeatHeld, evs[0].Status)
	assert.Equal(t, model.SeatBooked, evs[1].Status)

	select {
	case got := <-notified:
		assert.Equal(t, b.ID, got.ID)
	case <-time.After(time.Second):
		t.Fatal("booking notifier not called")
	}

	// A second confirmation of the same intent finds nothing.
	_, err = payments.Confirm(ctx, "1", res.PaymentIntentID, res.OTP)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.Equal(t, 1, f.stores.Bookings.Count())
}

func TestPaymentFlow_CreateIntentErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	h, err := f.holds.CreateHold(ctx, "1", "mv101", "13:00", "A1")
	require.NoError(t, err)

	_, err = f.payments.CreateIntent(ctx, "1", "nope", validCard())
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = f.payments.CreateIntent(ctx, "2", h.Key, validCard())
	assert.ErrorIs(t, err, repository.ErrUnauthorized)

	bad := validCard()
	bad.CardNumber = "4242424242424241"
	_, err = f.payments.CreateIntent(ctx, "1", h.Key, bad)
	assert.ErrorIs(t, err, repository.ErrInvalidInstrument)
	assert.Zero(t, f.stores.Intents.Count())
}

func TestPaymentFlow_WrongOTPLeavesHold(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	h, err := f.holds.CreateHold(ctx, "1", "mv101", "13:00", "C2")
	require.NoError(t, err)
	res, err := f.payments.CreateIntent(ctx, "1", h.Key, validCard())
	require.NoError(t, err)

	wrong := "000000"
	if res.OTP == wrong {
		wrong = "111111"
	}
	_, err = f.payments.Confirm(ctx, "1", res.PaymentIntentID, wrong)
	require.ErrorIs(t, err, repository.ErrOtpMismatch)

	seat, err := f.stores.Seats.Seat(room101, "C2")
	require.NoError(t, err)
	assert.Equal(t, model.SeatHeld, seat.Status)
	assert.Equal(t, 1, f.stores.Holds.Count())
	assert.Equal(t, 1, f.stores.Intents.Count())
	assert.Zero(t, f.stores.Bookings.Count())

	// The code is compared as given; trimming is the caller's job.
	_, err = f.payments.Confirm(ctx, "1", res.PaymentIntentID, " "+res.OTP)
	require.ErrorIs(t, err, repository.ErrOtpMismatch)

	// Retrying with the right code still works.
	_, err = f.payments.Confirm(ctx, "1", res.PaymentIntentID, res.OTP)
	require.NoError(t, err)
}

func TestPaymentFlow_ConfirmByOtherUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	h, err := f.holds.CreateHold(ctx, "1", "mv101", "13:00", "A1")
	require.NoError(t, err)
	res, err := f.payments.CreateIntent(ctx, "1", h.Key, validCard())
	require.NoError(t, err)

	_, err = f.payments.Confirm(ctx, "2", res.PaymentIntentID, res.OTP)
	require.ErrorIs(t, err, repository.ErrUnauthorized)
	e, ok := repository.AsError(err)
	require.True(t, ok)
	assert.Equal(t, repository.CodeInvalidIntent, e.Code)
}

func TestPaymentFlow_ConfirmAfterExpiry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	h, err := f.holds.CreateHold(ctx, "1", "mv101", "13:00", "A1")
	require.NoError(t, err)
	res, err := f.payments.CreateIntent(ctx, "1", h.Key, validCard())
	require.NoError(t, err)

	f.clock.Advance(7*time.Minute + time.Second)
	require.Equal(t, 1, f.sweeper.SweepOnce())

	// The sweep drops the intent together with the hold.
	_, err = f.payments.Confirm(ctx, "1", res.PaymentIntentID, res.OTP)
	require.ErrorIs(t, err, repository.ErrNotFound)

	seat, err := f.stores.Seats.Seat(room101, "A1")
	require.NoError(t, err)
	assert.Equal(t, model.SeatAvailable, seat.Status)
	assert.Zero(t, f.stores.Bookings.Count())
}

func TestPaymentFlow_ConfirmWithHoldGone(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	h, err := f.holds.CreateHold(ctx, "1", "mv101", "13:00", "A1")
	require.NoError(t, err)
	res, err := f.payments.CreateIntent(ctx, "1", h.Key, validCard())
	require.NoError(t, err)

	// Hold record vanished but the intent survived.
	require.True(t, f.stores.Holds.Delete(h.Key))

	_, err = f.payments.Confirm(ctx, "1", res.PaymentIntentID, res.OTP)
	require.ErrorIs(t, err, repository.ErrExpired)
	e, ok := repository.AsError(err)
	require.True(t, ok)
	assert.Equal(t, repository.CodeReservationNotFound, e.Code)
}

func TestPaymentFlow_StaleIntentCannotBookReheldSeat(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	h, err := f.holds.CreateHold(ctx, "1", "mv101", "13:00", "A1")
	require.NoError(t, err)
	res, err := f.payments.CreateIntent(ctx, "1", h.Key, validCard())
	require.NoError(t, err)

	// Simulate the sweep having freed the seat while the hold record and
	// intent are still around, then the same user re-holding it.
	_, err = f.stores.Seats.Transition(room101, "A1", model.SeatHeld, model.SeatAvailable, model.Actor{UserID: "1", HoldKey: h.Key})
	require.NoError(t, err)
	h2, err := f.holds.CreateHold(ctx, "1", "mv101", "13:00", "A1")
	require.NoError(t, err)

	_, err = f.payments.Confirm(ctx, "1", res.PaymentIntentID, res.OTP)
	require.ErrorIs(t, err, repository.ErrExpired)
	e, ok := repository.AsError(err)
	require.True(t, ok)
	assert.Equal(t, repository.CodeHoldExpiredOrChanged, e.Code)

	seat, err := f.stores.Seats.Seat(room101, "A1")
	require.NoError(t, err)
	assert.Equal(t, model.SeatHeld, seat.Status)
	assert.Equal(t, h2.Key, seat.HoldKey)
}

func TestPaymentFlow_ConfirmRacesSweep(t *testing.T) {
	for i := 0; i < 50; i++ {
		f := newFixture(t)
		ctx := context.Background()
		h, err := f.holds.CreateHold(ctx, "1", "mv101", "13:00", "A1")
		require.NoError(t, err)
		res, err := f.payments.CreateIntent(ctx, "1", h.Key, validCard())
		require.NoError(t, err)
		f.clock.Advance(8 * time.Minute)

		var (
			wg         sync.WaitGroup
			start      = make(chan struct{})
			confirmErr error
			swept      int
		)
		wg.Add(2)
		go func() {
			defer wg.Done()
			<-start
			_, confirmErr = f.payments.Confirm(ctx, "1", res.PaymentIntentID, res.OTP)
		}()
		go func() {
			defer wg.Done()
			<-start
			swept = f.sweeper.SweepOnce()
		}()
		close(start)
		wg.Wait()

		seat, err := f.stores.Seats.Seat(room101, "A1")
		require.NoError(t, err)
		if confirmErr == nil {
			assert.Equal(t, model.SeatBooked, seat.Status)
			assert.Zero(t, swept)
			assert.Equal(t, 1, f.stores.Bookings.Count())
		} else {
			assert.Equal(t, model.SeatAvailable, seat.Status)
			assert.Zero(t, f.stores.Bookings.Count())
		}
		assert.Zero(t, f.stores.Holds.Count())
	}
}

func TestPaymentFlow_ConcurrentConfirmBooksOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	h, err := f.holds.CreateHold(ctx, "1", "mv101", "13:00", "E8")
	require.NoError(t, err)

	// Two intents for the same hold, confirmed at the same time.
	a, err := f.payments.CreateIntent(ctx, "1", h.Key, validCard())
	require.NoError(t, err)
	b, err := f.payments.CreateIntent(ctx, "1", h.Key, validCard())
	require.NoError(t, err)

	var (
		wg    sync.WaitGroup
		start = make(chan struct{})
		errs  = make([]error, 2)
	)
	for i, in := range []service.IntentResult{a, b} {
		wg.Add(1)
		go func(i int, in service.IntentResult) {
			defer wg.Done()
			<-start
			_, errs[i] = f.payments.Confirm(ctx, "1", in.PaymentIntentID, in.OTP)
		}(i, in)
	}
	close(start)
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, f.stores.Bookings.Count())
}
