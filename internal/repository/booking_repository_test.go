package repository_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinebook/internal/model"
	"github.com/iliyamo/cinebook/internal/repository"
)

func booking(id, user, movie string, amount int64) model.Booking {
	return model.Booking{ID: id, UserID: user, MovieID: movie, Showtime: "13:00", SeatID: "A1", Amount: amount, CompletedAt: time.Now()}
}

func TestBookingRepo_AppendAndList(t *testing.T) {
	r := repository.NewBookingRepo()
	r.Append(booking("b1", "1", "mv101", 180))
	r.Append(booking("b2", "2", "mv102", 200))
	r.Append(booking("b3", "1", "mv101", 180))

	assert.Equal(t, 3, r.Count())

	all := r.All()
	require.Len(t, all, 3)
	assert.Equal(t, []string{"b1", "b2", "b3"}, []string{all[0].ID, all[1].ID, all[2].ID})

	all[0].Amount = 0
	assert.Equal(t, int64(180), r.All()[0].Amount, "All must return a copy")

	mine := r.ListByUser("1")
	require.Len(t, mine, 2)
	assert.Equal(t, "b1", mine[0].ID)
	assert.Equal(t, "b3", mine[1].ID)
	assert.Empty(t, r.ListByUser("nobody"))

	latest := r.Latest(2)
	require.Len(t, latest, 2)
	assert.Equal(t, "b3", latest[0].ID)
	assert.Equal(t, "b2", latest[1].ID)
	assert.Len(t, r.Latest(0), 3)
}

func TestBookingRepo_Overview(t *testing.T) {
	r := repository.NewBookingRepo()
	ov := r.Overview()
	assert.Zero(t, ov.TotalRevenue)
	assert.Zero(t, ov.BookingsCount)
	assert.Empty(t, ov.TopMovieID)

	r.Append(booking("b1", "1", "mv102", 200))
	r.Append(booking("b2", "2", "mv101", 180))
	r.Append(booking("b3", "1", "mv101", 180))
	r.Append(booking("b4", "3", "mv102", 200))

	ov = r.Overview()
	assert.Equal(t, int64(760), ov.TotalRevenue)
	assert.Equal(t, 4, ov.BookingsCount)
	assert.Equal(t, 3, ov.CustomersCount)
	assert.Equal(t, map[string]int{"mv101": 2, "mv102": 2}, ov.PerMovie)
	assert.Equal(t, int64(360), ov.RevenueByMovie["mv101"])
	assert.Equal(t, "mv101", ov.TopMovieID, "ties go to the smaller id")
}
