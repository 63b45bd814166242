package repository_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinebook/internal/model"
	"github.com/iliyamo/cinebook/internal/repository"
)

func TestShowRepo_ResolveShowing(t *testing.T) {
	r := repository.NewShowRepo(repository.DefaultCatalog())

	s, ok := r.ResolveShowing("mv101", "13:00")
	require.True(t, ok)
	assert.Equal(t, int64(180), s.BasePrice)
	assert.Equal(t, "Nile Stars Cinema", s.CinemaName)
	assert.Equal(t, "Silent Hearts", s.Title)

	_, ok = r.ResolveShowing("mv101", "09:00")
	assert.False(t, ok)
	_, ok = r.ResolveShowing("nope", "13:00")
	assert.False(t, ok)
}

func TestShowRepo_AddMovie(t *testing.T) {
	r := repository.NewShowRepo(repository.DefaultCatalog())

	m, err := r.AddMovie("cinema-2", model.Movie{Title: "Night Run", Genre: "Thriller", Price: 190, Times: []string{"23:00"}})
	require.NoError(t, err)
	assert.NotEmpty(t, m.ID)

	s, ok := r.ResolveShowing(m.ID, "23:00")
	require.True(t, ok)
	assert.Equal(t, int64(190), s.BasePrice)

	_, err = r.AddMovie("cinema-9", model.Movie{Title: "x"})
	assert.ErrorIs(t, err, repository.ErrCinemaNotFound)
	_, err = r.AddMovie("cinema-1", model.Movie{ID: "mv101", Title: "dup"})
	assert.ErrorIs(t, err, repository.ErrConflict)
}

func TestShowRepo_CinemasIsACopy(t *testing.T) {
	r := repository.NewShowRepo(repository.DefaultCatalog())
	cs := r.Cinemas()
	cs[0].Movies[0].Price = 1
	cs[0].Movies[0].Times[0] = "00:00"

	s, ok := r.ResolveShowing("mv101", "13:00")
	require.True(t, ok)
	assert.Equal(t, int64(180), s.BasePrice)
}

func TestShowRepo_Recommend(t *testing.T) {
	r := repository.NewShowRepo(repository.DefaultCatalog())

	tests := []struct {
		name  string
		mood  string
		genre string
		want  []string
	}{
		{name: "mood match", mood: "I feel sad today", want: []string{"mv103", "mv203"}},
		{name: "genre match", genre: "comedy", want: []string{"mv202"}},
		{name: "fallback to first movie per cinema", mood: "zzz", want: []string{"mv101", "mv201"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Recommend(tt.mood, tt.genre)
			ids := make([]string, 0, len(got))
			for _, s := range got {
				ids = append(ids, s.Movie.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}

	assert.LessOrEqual(t, len(r.Recommend("", "a")), 6)
}
