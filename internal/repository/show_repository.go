package repository

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/iliyamo/cinebook/internal/model"
)

// ErrCinemaNotFound is returned by AddMovie for an unknown cinema.
var ErrCinemaNotFound = errors.New("cinema not found")

// maxSuggestions caps Recommend results.
const maxSuggestions = 6

// ShowRepo is the movie catalog: cinemas, their movies, showtimes and
// base prices.  It answers showing lookups for the hold manager and
// listing queries for the browse endpoints.
type ShowRepo struct {
	mu      sync.RWMutex
	cinemas []model.Cinema
	nextID  int
}

// NewShowRepo returns a catalog holding a deep copy of cinemas.
func NewShowRepo(cinemas []model.Cinema) *ShowRepo {
	r := &ShowRepo{nextID: 1}
	for _, c := range cinemas {
		r.cinemas = append(r.cinemas, copyCinema(c))
	}
	return r
}

// DefaultCatalog is the demo catalog the server starts with.
func DefaultCatalog() []model.Cinema {
	return []model.Cinema{
		{
			ID: "cinema-1", Name: "Nile Stars Cinema", City: "Cairo",
			Movies: []model.Movie{
				{ID: "mv101", Title: "Silent Hearts", Genre: "Romance", Rating: 8.1, Price: 180, Times: []string{"13:00", "17:00", "20:00"}, Moods: []string{"romantic", "calm"}},
				{ID: "mv102", Title: "Shadow Protocol", Genre: "Action", Rating: 7.6, Price: 200, Times: []string{"18:00", "22:00"}, Moods: []string{"excited", "adventure"}},
				{ID: "mv103", Title: "Tears of Winter", Genre: "Drama", Rating: 8.4, Price: 160, Times: []string{"16:30", "21:30"}, Moods: []string{"sad", "deep"}},
			},
		},
		{
			ID: "cinema-2", Name: "Skyline Cinema", City: "Alexandria",
			Movies: []model.Movie{
				{ID: "mv201", Title: "Code of Future", Genre: "Sci-Fi", Rating: 7.9, Price: 220, Times: []string{"19:15"}, Moods: []string{"curious", "smart"}},
				{ID: "mv202", Title: "Laugh Track", Genre: "Comedy", Rating: 7.2, Price: 150, Times: []string{"15:00", "19:00"}, Moods: []string{"happy", "light"}},
				{ID: "mv203", Title: "Broken Promise", Genre: "Drama", Rating: 7.4, Price: 170, Times: []string{"20:30"}, Moods: []string{"sad", "realistic"}},
			},
		},
	}
}

func copyCinema(c model.Cinema) model.Cinema {
	out := c
	out.Movies = make([]model.Movie, len(c.Movies))
	for i, m := range c.Movies {
		out.Movies[i] = copyMovie(m)
	}
	return out
}

func copyMovie(m model.Movie) model.Movie {
	out := m
	out.Times = append([]string(nil), m.Times...)
	out.Moods = append([]string(nil), m.Moods...)
	return out
}

// Cinemas returns a copy of the whole catalog.
func (r *ShowRepo) Cinemas() []model.Cinema {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.Cinema, len(r.cinemas))
	for i, c := range r.cinemas {
		out[i] = copyCinema(c)
	}
	return out
}

// ResolveShowing reports whether movieID plays at showtime and, if so,
// returns the showing with its current base price.
func (r *ShowRepo) ResolveShowing(movieID, showtime string) (model.Showing, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.cinemas {
		for _, m := range c.Movies {
			if m.ID != movieID {
				continue
			}
			for _, t := range m.Times {
				if t == showtime {
					return model.Showing{
						CinemaID:   c.ID,
						CinemaName: c.Name,
						MovieID:    m.ID,
						Title:      m.Title,
						Showtime:   t,
						BasePrice:  m.Price,
					}, true
				}
			}
			return model.Showing{}, false
		}
	}
	return model.Showing{}, false
}

// Movie looks up a movie by ID.
func (r *ShowRepo) Movie(movieID string) (model.Movie, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.cinemas {
		for _, m := range c.Movies {
			if m.ID == movieID {
				return copyMovie(m), true
			}
		}
	}
	return model.Movie{}, false
}

// AddMovie appends m to the given cinema.  When m.ID is empty a new
// identifier is generated.  Live holds are unaffected because they carry
// their own price snapshot.
func (r *ShowRepo) AddMovie(cinemaID string, m model.Movie) (model.Movie, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := -1
	for i, c := range r.cinemas {
		if c.ID == cinemaID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return model.Movie{}, ErrCinemaNotFound
	}
	if m.ID == "" {
		m.ID = fmt.Sprintf("mvx%d", r.nextID)
		r.nextID++
	}
	for _, c := range r.cinemas {
		for _, existing := range c.Movies {
			if existing.ID == m.ID {
				return model.Movie{}, ErrConflict
			}
		}
	}
	m = copyMovie(m)
	r.cinemas[idx].Movies = append(r.cinemas[idx].Movies, m)
	return copyMovie(m), nil
}

// Recommend returns movies whose moods appear in the free-text mood or
// whose genre contains genre (case-insensitive).  When nothing matches,
// the first movie of every cinema is suggested instead.
func (r *ShowRepo) Recommend(mood, genre string) []model.Suggestion {
	mood = strings.ToLower(strings.TrimSpace(mood))
	genre = strings.ToLower(strings.TrimSpace(genre))

	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []model.Suggestion
	for _, c := range r.cinemas {
		for _, m := range c.Movies {
			if matchesMood(m, mood) || (genre != "" && strings.Contains(strings.ToLower(m.Genre), genre)) {
				out = append(out, suggestion(c, m))
			}
		}
	}
	if len(out) == 0 {
		for _, c := range r.cinemas {
			if len(c.Movies) > 0 {
				out = append(out, suggestion(c, c.Movies[0]))
			}
		}
	}
	if len(out) > maxSuggestions {
		out = out[:maxSuggestions]
	}
	return out
}

func matchesMood(m model.Movie, mood string) bool {
	if mood == "" {
		return false
	}
	for _, x := range m.Moods {
		if strings.Contains(mood, strings.ToLower(x)) {
			return true
		}
	}
	return false
}

func suggestion(c model.Cinema, m model.Movie) model.Suggestion {
	m = copyMovie(m)
	return model.Suggestion{CinemaName: c.Name, City: c.City, Movie: m, Showtimes: m.Times}
}
