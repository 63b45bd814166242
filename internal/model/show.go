package model

// Movie is a catalog entry playing in one cinema.  Price is the base seat
// price in EGP for every showtime of the movie.
type Movie struct {
	ID     string   `json:"id"`
	Title  string   `json:"title"`
	Genre  string   `json:"genre"`
	Rating float64  `json:"rating"`
	Price  int64    `json:"price"`
	Times  []string `json:"times"`
	Moods  []string `json:"moods"`
	Poster string   `json:"poster,omitempty"`
}

// Cinema groups movies playing in one venue.
type Cinema struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	City      string  `json:"city"`
	HeroImage string  `json:"heroImage,omitempty"`
	Movies    []Movie `json:"movies"`
}

// Showing is the result of resolving a movie and showtime against the
// catalog.
type Showing struct {
	CinemaID   string
	CinemaName string
	MovieID    string
	Title      string
	Showtime   string
	BasePrice  int64
}

// Suggestion is one recommended movie together with where it plays.
type Suggestion struct {
	CinemaName string   `json:"cinemaName"`
	City       string   `json:"city"`
	Movie      Movie    `json:"movie"`
	Showtimes  []string `json:"showtimes"`
}
