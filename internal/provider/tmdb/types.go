package tmdb

import "github.com/MrSnakeDoc/flickflock/internal/domain"

// SearchResult is one hit of the multi search. Movies carry Title and
// ReleaseDate, shows Name and FirstAirDate, people Name and ProfilePath.
type SearchResult struct {
	ID                 int64            `json:"id"`
	MediaType          domain.MediaType `json:"media_type"`
	Title              string           `json:"title,omitempty"`
	Name               string           `json:"name,omitempty"`
	Overview           string           `json:"overview,omitempty"`
	PosterPath         string           `json:"poster_path,omitempty"`
	ProfilePath        string           `json:"profile_path,omitempty"`
	ReleaseDate        string           `json:"release_date,omitempty"`
	FirstAirDate       string           `json:"first_air_date,omitempty"`
	KnownForDepartment string           `json:"known_for_department,omitempty"`
	OriginalLanguage   string           `json:"original_language,omitempty"`
	Popularity         float64          `json:"popularity"`
}

// DisplayTitle is Title for movies and Name for shows and people.
func (r SearchResult) DisplayTitle() string {
	if r.Title != "" {
		return r.Title
	}
	return r.Name
}

// PersonCredit is a contributor on a work: cast members carry Character
// and Order, crew members Department and Job.
type PersonCredit struct {
	ID                 int64   `json:"id"`
	Name               string  `json:"name"`
	KnownForDepartment string  `json:"known_for_department,omitempty"`
	Department         string  `json:"department,omitempty"`
	Job                string  `json:"job,omitempty"`
	Character          string  `json:"character,omitempty"`
	Order              *int    `json:"order,omitempty"`
	ProfilePath        string  `json:"profile_path,omitempty"`
	Popularity         float64 `json:"popularity"`
}

// Entity converts the credit into the weighted entity form.
func (p PersonCredit) Entity() domain.RoleEntity {
	return domain.RoleEntity{
		ID:                 p.ID,
		Department:         p.Department,
		KnownForDepartment: p.KnownForDepartment,
		Order:              p.Order,
	}
}

// Credits is the cast and crew of a movie or show.
type Credits struct {
	ID   int64          `json:"id"`
	Cast []PersonCredit `json:"cast"`
	Crew []PersonCredit `json:"crew"`
}

// WorkCredit is one work in a person's combined credits.
type WorkCredit struct {
	ID               int64            `json:"id"`
	MediaType        domain.MediaType `json:"media_type"`
	Title            string           `json:"title,omitempty"`
	Name             string           `json:"name,omitempty"`
	Overview         string           `json:"overview,omitempty"`
	PosterPath       string           `json:"poster_path,omitempty"`
	ReleaseDate      string           `json:"release_date,omitempty"`
	FirstAirDate     string           `json:"first_air_date,omitempty"`
	OriginalLanguage string           `json:"original_language,omitempty"`
	GenreIDs         []int            `json:"genre_ids,omitempty"`
	Popularity       float64          `json:"popularity"`
	Character        string           `json:"character,omitempty"`
	Department       string           `json:"department,omitempty"`
	Job              string           `json:"job,omitempty"`
}

// Work converts the credit into a rankable work.
func (w WorkCredit) Work() domain.Work {
	title := w.Title
	if title == "" {
		title = w.Name
	}
	return domain.Work{
		ID:               w.ID,
		MediaType:        w.MediaType,
		Title:            title,
		Overview:         w.Overview,
		PosterPath:       w.PosterPath,
		Popularity:       w.Popularity,
		ReleaseDate:      w.ReleaseDate,
		FirstAirDate:     w.FirstAirDate,
		OriginalLanguage: w.OriginalLanguage,
	}
}

// Person is a person's details merged with their combined credits.
type Person struct {
	ID                 int64        `json:"id"`
	Name               string       `json:"name"`
	Biography          string       `json:"biography,omitempty"`
	Birthday           string       `json:"birthday,omitempty"`
	Deathday           string       `json:"deathday,omitempty"`
	PlaceOfBirth       string       `json:"place_of_birth,omitempty"`
	KnownForDepartment string       `json:"known_for_department,omitempty"`
	Popularity         float64      `json:"popularity"`
	ProfilePath        string       `json:"profile_path,omitempty"`
	ImdbID             string       `json:"imdb_id,omitempty"`
	Cast               []WorkCredit `json:"cast"`
	Crew               []WorkCredit `json:"crew"`
}

// Summary is the subset of Person shown next to a ranked contributor.
type Summary struct {
	ID                 int64   `json:"id"`
	Name               string  `json:"name"`
	Biography          string  `json:"biography"`
	Birthday           string  `json:"birthday"`
	KnownForDepartment string  `json:"known_for_department"`
	Popularity         float64 `json:"popularity"`
	ProfilePath        string  `json:"profile_path"`
}

// Summary strips the credits.
func (p *Person) Summary() Summary {
	return Summary{
		ID:                 p.ID,
		Name:               p.Name,
		Biography:          p.Biography,
		Birthday:           p.Birthday,
		KnownForDepartment: p.KnownForDepartment,
		Popularity:         p.Popularity,
		ProfilePath:        p.ProfilePath,
	}
}

// Works returns every credited work, cast first, unfiltered.
func (p *Person) Works() []domain.Work {
	out := make([]domain.Work, 0, len(p.Cast)+len(p.Crew))
	for _, c := range p.Cast {
		out = append(out, c.Work())
	}
	for _, c := range p.Crew {
		out = append(out, c.Work())
	}
	return out
}

type combinedCredits struct {
	Cast []WorkCredit `json:"cast"`
	Crew []WorkCredit `json:"crew"`
}

type searchPage struct {
	Page    int            `json:"page"`
	Results []SearchResult `json:"results"`
}

// ExternalIDs are the identifiers of a work on other sites.
type ExternalIDs struct {
	ImdbID string `json:"imdb_id"`
}
