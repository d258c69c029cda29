package domain

import (
	"time"

	"github.com/google/uuid"
)

// Selection is a movie, show or person the user picked.
// Display fields are passed through untouched.
type Selection struct {
	ID        int64     `json:"id"`
	MediaType MediaType `json:"media_type"`

	Title              string  `json:"title,omitempty"`
	Name               string  `json:"name,omitempty"`
	Overview           string  `json:"overview,omitempty"`
	PosterPath         string  `json:"poster_path,omitempty"`
	ProfilePath        string  `json:"profile_path,omitempty"`
	ReleaseDate        string  `json:"release_date,omitempty"`
	FirstAirDate       string  `json:"first_air_date,omitempty"`
	KnownForDepartment string  `json:"known_for_department,omitempty"`
	Popularity         float64 `json:"popularity,omitempty"`
}

// Valid reports whether the selection carries an id and a known media type.
func (s Selection) Valid() bool {
	return s.ID > 0 && s.MediaType.Valid()
}

// Entry is one batch of weighted contributors resolved from a selection.
type Entry struct {
	Entities   []WeightedEntity `json:"entities"`
	Timestamp  time.Time        `json:"timestamp"`
	PrimaryID  int64            `json:"primary_id"`
	SourceType SourceType       `json:"source_type"`
}

// TotalWeight sums the raw weights of the entry's entities.
func (e Entry) TotalWeight() float64 {
	var total float64
	for _, ent := range e.Entities {
		total += ent.Weight
	}
	return total
}

// Flock is the aggregate root of one user's selection history.
//
// It is mutated only through UpdateSelection, AddToFlock, RemoveSelection and
// SetName. Entries are append-only and leave only by cascade on RemoveSelection.
type Flock struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	id string

	// ─────────────────────────────
	// Display
	// ─────────────────────────────

	name string

	// ─────────────────────────────
	// History
	// ─────────────────────────────

	selections    []Selection
	entries       []Entry
	directPersons map[int64]struct{}

	// ─────────────────────────────
	// Metadata
	// ─────────────────────────────

	createdAt time.Time
	updatedAt time.Time

	now func() time.Time
}

// NewFlock creates an empty flock with a fresh UUID.
func NewFlock(name string) *Flock {
	now := time.Now().UTC()
	return &Flock{
		id:            uuid.NewString(),
		name:          name,
		directPersons: make(map[int64]struct{}),
		createdAt:     now,
		updatedAt:     now,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

func (f *Flock) ID() string           { return f.id }
func (f *Flock) Name() string         { return f.name }
func (f *Flock) CreatedAt() time.Time { return f.createdAt }
func (f *Flock) UpdatedAt() time.Time { return f.updatedAt }

// SetName changes the display label.
func (f *Flock) SetName(name string) {
	f.name = name
	f.touch()
}

// SetClock overrides the time source used to stamp entries.
func (f *Flock) SetClock(now func() time.Time) {
	if now != nil {
		f.now = now
	}
}

// Selections returns a copy of the selection history in insertion order.
func (f *Flock) Selections() []Selection {
	out := make([]Selection, len(f.selections))
	copy(out, f.selections)
	return out
}

// Entries returns a copy of the entry history in insertion order.
func (f *Flock) Entries() []Entry {
	out := make([]Entry, len(f.entries))
	copy(out, f.entries)
	return out
}

// IsDirectPerson reports whether id was the direct subject of a person selection.
func (f *Flock) IsDirectPerson(id int64) bool {
	_, ok := f.directPersons[id]
	return ok
}

// DirectPersonIDs returns the direct person set.
func (f *Flock) DirectPersonIDs() map[int64]struct{} {
	out := make(map[int64]struct{}, len(f.directPersons))
	for id := range f.directPersons {
		out[id] = struct{}{}
	}
	return out
}

// SelectedWorkIDs returns the ids of all selections that are not persons.
func (f *Flock) SelectedWorkIDs() map[int64]struct{} {
	out := make(map[int64]struct{}, len(f.selections))
	for _, s := range f.selections {
		if s.MediaType != MediaPerson {
			out[s.ID] = struct{}{}
		}
	}
	return out
}

// UpdateSelection records a user selection. Repeated ids are kept as separate records.
func (f *Flock) UpdateSelection(s Selection) {
	f.selections = append(f.selections, s)
	f.touch()
}

// AddToFlock normalizes entities through the weight model and appends them
// as one entry attributed to primaryID. For SourcePersonDirect every entity
// id joins the direct person set.
func (f *Flock) AddToFlock(entities []Entity, primaryID int64, source SourceType) Entry {
	weighted := make([]WeightedEntity, 0, len(entities))
	for _, e := range entities {
		weighted = append(weighted, Normalize(e))
	}

	entry := Entry{
		Entities:   weighted,
		Timestamp:  f.now(),
		PrimaryID:  primaryID,
		SourceType: source,
	}
	f.entries = append(f.entries, entry)

	if source == SourcePersonDirect {
		for _, w := range weighted {
			f.directPersons[w.ID] = struct{}{}
		}
	}

	f.touch()
	return entry
}

// RemoveSelection drops every selection with the given id, every entry
// attributed to it, and the id from the direct person set.
// It reports whether anything changed.
func (f *Flock) RemoveSelection(id int64) bool {
	changed := false

	selections := f.selections[:0:0]
	for _, s := range f.selections {
		if s.ID == id {
			changed = true
			continue
		}
		selections = append(selections, s)
	}
	f.selections = selections

	entries := f.entries[:0:0]
	for _, e := range f.entries {
		if e.PrimaryID == id {
			changed = true
			continue
		}
		entries = append(entries, e)
	}
	f.entries = entries

	if _, ok := f.directPersons[id]; ok {
		delete(f.directPersons, id)
		changed = true
	}

	if changed {
		f.touch()
	}
	return changed
}

func (f *Flock) touch() {
	f.updatedAt = f.now()
}
