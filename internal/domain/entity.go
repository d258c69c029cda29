package domain

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-json"
)

// MediaType is the kind of a selectable reference.
type MediaType string

const (
	MediaMovie  MediaType = "movie"
	MediaTV     MediaType = "tv"
	MediaPerson MediaType = "person"
)

// Valid reports whether m is one of the known media types.
func (m MediaType) Valid() bool {
	switch m {
	case MediaMovie, MediaTV, MediaPerson:
		return true
	default:
		return false
	}
}

// IsWork reports whether m refers to a movie or a show.
func (m MediaType) IsWork() bool {
	return m == MediaMovie || m == MediaTV
}

// SourceType records how an entry's contributors were surfaced.
type SourceType string

const (
	SourceMovie            SourceType = "movie"
	SourceTV               SourceType = "tv"
	SourcePersonDirect     SourceType = "person_direct"
	SourcePersonTransitive SourceType = "person_transitive"
)

// SourceForMedia returns the entry source used when resolving a work selection.
func SourceForMedia(m MediaType) SourceType {
	if m == MediaTV {
		return SourceTV
	}
	return SourceMovie
}

// Entity is a contributor as handed to AddToFlock: either a PlainEntity
// (bare id) or a RoleEntity carrying role metadata.
type Entity interface {
	EntityID() int64
	weighted() WeightedEntity
}

// PlainEntity is a contributor id without role metadata.
type PlainEntity int64

func (p PlainEntity) EntityID() int64 { return int64(p) }

func (p PlainEntity) weighted() WeightedEntity {
	return WeightedEntity{ID: int64(p), Weight: DefaultWeight}
}

// RoleEntity is a contributor with the role fields the weight model reads.
type RoleEntity struct {
	ID                 int64
	Department         string
	KnownForDepartment string
	Order              *int // billing order, nil when absent
}

func (r RoleEntity) EntityID() int64 { return r.ID }

// EffectiveDepartment is Department, or KnownForDepartment when Department is empty.
func (r RoleEntity) EffectiveDepartment() string {
	if r.Department != "" {
		return r.Department
	}
	return r.KnownForDepartment
}

func (r RoleEntity) weighted() WeightedEntity {
	return WeightedEntity{
		ID:         r.ID,
		Weight:     ComputeEntityWeight(r),
		Department: r.EffectiveDepartment(),
	}
}

// PlainEntities wraps raw contributor ids.
func PlainEntities(ids ...int64) []Entity {
	out := make([]Entity, 0, len(ids))
	for _, id := range ids {
		out = append(out, PlainEntity(id))
	}
	return out
}

// Normalize resolves any Entity into its canonical weighted form.
func Normalize(e Entity) WeightedEntity {
	return e.weighted()
}

// WeightedEntity is one contributor inside an Entry. Immutable once appended.
type WeightedEntity struct {
	ID         int64   `json:"id"`
	Weight     float64 `json:"weight"`
	Department string  `json:"department"`
}

// UnmarshalJSON accepts both the weighted object form and the legacy bare-id
// form, which is normalized to DefaultWeight with an empty department.
func (w *WeightedEntity) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] != '{' {
		var id int64
		if err := json.Unmarshal(data, &id); err != nil {
			return fmt.Errorf("invalid legacy entity %s: %w", string(data), err)
		}
		*w = PlainEntity(id).weighted()
		return nil
	}

	type plain WeightedEntity
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*w = WeightedEntity(p)
	return nil
}
