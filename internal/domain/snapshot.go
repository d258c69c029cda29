package domain

import (
	"slices"
	"time"
)

// FlockSnapshot is the durable shape of a Flock: one record per flock id.
type FlockSnapshot struct {
	ID              string      `json:"flock_id"`
	Name            string      `json:"flock_name"`
	Selections      []Selection `json:"selections"`
	Entries         []Entry     `json:"flock_entries"`
	DirectPersonIDs []int64     `json:"direct_person_ids"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// Snapshot captures the aggregate for persistence.
// Direct person ids are sorted so equal flocks encode identically.
func (f *Flock) Snapshot() FlockSnapshot {
	direct := make([]int64, 0, len(f.directPersons))
	for id := range f.directPersons {
		direct = append(direct, id)
	}
	slices.Sort(direct)

	return FlockSnapshot{
		ID:              f.id,
		Name:            f.name,
		Selections:      f.Selections(),
		Entries:         f.Entries(),
		DirectPersonIDs: direct,
		CreatedAt:       f.createdAt,
		UpdatedAt:       f.updatedAt,
	}
}

// RestoreFlock rebuilds a Flock from a snapshot.
func RestoreFlock(s FlockSnapshot) *Flock {
	f := NewFlock(s.Name)
	f.id = s.ID
	f.selections = append(f.selections, s.Selections...)
	f.entries = append(f.entries, s.Entries...)
	for _, id := range s.DirectPersonIDs {
		f.directPersons[id] = struct{}{}
	}
	if !s.CreatedAt.IsZero() {
		f.createdAt = s.CreatedAt
	}
	if !s.UpdatedAt.IsZero() {
		f.updatedAt = s.UpdatedAt
	}
	return f
}
