package relations

import (
	"fmt"
	"slices"
)

// Defaults applied when the file leaves a setting out.
const (
	DefaultMaxWorks       = 10
	DefaultMaxCastPerWork = 15
)

// Filter decides which collaborators of a person are pulled in when the
// person is selected. Talk shows and news link a host to every guest, so
// their genres are excluded by default.
type Filter struct {
	MaxWorks         int
	MaxCastPerWork   int
	KeyDepartments   map[string]struct{}
	ExcludedGenreIDs map[int]struct{}
}

// DefaultFilter returns the built-in expansion settings.
func DefaultFilter() Filter {
	return Filter{
		MaxWorks:         DefaultMaxWorks,
		MaxCastPerWork:   DefaultMaxCastPerWork,
		KeyDepartments:   toSet([]string{"Directing", "Writing", "Production", "Sound"}),
		ExcludedGenreIDs: toSet([]int{10767, 10763}),
	}
}

// IsKeyDepartment reports whether crew of the department are kept.
func (f Filter) IsKeyDepartment(department string) bool {
	_, ok := f.KeyDepartments[department]
	return ok
}

// IsExcluded reports whether any of the genres is excluded.
func (f Filter) IsExcluded(genreIDs []int) bool {
	for _, id := range genreIDs {
		if _, ok := f.ExcludedGenreIDs[id]; ok {
			return true
		}
	}
	return false
}

// Departments returns the key departments sorted, for logs and /infra.
func (f Filter) Departments() []string {
	out := make([]string, 0, len(f.KeyDepartments))
	for d := range f.KeyDepartments {
		out = append(out, d)
	}
	slices.Sort(out)
	return out
}

// ToFilter validates a parsed file and merges it over the defaults.
func ToFilter(file File) (Filter, error) {
	return Merge(DefaultFilter(), file)
}

// Merge validates a parsed file and merges it over base.
func Merge(base Filter, file File) (Filter, error) {
	props := file.PersonExpansion
	filter := base

	if props.MaxWorks < 0 {
		return Filter{}, fmt.Errorf("max_works must be >= 0, got %d", props.MaxWorks)
	}
	if props.MaxCastPerWork < 0 {
		return Filter{}, fmt.Errorf("max_cast_per_work must be >= 0, got %d", props.MaxCastPerWork)
	}

	if props.MaxWorks > 0 {
		filter.MaxWorks = props.MaxWorks
	}
	if props.MaxCastPerWork > 0 {
		filter.MaxCastPerWork = props.MaxCastPerWork
	}
	if len(props.KeyDepartments) > 0 {
		filter.KeyDepartments = toSet(props.KeyDepartments)
	}
	if props.ExcludedGenreIDs != nil {
		filter.ExcludedGenreIDs = toSet(props.ExcludedGenreIDs)
	}

	return filter, nil
}

func toSet[T comparable](values []T) map[T]struct{} {
	out := make(map[T]struct{}, len(values))
	for _, v := range values {
		out[v] = struct{}{}
	}
	return out
}
