package relations

// File is the top-level structure of relations.yaml.
//
//	person_expansion:
//	  max_works: 10
//	  max_cast_per_work: 15
//	  key_departments: [Directing, Writing, Production, Sound]
//	  excluded_genre_ids: [10767, 10763]
type File struct {
	PersonExpansion ExpansionProps `yaml:"person_expansion"`
}

// ExpansionProps are the raw settings for expanding a person into collaborators.
// Zero values fall back to the defaults.
type ExpansionProps struct {
	MaxWorks         int      `yaml:"max_works,omitempty"`
	MaxCastPerWork   int      `yaml:"max_cast_per_work,omitempty"`
	KeyDepartments   []string `yaml:"key_departments,omitempty"`
	ExcludedGenreIDs []int    `yaml:"excluded_genre_ids,omitempty"`
}
