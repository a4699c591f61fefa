package core

// Kind is the entity type carried by a search result link in its data-type
// attribute.
type Kind string

const (
	Person Kind = "person"
	Film   Kind = "film"
	Series Kind = "series"
)

func (k Kind) Valid() bool {
	switch k {
	case Person, Film, Series:
		return true
	default:
		return false
	}
}

type Actor struct {
	Name string `json:"name" yaml:"name"`
	URL  string `json:"url,omitempty" yaml:"url,omitempty"`
}

func (a Actor) Resolved() bool {
	return a.URL != ""
}

// Title is a film or a series.
type Title struct {
	Kind        Kind   `json:"kind" yaml:"kind"`
	Name        string `json:"name" yaml:"name"`
	EnglishName string `json:"englishName" yaml:"english_name"`
	Description string `json:"description" yaml:"description"`
	Actor       Actor  `json:"actor" yaml:"actor"`
	URL         string `json:"url,omitempty" yaml:"url,omitempty"`
}

func (t Title) Resolved() bool {
	return t.URL != ""
}
