package fixtures

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/drewfead/kpcheck/internal/core"
)

type SearchCase struct {
	Query string `json:"query" yaml:"query"`
	Want  string `json:"want" yaml:"want"`
}

// FilmCase addresses a film page directly by its id.
type FilmCase struct {
	ID int `json:"id" yaml:"id"`
	// Names must all appear in the header.
	Names       []string `json:"names,omitempty" yaml:"names,omitempty"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Reviews     int      `json:"reviews,omitempty" yaml:"reviews,omitempty"`
	Actor       string   `json:"actor,omitempty" yaml:"actor,omitempty"`
}

type FilmCases struct {
	Header    *FilmCase `json:"header,omitempty" yaml:"header,omitempty"`
	Synopsis  *FilmCase `json:"synopsis,omitempty" yaml:"synopsis,omitempty"`
	Rating    *FilmCase `json:"rating,omitempty" yaml:"rating,omitempty"`
	Reviews   *FilmCase `json:"reviews,omitempty" yaml:"reviews,omitempty"`
	MainActor *FilmCase `json:"mainActor,omitempty" yaml:"main_actor,omitempty"`
}

type ReverseLookup struct {
	Category string `json:"category" yaml:"category"`
	// Position is 1-based.
	Position int `json:"position" yaml:"position"`
}

// Expectations is everything the suite checks the site against.
type Expectations struct {
	HomeTitle     string        `json:"homeTitle" yaml:"home_title"`
	Search        []SearchCase  `json:"search" yaml:"search"`
	NotFound      *SearchCase   `json:"notFound,omitempty" yaml:"not_found,omitempty"`
	Films         FilmCases     `json:"films" yaml:"films"`
	Actors        []core.Actor  `json:"actors" yaml:"actors"`
	Titles        []core.Title  `json:"titles" yaml:"titles"`
	ReverseLookup ReverseLookup `json:"reverseLookup" yaml:"reverse_lookup"`
}

// Default returns a fresh copy of the stock expectations.
func Default() Expectations {
	dicaprio := core.Actor{Name: "Леонардо ДиКаприо"}
	cumberbatch := core.Actor{Name: "Бенедикт Камбербэтч"}

	return Expectations{
		HomeTitle: "кинопоиск",
		Search: []SearchCase{
			{Query: "Матрица", Want: "Матрица 1999"},
			{Query: "Matrix", Want: "Матрица 1999"},
			{Query: "Отбросы", Want: "Отбросы (сериал) 2009 – 2013"},
			{Query: "Бенедикт Камбербэтч", Want: "Бенедикт Камбербэтч 1976"},
		},
		NotFound: &SearchCase{
			Query: "Абвагад ывфр",
			Want:  "К сожалению, по вашему запросу ничего не найдено...",
		},
		Films: FilmCases{
			Header:    &FilmCase{ID: 1143242, Names: []string{"Джентльмены", "The Gentlemen"}},
			Synopsis:  &FilmCase{ID: 326, Description: "Оказавшись в тюрьме под названием Шоушенк"},
			Rating:    &FilmCase{ID: 435},
			Reviews:   &FilmCase{ID: 448, Reviews: 10},
			MainActor: &FilmCase{ID: 397667, Actor: dicaprio.Name},
		},
		Actors: []core.Actor{dicaprio, cumberbatch},
		Titles: []core.Title{
			{
				Kind:        core.Film,
				Name:        "Остров проклятых",
				EnglishName: "Shutter Island",
				Description: "Два американских судебных пристава",
				Actor:       dicaprio,
			},
			{
				Kind:        core.Series,
				Name:        "Шерлок",
				EnglishName: "Sherlock",
				Description: "События разворачиваются в наши дни",
				Actor:       cumberbatch,
			},
		},
		ReverseLookup: ReverseLookup{Category: "actor", Position: 3},
	}
}

// Load reads a YAML expectations file over the defaults. Keys present in the
// file override them, lists are replaced whole and a null disables a case.
func Load(path string) (Expectations, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Expectations{}, fmt.Errorf("read fixtures: %w", err)
	}
	return Parse(b)
}

func Parse(b []byte) (Expectations, error) {
	out := Default()
	if err := yaml.Unmarshal(b, &out); err != nil {
		return Expectations{}, fmt.Errorf("decode fixtures: %w", err)
	}
	if err := out.Validate(); err != nil {
		return Expectations{}, err
	}
	return out, nil
}

func (e Expectations) Validate() error {
	var errs []error
	for i, c := range e.Search {
		if strings.TrimSpace(c.Query) == "" || strings.TrimSpace(c.Want) == "" {
			errs = append(errs, fmt.Errorf("search[%d]: query and want are required", i))
		}
	}
	if e.NotFound != nil && (strings.TrimSpace(e.NotFound.Query) == "" || strings.TrimSpace(e.NotFound.Want) == "") {
		errs = append(errs, errors.New("not_found: query and want are required"))
	}
	errs = append(errs, e.Films.validate()...)
	for i, a := range e.Actors {
		if strings.TrimSpace(a.Name) == "" {
			errs = append(errs, fmt.Errorf("actors[%d]: name is required", i))
		}
	}
	for i, t := range e.Titles {
		if !t.Kind.Valid() || t.Kind == core.Person {
			errs = append(errs, fmt.Errorf("titles[%d]: kind must be film or series, got %q", i, t.Kind))
		}
		if strings.TrimSpace(t.Name) == "" {
			errs = append(errs, fmt.Errorf("titles[%d]: name is required", i))
		}
	}
	if len(e.Actors) > 0 {
		if strings.TrimSpace(e.ReverseLookup.Category) == "" {
			errs = append(errs, errors.New("reverse_lookup: category is required"))
		}
		if e.ReverseLookup.Position < 1 {
			errs = append(errs, fmt.Errorf("reverse_lookup: position must be positive, got %d", e.ReverseLookup.Position))
		}
	}
	return errors.Join(errs...)
}

// validate checks each enabled film case carries the field its check reads.
func (f FilmCases) validate() []error {
	var errs []error
	cases := []struct {
		name    string
		c       *FilmCase
		missing func(*FilmCase) string
	}{
		{"header", f.Header, func(c *FilmCase) string {
			if len(c.Names) == 0 {
				return "names are required"
			}
			for _, n := range c.Names {
				if strings.TrimSpace(n) == "" {
					return "names must not be blank"
				}
			}
			return ""
		}},
		{"synopsis", f.Synopsis, func(c *FilmCase) string {
			if strings.TrimSpace(c.Description) == "" {
				return "description is required"
			}
			return ""
		}},
		{"rating", f.Rating, nil},
		{"reviews", f.Reviews, func(c *FilmCase) string {
			if c.Reviews <= 0 {
				return "reviews must be positive"
			}
			return ""
		}},
		{"main_actor", f.MainActor, func(c *FilmCase) string {
			if strings.TrimSpace(c.Actor) == "" {
				return "actor is required"
			}
			return ""
		}},
	}
	for _, fc := range cases {
		if fc.c == nil {
			continue
		}
		if fc.c.ID <= 0 {
			errs = append(errs, fmt.Errorf("films.%s: id must be positive", fc.name))
		}
		if fc.missing == nil {
			continue
		}
		if msg := fc.missing(fc.c); msg != "" {
			errs = append(errs, fmt.Errorf("films.%s: %s", fc.name, msg))
		}
	}
	return errs
}
