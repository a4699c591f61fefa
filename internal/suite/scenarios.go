package suite

import (
	"context"
	"fmt"

	"github.com/drewfead/kpcheck/internal/core"
	"github.com/drewfead/kpcheck/internal/scraping"
)

func actorKey(a core.Actor) string {
	return "resolve/actor/" + a.Name
}

func titleKey(t core.Title) string {
	return fmt.Sprintf("resolve/%s/%s", t.Kind, t.Name)
}

// resolvers is the setup phase: one step per entity, each storing its
// resolved copy in env.
func (r *Runner) resolvers() []scenario {
	sc := r.Scraper
	var out []scenario
	for _, a := range r.Expectations.Actors {
		a, key := a, actorKey(a)
		out = append(out, scenario{
			name: key,
			run: func(ctx context.Context, s *scraping.Session, e *env) (string, error) {
				resolved, err := sc.ResolveActor(ctx, s, a)
				if err != nil {
					return "", err
				}
				e.actors[key] = resolved
				return resolved.URL, nil
			},
		})
	}
	for _, t := range r.Expectations.Titles {
		t, key := t, titleKey(t)
		out = append(out, scenario{
			name: key,
			run: func(ctx context.Context, s *scraping.Session, e *env) (string, error) {
				resolved, err := sc.ResolveTitle(ctx, s, t)
				if err != nil {
					return "", err
				}
				e.titles[key] = resolved
				return resolved.URL, nil
			},
		})
	}
	return out
}

func (r *Runner) checks() []scenario {
	out := r.siteChecks()
	out = append(out, r.titleChecks()...)
	out = append(out, r.reverseLookups()...)
	return out
}

func (r *Runner) siteChecks() []scenario {
	sc := r.Scraper
	x := r.Expectations
	var out []scenario

	if x.HomeTitle != "" {
		out = append(out, scenario{
			name: "site/home-title",
			run: func(ctx context.Context, s *scraping.Session, _ *env) (string, error) {
				return "", sc.CheckHomeTitle(ctx, s, x.HomeTitle)
			},
		})
	}
	for _, c := range x.Search {
		c := c
		out = append(out, scenario{
			name: "search/" + c.Query,
			run: func(ctx context.Context, s *scraping.Session, _ *env) (string, error) {
				return "", sc.CheckSearchTopResult(ctx, s, c.Query, c.Want)
			},
		})
	}
	if nf := x.NotFound; nf != nil {
		out = append(out, scenario{
			name: "search/not-found",
			run: func(ctx context.Context, s *scraping.Session, _ *env) (string, error) {
				return "", sc.CheckSearchNotFound(ctx, s, nf.Query, nf.Want)
			},
		})
	}

	films := x.Films
	if c := films.Header; c != nil {
		out = append(out, scenario{
			name: "film/header",
			run: func(ctx context.Context, s *scraping.Session, _ *env) (string, error) {
				return "", sc.CheckHeader(ctx, s, sc.FilmURL(c.ID), c.Names...)
			},
		})
	}
	if c := films.Synopsis; c != nil {
		out = append(out, scenario{
			name: "film/synopsis",
			run: func(ctx context.Context, s *scraping.Session, _ *env) (string, error) {
				return "", sc.CheckSynopsis(ctx, s, sc.FilmURL(c.ID), c.Description)
			},
		})
	}
	if c := films.Rating; c != nil {
		out = append(out, scenario{
			name: "film/rating",
			run: func(ctx context.Context, s *scraping.Session, _ *env) (string, error) {
				rating, err := sc.CheckRating(ctx, s, sc.FilmURL(c.ID))
				if err != nil {
					return "", err
				}
				return fmt.Sprintf("%g", rating), nil
			},
		})
	}
	if c := films.Reviews; c != nil {
		out = append(out, scenario{
			name: "film/reviews",
			run: func(ctx context.Context, s *scraping.Session, _ *env) (string, error) {
				return "", sc.CheckReviewCount(ctx, s, sc.FilmURL(c.ID), c.Reviews)
			},
		})
	}
	if c := films.MainActor; c != nil {
		out = append(out, scenario{
			name: "film/main-actor",
			run: func(ctx context.Context, s *scraping.Session, _ *env) (string, error) {
				return "", sc.CheckActor(ctx, s, sc.FilmURL(c.ID), c.Actor)
			},
		})
	}
	return out
}

// titleChecks run on each resolved title.
func (r *Runner) titleChecks() []scenario {
	sc := r.Scraper
	var out []scenario
	for _, t := range r.Expectations.Titles {
		key := titleKey(t)
		prefix := fmt.Sprintf("%s/%s/", t.Kind, t.Name)
		names := []string{t.Name}
		if t.EnglishName != "" {
			names = append(names, t.EnglishName)
		}

		out = append(out, scenario{
			name:  prefix + "header",
			needs: []string{key},
			run: func(ctx context.Context, s *scraping.Session, e *env) (string, error) {
				return "", sc.CheckHeader(ctx, s, e.titles[key].URL, names...)
			},
		})
		if desc := t.Description; desc != "" {
			out = append(out, scenario{
				name:  prefix + "synopsis",
				needs: []string{key},
				run: func(ctx context.Context, s *scraping.Session, e *env) (string, error) {
					return "", sc.CheckSynopsis(ctx, s, e.titles[key].URL, desc)
				},
			})
		}
		out = append(out, scenario{
			name:  prefix + "rating",
			needs: []string{key},
			run: func(ctx context.Context, s *scraping.Session, e *env) (string, error) {
				rating, err := sc.CheckRating(ctx, s, e.titles[key].URL)
				if err != nil {
					return "", err
				}
				return fmt.Sprintf("%g", rating), nil
			},
		})
		if actor := t.Actor.Name; actor != "" {
			out = append(out, scenario{
				name:  prefix + "main-actor",
				needs: []string{key},
				run: func(ctx context.Context, s *scraping.Session, e *env) (string, error) {
					return "", sc.CheckActor(ctx, s, e.titles[key].URL, actor)
				},
			})
		}
	}
	return out
}

func (r *Runner) reverseLookups() []scenario {
	sc := r.Scraper
	rl := r.Expectations.ReverseLookup
	var out []scenario
	for _, a := range r.Expectations.Actors {
		key := actorKey(a)
		out = append(out, scenario{
			name:  "reverse-lookup/" + a.Name,
			needs: []string{key},
			run: func(ctx context.Context, s *scraping.Session, e *env) (string, error) {
				return sc.ReverseLookup(ctx, s, e.actors[key], rl.Category, rl.Position)
			},
		})
	}
	return out
}
