package kinopoisk

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/drewfead/kpcheck/internal/core"
	"github.com/drewfead/kpcheck/internal/scraping"
)

const (
	minRating = 0.0
	maxRating = 10.0
)

var ErrUnresolved = errors.New("entity has no resolved url")

func (sc *Scraper) CheckHomeTitle(ctx context.Context, s *scraping.Session, want string) error {
	page, err := sc.Home(ctx, s)
	if err != nil {
		return err
	}
	title, err := page.Title()
	if err != nil {
		return err
	}
	return expectContainsFold("home page title", title, want)
}

func (sc *Scraper) CheckSearchTopResult(ctx context.Context, s *scraping.Session, query, want string) error {
	page, err := sc.Search(ctx, s, query)
	if err != nil {
		return err
	}
	text, err := page.TopResultText()
	if err != nil {
		return err
	}
	return expectContains("top result", text, want)
}

func (sc *Scraper) CheckSearchNotFound(ctx context.Context, s *scraping.Session, query, message string) error {
	page, err := sc.Search(ctx, s, query)
	if err != nil {
		return err
	}
	if !page.NotFound(message) {
		return &MismatchError{
			Check: "search page",
			Want:  fmt.Sprintf("text containing %q", message),
			Got:   scraping.NormalizeSpace(page.Text()),
		}
	}
	return nil
}

// CheckHeader expects every name in the title header.
func (sc *Scraper) CheckHeader(ctx context.Context, s *scraping.Session, pageURL string, names ...string) error {
	page, err := sc.Title(ctx, s, pageURL)
	if err != nil {
		return err
	}
	header, err := page.Header()
	if err != nil {
		return err
	}
	return expectContains("header", header, names...)
}

func (sc *Scraper) CheckSynopsis(ctx context.Context, s *scraping.Session, pageURL, snippet string) error {
	page, err := sc.Title(ctx, s, pageURL)
	if err != nil {
		return err
	}
	synopsis, err := page.Synopsis()
	if err != nil {
		return err
	}
	return expectContains("synopsis", synopsis, snippet)
}

// CheckRating returns the parsed rating, which must lie strictly between 0 and 10.
func (sc *Scraper) CheckRating(ctx context.Context, s *scraping.Session, pageURL string) (float64, error) {
	page, err := sc.Title(ctx, s, pageURL)
	if err != nil {
		return 0, err
	}
	rating, err := page.Rating()
	if err != nil {
		return 0, err
	}
	return rating, expectBetween("rating", rating, minRating, maxRating)
}

func (sc *Scraper) CheckReviewCount(ctx context.Context, s *scraping.Session, pageURL string, want int) error {
	page, err := sc.Title(ctx, s, pageURL)
	if err != nil {
		return err
	}
	return expectCount("reviews", page.ReviewCount(), want)
}

func (sc *Scraper) CheckActor(ctx context.Context, s *scraping.Session, pageURL, actor string) error {
	page, err := sc.Title(ctx, s, pageURL)
	if err != nil {
		return err
	}
	actors, err := page.Actors()
	if err != nil {
		return err
	}
	return expectContains("actors", actors, actor)
}

// ReverseLookup opens the work at the 1-based position of the actor's
// filmography category and expects the actor in that work's cast. It returns
// the work's URL.
func (sc *Scraper) ReverseLookup(
	ctx context.Context,
	s *scraping.Session,
	actor core.Actor,
	category string,
	position int,
) (string, error) {
	ctx, span := otel.Tracer("kinopoisk.scraper").Start(ctx, "reverse_lookup")
	defer span.End()
	span.SetAttributes(
		attribute.String("actor", actor.Name),
		attribute.String("category", category),
		attribute.Int("position", position),
	)

	if !actor.Resolved() {
		return "", fmt.Errorf("%s: %w", actor.Name, ErrUnresolved)
	}
	if position < 1 {
		return "", fmt.Errorf("filmography position must be positive, got %d", position)
	}

	person, err := sc.Person(ctx, s, actor.URL)
	if err != nil {
		return "", err
	}
	works, err := person.Filmography(category)
	if err != nil {
		return "", err
	}
	if len(works) < position {
		return "", &MismatchError{
			Check: fmt.Sprintf("filmography %q", category),
			Want:  fmt.Sprintf("at least %d items", position),
			Got:   fmt.Sprintf("%d items", len(works)),
		}
	}

	workURL, err := sc.URL(works[position-1])
	if err != nil {
		return "", err
	}
	zap.L().Debug("reverse lookup", zap.String("actor", actor.Name), zap.String("work", workURL))

	if err := sc.CheckActor(ctx, s, workURL, actor.Name); err != nil {
		return workURL, fmt.Errorf("%s: %w", workURL, err)
	}
	return workURL, nil
}
