package kinopoisk

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/drewfead/kpcheck/internal/core"
	"github.com/drewfead/kpcheck/internal/scraping"
)

// Resolve searches for query and turns the top result into an absolute
// detail-page URL. The top result must contain want and carry a link of the
// given kind.
func (sc *Scraper) Resolve(
	ctx context.Context,
	s *scraping.Session,
	query string,
	want string,
	kind core.Kind,
) (string, error) {
	ctx, span := otel.Tracer("kinopoisk.scraper").Start(ctx, "resolve")
	defer span.End()
	span.SetAttributes(attribute.String("query", query), attribute.String("kind", string(kind)))

	if !kind.Valid() {
		return "", fmt.Errorf("unknown kind %q", kind)
	}

	page, err := sc.Search(ctx, s, query)
	if err != nil {
		return "", err
	}
	text, err := page.TopResultText()
	if err != nil {
		return "", fmt.Errorf("resolve %q: %w", query, err)
	}
	if err := expectContains("top result", text, want); err != nil {
		return "", fmt.Errorf("resolve %q: %w", query, err)
	}
	link, err := page.TopResultLink(kind)
	if err != nil {
		return "", fmt.Errorf("resolve %q: %w", query, err)
	}
	resolved, err := sc.URL(link)
	if err != nil {
		return "", fmt.Errorf("resolve %q: %w", query, err)
	}

	zap.L().Debug("resolved", zap.String("query", query), zap.String("kind", string(kind)), zap.String("url", resolved))
	return resolved, nil
}

func (sc *Scraper) ResolveActor(ctx context.Context, s *scraping.Session, a core.Actor) (core.Actor, error) {
	u, err := sc.Resolve(ctx, s, a.Name, a.Name, core.Person)
	if err != nil {
		return core.Actor{}, err
	}
	a.URL = u
	return a, nil
}

func (sc *Scraper) ResolveTitle(ctx context.Context, s *scraping.Session, t core.Title) (core.Title, error) {
	u, err := sc.Resolve(ctx, s, t.Name, t.Name, t.Kind)
	if err != nil {
		return core.Title{}, err
	}
	t.URL = u
	return t, nil
}
