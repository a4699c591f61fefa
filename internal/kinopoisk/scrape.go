package kinopoisk

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/drewfead/kpcheck/internal/scraping"
)

const DefaultBaseURL = "https://www.kinopoisk.ru"

type Scraper struct {
	BaseURL string
}

// Base is the site address checks run against.
func (sc *Scraper) Base() string {
	u := strings.TrimSpace(sc.BaseURL)
	if u == "" {
		return DefaultBaseURL
	}
	return strings.TrimRight(u, "/")
}

// URL resolves ref, absolute or site-relative, against the base address.
func (sc *Scraper) URL(ref string) (string, error) {
	base, err := url.Parse(sc.Base() + "/")
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	r, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return "", fmt.Errorf("parse link %q: %w", ref, err)
	}
	return base.ResolveReference(r).String(), nil
}

func (sc *Scraper) FilmURL(id int) string {
	return sc.Base() + fmt.Sprintf(filmPathFormat, id)
}

func (sc *Scraper) Home(ctx context.Context, s *scraping.Session) (HomePage, error) {
	page, err := s.Get(ctx, sc.Base()+"/", nil)
	if err != nil {
		return HomePage{}, err
	}
	return HomePage{Page: page}, nil
}

func (sc *Scraper) Search(ctx context.Context, s *scraping.Session, query string) (SearchPage, error) {
	ctx, span := otel.Tracer("kinopoisk.scraper").Start(ctx, "search")
	defer span.End()
	span.SetAttributes(attribute.String("query", query))

	page, err := s.Get(ctx, sc.Base()+searchPath, url.Values{searchQueryParam: {query}})
	if err != nil {
		return SearchPage{}, fmt.Errorf("search %q: %w", query, err)
	}
	return SearchPage{Page: page}, nil
}

func (sc *Scraper) Title(ctx context.Context, s *scraping.Session, pageURL string) (TitlePage, error) {
	page, err := s.Get(ctx, pageURL, nil)
	if err != nil {
		return TitlePage{}, err
	}
	return TitlePage{Page: page}, nil
}

func (sc *Scraper) Person(ctx context.Context, s *scraping.Session, pageURL string) (PersonPage, error) {
	page, err := s.Get(ctx, pageURL, nil)
	if err != nil {
		return PersonPage{}, err
	}
	return PersonPage{Page: page}, nil
}
