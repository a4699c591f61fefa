package kinopoisk_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drewfead/kpcheck/internal/core"
	"github.com/drewfead/kpcheck/internal/fixtures"
	"github.com/drewfead/kpcheck/internal/kinopoisk"
	"github.com/drewfead/kpcheck/internal/scraping"
)

// These run against the real site and its content drifts; -short skips them.

func realScraper(t *testing.T) *kinopoisk.Scraper {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping live site test in short mode")
	}
	return &kinopoisk.Scraper{BaseURL: kinopoisk.DefaultBaseURL}
}

func Test_Real_HomeTitle(t *testing.T) {
	sc := realScraper(t)
	x := fixtures.Default()

	assert.NoError(t, sc.CheckHomeTitle(context.Background(), scraping.NewSession(), x.HomeTitle))
}

func Test_Real_Search(t *testing.T) {
	sc := realScraper(t)

	for _, c := range fixtures.Default().Search {
		c := c
		t.Run(c.Query, func(t *testing.T) {
			assert.NoError(t, sc.CheckSearchTopResult(context.Background(), scraping.NewSession(), c.Query, c.Want))
		})
	}
}

func Test_Real_SearchNotFound(t *testing.T) {
	sc := realScraper(t)
	nf := fixtures.Default().NotFound

	assert.NoError(t, sc.CheckSearchNotFound(context.Background(), scraping.NewSession(), nf.Query, nf.Want))
}

func Test_Real_FilmPages(t *testing.T) {
	sc := realScraper(t)
	films := fixtures.Default().Films
	ctx := context.Background()

	t.Run("header", func(t *testing.T) {
		assert.NoError(t, sc.CheckHeader(ctx, scraping.NewSession(), sc.FilmURL(films.Header.ID), films.Header.Names...))
	})
	t.Run("synopsis", func(t *testing.T) {
		assert.NoError(t, sc.CheckSynopsis(ctx, scraping.NewSession(), sc.FilmURL(films.Synopsis.ID), films.Synopsis.Description))
	})
	t.Run("rating", func(t *testing.T) {
		_, err := sc.CheckRating(ctx, scraping.NewSession(), sc.FilmURL(films.Rating.ID))
		assert.NoError(t, err)
	})
	t.Run("reviews", func(t *testing.T) {
		assert.NoError(t, sc.CheckReviewCount(ctx, scraping.NewSession(), sc.FilmURL(films.Reviews.ID), films.Reviews.Reviews))
	})
	t.Run("main actor", func(t *testing.T) {
		assert.NoError(t, sc.CheckActor(ctx, scraping.NewSession(), sc.FilmURL(films.MainActor.ID), films.MainActor.Actor))
	})
}

func Test_Real_ResolvedTitles(t *testing.T) {
	sc := realScraper(t)
	ctx := context.Background()

	for _, title := range fixtures.Default().Titles {
		title := title
		t.Run(title.Name, func(t *testing.T) {
			resolved, err := sc.ResolveTitle(ctx, scraping.NewSession(), title)
			require.NoError(t, err)
			require.True(t, resolved.Resolved())

			t.Run("header", func(t *testing.T) {
				assert.NoError(t, sc.CheckHeader(ctx, scraping.NewSession(), resolved.URL, resolved.Name, resolved.EnglishName))
			})
			t.Run("synopsis", func(t *testing.T) {
				assert.NoError(t, sc.CheckSynopsis(ctx, scraping.NewSession(), resolved.URL, resolved.Description))
			})
			t.Run("rating", func(t *testing.T) {
				_, err := sc.CheckRating(ctx, scraping.NewSession(), resolved.URL)
				assert.NoError(t, err)
			})
			t.Run("main actor", func(t *testing.T) {
				assert.NoError(t, sc.CheckActor(ctx, scraping.NewSession(), resolved.URL, resolved.Actor.Name))
			})
		})
	}
}

func Test_Real_ReverseLookup(t *testing.T) {
	sc := realScraper(t)
	x := fixtures.Default()
	ctx := context.Background()

	for _, actor := range x.Actors {
		actor := actor
		t.Run(actor.Name, func(t *testing.T) {
			s := scraping.NewSession()
			resolved, err := sc.ResolveActor(ctx, s, core.Actor{Name: actor.Name})
			require.NoError(t, err)

			workURL, err := sc.ReverseLookup(ctx, s, resolved, x.ReverseLookup.Category, x.ReverseLookup.Position)
			assert.NoError(t, err, workURL)
		})
	}
}
