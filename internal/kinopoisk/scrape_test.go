package kinopoisk_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drewfead/kpcheck/internal/core"
	"github.com/drewfead/kpcheck/internal/kinopoisk"
	"github.com/drewfead/kpcheck/internal/kinopoisk/kinopoisktest"
	"github.com/drewfead/kpcheck/internal/scraping"
)

func goldenScraper(t *testing.T) *kinopoisk.Scraper {
	t.Helper()
	server := kinopoisktest.NewServer(t)
	return &kinopoisk.Scraper{BaseURL: server.URL}
}

func Test_Unit_URL(t *testing.T) {
	sc := &kinopoisk.Scraper{BaseURL: "https://example.test/"}

	tests := []struct {
		name   string
		ref    string
		expect string
	}{
		{name: "relative", ref: "/film/326/", expect: "https://example.test/film/326/"},
		{name: "no leading slash", ref: "name/1/", expect: "https://example.test/name/1/"},
		{name: "absolute", ref: "https://other.test/film/1/", expect: "https://other.test/film/1/"},
		{name: "protocol relative", ref: "//cdn.test/x", expect: "https://cdn.test/x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := sc.URL(tt.ref)
			require.NoError(t, err)
			assert.Equal(t, tt.expect, got)
		})
	}

	assert.Equal(t, "https://www.kinopoisk.ru/film/435/", (&kinopoisk.Scraper{}).FilmURL(435))
}

func Test_Unit_CheckHomeTitle(t *testing.T) {
	sc := goldenScraper(t)
	ctx := context.Background()

	assert.NoError(t, sc.CheckHomeTitle(ctx, scraping.NewSession(), "кинопоиск"))

	err := sc.CheckHomeTitle(ctx, scraping.NewSession(), "imdb")
	var mismatch *kinopoisk.MismatchError
	assert.True(t, errors.As(err, &mismatch))
}

func Test_Unit_CheckSearchTopResult(t *testing.T) {
	sc := goldenScraper(t)

	tests := []struct {
		name      string
		query     string
		want      string
		expectErr bool
	}{
		{name: "russian", query: "Матрица", want: "Матрица 1999"},
		{name: "english", query: "Matrix", want: "Матрица 1999"},
		{name: "series", query: "Отбросы", want: "Отбросы (сериал) 2009 – 2013"},
		{name: "wrong year", query: "Матрица", want: "Матрица 2003", expectErr: true},
		{name: "no results", query: "Абвагад ывфр", want: "Матрица", expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := sc.CheckSearchTopResult(context.Background(), scraping.NewSession(), tt.query, tt.want)
			if tt.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func Test_Unit_CheckSearchNotFound(t *testing.T) {
	sc := goldenScraper(t)
	ctx := context.Background()

	assert.NoError(t, sc.CheckSearchNotFound(ctx, scraping.NewSession(), "Абвагад ывфр", kinopoisktest.NotFoundMessage))
	assert.Error(t, sc.CheckSearchNotFound(ctx, scraping.NewSession(), "Матрица", kinopoisktest.NotFoundMessage))
}

func Test_Unit_TitleChecks(t *testing.T) {
	sc := goldenScraper(t)
	ctx := context.Background()
	s := scraping.NewSession()
	shutter := sc.FilmURL(397667)

	assert.NoError(t, sc.CheckHeader(ctx, s, shutter, "Остров проклятых", "Shutter Island"))
	assert.Error(t, sc.CheckHeader(ctx, s, shutter, "Остров проклятых", "The Matrix"))

	assert.NoError(t, sc.CheckSynopsis(ctx, s, shutter, "Два американских судебных пристава"))
	assert.Error(t, sc.CheckSynopsis(ctx, s, shutter, "Оказавшись в тюрьме"))

	rating, err := sc.CheckRating(ctx, s, shutter)
	require.NoError(t, err)
	assert.InDelta(t, 8.5, rating, 0.001)

	assert.NoError(t, sc.CheckReviewCount(ctx, s, shutter, 10))
	assert.Error(t, sc.CheckReviewCount(ctx, s, shutter, 11))

	assert.NoError(t, sc.CheckActor(ctx, s, shutter, "Леонардо ДиКаприо"))
	assert.Error(t, sc.CheckActor(ctx, s, shutter, "Киану Ривз"))
}

func Test_Unit_CheckRating_Unparseable(t *testing.T) {
	sc := goldenScraper(t)

	_, err := sc.CheckRating(context.Background(), scraping.NewSession(), sc.FilmURL(301))
	assert.ErrorContains(t, err, "parse rating")
}

func Test_Unit_CheckRating_Range(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = fmt.Fprintf(w, `<html><body><div id="block_rating"><span class="rating_ball">%s</span></div></body></html>`,
			r.URL.Query().Get("v"))
	}))
	t.Cleanup(server.Close)
	sc := &kinopoisk.Scraper{BaseURL: server.URL}

	tests := []struct {
		rating     string
		expectPass bool
	}{
		{rating: "0.0"},
		{rating: "10.0"},
		{rating: "10.5"},
		{rating: "-1"},
		{rating: "0.1", expectPass: true},
		{rating: "9.9", expectPass: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.rating, func(t *testing.T) {
			pageURL := server.URL + "/film/1/?" + url.Values{"v": {tt.rating}}.Encode()
			_, err := sc.CheckRating(context.Background(), scraping.NewSession(), pageURL)
			if tt.expectPass {
				assert.NoError(t, err)
				return
			}
			var mismatch *kinopoisk.MismatchError
			require.True(t, errors.As(err, &mismatch), "got %v", err)
			assert.Equal(t, "rating", mismatch.Check)
		})
	}
}

func Test_Unit_TitleChecks_NoExpectation(t *testing.T) {
	sc := goldenScraper(t)
	ctx := context.Background()
	s := scraping.NewSession()
	shutter := sc.FilmURL(397667)

	assert.ErrorIs(t, sc.CheckHeader(ctx, s, shutter), kinopoisk.ErrNoExpectation)
	assert.ErrorIs(t, sc.CheckHeader(ctx, s, shutter, "Остров проклятых", " "), kinopoisk.ErrNoExpectation)
	assert.ErrorIs(t, sc.CheckSynopsis(ctx, s, shutter, ""), kinopoisk.ErrNoExpectation)
	assert.ErrorIs(t, sc.CheckActor(ctx, s, shutter, ""), kinopoisk.ErrNoExpectation)
}

func Test_Unit_TitleChecks_MissingPage(t *testing.T) {
	sc := goldenScraper(t)

	err := sc.CheckHeader(context.Background(), scraping.NewSession(), sc.FilmURL(1), "x")
	var statusErr *scraping.HTTPStatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
}

func Test_Unit_Resolve(t *testing.T) {
	sc := goldenScraper(t)
	ctx := context.Background()

	actor, err := sc.ResolveActor(ctx, scraping.NewSession(), core.Actor{Name: "Леонардо ДиКаприо"})
	require.NoError(t, err)
	assert.True(t, actor.Resolved())
	assert.Equal(t, sc.BaseURL+"/name/37859/", actor.URL)

	film, err := sc.ResolveTitle(ctx, scraping.NewSession(), core.Title{
		Kind: core.Film,
		Name: "Остров проклятых",
	})
	require.NoError(t, err)
	assert.Equal(t, sc.BaseURL+"/film/397667/", film.URL)

	series, err := sc.ResolveTitle(ctx, scraping.NewSession(), core.Title{Kind: core.Series, Name: "Отбросы"})
	require.NoError(t, err)
	assert.Equal(t, sc.BaseURL+"/series/420454/", series.URL)
}

func Test_Unit_Resolve_Failures(t *testing.T) {
	sc := goldenScraper(t)
	ctx := context.Background()

	t.Run("wrong kind", func(t *testing.T) {
		_, err := sc.Resolve(ctx, scraping.NewSession(), "Матрица", "Матрица", core.Person)
		var missing *scraping.MissingElementError
		assert.True(t, errors.As(err, &missing))
	})

	t.Run("name not in top result", func(t *testing.T) {
		_, err := sc.Resolve(ctx, scraping.NewSession(), "Матрица", "Матрица: Перезагрузка", core.Film)
		var mismatch *kinopoisk.MismatchError
		assert.True(t, errors.As(err, &mismatch))
	})

	t.Run("nothing found", func(t *testing.T) {
		_, err := sc.ResolveActor(ctx, scraping.NewSession(), core.Actor{Name: "Абвагад ывфр"})
		var missing *scraping.MissingElementError
		assert.True(t, errors.As(err, &missing))
	})

	t.Run("unknown kind", func(t *testing.T) {
		_, err := sc.Resolve(ctx, scraping.NewSession(), "Матрица", "Матрица", core.Kind("cartoon"))
		assert.Error(t, err)
	})
}

func Test_Unit_ReverseLookup(t *testing.T) {
	sc := goldenScraper(t)
	ctx := context.Background()
	s := scraping.NewSession()

	actor, err := sc.ResolveActor(ctx, s, core.Actor{Name: "Леонардо ДиКаприо"})
	require.NoError(t, err)

	workURL, err := sc.ReverseLookup(ctx, s, actor, "actor", 3)
	require.NoError(t, err)
	assert.Equal(t, sc.FilmURL(397667), workURL)

	// fourth credit is a film whose cast does not list him
	_, err = sc.ReverseLookup(ctx, s, actor, "actor", 4)
	var mismatch *kinopoisk.MismatchError
	assert.True(t, errors.As(err, &mismatch))

	_, err = sc.ReverseLookup(ctx, s, actor, "actor", 9)
	assert.True(t, errors.As(err, &mismatch))

	_, err = sc.ReverseLookup(ctx, s, actor, "director", 1)
	var missing *scraping.MissingElementError
	assert.True(t, errors.As(err, &missing))

	_, err = sc.ReverseLookup(ctx, s, core.Actor{Name: "Леонардо ДиКаприо"}, "actor", 3)
	assert.ErrorIs(t, err, kinopoisk.ErrUnresolved)
}

func Test_Unit_MismatchError_Truncates(t *testing.T) {
	long := make([]rune, 500)
	for i := range long {
		long[i] = 'я'
	}
	err := &kinopoisk.MismatchError{Check: "header", Want: `text containing "x"`, Got: string(long)}
	assert.Less(t, len([]rune(err.Error())), 250)
}
