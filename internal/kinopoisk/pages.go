package kinopoisk

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gocolly/colly/v2"

	"github.com/drewfead/kpcheck/internal/core"
	"github.com/drewfead/kpcheck/internal/scraping"
)

type HomePage struct {
	*scraping.Page
}

func (p HomePage) Title() (string, error) {
	return childText(p.Page, homeTitleSelector)
}

type SearchPage struct {
	*scraping.Page
}

// TopResult is the container of the most relevant search hit.
func (p SearchPage) TopResult() (*colly.HTMLElement, error) {
	return scraping.First(p.Page, searchTopResultSelector)
}

func (p SearchPage) TopResultText() (string, error) {
	return childText(p.Page, searchTopResultSelector)
}

// TopResultLink returns the raw data-url of the kind-typed link inside the
// top result.
func (p SearchPage) TopResultLink(kind core.Kind) (string, error) {
	top, err := p.TopResult()
	if err != nil {
		return "", err
	}
	selector := fmt.Sprintf(searchResultLinkFormat, kind)
	link := strings.TrimSpace(top.ChildAttr(selector, searchResultLinkAttr))
	if link == "" {
		return "", &scraping.MissingElementError{
			URL:      p.URL.String(),
			Selector: searchTopResultSelector + " " + selector,
		}
	}
	return link, nil
}

func (p SearchPage) NotFound(message string) bool {
	return strings.Contains(scraping.NormalizeSpace(p.Text()), scraping.NormalizeSpace(message))
}

// TitlePage is the detail page of a film or a series.
type TitlePage struct {
	*scraping.Page
}

func (p TitlePage) Header() (string, error) {
	return childText(p.Page, titleHeaderSelector)
}

func (p TitlePage) Synopsis() (string, error) {
	return childText(p.Page, titleSynopsisSelector)
}

func (p TitlePage) Rating() (float64, error) {
	text, err := childText(p.Page, titleRatingSelector)
	if err != nil {
		return 0, err
	}
	rating, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, fmt.Errorf("parse rating %q: %w", text, err)
	}
	return rating, nil
}

func (p TitlePage) ReviewCount() int {
	return p.Doc.Find(titleReviewSelector).Length()
}

func (p TitlePage) Actors() (string, error) {
	return childText(p.Page, titleActorsSelector)
}

type PersonPage struct {
	*scraping.Page
}

// Filmography lists the work links of one category section, in page order.
func (p PersonPage) Filmography(category string) ([]string, error) {
	section := fmt.Sprintf(personFilmographyFormat, category)
	if _, err := scraping.First(p.Page, section); err != nil {
		return nil, err
	}
	return scraping.Collect(p.Page, section+" "+personWorkLinkSelector, func(e *colly.HTMLElement) (string, error) {
		href := strings.TrimSpace(e.Attr("href"))
		if href == "" {
			return "", fmt.Errorf("filmography item %d of %q has no link", e.Index+1, category)
		}
		return href, nil
	})
}

func childText(p *scraping.Page, selector string) (string, error) {
	e, err := scraping.First(p, selector)
	if err != nil {
		return "", err
	}
	return scraping.NormalizeSpace(e.Text), nil
}
