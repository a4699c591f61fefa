package kinopoisk

// Every markup marker the checks depend on. The site versions these, we
// don't; when the layout drifts this is the file to change.
const (
	searchPath       = "/index.php"
	searchQueryParam = "kp_query"
	filmPathFormat   = "/film/%d/"

	homeTitleSelector = "title"

	searchTopResultSelector = "div.element.most_wanted"
	// %s is the entity kind: person, film or series.
	searchResultLinkFormat = `[data-type="%s"][data-url]`
	searchResultLinkAttr   = "data-url"

	titleHeaderSelector   = "div.movie-info__header"
	titleSynopsisSelector = "div.film-synopsys"
	titleRatingSelector   = "span.rating_ball"
	titleReviewSelector   = "div.reviewItem.userReview"
	titleActorsSelector   = `li[itemprop="actors"]`

	// %s is the filmography category: actor, director, producer...
	personFilmographyFormat = `div.personPageItems[data-work-type="%s"]`
	personWorkLinkSelector  = "div.item div.name a"
)
