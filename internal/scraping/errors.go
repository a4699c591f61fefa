package scraping

import "fmt"

// HTTPStatusError is returned by Session.Get when the site answers with a
// status other than 200.
type HTTPStatusError struct {
	URL        string
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("got status code %d from %s", e.StatusCode, e.URL)
}

// MissingElementError means the page has no element matching Selector.
type MissingElementError struct {
	URL      string
	Selector string
}

func (e *MissingElementError) Error() string {
	return fmt.Sprintf("no element matching %q on %s", e.Selector, e.URL)
}
