package kinopoisk

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/drewfead/kpcheck/internal/scraping"
)

const maxGotRunes = 160

// MismatchError means the page was fetched and parsed but its content is not
// what the check expected.
type MismatchError struct {
	Check string
	Want  string
	Got   string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("%s: want %s, got %q", e.Check, e.Want, truncate(e.Got))
}

// ErrNoExpectation is returned when a check is given nothing to look for.
var ErrNoExpectation = errors.New("no expected text")

func expectContains(check, text string, wants ...string) error {
	if len(wants) == 0 {
		return fmt.Errorf("%s: %w", check, ErrNoExpectation)
	}
	for _, want := range wants {
		if scraping.NormalizeSpace(want) == "" {
			return fmt.Errorf("%s: %w", check, ErrNoExpectation)
		}
	}
	norm := scraping.NormalizeSpace(text)
	for _, want := range wants {
		if !strings.Contains(norm, scraping.NormalizeSpace(want)) {
			return &MismatchError{Check: check, Want: fmt.Sprintf("text containing %q", want), Got: norm}
		}
	}
	return nil
}

func expectContainsFold(check, text, want string) error {
	if !strings.Contains(strings.ToLower(text), strings.ToLower(want)) {
		return &MismatchError{Check: check, Want: fmt.Sprintf("text containing %q (any case)", want), Got: text}
	}
	return nil
}

// expectBetween checks lo < v < hi.
func expectBetween(check string, v, lo, hi float64) error {
	if v > lo && v < hi {
		return nil
	}
	return &MismatchError{
		Check: check,
		Want:  fmt.Sprintf("value strictly between %g and %g", lo, hi),
		Got:   fmt.Sprintf("%g", v),
	}
}

func expectCount(check string, got, want int) error {
	if got == want {
		return nil
	}
	return &MismatchError{Check: check, Want: fmt.Sprintf("%d items", want), Got: fmt.Sprintf("%d items", got)}
}

func truncate(s string) string {
	if utf8.RuneCountInString(s) <= maxGotRunes {
		return s
	}
	r := []rune(s)
	return string(r[:maxGotRunes]) + "…"
}
