package catalog

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/josegonzalez/game-catalog/pkg/platform"
)

// DefaultLimit is the page size used when none is given.
const DefaultLimit = 20

// Genres is the list of genres offered by the storefront's filter form.
var Genres = []string{
	"Action",
	"Adventure",
	"RPG",
	"Strategy",
	"Simulation",
	"Sports",
	"Racing",
	"FPS",
	"MMO",
	"Puzzle",
	"Horror",
	"Indie",
	"Free To Play",
}

// FilterSpec is the declarative query issued by a presentation layer.
// It is consumed read-only by the engine.
type FilterSpec struct {
	// PriceRange restricts the effective price, nil means no restriction
	PriceRange *PriceRange `json:"priceRange"`
	// Genres matches cards having at least one of these genres
	Genres []string `json:"genres"`
	// Platforms matches cards supporting at least one of these platforms
	Platforms []string `json:"platforms"`
	// SearchQuery is a case-insensitive substring of the name
	SearchQuery string `json:"searchQuery"`
	// OnlyDiscount keeps only discounted cards
	OnlyDiscount bool `json:"onlyDiscount"`
	// SortBy is the ordering of the result
	SortBy SortBy `json:"sortBy"`
	// Page is 1-based
	Page int `json:"page"`
	// Limit is the page size
	Limit int `json:"limit"`
}

// DefaultFilterSpec returns the spec of an unfiltered first page.
func DefaultFilterSpec() FilterSpec {
	return FilterSpec{
		Genres:    []string{},
		Platforms: []string{},
		SortBy:    SortPopular,
		Page:      1,
		Limit:     DefaultLimit,
	}
}

// HasActiveFilters reports whether any filtering clause is active.
// Sorting and pagination are not filters.
func (f FilterSpec) HasActiveFilters() bool {
	return len(f.Genres) > 0 ||
		len(f.Platforms) > 0 ||
		strings.TrimSpace(f.SearchQuery) != "" ||
		f.OnlyDiscount ||
		f.PriceRange != nil
}

// Reset returns the spec with every filter cleared and the first page
// selected. The page size is kept.
func (f FilterSpec) Reset() FilterSpec {
	reset := DefaultFilterSpec()
	if f.Limit > 0 {
		reset.Limit = f.Limit
	}
	return reset
}

// WithPage returns a copy of the spec pointing at another page.
func (f FilterSpec) WithPage(page int) FilterSpec {
	f.Page = page
	return f
}

// Validate checks the spec invariants.
func (f FilterSpec) Validate() error {
	if f.Page < 1 {
		return &FilterError{Field: "page", Details: fmt.Sprintf("must be >= 1, got %d", f.Page)}
	}
	if f.Limit < 1 {
		return &FilterError{Field: "limit", Details: fmt.Sprintf("must be > 0, got %d", f.Limit)}
	}
	if f.SortBy != "" && !f.SortBy.Valid() {
		return &FilterError{Field: "sortBy", Details: fmt.Sprintf("unknown sort mode %q", f.SortBy)}
	}
	if f.PriceRange != nil && f.PriceRange.Min > f.PriceRange.Max {
		return &FilterError{
			Field:   "priceRange",
			Details: fmt.Sprintf("min %d is greater than max %d", f.PriceRange.Min, f.PriceRange.Max),
		}
	}
	for _, name := range f.Platforms {
		if _, ok := platform.Parse(name); !ok {
			return &FilterError{Field: "platforms", Details: fmt.Sprintf("unknown platform %q", name)}
		}
	}
	return nil
}

// Key returns the canonical cache key of the spec. Every field takes part,
// so any change to the spec yields a different key.
func (f FilterSpec) Key() string {
	var b strings.Builder
	b.WriteString("q=")
	b.WriteString(strconv.Quote(f.SearchQuery))
	b.WriteString("|price=")
	if f.PriceRange != nil {
		fmt.Fprintf(&b, "%d-%d", f.PriceRange.Min, f.PriceRange.Max)
	} else {
		b.WriteString("any")
	}
	b.WriteString("|genres=")
	b.WriteString(joinQuoted(f.Genres))
	b.WriteString("|platforms=")
	b.WriteString(joinQuoted(f.Platforms))
	fmt.Fprintf(&b, "|discount=%t|sort=%s|page=%d|limit=%d", f.OnlyDiscount, f.SortBy, f.Page, f.Limit)
	return b.String()
}

func joinQuoted(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = strconv.Quote(v)
	}
	return strings.Join(quoted, ",")
}
