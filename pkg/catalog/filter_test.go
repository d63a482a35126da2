package catalog

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultFilterSpec(t *testing.T) {
	spec := DefaultFilterSpec()
	assert.Equal(t, 1, spec.Page)
	assert.Equal(t, DefaultLimit, spec.Limit)
	assert.Equal(t, SortPopular, spec.SortBy)
	assert.False(t, spec.HasActiveFilters())
	assert.NoError(t, spec.Validate())
}

func TestHasActiveFilters(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*FilterSpec)
		active bool
	}{
		{"sort only", func(s *FilterSpec) { s.SortBy = SortName }, false},
		{"page only", func(s *FilterSpec) { s.Page = 3 }, false},
		{"blank search", func(s *FilterSpec) { s.SearchQuery = "   " }, false},
		{"search", func(s *FilterSpec) { s.SearchQuery = "dota" }, true},
		{"genres", func(s *FilterSpec) { s.Genres = []string{"Action"} }, true},
		{"platforms", func(s *FilterSpec) { s.Platforms = []string{"mac"} }, true},
		{"discount", func(s *FilterSpec) { s.OnlyDiscount = true }, true},
		{"price range", func(s *FilterSpec) { s.PriceRange = &PriceRange{Max: 1000} }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := DefaultFilterSpec()
			tt.mutate(&spec)
			if got := spec.HasActiveFilters(); got != tt.active {
				t.Errorf("HasActiveFilters() = %v, want %v", got, tt.active)
			}
		})
	}
}

func TestFilterSpecReset(t *testing.T) {
	spec := FilterSpec{
		PriceRange:   &PriceRange{Min: 1, Max: 2},
		Genres:       []string{"Action"},
		SearchQuery:  "dota",
		OnlyDiscount: true,
		SortBy:       SortPriceAsc,
		Page:         4,
		Limit:        12,
	}

	reset := spec.Reset()
	assert.False(t, reset.HasActiveFilters())
	assert.Equal(t, 1, reset.Page)
	assert.Equal(t, 12, reset.Limit)
	assert.Equal(t, SortPopular, reset.SortBy)

	assert.Equal(t, DefaultLimit, FilterSpec{}.Reset().Limit)
}

func TestFilterSpecValidate(t *testing.T) {
	tests := []struct {
		name  string
		spec  FilterSpec
		field string
	}{
		{"zero page", FilterSpec{Page: 0, Limit: 10}, "page"},
		{"zero limit", FilterSpec{Page: 1, Limit: 0}, "limit"},
		{"unknown sort", FilterSpec{Page: 1, Limit: 10, SortBy: "rating"}, "sortBy"},
		{"inverted range", FilterSpec{Page: 1, Limit: 10, PriceRange: &PriceRange{Min: 10, Max: 1}}, "priceRange"},
		{"unknown platform", FilterSpec{Page: 1, Limit: 10, Platforms: []string{"amiga"}}, "platforms"},
		{"valid", FilterSpec{Page: 1, Limit: 10, Platforms: []string{"osx"}, SortBy: SortName}, ""},
		{"empty sort", FilterSpec{Page: 1, Limit: 10}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.spec.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}

			var filterErr *FilterError
			if !errors.As(err, &filterErr) {
				t.Fatalf("Validate() = %v, want *FilterError", err)
			}
			assert.Equal(t, tt.field, filterErr.Field)
			assert.ErrorIs(t, err, ErrInvalidFilter)
		})
	}
}

func TestFilterSpecKey(t *testing.T) {
	base := DefaultFilterSpec()
	key := base.Key()

	assert.Equal(t, key, DefaultFilterSpec().Key(), "equal specs share a key")

	variants := []func(*FilterSpec){
		func(s *FilterSpec) { s.Page = 2 },
		func(s *FilterSpec) { s.Limit = 21 },
		func(s *FilterSpec) { s.SortBy = SortName },
		func(s *FilterSpec) { s.SearchQuery = "dota" },
		func(s *FilterSpec) { s.OnlyDiscount = true },
		func(s *FilterSpec) { s.Genres = []string{"Action"} },
		func(s *FilterSpec) { s.Platforms = []string{"linux"} },
		func(s *FilterSpec) { s.PriceRange = &PriceRange{} },
	}

	seen := map[string]bool{key: true}
	for i, mutate := range variants {
		spec := DefaultFilterSpec()
		mutate(&spec)
		k := spec.Key()
		if seen[k] {
			t.Errorf("variant %d key %q collides", i, k)
		}
		seen[k] = true
	}

	a := FilterSpec{Genres: []string{"a,b"}}
	b := FilterSpec{Genres: []string{"a", "b"}}
	assert.NotEqual(t, a.Key(), b.Key())
}

func TestWithPage(t *testing.T) {
	spec := DefaultFilterSpec()
	next := spec.WithPage(3)
	assert.Equal(t, 3, next.Page)
	assert.Equal(t, 1, spec.Page)
}
