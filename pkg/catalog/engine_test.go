package catalog

import (
	"math"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/josegonzalez/game-catalog/pkg/testutil"
)

func loadCards(t *testing.T) []GameCard {
	t.Helper()
	loader, err := testutil.NewLoaderFromRepo()
	if err != nil {
		t.Fatalf("Failed to create test data loader: %v", err)
	}
	var cards []GameCard
	if err := loader.FixtureJSON("cards.json", &cards); err != nil {
		t.Fatalf("Failed to load cards: %v", err)
	}
	return cards
}

func appIDs(cards []GameCard) []int {
	ids := make([]int, len(cards))
	for i, c := range cards {
		ids[i] = c.AppID
	}
	return ids
}

func TestEngineFromSharedData(t *testing.T) {
	loader, err := testutil.NewLoaderFromRepo()
	if err != nil {
		t.Fatalf("Failed to create test data loader: %v", err)
	}

	testCases, err := loader.GetTestCases("catalog", "engine")
	if err != nil {
		t.Fatalf("Failed to load test cases: %v", err)
	}

	cards := loadCards(t)
	engine := NewEngine("en")

	for _, tc := range testCases {
		t.Run(tc.ID, func(t *testing.T) {
			var spec FilterSpec
			if err := tc.DecodeInput(&spec); err != nil {
				t.Fatalf("Invalid input: %v", err)
			}

			var expected struct {
				Total         int   `json:"total"`
				FilteredTotal int   `json:"filtered_total"`
				TotalPages    int   `json:"total_pages"`
				AppIDs        []int `json:"app_ids"`
			}
			if err := tc.DecodeExpected(&expected); err != nil {
				t.Fatalf("Invalid expected: %v", err)
			}

			page := engine.Apply(cards, spec)

			if page.Total != expected.Total {
				t.Errorf("Total = %d, expected %d", page.Total, expected.Total)
			}
			if page.FilteredTotal != expected.FilteredTotal {
				t.Errorf("FilteredTotal = %d, expected %d", page.FilteredTotal, expected.FilteredTotal)
			}
			if page.TotalPages != expected.TotalPages {
				t.Errorf("TotalPages = %d, expected %d", page.TotalPages, expected.TotalPages)
			}
			if page.Games == nil {
				t.Fatal("Games should never be nil")
			}
			if got := appIDs(page.Games); !slices.Equal(got, expected.AppIDs) {
				t.Errorf("games = %v, expected %v", got, expected.AppIDs)
			}
		})
	}
}

func TestEngineScenarios(t *testing.T) {
	cards := loadCards(t)[:5]

	t.Run("only discount", func(t *testing.T) {
		spec := DefaultFilterSpec()
		spec.OnlyDiscount = true
		page := Apply(cards, spec)
		if page.FilteredTotal != 2 {
			t.Errorf("FilteredTotal = %d, expected 2", page.FilteredTotal)
		}
	})

	t.Run("free card outside price range", func(t *testing.T) {
		spec := DefaultFilterSpec()
		spec.PriceRange = &PriceRange{Min: 500, Max: 150000}
		page := Apply(cards, spec)
		for _, g := range page.Games {
			if g.Price.IsFree {
				t.Errorf("free card %d should be excluded", g.AppID)
			}
		}
	})

	t.Run("case insensitive search", func(t *testing.T) {
		spec := DefaultFilterSpec()
		spec.SearchQuery = "dota"
		page := Apply(cards, spec)
		if len(page.Games) != 1 || page.Games[0].Name != "Dota 2" {
			t.Errorf("games = %v, expected Dota 2", appIDs(page.Games))
		}
	})

	t.Run("second page of three", func(t *testing.T) {
		spec := DefaultFilterSpec()
		spec.Platforms = []string{"linux"}
		spec.Page = 2
		spec.Limit = 2
		page := Apply(cards, spec)
		if page.FilteredTotal != 3 {
			t.Fatalf("FilteredTotal = %d, expected 3", page.FilteredTotal)
		}
		if len(page.Games) != 1 {
			t.Errorf("len(Games) = %d, expected 1", len(page.Games))
		}
	})
}

func TestEngineDoesNotMutateInput(t *testing.T) {
	cards := loadCards(t)
	before := appIDs(cards)

	spec := DefaultFilterSpec()
	spec.SortBy = SortPriceDesc
	page := Apply(cards, spec)

	if got := appIDs(cards); !slices.Equal(got, before) {
		t.Errorf("input reordered: %v, expected %v", got, before)
	}

	page.Games[0].Name = "changed"
	for _, c := range cards {
		if c.Name == "changed" {
			t.Fatal("page shares storage with the input")
		}
	}
}

func TestEngineUnknownPriceSortsAsZero(t *testing.T) {
	final := 100
	cards := []GameCard{
		{AppID: 1, Name: "Priced", Price: Price{Final: &final}},
		{AppID: 2, Name: "Unknown"},
	}

	spec := DefaultFilterSpec()
	spec.SortBy = SortPriceAsc
	page := Apply(cards, spec)
	if got := appIDs(page.Games); !slices.Equal(got, []int{2, 1}) {
		t.Errorf("games = %v, expected [2 1]", got)
	}

	spec.PriceRange = &PriceRange{Min: 0, Max: 1000}
	page = Apply(cards, spec)
	if got := appIDs(page.Games); !slices.Equal(got, []int{1}) {
		t.Errorf("games = %v, expected [1]", got)
	}
}

func TestEngineNameCollation(t *testing.T) {
	cards := []GameCard{
		{AppID: 1, Name: "b"},
		{AppID: 2, Name: "Á"},
		{AppID: 3, Name: "a"},
	}

	spec := DefaultFilterSpec()
	spec.SortBy = SortName
	page := NewEngine("en").Apply(cards, spec)
	if got := appIDs(page.Games); !slices.Equal(got, []int{3, 2, 1}) {
		t.Errorf("games = %v, expected [3 2 1]", got)
	}
}

func TestEngineUnknownPlatformMatchesNothing(t *testing.T) {
	cards := loadCards(t)
	spec := DefaultFilterSpec()
	spec.Platforms = []string{"amiga"}
	page := Apply(cards, spec)
	if page.FilteredTotal != 0 {
		t.Errorf("FilteredTotal = %d, expected 0", page.FilteredTotal)
	}
}

func TestNewEngineLocale(t *testing.T) {
	if got := NewEngine("").Locale().String(); got != "en" {
		t.Errorf("empty locale = %q, expected en", got)
	}
	if got := NewEngine("not a locale!").Locale().String(); got != "en" {
		t.Errorf("bad locale = %q, expected en", got)
	}
	if got := NewEngine("ru").Locale().String(); got != "ru" {
		t.Errorf("ru locale = %q, expected ru", got)
	}
}

func TestEngineHugePageAndLimit(t *testing.T) {
	cards := loadCards(t)

	tests := []struct {
		name       string
		page       int
		limit      int
		games      int
		totalPages int
	}{
		{"huge page", math.MaxInt / 10, 20, 0, 1},
		{"max page", math.MaxInt, 2, 0, 3},
		{"max limit", 1, math.MaxInt, 6, 1},
		{"max page and limit", math.MaxInt, math.MaxInt, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := DefaultFilterSpec()
			spec.Page = tt.page
			spec.Limit = tt.limit

			page := Apply(cards, spec)
			if len(page.Games) != tt.games {
				t.Errorf("len(Games) = %d, expected %d", len(page.Games), tt.games)
			}
			if page.Games == nil {
				t.Error("Games is nil, expected an empty slice")
			}
			if page.TotalPages != tt.totalPages {
				t.Errorf("TotalPages = %d, expected %d", page.TotalPages, tt.totalPages)
			}
			if page.FilteredTotal != len(cards) {
				t.Errorf("FilteredTotal = %d, expected %d", page.FilteredTotal, len(cards))
			}
		})
	}
}

func TestEngineBlankSearchQuery(t *testing.T) {
	cards := loadCards(t)
	spec := DefaultFilterSpec()
	spec.SearchQuery = "   "

	if spec.HasActiveFilters() {
		t.Error("HasActiveFilters() = true for a blank query")
	}
	page := Apply(cards, spec)
	if page.FilteredTotal != len(cards) {
		t.Errorf("FilteredTotal = %d, expected %d", page.FilteredTotal, len(cards))
	}

	spec.SearchQuery = "  dota "
	page = Apply(cards, spec)
	if got := appIDs(page.Games); !slices.Equal(got, []int{570}) {
		t.Errorf("padded query = %v, expected [570]", got)
	}
}

func TestEngineIsIdempotent(t *testing.T) {
	cards := loadCards(t)
	engine := NewEngine("en")

	specs := []FilterSpec{DefaultFilterSpec()}
	discounted := DefaultFilterSpec()
	discounted.OnlyDiscount = true
	discounted.SortBy = SortPriceDesc
	specs = append(specs, discounted)
	named := DefaultFilterSpec()
	named.SortBy = SortName
	named.Limit = 4
	specs = append(specs, named, named.WithPage(2))

	for _, spec := range specs {
		first := engine.Apply(cards, spec)
		second := engine.Apply(cards, spec)
		assert.Equal(t, first, second, "spec %s", spec.Key())
	}
}
