package catalog

import (
	"encoding/json"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josegonzalez/game-catalog/pkg/testutil"
)

func validRecord() *DetailRecord {
	return &DetailRecord{
		Success:     true,
		Name:        "Grand Theft Auto V",
		SteamAppID:  271590,
		HeaderImage: "https://cdn.akamai.steamstatic.com/steam/apps/271590/header.jpg",
		Platforms:   &Platforms{Windows: true},
	}
}

func TestNormalizeFixture(t *testing.T) {
	loader, err := testutil.NewLoaderFromRepo()
	require.NoError(t, err)

	var envelope map[string]struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, loader.FixtureJSON("appdetails_271590.json", &envelope))

	var rec DetailRecord
	require.NoError(t, json.Unmarshal(envelope["271590"].Data, &rec))
	rec.Success = envelope["271590"].Success

	card := Normalize(&rec)
	require.NotNil(t, card)
	assert.Equal(t, 271590, card.AppID)
	assert.Equal(t, "Grand Theft Auto V", card.Name)
	assert.Equal(t, []string{"Action", "Adventure"}, card.Genres)
	assert.True(t, card.Platforms.Windows)
	assert.False(t, card.Platforms.Mac)
	require.NotNil(t, card.Price.Final)
	assert.Equal(t, 69900, *card.Price.Final)
	assert.Equal(t, 199900, *card.Price.Initial)
	assert.Equal(t, 65, *card.Price.DiscountPercent)
	assert.Equal(t, "RUB", card.Price.Currency)
	assert.Equal(t, 18, int(rec.RequiredAge))
}

func TestNormalizeRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*DetailRecord)
	}{
		{"not successful", func(r *DetailRecord) { r.Success = false }},
		{"missing name", func(r *DetailRecord) { r.Name = "" }},
		{"missing header image", func(r *DetailRecord) { r.HeaderImage = "" }},
		{"missing platforms", func(r *DetailRecord) { r.Platforms = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := validRecord()
			tt.mutate(rec)
			if card := Normalize(rec); card != nil {
				t.Errorf("Normalize() = %+v, expected nil", card)
			}
		})
	}

	if Normalize(nil) != nil {
		t.Error("Normalize(nil) should be nil")
	}
}

func TestNormalizePricePrecedence(t *testing.T) {
	t.Run("free wins over price overview", func(t *testing.T) {
		rec := validRecord()
		rec.IsFree = true
		rec.PriceOverview = &PriceOverview{Currency: "RUB", Initial: 100, Final: 50, DiscountPercent: 50}

		card := Normalize(rec)
		require.NotNil(t, card)
		assert.True(t, card.Price.IsFree)
		assert.Nil(t, card.Price.Final)
		assert.Nil(t, card.Price.Initial)
		assert.Nil(t, card.Price.DiscountPercent)
	})

	t.Run("price overview", func(t *testing.T) {
		rec := validRecord()
		rec.PriceOverview = &PriceOverview{Currency: "RUB", Initial: 249900, Final: 124900, DiscountPercent: 50}

		card := Normalize(rec)
		require.NotNil(t, card)
		assert.False(t, card.Price.IsFree)
		assert.Equal(t, 124900, *card.Price.Final)
		assert.True(t, card.Price.Known())
		assert.True(t, card.Price.Discounted())
	})

	t.Run("unknown price", func(t *testing.T) {
		card := Normalize(validRecord())
		require.NotNil(t, card)
		assert.False(t, card.Price.IsFree)
		assert.Nil(t, card.Price.Final)
		assert.False(t, card.Price.Known())
		assert.Equal(t, 0, card.Price.Effective())
	})
}

func TestNormalizeGenresKeepOrderAndDuplicates(t *testing.T) {
	rec := validRecord()
	rec.Genres = []Genre{
		{ID: "25", Description: "Adventure"},
		{ID: "1", Description: "Action"},
		{ID: "25", Description: "Adventure"},
	}

	card := Normalize(rec)
	require.NotNil(t, card)
	want := []string{"Adventure", "Action", "Adventure"}
	if !slices.Equal(card.Genres, want) {
		t.Errorf("Genres = %v, want %v", card.Genres, want)
	}

	card = Normalize(validRecord())
	if card.Genres == nil || len(card.Genres) != 0 {
		t.Errorf("Genres = %v, want empty slice", card.Genres)
	}
}

func TestRating(t *testing.T) {
	tests := []struct {
		total    int
		expected int
	}{
		{0, 0},
		{49, 0},
		{50, 1},
		{8900, 89},
		{9549, 95},
		{10000, 100},
		{1634567, 100},
	}

	for _, tt := range tests {
		got := Rating(&Recommendations{Total: tt.total})
		if got == nil {
			t.Fatalf("Rating(%d) = nil", tt.total)
		}
		if *got != tt.expected {
			t.Errorf("Rating(%d) = %d, want %d", tt.total, *got, tt.expected)
		}
	}

	if Rating(nil) != nil {
		t.Error("Rating(nil) should be nil")
	}
}

func TestNormalizeRatingAbsentVersusZero(t *testing.T) {
	rec := validRecord()
	card := Normalize(rec)
	assert.Nil(t, card.Rating)

	rec.Recommendations = &Recommendations{Total: 0}
	card = Normalize(rec)
	require.NotNil(t, card.Rating)
	assert.Equal(t, 0, *card.Rating)

	data, err := json.Marshal(Normalize(validRecord()))
	require.NoError(t, err)
	assert.NotContains(t, string(data), `"rating"`)
}

func TestFlexInt(t *testing.T) {
	tests := []struct {
		input    string
		expected int
		wantErr  bool
	}{
		{`18`, 18, false},
		{`"18"`, 18, false},
		{`"16+"`, 16, false},
		{`""`, 0, false},
		{`0`, 0, false},
		{`"adult"`, 0, true},
		{`true`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var n FlexInt
			err := json.Unmarshal([]byte(tt.input), &n)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, int(n))
		})
	}
}
