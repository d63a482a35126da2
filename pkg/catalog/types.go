// Package catalog implements the storefront catalog pipeline: fetching app
// listings and detail records from a remote data source, normalizing them into
// display cards, and filtering, sorting and paginating the result.
package catalog

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/josegonzalez/game-catalog/pkg/platform"
)

// AppStub is a minimal identifier+name pair from the listing endpoint.
type AppStub struct {
	AppID int    `json:"appid"`
	Name  string `json:"name"`
}

// Platforms holds the operating system support flags of a game.
type Platforms struct {
	Windows bool `json:"windows"`
	Mac     bool `json:"mac"`
	Linux   bool `json:"linux"`
}

// Has reports whether the platform flag is set.
func (p Platforms) Has(slug platform.Slug) bool {
	switch slug {
	case platform.SlugWindows:
		return p.Windows
	case platform.SlugMac:
		return p.Mac
	case platform.SlugLinux:
		return p.Linux
	default:
		return false
	}
}

// Genre is a genre entry of a detail record.
type Genre struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}

// Category is a store category entry (single-player, achievements, ...).
type Category struct {
	ID          int    `json:"id"`
	Description string `json:"description"`
}

// Screenshot is a screenshot entry of a detail record.
type Screenshot struct {
	ID            int    `json:"id"`
	PathThumbnail string `json:"path_thumbnail"`
	PathFull      string `json:"path_full"`
}

// MovieSources holds the encoded variants of a trailer.
type MovieSources struct {
	Low string `json:"480"`
	Max string `json:"max"`
}

// Movie is a trailer entry of a detail record.
type Movie struct {
	ID        int          `json:"id"`
	Name      string       `json:"name"`
	Thumbnail string       `json:"thumbnail"`
	WebM      MovieSources `json:"webm"`
	MP4       MovieSources `json:"mp4"`
	Highlight bool         `json:"highlight"`
}

// Recommendations holds the recommendation count of a game.
type Recommendations struct {
	Total int `json:"total"`
}

// ReleaseDate is the release information of a game as reported by the store.
type ReleaseDate struct {
	ComingSoon bool   `json:"coming_soon"`
	Date       string `json:"date"`
}

// PriceOverview is the store price of a game, in minor currency units.
type PriceOverview struct {
	Currency        string `json:"currency"`
	Initial         int    `json:"initial"`
	Final           int    `json:"final"`
	DiscountPercent int    `json:"discount_percent"`
}

// FlexInt is an integer the store encodes either as a number or as a
// numeric string ("18").
type FlexInt int

// UnmarshalJSON accepts a JSON number or a quoted number. An empty string
// decodes to 0.
func (n *FlexInt) UnmarshalJSON(data []byte) error {
	var v json.Number
	if err := json.Unmarshal(data, &v); err == nil {
		i, err := strconv.Atoi(v.String())
		if err != nil {
			return err
		}
		*n = FlexInt(i)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "+"))
	if s == "" {
		*n = 0
		return nil
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	*n = FlexInt(i)
	return nil
}

// DetailRecord is the full per-game payload returned by the detail endpoint.
// Success mirrors the envelope flag of the source and is false when the
// source could not resolve the id.
type DetailRecord struct {
	Success bool `json:"success"`

	Type                string           `json:"type"`
	Name                string           `json:"name"`
	SteamAppID          int              `json:"steam_appid"`
	RequiredAge         FlexInt          `json:"required_age"`
	IsFree              bool             `json:"is_free"`
	DLC                 []int            `json:"dlc,omitempty"`
	DetailedDescription string           `json:"detailed_description"`
	AboutTheGame        string           `json:"about_the_game"`
	ShortDescription    string           `json:"short_description"`
	SupportedLanguages  string           `json:"supported_languages"`
	HeaderImage         string           `json:"header_image"`
	CapsuleImage        string           `json:"capsule_image"`
	Website             string           `json:"website"`
	Developers          []string         `json:"developers,omitempty"`
	Publishers          []string         `json:"publishers,omitempty"`
	Platforms           *Platforms       `json:"platforms,omitempty"`
	Categories          []Category       `json:"categories,omitempty"`
	Genres              []Genre          `json:"genres,omitempty"`
	Screenshots         []Screenshot     `json:"screenshots,omitempty"`
	Movies              []Movie          `json:"movies,omitempty"`
	Recommendations     *Recommendations `json:"recommendations,omitempty"`
	ReleaseDate         *ReleaseDate     `json:"release_date,omitempty"`
	PriceOverview       *PriceOverview   `json:"price_overview,omitempty"`
}

// Price is the display price of a card. When IsFree is true the numeric
// fields are nil. When IsFree is false and Final is nil the price is unknown.
type Price struct {
	IsFree          bool   `json:"is_free"`
	Initial         *int   `json:"initial,omitempty"`
	Final           *int   `json:"final,omitempty"`
	DiscountPercent *int   `json:"discount_percent,omitempty"`
	Currency        string `json:"currency,omitempty"`
}

// Known reports whether the price can be compared against a range.
func (p Price) Known() bool {
	return p.IsFree || p.Final != nil
}

// Effective returns the price used for range checks and sorting:
// 0 for free games, the final price otherwise, and 0 when unknown.
func (p Price) Effective() int {
	if p.IsFree || p.Final == nil {
		return 0
	}
	return *p.Final
}

// Discounted reports whether the card carries a positive discount.
func (p Price) Discounted() bool {
	return p.DiscountPercent != nil && *p.DiscountPercent > 0
}

// GameCard is the normalized, display-ready summary of one game.
type GameCard struct {
	AppID       int       `json:"appid"`
	Name        string    `json:"name"`
	HeaderImage string    `json:"header_image"`
	Price       Price     `json:"price"`
	Genres      []string  `json:"genres"`
	Platforms   Platforms `json:"platforms"`
	// Rating is 0-100 and nil when the source has no recommendations.
	Rating      *int   `json:"rating,omitempty"`
	ReleaseDate string `json:"release_date,omitempty"`
}

// SortBy is the ordering applied to a catalog page.
type SortBy string

const (
	SortPopular     SortBy = "popular"
	SortPriceAsc    SortBy = "price_asc"
	SortPriceDesc   SortBy = "price_desc"
	SortName        SortBy = "name"
	SortReleaseDate SortBy = "release_date"
)

// Valid reports whether s is a known sort mode.
func (s SortBy) Valid() bool {
	switch s {
	case SortPopular, SortPriceAsc, SortPriceDesc, SortName, SortReleaseDate:
		return true
	default:
		return false
	}
}

// PriceRange is an inclusive [Min, Max] range in minor currency units.
type PriceRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Contains reports whether v lies within the range, bounds included.
func (r PriceRange) Contains(v int) bool {
	return v >= r.Min && v <= r.Max
}

// CatalogPage is one page of the filtered, sorted catalog.
type CatalogPage struct {
	Games []GameCard `json:"games"`
	// Total is the size of the unfiltered card set.
	Total int `json:"total"`
	// FilteredTotal is the number of cards matching the filter, before slicing.
	FilteredTotal int `json:"filteredTotal"`
	// TotalPages is ceil(FilteredTotal / limit).
	TotalPages int `json:"totalPages"`
}

// SourceStatus is the health of the configured data source.
type SourceStatus struct {
	Name      string    `json:"name"`
	Available bool      `json:"available"`
	LastCheck time.Time `json:"last_check"`
	Error     string    `json:"error,omitempty"`
}
