package catalog

import (
	"cmp"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/josegonzalez/game-catalog/pkg/platform"
)

// Engine filters, sorts and paginates a set of game cards. It holds no state
// besides the locale and is safe for concurrent use.
type Engine struct {
	locale language.Tag
}

// NewEngine creates an engine comparing names under the given BCP 47 locale.
// An empty or unparsable locale falls back to English.
func NewEngine(locale string) *Engine {
	tag, err := language.Parse(locale)
	if err != nil || locale == "" {
		tag = language.English
	}
	return &Engine{locale: tag}
}

// Locale returns the locale used for name ordering.
func (e *Engine) Locale() language.Tag {
	return e.locale
}

// Apply runs the filter, sort and paginate stages over cards. The input is
// not modified and every call returns a freshly allocated page.
func (e *Engine) Apply(cards []GameCard, spec FilterSpec) CatalogPage {
	if spec.Page < 1 {
		spec.Page = 1
	}
	if spec.Limit < 1 {
		spec.Limit = DefaultLimit
	}

	filtered := e.filter(cards, spec)
	e.sort(filtered, spec.SortBy)

	totalPages := len(filtered) / spec.Limit
	if len(filtered)%spec.Limit != 0 {
		totalPages++
	}

	page := CatalogPage{
		Games:         paginate(filtered, spec.Page, spec.Limit, totalPages),
		Total:         len(cards),
		FilteredTotal: len(filtered),
		TotalPages:    totalPages,
	}
	return page
}

// Apply runs the engine with the default locale.
func Apply(cards []GameCard, spec FilterSpec) CatalogPage {
	return NewEngine("").Apply(cards, spec)
}

// predicate is one AND-ed clause of the filter.
type predicate func(card *GameCard) bool

func (e *Engine) predicates(spec FilterSpec) []predicate {
	var preds []predicate

	if query := strings.TrimSpace(spec.SearchQuery); query != "" {
		// Casers are stateful, so each Apply call gets its own.
		folder := cases.Fold()
		needle := folder.String(query)
		preds = append(preds, func(card *GameCard) bool {
			return strings.Contains(folder.String(card.Name), needle)
		})
	}

	if r := spec.PriceRange; r != nil {
		preds = append(preds, func(card *GameCard) bool {
			if !card.Price.Known() {
				return false
			}
			return r.Contains(card.Price.Effective())
		})
	}

	if len(spec.Genres) > 0 {
		wanted := make(map[string]struct{}, len(spec.Genres))
		for _, g := range spec.Genres {
			wanted[g] = struct{}{}
		}
		preds = append(preds, func(card *GameCard) bool {
			for _, g := range card.Genres {
				if _, ok := wanted[g]; ok {
					return true
				}
			}
			return false
		})
	}

	if len(spec.Platforms) > 0 {
		slugs := make([]platform.Slug, 0, len(spec.Platforms))
		for _, name := range spec.Platforms {
			if slug, ok := platform.Parse(name); ok {
				slugs = append(slugs, slug)
			}
		}
		preds = append(preds, func(card *GameCard) bool {
			for _, slug := range slugs {
				if card.Platforms.Has(slug) {
					return true
				}
			}
			return false
		})
	}

	if spec.OnlyDiscount {
		preds = append(preds, func(card *GameCard) bool {
			return card.Price.Discounted()
		})
	}

	return preds
}

func (e *Engine) filter(cards []GameCard, spec FilterSpec) []GameCard {
	preds := e.predicates(spec)
	out := make([]GameCard, 0, len(cards))

next:
	for i := range cards {
		for _, keep := range preds {
			if !keep(&cards[i]) {
				continue next
			}
		}
		out = append(out, cards[i])
	}
	return out
}

// sort orders cards in place. Ties keep their relative order. Popular and
// release date orderings are not ranked yet and keep the source order.
func (e *Engine) sort(cards []GameCard, by SortBy) {
	switch by {
	case SortPriceAsc:
		slices.SortStableFunc(cards, func(a, b GameCard) int {
			return cmp.Compare(a.Price.Effective(), b.Price.Effective())
		})
	case SortPriceDesc:
		slices.SortStableFunc(cards, func(a, b GameCard) int {
			return cmp.Compare(b.Price.Effective(), a.Price.Effective())
		})
	case SortName:
		col := collate.New(e.locale)
		slices.SortStableFunc(cards, func(a, b GameCard) int {
			return col.CompareString(a.Name, b.Name)
		})
	}
}

// paginate slices out one page. Pages past totalPages are empty; checking
// that first keeps (page-1)*limit from overflowing.
func paginate(cards []GameCard, page, limit, totalPages int) []GameCard {
	if page-1 >= totalPages {
		return []GameCard{}
	}
	start := (page - 1) * limit
	end := start + min(limit, len(cards)-start)

	games := make([]GameCard, end-start)
	copy(games, cards[start:end])
	return games
}
