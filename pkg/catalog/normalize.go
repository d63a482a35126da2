package catalog

import "math"

// Normalize maps a detail record to a game card. It returns nil when the
// source could not resolve the record or a required field (name, header
// image, platforms) is missing.
func Normalize(rec *DetailRecord) *GameCard {
	if rec == nil || !rec.Success {
		return nil
	}
	if rec.Name == "" || rec.HeaderImage == "" || rec.Platforms == nil {
		return nil
	}

	card := &GameCard{
		AppID:       rec.SteamAppID,
		Name:        rec.Name,
		HeaderImage: rec.HeaderImage,
		Price:       normalizePrice(rec),
		Genres:      make([]string, 0, len(rec.Genres)),
		Platforms:   *rec.Platforms,
		Rating:      Rating(rec.Recommendations),
	}

	for _, g := range rec.Genres {
		card.Genres = append(card.Genres, g.Description)
	}

	if rec.ReleaseDate != nil {
		card.ReleaseDate = rec.ReleaseDate.Date
	}

	return card
}

// normalizePrice applies the price precedence: is_free wins over
// price_overview, and a record with neither has an unknown price.
func normalizePrice(rec *DetailRecord) Price {
	if rec.IsFree {
		return Price{IsFree: true}
	}
	if po := rec.PriceOverview; po != nil {
		initial, final, discount := po.Initial, po.Final, po.DiscountPercent
		return Price{
			Initial:         &initial,
			Final:           &final,
			DiscountPercent: &discount,
			Currency:        po.Currency,
		}
	}
	return Price{IsFree: false}
}

// Rating derives a 0-100 rating from the recommendation count:
// min(100, round(total / 1000 * 10)). It returns nil when there are no
// recommendations, which is distinct from a rating of 0.
func Rating(rec *Recommendations) *int {
	if rec == nil {
		return nil
	}
	rating := int(math.Round(float64(rec.Total) / 1000 * 10))
	if rating > 100 {
		rating = 100
	}
	return &rating
}
