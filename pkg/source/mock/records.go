package mock

import "github.com/josegonzalez/game-catalog/pkg/catalog"

func genres(names ...string) []catalog.Genre {
	out := make([]catalog.Genre, len(names))
	for i, n := range names {
		out[i] = catalog.Genre{Description: n}
	}
	return out
}

// DefaultRecords returns the storefront's sample catalog. Recommendation
// totals are chosen so that the derived ratings are 95, 92, 89, 96 and 95.
func DefaultRecords() []*catalog.DetailRecord {
	return []*catalog.DetailRecord{
		{
			Success:         true,
			Type:            "game",
			Name:            "Counter-Strike 2",
			SteamAppID:      730,
			IsFree:          true,
			HeaderImage:     "https://shared.akamai.steamstatic.com/store_item_assets/steam/apps/730/header.jpg",
			Developers:      []string{"Valve"},
			Publishers:      []string{"Valve"},
			Platforms:       &catalog.Platforms{Windows: true, Linux: true},
			Genres:          genres("Action", "Free to Play", "FPS"),
			Recommendations: &catalog.Recommendations{Total: 9500},
			ReleaseDate:     &catalog.ReleaseDate{Date: "21 Aug, 2012"},
		},
		{
			Success:         true,
			Type:            "game",
			Name:            "Dota 2",
			SteamAppID:      570,
			IsFree:          true,
			HeaderImage:     "https://cdn.akamai.steamstatic.com/steam/apps/570/header.jpg",
			Developers:      []string{"Valve"},
			Publishers:      []string{"Valve"},
			Platforms:       &catalog.Platforms{Windows: true, Mac: true, Linux: true},
			Genres:          genres("MOBA", "Free to Play", "Strategy"),
			Recommendations: &catalog.Recommendations{Total: 9200},
			ReleaseDate:     &catalog.ReleaseDate{Date: "9 Jul, 2013"},
		},
		{
			Success:         true,
			Type:            "game",
			Name:            "Grand Theft Auto V",
			SteamAppID:      271590,
			HeaderImage:     "https://cdn.akamai.steamstatic.com/steam/apps/271590/header.jpg",
			Developers:      []string{"Rockstar North"},
			Publishers:      []string{"Rockstar Games"},
			Platforms:       &catalog.Platforms{Windows: true},
			Genres:          genres("Action", "Adventure", "Open World"),
			Recommendations: &catalog.Recommendations{Total: 8900},
			ReleaseDate:     &catalog.ReleaseDate{Date: "14 Apr, 2015"},
			PriceOverview: &catalog.PriceOverview{
				Currency: "RUB", Initial: 199900, Final: 69900, DiscountPercent: 65,
			},
		},
		{
			Success:         true,
			Type:            "game",
			Name:            "Red Dead Redemption 2",
			SteamAppID:      1174180,
			HeaderImage:     "https://cdn.akamai.steamstatic.com/steam/apps/1174180/header.jpg",
			Developers:      []string{"Rockstar Games"},
			Publishers:      []string{"Rockstar Games"},
			Platforms:       &catalog.Platforms{Windows: true},
			Genres:          genres("Action", "Adventure", "Open World", "Western"),
			Recommendations: &catalog.Recommendations{Total: 9600},
			ReleaseDate:     &catalog.ReleaseDate{Date: "5 Dec, 2019"},
			PriceOverview: &catalog.PriceOverview{
				Currency: "RUB", Initial: 249900, Final: 124900, DiscountPercent: 50,
			},
		},
		{
			Success:         true,
			Type:            "game",
			Name:            "Metro Exodus - Gold Edition",
			SteamAppID:      1172380,
			HeaderImage:     "https://cdn.akamai.steamstatic.com/steam/apps/1172380/header.jpg",
			Developers:      []string{"4A Games"},
			Publishers:      []string{"Deep Silver"},
			Platforms:       &catalog.Platforms{Windows: true, Mac: true, Linux: true},
			Genres:          genres("Action", "FPS", "Survival", "Post-apocalyptic"),
			Recommendations: &catalog.Recommendations{Total: 9500},
			ReleaseDate:     &catalog.ReleaseDate{Date: "14 Feb, 2019"},
			PriceOverview: &catalog.PriceOverview{
				Currency: "RUB", Initial: 299900, Final: 49900, DiscountPercent: 83,
			},
		},
	}
}
