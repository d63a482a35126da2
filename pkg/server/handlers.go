package server

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/josegonzalez/game-catalog/pkg/catalog"
)

// ParseFilterSpec builds a filter spec from query parameters:
// q, genres, platforms, price_min, price_max, discount, sort, page, limit.
// Lists are comma separated. Missing parameters take their defaults.
func ParseFilterSpec(c *gin.Context) (catalog.FilterSpec, error) {
	spec := catalog.DefaultFilterSpec()
	spec.SearchQuery = strings.TrimSpace(c.Query("q"))
	spec.Genres = splitList(c.Query("genres"))
	spec.Platforms = splitList(c.Query("platforms"))

	if v := c.Query("sort"); v != "" {
		spec.SortBy = catalog.SortBy(v)
	}

	var err error
	if spec.Page, err = intParam(c, "page", spec.Page); err != nil {
		return spec, err
	}
	if spec.Limit, err = intParam(c, "limit", spec.Limit); err != nil {
		return spec, err
	}

	if v := c.Query("discount"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return spec, &catalog.FilterError{Field: "onlyDiscount", Details: fmt.Sprintf("not a boolean: %q", v)}
		}
		spec.OnlyDiscount = b
	}

	_, hasMin := c.GetQuery("price_min")
	_, hasMax := c.GetQuery("price_max")
	if hasMin || hasMax {
		lo, err := intParam(c, "price_min", 0)
		if err != nil {
			return spec, err
		}
		hi, err := intParam(c, "price_max", math.MaxInt)
		if err != nil {
			return spec, err
		}
		spec.PriceRange = &catalog.PriceRange{Min: lo, Max: hi}
	}

	return spec, spec.Validate()
}

func intParam(c *gin.Context, name string, def int) (int, error) {
	v := c.Query(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, &catalog.FilterError{Field: name, Details: fmt.Sprintf("not an integer: %q", v)}
	}
	return n, nil
}

func splitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (s *Server) handleCatalog(c *gin.Context) {
	spec, err := ParseFilterSpec(c)
	if err != nil {
		s.fail(c, err)
		return
	}

	page, err := s.catalog.QueryCatalog(c.Request.Context(), spec)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"games":         page.Games,
		"total":         page.Total,
		"filteredTotal": page.FilteredTotal,
		"totalPages":    page.TotalPages,
		"page":          spec.Page,
		"limit":         spec.Limit,
		"hasFilters":    spec.HasActiveFilters(),
	})
}

func (s *Server) handleGenres(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"genres": catalog.Genres})
}

func (s *Server) handleGame(c *gin.Context) {
	appID, err := strconv.Atoi(c.Param("appid"))
	if err != nil || appID <= 0 {
		s.fail(c, &catalog.FilterError{Field: "appid", Details: fmt.Sprintf("invalid app id %q", c.Param("appid"))})
		return
	}

	rec, err := s.catalog.GetGameDetails(c.Request.Context(), appID)
	if err != nil {
		s.fail(c, err)
		return
	}

	card := catalog.Normalize(rec)
	price := ""
	if card != nil {
		price = card.Price.Display()
	}

	c.JSON(http.StatusOK, gin.H{
		"game":  rec,
		"card":  card,
		"price": price,
	})
}

func (s *Server) handleSearch(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	limit, err := intParam(c, "limit", catalog.DefaultQuickSearchLimit)
	if err != nil {
		s.fail(c, err)
		return
	}

	games, err := s.catalog.QuickSearch(c.Request.Context(), query, limit)
	if err != nil {
		s.fail(c, err)
		return
	}

	suggestions := []string{}
	if len(games) == 0 && query != "" {
		names, err := s.catalog.Suggest(c.Request.Context(), query, limit)
		if err != nil {
			s.log.Warn("suggestions failed", "query", query, "error", err)
		} else {
			suggestions = names
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"query":       query,
		"games":       games,
		"suggestions": suggestions,
	})
}

func (s *Server) handleInvalidate(c *gin.Context) {
	if err := s.catalog.Invalidate(c.Request.Context()); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleCacheStats(c *gin.Context) {
	stats, ok, err := s.catalog.CacheStats(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	if !ok {
		c.JSON(http.StatusOK, gin.H{"available": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"available": true, "stats": stats})
}

func (s *Server) handleHealth(c *gin.Context) {
	status := s.catalog.Heartbeat(c.Request.Context())
	code := http.StatusOK
	if !status.Available {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, status)
}
