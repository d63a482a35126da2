// Package server exposes a catalog client over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/josegonzalez/game-catalog/pkg/cache"
	"github.com/josegonzalez/game-catalog/pkg/catalog"
	"github.com/josegonzalez/game-catalog/pkg/logging"
)

// Catalog is the part of *catalog.Client the server needs.
type Catalog interface {
	QueryCatalog(ctx context.Context, spec catalog.FilterSpec) (*catalog.CatalogPage, error)
	GetGameDetails(ctx context.Context, appID int) (*catalog.DetailRecord, error)
	QuickSearch(ctx context.Context, query string, limit int) ([]catalog.GameCard, error)
	Suggest(ctx context.Context, query string, limit int) ([]string, error)
	Invalidate(ctx context.Context) error
	Heartbeat(ctx context.Context) catalog.SourceStatus
	CacheStats(ctx context.Context) (cache.Stats, bool, error)
}

// Server routes HTTP requests to a catalog.
type Server struct {
	catalog Catalog
	log     *slog.Logger
	router  *gin.Engine
}

// New creates a server for c.
func New(c Catalog) *Server {
	s := &Server{
		catalog: c,
		log:     logging.Component("http"),
		router:  gin.New(),
	}
	s.router.Use(gin.Recovery(), RequestID(), Logger(s.log))
	s.routes()
	return s
}

func (s *Server) routes() {
	api := s.router.Group("/api")
	api.GET("/catalog", s.handleCatalog)
	api.GET("/genres", s.handleGenres)
	api.GET("/games/:appid", s.handleGame)
	api.GET("/search", s.handleSearch)
	api.GET("/cache/stats", s.handleCacheStats)
	api.POST("/cache/invalidate", s.handleInvalidate)

	s.router.GET("/health", s.handleHealth)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// statusFor maps catalog errors to HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, catalog.ErrInvalidFilter):
		return http.StatusBadRequest
	case errors.Is(err, catalog.ErrGameNotFound):
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, catalog.ErrSourceUnavailable), errors.Is(err, catalog.ErrSourceRateLimit):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// fail writes an error response and records err for the request log.
func (s *Server) fail(c *gin.Context, err error) {
	status := statusFor(err)
	_ = c.Error(err)

	body := gin.H{
		"error":      err.Error(),
		"request_id": c.GetString(requestIDKey),
	}
	var filterErr *catalog.FilterError
	if errors.As(err, &filterErr) {
		body["field"] = filterErr.Field
	}
	c.AbortWithStatusJSON(status, body)
}
