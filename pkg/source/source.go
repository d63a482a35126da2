// Package source provides the HTTP plumbing shared by catalog data sources.
package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"

	"github.com/josegonzalez/game-catalog/pkg/catalog"
	"github.com/josegonzalez/game-catalog/pkg/internal/normalization"
	"github.com/josegonzalez/game-catalog/pkg/metrics"
	"github.com/josegonzalez/game-catalog/pkg/tracing"
)

// maxBodySize bounds how much of a response body is read.
const maxBodySize = 64 << 20

// BaseSource provides common functionality for HTTP sources.
type BaseSource struct {
	name      string
	config    catalog.SourceConfig
	client    *http.Client
	userAgent string
	limiter   *rate.Limiter
}

// NewBaseSource creates a new BaseSource. Requests time out after the
// configured timeout and are rate limited when RateLimit is positive.
func NewBaseSource(name string, config catalog.SourceConfig, userAgent string) *BaseSource {
	s := &BaseSource{
		name:      name,
		config:    config,
		client:    &http.Client{Timeout: config.TimeoutDuration()},
		userAgent: userAgent,
	}
	if config.RateLimit > 0 {
		burst := max(1, int(config.RateLimit))
		s.limiter = rate.NewLimiter(rate.Limit(config.RateLimit), burst)
	}
	return s
}

// Name returns the source name.
func (s *BaseSource) Name() string {
	return s.name
}

// Config returns the source configuration.
func (s *BaseSource) Config() catalog.SourceConfig {
	return s.config
}

// SetHTTPClient replaces the HTTP client, e.g. with a test server client.
func (s *BaseSource) SetHTTPClient(client *http.Client) {
	s.client = client
}

// Get performs a GET request and returns the response body. The endpoint
// label is used for errors, metrics and spans.
//
// Transport failures and non-2xx statuses are returned as *catalog.SourceError;
// HTTP 429 is returned as *catalog.RateLimitError.
func (s *BaseSource) Get(ctx context.Context, endpoint, rawURL string, params url.Values) (body []byte, err error) {
	reqURL := rawURL
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	start := time.Now()
	status := "error"
	ctx, span := tracing.StartSpan(ctx, "source."+endpoint,
		tracing.WithAttributes(
			attribute.String("source.name", s.name),
			attribute.String("http.url", normalization.StripSensitiveQueryParams(reqURL)),
		),
	)
	defer func() {
		metrics.RecordSourceRequest(s.name, endpoint, status, start)
		if err != nil {
			tracing.RecordError(span, err)
		} else {
			tracing.SetSpanOK(span)
		}
		span.End()
	}()

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, catalog.NewSourceError(s.name, endpoint, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, catalog.NewSourceError(s.name, endpoint, err)
	}
	req.Header.Set("Accept", "application/json")
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, catalog.NewSourceError(s.name, endpoint, err)
	}
	defer resp.Body.Close()

	tracing.AddSpanAttributes(span, attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode == http.StatusTooManyRequests {
		status = "rate_limited"
		retryAfter, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
		return nil, &catalog.RateLimitError{Source: s.name, RetryAfter: retryAfter}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if resp.StatusCode == http.StatusNotFound {
			status = "not_found"
		}
		return nil, &catalog.SourceError{
			Source:  s.name,
			Op:      endpoint,
			Details: fmt.Sprintf("HTTP %d", resp.StatusCode),
		}
	}

	body, err = io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, catalog.NewSourceError(s.name, endpoint, err)
	}

	status = "ok"
	return body, nil
}

// Close releases idle connections.
func (s *BaseSource) Close() error {
	s.client.CloseIdleConnections()
	return nil
}
