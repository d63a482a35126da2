package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/josegonzalez/game-catalog/pkg/cache"
	"github.com/josegonzalez/game-catalog/pkg/internal/matching"
	"github.com/josegonzalez/game-catalog/pkg/logging"
	"github.com/josegonzalez/game-catalog/pkg/metrics"
	"github.com/josegonzalez/game-catalog/pkg/tracing"
)

// DefaultQuickSearchLimit is the number of quick search results when none is given.
const DefaultQuickSearchLimit = 10

const appListKey = "list"

// Client fetches the catalog window from a data source and answers catalog
// queries over it.
type Client struct {
	config Config
	source Source
	engine *Engine
	log    *slog.Logger

	mu      sync.RWMutex
	cache   cache.Cache
	apps    *cache.PrefixedCache
	details *cache.PrefixedCache
	pages   *cache.PrefixedCache
	closed  bool
}

// NewClient creates a new catalog client with the given options. The source
// named in the configuration must have been registered, usually by importing
// its package.
func NewClient(opts ...Option) (*Client, error) {
	config := DefaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	src, err := newSource(config.Source, config.UserAgent)
	if err != nil {
		return nil, err
	}

	c, err := newClient(config, src)
	if err != nil {
		_ = src.Close()
		return nil, err
	}
	return c, nil
}

// NewClientWithSource creates a client around an already constructed source.
// The source name in the configuration is ignored.
func NewClientWithSource(src Source, opts ...Option) (*Client, error) {
	config := DefaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	config.Source.Name = src.Name()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return newClient(config, src)
}

func newClient(config Config, src Source) (*Client, error) {
	c := &Client{
		config: config,
		source: src,
		engine: NewEngine(config.Locale),
		log:    logging.Component("catalog").With("source", src.Name()),
	}

	store, err := c.initCache()
	if err != nil {
		return nil, &CacheError{Op: "open", Err: err}
	}
	c.cache = store
	c.apps = cache.NewPrefixedCache(store, "apps")
	c.details = cache.NewPrefixedCache(store, "details")
	c.pages = cache.NewPrefixedCache(store, "pages")

	return c, nil
}

func (c *Client) initCache() (cache.Cache, error) {
	ttl := time.Duration(c.config.Cache.TTL) * time.Second

	switch c.config.Cache.Backend {
	case "memory":
		opts := []cache.MemoryCacheOption{cache.WithDefaultTTL(ttl)}
		if c.config.Cache.MaxSize > 0 {
			opts = append(opts, cache.WithMaxSize(c.config.Cache.MaxSize))
		}
		return cache.NewMemoryCache(opts...), nil
	case "redis":
		ctx, cancel := context.WithTimeout(context.Background(), c.config.Source.TimeoutDuration())
		defer cancel()
		return cache.NewRedisCache(ctx, c.config.Cache.ConnectionString, cache.WithRedisDefaultTTL(ttl))
	case "sqlite":
		return cache.NewSQLiteCache(c.config.Cache.ConnectionString, cache.WithSQLiteDefaultTTL(ttl))
	default:
		return cache.NewNullCache(), nil
	}
}

// Config returns the client configuration.
func (c *Client) Config() Config {
	return c.config
}

// Source returns the data source.
func (c *Client) Source() Source {
	return c.source
}

// Engine returns the engine used to answer queries.
func (c *Client) Engine() *Engine {
	return c.engine
}

// Cache returns the underlying cache backend.
func (c *Client) Cache() cache.Cache {
	return c.cache
}

// CacheStats returns the statistics of the cache backend. ok is false when
// the backend does not keep any.
func (c *Client) CacheStats(ctx context.Context) (stats cache.Stats, ok bool, err error) {
	provider, ok := c.cache.(cache.StatsProvider)
	if !ok {
		return cache.Stats{}, false, nil
	}
	stats, err = provider.Stats(ctx)
	if err != nil {
		return cache.Stats{}, true, &CacheError{Op: "stats", Err: err}
	}
	return stats, true, nil
}

// cacheGet reads a JSON entry. Cache failures are logged and reported as a miss.
func (c *Client) cacheGet(ctx context.Context, store *cache.PrefixedCache, key string, v any) bool {
	namespace := strings.TrimSuffix(store.Prefix(), ":")
	found, err := cache.GetJSON(ctx, store, key, v)
	if err != nil {
		metrics.RecordCacheLookup(namespace, "error")
		c.log.Warn("cache read failed", "error", &CacheError{Op: "get", Key: store.Prefix() + key, Err: err})
		return false
	}
	if found {
		metrics.RecordCacheLookup(namespace, "hit")
	} else {
		metrics.RecordCacheLookup(namespace, "miss")
	}
	return found
}

// cacheSet writes a JSON entry. Cache failures are logged and ignored.
func (c *Client) cacheSet(ctx context.Context, store *cache.PrefixedCache, key string, v any, ttl time.Duration) {
	if err := cache.SetJSON(ctx, store, key, v, ttl); err != nil {
		c.log.Warn("cache write failed", "error", &CacheError{Op: "set", Key: store.Prefix() + key, Err: err})
	}
}

// sourceError makes sure err is reported as a source failure.
func (c *Client) sourceError(op string, err error) error {
	if errors.Is(err, ErrSourceUnavailable) {
		return err
	}
	return NewSourceError(c.source.Name(), op, err)
}

// ListApps returns the full app list of the source. The list is cached for
// the configured app list TTL.
func (c *Client) ListApps(ctx context.Context) ([]AppStub, error) {
	var stubs []AppStub
	if c.cacheGet(ctx, c.apps, appListKey, &stubs) {
		return stubs, nil
	}

	stubs, err := c.source.ListApps(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		err = c.sourceError("list", err)
		c.log.Warn("listing apps failed", "error", err)
		return nil, err
	}

	c.cacheSet(ctx, c.apps, appListKey, stubs, time.Duration(c.config.Cache.AppListTTL)*time.Second)
	return stubs, nil
}

// FetchDetails returns the detail record of one app. Any failure, including
// an unsuccessful record, is returned as an *ItemError. Only successful
// records are cached.
func (c *Client) FetchDetails(ctx context.Context, appID int) (*DetailRecord, error) {
	key := strconv.Itoa(appID)

	var rec DetailRecord
	if c.cacheGet(ctx, c.details, key, &rec) {
		return &rec, nil
	}

	got, err := c.source.FetchDetails(ctx, appID)
	switch {
	case err != nil:
		return nil, &ItemError{AppID: appID, Err: err}
	case got == nil:
		return nil, &ItemError{AppID: appID, Err: ErrMalformedRecord}
	case !got.Success:
		return nil, &ItemError{AppID: appID, Err: ErrNotSuccessful}
	}

	if got.SteamAppID == 0 {
		got.SteamAppID = appID
	}
	c.cacheSet(ctx, c.details, key, got, 0)
	return got, nil
}

// Window returns the app ids the catalog considers: the pinned ids when
// configured, otherwise the first MaxApps ids of the app list.
func (c *Client) Window(ctx context.Context) ([]int, error) {
	if len(c.config.AppIDs) > 0 {
		return c.config.AppIDs, nil
	}

	stubs, err := c.ListApps(ctx)
	if err != nil {
		return nil, err
	}

	n := min(len(stubs), c.config.MaxApps)
	ids := make([]int, n)
	for i := 0; i < n; i++ {
		ids[i] = stubs[i].AppID
	}
	return ids, nil
}

// Cards fetches and normalizes the catalog window. Apps that fail to fetch
// or normalize are left out; the remaining cards keep window order.
func (c *Client) Cards(ctx context.Context) ([]GameCard, error) {
	ids, err := c.Window(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]*GameCard, len(ids))
	failures := make([]error, len(ids))

	g := new(errgroup.Group)
	g.SetLimit(c.config.MaxConcurrentRequests)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			if ctx.Err() != nil {
				failures[i] = ctx.Err()
				return nil
			}
			rec, err := c.FetchDetails(ctx, id)
			if err != nil {
				failures[i] = err
				return nil
			}
			if results[i] = Normalize(rec); results[i] == nil {
				failures[i] = &ItemError{AppID: id, Err: ErrMalformedRecord}
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cards := make([]GameCard, 0, len(ids))
	transport := 0
	for i, card := range results {
		if card != nil {
			cards = append(cards, *card)
			continue
		}
		metrics.UnresolvedItems.Inc()
		c.log.Debug("skipping unresolved app", "appid", ids[i], "error", failures[i])
		if errors.Is(failures[i], ErrSourceUnavailable) {
			transport++
		}
	}

	// A window where every request failed in transport means the source is down.
	if len(ids) > 0 && transport == len(ids) {
		return nil, c.sourceError("details", fmt.Errorf("all %d detail requests failed", len(ids)))
	}

	metrics.CatalogCards.Set(float64(len(cards)))
	return cards, nil
}

// QueryCatalog answers one catalog query. Pages are cached under the
// canonical key of the spec.
func (c *Client) QueryCatalog(ctx context.Context, spec FilterSpec) (page *CatalogPage, err error) {
	start := time.Now()
	result := "ok"
	ctx, span := tracing.StartSpan(ctx, "catalog.query",
		tracing.WithAttributes(attribute.String("catalog.spec", spec.Key())),
	)
	defer func() {
		if err != nil {
			result = "error"
			tracing.RecordError(span, err)
		}
		metrics.RecordQueryDuration(result, start)
		span.End()
	}()

	if err := spec.Validate(); err != nil {
		return nil, err
	}
	key := spec.Key()

	var cached CatalogPage
	if c.cacheGet(ctx, c.pages, key, &cached) {
		result = "cached"
		return &cached, nil
	}

	cards, err := c.Cards(ctx)
	if err != nil {
		return nil, err
	}

	out := c.engine.Apply(cards, spec)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tracing.AddSpanAttributes(span,
		attribute.Int("catalog.total", out.Total),
		attribute.Int("catalog.filtered_total", out.FilteredTotal),
	)
	c.cacheSet(ctx, c.pages, key, out, 0)
	return &out, nil
}

// GetGameDetails returns the full record of one app for a detail view.
// Unresolvable apps yield a *GameNotFoundError; transport failures a
// *SourceError.
func (c *Client) GetGameDetails(ctx context.Context, appID int) (*DetailRecord, error) {
	rec, err := c.FetchDetails(ctx, appID)
	if err == nil {
		return rec, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if errors.Is(err, ErrSourceUnavailable) || errors.Is(err, ErrSourceRateLimit) {
		var srcErr *SourceError
		if errors.As(err, &srcErr) {
			return nil, srcErr
		}
		return nil, c.sourceError("details", err)
	}

	c.log.Debug("game not found", "appid", appID, "error", err)
	return nil, &GameNotFoundError{AppID: appID}
}

// QuickSearch returns up to limit cards whose name contains query, in window
// order. A blank query returns no cards.
func (c *Client) QuickSearch(ctx context.Context, query string, limit int) ([]GameCard, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []GameCard{}, nil
	}
	if limit <= 0 {
		limit = DefaultQuickSearchLimit
	}

	cards, err := c.Cards(ctx)
	if err != nil {
		return nil, err
	}

	page := c.engine.Apply(cards, FilterSpec{SearchQuery: query, SortBy: SortPopular, Page: 1, Limit: limit})
	return page.Games, nil
}

// Suggest returns up to limit app names close to query, best first. With
// pinned app ids the candidates are the window's card names, otherwise the
// full app list.
func (c *Client) Suggest(ctx context.Context, query string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = DefaultQuickSearchLimit
	}

	var names []string
	if len(c.config.AppIDs) > 0 {
		cards, err := c.Cards(ctx)
		if err != nil {
			return nil, err
		}
		for _, card := range cards {
			names = append(names, card.Name)
		}
	} else {
		stubs, err := c.ListApps(ctx)
		if err != nil {
			return nil, err
		}
		for _, stub := range stubs {
			if stub.Name != "" {
				names = append(names, stub.Name)
			}
		}
	}

	matches := matching.FindAllMatches(query, names, matching.DefaultMinSimilarity, limit)
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.Name
	}
	return out, nil
}

// Invalidate drops every cached page, so the next query re-reads the window.
func (c *Client) Invalidate(ctx context.Context) error {
	if err := c.pages.Clear(ctx); err != nil {
		return &CacheError{Op: "invalidate", Key: c.pages.Prefix(), Err: err}
	}
	return nil
}

// InvalidateSpec drops the cached page of one spec.
func (c *Client) InvalidateSpec(ctx context.Context, spec FilterSpec) error {
	key := spec.Key()
	if _, err := c.pages.Delete(ctx, key); err != nil {
		return &CacheError{Op: "invalidate", Key: c.pages.Prefix() + key, Err: err}
	}
	return nil
}

// Heartbeat checks if the data source is accessible.
func (c *Client) Heartbeat(ctx context.Context) SourceStatus {
	status := SourceStatus{
		Name:      c.source.Name(),
		LastCheck: time.Now(),
	}
	if err := c.source.Heartbeat(ctx); err != nil {
		status.Error = err.Error()
	} else {
		status.Available = true
	}
	return status
}

// Close closes the source and the cache.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	var lastErr error
	if err := c.source.Close(); err != nil {
		lastErr = err
	}
	if c.cache != nil {
		if err := c.cache.Close(); err != nil {
			lastErr = err
		}
	}
	return lastErr
}
