package catalog

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

// Source is the interface that catalog data sources must implement.
// It is defined here so that source packages can depend on catalog types
// and register themselves without an import cycle.
type Source interface {
	// Name returns the source name (e.g., "steam", "mock").
	Name() string

	// ListApps returns every app the source knows about, in source order.
	ListApps(ctx context.Context) ([]AppStub, error)

	// FetchDetails returns the detail record of one app. A record the source
	// could not resolve is returned with Success false.
	FetchDetails(ctx context.Context, appID int) (*DetailRecord, error)

	// Heartbeat checks if the source is reachable.
	Heartbeat(ctx context.Context) error

	// Close cleans up source resources.
	Close() error
}

// SourceFactory is a function that creates a source instance.
type SourceFactory func(config SourceConfig, userAgent string) (Source, error)

// sourceRegistry holds registered source factories.
var sourceRegistry = struct {
	mu        sync.RWMutex
	factories map[string]SourceFactory
}{
	factories: make(map[string]SourceFactory),
}

// RegisterSource registers a source factory. Source packages call it from
// init, so importing a source package makes it selectable by name.
func RegisterSource(name string, factory SourceFactory) {
	sourceRegistry.mu.Lock()
	defer sourceRegistry.mu.Unlock()
	sourceRegistry.factories[name] = factory
}

// Sources returns the registered source names, sorted.
func Sources() []string {
	sourceRegistry.mu.RLock()
	defer sourceRegistry.mu.RUnlock()

	names := make([]string, 0, len(sourceRegistry.factories))
	for name := range sourceRegistry.factories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func newSource(config SourceConfig, userAgent string) (Source, error) {
	sourceRegistry.mu.RLock()
	factory, ok := sourceRegistry.factories[config.Name]
	sourceRegistry.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, config.Name)
	}
	return factory(config, userAgent)
}
