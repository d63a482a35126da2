package catalog

import (
	"context"
	"log/slog"
	"sync"

	"github.com/josegonzalez/game-catalog/pkg/logging"
	"github.com/josegonzalez/game-catalog/pkg/metrics"
)

// Querier answers catalog queries. *Client implements it.
type Querier interface {
	QueryCatalog(ctx context.Context, spec FilterSpec) (*CatalogPage, error)
	InvalidateSpec(ctx context.Context, spec FilterSpec) error
}

// State is what a Feed publishes after every submission and completion.
type State struct {
	// Generation identifies the submission this state belongs to.
	Generation uint64 `json:"generation"`
	// Spec is the filter of that submission.
	Spec FilterSpec `json:"spec"`
	// Loading is true until the query of this generation completes.
	Loading bool `json:"loading"`
	// Page is the current page, or the last good page while loading or after a failure.
	Page *CatalogPage `json:"page,omitempty"`
	// Err is the failure of this generation's query, if any.
	Err error `json:"-"`
	// Stale is true when Page belongs to an earlier generation.
	Stale bool `json:"stale"`
}

// Feed runs catalog queries for a presentation layer with last-request-wins
// semantics: each Submit supersedes the previous one, cancels its query and
// discards its result if it still arrives.
type Feed struct {
	client Querier
	ctx    context.Context
	log    *slog.Logger

	mu      sync.Mutex
	gen     uint64
	cancel  context.CancelFunc
	state   State
	subs    map[int]chan State
	nextSub int
	closed  bool
	wg      sync.WaitGroup
}

// NewFeed creates a feed. Queries run under ctx; cancelling it stops the feed.
func NewFeed(ctx context.Context, client Querier) *Feed {
	return &Feed{
		client: client,
		ctx:    ctx,
		log:    logging.Component("feed"),
		subs:   make(map[int]chan State),
	}
}

// Submit starts a query for spec and returns its generation. Submitting
// after Close returns 0 and does nothing.
func (f *Feed) Submit(spec FilterSpec) uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return 0
	}

	prev := f.state
	if f.cancel != nil {
		f.cancel()
		if prev.Loading {
			metrics.SupersededQueries.Inc()
			f.log.Debug("query superseded", "generation", prev.Generation)
		}
	}

	f.gen++
	gen := f.gen
	ctx, cancel := context.WithCancel(f.ctx)
	f.cancel = cancel

	f.publish(State{
		Generation: gen,
		Spec:       spec,
		Loading:    true,
		Page:       prev.Page,
		Stale:      prev.Page != nil,
	})

	var superseded *FilterSpec
	if prev.Generation > 0 && prev.Spec.Key() != spec.Key() {
		superseded = &prev.Spec
	}

	f.wg.Add(1)
	go f.run(ctx, gen, spec, superseded)
	return gen
}

func (f *Feed) run(ctx context.Context, gen uint64, spec FilterSpec, superseded *FilterSpec) {
	defer f.wg.Done()

	if superseded != nil {
		if err := f.client.InvalidateSpec(ctx, *superseded); err != nil {
			f.log.Warn("invalidating superseded page failed", "error", err)
		}
	}

	page, err := f.client.QueryCatalog(ctx, spec)

	f.mu.Lock()
	defer f.mu.Unlock()

	if gen != f.gen || f.closed {
		f.log.Debug("discarding superseded result", "generation", gen, "current", f.gen)
		return
	}

	next := State{Generation: gen, Spec: spec}
	if err != nil {
		next.Err = err
		next.Page = f.state.Page
		next.Stale = next.Page != nil
		f.log.Warn("catalog query failed", "generation", gen, "error", err)
	} else {
		next.Page = page
	}
	f.publish(next)
}

// publish stores s and delivers it to every subscriber. A subscriber that
// has not consumed the previous state only sees the newest one. Callers
// must hold f.mu.
func (f *Feed) publish(s State) {
	f.state = s
	for _, ch := range f.subs {
		select {
		case ch <- s:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- s
		}
	}
}

// State returns the latest published state.
func (f *Feed) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Generation returns the generation of the latest submission.
func (f *Feed) Generation() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.gen
}

// Subscribe returns a channel receiving every published state and a function
// that unsubscribes. The channel is closed on unsubscribe or Close.
func (f *Feed) Subscribe() (<-chan State, func()) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ch := make(chan State, 1)
	if f.closed {
		close(ch)
		return ch, func() {}
	}

	id := f.nextSub
	f.nextSub++
	f.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			if sub, ok := f.subs[id]; ok {
				delete(f.subs, id)
				close(sub)
			}
		})
	}
}

// Wait blocks until every started query has finished.
func (f *Feed) Wait() {
	f.wg.Wait()
}

// Close cancels the in-flight query, closes all subscriptions and waits for
// running queries to return.
func (f *Feed) Close() {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.closed = true
	if f.cancel != nil {
		f.cancel()
	}
	for id, ch := range f.subs {
		delete(f.subs, id)
		close(ch)
	}
	f.mu.Unlock()

	f.wg.Wait()
}
