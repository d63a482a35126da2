// Package mock provides an in-memory data source with a small storefront
// catalog. It is used for development and as a test double.
package mock

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/josegonzalez/game-catalog/pkg/catalog"
)

// Name is the registered source name.
const Name = "mock"

func init() {
	catalog.RegisterSource(Name, func(config catalog.SourceConfig, _ string) (catalog.Source, error) {
		s := New(DefaultRecords()...)
		switch ms := config.Options["delay_ms"].(type) {
		case int:
			s.SetDelay(time.Duration(ms) * time.Millisecond)
		case float64:
			s.SetDelay(time.Duration(ms * float64(time.Millisecond)))
		}
		return s, nil
	})
}

// Source serves detail records from memory.
type Source struct {
	mu       sync.RWMutex
	order    []int
	records  map[int]*catalog.DetailRecord
	failures map[int]error
	listErr  error
	delay    time.Duration

	listCalls   atomic.Int64
	detailCalls atomic.Int64
}

// New creates a source serving records in the given order.
func New(records ...*catalog.DetailRecord) *Source {
	s := &Source{
		records:  make(map[int]*catalog.DetailRecord, len(records)),
		failures: make(map[int]error),
	}
	for _, rec := range records {
		s.Add(rec)
	}
	return s
}

// Name returns the source name.
func (s *Source) Name() string {
	return Name
}

// Add appends a record, replacing any record with the same app id.
func (s *Source) Add(rec *catalog.DetailRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[rec.SteamAppID]; !ok {
		s.order = append(s.order, rec.SteamAppID)
	}
	s.records[rec.SteamAppID] = rec
}

// Fail makes FetchDetails return err for appID. A nil err clears it.
func (s *Source) Fail(appID int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failures, appID)
		return
	}
	s.failures[appID] = err
}

// SetListError makes ListApps and Heartbeat return err. A nil err clears it.
func (s *Source) SetListError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listErr = err
}

// SetDelay makes every call wait d or until the context is done.
func (s *Source) SetDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delay = d
}

// ListCalls returns how many times ListApps was called.
func (s *Source) ListCalls() int64 {
	return s.listCalls.Load()
}

// DetailCalls returns how many times FetchDetails was called.
func (s *Source) DetailCalls() int64 {
	return s.detailCalls.Load()
}

func (s *Source) wait(ctx context.Context) error {
	s.mu.RLock()
	d := s.delay
	s.mu.RUnlock()

	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ListApps returns a stub per record, in insertion order.
func (s *Source) ListApps(ctx context.Context) ([]catalog.AppStub, error) {
	s.listCalls.Add(1)
	if err := s.wait(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.listErr != nil {
		return nil, s.listErr
	}
	stubs := make([]catalog.AppStub, 0, len(s.order))
	for _, id := range s.order {
		stubs = append(stubs, catalog.AppStub{AppID: id, Name: s.records[id].Name})
	}
	return stubs, nil
}

// FetchDetails returns a copy of the record for appID, or an unsuccessful
// record when the id is unknown.
func (s *Source) FetchDetails(ctx context.Context, appID int) (*catalog.DetailRecord, error) {
	s.detailCalls.Add(1)
	if err := s.wait(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.failures[appID]; err != nil {
		return nil, err
	}
	rec, ok := s.records[appID]
	if !ok {
		return &catalog.DetailRecord{Success: false, SteamAppID: appID}, nil
	}
	out := *rec
	return &out, nil
}

// Heartbeat reports the configured list error, if any.
func (s *Source) Heartbeat(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listErr
}

// Close does nothing.
func (s *Source) Close() error {
	return nil
}
