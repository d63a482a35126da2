package steam

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josegonzalez/game-catalog/pkg/catalog"
	"github.com/josegonzalez/game-catalog/pkg/testutil"
)

// newTestServer serves the list and detail endpoints from shared fixtures.
func newTestServer(t *testing.T) (*httptest.Server, *http.Request) {
	t.Helper()

	loader, err := testutil.NewLoaderFromRepo()
	require.NoError(t, err)

	fixture := func(name string) []byte {
		data, err := loader.Fixture(name)
		require.NoError(t, err)
		return data
	}
	applist := fixture("applist.json")
	details := map[string][]byte{
		"570":    fixture("appdetails_570.json"),
		"271590": fixture("appdetails_271590.json"),
		"999999": fixture("appdetails_failure.json"),
	}

	last := &http.Request{}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/ISteamApps/GetAppList/v2/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(applist)
	})
	mux.HandleFunc("/api/appdetails", func(w http.ResponseWriter, r *http.Request) {
		*last = *r
		id := r.URL.Query().Get("appids")
		switch id {
		case "13":
			w.WriteHeader(http.StatusInternalServerError)
		case "42":
			w.Header().Set("Retry-After", "7")
			w.WriteHeader(http.StatusTooManyRequests)
		case "7":
			_, _ = w.Write([]byte(`{"7": {"success": true, "data": `))
		case "730":
			_, _ = w.Write([]byte(`{"730": {"success": true, "data": {"name": "Counter-Strike 2"}}}`))
		default:
			if body, ok := details[id]; ok {
				_, _ = w.Write(body)
				return
			}
			_, _ = w.Write([]byte(`{"` + id + `": {"success": false}}`))
		}
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, last
}

func newTestSource(t *testing.T, options map[string]any) (*Source, *http.Request) {
	t.Helper()
	srv, last := newTestServer(t)
	cfg := catalog.SourceConfig{Name: Name, BaseURL: srv.URL + "/api/", Timeout: 5, Options: options}
	return New(cfg, "game-catalog-test"), last
}

func TestListApps(t *testing.T) {
	s, _ := newTestSource(t, nil)

	stubs, err := s.ListApps(context.Background())
	require.NoError(t, err)
	require.Len(t, stubs, 6)
	assert.Equal(t, catalog.AppStub{AppID: 730, Name: "Counter-Strike 2"}, stubs[0])
	assert.Equal(t, 999999, stubs[5].AppID)
}

func TestListAppsMalformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"applist": {}}`))
	}))
	defer srv.Close()

	s := New(catalog.SourceConfig{Name: Name, BaseURL: srv.URL}, "")
	_, err := s.ListApps(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, catalog.ErrSourceUnavailable))
}

func TestListAppsServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	s := New(catalog.SourceConfig{Name: Name, BaseURL: srv.URL}, "")
	_, err := s.ListApps(context.Background())

	var srcErr *catalog.SourceError
	require.True(t, errors.As(err, &srcErr))
	assert.Equal(t, "list", srcErr.Op)
	assert.Equal(t, "HTTP 502", srcErr.Details)
}

func TestFetchDetails(t *testing.T) {
	s, last := newTestSource(t, map[string]any{"cc": "ru", "l": "russian"})

	rec, err := s.FetchDetails(context.Background(), 271590)
	require.NoError(t, err)

	assert.True(t, rec.Success)
	assert.Equal(t, "Grand Theft Auto V", rec.Name)
	assert.Equal(t, 271590, rec.SteamAppID)
	assert.Equal(t, catalog.FlexInt(18), rec.RequiredAge)
	require.NotNil(t, rec.PriceOverview)
	assert.Equal(t, 69900, rec.PriceOverview.Final)
	assert.Equal(t, 65, rec.PriceOverview.DiscountPercent)
	require.NotNil(t, rec.Platforms)
	assert.True(t, rec.Platforms.Windows)
	require.Len(t, rec.Movies, 1)
	assert.Contains(t, rec.Movies[0].MP4.Max, "movie_max.mp4")

	assert.Equal(t, "ru", last.URL.Query().Get("cc"))
	assert.Equal(t, "russian", last.URL.Query().Get("l"))
	assert.Equal(t, "game-catalog-test", last.Header.Get("User-Agent"))
}

func TestFetchDetailsSetsAppIDWhenMissing(t *testing.T) {
	s, _ := newTestSource(t, nil)

	rec, err := s.FetchDetails(context.Background(), 730)
	require.NoError(t, err)
	assert.Equal(t, 730, rec.SteamAppID)
}

func TestFetchDetailsNotSuccessful(t *testing.T) {
	s, _ := newTestSource(t, nil)

	rec, err := s.FetchDetails(context.Background(), 999999)
	require.NoError(t, err)
	assert.False(t, rec.Success)
	assert.Nil(t, catalog.Normalize(rec))
}

func TestFetchDetailsErrors(t *testing.T) {
	s, _ := newTestSource(t, nil)
	ctx := context.Background()

	tests := []struct {
		name   string
		appID  int
		target error
	}{
		{"server error", 13, catalog.ErrSourceUnavailable},
		{"rate limited", 42, catalog.ErrSourceRateLimit},
		{"truncated body", 7, catalog.ErrMalformedRecord},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.FetchDetails(ctx, tt.appID)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.target), "got %v", err)
		})
	}

	_, err := s.FetchDetails(ctx, 42)
	var rl *catalog.RateLimitError
	require.True(t, errors.As(err, &rl))
	assert.Equal(t, 7, rl.RetryAfter)
}

func TestParseDetailsWrongKey(t *testing.T) {
	_, err := ParseDetails([]byte(`{"570": {"success": true, "data": {}}}`), 730)
	assert.True(t, errors.Is(err, catalog.ErrMalformedRecord))
}

func TestHeartbeat(t *testing.T) {
	s, last := newTestSource(t, nil)

	require.NoError(t, s.Heartbeat(context.Background()))
	assert.Equal(t, "730", last.URL.Query().Get("appids"))
}

func TestDefaultEndpoints(t *testing.T) {
	s := New(catalog.SourceConfig{Name: Name}, "")
	assert.Equal(t, defaultListURL, s.listURL)
	assert.Equal(t, defaultDetailsURL, s.detailsURL)
}

func TestRegistered(t *testing.T) {
	assert.Contains(t, catalog.Sources(), Name)
}

func TestListAppsSendsKey(t *testing.T) {
	var key string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key = r.URL.Query().Get("key")
		_, _ = w.Write([]byte(`{"applist": {"apps": []}}`))
	}))
	defer srv.Close()

	cfg := catalog.SourceConfig{Name: Name, BaseURL: srv.URL, Credentials: map[string]string{"key": "ABCDEF123456"}}
	stubs, err := New(cfg, "").ListApps(context.Background())
	require.NoError(t, err)
	assert.Empty(t, stubs)
	assert.Equal(t, "ABCDEF123456", key)
}
