// Package steam provides the live storefront data source.
package steam

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/josegonzalez/game-catalog/pkg/catalog"
	"github.com/josegonzalez/game-catalog/pkg/source"
)

const (
	// Name is the registered source name.
	Name = "steam"

	defaultListURL    = "https://api.steampowered.com/ISteamApps/GetAppList/v2/"
	defaultDetailsURL = "https://store.steampowered.com/api/appdetails"

	// heartbeatAppID is a long-lived app used to probe the detail endpoint.
	heartbeatAppID = 730
)

func init() {
	catalog.RegisterSource(Name, func(config catalog.SourceConfig, userAgent string) (catalog.Source, error) {
		return New(config, userAgent), nil
	})
}

// Source implements the storefront HTTP data source.
type Source struct {
	*source.BaseSource
	listURL    string
	detailsURL string
	params     url.Values
	listParams url.Values
}

// New creates a new storefront source. With an empty BaseURL requests go to
// the public store; otherwise both endpoints are resolved against BaseURL,
// e.g. a local proxy at "http://localhost:3001/api".
func New(config catalog.SourceConfig, userAgent string) *Source {
	s := &Source{
		BaseSource: source.NewBaseSource(Name, config, userAgent),
		listURL:    defaultListURL,
		detailsURL: defaultDetailsURL,
		params:     url.Values{},
		listParams: url.Values{},
	}

	if base := strings.TrimSuffix(config.BaseURL, "/"); base != "" {
		s.listURL = base + "/ISteamApps/GetAppList/v2/"
		s.detailsURL = base + "/appdetails"
	}

	// Country code and language of prices and descriptions.
	if cc := config.GetOption("cc"); cc != "" {
		s.params.Set("cc", cc)
	}
	if l := config.GetOption("l"); l != "" {
		s.params.Set("l", l)
	}

	// The Web API accepts an optional key on the app list endpoint.
	if key := config.GetCredential("key"); key != "" {
		s.listParams.Set("key", key)
	}

	return s
}

// ListApps fetches the full app list.
func (s *Source) ListApps(ctx context.Context) ([]catalog.AppStub, error) {
	body, err := s.Get(ctx, "list", s.listURL, s.listParams)
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(body) {
		return nil, &catalog.SourceError{Source: Name, Op: "list", Details: "invalid JSON"}
	}

	apps := gjson.GetBytes(body, "applist.apps")
	if !apps.IsArray() {
		return nil, &catalog.SourceError{Source: Name, Op: "list", Details: "missing applist.apps"}
	}

	var stubs []catalog.AppStub
	if err := json.Unmarshal([]byte(apps.Raw), &stubs); err != nil {
		return nil, catalog.NewSourceError(Name, "list", err)
	}
	return stubs, nil
}

// FetchDetails fetches the detail record of one app. The endpoint answers
// with an object keyed by the app id: {"<id>": {"success": bool, "data": {...}}}.
func (s *Source) FetchDetails(ctx context.Context, appID int) (*catalog.DetailRecord, error) {
	body, err := s.Get(ctx, "details", s.detailsURL, s.detailsParams(appID))
	if err != nil {
		return nil, err
	}
	return ParseDetails(body, appID)
}

// ParseDetails decodes an appdetails response body for appID.
func ParseDetails(body []byte, appID int) (*catalog.DetailRecord, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: invalid JSON", catalog.ErrMalformedRecord)
	}

	entry := gjson.GetBytes(body, strconv.Itoa(appID))
	if !entry.IsObject() {
		return nil, fmt.Errorf("%w: no entry for app %d", catalog.ErrMalformedRecord, appID)
	}

	if !entry.Get("success").Bool() {
		return &catalog.DetailRecord{Success: false, SteamAppID: appID}, nil
	}

	data := entry.Get("data")
	if !data.IsObject() {
		return nil, fmt.Errorf("%w: app %d has no data object", catalog.ErrMalformedRecord, appID)
	}

	var rec catalog.DetailRecord
	if err := json.Unmarshal([]byte(data.Raw), &rec); err != nil {
		return nil, fmt.Errorf("%w: app %d: %v", catalog.ErrMalformedRecord, appID, err)
	}
	rec.Success = true
	if rec.SteamAppID == 0 {
		rec.SteamAppID = appID
	}
	return &rec, nil
}

func (s *Source) detailsParams(appID int) url.Values {
	params := url.Values{}
	for k, v := range s.params {
		params[k] = v
	}
	params.Set("appids", strconv.Itoa(appID))
	return params
}

// Heartbeat probes the detail endpoint with a well-known app.
func (s *Source) Heartbeat(ctx context.Context) error {
	body, err := s.Get(ctx, "heartbeat", s.detailsURL, s.detailsParams(heartbeatAppID))
	if err != nil {
		return err
	}
	if !gjson.ValidBytes(body) {
		return &catalog.SourceError{Source: Name, Op: "heartbeat", Details: "invalid JSON"}
	}
	return nil
}
