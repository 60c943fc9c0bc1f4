// Package tools implements the assistant's function tools: geocoding,
// weather, hydrology, fish species lookup and cantonal rules. Every tool
// returns a JSON string and folds its own failures into an {"error": ...}
// payload so a broken upstream never aborts a run.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// Upstream endpoint defaults. Overridable for tests; the hydro base is also
// overridable in production via FOEN_PROXY_BASE.
const (
	defaultGeocodeBase  = "https://geocoding-api.open-meteo.com/v1"
	defaultGeoAdminBase = "https://api3.geo.admin.ch/rest/services/api/MapServer"
	defaultWeatherBase  = "https://api.open-meteo.com/v1"
	defaultHydroBase    = "https://api.existenz.ch/hydro"
	defaultGBIFBase     = "https://api.gbif.org/v1"
)

const userAgent = "FishBuddy/1.0 (+https://github.com/lucafehr/fishbuddy)"

// Service bundles the tool implementations behind one HTTP client.
type Service struct {
	http *http.Client

	geocodeBase  string
	geoAdminBase string
	weatherBase  string
	hydroBase    string
	gbifBase     string

	rulesPath string
}

// Option adjusts a Service, mainly for tests.
type Option func(*Service)

// WithBaseURLs overrides the upstream endpoints. Empty strings keep the
// default for that endpoint.
func WithBaseURLs(geocode, geoAdmin, weather, hydro, gbif string) Option {
	return func(s *Service) {
		if geocode != "" {
			s.geocodeBase = geocode
		}
		if geoAdmin != "" {
			s.geoAdminBase = geoAdmin
		}
		if weather != "" {
			s.weatherBase = weather
		}
		if hydro != "" {
			s.hydroBase = hydro
		}
		if gbif != "" {
			s.gbifBase = gbif
		}
	}
}

// WithRulesPath points the rules tool at a rules.json file.
func WithRulesPath(path string) Option {
	return func(s *Service) { s.rulesPath = path }
}

// NewService builds the tool service with a shared request timeout.
func NewService(opts ...Option) *Service {
	s := &Service{
		http:         &http.Client{Timeout: 12 * time.Second},
		geocodeBase:  defaultGeocodeBase,
		geoAdminBase: defaultGeoAdminBase,
		weatherBase:  defaultWeatherBase,
		hydroBase:    defaultHydroBase,
		gbifBase:     defaultGBIFBase,
		rulesPath:    "data/rules.json",
	}
	if base := strings.TrimSpace(os.Getenv("FOEN_PROXY_BASE")); base != "" {
		s.hydroBase = base
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// getJSON performs a GET and decodes the JSON body into out.
func (s *Service) getJSON(ctx context.Context, rawURL string, params url.Values, out interface{}) error {
	u := rawURL
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("upstream status %s", resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// encode marshals a tool result; marshal failure becomes an error payload.
func encode(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf(`{"error":"encode_failed: %s"}`, err)
	}
	return string(data)
}

func errPayload(tag string, err error) string {
	return encode(map[string]string{"error": fmt.Sprintf("%s: %v", tag, err)})
}
