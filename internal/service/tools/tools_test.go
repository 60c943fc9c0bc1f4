package tools_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lucafehr/fishbuddy/internal/service/tools"
)

const geocodeBody = `{"results":[{"latitude":47.37,"longitude":8.54,"name":"Zürich","admin1":"Zurich","country_code":"CH"}]}`

// upstream fakes every external API the tools call.
func upstream(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("name") == "Nowhere" {
			fmt.Fprint(w, `{"results":[]}`)
			return
		}
		fmt.Fprint(w, geocodeBody)
	})
	mux.HandleFunc("/identify", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results":[{"attributes":{"kt_kz":"ZH","name":"Zürich"}}]}`)
	})
	mux.HandleFunc("/icon", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"current":{"temperature_2m":14.2,"wind_speed_10m":3.4,"precipitation":0.1}}`)
	})
	mux.HandleFunc("/locations", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"id":"2099","name":"Limmat - Zürich","lat":47.37,"lon":8.54},{"id":"2018","name":"Rhein - Basel","lat":47.56,"lon":7.59}]`)
	})
	mux.HandleFunc("/2099", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"water_temp_c":16.5,"discharge_m3s":88.1}`)
	})
	mux.HandleFunc("/occurrence/search", func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Query().Get("geometry"), "POLYGON((") {
			t.Errorf("geometry is not WKT: %s", r.URL.Query().Get("geometry"))
		}
		fmt.Fprint(w, `{"results":[
			{"species":"Salmo trutta","scientificName":"Salmo trutta Linnaeus, 1758"},
			{"species":"Salmo trutta","scientificName":"Salmo trutta Linnaeus, 1758"},
			{"species":"Esox lucius","scientificName":"Esox lucius Linnaeus, 1758"}
		]}`)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newService(t *testing.T, extra ...tools.Option) *tools.Service {
	t.Helper()
	srv := upstream(t)
	opts := append([]tools.Option{
		tools.WithBaseURLs(srv.URL, srv.URL, srv.URL, srv.URL, srv.URL),
	}, extra...)
	return tools.NewService(opts...)
}

func decode(t *testing.T, raw string) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		t.Fatalf("tool returned invalid JSON %q: %v", raw, err)
	}
	return out
}

func TestGeocodePlace(t *testing.T) {
	svc := newService(t)
	out := decode(t, svc.GeocodePlace(context.Background(), "Zürich", "de"))
	if out["name"] != "Zürich" || out["lat"].(float64) != 47.37 {
		t.Fatalf("unexpected geocode result: %v", out)
	}
}

func TestGeocodePlaceNoResults(t *testing.T) {
	svc := newService(t)
	raw := svc.GeocodePlace(context.Background(), "Nowhere", "de")
	if raw != "{}" {
		t.Fatalf("expected empty object, got %s", raw)
	}
}

func TestCantonFromPlace(t *testing.T) {
	svc := newService(t)
	out := decode(t, svc.CantonFromPlace(context.Background(), "Zürich", "de"))
	if out["canton"] != "ZH" {
		t.Fatalf("unexpected canton: %v", out)
	}
}

func TestWeatherByPlace(t *testing.T) {
	svc := newService(t)
	out := decode(t, svc.WeatherByPlace(context.Background(), "Zürich", "de"))
	if out["air_temp_c"].(float64) != 14.2 {
		t.Fatalf("unexpected weather: %v", out)
	}
}

func TestWaterDataPicksNearestStation(t *testing.T) {
	svc := newService(t)
	out := decode(t, svc.WaterData(context.Background(), "Zürich", "de"))
	if out["station_id"] != "2099" {
		t.Fatalf("expected nearest station 2099, got %v", out)
	}
	if out["water_temp_c"].(float64) != 16.5 {
		t.Fatalf("unexpected water temp: %v", out)
	}
}

func TestSpeciesByPlaceAggregates(t *testing.T) {
	svc := newService(t)
	out := decode(t, svc.SpeciesByPlace(context.Background(), "Zürich", "de"))

	species := out["species"].([]interface{})
	if len(species) != 2 {
		t.Fatalf("expected 2 species, got %v", species)
	}
	top := species[0].(map[string]interface{})
	if top["name"] != "Salmo trutta" || top["count"].(float64) != 2 {
		t.Fatalf("unexpected top species: %v", top)
	}
}

func TestCheckRules(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.json")
	rules := `{"cantons":{"zh":{"species":{"trout":{
		"closed_seasons":[{"from":"2026-03-01","to":"2026-05-31"}],
		"min_size_cm":32,
		"bag_limit":6,
		"methods_allowed":["fly","spin"]
	}}}}}`
	if err := os.WriteFile(path, []byte(rules), 0o644); err != nil {
		t.Fatalf("write rules: %v", err)
	}

	svc := newService(t, tools.WithRulesPath(path))

	out := decode(t, svc.CheckRules("ZH", "Trout", "fly", "2026-04-15"))
	if out["closed"] != true || out["legal"] != false {
		t.Fatalf("expected closed season, got %v", out)
	}

	out = decode(t, svc.CheckRules("ZH", "Trout", "fly", "2026-07-01"))
	if out["closed"] != false || out["legal"] != true {
		t.Fatalf("expected open season, got %v", out)
	}
	if out["min_size_cm"].(float64) != 32 {
		t.Fatalf("min size lost: %v", out)
	}

	out = decode(t, svc.CheckRules("ZH", "Trout", "dynamite", "2026-07-01"))
	if out["legal"] != false {
		t.Fatalf("disallowed method must be illegal: %v", out)
	}
}

func TestCheckRulesMissingFile(t *testing.T) {
	svc := newService(t, tools.WithRulesPath(filepath.Join(t.TempDir(), "missing.json")))
	out := decode(t, svc.CheckRules("ZH", "Trout", "fly", "2026-07-01"))
	if out["legal"] != true || out["closed"] != false {
		t.Fatalf("missing rules file must be permissive: %v", out)
	}
}

func TestBeginnerPlan(t *testing.T) {
	svc := newService(t)

	out := decode(t, svc.BeginnerPlan("ZH", 14))
	steps := out["steps"].([]interface{})
	if len(steps) != 2 || !strings.Contains(steps[0].(string), "SaNa") {
		t.Fatalf("expected SaNa route for ZH: %v", steps)
	}
	if notes := out["notes"].([]interface{}); len(notes) != 2 {
		t.Fatalf("unexpected notes: %v", notes)
	}

	out = decode(t, svc.BeginnerPlan("Ticino", 5))
	steps = out["steps"].([]interface{})
	if len(steps) != 1 || !strings.Contains(steps[0].(string), "tourist licence") {
		t.Fatalf("expected tourist-licence hint for a short Ticino stay: %v", steps)
	}

	// A long Ticino stay still takes the SaNa route.
	out = decode(t, svc.BeginnerPlan("TI", 30))
	if steps = out["steps"].([]interface{}); len(steps) != 2 {
		t.Fatalf("expected SaNa route for a long Ticino stay: %v", steps)
	}
}

func TestDispatch(t *testing.T) {
	svc := newService(t)

	out := decode(t, svc.Dispatch(context.Background(), "geocode_place", `{"name":"Zürich"}`))
	if out["name"] != "Zürich" {
		t.Fatalf("dispatch geocode failed: %v", out)
	}

	out = decode(t, svc.Dispatch(context.Background(), "beginner_plan", `{"canton":"TI"}`))
	steps := out["steps"].([]interface{})
	if len(steps) != 1 || !strings.Contains(steps[0].(string), "tourist licence") {
		t.Fatalf("dispatch must default stay_days to a short stay: %v", steps)
	}

	out = decode(t, svc.Dispatch(context.Background(), "does_not_exist", `{}`))
	if out["error"] != "unknown tool does_not_exist" {
		t.Fatalf("unexpected unknown-tool payload: %v", out)
	}

	out = decode(t, svc.Dispatch(context.Background(), "geocode_place", `{broken`))
	if _, ok := out["error"]; !ok {
		t.Fatalf("expected error payload for bad args: %v", out)
	}
}
