package tools

import (
	"context"
	"fmt"
	"net/url"
)

// Place is a resolved location from the geocoding endpoint.
type Place struct {
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	Name        string  `json:"name"`
	Admin1      string  `json:"admin1,omitempty"`
	CountryCode string  `json:"country_code,omitempty"`
}

// geocode resolves a place name to its top geocoding hit. A name with no
// results returns a zero Place and ok=false.
func (s *Service) geocode(ctx context.Context, name, language string) (Place, bool, error) {
	params := url.Values{}
	params.Set("name", name)
	params.Set("count", "1")
	params.Set("language", language)
	params.Set("format", "json")

	var payload struct {
		Results []struct {
			Latitude    float64 `json:"latitude"`
			Longitude   float64 `json:"longitude"`
			Name        string  `json:"name"`
			Admin1      string  `json:"admin1"`
			CountryCode string  `json:"country_code"`
		} `json:"results"`
	}
	if err := s.getJSON(ctx, s.geocodeBase+"/search", params, &payload); err != nil {
		return Place{}, false, err
	}
	if len(payload.Results) == 0 {
		return Place{}, false, nil
	}

	top := payload.Results[0]
	return Place{
		Lat:         top.Latitude,
		Lon:         top.Longitude,
		Name:        top.Name,
		Admin1:      top.Admin1,
		CountryCode: top.CountryCode,
	}, true, nil
}

// GeocodePlace resolves a place name; no results yields an empty object,
// matching the collaborator contract.
func (s *Service) GeocodePlace(ctx context.Context, name, language string) string {
	place, ok, err := s.geocode(ctx, name, language)
	if err != nil {
		return errPayload("geocode_tool_failed", err)
	}
	if !ok {
		return "{}"
	}
	return encode(place)
}

// CantonFromPlace resolves a place and identifies the Swiss canton covering
// its coordinates via the swisstopo boundaries layer.
func (s *Service) CantonFromPlace(ctx context.Context, name, language string) string {
	place, ok, err := s.geocode(ctx, name, language)
	if err != nil {
		return errPayload("canton_tool_failed", err)
	}
	if !ok {
		return encode(map[string]string{"error": "geocode_failed", "place": name})
	}

	params := url.Values{}
	params.Set("geometryType", "esriGeometryPoint")
	params.Set("geometry", fmt.Sprintf("%f,%f", place.Lon, place.Lat))
	params.Set("mapExtent", fmt.Sprintf("%f,%f,%f,%f", place.Lon-0.01, place.Lat-0.01, place.Lon+0.01, place.Lat+0.01))
	params.Set("tolerance", "0")
	params.Set("layers", "all:ch.swisstopo.swissboundaries3d-kanton-flaeche.fill")
	params.Set("returnGeometry", "false")
	params.Set("imageDisplay", "400,400,96")
	params.Set("lang", "de")

	var payload struct {
		Results []struct {
			Attributes struct {
				KtKz string `json:"kt_kz"`
				Name string `json:"name"`
			} `json:"attributes"`
		} `json:"results"`
	}
	if err := s.getJSON(ctx, s.geoAdminBase+"/identify", params, &payload); err != nil {
		return errPayload("canton_tool_failed", err)
	}
	if len(payload.Results) == 0 {
		return encode(map[string]string{"place": place.Name, "canton": ""})
	}

	canton := payload.Results[0].Attributes.KtKz
	if canton == "" {
		canton = payload.Results[0].Attributes.Name
	}
	return encode(map[string]string{"place": place.Name, "canton": canton})
}
