package tools

import (
	"context"
	"fmt"
	"net/url"
)

// WeatherByPlace returns current air temperature, wind and precipitation for
// a resolved place.
func (s *Service) WeatherByPlace(ctx context.Context, name, language string) string {
	place, ok, err := s.geocode(ctx, name, language)
	if err != nil {
		return errPayload("weather_tool_failed", err)
	}
	if !ok {
		return encode(map[string]string{"error": "geocode_failed"})
	}

	params := url.Values{}
	params.Set("latitude", fmt.Sprintf("%f", place.Lat))
	params.Set("longitude", fmt.Sprintf("%f", place.Lon))
	params.Set("current", "temperature_2m,wind_speed_10m,precipitation")
	params.Set("timezone", "Europe/Zurich")

	var payload struct {
		Current struct {
			Temperature   *float64 `json:"temperature_2m"`
			WindSpeed     *float64 `json:"wind_speed_10m"`
			Precipitation *float64 `json:"precipitation"`
		} `json:"current"`
	}
	if err := s.getJSON(ctx, s.weatherBase+"/icon", params, &payload); err != nil {
		return errPayload("weather_tool_failed", err)
	}

	return encode(map[string]interface{}{
		"place":      place.Name,
		"air_temp_c": payload.Current.Temperature,
		"wind_ms":    payload.Current.WindSpeed,
		"precip_mm":  payload.Current.Precipitation,
	})
}
