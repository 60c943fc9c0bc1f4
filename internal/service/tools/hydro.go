package tools

import (
	"context"
	"fmt"
	"math"
	"net/url"
)

// haversineKm returns the great-circle distance between two points.
func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadiusKm = 6371.0
	dlat := (lat2 - lat1) * math.Pi / 180
	dlon := (lon2 - lon1) * math.Pi / 180
	a := math.Pow(math.Sin(dlat/2), 2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*math.Pow(math.Sin(dlon/2), 2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(a))
}

type hydroStation struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

// WaterData resolves a place, finds the nearest hydro station and returns its
// latest water temperature and discharge. An unavailable proxy degrades to a
// note rather than an error.
func (s *Service) WaterData(ctx context.Context, name, language string) string {
	place, ok, err := s.geocode(ctx, name, language)
	if err != nil {
		return errPayload("hydro_failed", err)
	}
	if !ok {
		return encode(map[string]string{"error": "geocode_failed", "place": name})
	}

	var stations []hydroStation
	if err := s.getJSON(ctx, s.hydroBase+"/locations", url.Values{}, &stations); err != nil || len(stations) == 0 {
		note := "No hydrology data available; try again later."
		if err != nil {
			note = fmt.Sprintf("Water data unavailable (%v); check FOEN station data manually.", err)
		}
		return encode(map[string]string{"place": place.Name, "note": note})
	}

	nearest := stations[0]
	best := haversineKm(place.Lat, place.Lon, nearest.Lat, nearest.Lon)
	for _, st := range stations[1:] {
		if d := haversineKm(place.Lat, place.Lon, st.Lat, st.Lon); d < best {
			best = d
			nearest = st
		}
	}

	var latest struct {
		WaterTempC   *float64 `json:"water_temp_c"`
		DischargeM3s *float64 `json:"discharge_m3s"`
	}
	if err := s.getJSON(ctx, s.hydroBase+"/"+url.PathEscape(nearest.ID), url.Values{}, &latest); err != nil {
		return encode(map[string]string{
			"place": place.Name,
			"note":  fmt.Sprintf("Water data unavailable (%v); check FOEN station data manually.", err),
		})
	}

	return encode(map[string]interface{}{
		"place":         place.Name,
		"station_id":    nearest.ID,
		"station_name":  nearest.Name,
		"water_temp_c":  latest.WaterTempC,
		"discharge_m3s": latest.DischargeM3s,
	})
}
