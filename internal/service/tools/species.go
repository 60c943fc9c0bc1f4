package tools

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"sort"
	"strings"
)

// actinopterygiiClassKey is the GBIF taxon key for ray-finned fishes.
const actinopterygiiClassKey = "127206"

// wktSquare builds a WKT polygon roughly km wide around a point.
func wktSquare(lat, lon, km float64) string {
	dlat := km * 0.009
	dlon := km * 0.009 / math.Max(0.1, math.Cos(lat*math.Pi/180))

	pts := [][2]float64{
		{lon - dlon, lat - dlat},
		{lon + dlon, lat - dlat},
		{lon + dlon, lat + dlat},
		{lon - dlon, lat + dlat},
		{lon - dlon, lat - dlat},
	}
	coords := make([]string, len(pts))
	for i, p := range pts {
		coords[i] = fmt.Sprintf("%g %g", p[0], p[1])
	}
	return "POLYGON((" + strings.Join(coords, ", ") + "))"
}

// SpeciesEntry is one aggregated occurrence row.
type SpeciesEntry struct {
	Name           string `json:"name"`
	Count          int    `json:"count"`
	ScientificName string `json:"scientific_name"`
}

// SpeciesByPlace queries GBIF occurrences in a square around the resolved
// place and returns the top fish species by occurrence count.
func (s *Service) SpeciesByPlace(ctx context.Context, name, language string) string {
	place, ok, err := s.geocode(ctx, name, language)
	if err != nil {
		return errPayload("species_tool_failed", err)
	}
	if !ok {
		return encode(map[string]string{"error": "geocode_failed"})
	}

	params := url.Values{}
	params.Set("geometry", wktSquare(place.Lat, place.Lon, 5.0))
	params.Set("country", "CH")
	params.Set("hasCoordinate", "true")
	params.Set("kingdom", "Animalia")
	params.Set("classKey", actinopterygiiClassKey)
	params.Set("limit", "300")
	params.Set("offset", "0")

	var payload struct {
		Results []struct {
			Species        string `json:"species"`
			ScientificName string `json:"scientificName"`
		} `json:"results"`
	}
	if err := s.getJSON(ctx, s.gbifBase+"/occurrence/search", params, &payload); err != nil {
		return encode(map[string]string{
			"place": place.Name,
			"error": fmt.Sprintf("species_unavailable: %v", err),
			"hint":  "GBIF API may be temporarily unavailable; try again later.",
		})
	}

	counts := make(map[string]*SpeciesEntry)
	for _, rec := range payload.Results {
		if rec.Species == "" || rec.ScientificName == "" {
			continue
		}
		entry, ok := counts[rec.Species]
		if !ok {
			entry = &SpeciesEntry{Name: rec.Species, ScientificName: rec.ScientificName}
			counts[rec.Species] = entry
		}
		entry.Count++
	}

	top := make([]SpeciesEntry, 0, len(counts))
	for _, entry := range counts {
		top = append(top, *entry)
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].Count != top[j].Count {
			return top[i].Count > top[j].Count
		}
		return top[i].Name < top[j].Name
	})
	if len(top) > 20 {
		top = top[:20]
	}

	return encode(map[string]interface{}{
		"place":       place.Name,
		"provider":    "gbif",
		"region":      place.Admin1,
		"data_source": "GBIF Swiss Node - Swiss National Fish Databank",
		"species":     top,
	})
}
