package tools

import (
	"context"
	"encoding/json"
	"fmt"
)

// dispatchArgs covers the argument shapes of all registered tools.
type dispatchArgs struct {
	Name     string `json:"name"`
	Canton   string `json:"canton"`
	Species  string `json:"species"`
	Method   string `json:"method"`
	DateISO  string `json:"date_iso"`
	StayDays int    `json:"stay_days"`
	Language string `json:"language"`
}

// Dispatch executes one named tool call with JSON-encoded arguments and
// returns the tool's JSON result. Unknown tools and undecodable arguments
// become error payloads, never Go errors: a run must keep going.
func (s *Service) Dispatch(ctx context.Context, name, argsJSON string) string {
	var args dispatchArgs
	if argsJSON != "" {
		if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
			return errPayload("bad_tool_arguments", err)
		}
	}
	if args.Language == "" {
		args.Language = "de"
	}

	switch name {
	case "geocode_place":
		return s.GeocodePlace(ctx, args.Name, args.Language)
	case "canton_from_place":
		return s.CantonFromPlace(ctx, args.Name, args.Language)
	case "get_weather_by_place":
		return s.WeatherByPlace(ctx, args.Name, args.Language)
	case "get_water_data":
		return s.WaterData(ctx, args.Name, args.Language)
	case "list_species_by_place":
		return s.SpeciesByPlace(ctx, args.Name, args.Language)
	case "check_rules":
		return s.CheckRules(args.Canton, args.Species, args.Method, args.DateISO)
	case "beginner_plan":
		if args.StayDays == 0 {
			args.StayDays = 3
		}
		return s.BeginnerPlan(args.Canton, args.StayDays)
	default:
		return encode(map[string]string{"error": fmt.Sprintf("unknown tool %s", name)})
	}
}
