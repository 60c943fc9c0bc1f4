package tools

import "strings"

// BeginnerPlan returns licensing guidance for a first licence in the given
// canton. Short Ticino stays get the tourist-licence hint; everything else
// goes through the SaNa route. Scaffold data, refined per canton as official
// details are collected.
func (s *Service) BeginnerPlan(canton string, stayDays int) string {
	c := strings.ToLower(strings.TrimSpace(canton))

	var steps []string
	if stayDays > 0 && stayDays <= 7 && (c == "ti" || c == "ticino") {
		steps = append(steps, "Short stay in Ticino: check tourist licence requirements with local authorities.")
	} else {
		steps = append(steps,
			"Book the SaNa course/exam and obtain the SaNa certificate.",
			"Apply for your canton's fishing licence per local process.",
		)
	}

	return encode(map[string]interface{}{
		"steps": steps,
		"notes": []string{
			"Carry required ID and documents per canton.",
			"Confirm waterbody-specific rules and closed seasons.",
		},
	})
}
