package tools

import (
	"encoding/json"
	"os"
	"strings"
)

// rulesFile mirrors data/rules.json: per-canton, per-species entries.
type rulesFile struct {
	Cantons map[string]struct {
		Species map[string]rulesEntry `json:"species"`
	} `json:"cantons"`
}

type rulesEntry struct {
	ClosedSeasons []struct {
		From string `json:"from"`
		To   string `json:"to"`
	} `json:"closed_seasons"`
	MinSizeCm      *float64 `json:"min_size_cm"`
	BagLimit       *int     `json:"bag_limit"`
	MethodsAllowed []string `json:"methods_allowed"`
}

func (s *Service) loadRules() (rulesFile, error) {
	var rules rulesFile
	data, err := os.ReadFile(s.rulesPath)
	if err != nil {
		if os.IsNotExist(err) {
			return rulesFile{}, nil
		}
		return rulesFile{}, err
	}
	err = json.Unmarshal(data, &rules)
	return rules, err
}

// CheckRules evaluates cantonal rules for one species, method and date.
// Unknown cantons or species yield a permissive result with empty fields,
// matching the scaffold nature of the rules data.
func (s *Service) CheckRules(canton, species, method, dateISO string) string {
	rules, err := s.loadRules()
	if err != nil {
		return errPayload("rules_tool_failed", err)
	}

	c := strings.ToLower(strings.TrimSpace(canton))
	sp := strings.ToLower(strings.TrimSpace(species))
	m := strings.ToLower(strings.TrimSpace(method))

	var entry rulesEntry
	if cantonRules, ok := rules.Cantons[c]; ok {
		entry = cantonRules.Species[sp]
	}

	closed := false
	for _, r := range entry.ClosedSeasons {
		if r.From <= dateISO && dateISO <= r.To {
			closed = true
			break
		}
	}

	methodAllowed := true
	if len(entry.MethodsAllowed) > 0 {
		methodAllowed = false
		for _, allowed := range entry.MethodsAllowed {
			if strings.ToLower(allowed) == m {
				methodAllowed = true
				break
			}
		}
	}

	return encode(map[string]interface{}{
		"legal":       !closed && methodAllowed,
		"closed":      closed,
		"min_size_cm": entry.MinSizeCm,
		"bag_limit":   entry.BagLimit,
	})
}
