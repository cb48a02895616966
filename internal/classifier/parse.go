package classifier

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// parseAnalysis decodes the model's answer. Markdown code fences around the
// JSON are tolerated. All four fields must be present; tags that are not a
// list become empty and the duration is coerced to whole minutes.
func parseAnalysis(text string) (Analysis, error) {
	cleaned := stripFences(text)

	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return Analysis{}, fmt.Errorf("decode model answer: %w", err)
	}

	for _, field := range []string{"summary", "category", "tags", "duration_estimate"} {
		if _, ok := raw[field]; !ok {
			return Analysis{}, fmt.Errorf("model answer missing field %q", field)
		}
	}

	var a Analysis
	if err := json.Unmarshal(raw["summary"], &a.Summary); err != nil {
		return Analysis{}, fmt.Errorf("summary: %w", err)
	}
	a.Summary = strings.TrimSpace(a.Summary)
	if a.Summary == "" {
		return Analysis{}, fmt.Errorf("model answer has an empty summary")
	}

	if err := json.Unmarshal(raw["category"], &a.Category); err != nil {
		a.Category = FallbackCategory
	}

	if err := json.Unmarshal(raw["tags"], &a.Tags); err != nil || a.Tags == nil {
		a.Tags = []string{}
	}

	minutes, err := coerceMinutes(raw["duration_estimate"])
	if err != nil {
		return Analysis{}, fmt.Errorf("duration_estimate: %w", err)
	}
	a.DurationEstimateMinutes = minutes

	return a, nil
}

func stripFences(text string) string {
	s := strings.TrimSpace(text)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// maxEstimateMinutes bounds an accepted estimate; larger answers are
// treated as unparseable.
const maxEstimateMinutes = math.MaxInt32

// coerceMinutes accepts a JSON number or a numeric string. Fractions are
// truncated and negative estimates clamp to zero.
func coerceMinutes(raw json.RawMessage) (int, error) {
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, fmt.Errorf("not a number: %s", raw)
		}
		f, err = strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, fmt.Errorf("not a number: %q", s)
		}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("not a finite number")
	}
	if f < 0 {
		return 0, nil
	}
	if f > maxEstimateMinutes {
		return 0, fmt.Errorf("duration %g out of range", f)
	}
	return int(f), nil
}
