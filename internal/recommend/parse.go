package recommend

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// parseRecommendations decodes a generative response into recommendations.
// The model is asked for a bare JSON array but often wraps it in prose or a
// code fence, so parsing locates the outermost [...] substring and decodes
// that, coercing loosely-typed fields. An empty or non-array payload is an
// error; the caller treats any error here as a tier failure.
func parseRecommendations(raw string) ([]Recommendation, error) {
	payload, err := extractJSONArray(raw)
	if err != nil {
		return nil, err
	}

	var items []map[string]any
	if err := json.Unmarshal([]byte(payload), &items); err != nil {
		return nil, fmt.Errorf("parse generative response: %w", err)
	}
	if len(items) == 0 {
		return nil, errors.New("generative response contains no recommendations")
	}

	recs := make([]Recommendation, 0, len(items))
	for _, item := range items {
		company := coerceString(item["company"])
		title := coerceString(item["title"])
		if company == "" && title == "" {
			continue
		}

		recs = append(recs, Recommendation{
			Company:           company,
			Title:             title,
			MatchScore:        clampScore(coerceInt(item["match_score"])),
			Reasoning:         coerceString(item["reasoning"]),
			SkillsToHighlight: capSkills(coerceStringSlice(item["skills_to_highlight"])),
		})
	}

	if len(recs) == 0 {
		return nil, errors.New("generative response contains no usable recommendations")
	}

	// Ranks are reassigned densely regardless of what the model claimed.
	for i := range recs {
		recs[i].Rank = i + 1
	}

	return recs, nil
}

// extractJSONArray returns the outermost [...] substring of a response,
// tolerating markdown fences and surrounding prose.
func extractJSONArray(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")

	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if start == -1 || end == -1 || end < start {
		return "", errors.New("no JSON array found in generative response")
	}

	return raw[start : end+1], nil
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	default:
		if v == nil {
			return ""
		}
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}

func coerceInt(v any) int {
	switch val := v.(type) {
	case float64:
		return int(math.Round(val))
	case int:
		return val
	case string:
		trimmed := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(val), "%"))
		if trimmed == "" {
			return 0
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return 0
		}
		return int(math.Round(f))
	default:
		return 0
	}
}

func coerceStringSlice(v any) []string {
	switch val := v.(type) {
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s := coerceString(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return val
	case string:
		out := make([]string, 0, 4)
		for _, part := range strings.Split(val, ",") {
			if s := strings.TrimSpace(part); s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
