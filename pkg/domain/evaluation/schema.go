package evaluation

import (
	"encoding/json"

	"github.com/felixgeelhaar/autorefine/pkg/domain/artifact"
)

// Limits bounds the numeric fields of a report.
type Limits struct {
	MaxSubScore float64
	MaxScore    float64
}

// DefaultLimits returns 0..10 per file and 0..10*n overall.
func DefaultLimits(keys []artifact.Key) Limits {
	return Limits{
		MaxSubScore: DefaultMaxSubScore,
		MaxScore:    DefaultMaxSubScore * float64(len(keys)),
	}
}

// Schema builds a JSON schema (draft-07) for the wire format of the given keys.
// Either overall_score or every sub-score must be present.
func Schema(keys []artifact.Key, limits Limits) string {
	stringList := map[string]interface{}{
		"type":  "array",
		"items": map[string]interface{}{"type": "string"},
	}
	properties := map[string]interface{}{
		fieldFatalErrors: stringList,
		fieldWarnings:    stringList,
		fieldSuggestions: stringList,
		fieldOverall: map[string]interface{}{
			"type":    "number",
			"minimum": 0,
			"maximum": limits.MaxScore,
		},
	}
	subRequired := make([]string, 0, len(keys))
	for _, k := range keys {
		field := scorePrefix + string(k)
		properties[field] = map[string]interface{}{
			"type":    "number",
			"minimum": 0,
			"maximum": limits.MaxSubScore,
		}
		subRequired = append(subRequired, field)
	}

	anyOf := []interface{}{
		map[string]interface{}{"required": []string{fieldOverall}},
	}
	if len(subRequired) > 0 {
		anyOf = append(anyOf, map[string]interface{}{"required": subRequired})
	}

	schema := map[string]interface{}{
		"$schema":    "http://json-schema.org/draft-07/schema#",
		"type":       "object",
		"properties": properties,
		"anyOf":      anyOf,
	}
	data, _ := json.Marshal(schema)
	return string(data)
}
