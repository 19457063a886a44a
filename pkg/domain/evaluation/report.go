// Package evaluation defines the structured assessment of an artifact.
package evaluation

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/felixgeelhaar/autorefine/pkg/domain/artifact"
)

// UnknownScore is the aggregate of a report that could not be obtained or parsed.
const UnknownScore = -1.0

// DefaultMaxSubScore bounds each per-file score.
const DefaultMaxSubScore = 10.0

const (
	scorePrefix      = "score_"
	fieldFatalErrors = "fatal_errors"
	fieldWarnings    = "warnings"
	fieldSuggestions = "suggestions"
	fieldOverall     = "overall_score"
)

// ErrNoAggregate is returned when a payload carries neither an overall score
// nor any per-file score to derive one from.
var ErrNoAggregate = errors.New("evaluation payload has no overall_score and no sub-scores")

// Report is one assessment of the current artifact.
type Report struct {
	SubScores   map[artifact.Key]float64
	FatalErrors []string
	Warnings    []string
	Suggestions []string
	Aggregate   float64
}

// Unknown returns the sentinel report used when evaluation fails.
func Unknown() Report {
	return Report{Aggregate: UnknownScore}
}

// Known reports whether the aggregate came from a parsed assessment.
func (r Report) Known() bool {
	return r.Aggregate != UnknownScore
}

// SubScoreSum adds up the per-file scores.
func (r Report) SubScoreSum() float64 {
	var total float64
	for _, v := range r.SubScores {
		total += v
	}
	return total
}

// MarshalJSON renders the report in its wire format:
// score_<key>, fatal_errors, warnings, suggestions, overall_score.
func (r Report) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(r.SubScores)+4)
	for k, v := range r.SubScores {
		out[scorePrefix+string(k)] = v
	}
	out[fieldFatalErrors] = nonNil(r.FatalErrors)
	out[fieldWarnings] = nonNil(r.Warnings)
	out[fieldSuggestions] = nonNil(r.Suggestions)
	out[fieldOverall] = r.Aggregate
	return json.Marshal(out)
}

// UnmarshalJSON accepts the wire format. Any score_<key> field is kept.
func (r *Report) UnmarshalJSON(data []byte) error {
	decoded, err := Decode(data, nil)
	if err != nil {
		return err
	}
	*r = decoded
	return nil
}

// Decode parses a wire-format payload. When keys is non-empty only those
// sub-scores are kept; otherwise every score_<key> field is. A missing
// overall_score is derived from the sub-scores.
func Decode(data []byte, keys []artifact.Key) (Report, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return Report{}, fmt.Errorf("decode evaluation payload: %w", err)
	}

	allowed := make(map[artifact.Key]bool, len(keys))
	for _, k := range keys {
		allowed[k] = true
	}

	r := Report{SubScores: make(map[artifact.Key]float64)}
	for field, value := range raw {
		if !strings.HasPrefix(field, scorePrefix) {
			continue
		}
		key := artifact.Key(strings.TrimPrefix(field, scorePrefix))
		if len(allowed) > 0 && !allowed[key] {
			continue
		}
		var score float64
		if err := json.Unmarshal(value, &score); err != nil {
			return Report{}, fmt.Errorf("field %s: %w", field, err)
		}
		r.SubScores[key] = score
	}

	for field, dst := range map[string]*[]string{
		fieldFatalErrors: &r.FatalErrors,
		fieldWarnings:    &r.Warnings,
		fieldSuggestions: &r.Suggestions,
	} {
		value, ok := raw[field]
		if !ok || string(value) == "null" {
			continue
		}
		if err := json.Unmarshal(value, dst); err != nil {
			return Report{}, fmt.Errorf("field %s: %w", field, err)
		}
	}

	if value, ok := raw[fieldOverall]; ok && string(value) != "null" {
		if err := json.Unmarshal(value, &r.Aggregate); err != nil {
			return Report{}, fmt.Errorf("field %s: %w", fieldOverall, err)
		}
	} else if len(r.SubScores) > 0 {
		r.Aggregate = r.SubScoreSum()
	} else {
		return Report{}, ErrNoAggregate
	}

	return r, nil
}

// Summary renders a short human readable line.
func (r Report) Summary() string {
	if !r.Known() {
		return "score unknown"
	}
	keys := make([]string, 0, len(r.SubScores))
	for k := range r.SubScores {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%g", k, r.SubScores[artifact.Key(k)]))
	}
	return fmt.Sprintf("overall=%g [%s] fatal=%d warnings=%d", r.Aggregate, strings.Join(parts, " "), len(r.FatalErrors), len(r.Warnings))
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
