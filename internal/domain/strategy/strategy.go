// Package strategy composes the level-specific transformation applied
// after redaction. Identifying and sensitive handling has already
// happened upstream and is never repeated here.
package strategy

import (
	"github.com/coachcore/privacyd/internal/domain/generalize"
	"github.com/coachcore/privacyd/internal/domain/model"
)

// highAllowList names the analytically safe top-level fields that
// survive high-level anonymization. Anything else is dropped even if
// otherwise harmless: high trades completeness for a small, easily
// auditable attack surface.
var highAllowList = []string{"sport", "level", "difficulty", "category"}

// patternFields is the fixed shape a patterns object is reduced to.
var patternFields = []string{"type", "frequency", "category"}

// Apply transforms tree according to level and returns the result.
// low is the identity; medium generalizes top-level quasi-identifiers;
// high rebuilds a minimal allow-listed record. The input tree is the
// engine's private copy and may be shared with the output.
func Apply(tree model.Record, level model.Level) model.Record {
	switch level {
	case model.LevelLow:
		return applyLow(tree)
	case model.LevelMedium:
		return applyMedium(tree)
	default:
		return applyHigh(tree)
	}
}

// applyLow keeps the full structure. The level exists for callers who
// need maximal data fidelity after basic redaction.
func applyLow(tree model.Record) model.Record {
	return tree
}

// applyMedium shallow-copies the record and generalizes the age,
// location and timestamp top-level fields when present. Nested
// re-generalization below the top level is a documented scope limit of
// this level, not an oversight.
func applyMedium(tree model.Record) model.Record {
	out := make(model.Record, len(tree))
	for k, v := range tree {
		out[k] = v
	}

	if v, ok := out["age"]; ok {
		if age, numeric := asFloat(v); numeric {
			out["age"] = generalize.Age(int(age))
		}
	}
	if v, ok := out["location"]; ok {
		out["location"] = generalize.Location(v)
	}
	if v, ok := out["timestamp"]; ok {
		out["timestamp"] = generalize.Timestamp(v)
	}

	return out
}

// applyHigh builds a brand-new minimal record from the allow-list, plus
// rounded stats numerics and a reduced patterns object when present.
func applyHigh(tree model.Record) model.Record {
	out := make(model.Record)

	for _, k := range highAllowList {
		if v, ok := tree[k]; ok {
			out[k] = v
		}
	}
	if v, ok := tree["duration"]; ok {
		if minutes, numeric := asFloat(v); numeric {
			out["duration"] = generalize.Duration(minutes)
		} else {
			out["duration"] = v
		}
	}

	if stats, ok := tree["stats"].(map[string]any); ok {
		out["stats"] = roundStats(stats)
	}
	if patterns, ok := tree["patterns"].(map[string]any); ok {
		out["patterns"] = reducePatterns(patterns)
	}

	return out
}

// roundStats rounds every numeric leaf of a stats object to the nearest
// tenth; non-numeric entries pass through unchanged.
func roundStats(stats map[string]any) map[string]any {
	out := make(map[string]any, len(stats))
	for k, v := range stats {
		if f, numeric := asFloat(v); numeric {
			out[k] = generalize.Metric(f)
		} else {
			out[k] = v
		}
	}
	return out
}

// reducePatterns keeps exactly the type, frequency and category fields
// of a patterns object, dropping every specific detail.
func reducePatterns(patterns map[string]any) map[string]any {
	out := make(map[string]any, len(patternFields))
	for _, k := range patternFields {
		if v, ok := patterns[k]; ok {
			out[k] = v
		}
	}
	return out
}

// asFloat normalizes the numeric types a decoded JSON tree can carry.
func asFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	default:
		return 0, false
	}
}
