// Package generalize provides pure functions that coarsen precise
// quasi-identifying values into wider buckets, trading re-identification
// risk for analytical utility.
package generalize

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Age band boundaries are inclusive-lower/exclusive-upper, except the
// final open band.
const (
	ageBandTeen       = 13
	ageBandAdult      = 18
	ageBandYoungAdult = 25
	ageBandMid        = 35
	ageBandSenior     = 50
)

// Duration band boundaries in domain minutes.
const (
	durationShortMax  = 30
	durationMediumMax = 90
)

// Age maps an exact age to its band label.
func Age(age int) string {
	switch {
	case age < ageBandTeen:
		return "under_13"
	case age < ageBandAdult:
		return "13_17"
	case age < ageBandYoungAdult:
		return "18_24"
	case age < ageBandMid:
		return "25_34"
	case age < ageBandSenior:
		return "35_49"
	default:
		return "50_plus"
	}
}

// Location drops city-level detail from a comma-delimited location
// string, keeping only the last two segments (state/country level).
// Non-string or single-segment input passes through unchanged.
func Location(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	parts := strings.Split(s, ",")
	if len(parts) < 2 {
		return s
	}
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return strings.Join(parts[len(parts)-2:], ", ")
}

// Timestamp rewrites any parseable instant as a four-digit year plus
// zero-padded two-digit month ("2024-03"); no finer resolution survives.
// Accepted inputs: time.Time, RFC3339 or date-only strings, and numeric
// epoch values (milliseconds when large enough, seconds otherwise).
// Unparseable input passes through unchanged.
func Timestamp(v any) any {
	t, ok := parseInstant(v)
	if !ok {
		return v
	}
	return fmt.Sprintf("%04d-%02d", t.Year(), int(t.Month()))
}

// epochMillisThreshold separates second-resolution epochs from
// millisecond-resolution ones (anything past the year 2286 in seconds).
const epochMillisThreshold = 1e11

func parseInstant(v any) (time.Time, bool) {
	switch x := v.(type) {
	case time.Time:
		return x, true
	case string:
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"} {
			if t, err := time.Parse(layout, x); err == nil {
				return t, true
			}
		}
		return time.Time{}, false
	case float64:
		return epochToTime(x), true
	case int:
		return epochToTime(float64(x)), true
	case int64:
		return epochToTime(float64(x)), true
	default:
		return time.Time{}, false
	}
}

func epochToTime(x float64) time.Time {
	if math.Abs(x) >= epochMillisThreshold {
		return time.UnixMilli(int64(x)).UTC()
	}
	return time.Unix(int64(x), 0).UTC()
}

// Duration maps a session length in domain minutes to a coarse band.
func Duration(minutes float64) string {
	switch {
	case minutes < durationShortMax:
		return "short"
	case minutes < durationMediumMax:
		return "medium"
	default:
		return "long"
	}
}

// Metric rounds a numeric statistic to the nearest tenth, a coarse
// privacy/utility tradeoff for aggregate statistics.
func Metric(v float64) float64 {
	return math.Round(v*10) / 10
}
