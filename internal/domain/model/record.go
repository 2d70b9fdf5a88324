// Package model contains domain models passed between layers.
package model

import (
	"strings"
	"time"
)

// Record is a caller-supplied JSON-like tree: string keys mapping to
// scalars, nested mappings, or sequences of either. No schema beyond that
// is assumed.
type Record = map[string]any

// Category tags the business record type and drives the retention policy.
type Category string

// Known domain categories.
const (
	CategoryPracticePlan     Category = "practice_plan"
	CategoryPlayerRecord     Category = "player_record"
	CategoryTeamRecord       Category = "team_record"
	CategoryAnalyticsEvent   Category = "analytics_event"
	CategoryAITrainingSample Category = "ai_training_sample"
)

// Categories lists every known category, in policy-table order.
func Categories() []Category {
	return []Category{
		CategoryPracticePlan,
		CategoryPlayerRecord,
		CategoryTeamRecord,
		CategoryAnalyticsEvent,
		CategoryAITrainingSample,
	}
}

// ParseCategory returns the Category for s, or false when s names no
// known category. Matching is case-insensitive.
func ParseCategory(s string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	switch c {
	case CategoryPracticePlan, CategoryPlayerRecord, CategoryTeamRecord,
		CategoryAnalyticsEvent, CategoryAITrainingSample:
		return c, true
	}
	return "", false
}

// Level is the anonymization strength, totally ordered low < medium < high.
type Level string

// Anonymization levels.
const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

// ParseLevel maps s to a Level. Unknown or empty input falls back to
// LevelHigh: the strongest level is the fail-safe default.
func ParseLevel(s string) Level {
	switch Level(strings.ToLower(strings.TrimSpace(s))) {
	case LevelLow:
		return LevelLow
	case LevelMedium:
		return LevelMedium
	default:
		return LevelHigh
	}
}

// Strength returns the level's position in the low < medium < high order.
func (l Level) Strength() int {
	switch l {
	case LevelLow:
		return 0
	case LevelMedium:
		return 1
	default:
		return 2
	}
}

// Method names the transformation profile applied at each level. The
// string is audit metadata only; consumers must not parse it.
func (l Level) Method() string {
	switch l {
	case LevelLow:
		return "hash_and_mask"
	case LevelMedium:
		return "generalize_and_pseudonymize"
	default:
		return "comprehensive_anonymization"
	}
}

// Job is a unit of asynchronous anonymization work submitted by clients.
type Job struct {
	JobID    string   // unique id for idempotency
	Record   Record   // raw record, owned by the job after submission
	Category Category // retention policy key
	Level    Level    // requested anonymization strength
}

// Metadata is the audit trail attached to every anonymized result. The
// path lists are complete and ordered, sufficient to reconstruct which
// transformations occurred without re-deriving them.
type Metadata struct {
	OriginalDataSize      int      `json:"originalDataSize"`
	AnonymizedDataSize    int      `json:"anonymizedDataSize"`
	PIIFieldsRemoved      []string `json:"piiFieldsRemoved"`
	SensitiveFieldsMasked []string `json:"sensitiveFieldsMasked"`
	AnonymizationVersion  string   `json:"anonymizationVersion"`
	ComplianceStandards   []string `json:"complianceStandards"`
}

// AnonymizedResult is the engine's sole output. It is immutable after
// creation; the storage layer deletes it once ExpiresAt has passed.
type AnonymizedResult struct {
	ID                  string    `json:"id"`
	OriginalDataType    Category  `json:"originalDataType"`
	AnonymizedData      Record    `json:"anonymizedData"`
	AnonymizationLevel  Level     `json:"anonymizationLevel"`
	AnonymizationMethod string    `json:"anonymizationMethod"`
	RetentionPeriod     string    `json:"retentionPeriod"`
	CreatedAt           time.Time `json:"createdAt"`
	ExpiresAt           time.Time `json:"expiresAt"`
	Metadata            Metadata  `json:"metadata"`
}
