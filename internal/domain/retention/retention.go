// Package retention maps domain categories to retention horizons and
// computes absolute expiry instants.
package retention

import (
	"fmt"
	"time"

	"github.com/coachcore/privacyd/internal/domain/model"
)

// Base retention periods in seconds, keyed on domain category.
// Retention currently depends only on category; whether higher
// anonymization levels should shorten or lengthen it is an open product
// decision.
const (
	secondsPerDay  = 24 * 60 * 60
	secondsPerYear = 365 * secondsPerDay

	retentionTwoYears   = 2 * secondsPerYear
	retentionOneYear    = 1 * secondsPerYear
	retentionNinetyDays = 90 * secondsPerDay
)

// Table is the immutable category-to-duration policy. Construct with
// New; a zero Table knows no categories and rejects everything.
type Table struct {
	periods map[model.Category]int64
}

// Option applies a configuration option to the Table.
type Option func(*Table)

// WithPeriod overrides the retention period for a category. Seconds < 1
// are ignored.
func WithPeriod(category model.Category, seconds int64) Option {
	return func(t *Table) {
		if seconds >= 1 {
			t.periods[category] = seconds
		}
	}
}

// New creates a Table with the default policy, then applies opts.
func New(opts ...Option) *Table {
	t := &Table{
		periods: map[model.Category]int64{
			model.CategoryPracticePlan:     retentionTwoYears,
			model.CategoryPlayerRecord:     retentionOneYear,
			model.CategoryTeamRecord:       retentionTwoYears,
			model.CategoryAnalyticsEvent:   retentionNinetyDays,
			model.CategoryAITrainingSample: retentionTwoYears,
		},
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Seconds returns the retention period for category. A category absent
// from the table is an ErrUnknownCategory failure, never a silent
// fallback: retaining data under a guessed policy is a compliance bug.
func (t *Table) Seconds(category model.Category) (int64, error) {
	secs, ok := t.periods[category]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
	return secs, nil
}

// ExpiryFrom computes the absolute expiry instant for category relative
// to now.
func (t *Table) ExpiryFrom(now time.Time, category model.Category) (time.Time, error) {
	secs, err := t.Seconds(category)
	if err != nil {
		return time.Time{}, err
	}
	return now.Add(time.Duration(secs) * time.Second), nil
}

// Format renders a retention period as a human string ("2_years",
// "90_days"). Display and audit only; never use the result for
// arithmetic.
func Format(seconds int64) string {
	days := seconds / secondsPerDay
	if days >= 365 {
		years := days / 365
		if years > 1 {
			return fmt.Sprintf("%d_years", years)
		}
		return "1_year"
	}
	return fmt.Sprintf("%d_days", days)
}
