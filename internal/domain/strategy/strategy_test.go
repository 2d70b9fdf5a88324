package strategy_test

import (
	"testing"

	"github.com/coachcore/privacyd/internal/domain/model"
	"github.com/coachcore/privacyd/internal/domain/strategy"
	. "github.com/smartystreets/goconvey/convey"
)

func TestApplyLow(t *testing.T) {
	Convey("Given a redacted record", t, func() {
		rec := model.Record{
			"sport":    "soccer",
			"age":      14,
			"location": "42 Elm St, Springfield, IL",
			"notes":    "free-form text",
		}

		Convey("When applying the low level", func() {
			out := strategy.Apply(rec, model.LevelLow)

			Convey("Then the record should be unchanged", func() {
				So(out, ShouldResemble, rec)
			})
		})
	})
}

func TestApplyMedium(t *testing.T) {
	Convey("Given a record with quasi-identifiers", t, func() {
		rec := model.Record{
			"sport":     "soccer",
			"age":       14,
			"location":  "42 Elm St, Springfield, IL",
			"timestamp": "2024-03-15T10:30:00Z",
			"notes":     "kept as is",
		}

		Convey("When applying the medium level", func() {
			out := strategy.Apply(rec, model.LevelMedium)

			Convey("Then age should be banded", func() {
				So(out["age"], ShouldEqual, "13_17")
			})

			Convey("Then location should be coarsened", func() {
				So(out["location"], ShouldEqual, "Springfield, IL")
			})

			Convey("Then timestamp should reduce to year-month", func() {
				So(out["timestamp"], ShouldEqual, "2024-03")
			})

			Convey("Then other fields should survive untouched", func() {
				So(out["sport"], ShouldEqual, "soccer")
				So(out["notes"], ShouldEqual, "kept as is")
			})

			Convey("Then the input record should not be mutated", func() {
				So(rec["age"], ShouldEqual, 14)
				So(rec["location"], ShouldEqual, "42 Elm St, Springfield, IL")
			})
		})

		Convey("When age is not numeric", func() {
			out := strategy.Apply(model.Record{"age": "fourteen"}, model.LevelMedium)

			Convey("Then it should pass through unchanged", func() {
				So(out["age"], ShouldEqual, "fourteen")
			})
		})

		Convey("When JSON decoding produced float64 ages", func() {
			out := strategy.Apply(model.Record{"age": float64(27)}, model.LevelMedium)

			Convey("Then banding should still apply", func() {
				So(out["age"], ShouldEqual, "25_34")
			})
		})
	})
}

func TestApplyHigh(t *testing.T) {
	Convey("Given a rich record", t, func() {
		rec := model.Record{
			"sport":      "soccer",
			"level":      "varsity",
			"difficulty": "advanced",
			"category":   "training",
			"duration":   float64(75),
			"stats": map[string]any{
				"accuracy": 85.44,
				"grade":    "A",
			},
			"patterns": map[string]any{
				"type":      "possession",
				"frequency": 12,
				"category":  "offense",
				"detail":    "drops through the middle third",
			},
			"notes":    "should be dropped",
			"location": "Springfield, IL",
		}

		Convey("When applying the high level", func() {
			out := strategy.Apply(rec, model.LevelHigh)

			Convey("Then only allow-listed scalars should survive", func() {
				So(out["sport"], ShouldEqual, "soccer")
				So(out["level"], ShouldEqual, "varsity")
				So(out["difficulty"], ShouldEqual, "advanced")
				So(out["category"], ShouldEqual, "training")
				So(out, ShouldNotContainKey, "notes")
				So(out, ShouldNotContainKey, "location")
			})

			Convey("Then duration should be banded", func() {
				So(out["duration"], ShouldEqual, "medium")
			})

			Convey("Then stats numerics should be rounded", func() {
				stats := out["stats"].(map[string]any)
				So(stats["accuracy"], ShouldEqual, 85.4)
				So(stats["grade"], ShouldEqual, "A")
			})

			Convey("Then patterns should be reduced to the fixed shape", func() {
				patterns := out["patterns"].(map[string]any)
				So(patterns["type"], ShouldEqual, "possession")
				So(patterns["frequency"], ShouldEqual, 12)
				So(patterns["category"], ShouldEqual, "offense")
				So(patterns, ShouldNotContainKey, "detail")
			})
		})

		Convey("When allow-listed fields are absent", func() {
			out := strategy.Apply(model.Record{"notes": "x"}, model.LevelHigh)

			Convey("Then the result should be empty", func() {
				So(out, ShouldBeEmpty)
			})
		})

		Convey("When duration is not numeric", func() {
			out := strategy.Apply(model.Record{"duration": "an hour"}, model.LevelHigh)

			Convey("Then it should pass through unchanged", func() {
				So(out["duration"], ShouldEqual, "an hour")
			})
		})
	})

	Convey("Given an unknown level value", t, func() {
		rec := model.Record{"sport": "soccer", "notes": "sensitive detail"}

		Convey("When applying it", func() {
			out := strategy.Apply(rec, model.Level("bogus"))

			Convey("Then the high strategy should be used", func() {
				So(out["sport"], ShouldEqual, "soccer")
				So(out, ShouldNotContainKey, "notes")
			})
		})
	})
}
