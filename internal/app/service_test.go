package service_test

import (
	"context"
	"testing"
	"time"

	service "github.com/coachcore/privacyd/internal/app"
	"github.com/coachcore/privacyd/internal/domain/model"
	"github.com/coachcore/privacyd/pkg/logger"
	"github.com/coachcore/privacyd/pkg/metrics"
	. "github.com/smartystreets/goconvey/convey"
)

// counterValue sums a counter family from the global registry.
func counterValue(name string) float64 {
	families, err := metrics.GetRegistry().Gather()
	if err != nil {
		return 0
	}
	total := 0.0
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			total += m.GetCounter().GetValue()
		}
	}
	return total
}

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it should have sensible defaults", func() {
			So(svc, ShouldNotBeNil)
		})
	})

	Convey("Given a new service with custom options", t, func() {
		svc := service.New(
			service.WithWorkerCount(8),
			service.WithQueueSize(50_000),
			service.WithDedupeSize(25_000),
			service.WithMaxRecordDepth(32),
			service.WithJanitorInterval(30*time.Second),
		)

		Convey("Then it should be created successfully", func() {
			So(svc, ShouldNotBeNil)
		})
	})
}

func TestService_Start(t *testing.T) {
	Convey("Given a new service", t, func() {
		svc := service.New()
		// Ensure service is stopped after test
		defer svc.Stop()

		Convey("When starting the service", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			err := svc.Start(ctx)

			Convey("Then it should start successfully", func() {
				So(err, ShouldBeNil)
			})

			Convey("And it should be marked as started", func() {
				stats := svc.GetStats()
				So(stats["started"], ShouldEqual, true)
			})
		})
	})
}

func TestService_Stop(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := service.New()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := svc.Start(ctx)
		So(err, ShouldBeNil)

		Convey("When stopping the service", func() {
			svc.Stop()

			Convey("Then it should be marked as stopped", func() {
				stats := svc.GetStats()
				So(stats["started"], ShouldEqual, false)
			})
		})
	})
}

func TestService_SeenAndRecord(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := service.New()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := svc.Start(ctx)
		So(err, ShouldBeNil)
		// Ensure service is stopped after test
		defer svc.Stop()

		Convey("When checking a new job ID", func() {
			jobID := "job-123"
			seen := svc.SeenAndRecord(ctx, jobID)

			Convey("Then it should not have been seen before", func() {
				So(seen, ShouldBeFalse)
			})
		})

		Convey("When checking the same job ID again", func() {
			duplicatesBefore := counterValue("privacyd_anonymizer_jobs_duplicate_total")

			jobID := "job-456"
			svc.SeenAndRecord(ctx, jobID)         // First time
			seen := svc.SeenAndRecord(ctx, jobID) // Second time

			Convey("Then it should have been seen before", func() {
				So(seen, ShouldBeTrue)
			})

			Convey("Then the duplicate should be counted exactly once", func() {
				after := counterValue("privacyd_anonymizer_jobs_duplicate_total")
				So(after, ShouldEqual, duplicatesBefore+1)
			})
		})
	})
}

func TestService_Anonymize(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := service.New()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := svc.Start(ctx)
		So(err, ShouldBeNil)
		defer svc.Stop()

		Convey("When anonymizing a player record", func() {
			record := model.Record{
				"firstName": "Jordan",
				"lastName":  "Avila",
				"age":       14,
				"sport":     "soccer",
			}

			res, err := svc.Anonymize(ctx, record, model.CategoryPlayerRecord, model.LevelMedium)

			Convey("Then it should produce a result without identifying fields", func() {
				So(err, ShouldBeNil)
				So(res.ID, ShouldStartWith, "anon_")
				So(res.AnonymizedData, ShouldNotContainKey, "firstName")
				So(res.AnonymizedData, ShouldNotContainKey, "lastName")
				So(res.AnonymizedData["age"], ShouldEqual, "13_17")
			})

			Convey("And the result should be retrievable from the archive", func() {
				So(err, ShouldBeNil)
				got, getErr := svc.Result(ctx, res.ID)
				So(getErr, ShouldBeNil)
				So(got.ID, ShouldEqual, res.ID)
			})
		})

		Convey("When anonymizing with an unknown category", func() {
			record := model.Record{"sport": "soccer"}

			_, err := svc.Anonymize(ctx, record, model.Category("mystery"), model.LevelHigh)

			Convey("Then it should return an error", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}

func TestService_Enqueue(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := service.New()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := svc.Start(ctx)
		So(err, ShouldBeNil)
		// Ensure service is stopped after test
		defer svc.Stop()

		Convey("When enqueueing a valid job", func() {
			job := model.Job{
				JobID: "job-123",
				Record: model.Record{
					"firstName": "Sam",
					"sport":     "basketball",
				},
				Category: model.CategoryPracticePlan,
				Level:    model.LevelLow,
			}

			success := svc.Enqueue(ctx, job)

			Convey("Then it should be enqueued successfully", func() {
				So(success, ShouldBeTrue)
			})
		})
	})
}

func TestService_GetStats(t *testing.T) {
	Convey("Given a new service", t, func() {
		svc := service.New()

		Convey("When getting stats before starting", func() {
			stats := svc.GetStats()

			Convey("Then it should return basic stats", func() {
				So(stats, ShouldNotBeNil)
				So(stats["started"], ShouldEqual, false)
			})
		})
	})
}
