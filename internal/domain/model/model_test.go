package model_test

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/jobrank/internal/domain/model"
)

func TestWeightSetClone(t *testing.T) {
	Convey("Given a weight set", t, func() {
		original := model.WeightSet{"client_engagement": 0.25, "fee_size": 0.75}

		Convey("When it is cloned and the clone mutated", func() {
			clone := original.Clone()
			clone["client_engagement"] = 0.5
			clone["time_open"] = 0.1

			Convey("Then the original is unchanged", func() {
				So(original["client_engagement"], ShouldEqual, 0.25)
				So(original, ShouldHaveLength, 2)
				So(clone, ShouldHaveLength, 3)
			})
		})
	})
}

func TestFactorScoreSetClone(t *testing.T) {
	Convey("Given a factor score set", t, func() {
		original := model.FactorScoreSet{"client_engagement": 4}

		Convey("When it is cloned and the clone mutated", func() {
			clone := original.Clone()
			clone["client_engagement"] = 1

			Convey("Then the original is unchanged", func() {
				So(original["client_engagement"], ShouldEqual, 4)
			})
		})
	})
}

func TestJobDaysOpen(t *testing.T) {
	Convey("Given a tracked job", t, func() {
		now := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)

		Convey("When it opened ten days ago", func() {
			job := model.Job{OpenedAt: now.AddDate(0, 0, -10)}
			So(job.DaysOpen(now), ShouldEqual, 10)
		})

		Convey("When it opened earlier the same day", func() {
			job := model.Job{OpenedAt: now.Add(-2 * time.Hour)}
			So(job.DaysOpen(now), ShouldEqual, 0)
		})

		Convey("When the open date is in the future", func() {
			job := model.Job{OpenedAt: now.AddDate(0, 0, 3)}
			So(job.DaysOpen(now), ShouldEqual, 0)
		})
	})
}
