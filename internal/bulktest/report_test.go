package bulktest_test

import (
	"fmt"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/jobrank/internal/bulktest"
	"github.com/okian/jobrank/internal/domain/model"
	"github.com/okian/jobrank/internal/domain/scheme"
	"github.com/okian/jobrank/internal/domain/scoring"
)

// completeJob builds a test job scoring v on every criterion with the
// given expected rank.
func completeJob(title string, v int, expectedRank string, criteria []model.Criterion) bulktest.Job {
	job := bulktest.NewJob(title, "Acme Search", "manual")
	for _, c := range criteria {
		job.Scores[c.ID] = v
	}
	job.ExpectedRankID = expectedRank
	return job
}

func TestRun(t *testing.T) {
	Convey("Given the default scheme and equal weights", t, func() {
		sc := scheme.DefaultScheme()
		weights := scoring.EqualWeights(sc.Criteria)

		Convey("When 7 of 10 complete jobs match and 2 more are incomplete", func() {
			var jobs []bulktest.Job
			// Uniform 5s produce composite 5.00, which is rank A.
			for i := 0; i < 7; i++ {
				jobs = append(jobs, completeJob(fmt.Sprintf("match-%d", i), 5, "rank_a", sc.Criteria))
			}
			// Uniform 1s produce composite 1.00 (rank C); expecting A
			// forces a mismatch.
			for i := 0; i < 3; i++ {
				jobs = append(jobs, completeJob(fmt.Sprintf("miss-%d", i), 1, "rank_a", sc.Criteria))
			}
			// Incomplete jobs never reach the scorer.
			jobs = append(jobs, bulktest.NewJob("unscored", "Acme Search", "manual"))
			noRank := completeJob("no-rank", 3, "", sc.Criteria)
			jobs = append(jobs, noRank)

			report, err := bulktest.Run(jobs, weights, sc.Criteria, sc.Ranks)

			Convey("Then the match percentage is 70 and incomplete jobs are excluded", func() {
				So(err, ShouldBeNil)
				So(report.Summary.Total, ShouldEqual, 12)
				So(report.Summary.Complete, ShouldEqual, 10)
				So(report.Summary.Incomplete, ShouldEqual, 2)
				So(report.Summary.Matched, ShouldEqual, 7)
				So(report.Summary.Mismatched, ShouldEqual, 3)
				So(report.Summary.MatchPercentage, ShouldEqual, 70.0)
			})

			Convey("And every scored job carries the model verdict", func() {
				So(err, ShouldBeNil)
				So(report.Matches[0].ModelRankID, ShouldEqual, "rank_a")
				So(report.Matches[0].ModelScore, ShouldEqual, 5.0)
				So(report.Mismatches[0].ModelRankID, ShouldEqual, "rank_c")
				So(report.Mismatches[0].Matched, ShouldBeFalse)
				So(report.Mismatches[0].Breakdown, ShouldHaveLength, 4)
			})
		})

		Convey("When every job is incomplete", func() {
			jobs := []bulktest.Job{bulktest.NewJob("empty", "Acme Search", "csv")}
			report, err := bulktest.Run(jobs, weights, sc.Criteria, sc.Ranks)

			Convey("Then the match percentage is zero, not NaN", func() {
				So(err, ShouldBeNil)
				So(report.Summary.Complete, ShouldEqual, 0)
				So(report.Summary.MatchPercentage, ShouldEqual, 0.0)
			})
		})

		Convey("When the weights are invalid", func() {
			bad := model.WeightSet{"client_engagement": 1.0}
			_, err := bulktest.Run(nil, bad, sc.Criteria, sc.Ranks)

			Convey("Then the run fails before any job is scored", func() {
				So(err, ShouldWrap, scoring.ErrInvalidWeightSet)
			})
		})
	})
}

func TestReportView(t *testing.T) {
	Convey("Given a report with mixed outcomes", t, func() {
		sc := scheme.DefaultScheme()
		weights := scoring.EqualWeights(sc.Criteria)
		jobs := []bulktest.Job{
			completeJob("zeta", 5, "rank_a", sc.Criteria),
			completeJob("alpha", 1, "rank_a", sc.Criteria),
			completeJob("mid", 3, "rank_b", sc.Criteria),
		}
		report, err := bulktest.Run(jobs, weights, sc.Criteria, sc.Ranks)
		So(err, ShouldBeNil)

		Convey("When viewing all jobs sorted by title", func() {
			view := report.View(bulktest.FilterAll, bulktest.SortByTitle, bulktest.Ascending)

			So(view, ShouldHaveLength, 3)
			So(view[0].Title, ShouldEqual, "alpha")
			So(view[2].Title, ShouldEqual, "zeta")
		})

		Convey("When viewing by model score descending", func() {
			view := report.View(bulktest.FilterAll, bulktest.SortByModelScore, bulktest.Descending)

			So(view[0].ModelScore, ShouldEqual, 5.0)
			So(view[2].ModelScore, ShouldEqual, 1.0)
		})

		Convey("When filtering mismatches only", func() {
			view := report.View(bulktest.FilterMismatches, bulktest.SortByTitle, bulktest.Ascending)

			So(view, ShouldHaveLength, 1)
			So(view[0].Title, ShouldEqual, "alpha")
		})

		Convey("Then viewing never mutates the report", func() {
			_ = report.View(bulktest.FilterAll, bulktest.SortByModelScore, bulktest.Descending)
			So(report.Matches[0].Title, ShouldEqual, "zeta")
		})
	})
}
