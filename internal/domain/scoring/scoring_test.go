package scoring_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/jobrank/internal/domain/model"
	scoring "github.com/okian/jobrank/internal/domain/scoring"
)

func fourCriteria() []model.Criterion {
	return []model.Criterion{
		{ID: "client_engagement", Name: "Client Engagement", Order: 1},
		{ID: "search_difficulty", Name: "Search Difficulty", Order: 2},
		{ID: "time_open", Name: "Time Open", Order: 3},
		{ID: "fee_size", Name: "Fee Size", Order: 4},
	}
}

func threeRanks() []model.Rank {
	return []model.Rank{
		{ID: "rank_a", Name: "A", MinScore: 4.0, MaxScore: 5.0},
		{ID: "rank_b", Name: "B", MinScore: 2.5, MaxScore: 3.99},
		{ID: "rank_c", Name: "C", MinScore: 1.0, MaxScore: 2.49},
	}
}

func TestValidateWeights(t *testing.T) {
	Convey("Given the four-criterion configuration", t, func() {
		criteria := fourCriteria()

		Convey("When every weight is 0.25", func() {
			weights := model.WeightSet{
				"client_engagement": 0.25,
				"search_difficulty": 0.25,
				"time_open":         0.25,
				"fee_size":          0.25,
			}

			Convey("Then the set is valid", func() {
				So(scoring.ValidateWeights(weights, criteria), ShouldBeNil)
			})
		})

		Convey("When every weight is 0.30", func() {
			weights := model.WeightSet{
				"client_engagement": 0.30,
				"search_difficulty": 0.30,
				"time_open":         0.30,
				"fee_size":          0.30,
			}

			Convey("Then the set is rejected for summing to 1.2", func() {
				err := scoring.ValidateWeights(weights, criteria)
				So(err, ShouldNotBeNil)
				So(err, ShouldWrap, scoring.ErrInvalidWeightSet)
			})
		})

		Convey("When a criterion has no weight", func() {
			weights := model.WeightSet{
				"client_engagement": 0.5,
				"search_difficulty": 0.25,
				"time_open":         0.25,
				"unknown":           0.0,
			}

			Convey("Then the set is rejected", func() {
				So(scoring.ValidateWeights(weights, criteria), ShouldWrap, scoring.ErrInvalidWeightSet)
			})
		})

		Convey("When a weight is negative", func() {
			weights := model.WeightSet{
				"client_engagement": 1.25,
				"search_difficulty": -0.25,
				"time_open":         0.0,
				"fee_size":          0.0,
			}

			Convey("Then the set is rejected", func() {
				So(scoring.ValidateWeights(weights, criteria), ShouldWrap, scoring.ErrInvalidWeightSet)
			})
		})

		Convey("When the sum deviates within the tolerance", func() {
			weights := model.WeightSet{
				"client_engagement": 0.25,
				"search_difficulty": 0.25,
				"time_open":         0.25,
				"fee_size":          0.25 + 5e-5,
			}

			Convey("Then the set is accepted", func() {
				So(scoring.ValidateWeights(weights, criteria), ShouldBeNil)
			})
		})
	})
}

func TestValidateFactorScores(t *testing.T) {
	Convey("Given the four-criterion configuration", t, func() {
		criteria := fourCriteria()

		Convey("When every criterion is scored in range", func() {
			scores := model.FactorScoreSet{
				"client_engagement": 5,
				"search_difficulty": 3,
				"time_open":         1,
				"fee_size":          4,
			}

			So(scoring.ValidateFactorScores(scores, criteria), ShouldBeNil)
		})

		Convey("When a criterion is missing", func() {
			scores := model.FactorScoreSet{
				"client_engagement": 5,
				"search_difficulty": 3,
				"time_open":         1,
			}

			So(scoring.ValidateFactorScores(scores, criteria), ShouldWrap, scoring.ErrInvalidFactorScore)
		})

		Convey("When a score is out of range", func() {
			scores := model.FactorScoreSet{
				"client_engagement": 5,
				"search_difficulty": 3,
				"time_open":         0,
				"fee_size":          6,
			}

			So(scoring.ValidateFactorScores(scores, criteria), ShouldWrap, scoring.ErrInvalidFactorScore)
		})
	})
}

func TestComposite(t *testing.T) {
	Convey("Given equal weights over four criteria", t, func() {
		criteria := fourCriteria()
		weights := scoring.EqualWeights(criteria)

		Convey("When all scores are maximal", func() {
			scores := model.FactorScoreSet{
				"client_engagement": 5, "search_difficulty": 5, "time_open": 5, "fee_size": 5,
			}
			composite, err := scoring.Composite(scores, weights, criteria)

			So(err, ShouldBeNil)
			So(composite, ShouldEqual, 5.0)
		})

		Convey("When all scores are minimal", func() {
			scores := model.FactorScoreSet{
				"client_engagement": 1, "search_difficulty": 1, "time_open": 1, "fee_size": 1,
			}
			composite, err := scoring.Composite(scores, weights, criteria)

			So(err, ShouldBeNil)
			So(composite, ShouldEqual, 1.0)
		})

		Convey("When scores are mixed", func() {
			scores := model.FactorScoreSet{
				"client_engagement": 5, "search_difficulty": 4, "time_open": 2, "fee_size": 3,
			}
			composite, err := scoring.Composite(scores, weights, criteria)

			Convey("Then the composite is the rounded weighted sum", func() {
				So(err, ShouldBeNil)
				So(composite, ShouldEqual, 3.5)
			})
		})

		Convey("When weights would produce a long fraction", func() {
			uneven := model.WeightSet{
				"client_engagement": 0.33,
				"search_difficulty": 0.33,
				"time_open":         0.17,
				"fee_size":          0.17,
			}
			scores := model.FactorScoreSet{
				"client_engagement": 4, "search_difficulty": 3, "time_open": 5, "fee_size": 2,
			}
			composite, err := scoring.Composite(scores, uneven, criteria)

			Convey("Then the result carries at most 2 decimals", func() {
				So(err, ShouldBeNil)
				// 4*0.33 + 3*0.33 + 5*0.17 + 2*0.17 = 3.50
				So(composite, ShouldEqual, 3.5)
			})
		})

		Convey("When the scores are invalid", func() {
			scores := model.FactorScoreSet{
				"client_engagement": 9, "search_difficulty": 4, "time_open": 2, "fee_size": 3,
			}
			_, err := scoring.Composite(scores, weights, criteria)

			So(err, ShouldWrap, scoring.ErrInvalidFactorScore)
		})
	})
}

func TestAssignRank(t *testing.T) {
	Convey("Given the default three-tier thresholds", t, func() {
		ranks := threeRanks()

		Convey("Then boundary scores land on the expected tiers", func() {
			cases := []struct {
				score float64
				want  string
			}{
				{5.00, "rank_a"},
				{4.00, "rank_a"},
				{3.99, "rank_b"},
				{2.50, "rank_b"},
				{2.49, "rank_c"},
				{1.00, "rank_c"},
			}
			for _, tc := range cases {
				rank, err := scoring.AssignRank(tc.score, ranks)
				So(err, ShouldBeNil)
				So(rank.ID, ShouldEqual, tc.want)
			}
		})

		Convey("When the score is outside the domain", func() {
			_, err := scoring.AssignRank(0.5, ranks)
			So(err, ShouldWrap, scoring.ErrScoreOutOfDomain)

			_, err = scoring.AssignRank(5.01, ranks)
			So(err, ShouldWrap, scoring.ErrScoreOutOfDomain)
		})

		Convey("When the thresholds leave a gap", func() {
			gapped := []model.Rank{
				{ID: "rank_a", Name: "A", MinScore: 4.0, MaxScore: 5.0},
				{ID: "rank_c", Name: "C", MinScore: 1.5, MaxScore: 2.49},
			}

			Convey("Then an uncovered score yields an error, not a default tier", func() {
				_, err := scoring.AssignRank(1.2, gapped)
				So(err, ShouldWrap, scoring.ErrRankNotFound)
			})
		})
	})
}

func TestWeightsFromPercent(t *testing.T) {
	Convey("Given a percentage-convention weight map", t, func() {
		percent := map[string]float64{
			"client_engagement": 40,
			"search_difficulty": 30,
			"time_open":         20,
			"fee_size":          10,
		}

		Convey("When converted to the fractional convention", func() {
			weights := scoring.WeightsFromPercent(percent)

			Convey("Then the result validates against the criteria", func() {
				So(weights["client_engagement"], ShouldEqual, 0.4)
				So(scoring.ValidateWeights(weights, fourCriteria()), ShouldBeNil)
			})
		})
	})
}

func TestBreakdown(t *testing.T) {
	Convey("Given equal weights over four criteria", t, func() {
		criteria := fourCriteria()
		weights := scoring.EqualWeights(criteria)
		scores := model.FactorScoreSet{
			"client_engagement": 5, "search_difficulty": 4, "time_open": 2, "fee_size": 3,
		}

		Convey("When a breakdown is requested", func() {
			contributions, err := scoring.Breakdown(scores, weights, criteria)

			Convey("Then each criterion contributes score times weight, in display order", func() {
				So(err, ShouldBeNil)
				So(contributions, ShouldHaveLength, 4)
				So(contributions[0].CriterionID, ShouldEqual, "client_engagement")
				So(contributions[0].Contribution, ShouldEqual, 1.25)
				So(contributions[2].CriterionID, ShouldEqual, "time_open")
				So(contributions[2].Contribution, ShouldEqual, 0.5)
			})
		})
	})
}

func TestRound2(t *testing.T) {
	Convey("Given values with floating point noise", t, func() {
		So(scoring.Round2(3.004999), ShouldEqual, 3.0)
		So(scoring.Round2(3.0051), ShouldEqual, 3.01)
		So(scoring.Round2(2.4999999999), ShouldEqual, 2.5)
	})
}
