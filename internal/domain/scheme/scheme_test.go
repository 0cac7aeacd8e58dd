package scheme_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/jobrank/internal/domain/scheme"
	"github.com/okian/jobrank/internal/domain/scoring"
)

func TestDefaultScheme(t *testing.T) {
	Convey("Given the default scheme", t, func() {
		s := scheme.DefaultScheme()

		Convey("Then it has four criteria and three ranks", func() {
			So(s.Criteria, ShouldHaveLength, 4)
			So(s.Ranks, ShouldHaveLength, 3)
			So(scheme.Validate(s), ShouldBeNil)
		})

		Convey("And the default weights form a valid set", func() {
			st := scheme.NewStore()
			So(scoring.ValidateWeights(st.DefaultWeights(), st.Criteria()), ShouldBeNil)
		})

		Convey("And the bootstrap criteria are not removable", func() {
			for _, c := range s.Criteria {
				So(c.Removable, ShouldBeFalse)
			}
		})
	})
}

func TestStoreCriteria(t *testing.T) {
	Convey("Given a scheme store", t, func() {
		st := scheme.NewStore()

		Convey("When a custom criterion is added", func() {
			created, err := st.AddCriterion("Urgency", "How urgently the client needs a hire")

			Convey("Then it starts removable at weight zero", func() {
				So(err, ShouldBeNil)
				So(created.ID, ShouldStartWith, "custom_")
				So(created.Removable, ShouldBeTrue)
				So(created.DefaultWeight, ShouldEqual, 0)
				So(st.Criteria(), ShouldHaveLength, 5)
			})

			Convey("And the default weights still form a valid set", func() {
				// The newcomer's zero weight keeps the configured sum
				// at 1.0, so no fallback is needed.
				weights := st.DefaultWeights()
				So(err, ShouldBeNil)
				So(weights[created.ID], ShouldEqual, 0)
				So(scoring.ValidateWeights(weights, st.Criteria()), ShouldBeNil)
			})

			Convey("And it can be removed again", func() {
				So(err, ShouldBeNil)
				So(st.RemoveCriterion(created.ID), ShouldBeNil)
				So(st.Criteria(), ShouldHaveLength, 4)
			})
		})

		Convey("When removing a bootstrap criterion", func() {
			err := st.RemoveCriterion("client_engagement")

			Convey("Then the edit is rejected", func() {
				So(err, ShouldWrap, scheme.ErrNotRemovable)
				So(st.Criteria(), ShouldHaveLength, 4)
			})
		})

		Convey("When updating a criterion's name and weight", func() {
			name := "Engagement"
			weight := 0.4
			err := st.UpdateCriterion("client_engagement", scheme.CriterionUpdate{
				Name:          &name,
				DefaultWeight: &weight,
			})

			So(err, ShouldBeNil)
			So(st.Criteria()[0].Name, ShouldEqual, "Engagement")
			So(st.Criteria()[0].DefaultWeight, ShouldEqual, 0.4)
		})

		Convey("When updating an unknown criterion", func() {
			name := "X"
			err := st.UpdateCriterion("nope", scheme.CriterionUpdate{Name: &name})

			So(err, ShouldWrap, scheme.ErrCriterionNotFound)
		})
	})
}

func TestStoreRanks(t *testing.T) {
	Convey("Given a scheme store", t, func() {
		st := scheme.NewStore()

		Convey("When a rank edit would leave a coverage gap", func() {
			minScore := 4.5
			err := st.UpdateRank("rank_a", scheme.RankUpdate{MinScore: &minScore})

			Convey("Then the edit is rejected and the scheme unchanged", func() {
				So(err, ShouldWrap, scheme.ErrInvalidScheme)
				snapshot := st.Snapshot()
				for _, r := range snapshot.Ranks {
					if r.ID == "rank_a" {
						So(r.MinScore, ShouldEqual, 4.0)
					}
				}
			})
		})

		Convey("When a rank edit would overlap its neighbour", func() {
			minA := 3.5
			So(st.UpdateRank("rank_a", scheme.RankUpdate{MinScore: &minA}), ShouldWrap, scheme.ErrInvalidScheme)
		})

		Convey("When a boundary is moved via a full import", func() {
			// Single edits cannot shift a shared boundary without a
			// transient gap; an import replaces both ranges at once.
			snapshot := st.Snapshot()
			for i := range snapshot.Ranks {
				switch snapshot.Ranks[i].ID {
				case "rank_a":
					snapshot.Ranks[i].MinScore = 3.5
				case "rank_b":
					snapshot.Ranks[i].MaxScore = 3.49
				}
			}

			Convey("Then the import succeeds and the new tiling holds", func() {
				So(st.Import(snapshot), ShouldBeNil)
				rank, err := scoring.AssignRank(3.75, st.Ranks())
				So(err, ShouldBeNil)
				So(rank.ID, ShouldEqual, "rank_a")
			})
		})

		Convey("When removing below the minimum rank count", func() {
			// Default has 3 ranks; a single removal breaks coverage
			// before it can break the count.
			err := st.RemoveRank("rank_b")
			So(err, ShouldWrap, scheme.ErrInvalidScheme)
		})

		Convey("When removing an unknown rank", func() {
			So(st.RemoveRank("nope"), ShouldWrap, scheme.ErrRankNotFound)
		})
	})
}

func TestStoreRevisionAndSubscribers(t *testing.T) {
	Convey("Given a scheme store with a subscriber", t, func() {
		st := scheme.NewStore()
		var notified []scheme.Scheme
		st.Subscribe(func(s scheme.Scheme) { notified = append(notified, s) })

		before := st.Snapshot().Revision

		Convey("When a mutation succeeds", func() {
			_, err := st.AddCriterion("Urgency", "")

			Convey("Then the revision advances and the subscriber sees a snapshot", func() {
				So(err, ShouldBeNil)
				So(st.Snapshot().Revision, ShouldEqual, before+1)
				So(notified, ShouldHaveLength, 1)
				So(notified[0].Criteria, ShouldHaveLength, 5)
			})
		})

		Convey("When a mutation fails", func() {
			err := st.RemoveCriterion("client_engagement")

			Convey("Then nothing advances and nobody is notified", func() {
				So(err, ShouldNotBeNil)
				So(st.Snapshot().Revision, ShouldEqual, before)
				So(notified, ShouldBeEmpty)
			})
		})
	})
}

func TestStoreImportExport(t *testing.T) {
	Convey("Given a customized scheme store", t, func() {
		st := scheme.NewStore()
		_, err := st.AddCriterion("Urgency", "client pressure")
		So(err, ShouldBeNil)

		Convey("When exported and imported into a fresh store", func() {
			data, err := st.ExportJSON()
			So(err, ShouldBeNil)

			fresh := scheme.NewStore()
			So(fresh.ImportJSON(data), ShouldBeNil)

			Convey("Then the fresh store carries the customization", func() {
				So(fresh.Criteria(), ShouldHaveLength, 5)
			})
		})

		Convey("When importing malformed JSON", func() {
			So(st.ImportJSON([]byte("{not json")), ShouldWrap, scheme.ErrInvalidScheme)
		})

		Convey("When importing a scheme with no ranks", func() {
			So(st.ImportJSON([]byte(`{"criteria":[{"id":"x","name":"X"}],"ranks":[]}`)), ShouldWrap, scheme.ErrInvalidScheme)
		})
	})
}

func TestStoreSeeding(t *testing.T) {
	Convey("Given a snapshot of a customized scheme", t, func() {
		base := scheme.NewStore()
		_, err := base.AddCriterion("Urgency", "client pressure")
		So(err, ShouldBeNil)
		snapshot := base.Snapshot()

		Convey("When seeding a store with it", func() {
			st, err := scheme.NewStoreFromScheme(snapshot)

			Convey("Then the store carries the customization", func() {
				So(err, ShouldBeNil)
				So(st.Criteria(), ShouldHaveLength, 5)
			})
		})

		Convey("When seeding with an invalid scheme", func() {
			snapshot.Ranks = nil
			st, err := scheme.NewStoreFromScheme(snapshot)

			Convey("Then the seed is rejected with the reason", func() {
				So(st, ShouldBeNil)
				So(err, ShouldWrap, scheme.ErrInvalidScheme)
			})
		})
	})
}
