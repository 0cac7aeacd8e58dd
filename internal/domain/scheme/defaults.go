package scheme

import "github.com/okian/jobrank/internal/domain/model"

// Default rank thresholds: A >= 4.0, B >= 2.5, C >= 1.0.
const (
	defaultRankAMin = 4.0
	defaultRankBMin = 2.5
)

// DefaultScheme returns the bootstrap four-criterion, three-rank
// scheme used when no administrator configuration exists.
func DefaultScheme() Scheme {
	return Scheme{
		Version: "1.0.0",
		Criteria: []model.Criterion{
			{
				ID:            "client_engagement",
				Name:          "Client Engagement",
				Description:   "Quality of client relationship and decision-making",
				DefaultWeight: 0.25,
				ScaleDescriptions: map[int]string{
					5: "Highly Engaged: Responds within 24h, quick interviews",
					4: "Good: Responds within 48h, generally timely",
					3: "Moderate: Responds within a week, some delays",
					2: "Low: Slow responses (>1 week), minimal feedback",
					1: "Poor: Very unresponsive, ghosts candidates",
				},
				Removable: false,
				Order:     1,
			},
			{
				ID:            "search_difficulty",
				Name:          "Search Difficulty",
				Description:   "How hard it is to find qualified candidates",
				DefaultWeight: 0.25,
				ScaleDescriptions: map[int]string{
					5: "Very Easy: Large talent pool, common skills",
					4: "Easy: Good talent pool, standard requirements",
					3: "Moderate: Limited pool, some specialized skills",
					2: "Difficult: Scarce talent, niche skills",
					1: "Very Difficult: Extremely rare skill combination",
				},
				Removable: false,
				Order:     2,
			},
			{
				ID:            "time_open",
				Name:          "Time Open",
				Description:   "How long the job has been open (urgency)",
				DefaultWeight: 0.25,
				ScaleDescriptions: map[int]string{
					5: "Brand New: 0-14 days open",
					4: "Fresh: 15-30 days open",
					3: "Moderate: 31-60 days open",
					2: "Stale: 61-90 days open",
					1: "Very Stale: 90+ days open",
				},
				Removable: false,
				Order:     3,
			},
			{
				ID:            "fee_size",
				Name:          "Fee Size",
				Description:   "Revenue potential of the placement",
				DefaultWeight: 0.25,
				ScaleDescriptions: map[int]string{
					5: "Excellent: £40k+ fee",
					4: "Good: £30k-40k fee",
					3: "Moderate: £20k-30k fee",
					2: "Low: £10k-20k fee",
					1: "Very Low: <£10k fee",
				},
				Removable: false,
				Order:     4,
			},
		},
		Ranks: []model.Rank{
			{ID: "rank_a", Name: "A", MinScore: defaultRankAMin, MaxScore: 5.0, Color: "#28a745", Order: 1},
			{ID: "rank_b", Name: "B", MinScore: defaultRankBMin, MaxScore: 3.99, Color: "#ffc107", Order: 2},
			{ID: "rank_c", Name: "C", MinScore: 1.0, MaxScore: 2.49, Color: "#dc3545", Order: 3},
		},
	}
}

// defaultScaleDescriptions is used for administrator-added criteria
// until the descriptions are edited.
func defaultScaleDescriptions() map[int]string {
	return map[int]string{
		5: "Excellent",
		4: "Good",
		3: "Average",
		2: "Below Average",
		1: "Poor",
	}
}
