package api

import (
	"testing"

	"github.com/okian/jobrank/internal/adapters/repository"
	"github.com/okian/jobrank/internal/domain/model"
)

func boardFixture() []repository.BoardEntry {
	return []repository.BoardEntry{
		{Job: model.Job{ID: "job_1", Title: "Backend Engineer", ClientName: "Acme"}},
		{Job: model.Job{ID: "job_2", Title: "Data Engineer", ClientName: "Globex"},
			Ranking: &model.JobRanking{RankID: "rank_a", RankName: "A", FinalScore: 4.2}},
		{Job: model.Job{ID: "job_3", Title: "Designer", ClientName: "Initech"},
			Ranking: &model.JobRanking{RankID: "rank_b", RankName: "B", FinalScore: 3.1}},
	}
}

func TestFilterBoard(t *testing.T) {
	entries := boardFixture()

	got := filterBoard(entries, "", "globex")
	if len(got) != 1 || got[0].Job.ID != "job_2" {
		t.Fatalf("unexpected search result: %+v", got)
	}

	got = filterBoard(entries, "A", "")
	if len(got) != 1 || got[0].Job.ID != "job_2" {
		t.Fatalf("unexpected rank result: %+v", got)
	}

	got = filterBoard(entries, "rank_b", "initech")
	if len(got) != 1 || got[0].Job.ID != "job_3" {
		t.Fatalf("unexpected combined result: %+v", got)
	}
}

func TestFilterBoardLeavesInputIntact(t *testing.T) {
	entries := boardFixture()

	filterBoard(entries, "", "globex")

	want := []string{"job_1", "job_2", "job_3"}
	for i, e := range entries {
		if e.Job.ID != want[i] {
			t.Fatalf("input slice mutated at index %d: got %s, want %s", i, e.Job.ID, want[i])
		}
	}
}
