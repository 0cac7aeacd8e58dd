// Command bulktest scores a CSV batch of test jobs against the scoring
// model and reports how often the model's rank matches the human rank.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/okian/jobrank/internal/bulktest"
	"github.com/okian/jobrank/internal/domain/model"
	"github.com/okian/jobrank/internal/domain/scheme"
)

func main() {
	var (
		csvPath     = flag.String("csv", "", "path to the job batch CSV (required)")
		weightsPath = flag.String("weights", "", "path to a JSON weight map; scheme defaults when empty")
		schemePath  = flag.String("scheme", "", "path to an exported scheme JSON; built-in scheme when empty")
		outPath     = flag.String("out", "", "write the scored report as CSV to this path")
		showAll     = flag.Bool("v", false, "list every scored job, not just mismatches")
	)
	flag.Parse()

	if *csvPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(*csvPath, *weightsPath, *schemePath, *outPath, *showAll); err != nil {
		fmt.Fprintln(os.Stderr, "bulktest:", err)
		os.Exit(1)
	}
}

func run(csvPath, weightsPath, schemePath, outPath string, showAll bool) error {
	store := scheme.NewStore()
	if schemePath != "" {
		data, err := os.ReadFile(schemePath)
		if err != nil {
			return fmt.Errorf("reading scheme: %w", err)
		}
		if err := store.ImportJSON(data); err != nil {
			return fmt.Errorf("importing scheme: %w", err)
		}
	}
	criteria := store.Criteria()
	ranks := store.Ranks()

	weights := store.DefaultWeights()
	if weightsPath != "" {
		data, err := os.ReadFile(weightsPath)
		if err != nil {
			return fmt.Errorf("reading weights: %w", err)
		}
		var w model.WeightSet
		if err := json.Unmarshal(data, &w); err != nil {
			return fmt.Errorf("parsing weights: %w", err)
		}
		weights = w
	}

	f, err := os.Open(csvPath)
	if err != nil {
		return fmt.Errorf("opening batch: %w", err)
	}
	defer f.Close()

	result, err := bulktest.ParseJobsCSV(f, criteria, ranks)
	if err != nil {
		return fmt.Errorf("parsing batch: %w", err)
	}
	for _, warning := range result.Warnings {
		fmt.Fprintln(os.Stderr, "warning:", warning)
	}

	report, err := bulktest.Run(result.Jobs, weights, criteria, ranks)
	if err != nil {
		return fmt.Errorf("running report: %w", err)
	}

	printSummary(report)
	if showAll {
		printJobs(report.View(bulktest.FilterAll, bulktest.SortByTitle, bulktest.Ascending))
	} else if len(report.Mismatches) > 0 {
		fmt.Println("\nMismatches:")
		printJobs(report.View(bulktest.FilterMismatches, bulktest.SortByTitle, bulktest.Ascending))
	}

	if outPath != "" {
		out, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("creating report file: %w", err)
		}
		defer out.Close()
		if err := bulktest.WriteReportCSV(out, report, criteria, ranks); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
		fmt.Println("\nreport written to", outPath)
	}
	return nil
}

func printSummary(report bulktest.Report) {
	s := report.Summary
	fmt.Printf("jobs:       %d (%d complete, %d incomplete)\n", s.Total, s.Complete, s.Incomplete)
	fmt.Printf("matched:    %d\n", s.Matched)
	fmt.Printf("mismatched: %d\n", s.Mismatched)
	fmt.Printf("match rate: %.1f%%\n", s.MatchPercentage)
}

func printJobs(jobs []bulktest.ScoredJob) {
	for _, j := range jobs {
		mark := "x"
		if j.Matched {
			mark = "ok"
		}
		fmt.Printf("  [%s] %s (%s): model %s at %.2f, expected %s\n",
			mark, j.Title, j.Organization, j.ModelRankName, j.ModelScore, j.ExpectedRankID)
	}
}
