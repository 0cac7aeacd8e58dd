package bulktest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/okian/jobrank/internal/domain/model"
)

// Import limits.
const (
	// largeBatchWarning is the row count above which a performance
	// advisory is raised. It is not a hard limit.
	largeBatchWarning = 100
)

// ErrEmptyCSV indicates an import source with no usable rows.
var ErrEmptyCSV = errors.New("no valid job records found in CSV")

// ImportResult carries the parsed batch plus any advisories raised
// during parsing (dropped rows, large batch).
type ImportResult struct {
	Jobs     []Job
	Warnings []string
}

// ParseJobsCSV reads a validation batch from a tabular source.
//
// Required columns: job_title and organization (company is accepted as
// an alias). Optional columns: one per criterion id or name carrying a
// pre-entered 1-5 score, and expected_rank carrying a rank id or name.
// Rows missing either identifying field are dropped with a warning.
func ParseJobsCSV(r io.Reader, criteria []model.Criterion, ranks []model.Rank) (ImportResult, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return ImportResult{}, fmt.Errorf("reading CSV header: %w", err)
	}

	titleIdx, orgIdx := -1, -1
	criterionCols := make(map[int]string) // column index -> criterion id
	rankIdx := -1
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		switch key {
		case "job_title", "title":
			titleIdx = i
		case "organization", "company":
			orgIdx = i
		case "expected_rank", "user_rank":
			rankIdx = i
		default:
			if id, ok := matchCriterion(key, criteria); ok {
				criterionCols[i] = id
			}
		}
	}
	if titleIdx < 0 || orgIdx < 0 {
		return ImportResult{}, fmt.Errorf("%w: missing required columns job_title/organization", ErrEmptyCSV)
	}

	var res ImportResult
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return ImportResult{}, fmt.Errorf("reading CSV row %d: %w", line, err)
		}
		line++

		title := field(record, titleIdx)
		org := field(record, orgIdx)
		if title == "" || org == "" {
			res.Warnings = append(res.Warnings,
				fmt.Sprintf("row %d dropped: missing job title or organization", line))
			continue
		}

		job := NewJob(title, org, "csv")
		for idx, cid := range criterionCols {
			raw := field(record, idx)
			if raw == "" {
				continue
			}
			v, err := strconv.Atoi(raw)
			if err != nil {
				res.Warnings = append(res.Warnings,
					fmt.Sprintf("row %d: ignoring non-integer score %q for %s", line, raw, cid))
				continue
			}
			job.Scores[cid] = v
		}
		if rankIdx >= 0 {
			if id, ok := matchRank(field(record, rankIdx), ranks); ok {
				job.ExpectedRankID = id
			}
		}
		res.Jobs = append(res.Jobs, job)
	}

	if len(res.Jobs) == 0 {
		return ImportResult{}, ErrEmptyCSV
	}
	if len(res.Jobs) > largeBatchWarning {
		res.Warnings = append(res.Warnings,
			fmt.Sprintf("large batch: %d jobs exceeds the advised maximum of %d", len(res.Jobs), largeBatchWarning))
	}
	return res, nil
}

func field(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

func matchCriterion(key string, criteria []model.Criterion) (string, bool) {
	for _, c := range criteria {
		if key == strings.ToLower(c.ID) || key == strings.ToLower(c.Name) {
			return c.ID, true
		}
	}
	return "", false
}

func matchRank(value string, ranks []model.Rank) (string, bool) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return "", false
	}
	for _, r := range ranks {
		if v == strings.ToLower(r.ID) || v == strings.ToLower(r.Name) {
			return r.ID, true
		}
	}
	return "", false
}

// WriteReportCSV exports the analyzed jobs of a report as a flat table:
// identifying fields, each criterion's raw score, the expected rank,
// the model rank, the model score, and the match flag. The export is
// one-directional; it is not required to round-trip.
func WriteReportCSV(w io.Writer, report Report, criteria []model.Criterion, ranks []model.Rank) error {
	cw := csv.NewWriter(w)

	header := []string{"Job Title", "Organization"}
	for _, c := range criteria {
		header = append(header, c.Name)
	}
	header = append(header, "Expected Rank", "Model Rank", "Model Score", "Match")
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}

	rankNames := make(map[string]string, len(ranks))
	for _, r := range ranks {
		rankNames[r.ID] = r.Name
	}

	jobs := report.View(FilterAll, SortByTitle, Ascending)
	for _, job := range jobs {
		row := []string{job.Title, job.Organization}
		for _, c := range criteria {
			row = append(row, strconv.Itoa(job.Scores[c.ID]))
		}
		match := "No"
		if job.Matched {
			match = "Yes"
		}
		row = append(row,
			rankNames[job.ExpectedRankID],
			job.ModelRankName,
			strconv.FormatFloat(job.ModelScore, 'f', 2, 64),
			match,
		)
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing CSV row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing CSV: %w", err)
	}
	return nil
}
