package batch

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	jsoniter "github.com/json-iterator/go"
)

// thresholds of the reference results
const (
	SuccessThreshold    float32 = 0.001
	ComparisonThreshold float32 = 0.001
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Result is the score of one test: the proportion of different pixels.
type Result struct {
	Name  string  `json:"name"`
	Score float32 `json:"score"`
	Error string  `json:"error,omitempty"`
}

// Report stores the results of a run, in the order of the tests.
type Report struct {
	RunID    string        `json:"run_id"`
	Version  string        `json:"version"`
	Started  time.Time     `json:"started"`
	Duration time.Duration `json:"duration"`
	Results  []Result      `json:"results"`
}

// Summary counts the results of a run.
type Summary struct {
	Success int `json:"success"` // score below SuccessThreshold
	Fail    int `json:"fail"`
	Fatal   int `json:"fatal"` // worst score, among the failures
}

// Summarize counts the successes and failures of `results`.
func Summarize(results []Result) Summary {
	var s Summary
	for _, r := range results {
		if r.Score <= SuccessThreshold {
			s.Success++
		} else {
			s.Fail++
		}
		if r.Score == Worst {
			s.Fatal++
		}
	}
	return s
}

// WriteCSV writes one "name,score" line per test.
func (r *Report) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	for _, res := range r.Results {
		if err := cw.Write([]string{res.Name, strconv.FormatFloat(float64(res.Score), 'g', -1, 32)}); err != nil {
			return fmt.Errorf("writing results: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("writing results: %w", err)
	}
	return nil
}

// ReadCSV reads results written by WriteCSV.
func ReadCSV(r io.Reader) ([]Result, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 2
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading results: %w", err)
	}
	out := make([]Result, len(records))
	for i, rec := range records {
		score, err := strconv.ParseFloat(rec[1], 32)
		if err != nil {
			return nil, fmt.Errorf("reading results: invalid score for %s: %w", rec[0], err)
		}
		out[i] = Result{Name: rec[0], Score: float32(score)}
	}
	return out, nil
}

// WriteJSON writes the report, with its summary.
func (r *Report) WriteJSON(w io.Writer) error {
	out := struct {
		*Report
		Summary Summary `json:"summary"`
	}{r, Summarize(r.Results)}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

// Regression is a test whose score got worse than in a reference run.
type Regression struct {
	Name           string
	Reference, Got float32
}

// Regressions compares the results with reference results:
// a test regresses when its score grows by more than ComparisonThreshold.
// Tests missing in `reference` are ignored.
func (r *Report) Regressions(reference []Result) []Regression {
	ref := make(map[string]float32, len(reference))
	for _, res := range reference {
		ref[res.Name] = res.Score
	}
	var out []Regression
	for _, res := range r.Results {
		if score, ok := ref[res.Name]; ok && res.Score-score > ComparisonThreshold {
			out = append(out, Regression{Name: res.Name, Reference: score, Got: res.Score})
		}
	}
	return out
}
