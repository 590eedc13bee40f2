package batch

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// FormatResults formats the batch results as text, json or csv.
func (r *Result) FormatResults(format string) (string, error) {
	switch format {
	case "json":
		return formatJSON(r)
	case "csv":
		return formatCSV(r)
	case "", "text":
		return formatText(r), nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", format)
	}
}

type jsonItem struct {
	Item
	Error string `json:"error,omitempty"`
}

func formatJSON(r *Result) (string, error) {
	out := struct {
		Files    []jsonItem `json:"files"`
		Failed   int        `json:"failed"`
		Workers  int        `json:"workers"`
		Duration string     `json:"duration"`
	}{
		Files:    make([]jsonItem, len(r.Items)),
		Failed:   r.Failed(),
		Workers:  r.WorkerCount,
		Duration: r.Duration.Round(time.Millisecond).String(),
	}
	for i, it := range r.Items {
		out.Files[i] = jsonItem{Item: it}
		if it.Err != nil {
			out.Files[i].Error = it.Err.Error()
		}
	}
	bts, err := json.MarshalIndent(out, "", "  ")
	return string(bts), err
}

func formatCSV(r *Result) (string, error) {
	var output strings.Builder
	writer := csv.NewWriter(&output)
	rows := [][]string{{"input", "output", "rows", "cols", "interpolated", "clamped", "filled", "skipped", "error"}}
	for _, it := range r.Items {
		errText := ""
		if it.Err != nil {
			errText = it.Err.Error()
		}
		rows = append(rows, []string{
			it.Input,
			it.Output,
			strconv.Itoa(it.Rows),
			strconv.Itoa(it.Cols),
			strconv.Itoa(it.Stats.Interpolated),
			strconv.Itoa(it.Stats.Clamped),
			strconv.Itoa(it.Stats.Filled),
			strconv.Itoa(it.Stats.Skipped),
			errText,
		})
	}
	if err := writer.WriteAll(rows); err != nil {
		return "", err
	}
	return output.String(), nil
}

func formatText(r *Result) string {
	p := message.NewPrinter(language.English)
	var output strings.Builder
	for _, it := range r.Items {
		if it.Err != nil {
			output.WriteString(p.Sprintf("FAIL %s: %v\n", it.Input, it.Err))
			continue
		}
		output.WriteString(p.Sprintf("ok   %s -> %s (%d x %d, %d samples)\n",
			it.Input, it.Output, it.Rows, it.Cols, it.Rows*it.Cols))
	}
	return output.String()
}

// Summary renders the processing statistics with grouped thousands.
func (r *Result) Summary() string {
	p := message.NewPrinter(language.English)
	title := cases.Title(language.English)

	var total SampleTotals
	for _, it := range r.Items {
		total.add(it)
	}

	var b strings.Builder
	b.WriteString(p.Sprintf("\nProcessing Statistics:\n"))
	b.WriteString(p.Sprintf("  Total files: %d\n", len(r.Items)))
	b.WriteString(p.Sprintf("  Failed: %d\n", r.Failed()))
	b.WriteString(p.Sprintf("  Workers: %d\n", r.WorkerCount))
	b.WriteString(p.Sprintf("  Duration: %v\n", r.Duration.Round(time.Millisecond)))
	for _, c := range total.counts() {
		b.WriteString(p.Sprintf("  %s samples: %d\n", title.String(c.name), c.n))
	}
	return b.String()
}

// SampleTotals sums sample outcomes across items.
type SampleTotals struct {
	Interpolated, Clamped, Filled, Skipped int
}

func (s *SampleTotals) add(it Item) {
	s.Interpolated += it.Stats.Interpolated
	s.Clamped += it.Stats.Clamped
	s.Filled += it.Stats.Filled
	s.Skipped += it.Stats.Skipped
}

type namedCount struct {
	name string
	n    int
}

func (s SampleTotals) counts() []namedCount {
	return []namedCount{
		{"interpolated", s.Interpolated},
		{"clamped", s.Clamped},
		{"filled", s.Filled},
		{"skipped", s.Skipped},
	}
}
