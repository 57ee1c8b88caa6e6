// Package report renders finished interview reports as JSON or CSV and
// parses CSV exports back into entries.
package report

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/JaimeStill/candor/internal/interview"
	"github.com/JaimeStill/candor/pkg/formatting"
)

// Format names an export encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

var (
	// ErrUnknownFormat indicates an export format with no writer.
	ErrUnknownFormat = errors.New("unknown report format")
	// ErrMalformedCSV indicates a CSV export that does not match the column layout.
	ErrMalformedCSV = errors.New("malformed report csv")
)

var header = []string{
	"index",
	"question",
	"answer",
	"clarity_score",
	"clarity_justification",
	"correctness_score",
	"correctness_justification",
	"depth_score",
	"depth_justification",
	"aggregate_score",
	"degraded",
}

// ParseFormat validates a format name. An empty name selects JSON.
func ParseFormat(v string) (Format, error) {
	switch Format(v) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatCSV:
		return FormatCSV, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownFormat, v)
}

// ContentType returns the MIME type for f.
func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv"
	}
	return "application/json"
}

// Write renders rpt to w in format f.
func Write(w io.Writer, f Format, rpt *interview.Report) error {
	switch f {
	case FormatJSON:
		return WriteJSON(w, rpt)
	case FormatCSV:
		return WriteCSV(w, rpt)
	}
	return fmt.Errorf("%w: %s", ErrUnknownFormat, f)
}

// WriteJSON renders the full report, including candidate and holistic summary.
func WriteJSON(w io.Writer, rpt *interview.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rpt)
}

// WriteCSV renders one row per entry under a fixed header. CSV readers drop
// the CR of a quoted CRLF, so line endings are written as LF.
func WriteCSV(w io.Writer, rpt *interview.Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, e := range rpt.Entries {
		row := []string{
			strconv.Itoa(e.Index),
			formatting.NormalizeNewlines(e.Question),
			formatting.NormalizeNewlines(e.Answer),
		}
		for _, c := range interview.Criteria() {
			s := e.Evaluation.Rubric.Get(c)
			row = append(row, strconv.Itoa(s.Score), formatting.NormalizeNewlines(s.Justification))
		}
		row = append(row, strconv.Itoa(e.Aggregate), strconv.FormatBool(e.Degraded))

		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ParseCSV reads entries written by WriteCSV.
func ParseCSV(r io.Reader) ([]interview.ReportEntry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(header)

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedCSV, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: missing header", ErrMalformedCSV)
	}
	for i, col := range header {
		if rows[0][i] != col {
			return nil, fmt.Errorf("%w: column %d is %q, want %q", ErrMalformedCSV, i+1, rows[0][i], col)
		}
	}

	entries := make([]interview.ReportEntry, 0, len(rows)-1)
	for n, row := range rows[1:] {
		e, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %w", ErrMalformedCSV, n+1, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func parseRow(row []string) (interview.ReportEntry, error) {
	var e interview.ReportEntry

	index, err := strconv.Atoi(row[0])
	if err != nil {
		return e, fmt.Errorf("index: %w", err)
	}
	e.Index = index
	e.Question = row[1]
	e.Answer = row[2]

	col := 3
	for _, c := range interview.Criteria() {
		score, err := strconv.Atoi(row[col])
		if err != nil {
			return e, fmt.Errorf("%s score: %w", c, err)
		}
		e.Evaluation.Rubric.Set(c, interview.Score{Score: score, Justification: row[col+1]})
		col += 2
	}

	if e.Aggregate, err = strconv.Atoi(row[col]); err != nil {
		return e, fmt.Errorf("aggregate score: %w", err)
	}
	if e.Degraded, err = strconv.ParseBool(row[col+1]); err != nil {
		return e, fmt.Errorf("degraded: %w", err)
	}
	return e, nil
}
