package interview

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/candor/pkg/formatting"
)

// ReportEntry is one question with its answer and evaluation.
type ReportEntry struct {
	Index      int        `json:"index"`
	Question   string     `json:"question"`
	Answer     string     `json:"answer"`
	Evaluation Evaluation `json:"evaluation"`
	Aggregate  int        `json:"aggregate_score"`
	Degraded   bool       `json:"degraded"`
}

// Report is the format-neutral export of a finished session.
// Every entry is fully populated; degraded entries carry placeholder values.
type Report struct {
	SessionID       uuid.UUID     `json:"session_id"`
	Candidate       Candidate     `json:"candidate"`
	Entries         []ReportEntry `json:"entries"`
	HolisticSummary string        `json:"holistic_summary"`
	Notes           string        `json:"notes,omitempty"`
	GeneratedAt     time.Time     `json:"generated_at"`
}

// BuildReport assembles the report for a session in the report state.
// Line endings in every text field are normalized to LF so the JSON and
// CSV exports carry the same text.
func BuildReport(s *Session) (*Report, error) {
	if s.State != StateReport {
		return nil, fmt.Errorf("%w: session is %s", ErrReportNotReady, s.State)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}

	entries := make([]ReportEntry, len(s.Answers))
	for i, a := range s.Answers {
		entries[i] = ReportEntry{
			Index:      a.SlotIndex,
			Question:   formatting.NormalizeNewlines(a.Question),
			Answer:     formatting.NormalizeNewlines(a.Text),
			Evaluation: normalizeEvaluation(a.Evaluation),
			Aggregate:  AggregateScore(a.Evaluation),
			Degraded:   a.Degraded,
		}
	}

	return &Report{
		SessionID:       s.ID,
		Candidate:       *s.Candidate,
		Entries:         entries,
		HolisticSummary: formatting.NormalizeNewlines(s.Summary),
		Notes:           formatting.NormalizeNewlines(s.Notes),
		GeneratedAt:     time.Now().UTC(),
	}, nil
}

func normalizeEvaluation(e Evaluation) Evaluation {
	for _, c := range Criteria() {
		s := e.Rubric.Get(c)
		s.Justification = formatting.NormalizeNewlines(s.Justification)
		e.Rubric.Set(c, s)
	}
	e.OverallSummary = formatting.NormalizeNewlines(e.OverallSummary)
	return e
}
