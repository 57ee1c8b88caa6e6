package interview

import "math"

// Criterion names one rubric dimension.
type Criterion string

const (
	Clarity     Criterion = "clarity"
	Correctness Criterion = "correctness"
	Depth       Criterion = "depth"
)

// Criteria returns the rubric dimensions in report order.
func Criteria() []Criterion {
	return []Criterion{Clarity, Correctness, Depth}
}

// Score is a single rubric mark. Valid marks are 1 through 10; 0 only
// appears in an empty evaluation.
type Score struct {
	Score         int    `json:"score"`
	Justification string `json:"justification"`
}

// Rubric holds one Score per criterion.
type Rubric struct {
	Clarity     Score `json:"clarity"`
	Correctness Score `json:"correctness"`
	Depth       Score `json:"depth"`
}

// Get returns the score for a criterion.
func (r Rubric) Get(c Criterion) Score {
	switch c {
	case Clarity:
		return r.Clarity
	case Correctness:
		return r.Correctness
	case Depth:
		return r.Depth
	}
	return Score{}
}

// Set assigns the score for a criterion.
func (r *Rubric) Set(c Criterion, s Score) {
	switch c {
	case Clarity:
		r.Clarity = s
	case Correctness:
		r.Correctness = s
	case Depth:
		r.Depth = s
	}
}

// Evaluation is the scored assessment of one answer. Its JSON form is the
// structured response shape requested from the model.
type Evaluation struct {
	Rubric         Rubric `json:"evaluation"`
	OverallSummary string `json:"overall_summary"`
}

const emptyJustification = "Not evaluated."

// EmptyEvaluation is substituted when an answer could not be scored.
// Every criterion is present with a score of zero.
func EmptyEvaluation() Evaluation {
	var r Rubric
	for _, c := range Criteria() {
		r.Set(c, Score{Score: 0, Justification: emptyJustification})
	}
	return Evaluation{
		Rubric:         r,
		OverallSummary: "Evaluation unavailable for this answer.",
	}
}

// AggregateScore is the mean of the three criterion scores rounded half up.
func AggregateScore(e Evaluation) int {
	var sum int
	for _, c := range Criteria() {
		sum += e.Rubric.Get(c).Score
	}
	mean := float64(sum) / float64(len(Criteria()))
	return int(math.Floor(mean + 0.5))
}
