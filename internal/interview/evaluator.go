package interview

import (
	"context"
	"fmt"
	"strings"

	"github.com/JaimeStill/candor/internal/prompts"
	"github.com/JaimeStill/candor/pkg/ai"
)

// RubricSchema is the structured shape every scoring response must match.
// All three criteria are required; scores are integers from 1 to 10.
func RubricSchema() *ai.Schema {
	criteria := make(map[string]*ai.Schema, len(Criteria()))
	for _, c := range Criteria() {
		criteria[string(c)] = ai.Object(map[string]*ai.Schema{
			"score":         ai.IntegerRange(1, 10, "rubric score"),
			"justification": ai.String("reason for the score"),
		})
	}
	return ai.Object(map[string]*ai.Schema{
		"evaluation":      ai.Object(criteria),
		"overall_summary": ai.String("summary of the answer"),
	})
}

// SummarySchema is the simple-summary response shape.
func SummarySchema() *ai.Schema {
	return ai.Object(map[string]*ai.Schema{
		"overall_summary": ai.String("holistic assessment"),
	})
}

type summaryResponse struct {
	OverallSummary string `json:"overall_summary"`
}

// Evaluator scores answers and writes the holistic summary.
type Evaluator struct {
	gateway ai.Gateway
	prompts prompts.Source
}

// NewEvaluator creates an evaluator over a gateway.
func NewEvaluator(gw ai.Gateway, src prompts.Source) *Evaluator {
	return &Evaluator{gateway: gw, prompts: src}
}

// ScoreAnswer rates one answer against the rubric. Any transport or shape
// failure invalidates the whole result: the returned evaluation is
// EmptyEvaluation and the error matches ai.ErrRequestFailed.
func (e *Evaluator) ScoreAnswer(ctx context.Context, role RoleLevel, question, answer string) (Evaluation, error) {
	system, err := prompts.Compose(ctx, e.prompts, prompts.StageScore)
	if err != nil {
		return EmptyEvaluation(), err
	}

	prompt := fmt.Sprintf(
		"The candidate is a '%s' level professional.\n\nQuestion:\n%s\n\nCandidate answer:\n%s",
		role, question, answer,
	)

	resp, err := e.gateway.Complete(ctx, ai.Request{
		Name:   "score_answer",
		System: system,
		Prompt: prompt,
		Schema: RubricSchema(),
	})
	if err != nil {
		return EmptyEvaluation(), fmt.Errorf("score answer: %w", err)
	}

	eval, err := ai.Decode[Evaluation](resp)
	if err != nil {
		return EmptyEvaluation(), fmt.Errorf("score answer: %w", err)
	}
	return eval, nil
}

// HolisticSummary synthesizes every answer and its evaluation into a
// multi-paragraph assessment.
func (e *Evaluator) HolisticSummary(ctx context.Context, role RoleLevel, answers []Answer) (string, error) {
	if len(answers) == 0 {
		return "", fmt.Errorf("holistic summary: %w", ErrNoQuestions)
	}

	system, err := prompts.Compose(ctx, e.prompts, prompts.StageSummary)
	if err != nil {
		return "", err
	}

	resp, err := e.gateway.Complete(ctx, ai.Request{
		Name:   "holistic_summary",
		System: system,
		Prompt: summaryPrompt(role, answers),
		Schema: SummarySchema(),
	})
	if err != nil {
		return "", fmt.Errorf("holistic summary: %w", err)
	}

	out, err := ai.Decode[summaryResponse](resp)
	if err != nil {
		return "", fmt.Errorf("holistic summary: %w", err)
	}

	summary := strings.TrimSpace(out.OverallSummary)
	if summary == "" {
		return "", fmt.Errorf("%w: holistic_summary: empty summary", ai.ErrMalformedResponse)
	}
	return summary, nil
}

func summaryPrompt(role RoleLevel, answers []Answer) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Role level: %s\n", role)

	for _, a := range answers {
		fmt.Fprintf(&sb, "\n## Question %d\n%s\n\nAnswer:\n%s\n\nEvaluation:\n", a.SlotIndex, a.Question, a.Text)
		for _, c := range Criteria() {
			s := a.Evaluation.Rubric.Get(c)
			fmt.Fprintf(&sb, "- %s: %d/10 (%s)\n", c, s.Score, s.Justification)
		}
		fmt.Fprintf(&sb, "- summary: %s\n", a.Evaluation.OverallSummary)
	}

	return sb.String()
}
