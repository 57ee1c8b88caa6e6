// Package prompts holds the instruction text, output specifications, and
// question archetype catalog used for every AI call in an interview.
package prompts

import (
	"encoding/json"
	"fmt"
	"slices"
)

// Stage identifies an AI call in the interview workflow.
type Stage string

// Workflow stages that issue AI requests.
const (
	StageQuestion Stage = "question"
	StageRephrase Stage = "rephrase"
	StageLabel    Stage = "label"
	StageExtract  Stage = "extract"
	StageScore    Stage = "score"
	StageSummary  Stage = "summary"
)

var stages = []Stage{
	StageQuestion,
	StageRephrase,
	StageLabel,
	StageExtract,
	StageScore,
	StageSummary,
}

// Stages returns every stage that issues an AI request.
func Stages() []Stage {
	return stages
}

// ParseStage validates s against the known stages.
func ParseStage(s string) (Stage, error) {
	stage := Stage(s)
	if !slices.Contains(stages, stage) {
		return "", fmt.Errorf("%w: %s", ErrInvalidStage, s)
	}
	return stage, nil
}

// UnmarshalJSON rejects unknown stages.
func (s *Stage) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	stage, err := ParseStage(str)
	if err != nil {
		return err
	}
	*s = stage
	return nil
}

// Fixed placeholder text substituted when an AI-dependent step yields nothing.
const (
	// NoResponseLabel marks a question with no associated candidate turn in a labeled transcript.
	NoResponseLabel = "[No response recorded]"
	// NoAnswer replaces an answer that could not be extracted.
	NoAnswer = "No answer found."
	// SummaryUnavailable replaces a holistic summary that could not be generated.
	SummaryUnavailable = "Holistic summary unavailable: the summary request failed. Review the per-question evaluations above."
)
