package prompts

const questionSpec = `Respond with the question text only.

Output constraints:
- Exactly one question
- No numbering, labels, preamble, or closing remarks
- Do not wrap the question in quotes`

const rephraseSpec = questionSpec

const labelSpec = `Respond with the labeled transcript only.

Output constraints:
- Every turn starts on its own line with "Interviewer:" or "Candidate:"
- Turns alternate, starting with the first interviewer question
- Every prepared question appears as an interviewer turn, in order
- If no distinct candidate response can be associated with a question,
  the candidate turn must be exactly "Candidate: ` + NoResponseLabel + `"
- Never fabricate candidate speech that is not present in the raw transcript`

const extractSpec = `Respond with the candidate's answer text only.

Output constraints:
- No "Candidate:" label, quotes, or commentary
- If the candidate turn is missing or reads "` + NoResponseLabel + `",
  respond with exactly "` + NoAnswer + `"`

const scoreSpec = `Respond with a JSON object matching this exact structure:

{
  "evaluation": {
    "clarity": {"score": 8, "justification": "Clear and concise."},
    "correctness": {"score": 9, "justification": "Technically accurate."},
    "depth": {"score": 6, "justification": "Lacked depth on trade-offs."}
  },
  "overall_summary": "Solid answer with good fundamentals."
}

Field constraints:
- evaluation: must contain all three criteria: clarity, correctness, depth.
- score: integer from 1 to 10 inclusive. Never omit a score and never use 0.
- justification: one or two sentences grounded in the answer text.
- overall_summary: one or two sentences summarizing this answer.

Behavioral constraints:
- Always respond with valid JSON, no markdown fencing
- Do not add keys beyond those shown`

const summarySpec = `Respond with a JSON object matching this exact structure:

{
  "overall_summary": "<assessment>"
}

Field constraints:
- overall_summary: two to three paragraphs separated by blank lines.
  The first covers strengths, the second weaknesses, and the last states
  a hire or no-hire leaning recommendation for the role level.

Behavioral constraints:
- Always respond with valid JSON, no markdown fencing`

var specs = map[Stage]string{
	StageQuestion: questionSpec,
	StageRephrase: rephraseSpec,
	StageLabel:    labelSpec,
	StageExtract:  extractSpec,
	StageScore:    scoreSpec,
	StageSummary:  summarySpec,
}

// Spec returns the output format and behavioral constraints for a stage.
// Returns ErrInvalidStage if the stage is not recognized.
func Spec(stage Stage) (string, error) {
	text, ok := specs[stage]
	if !ok {
		return "", ErrInvalidStage
	}
	return text, nil
}
