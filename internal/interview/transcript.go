package interview

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/JaimeStill/candor/internal/prompts"
	"github.com/JaimeStill/candor/pkg/ai"
	"github.com/JaimeStill/candor/pkg/formatting"
)

// TranscriptProcessor turns recordings into a labeled transcript and
// pulls individual answers back out of it.
type TranscriptProcessor struct {
	gateway ai.Gateway
	prompts prompts.Source
}

// NewTranscriptProcessor creates a processor over a gateway.
func NewTranscriptProcessor(gw ai.Gateway, src prompts.Source) *TranscriptProcessor {
	return &TranscriptProcessor{gateway: gw, prompts: src}
}

// Transcribe converts audio to raw text. Empty or near-empty text is returned as-is.
func (p *TranscriptProcessor) Transcribe(ctx context.Context, audio ai.Audio) (string, error) {
	return p.gateway.Transcribe(ctx, audio)
}

// LabelSpeakers interleaves Interviewer and Candidate turns in raw using the
// prepared questions as anchors.
func (p *TranscriptProcessor) LabelSpeakers(ctx context.Context, raw string, questions []string) (string, error) {
	system, err := prompts.Compose(ctx, p.prompts, prompts.StageLabel)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("Prepared questions, in order:\n")
	for i, q := range questions {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, q)
	}
	sb.WriteString("\nRaw transcript:\n\n")
	sb.WriteString(raw)

	resp, err := p.gateway.Complete(ctx, ai.Request{
		Name:   "label_speakers",
		System: system,
		Prompt: sb.String(),
	})
	if err != nil {
		return "", fmt.Errorf("label speakers: %w", err)
	}

	if resp.Text == "" {
		return "", fmt.Errorf("%w: label_speakers: empty transcript", ai.ErrMalformedResponse)
	}
	return resp.Text, nil
}

// ExtractAnswer returns the candidate turn that follows question in labeled.
// On failure, or when no answer is present, it returns prompts.NoAnswer
// together with the cause so the caller can record the degradation.
func (p *TranscriptProcessor) ExtractAnswer(ctx context.Context, question, labeled string) (string, error) {
	system, err := prompts.Compose(ctx, p.prompts, prompts.StageExtract)
	if err != nil {
		return prompts.NoAnswer, err
	}

	resp, err := p.gateway.Complete(ctx, ai.Request{
		Name:   "extract_answer",
		System: system,
		Prompt: fmt.Sprintf("Question:\n%s\n\nLabeled transcript:\n\n%s", question, labeled),
	})
	if err != nil {
		return prompts.NoAnswer, fmt.Errorf("extract answer: %w", err)
	}

	answer := formatting.CleanText(resp.Text, "Candidate:")
	if isNoAnswer(answer) {
		return prompts.NoAnswer, ErrNoAnswer
	}
	return answer, nil
}

// isNoAnswer matches empty text and the no-answer sentinels, ignoring case
// and any surrounding punctuation, brackets, or whitespace.
func isNoAnswer(answer string) bool {
	got := trimSentinel(answer)
	if got == "" {
		return true
	}
	for _, sentinel := range []string{prompts.NoAnswer, prompts.NoResponseLabel} {
		if strings.EqualFold(got, trimSentinel(sentinel)) {
			return true
		}
	}
	return false
}

func trimSentinel(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSpace(r)
	})
}
