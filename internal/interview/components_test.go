package interview_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/JaimeStill/candor/internal/interview"
	"github.com/JaimeStill/candor/internal/prompts"
	"github.com/JaimeStill/candor/pkg/ai"
)

// overrides replaces the instructions of the stages it holds.
type overrides struct {
	text map[prompts.Stage]string
	err  error
}

func (o *overrides) Instructions(ctx context.Context, stage prompts.Stage) (string, error) {
	if o.err != nil {
		return "", o.err
	}
	if text, ok := o.text[stage]; ok {
		return text, nil
	}
	return prompts.Instructions(stage)
}

func captureSystem(script *scriptProvider, name string, reply string) *string {
	var system string
	script.generate[name] = func(req ai.Request) (string, error) {
		system = req.System
		return reply, nil
	}
	return &system
}

func TestComponentsComposeOverrides(t *testing.T) {
	src := &overrides{text: map[prompts.Stage]string{
		prompts.StageQuestion: "You are a terse platform interviewer.",
		prompts.StageExtract:  "Return the candidate's words verbatim.",
	}}

	script := newScript()
	gw := ai.NewGateway(script, time.Second, discard())
	ctx := context.Background()

	t.Run("overridden stage", func(t *testing.T) {
		got := captureSystem(script, "generate_question", "What breaks first?")
		g := interview.NewQuestionGenerator(gw, prompts.DefaultCatalog(), src)
		if _, err := g.Generate(ctx, interview.RoleSenior, 1); err != nil {
			t.Fatalf("Generate error: %v", err)
		}

		spec, _ := prompts.Spec(prompts.StageQuestion)
		want := "You are a terse platform interviewer.\n\n" + spec
		if *got != want {
			t.Errorf("system prompt = %q, want %q", *got, want)
		}
	})

	t.Run("built-in stage", func(t *testing.T) {
		got := captureSystem(script, "rephrase_question", "Reworded?")
		g := interview.NewQuestionGenerator(gw, prompts.DefaultCatalog(), src)
		if _, err := g.Rephrase(ctx, "Original?"); err != nil {
			t.Fatalf("Rephrase error: %v", err)
		}

		builtin, _ := prompts.Instructions(prompts.StageRephrase)
		if !strings.HasPrefix(*got, builtin) {
			t.Error("stage without an override did not use the built-in instructions")
		}
	})

	t.Run("spec kept", func(t *testing.T) {
		got := captureSystem(script, "extract_answer", "Candidate: ship it")
		p := interview.NewTranscriptProcessor(gw, src)
		if _, err := p.ExtractAnswer(ctx, "Q?", "Interviewer: Q?\nCandidate: ship it"); err != nil {
			t.Fatalf("ExtractAnswer error: %v", err)
		}

		spec, _ := prompts.Spec(prompts.StageExtract)
		if !strings.HasSuffix(*got, spec) {
			t.Error("override dropped the output spec")
		}
	})

	t.Run("source failure", func(t *testing.T) {
		broken := &overrides{err: errors.New("connection refused")}
		e := interview.NewEvaluator(gw, broken)
		_, err := e.ScoreAnswer(ctx, interview.RoleMid, "Q?", "A.")
		if err == nil || !strings.Contains(err.Error(), "connection refused") {
			t.Errorf("ScoreAnswer err = %v, want source failure", err)
		}
	})
}

func TestExtractAnswerSentinels(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		none  bool
	}{
		{"exact", "No answer found.", true},
		{"no period", "No answer found", true},
		{"lowercase", "no answer found.", true},
		{"shouting", "NO ANSWER FOUND!", true},
		{"label", "Candidate: No answer found", true},
		{"no response label", "[No response recorded]", true},
		{"no response trailing period", "[No response recorded].", true},
		{"no response bare", "no response recorded", true},
		{"blank", "   ", true},
		{"answer mentioning sentinel", "No answer found in the logs, so I checked the traces.", false},
		{"real answer", "I would add a circuit breaker.", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			script := newScript()
			script.generate["extract_answer"] = func(ai.Request) (string, error) {
				return tt.reply, nil
			}
			p := interview.NewTranscriptProcessor(ai.NewGateway(script, time.Second, discard()), nil)

			got, err := p.ExtractAnswer(context.Background(), "Q?", "Interviewer: Q?")
			if tt.none {
				if !errors.Is(err, interview.ErrNoAnswer) || got != prompts.NoAnswer {
					t.Errorf("ExtractAnswer = %q, %v; want sentinel and ErrNoAnswer", got, err)
				}
				return
			}
			if err != nil || got == prompts.NoAnswer {
				t.Errorf("ExtractAnswer = %q, %v; want the answer", got, err)
			}
		})
	}
}
