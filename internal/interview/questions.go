package interview

import (
	"context"
	"fmt"

	"github.com/JaimeStill/candor/internal/prompts"
	"github.com/JaimeStill/candor/pkg/ai"
	"github.com/JaimeStill/candor/pkg/formatting"
)

var questionLabels = []string{"Rephrased question:", "Question:"}

// QuestionGenerator produces interview questions from the archetype catalog.
// It never touches session state.
type QuestionGenerator struct {
	gateway ai.Gateway
	catalog *prompts.Catalog
	prompts prompts.Source
}

// NewQuestionGenerator creates a generator over a gateway and archetype catalog.
func NewQuestionGenerator(gw ai.Gateway, catalog *prompts.Catalog, src prompts.Source) *QuestionGenerator {
	return &QuestionGenerator{gateway: gw, catalog: catalog, prompts: src}
}

// Generate returns a new slot for the 1-based stage, parameterized by role level.
func (g *QuestionGenerator) Generate(ctx context.Context, role RoleLevel, stage int) (Slot, error) {
	archetype, err := g.catalog.Archetype(stage)
	if err != nil {
		return Slot{}, err
	}

	system, err := prompts.Compose(ctx, g.prompts, prompts.StageQuestion)
	if err != nil {
		return Slot{}, err
	}

	text, err := g.complete(ctx, ai.Request{
		Name:   "generate_question",
		System: system,
		Prompt: archetype.Render(string(role)),
	})
	if err != nil {
		return Slot{}, fmt.Errorf("generate question %d: %w", stage, err)
	}

	return Slot{
		Index:     stage,
		Text:      text,
		Origin:    OriginGenerated,
		Archetype: archetype.Name,
	}, nil
}

// Rephrase returns an alternate phrasing of question.
func (g *QuestionGenerator) Rephrase(ctx context.Context, question string) (string, error) {
	system, err := prompts.Compose(ctx, g.prompts, prompts.StageRephrase)
	if err != nil {
		return "", err
	}

	text, err := g.complete(ctx, ai.Request{
		Name:   "rephrase_question",
		System: system,
		Prompt: "Rephrase this interview question:\n\n" + question,
	})
	if err != nil {
		return "", fmt.Errorf("rephrase question: %w", err)
	}
	return text, nil
}

func (g *QuestionGenerator) complete(ctx context.Context, req ai.Request) (string, error) {
	resp, err := g.gateway.Complete(ctx, req)
	if err != nil {
		return "", err
	}

	text := formatting.CleanText(resp.Text, questionLabels...)
	if text == "" {
		return "", fmt.Errorf("%w: %s: empty question", ai.ErrMalformedResponse, req.Name)
	}
	return text, nil
}
