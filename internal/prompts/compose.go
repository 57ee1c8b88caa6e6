package prompts

import (
	"context"
	"fmt"
	"strings"
)

// Source resolves the instructions used for a stage. The output
// specification is never overridable, so a Source only supplies the
// persona and task half of a system prompt.
type Source interface {
	Instructions(ctx context.Context, stage Stage) (string, error)
}

// Compose builds the system prompt for a stage by joining its instructions
// and its output specification. A nil src uses the built-in instructions.
func Compose(ctx context.Context, src Source, stage Stage) (string, error) {
	var (
		instructions string
		err          error
	)
	if src == nil {
		instructions, err = Instructions(stage)
	} else {
		instructions, err = src.Instructions(ctx, stage)
	}
	if err != nil {
		return "", fmt.Errorf("load instructions for %s: %w", stage, err)
	}

	spec, err := Spec(stage)
	if err != nil {
		return "", fmt.Errorf("load spec for %s: %w", stage, err)
	}

	var sb strings.Builder
	sb.WriteString(instructions)
	sb.WriteString("\n\n")
	sb.WriteString(spec)
	return sb.String(), nil
}
