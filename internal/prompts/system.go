package prompts

import (
	"context"

	"github.com/google/uuid"
)

// System manages stored instruction overrides. It is also the Source the
// interview components compose their system prompts from.
type System interface {
	Source

	List(ctx context.Context, filter Filter) ([]Prompt, error)
	Find(ctx context.Context, id uuid.UUID) (*Prompt, error)
	Create(ctx context.Context, cmd Command) (*Prompt, error)
	Update(ctx context.Context, id uuid.UUID, cmd Command) (*Prompt, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// Activate makes the prompt the override for its stage, deactivating
	// any other prompt active for that stage.
	Activate(ctx context.Context, id uuid.UUID) (*Prompt, error)
	Deactivate(ctx context.Context, id uuid.UUID) (*Prompt, error)

	// Effective reports the text Compose would use for a stage.
	Effective(ctx context.Context, stage Stage) (*StageText, error)
}
