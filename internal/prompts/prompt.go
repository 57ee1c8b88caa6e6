package prompts

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Prompt is a named instruction override for one stage. At most one prompt
// per stage is active; the active prompt replaces the built-in instructions.
type Prompt struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Stage        Stage     `json:"stage"`
	Instructions string    `json:"instructions"`
	Description  *string   `json:"description,omitempty"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Command carries the editable fields of a prompt for create and update.
type Command struct {
	Name         string  `json:"name"`
	Stage        Stage   `json:"stage"`
	Instructions string  `json:"instructions"`
	Description  *string `json:"description,omitempty"`
}

// Validate trims the text fields and checks that every required field is set.
func (c *Command) Validate() error {
	c.Name = strings.TrimSpace(c.Name)
	c.Instructions = strings.TrimSpace(c.Instructions)

	switch {
	case c.Name == "":
		return fmt.Errorf("%w: name is required", ErrInvalidPrompt)
	case c.Instructions == "":
		return fmt.Errorf("%w: instructions are required", ErrInvalidPrompt)
	}
	if _, err := ParseStage(string(c.Stage)); err != nil {
		return err
	}
	return nil
}

// Filter narrows List. Nil fields match every prompt.
type Filter struct {
	Stage  *Stage
	Active *bool
}

// StageText is the effective prompt text for a stage.
type StageText struct {
	Stage        Stage  `json:"stage"`
	Instructions string `json:"instructions"`
	Spec         string `json:"spec"`
	Overridden   bool   `json:"overridden"`
}
