package prompts

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// RolePlaceholder is replaced with the candidate's role level when an
// archetype template is rendered.
const RolePlaceholder = "{role}"

// Archetype is a question template bound to a 1-based interview stage.
type Archetype struct {
	Stage    int    `yaml:"stage"`
	Name     string `yaml:"name"`
	Template string `yaml:"template"`
}

// Render substitutes the role level into the template.
func (a Archetype) Render(role string) string {
	return strings.NewReplacer(RolePlaceholder, role).Replace(a.Template)
}

// Catalog is an ordered, validated set of question archetypes.
type Catalog struct {
	archetypes []Archetype
}

type catalogFile struct {
	Archetypes []Archetype `yaml:"archetypes"`
}

var defaultArchetypes = []Archetype{
	{
		Stage: 1,
		Name:  "open-ended situational",
		Template: `Write one open-ended situational interview question for a {role}-level GenAI engineer.
Describe a realistic workplace scenario involving an LLM-powered product that is being planned or launched, and ask how the candidate would approach it.`,
	},
	{
		Stage: 2,
		Name:  "diagnostic given symptom",
		Template: `Write one diagnostic interview question for a {role}-level GenAI engineer.
Present a concrete symptom observed in a production LLM system, such as a rising hallucination rate or degraded retrieval quality, and ask the candidate to identify the most likely root causes and how they would confirm them.`,
	},
	{
		Stage: 3,
		Name:  "solution design given diagnosis",
		Template: `Write one solution-design interview question for a {role}-level GenAI engineer.
State an already-diagnosed root cause of a production LLM system problem and ask the candidate to design a fix, explaining the trade-offs of their approach.`,
	},
	{
		Stage: 4,
		Name:  "moderately tough diagnostic",
		Template: `Write one moderately difficult diagnostic interview question for a {role}-level GenAI engineer.
Combine two interacting symptoms in a production LLM system where the obvious explanation is wrong, and ask the candidate to reason through and prioritize competing hypotheses.`,
	},
}

// DefaultCatalog returns the built-in four-stage archetype catalog.
func DefaultCatalog() *Catalog {
	archetypes := make([]Archetype, len(defaultArchetypes))
	copy(archetypes, defaultArchetypes)
	return &Catalog{archetypes: archetypes}
}

// LoadCatalog reads an archetype catalog from a YAML file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read archetype catalog %s: %w", path, err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes and validates a YAML archetype catalog.
func ParseCatalog(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCatalog, err)
	}

	if err := validateArchetypes(f.Archetypes); err != nil {
		return nil, err
	}

	return &Catalog{archetypes: f.Archetypes}, nil
}

// Len returns the number of archetypes, which is the upper bound on
// questions per session.
func (c *Catalog) Len() int {
	return len(c.archetypes)
}

// Archetype returns the archetype for a 1-based stage index.
func (c *Catalog) Archetype(stage int) (Archetype, error) {
	if stage < 1 || stage > len(c.archetypes) {
		return Archetype{}, fmt.Errorf("%w: %d (catalog has %d)", ErrUnknownArchetype, stage, len(c.archetypes))
	}
	return c.archetypes[stage-1], nil
}

func validateArchetypes(archetypes []Archetype) error {
	if len(archetypes) == 0 {
		return fmt.Errorf("%w: no archetypes defined", ErrInvalidCatalog)
	}

	for i, a := range archetypes {
		if a.Stage != i+1 {
			return fmt.Errorf("%w: archetype %d has stage %d, expected %d", ErrInvalidCatalog, i, a.Stage, i+1)
		}
		if strings.TrimSpace(a.Name) == "" {
			return fmt.Errorf("%w: archetype %d has no name", ErrInvalidCatalog, a.Stage)
		}
		if !strings.Contains(a.Template, RolePlaceholder) {
			return fmt.Errorf("%w: archetype %q template missing %s", ErrInvalidCatalog, a.Name, RolePlaceholder)
		}
	}

	return nil
}
