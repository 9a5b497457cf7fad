package phases

import (
	"context"
	"fmt"
	"strings"

	"GoACE/app/models"
	"GoACE/app/playbook"
)

const (
	generatorTemperature = 0.66
	playbookPromptLimit  = 8
)

// Generator produces 2-3 mutually distinct approaches for a task. It reads
// the playbook snapshot to bias toward previously validated patterns and has
// no side effect beyond calling the model.
type Generator struct {
	model models.Interface
}

func NewGenerator(model models.Interface) *Generator {
	return &Generator{model: model}
}

func (g *Generator) Run(ctx context.Context, task string, snap playbook.Snapshot) (*GeneratorOutput, error) {
	if strings.TrimSpace(task) == "" {
		return nil, fmt.Errorf("%w: empty task", ErrInvalidInput)
	}

	raw, err := g.model.Think(ctx, g.prompt(task, snap), generatorTemperature, -1)
	if err != nil {
		return nil, fmt.Errorf("%w: generator: %v", ErrInferenceUnavailable, err)
	}

	out, err := decodeResponse[GeneratorOutput](raw)
	if err != nil {
		return nil, fmt.Errorf("%w: generator: %v", ErrInferenceUnavailable, err)
	}
	if err := validateGeneratorOutput(out); err != nil {
		return nil, err
	}
	return out, nil
}

func validateGeneratorOutput(out *GeneratorOutput) error {
	if len(out.Approaches) == 0 {
		return fmt.Errorf("%w: generator returned an empty approach set", ErrInferenceUnavailable)
	}
	seen := make(map[string]bool, len(out.Approaches))
	for _, a := range out.Approaches {
		if strings.TrimSpace(a.Name) == "" {
			return fmt.Errorf("%w: generator approach with empty name", ErrInferenceUnavailable)
		}
		if seen[a.Name] {
			return fmt.Errorf("%w: duplicate approach name %q", ErrInferenceUnavailable, a.Name)
		}
		seen[a.Name] = true
		if len(a.Steps) == 0 {
			return fmt.Errorf("%w: approach %q has no steps", ErrInferenceUnavailable, a.Name)
		}
	}
	return nil
}

func (g *Generator) prompt(task string, snap playbook.Snapshot) []models.Message {
	var sys strings.Builder
	sys.WriteString("You are an expert solution architect. Generate multiple genuinely distinct approaches to the problem below.\n\n")
	sys.WriteString("### **Rules:**\n")
	sys.WriteString("- Produce 2 to 3 approaches. Each must differ in architecture, not only in naming.\n")
	sys.WriteString("- Each approach needs a short unique name, a one-sentence core idea, concrete ordered steps, and its assumptions.\n")
	sys.WriteString("- When the playbook lists validated patterns that apply, prefer approaches consistent with them.\n\n")
	sys.WriteString("### **Strict Output Format:**\n")
	sys.WriteString("Output ONLY a JSON object, no text before or after:\n")
	sys.WriteString("{\"approaches\": [{\"name\": \"...\", \"core_idea\": \"...\", \"steps\": [\"...\"], \"assumptions\": [\"...\"]}]}\n")

	var user strings.Builder
	user.WriteString("### **Task:**\n")
	user.WriteString(task)
	user.WriteString("\n")
	if pb := snap.ContextText(playbookPromptLimit); pb != "" {
		user.WriteString("\n")
		user.WriteString(pb)
	}

	return []models.Message{
		{Role: "system", Content: sys.String()},
		{Role: "user", Content: user.String()},
	}
}
