package phases

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"GoACE/app/models"
	"GoACE/app/playbook"
)

const reflectorTemperature = 0.3

// Reflector scores every generated approach on the five fixed dimensions,
// enumerates risks per approach and surfaces blind spots. Reflection without
// at least one blind spot is treated as incomplete.
type Reflector struct {
	model models.Interface
}

func NewReflector(model models.Interface) *Reflector {
	return &Reflector{model: model}
}

func (r *Reflector) Run(ctx context.Context, task string, gen *GeneratorOutput, snap playbook.Snapshot) (*ReflectorOutput, error) {
	if gen == nil || len(gen.Approaches) == 0 {
		return nil, fmt.Errorf("%w: reflector requires a non-empty approach set", ErrInvalidInput)
	}

	raw, err := r.model.Think(ctx, r.prompt(task, gen, snap), reflectorTemperature, -1)
	if err != nil {
		return nil, fmt.Errorf("%w: reflector: %v", ErrInferenceUnavailable, err)
	}

	out, err := decodeResponse[ReflectorOutput](raw)
	if err != nil {
		return nil, fmt.Errorf("%w: reflector: %v", ErrInferenceUnavailable, err)
	}
	if err := validateReflectorOutput(out, gen); err != nil {
		return nil, err
	}
	return out, nil
}

func validateReflectorOutput(out *ReflectorOutput, gen *GeneratorOutput) error {
	for name := range out.Tradeoffs {
		if !gen.Has(name) {
			return fmt.Errorf("%w: reflector scored unknown approach %q", ErrContractViolation, name)
		}
	}
	for name := range out.Risks {
		if !gen.Has(name) {
			return fmt.Errorf("%w: reflector listed risks for unknown approach %q", ErrContractViolation, name)
		}
	}

	for _, a := range gen.Approaches {
		score, ok := out.Tradeoffs[a.Name]
		if !ok || !score.complete() {
			return fmt.Errorf("%w: approach %q missing a complete scorecard", ErrInferenceUnavailable, a.Name)
		}
		if len(out.Risks[a.Name]) == 0 {
			return fmt.Errorf("%w: approach %q has no risks enumerated", ErrInferenceUnavailable, a.Name)
		}
	}

	if len(out.BlindSpots) == 0 {
		return fmt.Errorf("%w: reflection surfaced no blind spots", ErrInferenceUnavailable)
	}
	return nil
}

func (r *Reflector) prompt(task string, gen *GeneratorOutput, snap playbook.Snapshot) []models.Message {
	var sys strings.Builder
	sys.WriteString("You are a critical reviewer analyzing trade-offs between proposed approaches.\n\n")
	sys.WriteString("### **Rules:**\n")
	sys.WriteString("- Score EVERY approach on exactly these dimensions: performance, maintainability, security, cost, risk.\n")
	sys.WriteString("- Allowed values per dimension: \"low\", \"medium\", \"high\".\n")
	sys.WriteString("- Enumerate at least one concrete risk per approach.\n")
	sys.WriteString("- Surface at least one blind spot: something every approach ignores or a question nobody asked.\n")
	sys.WriteString("- Use only the approach names given. Never invent new ones.\n\n")
	sys.WriteString("### **Strict Output Format:**\n")
	sys.WriteString("Output ONLY a JSON object, no text before or after:\n")
	sys.WriteString("{\"tradeoffs\": {\"<approach name>\": {\"performance\": \"...\", \"maintainability\": \"...\", \"security\": \"...\", \"cost\": \"...\", \"risk\": \"...\"}}, \"blind_spots\": [\"...\"], \"risks\": {\"<approach name>\": [\"...\"]}}\n")

	approaches, _ := json.MarshalIndent(gen.Approaches, "", "  ")

	var user strings.Builder
	user.WriteString("### **Task:**\n")
	user.WriteString(task)
	user.WriteString("\n\n### **Approaches to analyze:**\n")
	user.Write(approaches)
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
