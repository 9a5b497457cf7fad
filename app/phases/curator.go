package phases

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"GoACE/app/models"
	"GoACE/app/playbook"
)

const curatorTemperature = 0.2

// Curator synthesizes the final recommendation. Which approach wins is
// decided by the deterministic ranking policy, not by the model; the model
// writes the rationale, guidance, the fallback condition and the learned
// patterns. The Curator returns deltas only, it never touches the store.
type Curator struct {
	model    models.Interface
	weights  Weights
	tieBreak TieBreak
}

func NewCurator(model models.Interface, weights Weights, tieBreak TieBreak) *Curator {
	if weights.IsZero() {
		weights = DefaultWeights()
	}
	return &Curator{model: model, weights: weights, tieBreak: tieBreak}
}

func (c *Curator) Run(ctx context.Context, task string, gen *GeneratorOutput, refl *ReflectorOutput, snap playbook.Snapshot) (*CuratorOutput, error) {
	if gen == nil || len(gen.Approaches) == 0 {
		return nil, fmt.Errorf("%w: curator requires a non-empty approach set", ErrInvalidInput)
	}
	if refl == nil || len(refl.Tradeoffs) == 0 {
		return nil, fmt.Errorf("%w: curator requires reflector trade-offs", ErrInvalidInput)
	}
	// Upstream corruption is enforced here, not assumed away: every scored
	// approach must exist and every approach must be scored.
	for name := range refl.Tradeoffs {
		if !gen.Has(name) {
			return nil, fmt.Errorf("%w: trade-offs reference unknown approach %q", ErrContractViolation, name)
		}
	}
	for name := range refl.Risks {
		if !gen.Has(name) {
			return nil, fmt.Errorf("%w: risks reference unknown approach %q", ErrContractViolation, name)
		}
	}
	for _, a := range gen.Approaches {
		if _, ok := refl.Tradeoffs[a.Name]; !ok {
			return nil, fmt.Errorf("%w: approach %q was never scored", ErrContractViolation, a.Name)
		}
	}

	ranked := RankApproaches(gen.Names(), refl.Tradeoffs, c.weights, c.tieBreak)
	best := ranked[0]
	runnerUp := ""
	if len(ranked) > 1 {
		runnerUp = ranked[1]
	}

	raw, err := c.model.Think(ctx, c.prompt(task, gen, refl, snap, best, runnerUp), curatorTemperature, -1)
	if err != nil {
		return nil, fmt.Errorf("%w: curator: %v", ErrInferenceUnavailable, err)
	}

	out, err := decodeResponse[CuratorOutput](raw)
	if err != nil {
		return nil, fmt.Errorf("%w: curator: %v", ErrInferenceUnavailable, err)
	}

	if out.Recommended != best {
		log.Printf("⚠️ Curator model recommended %q, ranking policy selected %q; keeping the policy result", out.Recommended, best)
		out.Recommended = best
	}
	if out.Alternative != nil && (!gen.Has(out.Alternative.Name) || out.Alternative.Name == out.Recommended) {
		log.Printf("⚠️ Curator alternative %q unusable, dropping it", out.Alternative.Name)
		out.Alternative = nil
	}
	if out.Alternative == nil && runnerUp != "" {
		out.Alternative = &Alternative{Name: runnerUp, When: "the recommended approach's main risk materializes"}
	}

	out.LearnedPatterns = mergeDeltas(out.LearnedPatterns, recurringRiskPatterns(refl, task))
	return out, nil
}

// recurringRiskPatterns extracts deterministic deltas: a risk raised for two
// or more approaches is a property of the problem, not of one approach, so it
// becomes a playbook pattern.
func recurringRiskPatterns(refl *ReflectorOutput, task string) []playbook.Entry {
	counts := make(map[string]int)
	canonical := make(map[string]string)
	for _, risks := range refl.Risks {
		seen := make(map[string]bool)
		for _, risk := range risks {
			key := strings.ToLower(strings.TrimSpace(risk))
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			counts[key]++
			if _, ok := canonical[key]; !ok {
				canonical[key] = strings.TrimSpace(risk)
			}
		}
	}

	var out []playbook.Entry
	for key, n := range counts {
		if n >= 2 {
			out = append(out, playbook.Entry{
				Pattern: "Recurring risk: " + canonical[key],
				Context: task,
			})
		}
	}
	return out
}

func mergeDeltas(primary, extra []playbook.Entry) []playbook.Entry {
	seen := make(map[string]bool, len(primary))
	out := make([]playbook.Entry, 0, len(primary)+len(extra))
	for _, e := range primary {
		if strings.TrimSpace(e.Pattern) == "" || seen[e.Pattern] {
			continue
		}
		seen[e.Pattern] = true
		out = append(out, e)
	}
	for _, e := range extra {
		if seen[e.Pattern] {
			continue
		}
		seen[e.Pattern] = true
		out = append(out, e)
	}
	return out
}

func (c *Curator) prompt(task string, gen *GeneratorOutput, refl *ReflectorOutput, snap playbook.Snapshot, best, runnerUp string) []models.Message {
	var sys strings.Builder
	sys.WriteString("You are a senior engineer writing the final recommendation after a trade-off review.\n\n")
	sys.WriteString("### **Rules:**\n")
	sys.WriteString(fmt.Sprintf("- The ranking policy already selected %q. Your recommended_approach MUST be exactly that name.\n", best))
	if runnerUp != "" {
		sys.WriteString(fmt.Sprintf("- Offer %q as the alternative, with the concrete condition that would justify switching to it.\n", runnerUp))
	}
	sys.WriteString("- Give actionable implementation guidance: what to start with, what to monitor, when to pivot.\n")
	sys.WriteString("- Extract learned_patterns: short reusable lessons from this analysis worth keeping for future tasks, each with the context where it applies.\n\n")
	sys.WriteString("### **Strict Output Format:**\n")
	sys.WriteString("Output ONLY a JSON object, no text before or after:\n")
	sys.WriteString("{\"recommended_approach\": \"...\", \"rationale\": \"...\", \"alternative\": {\"name\": \"...\", \"when\": \"...\"}, \"guidance\": [\"...\"], \"learned_patterns\": [{\"pattern\": \"...\", \"context\": \"...\"}]}\n")

	approaches, _ := json.MarshalIndent(gen.Approaches, "", "  ")
	analysis, _ := json.MarshalIndent(refl, "", "  ")

	var user strings.Builder
	user.WriteString("### **Task:**\n")
	user.WriteString(task)
	user.WriteString("\n\n### **Approaches:**\n")
	user.Write(approaches)
	user.WriteString("\n\n### **Trade-off analysis:**\n")
	user.Write(analysis)
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
