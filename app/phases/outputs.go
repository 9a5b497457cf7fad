package phases

import (
	"encoding/json"
	"fmt"
	"strings"

	"GoACE/app/playbook"
)

// Level is an ordinal score on one trade-off dimension.
type Level int

const (
	LevelUnknown Level = iota
	LevelLow
	LevelMedium
	LevelHigh
)

func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return LevelLow, nil
	case "medium", "mid":
		return LevelMedium, nil
	case "high":
		return LevelHigh, nil
	}
	return LevelUnknown, fmt.Errorf("unknown level %q", s)
}

func (l Level) String() string {
	switch l {
	case LevelLow:
		return "low"
	case LevelMedium:
		return "medium"
	case LevelHigh:
		return "high"
	}
	return "unknown"
}

func (l *Level) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseLevel(s)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

func (l Level) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

type Approach struct {
	Name        string   `json:"name"`
	CoreIdea    string   `json:"core_idea"`
	Steps       []string `json:"steps"`
	Assumptions []string `json:"assumptions,omitempty"`
}

type GeneratorOutput struct {
	Approaches []Approach `json:"approaches"`
}

func (g *GeneratorOutput) Names() []string {
	if g == nil {
		return nil
	}
	names := make([]string, 0, len(g.Approaches))
	for _, a := range g.Approaches {
		names = append(names, a.Name)
	}
	return names
}

func (g *GeneratorOutput) Has(name string) bool {
	if g == nil {
		return false
	}
	for _, a := range g.Approaches {
		if a.Name == name {
			return true
		}
	}
	return false
}

// Scorecard holds the five fixed trade-off dimensions.
type Scorecard struct {
	Performance     Level `json:"performance"`
	Maintainability Level `json:"maintainability"`
	Security        Level `json:"security"`
	Cost            Level `json:"cost"`
	Risk            Level `json:"risk"`
}

func (s Scorecard) complete() bool {
	return s.Performance != LevelUnknown && s.Maintainability != LevelUnknown &&
		s.Security != LevelUnknown && s.Cost != LevelUnknown && s.Risk != LevelUnknown
}

type ReflectorOutput struct {
	Tradeoffs  map[string]Scorecard `json:"tradeoffs"`
	BlindSpots []string             `json:"blind_spots"`
	Risks      map[string][]string  `json:"risks"`
}

type Alternative struct {
	Name string `json:"name"`
	When string `json:"when"`
}

type CuratorOutput struct {
	Recommended     string           `json:"recommended_approach"`
	Rationale       string           `json:"rationale"`
	Alternative     *Alternative     `json:"alternative,omitempty"`
	Guidance        []string         `json:"guidance"`
	LearnedPatterns []playbook.Entry `json:"learned_patterns"`
}
