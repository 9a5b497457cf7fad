package phases

import "sort"

// Weights is the configuration surface for the curation ranking policy.
// Beneficial dimensions score with their weight; risk subtracts with its own
// penalty weight. Lower cost is better, so cost is inverted.
type Weights struct {
	Performance     float64 `yaml:"performance" validate:"gte=0"`
	Maintainability float64 `yaml:"maintainability" validate:"gte=0"`
	Security        float64 `yaml:"security" validate:"gte=0"`
	Cost            float64 `yaml:"cost" validate:"gte=0"`
	Risk            float64 `yaml:"risk" validate:"gte=0"`
}

// DefaultWeights weighs performance, maintainability, security and cost
// equally and penalizes risk double.
func DefaultWeights() Weights {
	return Weights{Performance: 1, Maintainability: 1, Security: 1, Cost: 1, Risk: 2}
}

func (w Weights) IsZero() bool {
	return w == Weights{}
}

type TieBreak int

const (
	// TieBreakInputOrder keeps the generator's ordering when everything else
	// ties. This is the default.
	TieBreakInputOrder TieBreak = iota
	// TieBreakAlphabetical orders fully tied approaches by name.
	TieBreakAlphabetical
)

func (w Weights) score(s Scorecard) float64 {
	return w.Performance*float64(s.Performance) +
		w.Maintainability*float64(s.Maintainability) +
		w.Security*float64(s.Security) +
		w.Cost*float64(4-s.Cost) -
		w.Risk*float64(s.Risk)
}

// RankApproaches orders approach names by the documented policy: lowest risk
// first, then highest performance, then highest weighted score, then the
// configured tie-break. The input order comes from the Generator, so the sort
// being stable gives the input-order preference for free. The ranking is pure
// and deterministic; all non-determinism stays behind the inference boundary.
func RankApproaches(order []string, scores map[string]Scorecard, w Weights, tb TieBreak) []string {
	if w.IsZero() {
		w = DefaultWeights()
	}
	ranked := make([]string, len(order))
	copy(ranked, order)

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := scores[ranked[i]], scores[ranked[j]]
		if a.Risk != b.Risk {
			return a.Risk < b.Risk
		}
		if a.Performance != b.Performance {
			return a.Performance > b.Performance
		}
		sa, sb := w.score(a), w.score(b)
		if sa != sb {
			return sa > sb
		}
		if tb == TieBreakAlphabetical {
			return ranked[i] < ranked[j]
		}
		return false
	})
	return ranked
}
