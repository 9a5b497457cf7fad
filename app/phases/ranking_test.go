package phases

import "testing"

func card(perf, maint, sec, cost, risk Level) Scorecard {
	return Scorecard{Performance: perf, Maintainability: maint, Security: sec, Cost: cost, Risk: risk}
}

func TestRankApproachesRiskDominates(t *testing.T) {
	order := []string{"InMemoryQueue", "DBBackedQueue", "MessageBrokerQueue"}
	scores := map[string]Scorecard{
		"InMemoryQueue":      card(LevelHigh, LevelMedium, LevelMedium, LevelLow, LevelHigh),
		"DBBackedQueue":      card(LevelMedium, LevelHigh, LevelHigh, LevelMedium, LevelMedium),
		"MessageBrokerQueue": card(LevelHigh, LevelMedium, LevelHigh, LevelHigh, LevelMedium),
	}

	ranked := RankApproaches(order, scores, DefaultWeights(), TieBreakInputOrder)
	if ranked[len(ranked)-1] != "InMemoryQueue" {
		t.Fatalf("high-risk approach must rank last: %v", ranked)
	}
	// Equal risk: higher performance wins.
	if ranked[0] != "MessageBrokerQueue" {
		t.Fatalf("expected MessageBrokerQueue first: %v", ranked)
	}
}

func TestRankApproachesDeterministic(t *testing.T) {
	order := []string{"B", "A", "C"}
	scores := map[string]Scorecard{
		"A": card(LevelMedium, LevelMedium, LevelMedium, LevelMedium, LevelLow),
		"B": card(LevelMedium, LevelMedium, LevelMedium, LevelMedium, LevelLow),
		"C": card(LevelMedium, LevelMedium, LevelMedium, LevelMedium, LevelLow),
	}

	first := RankApproaches(order, scores, DefaultWeights(), TieBreakInputOrder)
	for i := 0; i < 50; i++ {
		got := RankApproaches(order, scores, DefaultWeights(), TieBreakInputOrder)
		for j := range got {
			if got[j] != first[j] {
				t.Fatalf("ranking not deterministic: %v vs %v", got, first)
			}
		}
	}
	// Full tie keeps generator order.
	if first[0] != "B" || first[1] != "A" || first[2] != "C" {
		t.Fatalf("input-order preference violated: %v", first)
	}
}

func TestRankApproachesAlphabeticalTieBreak(t *testing.T) {
	order := []string{"B", "A"}
	scores := map[string]Scorecard{
		"A": card(LevelMedium, LevelMedium, LevelMedium, LevelMedium, LevelLow),
		"B": card(LevelMedium, LevelMedium, LevelMedium, LevelMedium, LevelLow),
	}
	ranked := RankApproaches(order, scores, DefaultWeights(), TieBreakAlphabetical)
	if ranked[0] != "A" {
		t.Fatalf("alphabetical tie-break violated: %v", ranked)
	}
}

func TestRankApproachesWeightedScore(t *testing.T) {
	// Same risk and performance; security weight decides.
	order := []string{"cheap", "secure"}
	scores := map[string]Scorecard{
		"cheap":  card(LevelMedium, LevelMedium, LevelLow, LevelLow, LevelMedium),
		"secure": card(LevelMedium, LevelMedium, LevelHigh, LevelMedium, LevelMedium),
	}

	w := Weights{Performance: 1, Maintainability: 1, Security: 5, Cost: 1, Risk: 2}
	ranked := RankApproaches(order, scores, w, TieBreakInputOrder)
	if ranked[0] != "secure" {
		t.Fatalf("security weight ignored: %v", ranked)
	}

	// Zero-value weights fall back to defaults instead of flattening scores.
	ranked = RankApproaches(order, scores, Weights{}, TieBreakInputOrder)
	if ranked[0] != "secure" {
		t.Fatalf("default-weight fallback broken: %v", ranked)
	}
}
