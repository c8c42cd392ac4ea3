// Package decision owns the questioning/final state transition: when to stop
// asking, how confident the current ranking is, and how answered options
// mutate candidate scores.
package decision

import (
	"sort"

	"quickpick/internal/model"
)

// Params are the tuning constants of the stop rule. The defaults are
// empirical product values, kept configurable rather than hard-coded.
type Params struct {
	// StopConfidence is the early-termination threshold once the minimum
	// question count is reached.
	StopConfidence float64

	// ConfidenceDivisor scales the top-two score gap into [0,1]
	ConfidenceDivisor float64

	// ImpactLimit bounds per-option score deltas to [-ImpactLimit, ImpactLimit]
	ImpactLimit int
}

// DefaultParams returns the tuned production constants
func DefaultParams() Params {
	return Params{
		StopConfidence:    0.82,
		ConfidenceDivisor: 40,
		ImpactLimit:       12,
	}
}

// ShouldStop evaluates the transition rule once per request. An explicit stop
// flag from the generator is honored as-is; otherwise questioning stops when
// enough questions were answered with enough confidence, or when the maximum
// is exhausted.
func (p Params) ShouldStop(explicit *bool, answered, minQuestions, maxQuestions int, confidence float64) bool {
	if explicit != nil {
		return *explicit
	}
	if answered >= minQuestions && confidence >= p.StopConfidence {
		return true
	}
	return answered >= maxQuestions
}

// Confidence derives ranking certainty from the gap between the top two
// scores, clamped into [0.2, 0.95]. Fewer than two entries yields a neutral
// 0.5. Entry order does not matter.
func (p Params) Confidence(ranking []model.RankingEntry) float64 {
	if len(ranking) < 2 {
		return 0.5
	}
	top, second := ranking[0].Score, ranking[1].Score
	if second > top {
		top, second = second, top
	}
	for _, entry := range ranking[2:] {
		if entry.Score > top {
			top, second = entry.Score, top
		} else if entry.Score > second {
			second = entry.Score
		}
	}
	gap := float64(top-second) / p.ConfidenceDivisor
	if gap < 0.2 {
		return 0.2
	}
	if gap > 0.95 {
		return 0.95
	}
	return gap
}

// ApplyImpacts adds an answered option's per-candidate deltas to the running
// scores, re-clamping each into [0,100]. Candidates missing from the impact
// map are unchanged.
func ApplyImpacts(scores map[string]int, impacts map[string]int) {
	for name, delta := range impacts {
		if _, ok := scores[name]; !ok {
			continue
		}
		next := scores[name] + delta
		if next < 0 {
			next = 0
		}
		if next > 100 {
			next = 100
		}
		scores[name] = next
	}
}

// Sorted returns a copy of the entries sorted by score descending; ties keep
// their existing order.
func Sorted(ranking []model.RankingEntry) []model.RankingEntry {
	out := append([]model.RankingEntry(nil), ranking...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}

// Ranking derives ranking entries from a score map in candidate insertion
// order, sorted by score descending with ties kept in insertion order.
func Ranking(candidates []string, scores map[string]int) []model.RankingEntry {
	ranking := make([]model.RankingEntry, 0, len(candidates))
	for _, name := range candidates {
		score := scores[name]
		if score < 0 {
			score = 0
		}
		if score > 100 {
			score = 100
		}
		ranking = append(ranking, model.RankingEntry{Name: name, Score: score})
	}
	// Stable sort keeps tied candidates in first-seen order
	sort.SliceStable(ranking, func(i, j int) bool {
		return ranking[i].Score > ranking[j].Score
	})
	return ranking
}
