package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"quickpick/internal/decision"
	"quickpick/internal/fallback"
	"quickpick/internal/model"
)

func newNormalizer() *Normalizer {
	return New(fallback.NewSynthesizer(), decision.DefaultParams(), zap.NewNop())
}

func stepContext() *model.Context {
	return &model.Context{
		Category:      "headphones",
		Candidates:    []string{"A", "B", "C"},
		QuestionCount: 1,
		MinQuestions:  3,
		MaxQuestions:  10,
		Language:      "en",
	}
}

func TestRankingCoverage(t *testing.T) {
	n := newNormalizer()
	candidates := []string{"A", "B", "C"}

	t.Run("case-insensitive resolution and coverage", func(t *testing.T) {
		raw := []any{
			map[string]any{"name": "b", "score": float64(100), "reason": "top pick"},
		}
		got := n.Ranking(raw, candidates)

		require.Len(t, got, 3)
		assert.Equal(t, model.RankingEntry{Name: "B", Score: 100, Reason: "top pick"}, got[0])
		assert.Equal(t, model.RankingEntry{Name: "A", Score: 60}, got[1])
		assert.Equal(t, model.RankingEntry{Name: "C", Score: 60}, got[2])
	})

	t.Run("unknown names drop, duplicates keep first", func(t *testing.T) {
		raw := []any{
			map[string]any{"name": "Ghost", "score": float64(99)},
			map[string]any{"name": "A", "score": float64(90)},
			map[string]any{"name": "a", "score": float64(10)},
		}
		got := n.Ranking(raw, candidates)

		require.Len(t, got, 3)
		assert.Equal(t, "A", got[0].Name)
		assert.Equal(t, 90, got[0].Score)
	})

	t.Run("missing score falls back to positional decay", func(t *testing.T) {
		raw := []any{
			map[string]any{"name": "A"},
			map[string]any{"name": "B"},
			map[string]any{"name": "C"},
		}
		got := n.Ranking(raw, candidates)
		assert.Equal(t, 95, got[0].Score)
		assert.Equal(t, 85, got[1].Score)
		assert.Equal(t, 75, got[2].Score)
	})

	t.Run("missing name resolves by position", func(t *testing.T) {
		raw := []any{
			map[string]any{"score": float64(88)},
		}
		got := n.Ranking(raw, candidates)
		assert.Equal(t, "A", got[0].Name)
		assert.Equal(t, 88, got[0].Score)
	})

	t.Run("empty input yields placeholder ranking", func(t *testing.T) {
		got := n.Ranking(nil, candidates)
		require.Len(t, got, 3)
		assert.Equal(t, 100, got[0].Score)
		assert.Equal(t, 92, got[1].Score)
		assert.Equal(t, 84, got[2].Score)
	})
}

func TestRankingIdempotent(t *testing.T) {
	n := newNormalizer()
	candidates := []string{"A", "B", "C"}

	raw := []any{
		map[string]any{"name": "b", "score": float64(100)},
	}
	once := n.Ranking(raw, candidates)

	roundtrip := make([]any, 0, len(once))
	for _, entry := range once {
		roundtrip = append(roundtrip, map[string]any{
			"name":   entry.Name,
			"score":  float64(entry.Score),
			"reason": entry.Reason,
		})
	}
	twice := n.Ranking(roundtrip, candidates)
	assert.Equal(t, once, twice)
}

func TestStepResult(t *testing.T) {
	n := newNormalizer()

	t.Run("valid question passes through", func(t *testing.T) {
		raw := map[string]any{
			"confidence": 0.5,
			"question": map[string]any{
				"id":   "q7",
				"text": "Noise cancelling or battery life?",
				"options": []any{
					map[string]any{"id": "a", "label": "Noise cancelling"},
					map[string]any{"id": "b", "label": "Battery life"},
				},
			},
		}
		result := n.Result(model.SiteStep, raw, stepContext())

		assert.Equal(t, model.StatusQuestion, result.Status)
		require.NotNil(t, result.Question)
		assert.Equal(t, "q7", result.Question.ID)
		assert.Len(t, result.Question.Options, 2)
		assert.Equal(t, 0.5, result.Confidence)
	})

	t.Run("explicit should_stop produces final without question", func(t *testing.T) {
		raw := map[string]any{"should_stop": true, "confidence": 0.3}
		result := n.Result(model.SiteStep, raw, stepContext())

		assert.Equal(t, model.StatusFinal, result.Status)
		assert.Nil(t, result.Question)
	})

	t.Run("stop rule fires from confidence", func(t *testing.T) {
		ctx := stepContext()
		ctx.QuestionCount = 5
		raw := map[string]any{"confidence": 0.9}
		result := n.Result(model.SiteStep, raw, ctx)
		assert.Equal(t, model.StatusFinal, result.Status)
	})

	t.Run("nil raw yields a complete fallback-shaped step", func(t *testing.T) {
		result := n.Result(model.SiteStep, nil, stepContext())

		assert.Equal(t, model.StatusQuestion, result.Status)
		require.NotNil(t, result.Question)
		assert.GreaterOrEqual(t, len(result.Question.Options), 2)
		assert.Len(t, result.Ranking, 3)
		assert.NotEmpty(t, result.TradeoffMap)
		assert.NotEmpty(t, result.Counterfactuals)
	})

	t.Run("invalid confidence is derived from the ranking gap", func(t *testing.T) {
		raw := map[string]any{
			"confidence": "very sure",
			"ranking": []any{
				map[string]any{"name": "A", "score": float64(90)},
				map[string]any{"name": "B", "score": float64(70)},
				map[string]any{"name": "C", "score": float64(60)},
			},
		}
		result := n.Result(model.SiteStep, raw, stepContext())
		assert.InDelta(t, 0.5, result.Confidence, 1e-9)
	})
}

func TestQuestionFallback(t *testing.T) {
	n := newNormalizer()
	ctx := stepContext()

	t.Run("fewer than two usable options", func(t *testing.T) {
		raw := map[string]any{
			"text": "Broken question",
			"options": []any{
				map[string]any{"id": "a", "label": "Only one"},
				map[string]any{"id": "b", "label": "   "},
			},
		}
		q := n.Question(raw, ctx, false)
		require.NotNil(t, q)
		assert.Equal(t, "fallback-2", q.ID, "index follows the question count")
	})

	t.Run("options capped at five", func(t *testing.T) {
		options := make([]any, 0, 7)
		for i := 0; i < 7; i++ {
			options = append(options, map[string]any{"label": "Option"})
		}
		q := n.Question(map[string]any{"text": "Pick", "options": options}, ctx, false)
		require.NotNil(t, q)
		assert.Len(t, q.Options, 5)
	})

	t.Run("missing ids are generated", func(t *testing.T) {
		raw := map[string]any{
			"text": "Pick",
			"options": []any{
				map[string]any{"label": "One"},
				map[string]any{"label": "Two"},
			},
		}
		q := n.Question(raw, ctx, false)
		require.NotNil(t, q)
		assert.Equal(t, "q2", q.ID)
		assert.Equal(t, "o1", q.Options[0].ID)
		assert.Equal(t, "o2", q.Options[1].ID)
	})

	t.Run("stopping step has no question", func(t *testing.T) {
		assert.Nil(t, n.Question(map[string]any{}, ctx, true))
	})
}

func TestImpactScores(t *testing.T) {
	n := newNormalizer()
	candidates := []string{"A", "B", "C"}

	t.Run("clamped into the impact limit", func(t *testing.T) {
		raw := map[string]any{"A": float64(40), "b": float64(-40), "C": float64(5)}
		got := n.ImpactScores(raw, candidates, 0)
		assert.Equal(t, map[string]int{"A": 12, "B": -12, "C": 5}, got)
	})

	t.Run("all-zero map is replaced with minimal bias", func(t *testing.T) {
		got := n.ImpactScores(map[string]any{"A": float64(0)}, candidates, 1)
		assert.Equal(t, fallback.BiasImpacts(candidates, 1), got)
	})

	t.Run("missing map is replaced with minimal bias", func(t *testing.T) {
		got := n.ImpactScores(nil, candidates, 2)
		assert.Equal(t, fallback.BiasImpacts(candidates, 2), got)
	})
}

func TestTradeoffs(t *testing.T) {
	n := newNormalizer()
	candidates := []string{"A", "B", "C"}

	t.Run("winner resolves or defaults to first candidate", func(t *testing.T) {
		raw := []any{
			map[string]any{"dimension": "price", "winner": "b", "why": "cheaper"},
			map[string]any{"dimension": "sound", "winner": "Ghost", "why": "richer"},
		}
		got := n.Tradeoffs(raw, candidates, "en")

		require.Len(t, got, 2)
		assert.Equal(t, "B", got[0].Winner)
		assert.Equal(t, "A", got[1].Winner)
	})

	t.Run("entries without a dimension drop; empty set falls back", func(t *testing.T) {
		raw := []any{map[string]any{"winner": "A"}}
		got := n.Tradeoffs(raw, candidates, "en")
		assert.Equal(t, n.fb.Tradeoffs(candidates, "en"), got)
	})
}

func TestCounterfactuals(t *testing.T) {
	n := newNormalizer()
	candidates := []string{"A", "B", "C"}

	t.Run("new ranking goes through coverage repair", func(t *testing.T) {
		raw := []any{
			map[string]any{
				"toggle":  "If budget doubles",
				"change":  "Premium option wins",
				"new_top": "c",
				"new_ranking": []any{
					map[string]any{"name": "C", "score": float64(95)},
				},
			},
		}
		got := n.Counterfactuals(raw, candidates, "en")

		require.Len(t, got, 1)
		assert.Equal(t, "C", got[0].NewTop)
		assert.Len(t, got[0].NewRanking, 3, "omitted candidates are appended")
	})

	t.Run("empty input falls back", func(t *testing.T) {
		got := n.Counterfactuals(nil, candidates, "en")
		assert.Equal(t, n.fb.Counterfactuals(candidates, "en"), got)
	})
}

func TestFinalResultReattachesReasons(t *testing.T) {
	n := newNormalizer()
	ctx := stepContext()
	ctx.Scores = map[string]int{"A": 55, "B": 80, "C": 62}

	raw := map[string]any{
		"ranking": []any{
			map[string]any{"name": "a", "score": float64(99), "reason": "generator liked A"},
			map[string]any{"name": "b", "score": float64(70), "reason": "solid choice"},
			map[string]any{"name": "c", "score": float64(60), "reason": "runner up"},
		},
	}
	result := n.Result(model.SiteResult, raw, ctx)

	assert.Equal(t, model.StatusFinal, result.Status)
	assert.Nil(t, result.Question)
	require.Len(t, result.Ranking, 3)

	// Accumulated scores decide the order, generator reasons follow the name
	assert.Equal(t, model.RankingEntry{Name: "B", Score: 80, Reason: "solid choice"}, result.Ranking[0])
	assert.Equal(t, model.RankingEntry{Name: "C", Score: 62, Reason: "runner up"}, result.Ranking[1])
	assert.Equal(t, model.RankingEntry{Name: "A", Score: 55, Reason: "generator liked A"}, result.Ranking[2])
}

func TestPlanNormalization(t *testing.T) {
	n := newNormalizer()
	ctx := stepContext()

	t.Run("short plans are padded to the minimum", func(t *testing.T) {
		raw := map[string]any{
			"questions": []any{
				map[string]any{
					"text": "Real question",
					"options": []any{
						map[string]any{"label": "Yes"},
						map[string]any{"label": "No"},
					},
				},
			},
		}
		plan := n.Plan(raw, ctx)

		assert.Len(t, plan.Questions, ctx.MinQuestions)
		require.Len(t, plan.BaseScores, 3)
		for _, base := range plan.BaseScores {
			assert.Equal(t, 50, base.Score)
		}
		// Every option in every slot carries impact scores
		for _, q := range plan.Questions {
			for _, opt := range q.Options {
				assert.NotEmpty(t, opt.ImpactScores)
			}
		}
	})

	t.Run("long plans are truncated to the maximum", func(t *testing.T) {
		questions := make([]any, 0, 14)
		for i := 0; i < 14; i++ {
			questions = append(questions, map[string]any{
				"text": "Q",
				"options": []any{
					map[string]any{"label": "One"},
					map[string]any{"label": "Two"},
				},
			})
		}
		plan := n.Plan(map[string]any{"questions": questions}, ctx)
		assert.Len(t, plan.Questions, ctx.MaxQuestions)
	})

	t.Run("base scores resolve names case-insensitively", func(t *testing.T) {
		raw := map[string]any{
			"base_scores": []any{
				map[string]any{"name": "b", "score": float64(72)},
				map[string]any{"name": "Ghost", "score": float64(99)},
			},
		}
		plan := n.Plan(raw, ctx)

		require.Len(t, plan.BaseScores, 3)
		assert.Equal(t, model.CandidateScore{Name: "A", Score: 50}, plan.BaseScores[0])
		assert.Equal(t, model.CandidateScore{Name: "B", Score: 72}, plan.BaseScores[1])
		assert.Equal(t, model.CandidateScore{Name: "C", Score: 50}, plan.BaseScores[2])
	})
}

func TestScores(t *testing.T) {
	n := newNormalizer()
	candidates := []string{"A", "B", "C"}

	got := n.Scores(map[string]any{"a": float64(150), "B": "not a number", "C": float64(42)}, candidates)

	assert.Equal(t, 100, got["A"])
	assert.NotContains(t, got, "B")
	assert.Equal(t, 42, got["C"])
}

func TestThirdOption(t *testing.T) {
	n := newNormalizer()

	assert.Nil(t, n.ThirdOption(nil))
	assert.Nil(t, n.ThirdOption(map[string]any{"why": "no title"}))

	got := n.ThirdOption(map[string]any{"title": " Refurbished model ", "why": "cheaper", "criteria": "warranty"})
	require.NotNil(t, got)
	assert.Equal(t, "Refurbished model", got.Title)
}
