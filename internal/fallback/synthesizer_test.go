package fallback

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quickpick/internal/model"
)

var candidates = []string{"Sony", "Bose", "Apple"}

func TestQuestionDeterminism(t *testing.T) {
	s := NewSynthesizer()

	first := s.Question(0, "en")
	again := s.Question(0, "en")
	assert.Equal(t, first, again)

	assert.Equal(t, "fallback-1", first.ID)
	assert.Equal(t, "context", first.Dimension)
	require.Len(t, first.Options, 4)
	assert.Equal(t, "f1-1", first.Options[0].ID)
}

func TestQuestionTemplateCycling(t *testing.T) {
	s := NewSynthesizer()

	// Three templates; index 3 wraps back to the first
	q0 := s.Question(0, "en")
	q3 := s.Question(3, "en")
	assert.Equal(t, q0.Text, q3.Text)
	assert.Equal(t, "fallback-4", q3.ID, "identifier still tracks the index")
}

func TestQuestionLocalization(t *testing.T) {
	s := NewSynthesizer()

	en := s.Question(0, "en")
	es := s.Question(0, "es")
	assert.NotEqual(t, en.Text, es.Text)
	assert.Equal(t, en.Dimension, es.Dimension, "dimensions are language-neutral")
	assert.Equal(t, en.Options[0].Value, es.Options[0].Value, "values are language-neutral")

	regional := s.Question(0, "es-MX")
	assert.Equal(t, es.Text, regional.Text)

	unknown := s.Question(0, "fr")
	assert.Equal(t, en.Text, unknown.Text)
}

func TestBiasImpacts(t *testing.T) {
	t.Run("favored gets 8, first gets 2", func(t *testing.T) {
		impacts := BiasImpacts(candidates, 1)
		assert.Equal(t, map[string]int{"Sony": 2, "Bose": 8, "Apple": 0}, impacts)
	})

	t.Run("favored first candidate keeps only the 8", func(t *testing.T) {
		impacts := BiasImpacts(candidates, 0)
		assert.Equal(t, map[string]int{"Sony": 8, "Bose": 0, "Apple": 0}, impacts)
	})

	t.Run("index wraps around", func(t *testing.T) {
		impacts := BiasImpacts(candidates, 4)
		assert.Equal(t, 8, impacts["Bose"])
	})

	t.Run("empty candidates", func(t *testing.T) {
		assert.Empty(t, BiasImpacts(nil, 0))
	})
}

func TestPlanQuestionImpacts(t *testing.T) {
	s := NewSynthesizer()
	q := s.PlanQuestion(0, candidates, "en")

	for i, opt := range q.Options {
		require.NotEmpty(t, opt.ImpactScores, "option %d", i)
		assert.Equal(t, BiasImpacts(candidates, i), opt.ImpactScores)
	}
}

func TestPlaceholderRanking(t *testing.T) {
	s := NewSynthesizer()
	got := s.PlaceholderRanking([]string{"a", "b", "c", "d", "e", "f"})

	want := []model.RankingEntry{
		{Name: "a", Score: 100},
		{Name: "b", Score: 92},
		{Name: "c", Score: 84},
		{Name: "d", Score: 76},
		{Name: "e", Score: 68},
		{Name: "f", Score: 60},
	}
	assert.Equal(t, want, got)
}

func TestTradeoffsAndCounterfactuals(t *testing.T) {
	s := NewSynthesizer()

	tradeoffs := s.Tradeoffs(candidates, "en")
	require.Len(t, tradeoffs, 3)
	assert.Equal(t, "Sony", tradeoffs[0].Winner)
	assert.Equal(t, "Bose", tradeoffs[1].Winner)
	assert.Equal(t, "Apple", tradeoffs[2].Winner)

	counterfactuals := s.Counterfactuals(candidates, "en")
	require.Len(t, counterfactuals, 2)
	assert.Equal(t, "Bose", counterfactuals[0].NewTop, "budget toggle promotes the runner-up")
	assert.Equal(t, "Sony", counterfactuals[0].NewRanking[0].Name, "reversed ranking")
	assert.Equal(t, "Apple", counterfactuals[0].NewRanking[len(counterfactuals[0].NewRanking)-1].Name)
	assert.Equal(t, "Sony", counterfactuals[1].NewTop)
}

func TestResponse(t *testing.T) {
	s := NewSynthesizer()

	t.Run("questioning while under the maximum", func(t *testing.T) {
		ctx := &model.Context{Candidates: candidates, QuestionCount: 2, MinQuestions: 3, MaxQuestions: 10}
		result := s.Response(ctx, "warn")

		assert.Equal(t, model.StatusQuestion, result.Status)
		require.NotNil(t, result.Question)
		assert.Equal(t, "fallback-3", result.Question.ID)
		assert.Equal(t, 0.45, result.Confidence)
		assert.Equal(t, "warn", result.Warning)
		assert.Len(t, result.Ranking, 3)
	})

	t.Run("final once the maximum is reached", func(t *testing.T) {
		ctx := &model.Context{Candidates: candidates, QuestionCount: 10, MinQuestions: 3, MaxQuestions: 10}
		result := s.Response(ctx, "")

		assert.Equal(t, model.StatusFinal, result.Status)
		assert.Nil(t, result.Question)
	})
}

func TestPlan(t *testing.T) {
	s := NewSynthesizer()

	t.Run("base scores and clamped question count", func(t *testing.T) {
		ctx := &model.Context{Candidates: candidates, MinQuestions: 3, MaxQuestions: 10}
		plan := s.Plan(ctx)

		require.Len(t, plan.BaseScores, 3)
		for _, base := range plan.BaseScores {
			assert.Equal(t, BaseScore, base.Score)
		}
		assert.Len(t, plan.Questions, 5)
	})

	t.Run("tight bounds win over the target", func(t *testing.T) {
		ctx := &model.Context{Candidates: candidates, MinQuestions: 2, MaxQuestions: 3}
		assert.Len(t, s.Plan(ctx).Questions, 3)

		ctx = &model.Context{Candidates: candidates, MinQuestions: 7, MaxQuestions: 9}
		assert.Len(t, s.Plan(ctx).Questions, 7)
	})
}
