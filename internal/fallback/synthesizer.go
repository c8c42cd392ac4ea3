// Package fallback deterministically synthesizes complete, self-consistent
// responses from local data only. It serves three callers: sessions with no
// generator credential, generator calls that failed past retry, and the
// normalizer patching individual malformed fields.
package fallback

import (
	"fmt"

	"quickpick/internal/model"
	"quickpick/internal/sanitize"
)

// BaseScore is the starting score for every candidate in a fallback plan
const BaseScore = 50

// fallbackConfidence is reported whenever a whole response is synthesized
// locally; it is intentionally below the stop threshold.
const fallbackConfidence = 0.45

// planQuestionTarget is the preferred plan length before clamping into the
// session's question bounds.
const planQuestionTarget = 5

// Synthesizer produces deterministic substitutes for generator output.
// Equal inputs always yield equal output.
type Synthesizer struct{}

// NewSynthesizer creates a new fallback synthesizer
func NewSynthesizer() *Synthesizer {
	return &Synthesizer{}
}

// Question returns the deterministic question for a question index. The same
// index and language always yield the same template.
func (s *Synthesizer) Question(index int, lang string) *model.Question {
	loc := localeFor(lang)
	pick := loc.Questions[index%len(loc.Questions)]

	options := make([]model.Option, 0, len(pick.Options))
	for i, opt := range pick.Options {
		options = append(options, model.Option{
			ID:    fmt.Sprintf("f%d-%d", index+1, i+1),
			Label: opt.Label,
			Value: opt.Value,
		})
	}

	return &model.Question{
		ID:             fmt.Sprintf("fallback-%d", index+1),
		Text:           pick.Text,
		Dimension:      pick.Dimension,
		InfoGainReason: pick.InfoGainReason,
		Options:        options,
	}
}

// PlanQuestion is Question with impact scores attached to every option, for
// plans that are consumed without further generator calls.
func (s *Synthesizer) PlanQuestion(index int, candidates []string, lang string) model.Question {
	q := s.Question(index, lang)
	for i := range q.Options {
		q.Options[i].ImpactScores = BiasImpacts(candidates, i)
	}
	return *q
}

// BiasImpacts builds the minimal-bias impact map: the candidate at
// favorIndex mod len(candidates) gets +8, the first candidate +2 unless it is
// the favored one, everyone else 0. Guarantees each option moves the ranking.
func BiasImpacts(candidates []string, favorIndex int) map[string]int {
	impacts := make(map[string]int, len(candidates))
	if len(candidates) == 0 {
		return impacts
	}
	favored := favorIndex % len(candidates)
	for i, name := range candidates {
		switch {
		case i == favored:
			impacts[name] = 8
		case i == 0:
			impacts[name] = 2
		default:
			impacts[name] = 0
		}
	}
	return impacts
}

// PlaceholderRanking synthesizes a descending ranking in candidate input
// order when no real scores exist: 100 - 8*index, floored at 60.
func (s *Synthesizer) PlaceholderRanking(candidates []string) []model.RankingEntry {
	ranking := make([]model.RankingEntry, 0, len(candidates))
	for i, name := range candidates {
		score := 100 - i*8
		if score < 60 {
			score = 60
		}
		ranking = append(ranking, model.RankingEntry{Name: name, Score: score})
	}
	return ranking
}

// Tradeoffs assigns the first candidates, by input order, as winners of the
// locale's fixed dimensions. Never fails, never calls out.
func (s *Synthesizer) Tradeoffs(candidates []string, lang string) []model.Tradeoff {
	loc := localeFor(lang)
	result := make([]model.Tradeoff, 0, len(loc.Tradeoffs))
	for i, t := range loc.Tradeoffs {
		winner := candidateAt(candidates, i)
		if winner == "" {
			continue
		}
		result = append(result, model.Tradeoff{
			Dimension: t.Dimension,
			Winner:    winner,
			Why:       t.Why,
		})
	}
	return result
}

// Counterfactuals builds the locale's fixed toggles: a budget toggle that
// promotes the second candidate over a reversed ranking, and a performance
// toggle that keeps the first on top.
func (s *Synthesizer) Counterfactuals(candidates []string, lang string) []model.Counterfactual {
	loc := localeFor(lang)
	result := make([]model.Counterfactual, 0, len(loc.Counterfactuals))
	for i, c := range loc.Counterfactuals {
		ranking := s.PlaceholderRanking(candidates)
		top := candidateAt(candidates, 0)
		if i == 0 {
			reverse(ranking)
			if second := candidateAt(candidates, 1); second != "" {
				top = second
			}
		}
		if top == "" {
			continue
		}
		result = append(result, model.Counterfactual{
			Toggle:     c.Toggle,
			Change:     c.Change,
			NewTop:     top,
			NewRanking: ranking,
		})
	}
	return result
}

// KeyReasons returns the locale's fixed fallback explanation lines
func (s *Synthesizer) KeyReasons(lang string) []string {
	loc := localeFor(lang)
	return append([]string(nil), loc.KeyReasons...)
}

// Actions returns the locale's fixed next-step suggestions
func (s *Synthesizer) Actions(lang string) []string {
	loc := localeFor(lang)
	return append([]string(nil), loc.Actions...)
}

// Response builds a complete substitute Result for a context, with no
// external calls. The warning annotates which fallback path was taken.
func (s *Synthesizer) Response(ctx *model.Context, warning string) *model.Result {
	shouldStop := ctx.QuestionCount >= ctx.MaxQuestions

	result := &model.Result{
		Status:          model.StatusQuestion,
		Confidence:      fallbackConfidence,
		Ranking:         s.PlaceholderRanking(ctx.Candidates),
		KeyReasons:      s.KeyReasons(ctx.Language),
		TradeoffMap:     s.Tradeoffs(ctx.Candidates, ctx.Language),
		Counterfactuals: s.Counterfactuals(ctx.Candidates, ctx.Language),
		Actions:         s.Actions(ctx.Language),
		Warning:         warning,
	}
	if shouldStop {
		result.Status = model.StatusFinal
	} else {
		result.Question = s.Question(ctx.QuestionCount, ctx.Language)
	}
	return result
}

// Plan builds a complete deterministic plan: every candidate starts at
// BaseScore and the question count is clamped into the session's bounds.
func (s *Synthesizer) Plan(ctx *model.Context) *model.Plan {
	count := sanitize.ClampIntValue(planQuestionTarget, ctx.MinQuestions, ctx.MaxQuestions)

	base := make([]model.CandidateScore, 0, len(ctx.Candidates))
	for _, name := range ctx.Candidates {
		base = append(base, model.CandidateScore{Name: name, Score: BaseScore})
	}

	questions := make([]model.Question, 0, count)
	for i := 0; i < count; i++ {
		questions = append(questions, s.PlanQuestion(i, ctx.Candidates, ctx.Language))
	}

	return &model.Plan{BaseScores: base, Questions: questions}
}

func candidateAt(candidates []string, i int) string {
	if i < len(candidates) {
		return candidates[i]
	}
	if len(candidates) > 0 {
		return candidates[0]
	}
	return ""
}

func reverse(ranking []model.RankingEntry) {
	for i, j := 0, len(ranking)-1; i < j; i, j = i+1, j-1 {
		ranking[i], ranking[j] = ranking[j], ranking[i]
	}
}
