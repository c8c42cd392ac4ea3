// Package normalize turns raw, loosely-typed generator output into fully
// schema-conformant results. It never fails: missing or invalid fields are
// replaced with locally-derived defaults or delegated to the fallback
// synthesizer, and candidate coverage is always restored.
package normalize

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"quickpick/internal/decision"
	"quickpick/internal/fallback"
	"quickpick/internal/model"
	"quickpick/internal/sanitize"
)

const (
	maxOptions         = 5
	maxKeyReasons      = 4
	maxActions         = 5
	coverageScore      = 60 // score given to candidates the generator omitted
	defaultBaseScore   = 50
	positionDecayStart = 95 // per-entry score fallback: 95 - 10*index, floor 55
	positionDecayFloor = 55
)

// Normalizer repairs generator output against a validated Context. One
// instance serves all call sites so the per-envelope variants cannot drift.
type Normalizer struct {
	fb     *fallback.Synthesizer
	params decision.Params
	logger *zap.Logger
}

// New creates a normalizer backed by the given fallback synthesizer
func New(fb *fallback.Synthesizer, params decision.Params, logger *zap.Logger) *Normalizer {
	return &Normalizer{
		fb:     fb,
		params: params,
		logger: logger.Named("normalize"),
	}
}

// Result normalizes a raw generator object into the response envelope for
// the given call site. SiteStep evaluates the stop rule; SiteResult always
// produces a final report ranked by the accumulated scores.
func (n *Normalizer) Result(site model.CallSite, raw map[string]any, ctx *model.Context) *model.Result {
	if raw == nil {
		raw = map[string]any{}
	}

	switch site {
	case model.SiteResult:
		return n.finalResult(raw, ctx)
	default:
		return n.stepResult(raw, ctx)
	}
}

func (n *Normalizer) stepResult(raw map[string]any, ctx *model.Context) *model.Result {
	ranking := n.Ranking(raw["ranking"], ctx.Candidates)
	confidence := n.confidence(raw["confidence"], ranking)

	var explicit *bool
	if b, ok := raw["should_stop"].(bool); ok {
		explicit = &b
	}
	shouldStop := n.params.ShouldStop(explicit, ctx.QuestionCount, ctx.MinQuestions, ctx.MaxQuestions, confidence)

	result := &model.Result{
		Status:          model.StatusQuestion,
		Confidence:      confidence,
		Question:        n.Question(raw["question"], ctx, shouldStop),
		Ranking:         ranking,
		KeyReasons:      sanitize.StringList(raw["key_reasons"], maxKeyReasons),
		TradeoffMap:     n.Tradeoffs(raw["tradeoff_map"], ctx.Candidates, ctx.Language),
		Counterfactuals: n.Counterfactuals(raw["counterfactuals"], ctx.Candidates, ctx.Language),
		Actions:         sanitize.StringList(raw["actions"], maxActions),
		ThirdOption:     n.ThirdOption(raw["third_option"]),
	}
	if shouldStop {
		result.Status = model.StatusFinal
	}
	return result
}

// finalResult ranks by the session's adjusted scores but keeps the
// generator's reasons, re-matched by name. When scores and the generator's
// ranking disagree on order, the scores win.
func (n *Normalizer) finalResult(raw map[string]any, ctx *model.Context) *model.Result {
	generated := n.Ranking(raw["ranking"], ctx.Candidates)
	ranking := generated
	if len(ctx.Scores) > 0 {
		ranking = reattachReasons(ctx.Candidates, ctx.Scores, generated)
	}

	return &model.Result{
		Status:          model.StatusFinal,
		Confidence:      n.confidence(raw["confidence"], ranking),
		Question:        nil,
		Ranking:         ranking,
		KeyReasons:      sanitize.StringList(raw["key_reasons"], maxKeyReasons),
		TradeoffMap:     n.Tradeoffs(raw["tradeoff_map"], ctx.Candidates, ctx.Language),
		Counterfactuals: n.Counterfactuals(raw["counterfactuals"], ctx.Candidates, ctx.Language),
		Actions:         sanitize.StringList(raw["actions"], maxActions),
		ThirdOption:     n.ThirdOption(raw["third_option"]),
	}
}

// reattachReasons builds the adjusted-score ranking: scores decide order,
// generator reasons follow their candidate by name. Candidates without an
// accumulated score keep the generator's score.
func reattachReasons(candidates []string, scores map[string]int, generated []model.RankingEntry) []model.RankingEntry {
	genScore := make(map[string]int, len(generated))
	genReason := make(map[string]string, len(generated))
	for _, entry := range generated {
		key := strings.ToLower(entry.Name)
		genScore[key] = entry.Score
		genReason[key] = entry.Reason
	}

	ranking := make([]model.RankingEntry, 0, len(candidates))
	for _, name := range candidates {
		key := strings.ToLower(name)
		score, ok := scores[name]
		if !ok {
			score = genScore[key]
		}
		ranking = append(ranking, model.RankingEntry{
			Name:   name,
			Score:  sanitize.ClampIntValue(score, 0, 100),
			Reason: genReason[key],
		})
	}
	return decision.Sorted(ranking)
}

// Ranking maps a raw ranking array onto the candidate set: names resolve
// case-insensitively, scores clamp into [0,100] with a positional-decay
// fallback, unknown names drop, duplicates keep the first occurrence, and
// omitted candidates are appended at the coverage score. An absent or empty
// array yields the placeholder ranking in candidate input order.
func (n *Normalizer) Ranking(raw any, candidates []string) []model.RankingEntry {
	items := asSlice(raw)
	if len(items) == 0 {
		return n.fb.PlaceholderRanking(candidates)
	}

	seen := make(map[string]bool, len(candidates))
	ranking := make([]model.RankingEntry, 0, len(candidates))
	for i, item := range items {
		entry := asMap(item)
		name := sanitize.Text(entry["name"])
		if name == "" && i < len(candidates) {
			name = candidates[i]
		}
		resolved := resolveCandidate(name, candidates)
		if resolved == "" {
			continue
		}
		key := strings.ToLower(resolved)
		if seen[key] {
			continue
		}
		seen[key] = true

		decayed := positionDecayStart - 10*i
		if decayed < positionDecayFloor {
			decayed = positionDecayFloor
		}
		ranking = append(ranking, model.RankingEntry{
			Name:   resolved,
			Score:  sanitize.ClampInt(entry["score"], 0, 100, decayed),
			Reason: sanitize.Text(entry["reason"]),
		})
	}

	for _, name := range candidates {
		if !seen[strings.ToLower(name)] {
			ranking = append(ranking, model.RankingEntry{Name: name, Score: coverageScore})
		}
	}
	return ranking
}

// Question normalizes a raw question, delegating to the fallback synthesizer
// when the structure is unusable. A stopping step has no question.
func (n *Normalizer) Question(raw any, ctx *model.Context, shouldStop bool) *model.Question {
	if shouldStop {
		return nil
	}
	q := n.question(raw, ctx, ctx.QuestionCount, false)
	return &q
}

// PlanQuestion is Question for one slot of a precomputed plan: every option
// additionally carries normalized impact scores.
func (n *Normalizer) PlanQuestion(raw any, ctx *model.Context, index int) model.Question {
	return n.question(raw, ctx, index, true)
}

func (n *Normalizer) question(raw any, ctx *model.Context, index int, withImpacts bool) model.Question {
	entry := asMap(raw)
	if entry == nil {
		return n.fallbackQuestion(ctx, index, withImpacts, "missing question object")
	}

	rawOptions := asSlice(entry["options"])
	if len(rawOptions) > maxOptions {
		rawOptions = rawOptions[:maxOptions]
	}

	options := make([]model.Option, 0, len(rawOptions))
	for i, rawOption := range rawOptions {
		opt := asMap(rawOption)
		label := sanitize.Text(opt["label"])
		if label == "" {
			continue
		}
		id := sanitize.Text(opt["id"])
		if id == "" {
			id = fmt.Sprintf("o%d", i+1)
		}
		option := model.Option{
			ID:         id,
			Label:      label,
			Value:      sanitize.Text(opt["value"]),
			ImpactHint: sanitize.Text(opt["impact_hint"]),
		}
		if withImpacts {
			option.ImpactScores = n.ImpactScores(opt["impact_scores"], ctx.Candidates, len(options))
		}
		options = append(options, option)
	}

	if len(options) < 2 {
		return n.fallbackQuestion(ctx, index, withImpacts, "fewer than 2 usable options")
	}

	id := sanitize.Text(entry["id"])
	if id == "" {
		id = fmt.Sprintf("q%d", index+1)
	}
	return model.Question{
		ID:             id,
		Text:           sanitize.Text(entry["text"]),
		Dimension:      sanitize.Text(entry["dimension"]),
		InfoGainReason: sanitize.Text(entry["info_gain_reason"]),
		Options:        options,
	}
}

func (n *Normalizer) fallbackQuestion(ctx *model.Context, index int, withImpacts bool, cause string) model.Question {
	n.logger.Debug("substituting fallback question", zap.Int("index", index), zap.String("cause", cause))
	if withImpacts {
		return n.fb.PlanQuestion(index, ctx.Candidates, ctx.Language)
	}
	return *n.fb.Question(index, ctx.Language)
}

// ImpactScores resolves a raw impact map over every candidate, clamped into
// the impact limit with default 0. An all-zero result carries no signal, so
// it is replaced with the deterministic minimal-bias map keyed on
// fallbackIndex.
func (n *Normalizer) ImpactScores(raw any, candidates []string, fallbackIndex int) map[string]int {
	entry := asMap(raw)
	limit := n.params.ImpactLimit

	impacts := make(map[string]int, len(candidates))
	allZero := true
	for _, name := range candidates {
		score := sanitize.ClampInt(lookupFold(entry, name), -limit, limit, 0)
		if score != 0 {
			allZero = false
		}
		impacts[name] = score
	}
	if allZero {
		return fallback.BiasImpacts(candidates, fallbackIndex)
	}
	return impacts
}

// Tradeoffs normalizes the trade-off map; an empty or invalid input yields
// the deterministic fallback set. Winners always resolve to a member of the
// candidate set, defaulting to the first candidate.
func (n *Normalizer) Tradeoffs(raw any, candidates []string, lang string) []model.Tradeoff {
	items := asSlice(raw)
	if len(items) == 0 {
		return n.fb.Tradeoffs(candidates, lang)
	}

	tradeoffs := make([]model.Tradeoff, 0, len(items))
	for _, item := range items {
		entry := asMap(item)
		dimension := sanitize.Text(entry["dimension"])
		if dimension == "" {
			continue
		}
		winner := n.member(sanitize.Text(entry["winner"]), candidates)
		if winner == "" {
			continue
		}
		tradeoffs = append(tradeoffs, model.Tradeoff{
			Dimension: dimension,
			Winner:    winner,
			Why:       sanitize.Text(entry["why"]),
		})
	}
	if len(tradeoffs) == 0 {
		return n.fb.Tradeoffs(candidates, lang)
	}
	return tradeoffs
}

// Counterfactuals normalizes the what-if toggles with the same
// empty-fallback pattern; each new ranking goes back through Ranking for the
// coverage guarantee.
func (n *Normalizer) Counterfactuals(raw any, candidates []string, lang string) []model.Counterfactual {
	items := asSlice(raw)
	if len(items) == 0 {
		return n.fb.Counterfactuals(candidates, lang)
	}

	counterfactuals := make([]model.Counterfactual, 0, len(items))
	for _, item := range items {
		entry := asMap(item)
		toggle := sanitize.Text(entry["toggle"])
		if toggle == "" {
			continue
		}
		newTop := n.member(sanitize.Text(entry["new_top"]), candidates)
		if newTop == "" {
			continue
		}
		counterfactuals = append(counterfactuals, model.Counterfactual{
			Toggle:     toggle,
			Change:     sanitize.Text(entry["change"]),
			NewTop:     newTop,
			NewRanking: n.Ranking(entry["new_ranking"], candidates),
		})
	}
	if len(counterfactuals) == 0 {
		return n.fb.Counterfactuals(candidates, lang)
	}
	return counterfactuals
}

// ThirdOption is nil unless the title sanitizes to non-empty
func (n *Normalizer) ThirdOption(raw any) *model.ThirdOption {
	entry := asMap(raw)
	if entry == nil {
		return nil
	}
	title := sanitize.Text(entry["title"])
	if title == "" {
		return nil
	}
	return &model.ThirdOption{
		Title:    title,
		Why:      sanitize.Text(entry["why"]),
		Criteria: sanitize.Text(entry["criteria"]),
	}
}

// Plan normalizes a raw plan: base scores cover every candidate, unusable
// questions are substituted per slot, and the question count is clamped into
// the session's bounds.
func (n *Normalizer) Plan(raw map[string]any, ctx *model.Context) *model.Plan {
	if raw == nil {
		raw = map[string]any{}
	}

	rawQuestions := asSlice(raw["questions"])
	if len(rawQuestions) > ctx.MaxQuestions {
		rawQuestions = rawQuestions[:ctx.MaxQuestions]
	}

	questions := make([]model.Question, 0, len(rawQuestions))
	for i, rawQuestion := range rawQuestions {
		questions = append(questions, n.PlanQuestion(rawQuestion, ctx, i))
	}
	for len(questions) < ctx.MinQuestions {
		questions = append(questions, n.fb.PlanQuestion(len(questions), ctx.Candidates, ctx.Language))
	}

	return &model.Plan{
		BaseScores: n.BaseScores(raw["base_scores"], ctx.Candidates),
		Questions:  questions,
	}
}

// BaseScores resolves starting scores for every candidate in input order,
// defaulting to the neutral base for anything missing or invalid.
func (n *Normalizer) BaseScores(raw any, candidates []string) []model.CandidateScore {
	byName := make(map[string]int, len(candidates))
	for _, item := range asSlice(raw) {
		entry := asMap(item)
		resolved := resolveCandidate(sanitize.Text(entry["name"]), candidates)
		if resolved == "" {
			continue
		}
		key := strings.ToLower(resolved)
		if _, ok := byName[key]; ok {
			continue
		}
		byName[key] = sanitize.ClampInt(entry["score"], 0, 100, defaultBaseScore)
	}

	scores := make([]model.CandidateScore, 0, len(candidates))
	for _, name := range candidates {
		score, ok := byName[strings.ToLower(name)]
		if !ok {
			score = defaultBaseScore
		}
		scores = append(scores, model.CandidateScore{Name: name, Score: score})
	}
	return scores
}

// Scores sanitizes a client-supplied score map: case-insensitive candidate
// match, values clamped into [0,100]. Candidates without a numeric entry are
// left out so callers can fall back per candidate.
func (n *Normalizer) Scores(raw map[string]any, candidates []string) map[string]int {
	scores := make(map[string]int, len(candidates))
	for _, name := range candidates {
		v := lookupFold(raw, name)
		if v == nil {
			continue
		}
		score := sanitize.ClampInt(v, 0, 100, -1)
		if score < 0 {
			continue
		}
		scores[name] = score
	}
	return scores
}

// confidence clamps a raw confidence into [0,1]; anything non-numeric is
// derived from the ranking gap instead.
func (n *Normalizer) confidence(raw any, ranking []model.RankingEntry) float64 {
	c := sanitize.ClampFloat(raw, 0, 1, -1)
	if c < 0 {
		return n.params.Confidence(ranking)
	}
	return c
}

// member resolves a name against the candidate set, defaulting to the first
// candidate so the membership invariant always holds.
func (n *Normalizer) member(name string, candidates []string) string {
	if resolved := resolveCandidate(name, candidates); resolved != "" {
		return resolved
	}
	if len(candidates) > 0 {
		return candidates[0]
	}
	return ""
}

func resolveCandidate(name string, candidates []string) string {
	if name == "" {
		return ""
	}
	for _, candidate := range candidates {
		if strings.EqualFold(candidate, name) {
			return candidate
		}
	}
	return ""
}

// lookupFold finds a map value by case-insensitive key match
func lookupFold(entry map[string]any, key string) any {
	if entry == nil {
		return nil
	}
	if v, ok := entry[key]; ok {
		return v
	}
	for k, v := range entry {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return nil
}

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func asSlice(v any) []any {
	s, _ := v.([]any)
	return s
}
