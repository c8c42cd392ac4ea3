package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"quickpick/internal/decision"
	"quickpick/internal/fallback"
	"quickpick/internal/generator"
	"quickpick/internal/model"
	"quickpick/internal/normalize"
	"quickpick/internal/sanitize"
)

// ErrCandidateCount is the only validation error surfaced to callers; every
// other failure is repaired into a fallback response.
var ErrCandidateCount = errors.New("please provide between 3 and 6 candidates")

const (
	minCandidates = 3

	defaultMinQuestions = 3
	defaultMaxQuestions = 10

	defaultCategory = "general consumer product"

	warnMissingTokenQuestion = "Missing AI token. Returning fallback question."
	warnCallFailedQuestion   = "AI request failed. Returning fallback question."
	warnMissingTokenPlan     = "Missing AI token. Returning fallback plan."
	warnCallFailedPlan       = "AI request failed. Returning fallback plan."
	warnMissingTokenResult   = "Missing AI token. Returning fallback result."
	warnCallFailedResult     = "AI request failed. Returning fallback result."
)

// QuickPickService runs the stateless envelopes: sanitize the request,
// attempt the generator, normalize or synthesize, decide stop/continue.
// Generator trouble never escapes as an error.
type QuickPickService struct {
	gen    *generator.Client
	norm   *normalize.Normalizer
	fb     *fallback.Synthesizer
	params decision.Params
	logger *zap.Logger
}

// NewQuickPickService creates the envelope service
func NewQuickPickService(gen *generator.Client, norm *normalize.Normalizer, fb *fallback.Synthesizer, params decision.Params, logger *zap.Logger) *QuickPickService {
	return &QuickPickService{
		gen:    gen,
		norm:   norm,
		fb:     fb,
		params: params,
		logger: logger.Named("quickpick"),
	}
}

// NextRequest is the next-step envelope input
type NextRequest struct {
	Category          string         `json:"category"`
	Candidates        []string       `json:"candidates"`
	Answers           []model.Answer `json:"answers"`
	PreviousQuestions []string       `json:"previousQuestions"`
	QuestionCount     *int           `json:"questionCount"`
	MinQuestions      *int           `json:"minQuestions"`
	MaxQuestions      *int           `json:"maxQuestions"`
	Location          string         `json:"location"`
	Language          string         `json:"language"`
}

// PlanRequest is the start-plan envelope input
type PlanRequest struct {
	Category     string   `json:"category"`
	Candidates   []string `json:"candidates"`
	MinQuestions *int     `json:"minQuestions"`
	MaxQuestions *int     `json:"maxQuestions"`
	Location     string   `json:"location"`
	Language     string   `json:"language"`
}

// ResultRequest is the final-result envelope input
type ResultRequest struct {
	Category   string         `json:"category"`
	Candidates []string       `json:"candidates"`
	Answers    []model.Answer `json:"answers"`
	Scores     map[string]any `json:"scores"`
	Location   string         `json:"location"`
	Language   string         `json:"language"`
}

// NextStep produces the next question or the final report for a stateless
// caller that accumulates its own answers.
func (s *QuickPickService) NextStep(ctx context.Context, req *NextRequest) (*model.Result, error) {
	mctx, err := s.buildContext(req.Category, req.Candidates, req.Answers, req.PreviousQuestions,
		req.QuestionCount, req.MinQuestions, req.MaxQuestions, req.Location, req.Language)
	if err != nil {
		return nil, err
	}

	if !s.gen.Enabled() {
		return s.fb.Response(mctx, warnMissingTokenQuestion), nil
	}

	raw, err := s.gen.Decide(ctx, model.SiteStep, mctx)
	if err != nil {
		s.logger.Warn("generator failed, using fallback response", zap.Error(err))
		return s.fb.Response(mctx, warnCallFailedQuestion), nil
	}
	return s.norm.Result(model.SiteStep, raw, mctx), nil
}

// BuildPlan builds the complete question plan for a session. The warning is
// non-empty when the deterministic fallback plan was used.
func (s *QuickPickService) BuildPlan(ctx context.Context, req *PlanRequest) (*model.Plan, string, error) {
	mctx, err := s.buildContext(req.Category, req.Candidates, nil, nil,
		nil, req.MinQuestions, req.MaxQuestions, req.Location, req.Language)
	if err != nil {
		return nil, "", err
	}

	if !s.gen.Enabled() {
		return s.fb.Plan(mctx), warnMissingTokenPlan, nil
	}

	raw, err := s.gen.Decide(ctx, model.SitePlan, mctx)
	if err != nil {
		s.logger.Warn("generator failed, using fallback plan", zap.Error(err))
		return s.fb.Plan(mctx), warnCallFailedPlan, nil
	}
	return s.norm.Plan(raw, mctx), "", nil
}

// FinalResult produces the final report for accumulated answers and scores.
// Adjusted scores decide the order; generator reasons are matched by name.
func (s *QuickPickService) FinalResult(ctx context.Context, req *ResultRequest) (*model.Result, error) {
	mctx, err := s.buildContext(req.Category, req.Candidates, req.Answers, nil,
		nil, nil, nil, req.Location, req.Language)
	if err != nil {
		return nil, err
	}
	mctx.Scores = s.norm.Scores(req.Scores, mctx.Candidates)

	if !s.gen.Enabled() {
		return s.fallbackFinal(mctx, warnMissingTokenResult), nil
	}

	raw, err := s.gen.Decide(ctx, model.SiteResult, mctx)
	if err != nil {
		s.logger.Warn("generator failed, using fallback result", zap.Error(err))
		return s.fallbackFinal(mctx, warnCallFailedResult), nil
	}
	return s.norm.Result(model.SiteResult, raw, mctx), nil
}

// fallbackFinal is the synthesized final report: accumulated scores rank the
// candidates when present, the placeholder ranking otherwise.
func (s *QuickPickService) fallbackFinal(mctx *model.Context, warning string) *model.Result {
	result := s.fb.Response(mctx, warning)
	result.Status = model.StatusFinal
	result.Question = nil
	if len(mctx.Scores) > 0 {
		result.Ranking = decision.Ranking(mctx.Candidates, mctx.Scores)
		result.Confidence = s.params.Confidence(result.Ranking)
	}
	return result
}

// buildContext sanitizes one request into a validated Context. Candidate
// count is the only check that rejects instead of repairing.
func (s *QuickPickService) buildContext(category string, candidates []string, answers []model.Answer,
	previousQuestions []string, questionCount, minQuestions, maxQuestions *int, location, language string) (*model.Context, error) {

	clean := sanitize.Candidates(candidates)
	if len(clean) < minCandidates {
		return nil, ErrCandidateCount
	}

	cleanAnswers := make([]model.Answer, 0, len(answers))
	for _, a := range answers {
		cleanAnswers = append(cleanAnswers, model.Answer{
			QuestionID:  sanitize.Text(a.QuestionID),
			Question:    sanitize.Text(a.Question),
			OptionID:    sanitize.Text(a.OptionID),
			OptionLabel: sanitize.Text(a.OptionLabel),
			Value:       sanitize.Text(a.Value),
			Dimension:   sanitize.Text(a.Dimension),
		})
	}

	previous := make([]string, 0, len(previousQuestions))
	for _, q := range previousQuestions {
		if text := sanitize.Text(q); text != "" {
			previous = append(previous, text)
		}
	}

	min := defaultMinQuestions
	if minQuestions != nil {
		min = *minQuestions
	}
	max := defaultMaxQuestions
	if maxQuestions != nil {
		max = *maxQuestions
	}
	if max < min {
		max = min
	}

	count := len(cleanAnswers)
	if questionCount != nil {
		count = *questionCount
	}

	cat := sanitize.Text(category)
	if cat == "" {
		cat = defaultCategory
	}

	return &model.Context{
		Category:          cat,
		Candidates:        clean,
		Answers:           cleanAnswers,
		PreviousQuestions: previous,
		QuestionCount:     count,
		MinQuestions:      min,
		MaxQuestions:      max,
		Location:          sanitize.Text(location),
		Language:          sanitize.Text(language),
	}, nil
}
