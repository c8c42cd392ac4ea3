package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"quickpick/internal/cache"
	"quickpick/internal/decision"
	"quickpick/internal/fallback"
	"quickpick/internal/model"
	"quickpick/internal/sanitize"
)

var (
	// ErrSessionNotFound means the id is unknown or the session expired
	ErrSessionNotFound = errors.New("session not found")

	// ErrUnknownOption means the answered option is not part of the
	// session's current question.
	ErrUnknownOption = errors.New("option does not belong to the current question")
)

// SessionService runs server-side sessions over a precomputed plan: created
// on start, mutated only by answers, disposed on reset. Each session's state
// is confined to its store entry; nothing is shared across sessions.
type SessionService struct {
	quickpick *QuickPickService
	store     cache.SessionStore
	fb        *fallback.Synthesizer
	params    decision.Params
	logger    *zap.Logger
}

// NewSessionService creates the session service
func NewSessionService(quickpick *QuickPickService, store cache.SessionStore, fb *fallback.Synthesizer, params decision.Params, logger *zap.Logger) *SessionService {
	return &SessionService{
		quickpick: quickpick,
		store:     store,
		fb:        fb,
		params:    params,
		logger:    logger.Named("session"),
	}
}

// Start creates a session: validates candidates, builds the plan once, and
// seeds every candidate's score from the plan's base scores.
func (s *SessionService) Start(ctx context.Context, req *PlanRequest) (*model.Session, *model.Result, error) {
	plan, warning, err := s.quickpick.BuildPlan(ctx, req)
	if err != nil {
		return nil, nil, err
	}

	scores := make(map[string]int, len(plan.BaseScores))
	candidates := make([]string, 0, len(plan.BaseScores))
	for _, base := range plan.BaseScores {
		scores[base.Name] = base.Score
		candidates = append(candidates, base.Name)
	}

	session := &model.Session{
		ID:           uuid.NewString(),
		Category:     sanitize.Text(req.Category),
		Candidates:   candidates,
		Language:     sanitize.Text(req.Language),
		Location:     sanitize.Text(req.Location),
		Scores:       scores,
		Answers:      []model.Answer{},
		Plan:         plan,
		MinQuestions: defaultIfNil(req.MinQuestions, defaultMinQuestions),
		MaxQuestions: defaultIfNil(req.MaxQuestions, defaultMaxQuestions),
		Status:       model.SessionActive,
		Warning:      warning,
		CreatedAt:    time.Now().UTC(),
	}
	if session.MaxQuestions < session.MinQuestions {
		session.MaxQuestions = session.MinQuestions
	}

	if err := s.store.Save(ctx, session); err != nil {
		return nil, nil, fmt.Errorf("saving session: %w", err)
	}
	s.logger.Info("session started",
		zap.String("id", session.ID),
		zap.Int("candidates", len(candidates)),
		zap.Int("planQuestions", len(plan.Questions)))

	return session, s.buildResult(session), nil
}

// Answer records one answered option, applies its impact scores, and
// re-evaluates the stop decision. Answering a final session just returns the
// final result again.
func (s *SessionService) Answer(ctx context.Context, id, optionID string) (*model.Result, error) {
	session, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.Status == model.SessionFinal {
		return s.buildResult(session), nil
	}

	question := session.CurrentQuestion()
	if question == nil {
		// Plan exhausted without a recorded stop; finalize now
		session.Status = model.SessionFinal
		if err := s.store.Save(ctx, session); err != nil {
			return nil, fmt.Errorf("saving session: %w", err)
		}
		return s.buildResult(session), nil
	}

	option := findOption(question, sanitize.Text(optionID))
	if option == nil {
		return nil, ErrUnknownOption
	}

	session.Answers = append(session.Answers, model.Answer{
		QuestionID:  question.ID,
		Question:    question.Text,
		OptionID:    option.ID,
		OptionLabel: option.Label,
		Value:       option.Value,
		Dimension:   question.Dimension,
	})
	decision.ApplyImpacts(session.Scores, option.ImpactScores)
	session.QuestionCount++

	ranking := decision.Ranking(session.Candidates, session.Scores)
	confidence := s.params.Confidence(ranking)
	stop := s.params.ShouldStop(nil, session.QuestionCount, session.MinQuestions, session.MaxQuestions, confidence)
	if stop || session.QuestionCount >= len(session.Plan.Questions) {
		session.Status = model.SessionFinal
	}

	if err := s.store.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("saving session: %w", err)
	}
	return s.buildResult(session), nil
}

// Result returns the session's current envelope without mutating anything
func (s *SessionService) Result(ctx context.Context, id string) (*model.Result, error) {
	session, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.buildResult(session), nil
}

// Delete disposes a session. Deleting an unknown id is not an error.
func (s *SessionService) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}

func (s *SessionService) get(ctx context.Context, id string) (*model.Session, error) {
	session, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// buildResult derives the envelope from session state alone. Trade-offs and
// counterfactuals come from the deterministic synthesizer; key reasons recap
// the answered dimensions once real answers exist.
func (s *SessionService) buildResult(session *model.Session) *model.Result {
	ranking := decision.Ranking(session.Candidates, session.Scores)

	result := &model.Result{
		Status:          model.StatusQuestion,
		Confidence:      s.params.Confidence(ranking),
		Ranking:         ranking,
		KeyReasons:      s.keyReasons(session),
		TradeoffMap:     s.fb.Tradeoffs(session.Candidates, session.Language),
		Counterfactuals: s.fb.Counterfactuals(session.Candidates, session.Language),
		Actions:         s.fb.Actions(session.Language),
		Warning:         session.Warning,
	}
	if session.Status == model.SessionFinal {
		result.Status = model.StatusFinal
	} else {
		result.Question = session.CurrentQuestion()
	}
	return result
}

func (s *SessionService) keyReasons(session *model.Session) []string {
	if len(session.Answers) == 0 {
		return s.fb.KeyReasons(session.Language)
	}
	reasons := make([]string, 0, maxSessionReasons)
	for _, answer := range session.Answers {
		if answer.Dimension == "" || answer.OptionLabel == "" {
			continue
		}
		reasons = append(reasons, fmt.Sprintf("%s: %s", answer.Dimension, answer.OptionLabel))
		if len(reasons) == maxSessionReasons {
			break
		}
	}
	if len(reasons) == 0 {
		return s.fb.KeyReasons(session.Language)
	}
	return reasons
}

const maxSessionReasons = 4

func findOption(question *model.Question, optionID string) *model.Option {
	for i := range question.Options {
		if question.Options[i].ID == optionID {
			return &question.Options[i]
		}
	}
	return nil
}

func defaultIfNil(v *int, fallback int) int {
	if v != nil {
		return *v
	}
	return fallback
}
