package model

import "time"

type SessionStatus string

const (
	SessionActive SessionStatus = "active"
	SessionFinal  SessionStatus = "final"
)

// Session is one complete interaction from candidate entry to final
// recommendation. Candidates and bounds are fixed at creation; scores and
// answers accumulate until the stop decision.
type Session struct {
	ID            string         `json:"id"`
	Category      string         `json:"category"`
	Candidates    []string       `json:"candidates"`
	Language      string         `json:"language,omitempty"`
	Location      string         `json:"location,omitempty"`
	Scores        map[string]int `json:"scores"`
	Answers       []Answer       `json:"answers"`
	Plan          *Plan          `json:"plan"`
	QuestionCount int            `json:"questionCount"`
	MinQuestions  int            `json:"minQuestions"`
	MaxQuestions  int            `json:"maxQuestions"`
	Status        SessionStatus  `json:"status"`
	Warning       string         `json:"warning,omitempty"`
	CreatedAt     time.Time      `json:"createdAt"`
}

// CurrentQuestion returns the next unanswered plan question, or nil when the
// plan is exhausted or the session is final.
func (s *Session) CurrentQuestion() *Question {
	if s.Status == SessionFinal || s.Plan == nil {
		return nil
	}
	if s.QuestionCount >= len(s.Plan.Questions) {
		return nil
	}
	q := s.Plan.Questions[s.QuestionCount]
	return &q
}

// Context builds the normalizer context for the session's current state
func (s *Session) Context() *Context {
	previous := make([]string, 0, len(s.Answers))
	for _, a := range s.Answers {
		previous = append(previous, a.Question)
	}
	return &Context{
		Category:          s.Category,
		Candidates:        s.Candidates,
		Answers:           s.Answers,
		PreviousQuestions: previous,
		QuestionCount:     s.QuestionCount,
		MinQuestions:      s.MinQuestions,
		MaxQuestions:      s.MaxQuestions,
		Location:          s.Location,
		Language:          s.Language,
	}
}
