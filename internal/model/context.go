package model

// Context carries the validated session facts the normalizer and generator
// work against. Candidates are already sanitized and deduplicated; bounds
// and counters are trusted once a Context exists.
type Context struct {
	Category          string         `json:"category"`
	Candidates        []string       `json:"candidates"`
	Answers           []Answer       `json:"answers"`
	PreviousQuestions []string       `json:"previousQuestions"`
	QuestionCount     int            `json:"questionCount"`
	MinQuestions      int            `json:"minQuestions"`
	MaxQuestions      int            `json:"maxQuestions"`
	Scores            map[string]int `json:"scores,omitempty"`
	Location          string         `json:"location,omitempty"`
	Language          string         `json:"language,omitempty"`
}
