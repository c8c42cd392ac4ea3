package model

// Answer is an immutable record of one answered question, sanitized on entry
type Answer struct {
	QuestionID  string `json:"questionId"`
	Question    string `json:"question"`
	OptionID    string `json:"optionId"`
	OptionLabel string `json:"optionLabel"`
	Value       string `json:"value"`
	Dimension   string `json:"dimension"`
}
