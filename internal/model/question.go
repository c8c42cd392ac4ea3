package model

// Option is one selectable answer to a Question. ImpactScores maps every
// candidate name to the score delta applied when this option is chosen;
// it is only populated in plan mode.
type Option struct {
	ID           string         `json:"id"`
	Label        string         `json:"label"`
	Value        string         `json:"value"`
	ImpactHint   string         `json:"impact_hint"`
	ImpactScores map[string]int `json:"impact_scores,omitempty"`
}

// Question is a single scenario question with 2-5 quick options
type Question struct {
	ID             string   `json:"id"`
	Text           string   `json:"text"`
	Dimension      string   `json:"dimension"`
	InfoGainReason string   `json:"info_gain_reason"`
	Options        []Option `json:"options"`
}
