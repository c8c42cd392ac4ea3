package model

// CandidateScore pairs a candidate with its starting score
type CandidateScore struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// Plan is a complete precomputed question sequence, built once per session
// and consumed in order. Its length stays within the session's question bounds.
type Plan struct {
	BaseScores []CandidateScore `json:"base_scores"`
	Questions  []Question       `json:"questions"`
}
