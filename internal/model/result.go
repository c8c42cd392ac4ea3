package model

// ResultStatus tells the client whether to render a question or the final report
type ResultStatus string

const (
	StatusQuestion ResultStatus = "question"
	StatusFinal    ResultStatus = "final"
)

// RankingEntry is one candidate's position in a ranking, derived from scores
type RankingEntry struct {
	Name   string `json:"name"`
	Score  int    `json:"score"`
	Reason string `json:"reason"`
}

// Tradeoff names the candidate that wins one decision dimension
type Tradeoff struct {
	Dimension string `json:"dimension"`
	Winner    string `json:"winner"`
	Why       string `json:"why"`
}

// Counterfactual shows how the ranking changes if one assumption flips
type Counterfactual struct {
	Toggle     string         `json:"toggle"`
	Change     string         `json:"change"`
	NewTop     string         `json:"new_top"`
	NewRanking []RankingEntry `json:"new_ranking"`
}

// ThirdOption suggests looking outside the shortlist. Present only when
// it has a non-empty title.
type ThirdOption struct {
	Title    string `json:"title"`
	Why      string `json:"why"`
	Criteria string `json:"criteria"`
}

// Result is the single response envelope returned at every step.
// Ranking always covers the session's candidate set exactly once.
type Result struct {
	Status          ResultStatus     `json:"status"`
	Confidence      float64          `json:"confidence"`
	Question        *Question        `json:"question"`
	Ranking         []RankingEntry   `json:"ranking"`
	KeyReasons      []string         `json:"key_reasons"`
	TradeoffMap     []Tradeoff       `json:"tradeoff_map"`
	Counterfactuals []Counterfactual `json:"counterfactuals"`
	Actions         []string         `json:"actions"`
	ThirdOption     *ThirdOption     `json:"third_option"`
	Warning         string           `json:"warning,omitempty"`
}
