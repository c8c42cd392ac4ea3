package generator

import (
	"encoding/json"
	"strings"

	"quickpick/internal/model"
)

const promptPreamble = `You are QuickPick, a decision engine for consumer product shortlists.`

var systemPrompts = map[model.CallSite]string{
	model.SiteStep: strings.Join([]string{
		promptPreamble,
		"Goal: ask one high impact question at a time, update ranking, and stop once confident.",
		"Constraints:",
		"- Ask short, scenario-based questions. Avoid jargon and precise numbers.",
		"- Provide 3 to 5 options. Each option must be quick to choose.",
		"- Every question must include an info_gain_reason that explains why it changes ranking.",
		"- Provide ranking for all candidates every time.",
		"- Provide tradeoff_map with 3 to 6 dimensions.",
		"- Provide 2 to 4 counterfactual toggles with alternative ranking.",
		"- If none fit, return a third_option suggestion with why and criteria.",
		"- Keep all text short: <= 18 words per sentence; avoid extra clauses.",
		"Output JSON only. No markdown.",
	}, "\n"),
	model.SitePlan: strings.Join([]string{
		promptPreamble,
		"Goal: build the complete question plan for this shortlist in one pass.",
		"Constraints:",
		"- Produce between minQuestions and maxQuestions scenario questions.",
		"- Ask short, scenario-based questions. Avoid jargon and precise numbers.",
		"- Provide 3 to 5 options per question. Each option must be quick to choose.",
		"- Every question must include an info_gain_reason that explains why it changes ranking.",
		"- Every option must include impact_scores: an integer from -12 to 12 for every candidate.",
		"- Provide base_scores for all candidates, centered near 50.",
		"- Keep all text short: <= 18 words per sentence; avoid extra clauses.",
		"Output JSON only. No markdown.",
	}, "\n"),
	model.SiteResult: strings.Join([]string{
		promptPreamble,
		"Goal: explain the final ranking implied by the accumulated scores and answers.",
		"Constraints:",
		"- Provide ranking for all candidates with a short reason tied to the answers.",
		"- Provide 2 to 4 key_reasons.",
		"- Provide tradeoff_map with 3 to 6 dimensions.",
		"- Provide 2 to 4 counterfactual toggles with alternative ranking.",
		"- If none fit, return a third_option suggestion with why and criteria.",
		"- Keep all text short: <= 18 words per sentence; avoid extra clauses.",
		"Output JSON only. No markdown.",
	}, "\n"),
}

var rankingSchema = []map[string]string{{
	"name":   "candidate name",
	"score":  "0-100",
	"reason": "short reason tied to answers",
}}

var questionSchema = map[string]any{
	"id":               "string",
	"text":             "string",
	"dimension":        "string",
	"info_gain_reason": "string",
	"options": []map[string]any{{
		"id":          "string",
		"label":       "string",
		"value":       "string",
		"impact_hint": "string",
	}},
}

var reportSchema = map[string]any{
	"ranking":     rankingSchema,
	"key_reasons": []string{"string"},
	"tradeoff_map": []map[string]string{{
		"dimension": "string",
		"winner":    "candidate name",
		"why":       "string",
	}},
	"counterfactuals": []map[string]any{{
		"toggle":      "string",
		"change":      "string",
		"new_top":     "candidate name",
		"new_ranking": []map[string]string{{"name": "candidate name", "score": "0-100"}},
	}},
	"actions": []string{"string"},
	"third_option": map[string]string{
		"title":    "string",
		"why":      "string",
		"criteria": "string",
	},
}

// outputSchema describes the target shape inside the user prompt, per site
func outputSchema(site model.CallSite) map[string]any {
	switch site {
	case model.SitePlan:
		planQuestion := map[string]any{
			"id":               "string",
			"text":             "string",
			"dimension":        "string",
			"info_gain_reason": "string",
			"options": []map[string]any{{
				"id":            "string",
				"label":         "string",
				"value":         "string",
				"impact_hint":   "string",
				"impact_scores": map[string]string{"candidate name": "-12 to 12"},
			}},
		}
		return map[string]any{
			"base_scores": []map[string]string{{"name": "candidate name", "score": "0-100"}},
			"questions":   []map[string]any{planQuestion},
		}
	case model.SiteResult:
		schema := map[string]any{"confidence": "number between 0 and 1"}
		for k, v := range reportSchema {
			schema[k] = v
		}
		return schema
	default:
		schema := map[string]any{
			"should_stop": "boolean",
			"confidence":  "number between 0 and 1",
			"question":    questionSchema,
		}
		for k, v := range reportSchema {
			schema[k] = v
		}
		return schema
	}
}

// buildUserPrompt serializes the session context plus the target schema
func buildUserPrompt(site model.CallSite, ctx *model.Context) (string, error) {
	payload := map[string]any{
		"category":          ctx.Category,
		"candidates":        ctx.Candidates,
		"answers":           ctx.Answers,
		"previousQuestions": ctx.PreviousQuestions,
		"questionCount":     ctx.QuestionCount,
		"minQuestions":      ctx.MinQuestions,
		"maxQuestions":      ctx.MaxQuestions,
		"output_schema":     outputSchema(site),
	}
	if len(ctx.Scores) > 0 {
		payload["scores"] = ctx.Scores
	}
	if ctx.Location != "" {
		payload["location"] = ctx.Location
	}
	if ctx.Language != "" {
		payload["language"] = ctx.Language
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
