package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"quickpick/internal/config"
	"quickpick/internal/model"
)

func testContext() *model.Context {
	return &model.Context{
		Category:      "headphones",
		Candidates:    []string{"Sony", "Bose", "Apple"},
		QuestionCount: 0,
		MinQuestions:  3,
		MaxQuestions:  10,
	}
}

func testConfig(baseURL string) *config.AIConfig {
	return &config.AIConfig{
		APIKey:        "test-token",
		BaseURL:       baseURL,
		Model:         "primary-model",
		FallbackModel: "fallback-model",
		TimeoutMS:     2000,
	}
}

func chatBody(content string) string {
	payload := map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	}
	data, _ := json.Marshal(payload)
	return string(data)
}

func TestDecideDisabled(t *testing.T) {
	client := NewClient(&config.AIConfig{}, zap.NewNop())
	assert.False(t, client.Enabled())

	_, err := client.Decide(context.Background(), model.SiteStep, testContext())
	assert.ErrorIs(t, err, ErrDisabled)
}

func TestDecideSuccess(t *testing.T) {
	var gotAuth string
	var gotReq chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		fmt.Fprint(w, chatBody(`{"status":"question","confidence":0.7}`))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), zap.NewNop())
	parsed, err := client.Decide(context.Background(), model.SiteStep, testContext())
	require.NoError(t, err)

	assert.Equal(t, "question", parsed["status"])
	assert.Equal(t, "Bearer test-token", gotAuth)
	assert.Equal(t, "primary-model", gotReq.Model)
	assert.Equal(t, "json_object", gotReq.ResponseFormat["type"])
	require.Len(t, gotReq.Messages, 2)
	assert.Equal(t, "system", gotReq.Messages[0].Role)
}

func TestDecideRetriesOnInvalidJSON(t *testing.T) {
	var models []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		models = append(models, req.Model)
		if len(models) == 1 {
			fmt.Fprint(w, chatBody("I am not JSON at all"))
			return
		}
		fmt.Fprint(w, chatBody(`{"status":"final"}`))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), zap.NewNop())
	parsed, err := client.Decide(context.Background(), model.SiteResult, testContext())
	require.NoError(t, err)

	assert.Equal(t, "final", parsed["status"])
	assert.Equal(t, []string{"primary-model", "fallback-model"}, models)
}

func TestDecideNoRetryOnHTTPError(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "upstream unavailable", http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), zap.NewNop())
	_, err := client.Decide(context.Background(), model.SiteStep, testContext())

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidJSON)
	assert.Equal(t, 1, calls, "HTTP failures do not warrant the fallback model")
}

func TestDecideInvalidJSONFromBothModels(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprint(w, chatBody("still not JSON"))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), zap.NewNop())
	_, err := client.Decide(context.Background(), model.SiteStep, testContext())

	assert.ErrorIs(t, err, ErrInvalidJSON)
	assert.Equal(t, 2, calls)
}

func TestAttemptsCollapseWhenModelsMatch(t *testing.T) {
	cfg := testConfig("http://unused")
	cfg.FallbackModel = cfg.Model
	client := NewClient(cfg, zap.NewNop())
	assert.Equal(t, []string{"primary-model"}, client.attempts())

	cfg.FallbackModel = ""
	assert.Equal(t, []string{"primary-model"}, client.attempts())
}

func TestDecideStripsFencedContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, chatBody("```json\n{\"status\":\"question\"}\n```"))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), zap.NewNop())
	parsed, err := client.Decide(context.Background(), model.SiteStep, testContext())
	require.NoError(t, err)
	assert.Equal(t, "question", parsed["status"])
}
