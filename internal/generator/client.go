// Package generator is the boundary to the external text generator. The rest
// of the system treats it as an opaque function from Context to raw JSON or
// an error; all output passes through the salvage parser before anyone
// touches it.
package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"quickpick/internal/config"
	"quickpick/internal/model"
)

var (
	// ErrDisabled means no generator credential is configured
	ErrDisabled = errors.New("generator token is not configured")

	// ErrInvalidJSON is the only failure class that warrants a retry with
	// the fallback model.
	ErrInvalidJSON = errors.New("generator response was not valid JSON")
)

// Client calls an OpenAI-compatible chat completions endpoint
type Client struct {
	cfg        *config.AIConfig
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a generator client
func NewClient(cfg *config.AIConfig, logger *zap.Logger) *Client {
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutMS) * time.Millisecond,
		},
		logger: logger.Named("generator"),
	}
}

// Enabled reports whether a credential is configured
func (c *Client) Enabled() bool {
	return c.cfg.IsEnabled()
}

// Decide sends the context to the generator and returns the parsed JSON
// object. The primary model is tried first; on an invalid-JSON failure only,
// the fallback model is tried exactly once. Any other failure aborts.
func (c *Client) Decide(ctx context.Context, site model.CallSite, mctx *model.Context) (map[string]any, error) {
	if !c.cfg.IsEnabled() {
		return nil, ErrDisabled
	}

	var lastErr error
	attempts := c.attempts()
	for i, modelName := range attempts {
		parsed, err := c.call(ctx, modelName, site, mctx)
		if err == nil {
			return parsed, nil
		}
		lastErr = err
		if !errors.Is(err, ErrInvalidJSON) || i == len(attempts)-1 {
			break
		}
		c.logger.Warn("invalid JSON from model, retrying with fallback model",
			zap.String("model", modelName),
			zap.String("fallbackModel", attempts[i+1]))
	}
	return nil, lastErr
}

// attempts is the ordered model list: primary, then the fallback model when
// it differs.
func (c *Client) attempts() []string {
	if c.cfg.FallbackModel != "" && c.cfg.FallbackModel != c.cfg.Model {
		return []string{c.cfg.Model, c.cfg.FallbackModel}
	}
	return []string{c.cfg.Model}
}

type chatRequest struct {
	Model          string            `json:"model"`
	Temperature    float64           `json:"temperature"`
	MaxTokens      int               `json:"max_tokens"`
	ResponseFormat map[string]string `json:"response_format"`
	Messages       []chatMessage     `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *Client) call(ctx context.Context, modelName string, site model.CallSite, mctx *model.Context) (map[string]any, error) {
	callCtx, cancel := context.WithTimeout(ctx, time.Duration(c.cfg.TimeoutMS)*time.Millisecond)
	defer cancel()

	userPrompt, err := buildUserPrompt(site, mctx)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(chatRequest{
		Model:          modelName,
		Temperature:    0.4,
		MaxTokens:      1400,
		ResponseFormat: map[string]string{"type": "json_object"},
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompts[site]},
			{Role: "user", Content: userPrompt},
		},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, c.cfg.Endpoint(), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("generator request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("generator request failed: %d %s", resp.StatusCode, string(detail))
	}

	var chat chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chat); err != nil {
		return nil, fmt.Errorf("decoding generator response: %w", err)
	}

	content := ""
	if len(chat.Choices) > 0 {
		content = chat.Choices[0].Message.Content
	}

	if c.cfg.Debug {
		c.logger.Info("raw generator content",
			zap.String("model", modelName),
			zap.String("site", string(site)),
			zap.String("content", truncate(content, 500)))
	}

	parsed := Parse(StripFences(content))
	if parsed == nil {
		return nil, fmt.Errorf("model %s: %w", modelName, ErrInvalidJSON)
	}
	return parsed, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
