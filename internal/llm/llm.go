// Package llm generates reply and post drafts. Generator is the
// capability the rest of the bot consumes; a nil or failing generation is
// a normal outcome handled with fallback templates, never an error that
// aborts a run.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"growthbot/internal/config"
)

// Generator produces text for a prompt. An empty result with nil error
// means the provider declined; callers must fall back.
type Generator interface {
	Generate(ctx context.Context, system, user string, maxTokens int) (string, error)
}

// HTTPGenerator calls an OpenAI-compatible chat completions endpoint.
type HTTPGenerator struct {
	cfg config.LLMConfig
	url string
}

func NewHTTPGenerator(cfg config.LLMConfig) *HTTPGenerator {
	return &HTTPGenerator{cfg: cfg, url: "https://api.openai.com/v1/chat/completions"}
}

// Enabled reports whether a provider is configured at all.
func (g *HTTPGenerator) Enabled() bool {
	return strings.EqualFold(g.cfg.Provider, "openai") && g.cfg.APIKey != ""
}

func (g *HTTPGenerator) Generate(ctx context.Context, system, user string, maxTokens int) (string, error) {
	if !g.Enabled() {
		return "", nil
	}
	payload, err := json.Marshal(map[string]any{
		"model": g.cfg.Model,
		"messages": []map[string]string{
			{"role": "system", "content": system},
			{"role": "user", "content": user},
		},
		"max_tokens":  maxTokens,
		"temperature": 0.9,
	})
	if err != nil {
		return "", err
	}
	req, err := httpNewRequest(ctx, g.url, http.MethodPost, string(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+g.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	resp, err := httpDo(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("llm status %d", resp.StatusCode)
	}
	return parseChatResponse(resp)
}

// --- light http helpers (decoupled for testability) ---

var httpNewRequest = defaultNewRequest
var httpDo = defaultDo

func defaultNewRequest(ctx context.Context, url, method, body string) (*http.Request, error) {
	return http.NewRequestWithContext(ctx, method, url, strings.NewReader(body))
}

func defaultDo(req *http.Request) (*http.Response, error) {
	client := &http.Client{Timeout: 30 * time.Second}
	return client.Do(req)
}

func parseChatResponse(resp *http.Response) (string, error) {
	var raw struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return "", err
	}
	if len(raw.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(raw.Choices[0].Message.Content), nil
}
