// Package compat implements the OpenAI-compatible chat completions wire
// shape that several providers (grok, deepseek, gemini) expose.
package compat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pulseworks/pulsebot/src/ai/core"
)

type Client struct {
	name       string
	endpoint   string
	apiKey     string
	model      string
	httpClient *http.Client
}

// New builds an OpenAI-compatible client for the given provider endpoint.
func New(name, endpoint, apiKey, model string) *Client {
	return &Client{
		name:       name,
		endpoint:   endpoint,
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string, opts core.Options) (*core.Completion, error) {
	model := opts.Model
	if model == "" {
		model = c.model
	}
	maxTokens := opts.MaxCompletionTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	reqBody := map[string]interface{}{
		"model": model,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": userPrompt},
		},
		"temperature": opts.Temperature,
		"max_tokens":  maxTokens,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s API error: %s", c.name, string(body))
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Usage struct {
			TotalTokens int `json:"total_tokens"`
		} `json:"usage"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, err
	}
	if len(result.Choices) == 0 {
		return nil, fmt.Errorf("no response from %s", c.name)
	}

	return &core.Completion{
		Text:       result.Choices[0].Message.Content,
		TokensUsed: result.Usage.TotalTokens,
	}, nil
}
