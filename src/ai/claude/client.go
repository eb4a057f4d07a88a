package claude

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

func init() {
	core.RegisterProvider("claude", newClient, "anthropic")
}

type client struct {
	apiKey     string
	model      string
	httpClient *http.Client
}

func newClient(cfg core.FactoryConfig) (core.Client, error) {
	if cfg.ClaudeKey == "" {
		return nil, fmt.Errorf("claude: API key not configured")
	}
	return &client{
		apiKey:     cfg.ClaudeKey,
		model:      core.ResolveModelName("claude", cfg.Model),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

func (c *client) Complete(ctx context.Context, systemPrompt, userPrompt string, opts core.Options) (*core.Completion, error) {
	model := opts.Model
	if model == "" {
		model = c.model
	}
	maxTokens := opts.MaxCompletionTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	reqBody := map[string]interface{}{
		"model":      model,
		"max_tokens": maxTokens,
		"system":     systemPrompt,
		"messages": []map[string]string{
			{"role": "user", "content": userPrompt},
		},
		"temperature": opts.Temperature,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "https://api.anthropic.com/v1/messages", bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

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
		return nil, fmt.Errorf("claude API error: %s", string(body))
	}

	var result struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
		Usage struct {
			InputTokens  int `json:"input_tokens"`
			OutputTokens int `json:"output_tokens"`
		} `json:"usage"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, err
	}
	if len(result.Content) == 0 {
		return nil, fmt.Errorf("no response from Claude")
	}

	return &core.Completion{
		Text:       result.Content[0].Text,
		TokensUsed: result.Usage.InputTokens + result.Usage.OutputTokens,
	}, nil
}
