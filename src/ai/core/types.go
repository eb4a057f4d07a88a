package core

import "context"

// Options controls model behavior; fields are optional per provider.
type Options struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int
}

// Completion is a single model response.
type Completion struct {
	Text       string
	TokensUsed int
}

// Client is a provider-agnostic interface for the completions we need.
type Client interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string, opts Options) (*Completion, error)
}
