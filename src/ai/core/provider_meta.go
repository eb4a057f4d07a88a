package core

import (
	"strings"
)

var providerDefaultModels = map[string]string{
	"openai":   "gpt-4o-mini",
	"claude":   "claude-haiku-4-5",
	"grok":     "grok-4-fast-reasoning",
	"deepseek": "deepseek-chat",
	"gemini":   "gemini-2.5-flash",
}

// DefaultModelForProvider returns the baked-in default model for a provider key.
func DefaultModelForProvider(provider string) string {
	key := strings.ToLower(strings.TrimSpace(provider))
	if val, ok := providerDefaultModels[key]; ok {
		return val
	}
	return ""
}

// ResolveModelName picks the configured model if provided, otherwise the provider's default.
func ResolveModelName(provider, configuredModel string) string {
	model := strings.TrimSpace(configuredModel)
	if model != "" {
		return model
	}
	if def := DefaultModelForProvider(provider); def != "" {
		return def
	}
	return "unknown"
}
