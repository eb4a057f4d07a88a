package config

import "os"

// AIConfig carries provider keys and the failover order.
type AIConfig struct {
	// ProviderOrder lists providers preferred-first; generation fails over
	// down the list.
	ProviderOrder []string

	Model               string
	Temperature         float64
	MaxCompletionTokens int

	OpenAIKey   string
	ClaudeKey   string
	GeminiKey   string
	DeepSeekKey string
	GrokKey     string
}

// LoadAIConfig reads AI settings; keys come from the environment only.
func LoadAIConfig() AIConfig {
	order := parseCSV(GetSetting("ai_provider_order", "AI_PROVIDER_ORDER", ""))
	if len(order) == 0 {
		order = []string{"openai", "claude", "grok"}
	}

	return AIConfig{
		ProviderOrder:       order,
		Model:               GetSetting("ai_model", "AI_MODEL", ""),
		Temperature:         getFloatSetting("ai_temperature", "AI_TEMPERATURE", 0.8),
		MaxCompletionTokens: getIntSetting("ai_max_tokens", "AI_MAX_TOKENS", 512),
		OpenAIKey:           os.Getenv("OPENAI_API_KEY"),
		ClaudeKey:           os.Getenv("CLAUDE_API_KEY"),
		GeminiKey:           os.Getenv("GEMINI_API_KEY"),
		DeepSeekKey:         os.Getenv("DEEPSEEK_API_KEY"),
		GrokKey:             os.Getenv("GROK_API_KEY"),
	}
}
