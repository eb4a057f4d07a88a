package gemini

import (
	"fmt"

	"github.com/pulseworks/pulsebot/src/ai/compat"
	"github.com/pulseworks/pulsebot/src/ai/core"
)

func init() {
	core.RegisterProvider("gemini", newClient, "google")
}

func newClient(cfg core.FactoryConfig) (core.Client, error) {
	if cfg.GeminiKey == "" {
		return nil, fmt.Errorf("gemini: API key not configured")
	}
	// Gemini exposes an OpenAI-compatible surface alongside its native API.
	return compat.New("gemini", "https://generativelanguage.googleapis.com/v1beta/openai/chat/completions", cfg.GeminiKey, core.ResolveModelName("gemini", cfg.Model)), nil
}
