package grok

import (
	"fmt"

	"github.com/pulseworks/pulsebot/src/ai/compat"
	"github.com/pulseworks/pulsebot/src/ai/core"
)

func init() {
	core.RegisterProvider("grok", newClient, "xai")
}

func newClient(cfg core.FactoryConfig) (core.Client, error) {
	if cfg.GrokKey == "" {
		return nil, fmt.Errorf("grok: API key not configured")
	}
	return compat.New("grok", "https://api.x.ai/v1/chat/completions", cfg.GrokKey, core.ResolveModelName("grok", cfg.Model)), nil
}
