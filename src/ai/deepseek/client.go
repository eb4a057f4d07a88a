package deepseek

import (
	"fmt"

	"github.com/pulseworks/pulsebot/src/ai/compat"
	"github.com/pulseworks/pulsebot/src/ai/core"
)

func init() {
	core.RegisterProvider("deepseek", newClient)
}

func newClient(cfg core.FactoryConfig) (core.Client, error) {
	if cfg.DeepSeekKey == "" {
		return nil, fmt.Errorf("deepseek: API key not configured")
	}
	return compat.New("deepseek", "https://api.deepseek.com/chat/completions", cfg.DeepSeekKey, core.ResolveModelName("deepseek", cfg.Model)), nil
}
