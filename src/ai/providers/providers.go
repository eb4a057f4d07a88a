package providers

import (
	_ "github.com/pulseworks/pulsebot/src/ai/claude"
	_ "github.com/pulseworks/pulsebot/src/ai/deepseek"
	_ "github.com/pulseworks/pulsebot/src/ai/gemini"
	_ "github.com/pulseworks/pulsebot/src/ai/grok"
	_ "github.com/pulseworks/pulsebot/src/ai/openai"
)
