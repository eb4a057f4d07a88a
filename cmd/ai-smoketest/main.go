// Command ai-smoketest exercises the configured AI providers end to end:
// one completion per provider, checked against the engine content contract.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	aicore "github.com/pulseworks/pulsebot/src/ai/core"
	_ "github.com/pulseworks/pulsebot/src/ai/providers"
	"github.com/pulseworks/pulsebot/src/config"
	"github.com/pulseworks/pulsebot/src/data"
	"github.com/pulseworks/pulsebot/src/engine"
)

var (
	providersFlag = flag.String("providers", "", "Comma-separated provider list or 'all' (default: configured order)")
	modelFlag     = flag.String("model", "", "Override model name")
	promptFlag    = flag.String("prompt", defaultPrompt, "User prompt")
	timeoutFlag   = flag.Duration("timeout", 45*time.Second, "Per-provider timeout")
	tempFlag      = flag.Float64("temp", 0.8, "Completion temperature")
)

const defaultSystem = "You write short, plain-text social media replies. No emoji, no hashtags, 1-4 sentences, under 250 characters."

const defaultPrompt = "Write a reply to this post:\n\nFinally migrated our build to Go 1.24 and shaved 40% off CI time."

var allProviders = []string{"openai", "claude", "grok", "deepseek", "gemini"}

func main() {
	log.SetFlags(0)
	flag.Parse()

	config.LoadEnvFile()
	aiCfg := config.LoadAIConfig()
	providers := resolveProviders(*providersFlag, aiCfg.ProviderOrder)
	if len(providers) == 0 {
		log.Fatal("no providers specified")
	}
	model := *modelFlag
	if model == "" {
		model = aiCfg.Model
	}

	failures := 0
	for _, provider := range providers {
		if err := runProvider(provider, model, aiCfg); err != nil {
			failures++
			log.Printf("[%s] ERROR: %v", provider, err)
		}
	}
	if failures > 0 {
		log.Fatalf("%d of %d providers failed", failures, len(providers))
	}
}

func runProvider(provider, model string, aiCfg config.AIConfig) error {
	client, err := aicore.NewClient(aicore.FactoryConfig{
		Provider:            provider,
		Model:               model,
		Temperature:         *tempFlag,
		MaxCompletionTokens: aiCfg.MaxCompletionTokens,
		OpenAIKey:           aiCfg.OpenAIKey,
		ClaudeKey:           aiCfg.ClaudeKey,
		GeminiKey:           aiCfg.GeminiKey,
		DeepSeekKey:         aiCfg.DeepSeekKey,
		GrokKey:             aiCfg.GrokKey,
	})
	if err != nil {
		return fmt.Errorf("client init: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeoutFlag)
	defer cancel()

	start := time.Now()
	completion, err := client.Complete(ctx, defaultSystem, *promptFlag, aicore.Options{
		Model:               model,
		Temperature:         *tempFlag,
		MaxCompletionTokens: aiCfg.MaxCompletionTokens,
	})
	if err != nil {
		return err
	}

	contract := "ok"
	if verr := engine.ValidateContent(strings.TrimSpace(completion.Text), data.InteractionReply); verr != nil {
		contract = "VIOLATION: " + verr.Error()
	}

	fmt.Printf("[%s] %s tokens=%d contract=%s\n%s\n\n",
		provider, time.Since(start).Round(time.Millisecond), completion.TokensUsed, contract, completion.Text)
	return nil
}

func resolveProviders(raw string, configured []string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return configured
	}
	if strings.EqualFold(raw, "all") {
		return allProviders
	}
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if trimmed := strings.ToLower(strings.TrimSpace(p)); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
