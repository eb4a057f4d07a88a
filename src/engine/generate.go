package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	aicore "github.com/pulseworks/pulsebot/src/ai/core"
	"github.com/pulseworks/pulsebot/src/config"
	"github.com/pulseworks/pulsebot/src/data"
	"github.com/pulseworks/pulsebot/src/logging"
	"github.com/pulseworks/pulsebot/src/platform"
)

// ErrAllProvidersFailed signals every configured provider failed or produced
// invalid content. Callers degrade to the fallback bank or skip the slot.
var ErrAllProvidersFailed = errors.New("engine: all generation providers failed")

// Generation is validated output from one provider.
type Generation struct {
	Text       string
	TokensUsed int
	Provider   string
}

type namedClient struct {
	name   string
	client aicore.Client
}

// Generator fronts an ordered provider list. Any provider error moves to the
// next provider; validation failure gets one amplified retry first.
type Generator struct {
	clients []namedClient
	opts    aicore.Options
	logger  zerolog.Logger
}

func NewGenerator(cfg config.AIConfig, logger zerolog.Logger) *Generator {
	clients := make([]namedClient, 0, len(cfg.ProviderOrder))
	for _, name := range cfg.ProviderOrder {
		client, err := aicore.NewClient(aicore.FactoryConfig{
			Provider:            name,
			Model:               cfg.Model,
			Temperature:         cfg.Temperature,
			MaxCompletionTokens: cfg.MaxCompletionTokens,
			OpenAIKey:           cfg.OpenAIKey,
			ClaudeKey:           cfg.ClaudeKey,
			GeminiKey:           cfg.GeminiKey,
			DeepSeekKey:         cfg.DeepSeekKey,
			GrokKey:             cfg.GrokKey,
		})
		if err != nil {
			logger.Warn().Str("provider", name).Err(err).Msg("provider unavailable")
			continue
		}
		clients = append(clients, namedClient{name: name, client: client})
	}
	return &Generator{
		clients: clients,
		opts: aicore.Options{
			Model:               cfg.Model,
			Temperature:         cfg.Temperature,
			MaxCompletionTokens: cfg.MaxCompletionTokens,
		},
		logger: logger,
	}
}

const contentContract = `Rules: plain text only. No emoji. No hashtags. 1-4 sentences. ` +
	`Replies must be under 250 characters, posts under 280. No promotional or spam phrasing. ` +
	`Do not repeat yourself.`

const amplifiedReminder = `

IMPORTANT: your previous attempt violated the rules. Absolutely no emoji or '#' characters, ` +
	`stay under the character limit, use 1-4 complete sentences, and vary your wording.`

// Generate produces validated content for the interaction. The system prompt
// carries the shared content contract; mission voice comes in userPrompt.
func (g *Generator) Generate(ctx context.Context, systemPrompt, userPrompt string, interaction data.InteractionType) (*Generation, error) {
	system := strings.TrimSpace(systemPrompt + "\n\n" + contentContract)

	for _, nc := range g.clients {
		gen, err := g.attempt(ctx, nc, system, userPrompt, interaction)
		if err != nil {
			g.logger.Warn().Str("provider", nc.name).
				Bool("rate_limited", logging.IsRateLimit(err)).
				Err(err).Msg("generation attempt failed")
			continue
		}
		return gen, nil
	}
	return nil, ErrAllProvidersFailed
}

// attempt runs one provider: a completion, validation, and at most one retry
// with the amplified constraint reminder.
func (g *Generator) attempt(ctx context.Context, nc namedClient, system, user string, interaction data.InteractionType) (*Generation, error) {
	completion, err := nc.client.Complete(ctx, system, user, g.opts)
	if err != nil {
		return nil, err
	}

	text := cleanCompletion(completion.Text)
	verr := ValidateContent(text, interaction)
	if verr == nil {
		return &Generation{Text: text, TokensUsed: completion.TokensUsed, Provider: nc.name}, nil
	}

	g.logger.Debug().Str("provider", nc.name).Err(verr).Msg("validation failed, retrying once")
	retry, err := nc.client.Complete(ctx, system, user+amplifiedReminder, g.opts)
	if err != nil {
		return nil, err
	}
	text = cleanCompletion(retry.Text)
	if verr := ValidateContent(text, interaction); verr != nil {
		return nil, fmt.Errorf("validation failed after retry: %w", verr)
	}
	return &Generation{
		Text:       text,
		TokensUsed: completion.TokensUsed + retry.TokensUsed,
		Provider:   nc.name,
	}, nil
}

// Assessment is the four-dimension relevance breakdown, each 0-25.
type Assessment struct {
	IsRelevant          bool `json:"is_relevant"`
	TopicAlignment      int  `json:"topic_alignment"`
	EngagementPotential int  `json:"engagement_potential"`
	CommunityFit        int  `json:"community_fit"`
	Timing              int  `json:"timing"`
}

// Total sums the dimensions into a 0-100 score.
func (a Assessment) Total() int {
	return a.TopicAlignment + a.EngagementPotential + a.CommunityFit + a.Timing
}

const assessSystem = `You score social media posts for engagement relevance. ` +
	`Respond with only a JSON object: {"is_relevant": bool, "topic_alignment": 0-25, ` +
	`"engagement_potential": 0-25, "community_fit": 0-25, "timing": 0-25}.`

// AssessRelevance asks the provider chain to score a candidate against the
// mission objective. The first provider to return parseable JSON wins.
func (g *Generator) AssessRelevance(ctx context.Context, mission *data.Mission, candidate platform.Candidate) (*Assessment, error) {
	prompt := fmt.Sprintf(
		"Mission objective: %s\nMission intent: %s\n\nPost by @%s (likes=%d reposts=%d replies=%d):\n%s",
		mission.Objective, mission.Intent,
		candidate.AuthorHandle, candidate.Likes, candidate.Reposts, candidate.Replies,
		candidate.Text,
	)

	var lastErr error = ErrAllProvidersFailed
	for _, nc := range g.clients {
		completion, err := nc.client.Complete(ctx, assessSystem, prompt, g.opts)
		if err != nil {
			lastErr = err
			continue
		}
		var assessment Assessment
		if err := json.Unmarshal([]byte(extractJSON(completion.Text)), &assessment); err != nil {
			lastErr = fmt.Errorf("%s: parse assessment: %w", nc.name, err)
			continue
		}
		return &assessment, nil
	}
	return nil, lastErr
}

// cleanCompletion strips wrapping quotes and code fences models like to add.
func cleanCompletion(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.Trim(text, "\"")
	return strings.TrimSpace(text)
}

// extractJSON pulls the first JSON object out of a possibly fenced response.
func extractJSON(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		return text[start : end+1]
	}
	return text
}
