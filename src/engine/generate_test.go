package engine

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	aicore "github.com/pulseworks/pulsebot/src/ai/core"
	"github.com/pulseworks/pulsebot/src/config"
	"github.com/pulseworks/pulsebot/src/data"
	"github.com/pulseworks/pulsebot/src/platform"
)

var testProviderSeq atomic.Int64

// newScriptedGenerator registers the given clients as providers under unique
// names and returns a Generator that fails over through them in order.
func newScriptedGenerator(clients ...aicore.Client) *Generator {
	order := make([]string, 0, len(clients))
	for _, client := range clients {
		name := fmt.Sprintf("scripted-%d", testProviderSeq.Add(1))
		c := client
		aicore.RegisterProvider(name, func(aicore.FactoryConfig) (aicore.Client, error) {
			return c, nil
		})
		order = append(order, name)
	}
	return NewGenerator(config.AIConfig{ProviderOrder: order}, zerolog.Nop())
}

const validReply = "That mirrors our experience, and the fix was embarrassingly simple in hindsight."

func TestGenerateFirstAttemptValid(t *testing.T) {
	client := &scriptedAI{responses: []string{validReply}}
	g := newScriptedGenerator(client)

	gen, err := g.Generate(context.Background(), "system", "user", data.InteractionReply)
	require.NoError(t, err)
	require.Equal(t, validReply, gen.Text)
	require.Equal(t, 1, client.callCount())
}

func TestGenerateRetriesOnceOnValidationFailure(t *testing.T) {
	client := &scriptedAI{responses: []string{
		"Tracking the #observability conversation closely.",
		validReply,
	}}
	g := newScriptedGenerator(client)

	gen, err := g.Generate(context.Background(), "system", "user", data.InteractionReply)
	require.NoError(t, err)
	require.Equal(t, validReply, gen.Text)
	require.Equal(t, 2, client.callCount(), "exactly one retry")
	require.Equal(t, 14, gen.TokensUsed, "retry tokens are accounted")
}

func TestGenerateProviderExhaustedAfterRetry(t *testing.T) {
	bad := "Tracking the #observability conversation closely."
	client := &scriptedAI{responses: []string{bad, bad}}
	g := newScriptedGenerator(client)

	_, err := g.Generate(context.Background(), "system", "user", data.InteractionReply)
	require.ErrorIs(t, err, ErrAllProvidersFailed)
	require.Equal(t, 2, client.callCount(), "no second retry on the same provider")
}

func TestGenerateFailsOverToNextProvider(t *testing.T) {
	down := &scriptedAI{err: errors.New("provider unavailable")}
	healthy := &scriptedAI{responses: []string{validReply}}
	g := newScriptedGenerator(down, healthy)

	gen, err := g.Generate(context.Background(), "system", "user", data.InteractionReply)
	require.NoError(t, err)
	require.Equal(t, validReply, gen.Text)
	require.Equal(t, 1, down.callCount())
	require.Equal(t, 1, healthy.callCount())
}

func TestGenerateNoProvidersConfigured(t *testing.T) {
	g := NewGenerator(config.AIConfig{}, zerolog.Nop())
	_, err := g.Generate(context.Background(), "system", "user", data.InteractionReply)
	require.ErrorIs(t, err, ErrAllProvidersFailed)
}

func TestAssessRelevanceParsesFencedJSON(t *testing.T) {
	client := &scriptedAI{responses: []string{
		"```json\n{\"is_relevant\": true, \"topic_alignment\": 20, \"engagement_potential\": 15, \"community_fit\": 10, \"timing\": 5}\n```",
	}}
	g := newScriptedGenerator(client)

	assessment, err := g.AssessRelevance(context.Background(), &data.Mission{Objective: "go tooling"}, platform.Candidate{Text: "generics"})
	require.NoError(t, err)
	require.True(t, assessment.IsRelevant)
	require.Equal(t, 50, assessment.Total())
}

func TestAssessRelevanceSkipsUnparseableProvider(t *testing.T) {
	garbled := &scriptedAI{responses: []string{"I think this post is quite relevant!"}}
	clean := &scriptedAI{responses: []string{`{"is_relevant": false, "topic_alignment": 5, "engagement_potential": 5, "community_fit": 5, "timing": 5}`}}
	g := newScriptedGenerator(garbled, clean)

	assessment, err := g.AssessRelevance(context.Background(), &data.Mission{}, platform.Candidate{})
	require.NoError(t, err)
	require.False(t, assessment.IsRelevant)
	require.Equal(t, 20, assessment.Total())
}

func TestCleanCompletion(t *testing.T) {
	require.Equal(t, "hello there", cleanCompletion("```\nhello there\n```"))
	require.Equal(t, "hello there", cleanCompletion(`"hello there"`))
	require.Equal(t, "hello there", cleanCompletion("  hello there  "))
}
