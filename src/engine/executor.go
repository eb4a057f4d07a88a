package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pulseworks/pulsebot/src/data"
	"github.com/pulseworks/pulsebot/src/events"
	"github.com/pulseworks/pulsebot/src/platform"
)

// Executor performs platform side effects and records outcomes. Failures are
// recorded for audit and never retried within the same run.
type Executor struct {
	store     Store
	platform  platform.Client
	budget    *BudgetTracker
	dedup     *Deduplicator
	generator *Generator
	sink      events.Sink
	logger    zerolog.Logger
	actorID   string
}

func NewExecutor(store Store, pc platform.Client, budget *BudgetTracker, dedup *Deduplicator, gen *Generator, sink events.Sink, logger zerolog.Logger, actorID string) *Executor {
	return &Executor{
		store:     store,
		platform:  pc,
		budget:    budget,
		dedup:     dedup,
		generator: gen,
		sink:      sink,
		logger:    logger,
		actorID:   actorID,
	}
}

// Execute performs one candidate-directed action. It returns (true, nil) on a
// sent action, (false, nil) when the action was skipped (budget refused,
// duplicate, no content, transient platform failure), and a non-nil error
// only when the run must abort (authentication failure).
func (e *Executor) Execute(ctx context.Context, mission *data.Mission, candidate platform.Candidate, interaction data.InteractionType) (bool, error) {
	resource := resourceFor(interaction)
	if !e.budget.TryReserve(resource, 1) {
		e.sink.Emit(ctx, events.Event{
			Category:  events.CategoryQuota,
			Level:     events.LevelWarning,
			MissionID: mission.ID,
			Message:   "rate budget refused, skipping action",
			Fields:    map[string]any{"resource": string(resource), "candidate_id": candidate.ID},
		})
		return false, nil
	}

	// One reply and one quote maximum per original candidate.
	if interaction == data.InteractionReply || interaction == data.InteractionQuote {
		exists, err := e.store.HasSentInteraction(ctx, candidate.ID, interaction)
		if err != nil {
			e.budget.Release(resource, 1)
			e.logger.Warn().Err(err).Str("candidate_id", candidate.ID).Str("interaction", string(interaction)).
				Msg("sent-interaction lookup failed, skipping action")
			e.sink.Emit(ctx, events.Event{
				Category:  events.CategorySystem,
				Level:     events.LevelWarning,
				MissionID: mission.ID,
				Message:   "sent-interaction lookup failed, skipping action",
				Fields:    map[string]any{"interaction": string(interaction), "candidate_id": candidate.ID, "error": err.Error()},
			})
			return false, nil
		}
		if exists {
			e.budget.Release(resource, 1)
			return false, nil
		}
	}

	content, ok := e.contentFor(ctx, mission, candidate.Text, interaction)
	if !ok {
		e.budget.Release(resource, 1)
		return false, nil
	}

	record := &data.GeneratedAction{
		MissionID:       mission.ID,
		UserScope:       e.actorID,
		SourceID:        candidate.ID,
		InteractionType: interaction,
		Content:         content,
		ContentHash:     HashContent(content),
		Status:          data.ActionPending,
	}
	if err := e.store.CreateAction(ctx, record); err != nil {
		e.budget.Release(resource, 1)
		return false, fmt.Errorf("engine: persist pending action: %w", err)
	}

	result, err := e.dispatch(ctx, candidate, interaction, content)
	if err != nil {
		e.budget.Release(resource, 1)
		if markErr := e.store.MarkActionFailed(ctx, record.ID); markErr != nil {
			e.logger.Error().Err(markErr).Str("action_id", record.ID).Msg("mark failed record")
		}
		if errors.Is(err, platform.ErrAuth) {
			return false, err
		}
		e.sink.Emit(ctx, events.Event{
			Category:  events.CategoryEngagement,
			Level:     events.LevelError,
			MissionID: mission.ID,
			Message:   "platform action failed",
			Fields:    map[string]any{"interaction": string(interaction), "candidate_id": candidate.ID, "error": err.Error()},
		})
		return false, nil
	}

	if err := e.store.MarkActionSent(ctx, record.ID, result.ID); err != nil {
		e.logger.Error().Err(err).Str("action_id", record.ID).Msg("mark sent record")
	}
	e.sink.Emit(ctx, events.Event{
		Category:  events.CategoryEngagement,
		Level:     events.LevelSuccess,
		MissionID: mission.ID,
		Message:   "action sent",
		Fields:    map[string]any{"interaction": string(interaction), "candidate_id": candidate.ID, "remote_id": result.ID},
	})
	return true, nil
}

// ExecutePost publishes a standalone post. Near-duplicate content against the
// trailing corpus is rejected before anything is queued.
func (e *Executor) ExecutePost(ctx context.Context, mission *data.Mission, content string) (bool, error) {
	if !e.budget.TryReserve(ResourcePost, 1) {
		return false, nil
	}

	duplicate, err := e.dedup.IsDuplicate(ctx, e.actorID, content)
	if err != nil {
		e.logger.Warn().Err(err).Msg("dedup check failed")
	}
	if duplicate {
		e.budget.Release(ResourcePost, 1)
		return false, nil
	}

	record := &data.GeneratedAction{
		MissionID:       mission.ID,
		UserScope:       e.actorID,
		InteractionType: data.InteractionPost,
		Content:         content,
		ContentHash:     HashContent(content),
		Status:          data.ActionPending,
	}
	if err := e.store.CreateAction(ctx, record); err != nil {
		e.budget.Release(ResourcePost, 1)
		return false, fmt.Errorf("engine: persist pending post: %w", err)
	}

	result, err := e.platform.Post(ctx, e.actorID, content)
	if err != nil {
		e.budget.Release(ResourcePost, 1)
		if markErr := e.store.MarkActionFailed(ctx, record.ID); markErr != nil {
			e.logger.Error().Err(markErr).Str("action_id", record.ID).Msg("mark failed record")
		}
		if errors.Is(err, platform.ErrAuth) {
			return false, err
		}
		return false, nil
	}

	if err := e.store.MarkActionSent(ctx, record.ID, result.ID); err != nil {
		e.logger.Error().Err(err).Str("action_id", record.ID).Msg("mark sent record")
	}
	return true, nil
}

// contentFor resolves action content: static mission override, generation,
// then the static fallback bank. Returns ok=false when the slot must be
// skipped (generation is fail-closed, unlike relevance scoring).
func (e *Executor) contentFor(ctx context.Context, mission *data.Mission, sourceText string, interaction data.InteractionType) (string, bool) {
	switch interaction {
	case data.InteractionLike, data.InteractionRepost, data.InteractionFollow:
		return "", true
	}

	if static := staticOverride(mission, interaction); static != "" {
		return static, true
	}

	system, user := buildPrompts(mission, sourceText, interaction)
	gen, err := e.generator.Generate(ctx, system, user, interaction)
	if err != nil {
		if fallback := FallbackContent(sourceText, interaction); fallback != "" {
			e.sink.Emit(ctx, events.Event{
				Category:  events.CategorySystem,
				Level:     events.LevelWarning,
				MissionID: mission.ID,
				Message:   "generation failed, using fallback phrase",
			})
			return fallback, true
		}
		e.sink.Emit(ctx, events.Event{
			Category:  events.CategorySystem,
			Level:     events.LevelWarning,
			MissionID: mission.ID,
			Message:   "generation failed, skipping action",
			Fields:    map[string]any{"interaction": string(interaction)},
		})
		return "", false
	}
	return gen.Text, true
}

func (e *Executor) dispatch(ctx context.Context, candidate platform.Candidate, interaction data.InteractionType, content string) (*platform.ActionResult, error) {
	switch interaction {
	case data.InteractionReply:
		return e.platform.Reply(ctx, e.actorID, candidate.ID, content)
	case data.InteractionQuote:
		return e.platform.Quote(ctx, e.actorID, candidate.ID, content)
	case data.InteractionLike:
		return e.platform.Like(ctx, e.actorID, candidate.ID)
	case data.InteractionRepost:
		return e.platform.Repost(ctx, e.actorID, candidate.ID)
	case data.InteractionFollow:
		return e.platform.Follow(ctx, e.actorID, candidate.AuthorID)
	}
	return nil, fmt.Errorf("engine: unsupported interaction %q", interaction)
}

func staticOverride(mission *data.Mission, interaction data.InteractionType) string {
	switch interaction {
	case data.InteractionReply:
		return strings.TrimSpace(mission.ReplyContent)
	case data.InteractionQuote:
		return strings.TrimSpace(mission.QuoteContent)
	case data.InteractionPost:
		return strings.TrimSpace(mission.PostContent)
	}
	return ""
}

func buildPrompts(mission *data.Mission, sourceText string, interaction data.InteractionType) (system, user string) {
	var persona strings.Builder
	persona.WriteString("You write short social media ")
	persona.WriteString(string(interaction))
	persona.WriteString("s on behalf of an account with this objective: ")
	persona.WriteString(mission.Objective)
	if mission.Intent != "" {
		persona.WriteString("\nIntent: " + mission.Intent)
	}
	for _, trait := range []struct{ label, value string }{
		{"Tone", mission.Tone},
		{"Expertise", mission.Expertise},
		{"Formality", mission.Formality},
		{"Perspective", mission.Perspective},
	} {
		if trait.value != "" {
			persona.WriteString("\n" + trait.label + ": " + trait.value)
		}
	}

	switch interaction {
	case data.InteractionPost:
		keywords := strings.Join(StrategicKeywords(mission), ", ")
		user = "Write a standalone post aligned with the objective."
		if keywords != "" {
			user += " Topics to draw from: " + keywords + "."
		}
	case data.InteractionQuote:
		user = "Write a quote-post comment adding your perspective to this post:\n\n" + sourceText
	default:
		user = "Write a reply to this post:\n\n" + sourceText
	}
	return persona.String(), user
}
