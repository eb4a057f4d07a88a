// Package engine implements the mission execution engine: candidate
// sourcing, relevance filtering, rate budgeting, deduplication, generation,
// and the quota-driven run loop.
package engine

import (
	"context"
	"time"

	"github.com/pulseworks/pulsebot/src/data"
)

// Store is the persistence surface the engine consumes.
type Store interface {
	HasSentInteraction(ctx context.Context, sourceID string, interaction data.InteractionType) (bool, error)
	CreateAction(ctx context.Context, a *data.GeneratedAction) error
	MarkActionSent(ctx context.Context, id, remoteID string) error
	MarkActionFailed(ctx context.Context, id string) error
	SentContentSince(ctx context.Context, userScope string, since time.Time) ([]data.GeneratedAction, error)
	ExactContentExists(ctx context.Context, userScope string, hash uint64) (bool, error)
	RecordRunOutcome(ctx context.Context, missionID string, engagements int) error
	CreateRunRecord(ctx context.Context, r *data.RunRecord) error
}

// Resource identifies a rate-budgeted platform call type.
type Resource string

const (
	ResourceLike   Resource = "like"
	ResourceSearch Resource = "search"
	ResourceReply  Resource = "reply"
	ResourceRepost Resource = "repost"
	ResourcePost   Resource = "post"
	ResourceFollow Resource = "follow"
)

func resourceFor(interaction data.InteractionType) Resource {
	switch interaction {
	case data.InteractionReply:
		return ResourceReply
	case data.InteractionQuote:
		// Quotes create a post on the platform side.
		return ResourcePost
	case data.InteractionPost:
		return ResourcePost
	case data.InteractionLike:
		return ResourceLike
	case data.InteractionRepost:
		return ResourceRepost
	case data.InteractionFollow:
		return ResourceFollow
	}
	return ResourcePost
}

// TargetQueries splits the mission's comma-joined query list.
func TargetQueries(m *data.Mission) []string {
	return splitList(m.TargetQueries)
}

// AvoidedKeywords splits the mission's comma-joined avoided keyword list.
func AvoidedKeywords(m *data.Mission) []string {
	return splitList(m.AvoidedKeywords)
}

// StrategicKeywords splits the mission's comma-joined strategic keyword list.
func StrategicKeywords(m *data.Mission) []string {
	return splitList(m.StrategicKeywords)
}
