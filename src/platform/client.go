package platform

import "context"

// Client is the social platform surface the engine consumes. Implementations
// must map remote failures onto ErrAuth / ErrRateLimited / StatusError.
type Client interface {
	// Search returns original (non-repost), language-filtered content.
	Search(ctx context.Context, query string, limit int) ([]Candidate, error)

	Like(ctx context.Context, actorID, targetID string) (*ActionResult, error)
	Repost(ctx context.Context, actorID, targetID string) (*ActionResult, error)
	Reply(ctx context.Context, actorID, targetID, content string) (*ActionResult, error)
	Quote(ctx context.Context, actorID, targetID, content string) (*ActionResult, error)
	Post(ctx context.Context, actorID, content string) (*ActionResult, error)
	Follow(ctx context.Context, actorID, targetUserID string) (*ActionResult, error)
}
