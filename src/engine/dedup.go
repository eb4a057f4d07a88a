package engine

import (
	"context"
	"strings"
	"time"

	"github.com/OneOfOne/xxhash"
)

// Deduplicator guards standalone post generation against repeating content.
// Reply/quote uniqueness is enforced separately by the (source, interaction)
// index check in the executor.
type Deduplicator struct {
	store      Store
	window     time.Duration
	similarity float64
	now        func() time.Time
}

func NewDeduplicator(store Store, window time.Duration, similarity float64) *Deduplicator {
	if window <= 0 {
		window = 30 * 24 * time.Hour
	}
	if similarity <= 0 || similarity > 1 {
		similarity = 0.8
	}
	return &Deduplicator{store: store, window: window, similarity: similarity, now: time.Now}
}

// IsDuplicate reports whether the text matches previously-sent content for
// the actor, either exactly (hash) or by token-set similarity over the
// trailing window.
func (d *Deduplicator) IsDuplicate(ctx context.Context, userScope, text string) (bool, error) {
	exact, err := d.store.ExactContentExists(ctx, userScope, HashContent(text))
	if err != nil {
		return false, err
	}
	if exact {
		return true, nil
	}

	cutoff := d.now().Add(-d.window)
	corpus, err := d.store.SentContentSince(ctx, userScope, cutoff)
	if err != nil {
		return false, err
	}

	tokens := tokenSet(text)
	for _, sent := range corpus {
		if sent.Content == "" {
			continue
		}
		if jaccard(tokens, tokenSet(sent.Content)) > d.similarity {
			return true, nil
		}
	}
	return false, nil
}

// HashContent hashes normalized content for the exact-match index.
func HashContent(text string) uint64 {
	return xxhash.ChecksumString64(normalizeContent(text))
}

func normalizeContent(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

func tokenSet(text string) map[string]struct{} {
	set := map[string]struct{}{}
	for _, word := range strings.Fields(strings.ToLower(text)) {
		set[word] = struct{}{}
	}
	return set
}

// jaccard computes intersection-over-union of two word sets.
func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	intersection := 0
	for word := range a {
		if _, ok := b[word]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	return float64(intersection) / float64(union)
}
