package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pulseworks/pulsebot/src/data"
)

func TestDeduplicatorExactMatch(t *testing.T) {
	store := newMemStore()
	text := "Shipping quality software takes patience."
	store.hashes[HashContent(text)] = true

	d := NewDeduplicator(store, 30*24*time.Hour, 0.8)
	dup, err := d.IsDuplicate(context.Background(), "actor-1", text)
	require.NoError(t, err)
	require.True(t, dup)
}

func TestDeduplicatorExactMatchIgnoresWhitespaceAndCase(t *testing.T) {
	store := newMemStore()
	store.hashes[HashContent("hello   WORLD again")] = true

	d := NewDeduplicator(store, 30*24*time.Hour, 0.8)
	dup, err := d.IsDuplicate(context.Background(), "actor-1", "Hello world AGAIN")
	require.NoError(t, err)
	require.True(t, dup)
}

func TestDeduplicatorNearDuplicate(t *testing.T) {
	store := newMemStore()
	store.corpus = []data.GeneratedAction{
		{Content: "open source maintainers deserve a lot more credit than they get today"},
	}

	d := NewDeduplicator(store, 30*24*time.Hour, 0.8)

	// Same token set with one word swapped: similarity above the threshold.
	dup, err := d.IsDuplicate(context.Background(), "actor-1",
		"open source maintainers deserve a lot more credit than they get now today")
	require.NoError(t, err)
	require.True(t, dup)
}

func TestDeduplicatorDistinctContentPasses(t *testing.T) {
	store := newMemStore()
	store.corpus = []data.GeneratedAction{
		{Content: "open source maintainers deserve a lot more credit"},
	}

	d := NewDeduplicator(store, 30*24*time.Hour, 0.8)
	dup, err := d.IsDuplicate(context.Background(), "actor-1",
		"databases are the most underrated part of any stack")
	require.NoError(t, err)
	require.False(t, dup)
}

func TestDeduplicatorWindowCutoff(t *testing.T) {
	store := newMemStore()
	d := NewDeduplicator(store, 30*24*time.Hour, 0.8)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	d.now = func() time.Time { return now }

	_, err := d.IsDuplicate(context.Background(), "actor-1", "anything at all here")
	require.NoError(t, err)
	require.Equal(t, now.Add(-30*24*time.Hour), store.lastSince)
}

func TestJaccard(t *testing.T) {
	a := tokenSet("one two three four")
	b := tokenSet("one two three five")
	require.InDelta(t, 0.6, jaccard(a, b), 0.001)

	require.Equal(t, 1.0, jaccard(tokenSet(""), tokenSet("")))
	require.Equal(t, 0.0, jaccard(a, tokenSet("")))
}
