package engine

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBudgetTrackerReserveUpToLimit(t *testing.T) {
	tracker := NewBudgetTracker(15*time.Minute, map[string]int{"like": 3})

	require.True(t, tracker.TryReserve(ResourceLike, 1))
	require.True(t, tracker.TryReserve(ResourceLike, 2))
	require.False(t, tracker.TryReserve(ResourceLike, 1), "fourth unit must be refused")
	require.Equal(t, 3, tracker.Usage(ResourceLike))
}

func TestBudgetTrackerRefusedReserveCommitsNothing(t *testing.T) {
	tracker := NewBudgetTracker(15*time.Minute, map[string]int{"reply": 2})

	require.False(t, tracker.TryReserve(ResourceReply, 3))
	require.Equal(t, 0, tracker.Usage(ResourceReply))
	require.True(t, tracker.TryReserve(ResourceReply, 2))
}

func TestBudgetTrackerUnknownResource(t *testing.T) {
	tracker := NewBudgetTracker(15*time.Minute, map[string]int{"like": 5})
	require.False(t, tracker.TryReserve(Resource("teleport"), 1))
}

func TestBudgetTrackerRelease(t *testing.T) {
	tracker := NewBudgetTracker(15*time.Minute, map[string]int{"post": 1})

	require.True(t, tracker.TryReserve(ResourcePost, 1))
	require.False(t, tracker.TryReserve(ResourcePost, 1))

	tracker.Release(ResourcePost, 1)
	require.Equal(t, 0, tracker.Usage(ResourcePost))
	require.True(t, tracker.TryReserve(ResourcePost, 1))

	// Over-release never goes negative.
	tracker.Release(ResourcePost, 10)
	require.Equal(t, 0, tracker.Usage(ResourcePost))
}

func TestBudgetTrackerWindowRollover(t *testing.T) {
	tracker := NewBudgetTracker(15*time.Minute, map[string]int{"search": 1})

	current := time.Unix(1_700_000_000, 0)
	tracker.now = func() time.Time { return current }

	require.True(t, tracker.TryReserve(ResourceSearch, 1))
	require.False(t, tracker.TryReserve(ResourceSearch, 1))

	current = current.Add(15 * time.Minute)
	require.Equal(t, 0, tracker.Usage(ResourceSearch), "new window starts empty")
	require.True(t, tracker.TryReserve(ResourceSearch, 1))
}

func TestBudgetTrackerGarbageCollectsStaleWindows(t *testing.T) {
	tracker := NewBudgetTracker(15*time.Minute, map[string]int{"like": 10})

	current := time.Unix(1_700_000_000, 0)
	tracker.now = func() time.Time { return current }
	require.True(t, tracker.TryReserve(ResourceLike, 1))

	current = current.Add(time.Duration(staleWindows+2) * 15 * time.Minute)
	require.True(t, tracker.TryReserve(ResourceLike, 1))

	tracker.mu.Lock()
	defer tracker.mu.Unlock()
	require.Len(t, tracker.usage, 1, "stale window counters must be dropped")
}

func TestBudgetTrackerConcurrentReservations(t *testing.T) {
	const limit = 50
	tracker := NewBudgetTracker(15*time.Minute, map[string]int{"like": limit})

	var wg sync.WaitGroup
	var mu sync.Mutex
	granted := 0
	for i := 0; i < limit*4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if tracker.TryReserve(ResourceLike, 1) {
				mu.Lock()
				granted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Equal(t, limit, granted)
	require.Equal(t, limit, tracker.Usage(ResourceLike))
}
