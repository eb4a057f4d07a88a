package engine

import (
	"sync"
	"time"
)

// BudgetTracker accounts windowed per-resource usage against platform-declared
// budgets. It is global across all missions and is the only shared mutable
// state in the engine; every operation holds one mutex so that reserve and
// commit cannot interleave across concurrent runs.
type BudgetTracker struct {
	mu      sync.Mutex
	window  time.Duration
	budgets map[Resource]int
	usage   map[int64]map[Resource]int
	now     func() time.Time
}

// staleWindows is how many window-lengths back counters are retained before
// opportunistic garbage collection removes them.
const staleWindows = 4

func NewBudgetTracker(window time.Duration, budgets map[string]int) *BudgetTracker {
	if window <= 0 {
		window = 15 * time.Minute
	}
	byResource := make(map[Resource]int, len(budgets))
	for name, limit := range budgets {
		byResource[Resource(name)] = limit
	}
	return &BudgetTracker{
		window:  window,
		budgets: byResource,
		usage:   map[int64]map[Resource]int{},
		now:     time.Now,
	}
}

func (t *BudgetTracker) windowKey() int64 {
	return t.now().Unix() / int64(t.window.Seconds())
}

// TryReserve atomically checks and commits n units of the resource in the
// current window. It returns false without committing when the budget would
// be exceeded.
func (t *BudgetTracker) TryReserve(resource Resource, n int) bool {
	if n <= 0 {
		return true
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	key := t.windowKey()
	t.gc(key)

	limit, known := t.budgets[resource]
	if !known {
		return false
	}

	counters := t.usage[key]
	if counters == nil {
		counters = map[Resource]int{}
		t.usage[key] = counters
	}
	if counters[resource]+n > limit {
		return false
	}
	counters[resource] += n
	return true
}

// Release returns n units to the current window, for callers whose platform
// call failed after a successful reservation.
func (t *BudgetTracker) Release(resource Resource, n int) {
	if n <= 0 {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	counters := t.usage[t.windowKey()]
	if counters == nil {
		return
	}
	counters[resource] -= n
	if counters[resource] < 0 {
		counters[resource] = 0
	}
}

// Usage reports committed usage for the resource in the current window.
func (t *BudgetTracker) Usage(resource Resource) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	counters := t.usage[t.windowKey()]
	if counters == nil {
		return 0
	}
	return counters[resource]
}

// gc drops windows older than staleWindows window-lengths. Caller holds mu.
func (t *BudgetTracker) gc(current int64) {
	for key := range t.usage {
		if current-key > staleWindows {
			delete(t.usage, key)
		}
	}
}
