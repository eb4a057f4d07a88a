package engine

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	aicore "github.com/pulseworks/pulsebot/src/ai/core"
	"github.com/pulseworks/pulsebot/src/data"
	"github.com/pulseworks/pulsebot/src/events"
	"github.com/pulseworks/pulsebot/src/platform"
)

// memStore is an in-memory Store for engine tests.
type memStore struct {
	mu         sync.Mutex
	nextID     int
	sentPairs  map[string]bool
	pairErr    error
	hashes     map[uint64]bool
	corpus     []data.GeneratedAction
	actions    []*data.GeneratedAction
	runRecords []data.RunRecord
	outcomes   []int
	lastSince  time.Time
}

func newMemStore() *memStore {
	return &memStore{
		sentPairs: map[string]bool{},
		hashes:    map[uint64]bool{},
	}
}

func pairKey(sourceID string, interaction data.InteractionType) string {
	return sourceID + "/" + string(interaction)
}

func (m *memStore) HasSentInteraction(_ context.Context, sourceID string, interaction data.InteractionType) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pairErr != nil {
		return false, m.pairErr
	}
	return m.sentPairs[pairKey(sourceID, interaction)], nil
}

func (m *memStore) CreateAction(_ context.Context, a *data.GeneratedAction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	if a.ID == "" {
		a.ID = fmt.Sprintf("action-%d", m.nextID)
	}
	m.actions = append(m.actions, a)
	return nil
}

func (m *memStore) MarkActionSent(_ context.Context, id, remoteID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.actions {
		if a.ID == id {
			a.Status = data.ActionSent
			a.RemoteID = remoteID
			m.sentPairs[pairKey(a.SourceID, a.InteractionType)] = true
		}
	}
	return nil
}

func (m *memStore) MarkActionFailed(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.actions {
		if a.ID == id {
			a.Status = data.ActionFailed
		}
	}
	return nil
}

func (m *memStore) SentContentSince(_ context.Context, _ string, since time.Time) ([]data.GeneratedAction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastSince = since
	return append([]data.GeneratedAction(nil), m.corpus...), nil
}

func (m *memStore) ExactContentExists(_ context.Context, _ string, hash uint64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hashes[hash], nil
}

func (m *memStore) RecordRunOutcome(_ context.Context, _ string, engagements int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes = append(m.outcomes, engagements)
	return nil
}

func (m *memStore) CreateRunRecord(_ context.Context, r *data.RunRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runRecords = append(m.runRecords, *r)
	return nil
}

func (m *memStore) sentActions() []*data.GeneratedAction {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*data.GeneratedAction
	for _, a := range m.actions {
		if a.Status == data.ActionSent {
			out = append(out, a)
		}
	}
	return out
}

func (m *memStore) sentOfType(interaction data.InteractionType) int {
	count := 0
	for _, a := range m.sentActions() {
		if a.InteractionType == interaction {
			count++
		}
	}
	return count
}

// captureSink records emitted events for assertions.
type captureSink struct {
	mu     sync.Mutex
	events []events.Event
}

func (c *captureSink) Emit(_ context.Context, e events.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
}

func (c *captureSink) messages() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.events))
	for _, e := range c.events {
		out = append(out, e.Message)
	}
	return out
}

// fakePlatform is a scripted platform.Client.
type fakePlatform struct {
	mu         sync.Mutex
	candidates []platform.Candidate
	searchErr  error
	actionErr  error
	// failActions makes the first N mutations fail with failErr before
	// succeeding; used to drive the quota-rescue pass.
	failActions int
	failErr     error

	searches int
	sent     []string
}

func (f *fakePlatform) Search(_ context.Context, _ string, _ int) ([]platform.Candidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searches++
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return append([]platform.Candidate(nil), f.candidates...), nil
}

func (f *fakePlatform) mutate(kind, targetID string) (*platform.ActionResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.actionErr != nil {
		return nil, f.actionErr
	}
	if f.failActions > 0 {
		f.failActions--
		return nil, f.failErr
	}
	f.sent = append(f.sent, kind+":"+targetID)
	return &platform.ActionResult{ID: fmt.Sprintf("remote-%d", len(f.sent))}, nil
}

func (f *fakePlatform) Like(_ context.Context, _, targetID string) (*platform.ActionResult, error) {
	return f.mutate("like", targetID)
}

func (f *fakePlatform) Repost(_ context.Context, _, targetID string) (*platform.ActionResult, error) {
	return f.mutate("repost", targetID)
}

func (f *fakePlatform) Reply(_ context.Context, _, targetID, _ string) (*platform.ActionResult, error) {
	return f.mutate("reply", targetID)
}

func (f *fakePlatform) Quote(_ context.Context, _, targetID, _ string) (*platform.ActionResult, error) {
	return f.mutate("quote", targetID)
}

func (f *fakePlatform) Post(_ context.Context, _, _ string) (*platform.ActionResult, error) {
	return f.mutate("post", "")
}

func (f *fakePlatform) Follow(_ context.Context, _, targetUserID string) (*platform.ActionResult, error) {
	return f.mutate("follow", targetUserID)
}

func (f *fakePlatform) sentCount(kind string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, s := range f.sent {
		if strings.HasPrefix(s, kind+":") {
			count++
		}
	}
	return count
}

// scriptedAI is an aicore.Client returning canned completions in order. The
// last entry repeats once the script is exhausted.
type scriptedAI struct {
	mu        sync.Mutex
	responses []string
	err       error
	calls     int
}

func (s *scriptedAI) Complete(_ context.Context, _, _ string, _ aicore.Options) (*aicore.Completion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	idx := s.calls - 1
	if idx >= len(s.responses) {
		idx = len(s.responses) - 1
	}
	return &aicore.Completion{Text: s.responses[idx], TokensUsed: 7}, nil
}

func (s *scriptedAI) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// fixedSource drives rand.Rand deterministically. Float64 on it yields
// v/2^63, so the source value picks which side of a probability gate every
// draw lands on. The value must stay clear of 2^63-1: Int63 outputs that
// close to the top round to 1.0 and make Float64 redraw forever.
type fixedSource struct{ v int64 }

func (s fixedSource) Int63() int64 { return s.v }
func (s fixedSource) Seed(int64)   {}

const (
	// gateOpen maps to Float64 = 0: every gate passes.
	gateOpen = int64(0)
	// gateClosed maps to Float64 = 31/32 = 0.96875, above the 95% clamp:
	// no gate passes.
	gateClosed = int64(31) << 58
)
