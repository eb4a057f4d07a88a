package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/pulseworks/pulsebot/src/data"
	"github.com/pulseworks/pulsebot/src/engine"
	"github.com/pulseworks/pulsebot/src/events"
)

type fakeStore struct {
	mu       sync.Mutex
	missions map[string]*data.Mission
}

func newFakeStore(missions ...*data.Mission) *fakeStore {
	byID := map[string]*data.Mission{}
	for _, m := range missions {
		byID[m.ID] = m
	}
	return &fakeStore{missions: byID}
}

func (f *fakeStore) GetMission(_ context.Context, id string) (*data.Mission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.missions[id]
	if !ok {
		return nil, context.DeadlineExceeded
	}
	copied := *m
	return &copied, nil
}

func (f *fakeStore) ListActiveMissions(context.Context) ([]data.Mission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []data.Mission
	for _, m := range f.missions {
		if m.Active {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (f *fakeStore) SetMissionActive(_ context.Context, id string, active bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if m, ok := f.missions[id]; ok {
		m.Active = active
	}
	return nil
}

func (f *fakeStore) isActive(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.missions[id].Active
}

type fakeRunner struct {
	fired chan string
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{fired: make(chan string, 16)}
}

func (f *fakeRunner) RunMission(_ context.Context, mission *data.Mission) (*engine.RunSummary, error) {
	f.fired <- mission.ID
	return &engine.RunSummary{}, nil
}

func newTestScheduler(store Store, runner Runner) *Scheduler {
	return New(store, runner, events.NopSink{}, zerolog.Nop())
}

func TestStartRestoresActiveMissions(t *testing.T) {
	store := newFakeStore(
		&data.Mission{ID: "active", Schedule: "@every 1h", Active: true},
		&data.Mission{ID: "dormant", Schedule: "@every 1h"},
	)
	s := newTestScheduler(store, newFakeRunner())
	defer s.Stop()

	require.NoError(t, s.Start(context.Background()))
	require.True(t, s.Scheduled("active"))
	require.False(t, s.Scheduled("dormant"))
}

func TestStartMissionRejectsDoubleStart(t *testing.T) {
	store := newFakeStore(&data.Mission{ID: "m1", Schedule: "@every 1h"})
	s := newTestScheduler(store, newFakeRunner())
	defer s.Stop()
	require.NoError(t, s.Start(context.Background()))

	require.NoError(t, s.StartMission(context.Background(), "m1"))
	require.True(t, s.Scheduled("m1"))
	require.True(t, store.isActive("m1"))

	require.ErrorIs(t, s.StartMission(context.Background(), "m1"), ErrAlreadyScheduled)
}

func TestStartMissionRejectsBadSchedule(t *testing.T) {
	store := newFakeStore(&data.Mission{ID: "m1", Schedule: "every day at lunch"})
	s := newTestScheduler(store, newFakeRunner())
	defer s.Stop()
	require.NoError(t, s.Start(context.Background()))

	require.Error(t, s.StartMission(context.Background(), "m1"))
	require.False(t, s.Scheduled("m1"))
}

func TestStopMissionCancelsTrigger(t *testing.T) {
	store := newFakeStore(&data.Mission{ID: "m1", Schedule: "@every 1h"})
	s := newTestScheduler(store, newFakeRunner())
	defer s.Stop()
	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.StartMission(context.Background(), "m1"))

	require.NoError(t, s.StopMission(context.Background(), "m1"))
	require.False(t, s.Scheduled("m1"))
	require.False(t, store.isActive("m1"))
}

func TestStopMissionClearsLostTrigger(t *testing.T) {
	// Persisted active with no in-memory trigger, as after a process restart.
	store := newFakeStore(&data.Mission{ID: "m1", Schedule: "@every 1h", Active: true})
	s := newTestScheduler(store, newFakeRunner())
	defer s.Stop()
	s.rootCtx = context.Background()

	require.NoError(t, s.StopMission(context.Background(), "m1"))
	require.False(t, store.isActive("m1"))
}

func TestScheduledMissionFires(t *testing.T) {
	store := newFakeStore(&data.Mission{ID: "m1", Schedule: "@every 10ms"})
	runner := newFakeRunner()
	s := newTestScheduler(store, runner)
	defer s.Stop()
	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.StartMission(context.Background(), "m1"))

	select {
	case id := <-runner.fired:
		require.Equal(t, "m1", id)
	case <-time.After(2 * time.Second):
		t.Fatal("mission never fired")
	}
}

func TestFireSkipsDeactivatedMission(t *testing.T) {
	store := newFakeStore(&data.Mission{ID: "m1", Schedule: "@every 50ms"})
	runner := newFakeRunner()
	s := newTestScheduler(store, runner)
	defer s.Stop()
	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.StartMission(context.Background(), "m1"))

	// Deactivate behind the scheduler's back; the trigger is live but every
	// firing reloads the mission and sees the cleared flag.
	require.NoError(t, store.SetMissionActive(context.Background(), "m1", false))

	select {
	case <-runner.fired:
		t.Fatal("deactivated mission must not run")
	case <-time.After(200 * time.Millisecond):
	}
}
