// Package scheduler maps mission definitions to periodic triggers and owns
// the mission lifecycle: inactive -> scheduled -> inactive.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/pulseworks/pulsebot/src/data"
	"github.com/pulseworks/pulsebot/src/engine"
	"github.com/pulseworks/pulsebot/src/events"
)

// ErrAlreadyScheduled is returned when starting a mission that has a live trigger.
var ErrAlreadyScheduled = errors.New("scheduler: mission already scheduled")

// Runner executes one mission firing.
type Runner interface {
	RunMission(ctx context.Context, mission *data.Mission) (*engine.RunSummary, error)
}

// Store is the persistence surface the scheduler needs.
type Store interface {
	GetMission(ctx context.Context, id string) (*data.Mission, error)
	ListActiveMissions(ctx context.Context) ([]data.Mission, error)
	SetMissionActive(ctx context.Context, id string, active bool) error
}

// Notifier receives run outcomes; failures are logged, never propagated.
type Notifier interface {
	RunCompleted(ctx context.Context, mission *data.Mission, summary *engine.RunSummary, runErr error)
}

type trigger struct {
	cancel context.CancelFunc
}

// Scheduler holds the in-memory triggers. One trigger goroutine per
// scheduled mission; firings may overlap across missions.
type Scheduler struct {
	mu       sync.Mutex
	triggers map[string]*trigger

	store    Store
	runner   Runner
	notifier Notifier
	sink     events.Sink
	logger   zerolog.Logger
	parser   cron.Parser

	rootCtx context.Context
	wg      sync.WaitGroup
}

func New(store Store, runner Runner, sink events.Sink, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		triggers: map[string]*trigger{},
		store:    store,
		runner:   runner,
		sink:     sink,
		logger:   logger,
		parser:   cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor),
	}
}

// SetNotifier wires an optional run-summary notifier. Call before Start.
func (s *Scheduler) SetNotifier(n Notifier) { s.notifier = n }

// Start re-schedules every mission persisted as active. rootCtx bounds all
// trigger goroutines and in-flight runs.
func (s *Scheduler) Start(rootCtx context.Context) error {
	s.rootCtx = rootCtx

	missions, err := s.store.ListActiveMissions(rootCtx)
	if err != nil {
		return fmt.Errorf("scheduler: restore missions: %w", err)
	}
	for i := range missions {
		mission := missions[i]
		if err := s.schedule(&mission); err != nil {
			s.logger.Error().Err(err).Str("mission_id", mission.ID).Msg("restore schedule failed")
		}
	}
	s.logger.Info().Int("missions", len(missions)).Msg("scheduler started")
	return nil
}

// StartMission activates and schedules a mission. Starting an
// already-scheduled mission is rejected.
func (s *Scheduler) StartMission(ctx context.Context, id string) error {
	s.mu.Lock()
	_, live := s.triggers[id]
	s.mu.Unlock()
	if live {
		return ErrAlreadyScheduled
	}

	mission, err := s.store.GetMission(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.SetMissionActive(ctx, id, true); err != nil {
		return err
	}
	mission.Active = true
	return s.schedule(mission)
}

// StopMission is idempotent: the persisted active flag is cleared even when
// no in-memory trigger exists (e.g. it was lost to a process restart). An
// in-flight execution runs to completion; only future firings stop.
func (s *Scheduler) StopMission(ctx context.Context, id string) error {
	s.mu.Lock()
	if tr, ok := s.triggers[id]; ok {
		tr.cancel()
		delete(s.triggers, id)
	}
	s.mu.Unlock()

	return s.store.SetMissionActive(ctx, id, false)
}

// Stop cancels all triggers and waits for trigger goroutines to exit.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	for id, tr := range s.triggers {
		tr.cancel()
		delete(s.triggers, id)
	}
	s.mu.Unlock()
	s.wg.Wait()
}

// Scheduled reports whether the mission has a live in-memory trigger.
func (s *Scheduler) Scheduled(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.triggers[id]
	return ok
}

func (s *Scheduler) schedule(mission *data.Mission) error {
	schedule, err := s.parser.Parse(mission.Schedule)
	if err != nil {
		return fmt.Errorf("scheduler: parse schedule %q: %w", mission.Schedule, err)
	}

	triggerCtx, cancel := context.WithCancel(s.rootCtx)

	s.mu.Lock()
	if _, exists := s.triggers[mission.ID]; exists {
		s.mu.Unlock()
		cancel()
		return ErrAlreadyScheduled
	}
	s.triggers[mission.ID] = &trigger{cancel: cancel}
	s.mu.Unlock()

	s.wg.Add(1)
	go s.loop(triggerCtx, mission.ID, schedule)

	s.sink.Emit(s.rootCtx, events.Event{
		Category:  events.CategoryMission,
		Level:     events.LevelInfo,
		MissionID: mission.ID,
		Message:   "mission scheduled",
		Fields:    map[string]any{"schedule": mission.Schedule},
	})
	return nil
}

// loop waits for the next cron fire, then executes. The run itself uses the
// scheduler root context, not the trigger context, so stopping a mission
// never cancels an in-flight execution.
func (s *Scheduler) loop(triggerCtx context.Context, missionID string, schedule cron.Schedule) {
	defer s.wg.Done()

	for {
		next := schedule.Next(time.Now())
		timer := time.NewTimer(time.Until(next))
		select {
		case <-triggerCtx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		s.fire(missionID)
	}
}

func (s *Scheduler) fire(missionID string) {
	ctx := s.rootCtx

	mission, err := s.store.GetMission(ctx, missionID)
	if err != nil {
		s.logger.Error().Err(err).Str("mission_id", missionID).Msg("load mission for firing")
		return
	}
	if !mission.Active {
		return
	}

	summary, runErr := s.runner.RunMission(ctx, mission)
	if runErr != nil {
		s.logger.Error().Err(runErr).Str("mission_id", missionID).Msg("mission run failed")
	}
	if s.notifier != nil {
		s.notifier.RunCompleted(ctx, mission, summary, runErr)
	}
}
