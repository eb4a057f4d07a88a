package engine

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/pulseworks/pulsebot/src/data"
	"github.com/pulseworks/pulsebot/src/events"
	"github.com/pulseworks/pulsebot/src/platform"
)

// Orchestrator drives one mission run: sourcing, allocation under quotas and
// budgets, execution, and outcome recording.
type Orchestrator struct {
	store    Store
	sourcer  *Sourcer
	executor *Executor
	sink     events.Sink
	logger   zerolog.Logger

	delay  time.Duration
	newRNG func() *rand.Rand
	now    func() time.Time
	sleep  func(ctx context.Context, d time.Duration) error
}

func NewOrchestrator(store Store, sourcer *Sourcer, executor *Executor, sink events.Sink, logger zerolog.Logger, delay time.Duration) *Orchestrator {
	if delay <= 0 {
		delay = 2 * time.Second
	}
	return &Orchestrator{
		store:    store,
		sourcer:  sourcer,
		executor: executor,
		sink:     sink,
		logger:   logger,
		delay: delay,
		// Overlapping executions share nothing through the orchestrator but
		// the budget tracker, so each run draws from its own RNG.
		newRNG: func() *rand.Rand { return rand.New(rand.NewSource(time.Now().UnixNano())) },
		now:    time.Now,
		sleep:  sleepCtx,
	}
}

// RunSummary reports what one run accomplished.
type RunSummary struct {
	RepliesDone     int
	QuotesDone      int
	EngagementsDone int
	CandidatesSeen  int
}

type runState struct {
	rng             *rand.Rand
	repliesDone     int
	quotesDone      int
	engagementsDone int
	candidatesSeen  int
}

func (st *runState) capacityLeft(mission *data.Mission) bool {
	return st.engagementsDone < mission.MaxEngagementsPerRun
}

// RunMission executes one scheduled firing of a mission. Individual action
// failures never abort the run; only authentication failure does.
func (o *Orchestrator) RunMission(ctx context.Context, mission *data.Mission) (*RunSummary, error) {
	start := o.now().UTC()
	st := &runState{rng: o.newRNG()}

	o.sink.Emit(ctx, events.Event{
		Category:  events.CategoryMission,
		Level:     events.LevelInfo,
		MissionID: mission.ID,
		Message:   "mission run started",
		Fields:    map[string]any{"objective": mission.Objective},
	})

	runErr := o.engageQueries(ctx, mission, st, false)

	// Quota-rescue pass: re-source the target queries, ignoring risk checks,
	// solely to force-fill any remaining quota gap.
	if runErr == nil && (st.repliesDone < mission.MinReplies || st.quotesDone < mission.MinQuotes) {
		o.sink.Emit(ctx, events.Event{
			Category:  events.CategoryQuota,
			Level:     events.LevelWarning,
			MissionID: mission.ID,
			Message:   "minimum quotas unmet after candidate pass, starting rescue pass",
			Fields: map[string]any{
				"replies_done": st.repliesDone, "min_replies": mission.MinReplies,
				"quotes_done": st.quotesDone, "min_quotes": mission.MinQuotes,
			},
		})
		runErr = o.engageQueries(ctx, mission, st, true)
	}

	if runErr == nil && mission.PostEnabled && st.capacityLeft(mission) {
		if aborted := o.maybePost(ctx, mission, st); aborted != nil {
			runErr = aborted
		}
	}

	o.record(ctx, mission, st, start, runErr)

	summary := &RunSummary{
		RepliesDone:     st.repliesDone,
		QuotesDone:      st.quotesDone,
		EngagementsDone: st.engagementsDone,
		CandidatesSeen:  st.candidatesSeen,
	}
	return summary, runErr
}

// engageQueries walks the mission's target queries. In rescue mode only
// forced quota fills run and conversation-risk checks are skipped.
func (o *Orchestrator) engageQueries(ctx context.Context, mission *data.Mission, st *runState, rescue bool) error {
	for _, query := range TargetQueries(mission) {
		if !st.capacityLeft(mission) {
			return nil
		}
		if rescue && st.repliesDone >= mission.MinReplies && st.quotesDone >= mission.MinQuotes {
			return nil
		}

		candidates, err := o.sourcer.Source(ctx, mission, query)
		if err != nil {
			if errors.Is(err, platform.ErrAuth) {
				return err
			}
			o.sink.Emit(ctx, events.Event{
				Category:  events.CategorySystem,
				Level:     events.LevelWarning,
				MissionID: mission.ID,
				Message:   "query sourcing failed, continuing",
				Fields:    map[string]any{"query": query, "error": err.Error()},
			})
			continue
		}
		st.candidatesSeen += len(candidates)

		if err := o.processCandidates(ctx, mission, candidates, st, rescue); err != nil {
			return err
		}
	}
	return nil
}

func (o *Orchestrator) processCandidates(ctx context.Context, mission *data.Mission, candidates []platform.Candidate, st *runState, rescue bool) error {
	for _, candidate := range candidates {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !st.capacityLeft(mission) {
			return nil
		}

		if !rescue && conversationRisk(candidate) && mission.RiskTolerance == "low" {
			continue
		}

		// Forced phase: unmet minimums bypass the probability gate entirely.
		if mission.ReplyEnabled && st.repliesDone < mission.MinReplies {
			sent, err := o.executor.Execute(ctx, mission, candidate, data.InteractionReply)
			if err != nil {
				return err
			}
			if sent {
				st.repliesDone++
				st.engagementsDone++
				if err := o.pace(ctx); err != nil {
					return err
				}
			}
		} else if !rescue && mission.ReplyEnabled && o.gate(mission, candidate, st, data.InteractionReply, mission.ReplyChance) {
			sent, err := o.executor.Execute(ctx, mission, candidate, data.InteractionReply)
			if err != nil {
				return err
			}
			if sent {
				st.repliesDone++
				st.engagementsDone++
				if err := o.pace(ctx); err != nil {
					return err
				}
			}
		}
		if !st.capacityLeft(mission) {
			return nil
		}

		if mission.QuoteEnabled && st.quotesDone < mission.MinQuotes {
			sent, err := o.executor.Execute(ctx, mission, candidate, data.InteractionQuote)
			if err != nil {
				return err
			}
			if sent {
				st.quotesDone++
				st.engagementsDone++
				if err := o.pace(ctx); err != nil {
					return err
				}
			}
		} else if !rescue && mission.QuoteEnabled && o.gate(mission, candidate, st, data.InteractionQuote, mission.QuoteChance) {
			sent, err := o.executor.Execute(ctx, mission, candidate, data.InteractionQuote)
			if err != nil {
				return err
			}
			if sent {
				st.quotesDone++
				st.engagementsDone++
				if err := o.pace(ctx); err != nil {
					return err
				}
			}
		}

		// Fill phase: both quotas satisfied and capacity remains. At most one
		// of like/repost/follow per candidate.
		if rescue || !st.capacityLeft(mission) || st.repliesDone < mission.MinReplies || st.quotesDone < mission.MinQuotes {
			continue
		}
		if err := o.fill(ctx, mission, candidate, st); err != nil {
			return err
		}
	}
	return nil
}

func (o *Orchestrator) fill(ctx context.Context, mission *data.Mission, candidate platform.Candidate, st *runState) error {
	fillActions := []struct {
		enabled     bool
		chance      int
		interaction data.InteractionType
	}{
		{mission.LikeEnabled, mission.LikeChance, data.InteractionLike},
		{mission.RepostEnabled, mission.RepostChance, data.InteractionRepost},
		{mission.FollowEnabled, mission.FollowChance, data.InteractionFollow},
	}
	for _, fa := range fillActions {
		if !fa.enabled || !o.gate(mission, candidate, st, fa.interaction, fa.chance) {
			continue
		}
		sent, err := o.executor.Execute(ctx, mission, candidate, fa.interaction)
		if err != nil {
			return err
		}
		if sent {
			st.engagementsDone++
			if err := o.pace(ctx); err != nil {
				return err
			}
			return nil
		}
	}
	return nil
}

// maybePost publishes one standalone post when the probability gate passes.
func (o *Orchestrator) maybePost(ctx context.Context, mission *data.Mission, st *runState) error {
	if !o.gate(mission, platform.Candidate{}, st, data.InteractionPost, mission.PostChance) {
		return nil
	}

	content, ok := o.executor.contentFor(ctx, mission, "", data.InteractionPost)
	if !ok || content == "" {
		return nil
	}
	sent, err := o.executor.ExecutePost(ctx, mission, content)
	if err != nil {
		return err
	}
	if sent {
		st.engagementsDone++
	}
	return nil
}

func (o *Orchestrator) gate(mission *data.Mission, candidate platform.Candidate, st *runState, interaction data.InteractionType, base int) bool {
	prob := DynamicProbability(base, candidate, st.engagementsDone, interaction, mission, o.now(), st.rng)
	return st.rng.Float64()*100 < prob
}

// pace waits the fixed inter-action delay. Deliberate throttling to emulate
// human cadence; not incidental.
func (o *Orchestrator) pace(ctx context.Context) error {
	return o.sleep(ctx, o.delay)
}

func (o *Orchestrator) record(ctx context.Context, mission *data.Mission, st *runState, start time.Time, runErr error) {
	status := "completed"
	errText := ""
	level := events.LevelSuccess
	if runErr != nil {
		status = "failed"
		errText = runErr.Error()
		level = events.LevelError
	}

	rec := &data.RunRecord{
		MissionID:       mission.ID,
		StartedAt:       start,
		FinishedAt:      o.now().UTC(),
		RepliesDone:     st.repliesDone,
		QuotesDone:      st.quotesDone,
		EngagementsDone: st.engagementsDone,
		CandidatesSeen:  st.candidatesSeen,
		Status:          status,
		Error:           errText,
	}
	if err := o.store.CreateRunRecord(ctx, rec); err != nil {
		o.logger.Error().Err(err).Str("mission_id", mission.ID).Msg("persist run record")
	}
	if err := o.store.RecordRunOutcome(ctx, mission.ID, st.engagementsDone); err != nil {
		o.logger.Error().Err(err).Str("mission_id", mission.ID).Msg("update mission counters")
	}

	o.sink.Emit(ctx, events.Event{
		Category:  events.CategoryMission,
		Level:     level,
		MissionID: mission.ID,
		Message:   "mission run " + status,
		Fields: map[string]any{
			"replies":    st.repliesDone,
			"quotes":     st.quotesDone,
			"total":      st.engagementsDone,
			"candidates": st.candidatesSeen,
		},
	})
}

// conversationRisk is the cheap pre-check for threads likely to be heated:
// a reply storm relative to likes usually means an argument, not a topic.
func conversationRisk(candidate platform.Candidate) bool {
	if candidate.Replies < 30 {
		return false
	}
	return candidate.Replies > candidate.Likes*2
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
