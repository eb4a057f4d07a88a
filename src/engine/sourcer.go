package engine

import (
	"context"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pulseworks/pulsebot/src/data"
	"github.com/pulseworks/pulsebot/src/events"
	"github.com/pulseworks/pulsebot/src/platform"
)

// Sourcer fetches candidates from the platform and filters them for
// relevance against the mission.
type Sourcer struct {
	platform  platform.Client
	generator *Generator
	budget    *BudgetTracker
	sink      events.Sink
	logger    zerolog.Logger

	threshold   int
	searchLimit int
}

func NewSourcer(pc platform.Client, gen *Generator, budget *BudgetTracker, sink events.Sink, logger zerolog.Logger, threshold, searchLimit int) *Sourcer {
	if threshold <= 0 || threshold > 100 {
		threshold = 35
	}
	if searchLimit <= 0 {
		searchLimit = 20
	}
	return &Sourcer{
		platform:    pc,
		generator:   gen,
		budget:      budget,
		sink:        sink,
		logger:      logger,
		threshold:   threshold,
		searchLimit: searchLimit,
	}
}

// Source issues one search and returns relevant candidates ordered by
// descending engagement. A refused search budget yields an empty slice, not
// an error: the run proceeds with whatever other queries produced.
func (s *Sourcer) Source(ctx context.Context, mission *data.Mission, query string) ([]platform.Candidate, error) {
	if !s.budget.TryReserve(ResourceSearch, 1) {
		s.sink.Emit(ctx, events.Event{
			Category:  events.CategoryQuota,
			Level:     events.LevelWarning,
			MissionID: mission.ID,
			Message:   "search budget exhausted, skipping query",
			Fields:    map[string]any{"query": query},
		})
		return nil, nil
	}

	candidates, err := s.platform.Search(ctx, query, s.searchLimit)
	if err != nil {
		s.budget.Release(ResourceSearch, 1)
		return nil, err
	}

	avoided := AvoidedKeywords(mission)
	relevant := make([]platform.Candidate, 0, len(candidates))
	for _, candidate := range candidates {
		if containsAvoided(candidate.Text, avoided) {
			continue
		}
		if s.isRelevant(ctx, mission, candidate) {
			relevant = append(relevant, candidate)
		}
	}

	sort.SliceStable(relevant, func(i, j int) bool {
		return relevant[i].TotalEngagement() > relevant[j].TotalEngagement()
	})
	return relevant, nil
}

// isRelevant asks the AI scorer, failing open on assessment errors: a scoring
// outage must not block all engagement, so the candidate is admitted and the
// heuristic score is logged for observability.
func (s *Sourcer) isRelevant(ctx context.Context, mission *data.Mission, candidate platform.Candidate) bool {
	assessment, err := s.generator.AssessRelevance(ctx, mission, candidate)
	if err != nil {
		heuristic := HeuristicScore(mission, candidate)
		s.sink.Emit(ctx, events.Event{
			Category:  events.CategoryEngagement,
			Level:     events.LevelWarning,
			MissionID: mission.ID,
			Message:   "relevance assessment failed, admitting candidate",
			Fields: map[string]any{
				"candidate_id":    candidate.ID,
				"heuristic_score": heuristic,
				"error":           err.Error(),
			},
		})
		return true
	}
	return assessment.IsRelevant && assessment.Total() >= s.threshold
}

func containsAvoided(text string, avoided []string) bool {
	lower := strings.ToLower(text)
	for _, kw := range avoided {
		if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// HeuristicScore approximates the AI assessment from local signals. Used only
// as the logged fallback when assessment fails.
func HeuristicScore(mission *data.Mission, candidate platform.Candidate) int {
	return keywordOverlapScore(mission.Objective, candidate.Text) +
		contentShapeScore(candidate.Text) +
		15 + // flat community-fit baseline
		timingScore(candidate)
}

// keywordOverlapScore measures objective-word overlap, 0-25.
func keywordOverlapScore(objective, text string) int {
	objWords := tokenSet(objective)
	if len(objWords) == 0 {
		return 0
	}
	textWords := tokenSet(text)
	overlap := 0
	for word := range objWords {
		if len(word) < 4 {
			continue
		}
		if _, ok := textWords[word]; ok {
			overlap++
		}
	}
	score := int(float64(overlap) / float64(len(objWords)) * 50)
	if score > 25 {
		score = 25
	}
	return score
}

// contentShapeScore rewards questions, numerals, links, and substance, 0-25.
func contentShapeScore(text string) int {
	score := 0
	if strings.Contains(text, "?") {
		score += 8
	}
	if strings.ContainsAny(text, "0123456789") {
		score += 5
	}
	if strings.Contains(text, "http://") || strings.Contains(text, "https://") {
		score += 5
	}
	if len(text) > 80 {
		score += 7
	}
	return score
}

// timingScore derives recency-of-interest from engagement counters, 0-25.
func timingScore(candidate platform.Candidate) int {
	score := candidate.TotalEngagement() / 8
	if score > 25 {
		score = 25
	}
	return score
}
