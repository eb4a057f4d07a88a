package engine

import (
	"math/rand"
	"strings"
	"time"

	"github.com/pulseworks/pulsebot/src/data"
	"github.com/pulseworks/pulsebot/src/platform"
)

// Probability bounds for organic actions.
const (
	minProbability = 5.0
	maxProbability = 95.0
)

var actionTypeMultipliers = map[data.InteractionType]float64{
	data.InteractionReply:  1.0,
	data.InteractionQuote:  0.9,
	data.InteractionPost:   1.0,
	data.InteractionLike:   1.2,
	data.InteractionRepost: 0.8,
	data.InteractionFollow: 0.7,
}

var traitMultipliers = map[string]float64{
	// tone
	"enthusiastic": 1.15,
	"humorous":     1.10,
	"professional": 1.00,
	"reserved":     0.90,
	// engagement level
	"high":   1.20,
	"medium": 1.00,
	"low":    0.80,
	// formality
	"casual": 1.10,
	"formal": 0.95,
	// expertise
	"expert":     1.05,
	"generalist": 1.00,
	// perspective
	"optimistic": 1.05,
	"contrarian": 1.10,
	"balanced":   1.00,
}

// DynamicProbability computes the organic-phase trigger probability for an
// action, always within [5, 95]:
// base x quality x fatigue x time-of-day x variance x action-type x personality.
func DynamicProbability(
	base int,
	candidate platform.Candidate,
	engagementsDone int,
	interaction data.InteractionType,
	mission *data.Mission,
	now time.Time,
	rng *rand.Rand,
) float64 {
	prob := float64(base)

	// Quality scales with candidate engagement, capped at +50%.
	quality := 1.0 + float64(candidate.TotalEngagement())/200.0
	if quality > 1.5 {
		quality = 1.5
	}
	prob *= quality

	// Fatigue decays with engagements already performed this run, floor 0.6.
	fatigue := 1.0 - 0.05*float64(engagementsDone)
	if fatigue < 0.6 {
		fatigue = 0.6
	}
	prob *= fatigue

	prob *= timeOfDayMultiplier(now.Hour())
	prob *= 0.85 + rng.Float64()*0.30

	if mult, ok := actionTypeMultipliers[interaction]; ok {
		prob *= mult
	}
	prob *= personalityMultiplier(mission)

	return clamp(prob, minProbability, maxProbability)
}

// timeOfDayMultiplier slightly favors conventional business hours.
func timeOfDayMultiplier(hour int) float64 {
	switch {
	case hour >= 9 && hour < 17:
		return 1.1
	case hour >= 6 && hour < 9, hour >= 17 && hour < 22:
		return 1.0
	default:
		return 0.85
	}
}

func personalityMultiplier(mission *data.Mission) float64 {
	mult := 1.0
	for _, trait := range []string{
		mission.Tone,
		mission.Expertise,
		mission.EngagementLevel,
		mission.Formality,
		mission.Perspective,
	} {
		if m, ok := traitMultipliers[strings.ToLower(strings.TrimSpace(trait))]; ok {
			mult *= m
		}
	}
	return mult
}
