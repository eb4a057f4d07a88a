package engine

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pulseworks/pulsebot/src/data"
	"github.com/pulseworks/pulsebot/src/platform"
)

func fixedRand(v int64) *rand.Rand { return rand.New(fixedSource{v: v}) }

func noon() time.Time { return time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC) }

func TestDynamicProbabilityBounds(t *testing.T) {
	mission := &data.Mission{Tone: "enthusiastic", EngagementLevel: "high"}
	hot := platform.Candidate{Likes: 900, Reposts: 200, Replies: 100}

	high := DynamicProbability(100, hot, 0, data.InteractionLike, mission, noon(), fixedRand(gateClosed))
	require.LessOrEqual(t, high, 95.0)

	low := DynamicProbability(0, platform.Candidate{}, 20, data.InteractionFollow, mission, noon(), fixedRand(0))
	require.GreaterOrEqual(t, low, 5.0)
}

func TestDynamicProbabilityFatigueDecays(t *testing.T) {
	mission := &data.Mission{}
	candidate := platform.Candidate{Likes: 10}

	fresh := DynamicProbability(50, candidate, 0, data.InteractionReply, mission, noon(), fixedRand(0))
	tired := DynamicProbability(50, candidate, 6, data.InteractionReply, mission, noon(), fixedRand(0))
	require.Less(t, tired, fresh)

	// Fatigue floors out: 10 and 20 engagements decay equally.
	floor1 := DynamicProbability(50, candidate, 10, data.InteractionReply, mission, noon(), fixedRand(0))
	floor2 := DynamicProbability(50, candidate, 20, data.InteractionReply, mission, noon(), fixedRand(0))
	require.Equal(t, floor1, floor2)
}

func TestDynamicProbabilityQualityRewardsEngagement(t *testing.T) {
	mission := &data.Mission{}

	quiet := DynamicProbability(40, platform.Candidate{}, 0, data.InteractionReply, mission, noon(), fixedRand(0))
	popular := DynamicProbability(40, platform.Candidate{Likes: 60}, 0, data.InteractionReply, mission, noon(), fixedRand(0))
	require.Greater(t, popular, quiet)
}

func TestDynamicProbabilityPersonality(t *testing.T) {
	candidate := platform.Candidate{Likes: 10}

	plain := DynamicProbability(40, candidate, 0, data.InteractionReply, &data.Mission{}, noon(), fixedRand(0))
	lively := DynamicProbability(40, candidate, 0, data.InteractionReply,
		&data.Mission{Tone: "enthusiastic", EngagementLevel: "high"}, noon(), fixedRand(0))
	reserved := DynamicProbability(40, candidate, 0, data.InteractionReply,
		&data.Mission{Tone: "reserved", EngagementLevel: "low"}, noon(), fixedRand(0))

	require.Greater(t, lively, plain)
	require.Less(t, reserved, plain)
}

func TestTimeOfDayMultiplier(t *testing.T) {
	require.Equal(t, 1.1, timeOfDayMultiplier(10))
	require.Equal(t, 1.0, timeOfDayMultiplier(7))
	require.Equal(t, 1.0, timeOfDayMultiplier(20))
	require.Equal(t, 0.85, timeOfDayMultiplier(3))
}
