package config

import (
	"time"
)

// EngineConfig exposes knobs for the mission execution engine.
type EngineConfig struct {
	// ActorID is the platform user id the bot acts as.
	ActorID string

	// RelevanceThreshold is the minimum 0-100 assessment score to keep a
	// candidate.
	RelevanceThreshold int

	// BudgetWindow is the platform rate-limit window length.
	BudgetWindow time.Duration
	// Budgets caps committed usage per resource per window.
	Budgets map[string]int

	// SearchLimit bounds candidates fetched per query.
	SearchLimit int
	// InterActionDelay is the pacing pause after every successful action.
	InterActionDelay time.Duration

	// DedupWindow bounds the near-duplicate comparison corpus.
	DedupWindow time.Duration
	// DedupSimilarity is the Jaccard threshold above which a post is a duplicate.
	DedupSimilarity float64
}

// LoadEngineConfig reads engine configuration from settings with env fallback.
func LoadEngineConfig() EngineConfig {
	budgets := map[string]int{
		"like":   getIntSetting("budget_like", "BUDGET_LIKE", 300),
		"search": getIntSetting("budget_search", "BUDGET_SEARCH", 180),
		"reply":  getIntSetting("budget_reply", "BUDGET_REPLY", 50),
		"repost": getIntSetting("budget_repost", "BUDGET_REPOST", 50),
		"post":   getIntSetting("budget_post", "BUDGET_POST", 25),
		"follow": getIntSetting("budget_follow", "BUDGET_FOLLOW", 30),
	}

	return EngineConfig{
		ActorID:            GetSetting("platform_actor_id", "PLATFORM_ACTOR_ID", ""),
		RelevanceThreshold: getIntSetting("engine_relevance_threshold", "ENGINE_RELEVANCE_THRESHOLD", 35),
		BudgetWindow:       getDurationSetting("budget_window", "BUDGET_WINDOW", 15*time.Minute),
		Budgets:            budgets,
		SearchLimit:        getIntSetting("engine_search_limit", "ENGINE_SEARCH_LIMIT", 20),
		InterActionDelay:   getDurationSetting("engine_action_delay", "ENGINE_ACTION_DELAY", 2*time.Second),
		DedupWindow:        getDurationSetting("engine_dedup_window", "ENGINE_DEDUP_WINDOW", 30*24*time.Hour),
		DedupSimilarity:    getFloatSetting("engine_dedup_similarity", "ENGINE_DEDUP_SIMILARITY", 0.8),
	}
}

// PlatformConfig locates the social platform API.
type PlatformConfig struct {
	Endpoint string
	Token    string
	Language string
}

func LoadPlatformConfig() PlatformConfig {
	return PlatformConfig{
		Endpoint: GetSetting("platform_endpoint", "PLATFORM_ENDPOINT", ""),
		Token:    GetSetting("platform_token", "PLATFORM_TOKEN", ""),
		Language: GetSetting("platform_language", "PLATFORM_LANGUAGE", "en"),
	}
}

// NotifyConfig configures the optional Discord run-summary notifier.
type NotifyConfig struct {
	Enabled   bool
	Token     string
	ChannelID string
}

func LoadNotifyConfig() NotifyConfig {
	return NotifyConfig{
		Enabled:   getBoolSetting("notify_enabled", "NOTIFY_ENABLED", false),
		Token:     GetSetting("discord_token", "DISCORD_TOKEN", ""),
		ChannelID: GetSetting("notify_channel_id", "NOTIFY_CHANNEL_ID", ""),
	}
}

// APIConfig configures the operator HTTP API.
type APIConfig struct {
	Enabled   bool
	Listen    string
	JWTSecret string
}

func LoadAPIConfig() APIConfig {
	return APIConfig{
		Enabled:   getBoolSetting("api_enabled", "API_ENABLED", true),
		Listen:    GetSetting("api_listen", "API_LISTEN", ":8080"),
		JWTSecret: GetSetting("api_jwt_secret", "API_JWT_SECRET", ""),
	}
}
