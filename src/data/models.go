package data

import "time"

// Mission is a persisted engagement campaign configuration.
type Mission struct {
	ID        string `gorm:"primaryKey;size:36"`
	Name      string `gorm:"size:128;not null"`
	Objective string `gorm:"type:text;not null"`
	Intent    string `gorm:"type:text"`

	// Enabled action types with independent trigger probabilities (0-100).
	ReplyEnabled  bool
	ReplyChance   int `gorm:"default:50"`
	QuoteEnabled  bool
	QuoteChance   int `gorm:"default:30"`
	LikeEnabled   bool
	LikeChance    int `gorm:"default:60"`
	RepostEnabled bool
	RepostChance  int `gorm:"default:20"`
	FollowEnabled bool
	FollowChance  int `gorm:"default:10"`
	PostEnabled   bool
	PostChance    int `gorm:"default:25"`

	// Static content overrides; when set, generation is skipped for that type.
	ReplyContent string `gorm:"type:text"`
	QuoteContent string `gorm:"type:text"`
	PostContent  string `gorm:"type:text"`

	// Per-run content quotas.
	MinReplies           int `gorm:"default:0"`
	MinQuotes            int `gorm:"default:0"`
	MaxEngagementsPerRun int `gorm:"default:10"`

	// Targeting. Comma-joined lists; use the accessor methods.
	TargetQueries     string `gorm:"type:text"`
	AvoidedKeywords   string `gorm:"type:text"`
	StrategicKeywords string `gorm:"type:text"`
	TargetUserTypes   string `gorm:"type:text"`

	// Schedule is a cron expression (robfig syntax, @every supported).
	Schedule string `gorm:"size:64;not null"`

	// Personality traits mapped to engagement modifiers.
	Tone            string `gorm:"size:32"`
	Expertise       string `gorm:"size:32"`
	EngagementLevel string `gorm:"size:32"`
	Formality       string `gorm:"size:32"`
	Perspective     string `gorm:"size:32"`

	RiskTolerance string `gorm:"size:16;default:medium"` // low|medium|high

	// Mutable run state, updated by the orchestrator after each run.
	Active           bool
	LastRunAt        *time.Time
	TotalRuns        uint64 `gorm:"default:0"`
	TotalEngagements uint64 `gorm:"default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Mission) TableName() string { return "missions" }

// InteractionType enumerates the platform actions a mission can take.
type InteractionType string

const (
	InteractionReply  InteractionType = "reply"
	InteractionQuote  InteractionType = "quote"
	InteractionPost   InteractionType = "post"
	InteractionLike   InteractionType = "like"
	InteractionRepost InteractionType = "repost"
	InteractionFollow InteractionType = "follow"
)

// ActionStatus tracks the lifecycle of a generated action record.
type ActionStatus string

const (
	ActionPending ActionStatus = "pending"
	ActionSent    ActionStatus = "sent"
	ActionFailed  ActionStatus = "failed"
)

// GeneratedAction links a produced action to its source candidate. Records
// with status "sent" are never mutated; they are the corpus for
// near-duplicate checks, and sent reply/quote rows back the per-candidate
// presence check. The (SourceID, InteractionType) index is deliberately
// non-unique: standalone posts all carry an empty SourceID, repeat
// likes/reposts/follows across runs are legal, and a failed attempt must
// stay retryable.
type GeneratedAction struct {
	ID              string          `gorm:"primaryKey;size:36"`
	MissionID       string          `gorm:"index;size:36;not null"`
	UserScope       string          `gorm:"index;size:64;not null"`
	SourceID        string          `gorm:"size:64;index:idx_source_interaction"`
	InteractionType InteractionType `gorm:"size:16;not null;index:idx_source_interaction"`
	Content         string          `gorm:"type:text"`
	ContentHash     uint64          `gorm:"index"`
	ProviderID      string          `gorm:"size:32"`
	RemoteID        string          `gorm:"size:64"`
	TokensUsed      int
	Status          ActionStatus `gorm:"size:16;not null;default:pending"`
	CreatedAt       time.Time    `gorm:"index"`
}

func (GeneratedAction) TableName() string { return "generated_actions" }

// RunRecord is the per-run audit row written when a mission run finishes.
type RunRecord struct {
	ID              string `gorm:"primaryKey;size:36"`
	MissionID       string `gorm:"index;size:36;not null"`
	StartedAt       time.Time
	FinishedAt      time.Time
	RepliesDone     int
	QuotesDone      int
	EngagementsDone int
	CandidatesSeen  int
	Status          string `gorm:"size:16"` // completed|failed
	Error           string `gorm:"type:text"`
}

func (RunRecord) TableName() string { return "run_records" }

// Setting is a name/value configuration row.
type Setting struct {
	ID    uint16 `gorm:"primaryKey"`
	Name  string `gorm:"size:64;uniqueIndex;not null"`
	Value string `gorm:"type:text"`
}

func (Setting) TableName() string { return "settings" }

// Operator is a dashboard login.
type Operator struct {
	ID           string `gorm:"primaryKey;size:36"`
	Username     string `gorm:"size:64;uniqueIndex;not null"`
	PasswordHash string `gorm:"size:128;not null"`
	CreatedAt    time.Time
}

func (Operator) TableName() string { return "operators" }
