// Package events is the observability sink for the engine. Events are
// emitted at the point of decision as structured records, written to a redis
// stream for external viewers and mirrored to the service log.
package events

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const stream = "pulsebot.events"

// Category groups events by subsystem.
type Category string

const (
	CategoryMission    Category = "mission"
	CategoryQuota      Category = "quota"
	CategoryEngagement Category = "engagement"
	CategorySystem     Category = "system"
)

// Level grades event severity.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
	LevelSuccess Level = "success"
)

// Event is a single structured observability record.
type Event struct {
	Category  Category
	Level     Level
	MissionID string
	Message   string
	Fields    map[string]any
}

// Sink accepts engine events. Implementations must be safe for concurrent use.
type Sink interface {
	Emit(ctx context.Context, ev Event)
}

// StreamSink writes events to a redis stream and mirrors them to the log.
// A nil redis client degrades to log-only.
type StreamSink struct {
	rdb    *redis.Client
	logger zerolog.Logger
}

func NewStreamSink(rdb *redis.Client, logger zerolog.Logger) *StreamSink {
	return &StreamSink{rdb: rdb, logger: logger}
}

func (s *StreamSink) Emit(ctx context.Context, ev Event) {
	entry := s.logger.Info()
	switch ev.Level {
	case LevelWarning:
		entry = s.logger.Warn()
	case LevelError:
		entry = s.logger.Error()
	}
	entry = entry.Str("category", string(ev.Category)).Str("level", string(ev.Level))
	if ev.MissionID != "" {
		entry = entry.Str("mission_id", ev.MissionID)
	}
	for k, v := range ev.Fields {
		entry = entry.Interface(k, v)
	}
	entry.Msg(ev.Message)

	if s.rdb == nil {
		return
	}

	values := map[string]any{
		"category": string(ev.Category),
		"level":    string(ev.Level),
		"message":  ev.Message,
		"at":       time.Now().UTC().Format(time.RFC3339),
	}
	if ev.MissionID != "" {
		values["mission_id"] = ev.MissionID
	}
	for k, v := range ev.Fields {
		values[k] = v
	}
	if err := s.rdb.XAdd(ctx, &redis.XAddArgs{Stream: stream, MaxLen: 10000, Approx: true, Values: values}).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("event stream publish failed")
	}
}

// NopSink discards events; used in tests.
type NopSink struct{}

func (NopSink) Emit(context.Context, Event) {}
