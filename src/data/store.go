package data

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Store wraps gorm access for missions, generated actions, and run records.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) DB() *gorm.DB { return s.db }

// Mission queries.

func (s *Store) GetMission(ctx context.Context, id string) (*Mission, error) {
	var m Mission
	if err := s.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *Store) ListMissions(ctx context.Context) ([]Mission, error) {
	var missions []Mission
	err := s.db.WithContext(ctx).Order("created_at").Find(&missions).Error
	return missions, err
}

func (s *Store) ListActiveMissions(ctx context.Context) ([]Mission, error) {
	var missions []Mission
	err := s.db.WithContext(ctx).Where("active = ?", true).Find(&missions).Error
	return missions, err
}

func (s *Store) CreateMission(ctx context.Context, m *Mission) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return s.db.WithContext(ctx).Create(m).Error
}

func (s *Store) UpdateMission(ctx context.Context, m *Mission) error {
	return s.db.WithContext(ctx).Save(m).Error
}

func (s *Store) DeleteMission(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Delete(&Mission{}, "id = ?", id).Error
}

// SetMissionActive flips the persisted active flag regardless of whether an
// in-memory trigger exists.
func (s *Store) SetMissionActive(ctx context.Context, id string, active bool) error {
	return s.db.WithContext(ctx).Model(&Mission{}).Where("id = ?", id).Update("active", active).Error
}

// RecordRunOutcome bumps mission counters and stamps the last run time.
func (s *Store) RecordRunOutcome(ctx context.Context, missionID string, engagements int) error {
	now := time.Now().UTC()
	return s.db.WithContext(ctx).Model(&Mission{}).Where("id = ?", missionID).Updates(map[string]any{
		"last_run_at":       now,
		"total_runs":        gorm.Expr("total_runs + 1"),
		"total_engagements": gorm.Expr("total_engagements + ?", engagements),
	}).Error
}

// GeneratedAction queries.

// HasSentInteraction reports whether a sent record already exists for the
// (source candidate, interaction type) pair.
func (s *Store) HasSentInteraction(ctx context.Context, sourceID string, interaction InteractionType) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&GeneratedAction{}).
		Where("source_id = ? AND interaction_type = ? AND status = ?", sourceID, interaction, ActionSent).
		Count(&count).Error
	return count > 0, err
}

func (s *Store) CreateAction(ctx context.Context, a *GeneratedAction) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return s.db.WithContext(ctx).Create(a).Error
}

func (s *Store) MarkActionSent(ctx context.Context, id, remoteID string) error {
	return s.db.WithContext(ctx).Model(&GeneratedAction{}).Where("id = ?", id).
		Updates(map[string]any{"status": ActionSent, "remote_id": remoteID}).Error
}

func (s *Store) MarkActionFailed(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Model(&GeneratedAction{}).Where("id = ?", id).
		Update("status", ActionFailed).Error
}

// SentContentSince returns sent records for an actor created after the cutoff.
// Used as the near-duplicate comparison corpus.
func (s *Store) SentContentSince(ctx context.Context, userScope string, since time.Time) ([]GeneratedAction, error) {
	var actions []GeneratedAction
	err := s.db.WithContext(ctx).
		Where("user_scope = ? AND status = ? AND created_at >= ?", userScope, ActionSent, since).
		Find(&actions).Error
	return actions, err
}

// ExactContentExists checks the hash index for identical previously-sent content.
func (s *Store) ExactContentExists(ctx context.Context, userScope string, hash uint64) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&GeneratedAction{}).
		Where("user_scope = ? AND status = ? AND content_hash = ?", userScope, ActionSent, hash).
		Count(&count).Error
	return count > 0, err
}

// Run records.

func (s *Store) CreateRunRecord(ctx context.Context, r *RunRecord) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return s.db.WithContext(ctx).Create(r).Error
}

func (s *Store) RecentRuns(ctx context.Context, missionID string, limit int) ([]RunRecord, error) {
	var runs []RunRecord
	err := s.db.WithContext(ctx).Where("mission_id = ?", missionID).
		Order("started_at DESC").Limit(limit).Find(&runs).Error
	return runs, err
}

func (s *Store) RecentActions(ctx context.Context, missionID string, limit int) ([]GeneratedAction, error) {
	var actions []GeneratedAction
	err := s.db.WithContext(ctx).Where("mission_id = ?", missionID).
		Order("created_at DESC").Limit(limit).Find(&actions).Error
	return actions, err
}

// Operators.

func (s *Store) GetOperator(ctx context.Context, username string) (*Operator, error) {
	var op Operator
	if err := s.db.WithContext(ctx).First(&op, "username = ?", username).Error; err != nil {
		return nil, err
	}
	return &op, nil
}

// IsNotFound reports whether err is gorm's record-not-found.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
