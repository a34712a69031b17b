package sync

import (
	"context"
	"strings"

	"kiosk-sync/feature/sync/models"

	"go.uber.org/zap"
)

// recordRun persists the audit row for one top-level invocation. Recording
// is unconditional: failed runs leave a trail too. A failure to write the
// row is logged but never masks the sync result itself.
func (s *Service) recordRun(ctx context.Context, l *zap.Logger, runID, syncType, triggeredBy string, result models.SyncResult) {
	run := models.SyncRun{
		RunID:       runID,
		SyncType:    syncType,
		Status:      result.Status(),
		Created:     result.Created,
		Updated:     result.Updated,
		Deactivated: result.Deactivated,
		Errors:      strings.Join(result.Errors, "\n"),
		TriggeredBy: nilIfEmpty(triggeredBy),
	}
	if err := s.db.WithContext(ctx).Create(&run).Error; err != nil {
		l.Error("Failed to record sync run", zap.Error(err))
	}
}

// RecentRuns returns the most recent sync run log rows, newest first.
func (s *Service) RecentRuns(ctx context.Context, limit int) ([]models.SyncRun, error) {
	if limit <= 0 {
		limit = 20
	}
	var runs []models.SyncRun
	err := s.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&runs).Error
	return runs, err
}
