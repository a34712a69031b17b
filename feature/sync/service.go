package sync

import (
	"context"
	"fmt"
	gosync "sync"

	"kiosk-sync/core/logger"
	"kiosk-sync/core/remote"
	"kiosk-sync/feature/sync/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Sync types accepted by Run.
const (
	SyncTypePlants    = "plants"
	SyncTypeLines     = "lines"
	SyncTypeStations  = "stations"
	SyncTypeDocuments = "documents"
	SyncTypeAll       = "all"
)

// RemoteAPI is the slice of the remote client the reconcilers consume.
type RemoteAPI interface {
	Sites(ctx context.Context) ([]remote.Site, error)
	Lines(ctx context.Context, siteID int) ([]remote.Line, error)
	Machines(ctx context.Context, lineID int) ([]remote.Machine, error)
	Documents(ctx context.Context, siteID int, category, externalID string) ([]remote.Document, error)
	DocumentViewInfo(ctx context.Context, documentID int) (string, error)
}

// Service orchestrates reconciliation of the local mirror against the remote
// MES API, in dependency order: plants, lines, stations, documents.
type Service struct {
	db               *gorm.DB
	client           RemoteAPI
	logger           *zap.Logger
	documentCategory string

	// Serializes top-level runs. Reconciliation is sequential within a run
	// (the remote contract is GET-only with no stated rate limits and the
	// audit log needs deterministic ordering); the mutex guards against
	// double-creation when two triggers race.
	mu gosync.Mutex
}

// NewService creates a sync service. documentCategory is the fixed category
// mirrored into the per-station document slot.
func NewService(db *gorm.DB, client RemoteAPI, l *zap.Logger, documentCategory string) *Service {
	if documentCategory == "" {
		documentCategory = "Work Instruction"
	}
	return &Service{
		db:               db,
		client:           client,
		logger:           l,
		documentCategory: documentCategory,
	}
}

// Run executes one top-level sync invocation, records a sync_runs audit row
// unconditionally, and returns the complete result. triggeredBy is the
// initiating user and may be empty.
func (s *Service) Run(ctx context.Context, syncType, triggeredBy string) (models.SyncResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	runID := uuid.NewString()
	l := logger.WithRunID(s.logger, runID)
	l.Info("Starting sync run", zap.String("sync_type", syncType))

	var result models.SyncResult
	switch syncType {
	case SyncTypePlants:
		result = s.SyncPlants(ctx)
	case SyncTypeLines:
		result = s.SyncLines(ctx)
	case SyncTypeStations:
		result = s.SyncStations(ctx)
	case SyncTypeDocuments:
		result = s.SyncDocuments(ctx)
	case SyncTypeAll:
		result = s.SyncAll(ctx)
	default:
		return models.SyncResult{}, fmt.Errorf("unknown sync type %q", syncType)
	}

	s.recordRun(ctx, l, runID, syncType, triggeredBy, result)

	l.Info("Sync run finished",
		zap.String("status", result.Status()),
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
		zap.Int("errors", len(result.Errors)))
	return result, nil
}

// SyncAll reconciles every entity kind in dependency order. The aggregate
// success is the logical AND of every stage.
func (s *Service) SyncAll(ctx context.Context) models.SyncResult {
	result := models.NewSyncResult()
	result.Merge(s.SyncPlants(ctx))
	result.Merge(s.SyncLines(ctx))
	result.Merge(s.SyncStations(ctx))
	result.Merge(s.SyncDocuments(ctx))
	return result
}

// nilIfEmpty returns a pointer to s, or nil for the empty string, matching
// the nullable identifier columns.
func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
