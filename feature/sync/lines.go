package sync

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"kiosk-sync/core/remote"
	"kiosk-sync/feature/sync/models"

	"go.uber.org/zap"
)

// SyncLines reconciles local lines against the remote listing, one fetch per
// qualifying plant (active, with a remote site id configured).
func (s *Service) SyncLines(ctx context.Context) models.SyncResult {
	result := models.NewSyncResult()

	var plants []models.Plant
	err := s.db.WithContext(ctx).
		Where("status = ? AND external_id IS NOT NULL", models.StatusActive).
		Find(&plants).Error
	if err != nil {
		result.Success = false
		result.AddError("loading plants: " + err.Error())
		return result
	}
	if len(plants) == 0 {
		result.Success = false
		result.AddError("no active plants with a remote site id configured; run plant sync first")
		return result
	}

	for _, plant := range plants {
		result.Merge(s.syncLinesForPlant(ctx, plant))
	}

	s.logger.Info("Line sync completed",
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
		zap.Int("errors", len(result.Errors)))
	return result
}

func (s *Service) syncLinesForPlant(ctx context.Context, plant models.Plant) models.SyncResult {
	result := models.NewSyncResult()

	siteID, err := strconv.Atoi(*plant.ExternalID)
	if err != nil || siteID <= 0 {
		result.AddError(fmt.Sprintf("plant %q: invalid remote site id %q", plant.Name, *plant.ExternalID))
		return result
	}

	lines, err := s.client.Lines(ctx, siteID)
	if err != nil {
		result.Success = false
		result.AddError(fmt.Sprintf("plant %q: fetching lines: %v", plant.Name, err))
		return result
	}

	for _, line := range lines {
		created, err := s.upsertLine(ctx, plant.ID, line)
		if err != nil {
			result.AddError(fmt.Sprintf("line %d (%s): %v", line.ID, line.Code, err))
			continue
		}
		if created {
			result.Created++
		} else {
			result.Updated++
		}
	}
	return result
}

// upsertLine runs the line matching cascade (id_l2l, then the legacy
// numeric-id-in-external_id fallback) and updates or creates the local row.
func (s *Service) upsertLine(ctx context.Context, plantID uint, line remote.Line) (bool, error) {
	if line.ID <= 0 {
		return false, errors.New("line has no remote id")
	}
	name := line.Name
	if name == "" {
		name = line.Code
	}
	if name == "" {
		return false, errors.New("line has no name or code")
	}

	db := s.db.WithContext(ctx)
	row, found, err := firstMatch[models.Line](db, lineStrategies, "id_l2l", matchKeys{remoteID: line.ID, code: line.Code})
	if err != nil {
		return false, err
	}

	if found {
		updates := map[string]any{
			"name":        name,
			"plant_id":    plantID,
			"id_l2l":      line.ID,
			"external_id": nilIfEmpty(line.Code),
			"status":      models.StatusActive,
		}
		return false, db.Model(&models.Line{}).Where("id = ?", row.ID).Updates(updates).Error
	}

	remoteID := line.ID
	newLine := models.Line{
		PlantID:    plantID,
		IDL2L:      &remoteID,
		ExternalID: nilIfEmpty(line.Code),
		Name:       name,
		Status:     models.StatusActive,
	}
	return true, db.Create(&newLine).Error
}
