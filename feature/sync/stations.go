package sync

import (
	"context"
	"errors"
	"fmt"

	"kiosk-sync/core/remote"
	"kiosk-sync/feature/sync/models"

	"go.uber.org/zap"
)

// SyncStations reconciles local stations against the remote machines of each
// qualifying line (active, with id_l2l resolved). Lines that never got a
// remote id are skipped entirely: no fetch is attempted for them.
func (s *Service) SyncStations(ctx context.Context) models.SyncResult {
	result := models.NewSyncResult()

	var lines []models.Line
	err := s.db.WithContext(ctx).
		Where("status = ? AND id_l2l IS NOT NULL", models.StatusActive).
		Find(&lines).Error
	if err != nil {
		result.Success = false
		result.AddError("loading lines: " + err.Error())
		return result
	}
	if len(lines) == 0 {
		result.Success = false
		result.AddError("no active lines with a remote id; run line sync first")
		return result
	}

	for _, line := range lines {
		result.Merge(s.syncStationsForLine(ctx, line))
	}

	s.logger.Info("Station sync completed",
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
		zap.Int("errors", len(result.Errors)))
	return result
}

func (s *Service) syncStationsForLine(ctx context.Context, line models.Line) models.SyncResult {
	result := models.NewSyncResult()

	machines, err := s.client.Machines(ctx, *line.IDL2L)
	if err != nil {
		result.Success = false
		result.AddError(fmt.Sprintf("line %q: fetching machines: %v", line.Name, err))
		return result
	}

	for _, machine := range machines {
		created, err := s.upsertStation(ctx, line.ID, machine)
		if err != nil {
			result.AddError(fmt.Sprintf("machine %d (%s): %v", machine.ID, machine.Code, err))
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

// upsertStation runs the full station cascade: dedicated station_id column,
// then external_id against the alphanumeric code, then external_id against
// the numeric id for rows written by older deployments.
func (s *Service) upsertStation(ctx context.Context, lineID uint, machine remote.Machine) (bool, error) {
	if machine.ID <= 0 {
		return false, errors.New("machine has no remote id")
	}
	name := machine.Name
	if name == "" {
		name = machine.Code
	}
	if name == "" {
		return false, errors.New("machine has no name or code")
	}

	db := s.db.WithContext(ctx)
	row, found, err := firstMatch[models.Station](db, stationStrategies, "station_id", matchKeys{remoteID: machine.ID, code: machine.Code})
	if err != nil {
		return false, err
	}

	if found {
		updates := map[string]any{
			"name":        name,
			"line_id":     lineID,
			"station_id":  machine.ID,
			"external_id": nilIfEmpty(machine.Code),
			"description": machine.Description,
			"status":      models.StatusActive,
		}
		return false, db.Model(&models.Station{}).Where("id = ?", row.ID).Updates(updates).Error
	}

	remoteID := machine.ID
	station := models.Station{
		LineID:      lineID,
		StationID:   &remoteID,
		ExternalID:  nilIfEmpty(machine.Code),
		Name:        name,
		Description: machine.Description,
		Status:      models.StatusActive,
	}
	return true, db.Create(&station).Error
}
