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

// SyncPlants reconciles the local plants table against the remote sites
// listing. Each remote site maps to at most one local plant, matched on the
// remote site id stored in external_id.
func (s *Service) SyncPlants(ctx context.Context) models.SyncResult {
	result := models.NewSyncResult()

	sites, err := s.client.Sites(ctx)
	if err != nil {
		result.Success = false
		result.AddError("fetching sites: " + err.Error())
		return result
	}

	for _, site := range sites {
		created, err := s.upsertPlant(ctx, site)
		if err != nil {
			result.AddError(fmt.Sprintf("site %d (%s): %v", site.ID, site.Name, err))
			continue
		}
		if created {
			result.Created++
		} else {
			result.Updated++
		}
	}

	s.logger.Info("Plant sync completed",
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
		zap.Int("errors", len(result.Errors)))
	return result
}

// upsertPlant updates the matching local plant or creates a new one.
// The bool reports whether a row was created.
func (s *Service) upsertPlant(ctx context.Context, site remote.Site) (bool, error) {
	if site.ID <= 0 {
		return false, errors.New("site has no id")
	}
	if site.Name == "" {
		return false, errors.New("site has no name")
	}

	db := s.db.WithContext(ctx)
	row, found, err := firstMatch[models.Plant](db, plantStrategies, "", matchKeys{remoteID: site.ID})
	if err != nil {
		return false, err
	}

	externalID := strconv.Itoa(site.ID)
	if found {
		updates := map[string]any{
			"name":        site.Name,
			"location":    site.Location,
			"external_id": externalID,
			"status":      models.StatusActive,
		}
		return false, db.Model(&models.Plant{}).Where("id = ?", row.ID).Updates(updates).Error
	}

	plant := models.Plant{
		ExternalID: &externalID,
		Name:       site.Name,
		Location:   site.Location,
		Status:     models.StatusActive,
	}
	return true, db.Create(&plant).Error
}
