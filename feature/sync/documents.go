package sync

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"kiosk-sync/core/remote"
	"kiosk-sync/feature/sync/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// documentScope is one qualifying station joined to its owning plant's
// remote site id. Documents are fetched per site, not per station.
type documentScope struct {
	StationID      uint
	ExternalID     string
	StationName    string
	SiteExternalID string
}

// SyncDocuments mirrors the per-station document slot for the configured
// category. All qualifying stations are grouped by their site's remote id,
// one category-filtered fetch is issued per site, and each returned document
// is resolved back to a station through its machine code.
func (s *Service) SyncDocuments(ctx context.Context) models.SyncResult {
	result := models.NewSyncResult()

	var scopes []documentScope
	err := s.db.WithContext(ctx).Table("stations").
		Select("stations.id AS station_id, stations.external_id AS external_id, stations.name AS station_name, plants.external_id AS site_external_id").
		Joins("JOIN `lines` ON `lines`.id = stations.line_id").
		Joins("JOIN plants ON plants.id = `lines`.plant_id").
		Where("stations.status = ? AND stations.external_id IS NOT NULL", models.StatusActive).
		Where("`lines`.status = ?", models.StatusActive).
		Where("plants.status = ? AND plants.external_id IS NOT NULL", models.StatusActive).
		Scan(&scopes).Error
	if err != nil {
		result.Success = false
		result.AddError("loading stations: " + err.Error())
		return result
	}
	if len(scopes) == 0 {
		result.Success = false
		result.AddError("no active stations with an external id; run station sync first")
		return result
	}

	bySite := make(map[int][]documentScope)
	for _, scope := range scopes {
		siteID, err := strconv.Atoi(scope.SiteExternalID)
		if err != nil || siteID <= 0 {
			result.AddError(fmt.Sprintf("station %q: invalid remote site id %q", scope.StationName, scope.SiteExternalID))
			continue
		}
		bySite[siteID] = append(bySite[siteID], scope)
	}

	for siteID, siteScopes := range bySite {
		result.Merge(s.syncDocumentsForSite(ctx, siteID, siteScopes))
	}

	s.logger.Info("Document sync completed",
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
		zap.Int("errors", len(result.Errors)))
	return result
}

func (s *Service) syncDocumentsForSite(ctx context.Context, siteID int, scopes []documentScope) models.SyncResult {
	result := models.NewSyncResult()

	docs, err := s.client.Documents(ctx, siteID, s.documentCategory, "")
	if err != nil {
		result.Success = false
		result.AddError(fmt.Sprintf("site %d: fetching documents: %v", siteID, err))
		return result
	}

	// One-to-one machine-code lookup. A duplicated code keeps the first
	// station and is reported so the mirror can be repaired.
	byCode := make(map[string]documentScope, len(scopes))
	for _, scope := range scopes {
		if _, exists := byCode[scope.ExternalID]; exists {
			s.logger.Warn("Duplicate station external id",
				zap.Int("site", siteID),
				zap.String("external_id", scope.ExternalID))
			continue
		}
		byCode[scope.ExternalID] = scope
	}

	for _, doc := range docs {
		scope, ok := byCode[doc.MachineCode]
		if !ok {
			// Not an error: the remote lists documents for machines the
			// kiosk does not mirror.
			s.logger.Warn("Skipping document with unresolved machine",
				zap.Int("document", doc.ID),
				zap.String("machine_code", doc.MachineCode))
			continue
		}

		viewURL := s.resolveViewURL(ctx, doc)
		created, err := s.upsertDocument(ctx, scope.StationID, doc, viewURL)
		if err != nil {
			result.AddError(fmt.Sprintf("document %d (%s): %v", doc.ID, doc.Title, err))
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

// resolveViewURL attempts the secondary view-info fetch for a document's
// attachment URL. Its failure never fails the document: the document's own
// inline URL is the fallback, empty when neither exists.
func (s *Service) resolveViewURL(ctx context.Context, doc remote.Document) string {
	viewURL, err := s.client.DocumentViewInfo(ctx, doc.ID)
	if err != nil {
		s.logger.Warn("View info fetch failed, falling back to inline url",
			zap.Int("document", doc.ID),
			zap.Error(err))
		return doc.URL
	}
	if viewURL == "" {
		return doc.URL
	}
	return viewURL
}

// upsertDocument writes the single (station, category) document slot. A
// second document of the same category overwrites the first.
func (s *Service) upsertDocument(ctx context.Context, stationID uint, doc remote.Document, viewURL string) (bool, error) {
	if doc.Title == "" {
		return false, errors.New("document has no title")
	}

	db := s.db.WithContext(ctx)
	var row models.Document
	err := db.Where("station_id = ? AND category = ?", stationID, s.documentCategory).First(&row).Error
	if err == nil {
		updates := map[string]any{
			"title":         doc.Title,
			"url":           doc.URL,
			"view_info_url": viewURL,
			"version":       doc.Version,
		}
		return false, db.Model(&models.Document{}).Where("id = ?", row.ID).Updates(updates).Error
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	document := models.Document{
		StationID:   stationID,
		Category:    s.documentCategory,
		Title:       doc.Title,
		URL:         doc.URL,
		ViewInfoURL: viewURL,
		Version:     doc.Version,
	}
	return true, db.Create(&document).Error
}
