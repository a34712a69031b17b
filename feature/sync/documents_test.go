package sync

import (
	"context"
	"testing"

	"kiosk-sync/core/remote"
	"kiosk-sync/feature/sync/models"

	"github.com/stretchr/testify/assert"
)

func TestSyncDocuments(t *testing.T) {
	t.Run("No Qualifying Stations Is An Explicit Failure", func(t *testing.T) {
		db := setupTestDB(t, "documents_no_parents")
		service := newTestService(db, &fakeRemote{})

		result := service.SyncDocuments(context.Background())
		assert.False(t, result.Success)
		assert.Contains(t, result.Errors[0], "no active stations")
	})

	t.Run("Creates And Overwrites The Single Slot", func(t *testing.T) {
		db := setupTestDB(t, "documents_slot")
		plant := seedPlant(t, db, "10")
		line := seedLine(t, db, plant.ID, 5)
		station := seedStation(t, db, line.ID, "M-100")

		fake := &fakeRemote{
			documents: map[int][]remote.Document{10: {
				{ID: 7, Title: "Press WI v1", URL: "https://docs/7", Version: "1", MachineCode: "M-100"},
			}},
			viewInfo: map[int]string{7: "https://view/7"},
		}
		service := newTestService(db, fake)

		result := service.SyncDocuments(context.Background())
		assert.True(t, result.Success)
		assert.Equal(t, 1, result.Created)

		// A newer document of the same category replaces the slot in place.
		fake.documents[10] = []remote.Document{
			{ID: 8, Title: "Press WI v2", URL: "https://docs/8", Version: "2", MachineCode: "M-100"},
		}
		fake.viewInfo[8] = "https://view/8"

		result = service.SyncDocuments(context.Background())
		assert.True(t, result.Success)
		assert.Equal(t, 0, result.Created)
		assert.Equal(t, 1, result.Updated)

		var rows []models.Document
		db.Find(&rows)
		assert.Len(t, rows, 1)
		assert.Equal(t, station.ID, rows[0].StationID)
		assert.Equal(t, "Work Instruction", rows[0].Category)
		assert.Equal(t, "Press WI v2", rows[0].Title)
		assert.Equal(t, "https://docs/8", rows[0].URL)
		assert.Equal(t, "https://view/8", rows[0].ViewInfoURL)
		assert.Equal(t, "2", rows[0].Version)
	})

	t.Run("Unresolved Machine Is Skipped Without Error", func(t *testing.T) {
		db := setupTestDB(t, "documents_unresolved")
		plant := seedPlant(t, db, "10")
		line := seedLine(t, db, plant.ID, 5)
		seedStation(t, db, line.ID, "M-100")

		fake := &fakeRemote{documents: map[int][]remote.Document{10: {
			{ID: 7, Title: "Other machine WI", MachineCode: "M-999"},
		}}}
		service := newTestService(db, fake)

		result := service.SyncDocuments(context.Background())
		assert.True(t, result.Success)
		assert.Equal(t, 0, result.Created)
		assert.Empty(t, result.Errors)

		var count int64
		db.Model(&models.Document{}).Count(&count)
		assert.Equal(t, int64(0), count)
	})

	t.Run("View Info Failure Falls Back To Inline URL", func(t *testing.T) {
		db := setupTestDB(t, "documents_view_fallback")
		plant := seedPlant(t, db, "10")
		line := seedLine(t, db, plant.ID, 5)
		seedStation(t, db, line.ID, "M-100")

		fake := &fakeRemote{
			documents: map[int][]remote.Document{10: {
				{ID: 7, Title: "Press WI", URL: "https://docs/7", MachineCode: "M-100"},
			}},
			viewInfoErr: assert.AnError,
		}
		service := newTestService(db, fake)

		result := service.SyncDocuments(context.Background())
		assert.True(t, result.Success)
		assert.Equal(t, 1, result.Created)
		assert.Empty(t, result.Errors)

		var doc models.Document
		db.First(&doc)
		assert.Equal(t, "https://docs/7", doc.ViewInfoURL)
	})

	t.Run("Untitled Document Is A Per Record Error", func(t *testing.T) {
		db := setupTestDB(t, "documents_untitled")
		plant := seedPlant(t, db, "10")
		line := seedLine(t, db, plant.ID, 5)
		seedStation(t, db, line.ID, "M-100")

		fake := &fakeRemote{documents: map[int][]remote.Document{10: {
			{ID: 7, MachineCode: "M-100"},
		}}}
		service := newTestService(db, fake)

		result := service.SyncDocuments(context.Background())
		assert.True(t, result.Success)
		assert.Len(t, result.Errors, 1)
		assert.Contains(t, result.Errors[0], "no title")
	})

	t.Run("Fetch Failure Fails The Stage", func(t *testing.T) {
		db := setupTestDB(t, "documents_fetch_fail")
		plant := seedPlant(t, db, "10")
		line := seedLine(t, db, plant.ID, 5)
		seedStation(t, db, line.ID, "M-100")

		fake := &fakeRemote{documentsErr: assert.AnError}
		service := newTestService(db, fake)

		result := service.SyncDocuments(context.Background())
		assert.False(t, result.Success)
		assert.Contains(t, result.Errors[0], "fetching documents")
	})
}
