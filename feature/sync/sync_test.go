package sync

import (
	"context"
	"fmt"
	"testing"

	"kiosk-sync/core/remote"
	"kiosk-sync/feature/sync/models"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB creates an in-memory SQLite DB with the engine's tables.
func setupTestDB(t *testing.T, dbName string) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", dbName)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	if err := models.Migrate(db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

// fakeRemote is a scripted RemoteAPI implementation. Per-call errors simulate
// transport failures; machineCalls records which line ids were fetched so
// dependency gating can be asserted.
type fakeRemote struct {
	sites     []remote.Site
	lines     map[int][]remote.Line
	machines  map[int][]remote.Machine
	documents map[int][]remote.Document
	viewInfo  map[int]string

	sitesErr     error
	linesErr     error
	machinesErr  error
	documentsErr error
	viewInfoErr  error

	machineCalls []int
}

func (f *fakeRemote) Sites(ctx context.Context) ([]remote.Site, error) {
	if f.sitesErr != nil {
		return nil, f.sitesErr
	}
	return f.sites, nil
}

func (f *fakeRemote) Lines(ctx context.Context, siteID int) ([]remote.Line, error) {
	if f.linesErr != nil {
		return nil, f.linesErr
	}
	return f.lines[siteID], nil
}

func (f *fakeRemote) Machines(ctx context.Context, lineID int) ([]remote.Machine, error) {
	f.machineCalls = append(f.machineCalls, lineID)
	if f.machinesErr != nil {
		return nil, f.machinesErr
	}
	return f.machines[lineID], nil
}

func (f *fakeRemote) Documents(ctx context.Context, siteID int, category, externalID string) ([]remote.Document, error) {
	if f.documentsErr != nil {
		return nil, f.documentsErr
	}
	return f.documents[siteID], nil
}

func (f *fakeRemote) DocumentViewInfo(ctx context.Context, documentID int) (string, error) {
	if f.viewInfoErr != nil {
		return "", f.viewInfoErr
	}
	return f.viewInfo[documentID], nil
}

func newTestService(db *gorm.DB, client RemoteAPI) *Service {
	return NewService(db, client, zap.NewNop(), "Work Instruction")
}

// seedPlant inserts an active plant linked to the given remote site id.
func seedPlant(t *testing.T, db *gorm.DB, siteID string) models.Plant {
	t.Helper()
	plant := models.Plant{
		ExternalID: &siteID,
		Name:       "Plant " + siteID,
		Status:     models.StatusActive,
	}
	if err := db.Create(&plant).Error; err != nil {
		t.Fatalf("failed to seed plant: %v", err)
	}
	return plant
}

// seedLine inserts an active line; remoteID may be 0 to leave id_l2l null.
func seedLine(t *testing.T, db *gorm.DB, plantID uint, remoteID int) models.Line {
	t.Helper()
	line := models.Line{
		PlantID: plantID,
		Name:    fmt.Sprintf("Line %d", remoteID),
		Status:  models.StatusActive,
	}
	if remoteID > 0 {
		line.IDL2L = &remoteID
	}
	if err := db.Create(&line).Error; err != nil {
		t.Fatalf("failed to seed line: %v", err)
	}
	return line
}

// seedStation inserts an active station with the given external code.
func seedStation(t *testing.T, db *gorm.DB, lineID uint, code string) models.Station {
	t.Helper()
	station := models.Station{
		LineID:     lineID,
		ExternalID: &code,
		Name:       "Station " + code,
		Status:     models.StatusActive,
	}
	if err := db.Create(&station).Error; err != nil {
		t.Fatalf("failed to seed station: %v", err)
	}
	return station
}
