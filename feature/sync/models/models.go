package models

import (
	"time"

	"gorm.io/gorm"
)

// Row status values. The engine never hard-deletes; inactive is reserved for
// a future deactivation pass (see DESIGN.md).
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Plant is a local mirror of a remote production site. ExternalID holds the
// remote site id and is nil until the plant is linked to the remote system.
type Plant struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ExternalID *string   `gorm:"column:external_id;size:64;uniqueIndex" json:"external_id"`
	Name       string    `gorm:"size:255" json:"name"`
	Location   string    `gorm:"size:255" json:"location"`
	Status     string    `gorm:"size:16;default:active" json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Line is a local mirror of a remote production line. IDL2L is the remote
// numeric id and the primary matching key for child lookups; ExternalID is
// the legacy alphanumeric code.
type Line struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	PlantID    uint      `gorm:"index" json:"plant_id"`
	IDL2L      *int      `gorm:"column:id_l2l;uniqueIndex" json:"id_l2l"`
	ExternalID *string   `gorm:"column:external_id;size:64;index" json:"external_id"`
	Name       string    `gorm:"size:255" json:"name"`
	Status     string    `gorm:"size:16;default:active" json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Station is a local mirror of a remote machine on a line.
type Station struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	LineID      uint      `gorm:"index" json:"line_id"`
	StationID   *int      `gorm:"column:station_id;uniqueIndex" json:"station_id"`
	ExternalID  *string   `gorm:"column:external_id;size:64;index" json:"external_id"`
	Name        string    `gorm:"size:255" json:"name"`
	Description string    `gorm:"size:1024" json:"description"`
	Status      string    `gorm:"size:16;default:active" json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Document is the single document slot of one (station, category) pair. A
// newer remote document of the same category overwrites the row rather than
// appending.
type Document struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	StationID   uint      `gorm:"index:idx_station_category,unique" json:"station_id"`
	Category    string    `gorm:"size:64;index:idx_station_category,unique" json:"category"`
	Title       string    `gorm:"size:255" json:"title"`
	URL         string    `gorm:"size:1024" json:"url"`
	ViewInfoURL string    `gorm:"size:1024" json:"view_info_url"`
	Version     string    `gorm:"size:64" json:"version"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// SyncRun is one append-only audit row per top-level sync invocation.
type SyncRun struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	RunID       string    `gorm:"size:36;index" json:"run_id"`
	SyncType    string    `gorm:"size:32" json:"sync_type"`
	Status      string    `gorm:"size:16" json:"status"`
	Created     int       `json:"created"`
	Updated     int       `json:"updated"`
	Deactivated int       `json:"deactivated"`
	Errors      string    `gorm:"type:text" json:"errors"`
	TriggeredBy *string   `gorm:"size:128" json:"triggered_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// Migrate creates or updates the tables owned by the sync engine.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Plant{},
		&Line{},
		&Station{},
		&Document{},
		&SyncRun{},
	)
}
