package sync

import (
	"errors"
	"strconv"

	"gorm.io/gorm"
)

// MatchStrategy is one lookup in the matching cascade. Strategies are tried
// in a fixed order per entity kind until one finds a local row.
type MatchStrategy int

const (
	// ByRemoteID matches on the entity's dedicated remote-id column
	// (id_l2l for lines, station_id for stations).
	ByRemoteID MatchStrategy = iota
	// ByExternalID matches the local external_id column against the remote
	// alphanumeric code.
	ByExternalID
	// ByLegacyExternalID matches the local external_id column against the
	// remote numeric id. Older deployments stored the numeric id there.
	ByLegacyExternalID
)

func (s MatchStrategy) String() string {
	switch s {
	case ByRemoteID:
		return "remote_id"
	case ByExternalID:
		return "external_id"
	case ByLegacyExternalID:
		return "legacy_external_id"
	}
	return "unknown"
}

// matchKeys carries the candidate identifiers derived from one remote record.
type matchKeys struct {
	remoteID int
	code     string
}

// clause builds the WHERE condition for this strategy against the given
// remote-id column. ok is false when the record has no usable key for it.
func (s MatchStrategy) clause(remoteIDColumn string, keys matchKeys) (string, any, bool) {
	switch s {
	case ByRemoteID:
		if keys.remoteID <= 0 || remoteIDColumn == "" {
			return "", nil, false
		}
		return remoteIDColumn + " = ?", keys.remoteID, true
	case ByExternalID:
		if keys.code == "" {
			return "", nil, false
		}
		return "external_id = ?", keys.code, true
	case ByLegacyExternalID:
		if keys.remoteID <= 0 {
			return "", nil, false
		}
		return "external_id = ?", strconv.Itoa(keys.remoteID), true
	}
	return "", nil, false
}

// Cascades per entity kind. Stations are the only entity whose legacy code
// is probed before the numeric fallback; plants carry the remote site id in
// external_id, so the numeric probe is their whole cascade.
var (
	plantStrategies   = []MatchStrategy{ByLegacyExternalID}
	lineStrategies    = []MatchStrategy{ByRemoteID, ByLegacyExternalID}
	stationStrategies = []MatchStrategy{ByRemoteID, ByExternalID, ByLegacyExternalID}
)

// firstMatch evaluates the cascade in order and returns the first local row
// it finds. The bool reports whether any strategy matched.
func firstMatch[T any](db *gorm.DB, strategies []MatchStrategy, remoteIDColumn string, keys matchKeys) (*T, bool, error) {
	for _, s := range strategies {
		cond, arg, ok := s.clause(remoteIDColumn, keys)
		if !ok {
			continue
		}
		var row T
		err := db.Where(cond, arg).First(&row).Error
		if err == nil {
			return &row, true, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, err
		}
	}
	return nil, false, nil
}
