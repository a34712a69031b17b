package sync

import (
	"testing"

	"kiosk-sync/feature/sync/models"

	"github.com/stretchr/testify/assert"
)

func TestMatchStrategyClause(t *testing.T) {
	keys := matchKeys{remoteID: 42, code: "M-42"}

	t.Run("ByRemoteID", func(t *testing.T) {
		cond, arg, ok := ByRemoteID.clause("station_id", keys)
		assert.True(t, ok)
		assert.Equal(t, "station_id = ?", cond)
		assert.Equal(t, 42, arg)

		_, _, ok = ByRemoteID.clause("", keys)
		assert.False(t, ok)

		_, _, ok = ByRemoteID.clause("station_id", matchKeys{code: "M-42"})
		assert.False(t, ok)
	})

	t.Run("ByExternalID", func(t *testing.T) {
		cond, arg, ok := ByExternalID.clause("station_id", keys)
		assert.True(t, ok)
		assert.Equal(t, "external_id = ?", cond)
		assert.Equal(t, "M-42", arg)

		_, _, ok = ByExternalID.clause("station_id", matchKeys{remoteID: 42})
		assert.False(t, ok)
	})

	t.Run("ByLegacyExternalID", func(t *testing.T) {
		cond, arg, ok := ByLegacyExternalID.clause("station_id", keys)
		assert.True(t, ok)
		assert.Equal(t, "external_id = ?", cond)
		assert.Equal(t, "42", arg)

		_, _, ok = ByLegacyExternalID.clause("station_id", matchKeys{code: "M-42"})
		assert.False(t, ok)
	})
}

func TestFirstMatch(t *testing.T) {
	t.Run("Remote Id Wins Over External Id", func(t *testing.T) {
		db := setupTestDB(t, "firstmatch_order")
		plant := seedPlant(t, db, "10")
		line := seedLine(t, db, plant.ID, 5)

		// Two stations that both look like machine 100: one holds the remote
		// id, the other only the code. The cascade must prefer the former.
		remoteID := 100
		byID := models.Station{LineID: line.ID, StationID: &remoteID, Name: "By id", Status: models.StatusActive}
		assert.NoError(t, db.Create(&byID).Error)
		seedStation(t, db, line.ID, "M-100")

		row, found, err := firstMatch[models.Station](db, stationStrategies, "station_id",
			matchKeys{remoteID: 100, code: "M-100"})
		assert.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, byID.ID, row.ID)
	})

	t.Run("Falls Through To Legacy Match", func(t *testing.T) {
		db := setupTestDB(t, "firstmatch_fallthrough")
		plant := seedPlant(t, db, "10")
		line := seedLine(t, db, plant.ID, 5)
		legacy := seedStation(t, db, line.ID, "100")

		row, found, err := firstMatch[models.Station](db, stationStrategies, "station_id",
			matchKeys{remoteID: 100, code: "M-100"})
		assert.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, legacy.ID, row.ID)
	})

	t.Run("No Match", func(t *testing.T) {
		db := setupTestDB(t, "firstmatch_none")

		row, found, err := firstMatch[models.Station](db, stationStrategies, "station_id",
			matchKeys{remoteID: 100, code: "M-100"})
		assert.NoError(t, err)
		assert.False(t, found)
		assert.Nil(t, row)
	})
}
