package services

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/floorwarden/warden/internal/cache"
	"github.com/floorwarden/warden/internal/db"
	"github.com/floorwarden/warden/internal/models"
)

// setupDB points db.Conn at a fresh SQLite file and resets the stats cache.
func setupDB(t *testing.T) {
	t.Helper()
	require.NoError(t, db.Init(filepath.Join(t.TempDir(), "test.db")))
	t.Cleanup(func() {
		if sqlDB, err := db.Conn().DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	SetCache(cache.NewMemory())
}

func seedFloor(t *testing.T, number int) models.Floor {
	t.Helper()
	f := models.Floor{Name: "floor", Number: number, Gender: "male"}
	require.NoError(t, db.Conn().Create(&f).Error)
	return f
}

func seedStudent(t *testing.T, floorID uint, name, room string) models.Student {
	t.Helper()
	st, err := CreateStudent(floorID, StudentInput{Name: name, Room: room})
	require.NoError(t, err)
	return st
}
