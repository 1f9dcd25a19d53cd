package database

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/keex74/ElmaReplayIO/internal/model"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) (*Manager, *gorm.DB) {
	t.Helper()
	m := NewManager(zerolog.Nop())
	db, err := m.GetSqliteDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return m, db
}

func TestPostgresDSN(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("db.host", "db.example")
	viper.Set("db.port", "5433")
	viper.Set("db.username", "elma")
	viper.Set("db.password", "secret")
	viper.Set("db.database", "rides")

	assert.Equal(t, "host=db.example port=5433 user=elma password=secret dbname=rides sslmode=disable", PostgresDSN())
}

func TestSetup(t *testing.T) {
	m, db := openTestDB(t)

	require.NoError(t, m.Setup(db))
	assert.True(t, db.Migrator().HasTable(&model.RideRecord{}))
	assert.True(t, db.Migrator().HasTable(&model.ArchiveInfo{}))

	// running again must not duplicate the info row
	require.NoError(t, m.Setup(db))
	var count int64
	require.NoError(t, db.Model(&model.ArchiveInfo{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	var info model.ArchiveInfo
	require.NoError(t, db.First(&info).Error)
	assert.Equal(t, SchemaVersion, info.SchemaVersion)
}

func TestDumpMemoryDBToDisk(t *testing.T) {
	m, db := openTestDB(t)
	require.NoError(t, m.Setup(db))
	require.NoError(t, db.Create(&model.RideRecord{Level: "A.LEV"}).Error)

	dump := filepath.Join(t.TempDir(), "dump.db")
	require.NoError(t, os.WriteFile(dump, []byte("stale"), 0o644))
	require.NoError(t, m.DumpMemoryDBToDisk(db, dump))

	restored, err := m.GetSqliteDB(dump)
	require.NoError(t, err)
	var count int64
	require.NoError(t, restored.Model(&model.RideRecord{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
	if sqlDB, err := restored.DB(); err == nil {
		sqlDB.Close()
	}
}

func TestDumpMemoryDBToDisk_NoPath(t *testing.T) {
	m, db := openTestDB(t)
	require.Error(t, m.DumpMemoryDBToDisk(db, ""))
}
