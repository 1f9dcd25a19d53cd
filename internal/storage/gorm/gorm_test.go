package gormstorage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/keex74/ElmaReplayIO/internal/database"
	"github.com/keex74/ElmaReplayIO/internal/storage"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// Compile-time interface check
var _ storage.Backend = (*Backend)(nil)

func testDB(t *testing.T) (*database.Manager, *gorm.DB) {
	t.Helper()
	m := database.NewManager(zerolog.Nop())
	db, err := m.GetSqliteDB(filepath.Join(t.TempDir(), "rides.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return m, db
}

func newTestBackend(t *testing.T, interval time.Duration) *Backend {
	t.Helper()
	m, db := testDB(t)
	b := New(Dependencies{DB: db, Setup: m.Setup, FlushInterval: interval})
	require.NoError(t, b.Init())
	t.Cleanup(func() { b.Close() })
	return b
}

func ride(level string, apples ...time.Duration) *storage.Ride {
	return &storage.Ride{
		Level:      level,
		Link:       3,
		Frames:     30,
		Duration:   time.Second,
		AppleTimes: apples,
		ArchivedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestNew_Defaults(t *testing.T) {
	b := New(Dependencies{})
	require.NotNil(t, b)
	assert.Equal(t, DefaultFlushInterval, b.deps.FlushInterval)
	assert.NotNil(t, b.deps.Logger)
}

func TestInit_NoDB(t *testing.T) {
	require.Error(t, New(Dependencies{}).Init())
}

func TestSaveRide_Queued(t *testing.T) {
	b := newTestBackend(t, time.Hour)

	require.NoError(t, b.SaveRide(ride("A.LEV")))
	require.NoError(t, b.SaveRide(ride("B.LEV")))
	assert.Equal(t, 2, b.Pending())

	got, err := b.Rides("")
	require.NoError(t, err)
	assert.Equal(t, 0, b.Pending())
	require.Len(t, got, 2)
	assert.Equal(t, uint(1), got[0].ID)
	assert.Equal(t, "A.LEV", got[0].Level)
	assert.Equal(t, uint(2), got[1].ID)
}

func TestRides_FilterAndConvert(t *testing.T) {
	b := newTestBackend(t, time.Hour)
	finished := ride("A.LEV", 250*time.Millisecond, time.Second)
	finished.Finished = true
	finished.Finish = 1500 * time.Millisecond
	require.NoError(t, b.SaveRide(finished))
	require.NoError(t, b.SaveRide(ride("B.LEV")))

	got, err := b.Rides("A.LEV")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, []time.Duration{250 * time.Millisecond, time.Second}, got[0].AppleTimes)
	assert.Equal(t, 2, got[0].Apples())
	assert.True(t, got[0].Finished)
	assert.Equal(t, 1500*time.Millisecond, got[0].Finish)
	assert.Equal(t, time.Second, got[0].Duration)

	none, err := b.Rides("C.LEV")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestWriteLoop_Flushes(t *testing.T) {
	b := newTestBackend(t, 20*time.Millisecond)
	require.NoError(t, b.SaveRide(ride("A.LEV")))

	require.Eventually(t, func() bool { return b.Pending() == 0 }, 5*time.Second, 10*time.Millisecond)
}

func TestClose_FlushesPending(t *testing.T) {
	m, db := testDB(t)
	b := New(Dependencies{DB: db, Setup: m.Setup, FlushInterval: time.Hour})
	require.NoError(t, b.Init())
	require.NoError(t, b.SaveRide(ride("A.LEV")))

	require.NoError(t, b.Close())
	require.NoError(t, b.Close(), "second close is a no-op")

	var count int64
	require.NoError(t, db.Table("rides").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
