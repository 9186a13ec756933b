package datastore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Keithclinton/Counter-Front/internal/errors"
)

// setupTestDB creates an in-memory SQLite database for testing
func setupTestDB(t *testing.T) *DataStore {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&ScanResult{})
	require.NoError(t, err)

	return &DataStore{DB: db}
}

func ptr(v float64) *float64 { return &v }

func TestSaveAssignsIDAndTimestamp(t *testing.T) {
	t.Parallel()
	ds := setupTestDB(t)

	scan := &ScanResult{
		Brand:       "County",
		BatchNo:     "COU-2026-a1b2",
		Date:        "2026-09-01",
		Confidence:  0.87,
		IsAuthentic: true,
		Latitude:    ptr(-1.2921),
		Longitude:   ptr(36.8219),
	}

	require.NoError(t, ds.Save(scan))
	assert.NotZero(t, scan.ID)
	assert.WithinDuration(t, time.Now(), scan.CreatedAt, 5*time.Second)
}

func TestSaveThenListRoundTrip(t *testing.T) {
	t.Parallel()
	ds := setupTestDB(t)

	scan := &ScanResult{
		Brand:       "Kibao",
		BatchNo:     "KIB-2026-ff00",
		Date:        "2026-09-01",
		Confidence:  0.12,
		IsAuthentic: false,
		ImageURL:    "abc_photo.jpg",
	}
	require.NoError(t, ds.Save(scan))

	scans, err := ds.List(1, 0)
	require.NoError(t, err)
	require.Len(t, scans, 1)

	got := scans[0]
	assert.Equal(t, scan.ID, got.ID)
	assert.Equal(t, "Kibao", got.Brand)
	assert.Equal(t, "KIB-2026-ff00", got.BatchNo)
	assert.Equal(t, "2026-09-01", got.Date)
	assert.InDelta(t, 0.12, got.Confidence, 1e-9)
	assert.False(t, got.IsAuthentic)
	assert.Nil(t, got.Latitude)
	assert.Nil(t, got.Longitude)
	assert.Equal(t, "abc_photo.jpg", got.ImageURL)
}

func TestListOrderAndPagination(t *testing.T) {
	t.Parallel()
	ds := setupTestDB(t)

	for i := 0; i < 5; i++ {
		require.NoError(t, ds.Save(&ScanResult{Brand: "County", Date: "2026-09-01"}))
	}

	page1, err := ds.List(2, 0)
	require.NoError(t, err)
	require.Len(t, page1, 2)

	page2, err := ds.List(2, 2)
	require.NoError(t, err)
	require.Len(t, page2, 2)

	// stable id-ascending order across pages
	assert.Less(t, page1[0].ID, page1[1].ID)
	assert.Less(t, page1[1].ID, page2[0].ID)
	assert.Less(t, page2[0].ID, page2[1].ID)

	page3, err := ds.List(2, 4)
	require.NoError(t, err)
	assert.Len(t, page3, 1)
}

func TestGet(t *testing.T) {
	t.Parallel()
	ds := setupTestDB(t)

	scan := &ScanResult{Brand: "County", Date: "2026-09-01"}
	require.NoError(t, ds.Save(scan))

	got, err := ds.Get(scan.ID)
	require.NoError(t, err)
	assert.Equal(t, scan.ID, got.ID)

	_, err = ds.Get(9999)
	require.Error(t, err)
	assert.Equal(t, errors.CategoryNotFound, errors.CategoryOf(err))
}

func TestCount(t *testing.T) {
	t.Parallel()
	ds := setupTestDB(t)

	count, err := ds.Count()
	require.NoError(t, err)
	assert.Zero(t, count)

	require.NoError(t, ds.Save(&ScanResult{Brand: "County", Date: "2026-09-01"}))

	count, err = ds.Count()
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestPing(t *testing.T) {
	t.Parallel()

	ds := setupTestDB(t)
	assert.NoError(t, ds.Ping())

	empty := &DataStore{}
	assert.Error(t, empty.Ping())
}

func TestSaveWithoutConnection(t *testing.T) {
	t.Parallel()

	ds := &DataStore{}
	err := ds.Save(&ScanResult{Brand: "County"})
	require.Error(t, err)
	assert.Equal(t, errors.CategoryDatabase, errors.CategoryOf(err))
}

func TestSQLiteStoreOpenAndClose(t *testing.T) {
	t.Parallel()

	settings := testSettings(t)
	store := &SQLiteStore{Settings: settings}
	require.NoError(t, store.Open())

	require.NoError(t, store.Save(&ScanResult{Brand: "County", Date: "2026-09-01"}))

	count, err := store.Count()
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	require.NoError(t, store.Close())
}
