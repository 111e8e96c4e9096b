package scandb

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/banshee-data/lidarsim/internal/lidar"
)

func openTestDB(t *testing.T) *ScanDB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "scan_test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpenAppliesMigrations(t *testing.T) {
	db := openTestDB(t)

	for _, table := range []string{"scan_sessions", "scans", "scan_points"} {
		var name string
		err := db.QueryRow(
			`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		require.NoError(t, err, "table %s missing", table)
	}
}

func TestSessionRoundTrip(t *testing.T) {
	db := openTestDB(t)

	cfg := lidar.DefaultLidarConfig()
	sessionID, err := db.StartSession("sim-01", "crossing", cfg)
	require.NoError(t, err)
	require.NotEmpty(t, sessionID)

	scan := &lidar.Scan{
		SensorID:        "sim-01",
		FrameNumber:     7,
		HorizontalAngle: 181.5,
		RayCount:        4,
		Points: []lidar.Point{
			{X: 1, Y: 2, Z: 0.5, Label: lidar.LabelVehicles},
			{X: -3, Y: 0, Z: 0, Label: lidar.LabelRoads},
		},
	}
	_, err = db.RecordScan(sessionID, scan)
	require.NoError(t, err)

	require.NoError(t, db.EndSession(sessionID))

	sessions, err := db.Sessions()
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	require.Equal(t, "sim-01", sessions[0].SensorID)
	require.Equal(t, "crossing", sessions[0].SceneName)
	require.NotNil(t, sessions[0].EndedAt)
	require.Contains(t, sessions[0].ConfigJSON, `"channels":32`)

	points, err := db.SessionPoints(sessionID)
	require.NoError(t, err)
	require.Len(t, points, 2)
	require.Equal(t, lidar.LabelVehicles, points[0].Label)
	require.Equal(t, -3.0, points[1].X)

	count, err := db.ScanCount(sessionID)
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestRecorderSkipsEmptyScans(t *testing.T) {
	db := openTestDB(t)
	sessionID, err := db.StartSession("sim-01", "", lidar.DefaultLidarConfig())
	require.NoError(t, err)

	rec := NewRecorder(db, sessionID)
	rec.OnScanComplete(&lidar.Scan{SensorID: "sim-01"}) // skipped tick
	rec.OnScanComplete(&lidar.Scan{
		SensorID:    "sim-01",
		FrameNumber: 1,
		RayCount:    2,
		Points:      []lidar.Point{{X: 1}},
	})

	count, err := db.ScanCount(sessionID)
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan.db")

	db1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, db1.Close())

	// Reopening an already-migrated database must not fail.
	db2, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, db2.Close())
}
