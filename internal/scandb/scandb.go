// Package scandb persists scan sessions and their point clouds to SQLite.
// The schema is applied with embedded migrations so a database file is
// always brought to the current version on open.
package scandb

import (
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/banshee-data/lidarsim/internal/lidar"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ScanDB wraps the SQLite handle for scan persistence.
type ScanDB struct {
	*sql.DB
}

// Open opens (or creates) the database at path and runs pending
// migrations. Use ":memory:" for an ephemeral database in tests.
func Open(path string) (*ScanDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening scan database %s: %w", path, err)
	}
	sdb := &ScanDB{db}
	if err := sdb.migrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return sdb, nil
}

func (db *ScanDB) migrateUp() error {
	driver, err := sqlite.WithInstance(db.DB, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("creating migration driver: %w", err)
	}
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("loading embedded migrations: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("creating migrate instance: %w", err)
	}
	// Note: m is not closed here because that would close the underlying
	// DB connection.
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}

// retryOnBusy retries a write a few times when SQLite reports the
// database is locked by a concurrent reader.
func retryOnBusy(fn func() error) error {
	const attempts = 5
	var err error
	for i := 0; i < attempts; i++ {
		err = fn()
		if err == nil || !strings.Contains(err.Error(), "busy") {
			return err
		}
		time.Sleep(time.Duration(i+1) * 10 * time.Millisecond)
	}
	return err
}

// SessionRecord is a persisted scan session.
type SessionRecord struct {
	SessionID  string     `json:"session_id"`
	SensorID   string     `json:"sensor_id"`
	SceneName  string     `json:"scene_name"`
	ConfigJSON string     `json:"config_json"`
	StartedAt  time.Time  `json:"started_at"`
	EndedAt    *time.Time `json:"ended_at,omitempty"`
}

// StartSession creates a session row with a config snapshot and returns
// the new session ID.
func (db *ScanDB) StartSession(sensorID, sceneName string, cfg lidar.LidarConfig) (string, error) {
	configJSON, err := json.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("marshalling config snapshot: %w", err)
	}
	sessionID := uuid.NewString()
	query := `
		INSERT INTO scan_sessions (session_id, sensor_id, scene_name, config_json, started_at)
		VALUES (?, ?, ?, ?, ?)
	`
	err = retryOnBusy(func() error {
		_, err := db.Exec(query, sessionID, sensorID, sceneName, string(configJSON),
			time.Now().UTC().Format(time.RFC3339))
		return err
	})
	if err != nil {
		return "", fmt.Errorf("inserting session for %s: %w", sensorID, err)
	}
	return sessionID, nil
}

// EndSession stamps the session's end time.
func (db *ScanDB) EndSession(sessionID string) error {
	err := retryOnBusy(func() error {
		_, err := db.Exec(`UPDATE scan_sessions SET ended_at = ? WHERE session_id = ?`,
			time.Now().UTC().Format(time.RFC3339), sessionID)
		return err
	})
	if err != nil {
		return fmt.Errorf("ending session %s: %w", sessionID, err)
	}
	return nil
}

// RecordScan persists one completed scan and its points in a single
// transaction and returns the scan row ID.
func (db *ScanDB) RecordScan(sessionID string, scan *lidar.Scan) (int64, error) {
	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning scan transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		INSERT INTO scans (session_id, frame_number, horizontal_angle, ray_count, point_count)
		VALUES (?, ?, ?, ?, ?)`,
		sessionID, scan.FrameNumber, scan.HorizontalAngle, scan.RayCount, len(scan.Points))
	if err != nil {
		return 0, fmt.Errorf("inserting scan frame %d: %w", scan.FrameNumber, err)
	}
	scanID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading scan row id: %w", err)
	}

	if len(scan.Points) > 0 {
		stmt, err := tx.Prepare(`INSERT INTO scan_points (scan_id, x, y, z, label) VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return 0, fmt.Errorf("preparing point insert: %w", err)
		}
		defer stmt.Close()
		for _, p := range scan.Points {
			if _, err := stmt.Exec(scanID, p.X, p.Y, p.Z, uint8(p.Label)); err != nil {
				return 0, fmt.Errorf("inserting point for scan %d: %w", scanID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing scan %d: %w", scanID, err)
	}
	return scanID, nil
}

// Sessions lists all sessions, most recent first.
func (db *ScanDB) Sessions() ([]SessionRecord, error) {
	rows, err := db.Query(`
		SELECT session_id, sensor_id, scene_name, config_json, started_at, ended_at
		FROM scan_sessions ORDER BY started_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionRecord
	for rows.Next() {
		var rec SessionRecord
		var startedAt string
		var endedAt sql.NullString
		if err := rows.Scan(&rec.SessionID, &rec.SensorID, &rec.SceneName,
			&rec.ConfigJSON, &startedAt, &endedAt); err != nil {
			return nil, fmt.Errorf("scanning session row: %w", err)
		}
		if rec.StartedAt, err = time.Parse(time.RFC3339, startedAt); err != nil {
			return nil, fmt.Errorf("parsing session start time: %w", err)
		}
		if endedAt.Valid {
			t, err := time.Parse(time.RFC3339, endedAt.String)
			if err != nil {
				return nil, fmt.Errorf("parsing session end time: %w", err)
			}
			rec.EndedAt = &t
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// SessionPoints returns every point recorded for a session, in scan order.
func (db *ScanDB) SessionPoints(sessionID string) ([]lidar.Point, error) {
	rows, err := db.Query(`
		SELECT p.x, p.y, p.z, p.label
		FROM scan_points p
		JOIN scans s ON s.id = p.scan_id
		WHERE s.session_id = ?
		ORDER BY p.scan_id, p.rowid`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying points for session %s: %w", sessionID, err)
	}
	defer rows.Close()

	var out []lidar.Point
	for rows.Next() {
		var p lidar.Point
		var label uint8
		if err := rows.Scan(&p.X, &p.Y, &p.Z, &label); err != nil {
			return nil, fmt.Errorf("scanning point row: %w", err)
		}
		p.Label = lidar.Label(label)
		out = append(out, p)
	}
	return out, rows.Err()
}

// ScanCount returns the number of scans recorded for a session.
func (db *ScanDB) ScanCount(sessionID string) (int, error) {
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM scans WHERE session_id = ?`, sessionID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting scans for session %s: %w", sessionID, err)
	}
	return n, nil
}
