package scandb

import (
	"github.com/banshee-data/lidarsim/internal/lidar"
	"github.com/banshee-data/lidarsim/internal/monitoring"
)

// Recorder adapts a ScanDB session to the scan engine's Sink interface.
// Persistence failures are logged and dropped rather than propagated, so
// a full disk never stalls the tick path.
type Recorder struct {
	db        *ScanDB
	sessionID string
}

// NewRecorder creates a sink writing scans into an existing session.
func NewRecorder(db *ScanDB, sessionID string) *Recorder {
	return &Recorder{db: db, sessionID: sessionID}
}

// SessionID returns the session this recorder writes to.
func (r *Recorder) SessionID() string { return r.sessionID }

// OnScanComplete persists the scan. Empty scans from skipped ticks are
// not recorded.
func (r *Recorder) OnScanComplete(scan *lidar.Scan) {
	if scan.RayCount == 0 {
		return
	}
	if _, err := r.db.RecordScan(r.sessionID, scan); err != nil {
		monitoring.Logf("scandb: dropping scan frame %d: %v", scan.FrameNumber, err)
	}
}
