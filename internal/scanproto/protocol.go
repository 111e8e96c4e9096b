// Package scanproto defines the JSON protocol spoken to live scan
// observers over the websocket endpoint.
package scanproto

import "github.com/banshee-data/lidarsim/internal/lidar"

// Version is the observer protocol version.
const Version = "0.1"

// Client -> Server. First message on the observer WS connection, may be
// re-sent to update settings.
type SubscribeMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`

	// MaxPointsPerScan truncates scan payloads for constrained clients.
	// Zero means no limit.
	MaxPointsPerScan int `json:"max_points_per_scan,omitempty"`
}

// HTTP response for GET /observer/bootstrap.
type BootstrapResponse struct {
	ProtocolVersion string            `json:"protocol_version"`
	SensorID        string            `json:"sensor_id"`
	Config          lidar.LidarConfig `json:"config"`
	Scene           SceneInfo         `json:"scene"`
}

// SceneInfo summarises the loaded scene for observers.
type SceneInfo struct {
	Name       string `json:"name"`
	Actors     int    `json:"actors"`
	Components int    `json:"components"`
}

// Server -> Client. Sent once per completed scan.
type ScanMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`

	Frame           uint64  `json:"frame"`
	HorizontalAngle float64 `json:"horizontal_angle"`
	RayCount        int     `json:"ray_count"`
	PointCount      int     `json:"point_count"`

	Points []PointMsg `json:"points"`
}

// PointMsg is a single return with its label name.
type PointMsg struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Z     float64 `json:"z"`
	Label string  `json:"label"`
}

// ScanToMsg converts a completed scan to its wire form. maxPoints <= 0
// means no truncation.
func ScanToMsg(scan *lidar.Scan, maxPoints int) *ScanMsg {
	points := scan.Points
	if maxPoints > 0 && len(points) > maxPoints {
		points = points[:maxPoints]
	}
	msg := &ScanMsg{
		Type:            "scan",
		ProtocolVersion: Version,
		Frame:           scan.FrameNumber,
		HorizontalAngle: scan.HorizontalAngle,
		RayCount:        scan.RayCount,
		PointCount:      len(scan.Points),
		Points:          make([]PointMsg, len(points)),
	}
	for i, p := range points {
		msg.Points[i] = PointMsg{X: p.X, Y: p.Y, Z: p.Z, Label: p.Label.String()}
	}
	return msg
}
