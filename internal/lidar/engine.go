// Package lidar implements a ray-trace based spinning Lidar scan engine.
//
// The engine owns no clock and no scene: an external scheduler calls Tick
// once per simulation step, rays are resolved through the injected
// RayCaster, semantic annotation through the Tagger, and each completed
// sweep is handed to the Sink. Everything the engine computes in a tick is
// a deterministic function of its scan state, its config, the sensor pose
// and the caster's answers.
package lidar

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/lidarsim/internal/geom"
	"github.com/banshee-data/lidarsim/internal/monitoring"
	"github.com/banshee-data/lidarsim/internal/units"
)

// sweepYawRealignment re-expresses hit vectors in the sweep's own
// horizontal frame. The sweep's zero horizontal angle does not coincide
// with the world's yaw zero; every hit vector is rotated about the
// vertical axis by (-bodyYaw + 90) degrees before it is emitted.
const sweepYawRealignment = 90.0

// Hit is a ray-cast result returned by a RayCaster.
type Hit struct {
	// Impact is the intersection point in world coordinates.
	Impact r3.Vec
	// ComponentID identifies the struck sub-component, ActorID the actor
	// owning it. Both are opaque to the engine; they only feed the Tagger.
	ComponentID uint64
	ActorID     uint64
}

// RayCaster resolves a ray against the world. It returns the nearest
// blocking intersection between origin and end, or ok=false for a miss.
// A cast that cannot be evaluated is reported as a miss.
type RayCaster interface {
	CastRay(origin, end r3.Vec) (hit Hit, ok bool)
}

// Tagger resolves semantic labels for struck geometry.
type Tagger interface {
	// TagOfComponent returns the label of a specific component, or
	// LabelNone if the component is untagged.
	TagOfComponent(componentID uint64) Label
	// TagsOfActor returns all labels carried by an actor. Order matters:
	// the first non-None entry wins when the component itself is untagged.
	TagsOfActor(actorID uint64) []Label
}

// DebugDraw receives a marker per ray hit when the config enables debug
// points. It is purely observational and never affects emitted data.
type DebugDraw interface {
	DrawPoint(p r3.Vec)
}

// Point is a single return, positioned relative to the sensor.
type Point struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Z     float64 `json:"z"`
	Label Label   `json:"label"`
}

// Scan is one tick's completed point buffer. Ownership transfers to the
// Sink on delivery; the engine never retains point data across ticks.
type Scan struct {
	SensorID        string
	FrameNumber     uint64
	HorizontalAngle float64
	// Points holds actual hits only; misses are dropped, not zero-filled.
	// Length is at most RayCount.
	Points []Point
	// RayCount is channels * pointsPerLaser for the tick.
	RayCount int
}

// Sink receives completed scans, once per tick.
type Sink interface {
	OnScanComplete(scan *Scan)
}

// MultiSink fans a scan out to several sinks in order.
type MultiSink []Sink

func (m MultiSink) OnScanComplete(scan *Scan) {
	for _, s := range m {
		s.OnScanComplete(scan)
	}
}

// EngineConfig wires a ScanEngine to its collaborators.
type EngineConfig struct {
	SensorID string
	Lidar    LidarConfig
	Caster   RayCaster
	Tagger   Tagger
	Sink     Sink      // optional; nil drops completed scans
	Debug    DebugDraw // optional; only consulted when ShowDebugPoints is set
}

// ScanEngine computes one sweep of ray directions per tick and assembles
// the hits into a labelled point cloud. It is single-threaded: one tick
// runs to completion before the next begins, and scan state is owned
// exclusively by the engine.
type ScanEngine struct {
	sensorID string
	cfg      LidarConfig
	// laserAngles holds one vertical angle per channel; always exactly
	// cfg.Channels long after Configure.
	laserAngles []float64

	horizontalAngle float64
	frameNumber     uint64

	caster RayCaster
	tagger Tagger
	sink   Sink
	debug  DebugDraw
}

// NewScanEngine validates the config and builds the laser angle table.
func NewScanEngine(cfg EngineConfig) (*ScanEngine, error) {
	if cfg.Caster == nil {
		return nil, fmt.Errorf("scan engine %q: ray caster is required", cfg.SensorID)
	}
	if cfg.Tagger == nil {
		return nil, fmt.Errorf("scan engine %q: tagger is required", cfg.SensorID)
	}
	e := &ScanEngine{
		sensorID: cfg.SensorID,
		caster:   cfg.Caster,
		tagger:   cfg.Tagger,
		sink:     cfg.Sink,
		debug:    cfg.Debug,
	}
	if err := e.Configure(cfg.Lidar); err != nil {
		return nil, err
	}
	return e, nil
}

// Configure replaces the sensor parameters and rebuilds the laser angle
// table. An invalid config is rejected and the previous one stays active.
// Must only be called between ticks, never mid-sweep.
func (e *ScanEngine) Configure(cfg LidarConfig) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("scan engine %q: %w", e.sensorID, err)
	}
	e.cfg = cfg
	e.laserAngles = buildLaserAngles(cfg)
	return nil
}

// Config returns the active sensor parameters.
func (e *ScanEngine) Config() LidarConfig { return e.cfg }

// HorizontalAngle returns the current sweep position in [0, 360).
func (e *ScanEngine) HorizontalAngle() float64 { return e.horizontalAngle }

// FrameNumber returns the host frame recorded by the last completed sweep.
func (e *ScanEngine) FrameNumber() uint64 { return e.frameNumber }

// LaserAngles returns a copy of the per-channel vertical angles.
func (e *ScanEngine) LaserAngles() []float64 {
	out := make([]float64, len(e.laserAngles))
	copy(out, e.laserAngles)
	return out
}

// Tick performs one sweep: it budgets sample counts from the elapsed time
// dt (seconds), casts channels*pointsPerLaser rays from the given pose,
// and delivers the resulting buffer to the sink.
//
// When the budget rounds to zero the tick is skipped with a diagnostic
// and, matching the long-standing acquisition behaviour, the horizontal
// angle and frame number do not advance; the sink receives an empty scan
// carrying the unchanged state.
func (e *ScanEngine) Tick(dt float64, pose geom.Pose, hostFrame uint64) {
	pointsPerLaser := units.RoundHalfAwayFromZero(e.cfg.PointsPerSecond * dt / float64(e.cfg.Channels))
	if pointsPerLaser <= 0 {
		monitoring.Logf("%s: no points requested this tick, try increasing the number of points per second", e.sensorID)
		e.deliver(&Scan{
			SensorID:        e.sensorID,
			FrameNumber:     e.frameNumber,
			HorizontalAngle: e.horizontalAngle,
		})
		return
	}

	currentHorizontal := e.horizontalAngle
	sweptThisTick := e.cfg.RotationFrequency * 360.0 * dt
	stepPerPoint := sweptThisTick / float64(pointsPerLaser)

	bodyRot := pose.Rotation.Rotation()
	points := make([]Point, 0, e.cfg.Channels*pointsPerLaser)

	for channel := 0; channel < e.cfg.Channels; channel++ {
		vertical := e.laserAngles[channel]
		for i := 0; i < pointsPerLaser; i++ {
			horizontal := currentHorizontal + stepPerPoint*float64(i)
			if p, ok := e.shootLaser(pose, bodyRot, vertical, horizontal); ok {
				points = append(points, p)
			}
		}
	}

	e.horizontalAngle = units.NormalizeDegrees(currentHorizontal + sweptThisTick)
	e.frameNumber = hostFrame

	e.deliver(&Scan{
		SensorID:        e.sensorID,
		FrameNumber:     e.frameNumber,
		HorizontalAngle: e.horizontalAngle,
		Points:          points,
		RayCount:        e.cfg.Channels * pointsPerLaser,
	})
}

func (e *ScanEngine) deliver(scan *Scan) {
	if e.sink != nil {
		e.sink.OnScanComplete(scan)
	}
}

// shootLaser casts a single ray and assembles the labelled point. The ray
// direction is the laser rotator (pitch=vertical, yaw=horizontal) composed
// with the sensor's body rotation, applied to the forward axis.
func (e *ScanEngine) shootLaser(pose geom.Pose, bodyRot r3.Rotation, vertical, horizontal float64) (Point, bool) {
	dir := bodyRot.Rotate(geom.Forward(vertical, horizontal))
	end := r3.Add(pose.Position, r3.Scale(e.cfg.Range, dir))

	hit, ok := e.caster.CastRay(pose.Position, end)
	if !ok {
		return Point{}, false
	}

	if e.cfg.ShowDebugPoints && e.debug != nil {
		e.debug.DrawPoint(hit.Impact)
	}

	rel := r3.Sub(pose.Position, hit.Impact)
	rel = geom.RotateAboutZ(rel, -pose.Rotation.Yaw+sweepYawRealignment)

	label := e.tagger.TagOfComponent(hit.ComponentID)
	if label == LabelNone {
		for _, t := range e.tagger.TagsOfActor(hit.ActorID) {
			if t != LabelNone {
				label = t
				break
			}
		}
	}

	return Point{X: rel.X, Y: rel.Y, Z: rel.Z, Label: label}, true
}
