// Command lidarsim runs the ray-trace Lidar scan engine over a simulated
// scene at a fixed tick rate, optionally recording every scan to SQLite
// and streaming completed scans to websocket observers.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/lidarsim/internal/geom"
	"github.com/banshee-data/lidarsim/internal/lidar"
	"github.com/banshee-data/lidarsim/internal/lidar/debug"
	"github.com/banshee-data/lidarsim/internal/observer"
	"github.com/banshee-data/lidarsim/internal/scandb"
	"github.com/banshee-data/lidarsim/internal/units"
	"github.com/banshee-data/lidarsim/internal/world"
)

var (
	scenePath    = flag.String("scene", "config/scene.demo.json", "Path to the scene JSON file")
	sensorConfig = flag.String("sensor-config", "", "Path to a sensor config JSON file (default: built-in 32-channel unit)")
	sensorID     = flag.String("sensor-id", "sim-01", "Sensor identifier for sessions and streams")
	tickRate     = flag.Float64("tick-rate", 20, "Simulation ticks per second")
	duration     = flag.Duration("duration", 0, "How long to run (0 = until interrupted)")
	dbFile       = flag.String("db", "", "Path to the SQLite scan database (empty = no recording)")
	listen       = flag.String("listen", "", "HTTP listen address for the observer endpoint (empty = disabled)")
	debugPoints  = flag.Bool("debug-points", false, "Collect debug hit markers and report their count")
	sensorHeight = flag.Float64("sensor-height", 1.8, "Sensor height above the ground in metres")
	orbitRadius  = flag.Float64("orbit-radius", 0, "Radius of the sensor's circular path (0 = stationary)")
	orbitSpeed   = flag.Float64("orbit-speed", 30, "Angular speed of the sensor path in degrees per second")
	logInterval  = flag.Int("log-interval", 2, "Statistics logging interval in seconds")
)

// ScanStats tracks per-interval throughput counters.
type ScanStats struct {
	mu         sync.Mutex
	tickCount  int64
	rayCount   int64
	pointCount int64
	lastReset  time.Time
}

func (s *ScanStats) OnScanComplete(scan *lidar.Scan) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tickCount++
	s.rayCount += int64(scan.RayCount)
	s.pointCount += int64(len(scan.Points))
}

func (s *ScanStats) GetAndReset() (ticks, rays, points int64, elapsed time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	elapsed = now.Sub(s.lastReset)
	ticks, rays, points = s.tickCount, s.rayCount, s.pointCount
	s.tickCount, s.rayCount, s.pointCount = 0, 0, 0
	s.lastReset = now
	return
}

// sensorPose places the sensor on its (possibly degenerate) circular path
// at simulation time t, facing along the direction of travel.
func sensorPose(t float64) geom.Pose {
	if *orbitRadius <= 0 {
		return geom.Pose{Position: r3.Vec{Z: *sensorHeight}}
	}
	angle := units.Radians(*orbitSpeed * t)
	return geom.Pose{
		Position: r3.Vec{
			X: *orbitRadius * math.Cos(angle),
			Y: *orbitRadius * math.Sin(angle),
			Z: *sensorHeight,
		},
		// Tangent to the circle: travel direction leads the radius by 90deg.
		Rotation: geom.Euler{Yaw: units.NormalizeDegrees(*orbitSpeed*t + 90)},
	}
}

func run() error {
	if *tickRate <= 0 {
		return fmt.Errorf("tick-rate must be positive, got %v", *tickRate)
	}
	scene, err := world.LoadScene(*scenePath)
	if err != nil {
		return fmt.Errorf("loading scene: %w", err)
	}
	log.Printf("loaded scene %q: %d actors, %d components",
		scene.Name, scene.ActorCount(), scene.ComponentCount())

	cfg := lidar.DefaultLidarConfig()
	if *sensorConfig != "" {
		if cfg, err = lidar.LoadLidarConfig(*sensorConfig); err != nil {
			return fmt.Errorf("loading sensor config: %w", err)
		}
	}
	cfg.ShowDebugPoints = cfg.ShowDebugPoints || *debugPoints

	stats := &ScanStats{lastReset: time.Now()}
	sinks := lidar.MultiSink{stats}

	var sessionID string
	if *dbFile != "" {
		db, err := scandb.Open(*dbFile)
		if err != nil {
			return err
		}
		defer db.Close()
		if sessionID, err = db.StartSession(*sensorID, scene.Name, cfg); err != nil {
			return err
		}
		defer func() {
			if err := db.EndSession(sessionID); err != nil {
				log.Printf("ending session: %v", err)
			}
		}()
		sinks = append(sinks, scandb.NewRecorder(db, sessionID))
		log.Printf("recording to %s, session %s", *dbFile, sessionID)
	}

	var obs *observer.Server
	if *listen != "" {
		obs = observer.NewServer(*sensorID, cfg, scene)
		sinks = append(sinks, obs)

		mux := http.NewServeMux()
		mux.HandleFunc("/observer/bootstrap", obs.BootstrapHandler())
		mux.HandleFunc("/observer/ws", obs.WSHandler())
		srv := &http.Server{Addr: *listen, Handler: mux}
		go func() {
			log.Printf("observer endpoint on %s", *listen)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("observer server: %v", err)
			}
		}()
		defer srv.Close()
	}

	markers := debug.NewMarkerCollector()
	markers.SetEnabled(cfg.ShowDebugPoints)

	engine, err := lidar.NewScanEngine(lidar.EngineConfig{
		SensorID: *sensorID,
		Lidar:    cfg,
		Caster:   scene,
		Tagger:   scene,
		Sink:     sinks,
		Debug:    markers,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if *duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *duration)
		defer cancel()
	}

	dt := 1.0 / *tickRate
	ticker := time.NewTicker(time.Duration(float64(time.Second) * dt))
	defer ticker.Stop()
	statsTicker := time.NewTicker(time.Duration(*logInterval) * time.Second)
	defer statsTicker.Stop()

	log.Printf("simulating %d channels at %.1f Hz, %.0f points/s, range %.1f m",
		cfg.Channels, *tickRate, cfg.PointsPerSecond, cfg.Range)

	var frame uint64
	var simTime float64
	for {
		select {
		case <-ctx.Done():
			log.Printf("stopping after %d frames", frame)
			return nil
		case <-ticker.C:
			frame++
			simTime += dt
			engine.Tick(dt, sensorPose(simTime), frame)
			if cfg.ShowDebugPoints {
				if m := markers.Drain(); m != nil {
					log.Printf("frame %d: %d debug markers", frame, len(m))
				}
			}
		case <-statsTicker.C:
			ticks, rays, points, elapsed := stats.GetAndReset()
			secs := elapsed.Seconds()
			if secs <= 0 || ticks == 0 {
				continue
			}
			extra := ""
			if obs != nil {
				extra = fmt.Sprintf(", %d observers", obs.ClientCount())
			}
			log.Printf("%d ticks, %.0f rays/s, %.0f points/s, angle %.1f%s",
				ticks, float64(rays)/secs, float64(points)/secs,
				engine.HorizontalAngle(), extra)
		}
	}
}

func main() {
	flag.Parse()
	if err := run(); err != nil {
		log.Printf("lidarsim: %v", err)
		os.Exit(1)
	}
}
