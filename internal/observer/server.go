// Package observer streams completed scans to websocket clients. The
// server is a Sink: the scan engine hands it each tick's buffer and the
// fan-out happens off the tick path, with slow clients dropping scans
// instead of blocking the simulation.
package observer

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"

	"github.com/banshee-data/lidarsim/internal/lidar"
	"github.com/banshee-data/lidarsim/internal/monitoring"
	"github.com/banshee-data/lidarsim/internal/scanproto"
	"github.com/banshee-data/lidarsim/internal/world"
)

// clientBuffer is the per-client scan queue depth before drops begin.
const clientBuffer = 8

type client struct {
	id        uint64
	scanCh    chan *lidar.Scan
	maxPoints atomic.Int64 // 0 = unlimited
	dropped   atomic.Uint64
}

// Server publishes scans over websockets and answers the bootstrap query.
type Server struct {
	sensorID string
	config   lidar.LidarConfig
	scene    scanproto.SceneInfo

	upgrader websocket.Upgrader
	nextID   atomic.Uint64

	mu      sync.RWMutex
	clients map[uint64]*client

	droppedScans atomic.Uint64
}

// NewServer creates an observer server for one sensor over one scene.
func NewServer(sensorID string, cfg lidar.LidarConfig, w *world.World) *Server {
	return &Server{
		sensorID: sensorID,
		config:   cfg,
		scene: scanproto.SceneInfo{
			Name:       w.Name,
			Actors:     w.ActorCount(),
			Components: w.ComponentCount(),
		},
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
		clients: make(map[uint64]*client),
	}
}

// OnScanComplete implements the scan engine's Sink: the scan is queued to
// every subscribed client, dropping per-client when a queue is full.
func (s *Server) OnScanComplete(scan *lidar.Scan) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.clients {
		select {
		case c.scanCh <- scan:
		default:
			c.dropped.Add(1)
			s.droppedScans.Add(1)
		}
	}
}

// ClientCount returns the number of connected observers.
func (s *Server) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// DroppedScans returns the total scans dropped across all clients.
func (s *Server) DroppedScans() uint64 { return s.droppedScans.Load() }

// BootstrapHandler answers GET /observer/bootstrap with the sensor config
// and scene summary an observer needs before subscribing.
func (s *Server) BootstrapHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			rw.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}
		resp := scanproto.BootstrapResponse{
			ProtocolVersion: scanproto.Version,
			SensorID:        s.sensorID,
			Config:          s.config,
			Scene:           s.scene,
		}
		rw.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(rw).Encode(resp)
	}
}

// WSHandler upgrades the connection and streams scans until the client
// disconnects.
func (s *Server) WSHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}

		c := s.addClient()
		defer s.removeClient(c)
		monitoring.Logf("observer: client %d connected (%d total)", c.id, s.ClientCount())

		// Reader: consume subscribe messages until the connection dies.
		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				var sub scanproto.SubscribeMsg
				if err := conn.ReadJSON(&sub); err != nil {
					return
				}
				if sub.Type == "subscribe" {
					c.maxPoints.Store(int64(sub.MaxPointsPerScan))
				}
			}
		}()

		for {
			select {
			case <-done:
				conn.Close()
				return
			case scan := <-c.scanCh:
				msg := scanproto.ScanToMsg(scan, int(c.maxPoints.Load()))
				if err := conn.WriteJSON(msg); err != nil {
					conn.Close()
					<-done
					return
				}
			}
		}
	}
}

func (s *Server) addClient() *client {
	c := &client{
		id:     s.nextID.Add(1),
		scanCh: make(chan *lidar.Scan, clientBuffer),
	}
	s.mu.Lock()
	s.clients[c.id] = c
	s.mu.Unlock()
	return c
}

func (s *Server) removeClient(c *client) {
	s.mu.Lock()
	delete(s.clients, c.id)
	s.mu.Unlock()
	if d := c.dropped.Load(); d > 0 {
		monitoring.Logf("observer: client %d disconnected, %d scans dropped", c.id, d)
	} else {
		monitoring.Logf("observer: client %d disconnected", c.id)
	}
}

func isLoopbackRemote(remoteAddr string) bool {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		host = remoteAddr
	}
	if strings.EqualFold(host, "localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
