// Command scanplot renders a recorded scan session as a top-down scatter
// plot, one colour per semantic label.
package main

import (
	"flag"
	"fmt"
	"image/color"
	"log"
	"os"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/lidarsim/internal/lidar"
	"github.com/banshee-data/lidarsim/internal/scandb"
)

var (
	dbFile    = flag.String("db", "lidar_sim.db", "Path to the SQLite scan database")
	sessionID = flag.String("session", "", "Session to render (default: most recent)")
	outFile   = flag.String("out", "scan.png", "Output PNG path")
	plotSize  = flag.Float64("size", 10, "Plot size in inches")
)

// labelColors assigns a stable colour per semantic class.
var labelColors = map[lidar.Label]color.RGBA{
	lidar.LabelNone:         {R: 0xb0, G: 0xb0, B: 0xb0, A: 0xff},
	lidar.LabelBuildings:    {R: 0x8b, G: 0x5a, B: 0x2b, A: 0xff},
	lidar.LabelFences:       {R: 0xcd, G: 0xaa, B: 0x7d, A: 0xff},
	lidar.LabelOther:        {R: 0x70, G: 0x80, B: 0x90, A: 0xff},
	lidar.LabelPedestrians:  {R: 0xff, G: 0x45, B: 0x00, A: 0xff},
	lidar.LabelPoles:        {R: 0x9a, G: 0xcd, B: 0x32, A: 0xff},
	lidar.LabelRoadLines:    {R: 0xff, G: 0xff, B: 0x00, A: 0xff},
	lidar.LabelRoads:        {R: 0x32, G: 0x32, B: 0x32, A: 0xff},
	lidar.LabelSidewalks:    {R: 0x69, G: 0x69, B: 0x69, A: 0xff},
	lidar.LabelVegetation:   {R: 0x22, G: 0x8b, B: 0x22, A: 0xff},
	lidar.LabelVehicles:     {R: 0x1e, G: 0x90, B: 0xff, A: 0xff},
	lidar.LabelWalls:        {R: 0xa0, G: 0x52, B: 0x2d, A: 0xff},
	lidar.LabelTrafficSigns: {R: 0xdc, G: 0x14, B: 0x3c, A: 0xff},
}

func run() error {
	db, err := scandb.Open(*dbFile)
	if err != nil {
		return err
	}
	defer db.Close()

	session := *sessionID
	if session == "" {
		sessions, err := db.Sessions()
		if err != nil {
			return err
		}
		if len(sessions) == 0 {
			return fmt.Errorf("no sessions in %s", *dbFile)
		}
		session = sessions[0].SessionID
		log.Printf("rendering most recent session %s", session)
	}

	points, err := db.SessionPoints(session)
	if err != nil {
		return err
	}
	if len(points) == 0 {
		return fmt.Errorf("session %s has no points", session)
	}

	byLabel := make(map[lidar.Label]plotter.XYs)
	for _, pt := range points {
		byLabel[pt.Label] = append(byLabel[pt.Label], plotter.XY{X: pt.X, Y: pt.Y})
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("session %s (%d points)", session, len(points))
	p.X.Label.Text = "x (m)"
	p.Y.Label.Text = "y (m)"

	// Deterministic draw order so legends are stable across runs.
	labels := make([]lidar.Label, 0, len(byLabel))
	for l := range byLabel {
		labels = append(labels, l)
	}
	sort.Slice(labels, func(i, j int) bool { return labels[i] < labels[j] })

	for _, l := range labels {
		scatter, err := plotter.NewScatter(byLabel[l])
		if err != nil {
			return fmt.Errorf("building scatter for %s: %w", l, err)
		}
		c, ok := labelColors[l]
		if !ok {
			c = labelColors[lidar.LabelNone]
		}
		scatter.GlyphStyle.Color = c
		scatter.GlyphStyle.Radius = vg.Points(1)
		p.Add(scatter)
		p.Legend.Add(l.String(), scatter)
	}

	size := vg.Length(*plotSize) * vg.Inch
	if err := p.Save(size, size, *outFile); err != nil {
		return fmt.Errorf("saving plot: %w", err)
	}
	log.Printf("wrote %s", *outFile)
	return nil
}

func main() {
	flag.Parse()
	if err := run(); err != nil {
		log.Printf("scanplot: %v", err)
		os.Exit(1)
	}
}
