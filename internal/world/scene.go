package world

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/lidarsim/internal/lidar"
)

// Scene file schema. Each component names exactly one shape; the tag
// fields use label names ("Vehicles", "Roads", ...) and may be omitted.

type sceneFile struct {
	Name   string       `json:"name"`
	Actors []sceneActor `json:"actors"`
}

type sceneActor struct {
	Name       string           `json:"name"`
	Tags       []string         `json:"tags,omitempty"`
	Components []sceneComponent `json:"components"`
}

type sceneComponent struct {
	Name   string       `json:"name"`
	Tag    string       `json:"tag,omitempty"`
	Sphere *sceneSphere `json:"sphere,omitempty"`
	Box    *sceneBox    `json:"box,omitempty"`
	Plane  *scenePlane  `json:"plane,omitempty"`
}

type sceneVec struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (v sceneVec) vec() r3.Vec { return r3.Vec{X: v.X, Y: v.Y, Z: v.Z} }

type sceneSphere struct {
	Center sceneVec `json:"center"`
	Radius float64  `json:"radius"`
}

type sceneBox struct {
	Min sceneVec `json:"min"`
	Max sceneVec `json:"max"`
}

type scenePlane struct {
	Z float64 `json:"z"`
}

// LoadScene reads a JSON scene file and builds the world.
func LoadScene(path string) (*World, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("scene file must have .json extension, got %q", ext)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene file: %w", err)
	}

	var file sceneFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse scene JSON: %w", err)
	}
	return buildScene(file)
}

func buildScene(file sceneFile) (*World, error) {
	w := New(file.Name)
	for _, sa := range file.Actors {
		tags := make([]lidar.Label, 0, len(sa.Tags))
		for _, name := range sa.Tags {
			label, err := lidar.ParseLabel(name)
			if err != nil {
				return nil, fmt.Errorf("actor %q: %w", sa.Name, err)
			}
			tags = append(tags, label)
		}
		actor := w.AddActor(sa.Name, tags...)

		for _, sc := range sa.Components {
			shape, err := sc.shape()
			if err != nil {
				return nil, fmt.Errorf("actor %q component %q: %w", sa.Name, sc.Name, err)
			}
			tag := lidar.LabelNone
			if sc.Tag != "" {
				tag, err = lidar.ParseLabel(sc.Tag)
				if err != nil {
					return nil, fmt.Errorf("actor %q component %q: %w", sa.Name, sc.Name, err)
				}
			}
			w.AddComponent(actor, sc.Name, shape, tag)
		}
	}
	return w, nil
}

func (sc sceneComponent) shape() (Shape, error) {
	var shapes []Shape
	if sc.Sphere != nil {
		shapes = append(shapes, Sphere{Center: sc.Sphere.Center.vec(), Radius: sc.Sphere.Radius})
	}
	if sc.Box != nil {
		shapes = append(shapes, Box{Min: sc.Box.Min.vec(), Max: sc.Box.Max.vec()})
	}
	if sc.Plane != nil {
		shapes = append(shapes, Plane{Z: sc.Plane.Z})
	}
	if len(shapes) != 1 {
		return nil, fmt.Errorf("component must declare exactly one shape, got %d", len(shapes))
	}
	return shapes[0], nil
}
