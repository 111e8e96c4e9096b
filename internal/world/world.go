// Package world provides a ray-intersectable simulated scene. It stands
// in for a game engine's physics query: actors own tagged components with
// analytic shapes, and the nearest blocking intersection wins. The World
// satisfies both the scan engine's RayCaster and Tagger contracts.
package world

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/lidarsim/internal/lidar"
)

// Component is a strikeable piece of an actor.
type Component struct {
	ID    uint64
	Name  string
	Shape Shape
	// Tag is the component's own label; LabelNone defers to the actor's tags.
	Tag lidar.Label

	actor *Actor
}

// Actor groups components under a shared identity and tag set.
type Actor struct {
	ID         uint64
	Name       string
	Tags       []lidar.Label
	Components []*Component
}

// World is a static scene of actors. It is safe for concurrent read-only
// ray queries once built; mutation is not synchronised.
type World struct {
	Name string

	actors      []*Actor
	components  []*Component
	byComponent map[uint64]*Component
	byActor     map[uint64]*Actor
	nextID      uint64
}

// New creates an empty scene.
func New(name string) *World {
	return &World{
		Name:        name,
		byComponent: make(map[uint64]*Component),
		byActor:     make(map[uint64]*Actor),
	}
}

// AddActor adds an actor with the given tags and returns it.
func (w *World) AddActor(name string, tags ...lidar.Label) *Actor {
	w.nextID++
	a := &Actor{ID: w.nextID, Name: name, Tags: tags}
	w.actors = append(w.actors, a)
	w.byActor[a.ID] = a
	return a
}

// AddComponent attaches a shape to an actor. A LabelNone tag means the
// component inherits annotation from the actor's tag list at query time.
func (w *World) AddComponent(a *Actor, name string, shape Shape, tag lidar.Label) *Component {
	w.nextID++
	c := &Component{ID: w.nextID, Name: name, Shape: shape, Tag: tag, actor: a}
	a.Components = append(a.Components, c)
	w.components = append(w.components, c)
	w.byComponent[c.ID] = c
	return c
}

// ActorCount returns the number of actors in the scene.
func (w *World) ActorCount() int { return len(w.actors) }

// ComponentCount returns the number of strikeable components.
func (w *World) ComponentCount() int { return len(w.components) }

// CastRay returns the nearest blocking intersection along the segment
// origin->end, or ok=false when nothing is struck.
func (w *World) CastRay(origin, end r3.Vec) (lidar.Hit, bool) {
	bestT := 0.0
	var best *Component
	for _, c := range w.components {
		t, ok := c.Shape.Intersect(origin, end)
		if !ok {
			continue
		}
		if best == nil || t < bestT {
			bestT = t
			best = c
		}
	}
	if best == nil {
		return lidar.Hit{}, false
	}
	impact := r3.Add(origin, r3.Scale(bestT, r3.Sub(end, origin)))
	return lidar.Hit{
		Impact:      impact,
		ComponentID: best.ID,
		ActorID:     best.actor.ID,
	}, true
}

// TagOfComponent returns the component's own label, LabelNone if the
// component is untagged or unknown.
func (w *World) TagOfComponent(componentID uint64) lidar.Label {
	if c, ok := w.byComponent[componentID]; ok {
		return c.Tag
	}
	return lidar.LabelNone
}

// TagsOfActor returns the actor's tag list in declaration order.
func (w *World) TagsOfActor(actorID uint64) []lidar.Label {
	if a, ok := w.byActor[actorID]; ok {
		return a.Tags
	}
	return nil
}
