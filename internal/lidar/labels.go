package lidar

import "fmt"

// Label is the semantic class of a struck surface. The zero value is
// LabelNone, meaning the surface carries no annotation.
type Label uint8

// Semantic classes, in stable numeric order. The numeric values are part
// of the recorded data format and must not be reordered.
const (
	LabelNone Label = iota
	LabelBuildings
	LabelFences
	LabelOther
	LabelPedestrians
	LabelPoles
	LabelRoadLines
	LabelRoads
	LabelSidewalks
	LabelVegetation
	LabelVehicles
	LabelWalls
	LabelTrafficSigns
)

var labelNames = map[Label]string{
	LabelNone:         "None",
	LabelBuildings:    "Buildings",
	LabelFences:       "Fences",
	LabelOther:        "Other",
	LabelPedestrians:  "Pedestrians",
	LabelPoles:        "Poles",
	LabelRoadLines:    "RoadLines",
	LabelRoads:        "Roads",
	LabelSidewalks:    "Sidewalks",
	LabelVegetation:   "Vegetation",
	LabelVehicles:     "Vehicles",
	LabelWalls:        "Walls",
	LabelTrafficSigns: "TrafficSigns",
}

var labelsByName = func() map[string]Label {
	m := make(map[string]Label, len(labelNames))
	for l, name := range labelNames {
		m[name] = l
	}
	return m
}()

// String returns the label's name, or a numeric form for unknown values.
func (l Label) String() string {
	if name, ok := labelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("Label(%d)", uint8(l))
}

// ParseLabel resolves a label by name as used in scene files.
func ParseLabel(name string) (Label, error) {
	if l, ok := labelsByName[name]; ok {
		return l, nil
	}
	return LabelNone, fmt.Errorf("unknown semantic label %q", name)
}
