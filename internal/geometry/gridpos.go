package geometry

import (
	"encoding/json"
	"fmt"
	"math"
)

// UnitMeters is the size of one grid unit. Grid positions are integer centimeters.
const UnitMeters = 0.01

// SnapMode selects the granularity positions are snapped to on the grid.
type SnapMode string

const (
	SnapMicro SnapMode = "micro" // 1 cm, hardware and hinges
	SnapMeso  SnapMode = "meso"  // 25 cm, the architectural grid
	SnapMacro SnapMode = "macro" // 1 m, building blocks
)

func (m SnapMode) step() int {
	switch m {
	case SnapMeso:
		return 25
	case SnapMacro:
		return 100
	default:
		return 1
	}
}

// GridPos is an integer position on the building grid.
type GridPos struct {
	X int
	Y int
	Z int
}

// MetersToUnits converts a metric length to whole grid units.
func MetersToUnits(m float64) int {
	return int(math.Round(m / UnitMeters))
}

// FromMeters converts a metric position to grid units, snapping each axis to mode.
func FromMeters(x, y, z float64, mode SnapMode) GridPos {
	st := mode.step()
	snap := func(v float64) int {
		return int(math.Round(v/UnitMeters/float64(st))) * st
	}
	return GridPos{X: snap(x), Y: snap(y), Z: snap(z)}
}

func (g GridPos) ToMeters() Vec3 {
	return Vec3{float64(g.X) * UnitMeters, float64(g.Y) * UnitMeters, float64(g.Z) * UnitMeters}
}

func (g GridPos) Add(o GridPos) GridPos {
	return GridPos{g.X + o.X, g.Y + o.Y, g.Z + o.Z}
}

// MarshalJSON encodes the position as an [x, y, z] triple.
func (g GridPos) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]int{g.X, g.Y, g.Z})
}

func (g *GridPos) UnmarshalJSON(data []byte) error {
	var v [3]int
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("grid position: %w", err)
	}
	g.X, g.Y, g.Z = v[0], v[1], v[2]
	return nil
}
