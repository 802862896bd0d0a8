// Package wall builds engineered wall assets: a solid box with a window slot placed
// at a seeded golden-ratio point along its length.
package wall

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/Ko-stant/building-engine/internal/config"
	"github.com/Ko-stant/building-engine/internal/geometry"
	"github.com/Ko-stant/building-engine/internal/mesh"
	"github.com/Ko-stant/building-engine/internal/seed"
)

var (
	ErrInvalidLength = errors.New("invalid wall length")
	ErrNotManifold   = errors.New("wall mesh is not manifold")
)

// Subsystem names the random stream window placement draws from.
const Subsystem = "wall_slots"

// Wall is an engineered wall lying along +x from its origin.
type Wall struct {
	Name      string          `json:"name"`
	Seed      int64           `json:"seed"`
	Length    float64         `json:"length"`
	Thickness float64         `json:"thickness"`
	Height    float64         `json:"height"`
	Slots     []geometry.Slot `json:"slots"`
	Tags      []string        `json:"tags"`
}

// Build lays out a wall of the given length. The window slot sits at the golden
// split of the length, pulled inward on the grid so the whole window fits; walls
// too short to hold a window get none.
func Build(name string, length float64, seedValue int64, s config.Settings) (*Wall, *mesh.Mesh, error) {
	if !(length > 0) || math.IsInf(length, 0) {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidLength, length)
	}

	w := &Wall{
		Name:      name,
		Seed:      seedValue,
		Length:    length,
		Thickness: s.WallThickness,
		Height:    s.StoryHeight,
		Tags:      []string{"arch_wall", "size_" + strconv.FormatFloat(length, 'f', -1, 64) + "m"},
	}

	m := mesh.New(name)
	m.AddBox(geometry.Vec3{Y: -w.Thickness / 2}, geometry.Vec3{X: length, Y: w.Thickness / 2, Z: w.Height})
	if !mesh.IsManifold(m) {
		return nil, nil, fmt.Errorf("%w: %s", ErrNotManifold, name)
	}

	x := s.GoldenSplit(length, seed.For(seedValue, Subsystem))
	if cx, ok := fitWindow(x, length, s.WindowWidth, s.GridUnit); ok {
		slot := geometry.Slot{
			ID:       "main_opening",
			Type:     "window_opening",
			GridPos:  geometry.FromMeters(cx, 0, s.WindowSillHeight, geometry.SnapMicro),
			Position: [3]float64{cx, 0, s.WindowSillHeight},
			Size:     [2]float64{s.WindowWidth, s.WindowHeight},
		}
		if err := ValidateSlot(slot); err != nil {
			return nil, nil, fmt.Errorf("wall %s: %w", name, err)
		}
		w.Slots = append(w.Slots, slot)
	}
	return w, m, nil
}

// fitWindow clamps the window center x into the grid positions where a window of
// width stays inside [0, length].
func fitWindow(x, length, width, grid float64) (float64, bool) {
	lo, hi := width/2, length-width/2
	if grid > 0 {
		lo = math.Ceil(lo/grid-1e-9) * grid
		hi = math.Floor(hi/grid+1e-9) * grid
	}
	if lo > hi {
		return 0, false
	}
	return math.Min(math.Max(x, lo), hi), true
}

func (w *Wall) Footprint() geometry.Rect {
	return geometry.Rect{MinY: -w.Thickness / 2, MaxX: w.Length, MaxY: w.Thickness / 2}
}

func (w *Wall) AABB() geometry.AABB {
	f := w.Footprint()
	return geometry.AABB{
		Min: geometry.Vec3{X: f.MinX, Y: f.MinY},
		Max: geometry.Vec3{X: f.MaxX, Y: f.MaxY, Z: w.Height},
	}
}

func (w *Wall) Center() geometry.Vec3 { return w.AABB().Center() }
