// Package door composes parametric doors out of a fixed anatomy of frame and leaf
// parts plus the slots hardware attaches to.
package door

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/Ko-stant/building-engine/internal/config"
	"github.com/Ko-stant/building-engine/internal/geometry"
)

// ErrInvalidArgument is wrapped by every validation failure of Build.
var ErrInvalidArgument = errors.New("invalid argument")

const (
	FrameThickness = 0.05
	LeafThickness  = 0.05
	FrameDepth     = 0.15

	knobInset  = 0.1
	knobHeight = 0.95
	hingeInset = 0.05
)

// Version tags every door built by this package.
const Version = "modular_v2"

type Slot = geometry.Slot

// Part is one structural box of the door in door-local meters.
type Part struct {
	Name     string        `json:"-"`
	Type     string        `json:"type"`
	Position geometry.Vec3 `json:"-"`
	Size     geometry.Vec3 `json:"-"`
	Material string        `json:"material"`
	Swing    string        `json:"swing,omitempty"`
}

// Bounds returns the part's box in door-local coordinates.
func (p Part) Bounds() geometry.AABB {
	return geometry.AABB{Min: p.Position, Max: p.Position.Add(p.Size)}
}

// Meta carries every parameter needed to validate a door without rebuilding it.
type Meta struct {
	WidthM         float64       `json:"width_m"`
	HeightM        float64       `json:"height_m"`
	Style          string        `json:"style"`
	Material       string        `json:"material"`
	Swing          string        `json:"swing"`
	FrameThickness float64       `json:"frame_thickness"`
	LeafThickness  float64       `json:"leaf_thickness"`
	PartCount      int           `json:"part_count"`
	SlotCount      int           `json:"slot_count"`
	AABB           geometry.AABB `json:"-"`
}

// Door is a composed door. Parts are ordered jambs, head, leaf.
type Door struct {
	Name     string
	GridPos  geometry.GridPos
	GridSize [3]int
	SnapMode geometry.SnapMode
	Style    string
	Material string
	Swing    string
	Parts    []Part
	Slots    []Slot
	Tags     []string
	Meta     Meta
}

// Build validates the style, material and swing, then lays out the door at pos,
// snapped to the meso grid. Style dimensions come from cfg.DoorStandards.
func Build(style, material, swing, name string, pos geometry.Vec3, cfg config.Settings) (*Door, error) {
	dims, ok := cfg.DoorStandards[style]
	if !ok {
		return nil, fmt.Errorf("%w: door style %q, valid %v", ErrInvalidArgument, style, cfg.DoorStyles())
	}
	if !slices.Contains(ValidMaterials, material) {
		return nil, fmt.Errorf("%w: material %q, valid %v", ErrInvalidArgument, material, ValidMaterials)
	}
	if !slices.Contains(ValidSwings, swing) {
		return nil, fmt.Errorf("%w: swing %q, valid %v", ErrInvalidArgument, swing, ValidSwings)
	}

	w, h := dims.Width, dims.Height
	ft := FrameThickness
	widthU := geometry.MetersToUnits(w)
	heightU := geometry.MetersToUnits(h)
	depthU := geometry.MetersToUnits(FrameDepth)

	parts := []Part{
		{
			Name:     "frame_jamb_left",
			Type:     "frame_vertical",
			Size:     geometry.Vec3{X: ft, Y: FrameDepth, Z: h},
			Material: "frame_wood",
		},
		{
			Name:     "frame_jamb_right",
			Type:     "frame_vertical",
			Position: geometry.Vec3{X: w - ft},
			Size:     geometry.Vec3{X: ft, Y: FrameDepth, Z: h},
			Material: "frame_wood",
		},
		{
			Name:     "frame_head",
			Type:     "frame_horizontal",
			Position: geometry.Vec3{Z: h - ft},
			Size:     geometry.Vec3{X: w, Y: FrameDepth, Z: ft},
			Material: "frame_wood",
		},
		{
			Name:     "door_leaf",
			Type:     "leaf",
			Position: geometry.Vec3{X: ft, Y: FrameDepth / 2, Z: ft},
			Size:     geometry.Vec3{X: w - 2*ft, Y: LeafThickness, Z: h - 2*ft},
			Material: material,
			Swing:    swing,
		},
	}

	leftHinge := strings.Contains(swing, "left")
	knobX, hingeX := knobInset, w-hingeInset
	if leftHinge {
		knobX, hingeX = w-knobInset, hingeInset
	}
	midY := FrameDepth / 2
	micro := func(x, z float64) geometry.GridPos { return geometry.FromMeters(x, midY, z, geometry.SnapMicro) }

	slots := []Slot{
		{
			ID:       "wall_interface",
			Type:     "door_opening",
			GridPos:  geometry.GridPos{X: widthU / 2, Y: depthU / 2, Z: heightU / 2},
			Position: [3]float64{w / 2, midY, h / 2},
			Size:     [2]float64{w, h},
			Required: true,
		},
		{
			ID:       "doorknob",
			Type:     "door_hardware",
			GridPos:  micro(knobX, knobHeight),
			Position: [3]float64{knobX, midY, knobHeight},
			Size:     [2]float64{0.06, 0.06},
		},
		{
			ID:       "hinge_top",
			Type:     "door_hinge",
			GridPos:  micro(hingeX, h-0.2),
			Position: [3]float64{hingeX, midY, h - 0.2},
			Size:     [2]float64{0.04, 0.1},
			Required: true,
		},
		{
			ID:       "hinge_bot",
			Type:     "door_hinge",
			GridPos:  micro(hingeX, 0.3),
			Position: [3]float64{hingeX, midY, 0.3},
			Size:     [2]float64{0.04, 0.1},
			Required: true,
		},
	}

	return &Door{
		Name:     name,
		GridPos:  geometry.FromMeters(pos.X, pos.Y, pos.Z, geometry.SnapMeso),
		GridSize: [3]int{widthU, depthU, heightU},
		SnapMode: geometry.SnapMeso,
		Style:    style,
		Material: material,
		Swing:    swing,
		Parts:    parts,
		Slots:    slots,
		Tags: []string{
			"arch_door",
			"door_" + style,
			"mat_" + material,
			"swing_" + swing,
			"size_" + formatMeters(w) + "m",
			Version,
		},
		Meta: Meta{
			WidthM:         w,
			HeightM:        h,
			Style:          style,
			Material:       material,
			Swing:          swing,
			FrameThickness: FrameThickness,
			LeafThickness:  LeafThickness,
			PartCount:      len(parts),
			SlotCount:      len(slots),
			AABB:           geometry.AABB{Max: geometry.Vec3{X: w, Y: FrameDepth, Z: h}},
		},
	}, nil
}

// formatMeters prints a length the way size tags spell it: shortest form, always
// with a decimal point.
func formatMeters(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// Part returns the named part.
func (d *Door) Part(name string) (Part, bool) {
	for _, p := range d.Parts {
		if p.Name == name {
			return p, true
		}
	}
	return Part{}, false
}

// Slot returns the named slot.
func (d *Door) Slot(id string) (Slot, bool) {
	if i := geometry.FindSlot(d.Slots, id); i >= 0 {
		return d.Slots[i], true
	}
	return Slot{}, false
}

// HingeLeft reports whether the hinges sit on the left jamb.
func (d *Door) HingeLeft() bool { return strings.Contains(d.Swing, "left") }

// Origin is the snapped world position of the door's local origin.
func (d *Door) Origin() geometry.Vec3 { return d.GridPos.ToMeters() }

func (d *Door) Footprint() geometry.Rect {
	o := d.Origin()
	return geometry.Rect{MinX: o.X, MinY: o.Y, MaxX: o.X + d.Meta.WidthM, MaxY: o.Y + FrameDepth}
}

func (d *Door) AABB() geometry.AABB {
	o := d.Origin()
	return geometry.AABB{Min: d.Meta.AABB.Min.Add(o), Max: d.Meta.AABB.Max.Add(o)}
}

func (d *Door) Center() geometry.Vec3 { return d.AABB().Center() }

type partJSON struct {
	Type     string     `json:"type"`
	Position [3]float64 `json:"position"`
	Size     [3]float64 `json:"size"`
	Material string     `json:"material"`
	Swing    string     `json:"swing,omitempty"`
}

type aabbJSON struct {
	Min [3]float64 `json:"min"`
	Max [3]float64 `json:"max"`
}

// MarshalJSON renders the door with parts keyed by name and vectors as arrays.
func (d *Door) MarshalJSON() ([]byte, error) {
	parts := make(map[string]partJSON, len(d.Parts))
	for _, p := range d.Parts {
		parts[p.Name] = partJSON{
			Type:     p.Type,
			Position: p.Position.Array(),
			Size:     p.Size.Array(),
			Material: p.Material,
			Swing:    p.Swing,
		}
	}
	meta := struct {
		Meta
		AABB aabbJSON `json:"aabb"`
	}{d.Meta, aabbJSON{Min: d.Meta.AABB.Min.Array(), Max: d.Meta.AABB.Max.Array()}}

	return json.Marshal(struct {
		Name     string              `json:"name"`
		GridPos  geometry.GridPos    `json:"grid_pos"`
		GridSize [3]int              `json:"grid_size"`
		SnapMode geometry.SnapMode   `json:"snap_mode"`
		Style    string              `json:"style"`
		Material string              `json:"material"`
		Swing    string              `json:"swing"`
		Parts    map[string]partJSON `json:"parts"`
		Slots    []Slot              `json:"slots"`
		Tags     []string            `json:"tags"`
		Meta     any                 `json:"meta"`
	}{d.Name, d.GridPos, d.GridSize, d.SnapMode, d.Style, d.Material, d.Swing, parts, d.Slots, d.Tags, meta})
}
