package door

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ko-stant/building-engine/internal/config"
	"github.com/Ko-stant/building-engine/internal/geometry"
)

func build(t *testing.T, style, material, swing string) *Door {
	t.Helper()
	d, err := Build(style, material, swing, "door", geometry.Vec3{}, config.Default())
	require.NoError(t, err)
	return d
}

func TestBuild_SingleWoodInwardLeft(t *testing.T) {
	d := build(t, "single", "wood", "inward_left")

	names := make([]string, 0, len(d.Parts))
	for _, p := range d.Parts {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"frame_jamb_left", "frame_jamb_right", "frame_head", "door_leaf"}, names)
	require.Len(t, d.Slots, 4)

	for _, tag := range []string{"arch_door", "door_single", "mat_wood", "swing_inward_left", "size_0.9m", Version} {
		assert.Contains(t, d.Tags, tag)
	}

	knob, ok := d.Slot("doorknob")
	require.True(t, ok)
	assert.Greater(t, knob.Position[0], d.Meta.WidthM/2)
	assert.True(t, d.HingeLeft())
}

func TestBuild_PartLayout(t *testing.T) {
	d := build(t, "double", "glass", "outward_right")
	w, h := d.Meta.WidthM, d.Meta.HeightM
	assert.Equal(t, 1.6, w)
	assert.Equal(t, 2.1, h)

	left, _ := d.Part("frame_jamb_left")
	assert.Equal(t, geometry.Vec3{}, left.Position)
	assert.Equal(t, "frame_vertical", left.Type)
	assert.Equal(t, "frame_wood", left.Material)

	right, _ := d.Part("frame_jamb_right")
	assert.InDelta(t, w-FrameThickness, right.Position.X, 1e-12)

	head, _ := d.Part("frame_head")
	assert.Equal(t, "frame_horizontal", head.Type)
	assert.InDelta(t, h-FrameThickness, head.Position.Z, 1e-12)
	assert.Equal(t, w, head.Size.X)

	leaf, ok := d.Part("door_leaf")
	require.True(t, ok)
	assert.Equal(t, "glass", leaf.Material)
	assert.Equal(t, "outward_right", leaf.Swing)
	assert.InDelta(t, w-2*FrameThickness, leaf.Size.X, 1e-12)
	assert.Equal(t, geometry.Vec3{X: FrameThickness, Y: FrameDepth / 2, Z: FrameThickness}, leaf.Position)

	_, ok = d.Part("threshold")
	assert.False(t, ok)

	// Every part stays inside the door's bounding box.
	for _, p := range d.Parts {
		b := p.Bounds()
		assert.GreaterOrEqual(t, b.Min.X, 0.0, p.Name)
		assert.LessOrEqual(t, b.Max.X, w+1e-12, p.Name)
		assert.LessOrEqual(t, b.Max.Z, h+1e-12, p.Name)
	}
}

func TestBuild_Slots(t *testing.T) {
	d := build(t, "single", "metal", "inward_right")

	wall, _ := d.Slot("wall_interface")
	assert.Equal(t, "door_opening", wall.Type)
	assert.True(t, wall.Required)
	assert.Equal(t, [2]float64{0.9, 2.1}, wall.Size)
	assert.Equal(t, geometry.GridPos{X: 45, Y: 7, Z: 105}, wall.GridPos)

	knob, _ := d.Slot("doorknob")
	assert.Equal(t, "door_hardware", knob.Type)
	assert.False(t, knob.Required)
	assert.Less(t, knob.Position[0], d.Meta.WidthM/2)
	assert.Equal(t, 0.95, knob.Position[2])

	top, _ := d.Slot("hinge_top")
	bot, _ := d.Slot("hinge_bot")
	for _, s := range []Slot{top, bot} {
		assert.Equal(t, "door_hinge", s.Type)
		assert.True(t, s.Required)
		assert.InDelta(t, 0.9-0.05, s.Position[0], 1e-12)
	}
	assert.InDelta(t, 2.1-0.2, top.Position[2], 1e-12)
	assert.Equal(t, 0.3, bot.Position[2])
	assert.Equal(t, 30, bot.GridPos.Z)

	for _, s := range d.Slots {
		assert.False(t, s.Occupied)
		assert.GreaterOrEqual(t, s.Position[0], 0.0)
		assert.LessOrEqual(t, s.Position[0], d.Meta.WidthM)
		assert.GreaterOrEqual(t, s.Position[2], 0.0)
		assert.LessOrEqual(t, s.Position[2], d.Meta.HeightM)
	}
}

func TestBuild_EverySwingAndMaterial(t *testing.T) {
	for _, m := range ValidMaterials {
		for _, s := range ValidSwings {
			d := build(t, "garage", m, s)
			assert.Contains(t, d.Tags, "mat_"+m)
			assert.Contains(t, d.Tags, "swing_"+s)
			assert.Contains(t, Materials, m)
		}
	}
	d := build(t, "garage", "composite", "sliding")
	knob, _ := d.Slot("doorknob")
	assert.InDelta(t, 0.1, knob.Position[0], 1e-12, "sliding doors hinge right")
	assert.Contains(t, d.Tags, "size_2.5m")
}

func TestBuild_InvalidArguments(t *testing.T) {
	cfg := config.Default()
	cases := []struct {
		style, material, swing string
		mention                string
	}{
		{"invalid_style", "wood", "inward_left", "garage"},
		{"single", "marble", "inward_left", "composite"},
		{"single", "wood", "revolving", "sliding"},
	}
	for _, tc := range cases {
		d, err := Build(tc.style, tc.material, tc.swing, "bad", geometry.Vec3{}, cfg)
		assert.Nil(t, d)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidArgument))
		assert.ErrorContains(t, err, tc.mention, "error names the valid set")
	}
	for _, style := range []string{"single", "double", "garage"} {
		_, err := Build(style, "wood", "inward_left", "ok", geometry.Vec3{}, cfg)
		assert.NoError(t, err, style)
	}
}

func TestBuild_Deterministic(t *testing.T) {
	a, err := json.Marshal(build(t, "double", "wood", "outward_left"))
	require.NoError(t, err)
	b, err := json.Marshal(build(t, "double", "wood", "outward_left"))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestDoor_GridObject(t *testing.T) {
	var obj geometry.GridObject
	d, err := Build("single", "wood", "inward_left", "front", geometry.Vec3{X: 2.1, Y: 0.6, Z: 0}, config.Default())
	require.NoError(t, err)
	obj = d

	assert.Equal(t, geometry.GridPos{X: 200, Y: 50, Z: 0}, d.GridPos)
	assert.Equal(t, geometry.SnapMeso, d.SnapMode)
	assert.Equal(t, [3]int{90, 15, 210}, d.GridSize)

	box := obj.AABB()
	assert.InDelta(t, 2.0, box.Min.X, 1e-9)
	assert.InDelta(t, 2.9, box.Max.X, 1e-9)
	fp := obj.Footprint()
	assert.InDelta(t, 0.9, fp.Width(), 1e-9)
	assert.InDelta(t, FrameDepth, fp.Depth(), 1e-9)
	c := obj.Center()
	assert.InDelta(t, 2.45, c.X, 1e-9)
	assert.InDelta(t, 1.05, c.Z, 1e-9)
}

func TestDoor_MarshalJSON(t *testing.T) {
	d, err := Build("single", "wood", "inward_left", "test_door", geometry.Vec3{}, config.Default())
	require.NoError(t, err)
	data, err := json.Marshal(d)
	require.NoError(t, err)

	var got struct {
		Name     string                     `json:"name"`
		GridPos  [3]int                     `json:"grid_pos"`
		Parts    map[string]json.RawMessage `json:"parts"`
		Slots    []map[string]any           `json:"slots"`
		Tags     []string                   `json:"tags"`
		SnapMode string                     `json:"snap_mode"`
		Meta     struct {
			WidthM    float64 `json:"width_m"`
			PartCount int     `json:"part_count"`
			SlotCount int     `json:"slot_count"`
			AABB      struct {
				Min [3]float64 `json:"min"`
				Max [3]float64 `json:"max"`
			} `json:"aabb"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "test_door", got.Name)
	assert.Equal(t, "meso", got.SnapMode)
	assert.Len(t, got.Parts, 4)
	assert.Contains(t, got.Parts, "door_leaf")
	assert.Len(t, got.Slots, 4)
	assert.Equal(t, "wall_interface", got.Slots[0]["id"])
	assert.Equal(t, 4, got.Meta.PartCount)
	assert.Equal(t, 4, got.Meta.SlotCount)
	assert.Equal(t, [3]float64{0.9, FrameDepth, 2.1}, got.Meta.AABB.Max)

	var leaf partJSON
	require.NoError(t, json.Unmarshal(got.Parts["door_leaf"], &leaf))
	assert.Equal(t, "inward_left", leaf.Swing)
	assert.Equal(t, [3]float64{FrameThickness, FrameDepth / 2, FrameThickness}, leaf.Position)
}
