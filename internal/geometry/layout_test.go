package geometry

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ko-stant/building-engine/internal/seed"
)

var testParams = LayoutParams{
	CorridorWidth:   2,
	MinRoomWidth:    3,
	WallHeight:      3,
	WallThickness:   0.2,
	GridUnit:        0.25,
	GoldenVariation: 0.04,
}

func TestCorridorsAndRooms_CoversFootprint(t *testing.T) {
	fp := Rect{0, 0, 20, 12}
	plan, err := CorridorsAndRooms(fp, testParams, seed.For(42, "room_split"))
	require.NoError(t, err)
	require.NotNil(t, plan.Corridor)
	assert.Equal(t, Rect{0, 5, 20, 7}, *plan.Corridor)

	area := plan.Corridor.Area()
	for _, r := range plan.Rooms {
		area += r.Rect.Area()
		assert.GreaterOrEqual(t, r.Rect.Width(), testParams.MinRoomWidth-1e-9, "room %d", r.ID)
	}
	assert.InDelta(t, fp.Area(), area, 1e-9)

	for _, r := range plan.Rooms {
		require.Len(t, plan.Walls[r.ID], 4)
		want := South
		if r.Rect.MaxY <= plan.Corridor.MinY {
			want = North
		}
		assert.Equal(t, []Side{want}, plan.Facing[r.ID], "room %d", r.ID)
	}
	assert.Len(t, plan.Walls[CorridorID], 2)
}

func TestCorridorsAndRooms_Deterministic(t *testing.T) {
	fp := Rect{0, 0, 30, 14}
	a, err := CorridorsAndRooms(fp, testParams, seed.For(7, "room_split"))
	require.NoError(t, err)
	b, err := CorridorsAndRooms(fp, testParams, seed.For(7, "room_split"))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestCorridorsAndRooms_ShallowFootprintHasNoCorridor(t *testing.T) {
	plan, err := CorridorsAndRooms(Rect{0, 0, 10, 5}, testParams, seed.For(1, "room_split"))
	require.NoError(t, err)
	assert.Nil(t, plan.Corridor)
	assert.Empty(t, plan.Facing)
	assert.NotEmpty(t, plan.Rooms)
}

func TestCorridorsAndRooms_RejectsEmptyFootprint(t *testing.T) {
	_, err := CorridorsAndRooms(Rect{0, 0, 0, 5}, testParams, seed.For(1, "room_split"))
	assert.Error(t, err)
}

func TestConnections_RoomsOpenOntoCorridor(t *testing.T) {
	plan, err := CorridorsAndRooms(Rect{0, 0, 20, 12}, testParams, seed.For(3, "room_split"))
	require.NoError(t, err)

	openings := DeriveCorridorOpenings(plan.Facing, plan.Rects(), 1, 2.1)
	require.Len(t, openings, len(plan.Rooms))
	for _, c := range Connections(plan, openings, 0.2) {
		assert.Equal(t, CorridorID, c.To)
		assert.NotEqual(t, CorridorID, c.From)
	}

	// A south-facing opening on a south-band room leads outside.
	r := plan.Rooms[0]
	_, to := RoomsAcross(plan, DoorOpening{RoomID: r.ID, Side: South, Center: r.Rect.Midpoint(South)}, 0.2)
	assert.Equal(t, -1, to)
}

func TestBuildSlabs(t *testing.T) {
	fp := Rect{0, 0, 10, 8}
	slabs := BuildSlabs(fp, 2, 3, 0.2)
	require.Len(t, slabs, 3)
	for i, s := range slabs {
		assert.Equal(t, float64(i)*3, s.Z)
		assert.Equal(t, fp, s.Footprint())
	}
	assert.InDelta(t, 6.2, slabs[2].AABB().Max.Z, 1e-12)
	assert.Nil(t, BuildSlabs(fp, 0, 3, 0.2))
	assert.InDelta(t, 6.2, RoofBase(2, 3, 0.2), 1e-12)
}

func TestGridPos(t *testing.T) {
	assert.Equal(t, GridPos{123, 0, 210}, FromMeters(1.23, 0, 2.1, SnapMicro))
	assert.Equal(t, GridPos{125, 0, 200}, FromMeters(1.3, 0.1, 2.1, SnapMeso))
	assert.Equal(t, GridPos{300, 0, 0}, FromMeters(2.6, 0.4, 0.2, SnapMacro))
	assert.Equal(t, 90, MetersToUnits(0.9))
	assert.InDelta(t, 1.25, GridPos{125, 0, 0}.ToMeters().X, 1e-12)

	data, err := json.Marshal(GridPos{1, 2, 3})
	require.NoError(t, err)
	assert.JSONEq(t, `[1,2,3]`, string(data))

	var g GridPos
	require.NoError(t, json.Unmarshal([]byte(`[4,5,6]`), &g))
	assert.Equal(t, GridPos{4, 5, 6}, g)
	assert.Error(t, json.Unmarshal([]byte(`{"x":1}`), &g))
}

func TestRectAndSideHelpers(t *testing.T) {
	r := NewRect(4, 3, 0, 0)
	assert.Equal(t, Rect{0, 0, 4, 3}, r)
	a, b := r.Edge(East)
	assert.Equal(t, Vec2{4, 0}, a)
	assert.Equal(t, Vec2{4, 3}, b)
	assert.Equal(t, Vec2{0, 1.5}, r.Midpoint(West))

	_, err := ParseSide("up")
	assert.Error(t, err)
	s, err := ParseSide("south")
	require.NoError(t, err)
	assert.Equal(t, South, s)
	assert.Equal(t, Vec2{0, -1}, s.Normal())

	box := AABB{Min: Vec3{0, 0, 0}, Max: Vec3{1.23456, 2, 3}}
	assert.Equal(t, 1.2346, box.Round(4).Max.X)
	assert.Equal(t, Vec3{1.23456 / 2, 1, 1.5}, box.Center())
}

func TestLoadPlanFromFile(t *testing.T) {
	def := PlanDefinition{
		ID:        "studio",
		Footprint: Rect{0, 0, 8, 6},
		Rooms: []RoomDefinition{
			{ID: 1, Rect: Rect{0, 0, 4, 6}, Facing: []Side{East}},
			{ID: 2, Name: "bath", Rect: Rect{4, 0, 8, 6}},
		},
		Doors: []DoorDefinition{{RoomID: 2, Side: South}},
	}
	data, err := json.Marshal(def)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "plan.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	got, err := LoadPlanFromFile(path)
	require.NoError(t, err)

	plan := got.FloorPlan(3, 0.2)
	require.Len(t, plan.Rooms, 2)
	assert.Equal(t, "room_1", plan.Rooms[0].Name)
	assert.Equal(t, "bath", plan.Rooms[1].Name)
	assert.Equal(t, []Side{East}, plan.Facing[1])
	assert.Len(t, plan.Walls[2], 4)

	openings := got.Openings(1, 2.1)
	require.Len(t, openings, 1)
	assert.Equal(t, Vec2{6, 0}, openings[0].Center)
	assert.Equal(t, 1.0, openings[0].Width)
}

func TestPlanDefinition_Validate(t *testing.T) {
	dup := PlanDefinition{ID: "dup", Rooms: []RoomDefinition{
		{ID: 1, Rect: Rect{0, 0, 1, 1}},
		{ID: 1, Rect: Rect{1, 0, 2, 1}},
	}}
	assert.ErrorContains(t, dup.Validate(), "duplicate room id 1")

	badDoor := PlanDefinition{ID: "door", Rooms: []RoomDefinition{{ID: 1, Rect: Rect{0, 0, 1, 1}}},
		Doors: []DoorDefinition{{RoomID: 4, Side: North}}}
	assert.ErrorContains(t, badDoor.Validate(), "unknown room 4")

	assert.Error(t, (&PlanDefinition{ID: "empty"}).Validate())

	_, err := LoadPlanFromFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
