package mesh

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ko-stant/building-engine/internal/config"
	"github.com/Ko-stant/building-engine/internal/door"
	"github.com/Ko-stant/building-engine/internal/geometry"
	"github.com/Ko-stant/building-engine/internal/roof"
)

const weld = 0.0005

type recorder struct {
	polygons [][]geometry.Vec3
	boxes    [][2]geometry.Vec3
}

func (r *recorder) AddPolygon(vs []geometry.Vec3) { r.polygons = append(r.polygons, vs) }
func (r *recorder) AddBox(lo, hi geometry.Vec3)   { r.boxes = append(r.boxes, [2]geometry.Vec3{lo, hi}) }
func (r *recorder) MergeAndCleanup(float64) Stats { return Stats{} }

func TestAddBox_IsClosedManifold(t *testing.T) {
	m := New("box")
	m.AddBox(geometry.Vec3{X: 1, Y: 2, Z: 3}, geometry.Vec3{X: 3, Y: 5, Z: 7})
	assert.Len(t, m.Vertices, 8)
	assert.Len(t, m.Faces, 6)
	assert.Equal(t, 12, m.EdgeCount())
	assert.Equal(t, 2, m.EulerCharacteristic())
	assert.True(t, IsManifold(m))
	assert.InDelta(t, 2*3*4, m.SignedVolume(), 1e-9)

	st := m.MergeAndCleanup(weld)
	assert.Equal(t, Stats{}, st)
}

func TestIsManifold_OpenOrEmpty(t *testing.T) {
	assert.False(t, IsManifold(nil))
	assert.False(t, IsManifold(New("empty")))

	m := New("open")
	m.AddBox(geometry.Vec3{}, geometry.Vec3{X: 1, Y: 1, Z: 1})
	m.Faces = m.Faces[1:]
	assert.False(t, IsManifold(m))
}

func TestEmitWalls_WeldsIntoClosedBox(t *testing.T) {
	for _, seg := range []geometry.WallSegment{
		{Side: geometry.North, X1: 0, Y1: 4, X2: 4, Y2: 4, Height: 3, Thickness: 0.2},
		{Side: geometry.South, X1: 4, Y1: 0, X2: 0, Y2: 0, Height: 3, Thickness: 0.2},
		{Side: geometry.East, X1: 2, Y1: 0, X2: 2, Y2: 4, Height: 3, Thickness: 0.2},
	} {
		m := New("wall")
		require.Equal(t, 1, EmitWalls(m, []geometry.WallSegment{seg}, 0))
		assert.Len(t, m.Faces, 6)
		assert.Greater(t, m.SignedVolume(), 0.0, "emitted winding already points outward")

		st := m.MergeAndCleanup(weld)
		assert.Equal(t, 16, st.Welded)
		assert.Zero(t, st.Flipped)
		assert.Len(t, m.Vertices, 8)
		assert.True(t, IsManifold(m))
		assert.InDelta(t, 4*0.2*3, m.SignedVolume(), 1e-9)
	}
}

func TestEmitWalls_SkipsDegenerate(t *testing.T) {
	r := &recorder{}
	n := EmitWalls(r, []geometry.WallSegment{
		{Side: geometry.North, X1: 1, Y1: 1, X2: 1 + MinWallLength/2, Y2: 1, Height: 3, Thickness: 0.2},
		{Side: geometry.North, X1: 0, Y1: 1, X2: 2, Y2: 1, Height: 3, Thickness: 0.2},
	}, 3)
	assert.Equal(t, 1, n)
	require.Len(t, r.polygons, 6)
	for _, v := range r.polygons[0] {
		assert.Equal(t, 3.0, v.Z)
	}
	assert.Equal(t, 6.0, r.polygons[1][0].Z)
}

func TestMergeAndCleanup_RemovesSharedFaces(t *testing.T) {
	m := New("pair")
	m.AddBox(geometry.Vec3{}, geometry.Vec3{X: 1, Y: 1, Z: 1})
	m.AddBox(geometry.Vec3{X: 1}, geometry.Vec3{X: 2, Y: 1, Z: 1})

	st := m.MergeAndCleanup(weld)
	assert.Equal(t, 4, st.Welded)
	assert.Equal(t, 2, st.Internal)
	assert.Len(t, m.Faces, 10)
	assert.Len(t, m.Vertices, 12)
	assert.True(t, IsManifold(m))
	assert.InDelta(t, 2, m.SignedVolume(), 1e-9)
}

func TestMergeAndCleanup_OrientsInvertedShell(t *testing.T) {
	m := New("inside-out")
	m.AddBox(geometry.Vec3{}, geometry.Vec3{X: 2, Y: 2, Z: 2})
	for _, f := range m.Faces {
		slices.Reverse(f)
	}
	// One face turned back so the shell is also inconsistent.
	slices.Reverse(m.Faces[3])
	require.Less(t, m.SignedVolume(), 8.0)

	st := m.MergeAndCleanup(weld)
	assert.Equal(t, 5, st.Flipped)
	assert.InDelta(t, 8, m.SignedVolume(), 1e-9)
}

func TestMergeAndCleanup_DropsDegenerateAndEmpty(t *testing.T) {
	m := New("bits")
	m.AddPolygon([]geometry.Vec3{{X: 0}, {X: 1}})
	assert.Empty(t, m.Faces)
	m.AddPolygon([]geometry.Vec3{{X: 0}, {X: 1}, {X: 2}})
	m.AddPolygon([]geometry.Vec3{{X: 0}, {X: 0.0001}, {Y: 1}})

	st := m.MergeAndCleanup(weld)
	assert.Equal(t, 2, st.Degenerate)
	assert.Empty(t, m.Faces)
	assert.Empty(t, m.Vertices)

	assert.Equal(t, Stats{}, New("none").MergeAndCleanup(weld))
}

func TestEmitRoof_ClosedTopologies(t *testing.T) {
	fp := geometry.Rect{MaxX: 10, MaxY: 10}
	cases := []struct {
		typ        roof.Type
		faces      int
		degenerate int
		volume     float64
	}{
		{roof.Hip, 5, 0, 100 * 2.5 / 3},
		{roof.Gabled, 5, 0, 100 * 2.5 / 2},
		{roof.Shed, 5, 1, 100 * 2.5 / 2},
	}
	for _, tc := range cases {
		m := New(tc.typ.String())
		EmitRoof(m, roof.Build(fp, 0, 2.5, tc.typ))
		st := m.MergeAndCleanup(weld)
		assert.Equal(t, tc.degenerate, st.Degenerate, tc.typ.String())
		assert.Len(t, m.Faces, tc.faces, tc.typ.String())
		assert.True(t, IsManifold(m), tc.typ.String())
		assert.InDelta(t, tc.volume, m.SignedVolume(), 1e-9, tc.typ.String())
	}
}

func TestEmitSlabsAndDoor(t *testing.T) {
	r := &recorder{}
	EmitSlabs(r, geometry.BuildSlabs(geometry.Rect{MaxX: 4, MaxY: 3}, 2, 3, 0.2))
	require.Len(t, r.boxes, 3)
	assert.Equal(t, geometry.Vec3{X: 4, Y: 3, Z: 3.2}, r.boxes[1][1])

	d, err := door.Build("single", "wood", "inward_left", "d", geometry.Vec3{X: 1}, config.Default())
	require.NoError(t, err)
	m := New("door")
	EmitDoor(m, d)
	assert.Len(t, m.Faces, 4*6)
	assert.InDelta(t, 1.0, m.AABB().Min.X, 1e-9)
	assert.InDelta(t, 1.9, m.AABB().Max.X, 1e-9)
}
