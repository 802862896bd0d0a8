package roof

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ko-stant/building-engine/internal/config"
	"github.com/Ko-stant/building-engine/internal/geometry"
)

var square = geometry.Rect{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10}

func TestBuild_FaceCounts(t *testing.T) {
	cases := map[Type]int{Flat: 2, Hip: 5, Gabled: 5, Shed: 6}
	for typ, want := range cases {
		g := Build(square, 0, 2.5, typ)
		assert.Equal(t, typ, g.Type)
		assert.Len(t, g.Faces, want, typ.String())
		for _, f := range g.Faces {
			assert.Contains(t, []int{3, 4}, len(f.Vertices))
		}
	}
}

func TestBuild_UnknownTypeIsFlat(t *testing.T) {
	g := Build(square, 1, 2.5, Type(42))
	assert.Equal(t, Flat, g.Type)
	assert.Equal(t, Build(square, 1, 2.5, Flat), g)
	assert.Equal(t, Flat, ParseType("mansard"))
	assert.Equal(t, "flat", Type(-1).String())
}

func TestBuild_FlatWinding(t *testing.T) {
	g := Build(square, 3, 2.5, Flat)
	assert.Greater(t, g.Faces[0].Normal().Z, 0.0)
	assert.Less(t, g.Faces[1].Normal().Z, 0.0)
	for _, f := range g.Faces {
		for _, v := range f.Vertices {
			assert.Equal(t, 3.0, v.Z)
		}
	}
	// The bottom is the top with its vertex order reversed.
	top, bottom := g.Faces[0].Vertices, g.Faces[1].Vertices
	for i := range top {
		assert.Equal(t, top[i], bottom[len(bottom)-1-i])
	}
}

// Every non-degenerate face of a closed roof points away from the solid's centroid.
func TestBuild_FacesPointOutward(t *testing.T) {
	fp := geometry.Rect{MinX: 2, MinY: -1, MaxX: 14, MaxY: 7}
	for _, typ := range []Type{Hip, Gabled, Shed} {
		g := Build(fp, 6, 3, typ)
		centroid := uniqueCentroid(g)
		for i, f := range g.Faces {
			if f.Area() < 1e-9 {
				continue
			}
			out := f.Center().Sub(centroid)
			assert.Greater(t, f.Normal().Dot(out), 0.0, "%s face %d", typ, i)
		}
		bottom := g.Faces[len(g.Faces)-1]
		assert.Less(t, bottom.Normal().Z, 0.0, typ.String())
	}
}

func TestBuild_ClosedSolidsHaveZeroNetNormal(t *testing.T) {
	for _, typ := range []Type{Hip, Gabled, Shed} {
		var sum geometry.Vec3
		for _, f := range Build(square, 0, 4, typ).Faces {
			sum = sum.Add(f.Normal())
		}
		assert.InDelta(t, 0, sum.Len(), 1e-9, typ.String())
	}
}

func TestBuild_Apexes(t *testing.T) {
	hip := Build(square, 6, 2.5, Hip)
	assert.Equal(t, geometry.Vec3{X: 5, Y: 5, Z: 8.5}, hip.Faces[0].Vertices[2])

	gabled := Build(square, 0, 2, Gabled)
	assert.Equal(t, geometry.Vec3{X: 5, Y: 0, Z: 2}, gabled.Faces[0].Vertices[1])
	assert.Equal(t, geometry.Vec3{X: 5, Y: 10, Z: 2}, gabled.Faces[0].Vertices[2])

	shed := Build(square, 0, 2, Shed)
	box := shed.AABB()
	assert.Equal(t, geometry.Vec3{X: 10, Y: 10, Z: 2}, box.Max)
	assert.Equal(t, geometry.Vec3{}, box.Min)
	for _, v := range shed.Faces[0].Vertices {
		assert.InDelta(t, v.X/10*2, v.Z, 1e-12, "slope rises linearly along x")
	}
}

func TestBuild_Deterministic(t *testing.T) {
	for _, typ := range Types {
		a, err := json.Marshal(Build(square, 0, 2.5, typ))
		require.NoError(t, err)
		b, err := json.Marshal(Build(square, 0, 2.5, typ))
		require.NoError(t, err)
		assert.Equal(t, a, b)
	}
}

func TestParseType(t *testing.T) {
	for _, name := range []string{"HIP", "hip", " Hip "} {
		got, err := ParseTypeStrict(name)
		require.NoError(t, err)
		assert.Equal(t, Hip, got)
	}
	_, err := ParseTypeStrict("dome")
	assert.True(t, errors.Is(err, ErrUnknownType))
	assert.ErrorContains(t, err, "gabled")

	var g struct {
		Roof Type `json:"roof"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"roof":"shed"}`), &g))
	assert.Equal(t, Shed, g.Roof)
	require.NoError(t, json.Unmarshal([]byte(`{"roof":"pagoda"}`), &g))
	assert.Equal(t, Flat, g.Roof)
}

func TestBuilderUsesConfiguredHeight(t *testing.T) {
	s := config.Default()
	s.RoofHeight = 4
	g := NewBuilder(s).Build(square, 1, Hip)
	assert.Equal(t, 5.0, g.AABB().Max.Z)
}

func TestTrig(t *testing.T) {
	p := Trig(10, 45)
	assert.InDelta(t, 5, p.Height, 1e-9)
	assert.InDelta(t, 5*math.Sqrt2, p.SlopeLength, 1e-9)

	def := Trig(8, 0)
	assert.Equal(t, DefaultPitch, def.PitchDeg)
	assert.InDelta(t, 4*math.Tan(35*math.Pi/180), def.Height, 1e-12)
	assert.InDelta(t, def.Height, HeightForPitch(8, -1), 1e-12)
}

func uniqueCentroid(g Geometry) geometry.Vec3 {
	seen := map[geometry.Vec3]bool{}
	var sum geometry.Vec3
	for _, f := range g.Faces {
		for _, v := range f.Vertices {
			if !seen[v] {
				seen[v] = true
				sum = sum.Add(v)
			}
		}
	}
	return sum.Scale(1 / float64(len(seen)))
}
