// Package roof builds the closed face topology of a roof over a rectangular
// footprint.
package roof

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/Ko-stant/building-engine/internal/config"
	"github.com/Ko-stant/building-engine/internal/geometry"
)

// ErrUnknownType is returned by ParseTypeStrict for unrecognized roof names.
var ErrUnknownType = errors.New("unknown roof type")

type Type int

const (
	Flat Type = iota
	Hip
	Gabled
	Shed
)

var typeNames = [...]string{"flat", "hip", "gabled", "shed"}

// Types lists every roof type in declaration order.
var Types = []Type{Flat, Hip, Gabled, Shed}

func (t Type) String() string {
	if t < Flat || t > Shed {
		return typeNames[Flat]
	}
	return typeNames[t]
}

// ParseTypeStrict resolves a case-insensitive roof name.
func ParseTypeStrict(s string) (Type, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range typeNames {
		if n == name {
			return Type(i), nil
		}
	}
	return Flat, fmt.Errorf("%w %q: valid %v", ErrUnknownType, s, typeNames)
}

// ParseType resolves a roof name, treating anything unrecognized as Flat.
func ParseType(s string) Type {
	t, _ := ParseTypeStrict(s)
	return t
}

func (t Type) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText applies the same Flat fallback as ParseType.
func (t *Type) UnmarshalText(b []byte) error {
	*t = ParseType(string(b))
	return nil
}

// Face is one planar polygon of the roof solid, three or four vertices.
type Face struct {
	Vertices []geometry.Vec3 `json:"vertices"`
}

// Normal returns the unnormalized Newell normal. Its length is twice the area.
func (f Face) Normal() geometry.Vec3 {
	var n geometry.Vec3
	for i, a := range f.Vertices {
		b := f.Vertices[(i+1)%len(f.Vertices)]
		n.X += (a.Y - b.Y) * (a.Z + b.Z)
		n.Y += (a.Z - b.Z) * (a.X + b.X)
		n.Z += (a.X - b.X) * (a.Y + b.Y)
	}
	return n
}

func (f Face) Area() float64 { return f.Normal().Len() / 2 }

func (f Face) Center() geometry.Vec3 {
	var c geometry.Vec3
	for _, v := range f.Vertices {
		c = c.Add(v)
	}
	return c.Scale(1 / float64(len(f.Vertices)))
}

// Geometry is the ordered face list of one roof.
type Geometry struct {
	Type  Type   `json:"type"`
	Faces []Face `json:"faces"`
}

// AABB bounds every vertex of the roof.
func (g Geometry) AABB() geometry.AABB {
	box := geometry.AABB{
		Min: geometry.Vec3{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)},
		Max: geometry.Vec3{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)},
	}
	for _, f := range g.Faces {
		for _, v := range f.Vertices {
			box = box.Union(geometry.AABB{Min: v, Max: v})
		}
	}
	return box
}

func face(vs ...geometry.Vec3) Face { return Face{Vertices: vs} }

// Build returns the faces of a roof of type t over footprint, starting at base and
// rising height above it. Out-of-range types build a flat roof.
//
// Winding is part of the contract: faces are emitted so their normals point out of
// the solid, and the bottom face always closes it facing down.
func Build(footprint geometry.Rect, base, height float64, t Type) Geometry {
	c := footprint.Corners(base)
	c0, c1, c2, c3 := c[0], c[1], c[2], c[3]
	top := base + height
	bottom := face(c3, c2, c1, c0)

	switch t {
	case Hip:
		mid := footprint.Center()
		apex := geometry.Vec3{X: mid.X, Y: mid.Y, Z: top}
		return Geometry{Type: Hip, Faces: []Face{
			face(c0, c1, apex),
			face(c1, c2, apex),
			face(c2, c3, apex),
			face(c3, c0, apex),
			bottom,
		}}

	case Gabled:
		midX := (footprint.MinX + footprint.MaxX) / 2
		ridgeA := geometry.Vec3{X: midX, Y: footprint.MinY, Z: top}
		ridgeB := geometry.Vec3{X: midX, Y: footprint.MaxY, Z: top}
		return Geometry{Type: Gabled, Faces: []Face{
			face(c0, ridgeA, ridgeB, c3),
			face(c1, c2, ridgeB, ridgeA),
			face(c0, c1, ridgeA),
			face(c3, ridgeB, c2),
			bottom,
		}}

	case Shed:
		// High edge along max x.
		s0 := c0
		s1 := geometry.Vec3{X: c1.X, Y: c1.Y, Z: top}
		s2 := geometry.Vec3{X: c2.X, Y: c2.Y, Z: top}
		s3 := c3
		return Geometry{Type: Shed, Faces: []Face{
			face(s0, s1, s2, s3),
			face(c0, c1, s1, s0),
			face(c1, c2, s2, s1),
			face(c2, c3, s3, s2),
			face(c3, c0, s0, s3),
			bottom,
		}}
	}

	return Geometry{Type: Flat, Faces: []Face{
		face(c0, c1, c2, c3),
		face(c3, c2, c1, c0),
	}}
}

// Builder binds the configured roof height.
type Builder struct {
	Height float64
}

func NewBuilder(s config.Settings) Builder {
	return Builder{Height: s.RoofHeight}
}

func (b Builder) Build(footprint geometry.Rect, base float64, t Type) Geometry {
	return Build(footprint, base, b.Height, t)
}
