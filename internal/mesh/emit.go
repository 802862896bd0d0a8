package mesh

import (
	"github.com/Ko-stant/building-engine/internal/door"
	"github.com/Ko-stant/building-engine/internal/geometry"
	"github.com/Ko-stant/building-engine/internal/roof"
)

// MinWallLength is the shortest wall run that is still emitted.
const MinWallLength = 1e-4

// EmitWalls emits every wall segment as a box offset by half its thickness on each
// side of the centerline, standing on baseZ. It returns the number emitted.
func EmitWalls(b Builder, segments []geometry.WallSegment, baseZ float64) int {
	n := 0
	for _, s := range segments {
		if emitWall(b, s, baseZ) {
			n++
		}
	}
	return n
}

func emitWall(b Builder, s geometry.WallSegment, baseZ float64) bool {
	length := s.Length()
	if length < MinWallLength {
		return false
	}
	ux, uy := (s.X2-s.X1)/length, (s.Y2-s.Y1)/length
	h := s.Thickness / 2
	nx, ny := -uy*h, ux*h

	// Bottom ring runs clockwise seen from above: left side forward, then back.
	ring := [4]geometry.Vec2{
		{X: s.X1 + nx, Y: s.Y1 + ny},
		{X: s.X2 + nx, Y: s.Y2 + ny},
		{X: s.X2 - nx, Y: s.Y2 - ny},
		{X: s.X1 - nx, Y: s.Y1 - ny},
	}
	lo := func(i int) geometry.Vec3 { return geometry.Vec3{X: ring[i].X, Y: ring[i].Y, Z: baseZ} }
	hi := func(i int) geometry.Vec3 { return geometry.Vec3{X: ring[i].X, Y: ring[i].Y, Z: baseZ + s.Height} }

	b.AddPolygon([]geometry.Vec3{lo(0), lo(1), lo(2), lo(3)})
	b.AddPolygon([]geometry.Vec3{hi(0), hi(3), hi(2), hi(1)})
	for i := range ring {
		j := (i + 1) % len(ring)
		b.AddPolygon([]geometry.Vec3{lo(j), lo(i), hi(i), hi(j)})
	}
	return true
}

// EmitSlabs emits each slab as a box.
func EmitSlabs(b Builder, slabs []geometry.Slab) {
	for _, s := range slabs {
		box := s.AABB()
		b.AddBox(box.Min, box.Max)
	}
}

// EmitRoof emits the roof faces in order.
func EmitRoof(b Builder, g roof.Geometry) {
	for _, f := range g.Faces {
		b.AddPolygon(f.Vertices)
	}
}

// EmitDoor emits every part of d as a box placed at the door's origin.
func EmitDoor(b Builder, d *door.Door) {
	o := d.Origin()
	for _, p := range d.Parts {
		box := p.Bounds()
		b.AddBox(box.Min.Add(o), box.Max.Add(o))
	}
}
