package geometry

import "math"

// MirrorOpenings returns openings plus, for each opening whose wall is shared with
// another space of the plan, the same opening on that space's facing wall. Both
// copies of a shared wall then carve identically.
func MirrorOpenings(plan FloorPlan, openings []DoorOpening, thickness float64) []DoorOpening {
	out := make([]DoorOpening, 0, 2*len(openings))
	out = append(out, openings...)
	for _, o := range openings {
		_, to := RoomsAcross(plan, o, thickness)
		if to < 0 {
			continue
		}
		m := o
		m.RoomID = to
		m.Side = o.Side.Opposite()
		out = append(out, m)
	}
	return out
}

type wallKey struct {
	ax, ay, bx, by int64
}

func quantize(v, eps float64) int64 { return int64(math.Round(v / eps)) }

// UniqueWalls flattens room-keyed walls into one list in ascending room order,
// keeping the first of any segments that share both endpoints within eps.
// Adjacent rooms each own a copy of their party wall; only one is built.
func UniqueWalls(segments map[int][]WallSegment, eps float64) []WallSegment {
	seen := make(map[wallKey]bool)
	var out []WallSegment
	for _, id := range SortedIDs(segments) {
		for _, s := range segments[id] {
			a := [2]int64{quantize(s.X1, eps), quantize(s.Y1, eps)}
			b := [2]int64{quantize(s.X2, eps), quantize(s.Y2, eps)}
			if b[0] < a[0] || (b[0] == a[0] && b[1] < a[1]) {
				a, b = b, a
			}
			k := wallKey{a[0], a[1], b[0], b[1]}
			if seen[k] {
				continue
			}
			seen[k] = true
			out = append(out, s)
		}
	}
	return out
}
