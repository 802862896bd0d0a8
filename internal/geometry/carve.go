package geometry

import (
	"math"
	"sort"
)

type roomSide struct {
	room int
	side Side
}

// Carve splits wall segments around door openings.
//
// Openings are grouped by (room, side) and applied to the matching segments in input
// order, each against the pieces left by the previous one. An opening cuts a piece
// only when its center lies more than eps inside the piece's interval; the remainders
// left of center-width/2 and right of center+width/2 survive if longer than eps.
// Segments without a matching opening pass through unchanged.
func Carve(segments map[int][]WallSegment, openings []DoorOpening, eps float64) map[int][]WallSegment {
	byRoomSide := make(map[roomSide][]DoorOpening)
	for _, o := range openings {
		k := roomSide{o.RoomID, o.Side}
		byRoomSide[k] = append(byRoomSide[k], o)
	}

	out := make(map[int][]WallSegment, len(segments))
	for _, id := range SortedIDs(segments) {
		carved := make([]WallSegment, 0, len(segments[id]))
		for _, seg := range segments[id] {
			matching := byRoomSide[roomSide{id, seg.Side}]
			if len(matching) == 0 {
				carved = append(carved, seg)
				continue
			}
			pieces := []WallSegment{seg}
			for _, o := range matching {
				pieces = cutAll(pieces, o, eps)
			}
			carved = append(carved, pieces...)
		}
		out[id] = carved
	}
	return out
}

func cutAll(pieces []WallSegment, o DoorOpening, eps float64) []WallSegment {
	next := make([]WallSegment, 0, len(pieces)+1)
	for _, p := range pieces {
		lo, hi := p.Interval()
		c := o.Center.Y
		if p.Side.RunsAlongX() {
			c = o.Center.X
		}
		if c > lo+eps && c < hi-eps {
			next = append(next, split(p, c, o.Width, eps)...)
		} else {
			next = append(next, p)
		}
	}
	return next
}

// split returns the parts of seg outside [c-w/2, c+w/2], normalized low to high.
func split(seg WallSegment, c, w, eps float64) []WallSegment {
	lo, hi := seg.Interval()
	leftEnd, rightStart := c-w/2, c+w/2

	var pieces []WallSegment
	if leftEnd-lo > eps {
		pieces = append(pieces, seg.span(lo, leftEnd))
	}
	if hi-rightStart > eps {
		pieces = append(pieces, seg.span(rightStart, hi))
	}
	return pieces
}

// span copies seg restricted to [a, b] along its dominant axis.
func (w WallSegment) span(a, b float64) WallSegment {
	out := w
	if w.Side.RunsAlongX() {
		out.X1, out.X2 = a, b
	} else {
		out.Y1, out.Y2 = a, b
	}
	return out
}

// TotalLength sums the lengths of every segment.
func TotalLength(segments []WallSegment) float64 {
	var sum float64
	for _, s := range segments {
		sum += s.Length()
	}
	return sum
}

// Degenerate reports whether the segment is no longer than eps.
func (w WallSegment) Degenerate(eps float64) bool {
	return w.Length() <= eps || math.IsNaN(w.Length())
}

// SortedIDs returns the keys of a room-keyed map in ascending order.
func SortedIDs[V any](m map[int]V) []int {
	ids := make([]int, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
