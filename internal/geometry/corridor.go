package geometry

// DeriveCorridorOpenings returns one opening per (room, side) marked as facing the
// corridor, centered on the midpoint of that side of the room's rectangle. Rooms are
// visited in ascending id order and sides in their given order. Rooms without a
// rectangle are skipped.
func DeriveCorridorOpenings(facing map[int][]Side, rects map[int]Rect, width, height float64) []DoorOpening {
	var out []DoorOpening
	for _, id := range SortedIDs(facing) {
		r, ok := rects[id]
		if !ok {
			continue
		}
		for _, side := range facing[id] {
			out = append(out, DoorOpening{
				RoomID: id,
				Side:   side,
				Center: r.Midpoint(side),
				Width:  width,
				Height: height,
			})
		}
	}
	return out
}
