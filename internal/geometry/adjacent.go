package geometry

// Connection records which two spaces an opening joins. To is -1 when the
// opening leads outside the plan.
type Connection struct {
	From int  `json:"from"`
	To   int  `json:"to"`
	Side Side `json:"side"`
}

// RoomsAcross returns the room owning the opening and the room on the other side
// of its wall, sampling just past the wall thickness along the side's normal.
func RoomsAcross(plan FloorPlan, o DoorOpening, thickness float64) (int, int) {
	n := o.Side.Normal()
	sample := Vec2{o.Center.X + n.X*thickness, o.Center.Y + n.Y*thickness}
	if id, ok := plan.RoomAt(sample); ok && id != o.RoomID {
		return o.RoomID, id
	}
	return o.RoomID, -1
}

// Connections maps every opening to the spaces it joins, in opening order.
func Connections(plan FloorPlan, openings []DoorOpening, thickness float64) []Connection {
	out := make([]Connection, 0, len(openings))
	for _, o := range openings {
		a, b := RoomsAcross(plan, o, thickness)
		out = append(out, Connection{From: a, To: b, Side: o.Side})
	}
	return out
}
