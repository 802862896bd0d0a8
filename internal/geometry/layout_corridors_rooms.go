package geometry

import (
	"fmt"
	"math"

	"github.com/Ko-stant/building-engine/internal/seed"
)

// CorridorID is the room id reserved for the shared corridor.
const CorridorID = 0

// Room is one enclosed space of a floor plan.
type Room struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Rect Rect   `json:"rect"`
}

// FloorPlan is the layout of one story: rooms, their wall runs and which of their
// sides open onto the corridor.
type FloorPlan struct {
	Footprint Rect                  `json:"footprint"`
	Corridor  *Rect                 `json:"corridor,omitempty"`
	Rooms     []Room                `json:"rooms"`
	Walls     map[int][]WallSegment `json:"walls"`
	Facing    map[int][]Side        `json:"facing"`
}

// Rects returns room rectangles keyed by id, the corridor included.
func (p FloorPlan) Rects() map[int]Rect {
	m := make(map[int]Rect, len(p.Rooms)+1)
	for _, r := range p.Rooms {
		m[r.ID] = r.Rect
	}
	if p.Corridor != nil {
		m[CorridorID] = *p.Corridor
	}
	return m
}

// RoomAt returns the id of the room containing pt, the corridor included.
func (p FloorPlan) RoomAt(pt Vec2) (int, bool) {
	for _, r := range p.Rooms {
		if r.Rect.Contains(pt) {
			return r.ID, true
		}
	}
	if p.Corridor != nil && p.Corridor.Contains(pt) {
		return CorridorID, true
	}
	return 0, false
}

// LayoutParams are the dimensions the corridor layout works with.
type LayoutParams struct {
	CorridorWidth   float64
	MinRoomWidth    float64
	WallHeight      float64
	WallThickness   float64
	GridUnit        float64
	GoldenVariation float64
}

// CorridorsAndRooms lays out a floor with a corridor running along x through the
// middle of the footprint and rooms on both sides, split at golden-ratio points
// drawn from rng. Rooms south of the corridor face north, rooms north of it face
// south. A footprint too shallow for a corridor becomes a single band of rooms.
func CorridorsAndRooms(footprint Rect, p LayoutParams, rng *seed.Stream) (FloorPlan, error) {
	if footprint.Width() <= 0 || footprint.Depth() <= 0 {
		return FloorPlan{}, fmt.Errorf("layout: empty footprint %+v", footprint)
	}
	minRoom := p.MinRoomWidth
	if minRoom <= 0 {
		minRoom = 2 * p.CorridorWidth
	}

	plan := FloorPlan{
		Footprint: footprint,
		Walls:     make(map[int][]WallSegment),
		Facing:    make(map[int][]Side),
	}

	nextID := 1
	addBand := func(band Rect, facing Side) {
		for _, r := range goldenStrips(band, minRoom, p, rng) {
			room := Room{ID: nextID, Name: fmt.Sprintf("room_%d", nextID), Rect: r}
			plan.Rooms = append(plan.Rooms, room)
			plan.Walls[room.ID] = roomWalls(room.ID, r, Sides, p)
			if facing != "" {
				plan.Facing[room.ID] = []Side{facing}
			}
			nextID++
		}
	}

	if footprint.Depth() < p.CorridorWidth+2*minRoom {
		addBand(footprint, "")
		return plan, nil
	}

	cy := seed.Snap(footprint.Center().Y, p.GridUnit)
	corridor := Rect{
		MinX: footprint.MinX,
		MinY: cy - p.CorridorWidth/2,
		MaxX: footprint.MaxX,
		MaxY: cy + p.CorridorWidth/2,
	}
	plan.Corridor = &corridor
	// The corridor is bounded by the rooms along its length; only its ends need walls.
	plan.Walls[CorridorID] = roomWalls(CorridorID, corridor, []Side{East, West}, p)

	addBand(Rect{footprint.MinX, footprint.MinY, footprint.MaxX, corridor.MinY}, North)
	addBand(Rect{footprint.MinX, corridor.MaxY, footprint.MaxX, footprint.MaxY}, South)
	return plan, nil
}

// goldenStrips cuts band along x into rooms, peeling one golden-ratio slice off the
// west end while the remainder is still wide enough for two rooms.
func goldenStrips(band Rect, minWidth float64, p LayoutParams, rng *seed.Stream) []Rect {
	var out []Rect
	x := band.MinX
	for band.MaxX-x >= 2*minWidth {
		remaining := band.MaxX - x
		cut := seed.GoldenSplit(remaining, rng, p.GridUnit, p.GoldenVariation)
		cut = math.Max(minWidth, math.Min(cut, remaining-minWidth))
		out = append(out, Rect{x, band.MinY, x + cut, band.MaxY})
		x += cut
	}
	return append(out, Rect{x, band.MinY, band.MaxX, band.MaxY})
}

func roomWalls(id int, r Rect, sides []Side, p LayoutParams) []WallSegment {
	walls := make([]WallSegment, 0, len(sides))
	for _, side := range sides {
		a, b := r.Edge(side)
		walls = append(walls, WallSegment{
			RoomID:    id,
			Side:      side,
			X1:        a.X,
			Y1:        a.Y,
			X2:        b.X,
			Y2:        b.Y,
			Height:    p.WallHeight,
			Thickness: p.WallThickness,
		})
	}
	return walls
}
