package geometry

import (
	"encoding/json"
	"fmt"
	"os"
)

// RoomDefinition is one explicitly placed room of a plan file.
type RoomDefinition struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Rect   Rect   `json:"rect"`
	Facing []Side `json:"facing,omitempty"`
}

// DoorDefinition places a door explicitly on a room side. An omitted center means the
// midpoint of that side.
type DoorDefinition struct {
	RoomID int     `json:"room_id"`
	Side   Side    `json:"side"`
	Center *Vec2   `json:"center,omitempty"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// PlanDefinition is a hand-authored floor plan, used instead of the generated
// corridor layout.
type PlanDefinition struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Footprint Rect             `json:"footprint"`
	Corridor  *Rect            `json:"corridor,omitempty"`
	Rooms     []RoomDefinition `json:"rooms"`
	Doors     []DoorDefinition `json:"doors,omitempty"`
}

// LoadPlanFromFile loads a plan definition from a JSON file.
func LoadPlanFromFile(path string) (*PlanDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan file: %w", err)
	}

	var def PlanDefinition
	if err := json.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("failed to parse plan JSON: %w", err)
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return &def, nil
}

// Validate checks room ids are unique, positive and that every rectangle and
// door side is usable.
func (d *PlanDefinition) Validate() error {
	if len(d.Rooms) == 0 {
		return fmt.Errorf("plan %q has no rooms", d.ID)
	}
	seen := make(map[int]bool, len(d.Rooms))
	for _, r := range d.Rooms {
		if r.ID <= CorridorID {
			return fmt.Errorf("plan %q: room id %d must be positive", d.ID, r.ID)
		}
		if seen[r.ID] {
			return fmt.Errorf("plan %q: duplicate room id %d", d.ID, r.ID)
		}
		seen[r.ID] = true
		if r.Rect.Width() <= 0 || r.Rect.Depth() <= 0 {
			return fmt.Errorf("plan %q: room %d has an empty rect", d.ID, r.ID)
		}
		for _, s := range r.Facing {
			if _, err := ParseSide(string(s)); err != nil {
				return fmt.Errorf("plan %q: room %d: %w", d.ID, r.ID, err)
			}
		}
	}
	for i, door := range d.Doors {
		if !seen[door.RoomID] {
			return fmt.Errorf("plan %q: door %d references unknown room %d", d.ID, i, door.RoomID)
		}
		if _, err := ParseSide(string(door.Side)); err != nil {
			return fmt.Errorf("plan %q: door %d: %w", d.ID, i, err)
		}
	}
	return nil
}

// FloorPlan converts the definition into a floor plan with four walls per room.
func (d *PlanDefinition) FloorPlan(wallHeight, wallThickness float64) FloorPlan {
	p := LayoutParams{WallHeight: wallHeight, WallThickness: wallThickness}
	plan := FloorPlan{
		Footprint: d.Footprint,
		Corridor:  d.Corridor,
		Walls:     make(map[int][]WallSegment, len(d.Rooms)),
		Facing:    make(map[int][]Side),
	}
	for _, r := range d.Rooms {
		name := r.Name
		if name == "" {
			name = fmt.Sprintf("room_%d", r.ID)
		}
		plan.Rooms = append(plan.Rooms, Room{ID: r.ID, Name: name, Rect: r.Rect})
		plan.Walls[r.ID] = roomWalls(r.ID, r.Rect, Sides, p)
		if len(r.Facing) > 0 {
			plan.Facing[r.ID] = append([]Side(nil), r.Facing...)
		}
	}
	return plan
}

// Openings returns the explicitly placed doors as openings, in file order.
func (d *PlanDefinition) Openings(defaultWidth, defaultHeight float64) []DoorOpening {
	rects := make(map[int]Rect, len(d.Rooms))
	for _, r := range d.Rooms {
		rects[r.ID] = r.Rect
	}
	out := make([]DoorOpening, 0, len(d.Doors))
	for _, door := range d.Doors {
		o := DoorOpening{RoomID: door.RoomID, Side: door.Side, Width: door.Width, Height: door.Height}
		if door.Center != nil {
			o.Center = *door.Center
		} else {
			o.Center = rects[door.RoomID].Midpoint(door.Side)
		}
		if o.Width <= 0 {
			o.Width = defaultWidth
		}
		if o.Height <= 0 {
			o.Height = defaultHeight
		}
		out = append(out, o)
	}
	return out
}
