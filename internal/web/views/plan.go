// Package views renders the preview pages served by cmd/server.
package views

//go:generate go run github.com/a-h/templ/cmd/templ@v0.3.943 generate

import (
	"fmt"
	"strconv"

	"github.com/Ko-stant/building-engine/internal/plan"
)

// RoofOptions are the roof styles offered by the generate form.
var RoofOptions = []string{"flat", "hip", "gabled", "shed"}

// PlanPage is everything the plan preview shows.
type PlanPage struct {
	Title  string
	Seed   int64
	Roof   string
	Floors int
	Faces  int
	Sheet  plan.Sheet
}

// RoomRow is one line of the room table.
type RoomRow struct {
	ID   string
	Name string
	Area string
}

func (p PlanPage) Summary() string {
	return fmt.Sprintf("seed %d · %s roof · %d floors · %d faces", p.Seed, p.Roof, p.Floors, p.Faces)
}

func (p PlanPage) SeedValue() string {
	return strconv.FormatInt(p.Seed, 10)
}

// Rooms lists the ground floor rooms in plan order with their areas in m².
func (p PlanPage) Rooms() []RoomRow {
	areas := p.Sheet.RoomAreas()
	rows := make([]RoomRow, 0, len(p.Sheet.Plan.Rooms))
	for _, r := range p.Sheet.Plan.Rooms {
		rows = append(rows, RoomRow{
			ID:   strconv.Itoa(r.ID),
			Name: r.Name,
			Area: strconv.FormatFloat(areas[r.ID], 'f', 2, 64),
		})
	}
	return rows
}
