package views

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ko-stant/building-engine/internal/geometry"
	"github.com/Ko-stant/building-engine/internal/plan"
)

func sheet() plan.Sheet {
	corridor := geometry.Rect{MinY: 4, MaxX: 10, MaxY: 6}
	return plan.Sheet{
		Name: "demo",
		Plan: geometry.FloorPlan{
			Footprint: geometry.Rect{MaxX: 10, MaxY: 10},
			Corridor:  &corridor,
			Rooms: []geometry.Room{
				{ID: 1, Name: "kitchen<1>", Rect: geometry.Rect{MaxX: 10, MaxY: 4}},
				{ID: 2, Name: "hall", Rect: geometry.Rect{MinY: 6, MaxX: 10, MaxY: 10}},
			},
		},
		Walls:    []geometry.WallSegment{{RoomID: 1, Side: geometry.South, X2: 10, Thickness: 0.2}},
		Openings: []geometry.DoorOpening{{RoomID: 1, Side: geometry.North, Center: geometry.Vec2{X: 5, Y: 4}, Width: 1}},
	}
}

func TestPage(t *testing.T) {
	var buf bytes.Buffer
	err := Page(PlanPage{Title: "demo", Seed: 7, Roof: "hip", Floors: 2, Faces: 120, Sheet: sheet()}).Render(context.Background(), &buf)
	require.NoError(t, err)
	html := buf.String()

	assert.True(t, strings.HasPrefix(strings.ToLower(html), "<!doctype html>"))
	assert.Contains(t, html, "seed 7 · hip roof · 2 floors · 120 faces")
	assert.Equal(t, 2, strings.Count(html, `class="room"`))
	assert.Equal(t, 1, strings.Count(html, `class="corridor"`))
	assert.Contains(t, html, "kitchen&lt;1&gt;")
	assert.NotContains(t, html, "kitchen<1>")
	assert.Contains(t, html, "<option selected>hip</option>")
	assert.Contains(t, html, "<td>40.00</td>")
	assert.Contains(t, html, `value="7"`)
	assert.Equal(t, 1, strings.Count(html, "<option selected>"))
}

func TestPage_EscapesTitle(t *testing.T) {
	var buf bytes.Buffer
	err := Page(PlanPage{Title: `<b>"x"</b>`, Roof: "flat", Sheet: sheet()}).Render(context.Background(), &buf)
	require.NoError(t, err)
	html := buf.String()

	assert.NotContains(t, html, "<b>")
	assert.Contains(t, html, "<title>&lt;b&gt;&#34;x&#34;&lt;/b&gt;</title>")
	assert.Contains(t, html, "<option selected>flat</option>")
}

func TestPlanPage_Rooms(t *testing.T) {
	rows := PlanPage{Sheet: sheet()}.Rooms()
	require.Len(t, rows, 2)
	assert.Equal(t, RoomRow{ID: "1", Name: "kitchen<1>", Area: "40.00"}, rows[0])
	assert.Equal(t, "hall", rows[1].Name)
}

func TestPlanSVG_FlipsY(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PlanSVG(sheet()).Render(context.Background(), &buf))
	svg := buf.String()
	// Room 1 spans y 0..4; with north up its top edge sits at 10-4.
	assert.Contains(t, svg, `data-room="1" x="0" y="6" width="10" height="4"`)
	assert.Contains(t, svg, `<circle class="door" data-room="1" cx="5" cy="6" r="0.5"/>`)
	assert.Contains(t, svg, `viewBox="-1 -1 12 12"`)
}
