package views

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"github.com/Ko-stant/building-engine/internal/plan"
)

// svgScale is pixels per meter.
const svgScale = 40.0

type writer struct {
	w   io.Writer
	err error
}

func (p *writer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

// PlanSVG draws the sheet as an inline SVG, y up. It writes the markup directly
// since every shape is a run of formatted coordinates.
func PlanSVG(s plan.Sheet) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		b := s.Bound()
		pad := 1.0
		minX, minY := b.Min[0]-pad, b.Min[1]-pad
		width, height := b.Max[0]-b.Min[0]+2*pad, b.Max[1]-b.Min[1]+2*pad
		// Flip y so north is up.
		fy := func(y float64) float64 { return b.Max[1] + b.Min[1] - y }

		p := &writer{w: w}
		p.printf(`<svg class="plan" xmlns="http://www.w3.org/2000/svg" viewBox="%g %g %g %g" width="%g" height="%g">`,
			minX, minY, width, height, width*svgScale, height*svgScale)
		if c := s.Plan.Corridor; c != nil {
			p.printf(`<rect class="corridor" x="%g" y="%g" width="%g" height="%g"/>`, c.MinX, fy(c.MaxY), c.Width(), c.Depth())
		}
		for _, r := range s.Plan.Rooms {
			p.printf(`<rect class="room" data-room="%d" x="%g" y="%g" width="%g" height="%g"/>`,
				r.ID, r.Rect.MinX, fy(r.Rect.MaxY), r.Rect.Width(), r.Rect.Depth())
			c := r.Rect.Center()
			p.printf(`<text class="label" x="%g" y="%g">%s</text>`, c.X, fy(c.Y), templ.EscapeString(r.Name))
		}
		for _, wall := range s.Walls {
			p.printf(`<line class="wall" x1="%g" y1="%g" x2="%g" y2="%g" stroke-width="%g"/>`,
				wall.X1, fy(wall.Y1), wall.X2, fy(wall.Y2), wall.Thickness)
		}
		for _, o := range s.Openings {
			p.printf(`<circle class="door" data-room="%d" cx="%g" cy="%g" r="%g"/>`, o.RoomID, o.Center.X, fy(o.Center.Y), o.Width/2)
		}
		p.printf(`</svg>`)
		return p.err
	})
}
