// Package plan renders a generated floor plan as 2D drawings: GeoJSON for web
// previews and GIS tools, DXF for CAD.
package plan

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"

	"github.com/Ko-stant/building-engine/internal/geometry"
)

// Feature kinds, stored in the "kind" property and used as DXF layer names.
const (
	KindRoom     = "rooms"
	KindCorridor = "corridor"
	KindWall     = "walls"
	KindDoor     = "doors"
)

// Sheet is one story of a building as drawn in plan view.
type Sheet struct {
	Name     string
	Plan     geometry.FloorPlan
	Walls    []geometry.WallSegment
	Openings []geometry.DoorOpening
}

func ring(r geometry.Rect) orb.Ring {
	return orb.Ring{
		{r.MinX, r.MinY},
		{r.MaxX, r.MinY},
		{r.MaxX, r.MaxY},
		{r.MinX, r.MaxY},
		{r.MinX, r.MinY},
	}
}

// openingLine is the stretch of wall an opening removes.
func openingLine(o geometry.DoorOpening) orb.LineString {
	h := o.Width / 2
	if o.Side.RunsAlongX() {
		return orb.LineString{{o.Center.X - h, o.Center.Y}, {o.Center.X + h, o.Center.Y}}
	}
	return orb.LineString{{o.Center.X, o.Center.Y - h}, {o.Center.X, o.Center.Y + h}}
}

// Features returns rooms and the corridor as polygons, walls and door openings as
// line strings. Rooms carry their planar area.
func (s Sheet) Features() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, r := range s.Plan.Rooms {
		poly := orb.Polygon{ring(r.Rect)}
		f := geojson.NewFeature(poly)
		f.Properties["kind"] = KindRoom
		f.Properties["id"] = r.ID
		f.Properties["name"] = r.Name
		f.Properties["area"] = planar.Area(poly)
		if sides := s.Plan.Facing[r.ID]; len(sides) > 0 {
			f.Properties["facing"] = sides
		}
		fc.Append(f)
	}
	if c := s.Plan.Corridor; c != nil {
		poly := orb.Polygon{ring(*c)}
		f := geojson.NewFeature(poly)
		f.Properties["kind"] = KindCorridor
		f.Properties["id"] = geometry.CorridorID
		f.Properties["area"] = planar.Area(poly)
		fc.Append(f)
	}
	for _, w := range s.Walls {
		f := geojson.NewFeature(orb.LineString{{w.X1, w.Y1}, {w.X2, w.Y2}})
		f.Properties["kind"] = KindWall
		f.Properties["room"] = w.RoomID
		f.Properties["side"] = w.Side
		f.Properties["length"] = w.Length()
		f.Properties["thickness"] = w.Thickness
		fc.Append(f)
	}
	for _, o := range s.Openings {
		f := geojson.NewFeature(openingLine(o))
		f.Properties["kind"] = KindDoor
		f.Properties["room"] = o.RoomID
		f.Properties["side"] = o.Side
		f.Properties["width"] = o.Width
		f.Properties["height"] = o.Height
		fc.Append(f)
	}
	return fc
}

// GeoJSON encodes Features.
func (s Sheet) GeoJSON() ([]byte, error) {
	return s.Features().MarshalJSON()
}

// RoomAreas returns the floor area of every room and the corridor, keyed by id.
func (s Sheet) RoomAreas() map[int]float64 {
	out := make(map[int]float64, len(s.Plan.Rooms)+1)
	for id, r := range s.Plan.Rects() {
		out[id] = planar.Area(orb.Polygon{ring(r)})
	}
	return out
}

// Bound is the extent of everything drawn.
func (s Sheet) Bound() orb.Bound {
	b := orb.Polygon{ring(s.Plan.Footprint)}.Bound()
	for _, w := range s.Walls {
		b = b.Extend(orb.Point{w.X1, w.Y1}).Extend(orb.Point{w.X2, w.Y2})
	}
	return b
}
