package geometry

import (
	"fmt"
	"math"
)

type Side string

const (
	North Side = "north"
	South Side = "south"
	East  Side = "east"
	West  Side = "west"
)

// Sides lists every side in the canonical emission order.
var Sides = []Side{North, South, East, West}

// ParseSide validates a side tag.
func ParseSide(s string) (Side, error) {
	switch side := Side(s); side {
	case North, South, East, West:
		return side, nil
	}
	return "", fmt.Errorf("invalid side %q: valid %v", s, Sides)
}

// RunsAlongX reports whether walls on this side run along the x axis, which is the
// axis opening centers are tested on.
func (s Side) RunsAlongX() bool {
	return s == North || s == South
}

// Normal is the outward unit normal of a room wall on this side.
func (s Side) Normal() Vec2 {
	switch s {
	case North:
		return Vec2{0, 1}
	case South:
		return Vec2{0, -1}
	case East:
		return Vec2{1, 0}
	default:
		return Vec2{-1, 0}
	}
}

// Opposite is the side facing this one across a shared wall.
func (s Side) Opposite() Side {
	switch s {
	case North:
		return South
	case South:
		return North
	case East:
		return West
	default:
		return East
	}
}

type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (v Vec3) Add(o Vec3) Vec3      { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3      { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Scale(k float64) Vec3 { return Vec3{v.X * k, v.Y * k, v.Z * k} }
func (v Vec3) Dot(o Vec3) float64   { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }
func (v Vec3) Len() float64         { return math.Sqrt(v.Dot(v)) }
func (v Vec3) Array() [3]float64    { return [3]float64{v.X, v.Y, v.Z} }
func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{v.Y*o.Z - v.Z*o.Y, v.Z*o.X - v.X*o.Z, v.X*o.Y - v.Y*o.X}
}

// Rect is an axis-aligned rectangle on the ground plane.
type Rect struct {
	MinX float64 `json:"min_x"`
	MinY float64 `json:"min_y"`
	MaxX float64 `json:"max_x"`
	MaxY float64 `json:"max_y"`
}

// NewRect returns the rectangle spanned by two corners in any order.
func NewRect(x1, y1, x2, y2 float64) Rect {
	return Rect{
		MinX: math.Min(x1, x2),
		MinY: math.Min(y1, y2),
		MaxX: math.Max(x1, x2),
		MaxY: math.Max(y1, y2),
	}
}

func (r Rect) Width() float64 { return r.MaxX - r.MinX }
func (r Rect) Depth() float64 { return r.MaxY - r.MinY }
func (r Rect) Area() float64  { return r.Width() * r.Depth() }

func (r Rect) Center() Vec2 {
	return Vec2{X: (r.MinX + r.MaxX) / 2, Y: (r.MinY + r.MaxY) / 2}
}

func (r Rect) Contains(p Vec2) bool {
	return p.X >= r.MinX && p.X <= r.MaxX && p.Y >= r.MinY && p.Y <= r.MaxY
}

// Edge returns the endpoints of one side, directed from min to max.
func (r Rect) Edge(side Side) (Vec2, Vec2) {
	switch side {
	case North:
		return Vec2{r.MinX, r.MaxY}, Vec2{r.MaxX, r.MaxY}
	case South:
		return Vec2{r.MinX, r.MinY}, Vec2{r.MaxX, r.MinY}
	case East:
		return Vec2{r.MaxX, r.MinY}, Vec2{r.MaxX, r.MaxY}
	default:
		return Vec2{r.MinX, r.MinY}, Vec2{r.MinX, r.MaxY}
	}
}

// Midpoint returns the center of one side.
func (r Rect) Midpoint(side Side) Vec2 {
	c := r.Center()
	switch side {
	case North:
		return Vec2{c.X, r.MaxY}
	case South:
		return Vec2{c.X, r.MinY}
	case East:
		return Vec2{r.MaxX, c.Y}
	default:
		return Vec2{r.MinX, c.Y}
	}
}

// Corners returns the corners counter-clockwise from (MinX, MinY) at height z.
func (r Rect) Corners(z float64) [4]Vec3 {
	return [4]Vec3{
		{r.MinX, r.MinY, z},
		{r.MaxX, r.MinY, z},
		{r.MaxX, r.MaxY, z},
		{r.MinX, r.MaxY, z},
	}
}

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min Vec3 `json:"min"`
	Max Vec3 `json:"max"`
}

func (b AABB) Size() Vec3   { return b.Max.Sub(b.Min) }
func (b AABB) Center() Vec3 { return b.Min.Add(b.Max).Scale(0.5) }

// Union returns the smallest box containing both boxes.
func (b AABB) Union(o AABB) AABB {
	return AABB{
		Min: Vec3{math.Min(b.Min.X, o.Min.X), math.Min(b.Min.Y, o.Min.Y), math.Min(b.Min.Z, o.Min.Z)},
		Max: Vec3{math.Max(b.Max.X, o.Max.X), math.Max(b.Max.Y, o.Max.Y), math.Max(b.Max.Z, o.Max.Z)},
	}
}

// Round rounds every coordinate to precision decimal places, for stable exports.
func (b AABB) Round(precision int) AABB {
	p := math.Pow(10, float64(precision))
	r := func(v float64) float64 { return math.Round(v*p) / p }
	return AABB{
		Min: Vec3{r(b.Min.X), r(b.Min.Y), r(b.Min.Z)},
		Max: Vec3{r(b.Max.X), r(b.Max.Y), r(b.Max.Z)},
	}
}

// GridObject is anything that can be placed on the building grid.
type GridObject interface {
	Footprint() Rect
	AABB() AABB
	Center() Vec3
}

// WallSegment is one directed run of wall belonging to a room side.
type WallSegment struct {
	RoomID    int     `json:"room_id"`
	Side      Side    `json:"side"`
	X1        float64 `json:"x1"`
	Y1        float64 `json:"y1"`
	X2        float64 `json:"x2"`
	Y2        float64 `json:"y2"`
	Height    float64 `json:"height"`
	Thickness float64 `json:"thickness"`
}

func (w WallSegment) Length() float64 {
	return math.Hypot(w.X2-w.X1, w.Y2-w.Y1)
}

// Interval returns the segment's extent along its dominant axis, low end first.
func (w WallSegment) Interval() (float64, float64) {
	if w.Side.RunsAlongX() {
		return math.Min(w.X1, w.X2), math.Max(w.X1, w.X2)
	}
	return math.Min(w.Y1, w.Y2), math.Max(w.Y1, w.Y2)
}

// Footprint is the wall's ground rectangle including its thickness.
func (w WallSegment) Footprint() Rect {
	h := w.Thickness / 2
	if w.Side.RunsAlongX() {
		return NewRect(w.X1, w.Y1-h, w.X2, w.Y2+h)
	}
	return NewRect(w.X1-h, w.Y1, w.X2+h, w.Y2)
}

func (w WallSegment) AABB() AABB {
	f := w.Footprint()
	return AABB{Min: Vec3{f.MinX, f.MinY, 0}, Max: Vec3{f.MaxX, f.MaxY, w.Height}}
}

func (w WallSegment) Center() Vec3 { return w.AABB().Center() }

// DoorOpening is a rectangular cutout requested on one room side.
type DoorOpening struct {
	RoomID int     `json:"room_id"`
	Side   Side    `json:"side"`
	Center Vec2    `json:"center"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Slab is one horizontal floor or ceiling plate.
type Slab struct {
	Rect      Rect    `json:"rect"`
	Z         float64 `json:"z"`
	Thickness float64 `json:"thickness"`
}

func (s Slab) Footprint() Rect { return s.Rect }

func (s Slab) AABB() AABB {
	return AABB{
		Min: Vec3{s.Rect.MinX, s.Rect.MinY, s.Z},
		Max: Vec3{s.Rect.MaxX, s.Rect.MaxY, s.Z + s.Thickness},
	}
}

func (s Slab) Center() Vec3 { return s.AABB().Center() }
