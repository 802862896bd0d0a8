// Package mesh is the boundary between the geometric model and a mesh kernel.
//
// Builder is the capability the rest of the engine emits to. Mesh is the in-memory
// implementation used by the CLI, the preview server and the tests; a host-backed
// builder can replace it without touching the emitters.
package mesh

import (
	"github.com/Ko-stant/building-engine/internal/geometry"
)

// Builder accepts planar polygons and boxes and can weld the result into a
// cleaned-up mesh.
type Builder interface {
	AddPolygon(vertices []geometry.Vec3)
	AddBox(lo, hi geometry.Vec3)
	MergeAndCleanup(distance float64) Stats
}

// Stats reports what MergeAndCleanup changed.
type Stats struct {
	Welded     int `json:"welded"`
	Degenerate int `json:"degenerate"`
	Internal   int `json:"internal"`
	Flipped    int `json:"flipped"`
}

// Mesh is an indexed polygon mesh.
type Mesh struct {
	Name     string          `json:"name"`
	Vertices []geometry.Vec3 `json:"vertices"`
	Faces    [][]int         `json:"faces"`
}

func New(name string) *Mesh {
	return &Mesh{Name: name}
}

// AddPolygon appends a face with its own vertices. Polygons with fewer than three
// vertices are ignored.
func (m *Mesh) AddPolygon(vertices []geometry.Vec3) {
	if len(vertices) < 3 {
		return
	}
	base := len(m.Vertices)
	face := make([]int, len(vertices))
	for i, v := range vertices {
		m.Vertices = append(m.Vertices, v)
		face[i] = base + i
	}
	m.Faces = append(m.Faces, face)
}

// boxFaces index the corners of a box, bottom ring then top ring, wound outward.
var boxFaces = [6][4]int{
	{0, 3, 2, 1},
	{4, 5, 6, 7},
	{0, 1, 5, 4},
	{1, 2, 6, 5},
	{2, 3, 7, 6},
	{3, 0, 4, 7},
}

// AddBox appends a closed axis-aligned box sharing its eight corners.
func (m *Mesh) AddBox(lo, hi geometry.Vec3) {
	base := len(m.Vertices)
	for _, z := range []float64{lo.Z, hi.Z} {
		m.Vertices = append(m.Vertices,
			geometry.Vec3{X: lo.X, Y: lo.Y, Z: z},
			geometry.Vec3{X: hi.X, Y: lo.Y, Z: z},
			geometry.Vec3{X: hi.X, Y: hi.Y, Z: z},
			geometry.Vec3{X: lo.X, Y: hi.Y, Z: z},
		)
	}
	for _, f := range boxFaces {
		m.Faces = append(m.Faces, []int{base + f[0], base + f[1], base + f[2], base + f[3]})
	}
}

// Append copies every vertex and face of o into m.
func (m *Mesh) Append(o *Mesh) {
	base := len(m.Vertices)
	m.Vertices = append(m.Vertices, o.Vertices...)
	for _, f := range o.Faces {
		nf := make([]int, len(f))
		for i, v := range f {
			nf[i] = base + v
		}
		m.Faces = append(m.Faces, nf)
	}
}

type edge struct{ a, b int }

func undirected(a, b int) edge {
	if a > b {
		a, b = b, a
	}
	return edge{a, b}
}

// edgeFaces maps every undirected edge to the faces using it.
func (m *Mesh) edgeFaces() map[edge][]int {
	out := make(map[edge][]int)
	for fi, f := range m.Faces {
		for i, a := range f {
			e := undirected(a, f[(i+1)%len(f)])
			out[e] = append(out[e], fi)
		}
	}
	return out
}

// EdgeCount is the number of distinct undirected edges.
func (m *Mesh) EdgeCount() int { return len(m.edgeFaces()) }

// EulerCharacteristic returns V - E + F.
func (m *Mesh) EulerCharacteristic() int {
	return len(m.Vertices) - m.EdgeCount() + len(m.Faces)
}

// IsManifold reports whether m is a closed genus-0 surface: every edge borders
// exactly two faces and V - E + F = 2.
func IsManifold(m *Mesh) bool {
	if m == nil || len(m.Faces) == 0 {
		return false
	}
	for _, fs := range m.edgeFaces() {
		if len(fs) != 2 {
			return false
		}
	}
	return m.EulerCharacteristic() == 2
}

// SignedVolume is positive for a closed mesh whose faces wind outward.
func (m *Mesh) SignedVolume() float64 {
	return m.volume(allFaces(len(m.Faces)))
}

func (m *Mesh) volume(faces []int) float64 {
	var v float64
	for _, fi := range faces {
		f := m.Faces[fi]
		p0 := m.Vertices[f[0]]
		for i := 1; i+1 < len(f); i++ {
			v += p0.Dot(m.Vertices[f[i]].Cross(m.Vertices[f[i+1]]))
		}
	}
	return v / 6
}

// AABB bounds every vertex. An empty mesh returns the zero box.
func (m *Mesh) AABB() geometry.AABB {
	if len(m.Vertices) == 0 {
		return geometry.AABB{}
	}
	box := geometry.AABB{Min: m.Vertices[0], Max: m.Vertices[0]}
	for _, v := range m.Vertices[1:] {
		box = box.Union(geometry.AABB{Min: v, Max: v})
	}
	return box
}

func allFaces(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
