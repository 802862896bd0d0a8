package mesh

import (
	"math"
	"slices"

	"github.com/Ko-stant/building-engine/internal/geometry"
)

// MergeAndCleanup welds vertices closer than distance, drops faces that collapsed,
// removes internal faces (every edge shared by more than two faces) and reorients
// faces so each connected shell winds consistently with positive volume.
// An empty mesh is left untouched.
func (m *Mesh) MergeAndCleanup(distance float64) Stats {
	var st Stats
	if len(m.Faces) == 0 {
		return st
	}
	st.Welded = m.weld(distance)
	st.Degenerate = m.dropDegenerate()
	st.Internal = m.dropInternal()
	st.Flipped = m.recalcNormals()
	m.compact()
	return st
}

type cell struct{ x, y, z int64 }

func cellOf(v geometry.Vec3, size float64) cell {
	return cell{
		int64(math.Floor(v.X / size)),
		int64(math.Floor(v.Y / size)),
		int64(math.Floor(v.Z / size)),
	}
}

// weld maps every vertex onto the first earlier vertex within distance and
// returns how many vertices were merged away.
func (m *Mesh) weld(distance float64) int {
	if distance <= 0 {
		return 0
	}
	grid := make(map[cell][]int)
	remap := make([]int, len(m.Vertices))
	merged := 0
	for i, v := range m.Vertices {
		c := cellOf(v, distance)
		rep := -1
	search:
		for dx := int64(-1); dx <= 1; dx++ {
			for dy := int64(-1); dy <= 1; dy++ {
				for dz := int64(-1); dz <= 1; dz++ {
					for _, j := range grid[cell{c.x + dx, c.y + dy, c.z + dz}] {
						if m.Vertices[j].Sub(v).Len() <= distance {
							rep = j
							break search
						}
					}
				}
			}
		}
		if rep >= 0 {
			remap[i] = rep
			merged++
			continue
		}
		remap[i] = i
		grid[c] = append(grid[c], i)
	}
	for _, f := range m.Faces {
		for k, vi := range f {
			f[k] = remap[vi]
		}
	}
	return merged
}

// dropDegenerate removes repeated consecutive indices and faces left with fewer
// than three distinct vertices or no area.
func (m *Mesh) dropDegenerate() int {
	kept := m.Faces[:0]
	dropped := 0
	for _, f := range m.Faces {
		clean := make([]int, 0, len(f))
		for i, vi := range f {
			if vi != f[(i+1)%len(f)] {
				clean = append(clean, vi)
			}
		}
		if len(clean) < 3 || m.area(clean) < 1e-12 {
			dropped++
			continue
		}
		kept = append(kept, clean)
	}
	m.Faces = kept
	return dropped
}

func (m *Mesh) area(f []int) float64 {
	var n geometry.Vec3
	p0 := m.Vertices[f[0]]
	for i := 1; i+1 < len(f); i++ {
		n = n.Add(m.Vertices[f[i]].Sub(p0).Cross(m.Vertices[f[i+1]].Sub(p0)))
	}
	return n.Len() / 2
}

func (m *Mesh) dropInternal() int {
	ef := m.edgeFaces()
	kept := make([][]int, 0, len(m.Faces))
	dropped := 0
	for _, f := range m.Faces {
		internal := true
		for i, a := range f {
			if len(ef[undirected(a, f[(i+1)%len(f)])]) <= 2 {
				internal = false
				break
			}
		}
		if internal {
			dropped++
			continue
		}
		kept = append(kept, f)
	}
	m.Faces = kept
	return dropped
}

// hasDirected reports whether face f walks the edge a→b.
func hasDirected(f []int, a, b int) bool {
	for i, v := range f {
		if v == a && f[(i+1)%len(f)] == b {
			return true
		}
	}
	return false
}

// recalcNormals propagates winding across manifold edges, then flips any shell
// whose volume comes out negative. It returns the number of faces flipped.
func (m *Mesh) recalcNormals() int {
	ef := m.edgeFaces()
	flipped := make([]bool, len(m.Faces))
	seen := make([]bool, len(m.Faces))

	for start := range m.Faces {
		if seen[start] {
			continue
		}
		shell := []int{start}
		seen[start] = true
		for q := 0; q < len(shell); q++ {
			f := m.Faces[shell[q]]
			for i, a := range f {
				b := f[(i+1)%len(f)]
				users := ef[undirected(a, b)]
				if len(users) != 2 {
					continue
				}
				for _, g := range users {
					if g == shell[q] || seen[g] {
						continue
					}
					seen[g] = true
					// A consistent neighbor walks the shared edge the other way.
					if hasDirected(m.Faces[g], a, b) {
						slices.Reverse(m.Faces[g])
						flipped[g] = !flipped[g]
					}
					shell = append(shell, g)
				}
			}
		}
		if m.volume(shell) < 0 {
			for _, fi := range shell {
				slices.Reverse(m.Faces[fi])
				flipped[fi] = !flipped[fi]
			}
		}
	}

	n := 0
	for _, f := range flipped {
		if f {
			n++
		}
	}
	return n
}

// compact drops unreferenced vertices, keeping first-use order.
func (m *Mesh) compact() {
	index := make(map[int]int)
	var verts []geometry.Vec3
	for _, f := range m.Faces {
		for k, vi := range f {
			ni, ok := index[vi]
			if !ok {
				ni = len(verts)
				index[vi] = ni
				verts = append(verts, m.Vertices[vi])
			}
			f[k] = ni
		}
	}
	m.Vertices = verts
}
