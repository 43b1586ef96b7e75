package mesh

import "github.com/Faultbox/lmodkit/pkg/math"

// DefaultNormal is assigned to vertices that belong to no face with area.
var DefaultNormal = math.Vec3{X: 0, Y: 0, Z: 1}

// NewellNormal returns the unnormalized normal of a face loop. Its length is
// twice the polygon area, and it is stable for non-planar loops.
func NewellNormal(verts []math.Vec3, f Polygon) math.Vec3 {
	var n math.Vec3
	for i := range f {
		cur := verts[f[i]]
		next := verts[f[(i+1)%len(f)]]
		n.X += (cur.Y - next.Y) * (cur.Z + next.Z)
		n.Y += (cur.Z - next.Z) * (cur.X + next.X)
		n.Z += (cur.X - next.X) * (cur.Y + next.Y)
	}
	return n
}

// ComputeVertexNormals returns area-weighted vertex normals for m.
// Face indices must be in range.
func ComputeVertexNormals(m *Mesh) []math.Vec3 {
	acc := make([]math.Vec3, len(m.Vertices))
	for _, f := range m.Faces {
		if len(f) < 3 {
			continue
		}
		n := NewellNormal(m.Vertices, f)
		for _, idx := range f {
			acc[idx] = acc[idx].Add(n)
		}
	}

	for i, n := range acc {
		if n.LengthSquared() == 0 {
			acc[i] = DefaultNormal
			continue
		}
		acc[i] = n.Normalize()
	}
	return acc
}

// FillNormals replaces the normals of vertices not flagged in known with
// computed ones. Normals is resized to match Vertices.
func FillNormals(m *Mesh, known []bool) {
	if len(m.Normals) != len(m.Vertices) {
		normals := make([]math.Vec3, len(m.Vertices))
		copy(normals, m.Normals)
		m.Normals = normals
	}

	var computed []math.Vec3
	for i := range m.Vertices {
		if i < len(known) && known[i] {
			continue
		}
		if computed == nil {
			computed = ComputeVertexNormals(m)
		}
		m.Normals[i] = computed[i]
	}
}
