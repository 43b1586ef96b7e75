// Package mesh holds the polygon mesh snapshot handed over by a modelling
// tool and the triangulation applied to it before encoding.
package mesh

import (
	"fmt"
	"strings"

	"github.com/Faultbox/lmodkit/pkg/math"
)

// Polygon is an ordered loop of vertex indices.
type Polygon []int

// Triangle is a polygon of exactly three vertex indices. Order defines the
// facing of the triangle.
type Triangle [3]int

// Polygon returns the triangle as a three-vertex loop.
func (t Triangle) Polygon() Polygon {
	return Polygon{t[0], t[1], t[2]}
}

// Reversed returns the triangle with its winding flipped.
func (t Triangle) Reversed() Triangle {
	return Triangle{t[2], t[1], t[0]}
}

// Mesh is an immutable snapshot of one object's geometry.
// Normals are per vertex and share the vertex index space.
type Mesh struct {
	Name     string
	Vertices []math.Vec3
	Normals  []math.Vec3
	Faces    []Polygon
}

// IsTriangulated reports whether every face has exactly three vertices.
func (m *Mesh) IsTriangulated() bool {
	for _, f := range m.Faces {
		if len(f) != 3 {
			return false
		}
	}
	return true
}

// Triangles returns the faces of a triangulated mesh.
func (m *Mesh) Triangles() ([]Triangle, error) {
	tris := make([]Triangle, len(m.Faces))
	for i, f := range m.Faces {
		if len(f) != 3 {
			return nil, fmt.Errorf("%w: mesh %q face %d has %d vertices", ErrNotTriangulated, m.Name, i, len(f))
		}
		tris[i] = Triangle{f[0], f[1], f[2]}
	}
	return tris, nil
}

// TriangleCount returns how many triangles the faces resolve to.
func (m *Mesh) TriangleCount() int {
	n := 0
	for _, f := range m.Faces {
		if len(f) >= 3 {
			n += len(f) - 2
		}
	}
	return n
}

// Validate checks the structural preconditions of the encoder.
func (m *Mesh) Validate() error {
	if strings.ContainsAny(m.Name, "\r\n") {
		return &MalformedMeshError{Mesh: m.Name, Reason: "name contains a line break"}
	}
	if len(m.Normals) != len(m.Vertices) {
		return &MalformedMeshError{
			Mesh:   m.Name,
			Reason: fmt.Sprintf("%d normals for %d vertices", len(m.Normals), len(m.Vertices)),
		}
	}
	for i, v := range m.Vertices {
		if !v.IsFinite() {
			return &MalformedMeshError{Mesh: m.Name, Reason: fmt.Sprintf("vertex %d is not finite", i)}
		}
	}
	for i, n := range m.Normals {
		if !n.IsFinite() {
			return &MalformedMeshError{Mesh: m.Name, Reason: fmt.Sprintf("normal %d is not finite", i)}
		}
	}
	for i, f := range m.Faces {
		if len(f) < 3 {
			return &MalformedMeshError{Mesh: m.Name, Reason: fmt.Sprintf("face %d has %d vertices", i, len(f))}
		}
		for _, idx := range f {
			if idx < 0 || idx >= len(m.Vertices) {
				return &MalformedMeshError{
					Mesh:   m.Name,
					Reason: fmt.Sprintf("face %d references vertex %d, mesh has %d", i, idx, len(m.Vertices)),
				}
			}
		}
	}
	return nil
}

// Clone returns a deep copy of the mesh.
func (m *Mesh) Clone() *Mesh {
	out := &Mesh{
		Name:     m.Name,
		Vertices: append([]math.Vec3(nil), m.Vertices...),
		Normals:  append([]math.Vec3(nil), m.Normals...),
		Faces:    make([]Polygon, len(m.Faces)),
	}
	for i, f := range m.Faces {
		out.Faces[i] = append(Polygon(nil), f...)
	}
	return out
}
