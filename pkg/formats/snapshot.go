// Mesh snapshot reader: a YAML document mirroring what a modelling tool
// hands over per object.
package formats

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	vecmath "github.com/Faultbox/lmodkit/pkg/math"
	"github.com/Faultbox/lmodkit/pkg/mesh"
)

// ErrInvalidSnapshot is returned for structurally invalid snapshot documents.
var ErrInvalidSnapshot = errors.New("invalid mesh snapshot")

// MeshSnapshot is the YAML form of one mesh.
//
//	meshes:
//	  - name: Plane
//	    vertices: [[0, 0, 0], [1, 0, 0], [1, 1, 0], [0, 1, 0]]
//	    normals:  [[0, 0, 1], [0, 0, 1], [0, 0, 1], [0, 0, 1]]
//	    faces:    [[0, 1, 2, 3]]
type MeshSnapshot struct {
	Name     string      `yaml:"name"`
	Vertices [][]float64 `yaml:"vertices"`
	Normals  [][]float64 `yaml:"normals,omitempty"`
	Faces    [][]int     `yaml:"faces"`
}

// SnapshotDocument is the root of a snapshot file.
type SnapshotDocument struct {
	Meshes []MeshSnapshot `yaml:"meshes"`
}

// ParseMeshSnapshot parses a YAML snapshot document.
// Meshes without normals get computed ones when opts.ComputeNormals is set.
func ParseMeshSnapshot(data []byte, opts ReadOptions) ([]*mesh.Mesh, error) {
	var doc SnapshotDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}

	meshes := make([]*mesh.Mesh, 0, len(doc.Meshes))
	for i, s := range doc.Meshes {
		m, err := s.toMesh(opts)
		if err != nil {
			return nil, fmt.Errorf("mesh %d: %w", i, err)
		}
		if m.Name == "" {
			m.Name = fmt.Sprintf("%s.%03d", opts.DefaultName, i)
		}
		meshes = append(meshes, m)
	}
	return meshes, nil
}

func (s MeshSnapshot) toMesh(opts ReadOptions) (*mesh.Mesh, error) {
	m := &mesh.Mesh{
		Name:     cleanName(s.Name),
		Vertices: make([]vecmath.Vec3, len(s.Vertices)),
		Faces:    make([]mesh.Polygon, len(s.Faces)),
	}

	for i, v := range s.Vertices {
		vec, err := snapshotVec3(v, opts.Up)
		if err != nil {
			return nil, fmt.Errorf("vertex %d: %w", i, err)
		}
		m.Vertices[i] = vec
	}

	for i, f := range s.Faces {
		m.Faces[i] = append(mesh.Polygon(nil), f...)
	}

	switch {
	case len(s.Normals) > 0:
		m.Normals = make([]vecmath.Vec3, len(s.Normals))
		for i, n := range s.Normals {
			vec, err := snapshotVec3(n, opts.Up)
			if err != nil {
				return nil, fmt.Errorf("normal %d: %w", i, err)
			}
			m.Normals[i] = vec
		}
	case len(s.Vertices) == 0:
	case opts.ComputeNormals:
		// Face indices are checked before they are used to accumulate normals.
		m.Normals = make([]vecmath.Vec3, len(m.Vertices))
		if err := m.Validate(); err != nil {
			return nil, err
		}
		m.Normals = mesh.ComputeVertexNormals(m)
	default:
		return nil, fmt.Errorf("%w: mesh %q", ErrMissingNormal, m.Name)
	}

	return m, nil
}

func snapshotVec3(c []float64, up UpAxis) (vecmath.Vec3, error) {
	if len(c) != 3 {
		return vecmath.Vec3{}, fmt.Errorf("%w: expected 3 components, got %d", ErrInvalidSnapshot, len(c))
	}
	v := vecmath.Vec3{X: c[0], Y: c[1], Z: c[2]}
	if up == UpY {
		v = v.YUpToZUp()
	}
	return v, nil
}

// ParseMeshSnapshotFile parses a snapshot file from disk.
func ParseMeshSnapshotFile(path string, opts ReadOptions) ([]*mesh.Mesh, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot file: %w", err)
	}
	return ParseMeshSnapshot(data, opts)
}

// MarshalMeshSnapshot renders meshes as a snapshot document in the Z-up
// source basis.
func MarshalMeshSnapshot(meshes []*mesh.Mesh) ([]byte, error) {
	doc := SnapshotDocument{Meshes: make([]MeshSnapshot, len(meshes))}
	for i, m := range meshes {
		s := MeshSnapshot{
			Name:     m.Name,
			Vertices: make([][]float64, len(m.Vertices)),
			Normals:  make([][]float64, len(m.Normals)),
			Faces:    make([][]int, len(m.Faces)),
		}
		for j, v := range m.Vertices {
			s.Vertices[j] = []float64{v.X, v.Y, v.Z}
		}
		for j, n := range m.Normals {
			s.Normals[j] = []float64{n.X, n.Y, n.Z}
		}
		for j, f := range m.Faces {
			s.Faces[j] = append([]int(nil), f...)
		}
		doc.Meshes[i] = s
	}
	return yaml.Marshal(&doc)
}
