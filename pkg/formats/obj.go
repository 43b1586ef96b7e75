// Wavefront OBJ reader.
package formats

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	vecmath "github.com/Faultbox/lmodkit/pkg/math"
	"github.com/Faultbox/lmodkit/pkg/mesh"
)

// Source format errors.
var (
	ErrUnsupportedSource = errors.New("unsupported source format")
	ErrInvalidOBJ        = errors.New("invalid OBJ data")
	ErrForeignVertex     = errors.New("face references a vertex of another object")
	ErrMissingNormal     = errors.New("vertex has no normal")
)

// objMesh accumulates one object block. Vertices declared inside the block
// belong to it; base is the global index of its first vertex.
type objMesh struct {
	mesh  *mesh.Mesh
	base  int
	known []bool
}

// ParseOBJ reads the objects of a Wavefront OBJ stream as meshes.
//
// Each "o" statement starts a new mesh owning the vertices declared after
// it. A vertex takes the first normal bound to it by a face corner.
// Texture coordinates, groups and materials are ignored.
func ParseOBJ(r io.Reader, opts ReadOptions) ([]*mesh.Mesh, error) {
	var (
		positions int
		normals   []vecmath.Vec3
		objects   []*objMesh
	)

	name := opts.DefaultName
	if name == "" {
		name = "mesh"
	}
	cur := &objMesh{mesh: &mesh.Mesh{Name: cleanName(name)}}
	objects = append(objects, cur)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "o":
			cur = &objMesh{
				mesh: &mesh.Mesh{Name: cleanName(strings.Join(fields[1:], " "))},
				base: positions,
			}
			objects = append(objects, cur)

		case "v":
			v, err := parseOBJVec3(fields)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			if opts.Up == UpY {
				v = v.YUpToZUp()
			}
			cur.mesh.Vertices = append(cur.mesh.Vertices, v)
			cur.mesh.Normals = append(cur.mesh.Normals, vecmath.Vec3{})
			cur.known = append(cur.known, false)
			positions++

		case "vn":
			n, err := parseOBJVec3(fields)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			if opts.Up == UpY {
				n = n.YUpToZUp()
			}
			normals = append(normals, n)

		case "f":
			if err := cur.addFace(fields[1:], positions, normals); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading OBJ: %w", err)
	}

	var meshes []*mesh.Mesh
	for _, obj := range objects {
		m := obj.mesh
		if len(m.Vertices) == 0 && len(m.Faces) == 0 {
			continue
		}
		if err := obj.finishNormals(opts.ComputeNormals); err != nil {
			return nil, err
		}
		meshes = append(meshes, m)
	}

	return meshes, nil
}

func (o *objMesh) addFace(corners []string, positions int, normals []vecmath.Vec3) error {
	if len(corners) < 3 {
		return fmt.Errorf("%w: face with %d corners", ErrInvalidOBJ, len(corners))
	}

	m := o.mesh
	face := make(mesh.Polygon, len(corners))
	for i, c := range corners {
		parts := strings.Split(c, "/")

		vi, err := resolveOBJIndex(parts[0], positions)
		if err != nil {
			return err
		}
		local := vi - o.base
		if local < 0 || local >= len(m.Vertices) {
			return fmt.Errorf("%w: vertex %d in object %q", ErrForeignVertex, vi+1, m.Name)
		}
		face[i] = local

		if len(parts) < 3 || parts[2] == "" {
			continue
		}
		ni, err := resolveOBJIndex(parts[2], len(normals))
		if err != nil {
			return err
		}
		if ni >= len(normals) {
			return fmt.Errorf("%w: normal %d out of range", ErrInvalidOBJ, ni+1)
		}
		if !o.known[local] {
			m.Normals[local] = normals[ni]
			o.known[local] = true
		}
	}

	m.Faces = append(m.Faces, face)
	return nil
}

func (o *objMesh) finishNormals(compute bool) error {
	m := o.mesh
	for i, k := range o.known {
		if k {
			continue
		}
		if !compute {
			return fmt.Errorf("%w: mesh %q vertex %d", ErrMissingNormal, m.Name, i)
		}
		mesh.FillNormals(m, o.known)
		return nil
	}
	return nil
}

// resolveOBJIndex converts a 1-based or negative relative OBJ index to a
// 0-based index into a list of count elements.
func resolveOBJIndex(s string, count int) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: index %q", ErrInvalidOBJ, s)
	}
	switch {
	case i > 0:
		return i - 1, nil
	case i < 0 && count+i >= 0:
		return count + i, nil
	default:
		return 0, fmt.Errorf("%w: index %d", ErrInvalidOBJ, i)
	}
}

func parseOBJVec3(fields []string) (vecmath.Vec3, error) {
	if len(fields) < 4 {
		return vecmath.Vec3{}, fmt.Errorf("%w: %q needs 3 components", ErrInvalidOBJ, fields[0])
	}
	var c [3]float64
	for i := range c {
		f, err := strconv.ParseFloat(fields[i+1], 64)
		if err != nil {
			return vecmath.Vec3{}, fmt.Errorf("%w: component %q", ErrInvalidOBJ, fields[i+1])
		}
		c[i] = f
	}
	return vecmath.Vec3{X: c[0], Y: c[1], Z: c[2]}, nil
}

// ParseOBJBytes parses OBJ data held in memory.
func ParseOBJBytes(data []byte, opts ReadOptions) ([]*mesh.Mesh, error) {
	return ParseOBJ(bytes.NewReader(data), opts)
}

// ParseOBJFile parses an OBJ file from disk.
func ParseOBJFile(path string, opts ReadOptions) ([]*mesh.Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening OBJ file: %w", err)
	}
	defer f.Close()
	return ParseOBJ(f, opts)
}
