package formats

import (
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/Faultbox/lmodkit/pkg/mesh"
)

// UpAxis names the vertical axis of a source file.
type UpAxis int

const (
	UpZ UpAxis = iota // Z-up, the exporter's native source basis
	UpY               // Y-up, converted to Z-up on read
)

// String returns the axis letter.
func (a UpAxis) String() string {
	switch a {
	case UpZ:
		return "z"
	case UpY:
		return "y"
	default:
		return fmt.Sprintf("Unknown(%d)", int(a))
	}
}

// ParseUpAxis parses "z" or "y".
func ParseUpAxis(s string) (UpAxis, error) {
	switch strings.ToLower(s) {
	case "z", "":
		return UpZ, nil
	case "y":
		return UpY, nil
	default:
		return 0, fmt.Errorf("unknown up axis %q", s)
	}
}

// ReadOptions controls how source files become meshes.
type ReadOptions struct {
	// ComputeNormals fills normals the source does not provide.
	// When false a vertex without a normal is an error.
	ComputeNormals bool

	// Up is the vertical axis of the source data.
	Up UpAxis

	// DefaultName names geometry that appears before any object statement.
	DefaultName string
}

// ReadMeshesFile reads every mesh from a source file, picking the parser by
// extension (.obj, .yaml, .yml).
func ReadMeshesFile(path string, opts ReadOptions) ([]*mesh.Mesh, error) {
	if opts.DefaultName == "" {
		opts.DefaultName = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".obj":
		return ParseOBJFile(path, opts)
	case ".yaml", ".yml":
		return ParseMeshSnapshotFile(path, opts)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSource, filepath.Ext(path))
	}
}

// cleanName normalizes a mesh name read from a source file.
func cleanName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}
