package mesh

import (
	"errors"
	"fmt"
)

// Mesh errors.
var (
	ErrMalformedMesh   = errors.New("malformed mesh")
	ErrNotTriangulated = errors.New("mesh is not triangulated")
)

// MalformedMeshError describes a mesh that breaks the encoder's preconditions.
type MalformedMeshError struct {
	Mesh   string
	Reason string
}

func (e *MalformedMeshError) Error() string {
	return fmt.Sprintf("malformed mesh %q: %s", e.Mesh, e.Reason)
}

// Is matches ErrMalformedMesh.
func (e *MalformedMeshError) Is(target error) bool {
	return target == ErrMalformedMesh
}
