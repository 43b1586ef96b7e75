package formats

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/Faultbox/lmodkit/pkg/math"
	"github.com/Faultbox/lmodkit/pkg/mesh"
)

const planeSnapshot = `
meshes:
  - name: Plane
    vertices: [[0, 0, 0], [1, 0, 0], [1, 1, 0], [0, 1, 0]]
    normals: [[0, 0, 1], [0, 0, 1], [0, 0, 1], [0, 0, 1]]
    faces: [[0, 1, 2, 3]]
`

func TestParseMeshSnapshot_Plane(t *testing.T) {
	meshes, err := ParseMeshSnapshot([]byte(planeSnapshot), ReadOptions{})
	if err != nil {
		t.Fatalf("ParseMeshSnapshot failed: %v", err)
	}
	if len(meshes) != 1 {
		t.Fatalf("expected 1 mesh, got %d", len(meshes))
	}
	if !reflect.DeepEqual(meshes[0], createPlane()) {
		t.Errorf("parsed mesh = %+v, want %+v", meshes[0], createPlane())
	}
}

func TestParseMeshSnapshot_ComputeNormals(t *testing.T) {
	data := `
meshes:
  - vertices: [[0, 0, 0], [1, 0, 0], [1, 1, 0], [0, 1, 0]]
    faces: [[0, 1, 2, 3]]
  - name: Empty
`
	meshes, err := ParseMeshSnapshot([]byte(data), ReadOptions{ComputeNormals: true, DefaultName: "scene"})
	if err != nil {
		t.Fatalf("ParseMeshSnapshot failed: %v", err)
	}
	if meshes[0].Name != "scene.000" {
		t.Errorf("unnamed mesh got %q, want scene.000", meshes[0].Name)
	}
	for i, n := range meshes[0].Normals {
		if n != (math.Vec3{X: 0, Y: 0, Z: 1}) {
			t.Errorf("normal %d = %v, want +Z", i, n)
		}
	}
	if err := meshes[1].Validate(); err != nil {
		t.Errorf("empty mesh should validate: %v", err)
	}
}

func TestParseMeshSnapshot_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
		opts ReadOptions
		want error
	}{
		{"not yaml", "meshes: [", ReadOptions{}, ErrInvalidSnapshot},
		{"two components", "meshes:\n  - vertices: [[0, 0]]\n", ReadOptions{}, ErrInvalidSnapshot},
		{"no normals", "meshes:\n  - vertices: [[0, 0, 0]]\n", ReadOptions{}, ErrMissingNormal},
		{"bad face for computed normals", "meshes:\n  - vertices: [[0, 0, 0]]\n    faces: [[0, 1, 2]]\n", ReadOptions{ComputeNormals: true}, mesh.ErrMalformedMesh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseMeshSnapshot([]byte(tt.data), tt.opts)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestMarshalMeshSnapshot(t *testing.T) {
	data, err := MarshalMeshSnapshot([]*mesh.Mesh{createPlane()})
	if err != nil {
		t.Fatalf("MarshalMeshSnapshot failed: %v", err)
	}

	meshes, err := ParseMeshSnapshot(data, ReadOptions{})
	if err != nil {
		t.Fatalf("ParseMeshSnapshot failed: %v", err)
	}
	if !reflect.DeepEqual(meshes[0], createPlane()) {
		t.Errorf("snapshot did not survive marshalling: %+v", meshes[0])
	}
}

func TestParseMeshSnapshotFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.yaml")
	if err := os.WriteFile(path, []byte(planeSnapshot), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	meshes, err := ReadMeshesFile(path, ReadOptions{})
	if err != nil {
		t.Fatalf("ReadMeshesFile failed: %v", err)
	}
	if len(meshes) != 1 || meshes[0].Name != "Plane" {
		t.Errorf("unexpected meshes: %+v", meshes)
	}
}
