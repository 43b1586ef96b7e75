// Package export runs the mesh to LMOD pipeline over source files.
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Faultbox/lmodkit/internal/logger"
	"github.com/Faultbox/lmodkit/pkg/formats"
	"github.com/Faultbox/lmodkit/pkg/mesh"
)

// Stdout is the output path that selects standard output.
const Stdout = "-"

// Exporter triangulates meshes and encodes them as LMOD.
type Exporter struct {
	triangulate mesh.TriangulateOptions
	read        formats.ReadOptions
	log         *zap.Logger
}

// New creates an Exporter. A nil log uses the global logger.
func New(tri mesh.TriangulateOptions, read formats.ReadOptions, log *zap.Logger) *Exporter {
	if log == nil {
		log = logger.Named("export")
	}
	return &Exporter{triangulate: tri, read: read, log: log}
}

// Summary counts what one export wrote.
type Summary struct {
	Meshes    int
	Vertices  int
	Triangles int
}

// Add accumulates another summary.
func (s *Summary) Add(other Summary) {
	s.Meshes += other.Meshes
	s.Vertices += other.Vertices
	s.Triangles += other.Triangles
}

// Export writes one LMOD document holding meshes in order. Each mesh is
// validated before it is triangulated; the first invalid mesh aborts the
// export.
func (e *Exporter) Export(w io.Writer, meshes []*mesh.Mesh) (Summary, error) {
	var sum Summary
	lw := formats.NewLMODWriter(w)

	for _, m := range meshes {
		if err := m.Validate(); err != nil {
			return sum, err
		}

		tri := mesh.Triangulate(m, e.triangulate)
		if err := lw.WriteMesh(tri); err != nil {
			return sum, fmt.Errorf("encoding mesh %q: %w", m.Name, err)
		}

		sum.Meshes = lw.Meshes()
		sum.Vertices += len(tri.Vertices)
		sum.Triangles += len(tri.Faces)

		e.log.Debug("mesh encoded",
			zap.String("mesh", m.Name),
			zap.Int("vertices", len(tri.Vertices)),
			zap.Int("faces", len(m.Faces)),
			zap.Int("triangles", len(tri.Faces)),
		)
	}

	if err := lw.Close(); err != nil {
		return sum, fmt.Errorf("flushing LMOD output: %w", err)
	}
	return sum, nil
}

// ReadInputs reads the meshes of every input file, keeping input order.
func (e *Exporter) ReadInputs(inputs ...string) ([]*mesh.Mesh, error) {
	var meshes []*mesh.Mesh
	for _, in := range inputs {
		ms, err := formats.ReadMeshesFile(in, e.read)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", in, err)
		}
		e.log.Debug("source read", zap.String("path", in), zap.Int("meshes", len(ms)))
		meshes = append(meshes, ms...)
	}
	return meshes, nil
}

// ExportFile reads inputs and writes a single document to out. A regular
// file is written through a temporary sibling and renamed into place, so a
// failed export never leaves a partial document behind.
func (e *Exporter) ExportFile(out string, inputs ...string) (Summary, error) {
	meshes, err := e.ReadInputs(inputs...)
	if err != nil {
		return Summary{}, err
	}

	if out == Stdout {
		return e.Export(os.Stdout, meshes)
	}

	dir := filepath.Dir(out)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return Summary{}, fmt.Errorf("creating output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".lmod_*")
	if err != nil {
		return Summary{}, fmt.Errorf("creating temp output: %w", err)
	}

	sum, err := e.Export(tmp, meshes)
	if err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return sum, err
	}
	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return sum, fmt.Errorf("setting output mode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return sum, fmt.Errorf("closing temp output: %w", err)
	}
	if err := os.Rename(tmp.Name(), out); err != nil {
		os.Remove(tmp.Name())
		return sum, fmt.Errorf("moving output into place: %w", err)
	}

	e.log.Info("export finished",
		zap.String("output", out),
		zap.Int("meshes", sum.Meshes),
		zap.Int("triangles", sum.Triangles),
	)
	return sum, nil
}

// MeshStats describes a mesh before and after triangulation.
type MeshStats struct {
	Source    string
	Name      string
	Vertices  int
	Faces     int
	Ngons     int // Faces with more than four vertices
	Triangles int
}

// Inspect reports per-mesh statistics for inputs without encoding them.
func (e *Exporter) Inspect(inputs ...string) ([]MeshStats, error) {
	var stats []MeshStats
	for _, in := range inputs {
		meshes, err := formats.ReadMeshesFile(in, e.read)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", in, err)
		}
		for _, m := range meshes {
			if err := m.Validate(); err != nil {
				return nil, fmt.Errorf("%s: %w", in, err)
			}
			st := MeshStats{
				Source:    in,
				Name:      m.Name,
				Vertices:  len(m.Vertices),
				Faces:     len(m.Faces),
				Triangles: len(mesh.Triangulate(m, e.triangulate).Faces),
			}
			for _, f := range m.Faces {
				if len(f) > 4 {
					st.Ngons++
				}
			}
			stats = append(stats, st)
		}
	}
	return stats, nil
}
