package export

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Manifest summarises a batch run.
type Manifest struct {
	Total     int      `json:"total"`
	Succeeded int      `json:"succeeded"`
	Failed    int      `json:"failed"`
	Triangles int      `json:"triangles"`
	Results   []Result `json:"results"`
}

// NewManifest builds a manifest from batch results.
func NewManifest(results []Result) Manifest {
	m := Manifest{Total: len(results), Results: results}
	for _, r := range results {
		if r.Success {
			m.Succeeded++
			m.Triangles += r.Triangles
		} else {
			m.Failed++
		}
	}
	return m
}

// WriteManifest writes the manifest of results as indented JSON.
func WriteManifest(path string, results []Result) error {
	data, err := json.MarshalIndent(NewManifest(results), "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
