package export

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestPlanJobs(t *testing.T) {
	jobs, err := PlanJobs([]string{"models/a.obj", "scenes/b.yaml"}, "out")
	if err != nil {
		t.Fatalf("PlanJobs failed: %v", err)
	}

	want := []Job{
		{Input: "models/a.obj", Output: filepath.Join("out", "a.lmod")},
		{Input: "scenes/b.yaml", Output: filepath.Join("out", "b.lmod")},
	}
	for i := range want {
		if jobs[i] != want[i] {
			t.Errorf("job %d = %+v, want %+v", i, jobs[i], want[i])
		}
	}

	jobs, err = PlanJobs([]string{"models/a.obj"}, "")
	if err != nil {
		t.Fatalf("PlanJobs failed: %v", err)
	}
	if jobs[0].Output != filepath.Join("models", "a.lmod") {
		t.Errorf("output next to input expected, got %s", jobs[0].Output)
	}
}

func TestPlanJobs_Collision(t *testing.T) {
	if _, err := PlanJobs([]string{"a.obj", "x/a.yaml"}, "out"); err == nil {
		t.Error("expected collision error")
	}
}

func TestRunBatch(t *testing.T) {
	dir := t.TempDir()
	inputs := []string{
		writeFile(t, dir, "plane.obj", planeOBJ),
		writeFile(t, dir, "tri.yaml", triangleSnapshot),
		writeFile(t, dir, "broken.obj", "v 1 2\n"),
	}
	outDir := filepath.Join(dir, "out")

	jobs, err := PlanJobs(inputs, outDir)
	if err != nil {
		t.Fatalf("PlanJobs failed: %v", err)
	}

	var progress bytes.Buffer
	results := newTestExporter().RunBatch(context.Background(), jobs, BatchOptions{Workers: 2, Progress: &progress})

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if !results[0].Success || !results[1].Success {
		t.Errorf("expected first two jobs to succeed: %+v", results[:2])
	}
	if results[2].Success || results[2].Error == "" {
		t.Errorf("expected broken input to fail: %+v", results[2])
	}
	if results[0].Triangles != 2 || results[1].Triangles != 1 {
		t.Errorf("unexpected triangle counts: %d, %d", results[0].Triangles, results[1].Triangles)
	}

	data, err := os.ReadFile(filepath.Join(outDir, "plane.lmod"))
	if err != nil {
		t.Fatalf("failed to read plane output: %v", err)
	}
	if string(data) != planeLMOD {
		t.Errorf("batch output differs from single export:\n%q", data)
	}
}

func TestRunBatch_Cancelled(t *testing.T) {
	dir := t.TempDir()
	jobs, _ := PlanJobs([]string{writeFile(t, dir, "plane.obj", planeOBJ)}, dir)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := newTestExporter().RunBatch(ctx, jobs, BatchOptions{Workers: 1})
	if results[0].Success {
		t.Error("expected cancelled job to fail")
	}
	if _, err := os.Stat(jobs[0].Output); !os.IsNotExist(err) {
		t.Error("cancelled job wrote output")
	}
}

func TestWriteManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report", "manifest.json")
	results := []Result{
		{Input: "a.obj", Output: "a.lmod", Meshes: 1, Triangles: 12, Success: true},
		{Input: "b.obj", Output: "b.lmod", Error: "invalid OBJ data"},
	}

	if err := WriteManifest(path, results); err != nil {
		t.Fatalf("WriteManifest failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read manifest: %v", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("manifest is not valid JSON: %v", err)
	}
	if m.Total != 2 || m.Succeeded != 1 || m.Failed != 1 || m.Triangles != 12 {
		t.Errorf("unexpected manifest totals: %+v", m)
	}
	if m.Results[1].Error != "invalid OBJ data" {
		t.Errorf("error not recorded: %+v", m.Results[1])
	}
}
