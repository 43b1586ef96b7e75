package export

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Job converts one source file into one LMOD file.
type Job struct {
	Input  string
	Output string
}

// Result holds the outcome of one job.
type Result struct {
	Input     string        `json:"input"`
	Output    string        `json:"output"`
	Meshes    int           `json:"meshes"`
	Triangles int           `json:"triangles"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
	Duration  time.Duration `json:"duration_ns"`
}

// BatchOptions configures RunBatch.
type BatchOptions struct {
	Workers int

	// Progress receives a progress bar when non-nil.
	Progress io.Writer
}

// PlanJobs maps each input to <outDir>/<name>.lmod, or next to the input
// when outDir is empty. Two inputs that would share an output are an error.
func PlanJobs(inputs []string, outDir string) ([]Job, error) {
	jobs := make([]Job, 0, len(inputs))
	seen := make(map[string]string, len(inputs))

	for _, in := range inputs {
		base := strings.TrimSuffix(filepath.Base(in), filepath.Ext(in)) + ".lmod"
		dir := outDir
		if dir == "" {
			dir = filepath.Dir(in)
		}
		out := filepath.Join(dir, base)

		if prev, ok := seen[out]; ok {
			return nil, fmt.Errorf("%s and %s both map to %s", prev, in, out)
		}
		seen[out] = in
		jobs = append(jobs, Job{Input: in, Output: out})
	}
	return jobs, nil
}

// RunBatch converts every job with at most opts.Workers in flight. Each job
// writes its own file, so no output is shared between goroutines. Failures
// are reported per job; cancelling ctx marks unstarted jobs as failed.
// Results are returned in job order.
func (e *Exporter) RunBatch(ctx context.Context, jobs []Job, opts BatchOptions) []Result {
	results := make([]Result, len(jobs))
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	var bar *progressbar.ProgressBar
	if opts.Progress != nil {
		bar = progressbar.NewOptions(len(jobs),
			progressbar.OptionSetWriter(opts.Progress),
			progressbar.OptionSetDescription("exporting"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
		defer bar.Close()
	}

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			results[i] = e.runJob(gctx, job)
			if bar != nil {
				bar.Add(1)
			}
			return nil
		})
	}
	g.Wait()

	failed := 0
	for _, r := range results {
		if !r.Success {
			failed++
			e.log.Warn("export failed", zap.String("input", r.Input), zap.String("error", r.Error))
		}
	}
	e.log.Info("batch finished",
		zap.Int("jobs", len(jobs)),
		zap.Int("failed", failed),
		zap.Duration("elapsed", time.Since(start)),
	)

	return results
}

func (e *Exporter) runJob(ctx context.Context, job Job) Result {
	res := Result{Input: job.Input, Output: job.Output}
	if err := ctx.Err(); err != nil {
		res.Error = err.Error()
		return res
	}

	start := time.Now()
	sum, err := e.ExportFile(job.Output, job.Input)
	res.Duration = time.Since(start)
	if err != nil {
		res.Error = err.Error()
		return res
	}

	res.Meshes = sum.Meshes
	res.Triangles = sum.Triangles
	res.Success = true
	return res
}
