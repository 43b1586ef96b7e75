// lmodtool converts polygon meshes into LMOD model files.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"text/tabwriter"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/Faultbox/lmodkit/internal/config"
	"github.com/Faultbox/lmodkit/internal/export"
	"github.com/Faultbox/lmodkit/internal/logger"
	"github.com/Faultbox/lmodkit/pkg/formats"
)

func main() {
	config.ParseFlags()
	args := config.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	stderrTTY := term.IsTerminal(int(os.Stderr.Fd()))
	logOpts := cfg.LoggerOptions()
	logOpts.Console = os.Stderr
	logOpts.Color = stderrTTY
	if err := logger.Init(logOpts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Debug("config loaded",
		zap.String("quad", cfg.Export.QuadMethod),
		zap.String("ngon", cfg.Export.NgonMethod),
		zap.String("up", cfg.Export.SourceUpAxis),
		zap.Int("workers", cfg.Batch.Workers),
	)

	if err := run(cfg, args[0], args[1:], stderrTTY); err != nil {
		logger.Sync()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, errUnknownCommand) {
			printUsage()
		}
		os.Exit(1)
	}
}

var errUnknownCommand = errors.New("unknown command")

func run(cfg *config.Config, command string, args []string, stderrTTY bool) error {
	switch command {
	case "export", "x":
		return cmdExport(cfg, args)
	case "batch", "b":
		return cmdBatch(cfg, args, stderrTTY)
	case "info":
		return cmdInfo(cfg, args)
	case "dump":
		return cmdDump(cfg, args)
	case "config":
		return cmdConfig(cfg, args)
	case "help", "-h", "--help":
		printUsage()
		return nil
	default:
		return fmt.Errorf("%w: %s", errUnknownCommand, command)
	}
}

func printUsage() {
	fmt.Println(`lmodtool - mesh to LMOD converter

Usage:
  lmodtool [global options] <command> [options]

Commands:
  export [-o out.lmod] <inputs...>       Write all meshes into one LMOD document
  batch [-out dir] [-manifest f] <in...> Convert each input to its own .lmod
  info <inputs...>                       Show mesh statistics
  dump <inputs...>                       Print meshes as a YAML snapshot
  config [save [path]]                   Show or save the effective configuration

Inputs:
  .obj               Wavefront OBJ, one mesh per object
  .yaml, .yml        Mesh snapshot document

Global options:
  -config path       Config file (default ./lmodkit.yaml, then user config dir)
  -quad method       shortest | fixed | alternate
  -ngon method       fan | earclip | beauty
  -up axis           Source up axis: z | y
  -workers n         Parallel conversions in batch mode
  -debug, -quiet     Log level overrides

Examples:
  lmodtool export -o untitled.lmod cube.obj
  lmodtool -up y batch -out build/models assets/*.obj
  lmodtool info scene.yaml`)
}

func newExporter(cfg *config.Config) (*export.Exporter, error) {
	tri, err := cfg.TriangulateOptions()
	if err != nil {
		return nil, err
	}
	read, err := cfg.ReadOptions()
	if err != nil {
		return nil, err
	}
	return export.New(tri, read, logger.Named("export")), nil
}

func cmdExport(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	out := fs.String("o", export.Stdout, "Output file (- for stdout)")
	fs.Parse(args)

	if fs.NArg() < 1 {
		return fmt.Errorf("usage: lmodtool export [-o out.lmod] <inputs...>")
	}

	e, err := newExporter(cfg)
	if err != nil {
		return err
	}

	sum, err := e.ExportFile(*out, fs.Args()...)
	if err != nil {
		return err
	}
	if sum.Meshes == 0 {
		logger.Warn("no meshes found in inputs", zap.Strings("inputs", fs.Args()))
	}
	if *out != export.Stdout {
		fmt.Printf("Exported: %s (%d meshes, %d triangles)\n", *out, sum.Meshes, sum.Triangles)
	}
	return nil
}

func cmdBatch(cfg *config.Config, args []string, stderrTTY bool) error {
	fs := flag.NewFlagSet("batch", flag.ExitOnError)
	outDir := fs.String("out", "", "Output directory (default: next to each input)")
	manifest := fs.String("manifest", cfg.Batch.Manifest, "Write a JSON report to this path")
	fs.Parse(args)

	if fs.NArg() < 1 {
		return fmt.Errorf("usage: lmodtool batch [-out dir] <inputs...>")
	}

	e, err := newExporter(cfg)
	if err != nil {
		return err
	}

	jobs, err := export.PlanJobs(fs.Args(), *outDir)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	opts := export.BatchOptions{Workers: cfg.Batch.Workers}
	if cfg.Batch.Progress && stderrTTY {
		opts.Progress = os.Stderr
	}

	results := e.RunBatch(ctx, jobs, opts)

	if *manifest != "" {
		if err := export.WriteManifest(*manifest, results); err != nil {
			return fmt.Errorf("writing manifest: %w", err)
		}
		logger.Info("manifest written", zap.String("path", *manifest))
	}

	m := export.NewManifest(results)
	fmt.Printf("Converted %d/%d files (%d triangles)\n", m.Succeeded, m.Total, m.Triangles)
	for _, r := range results {
		if !r.Success {
			fmt.Fprintf(os.Stderr, "  %s: %s\n", r.Input, r.Error)
		}
	}
	if m.Failed > 0 {
		return fmt.Errorf("%d of %d conversions failed", m.Failed, m.Total)
	}
	return nil
}

func cmdInfo(cfg *config.Config, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: lmodtool info <inputs...>")
	}

	e, err := newExporter(cfg)
	if err != nil {
		return err
	}

	stats, err := e.Inspect(args...)
	if err != nil {
		return err
	}

	printStats(os.Stdout, stats)
	return nil
}

func printStats(w io.Writer, stats []export.MeshStats) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SOURCE\tMESH\tVERTICES\tFACES\tNGONS\tTRIANGLES")

	var vertices, triangles int
	for _, s := range stats {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\n", s.Source, s.Name, s.Vertices, s.Faces, s.Ngons, s.Triangles)
		vertices += s.Vertices
		triangles += s.Triangles
	}
	tw.Flush()

	fmt.Fprintf(w, "\n%d meshes, %d vertices, %d triangles\n", len(stats), vertices, triangles)
}

func cmdDump(cfg *config.Config, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: lmodtool dump <inputs...>")
	}

	e, err := newExporter(cfg)
	if err != nil {
		return err
	}

	meshes, err := e.ReadInputs(args...)
	if err != nil {
		return err
	}

	data, err := formats.MarshalMeshSnapshot(meshes)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(data)
	return err
}

func cmdConfig(cfg *config.Config, args []string) error {
	if len(args) == 0 {
		data, err := cfg.Marshal()
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	}

	if args[0] != "save" || len(args) > 2 {
		return fmt.Errorf("usage: lmodtool config [save [path]]")
	}

	path := config.DefaultPath()
	var err error
	if len(args) == 2 {
		path = args[1]
		err = cfg.SaveTo(path)
	} else {
		err = cfg.Save()
	}
	if err != nil {
		return err
	}
	fmt.Printf("Saved: %s\n", path)
	return nil
}
