// Package config handles exporter configuration loading and management.
package config

import (
	"fmt"

	"github.com/Faultbox/lmodkit/internal/logger"
	"github.com/Faultbox/lmodkit/pkg/formats"
	"github.com/Faultbox/lmodkit/pkg/mesh"
)

// Config holds all exporter settings.
type Config struct {
	Export  ExportConfig  `yaml:"export"`
	Batch   BatchConfig   `yaml:"batch"`
	Logging LoggingConfig `yaml:"logging"`
}

// ExportConfig holds triangulation and source reading settings.
type ExportConfig struct {
	QuadMethod     string `yaml:"quad_method"`     // shortest, fixed, alternate
	NgonMethod     string `yaml:"ngon_method"`     // fan, earclip, beauty
	ComputeNormals bool   `yaml:"compute_normals"` // Fill normals missing from the source
	SourceUpAxis   string `yaml:"source_up_axis"`  // z or y
}

// BatchConfig holds settings for converting many files at once.
type BatchConfig struct {
	Workers  int    `yaml:"workers"`
	Progress bool   `yaml:"progress"`
	Manifest string `yaml:"manifest"` // Written next to the outputs when set
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Export: ExportConfig{
			QuadMethod:     mesh.QuadShortest.String(),
			NgonMethod:     mesh.NgonFan.String(),
			ComputeNormals: true,
			SourceUpAxis:   formats.UpZ.String(),
		},
		Batch: BatchConfig{
			Workers:  4,
			Progress: true,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate checks that every enumerated setting is known.
func (c *Config) Validate() error {
	if _, err := c.TriangulateOptions(); err != nil {
		return err
	}
	if _, err := c.ReadOptions(); err != nil {
		return err
	}
	if c.Batch.Workers < 1 {
		return fmt.Errorf("batch workers must be positive, got %d", c.Batch.Workers)
	}
	if _, err := logger.ParseLevel(c.Logging.Level); err != nil {
		return err
	}
	return nil
}

// TriangulateOptions returns the triangulation settings.
func (c *Config) TriangulateOptions() (mesh.TriangulateOptions, error) {
	quad, err := mesh.ParseQuadMethod(c.Export.QuadMethod)
	if err != nil {
		return mesh.TriangulateOptions{}, err
	}
	ngon, err := mesh.ParseNgonMethod(c.Export.NgonMethod)
	if err != nil {
		return mesh.TriangulateOptions{}, err
	}
	return mesh.TriangulateOptions{Quad: quad, Ngon: ngon}, nil
}

// ReadOptions returns the source reading settings.
func (c *Config) ReadOptions() (formats.ReadOptions, error) {
	up, err := formats.ParseUpAxis(c.Export.SourceUpAxis)
	if err != nil {
		return formats.ReadOptions{}, err
	}
	return formats.ReadOptions{ComputeNormals: c.Export.ComputeNormals, Up: up}, nil
}

// LoggerOptions returns logger settings for the configured level and file.
func (c *Config) LoggerOptions() logger.Options {
	opts := logger.Options{Level: c.Logging.Level}
	if c.Logging.LogFile != "" {
		opts.File = logger.DefaultFileConfig(c.Logging.LogFile)
	}
	return opts
}
