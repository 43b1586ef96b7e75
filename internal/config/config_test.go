package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/Faultbox/lmodkit/pkg/formats"
	"github.com/Faultbox/lmodkit/pkg/mesh"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Export.QuadMethod != "shortest" {
		t.Errorf("expected quad method 'shortest', got %s", cfg.Export.QuadMethod)
	}
	if cfg.Export.NgonMethod != "fan" {
		t.Errorf("expected ngon method 'fan', got %s", cfg.Export.NgonMethod)
	}
	if !cfg.Export.ComputeNormals {
		t.Error("expected compute_normals to be true by default")
	}
	if cfg.Export.SourceUpAxis != "z" {
		t.Errorf("expected source up axis 'z', got %s", cfg.Export.SourceUpAxis)
	}

	if cfg.Batch.Workers != 4 {
		t.Errorf("expected 4 workers, got %d", cfg.Batch.Workers)
	}
	if !cfg.Batch.Progress {
		t.Error("expected progress to be enabled by default")
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
export:
  quad_method: fixed
  ngon_method: earclip
  compute_normals: false
  source_up_axis: y

batch:
  workers: 8
  progress: false
  manifest: manifest.json

logging:
  level: "debug"
  log_file: "lmodkit.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	opts, err := cfg.TriangulateOptions()
	if err != nil {
		t.Fatalf("TriangulateOptions failed: %v", err)
	}
	if opts.Quad != mesh.QuadFixed {
		t.Errorf("expected QuadFixed, got %v", opts.Quad)
	}
	if opts.Ngon != mesh.NgonEarClip {
		t.Errorf("expected NgonEarClip, got %v", opts.Ngon)
	}

	readOpts, err := cfg.ReadOptions()
	if err != nil {
		t.Fatalf("ReadOptions failed: %v", err)
	}
	if readOpts.ComputeNormals {
		t.Error("expected compute_normals to be false")
	}
	if readOpts.Up != formats.UpY {
		t.Errorf("expected Y-up source, got %v", readOpts.Up)
	}

	if cfg.Batch.Workers != 8 {
		t.Errorf("expected 8 workers, got %d", cfg.Batch.Workers)
	}
	if cfg.Batch.Progress {
		t.Error("expected progress to be false")
	}
	if cfg.Batch.Manifest != "manifest.json" {
		t.Errorf("expected manifest path, got %q", cfg.Batch.Manifest)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.LoggerOptions().File.Path != "lmodkit.log" {
		t.Errorf("expected log file 'lmodkit.log', got %s", cfg.LoggerOptions().File.Path)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
batch:
  workers: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	if err := loadFromFile(cfg, "/nonexistent/path/config.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"quad method", func(c *Config) { c.Export.QuadMethod = "beauty" }},
		{"ngon method", func(c *Config) { c.Export.NgonMethod = "delaunay" }},
		{"up axis", func(c *Config) { c.Export.SourceUpAxis = "x" }},
		{"workers", func(c *Config) { c.Batch.Workers = 0 }},
		{"log level", func(c *Config) { c.Logging.Level = "loud" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestTriangulateOptionsBeauty(t *testing.T) {
	*flagNgon = "beauty"
	defer func() { *flagNgon = "" }()

	cfg := Default()
	applyFlags(cfg)

	opts, err := cfg.TriangulateOptions()
	if err != nil {
		t.Fatalf("TriangulateOptions failed: %v", err)
	}
	if opts.Ngon != mesh.NgonBeauty {
		t.Errorf("expected NgonBeauty, got %v", opts.Ngon)
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}

	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	os.Chdir(tmpDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	configPath := filepath.Join(tmpDir, "lmodkit.yaml")
	if err := os.WriteFile(configPath, []byte("batch:\n  workers: 2\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	if path := findConfigFile(); path == "" {
		t.Error("expected to find lmodkit.yaml in current directory")
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name:  "quiet flag",
			setup: func() { *flagQuiet = true },
			verify: func(cfg *Config) {
				if cfg.Logging.Level != "error" {
					t.Errorf("expected log level 'error', got %s", cfg.Logging.Level)
				}
				if cfg.Batch.Progress {
					t.Error("expected progress to be disabled with quiet flag")
				}
			},
			teardown: func() { *flagQuiet = false },
		},
		{
			name: "triangulation flags",
			setup: func() {
				*flagQuad = "alternate"
				*flagNgon = "earclip"
			},
			verify: func(cfg *Config) {
				if cfg.Export.QuadMethod != "alternate" {
					t.Errorf("expected quad method 'alternate', got %s", cfg.Export.QuadMethod)
				}
				if cfg.Export.NgonMethod != "earclip" {
					t.Errorf("expected ngon method 'earclip', got %s", cfg.Export.NgonMethod)
				}
			},
			teardown: func() {
				*flagQuad = ""
				*flagNgon = ""
			},
		},
		{
			name: "source flags",
			setup: func() {
				*flagUpAxis = "y"
				*flagNoNormal = true
			},
			verify: func(cfg *Config) {
				if cfg.Export.SourceUpAxis != "y" {
					t.Errorf("expected up axis 'y', got %s", cfg.Export.SourceUpAxis)
				}
				if cfg.Export.ComputeNormals {
					t.Error("expected compute_normals to be disabled")
				}
			},
			teardown: func() {
				*flagUpAxis = ""
				*flagNoNormal = false
			},
		},
		{
			name: "workers and log file",
			setup: func() {
				*flagWorkers = 16
				*flagLogFile = "out.log"
			},
			verify: func(cfg *Config) {
				if cfg.Batch.Workers != 16 {
					t.Errorf("expected 16 workers, got %d", cfg.Batch.Workers)
				}
				if cfg.Logging.LogFile != "out.log" {
					t.Errorf("expected log file out.log, got %s", cfg.Logging.LogFile)
				}
			},
			teardown: func() {
				*flagWorkers = 0
				*flagLogFile = ""
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)

			tt.verify(cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
export:
  quad_method: fixed
  ngon_method: earclip
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	*flagQuad = "alternate"
	defer func() {
		*flagConfig = ""
		*flagQuad = ""
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Quad method from flag, not file
	if cfg.Export.QuadMethod != "alternate" {
		t.Errorf("expected quad method 'alternate' from flag, got %s", cfg.Export.QuadMethod)
	}

	// N-gon method from file since no flag override
	if cfg.Export.NgonMethod != "earclip" {
		t.Errorf("expected ngon method 'earclip' from file, got %s", cfg.Export.NgonMethod)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	*flagQuad = "diagonal"
	defer func() { *flagQuad = "" }()

	if _, err := Load(); err == nil {
		t.Error("expected Load to reject unknown quad method")
	}
}

func TestSaveTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Export.NgonMethod = "earclip"
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("failed to reload saved config: %v", err)
	}
	if loaded.Export.NgonMethod != "earclip" {
		t.Errorf("expected saved ngon method 'earclip', got %s", loaded.Export.NgonMethod)
	}
}

func TestSave(t *testing.T) {
	if runtime.GOOS == "darwin" || runtime.GOOS == "windows" {
		t.Skip("config dir is not redirected by XDG_CONFIG_HOME on " + runtime.GOOS)
	}
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg := Default()
	cfg.Batch.Workers = 6
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, DefaultPath()); err != nil {
		t.Fatalf("failed to reload saved config: %v", err)
	}
	if loaded.Batch.Workers != 6 {
		t.Errorf("expected 6 workers, got %d", loaded.Batch.Workers)
	}
	if findConfigFile() == "" {
		t.Error("saved config should be found by findConfigFile")
	}
}
