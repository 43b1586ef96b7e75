package config

import "flag"

var (
	flagConfig   = flag.String("config", "", "Path to config file")
	flagDebug    = flag.Bool("debug", false, "Enable debug logging")
	flagQuiet    = flag.Bool("quiet", false, "Only log errors and hide progress")
	flagLogFile  = flag.String("log-file", "", "Also write logs to this file")
	flagQuad     = flag.String("quad", "", "Quad split: shortest, fixed, alternate")
	flagNgon     = flag.String("ngon", "", "N-gon split: fan, earclip, beauty")
	flagUpAxis   = flag.String("up", "", "Source up axis: z or y")
	flagNoNormal = flag.Bool("no-compute-normals", false, "Fail on vertices without normals")
	flagWorkers  = flag.Int("workers", 0, "Parallel conversions in batch mode")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// Args returns the arguments left after global flags.
func Args() []string {
	return flag.Args()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagQuiet {
		cfg.Logging.Level = "error"
		cfg.Batch.Progress = false
	}
	if *flagLogFile != "" {
		cfg.Logging.LogFile = *flagLogFile
	}
	if *flagQuad != "" {
		cfg.Export.QuadMethod = *flagQuad
	}
	if *flagNgon != "" {
		cfg.Export.NgonMethod = *flagNgon
	}
	if *flagUpAxis != "" {
		cfg.Export.SourceUpAxis = *flagUpAxis
	}
	if *flagNoNormal {
		cfg.Export.ComputeNormals = false
	}
	if *flagWorkers > 0 {
		cfg.Batch.Workers = *flagWorkers
	}
}
