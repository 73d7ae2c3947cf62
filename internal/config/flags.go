package config

import "flag"

var (
	flagConfig    = flag.String("config", "", "Path to config file")
	flagDebug     = flag.Bool("debug", false, "Enable debug logging")
	flagLogFile   = flag.String("log-file", "", "Also write logs to this file")
	flagShading   = flag.String("shading", "", "Override import shading: file, flat or smooth")
	flagPrecision = flag.Int("precision", 0, "Decimals written per coordinate (0 keeps the config value, -1 for shortest exact)")
)

// ParseFlags parses command-line flags. Call this early in main().
// Global flags must come before the command name.
func ParseFlags() {
	flag.Parse()
}

// Args returns the arguments left after global flags, starting with the command.
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
	if *flagLogFile != "" {
		cfg.Logging.LogFile = *flagLogFile
	}
	if *flagShading != "" {
		cfg.Import.Shading = *flagShading
	}
	if *flagPrecision != 0 {
		cfg.Export.Precision = *flagPrecision
	}
}
