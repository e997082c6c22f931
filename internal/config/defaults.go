package config

const (
	defaultOutputDir   = "~/comics"
	defaultLogDir      = "~/.local/share/pagewright/logs"
	defaultLogFormat   = "console"
	defaultLogLevel    = "info"
	defaultJPEGQuality = 95
	defaultWorkers     = 4
	maxWorkers         = 64
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
			CacheDir:  defaultCacheDir(),
			LogDir:    defaultLogDir,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Output: Output{
			JPEGQuality: defaultJPEGQuality,
			Archive:     true,
		},
		Keys: Keys{
			CacheEnabled: true,
		},
		Workers: Workers{
			Count: defaultWorkers,
		},
	}
}
