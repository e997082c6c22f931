package testsupport

import (
	"path/filepath"
	"testing"

	"pagewright/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.OutputDir = filepath.Join(base, "output")
	cfgVal.Paths.CacheDir = filepath.Join(base, "cache")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Keys.InitialKey = "test-initial-key"
	cfgVal.Workers.Count = 2

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return builder.cfg
}

// WithInitialKey sets the request token key tables are decrypted against.
func WithInitialKey(key string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Keys.InitialKey = key
	}
}

// WithWorkers overrides the page worker count.
func WithWorkers(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Workers.Count = n
	}
}

// WithoutArchive writes loose JPEG files instead of a zip archive.
func WithoutArchive() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Output.Archive = false
	}
}

// WithLenientType1 enables the browser viewer's Type1 classification.
func WithLenientType1() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Keys.LenientType1 = true
	}
}

// WithoutKeyCache disables the key-table cache.
func WithoutKeyCache() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Keys.CacheEnabled = false
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.OutputDir)
}
