package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"vidscribe/internal/config"
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
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Store.Path = filepath.Join(base, "state", "runs.db")
	cfgVal.Analysis.Workers = 2

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithOCR toggles analysis.enable_ocr on the test config.
func WithOCR(enabled bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Analysis.EnableOCR = enabled
	}
}

// WithAnalysis lets a test adjust the analysis section directly.
func WithAnalysis(fn func(*config.Analysis)) ConfigOption {
	return func(b *configBuilder) {
		fn(&b.cfg.Analysis)
	}
}

// WithStubbedBinaries writes stub executables that exit 0 for the provided
// names and prepends them to PATH. If names is empty, ffmpeg, ffprobe, and
// tesseract are stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"ffmpeg", "ffprobe", "tesseract"}
		}
		scripts := make(map[string]string, len(names))
		for _, name := range names {
			scripts[name] = "#!/bin/sh\nexit 0\n"
		}
		installStubs(b.t, filepath.Join(b.baseDir, "bin"), scripts)
	}
}

// WithStubScripts installs the given shell scripts as executables on PATH.
func WithStubScripts(scripts map[string]string) ConfigOption {
	return func(b *configBuilder) {
		installStubs(b.t, filepath.Join(b.baseDir, "bin"), scripts)
	}
}

func installStubs(t testing.TB, binDir string, scripts map[string]string) {
	t.Helper()
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		t.Fatalf("mkdir bin dir: %v", err)
	}
	for name, script := range scripts {
		target := filepath.Join(binDir, name)
		if err := os.WriteFile(target, []byte(script), 0o755); err != nil {
			t.Fatalf("write stub %s: %v", name, err)
		}
	}

	oldPath := os.Getenv("PATH")
	if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
		t.Fatalf("set PATH: %v", err)
	}
	t.Cleanup(func() {
		_ = os.Setenv("PATH", oldPath)
	})
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.OutputDir)
}
