package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	OutputDir string `toml:"output_dir"`
	LogDir    string `toml:"log_dir"`
	StateDir  string `toml:"state_dir"`
}

// Analysis contains the detection, classification, and alignment knobs.
type Analysis struct {
	SceneChangeThreshold   float64 `toml:"scene_change_threshold" validate:"gte=0,lte=1"`
	MinGapSeconds          float64 `toml:"min_gap_seconds" validate:"gte=0"`
	CodeScoreThreshold     float64 `toml:"code_score_threshold" validate:"gte=0,lte=1"`
	DiagramScoreThreshold  float64 `toml:"diagram_score_threshold" validate:"gte=0,lte=1"`
	AlignmentWindowSeconds float64 `toml:"alignment_window_seconds" validate:"gt=0"`
	EnableOCR              bool    `toml:"enable_ocr"`
	// SampleFPS is the rate frames are decoded at before scene detection.
	SampleFPS float64 `toml:"sample_fps" validate:"gt=0,lte=60"`
	// Baseline selects how skipped frames affect the comparison histogram:
	// "examined" keeps the last examined frame, "always_update" tracks every frame.
	Baseline string `toml:"baseline" validate:"oneof=examined always_update"`
	// DurationSource selects the transcript projection duration: "last_frame"
	// uses the last selected frame timestamp, "video" the probed video duration.
	DurationSource string `toml:"duration_source" validate:"oneof=last_frame video"`
	Workers        int    `toml:"workers" validate:"gte=1,lte=256"`
}

// OCR contains configuration for the tesseract adapter.
type OCR struct {
	Binary         string `toml:"binary" validate:"required"`
	Language       string `toml:"language" validate:"required"`
	MaxConcurrent  int    `toml:"max_concurrent" validate:"gte=1,lte=64"`
	TimeoutSeconds int    `toml:"timeout_seconds" validate:"gte=1"`
}

// Frames contains configuration for frame decoding and keyframe output.
type Frames struct {
	FFmpegBinary  string  `toml:"ffmpeg_binary" validate:"required"`
	FFprobeBinary string  `toml:"ffprobe_binary" validate:"required"`
	JPEGQuality   int     `toml:"jpeg_quality" validate:"gte=1,lte=100"`
	Scale         float64 `toml:"scale" validate:"gt=0,lte=1"`
}

// Store contains configuration for the run history database.
type Store struct {
	Path string `toml:"path"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format" validate:"oneof=console json"`
	Level  string `toml:"level" validate:"oneof=debug info warn error"`
}

// Config encapsulates all configuration values for vidscribe.
//
// Configuration sections by subsystem:
//   - Paths: output, log, and state directories
//   - Analysis: scene detection, classification, and alignment thresholds
//   - OCR: tesseract binary, language, concurrency, and timeout
//   - Frames: ffmpeg/ffprobe binaries and keyframe JPEG output
//   - Store: run history database location
//   - Logging: log format and level
type Config struct {
	Paths    Paths    `toml:"paths"`
	Analysis Analysis `toml:"analysis"`
	OCR      OCR      `toml:"ocr"`
	Frames   Frames   `toml:"frames"`
	Store    Store    `toml:"store"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("vidscribe.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories a run writes into.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.OutputDir, c.Paths.LogDir, c.Paths.StateDir}
	if dir := filepath.Dir(c.Store.Path); c.Store.Path != "" && dir != "" {
		dirs = append(dirs, dir)
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
