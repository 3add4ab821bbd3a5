package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeStore(); err != nil {
		return err
	}
	c.normalizeAnalysis()
	c.normalizeOCR()
	c.normalizeFrames()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		if value, ok := os.LookupEnv("VIDSCRIBE_OUTPUT_DIR"); ok && strings.TrimSpace(value) != "" {
			c.Paths.OutputDir = value
		} else {
			c.Paths.OutputDir = defaultOutputDir
		}
	}
	var err error
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeStore() error {
	if strings.TrimSpace(c.Store.Path) == "" {
		c.Store.Path = filepath.Join(c.Paths.StateDir, defaultStoreFile)
	}
	var err error
	if c.Store.Path, err = expandPath(c.Store.Path); err != nil {
		return fmt.Errorf("store.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeAnalysis() {
	c.Analysis.Baseline = strings.ToLower(strings.TrimSpace(c.Analysis.Baseline))
	if c.Analysis.Baseline == "" {
		c.Analysis.Baseline = defaultBaseline
	}
	c.Analysis.DurationSource = strings.ToLower(strings.TrimSpace(c.Analysis.DurationSource))
	if c.Analysis.DurationSource == "" {
		c.Analysis.DurationSource = defaultDurationSource
	}
	if c.Analysis.Workers == 0 {
		c.Analysis.Workers = runtime.NumCPU()
	}
}

func (c *Config) normalizeOCR() {
	c.OCR.Binary = strings.TrimSpace(c.OCR.Binary)
	if c.OCR.Binary == "" {
		if value, ok := os.LookupEnv("TESSERACT_BINARY"); ok && strings.TrimSpace(value) != "" {
			c.OCR.Binary = strings.TrimSpace(value)
		} else {
			c.OCR.Binary = defaultOCRBinary
		}
	}
	c.OCR.Language = strings.TrimSpace(c.OCR.Language)
	if c.OCR.Language == "" {
		c.OCR.Language = defaultOCRLanguage
	}
}

func (c *Config) normalizeFrames() {
	c.Frames.FFmpegBinary = strings.TrimSpace(c.Frames.FFmpegBinary)
	if c.Frames.FFmpegBinary == "" {
		c.Frames.FFmpegBinary = defaultFFmpegBinary
	}
	c.Frames.FFprobeBinary = strings.TrimSpace(c.Frames.FFprobeBinary)
	if c.Frames.FFprobeBinary == "" {
		c.Frames.FFprobeBinary = defaultFFprobeBinary
	}
}

func (c *Config) normalizeLogging() {
	format := strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch format {
	case "", "text":
		c.Logging.Format = defaultLogFormat
	default:
		c.Logging.Format = format
	}
	level := strings.ToLower(strings.TrimSpace(c.Logging.Level))
	switch level {
	case "":
		c.Logging.Level = defaultLogLevel
	case "warning":
		c.Logging.Level = "warn"
	default:
		c.Logging.Level = level
	}
}
