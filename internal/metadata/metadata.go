// Package metadata loads the optional {title, author, duration} sidecar that
// accompanies a video. Missing or malformed fields fall back to defaults; a
// sidecar problem never fails a run.
package metadata

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// UnknownAuthor is used when no author is known.
const UnknownAuthor = "unknown"

// Metadata describes the analyzed video.
type Metadata struct {
	Title    string  `json:"title" yaml:"title"`
	Author   string  `json:"author" yaml:"author"`
	Duration float64 `json:"duration" yaml:"duration"`
}

// Defaults supplies fallback values for missing fields.
type Defaults struct {
	VideoPath string
	Title     string
	Author    string
	Duration  float64
}

// Fallback returns the metadata used when no sidecar value applies.
func (d Defaults) Fallback() Metadata {
	m := Metadata{
		Title:    strings.TrimSpace(d.Title),
		Author:   strings.TrimSpace(d.Author),
		Duration: d.Duration,
	}
	if m.Title == "" {
		m.Title = Stem(d.VideoPath)
	}
	if m.Author == "" {
		m.Author = UnknownAuthor
	}
	if math.IsNaN(m.Duration) || m.Duration < 0 {
		m.Duration = 0
	}
	return m
}

// Stem returns the file name without directory or extension.
func Stem(path string) string {
	base := filepath.Base(strings.TrimSpace(path))
	if base == "." || base == string(filepath.Separator) {
		return ""
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Discover returns the first sidecar next to videoPath, or "".
func Discover(videoPath string) string {
	if strings.TrimSpace(videoPath) == "" {
		return ""
	}
	base := strings.TrimSuffix(videoPath, filepath.Ext(videoPath))
	for _, ext := range []string{".yaml", ".yml", ".meta.json", ".info.json"} {
		candidate := base + ext
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
	}
	return ""
}

// Load reads the sidecar at path and merges it over defaults. The returned
// issues describe every field that was ignored.
func Load(path string, defaults Defaults) (Metadata, []string) {
	m := defaults.Fallback()
	path = strings.TrimSpace(path)
	if path == "" {
		return m, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return m, []string{fmt.Sprintf("metadata file %s not found", path)}
		}
		return m, []string{fmt.Sprintf("read metadata: %v", err)}
	}
	return Parse(data, defaults)
}

// Parse merges a YAML or JSON document over defaults.
func Parse(data []byte, defaults Defaults) (Metadata, []string) {
	m := defaults.Fallback()
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return m, []string{fmt.Sprintf("parse metadata: %v", err)}
	}
	var issues []string
	if value, ok := lookup(raw, "title"); ok {
		if s, ok := value.(string); ok && strings.TrimSpace(s) != "" {
			m.Title = strings.TrimSpace(s)
		} else {
			issues = append(issues, fmt.Sprintf("title: ignoring %v", value))
		}
	}
	if value, ok := lookup(raw, "author", "uploader", "channel"); ok {
		if s, ok := value.(string); ok && strings.TrimSpace(s) != "" {
			m.Author = strings.TrimSpace(s)
		} else {
			issues = append(issues, fmt.Sprintf("author: ignoring %v", value))
		}
	}
	if value, ok := lookup(raw, "duration"); ok {
		if d, ok := parseDuration(value); ok {
			m.Duration = d
		} else {
			issues = append(issues, fmt.Sprintf("duration: ignoring %v", value))
		}
	}
	return m, issues
}

func lookup(raw map[string]any, keys ...string) (any, bool) {
	for _, key := range keys {
		if value, ok := raw[key]; ok && value != nil {
			return value, true
		}
	}
	return nil, false
}

// parseDuration accepts seconds as a number or string, or [hh:]mm:ss.
func parseDuration(value any) (float64, bool) {
	var seconds float64
	switch v := value.(type) {
	case int:
		seconds = float64(v)
	case float64:
		seconds = v
	case string:
		parsed, ok := parseClock(strings.TrimSpace(v))
		if !ok {
			return 0, false
		}
		seconds = parsed
	default:
		return 0, false
	}
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds <= 0 {
		return 0, false
	}
	return seconds, true
}

func parseClock(value string) (float64, bool) {
	if value == "" {
		return 0, false
	}
	parts := strings.Split(value, ":")
	if len(parts) > 3 {
		return 0, false
	}
	total := 0.0
	for i, part := range parts {
		n, err := strconv.ParseFloat(part, 64)
		if err != nil || n < 0 {
			return 0, false
		}
		if i > 0 && n >= 60 {
			return 0, false
		}
		total = total*60 + n
	}
	return total, true
}
