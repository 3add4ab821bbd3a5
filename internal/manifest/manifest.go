// Package manifest writes the structured record of one analysis run:
// selected keyframes, aligned segments, gap report, and video metadata.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"vidscribe/internal/frames"
	"vidscribe/internal/gaps"
	"vidscribe/internal/merge"
	"vidscribe/internal/metadata"
)

// FileName is the manifest file written into the run output directory.
const FileName = "manifest.json"

// SchemaVersion is bumped whenever the manifest layout changes.
const SchemaVersion = 1

// Video describes the analyzed input.
type Video struct {
	Path   string  `json:"path"`
	FPS    float64 `json:"fps"`
	Width  int     `json:"width"`
	Height int     `json:"height"`
	metadata.Metadata
}

// Transcript describes the narration input.
type Transcript struct {
	Path   string `json:"path,omitempty"`
	Format string `json:"format"`
	Words  int    `json:"words"`
}

// Settings records the analysis options a run used.
type Settings struct {
	SceneChangeThreshold   float64 `json:"scene_change_threshold"`
	MinGapSeconds          float64 `json:"min_gap_seconds"`
	CodeScoreThreshold     float64 `json:"code_score_threshold"`
	DiagramScoreThreshold  float64 `json:"diagram_score_threshold"`
	AlignmentWindowSeconds float64 `json:"alignment_window_seconds"`
	EnableOCR              bool    `json:"enable_ocr"`
	SampleFPS              float64 `json:"sample_fps"`
	Baseline               string  `json:"baseline"`
	DurationSource         string  `json:"duration_source"`
}

// Stats counts frames through each stage.
type Stats struct {
	FramesRead     int `json:"frames_read"`
	FramesExamined int `json:"frames_examined"`
	FramesSkipped  int `json:"frames_skipped"`
	Candidates     int `json:"candidates"`
	Selected       int `json:"selected"`
	Segments       int `json:"segments"`
}

// Summary aggregates segment labels.
type Summary struct {
	SegmentTypes map[frames.SegmentType]int      `json:"segment_types"`
	Quality      map[frames.AlignmentQuality]int `json:"alignment_quality"`
	Insights     map[string]string               `json:"insights"`
}

// Manifest is the full run record.
type Manifest struct {
	SchemaVersion int                     `json:"schema_version"`
	RunID         string                  `json:"run_id"`
	GeneratedAt   time.Time               `json:"generated_at"`
	Video         Video                   `json:"video"`
	Transcript    Transcript              `json:"transcript"`
	Settings      Settings                `json:"settings"`
	Stats         Stats                   `json:"stats"`
	Frames        []frames.SelectedFrame  `json:"frames"`
	Segments      []frames.AlignedSegment `json:"segments"`
	Gaps          gaps.Report             `json:"gaps"`
	Summary       Summary                 `json:"summary"`
}

// Summarize counts segment types and qualities and describes every insight
// tag that occurs.
func Summarize(segments []frames.AlignedSegment) Summary {
	summary := Summary{
		SegmentTypes: merge.CountByType(segments),
		Quality:      make(map[frames.AlignmentQuality]int),
		Insights:     make(map[string]string),
	}
	for _, segment := range segments {
		summary.Quality[segment.AlignmentQuality]++
		for _, tag := range segment.Insights {
			summary.Insights[tag] = merge.Describe(tag)
		}
	}
	return summary
}

// SortedInsightTags returns the summary insight tags in lexical order.
func (s Summary) SortedInsightTags() []string {
	tags := make([]string, 0, len(s.Insights))
	for tag := range s.Insights {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// Write stores m as indented JSON at path, atomically.
func Write(path string, m Manifest) error {
	if m.SchemaVersion == 0 {
		m.SchemaVersion = SchemaVersion
	}
	if m.Frames == nil {
		m.Frames = []frames.SelectedFrame{}
	}
	if m.Segments == nil {
		m.Segments = []frames.AlignedSegment{}
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create manifest directory: %w", err)
	}
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write temp manifest: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename manifest: %w", err)
	}
	return nil
}

// Read loads a manifest written by Write.
func Read(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("parse manifest: %w", err)
	}
	if m.SchemaVersion != SchemaVersion {
		return Manifest{}, fmt.Errorf("manifest schema version %d, expected %d", m.SchemaVersion, SchemaVersion)
	}
	return m, nil
}
