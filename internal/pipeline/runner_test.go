package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"vidscribe/internal/align"
	"vidscribe/internal/classify"
	"vidscribe/internal/config"
	"vidscribe/internal/frames"
	"vidscribe/internal/framesource"
	"vidscribe/internal/logging"
	"vidscribe/internal/manifest"
	"vidscribe/internal/runstore"
	"vidscribe/internal/services"
	"vidscribe/internal/testsupport"
)

const testRunID = "0123456789abcdef"

type runnerFixture struct {
	cfg        *config.Config
	store      *runstore.Store
	videoPath  string
	transcript string
}

func newRunnerFixture(t *testing.T) runnerFixture {
	t.Helper()
	cfg := testsupport.NewConfig(t, testsupport.WithAnalysis(func(a *config.Analysis) {
		a.DurationSource = string(align.DurationVideo)
	}))
	dir := t.TempDir()
	video := filepath.Join(dir, "Lecture One.mp4")
	if err := os.WriteFile(video, []byte("not really a video"), 0o644); err != nil {
		t.Fatalf("write video: %v", err)
	}
	script := filepath.Join(dir, "Lecture One.txt")
	if err := os.WriteFile(script, []byte(narration()), 0o644); err != nil {
		t.Fatalf("write transcript: %v", err)
	}
	return runnerFixture{
		cfg:        cfg,
		store:      testsupport.MustOpenStore(t, cfg),
		videoPath:  video,
		transcript: script,
	}
}

func (f runnerFixture) runner(opts ...RunnerOption) *Runner {
	base := []RunnerOption{
		WithIDGenerator(func() string { return testRunID }),
		WithProbe(func(context.Context, string) (framesource.Info, error) {
			return framesource.Info{Width: 32, Height: 18, FPS: 1, Duration: 120, Title: "Intro to Go"}, nil
		}),
		WithSourceOpener(func(context.Context, string, framesource.Info) (frames.Source, func() error, error) {
			return lectureSource(), nil, nil
		}),
		WithClassifier(codeAt{second: 40, priority: 0.5}),
	}
	return NewRunner(f.cfg, f.store, logging.NewNop(), append(base, opts...)...)
}

func TestRunnerWritesManifestAndHistory(t *testing.T) {
	f := newRunnerFixture(t)
	report, err := f.runner().Run(context.Background(), Request{
		VideoPath:      f.videoPath,
		TranscriptPath: f.transcript,
	})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	wantDir := filepath.Join(f.cfg.Paths.OutputDir, "lecture_one-01234567")
	if report.OutputDir != wantDir {
		t.Fatalf("output dir = %q, want %q", report.OutputDir, wantDir)
	}
	m, err := manifest.Read(report.ManifestPath)
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	if m.RunID != testRunID || m.Video.Title != "Intro to Go" || m.Video.Duration != 120 {
		t.Fatalf("unexpected manifest header %+v", m.Video)
	}
	if m.Video.Author != "unknown" {
		t.Fatalf("author = %q, want unknown", m.Video.Author)
	}
	if m.Transcript.Words != 600 || m.Transcript.Format != "text" {
		t.Fatalf("transcript = %+v", m.Transcript)
	}
	if len(m.Frames) != 5 || len(m.Segments) != 5 {
		t.Fatalf("manifest has %d frames and %d segments", len(m.Frames), len(m.Segments))
	}
	if m.Settings.DurationSource != "video" {
		t.Fatalf("settings = %+v", m.Settings)
	}
	if m.Summary.SegmentTypes[frames.SegmentCodeExplanation] != 1 {
		t.Fatalf("summary = %+v", m.Summary.SegmentTypes)
	}

	for _, frame := range m.Frames {
		if _, err := os.Stat(frame.ImagePath); err != nil {
			t.Fatalf("frame image %s: %v", frame.ImagePath, err)
		}
		if !strings.HasPrefix(frame.ImagePath, filepath.Join(wantDir, "frames")) {
			t.Fatalf("frame image %s outside output dir", frame.ImagePath)
		}
	}

	run, err := f.store.Get(context.Background(), testRunID)
	if err != nil || run == nil {
		t.Fatalf("Get run: %v %v", run, err)
	}
	if run.Status != runstore.StatusCompleted || run.Selected != 5 || run.ManifestPath != report.ManifestPath {
		t.Fatalf("unexpected run record %+v", run)
	}
	if run.FinishedAt == nil {
		t.Fatal("expected finished_at to be set")
	}
}

func TestRunnerRecordsFailures(t *testing.T) {
	tests := []struct {
		name       string
		video      func(f runnerFixture) string
		opts       []RunnerOption
		wantMarker error
		wantStatus runstore.Status
	}{
		{
			name:       "missing video",
			video:      func(f runnerFixture) string { return f.videoPath + ".missing" },
			wantMarker: services.ErrNotFound,
			wantStatus: runstore.StatusRejected,
		},
		{
			name:  "probe failure",
			video: func(f runnerFixture) string { return f.videoPath },
			opts: []RunnerOption{WithProbe(func(context.Context, string) (framesource.Info, error) {
				return framesource.Info{}, services.Wrap(services.ErrExternalTool, "probe", "ffprobe", "exit status 1", nil)
			})},
			wantMarker: services.ErrExternalTool,
			wantStatus: runstore.StatusFailed,
		},
		{
			name:  "decoder failure",
			video: func(f runnerFixture) string { return f.videoPath },
			opts: []RunnerOption{WithSourceOpener(func(context.Context, string, framesource.Info) (frames.Source, func() error, error) {
				return lectureSource().FailAt(3, errors.New("truncated stream")), nil, nil
			})},
			wantMarker: services.ErrExternalTool,
			wantStatus: runstore.StatusFailed,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newRunnerFixture(t)
			_, err := f.runner(tt.opts...).Run(context.Background(), Request{
				VideoPath:      tt.video(f),
				TranscriptPath: f.transcript,
			})
			if !errors.Is(err, tt.wantMarker) {
				t.Fatalf("expected %v, got %v", tt.wantMarker, err)
			}
			run, getErr := f.store.Get(context.Background(), testRunID)
			if getErr != nil || run == nil {
				t.Fatalf("Get run: %v %v", run, getErr)
			}
			if run.Status != tt.wantStatus {
				t.Fatalf("status = %s, want %s", run.Status, tt.wantStatus)
			}
			if run.ErrorMessage == "" {
				t.Fatal("expected error message to be recorded")
			}
		})
	}
}

func TestRunnerRejectsEmptyVideoPath(t *testing.T) {
	f := newRunnerFixture(t)
	_, err := f.runner().Run(context.Background(), Request{VideoPath: "  "})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRunnerWithoutHistory(t *testing.T) {
	f := newRunnerFixture(t)
	out := filepath.Join(t.TempDir(), "custom")
	runner := NewRunner(f.cfg, nil, nil,
		WithIDGenerator(func() string { return testRunID }),
		WithProbe(func(context.Context, string) (framesource.Info, error) {
			return framesource.Info{FPS: 1, Duration: 120}, nil
		}),
		WithSourceOpener(func(context.Context, string, framesource.Info) (frames.Source, func() error, error) {
			return lectureSource(), nil, nil
		}),
		WithClassifier(codeAt{second: 40, priority: 0.5}),
	)
	report, err := runner.Run(context.Background(), Request{VideoPath: f.videoPath, OutputDir: out})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if report.ManifestPath != filepath.Join(out, manifest.FileName) {
		t.Fatalf("manifest path = %q", report.ManifestPath)
	}
	if report.Manifest.Transcript.Words != 0 {
		t.Fatalf("expected empty transcript, got %d words", report.Manifest.Transcript.Words)
	}
	if report.Manifest.Video.Title != "Lecture One" {
		t.Fatalf("title = %q, want the file stem", report.Manifest.Video.Title)
	}
}

func TestOptionsFromConfigRejectsUnknownBaseline(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Analysis.Baseline = "sometimes"
	if _, err := OptionsFromConfig(cfg); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestOptionsFromConfigReleasesUnselectableCandidates(t *testing.T) {
	opts, err := OptionsFromConfig(testsupport.NewConfig(t))
	if err != nil {
		t.Fatalf("OptionsFromConfig: %v", err)
	}
	if opts.Classify.Keep == nil {
		t.Fatal("expected a keep predicate")
	}
	if opts.Classify.Keep(classify.Scored{Priority: 0.1}) {
		t.Fatal("low priority candidate without content reasons should be released")
	}
	if !opts.Classify.Keep(classify.Scored{Priority: 0.8}) {
		t.Fatal("high priority candidate should keep its pixels")
	}
}
