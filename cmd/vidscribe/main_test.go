package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"vidscribe/internal/classify"
	"vidscribe/internal/frames"
	"vidscribe/internal/framesource"
	"vidscribe/internal/pipeline"
	"vidscribe/internal/preflight"
	"vidscribe/internal/runstore"
	"vidscribe/internal/testsupport"
)

const cliRunID = "feedc0de-0000-4000-8000-000000000001"

type cliTestEnv struct {
	configPath string
	baseDir    string
	videoPath  string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()
	base := t.TempDir()
	configPath := filepath.Join(base, "config.toml")
	content := fmt.Sprintf(`[paths]
output_dir = %q
log_dir = %q
state_dir = %q

[analysis]
workers = 1

[logging]
level = "error"
`, filepath.Join(base, "output"), filepath.Join(base, "logs"), filepath.Join(base, "state"))
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	video := filepath.Join(base, "lecture.mp4")
	if err := os.WriteFile(video, []byte("stub"), 0o644); err != nil {
		t.Fatalf("write video: %v", err)
	}
	return &cliTestEnv{configPath: configPath, baseDir: base, videoPath: video}
}

// everyCandidate keeps every scene candidate at priority 0.5.
type everyCandidate struct{}

func (everyCandidate) ClassifyAll(_ context.Context, candidates []frames.SceneCandidate) ([]classify.Scored, error) {
	out := make([]classify.Scored, len(candidates))
	for i, c := range candidates {
		out[i] = classify.Scored{Candidate: c, Classification: frames.ClassificationResult{Reasons: []string{}}, Priority: 0.5}
	}
	return out, nil
}

// lectureFrames returns four scenes starting at 0, 10, 20, and 30 seconds.
func lectureFrames() []frames.Frame {
	palette := []color.RGBA{testsupport.Red, testsupport.Green, testsupport.Blue, testsupport.Yellow}
	var out []frames.Frame
	for i, c := range palette {
		out = append(out, frames.Frame{
			Timestamp: float64(i * 10),
			Index:     uint64(i * 10),
			Image:     testsupport.SolidImage(32, 18, c),
		})
	}
	return out
}

func stubRunnerOptions() []pipeline.RunnerOption {
	return []pipeline.RunnerOption{
		pipeline.WithIDGenerator(func() string { return cliRunID }),
		pipeline.WithProbe(func(context.Context, string) (framesource.Info, error) {
			return framesource.Info{Width: 32, Height: 18, FPS: 1, Duration: 60, Title: "Lecture"}, nil
		}),
		pipeline.WithSourceOpener(func(context.Context, string, framesource.Info) (frames.Source, func() error, error) {
			return frames.NewSliceSource(1, lectureFrames()), nil, nil
		}),
		pipeline.WithClassifier(everyCandidate{}),
	}
}

func runCLI(t *testing.T, env *cliTestEnv, args ...string) (string, error) {
	t.Helper()
	var configFlag, logLevelFlag string
	ctx := newCommandContext(&configFlag, &logLevelFlag)
	ctx.runnerOptions = stubRunnerOptions()
	cmd := buildRootCommand(ctx)
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", env.configPath}, args...))
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q, got:\n%s", needle, haystack)
	}
}

func TestCLIAnalyzeAndRuns(t *testing.T) {
	env := setupCLITestEnv(t)

	out, err := runCLI(t, env, "analyze", env.videoPath)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	requireContains(t, out, "Run:        "+cliRunID)
	requireContains(t, out, "Keyframes:  4 of 4 candidates")
	requireContains(t, out, "frame_000030s")

	manifestPath := filepath.Join(env.baseDir, "output", "lecture-feedc0de", "manifest.json")
	if _, err := os.Stat(manifestPath); err != nil {
		t.Fatalf("expected manifest at %s: %v", manifestPath, err)
	}

	out, err = runCLI(t, env, "runs", "list")
	if err != nil {
		t.Fatalf("runs list: %v", err)
	}
	requireContains(t, out, "feedc0de")
	requireContains(t, out, "lecture.mp4")
	requireContains(t, out, "completed")

	out, err = runCLI(t, env, "runs", "list", "--json")
	if err != nil {
		t.Fatalf("runs list --json: %v", err)
	}
	var runs []runstore.Run
	if err := json.Unmarshal([]byte(out), &runs); err != nil {
		t.Fatalf("decode runs: %v\n%s", err, out)
	}
	if len(runs) != 1 || runs[0].Selected != 4 {
		t.Fatalf("unexpected runs %+v", runs)
	}

	out, err = runCLI(t, env, "runs", "show", "feed")
	if err != nil {
		t.Fatalf("runs show: %v", err)
	}
	requireContains(t, out, "Status:      completed")
	requireContains(t, out, "Manifest:    "+manifestPath)

	out, err = runCLI(t, env, "runs", "status")
	if err != nil {
		t.Fatalf("runs status: %v", err)
	}
	requireContains(t, out, "completed")
}

func TestCLIAnalyzeJSON(t *testing.T) {
	env := setupCLITestEnv(t)
	out, err := runCLI(t, env, "analyze", env.videoPath, "--json", "--out", filepath.Join(env.baseDir, "custom"))
	if err != nil {
		t.Fatalf("analyze --json: %v", err)
	}
	var payload struct {
		RunID  string `json:"run_id"`
		Frames []struct {
			ImageName string `json:"image_name"`
		} `json:"frames"`
	}
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode manifest: %v\n%s", err, out)
	}
	if payload.RunID != cliRunID || len(payload.Frames) != 4 {
		t.Fatalf("unexpected manifest %+v", payload)
	}
	if _, err := os.Stat(filepath.Join(env.baseDir, "custom", "manifest.json")); err != nil {
		t.Fatalf("expected manifest in custom dir: %v", err)
	}
}

func TestCLIAnalyzeMissingVideo(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, err := runCLI(t, env, "analyze", filepath.Join(env.baseDir, "missing.mp4")); err == nil {
		t.Fatal("expected error for missing video")
	}
	out, err := runCLI(t, env, "runs", "list", "--status", "rejected")
	if err != nil {
		t.Fatalf("runs list: %v", err)
	}
	requireContains(t, out, "rejected")
}

func TestCLIRunsErrors(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, err := runCLI(t, env, "runs", "list", "--status", "bogus"); err == nil {
		t.Fatal("expected error for unknown status")
	}
	if _, err := runCLI(t, env, "runs", "show", "nope"); err == nil {
		t.Fatal("expected error for unknown run")
	}
	out, err := runCLI(t, env, "runs", "list")
	if err != nil {
		t.Fatalf("runs list: %v", err)
	}
	requireContains(t, out, "No runs recorded")
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, err := runCLI(t, env, "config", "validate")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, filepath.Join(env.baseDir, "state", "runs.db"))

	target := filepath.Join(t.TempDir(), "config.toml")
	out, err = runCLI(t, env, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}
	if _, err := runCLI(t, env, "config", "init", "--path", target); err == nil {
		t.Fatal("expected error when config already exists")
	}
}

func TestFormatSeconds(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "00:00"},
		{65.9, "01:05"},
		{3725, "1:02:05"},
		{-3, "00:00"},
	}
	for _, tt := range tests {
		if got := formatSeconds(tt.in); got != tt.want {
			t.Fatalf("formatSeconds(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCheckCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.NewConfig(t, testsupport.WithStubbedBinaries("ffmpeg", "ffprobe"))

	out, err := runCLI(t, env, "check")
	if err != nil {
		t.Fatalf("check: %v\n%s", err, out)
	}
	requireContains(t, out, "FFmpeg")
	requireContains(t, out, "Output directory")

	rows := buildCheckRows([]preflight.Result{
		{Name: "a", Passed: true},
		{Name: "b", Optional: true},
		{Name: "c"},
	})
	if rows[0][1] != "ok" || rows[1][1] != "skipped" || rows[2][1] != "FAILED" {
		t.Fatalf("unexpected rows %v", rows)
	}
}
