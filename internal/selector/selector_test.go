package selector_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"vidscribe/internal/classify"
	"vidscribe/internal/frames"
	"vidscribe/internal/framestore"
	"vidscribe/internal/selector"
	"vidscribe/internal/services"
	"vidscribe/internal/testsupport"
)

type memorySink struct {
	names []string
	data  map[string][]byte
	err   error
}

func (m *memorySink) Store(_ context.Context, name string, data []byte) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	if m.data == nil {
		m.data = make(map[string][]byte)
	}
	m.names = append(m.names, name)
	m.data[name] = data
	return "mem://" + name, nil
}

func scored(ts, priority float64, reasons ...string) classify.Scored {
	img := testsupport.SolidImage(16, 9, color.RGBA{R: 40, G: 80, B: 120, A: 255})
	return classify.Scored{
		Candidate: frames.SceneCandidate{
			Frame:            frames.Frame{Timestamp: ts, Index: uint64(ts * 2), Image: img},
			SceneChangeScore: 0.6,
		},
		Classification: frames.ClassificationResult{Reasons: reasons},
		Priority:       priority,
	}
}

func TestEligible(t *testing.T) {
	tests := []struct {
		name string
		in   classify.Scored
		want bool
	}{
		{"priority at threshold", scored(1, 0.4), true},
		{"low priority no reasons", scored(1, 0.39), false},
		{"low priority two reasons", scored(1, 0.3, "dark_background", "text_pattern"), true},
		{"one reason", scored(1, 0.3, "editor_window"), false},
		{"ocr tag not counted", scored(1, 0.3, "dark_background", "ocr_unavailable"), false},
		{"error tag not counted", scored(1, 0.3, "3_shapes", "code_presence_error"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := selector.Eligible(tt.in); got != tt.want {
				t.Fatalf("Eligible = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestImageName(t *testing.T) {
	tests := map[float64]string{
		0:       "frame_000000s",
		40:      "frame_000040s",
		40.99:   "frame_000040s",
		3725.5:  "frame_003725s",
		1234567: "frame_1234567s",
	}
	for ts, want := range tests {
		if got := selector.ImageName(ts); got != want {
			t.Errorf("ImageName(%v) = %q, want %q", ts, got, want)
		}
	}
}

func TestSelectPersistsAndReleases(t *testing.T) {
	sink := &memorySink{}
	input := []classify.Scored{
		scored(0, 0.5, "dark_background"),
		scored(10, 0.1),
		scored(40, 0.8, "text_pattern", "dark_background"),
		scored(70, 0.2, "4_shapes", "organized_content"),
	}
	got, err := selector.New(sink, nil).Select(context.Background(), input)
	if err != nil {
		t.Fatalf("Select returned error: %v", err)
	}
	wantNames := []string{"frame_000000s", "frame_000040s", "frame_000070s"}
	if !reflect.DeepEqual(sink.names, wantNames) {
		t.Fatalf("sink names = %v, want %v", sink.names, wantNames)
	}
	if len(got) != 3 {
		t.Fatalf("selected %d frames, want 3", len(got))
	}
	wantReasons := []string{"dark_background", "scene_change", "text_pattern"}
	if !reflect.DeepEqual(got[1].Reasons, wantReasons) {
		t.Fatalf("reasons = %v, want %v", got[1].Reasons, wantReasons)
	}
	if got[1].ImagePath != "mem://frame_000040s" || got[1].Priority != 0.8 {
		t.Fatalf("unexpected selected frame %+v", got[1])
	}
	for _, frame := range got {
		if frame.Image != nil {
			t.Fatalf("selected frame at %v still holds pixels", frame.Timestamp)
		}
	}
	for _, item := range input {
		if item.Candidate.Image != nil {
			t.Fatalf("candidate at %v still holds pixels", item.Candidate.Timestamp)
		}
	}
	img, err := jpeg.Decode(bytes.NewReader(sink.data["frame_000040s"]))
	if err != nil {
		t.Fatalf("stored bytes are not jpeg: %v", err)
	}
	if img.Bounds().Dx() != 16 {
		t.Fatalf("decoded width = %d", img.Bounds().Dx())
	}
}

func TestSelectSameSecondKeepsEveryImage(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "frames")
	sink, err := framestore.Open(dir, nil)
	if err != nil {
		t.Fatalf("framestore.Open: %v", err)
	}
	t.Cleanup(func() { _ = sink.Close() })

	input := []classify.Scored{
		scored(10.0, 0.9),
		scored(10.5, 0.9),
		scored(10.75, 0.9),
		scored(11.0, 0.9),
	}
	got, err := selector.New(sink, nil).Select(context.Background(), input)
	if err != nil {
		t.Fatalf("Select returned error: %v", err)
	}
	wantNames := []string{"frame_000010s", "frame_000010s_1", "frame_000010s_2", "frame_000011s"}
	if len(got) != len(wantNames) {
		t.Fatalf("selected %d frames, want %d", len(got), len(wantNames))
	}
	seen := make(map[string]bool)
	for i, frame := range got {
		if frame.ImageName != wantNames[i] {
			t.Fatalf("frame %d name = %q, want %q", i, frame.ImageName, wantNames[i])
		}
		if seen[frame.ImagePath] {
			t.Fatalf("image path %q reused", frame.ImagePath)
		}
		seen[frame.ImagePath] = true
		if _, err := os.Stat(frame.ImagePath); err != nil {
			t.Fatalf("image for %v missing: %v", frame.Timestamp, err)
		}
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read frames dir: %v", err)
	}
	jpegs := 0
	for _, entry := range entries {
		if filepath.Ext(entry.Name()) == ".jpg" {
			jpegs++
		}
	}
	if jpegs != len(got) {
		t.Fatalf("%d images on disk for %d selected frames", jpegs, len(got))
	}
}

func TestSelectDropsNonIncreasingTimestamps(t *testing.T) {
	input := []classify.Scored{
		scored(5, 0.9),
		scored(5, 0.9),
		scored(4, 0.9),
		scored(6, 0.9),
	}
	got, err := selector.New(&memorySink{}, nil).Select(context.Background(), input)
	if err != nil {
		t.Fatalf("Select returned error: %v", err)
	}
	if len(got) != 2 || got[0].Timestamp != 5 || got[1].Timestamp != 6 {
		t.Fatalf("unexpected selection %+v", got)
	}
}

func TestSelectSinkFailureIsFatal(t *testing.T) {
	sink := &memorySink{err: errors.New("disk full")}
	got, err := selector.New(sink, nil).Select(context.Background(), []classify.Scored{scored(1, 0.9)})
	if err == nil {
		t.Fatal("expected sink failure")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected ErrExternalTool marker, got %v", err)
	}
	if got != nil {
		t.Fatal("expected no partial selection")
	}
}

func TestSelectCustomEncoder(t *testing.T) {
	sink := &memorySink{}
	encode := selector.Encoder(func(_ image.Image) ([]byte, error) { return []byte("raw"), nil })
	_, err := selector.New(sink, nil, selector.WithEncoder(encode)).Select(context.Background(), []classify.Scored{scored(2, 0.9)})
	if err != nil {
		t.Fatalf("Select returned error: %v", err)
	}
	if string(sink.data["frame_000002s"]) != "raw" {
		t.Fatalf("custom encoder not used: %q", sink.data["frame_000002s"])
	}
}

func TestSelectEmpty(t *testing.T) {
	got, err := selector.New(&memorySink{}, nil).Select(context.Background(), nil)
	if err != nil || len(got) != 0 {
		t.Fatalf("expected empty result, got %v %v", got, err)
	}
}
