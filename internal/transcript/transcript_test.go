package transcript_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"vidscribe/internal/services"
	"vidscribe/internal/transcript"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadFormats(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		format  transcript.Format
		want    string
	}{
		{
			name:    "plain text",
			file:    "talk.txt",
			content: "\ufeff  Welcome to the talk.\nToday we cover queues.  \n",
			format:  transcript.FormatText,
			want:    "Welcome to the talk.\nToday we cover queues.",
		},
		{
			name: "srt",
			file: "talk.srt",
			content: "1\r\n00:00:01,000 --> 00:00:03,500\r\nWelcome to the <i>talk</i>.\r\n\r\n" +
				"2\r\n00:00:04,000 --> 00:00:06,000\r\nToday we cover\r\nqueues.\r\n\r\n" +
				"3\n00:00:07.000 --> 00:00:08.000\n{\\an8}42\n",
			format: transcript.FormatSRT,
			want:   "Welcome to the talk. Today we cover queues. 42",
		},
		{
			name:    "whisperx",
			file:    "talk.json",
			content: `{"segments":[{"text":" Welcome to the talk.","start":0,"end":2},{"text":"  ","start":2,"end":3},{"text":"Today we cover queues.","start":3,"end":5}]}`,
			format:  transcript.FormatWhisperX,
			want:    "Welcome to the talk. Today we cover queues.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := transcript.Load(writeFile(t, tt.file, tt.content))
			if err != nil {
				t.Fatalf("Load returned error: %v", err)
			}
			if got.Format != tt.format {
				t.Fatalf("format = %q, want %q", got.Format, tt.format)
			}
			if got.Text != tt.want {
				t.Fatalf("text = %q, want %q", got.Text, tt.want)
			}
		})
	}
}

func TestLoadCountsWords(t *testing.T) {
	got, err := transcript.Load(writeFile(t, "n.txt", "one two  three\nfour"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if got.Words != 4 {
		t.Fatalf("words = %d, want 4", got.Words)
	}
}

func TestNormalizeComposes(t *testing.T) {
	decomposed := "cafe\u0301"
	if got := transcript.Normalize(decomposed); got != "caf\u00e9" {
		t.Fatalf("Normalize = %q", got)
	}
}

func TestLoadEmptyPath(t *testing.T) {
	got, err := transcript.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if got.Text != "" || got.Words != 0 {
		t.Fatalf("expected empty transcript, got %+v", got)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := transcript.Load(filepath.Join(t.TempDir(), "missing.txt")); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := transcript.Load(writeFile(t, "bad.json", "{not json")); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
