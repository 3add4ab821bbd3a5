// Package transcript loads narration text from plain text, SRT, or WhisperX
// JSON files and flattens it into a single NFC-normalized string.
package transcript

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"vidscribe/internal/services"
	"vidscribe/internal/textutil"
)

// Format identifies the transcript file layout.
type Format string

const (
	FormatText     Format = "text"
	FormatSRT      Format = "srt"
	FormatWhisperX Format = "whisperx"
)

// Transcript is the flattened narration.
type Transcript struct {
	Text   string `json:"-"`
	Format Format `json:"format"`
	Words  int    `json:"words"`
	Path   string `json:"path,omitempty"`
}

// DetectFormat picks a format from the file extension.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".srt":
		return FormatSRT
	case ".json":
		return FormatWhisperX
	default:
		return FormatText
	}
}

// Load reads path and parses it according to its extension. An empty path
// yields an empty transcript.
func Load(path string) (Transcript, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Transcript{Format: FormatText}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Transcript{}, services.Wrap(services.ErrNotFound, "transcript", "load", path, err)
		}
		return Transcript{}, fmt.Errorf("read transcript: %w", err)
	}
	t, err := Parse(data, DetectFormat(path))
	if err != nil {
		return Transcript{}, services.Wrap(services.ErrValidation, "transcript", "parse", path, err)
	}
	t.Path = path
	return t, nil
}

// Parse flattens data in the given format.
func Parse(data []byte, format Format) (Transcript, error) {
	var text string
	switch format {
	case FormatSRT:
		text = parseSRT(string(data))
	case FormatWhisperX:
		parsed, err := parseWhisperX(data)
		if err != nil {
			return Transcript{}, err
		}
		text = parsed
	default:
		format = FormatText
		text = string(data)
	}
	text = Normalize(text)
	return Transcript{Text: text, Format: format, Words: textutil.WordCount(text)}, nil
}

// Normalize applies NFC, strips a byte order mark, and trims the text.
func Normalize(text string) string {
	text = strings.TrimPrefix(text, "\ufeff")
	return strings.TrimSpace(norm.NFC.String(text))
}

var (
	srtTiming = regexp.MustCompile(`^\d{1,2}:\d{2}:\d{2}[,.]\d{1,3}\s*-->`)
	markupTag = regexp.MustCompile(`</?[a-zA-Z][^>]*>|\{\\[^}]*\}`)
)

func parseSRT(content string) string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	var parts []string
	for _, block := range strings.Split(content, "\n\n") {
		lines := strings.Split(strings.TrimSpace(block), "\n")
		for i, line := range lines {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if i == 0 && isCueNumber(line) && len(lines) > 1 {
				continue
			}
			if srtTiming.MatchString(line) {
				continue
			}
			line = strings.TrimSpace(markupTag.ReplaceAllString(line, ""))
			if line != "" {
				parts = append(parts, line)
			}
		}
	}
	return strings.Join(parts, " ")
}

func isCueNumber(line string) bool {
	_, err := strconv.Atoi(strings.TrimPrefix(line, "\ufeff"))
	return err == nil
}

type whisperXSegment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

type whisperXPayload struct {
	Segments []whisperXSegment `json:"segments"`
}

func parseWhisperX(data []byte) (string, error) {
	var payload whisperXPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return "", fmt.Errorf("parse whisperx json: %w", err)
	}
	parts := make([]string, 0, len(payload.Segments))
	for _, segment := range payload.Segments {
		if text := strings.TrimSpace(segment.Text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " "), nil
}
