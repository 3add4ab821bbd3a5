// Package align projects a transcript onto selected keyframes.
//
// The transcript carries no timing, so narration is assumed to be spoken at a
// uniform word rate across the run. Each keyframe receives the words spoken
// within WindowSeconds on either side of its timestamp.
package align

import (
	"fmt"
	"math"
	"strings"

	"vidscribe/internal/frames"
	"vidscribe/internal/textutil"
)

// DefaultWindowSeconds is the half-width of each narration window.
const DefaultWindowSeconds = 30.0

// DurationSource picks the duration the word rate is computed against.
type DurationSource string

const (
	// DurationLastFrame uses the last selected frame's timestamp.
	DurationLastFrame DurationSource = "last_frame"
	// DurationVideo uses the probed video duration.
	DurationVideo DurationSource = "video"
)

// ParseDurationSource maps a config value onto a DurationSource.
func ParseDurationSource(value string) (DurationSource, error) {
	switch DurationSource(strings.ToLower(strings.TrimSpace(value))) {
	case "", DurationLastFrame:
		return DurationLastFrame, nil
	case DurationVideo:
		return DurationVideo, nil
	default:
		return "", fmt.Errorf("unknown duration source %q", value)
	}
}

// Options configures Align.
type Options struct {
	WindowSeconds float64
	Duration      DurationSource
	// VideoDuration is used when Duration is DurationVideo and it is positive.
	VideoDuration float64
}

// DefaultOptions returns the stock window and duration strategy.
func DefaultOptions() Options {
	return Options{WindowSeconds: DefaultWindowSeconds, Duration: DurationLastFrame}
}

// TotalDuration returns the duration the word rate is projected over.
func (o Options) TotalDuration(selected []frames.SelectedFrame) float64 {
	if o.Duration == DurationVideo && o.VideoDuration > 0 {
		return o.VideoDuration
	}
	if len(selected) == 0 {
		return 0
	}
	return selected[len(selected)-1].Timestamp
}

// Align returns one window per selected frame, in the same order.
func Align(selected []frames.SelectedFrame, transcript string, opts Options) []frames.TranscriptWindow {
	windows := make([]frames.TranscriptWindow, len(selected))
	if len(selected) == 0 {
		return windows
	}
	words := textutil.Words(transcript)
	total := opts.TotalDuration(selected)
	rate := 0.0
	if total > 0 {
		rate = float64(len(words)) / total
	}
	for i, frame := range selected {
		windows[i] = Window(words, frame.Timestamp, total, rate, opts.WindowSeconds)
	}
	return windows
}

// Window cuts the words spoken within window seconds of t.
func Window(words []string, t, total, rate, window float64) frames.TranscriptWindow {
	start := math.Max(0, t-window)
	end := math.Min(total, t+window)
	startIdx := wordIndex(start, rate, len(words))
	endIdx := wordIndex(end, rate, len(words))
	if endIdx < startIdx {
		endIdx = startIdx
	}
	return frames.TranscriptWindow{
		Text:      strings.Join(words[startIdx:endIdx], " "),
		Start:     start,
		End:       end,
		WordCount: endIdx - startIdx,
	}
}

func wordIndex(seconds, rate float64, total int) int {
	idx := math.Floor(seconds * rate)
	switch {
	case math.IsNaN(idx), idx < 0:
		return 0
	case idx > float64(total):
		return total
	default:
		return int(idx)
	}
}
