package frames

import (
	"context"
	"fmt"
	"io"
)

// Source is an ordered stream of decoded frames. Next returns io.EOF once the
// stream is exhausted; any other error is a fatal read failure.
type Source interface {
	Next(ctx context.Context) (Frame, error)
	FPS() float64
}

// SliceSource replays an in-memory frame list. It is not restartable.
type SliceSource struct {
	frames []Frame
	fps    float64
	pos    int
	err    error
	failAt int
}

// NewSliceSource returns a source over frames at the given native fps.
func NewSliceSource(fps float64, frames []Frame) *SliceSource {
	return &SliceSource{frames: frames, fps: fps, failAt: -1}
}

// FailAt makes the source return err instead of the frame at position pos.
func (s *SliceSource) FailAt(pos int, err error) *SliceSource {
	s.failAt = pos
	s.err = err
	return s
}

// FPS returns the native frame rate.
func (s *SliceSource) FPS() float64 {
	return s.fps
}

// Next returns the next frame, handing ownership to the caller.
func (s *SliceSource) Next(ctx context.Context) (Frame, error) {
	if err := ctx.Err(); err != nil {
		return Frame{}, err
	}
	if s.pos == s.failAt {
		if s.err == nil {
			return Frame{}, fmt.Errorf("slice source: read failure at %d", s.pos)
		}
		return Frame{}, s.err
	}
	if s.pos >= len(s.frames) {
		return Frame{}, io.EOF
	}
	frame := s.frames[s.pos]
	s.frames[s.pos] = Frame{}
	s.pos++
	return frame, nil
}
