package ocr

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"golang.org/x/sync/semaphore"

	"vidscribe/internal/services"
)

// Recognizer extracts text from an image.
type Recognizer interface {
	Recognize(ctx context.Context, img image.Image) (string, error)
	// Enabled reports whether the recognizer can produce text at all.
	Enabled() bool
}

// ErrDisabled is returned by Disabled.Recognize.
var ErrDisabled = errors.New("ocr disabled")

// Disabled is the null Recognizer.
type Disabled struct{}

// Recognize always fails with ErrDisabled.
func (Disabled) Recognize(context.Context, image.Image) (string, error) {
	return "", ErrDisabled
}

// Enabled returns false.
func (Disabled) Enabled() bool { return false }

// Limited bounds concurrent Recognize calls and gives each call a deadline.
type Limited struct {
	next    Recognizer
	sem     *semaphore.Weighted
	timeout time.Duration
}

// Limit wraps r. maxConcurrent < 1 is treated as 1; timeout <= 0 disables the deadline.
func Limit(r Recognizer, maxConcurrent int, timeout time.Duration) *Limited {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Limited{next: r, sem: semaphore.NewWeighted(int64(maxConcurrent)), timeout: timeout}
}

// Enabled delegates to the wrapped recognizer.
func (l *Limited) Enabled() bool {
	return l.next.Enabled()
}

// Recognize waits for a slot, then calls the wrapped recognizer under the
// per-call timeout. Waiting for a slot counts against the caller's context
// only.
func (l *Limited) Recognize(ctx context.Context, img image.Image) (string, error) {
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer l.sem.Release(1)

	callCtx := ctx
	if l.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}
	text, err := l.next.Recognize(callCtx, img)
	if err != nil && errors.Is(callCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		return "", services.Wrap(services.ErrTimeout, "ocr", "recognize", fmt.Sprintf("exceeded %s", l.timeout), err)
	}
	return text, err
}

// New picks the recognizer for the given settings: Disabled when OCR is off,
// otherwise a limited Tesseract.
func New(enabled bool, binary, language string, maxConcurrent int, timeout time.Duration) Recognizer {
	if !enabled {
		return Disabled{}
	}
	return Limit(NewTesseract(binary, language), maxConcurrent, timeout)
}
