// Package framesource decodes video files into frames.Source streams by
// reading raw RGBA frames from an ffmpeg child process.
package framesource

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"vidscribe/internal/frames"
	"vidscribe/internal/logging"
	"vidscribe/internal/media/ffprobe"
	"vidscribe/internal/services"
)

// Info is the probed geometry and timing of a video.
type Info struct {
	Width    int
	Height   int
	FPS      float64
	Duration float64
	Title    string
	Author   string
}

// Probe inspects path with ffprobe.
func Probe(ctx context.Context, binary, path string) (Info, error) {
	result, err := ffprobe.Inspect(ctx, binary, path)
	if err != nil {
		return Info{}, services.Wrap(services.ErrExternalTool, "framesource", "probe", "ffprobe failed", err)
	}
	return InfoFrom(result)
}

// InfoFrom extracts Info from a parsed probe result.
func InfoFrom(result ffprobe.Result) (Info, error) {
	stream, ok := result.VideoStream()
	if !ok {
		return Info{}, services.Wrap(services.ErrValidation, "framesource", "probe", "no video stream", nil)
	}
	info := Info{
		Width:  stream.Width,
		Height: stream.Height,
		FPS:    stream.FrameRate(),
		Title:  result.Tag("title"),
		Author: result.Tag("artist"),
	}
	if info.Author == "" {
		info.Author = result.Tag("author")
	}
	if d := result.DurationSeconds(); !math.IsNaN(d) && d > 0 {
		info.Duration = d
	}
	if info.Width <= 0 || info.Height <= 0 || info.FPS <= 0 {
		return Info{}, services.Wrap(services.ErrValidation, "framesource", "probe",
			fmt.Sprintf("unusable video stream %dx%d at %.3f fps", info.Width, info.Height, info.FPS), nil)
	}
	return info, nil
}

// Options configures an FFmpeg source.
type Options struct {
	Binary string
	// SampleFPS is the decode rate; <= 0 or above the native rate decodes
	// every frame.
	SampleFPS float64
}

// FFmpeg streams frames decoded by ffmpeg. Frame indices are native frame
// numbers so scene spacing is measured against the real frame rate.
type FFmpeg struct {
	info       Info
	sampleFPS  float64
	frameBytes int
	cmd        *exec.Cmd
	stdout     io.ReadCloser
	reader     *bufio.Reader
	stderr     bytes.Buffer
	read       int
	done       bool
	closeOnce  sync.Once
	logger     *slog.Logger
}

// Open starts ffmpeg decoding path. The caller must Close the source.
func Open(ctx context.Context, path string, info Info, opts Options, logger *slog.Logger) (*FFmpeg, error) {
	if info.Width <= 0 || info.Height <= 0 || info.FPS <= 0 {
		return nil, services.Wrap(services.ErrValidation, "framesource", "open", "video geometry not probed", nil)
	}
	binary := strings.TrimSpace(opts.Binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	sample := opts.SampleFPS
	if sample <= 0 || sample > info.FPS {
		sample = info.FPS
	}
	args := []string{
		"-v", "error", "-nostdin",
		"-i", path,
		"-an", "-sn",
		"-vf", "fps=" + strconv.FormatFloat(sample, 'f', -1, 64),
		"-f", "rawvideo", "-pix_fmt", "rgba",
		"-",
	}
	src := &FFmpeg{
		info:       info,
		sampleFPS:  sample,
		frameBytes: info.Width * info.Height * 4,
		logger:     logging.NewComponentLogger(logger, "framesource"),
	}
	src.cmd = exec.CommandContext(ctx, binary, args...)
	src.cmd.Stderr = &src.stderr
	stdout, err := src.cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg stdout: %w", err)
	}
	src.stdout = stdout
	src.reader = bufio.NewReaderSize(stdout, src.frameBytes)
	if err := src.cmd.Start(); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "framesource", "start ffmpeg", binary, err)
	}
	src.logger.Debug("ffmpeg started",
		logging.String("path", path),
		logging.Float64("sample_fps", sample),
		logging.Float64("native_fps", info.FPS),
		logging.Int("width", info.Width),
		logging.Int("height", info.Height),
	)
	return src, nil
}

// FPS returns the native frame rate.
func (f *FFmpeg) FPS() float64 {
	return f.info.FPS
}

// Info returns the probed video info.
func (f *FFmpeg) Info() Info {
	return f.info
}

// Next reads the next decoded frame.
func (f *FFmpeg) Next(ctx context.Context) (frames.Frame, error) {
	if err := ctx.Err(); err != nil {
		return frames.Frame{}, err
	}
	if f.done {
		return frames.Frame{}, io.EOF
	}
	img := image.NewRGBA(image.Rect(0, 0, f.info.Width, f.info.Height))
	if _, err := io.ReadFull(f.reader, img.Pix); err != nil {
		f.done = true
		waitErr := f.wait()
		if errors.Is(err, io.EOF) && waitErr == nil {
			return frames.Frame{}, io.EOF
		}
		if waitErr != nil {
			err = waitErr
		}
		return frames.Frame{}, services.Wrap(services.ErrExternalTool, "framesource", "read frame",
			f.stderrDetail(fmt.Sprintf("frame %d", f.read)), err)
	}
	timestamp := float64(f.read) / f.sampleFPS
	f.read++
	return frames.Frame{
		Timestamp: timestamp,
		Index:     uint64(math.Round(timestamp * f.info.FPS)),
		Image:     img,
	}, nil
}

func (f *FFmpeg) stderrDetail(prefix string) string {
	detail := strings.TrimSpace(f.stderr.String())
	if detail == "" {
		return prefix
	}
	return prefix + ": " + detail
}

func (f *FFmpeg) wait() error {
	var err error
	f.closeOnce.Do(func() {
		err = f.cmd.Wait()
	})
	return err
}

// Close stops ffmpeg if it is still running.
func (f *FFmpeg) Close() error {
	if f == nil || f.cmd == nil {
		return nil
	}
	if !f.done && f.cmd.Process != nil {
		_ = f.cmd.Process.Kill()
	}
	f.done = true
	_ = f.wait()
	return nil
}
