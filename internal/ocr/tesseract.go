package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os/exec"
	"strings"

	"github.com/nfnt/resize"

	"vidscribe/internal/services"
)

// MaxInputWidth caps the width of images handed to tesseract.
const MaxInputWidth = 1920

// commandRunner runs name with args, feeding stdin and returning stdout.
type commandRunner func(ctx context.Context, stdin []byte, name string, args ...string) ([]byte, error)

// Tesseract recognizes text with the tesseract CLI.
type Tesseract struct {
	binary   string
	language string
	run      commandRunner
}

// NewTesseract returns a recognizer that runs binary with the given language.
func NewTesseract(binary, language string) *Tesseract {
	if strings.TrimSpace(binary) == "" {
		binary = "tesseract"
	}
	if strings.TrimSpace(language) == "" {
		language = "eng"
	}
	return &Tesseract{binary: binary, language: language, run: runCommand}
}

// WithCommandRunner sets a custom command runner (for testing).
func (t *Tesseract) WithCommandRunner(runner func(ctx context.Context, stdin []byte, name string, args ...string) ([]byte, error)) {
	t.run = runner
}

// Enabled returns true.
func (t *Tesseract) Enabled() bool { return true }

// Recognize encodes img as PNG and pipes it through tesseract.
func (t *Tesseract) Recognize(ctx context.Context, img image.Image) (string, error) {
	if img == nil {
		return "", services.Wrap(services.ErrValidation, "ocr", "recognize", "nil image", nil)
	}
	if img.Bounds().Dx() > MaxInputWidth {
		img = resize.Resize(MaxInputWidth, 0, img, resize.Bilinear)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", services.Wrap(services.ErrValidation, "ocr", "encode png", "", err)
	}
	out, err := t.run(ctx, buf.Bytes(), t.binary, "stdin", "stdout", "-l", t.language, "--psm", "3")
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, "ocr", "tesseract", "", err)
	}
	return strings.TrimSpace(string(out)), nil
}

func runCommand(ctx context.Context, stdin []byte, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	cmd.Stdin = bytes.NewReader(stdin)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}
