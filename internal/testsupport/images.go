package testsupport

import (
	"image"
	"image/color"

	"vidscribe/internal/frames"
)

// Common synthetic colours. Each saturated colour lands in its own hue bin.
var (
	Red     = color.RGBA{R: 230, G: 10, B: 10, A: 255}
	Green   = color.RGBA{R: 10, G: 230, B: 10, A: 255}
	Blue    = color.RGBA{R: 10, G: 10, B: 230, A: 255}
	Yellow  = color.RGBA{R: 230, G: 230, B: 10, A: 255}
	Magenta = color.RGBA{R: 230, G: 10, B: 230, A: 255}
	Cyan    = color.RGBA{R: 10, G: 230, B: 230, A: 255}
)

// SolidImage returns a w x h image filled with c.
func SolidImage(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	FillRect(img, img.Bounds(), c)
	return img
}

// FillRect paints r (clipped to the image) with c.
func FillRect(img *image.RGBA, r image.Rectangle, c color.RGBA) {
	r = r.Intersect(img.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetRGBA(x, y, c)
		}
	}
}

// StrokeRect draws the outline of r with the given stroke width.
func StrokeRect(img *image.RGBA, r image.Rectangle, width int, c color.RGBA) {
	FillRect(img, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+width), c)
	FillRect(img, image.Rect(r.Min.X, r.Max.Y-width, r.Max.X, r.Max.Y), c)
	FillRect(img, image.Rect(r.Min.X, r.Min.Y, r.Min.X+width, r.Max.Y), c)
	FillRect(img, image.Rect(r.Max.X-width, r.Min.Y, r.Max.X, r.Max.Y), c)
}

// CodeScreen renders a dark editor window with rows of text-like dashes.
func CodeScreen(w, h int) *image.RGBA {
	img := SolidImage(w, h, color.RGBA{R: 20, G: 20, B: 24, A: 255})
	panel := image.Rect(w/16, h/12, w-w/16, h-h/12)
	StrokeRect(img, panel, 2, color.RGBA{R: 120, G: 120, B: 130, A: 255})
	text := color.RGBA{R: 200, G: 200, B: 190, A: 255}
	lengths := []int{24, 40, 16, 56, 32, 20, 48}
	row := 0
	for y := panel.Min.Y + 12; y+4 < panel.Max.Y-8; y += 14 {
		x := panel.Min.X + 12 + (row%3)*16
		for i := row; x < panel.Max.X-80; i++ {
			length := lengths[i%len(lengths)]
			FillRect(img, image.Rect(x, y, x+length, y+4), text)
			x += length + 10
		}
		row++
	}
	return img
}

// Diagram renders boxes joined by connectors on a light background.
func Diagram(w, h int) *image.RGBA {
	img := SolidImage(w, h, color.RGBA{R: 245, G: 245, B: 245, A: 255})
	ink := color.RGBA{R: 30, G: 30, B: 30, A: 255}
	boxW, boxH := w/5, h/4
	var boxes []image.Rectangle
	for row := 0; row < 2; row++ {
		for col := 0; col < 3; col++ {
			x := w/20 + col*(boxW+w/8)
			y := h/8 + row*(boxH+h/4)
			boxes = append(boxes, image.Rect(x, y, x+boxW, y+boxH))
		}
	}
	for _, box := range boxes {
		StrokeRect(img, box, 3, ink)
	}
	for i := 0; i+1 < len(boxes); i++ {
		a, b := boxes[i], boxes[i+1]
		if a.Min.Y != b.Min.Y {
			continue
		}
		midY := (a.Min.Y + a.Max.Y) / 2
		FillRect(img, image.Rect(a.Max.X+8, midY-1, b.Min.X-8, midY+2), ink)
	}
	return img
}

// ColorFrames builds one frame per timestamp at the given fps, painting each
// frame with the colour returned by colorAt.
func ColorFrames(fps float64, timestamps []float64, colorAt func(t float64) color.RGBA) []frames.Frame {
	out := make([]frames.Frame, 0, len(timestamps))
	for _, ts := range timestamps {
		out = append(out, frames.Frame{
			Timestamp: ts,
			Index:     uint64(ts*fps + 0.5),
			Image:     SolidImage(32, 18, colorAt(ts)),
		})
	}
	return out
}

// Seconds returns timestamps 0, step, 2*step, ... strictly below end.
func Seconds(end, step float64) []float64 {
	var out []float64
	for i := 0; ; i++ {
		ts := float64(i) * step
		if ts >= end {
			return out
		}
		out = append(out, ts)
	}
}
