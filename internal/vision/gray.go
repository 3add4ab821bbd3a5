package vision

import (
	"image"
	"image/draw"
	"math"
)

// ToRGBA returns img as *image.RGBA, copying only when needed.
func ToRGBA(img image.Image) *image.RGBA {
	if img == nil {
		return nil
	}
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	bounds := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(out, out.Bounds(), img, bounds.Min, draw.Src)
	return out
}

// Grayscale converts an RGBA image to 8-bit luma.
func Grayscale(img *image.RGBA) *image.Gray {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		src := img.Pix[(y)*img.Stride : (y)*img.Stride+w*4]
		dst := out.Pix[y*out.Stride : y*out.Stride+w]
		for x := 0; x < w; x++ {
			r := float64(src[x*4])
			g := float64(src[x*4+1])
			b := float64(src[x*4+2])
			luma := 0.299*r + 0.587*g + 0.114*b
			dst[x] = uint8(math.Min(255, math.Round(luma)))
		}
	}
	return out
}

// MeanStdDev returns the mean and population standard deviation of the pixels.
func MeanStdDev(gray *image.Gray) (float64, float64) {
	bounds := gray.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	n := float64(w * h)
	if n == 0 {
		return 0, 0
	}
	var sum, sumSq float64
	for y := 0; y < h; y++ {
		row := gray.Pix[y*gray.Stride : y*gray.Stride+w]
		for _, v := range row {
			f := float64(v)
			sum += f
			sumSq += f * f
		}
	}
	mean := sum / n
	variance := sumSq/n - mean*mean
	if variance < 0 {
		variance = 0
	}
	return mean, math.Sqrt(variance)
}

// NonZeroRatio returns the fraction of non-zero pixels, used as edge density
// on a Canny output.
func NonZeroRatio(mask *image.Gray) float64 {
	bounds := mask.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return 0
	}
	count := 0
	for y := 0; y < h; y++ {
		for _, v := range mask.Pix[y*mask.Stride : y*mask.Stride+w] {
			if v != 0 {
				count++
			}
		}
	}
	return float64(count) / float64(w*h)
}
