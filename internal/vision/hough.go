package vision

import (
	"image"
	"math"
)

const houghAngles = 180

// HoughLineCount runs a standard Hough transform (1px rho, 1 degree theta) over
// the non-zero pixels of mask and returns the number of accumulator peaks with
// more than threshold votes.
func HoughLineCount(mask *image.Gray, threshold int) int {
	bounds := mask.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return 0
	}
	numRho := 2*(w+h) + 1
	offset := (numRho - 1) / 2
	cosT := make([]float64, houghAngles)
	sinT := make([]float64, houghAngles)
	for a := 0; a < houghAngles; a++ {
		theta := float64(a) * math.Pi / houghAngles
		cosT[a] = math.Cos(theta)
		sinT[a] = math.Sin(theta)
	}

	// padded by one on every side so peak checks need no bounds tests
	stride := numRho + 2
	accum := make([]int32, (houghAngles+2)*stride)
	for y := 0; y < h; y++ {
		row := mask.Pix[y*mask.Stride : y*mask.Stride+w]
		for x, v := range row {
			if v == 0 {
				continue
			}
			fx, fy := float64(x), float64(y)
			for a := 0; a < houghAngles; a++ {
				r := int(math.Round(fx*cosT[a]+fy*sinT[a])) + offset
				accum[(a+1)*stride+r+1]++
			}
		}
	}

	count := 0
	t := int32(threshold)
	for a := 0; a < houghAngles; a++ {
		for r := 0; r < numRho; r++ {
			base := (a+1)*stride + r + 1
			v := accum[base]
			if v > t &&
				v > accum[base-1] && v >= accum[base+1] &&
				v > accum[base-stride] && v >= accum[base+stride] {
				count++
			}
		}
	}
	return count
}
