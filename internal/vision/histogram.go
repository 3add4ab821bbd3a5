package vision

import (
	"image"
	"math"
)

const (
	// HueBins and SaturationBins match the scene detector's 50x60 layout.
	HueBins        = 50
	SaturationBins = 60
)

// Histogram is a normalized 2D hue/saturation histogram stored row-major by hue.
type Histogram struct {
	hueBins int
	satBins int
	bins    []float64
}

// Len returns the number of bins.
func (h Histogram) Len() int {
	return len(h.bins)
}

// IsZero reports whether the histogram was never populated.
func (h Histogram) IsZero() bool {
	return len(h.bins) == 0
}

// Bin returns the value at (hue, sat).
func (h Histogram) Bin(hue, sat int) float64 {
	return h.bins[hue*h.satBins+sat]
}

// HSVHistogram computes an L2-normalized hue/saturation histogram over the
// full image.
func HSVHistogram(img *image.RGBA, hueBins, satBins int) Histogram {
	hist := Histogram{hueBins: hueBins, satBins: satBins, bins: make([]float64, hueBins*satBins)}
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+w*4]
		for x := 0; x < w; x++ {
			hue, sat := hueSat(row[x*4], row[x*4+1], row[x*4+2])
			hi := int(hue) * hueBins / 180
			si := int(sat) * satBins / 256
			if hi >= hueBins {
				hi = hueBins - 1
			}
			if si >= satBins {
				si = satBins - 1
			}
			hist.bins[hi*satBins+si]++
		}
	}
	var norm float64
	for _, v := range hist.bins {
		norm += v * v
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range hist.bins {
			hist.bins[i] /= norm
		}
	}
	return hist
}

// hueSat converts 8-bit RGB to 8-bit hue in [0,180) and saturation in [0,255].
func hueSat(r, g, b uint8) (uint8, uint8) {
	rf, gf, bf := float64(r), float64(g), float64(b)
	maxV := math.Max(rf, math.Max(gf, bf))
	minV := math.Min(rf, math.Min(gf, bf))
	delta := maxV - minV
	if maxV == 0 {
		return 0, 0
	}
	sat := delta / maxV * 255
	if delta == 0 {
		return 0, uint8(math.Round(sat))
	}
	var hue float64
	switch maxV {
	case rf:
		hue = 60 * (gf - bf) / delta
	case gf:
		hue = 120 + 60*(bf-rf)/delta
	default:
		hue = 240 + 60*(rf-gf)/delta
	}
	if hue < 0 {
		hue += 360
	}
	hue /= 2
	if hue >= 180 {
		hue -= 180
	}
	return uint8(hue), uint8(math.Round(sat))
}

// flatEpsilon mirrors DBL_EPSILON, below which a variance product is treated as
// two flat histograms.
const flatEpsilon = 2.220446049250313e-16

// Correlation compares two histograms with the Pearson correlation used by
// OpenCV's HISTCMP_CORREL. The result lies in [-1,1]; 1 means identical shape.
// Two flat histograms compare as identical. Histograms of different shape, or
// an empty one, compare as 0.
func Correlation(a, b Histogram) float64 {
	if len(a.bins) == 0 || len(a.bins) != len(b.bins) {
		return 0
	}
	n := float64(len(a.bins))
	var sumA, sumB float64
	for i := range a.bins {
		sumA += a.bins[i]
		sumB += b.bins[i]
	}
	meanA, meanB := sumA/n, sumB/n
	var num, denA, denB float64
	for i := range a.bins {
		da := a.bins[i] - meanA
		db := b.bins[i] - meanB
		num += da * db
		denA += da * da
		denB += db * db
	}
	den := denA * denB
	if den <= flatEpsilon {
		return 1
	}
	corr := num / math.Sqrt(den)
	return math.Max(-1, math.Min(1, corr))
}
