package classify

import (
	"errors"
	"image"

	"vidscribe/internal/vision"
)

const (
	cannyLow          = 50
	cannyHigh         = 150
	houghVotes        = 100
	editorWindowArea  = 10000
	shapeMinPerimeter = 100
)

var errNoImage = errors.New("frame has no image")

// analysis memoizes the image measurements shared by the scorers.
type analysis struct {
	img *image.RGBA

	gray      *image.Gray
	mean, std float64
	edges     *image.Gray
	density   float64
	contours  []vision.Contour
	lines     int
	haveLines bool

	ocrOK   bool
	ocrText string
}

func newAnalysis(img *image.RGBA) *analysis {
	return &analysis{img: img}
}

func (a *analysis) grayscale() (*image.Gray, error) {
	if a.gray != nil {
		return a.gray, nil
	}
	if a.img == nil {
		return nil, errNoImage
	}
	a.gray = vision.Grayscale(a.img)
	a.mean, a.std = vision.MeanStdDev(a.gray)
	return a.gray, nil
}

func (a *analysis) brightness() (mean, std float64, err error) {
	if _, err := a.grayscale(); err != nil {
		return 0, 0, err
	}
	return a.mean, a.std, nil
}

func (a *analysis) edgeMap() (*image.Gray, error) {
	if a.edges != nil {
		return a.edges, nil
	}
	gray, err := a.grayscale()
	if err != nil {
		return nil, err
	}
	a.edges = vision.Canny(gray, cannyLow, cannyHigh)
	a.density = vision.NonZeroRatio(a.edges)
	return a.edges, nil
}

func (a *analysis) edgeDensity() (float64, error) {
	if _, err := a.edgeMap(); err != nil {
		return 0, err
	}
	return a.density, nil
}

func (a *analysis) edgeContours() ([]vision.Contour, error) {
	if a.contours != nil {
		return a.contours, nil
	}
	edges, err := a.edgeMap()
	if err != nil {
		return nil, err
	}
	a.contours = vision.EdgeContours(edges)
	if a.contours == nil {
		a.contours = []vision.Contour{}
	}
	return a.contours, nil
}

func (a *analysis) lineCount() (int, error) {
	if a.haveLines {
		return a.lines, nil
	}
	edges, err := a.edgeMap()
	if err != nil {
		return 0, err
	}
	a.lines = vision.HoughLineCount(edges, houghVotes)
	a.haveLines = true
	return a.lines, nil
}
