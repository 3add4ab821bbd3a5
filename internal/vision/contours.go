package vision

import (
	"image"
	"math"
	"sort"
)

// Contour summarizes one 8-connected group of edge pixels by its convex hull.
// A closed outline (a window frame, a box) yields the enclosed area; an open
// stroke yields a degenerate hull with zero area and a perimeter of roughly
// twice its length.
type Contour struct {
	Pixels    int
	Hull      []image.Point
	Area      float64
	Perimeter float64
	Bounds    image.Rectangle
}

// IsPolygon reports whether the hull encloses a non-degenerate region.
func (c Contour) IsPolygon() bool {
	return len(c.Hull) >= 3 && c.Area > 0
}

// EdgeContours labels 8-connected components of non-zero pixels in mask.
func EdgeContours(mask *image.Gray) []Contour {
	bounds := mask.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return nil
	}
	visited := make([]bool, w*h)
	var contours []Contour
	queue := make([]int, 0, 256)

	for start := 0; start < w*h; start++ {
		sx, sy := start%w, start/w
		if visited[start] || mask.Pix[sy*mask.Stride+sx] == 0 {
			continue
		}
		visited[start] = true
		queue = append(queue[:0], start)
		extremes := map[int][2]int{}
		pixels := 0
		minX, minY, maxX, maxY := sx, sy, sx, sy

		for head := 0; head < len(queue); head++ {
			i := queue[head]
			x, y := i%w, i/w
			pixels++
			if ext, ok := extremes[y]; ok {
				if x < ext[0] {
					ext[0] = x
				}
				if x > ext[1] {
					ext[1] = x
				}
				extremes[y] = ext
			} else {
				extremes[y] = [2]int{x, x}
			}
			minX, maxX = min(minX, x), max(maxX, x)
			minY, maxY = min(minY, y), max(maxY, y)

			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					nx, ny := x+dx, y+dy
					if nx < 0 || ny < 0 || nx >= w || ny >= h {
						continue
					}
					j := ny*w + nx
					if visited[j] || mask.Pix[ny*mask.Stride+nx] == 0 {
						continue
					}
					visited[j] = true
					queue = append(queue, j)
				}
			}
		}

		points := make([]image.Point, 0, len(extremes)*2)
		for y, ext := range extremes {
			points = append(points, image.Pt(ext[0], y))
			if ext[1] != ext[0] {
				points = append(points, image.Pt(ext[1], y))
			}
		}
		hull := convexHull(points)
		contours = append(contours, Contour{
			Pixels:    pixels,
			Hull:      hull,
			Area:      polygonArea(hull),
			Perimeter: polygonPerimeter(hull),
			Bounds:    image.Rect(minX, minY, maxX+1, maxY+1),
		})
	}
	return contours
}

// convexHull returns the hull in counter-clockwise order (monotone chain).
func convexHull(points []image.Point) []image.Point {
	if len(points) < 3 {
		out := make([]image.Point, len(points))
		copy(out, points)
		return out
	}
	sort.Slice(points, func(i, j int) bool {
		if points[i].X != points[j].X {
			return points[i].X < points[j].X
		}
		return points[i].Y < points[j].Y
	})
	cross := func(o, a, b image.Point) int {
		return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
	}
	hull := make([]image.Point, 0, 2*len(points))
	for _, p := range points {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	lower := len(hull) + 1
	for i := len(points) - 2; i >= 0; i-- {
		p := points[i]
		for len(hull) >= lower && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	return hull[:len(hull)-1]
}

func polygonArea(poly []image.Point) float64 {
	if len(poly) < 3 {
		return 0
	}
	var twice int
	for i := range poly {
		j := (i + 1) % len(poly)
		twice += poly[i].X*poly[j].Y - poly[j].X*poly[i].Y
	}
	return math.Abs(float64(twice)) / 2
}

func polygonPerimeter(poly []image.Point) float64 {
	switch len(poly) {
	case 0, 1:
		return 0
	case 2:
		return 2 * math.Hypot(float64(poly[1].X-poly[0].X), float64(poly[1].Y-poly[0].Y))
	}
	var total float64
	for i := range poly {
		j := (i + 1) % len(poly)
		total += math.Hypot(float64(poly[j].X-poly[i].X), float64(poly[j].Y-poly[i].Y))
	}
	return total
}
