package vision

import (
	"image"
)

const (
	tan22_5 = 0.41421356237
	tan67_5 = 2.41421356237
	edgeOn  = 255
)

// Canny returns a binary edge map (0 or 255) using a 3x3 Sobel gradient with L1
// magnitude, non-maximum suppression, and hysteresis between low and high.
func Canny(gray *image.Gray, low, high float64) *image.Gray {
	bounds := gray.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	if w < 3 || h < 3 {
		return out
	}
	if low > high {
		low, high = high, low
	}

	gx := make([]int32, w*h)
	gy := make([]int32, w*h)
	mag := make([]int32, w*h)
	at := func(x, y int) int32 {
		if x < 0 {
			x = 0
		} else if x >= w {
			x = w - 1
		}
		if y < 0 {
			y = 0
		} else if y >= h {
			y = h - 1
		}
		return int32(gray.Pix[y*gray.Stride+x])
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			tl, tc, tr := at(x-1, y-1), at(x, y-1), at(x+1, y-1)
			ml, mr := at(x-1, y), at(x+1, y)
			bl, bc, br := at(x-1, y+1), at(x, y+1), at(x+1, y+1)
			dx := (tr + 2*mr + br) - (tl + 2*ml + bl)
			dy := (bl + 2*bc + br) - (tl + 2*tc + tr)
			i := y*w + x
			gx[i], gy[i] = dx, dy
			mag[i] = abs32(dx) + abs32(dy)
		}
	}

	magAt := func(x, y int) int32 {
		if x < 0 || y < 0 || x >= w || y >= h {
			return 0
		}
		return mag[y*w+x]
	}

	// 0 = suppressed, 1 = weak, 2 = strong
	state := make([]uint8, w*h)
	stack := make([]int, 0, 1024)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			m := mag[i]
			if float64(m) <= low {
				continue
			}
			ax := float64(abs32(gx[i]))
			ay := float64(abs32(gy[i]))
			var n1, n2 int32
			switch {
			case ay <= ax*tan22_5:
				n1, n2 = magAt(x-1, y), magAt(x+1, y)
			case ay >= ax*tan67_5:
				n1, n2 = magAt(x, y-1), magAt(x, y+1)
			case (gx[i] < 0) == (gy[i] < 0):
				n1, n2 = magAt(x-1, y-1), magAt(x+1, y+1)
			default:
				n1, n2 = magAt(x+1, y-1), magAt(x-1, y+1)
			}
			if m <= n1 || m < n2 {
				continue
			}
			if float64(m) > high {
				state[i] = 2
				stack = append(stack, i)
			} else {
				state[i] = 1
			}
		}
	}

	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		x, y := i%w, i/w
		out.Pix[y*out.Stride+x] = edgeOn
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				nx, ny := x+dx, y+dy
				if nx < 0 || ny < 0 || nx >= w || ny >= h {
					continue
				}
				j := ny*w + nx
				if state[j] == 1 {
					state[j] = 2
					stack = append(stack, j)
				}
			}
		}
	}
	return out
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}
