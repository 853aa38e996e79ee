package imgproc

import "image"

// rectFilter applies a k x k min (erode) or max (dilate) filter as two
// separable passes. Samples outside the image are ignored.
func rectFilter(m *image.Gray, k int, dilate bool) *image.Gray {
	b := m.Bounds()
	w, h := b.Dx(), b.Dy()
	half := k / 2
	pick := func(cur, v uint8) uint8 {
		if dilate {
			if v > cur {
				return v
			}
			return cur
		}
		if v < cur {
			return v
		}
		return cur
	}
	start := uint8(255)
	if dilate {
		start = 0
	}

	tmp := make([]uint8, w*h)
	for y := 0; y < h; y++ {
		off := m.PixOffset(b.Min.X, b.Min.Y+y)
		row := m.Pix[off : off+w]
		for x := 0; x < w; x++ {
			acc := start
			for dx := x - half; dx <= x+half; dx++ {
				if dx < 0 || dx >= w {
					continue
				}
				acc = pick(acc, row[dx])
			}
			tmp[y*w+x] = acc
		}
	}
	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			acc := start
			for dy := y - half; dy <= y+half; dy++ {
				if dy < 0 || dy >= h {
					continue
				}
				acc = pick(acc, tmp[dy*w+x])
			}
			out.Pix[y*out.Stride+x] = acc
		}
	}
	return out
}

// Dilate grows bright areas with a k x k rectangle.
func Dilate(m *image.Gray, k int) *image.Gray { return rectFilter(m, k, true) }

// Erode shrinks bright areas with a k x k rectangle.
func Erode(m *image.Gray, k int) *image.Gray { return rectFilter(m, k, false) }

func morphCloseGo(m *image.Gray, k int) *image.Gray { return Erode(Dilate(m, k), k) }

func morphOpenGo(m *image.Gray, k int) *image.Gray { return Dilate(Erode(m, k), k) }
