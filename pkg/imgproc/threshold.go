package imgproc

import (
	"image"
	"math"
)

// Threshold performs a global binarization: samples above t become 255,
// everything else 0.
func Threshold(g *image.Gray, t uint8) *image.Gray {
	b := g.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		off := g.PixOffset(b.Min.X, b.Min.Y+y)
		for x, v := range g.Pix[off : off+b.Dx()] {
			if v > t {
				out.Pix[y*out.Stride+x] = 255
			}
		}
	}
	return out
}

// OtsuLevel returns the threshold maximizing between-class variance of g's histogram.
func OtsuLevel(g *image.Gray) uint8 {
	var hist [256]float64
	b := g.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		off := g.PixOffset(b.Min.X, y)
		for _, v := range g.Pix[off : off+b.Dx()] {
			hist[v]++
		}
	}
	total := float64(b.Dx() * b.Dy())
	var sum float64
	for i, c := range hist {
		sum += float64(i) * c
	}
	var sumB, wB, best float64
	level := 0
	for t := 0; t < 256; t++ {
		wB += hist[t]
		if wB == 0 {
			continue
		}
		wF := total - wB
		if wF == 0 {
			break
		}
		sumB += float64(t) * hist[t]
		mB := sumB / wB
		mF := (sum - sumB) / wF
		between := wB * wF * (mB - mF) * (mB - mF)
		if between > best {
			best = between
			level = t
		}
	}
	return uint8(level)
}

func otsuGo(g *image.Gray) *image.Gray {
	return Threshold(g, OtsuLevel(g))
}

// gaussianKernel mirrors getGaussianKernel's default sigma for a given size.
func gaussianKernel(size int) []float64 {
	sigma := 0.3*(float64(size-1)*0.5-1) + 0.8
	k := make([]float64, size)
	half := size / 2
	var sum float64
	for i := range k {
		d := float64(i - half)
		k[i] = math.Exp(-(d * d) / (2 * sigma * sigma))
		sum += k[i]
	}
	for i := range k {
		k[i] /= sum
	}
	return k
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// adaptiveGaussianGo thresholds each sample against the Gaussian-weighted
// mean of its block x block neighborhood minus c (replicated border).
func adaptiveGaussianGo(g *image.Gray, block int, c float64) *image.Gray {
	if block < 3 {
		block = 3
	}
	if block%2 == 0 {
		block++
	}
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	if w == 0 || h == 0 {
		return out
	}
	k := gaussianKernel(block)
	half := block / 2
	at := func(x, y int) float64 { return float64(g.Pix[g.PixOffset(b.Min.X+x, b.Min.Y+y)]) }

	tmp := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var s float64
			for i, kv := range k {
				s += kv * at(clampIndex(x+i-half, w), y)
			}
			tmp[y*w+x] = s
		}
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var s float64
			for i, kv := range k {
				s += kv * tmp[clampIndex(y+i-half, h)*w+x]
			}
			mean := math.Round(s)
			if at(x, y) > mean-c {
				out.Pix[y*out.Stride+x] = 255
			}
		}
	}
	return out
}
