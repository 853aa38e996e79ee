package imgproc

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// HSV is a color in OpenCV's 8-bit HSV scale: H in [0,180], S and V in [0,255].
type HSV struct {
	H, S, V uint8
}

// Gray converts img to 8-bit luma using 0.299R + 0.587G + 0.114B.
// The result always has its origin at (0,0).
func Gray(img image.Image) *image.Gray {
	src := imaging.Clone(img)
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		row := src.Pix[y*src.Stride : y*src.Stride+w*4]
		orow := out.Pix[y*out.Stride : y*out.Stride+w]
		for x := 0; x < w; x++ {
			orow[x] = luma(row[x*4], row[x*4+1], row[x*4+2])
		}
	}
	return out
}

// fixed-point weights, same rounding as cvtColor
func luma(r, g, b uint8) uint8 {
	return uint8((uint32(r)*4899 + uint32(g)*9617 + uint32(b)*1868 + 8192) >> 14)
}

// ToHSV converts an RGB triple to OpenCV's HSV scale.
func ToHSV(r, g, b uint8) HSV {
	max, min := r, r
	if g > max {
		max = g
	}
	if b > max {
		max = b
	}
	if g < min {
		min = g
	}
	if b < min {
		min = b
	}
	out := HSV{V: max}
	if max == 0 {
		return out
	}
	diff := float64(max) - float64(min)
	out.S = uint8(math.Round(255 * diff / float64(max)))
	if diff == 0 {
		return out
	}
	var h float64
	switch max {
	case r:
		h = 60 * (float64(g) - float64(b)) / diff
	case g:
		h = 120 + 60*(float64(b)-float64(r))/diff
	default:
		h = 240 + 60*(float64(r)-float64(g))/diff
	}
	if h < 0 {
		h += 360
	}
	hh := math.Round(h / 2)
	if hh > 180 {
		hh = 180
	}
	out.H = uint8(hh)
	return out
}

// Saturation returns the HSV saturation plane of img.
func Saturation(img image.Image) *image.Gray {
	src := imaging.Clone(img)
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		row := src.Pix[y*src.Stride : y*src.Stride+w*4]
		for x := 0; x < w; x++ {
			out.Pix[y*out.Stride+x] = ToHSV(row[x*4], row[x*4+1], row[x*4+2]).S
		}
	}
	return out
}

func inRangeHSVGo(img image.Image, lo, hi HSV) *image.Gray {
	src := imaging.Clone(img)
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		row := src.Pix[y*src.Stride : y*src.Stride+w*4]
		for x := 0; x < w; x++ {
			c := ToHSV(row[x*4], row[x*4+1], row[x*4+2])
			if c.H >= lo.H && c.H <= hi.H && c.S >= lo.S && c.S <= hi.S && c.V >= lo.V && c.V <= hi.V {
				out.Pix[y*out.Stride+x] = 255
			}
		}
	}
	return out
}

// Stats summarizes the samples of a single-channel image inside a rectangle.
type Stats struct {
	Mean   float64
	StdDev float64
	Min    uint8
	Count  int
}

// GrayStats computes mean, population standard deviation and minimum of g
// over r. An empty intersection yields a zero Stats.
func GrayStats(g *image.Gray, r image.Rectangle) Stats {
	r = r.Intersect(g.Bounds())
	if r.Empty() {
		return Stats{}
	}
	var sum, sq float64
	min := uint8(255)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		off := g.PixOffset(r.Min.X, y)
		for _, v := range g.Pix[off : off+r.Dx()] {
			f := float64(v)
			sum += f
			sq += f * f
			if v < min {
				min = v
			}
		}
	}
	n := float64(r.Dx() * r.Dy())
	mean := sum / n
	variance := sq/n - mean*mean
	if variance < 0 {
		variance = 0
	}
	return Stats{Mean: mean, StdDev: math.Sqrt(variance), Min: min, Count: int(n)}
}
