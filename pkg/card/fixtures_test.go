package card

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

var (
	panelGreen = color.NRGBA{120, 230, 120, 255}
	frameBlack = color.NRGBA{10, 10, 10, 255}
)

// nativeCard draws a 240x160 card on the panel green with a badge icon
// (black/white checkerboard) in every slot where filled[i] is true.
func nativeCard(filled ...int) *image.NRGBA {
	img := imaging.New(240, 160, panelGreen)
	for _, slot := range filled {
		drawBadge(img, image.Rect(17+slot*26, 131, 17+(slot+1)*26, 147))
	}
	return img
}

// firstN returns the slot indexes 0..n-1.
func firstN(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func drawBadge(img *image.NRGBA, r image.Rectangle) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			c := color.NRGBA{0, 0, 0, 255}
			if (x+y)%2 == 0 {
				c = color.NRGBA{255, 255, 255, 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}
}

func fillRect(img *image.NRGBA, r image.Rectangle, c color.NRGBA) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
}
