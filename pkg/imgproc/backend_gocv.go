//go:build gocv

package imgproc

import (
	"image"

	"github.com/rs/zerolog/log"
	"gocv.io/x/gocv"
)

// Backend names the implementation compiled into this binary.
const Backend = "opencv"

// compact returns g with origin (0,0) and stride == width, copying when needed.
func compact(g *image.Gray) *image.Gray {
	b := g.Bounds()
	if b.Min == (image.Point{}) && g.Stride == b.Dx() {
		return g
	}
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		off := g.PixOffset(b.Min.X, b.Min.Y+y)
		copy(out.Pix[y*out.Stride:], g.Pix[off:off+b.Dx()])
	}
	return out
}

func grayMat(g *image.Gray) (gocv.Mat, error) {
	return gocv.ImageGrayToMatGray(compact(g))
}

func matGray(m gocv.Mat) (*image.Gray, error) {
	img, err := m.ToImage()
	if err != nil {
		return nil, err
	}
	if g, ok := img.(*image.Gray); ok {
		return g, nil
	}
	return Gray(img), nil
}

// grayOp runs fn on an OpenCV copy of g, falling back to the Go version on
// conversion errors.
func grayOp(name string, g *image.Gray, fn func(src gocv.Mat, dst *gocv.Mat), fallback func() *image.Gray) *image.Gray {
	src, err := grayMat(g)
	if err != nil {
		log.Warn().Err(err).Str("op", name).Msg("opencv conversion failed, using go implementation")
		return fallback()
	}
	defer src.Close()
	dst := gocv.NewMat()
	defer dst.Close()
	fn(src, &dst)
	out, err := matGray(dst)
	if err != nil {
		log.Warn().Err(err).Str("op", name).Msg("opencv conversion failed, using go implementation")
		return fallback()
	}
	return out
}

// InRangeHSV marks pixels whose HSV value lies inside [lo, hi] (inclusive).
func InRangeHSV(img image.Image, lo, hi HSV) *image.Gray {
	bgr, err := gocv.ImageToMatRGB(img)
	if err != nil {
		log.Warn().Err(err).Str("op", "inrange").Msg("opencv conversion failed, using go implementation")
		return inRangeHSVGo(img, lo, hi)
	}
	defer bgr.Close()
	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(bgr, &hsv, gocv.ColorBGRToHSV)
	mask := gocv.NewMat()
	defer mask.Close()
	gocv.InRangeWithScalar(hsv,
		gocv.NewScalar(float64(lo.H), float64(lo.S), float64(lo.V), 0),
		gocv.NewScalar(float64(hi.H), float64(hi.S), float64(hi.V), 0),
		&mask)
	out, err := matGray(mask)
	if err != nil {
		return inRangeHSVGo(img, lo, hi)
	}
	return out
}

// Otsu binarizes g at its Otsu level.
func Otsu(g *image.Gray) *image.Gray {
	return grayOp("otsu", g, func(src gocv.Mat, dst *gocv.Mat) {
		gocv.Threshold(src, dst, 0, 255, gocv.ThresholdBinary|gocv.ThresholdOtsu)
	}, func() *image.Gray { return otsuGo(g) })
}

// AdaptiveGaussian binarizes g against a local Gaussian-weighted mean minus c.
func AdaptiveGaussian(g *image.Gray, block int, c float64) *image.Gray {
	return grayOp("adaptive", g, func(src gocv.Mat, dst *gocv.Mat) {
		gocv.AdaptiveThreshold(src, dst, 255, gocv.AdaptiveThresholdGaussian, gocv.ThresholdBinary, block, float32(c))
	}, func() *image.Gray { return adaptiveGaussianGo(g, block, c) })
}

func morph(name string, m *image.Gray, k int, op gocv.MorphType, fallback func() *image.Gray) *image.Gray {
	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(k, k))
	defer kernel.Close()
	return grayOp(name, m, func(src gocv.Mat, dst *gocv.Mat) {
		gocv.MorphologyEx(src, dst, op, kernel)
	}, fallback)
}

// MorphClose dilates then erodes with a k x k rectangle.
func MorphClose(m *image.Gray, k int) *image.Gray {
	return morph("close", m, k, gocv.MorphClose, func() *image.Gray { return morphCloseGo(m, k) })
}

// MorphOpen erodes then dilates with a k x k rectangle.
func MorphOpen(m *image.Gray, k int) *image.Gray {
	return morph("open", m, k, gocv.MorphOpen, func() *image.Gray { return morphOpenGo(m, k) })
}

// LargestBlob returns the external contour with the largest area.
func LargestBlob(mask *image.Gray) (Blob, bool) {
	src, err := grayMat(mask)
	if err != nil {
		return largestBlobGo(mask)
	}
	defer src.Close()
	contours := gocv.FindContours(src, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()
	if contours.Size() == 0 {
		return Blob{}, false
	}
	best := -1
	bestArea := -1.0
	for i := 0; i < contours.Size(); i++ {
		if a := gocv.ContourArea(contours.At(i)); a > bestArea {
			best, bestArea = i, a
		}
	}
	return Blob{Bounds: gocv.BoundingRect(contours.At(best)), Area: int(bestArea)}, true
}

// Bilateral is an edge-preserving smoothing filter of diameter d.
func Bilateral(g *image.Gray, d int, sigmaColor, sigmaSpace float64) *image.Gray {
	return grayOp("bilateral", g, func(src gocv.Mat, dst *gocv.Mat) {
		gocv.BilateralFilter(src, dst, d, sigmaColor, sigmaSpace)
	}, func() *image.Gray { return bilateralGo(g, d, sigmaColor, sigmaSpace) })
}

// CLAHE equalizes local contrast with the given clip limit and tile grid.
func CLAHE(g *image.Gray, clip float64, tilesX, tilesY int) *image.Gray {
	clahe := gocv.NewCLAHEWithParams(clip, image.Pt(tilesX, tilesY))
	defer clahe.Close()
	return grayOp("clahe", g, func(src gocv.Mat, dst *gocv.Mat) {
		clahe.Apply(src, dst)
	}, func() *image.Gray { return claheGo(g, clip, tilesX, tilesY) })
}
