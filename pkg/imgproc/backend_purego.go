//go:build !gocv

package imgproc

import "image"

// Backend names the implementation compiled into this binary.
const Backend = "go"

// InRangeHSV marks pixels whose HSV value lies inside [lo, hi] (inclusive).
func InRangeHSV(img image.Image, lo, hi HSV) *image.Gray { return inRangeHSVGo(img, lo, hi) }

// Otsu binarizes g at its Otsu level.
func Otsu(g *image.Gray) *image.Gray { return otsuGo(g) }

// AdaptiveGaussian binarizes g against a local Gaussian-weighted mean minus c.
func AdaptiveGaussian(g *image.Gray, block int, c float64) *image.Gray {
	return adaptiveGaussianGo(g, block, c)
}

// MorphClose dilates then erodes with a k x k rectangle.
func MorphClose(m *image.Gray, k int) *image.Gray { return morphCloseGo(m, k) }

// MorphOpen erodes then dilates with a k x k rectangle.
func MorphOpen(m *image.Gray, k int) *image.Gray { return morphOpenGo(m, k) }

// LargestBlob returns the connected bright area of mask whose outer
// boundary encloses the most area.
func LargestBlob(mask *image.Gray) (Blob, bool) { return largestBlobGo(mask) }

// Bilateral is an edge-preserving smoothing filter of diameter d.
func Bilateral(g *image.Gray, d int, sigmaColor, sigmaSpace float64) *image.Gray {
	return bilateralGo(g, d, sigmaColor, sigmaSpace)
}

// CLAHE equalizes local contrast with the given clip limit and tile grid.
func CLAHE(g *image.Gray, clip float64, tilesX, tilesY int) *image.Gray {
	return claheGo(g, clip, tilesX, tilesY)
}
