package card

import (
	"image"

	"github.com/rs/zerolog/log"

	"trainercard/pkg/imgproc"
)

// Background hue band of the card panel (OpenCV HSV scale).
var (
	panelLow  = imgproc.HSV{H: 35, S: 40, V: 40}
	panelHigh = imgproc.HSV{H: 85, S: 255, V: 255}
)

const (
	speckleKernel = 5
	brightCutoff  = 180

	// images above either dimension are treated as photos and get the
	// brightness pass
	photoWidth  = 1500
	photoHeight = 800
)

type geometryGate struct {
	minAspect, maxAspect float64
	minWidth, minHeight  int
}

func (g geometryGate) accept(r image.Rectangle) bool {
	if r.Dy() == 0 {
		return false
	}
	ar := float64(r.Dx()) / float64(r.Dy())
	return ar > g.minAspect && ar < g.maxAspect && r.Dx() > g.minWidth && r.Dy() > g.minHeight
}

var (
	colorGate      = geometryGate{minAspect: 1.2, maxAspect: 3.0, minWidth: 100, minHeight: 100}
	brightnessGate = geometryGate{minAspect: 1.4, maxAspect: 2.0, minWidth: 800, minHeight: 300}
)

// Localize finds the card panel. The color pass runs first; the brightness
// pass only runs for images larger than a screen capture.
func Localize(img image.Image) (Region, bool) {
	if r, ok := localizeByColor(img); ok {
		return r, true
	}
	b := img.Bounds()
	if b.Dx() > photoWidth || b.Dy() > photoHeight {
		if r, ok := localizeByBrightness(img); ok {
			return r, true
		}
	}
	return Region{}, false
}

// LocateRegion is Localize with the whole image as the fallback.
func LocateRegion(img image.Image) Region {
	r, ok := Localize(img)
	if !ok {
		r = Whole(img)
	}
	log.Debug().Stringer("region", r).Msg("card region")
	return r
}

func localizeByColor(img image.Image) (Region, bool) {
	mask := imgproc.InRangeHSV(img, panelLow, panelHigh)
	mask = imgproc.MorphClose(mask, speckleKernel)
	mask = imgproc.MorphOpen(mask, speckleKernel)
	blob, ok := imgproc.LargestBlob(mask)
	if !ok || !colorGate.accept(blob.Bounds) {
		return Region{}, false
	}
	return RegionFromRect(blob.Bounds.Add(img.Bounds().Min), ColorSegmented), true
}

func localizeByBrightness(img image.Image) (Region, bool) {
	mask := imgproc.Threshold(imgproc.Gray(img), brightCutoff)
	blob, ok := imgproc.LargestBlob(mask)
	if !ok || !brightnessGate.accept(blob.Bounds) {
		return Region{}, false
	}
	return RegionFromRect(blob.Bounds.Add(img.Bounds().Min), BrightnessSegmented), true
}
