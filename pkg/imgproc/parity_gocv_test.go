//go:build gocv

package imgproc

import (
	"bytes"
	"image"
	"testing"
)

// Shared masks for comparing the OpenCV backend with the Go versions.
func parityMasks() map[string]*image.Gray {
	blocks := grayFill(120, 80, 0)
	fillRect(blocks, image.Rect(5, 5, 25, 25), 255)
	fillRect(blocks, image.Rect(40, 10, 110, 60), 255)

	ring := grayFill(120, 80, 0)
	strokeRect(ring, image.Rect(5, 5, 65, 55), 3, 255)
	fillRect(ring, image.Rect(80, 10, 110, 40), 255)
	ring.Pix[ring.PixOffset(30, 30)] = 255

	open := grayFill(120, 80, 0)
	strokeRect(open, image.Rect(5, 5, 65, 55), 3, 255)
	fillRect(open, image.Rect(30, 52, 36, 55), 0)
	fillRect(open, image.Rect(80, 10, 110, 40), 255)

	// speckle, a one-pixel bridge and shapes touching the border
	noisy := grayFill(90, 60, 0)
	fillRect(noisy, image.Rect(0, 0, 30, 20), 255)
	fillRect(noisy, image.Rect(30, 10, 31, 11), 255)
	fillRect(noisy, image.Rect(31, 5, 90, 25), 255)
	fillRect(noisy, image.Rect(40, 40, 43, 42), 255)
	fillRect(noisy, image.Rect(60, 30, 64, 60), 255)
	fillRect(noisy, image.Rect(12, 8, 14, 9), 0)

	return map[string]*image.Gray{"blocks": blocks, "ring": ring, "open_ring": open, "noisy": noisy}
}

func sameGray(a, b *image.Gray) bool {
	if a.Bounds().Size() != b.Bounds().Size() {
		return false
	}
	ab, bb := a.Bounds(), b.Bounds()
	for y := 0; y < ab.Dy(); y++ {
		ra := a.Pix[a.PixOffset(ab.Min.X, ab.Min.Y+y):][:ab.Dx()]
		rb := b.Pix[b.PixOffset(bb.Min.X, bb.Min.Y+y):][:bb.Dx()]
		if !bytes.Equal(ra, rb) {
			return false
		}
	}
	return true
}

func TestLargestBlobMatchesOpenCV(t *testing.T) {
	for name, m := range parityMasks() {
		cv, okCV := LargestBlob(m)
		goBlob, okGo := largestBlobGo(m)
		if okCV != okGo || cv.Bounds != goBlob.Bounds {
			t.Errorf("%s: opencv %+v, go %+v", name, cv, goBlob)
			continue
		}
		// contour area runs through pixel centers, so it trails the cell
		// count by about half the perimeter
		b := goBlob.Bounds
		if diff := goBlob.Area - cv.Area; diff < 0 || diff > 2*(b.Dx()+b.Dy()) {
			t.Errorf("%s: area opencv %d, go %d", name, cv.Area, goBlob.Area)
		}
	}
}

func TestMorphologyMatchesOpenCV(t *testing.T) {
	for name, m := range parityMasks() {
		for _, k := range []int{3, 5} {
			if !sameGray(MorphClose(m, k), morphCloseGo(m, k)) {
				t.Errorf("%s: close k=%d differs", name, k)
			}
			if !sameGray(MorphOpen(m, k), morphOpenGo(m, k)) {
				t.Errorf("%s: open k=%d differs", name, k)
			}
		}
	}
}

func TestOtsuMatchesOpenCV(t *testing.T) {
	bimodal := grayFill(64, 48, 40)
	fillRect(bimodal, image.Rect(0, 0, 64, 12), 60)
	fillRect(bimodal, image.Rect(10, 20, 50, 40), 190)
	fillRect(bimodal, image.Rect(20, 25, 30, 35), 220)

	cases := map[string]*image.Gray{"bimodal": bimodal}
	for name, m := range parityMasks() {
		cases["mask_"+name] = m
	}
	for name, g := range cases {
		if !sameGray(Otsu(g), otsuGo(g)) {
			t.Errorf("%s: otsu differs (go level %d)", name, OtsuLevel(g))
		}
	}
}
