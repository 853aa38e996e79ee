package imgproc

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// reflect101 maps an out-of-range index back into [0,n) the way
// BORDER_REFLECT_101 does (gfedcb|abcdefgh|gfedcba).
func reflect101(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i
		}
		if i >= n {
			i = 2*n - 2 - i
		}
	}
	return i
}

func bilateralGo(g *image.Gray, d int, sigmaColor, sigmaSpace float64) *image.Gray {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	if w == 0 || h == 0 {
		return out
	}
	radius := d / 2
	if radius < 1 {
		radius = 1
	}
	var colorW [256]float64
	for i := range colorW {
		colorW[i] = math.Exp(-float64(i*i) / (2 * sigmaColor * sigmaColor))
	}
	type tap struct {
		dx, dy int
		w      float64
	}
	var taps []tap
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			r2 := dx*dx + dy*dy
			if r2 > radius*radius {
				continue
			}
			taps = append(taps, tap{dx, dy, math.Exp(-float64(r2) / (2 * sigmaSpace * sigmaSpace))})
		}
	}
	at := func(x, y int) int { return int(g.Pix[g.PixOffset(b.Min.X+x, b.Min.Y+y)]) }
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			center := at(x, y)
			var sum, wsum float64
			for _, t := range taps {
				v := at(reflect101(x+t.dx, w), reflect101(y+t.dy, h))
				diff := v - center
				if diff < 0 {
					diff = -diff
				}
				wt := t.w * colorW[diff]
				sum += wt * float64(v)
				wsum += wt
			}
			out.Pix[y*out.Stride+x] = uint8(math.Round(sum / wsum))
		}
	}
	return out
}

// claheGo is contrast-limited adaptive histogram equalization over a
// tilesX x tilesY grid with bilinear blending between tile mappings.
func claheGo(g *image.Gray, clip float64, tilesX, tilesY int) *image.Gray {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	if w == 0 || h == 0 {
		return out
	}
	tw := (w + tilesX - 1) / tilesX
	th := (h + tilesY - 1) / tilesY
	area := tw * th
	limit := int(clip * float64(area) / 256)
	if limit < 1 {
		limit = 1
	}
	at := func(x, y int) uint8 { return g.Pix[g.PixOffset(b.Min.X+x, b.Min.Y+y)] }

	luts := make([][256]uint8, tilesX*tilesY)
	scale := 255.0 / float64(area)
	for ty := 0; ty < tilesY; ty++ {
		for tx := 0; tx < tilesX; tx++ {
			var hist [256]int
			for y := ty * th; y < (ty+1)*th; y++ {
				sy := reflect101(y, h)
				for x := tx * tw; x < (tx+1)*tw; x++ {
					hist[at(reflect101(x, w), sy)]++
				}
			}
			excess := 0
			for i := range hist {
				if hist[i] > limit {
					excess += hist[i] - limit
					hist[i] = limit
				}
			}
			batch := excess / 256
			residual := excess - batch*256
			for i := range hist {
				hist[i] += batch
			}
			if residual > 0 {
				step := 256 / residual
				if step < 1 {
					step = 1
				}
				for i := 0; i < 256 && residual > 0; i += step {
					hist[i]++
					residual--
				}
			}
			lut := &luts[ty*tilesX+tx]
			sum := 0
			for i := range hist {
				sum += hist[i]
				v := math.Round(float64(sum) * scale)
				if v > 255 {
					v = 255
				}
				lut[i] = uint8(v)
			}
		}
	}

	for y := 0; y < h; y++ {
		fy := float64(y)/float64(th) - 0.5
		ty1 := int(math.Floor(fy))
		ty2 := ty1 + 1
		ya := fy - float64(ty1)
		if ty1 < 0 {
			ty1 = 0
		}
		if ty2 > tilesY-1 {
			ty2 = tilesY - 1
		}
		for x := 0; x < w; x++ {
			fx := float64(x)/float64(tw) - 0.5
			tx1 := int(math.Floor(fx))
			tx2 := tx1 + 1
			xa := fx - float64(tx1)
			if tx1 < 0 {
				tx1 = 0
			}
			if tx2 > tilesX-1 {
				tx2 = tilesX - 1
			}
			v := at(x, y)
			top := float64(luts[ty1*tilesX+tx1][v])*(1-xa) + float64(luts[ty1*tilesX+tx2][v])*xa
			bot := float64(luts[ty2*tilesX+tx1][v])*(1-xa) + float64(luts[ty2*tilesX+tx2][v])*xa
			out.Pix[y*out.Stride+x] = uint8(math.Round(top*(1-ya) + bot*ya))
		}
	}
	return out
}

// Upscale enlarges img by an integer factor with Catmull-Rom (cubic) interpolation.
func Upscale(img image.Image, factor int) *image.NRGBA {
	b := img.Bounds()
	return imaging.Resize(img, b.Dx()*factor, b.Dy()*factor, imaging.CatmullRom)
}
