package imgproc

import "image"

// Blob is one connected bright area of a binary mask. Area counts
// everything inside its outer boundary, holes included.
type Blob struct {
	Bounds image.Rectangle
	Area   int
}

// AspectRatio is width over height of the blob's bounding box.
func (b Blob) AspectRatio() float64 {
	if b.Bounds.Dy() == 0 {
		return 0
	}
	return float64(b.Bounds.Dx()) / float64(b.Bounds.Dy())
}

// largestBlobGo labels 8-connected non-zero areas and returns the one whose
// outer boundary encloses the most area, holes included, the way an external
// contour would be ranked. Ties keep the first area found in raster order.
func largestBlobGo(mask *image.Gray) (Blob, bool) {
	b := mask.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return Blob{}, false
	}
	on := func(x, y int) bool { return mask.Pix[mask.PixOffset(b.Min.X+x, b.Min.Y+y)] != 0 }
	labels := make([]int32, w*h)
	var best Blob
	found := false
	next := int32(0)
	stack := make([]int, 0, 1024)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			idx := y*w + x
			if labels[idx] != 0 || !on(x, y) {
				continue
			}
			next++
			labels[idx] = next
			stack = append(stack[:0], idx)
			minX, minY, maxX, maxY := x, y, x, y
			for len(stack) > 0 {
				cur := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				cx, cy := cur%w, cur/w
				minX, maxX = min(minX, cx), max(maxX, cx)
				minY, maxY = min(minY, cy), max(maxY, cy)
				for dy := -1; dy <= 1; dy++ {
					ny := cy + dy
					if ny < 0 || ny >= h {
						continue
					}
					for dx := -1; dx <= 1; dx++ {
						nx := cx + dx
						if nx < 0 || nx >= w {
							continue
						}
						n := ny*w + nx
						if labels[n] == 0 && on(nx, ny) {
							labels[n] = next
							stack = append(stack, n)
						}
					}
				}
			}
			box := image.Rect(minX, minY, maxX+1, maxY+1)
			// the box bounds the enclosed area from above
			if found && box.Dx()*box.Dy() <= best.Area {
				continue
			}
			if area := enclosedArea(labels, w, next, box); !found || area > best.Area {
				best = Blob{Bounds: box, Area: area}
				found = true
			}
		}
	}
	return best, found
}

// enclosedArea counts the cells of box that cannot reach the outside of box
// without crossing component id. Background moves 4-connected, the dual of
// the 8-connected foreground.
func enclosedArea(labels []int32, w int, id int32, box image.Rectangle) int {
	// work on the box padded by one cell so the outside is a single region
	pw, ph := box.Dx()+2, box.Dy()+2
	outside := make([]bool, pw*ph)
	blocked := func(px, py int) bool {
		x, y := box.Min.X+px-1, box.Min.Y+py-1
		if px == 0 || py == 0 || px == pw-1 || py == ph-1 {
			return false
		}
		return labels[y*w+x] == id
	}
	stack := []int{0}
	outside[0] = true
	count := 0
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		count++
		cx, cy := cur%pw, cur/pw
		for _, d := range [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
			nx, ny := cx+d[0], cy+d[1]
			if nx < 0 || ny < 0 || nx >= pw || ny >= ph {
				continue
			}
			n := ny*pw + nx
			if !outside[n] && !blocked(nx, ny) {
				outside[n] = true
				stack = append(stack, n)
			}
		}
	}
	return pw*ph - count
}
