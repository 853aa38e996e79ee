package card

import (
	"image"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog/log"

	"trainercard/pkg/imgproc"
)

const slotCount = 8

// Native card resolution; regions at or below it use fixed strip offsets.
const (
	nativeWidth  = 250
	nativeHeight = 170
)

// BadgeReport is the full trace of one badge count.
type BadgeReport struct {
	Region Region
	Strip  image.Rectangle
	Slots  []BadgeSlotMetrics
	Scores []int
	Count  int
}

// CountBadges returns how many badges the card in region shows.
func CountBadges(img image.Image, region Region) int {
	return AnalyzeBadges(img, region).Count
}

// AnalyzeBadges measures every slot of the badge strip and derives the count.
func AnalyzeBadges(img image.Image, region Region) BadgeReport {
	rep := BadgeReport{Region: refineRegion(img, region)}
	rep.Strip = badgeStrip(rep.Region, img.Bounds())
	if rep.Strip.Empty() {
		return rep
	}
	strip := imaging.Crop(img, rep.Strip)
	rep.Slots = SlotMetrics(strip)
	for i := range rep.Slots {
		rep.Slots[i].Rect = rep.Slots[i].Rect.Add(rep.Strip.Min)
	}
	rep.Scores = make([]int, len(rep.Slots))
	for i, m := range rep.Slots {
		rep.Scores[i] = ScoreSlot(m)
	}
	rep.Count = CountFromScores(rep.Scores)
	log.Debug().Stringer("region", rep.Region).Ints("scores", rep.Scores).Int("badges", rep.Count).Msg("badge strip")
	return rep
}

// refineRegion tightens a large region to its biggest bright block. Photos
// often localize to the screen bezel rather than the card itself.
func refineRegion(img image.Image, r Region) Region {
	if r.Width <= 500 && r.Height <= 400 {
		return r
	}
	crop := imaging.Crop(img, r.Rect())
	blob, ok := imgproc.LargestBlob(imgproc.Threshold(imgproc.Gray(crop), brightCutoff))
	if !ok {
		return r
	}
	ar := blob.AspectRatio()
	if ar > 1.2 && ar < 3.0 && blob.Bounds.Dx() > 100 {
		return RegionFromRect(blob.Bounds.Add(image.Pt(r.X, r.Y)), r.Source)
	}
	return r
}

// badgeStrip locates the row of badge icons at the bottom of the card.
func badgeStrip(r Region, bounds image.Rectangle) image.Rectangle {
	var strip image.Rectangle
	if r.Width <= nativeWidth && r.Height <= nativeHeight {
		strip = image.Rect(r.X+17, r.Y+131, r.X+225, r.Y+147)
	} else {
		w, h := float64(r.Width), float64(r.Height)
		strip = image.Rect(
			r.X+int(w*0.07), r.Y+int(h*0.86),
			r.X+int(w*0.93), r.Y+int(h*0.94),
		)
	}
	return strip.Intersect(bounds)
}

// slotRects splits the strip into eight equal slots and trims their edges
// to keep the grid lines out of the statistics.
func slotRects(strip image.Rectangle) []image.Rectangle {
	segW := strip.Dx() / slotCount
	trim := 1
	if segW > 20 {
		trim = int(float64(segW) * 0.15)
	}
	rects := make([]image.Rectangle, slotCount)
	for i := range rects {
		x0 := strip.Min.X + i*segW
		x1 := x0 + segW
		if segW > trim*2 {
			x0 += trim
			x1 -= trim
		}
		rects[i] = image.Rect(x0, strip.Min.Y, x1, strip.Max.Y)
	}
	return rects
}

// SlotMetrics measures the eight slots of a cropped badge strip. Slot
// rectangles are relative to strip.
func SlotMetrics(strip image.Image) []BadgeSlotMetrics {
	gray := imgproc.Gray(strip)
	sat := imgproc.Saturation(strip)
	rects := slotRects(gray.Bounds())
	out := make([]BadgeSlotMetrics, len(rects))
	for i, r := range rects {
		m := BadgeSlotMetrics{Slot: i, Rect: r}
		g := imgproc.GrayStats(gray, r)
		if g.Count == 0 {
			m.Empty = true
			out[i] = m
			continue
		}
		m.MeanSaturation = imgproc.GrayStats(sat, r).Mean
		m.BrightnessStdDev = g.StdDev
		m.MinBrightness = float64(g.Min)
		m.MeanBrightness = g.Mean
		out[i] = m
	}
	return out
}

type rung struct {
	below  bool
	bound  float64
	points int
}

// ladder awards the points of the first rung its metric satisfies.
type ladder struct {
	metric func(BadgeSlotMetrics) float64
	rungs  []rung
}

func (l ladder) score(m BadgeSlotMetrics) int {
	v := l.metric(m)
	for _, r := range l.rungs {
		if (r.below && v < r.bound) || (!r.below && v > r.bound) {
			return r.points
		}
	}
	return 0
}

// Badge icons are dark, outlined and unsaturated; the empty panel is a flat
// bright green.
var slotLadders = []ladder{
	{func(m BadgeSlotMetrics) float64 { return m.MeanSaturation }, []rung{{true, 40, 4}, {true, 70, 2}, {false, 100, -4}}},
	{func(m BadgeSlotMetrics) float64 { return m.BrightnessStdDev }, []rung{{false, 50, 3}, {false, 35, 2}, {true, 20, -2}}},
	{func(m BadgeSlotMetrics) float64 { return m.MinBrightness }, []rung{{true, 30, 3}, {true, 70, 2}, {true, 100, 1}}},
	{func(m BadgeSlotMetrics) float64 { return m.MeanBrightness }, []rung{{true, 150, 2}, {true, 180, 1}, {false, 200, -1}}},
}

// ScoreSlot sums the four ladders. Empty slots score 0.
func ScoreSlot(m BadgeSlotMetrics) int {
	if m.Empty {
		return 0
	}
	score := 0
	for _, l := range slotLadders {
		score += l.score(m)
	}
	return score
}

// passThreshold picks the per-slot cutoff from the strongest slot.
func passThreshold(max int) int {
	switch {
	case max >= 8:
		return 5
	case max >= 5:
		return 3
	default:
		return 2
	}
}

// CountFromScores walks the slots left to right and stops at the first slot
// that looks empty. Badges are earned in order, so nothing past a gap counts.
func CountFromScores(scores []int) int {
	if len(scores) == 0 {
		return 0
	}
	max := scores[0]
	allZero := true
	for _, s := range scores {
		if s > max {
			max = s
		}
		if s != 0 {
			allZero = false
		}
	}
	if allZero || max <= 0 {
		return 0
	}
	threshold := passThreshold(max)

	count := 0
	for i, s := range scores {
		if s <= 0 {
			break
		}
		if i == 0 {
			if s < threshold {
				break
			}
			count++
			continue
		}
		drop := scores[i-1] - s
		if drop >= 3 || s < threshold {
			break
		}
		if drop >= 2 && i < len(scores)-1 && meanInt(scores[i+1:]) <= 0 {
			// clean transition to empty right after this slot
			count++
			break
		}
		count++
	}
	if count > MaxBadges {
		count = MaxBadges
	}
	return count
}

func meanInt(xs []int) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0
	for _, x := range xs {
		sum += x
	}
	return float64(sum) / float64(len(xs))
}
