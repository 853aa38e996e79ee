package card

import (
	"image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
)

func TestCountBadgesMonotone(t *testing.T) {
	for n := 0; n <= 8; n++ {
		img := nativeCard(firstN(n)...)
		if got := CountBadges(img, Whole(img)); got != n {
			rep := AnalyzeBadges(img, Whole(img))
			t.Errorf("%d filled slots: got %d (scores %v)", n, got, rep.Scores)
		}
	}
}

func TestCountBadgesIgnoresArtifactPastGap(t *testing.T) {
	img := nativeCard(0, 1, 2, 6)
	if got := CountBadges(img, Whole(img)); got != 3 {
		t.Fatalf("got %d, want 3", got)
	}
}

func TestSlotScoresOfSyntheticCard(t *testing.T) {
	img := nativeCard(0)
	rep := AnalyzeBadges(img, Whole(img))
	if len(rep.Scores) != 8 {
		t.Fatalf("got %d slots", len(rep.Scores))
	}
	if rep.Scores[0] != 12 {
		t.Errorf("filled slot scored %d, want 12", rep.Scores[0])
	}
	for i, s := range rep.Scores[1:] {
		if s != -6 {
			t.Errorf("empty slot %d scored %d, want -6", i+1, s)
		}
	}
	if rep.Strip != image.Rect(17, 131, 225, 147) {
		t.Errorf("strip = %v", rep.Strip)
	}
}

func TestCountBadgesEmptyStrip(t *testing.T) {
	img := imaging.New(100, 100, panelGreen)
	if got := CountBadges(img, Whole(img)); got != 0 {
		t.Fatalf("got %d, want 0", got)
	}
}

func TestCountFromScores(t *testing.T) {
	cases := []struct {
		name   string
		scores []int
		want   int
	}{
		{"empty", nil, 0},
		{"all zero", []int{0, 0, 0, 0, 0, 0, 0, 0}, 0},
		{"all negative", []int{-6, -6, -6, -6, -6, -6, -6, -6}, 0},
		{"full", []int{12, 12, 12, 12, 12, 12, 12, 12}, 8},
		{"first below threshold", []int{4, 9, 9, 9, -6, -6, -6, -6}, 0},
		{"weak peak uses threshold 2", []int{3, 3, 2, 0, 0, 0, 0, 0}, 3},
		{"below threshold with small drop", []int{5, 4, 2, 2, 2, 2, 2, 2}, 2},
		{"large drop stops", []int{9, 9, 5, 5, 5, -6, -6, -6}, 2},
		{"moderate drop at last slot counts", []int{9, 9, 9, 9, 9, 9, 9, 7}, 8},
		{"moderate drop with filled tail continues", []int{9, 9, 7, 6, 6, -2, -2, -1}, 5},
		{"moderate drop with negative tail stops", []int{9, 9, 7, 6, -3, -3, -3, -3}, 3},
	}
	for _, tc := range cases {
		if got := CountFromScores(tc.scores); got != tc.want {
			t.Errorf("%s: CountFromScores(%v) = %d, want %d", tc.name, tc.scores, got, tc.want)
		}
	}
}

// Boundary values of the moderate-drop rule: a drop of exactly 2 triggers the
// lookahead, a tail mean of exactly 0 counts the current slot and stops, and a
// drop of exactly 3 stops before counting.
func TestCountFromScoresTieBreaks(t *testing.T) {
	if got := CountFromScores([]int{9, 9, 7, 6, -2, -2, -1, -1}); got != 3 {
		t.Errorf("drop 2, tail mean 0: got %d, want 3", got)
	}
	if got := CountFromScores([]int{9, 9, 7, 6, -2, -2, -1, 0}); got != 4 {
		t.Errorf("drop 2, tail mean > 0: got %d, want 4", got)
	}
	if got := CountFromScores([]int{9, 9, 6, 6, -2, -2, -1, 0}); got != 2 {
		t.Errorf("drop 3: got %d, want 2", got)
	}
	if got := CountFromScores([]int{9, 9, 8, 6, -9, -9, -9, -9}); got != 4 {
		t.Errorf("drop 2 after drop 1: got %d, want 4", got)
	}
}

func TestScoreSlotLadders(t *testing.T) {
	base := BadgeSlotMetrics{MeanSaturation: 80, BrightnessStdDev: 30, MinBrightness: 150, MeanBrightness: 190}
	if got := ScoreSlot(base); got != 0 {
		t.Fatalf("neutral metrics scored %d", got)
	}
	cases := []struct {
		name string
		edit func(*BadgeSlotMetrics)
		want int
	}{
		{"sat 39", func(m *BadgeSlotMetrics) { m.MeanSaturation = 39 }, 4},
		{"sat 40", func(m *BadgeSlotMetrics) { m.MeanSaturation = 40 }, 2},
		{"sat 100", func(m *BadgeSlotMetrics) { m.MeanSaturation = 100 }, 0},
		{"sat 101", func(m *BadgeSlotMetrics) { m.MeanSaturation = 101 }, -4},
		{"std 51", func(m *BadgeSlotMetrics) { m.BrightnessStdDev = 51 }, 3},
		{"std 50", func(m *BadgeSlotMetrics) { m.BrightnessStdDev = 50 }, 2},
		{"std 20", func(m *BadgeSlotMetrics) { m.BrightnessStdDev = 20 }, 0},
		{"std 19", func(m *BadgeSlotMetrics) { m.BrightnessStdDev = 19 }, -2},
		{"min 29", func(m *BadgeSlotMetrics) { m.MinBrightness = 29 }, 3},
		{"min 30", func(m *BadgeSlotMetrics) { m.MinBrightness = 30 }, 2},
		{"min 99", func(m *BadgeSlotMetrics) { m.MinBrightness = 99 }, 1},
		{"min 100", func(m *BadgeSlotMetrics) { m.MinBrightness = 100 }, 0},
		{"mean 149", func(m *BadgeSlotMetrics) { m.MeanBrightness = 149 }, 2},
		{"mean 150", func(m *BadgeSlotMetrics) { m.MeanBrightness = 150 }, 1},
		{"mean 200", func(m *BadgeSlotMetrics) { m.MeanBrightness = 200 }, 0},
		{"mean 201", func(m *BadgeSlotMetrics) { m.MeanBrightness = 201 }, -1},
	}
	for _, tc := range cases {
		m := base
		tc.edit(&m)
		if got := ScoreSlot(m); got != tc.want {
			t.Errorf("%s: got %d, want %d", tc.name, got, tc.want)
		}
	}
	if got := ScoreSlot(BadgeSlotMetrics{Empty: true, MeanSaturation: 0}); got != 0 {
		t.Errorf("empty slot scored %d", got)
	}
}

func TestSlotRectsTrim(t *testing.T) {
	rects := slotRects(image.Rect(0, 0, 208, 16))
	if rects[0] != image.Rect(3, 0, 23, 16) || rects[7] != image.Rect(185, 0, 205, 16) {
		t.Fatalf("wide slots: %v .. %v", rects[0], rects[7])
	}
	rects = slotRects(image.Rect(0, 0, 80, 4))
	if rects[1] != image.Rect(11, 0, 19, 4) {
		t.Fatalf("narrow slot: %v", rects[1])
	}
	rects = slotRects(image.Rect(0, 0, 16, 4))
	if rects[1] != image.Rect(2, 0, 4, 4) {
		t.Fatalf("untrimmed slot: %v", rects[1])
	}
	rects = slotRects(image.Rect(0, 0, 7, 4))
	for i, r := range rects {
		if !r.Empty() {
			t.Fatalf("slot %d of a 7px strip should be empty, got %v", i, r)
		}
	}
}

func TestBadgeStripGeometry(t *testing.T) {
	bounds := image.Rect(0, 0, 2000, 2000)
	native := Region{X: 5, Y: 7, Width: 240, Height: 160}
	if got := badgeStrip(native, bounds); got != image.Rect(22, 138, 230, 154) {
		t.Errorf("native strip = %v", got)
	}
	scaled := Region{X: 100, Y: 50, Width: 1000, Height: 600}
	if got := badgeStrip(scaled, bounds); got != image.Rect(170, 566, 1030, 614) {
		t.Errorf("scaled strip = %v", got)
	}
	if got := badgeStrip(native, image.Rect(0, 0, 240, 140)); got != image.Rect(22, 138, 230, 140) {
		t.Errorf("clamped strip = %v", got)
	}
}

func TestRefineRegionFindsBrightCard(t *testing.T) {
	img := imaging.New(900, 600, color.NRGBA{20, 20, 20, 255})
	fillRect(img, image.Rect(150, 100, 750, 400), color.NRGBA{235, 235, 235, 255})
	got := refineRegion(img, Whole(img))
	if got.Rect() != image.Rect(150, 100, 750, 400) {
		t.Fatalf("refined = %v", got)
	}
	small := Region{Width: 240, Height: 160}
	if refineRegion(img, small) != small {
		t.Fatalf("small regions must not be refined")
	}
}
